// Package bbolt provides a BoltDB-backed lottery storage implementation.
//
// Events and profiles are stored as JSON documents. BoltDB serializes write
// transactions, so UpdateEvent's read-modify-write cycle runs inside a
// single db.Update and needs no extra locking.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sulfurevents/lottery/internal/lottery/storage"
	"go.etcd.io/bbolt"
)

const (
	eventBucket   = "event"
	profileBucket = "profile"
)

// Store provides a BoltDB-backed lottery store.
type Store struct {
	db *bbolt.DB
}

type eventDocument struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Finalized bool      `json:"finalized"`
	Waiting   []string  `json:"waiting,omitempty"`
	Invited   []string  `json:"invited,omitempty"`
	Enrolled  []string  `json:"enrolled,omitempty"`
	Cancelled []string  `json:"cancelled,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type profileDocument struct {
	EntrantID            string    `json:"entrant_id"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateEvent persists a new event record.
func (s *Store) CreateEvent(ctx context.Context, record storage.EventRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	eventID := strings.TrimSpace(record.ID)
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}

	payload, err := json.Marshal(toEventDocument(record))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventBucket))
		if bucket == nil {
			return fmt.Errorf("event bucket is missing")
		}
		if bucket.Get([]byte(eventID)) != nil {
			return storage.ErrConflict
		}
		return bucket.Put([]byte(eventID), payload)
	})
}

// GetEvent fetches an event record by ID.
func (s *Store) GetEvent(ctx context.Context, eventID string) (storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.EventRecord{}, err
	}
	if s == nil || s.db == nil {
		return storage.EventRecord{}, fmt.Errorf("storage is not configured")
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return storage.EventRecord{}, fmt.Errorf("event id is required")
	}

	var record storage.EventRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventBucket))
		if bucket == nil {
			return fmt.Errorf("event bucket is missing")
		}
		payload := bucket.Get([]byte(eventID))
		if payload == nil {
			return storage.ErrNotFound
		}
		var document eventDocument
		if err := json.Unmarshal(payload, &document); err != nil {
			return fmt.Errorf("unmarshal event: %w", err)
		}
		record = fromEventDocument(document)
		return nil
	})
	if err != nil {
		return storage.EventRecord{}, err
	}
	return record, nil
}

// UpdateEvent applies fn to the current event record inside one write
// transaction.
func (s *Store) UpdateEvent(ctx context.Context, eventID string, fn func(storage.EventRecord) (storage.EventRecord, error)) (storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.EventRecord{}, err
	}
	if s == nil || s.db == nil {
		return storage.EventRecord{}, fmt.Errorf("storage is not configured")
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return storage.EventRecord{}, fmt.Errorf("event id is required")
	}
	if fn == nil {
		return storage.EventRecord{}, fmt.Errorf("update function is required")
	}

	var updated storage.EventRecord
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventBucket))
		if bucket == nil {
			return fmt.Errorf("event bucket is missing")
		}
		payload := bucket.Get([]byte(eventID))
		if payload == nil {
			return storage.ErrNotFound
		}
		var document eventDocument
		if err := json.Unmarshal(payload, &document); err != nil {
			return fmt.Errorf("unmarshal event: %w", err)
		}

		result, err := fn(fromEventDocument(document))
		if err != nil {
			return err
		}
		result.ID = eventID

		next, err := json.Marshal(toEventDocument(result))
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		if err := bucket.Put([]byte(eventID), next); err != nil {
			return fmt.Errorf("put event: %w", err)
		}
		updated = result
		return nil
	})
	if err != nil {
		return storage.EventRecord{}, err
	}
	return updated, nil
}

// ListEvents returns every event ordered by creation time.
func (s *Store) ListEvents(ctx context.Context) ([]storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var records []storage.EventRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventBucket))
		if bucket == nil {
			return fmt.Errorf("event bucket is missing")
		}
		return bucket.ForEach(func(_, payload []byte) error {
			var document eventDocument
			if err := json.Unmarshal(payload, &document); err != nil {
				return fmt.Errorf("unmarshal event: %w", err)
			}
			records = append(records, fromEventDocument(document))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// GetProfile fetches an entrant notification preference record.
func (s *Store) GetProfile(ctx context.Context, entrantID string) (storage.ProfileRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ProfileRecord{}, err
	}
	if s == nil || s.db == nil {
		return storage.ProfileRecord{}, fmt.Errorf("storage is not configured")
	}
	entrantID = strings.TrimSpace(entrantID)
	if entrantID == "" {
		return storage.ProfileRecord{}, fmt.Errorf("entrant id is required")
	}

	var record storage.ProfileRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(profileBucket))
		if bucket == nil {
			return fmt.Errorf("profile bucket is missing")
		}
		payload := bucket.Get([]byte(entrantID))
		if payload == nil {
			return storage.ErrNotFound
		}
		var document profileDocument
		if err := json.Unmarshal(payload, &document); err != nil {
			return fmt.Errorf("unmarshal profile: %w", err)
		}
		record = storage.ProfileRecord{
			EntrantID:            document.EntrantID,
			NotificationsEnabled: document.NotificationsEnabled,
			UpdatedAt:            document.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return storage.ProfileRecord{}, err
	}
	return record, nil
}

// PutProfile upserts an entrant notification preference record.
func (s *Store) PutProfile(ctx context.Context, record storage.ProfileRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	entrantID := strings.TrimSpace(record.EntrantID)
	if entrantID == "" {
		return fmt.Errorf("entrant id is required")
	}

	payload, err := json.Marshal(profileDocument{
		EntrantID:            entrantID,
		NotificationsEnabled: record.NotificationsEnabled,
		UpdatedAt:            record.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(profileBucket))
		if bucket == nil {
			return fmt.Errorf("profile bucket is missing")
		}
		return bucket.Put([]byte(entrantID), payload)
	})
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{eventBucket, profileBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

func toEventDocument(record storage.EventRecord) eventDocument {
	return eventDocument{
		ID:        record.ID,
		Name:      record.Name,
		Capacity:  record.Capacity,
		Finalized: record.Finalized,
		Waiting:   record.Waiting,
		Invited:   record.Invited,
		Enrolled:  record.Enrolled,
		Cancelled: record.Cancelled,
		CreatedAt: record.CreatedAt.UTC(),
		UpdatedAt: record.UpdatedAt.UTC(),
	}
}

func fromEventDocument(document eventDocument) storage.EventRecord {
	return storage.EventRecord{
		ID:        document.ID,
		Name:      document.Name,
		Capacity:  document.Capacity,
		Finalized: document.Finalized,
		Waiting:   document.Waiting,
		Invited:   document.Invited,
		Enrolled:  document.Enrolled,
		Cancelled: document.Cancelled,
		CreatedAt: document.CreatedAt,
		UpdatedAt: document.UpdatedAt,
	}
}
