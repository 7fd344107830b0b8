// Package sqlite provides a SQLite-backed lottery storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sulfurevents/lottery/internal/lottery/storage"
	"github.com/sulfurevents/lottery/internal/lottery/storage/sqlite/migrations"
	sqlitemigrate "github.com/sulfurevents/lottery/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store persists lottery state in SQLite.
type Store struct {
	sqlDB *sql.DB

	// updateMu serializes read-modify-write cycles. SQLite allows a single
	// writer at a time anyway; taking the lock up front keeps concurrent
	// UpdateEvent callers from reading the same snapshot and losing updates.
	updateMu sync.Mutex
}

// busyRetries bounds how many times a locked read-modify-write is retried
// before surfacing storage.ErrBusy. The DSN busy timeout already absorbs
// short lock waits; this guards against another process holding the write
// lock past it.
const busyRetries = 3

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite lottery store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateEvent inserts one event with its roster lists.
func (s *Store) CreateEvent(ctx context.Context, record storage.EventRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	eventID := strings.TrimSpace(record.ID)
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO events (id, name, capacity, finalized, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		eventID,
		record.Name,
		record.Capacity,
		boolToInt(record.Finalized),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert event: %w", err)
	}

	if err := insertRoster(ctx, tx, eventID, record); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit event: %w", err)
	}
	return nil
}

// GetEvent returns one event with its roster lists in stored order.
func (s *Store) GetEvent(ctx context.Context, eventID string) (storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.EventRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.EventRecord{}, fmt.Errorf("storage is not configured")
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return storage.EventRecord{}, fmt.Errorf("event id is required")
	}
	return getEvent(ctx, s.sqlDB, eventID)
}

// UpdateEvent applies fn to the current event record and persists the result
// in one transaction.
func (s *Store) UpdateEvent(ctx context.Context, eventID string, fn func(storage.EventRecord) (storage.EventRecord, error)) (storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.EventRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.EventRecord{}, fmt.Errorf("storage is not configured")
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return storage.EventRecord{}, fmt.Errorf("event id is required")
	}
	if fn == nil {
		return storage.EventRecord{}, fmt.Errorf("update function is required")
	}

	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	var lastErr error
	for attempt := 0; attempt < busyRetries; attempt++ {
		record, err := s.updateEventOnce(ctx, eventID, fn)
		if err == nil {
			return record, nil
		}
		if !isBusyError(err) {
			return storage.EventRecord{}, err
		}
		lastErr = err
	}
	return storage.EventRecord{}, fmt.Errorf("%w: %v", storage.ErrBusy, lastErr)
}

func (s *Store) updateEventOnce(ctx context.Context, eventID string, fn func(storage.EventRecord) (storage.EventRecord, error)) (storage.EventRecord, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.EventRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := getEvent(ctx, tx, eventID)
	if err != nil {
		return storage.EventRecord{}, err
	}

	updated, err := fn(current)
	if err != nil {
		return storage.EventRecord{}, err
	}
	updated.ID = eventID

	_, err = tx.ExecContext(
		ctx,
		`UPDATE events
		 SET name = ?, capacity = ?, finalized = ?, updated_at = ?
		 WHERE id = ?`,
		updated.Name,
		updated.Capacity,
		boolToInt(updated.Finalized),
		toMillis(updated.UpdatedAt),
		eventID,
	)
	if err != nil {
		return storage.EventRecord{}, fmt.Errorf("update event: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM roster_members WHERE event_id = ?`, eventID); err != nil {
		return storage.EventRecord{}, fmt.Errorf("clear roster: %w", err)
	}
	if err := insertRoster(ctx, tx, eventID, updated); err != nil {
		return storage.EventRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return storage.EventRecord{}, fmt.Errorf("commit event update: %w", err)
	}
	return updated, nil
}

// ListEvents returns every event ordered by creation time.
func (s *Store) ListEvents(ctx context.Context) ([]storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id FROM events ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var eventIDs []string
	for rows.Next() {
		var eventID string
		if err := rows.Scan(&eventID); err != nil {
			return nil, fmt.Errorf("scan event id: %w", err)
		}
		eventIDs = append(eventIDs, eventID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	records := make([]storage.EventRecord, 0, len(eventIDs))
	for _, eventID := range eventIDs {
		record, err := getEvent(ctx, s.sqlDB, eventID)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// GetProfile returns one entrant notification preference record.
func (s *Store) GetProfile(ctx context.Context, entrantID string) (storage.ProfileRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ProfileRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ProfileRecord{}, fmt.Errorf("storage is not configured")
	}
	entrantID = strings.TrimSpace(entrantID)
	if entrantID == "" {
		return storage.ProfileRecord{}, fmt.Errorf("entrant id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT entrant_id, notifications_enabled, updated_at
		 FROM profiles
		 WHERE entrant_id = ?`,
		entrantID,
	)
	var record storage.ProfileRecord
	var enabled int
	var updatedAt int64
	if err := row.Scan(&record.EntrantID, &enabled, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ProfileRecord{}, storage.ErrNotFound
		}
		return storage.ProfileRecord{}, fmt.Errorf("get profile: %w", err)
	}
	record.NotificationsEnabled = enabled != 0
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// PutProfile upserts one entrant notification preference record.
func (s *Store) PutProfile(ctx context.Context, record storage.ProfileRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	entrantID := strings.TrimSpace(record.EntrantID)
	if entrantID == "" {
		return fmt.Errorf("entrant id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO profiles (entrant_id, notifications_enabled, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(entrant_id) DO UPDATE SET
		   notifications_enabled = excluded.notifications_enabled,
		   updated_at = excluded.updated_at`,
		entrantID,
		boolToInt(record.NotificationsEnabled),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

// querier covers the query surface shared by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func getEvent(ctx context.Context, q querier, eventID string) (storage.EventRecord, error) {
	row := q.QueryRowContext(
		ctx,
		`SELECT id, name, capacity, finalized, created_at, updated_at
		 FROM events
		 WHERE id = ?`,
		eventID,
	)
	var record storage.EventRecord
	var finalized int
	var createdAt, updatedAt int64
	err := row.Scan(&record.ID, &record.Name, &record.Capacity, &finalized, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.EventRecord{}, storage.ErrNotFound
		}
		return storage.EventRecord{}, fmt.Errorf("get event: %w", err)
	}
	record.Finalized = finalized != 0
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)

	rows, err := q.QueryContext(
		ctx,
		`SELECT bucket, entrant_id
		 FROM roster_members
		 WHERE event_id = ?
		 ORDER BY bucket ASC, position ASC`,
		eventID,
	)
	if err != nil {
		return storage.EventRecord{}, fmt.Errorf("list roster members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bucket, entrantID string
		if err := rows.Scan(&bucket, &entrantID); err != nil {
			return storage.EventRecord{}, fmt.Errorf("scan roster member: %w", err)
		}
		switch bucket {
		case storage.BucketWaiting:
			record.Waiting = append(record.Waiting, entrantID)
		case storage.BucketInvited:
			record.Invited = append(record.Invited, entrantID)
		case storage.BucketEnrolled:
			record.Enrolled = append(record.Enrolled, entrantID)
		case storage.BucketCancelled:
			record.Cancelled = append(record.Cancelled, entrantID)
		default:
			return storage.EventRecord{}, fmt.Errorf("unknown roster bucket %q", bucket)
		}
	}
	if err := rows.Err(); err != nil {
		return storage.EventRecord{}, fmt.Errorf("iterate roster members: %w", err)
	}
	return record, nil
}

func insertRoster(ctx context.Context, tx *sql.Tx, eventID string, record storage.EventRecord) error {
	buckets := []struct {
		name    string
		members []string
	}{
		{storage.BucketWaiting, record.Waiting},
		{storage.BucketInvited, record.Invited},
		{storage.BucketEnrolled, record.Enrolled},
		{storage.BucketCancelled, record.Cancelled},
	}
	for _, bucket := range buckets {
		for position, entrantID := range bucket.members {
			_, err := tx.ExecContext(
				ctx,
				`INSERT INTO roster_members (event_id, bucket, entrant_id, position)
				 VALUES (?, ?, ?, ?)`,
				eventID,
				bucket.name,
				entrantID,
				position,
			)
			if err != nil {
				if isUniqueViolation(err) {
					return storage.ErrConflict
				}
				return fmt.Errorf("insert %s roster member: %w", bucket.name, err)
			}
		}
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint") || strings.Contains(value, "constraint failed")
}

func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "database is locked") || strings.Contains(value, "busy")
}
