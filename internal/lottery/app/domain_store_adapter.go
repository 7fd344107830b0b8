// Package app wires the lottery domain service to its storage backend and
// to the notifications service.
package app

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/sulfurevents/lottery/internal/errors"
	"github.com/sulfurevents/lottery/internal/lottery/domain"
	"github.com/sulfurevents/lottery/internal/lottery/storage"
)

// DomainStoreAdapter exposes a storage.Store through the domain.RosterStore
// and domain.ProfileStore contracts, translating record types and sentinel
// errors.
type DomainStoreAdapter struct {
	store storage.Store
	clock func() time.Time
}

// NewDomainStoreAdapter wraps a storage backend for domain use. clock falls
// back to real time when nil.
func NewDomainStoreAdapter(store storage.Store, clock func() time.Time) *DomainStoreAdapter {
	if clock == nil {
		clock = time.Now
	}
	return &DomainStoreAdapter{store: store, clock: clock}
}

func (a *DomainStoreAdapter) CreateEvent(ctx context.Context, event domain.Event) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.store.CreateEvent(ctx, toEventRecord(event)))
}

func (a *DomainStoreAdapter) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	if a == nil || a.store == nil {
		return domain.Event{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, mapStorageError(err)
	}
	return toDomainEvent(record), nil
}

func (a *DomainStoreAdapter) UpdateEvent(ctx context.Context, eventID string, fn func(domain.Event) (domain.Event, error)) (domain.Event, error) {
	if a == nil || a.store == nil {
		return domain.Event{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.UpdateEvent(ctx, eventID, func(record storage.EventRecord) (storage.EventRecord, error) {
		updated, err := fn(toDomainEvent(record))
		if err != nil {
			return storage.EventRecord{}, err
		}
		return toEventRecord(updated), nil
	})
	if err != nil {
		return domain.Event{}, mapStorageError(err)
	}
	return toDomainEvent(record), nil
}

func (a *DomainStoreAdapter) ListEvents(ctx context.Context) ([]domain.Event, error) {
	if a == nil || a.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.store.ListEvents(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	events := make([]domain.Event, 0, len(records))
	for _, record := range records {
		events = append(events, toDomainEvent(record))
	}
	return events, nil
}

// NotificationsEnabled resolves the entrant's opt-out preference. A missing
// profile reads as enabled.
func (a *DomainStoreAdapter) NotificationsEnabled(ctx context.Context, entrantID string) (bool, error) {
	if a == nil || a.store == nil {
		return false, domain.ErrStoreNotConfigured
	}
	record, err := a.store.GetProfile(ctx, entrantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	return record.NotificationsEnabled, nil
}

func (a *DomainStoreAdapter) SetNotificationsEnabled(ctx context.Context, entrantID string, enabled bool) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return a.store.PutProfile(ctx, storage.ProfileRecord{
		EntrantID:            entrantID,
		NotificationsEnabled: enabled,
		UpdatedAt:            a.clock().UTC(),
	})
}

func toEventRecord(event domain.Event) storage.EventRecord {
	return storage.EventRecord{
		ID:        event.ID,
		Name:      event.Name,
		Capacity:  event.Capacity,
		Finalized: event.Finalized,
		Waiting:   event.Waiting,
		Invited:   event.Invited,
		Enrolled:  event.Enrolled,
		Cancelled: event.Cancelled,
		CreatedAt: event.CreatedAt,
		UpdatedAt: event.UpdatedAt,
	}
}

func toDomainEvent(record storage.EventRecord) domain.Event {
	return domain.Event{
		ID:        record.ID,
		Name:      record.Name,
		Capacity:  record.Capacity,
		Finalized: record.Finalized,
		Waiting:   record.Waiting,
		Invited:   record.Invited,
		Enrolled:  record.Enrolled,
		Cancelled: record.Cancelled,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func mapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrEventNotFound
	}
	if errors.Is(err, storage.ErrConflict) {
		return apperrors.New(apperrors.CodeConflict, "event already exists")
	}
	if errors.Is(err, storage.ErrBusy) {
		return apperrors.Wrap(apperrors.CodeTransientFailure, "storage is busy", err)
	}
	return err
}
