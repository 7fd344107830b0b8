// Package storage defines the persistence contracts for lottery roster
// state and entrant notification preferences.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested event or profile record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with an existing record.
	ErrConflict = errors.New("record conflict")
	// ErrBusy indicates the backend stayed locked after bounded retries.
	ErrBusy = errors.New("storage busy")
)

// Roster bucket names shared by the SQL and document backends.
const (
	BucketWaiting   = "waiting"
	BucketInvited   = "invited"
	BucketEnrolled  = "enrolled"
	BucketCancelled = "cancelled"
)

// EventRecord stores one event with its ordered roster lists.
type EventRecord struct {
	ID        string
	Name      string
	Capacity  int
	Finalized bool
	Waiting   []string
	Invited   []string
	Enrolled  []string
	Cancelled []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileRecord stores one entrant's notification preference.
type ProfileRecord struct {
	EntrantID            string
	NotificationsEnabled bool
	UpdatedAt            time.Time
}

// EventStore persists event roster state.
//
// UpdateEvent runs fn against the current record inside one transaction and
// persists the result atomically. fn errors abort the update and propagate
// unchanged; implementations may call fn again when retrying lock conflicts.
type EventStore interface {
	CreateEvent(ctx context.Context, record EventRecord) error
	GetEvent(ctx context.Context, eventID string) (EventRecord, error)
	UpdateEvent(ctx context.Context, eventID string, fn func(EventRecord) (EventRecord, error)) (EventRecord, error)
	ListEvents(ctx context.Context) ([]EventRecord, error)
}

// ProfileStore persists entrant notification preferences. A missing profile
// reads as notifications enabled.
type ProfileStore interface {
	GetProfile(ctx context.Context, entrantID string) (ProfileRecord, error)
	PutProfile(ctx context.Context, record ProfileRecord) error
}

// Store combines the persistence surfaces served by one backend.
type Store interface {
	EventStore
	ProfileStore
	Close() error
}
