// Package storage defines the persistence contracts for entrant inbox
// notifications and the organizer audit log.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested notification record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with an existing record.
	ErrConflict = errors.New("record conflict")
)

// NotificationRecord stores one entrant inbox item.
type NotificationRecord struct {
	ID          string
	EventID     string
	EventName   string
	RecipientID string
	Type        string
	Message     string
	Timestamp   time.Time
	Read        bool
}

// NotificationPage stores a paged inbox listing result.
type NotificationPage struct {
	Notifications []NotificationRecord
	NextPageToken string
}

// AuditRecord stores one organizer action in the notification log.
type AuditRecord struct {
	ID          string
	SenderID    string
	SenderRole  string
	RecipientID string
	EventID     string
	EventName   string
	Type        string
	Message     string
	Timestamp   time.Time
}

// NotificationStore persists entrant inbox state.
type NotificationStore interface {
	PutNotification(ctx context.Context, record NotificationRecord) error
	ListNotificationsByRecipient(ctx context.Context, recipientID string, pageSize int, pageToken string) (NotificationPage, error)
	CountUnreadByRecipient(ctx context.Context, recipientID string) (int, error)
	MarkNotificationRead(ctx context.Context, recipientID string, notificationID string) (NotificationRecord, error)
	// DeleteUnreadByType removes unread notifications of one type for the
	// recipient on the event and reports how many were removed.
	DeleteUnreadByType(ctx context.Context, eventID string, recipientID string, notificationType string) (int, error)
}

// AuditStore persists the organizer notification log.
type AuditStore interface {
	PutAuditEntry(ctx context.Context, record AuditRecord) error
	ListAuditByEvent(ctx context.Context, eventID string, limit int) ([]AuditRecord, error)
}

// Store combines the persistence surfaces served by one backend.
type Store interface {
	NotificationStore
	AuditStore
	Close() error
}
