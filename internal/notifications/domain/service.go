// Package domain implements the entrant inbox and the organizer notification
// log. The lottery core produces notification records as side effects of
// roster transitions; this service owns their storage, listing and read
// acknowledgement.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sulfurevents/lottery/internal/platform/id"
)

var (
	// ErrNotFound indicates a notification record was not found.
	ErrNotFound = errors.New("notification not found")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("notification store is not configured")
	// ErrRecipientIDRequired indicates recipient identity is required.
	ErrRecipientIDRequired = errors.New("recipient id is required")
	// ErrNotificationIDRequired indicates a notification ID is required.
	ErrNotificationIDRequired = errors.New("notification id is required")
	// ErrEventIDRequired indicates an event ID is required.
	ErrEventIDRequired = errors.New("event id is required")
	// ErrTypeRequired indicates a notification type is required.
	ErrTypeRequired = errors.New("notification type is required")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Notification captures one entrant inbox item.
type Notification struct {
	ID          string
	EventID     string
	EventName   string
	RecipientID string
	Type        string
	Message     string
	Timestamp   time.Time
	Read        bool
}

// NotificationPage is a paged recipient inbox view.
type NotificationPage struct {
	Notifications []Notification
	NextPageToken string
	UnreadCount   int
}

// AuditEntry captures one organizer action in the notification log.
type AuditEntry struct {
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

// ListInboxInput configures recipient inbox listing.
type ListInboxInput struct {
	RecipientID string
	PageSize    int
	PageToken   string
}

// Store is the domain persistence boundary for inbox and audit records.
type Store interface {
	PutNotification(ctx context.Context, notification Notification) error
	ListNotificationsByRecipient(ctx context.Context, recipientID string, pageSize int, pageToken string) (NotificationPage, error)
	CountUnreadByRecipient(ctx context.Context, recipientID string) (int, error)
	MarkNotificationRead(ctx context.Context, recipientID string, notificationID string) (Notification, error)
	DeleteUnreadByType(ctx context.Context, eventID string, recipientID string, notificationType string) (int, error)
	PutAuditEntry(ctx context.Context, entry AuditEntry) error
	ListAuditByEvent(ctx context.Context, eventID string, limit int) ([]AuditEntry, error)
}

// Service orchestrates entrant inbox and audit log behavior.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService constructs notification domain use-cases.
func NewService(store Store, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store: store,
		clock: clock,
		newID: newID,
	}
}

// Record stores one inbox notification. A blank ID or timestamp is filled in
// by the service; new notifications always start unread.
func (s *Service) Record(ctx context.Context, notification Notification) (Notification, error) {
	if s == nil || s.store == nil {
		return Notification{}, ErrStoreNotConfigured
	}
	notification.RecipientID = strings.TrimSpace(notification.RecipientID)
	if notification.RecipientID == "" {
		return Notification{}, ErrRecipientIDRequired
	}
	notification.Type = strings.TrimSpace(notification.Type)
	if notification.Type == "" {
		return Notification{}, ErrTypeRequired
	}

	if strings.TrimSpace(notification.ID) == "" {
		notificationID, err := s.newID()
		if err != nil {
			return Notification{}, err
		}
		notification.ID = notificationID
	}
	if notification.Timestamp.IsZero() {
		notification.Timestamp = s.clock().UTC()
	}
	notification.Read = false

	if err := s.store.PutNotification(ctx, notification); err != nil {
		return Notification{}, err
	}
	return notification, nil
}

// RecordAudit stores one organizer action in the notification log.
func (s *Service) RecordAudit(ctx context.Context, entry AuditEntry) (AuditEntry, error) {
	if s == nil || s.store == nil {
		return AuditEntry{}, ErrStoreNotConfigured
	}
	entry.SenderID = strings.TrimSpace(entry.SenderID)
	if entry.SenderID == "" {
		return AuditEntry{}, ErrRecipientIDRequired
	}
	entry.Type = strings.TrimSpace(entry.Type)
	if entry.Type == "" {
		return AuditEntry{}, ErrTypeRequired
	}

	if strings.TrimSpace(entry.ID) == "" {
		entryID, err := s.newID()
		if err != nil {
			return AuditEntry{}, err
		}
		entry.ID = entryID
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.clock().UTC()
	}

	if err := s.store.PutAuditEntry(ctx, entry); err != nil {
		return AuditEntry{}, err
	}
	return entry, nil
}

// ListInbox returns one newest-first page of the recipient's notifications
// together with their unread count.
func (s *Service) ListInbox(ctx context.Context, input ListInboxInput) (NotificationPage, error) {
	if s == nil || s.store == nil {
		return NotificationPage{}, ErrStoreNotConfigured
	}
	recipientID := strings.TrimSpace(input.RecipientID)
	if recipientID == "" {
		return NotificationPage{}, ErrRecipientIDRequired
	}

	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	page, err := s.store.ListNotificationsByRecipient(ctx, recipientID, pageSize, strings.TrimSpace(input.PageToken))
	if err != nil {
		return NotificationPage{}, err
	}
	unread, err := s.store.CountUnreadByRecipient(ctx, recipientID)
	if err != nil {
		return NotificationPage{}, err
	}
	page.UnreadCount = unread
	return page, nil
}

// MarkRead acknowledges one recipient notification.
func (s *Service) MarkRead(ctx context.Context, recipientID, notificationID string) (Notification, error) {
	if s == nil || s.store == nil {
		return Notification{}, ErrStoreNotConfigured
	}
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return Notification{}, ErrRecipientIDRequired
	}
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return Notification{}, ErrNotificationIDRequired
	}
	return s.store.MarkNotificationRead(ctx, recipientID, notificationID)
}

// CountUnread returns the recipient's unread notification count.
func (s *Service) CountUnread(ctx context.Context, recipientID string) (int, error) {
	if s == nil || s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return 0, ErrRecipientIDRequired
	}
	return s.store.CountUnreadByRecipient(ctx, recipientID)
}

// DeletePendingInvites withdraws the recipient's unread invite notifications
// for the event. Invites already read stay in the inbox as history.
func (s *Service) DeletePendingInvites(ctx context.Context, eventID, recipientID string) (int, error) {
	if s == nil || s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return 0, ErrEventIDRequired
	}
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return 0, ErrRecipientIDRequired
	}
	return s.store.DeleteUnreadByType(ctx, eventID, recipientID, "INVITED")
}

// ListAuditLog returns up to limit newest-first audit entries for the event.
func (s *Service) ListAuditLog(ctx context.Context, eventID string, limit int) ([]AuditEntry, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, ErrEventIDRequired
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.store.ListAuditByEvent(ctx, eventID, limit)
}
