// Package app wires the notifications domain service to its storage backend.
package app

import (
	"context"
	"errors"

	"github.com/sulfurevents/lottery/internal/notifications/domain"
	"github.com/sulfurevents/lottery/internal/notifications/storage"
)

// DomainStoreAdapter exposes a storage.Store through the domain.Store
// contract, translating record types and sentinel errors.
type DomainStoreAdapter struct {
	store storage.Store
}

// NewDomainStoreAdapter wraps a storage backend for domain use.
func NewDomainStoreAdapter(store storage.Store) *DomainStoreAdapter {
	return &DomainStoreAdapter{store: store}
}

func (a *DomainStoreAdapter) PutNotification(ctx context.Context, notification domain.Notification) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.store.PutNotification(ctx, toStorageNotification(notification)))
}

func (a *DomainStoreAdapter) ListNotificationsByRecipient(ctx context.Context, recipientID string, pageSize int, pageToken string) (domain.NotificationPage, error) {
	if a == nil || a.store == nil {
		return domain.NotificationPage{}, domain.ErrStoreNotConfigured
	}
	page, err := a.store.ListNotificationsByRecipient(ctx, recipientID, pageSize, pageToken)
	if err != nil {
		return domain.NotificationPage{}, mapStorageError(err)
	}
	result := domain.NotificationPage{
		Notifications: make([]domain.Notification, 0, len(page.Notifications)),
		NextPageToken: page.NextPageToken,
	}
	for _, record := range page.Notifications {
		result.Notifications = append(result.Notifications, toDomainNotification(record))
	}
	return result, nil
}

func (a *DomainStoreAdapter) CountUnreadByRecipient(ctx context.Context, recipientID string) (int, error) {
	if a == nil || a.store == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	count, err := a.store.CountUnreadByRecipient(ctx, recipientID)
	if err != nil {
		return 0, mapStorageError(err)
	}
	return count, nil
}

func (a *DomainStoreAdapter) MarkNotificationRead(ctx context.Context, recipientID string, notificationID string) (domain.Notification, error) {
	if a == nil || a.store == nil {
		return domain.Notification{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.MarkNotificationRead(ctx, recipientID, notificationID)
	if err != nil {
		return domain.Notification{}, mapStorageError(err)
	}
	return toDomainNotification(record), nil
}

func (a *DomainStoreAdapter) DeleteUnreadByType(ctx context.Context, eventID string, recipientID string, notificationType string) (int, error) {
	if a == nil || a.store == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	deleted, err := a.store.DeleteUnreadByType(ctx, eventID, recipientID, notificationType)
	if err != nil {
		return 0, mapStorageError(err)
	}
	return deleted, nil
}

func (a *DomainStoreAdapter) PutAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.store.PutAuditEntry(ctx, storage.AuditRecord{
		ID:          entry.ID,
		SenderID:    entry.SenderID,
		SenderRole:  entry.SenderRole,
		RecipientID: entry.RecipientID,
		EventID:     entry.EventID,
		EventName:   entry.EventName,
		Type:        entry.Type,
		Message:     entry.Message,
		Timestamp:   entry.Timestamp,
	}))
}

func (a *DomainStoreAdapter) ListAuditByEvent(ctx context.Context, eventID string, limit int) ([]domain.AuditEntry, error) {
	if a == nil || a.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.store.ListAuditByEvent(ctx, eventID, limit)
	if err != nil {
		return nil, mapStorageError(err)
	}
	entries := make([]domain.AuditEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, domain.AuditEntry{
			ID:          record.ID,
			SenderID:    record.SenderID,
			SenderRole:  record.SenderRole,
			RecipientID: record.RecipientID,
			EventID:     record.EventID,
			EventName:   record.EventName,
			Type:        record.Type,
			Message:     record.Message,
			Timestamp:   record.Timestamp,
		})
	}
	return entries, nil
}

func toStorageNotification(notification domain.Notification) storage.NotificationRecord {
	return storage.NotificationRecord{
		ID:          notification.ID,
		EventID:     notification.EventID,
		EventName:   notification.EventName,
		RecipientID: notification.RecipientID,
		Type:        notification.Type,
		Message:     notification.Message,
		Timestamp:   notification.Timestamp,
		Read:        notification.Read,
	}
}

func toDomainNotification(record storage.NotificationRecord) domain.Notification {
	return domain.Notification{
		ID:          record.ID,
		EventID:     record.EventID,
		EventName:   record.EventName,
		RecipientID: record.RecipientID,
		Type:        record.Type,
		Message:     record.Message,
		Timestamp:   record.Timestamp,
		Read:        record.Read,
	}
}

func mapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}
