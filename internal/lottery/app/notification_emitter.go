package app

import (
	"context"

	lotterydomain "github.com/sulfurevents/lottery/internal/lottery/domain"
	notifdomain "github.com/sulfurevents/lottery/internal/notifications/domain"
)

// NotificationEmitter forwards lottery side effects to the notifications
// service. It satisfies the lottery domain's Emitter contract.
type NotificationEmitter struct {
	notifications *notifdomain.Service
}

// NewNotificationEmitter wraps the notifications service for lottery use.
func NewNotificationEmitter(notifications *notifdomain.Service) *NotificationEmitter {
	return &NotificationEmitter{notifications: notifications}
}

func (e *NotificationEmitter) EmitNotification(ctx context.Context, notification lotterydomain.Notification) error {
	if e == nil || e.notifications == nil {
		return notifdomain.ErrStoreNotConfigured
	}
	_, err := e.notifications.Record(ctx, notifdomain.Notification{
		ID:          notification.ID,
		EventID:     notification.EventID,
		EventName:   notification.EventName,
		RecipientID: notification.RecipientID,
		Type:        string(notification.Type),
		Message:     notification.Message,
		Timestamp:   notification.Timestamp,
	})
	return err
}

func (e *NotificationEmitter) EmitAudit(ctx context.Context, entry lotterydomain.AuditEntry) error {
	if e == nil || e.notifications == nil {
		return notifdomain.ErrStoreNotConfigured
	}
	_, err := e.notifications.RecordAudit(ctx, notifdomain.AuditEntry{
		ID:          entry.ID,
		SenderID:    entry.SenderID,
		SenderRole:  entry.SenderRole,
		RecipientID: entry.RecipientID,
		EventID:     entry.EventID,
		EventName:   entry.EventName,
		Type:        string(entry.Type),
		Message:     entry.Message,
		Timestamp:   entry.Timestamp,
	})
	return err
}

func (e *NotificationEmitter) ClearPendingInvites(ctx context.Context, eventID, recipientID string) error {
	if e == nil || e.notifications == nil {
		return notifdomain.ErrStoreNotConfigured
	}
	_, err := e.notifications.DeletePendingInvites(ctx, eventID, recipientID)
	return err
}
