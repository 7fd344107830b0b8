// Package sqlite provides a SQLite-backed notifications storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sulfurevents/lottery/internal/notifications/storage"
	"github.com/sulfurevents/lottery/internal/notifications/storage/sqlite/migrations"
	sqlitemigrate "github.com/sulfurevents/lottery/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store persists notification inbox and audit state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite notifications store and applies embedded migrations.
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

// PutNotification inserts one inbox notification record.
func (s *Store) PutNotification(ctx context.Context, record storage.NotificationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	notificationID := strings.TrimSpace(record.ID)
	if notificationID == "" {
		return fmt.Errorf("notification id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO notifications (id, event_id, event_name, recipient_id, type, message, timestamp, read)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		notificationID,
		record.EventID,
		record.EventName,
		record.RecipientID,
		record.Type,
		record.Message,
		toMillis(record.Timestamp),
		boolToInt(record.Read),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotificationsByRecipient returns one newest-first inbox page. The page
// token is the ID of the last notification on the previous page.
func (s *Store) ListNotificationsByRecipient(ctx context.Context, recipientID string, pageSize int, pageToken string) (storage.NotificationPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.NotificationPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.NotificationPage{}, fmt.Errorf("storage is not configured")
	}
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return storage.NotificationPage{}, fmt.Errorf("recipient id is required")
	}
	if pageSize <= 0 {
		return storage.NotificationPage{}, fmt.Errorf("page size must be greater than zero")
	}

	var (
		rows *sql.Rows
		err  error
	)
	pageToken = strings.TrimSpace(pageToken)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, event_id, event_name, recipient_id, type, message, timestamp, read
			 FROM notifications
			 WHERE recipient_id = ?
			 ORDER BY timestamp DESC, id DESC
			 LIMIT ?`,
			recipientID,
			pageSize+1,
		)
	} else {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, event_id, event_name, recipient_id, type, message, timestamp, read
			 FROM notifications
			 WHERE recipient_id = ?
			   AND (timestamp, id) < (SELECT timestamp, id FROM notifications WHERE id = ?)
			 ORDER BY timestamp DESC, id DESC
			 LIMIT ?`,
			recipientID,
			pageToken,
			pageSize+1,
		)
	}
	if err != nil {
		return storage.NotificationPage{}, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	page := storage.NotificationPage{
		Notifications: make([]storage.NotificationRecord, 0, pageSize),
	}
	for rows.Next() {
		record, err := scanNotification(rows)
		if err != nil {
			return storage.NotificationPage{}, err
		}
		page.Notifications = append(page.Notifications, record)
	}
	if err := rows.Err(); err != nil {
		return storage.NotificationPage{}, fmt.Errorf("iterate notifications: %w", err)
	}

	if len(page.Notifications) > pageSize {
		page.Notifications = page.Notifications[:pageSize]
		page.NextPageToken = page.Notifications[pageSize-1].ID
	}
	return page, nil
}

// CountUnreadByRecipient returns the recipient's unread notification count.
func (s *Store) CountUnreadByRecipient(ctx context.Context, recipientID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return 0, fmt.Errorf("recipient id is required")
	}

	var count int
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM notifications WHERE recipient_id = ? AND read = 0`,
		recipientID,
	)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkNotificationRead acknowledges one recipient notification.
func (s *Store) MarkNotificationRead(ctx context.Context, recipientID string, notificationID string) (storage.NotificationRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.NotificationRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.NotificationRecord{}, fmt.Errorf("storage is not configured")
	}
	recipientID = strings.TrimSpace(recipientID)
	notificationID = strings.TrimSpace(notificationID)
	if recipientID == "" {
		return storage.NotificationRecord{}, fmt.Errorf("recipient id is required")
	}
	if notificationID == "" {
		return storage.NotificationRecord{}, fmt.Errorf("notification id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE notifications SET read = 1 WHERE id = ? AND recipient_id = ?`,
		notificationID,
		recipientID,
	)
	if err != nil {
		return storage.NotificationRecord{}, fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.NotificationRecord{}, fmt.Errorf("mark notification read rows: %w", err)
	}
	if affected == 0 {
		return storage.NotificationRecord{}, storage.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, event_id, event_name, recipient_id, type, message, timestamp, read
		 FROM notifications
		 WHERE id = ?`,
		notificationID,
	)
	record, err := scanNotificationRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.NotificationRecord{}, storage.ErrNotFound
		}
		return storage.NotificationRecord{}, err
	}
	return record, nil
}

// DeleteUnreadByType removes unread notifications of one type for the
// recipient on the event.
func (s *Store) DeleteUnreadByType(ctx context.Context, eventID string, recipientID string, notificationType string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	eventID = strings.TrimSpace(eventID)
	recipientID = strings.TrimSpace(recipientID)
	notificationType = strings.TrimSpace(notificationType)
	if eventID == "" || recipientID == "" || notificationType == "" {
		return 0, fmt.Errorf("event id, recipient id and type are required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM notifications
		 WHERE event_id = ? AND recipient_id = ? AND type = ? AND read = 0`,
		eventID,
		recipientID,
		notificationType,
	)
	if err != nil {
		return 0, fmt.Errorf("delete unread notifications: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete unread notifications rows: %w", err)
	}
	return int(affected), nil
}

// PutAuditEntry inserts one organizer audit record.
func (s *Store) PutAuditEntry(ctx context.Context, record storage.AuditRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	entryID := strings.TrimSpace(record.ID)
	if entryID == "" {
		return fmt.Errorf("audit entry id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO audit_entries (id, sender_id, sender_role, recipient_id, event_id, event_name, type, message, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entryID,
		record.SenderID,
		record.SenderRole,
		record.RecipientID,
		record.EventID,
		record.EventName,
		record.Type,
		record.Message,
		toMillis(record.Timestamp),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListAuditByEvent returns up to limit newest-first audit records for the event.
func (s *Store) ListAuditByEvent(ctx context.Context, eventID string, limit int) ([]storage.AuditRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("event id is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, sender_id, sender_role, recipient_id, event_id, event_name, type, message, timestamp
		 FROM audit_entries
		 WHERE event_id = ?
		 ORDER BY timestamp DESC, id DESC
		 LIMIT ?`,
		eventID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var records []storage.AuditRecord
	for rows.Next() {
		var record storage.AuditRecord
		var timestamp int64
		if err := rows.Scan(
			&record.ID,
			&record.SenderID,
			&record.SenderRole,
			&record.RecipientID,
			&record.EventID,
			&record.EventName,
			&record.Type,
			&record.Message,
			&timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		record.Timestamp = fromMillis(timestamp)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return records, nil
}

func scanNotification(rows *sql.Rows) (storage.NotificationRecord, error) {
	var record storage.NotificationRecord
	var timestamp int64
	var read int
	if err := rows.Scan(
		&record.ID,
		&record.EventID,
		&record.EventName,
		&record.RecipientID,
		&record.Type,
		&record.Message,
		&timestamp,
		&read,
	); err != nil {
		return storage.NotificationRecord{}, fmt.Errorf("scan notification: %w", err)
	}
	record.Timestamp = fromMillis(timestamp)
	record.Read = read != 0
	return record, nil
}

func scanNotificationRow(row *sql.Row) (storage.NotificationRecord, error) {
	var record storage.NotificationRecord
	var timestamp int64
	var read int
	if err := row.Scan(
		&record.ID,
		&record.EventID,
		&record.EventName,
		&record.RecipientID,
		&record.Type,
		&record.Message,
		&timestamp,
		&read,
	); err != nil {
		return storage.NotificationRecord{}, err
	}
	record.Timestamp = fromMillis(timestamp)
	record.Read = read != 0
	return record, nil
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
