package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/stagehub/internship-hub/internal/domain/notification"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const notificationColumns = `
	id, recipient_id, type, message, link,
	is_read, delivery_status, attempts, last_error,
	created_at, updated_at
`

// NotificationRepository implements notification.Repository for PostgreSQL.
type NotificationRepository struct {
	q Querier
}

// NewNotificationRepository creates a new NotificationRepository backed by
// the connection pool.
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{q: conn}
}

// newNotificationRepositoryWithQuerier binds the repository to a transaction.
func newNotificationRepositoryWithQuerier(q Querier) *NotificationRepository {
	return &NotificationRepository{q: q}
}

// Create creates a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.q.Exec(ctx, query,
		n.ID,
		n.RecipientID.String(),
		n.Type.String(),
		n.Message,
		n.Link,
		n.IsRead,
		string(n.DeliveryStatus),
		n.Attempts,
		n.LastError,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByID returns a notification by ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	return r.scanNotification(r.q.QueryRow(ctx, query, id))
}

// ListForRecipient returns the recipient's notifications, newest first.
func (r *NotificationRepository) ListForRecipient(ctx context.Context, recipientID shared.UserID, opts notification.ListOptions) ([]*notification.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1 AND ($2 = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC
		OFFSET $3 LIMIT $4
	`
	rows, err := r.q.Query(ctx, query, recipientID.String(), opts.UnreadOnly, opts.Offset, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		n, err := r.scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// CountUnread returns the recipient's unread notification count.
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID shared.UserID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`
	if err := r.q.QueryRow(ctx, query, recipientID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks a notification as read, scoped to its recipient.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string, recipientID shared.UserID) error {
	query := `
		UPDATE notifications SET is_read = TRUE, updated_at = NOW()
		WHERE id = $1 AND recipient_id = $2
	`
	tag, err := r.q.Exec(ctx, query, id, recipientID.String())
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotificationNotFound
	}
	return nil
}

// ListUndelivered returns pending notifications for the dispatcher, oldest first.
func (r *NotificationRepository) ListUndelivered(ctx context.Context, limit int) ([]*notification.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE delivery_status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list undelivered notifications: %w", err)
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		n, err := r.scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UpdateDelivery persists delivery bookkeeping fields.
func (r *NotificationRepository) UpdateDelivery(ctx context.Context, n *notification.Notification) error {
	query := `
		UPDATE notifications SET
			delivery_status = $1,
			attempts = $2,
			last_error = $3,
			updated_at = $4
		WHERE id = $5
	`
	tag, err := r.q.Exec(ctx, query,
		string(n.DeliveryStatus),
		n.Attempts,
		n.LastError,
		n.UpdatedAt,
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification delivery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotificationNotFound
	}
	return nil
}

// PurgeRead deletes read notifications created before the cutoff.
func (r *NotificationRepository) PurgeRead(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM notifications
		WHERE is_read = TRUE AND created_at < $1
	`
	tag, err := r.q.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) scanNotification(row rowScanner) (*notification.Notification, error) {
	var n notification.Notification
	var recipientID, typ, deliveryStatus string

	err := row.Scan(
		&n.ID,
		&recipientID,
		&typ,
		&n.Message,
		&n.Link,
		&n.IsRead,
		&deliveryStatus,
		&n.Attempts,
		&n.LastError,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}

	n.RecipientID = shared.UserID(recipientID)
	n.Type = notification.Type(typ)
	n.DeliveryStatus = notification.DeliveryStatus(deliveryStatus)

	return &n, nil
}
