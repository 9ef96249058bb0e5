package notification

import (
	"context"
	"time"

	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines the storage operations for notifications.
type Repository interface {
	// Create persists a new notification.
	Create(ctx context.Context, n *Notification) error

	// GetByID returns a notification by ID.
	// Returns shared.ErrNotFound if no such notification exists.
	GetByID(ctx context.Context, id string) (*Notification, error)

	// ListForRecipient returns the recipient's notifications, newest first.
	ListForRecipient(ctx context.Context, recipientID shared.UserID, opts ListOptions) ([]*Notification, error)

	// CountUnread returns the recipient's unread notification count.
	CountUnread(ctx context.Context, recipientID shared.UserID) (int, error)

	// MarkRead marks a notification as read on behalf of its recipient.
	// Returns shared.ErrNotFound if the notification does not exist or
	// belongs to another recipient.
	MarkRead(ctx context.Context, id string, recipientID shared.UserID) error

	// ListUndelivered returns pending notifications for the dispatcher,
	// oldest first.
	ListUndelivered(ctx context.Context, limit int) ([]*Notification, error)

	// UpdateDelivery persists delivery bookkeeping fields.
	UpdateDelivery(ctx context.Context, n *Notification) error

	// PurgeRead deletes read notifications created before the cutoff.
	// Returns the number of notifications removed.
	PurgeRead(ctx context.Context, before time.Time) (int64, error)
}

// ListOptions carries pagination parameters for listings.
type ListOptions struct {
	Offset     int
	Limit      int
	UnreadOnly bool
}

// DefaultListOptions returns the default pagination parameters.
func DefaultListOptions() ListOptions {
	return ListOptions{Offset: 0, Limit: shared.DefaultPageSize}
}

// ══════════════════════════════════════════════════════════════════════════════
// LIVE CHANNEL
// ══════════════════════════════════════════════════════════════════════════════

// Channel pushes a notification to a live transport (e.g. a pub/sub topic
// consumed by connected clients). Implementations must be safe for
// concurrent use. Delivery is best-effort: callers log and move on when
// Send fails.
type Channel interface {
	// Send pushes the notification to the recipient's live feed.
	Send(ctx context.Context, n *Notification) error

	// Name identifies the channel in logs.
	Name() string
}
