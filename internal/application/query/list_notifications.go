package query

import (
	"context"
	"fmt"

	"github.com/stagehub/internship-hub/internal/domain/identity"
	"github.com/stagehub/internship-hub/internal/domain/notification"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST NOTIFICATIONS QUERY
// Returns the acting user's in-app notification feed, newest first.
// ══════════════════════════════════════════════════════════════════════════════

// ListNotificationsQuery contains listing parameters.
type ListNotificationsQuery struct {
	// UnreadOnly limits the feed to unread notifications.
	UnreadOnly bool

	// Pagination parameters.
	Page     int
	PageSize int
}

// ListNotificationsResult contains one page of the feed.
type ListNotificationsResult struct {
	Notifications []NotificationDTO `json:"notifications"`
	UnreadCount   int               `json:"unread_count"`
	Page          int               `json:"page"`
	PageSize      int               `json:"page_size"`
}

// ListNotificationsHandler handles the ListNotificationsQuery.
type ListNotificationsHandler struct {
	actors        identity.Provider
	notifications notification.Repository
}

// NewListNotificationsHandler creates a new ListNotificationsHandler.
func NewListNotificationsHandler(actors identity.Provider, notifications notification.Repository) *ListNotificationsHandler {
	return &ListNotificationsHandler{actors: actors, notifications: notifications}
}

// Handle executes the query.
func (h *ListNotificationsHandler) Handle(ctx context.Context, q ListNotificationsQuery) (*ListNotificationsResult, error) {
	actor, err := h.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}

	page := shared.NewPagination(q.Page, q.PageSize)
	items, err := h.notifications.ListForRecipient(ctx, actor.ID, notification.ListOptions{
		Offset:     page.Offset(),
		Limit:      page.Limit(),
		UnreadOnly: q.UnreadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("list_notifications: %w", err)
	}

	unread, err := h.notifications.CountUnread(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list_notifications: count unread: %w", err)
	}

	result := &ListNotificationsResult{
		Notifications: make([]NotificationDTO, 0, len(items)),
		UnreadCount:   unread,
		Page:          page.Page,
		PageSize:      page.PageSize,
	}
	for _, n := range items {
		result.Notifications = append(result.Notifications, toNotificationDTO(n))
	}
	return result, nil
}
