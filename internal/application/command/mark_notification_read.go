package command

import (
	"context"
	"errors"

	"github.com/stagehub/internship-hub/internal/domain/identity"
	"github.com/stagehub/internship-hub/internal/domain/notification"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// MarkNotificationReadCommand marks one of the actor's notifications as read.
type MarkNotificationReadCommand struct {
	// NotificationID is the notification being opened.
	NotificationID string
}

// Validate validates the command.
func (c MarkNotificationReadCommand) Validate() error {
	if c.NotificationID == "" {
		return errors.New("mark_notification_read: notification_id is required")
	}
	return nil
}

// MarkNotificationReadHandler handles the MarkNotificationReadCommand.
type MarkNotificationReadHandler struct {
	actors        identity.Provider
	notifications notification.Repository
}

// NewMarkNotificationReadHandler creates a new MarkNotificationReadHandler.
func NewMarkNotificationReadHandler(actors identity.Provider, notifications notification.Repository) *MarkNotificationReadHandler {
	return &MarkNotificationReadHandler{actors: actors, notifications: notifications}
}

// Handle executes the command. The repository scopes the update to the
// acting recipient, so opening another user's notification reads as not
// found rather than leaking its existence.
func (h *MarkNotificationReadHandler) Handle(ctx context.Context, cmd MarkNotificationReadCommand) error {
	if err := cmd.Validate(); err != nil {
		return shared.WrapError("notification", "MarkRead", shared.ErrInvalidInput, "validation failed", err)
	}
	actor, err := h.actors.CurrentActor(ctx)
	if err != nil {
		return err
	}
	return h.notifications.MarkRead(ctx, cmd.NotificationID, actor.ID)
}
