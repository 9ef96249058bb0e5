// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/stagehub/internship-hub/internal/domain/notification"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// queueNotification records an in-app notification inside the current unit
// of work so that the record commits atomically with the transition that
// produced it. Live delivery happens later, from the dispatcher.
func queueNotification(
	ctx context.Context,
	repo notification.Repository,
	ids shared.IDGenerator,
	recipientID shared.UserID,
	typ notification.Type,
	message, link string,
	now time.Time,
) error {
	n := notification.New(ids.NewID(), recipientID, typ, message, link, now)
	if err := repo.Create(ctx, n); err != nil {
		return fmt.Errorf("queue %s notification: %w", typ, err)
	}
	return nil
}

// agreementLink builds the in-app link to an agreement.
func agreementLink(id shared.AgreementID) string {
	return "/agreements/" + id.String()
}

// applicationLink builds the in-app link to an application.
func applicationLink(id shared.ApplicationID) string {
	return "/applications/" + id.String()
}
