package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stagehub/internship-hub/internal/domain/agreement"
	"github.com/stagehub/internship-hub/internal/domain/application"
	"github.com/stagehub/internship-hub/internal/domain/identity"
	"github.com/stagehub/internship-hub/internal/domain/notification"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DECIDE APPLICATION COMMAND
// Records the company's terminal hiring decision on an application. An
// accepted application becomes eligible for agreement creation.
// ══════════════════════════════════════════════════════════════════════════════

// DecideApplicationCommand contains the company decision.
type DecideApplicationCommand struct {
	// ApplicationID is the application being decided.
	ApplicationID string

	// Decision is ACCEPT or REJECT.
	Decision string
}

// Validate validates the command.
func (c DecideApplicationCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("decide_application: application_id is required")
	}
	if !shared.ApplicationID(c.ApplicationID).IsValid() {
		return fmt.Errorf("decide_application: invalid application_id: %s", c.ApplicationID)
	}
	if !application.Decision(c.Decision).IsValid() {
		return fmt.Errorf("decide_application: unknown decision: %s", c.Decision)
	}
	return nil
}

// DecideApplicationResult contains the result of the decision.
type DecideApplicationResult struct {
	// Application is the application after the decision.
	Application *application.Application

	// DecidedAt is when the decision was recorded.
	DecidedAt time.Time
}

// DecideApplicationHandler handles the DecideApplicationCommand.
type DecideApplicationHandler struct {
	actors     identity.Provider
	uowFactory agreement.UnitOfWorkFactory
	ids        shared.IDGenerator
	publisher  shared.EventPublisher
}

// NewDecideApplicationHandler creates a new DecideApplicationHandler.
func NewDecideApplicationHandler(
	actors identity.Provider,
	uowFactory agreement.UnitOfWorkFactory,
	ids shared.IDGenerator,
	publisher shared.EventPublisher,
) *DecideApplicationHandler {
	return &DecideApplicationHandler{
		actors:     actors,
		uowFactory: uowFactory,
		ids:        ids,
		publisher:  publisher,
	}
}

// Handle executes the decide application command.
func (h *DecideApplicationHandler) Handle(ctx context.Context, cmd DecideApplicationCommand) (*DecideApplicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "Decide", shared.ErrInvalidInput, "validation failed", err)
	}

	actor, err := h.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}

	uow, err := h.uowFactory.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("decide_application: begin transaction: %w", err)
	}
	defer uow.Rollback(ctx)

	app, err := uow.Applications().GetByIDForUpdate(ctx, shared.ApplicationID(cmd.ApplicationID))
	if err != nil {
		return nil, fmt.Errorf("decide_application: load application: %w", err)
	}

	if !actor.IsAdmin() && !(actor.IsCompany() && app.IsOwnedByCompanyUser(actor.ID)) {
		return nil, shared.NewDomainError("application", "Decide", shared.ErrForbidden,
			"only the offer owner may decide this application")
	}

	now := time.Now().UTC()
	decision := application.Decision(cmd.Decision)
	if err := app.RecordDecision(decision, now); err != nil {
		return nil, err
	}

	if err := uow.Applications().Update(ctx, app); err != nil {
		return nil, fmt.Errorf("decide_application: persist application: %w", err)
	}

	typ := notification.TypeApplicationAccepted
	message := fmt.Sprintf("Your application for %q was accepted. An internship agreement will be prepared.", app.OfferTitle)
	if decision == application.DecisionReject {
		typ = notification.TypeApplicationRejected
		message = fmt.Sprintf("Your application for %q was rejected.", app.OfferTitle)
	}
	if err := queueNotification(ctx, uow.Notifications(), h.ids, app.StudentID, typ, message, applicationLink(app.ID), now); err != nil {
		return nil, fmt.Errorf("decide_application: %w", err)
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("decide_application: commit: %w", err)
	}

	_ = h.publisher.Publish(shared.NewApplicationDecidedEvent(
		app.ID.String(), app.StudentID.String(), decision.String(), actor.ID.String()))

	return &DecideApplicationResult{Application: app, DecidedAt: now}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MARK APPLICATION VIEWED COMMAND
// Fired when the offer owner first opens an application. Idempotent.
// ══════════════════════════════════════════════════════════════════════════════

// MarkApplicationViewedCommand contains the application being opened.
type MarkApplicationViewedCommand struct {
	// ApplicationID is the application being opened.
	ApplicationID string
}

// Validate validates the command.
func (c MarkApplicationViewedCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("mark_viewed: application_id is required")
	}
	if !shared.ApplicationID(c.ApplicationID).IsValid() {
		return fmt.Errorf("mark_viewed: invalid application_id: %s", c.ApplicationID)
	}
	return nil
}

// MarkApplicationViewedResult contains the result.
type MarkApplicationViewedResult struct {
	// Application is the application after the call.
	Application *application.Application

	// Changed is true when this call performed the PENDING to VIEWED
	// transition; false when the application had already moved on.
	Changed bool
}

// MarkApplicationViewedHandler handles the MarkApplicationViewedCommand.
type MarkApplicationViewedHandler struct {
	actors     identity.Provider
	uowFactory agreement.UnitOfWorkFactory
	ids        shared.IDGenerator
	publisher  shared.EventPublisher
}

// NewMarkApplicationViewedHandler creates a new MarkApplicationViewedHandler.
func NewMarkApplicationViewedHandler(
	actors identity.Provider,
	uowFactory agreement.UnitOfWorkFactory,
	ids shared.IDGenerator,
	publisher shared.EventPublisher,
) *MarkApplicationViewedHandler {
	return &MarkApplicationViewedHandler{
		actors:     actors,
		uowFactory: uowFactory,
		ids:        ids,
		publisher:  publisher,
	}
}

// Handle executes the mark viewed command.
func (h *MarkApplicationViewedHandler) Handle(ctx context.Context, cmd MarkApplicationViewedCommand) (*MarkApplicationViewedResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("application", "MarkViewed", shared.ErrInvalidInput, "validation failed", err)
	}

	actor, err := h.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}

	uow, err := h.uowFactory.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("mark_viewed: begin transaction: %w", err)
	}
	defer uow.Rollback(ctx)

	app, err := uow.Applications().GetByIDForUpdate(ctx, shared.ApplicationID(cmd.ApplicationID))
	if err != nil {
		return nil, fmt.Errorf("mark_viewed: load application: %w", err)
	}

	if !actor.IsAdmin() && !(actor.IsCompany() && app.IsOwnedByCompanyUser(actor.ID)) {
		return nil, shared.NewDomainError("application", "MarkViewed", shared.ErrForbidden,
			"only the offer owner may open this application")
	}

	now := time.Now().UTC()
	changed := app.MarkViewed(now)
	if !changed {
		return &MarkApplicationViewedResult{Application: app, Changed: false}, nil
	}

	if err := uow.Applications().Update(ctx, app); err != nil {
		return nil, fmt.Errorf("mark_viewed: persist application: %w", err)
	}

	if err := queueNotification(ctx, uow.Notifications(), h.ids, app.StudentID,
		notification.TypeApplicationViewed,
		fmt.Sprintf("%s viewed your application for %q.", app.CompanyName, app.OfferTitle),
		applicationLink(app.ID), now); err != nil {
		return nil, fmt.Errorf("mark_viewed: %w", err)
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("mark_viewed: commit: %w", err)
	}

	_ = h.publisher.Publish(shared.NewApplicationViewedEvent(
		app.ID.String(), app.StudentID.String(), actor.ID.String()))

	return &MarkApplicationViewedResult{Application: app, Changed: true}, nil
}
