package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stagehub/internship-hub/internal/domain/agreement"
	"github.com/stagehub/internship-hub/internal/domain/identity"
	"github.com/stagehub/internship-hub/internal/domain/notification"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPROVE AGREEMENT COMMAND
// Records the administrative decision on a faculty-validated agreement.
// ══════════════════════════════════════════════════════════════════════════════

// ApproveAgreementCommand contains the admin decision.
type ApproveAgreementCommand struct {
	// AgreementID is the agreement being decided.
	AgreementID string

	// Approve is true to approve the agreement, false to reject it.
	Approve bool

	// Reason explains a rejection. Required (non-blank) when Approve is
	// false, ignored otherwise.
	Reason string
}

// Validate validates the command.
func (c ApproveAgreementCommand) Validate() error {
	if c.AgreementID == "" {
		return errors.New("approve_agreement: agreement_id is required")
	}
	if !shared.AgreementID(c.AgreementID).IsValid() {
		return fmt.Errorf("approve_agreement: invalid agreement_id: %s", c.AgreementID)
	}
	return nil
}

// ApproveAgreementResult contains the result of the admin decision.
type ApproveAgreementResult struct {
	// Agreement is the agreement after the decision.
	Agreement *agreement.Agreement

	// DecidedAt is when the decision was recorded.
	DecidedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ApproveAgreementHandler handles the ApproveAgreementCommand.
type ApproveAgreementHandler struct {
	actors     identity.Provider
	uowFactory agreement.UnitOfWorkFactory
	policy     *agreement.Policy
	ids        shared.IDGenerator
	publisher  shared.EventPublisher
}

// NewApproveAgreementHandler creates a new ApproveAgreementHandler.
func NewApproveAgreementHandler(
	actors identity.Provider,
	uowFactory agreement.UnitOfWorkFactory,
	policy *agreement.Policy,
	ids shared.IDGenerator,
	publisher shared.EventPublisher,
) *ApproveAgreementHandler {
	return &ApproveAgreementHandler{
		actors:     actors,
		uowFactory: uowFactory,
		policy:     policy,
		ids:        ids,
		publisher:  publisher,
	}
}

// Handle executes the approve agreement command.
func (h *ApproveAgreementHandler) Handle(ctx context.Context, cmd ApproveAgreementCommand) (*ApproveAgreementResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("agreement", "Approve", shared.ErrInvalidInput, "validation failed", err)
	}

	actor, err := h.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	if !h.policy.CanApprove(actor) {
		return nil, shared.NewDomainError("agreement", "Approve", shared.ErrForbidden,
			"only administrators may approve agreements")
	}

	uow, err := h.uowFactory.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("approve_agreement: begin transaction: %w", err)
	}
	defer uow.Rollback(ctx)

	ag, err := uow.Agreements().GetByIDForUpdate(ctx, shared.AgreementID(cmd.AgreementID))
	if err != nil {
		return nil, fmt.Errorf("approve_agreement: load agreement: %w", err)
	}

	app, err := uow.Applications().GetByID(ctx, ag.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("approve_agreement: load application: %w", err)
	}

	now := time.Now().UTC()
	if err := ag.Approve(actor.ID, cmd.Approve, cmd.Reason, now); err != nil {
		return nil, err
	}

	if err := uow.Agreements().Update(ctx, ag); err != nil {
		return nil, fmt.Errorf("approve_agreement: persist agreement: %w", err)
	}

	typ := notification.TypeAgreementApproved
	message := fmt.Sprintf("Your internship agreement for %q has been approved. All parties may now sign it.", app.OfferTitle)
	eventType := shared.EventAgreementAdminApproved
	if !cmd.Approve {
		typ = notification.TypeAgreementRejected
		message = fmt.Sprintf("Your internship agreement for %q was rejected by the administration: %s", app.OfferTitle, cmd.Reason)
		eventType = shared.EventAgreementAdminRejected
	}
	if err := queueNotification(ctx, uow.Notifications(), h.ids, app.StudentID, typ, message, agreementLink(ag.ID), now); err != nil {
		return nil, fmt.Errorf("approve_agreement: %w", err)
	}
	// The offer owner follows the same outcome.
	if err := queueNotification(ctx, uow.Notifications(), h.ids, app.CompanyOwnerID, typ,
		fmt.Sprintf("The internship agreement for %q (%s) is now %s.", app.OfferTitle, app.StudentName, ag.Status()),
		agreementLink(ag.ID), now); err != nil {
		return nil, fmt.Errorf("approve_agreement: %w", err)
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("approve_agreement: commit: %w", err)
	}

	_ = h.publisher.Publish(shared.NewAgreementReviewedEvent(
		eventType, ag.ID.String(), actor.ID.String(), cmd.Approve, cmd.Reason, ag.Status().String()))

	return &ApproveAgreementResult{Agreement: ag, DecidedAt: now}, nil
}
