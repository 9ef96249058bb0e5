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
// VALIDATE AGREEMENT COMMAND
// Records the faculty decision on an agreement awaiting validation. The first
// faculty member of the student's faculty to decide claims the agreement and
// becomes its assigned validator.
// ══════════════════════════════════════════════════════════════════════════════

// ValidateAgreementCommand contains the faculty decision.
type ValidateAgreementCommand struct {
	// AgreementID is the agreement being decided.
	AgreementID string

	// Accept is true to advance the agreement to admin approval,
	// false to reject it.
	Accept bool

	// Reason explains a rejection. Required (non-blank) when Accept is
	// false, ignored otherwise.
	Reason string
}

// Validate validates the command.
func (c ValidateAgreementCommand) Validate() error {
	if c.AgreementID == "" {
		return errors.New("validate_agreement: agreement_id is required")
	}
	if !shared.AgreementID(c.AgreementID).IsValid() {
		return fmt.Errorf("validate_agreement: invalid agreement_id: %s", c.AgreementID)
	}
	return nil
}

// ValidateAgreementResult contains the result of the faculty decision.
type ValidateAgreementResult struct {
	// Agreement is the agreement after the decision.
	Agreement *agreement.Agreement

	// Claimed is true when this call assigned the deciding validator.
	Claimed bool

	// DecidedAt is when the decision was recorded.
	DecidedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ValidateAgreementHandler handles the ValidateAgreementCommand.
type ValidateAgreementHandler struct {
	actors     identity.Provider
	uowFactory agreement.UnitOfWorkFactory
	policy     *agreement.Policy
	ids        shared.IDGenerator
	publisher  shared.EventPublisher
}

// NewValidateAgreementHandler creates a new ValidateAgreementHandler.
func NewValidateAgreementHandler(
	actors identity.Provider,
	uowFactory agreement.UnitOfWorkFactory,
	policy *agreement.Policy,
	ids shared.IDGenerator,
	publisher shared.EventPublisher,
) *ValidateAgreementHandler {
	return &ValidateAgreementHandler{
		actors:     actors,
		uowFactory: uowFactory,
		policy:     policy,
		ids:        ids,
		publisher:  publisher,
	}
}

// Handle executes the validate agreement command.
func (h *ValidateAgreementHandler) Handle(ctx context.Context, cmd ValidateAgreementCommand) (*ValidateAgreementResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("agreement", "Validate", shared.ErrInvalidInput, "validation failed", err)
	}

	actor, err := h.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}

	uow, err := h.uowFactory.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("validate_agreement: begin transaction: %w", err)
	}
	defer uow.Rollback(ctx)

	ag, err := uow.Agreements().GetByIDForUpdate(ctx, shared.AgreementID(cmd.AgreementID))
	if err != nil {
		return nil, fmt.Errorf("validate_agreement: load agreement: %w", err)
	}

	app, err := uow.Applications().GetByID(ctx, ag.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("validate_agreement: load application: %w", err)
	}

	if !h.policy.CanValidate(actor, ag, app) {
		return nil, shared.ErrNotAuthorizedToValidate
	}

	now := time.Now().UTC()
	claimed := false
	if ag.FacultyValidatorID == nil {
		ag.AssignValidator(actor.ID, now)
		claimed = true
	}

	if err := ag.Validate(cmd.Accept, cmd.Reason, now); err != nil {
		return nil, err
	}

	if err := uow.Agreements().Update(ctx, ag); err != nil {
		return nil, fmt.Errorf("validate_agreement: persist agreement: %w", err)
	}

	typ := notification.TypeAgreementValidated
	message := fmt.Sprintf("Your internship agreement for %q was validated by the faculty and awaits administrative approval.", app.OfferTitle)
	eventType := shared.EventAgreementFacultyValidated
	if !cmd.Accept {
		typ = notification.TypeAgreementRejected
		message = fmt.Sprintf("Your internship agreement for %q was rejected by the faculty: %s", app.OfferTitle, cmd.Reason)
		eventType = shared.EventAgreementFacultyRejected
	}
	if err := queueNotification(ctx, uow.Notifications(), h.ids, app.StudentID, typ, message, agreementLink(ag.ID), now); err != nil {
		return nil, fmt.Errorf("validate_agreement: %w", err)
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("validate_agreement: commit: %w", err)
	}

	_ = h.publisher.Publish(shared.NewAgreementReviewedEvent(
		eventType, ag.ID.String(), actor.ID.String(), cmd.Accept, cmd.Reason, ag.Status().String()))

	return &ValidateAgreementResult{Agreement: ag, Claimed: claimed, DecidedAt: now}, nil
}
