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
// CREATE AGREEMENT COMMAND
// Generates the agreement document for an accepted application and opens the
// approval workflow. Idempotent: when a non-rejected agreement already exists
// for the application, it is returned unchanged instead of failing.
// ══════════════════════════════════════════════════════════════════════════════

// CreateAgreementCommand contains the data to create an agreement.
type CreateAgreementCommand struct {
	// ApplicationID is the accepted application to open the workflow for.
	ApplicationID string
}

// Validate validates the command.
func (c CreateAgreementCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("create_agreement: application_id is required")
	}
	if !shared.ApplicationID(c.ApplicationID).IsValid() {
		return fmt.Errorf("create_agreement: invalid application_id: %s", c.ApplicationID)
	}
	return nil
}

// CreateAgreementResult contains the result of creating an agreement.
type CreateAgreementResult struct {
	// Agreement is the created (or pre-existing) agreement.
	Agreement *agreement.Agreement

	// AlreadyExisted is true when a non-rejected agreement already
	// existed and was returned instead of creating a new one.
	AlreadyExisted bool

	// CreatedAt is when the command was executed.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CreateAgreementHandler handles the CreateAgreementCommand.
type CreateAgreementHandler struct {
	actors       identity.Provider
	applications application.Repository
	agreements   agreement.Repository
	uowFactory   agreement.UnitOfWorkFactory
	docGen       agreement.DocumentGenerator
	policy       *agreement.Policy
	ids          shared.IDGenerator
	publisher    shared.EventPublisher
}

// NewCreateAgreementHandler creates a new CreateAgreementHandler.
func NewCreateAgreementHandler(
	actors identity.Provider,
	applications application.Repository,
	agreements agreement.Repository,
	uowFactory agreement.UnitOfWorkFactory,
	docGen agreement.DocumentGenerator,
	policy *agreement.Policy,
	ids shared.IDGenerator,
	publisher shared.EventPublisher,
) *CreateAgreementHandler {
	return &CreateAgreementHandler{
		actors:       actors,
		applications: applications,
		agreements:   agreements,
		uowFactory:   uowFactory,
		docGen:       docGen,
		policy:       policy,
		ids:          ids,
		publisher:    publisher,
	}
}

// Handle executes the create agreement command.
//
// The document is generated before anything is persisted: a generator
// failure leaves the application untouched. The persistence step then runs
// in a single transaction covering the new agreement, the application status
// flip and the student's notification.
func (h *CreateAgreementHandler) Handle(ctx context.Context, cmd CreateAgreementCommand) (*CreateAgreementResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("agreement", "Create", shared.ErrInvalidInput, "validation failed", err)
	}

	actor, err := h.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}

	appID := shared.ApplicationID(cmd.ApplicationID)
	app, err := h.applications.GetByID(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("create_agreement: load application: %w", err)
	}

	if !h.policy.CanCreate(actor, app) {
		return nil, shared.NewDomainError("agreement", "Create", shared.ErrForbidden,
			"only administrators or the offer owner may generate an agreement")
	}

	// Idempotence fast path: an active agreement already covers this
	// application.
	if existing, err := h.agreements.GetActiveByApplicationID(ctx, appID); err == nil {
		return &CreateAgreementResult{Agreement: existing, AlreadyExisted: true, CreatedAt: time.Now().UTC()}, nil
	} else if !errors.Is(err, shared.ErrAgreementNotFound) {
		return nil, fmt.Errorf("create_agreement: check existing agreement: %w", err)
	}

	if app.Status != application.StatusAccepted {
		return nil, shared.NewDomainError("agreement", "Create", shared.ErrInvalidState,
			"application must be in ACCEPTED status, is "+app.Status.String())
	}

	// Slow external call, kept outside the transaction.
	docRef, err := h.docGen.Generate(ctx, app)
	if err != nil {
		return nil, shared.WrapError("agreement", "Create", shared.ErrExternalService,
			"agreement document generation failed", err)
	}

	now := time.Now().UTC()
	ag := agreement.New(shared.AgreementID(h.ids.NewID()), appID, docRef, now)

	uow, err := h.uowFactory.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create_agreement: begin transaction: %w", err)
	}
	defer uow.Rollback(ctx)

	lockedApp, err := uow.Applications().GetByIDForUpdate(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("create_agreement: lock application: %w", err)
	}

	if err := uow.Agreements().Create(ctx, ag); err != nil {
		if errors.Is(err, shared.ErrAgreementExists) {
			// Lost a concurrent race; surface the winner.
			_ = uow.Rollback(ctx)
			existing, getErr := h.agreements.GetActiveByApplicationID(ctx, appID)
			if getErr != nil {
				return nil, fmt.Errorf("create_agreement: load concurrent agreement: %w", getErr)
			}
			return &CreateAgreementResult{Agreement: existing, AlreadyExisted: true, CreatedAt: now}, nil
		}
		return nil, fmt.Errorf("create_agreement: persist agreement: %w", err)
	}

	if lockedApp.Status == application.StatusAccepted {
		if err := lockedApp.AwaitAgreement(now); err != nil {
			return nil, fmt.Errorf("create_agreement: flip application status: %w", err)
		}
		if err := uow.Applications().Update(ctx, lockedApp); err != nil {
			return nil, fmt.Errorf("create_agreement: update application: %w", err)
		}
	}

	if err := queueNotification(ctx, uow.Notifications(), h.ids, lockedApp.StudentID,
		notification.TypeAgreementCreated,
		fmt.Sprintf("Your internship agreement for %q has been generated and awaits faculty validation.", lockedApp.OfferTitle),
		agreementLink(ag.ID), now); err != nil {
		return nil, fmt.Errorf("create_agreement: %w", err)
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("create_agreement: commit: %w", err)
	}

	_ = h.publisher.Publish(shared.NewAgreementCreatedEvent(
		ag.ID.String(), appID.String(), lockedApp.StudentID.String(), docRef))

	return &CreateAgreementResult{Agreement: ag, CreatedAt: now}, nil
}
