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
// SIGN AGREEMENT COMMAND
// Records one party's signature. The signature slot is derived from the
// actor's relationship to the agreement, never from request input. Once all
// three slots are filled the agreement becomes SIGNED regardless of its
// position in the approval pipeline.
// ══════════════════════════════════════════════════════════════════════════════

// SignAgreementCommand contains the data to sign an agreement.
type SignAgreementCommand struct {
	// AgreementID is the agreement being signed.
	AgreementID string
}

// Validate validates the command.
func (c SignAgreementCommand) Validate() error {
	if c.AgreementID == "" {
		return errors.New("sign_agreement: agreement_id is required")
	}
	if !shared.AgreementID(c.AgreementID).IsValid() {
		return fmt.Errorf("sign_agreement: invalid agreement_id: %s", c.AgreementID)
	}
	return nil
}

// SignAgreementResult contains the result of signing.
type SignAgreementResult struct {
	// Agreement is the agreement after signing.
	Agreement *agreement.Agreement

	// Slot is the signature slot the actor filled.
	Slot agreement.SignatureSlot

	// FullySigned is true when this signature was the last of the three.
	FullySigned bool

	// SignedAt is when the signature was recorded.
	SignedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SignAgreementHandler handles the SignAgreementCommand.
type SignAgreementHandler struct {
	actors     identity.Provider
	uowFactory agreement.UnitOfWorkFactory
	policy     *agreement.Policy
	ids        shared.IDGenerator
	publisher  shared.EventPublisher
}

// NewSignAgreementHandler creates a new SignAgreementHandler.
func NewSignAgreementHandler(
	actors identity.Provider,
	uowFactory agreement.UnitOfWorkFactory,
	policy *agreement.Policy,
	ids shared.IDGenerator,
	publisher shared.EventPublisher,
) *SignAgreementHandler {
	return &SignAgreementHandler{
		actors:     actors,
		uowFactory: uowFactory,
		policy:     policy,
		ids:        ids,
		publisher:  publisher,
	}
}

// Handle executes the sign agreement command.
func (h *SignAgreementHandler) Handle(ctx context.Context, cmd SignAgreementCommand) (*SignAgreementResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("agreement", "Sign", shared.ErrInvalidInput, "validation failed", err)
	}

	actor, err := h.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}

	uow, err := h.uowFactory.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("sign_agreement: begin transaction: %w", err)
	}
	defer uow.Rollback(ctx)

	ag, err := uow.Agreements().GetByIDForUpdate(ctx, shared.AgreementID(cmd.AgreementID))
	if err != nil {
		return nil, fmt.Errorf("sign_agreement: load agreement: %w", err)
	}

	app, err := uow.Applications().GetByID(ctx, ag.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("sign_agreement: load application: %w", err)
	}

	slot, ok := h.policy.SlotFor(actor, ag, app)
	if !ok {
		return nil, shared.ErrNotAuthorizedToSign
	}

	now := time.Now().UTC()
	if err := ag.Sign(slot, now); err != nil {
		return nil, err
	}
	fullySigned := ag.Signatures.AllSigned()

	if err := uow.Agreements().Update(ctx, ag); err != nil {
		return nil, fmt.Errorf("sign_agreement: persist agreement: %w", err)
	}

	recipients := signatureNotificationRecipients(actor, ag, app)
	typ := notification.TypeAgreementSigned
	message := fmt.Sprintf("%s signed the internship agreement for %q (%d/3 signatures).",
		actorLabel(actor), app.OfferTitle, ag.Signatures.Count())
	if fullySigned {
		typ = notification.TypeAgreementFullySigned
		message = fmt.Sprintf("The internship agreement for %q is now fully signed.", app.OfferTitle)
	}
	for _, recipient := range recipients {
		if err := queueNotification(ctx, uow.Notifications(), h.ids, recipient, typ, message, agreementLink(ag.ID), now); err != nil {
			return nil, fmt.Errorf("sign_agreement: %w", err)
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("sign_agreement: commit: %w", err)
	}

	_ = h.publisher.Publish(shared.NewAgreementSignedEvent(
		ag.ID.String(), actor.ID.String(), slot.String(), fullySigned))

	return &SignAgreementResult{Agreement: ag, Slot: slot, FullySigned: fullySigned, SignedAt: now}, nil
}

// signatureNotificationRecipients returns the other involved parties: the
// student, the offer owner and the assigned validator, minus the signer.
func signatureNotificationRecipients(actor identity.Actor, ag *agreement.Agreement, app *application.Application) []shared.UserID {
	candidates := []shared.UserID{app.StudentID, app.CompanyOwnerID}
	if ag.FacultyValidatorID != nil {
		candidates = append(candidates, *ag.FacultyValidatorID)
	}
	recipients := make([]shared.UserID, 0, len(candidates))
	for _, id := range candidates {
		if id.IsEmpty() || id == actor.ID {
			continue
		}
		recipients = append(recipients, id)
	}
	return recipients
}

// actorLabel describes the signer in notification text.
func actorLabel(actor identity.Actor) string {
	if actor.DisplayName != "" {
		return actor.DisplayName
	}
	switch actor.Role {
	case identity.RoleStudent:
		return "The student"
	case identity.RoleCompany:
		return "The company"
	case identity.RoleFaculty:
		return "The faculty supervisor"
	default:
		return "A party"
	}
}
