package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/stagehub/internship-hub/internal/domain/agreement"
	"github.com/stagehub/internship-hub/internal/domain/application"
	"github.com/stagehub/internship-hub/internal/domain/identity"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET AGREEMENT QUERY
// Returns a single agreement, subject to the relationship-scoped view policy.
// ══════════════════════════════════════════════════════════════════════════════

// GetAgreementQuery identifies the agreement to fetch.
type GetAgreementQuery struct {
	// AgreementID - the agreement to fetch.
	AgreementID string
}

// Validate validates the query.
func (q GetAgreementQuery) Validate() error {
	if q.AgreementID == "" {
		return errors.New("get_agreement: agreement_id is required")
	}
	if !shared.AgreementID(q.AgreementID).IsValid() {
		return fmt.Errorf("get_agreement: invalid agreement_id: %s", q.AgreementID)
	}
	return nil
}

// GetAgreementHandler handles the GetAgreementQuery.
type GetAgreementHandler struct {
	actors       identity.Provider
	agreements   agreement.Repository
	applications application.Repository
	policy       *agreement.Policy
}

// NewGetAgreementHandler creates a new GetAgreementHandler.
func NewGetAgreementHandler(
	actors identity.Provider,
	agreements agreement.Repository,
	applications application.Repository,
	policy *agreement.Policy,
) *GetAgreementHandler {
	return &GetAgreementHandler{
		actors:       actors,
		agreements:   agreements,
		applications: applications,
		policy:       policy,
	}
}

// Handle executes the query. Actors outside the agreement's relationship
// set get shared.ErrNotAuthorizedToView, not a not-found, so existence is
// only revealed to related parties.
func (h *GetAgreementHandler) Handle(ctx context.Context, q GetAgreementQuery) (*AgreementDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("agreement", "Get", shared.ErrInvalidInput, "validation failed", err)
	}

	actor, err := h.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}

	ag, err := h.agreements.GetByID(ctx, shared.AgreementID(q.AgreementID))
	if err != nil {
		return nil, fmt.Errorf("get_agreement: %w", err)
	}

	app, err := h.applications.GetByID(ctx, ag.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("get_agreement: load application: %w", err)
	}

	if !h.policy.CanView(actor, ag, app) {
		return nil, shared.ErrNotAuthorizedToView
	}

	dto := ToAgreementDTO(ag, app)
	return &dto, nil
}
