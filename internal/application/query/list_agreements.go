package query

import (
	"context"
	"fmt"

	"github.com/stagehub/internship-hub/internal/domain/agreement"
	"github.com/stagehub/internship-hub/internal/domain/application"
	"github.com/stagehub/internship-hub/internal/domain/identity"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST AGREEMENTS QUERY
// Role-scoped listings. Each actor only ever sees agreements inside their
// relationship set:
//
//	student - agreements on their own applications
//	company - agreements on applications to their offers
//	faculty - the validation queue of their faculty (unclaimed agreements
//	          plus those they have claimed)
//	admin   - everything, optionally filtered by approval status
// ══════════════════════════════════════════════════════════════════════════════

// ListAgreementsQuery contains listing parameters.
type ListAgreementsQuery struct {
	// Status is an optional approval status filter. Admin only; other
	// roles have a fixed scope and reject the filter.
	Status string

	// Pagination parameters.
	Page     int
	PageSize int
}

// Validate validates the query.
func (q ListAgreementsQuery) Validate() error {
	if q.Status != "" && !agreement.ApprovalStatus(q.Status).IsValid() {
		return fmt.Errorf("list_agreements: unknown status filter: %s", q.Status)
	}
	return nil
}

// ListAgreementsResult contains one page of agreements.
type ListAgreementsResult struct {
	Agreements []AgreementDTO `json:"agreements"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}

// ListAgreementsHandler handles the ListAgreementsQuery.
type ListAgreementsHandler struct {
	actors       identity.Provider
	agreements   agreement.Repository
	applications application.Repository
}

// NewListAgreementsHandler creates a new ListAgreementsHandler.
func NewListAgreementsHandler(
	actors identity.Provider,
	agreements agreement.Repository,
	applications application.Repository,
) *ListAgreementsHandler {
	return &ListAgreementsHandler{
		actors:       actors,
		agreements:   agreements,
		applications: applications,
	}
}

// Handle executes the query.
func (h *ListAgreementsHandler) Handle(ctx context.Context, q ListAgreementsQuery) (*ListAgreementsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("agreement", "List", shared.ErrInvalidInput, "validation failed", err)
	}

	actor, err := h.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}

	page := shared.NewPagination(q.Page, q.PageSize)
	opts := agreement.FromPagination(page)

	var ags []*agreement.Agreement
	switch {
	case actor.IsAdmin():
		if q.Status != "" {
			ags, err = h.agreements.ListByApprovalStatus(ctx, agreement.ApprovalStatus(q.Status), opts)
		} else {
			ags, err = h.agreements.ListAll(ctx, opts)
		}
	case actor.IsFaculty():
		if q.Status != "" {
			return nil, shared.NewDomainError("agreement", "List", shared.ErrForbidden,
				"status filter is reserved for administrators")
		}
		ags, err = h.agreements.ListPendingValidationForFaculty(ctx, actor.FacultyID, actor.ID, opts)
	case actor.IsStudent():
		if q.Status != "" {
			return nil, shared.NewDomainError("agreement", "List", shared.ErrForbidden,
				"status filter is reserved for administrators")
		}
		ags, err = h.agreements.ListByStudent(ctx, actor.ID, opts)
	case actor.IsCompany():
		if q.Status != "" {
			return nil, shared.NewDomainError("agreement", "List", shared.ErrForbidden,
				"status filter is reserved for administrators")
		}
		ags, err = h.agreements.ListByCompanyOwner(ctx, actor.ID, opts)
	default:
		return nil, shared.ErrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("list_agreements: %w", err)
	}

	apps, err := h.hydrateApplications(ctx, ags)
	if err != nil {
		return nil, err
	}

	result := &ListAgreementsResult{
		Agreements: make([]AgreementDTO, 0, len(ags)),
		Page:       page.Page,
		PageSize:   page.PageSize,
	}
	for _, ag := range ags {
		result.Agreements = append(result.Agreements, ToAgreementDTO(ag, apps[ag.ApplicationID]))
	}
	return result, nil
}

// hydrateApplications batch-loads the applications behind a page of
// agreements for the denormalized list fields.
func (h *ListAgreementsHandler) hydrateApplications(ctx context.Context, ags []*agreement.Agreement) (map[shared.ApplicationID]*application.Application, error) {
	if len(ags) == 0 {
		return nil, nil
	}
	ids := make([]shared.ApplicationID, 0, len(ags))
	for _, ag := range ags {
		ids = append(ids, ag.ApplicationID)
	}
	apps, err := h.applications.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list_agreements: hydrate applications: %w", err)
	}
	byID := make(map[shared.ApplicationID]*application.Application, len(apps))
	for _, app := range apps {
		byID[app.ID] = app
	}
	return byID, nil
}
