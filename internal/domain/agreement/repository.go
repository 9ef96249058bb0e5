package agreement

import (
	"context"

	"github.com/stagehub/internship-hub/internal/domain/application"
	"github.com/stagehub/internship-hub/internal/domain/notification"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the storage contract for agreements.
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines the storage operations for agreements.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Create persists a new agreement.
	// Returns shared.ErrAgreementExists when a non-rejected agreement
	// already exists for the same application.
	Create(ctx context.Context, ag *Agreement) error

	// GetByID returns an agreement by ID.
	// Returns shared.ErrAgreementNotFound if no such agreement exists.
	GetByID(ctx context.Context, id shared.AgreementID) (*Agreement, error)

	// GetByIDForUpdate returns an agreement by ID with an exclusive row
	// lock. Must be called inside a unit of work.
	GetByIDForUpdate(ctx context.Context, id shared.AgreementID) (*Agreement, error)

	// GetActiveByApplicationID returns the non-rejected agreement for an
	// application, if one exists.
	// Returns shared.ErrAgreementNotFound if none exists.
	GetActiveByApplicationID(ctx context.Context, applicationID shared.ApplicationID) (*Agreement, error)

	// Update persists changes to an existing agreement.
	// Returns shared.ErrAgreementNotFound if no such agreement exists.
	Update(ctx context.Context, ag *Agreement) error

	// ─────────────────────────────────────────────────────────────────────────
	// Scoped Listings
	// ─────────────────────────────────────────────────────────────────────────

	// ListAll returns all agreements, newest first.
	ListAll(ctx context.Context, opts ListOptions) ([]*Agreement, error)

	// ListByApprovalStatus returns agreements in the given approval
	// state, newest first.
	ListByApprovalStatus(ctx context.Context, status ApprovalStatus, opts ListOptions) ([]*Agreement, error)

	// ListPendingValidationForFaculty returns agreements awaiting
	// faculty validation whose student belongs to the given faculty and
	// that are either unclaimed or claimed by the given validator.
	ListPendingValidationForFaculty(ctx context.Context, facultyID shared.FacultyID, validatorID shared.UserID, opts ListOptions) ([]*Agreement, error)

	// ListByStudent returns agreements whose application belongs to the
	// given student.
	ListByStudent(ctx context.Context, studentID shared.UserID, opts ListOptions) ([]*Agreement, error)

	// ListByCompanyOwner returns agreements whose application targets an
	// offer owned by the given company user.
	ListByCompanyOwner(ctx context.Context, ownerID shared.UserID, opts ListOptions) ([]*Agreement, error)
}

// ListOptions carries pagination parameters for listings.
type ListOptions struct {
	Offset int
	Limit  int
}

// DefaultListOptions returns the default pagination parameters.
func DefaultListOptions() ListOptions {
	return ListOptions{Offset: 0, Limit: shared.DefaultPageSize}
}

// FromPagination converts shared pagination into list options.
func FromPagination(p shared.Pagination) ListOptions {
	return ListOptions{Offset: p.Offset(), Limit: p.Limit()}
}

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK
// ══════════════════════════════════════════════════════════════════════════════

// UnitOfWork groups repository operations into a single transaction so that
// a state transition, its application-side effects and its notification
// intents commit or roll back together.
type UnitOfWork interface {
	// Agreements returns the agreement repository bound to the transaction.
	Agreements() Repository

	// Applications returns the application repository bound to the transaction.
	Applications() application.Repository

	// Notifications returns the notification repository bound to the transaction.
	Notifications() notification.Repository

	// Commit commits the transaction.
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction. Safe to call after Commit.
	Rollback(ctx context.Context) error
}

// UnitOfWorkFactory creates units of work.
type UnitOfWorkFactory interface {
	// Begin starts a new transaction.
	Begin(ctx context.Context) (UnitOfWork, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// EXTERNAL SERVICES
// ══════════════════════════════════════════════════════════════════════════════

// DocumentGenerator produces the agreement document from an accepted
// application. Called before the agreement is persisted; a failure aborts
// creation.
type DocumentGenerator interface {
	// Generate renders the document and returns an opaque reference to it.
	Generate(ctx context.Context, app *application.Application) (string, error)
}
