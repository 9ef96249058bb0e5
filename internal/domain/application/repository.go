package application

import (
	"context"

	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Implementations live in infrastructure/persistence.
// ═══════════════════════════════════════════════════════════════════════════

// Repository defines storage operations for applications.
type Repository interface {
	// Create stores a new application.
	// Returns shared.ErrAlreadyExists if the ID is taken.
	Create(ctx context.Context, app *Application) error

	// GetByID returns an application by ID.
	// Returns shared.ErrApplicationNotFound if absent.
	GetByID(ctx context.Context, id shared.ApplicationID) (*Application, error)

	// GetByIDForUpdate returns an application by ID with an exclusive lock
	// held for the remainder of the enclosing transaction. Outside a
	// transaction it behaves like GetByID.
	GetByIDForUpdate(ctx context.Context, id shared.ApplicationID) (*Application, error)

	// Update persists changes to an existing application.
	// Returns shared.ErrApplicationNotFound if absent.
	Update(ctx context.Context, app *Application) error

	// GetByIDs returns the applications matching the given IDs. Missing
	// IDs are skipped, not errors.
	GetByIDs(ctx context.Context, ids []shared.ApplicationID) ([]*Application, error)

	// ListByStudent returns applications submitted by the given student,
	// newest first.
	ListByStudent(ctx context.Context, studentID shared.UserID, opts ListOptions) ([]*Application, error)

	// ListByCompanyOwner returns applications against offers owned by the
	// given company user, newest first.
	ListByCompanyOwner(ctx context.Context, ownerID shared.UserID, opts ListOptions) ([]*Application, error)

	// ListByStatus returns applications in the given status, oldest first.
	ListByStatus(ctx context.Context, status Status, opts ListOptions) ([]*Application, error)
}

// ListOptions contains pagination and sorting parameters.
type ListOptions struct {
	// Offset - offset for pagination.
	Offset int

	// Limit - maximum number of records.
	Limit int
}

// DefaultListOptions returns the default options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Offset: 0,
		Limit:  shared.DefaultPageSize,
	}
}

// FromPagination builds ListOptions from a shared Pagination value.
func FromPagination(p shared.Pagination) ListOptions {
	return ListOptions{
		Offset: p.Offset(),
		Limit:  p.Limit(),
	}
}
