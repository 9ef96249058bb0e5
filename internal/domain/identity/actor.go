// Package identity describes the acting principal resolved by the external
// identity/relationship provider. Registration, login and session handling
// live outside this system; the workflow only consumes the resolved actor.
package identity

import (
	"context"

	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ROLE
// ═══════════════════════════════════════════════════════════════════════════

// Role defines the actor's role on the platform.
type Role string

const (
	// RoleStudent - a student applying for internships.
	RoleStudent Role = "STUDENT"
	// RoleCompany - a company representative (primary contact of a company).
	RoleCompany Role = "COMPANY"
	// RoleFaculty - an academic validator affiliated with a faculty.
	RoleFaculty Role = "FACULTY"
	// RoleAdmin - a platform administrator with global scope.
	RoleAdmin Role = "ADMIN"
)

// IsValid checks that the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleCompany, RoleFaculty, RoleAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", shared.ErrInvalidRole
	}
	return r, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// ACTOR
// ═══════════════════════════════════════════════════════════════════════════

// Actor is the acting principal for a single request, with the relationships
// it owns. The identity provider resolves sessions into this shape; the
// workflow engine never sees credentials.
type Actor struct {
	// ID - the platform user ID of the principal.
	ID shared.UserID

	// Role - the actor's role, which scopes every workflow operation.
	Role Role

	// DisplayName - human-readable name, used in notification messages.
	DisplayName string

	// CompanyID - the company this actor represents (company role only).
	CompanyID shared.CompanyID

	// FacultyID - the academic affiliation of the actor (faculty role only).
	FacultyID shared.FacultyID
}

// IsStudent returns true for student actors.
func (a Actor) IsStudent() bool { return a.Role == RoleStudent }

// IsCompany returns true for company representative actors.
func (a Actor) IsCompany() bool { return a.Role == RoleCompany }

// IsFaculty returns true for academic validator actors.
func (a Actor) IsFaculty() bool { return a.Role == RoleFaculty }

// IsAdmin returns true for platform administrator actors.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Validate checks the actor carries the fields its role requires.
func (a Actor) Validate() error {
	if a.ID.IsEmpty() {
		return shared.NewDomainError("identity", "Validate", shared.ErrEmptyValue, "actor ID is required")
	}
	if !a.Role.IsValid() {
		return shared.ErrInvalidRole
	}
	if a.Role == RoleCompany && a.CompanyID.IsEmpty() {
		return shared.NewDomainError("identity", "Validate", shared.ErrEmptyValue, "company actor requires a company ID")
	}
	if a.Role == RoleFaculty && a.FacultyID.IsEmpty() {
		return shared.NewDomainError("identity", "Validate", shared.ErrEmptyValue, "faculty actor requires an affiliation")
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// PROVIDER
// ═══════════════════════════════════════════════════════════════════════════

// Provider resolves the current actor from the request context.
// Implementations live at the interface layer (session gateway, test stubs).
type Provider interface {
	// CurrentActor returns the acting principal for this context.
	// Returns shared.ErrNoActor (Unauthenticated kind) when no valid
	// actor context exists.
	CurrentActor(ctx context.Context) (Actor, error)
}

// ctxKey is the context key for the actor.
type ctxKey struct{}

// WithActor returns a new context with the actor attached.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// FromContext retrieves the actor from context.
func FromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(ctxKey{}).(Actor)
	return actor, ok
}

// ContextProvider is a Provider that reads the actor previously attached to
// the context (by HTTP middleware or by tests).
type ContextProvider struct{}

// NewContextProvider creates a new ContextProvider.
func NewContextProvider() ContextProvider {
	return ContextProvider{}
}

// CurrentActor implements Provider.
func (ContextProvider) CurrentActor(ctx context.Context) (Actor, error) {
	actor, ok := FromContext(ctx)
	if !ok {
		return Actor{}, shared.ErrNoActor
	}
	if err := actor.Validate(); err != nil {
		return Actor{}, shared.WrapError("identity", "CurrentActor", shared.ErrUnauthenticated, "invalid actor context", err)
	}
	return actor, nil
}
