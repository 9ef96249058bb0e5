package agreement

import (
	"github.com/stagehub/internship-hub/internal/domain/application"
	"github.com/stagehub/internship-hub/internal/domain/identity"
)

// ═══════════════════════════════════════════════════════════════════════════
// AUTHORIZATION POLICY
// ═══════════════════════════════════════════════════════════════════════════

// Policy centralizes the relationship-scoped authorization rules for
// agreements. Every rule is a predicate over the acting user, the agreement
// and its originating application; command and query handlers call these
// instead of re-deriving role checks inline.
type Policy struct{}

// NewPolicy creates the authorization policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// isStudentOwner - the actor is the student who submitted the application.
func (p *Policy) isStudentOwner(actor identity.Actor, app *application.Application) bool {
	return actor.IsStudent() && app.IsOwnedByStudent(actor.ID)
}

// isCompanyOwner - the actor is the company user who owns the offer.
func (p *Policy) isCompanyOwner(actor identity.Actor, app *application.Application) bool {
	return actor.IsCompany() && app.IsOwnedByCompanyUser(actor.ID)
}

// isSameAffiliation - a faculty actor affiliated with the student's faculty.
func (p *Policy) isSameAffiliation(actor identity.Actor, app *application.Application) bool {
	return actor.IsFaculty() && !actor.FacultyID.IsEmpty() && actor.FacultyID == app.StudentFacultyID
}

// CanCreate - only admins and the owning company user may create an
// agreement from an application.
func (p *Policy) CanCreate(actor identity.Actor, app *application.Application) bool {
	return actor.IsAdmin() || p.isCompanyOwner(actor, app)
}

// CanView - admins see everything; the other roles see only agreements
// they are related to. An unassigned agreement is visible to any faculty
// member of the student's faculty, since any of them may still claim it.
func (p *Policy) CanView(actor identity.Actor, ag *Agreement, app *application.Application) bool {
	switch {
	case actor.IsAdmin():
		return true
	case p.isStudentOwner(actor, app):
		return true
	case p.isCompanyOwner(actor, app):
		return true
	case actor.IsFaculty():
		if ag.IsAssignedValidator(actor.ID) {
			return true
		}
		return ag.FacultyValidatorID == nil && p.isSameAffiliation(actor, app)
	default:
		return false
	}
}

// CanValidate - the assigned validator, or, while the agreement is
// unclaimed, any faculty member of the student's faculty (validating claims
// the agreement).
func (p *Policy) CanValidate(actor identity.Actor, ag *Agreement, app *application.Application) bool {
	if !actor.IsFaculty() {
		return false
	}
	if ag.FacultyValidatorID == nil {
		return p.isSameAffiliation(actor, app)
	}
	return ag.IsAssignedValidator(actor.ID)
}

// CanApprove - admins only.
func (p *Policy) CanApprove(actor identity.Actor) bool {
	return actor.IsAdmin()
}

// SlotFor maps the actor to the signature slot they are entitled to fill,
// based on their relationship to the agreement. Returns false when the actor
// holds no slot on this agreement. Admins do not sign.
func (p *Policy) SlotFor(actor identity.Actor, ag *Agreement, app *application.Application) (SignatureSlot, bool) {
	switch {
	case p.isStudentOwner(actor, app):
		return SlotStudent, true
	case p.isCompanyOwner(actor, app):
		return SlotCompany, true
	case actor.IsFaculty() && ag.IsAssignedValidator(actor.ID):
		return SlotFaculty, true
	default:
		return "", false
	}
}
