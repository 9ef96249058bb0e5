package agreement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stagehub/internship-hub/internal/domain/application"
	"github.com/stagehub/internship-hub/internal/domain/identity"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

var (
	studentID      = shared.UserID("aaaaaaaa-0000-4000-8000-000000000001")
	companyOwnerID = shared.UserID("aaaaaaaa-0000-4000-8000-000000000002")
	facultyUserID  = shared.UserID("aaaaaaaa-0000-4000-8000-000000000003")
	adminUserID    = shared.UserID("aaaaaaaa-0000-4000-8000-000000000004")
	outsiderID     = shared.UserID("aaaaaaaa-0000-4000-8000-000000000005")
)

func testApplication() *application.Application {
	return &application.Application{
		ID:               testApplicationID,
		StudentID:        studentID,
		StudentFacultyID: shared.FacultyID("fac-cs"),
		OfferID:          shared.OfferID("offer-42"),
		CompanyID:        shared.CompanyID("acme"),
		CompanyOwnerID:   companyOwnerID,
		Status:           application.StatusAwaitingAgreement,
	}
}

func studentActor() identity.Actor {
	return identity.Actor{ID: studentID, Role: identity.RoleStudent}
}

func companyActor() identity.Actor {
	return identity.Actor{ID: companyOwnerID, Role: identity.RoleCompany, CompanyID: shared.CompanyID("acme")}
}

func facultyActor() identity.Actor {
	return identity.Actor{ID: facultyUserID, Role: identity.RoleFaculty, FacultyID: shared.FacultyID("fac-cs")}
}

func adminActor() identity.Actor {
	return identity.Actor{ID: adminUserID, Role: identity.RoleAdmin}
}

func TestPolicy_CanCreate(t *testing.T) {
	p := NewPolicy()
	app := testApplication()

	assert.True(t, p.CanCreate(adminActor(), app))
	assert.True(t, p.CanCreate(companyActor(), app))
	assert.False(t, p.CanCreate(studentActor(), app))
	assert.False(t, p.CanCreate(facultyActor(), app))

	otherCompany := identity.Actor{ID: outsiderID, Role: identity.RoleCompany, CompanyID: shared.CompanyID("other")}
	assert.False(t, p.CanCreate(otherCompany, app))
}

func TestPolicy_CanView(t *testing.T) {
	p := NewPolicy()
	app := testApplication()
	ag := newTestAgreement(t)

	assert.True(t, p.CanView(adminActor(), ag, app))
	assert.True(t, p.CanView(studentActor(), ag, app))
	assert.True(t, p.CanView(companyActor(), ag, app))

	// Unclaimed agreement: visible to same-affiliation faculty.
	assert.True(t, p.CanView(facultyActor(), ag, app))
	otherFaculty := identity.Actor{ID: outsiderID, Role: identity.RoleFaculty, FacultyID: shared.FacultyID("fac-law")}
	assert.False(t, p.CanView(otherFaculty, ag, app))

	// A student unrelated to the application sees nothing.
	otherStudent := identity.Actor{ID: outsiderID, Role: identity.RoleStudent}
	assert.False(t, p.CanView(otherStudent, ag, app))
}

func TestPolicy_CanView_ClaimedAgreementHidesOtherFaculty(t *testing.T) {
	p := NewPolicy()
	app := testApplication()
	ag := newTestAgreement(t)
	ag.AssignValidator(facultyUserID, time.Now())

	assert.True(t, p.CanView(facultyActor(), ag, app))

	sameAffiliationColleague := identity.Actor{ID: outsiderID, Role: identity.RoleFaculty, FacultyID: shared.FacultyID("fac-cs")}
	assert.False(t, p.CanView(sameAffiliationColleague, ag, app))
}

func TestPolicy_CanValidate(t *testing.T) {
	p := NewPolicy()
	app := testApplication()
	ag := newTestAgreement(t)

	// Unclaimed: any faculty member of the student's faculty may validate.
	assert.True(t, p.CanValidate(facultyActor(), ag, app))
	otherFaculty := identity.Actor{ID: outsiderID, Role: identity.RoleFaculty, FacultyID: shared.FacultyID("fac-law")}
	assert.False(t, p.CanValidate(otherFaculty, ag, app))
	assert.False(t, p.CanValidate(adminActor(), ag, app))
	assert.False(t, p.CanValidate(studentActor(), ag, app))

	// Claimed: only the assigned validator, even within the same faculty.
	ag.AssignValidator(facultyUserID, time.Now())
	assert.True(t, p.CanValidate(facultyActor(), ag, app))
	colleague := identity.Actor{ID: outsiderID, Role: identity.RoleFaculty, FacultyID: shared.FacultyID("fac-cs")}
	assert.False(t, p.CanValidate(colleague, ag, app))
}

func TestPolicy_CanApprove(t *testing.T) {
	p := NewPolicy()

	assert.True(t, p.CanApprove(adminActor()))
	assert.False(t, p.CanApprove(facultyActor()))
	assert.False(t, p.CanApprove(companyActor()))
	assert.False(t, p.CanApprove(studentActor()))
}

func TestPolicy_SlotFor(t *testing.T) {
	p := NewPolicy()
	app := testApplication()
	ag := newTestAgreement(t)
	ag.AssignValidator(facultyUserID, time.Now())

	slot, ok := p.SlotFor(studentActor(), ag, app)
	assert.True(t, ok)
	assert.Equal(t, SlotStudent, slot)

	slot, ok = p.SlotFor(companyActor(), ag, app)
	assert.True(t, ok)
	assert.Equal(t, SlotCompany, slot)

	slot, ok = p.SlotFor(facultyActor(), ag, app)
	assert.True(t, ok)
	assert.Equal(t, SlotFaculty, slot)

	_, ok = p.SlotFor(adminActor(), ag, app)
	assert.False(t, ok)

	unassigned := identity.Actor{ID: outsiderID, Role: identity.RoleFaculty, FacultyID: shared.FacultyID("fac-cs")}
	_, ok = p.SlotFor(unassigned, ag, app)
	assert.False(t, ok)
}
