package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stagehub/internship-hub/internal/domain/shared"
)

func testApplication() *Application {
	now := time.Now()
	return &Application{
		ID:             shared.ApplicationID("7ed99bd0-87b2-4dbb-a97b-596c3f29c49b"),
		StudentID:      shared.UserID("aaaaaaaa-0000-4000-8000-000000000001"),
		OfferID:        shared.OfferID("offer-42"),
		CompanyOwnerID: shared.UserID("aaaaaaaa-0000-4000-8000-000000000002"),
		Status:         StatusPending,
		SubmittedAt:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestMarkViewed_Idempotent(t *testing.T) {
	app := testApplication()

	changed := app.MarkViewed(time.Now())
	assert.True(t, changed)
	assert.Equal(t, StatusViewed, app.Status)

	changed = app.MarkViewed(time.Now())
	assert.False(t, changed)
	assert.Equal(t, StatusViewed, app.Status)
}

func TestMarkViewed_NoEffectAfterDecision(t *testing.T) {
	app := testApplication()
	assert.NoError(t, app.RecordDecision(DecisionAccept, time.Now()))

	changed := app.MarkViewed(time.Now())

	assert.False(t, changed)
	assert.Equal(t, StatusAccepted, app.Status)
}

func TestRecordDecision(t *testing.T) {
	app := testApplication()

	err := app.RecordDecision(DecisionAccept, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, StatusAccepted, app.Status)
	assert.NotNil(t, app.DecidedAt)
}

func TestRecordDecision_AlreadyDecided(t *testing.T) {
	app := testApplication()
	assert.NoError(t, app.RecordDecision(DecisionReject, time.Now()))

	err := app.RecordDecision(DecisionAccept, time.Now())

	assert.ErrorIs(t, err, shared.ErrApplicationAlreadyDecided)
	assert.Equal(t, StatusRejected, app.Status)
}

func TestAwaitAgreement(t *testing.T) {
	app := testApplication()

	err := app.AwaitAgreement(time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	assert.NoError(t, app.RecordDecision(DecisionAccept, time.Now()))
	assert.NoError(t, app.AwaitAgreement(time.Now()))
	assert.Equal(t, StatusAwaitingAgreement, app.Status)
}

func TestOwnership(t *testing.T) {
	app := testApplication()

	assert.True(t, app.IsOwnedByStudent(app.StudentID))
	assert.False(t, app.IsOwnedByStudent(shared.UserID("aaaaaaaa-0000-4000-8000-00000000000f")))
	assert.False(t, app.IsOwnedByStudent(""))

	assert.True(t, app.IsOwnedByCompanyUser(app.CompanyOwnerID))
	assert.False(t, app.IsOwnedByCompanyUser(app.StudentID))
}
