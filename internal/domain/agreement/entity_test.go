package agreement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stagehub/internship-hub/internal/domain/shared"
)

var (
	testAgreementID   = shared.AgreementID("3f8e2a9c-1b4d-4c6e-9f01-2a3b4c5d6e7f")
	testApplicationID = shared.ApplicationID("7ed99bd0-87b2-4dbb-a97b-596c3f29c49b")
	testValidatorID   = shared.UserID("9ca4322d-ebd5-4ffa-a340-56fe811bbab1")
	testAdminID       = shared.UserID("1b6f0d2e-3a4b-4c5d-8e9f-0a1b2c3d4e5f")
)

func newTestAgreement(t *testing.T) *Agreement {
	t.Helper()
	return New(testAgreementID, testApplicationID, "agreements/convention_test.pdf", time.Now())
}

func TestNew_InitialState(t *testing.T) {
	ag := newTestAgreement(t)

	assert.Equal(t, ApprovalPendingFacultyValidation, ag.ApprovalStatus)
	assert.Equal(t, StatusPendingFacultyValidation, ag.Status())
	assert.Nil(t, ag.FacultyValidatorID)
	assert.Nil(t, ag.AdminApproverID)
	assert.False(t, ag.Signatures.AllSigned())
	assert.Equal(t, 0, ag.Signatures.Count())
}

func TestValidate_AcceptAdvancesToAdminApproval(t *testing.T) {
	ag := newTestAgreement(t)
	now := time.Now()

	err := ag.Validate(true, "", now)

	assert.NoError(t, err)
	assert.Equal(t, ApprovalPendingAdminApproval, ag.ApprovalStatus)
	assert.Equal(t, StatusPendingAdminApproval, ag.Status())
	assert.NotNil(t, ag.FacultyValidatedAt)
	assert.Empty(t, ag.FacultyRejectionReason)
}

func TestValidate_RejectRequiresReason(t *testing.T) {
	ag := newTestAgreement(t)

	err := ag.Validate(false, "   ", time.Now())

	assert.ErrorIs(t, err, shared.ErrRejectionReasonRequired)
	assert.True(t, shared.IsBadRequest(err))
	assert.Equal(t, ApprovalPendingFacultyValidation, ag.ApprovalStatus)
}

func TestValidate_RejectWithReason(t *testing.T) {
	ag := newTestAgreement(t)

	err := ag.Validate(false, "missing learning objectives", time.Now())

	assert.NoError(t, err)
	assert.Equal(t, ApprovalRejected, ag.ApprovalStatus)
	assert.Equal(t, StatusRejected, ag.Status())
	assert.Equal(t, "missing learning objectives", ag.FacultyRejectionReason)
}

func TestValidate_WrongState(t *testing.T) {
	ag := newTestAgreement(t)
	assert.NoError(t, ag.Validate(true, "", time.Now()))

	err := ag.Validate(true, "", time.Now())

	assert.ErrorIs(t, err, shared.ErrNotPendingValidation)
	assert.True(t, shared.IsInvalidState(err))
}

func TestApprove_FullHappyPath(t *testing.T) {
	ag := newTestAgreement(t)
	now := time.Now()
	assert.NoError(t, ag.Validate(true, "", now))

	err := ag.Approve(testAdminID, true, "", now)

	assert.NoError(t, err)
	assert.Equal(t, ApprovalApproved, ag.ApprovalStatus)
	assert.Equal(t, StatusApproved, ag.Status())
	assert.Equal(t, testAdminID, *ag.AdminApproverID)
	assert.NotNil(t, ag.AdminDecidedAt)
}

func TestApprove_RejectRecordsApproverAndReason(t *testing.T) {
	ag := newTestAgreement(t)
	assert.NoError(t, ag.Validate(true, "", time.Now()))

	err := ag.Approve(testAdminID, false, "budget not confirmed", time.Now())

	assert.NoError(t, err)
	assert.Equal(t, ApprovalRejected, ag.ApprovalStatus)
	assert.Equal(t, "budget not confirmed", ag.AdminRejectionReason)
	// The deciding admin is recorded even on rejection.
	assert.Equal(t, testAdminID, *ag.AdminApproverID)
}

func TestApprove_RejectRequiresReason(t *testing.T) {
	ag := newTestAgreement(t)
	assert.NoError(t, ag.Validate(true, "", time.Now()))

	err := ag.Approve(testAdminID, false, "", time.Now())

	assert.ErrorIs(t, err, shared.ErrRejectionReasonRequired)
	assert.Equal(t, ApprovalPendingAdminApproval, ag.ApprovalStatus)
}

func TestApprove_WrongState(t *testing.T) {
	ag := newTestAgreement(t)

	err := ag.Approve(testAdminID, true, "", time.Now())

	assert.ErrorIs(t, err, shared.ErrNotPendingApproval)
}

func TestSign_SlotIndependence(t *testing.T) {
	ag := newTestAgreement(t)
	now := time.Now()

	assert.NoError(t, ag.Sign(SlotCompany, now))
	assert.NoError(t, ag.Sign(SlotStudent, now))

	assert.True(t, ag.Signatures.Company.Signed)
	assert.True(t, ag.Signatures.Student.Signed)
	assert.False(t, ag.Signatures.Faculty.Signed)
	assert.Equal(t, 2, ag.Signatures.Count())
	// Two of three signatures does not change the published status.
	assert.Equal(t, StatusPendingFacultyValidation, ag.Status())
}

func TestSign_DuplicateSlotRejected(t *testing.T) {
	ag := newTestAgreement(t)
	assert.NoError(t, ag.Sign(SlotStudent, time.Now()))

	err := ag.Sign(SlotStudent, time.Now())

	assert.ErrorIs(t, err, shared.ErrAlreadySigned)
	assert.True(t, shared.IsBadRequest(err))
	assert.Equal(t, 1, ag.Signatures.Count())
}

func TestSign_AllThreeForcesSignedStatus(t *testing.T) {
	ag := newTestAgreement(t)
	now := time.Now()

	assert.NoError(t, ag.Sign(SlotStudent, now))
	assert.NoError(t, ag.Sign(SlotCompany, now))
	assert.NoError(t, ag.Sign(SlotFaculty, now))

	assert.True(t, ag.Signatures.AllSigned())
	assert.Equal(t, StatusSigned, ag.Status())
	// The approval pipeline is untouched; only the published status changes.
	assert.Equal(t, ApprovalPendingFacultyValidation, ag.ApprovalStatus)
}

func TestSign_OverridesRejectedStatus(t *testing.T) {
	ag := newTestAgreement(t)
	now := time.Now()
	assert.NoError(t, ag.Validate(false, "incomplete dossier", now))
	assert.Equal(t, StatusRejected, ag.Status())

	assert.NoError(t, ag.Sign(SlotStudent, now))
	assert.NoError(t, ag.Sign(SlotCompany, now))
	assert.NoError(t, ag.Sign(SlotFaculty, now))

	assert.Equal(t, StatusSigned, ag.Status())
}

func TestSign_FullySignedClosesReview(t *testing.T) {
	ag := newTestAgreement(t)
	now := time.Now()
	assert.NoError(t, ag.Validate(true, "", now))

	assert.NoError(t, ag.Sign(SlotStudent, now))
	assert.NoError(t, ag.Sign(SlotCompany, now))
	assert.NoError(t, ag.Sign(SlotFaculty, now))
	assert.Equal(t, StatusSigned, ag.Status())

	// The admin decision window is closed once everyone has signed.
	err := ag.Approve(testAdminID, false, "late objection", now)
	assert.ErrorIs(t, err, shared.ErrNotPendingApproval)
	assert.Equal(t, ApprovalPendingAdminApproval, ag.ApprovalStatus)
	assert.Nil(t, ag.AdminApproverID)
	assert.Empty(t, ag.AdminRejectionReason)
}

func TestSign_FullySignedClosesValidation(t *testing.T) {
	ag := newTestAgreement(t)
	now := time.Now()

	assert.NoError(t, ag.Sign(SlotStudent, now))
	assert.NoError(t, ag.Sign(SlotCompany, now))
	assert.NoError(t, ag.Sign(SlotFaculty, now))

	err := ag.Validate(true, "", now)
	assert.ErrorIs(t, err, shared.ErrNotPendingValidation)
	assert.Equal(t, ApprovalPendingFacultyValidation, ag.ApprovalStatus)
	assert.Nil(t, ag.FacultyValidatedAt)
}

func TestAssignValidator(t *testing.T) {
	ag := newTestAgreement(t)

	ag.AssignValidator(testValidatorID, time.Now())

	assert.True(t, ag.IsAssignedValidator(testValidatorID))
	assert.False(t, ag.IsAssignedValidator(testAdminID))
}

func TestApprovalStatus_IsTerminal(t *testing.T) {
	assert.False(t, ApprovalPendingFacultyValidation.IsTerminal())
	assert.False(t, ApprovalPendingAdminApproval.IsTerminal())
	assert.True(t, ApprovalApproved.IsTerminal())
	assert.True(t, ApprovalRejected.IsTerminal())
}
