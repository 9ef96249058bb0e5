package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehub/internship-hub/internal/domain/agreement"
	"github.com/stagehub/internship-hub/internal/domain/application"
	"github.com/stagehub/internship-hub/internal/domain/identity"
	"github.com/stagehub/internship-hub/internal/domain/notification"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

var (
	appID          = shared.ApplicationID("7ed99bd0-87b2-4dbb-a97b-596c3f29c49b")
	studentID      = shared.UserID("aaaaaaaa-0000-4000-8000-000000000001")
	companyOwnerID = shared.UserID("aaaaaaaa-0000-4000-8000-000000000002")
	facultyUserID  = shared.UserID("aaaaaaaa-0000-4000-8000-000000000003")
	adminUserID    = shared.UserID("aaaaaaaa-0000-4000-8000-000000000004")
	facultyID      = shared.FacultyID("fac-cs")
)

type fixture struct {
	apps   *memApplications
	ags    *memAgreements
	notifs *memNotifications
	actors identity.Provider
	ids    *seqIDs
	pub    *capturePublisher
	uow    *memUowFactory
	docGen *stubDocGen
	policy *agreement.Policy

	create   *CreateAgreementHandler
	validate *ValidateAgreementHandler
	approve  *ApproveAgreementHandler
	sign     *SignAgreementHandler
	decide   *DecideApplicationHandler
	viewed   *MarkApplicationViewedHandler
}

func newFixture() *fixture {
	f := &fixture{
		apps:   newMemApplications(),
		ags:    newMemAgreements(),
		notifs: newMemNotifications(),
		actors: identity.NewContextProvider(),
		ids:    &seqIDs{},
		pub:    &capturePublisher{},
		docGen: &stubDocGen{},
		policy: agreement.NewPolicy(),
	}
	f.uow = &memUowFactory{apps: f.apps, ags: f.ags, notifs: f.notifs}
	f.create = NewCreateAgreementHandler(f.actors, f.apps, f.ags, f.uow, f.docGen, f.policy, f.ids, f.pub)
	f.validate = NewValidateAgreementHandler(f.actors, f.uow, f.policy, f.ids, f.pub)
	f.approve = NewApproveAgreementHandler(f.actors, f.uow, f.policy, f.ids, f.pub)
	f.sign = NewSignAgreementHandler(f.actors, f.uow, f.policy, f.ids, f.pub)
	f.decide = NewDecideApplicationHandler(f.actors, f.uow, f.ids, f.pub)
	f.viewed = NewMarkApplicationViewedHandler(f.actors, f.uow, f.ids, f.pub)
	return f
}

func (f *fixture) seedApplication(status application.Status) {
	now := time.Now().UTC()
	f.apps.put(&application.Application{
		ID:               appID,
		StudentID:        studentID,
		StudentName:      "Alice Moreau",
		StudentFacultyID: facultyID,
		OfferID:          shared.OfferID("offer-42"),
		OfferTitle:       "Backend Engineering Internship",
		CompanyID:        shared.CompanyID("acme"),
		CompanyName:      "Acme Corp",
		CompanyOwnerID:   companyOwnerID,
		Status:           status,
		SubmittedAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
}

func asStudent(ctx context.Context) context.Context {
	return identity.WithActor(ctx, identity.Actor{ID: studentID, Role: identity.RoleStudent, DisplayName: "Alice Moreau"})
}

func asCompany(ctx context.Context) context.Context {
	return identity.WithActor(ctx, identity.Actor{ID: companyOwnerID, Role: identity.RoleCompany, CompanyID: shared.CompanyID("acme")})
}

func asFaculty(ctx context.Context) context.Context {
	return identity.WithActor(ctx, identity.Actor{ID: facultyUserID, Role: identity.RoleFaculty, FacultyID: facultyID})
}

func asAdmin(ctx context.Context) context.Context {
	return identity.WithActor(ctx, identity.Actor{ID: adminUserID, Role: identity.RoleAdmin})
}

// ══════════════════════════════════════════════════════════════════════════════
// CREATE
// ══════════════════════════════════════════════════════════════════════════════

func TestCreateAgreement_HappyPath(t *testing.T) {
	f := newFixture()
	f.seedApplication(application.StatusAccepted)
	ctx := asCompany(context.Background())

	res, err := f.create.Handle(ctx, CreateAgreementCommand{ApplicationID: appID.String()})

	require.NoError(t, err)
	assert.False(t, res.AlreadyExisted)
	assert.Equal(t, agreement.StatusPendingFacultyValidation, res.Agreement.Status())
	assert.NotEmpty(t, res.Agreement.DocumentRef)
	assert.Equal(t, 1, f.docGen.calls)

	// The application flips to AWAITING_AGREEMENT in the same commit.
	app, err := f.apps.GetByID(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusAwaitingAgreement, app.Status)

	// The student is notified.
	notifs := f.notifs.forRecipient(studentID)
	require.Len(t, notifs, 1)
	assert.Equal(t, notification.TypeAgreementCreated, notifs[0].Type)
	assert.Equal(t, notification.DeliveryPending, notifs[0].DeliveryStatus)

	assert.Equal(t, []shared.EventType{shared.EventAgreementCreated}, f.pub.types())
}

func TestCreateAgreement_Idempotent(t *testing.T) {
	f := newFixture()
	f.seedApplication(application.StatusAccepted)
	ctx := asCompany(context.Background())

	first, err := f.create.Handle(ctx, CreateAgreementCommand{ApplicationID: appID.String()})
	require.NoError(t, err)

	second, err := f.create.Handle(ctx, CreateAgreementCommand{ApplicationID: appID.String()})

	require.NoError(t, err)
	assert.True(t, second.AlreadyExisted)
	assert.Equal(t, first.Agreement.ID, second.Agreement.ID)
	// No second document, no second notification.
	assert.Equal(t, 1, f.docGen.calls)
	assert.Len(t, f.notifs.forRecipient(studentID), 1)
}

func TestCreateAgreement_RequiresAcceptedApplication(t *testing.T) {
	f := newFixture()
	f.seedApplication(application.StatusPending)

	_, err := f.create.Handle(asAdmin(context.Background()), CreateAgreementCommand{ApplicationID: appID.String()})

	assert.True(t, shared.IsInvalidState(err))
}

func TestCreateAgreement_ForbiddenForUnrelatedActors(t *testing.T) {
	f := newFixture()
	f.seedApplication(application.StatusAccepted)

	_, err := f.create.Handle(asStudent(context.Background()), CreateAgreementCommand{ApplicationID: appID.String()})
	assert.True(t, shared.IsForbidden(err))

	_, err = f.create.Handle(asFaculty(context.Background()), CreateAgreementCommand{ApplicationID: appID.String()})
	assert.True(t, shared.IsForbidden(err))
}

func TestCreateAgreement_DocumentFailureLeavesApplicationUntouched(t *testing.T) {
	f := newFixture()
	f.seedApplication(application.StatusAccepted)
	f.docGen.err = assert.AnError

	_, err := f.create.Handle(asAdmin(context.Background()), CreateAgreementCommand{ApplicationID: appID.String()})

	assert.True(t, shared.IsExternalService(err))
	app, getErr := f.apps.GetByID(context.Background(), appID)
	require.NoError(t, getErr)
	assert.Equal(t, application.StatusAccepted, app.Status)
	assert.Empty(t, f.notifs.forRecipient(studentID))
}

func TestCreateAgreement_RequiresActor(t *testing.T) {
	f := newFixture()
	f.seedApplication(application.StatusAccepted)

	_, err := f.create.Handle(context.Background(), CreateAgreementCommand{ApplicationID: appID.String()})

	assert.True(t, shared.IsUnauthenticated(err))
}

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATE (FACULTY)
// ══════════════════════════════════════════════════════════════════════════════

func (f *fixture) createAgreement(t *testing.T) *agreement.Agreement {
	t.Helper()
	f.seedApplication(application.StatusAccepted)
	res, err := f.create.Handle(asAdmin(context.Background()), CreateAgreementCommand{ApplicationID: appID.String()})
	require.NoError(t, err)
	return res.Agreement
}

func TestValidateAgreement_AcceptClaimsAndAdvances(t *testing.T) {
	f := newFixture()
	ag := f.createAgreement(t)

	res, err := f.validate.Handle(asFaculty(context.Background()), ValidateAgreementCommand{AgreementID: ag.ID.String(), Accept: true})

	require.NoError(t, err)
	assert.True(t, res.Claimed)
	assert.Equal(t, agreement.StatusPendingAdminApproval, res.Agreement.Status())
	assert.Equal(t, facultyUserID, *res.Agreement.FacultyValidatorID)

	notifs := f.notifs.forRecipient(studentID)
	require.Len(t, notifs, 2) // created + validated
	assert.Equal(t, notification.TypeAgreementValidated, notifs[1].Type)
}

func TestValidateAgreement_RejectBlankReasonFailsCleanly(t *testing.T) {
	f := newFixture()
	ag := f.createAgreement(t)

	_, err := f.validate.Handle(asFaculty(context.Background()), ValidateAgreementCommand{AgreementID: ag.ID.String(), Accept: false, Reason: "  "})

	assert.ErrorIs(t, err, shared.ErrRejectionReasonRequired)
	// State unchanged and no notification emitted.
	stored, getErr := f.ags.GetByID(context.Background(), ag.ID)
	require.NoError(t, getErr)
	assert.Equal(t, agreement.StatusPendingFacultyValidation, stored.Status())
	assert.Len(t, f.notifs.forRecipient(studentID), 1)
}

func TestValidateAgreement_RejectWithReason(t *testing.T) {
	f := newFixture()
	ag := f.createAgreement(t)

	res, err := f.validate.Handle(asFaculty(context.Background()), ValidateAgreementCommand{AgreementID: ag.ID.String(), Accept: false, Reason: "missing objectives"})

	require.NoError(t, err)
	assert.Equal(t, agreement.StatusRejected, res.Agreement.Status())

	notifs := f.notifs.forRecipient(studentID)
	require.Len(t, notifs, 2)
	assert.Equal(t, notification.TypeAgreementRejected, notifs[1].Type)
}

func TestValidateAgreement_WrongFacultyForbidden(t *testing.T) {
	f := newFixture()
	ag := f.createAgreement(t)
	otherFaculty := identity.WithActor(context.Background(), identity.Actor{
		ID: shared.UserID("aaaaaaaa-0000-4000-8000-0000000000ff"), Role: identity.RoleFaculty, FacultyID: shared.FacultyID("fac-law"),
	})

	_, err := f.validate.Handle(otherFaculty, ValidateAgreementCommand{AgreementID: ag.ID.String(), Accept: true})

	assert.ErrorIs(t, err, shared.ErrNotAuthorizedToValidate)
}

func TestValidateAgreement_ClaimedAgreementLocksOutColleagues(t *testing.T) {
	f := newFixture()
	ag := f.createAgreement(t)
	stored, _ := f.ags.GetByID(context.Background(), ag.ID)
	stored.AssignValidator(facultyUserID, time.Now())
	require.NoError(t, f.ags.Update(context.Background(), stored))

	colleague := identity.WithActor(context.Background(), identity.Actor{
		ID: shared.UserID("aaaaaaaa-0000-4000-8000-0000000000ee"), Role: identity.RoleFaculty, FacultyID: facultyID,
	})
	_, err := f.validate.Handle(colleague, ValidateAgreementCommand{AgreementID: ag.ID.String(), Accept: true})

	assert.ErrorIs(t, err, shared.ErrNotAuthorizedToValidate)
}

// ══════════════════════════════════════════════════════════════════════════════
// APPROVE (ADMIN)
// ══════════════════════════════════════════════════════════════════════════════

func (f *fixture) validatedAgreement(t *testing.T) *agreement.Agreement {
	t.Helper()
	ag := f.createAgreement(t)
	res, err := f.validate.Handle(asFaculty(context.Background()), ValidateAgreementCommand{AgreementID: ag.ID.String(), Accept: true})
	require.NoError(t, err)
	return res.Agreement
}

func TestApproveAgreement_Approve(t *testing.T) {
	f := newFixture()
	ag := f.validatedAgreement(t)

	res, err := f.approve.Handle(asAdmin(context.Background()), ApproveAgreementCommand{AgreementID: ag.ID.String(), Approve: true})

	require.NoError(t, err)
	assert.Equal(t, agreement.StatusApproved, res.Agreement.Status())
	assert.Equal(t, adminUserID, *res.Agreement.AdminApproverID)

	// Student and offer owner are both notified.
	assert.Len(t, f.notifs.forRecipient(studentID), 3)
	assert.Len(t, f.notifs.forRecipient(companyOwnerID), 1)
}

func TestApproveAgreement_RejectRecordsApprover(t *testing.T) {
	f := newFixture()
	ag := f.validatedAgreement(t)

	res, err := f.approve.Handle(asAdmin(context.Background()), ApproveAgreementCommand{AgreementID: ag.ID.String(), Approve: false, Reason: "budget not confirmed"})

	require.NoError(t, err)
	assert.Equal(t, agreement.StatusRejected, res.Agreement.Status())
	assert.Equal(t, adminUserID, *res.Agreement.AdminApproverID)
	assert.Equal(t, "budget not confirmed", res.Agreement.AdminRejectionReason)
}

func TestApproveAgreement_NonAdminForbidden(t *testing.T) {
	f := newFixture()
	ag := f.validatedAgreement(t)

	_, err := f.approve.Handle(asFaculty(context.Background()), ApproveAgreementCommand{AgreementID: ag.ID.String(), Approve: true})
	assert.True(t, shared.IsForbidden(err))

	_, err = f.approve.Handle(asCompany(context.Background()), ApproveAgreementCommand{AgreementID: ag.ID.String(), Approve: true})
	assert.True(t, shared.IsForbidden(err))
}

func TestApproveAgreement_WrongState(t *testing.T) {
	f := newFixture()
	ag := f.createAgreement(t) // still pending faculty validation

	_, err := f.approve.Handle(asAdmin(context.Background()), ApproveAgreementCommand{AgreementID: ag.ID.String(), Approve: true})

	assert.ErrorIs(t, err, shared.ErrNotPendingApproval)
}

// ══════════════════════════════════════════════════════════════════════════════
// SIGN
// ══════════════════════════════════════════════════════════════════════════════

func TestSignAgreement_FullRoundTrip(t *testing.T) {
	f := newFixture()
	ag := f.validatedAgreement(t)
	_, err := f.approve.Handle(asAdmin(context.Background()), ApproveAgreementCommand{AgreementID: ag.ID.String(), Approve: true})
	require.NoError(t, err)

	res, err := f.sign.Handle(asStudent(context.Background()), SignAgreementCommand{AgreementID: ag.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, agreement.SlotStudent, res.Slot)
	assert.False(t, res.FullySigned)

	res, err = f.sign.Handle(asCompany(context.Background()), SignAgreementCommand{AgreementID: ag.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, agreement.SlotCompany, res.Slot)
	assert.False(t, res.FullySigned)
	assert.Equal(t, agreement.StatusApproved, res.Agreement.Status())

	res, err = f.sign.Handle(asFaculty(context.Background()), SignAgreementCommand{AgreementID: ag.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, agreement.SlotFaculty, res.Slot)
	assert.True(t, res.FullySigned)
	assert.Equal(t, agreement.StatusSigned, res.Agreement.Status())
}

func TestSignAgreement_BeforeApprovalStillCounts(t *testing.T) {
	f := newFixture()
	ag := f.validatedAgreement(t) // pending admin approval

	res, err := f.sign.Handle(asStudent(context.Background()), SignAgreementCommand{AgreementID: ag.ID.String()})

	require.NoError(t, err)
	assert.True(t, res.Agreement.Signatures.Student.Signed)
	assert.Equal(t, agreement.StatusPendingAdminApproval, res.Agreement.Status())
}

func TestSignAgreement_AllThreeOverrideRejection(t *testing.T) {
	f := newFixture()
	ag := f.createAgreement(t)
	_, err := f.validate.Handle(asFaculty(context.Background()), ValidateAgreementCommand{AgreementID: ag.ID.String(), Accept: false, Reason: "incomplete dossier"})
	require.NoError(t, err)

	for _, ctx := range []context.Context{asStudent(context.Background()), asCompany(context.Background()), asFaculty(context.Background())} {
		_, err = f.sign.Handle(ctx, SignAgreementCommand{AgreementID: ag.ID.String()})
		require.NoError(t, err)
	}

	stored, err := f.ags.GetByID(context.Background(), ag.ID)
	require.NoError(t, err)
	assert.Equal(t, agreement.StatusSigned, stored.Status())
	assert.Equal(t, agreement.ApprovalRejected, stored.ApprovalStatus)
}

func TestSignAgreement_FullySignedBlocksAdminDecision(t *testing.T) {
	f := newFixture()
	ag := f.validatedAgreement(t) // pending admin approval

	for _, ctx := range []context.Context{asStudent(context.Background()), asCompany(context.Background()), asFaculty(context.Background())} {
		_, err := f.sign.Handle(ctx, SignAgreementCommand{AgreementID: ag.ID.String()})
		require.NoError(t, err)
	}

	_, err := f.approve.Handle(asAdmin(context.Background()), ApproveAgreementCommand{AgreementID: ag.ID.String(), Approve: false, Reason: "late objection"})
	assert.ErrorIs(t, err, shared.ErrNotPendingApproval)

	stored, err := f.ags.GetByID(context.Background(), ag.ID)
	require.NoError(t, err)
	assert.Equal(t, agreement.StatusSigned, stored.Status())
	assert.Nil(t, stored.AdminApproverID)
	assert.Empty(t, stored.AdminRejectionReason)
}

func TestSignAgreement_DuplicateRejected(t *testing.T) {
	f := newFixture()
	ag := f.validatedAgreement(t)

	_, err := f.sign.Handle(asStudent(context.Background()), SignAgreementCommand{AgreementID: ag.ID.String()})
	require.NoError(t, err)

	_, err = f.sign.Handle(asStudent(context.Background()), SignAgreementCommand{AgreementID: ag.ID.String()})
	assert.ErrorIs(t, err, shared.ErrAlreadySigned)
}

func TestSignAgreement_UnrelatedActorForbidden(t *testing.T) {
	f := newFixture()
	ag := f.validatedAgreement(t)

	_, err := f.sign.Handle(asAdmin(context.Background()), SignAgreementCommand{AgreementID: ag.ID.String()})
	assert.ErrorIs(t, err, shared.ErrNotAuthorizedToSign)

	// Unassigned same-faculty colleague holds no slot either.
	colleague := identity.WithActor(context.Background(), identity.Actor{
		ID: shared.UserID("aaaaaaaa-0000-4000-8000-0000000000dd"), Role: identity.RoleFaculty, FacultyID: facultyID,
	})
	_, err = f.sign.Handle(colleague, SignAgreementCommand{AgreementID: ag.ID.String()})
	assert.ErrorIs(t, err, shared.ErrNotAuthorizedToSign)
}

func TestSignAgreement_NotifiesOtherParties(t *testing.T) {
	f := newFixture()
	ag := f.validatedAgreement(t)
	before := len(f.notifs.forRecipient(studentID))

	_, err := f.sign.Handle(asCompany(context.Background()), SignAgreementCommand{AgreementID: ag.ID.String()})
	require.NoError(t, err)

	// Signer excluded; student and assigned validator notified.
	assert.Len(t, f.notifs.forRecipient(studentID), before+1)
	assert.Len(t, f.notifs.forRecipient(facultyUserID), 1)
	assert.Empty(t, f.notifs.forRecipient(companyOwnerID))
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION PRE-STEPS
// ══════════════════════════════════════════════════════════════════════════════

func TestDecideApplication_Accept(t *testing.T) {
	f := newFixture()
	f.seedApplication(application.StatusViewed)

	res, err := f.decide.Handle(asCompany(context.Background()), DecideApplicationCommand{ApplicationID: appID.String(), Decision: "ACCEPT"})

	require.NoError(t, err)
	assert.Equal(t, application.StatusAccepted, res.Application.Status)
	notifs := f.notifs.forRecipient(studentID)
	require.Len(t, notifs, 1)
	assert.Equal(t, notification.TypeApplicationAccepted, notifs[0].Type)
	assert.Equal(t, []shared.EventType{shared.EventApplicationDecided}, f.pub.types())
}

func TestDecideApplication_AlreadyDecided(t *testing.T) {
	f := newFixture()
	f.seedApplication(application.StatusViewed)
	ctx := asCompany(context.Background())

	_, err := f.decide.Handle(ctx, DecideApplicationCommand{ApplicationID: appID.String(), Decision: "REJECT"})
	require.NoError(t, err)

	_, err = f.decide.Handle(ctx, DecideApplicationCommand{ApplicationID: appID.String(), Decision: "ACCEPT"})
	assert.ErrorIs(t, err, shared.ErrApplicationAlreadyDecided)
}

func TestDecideApplication_OnlyOfferOwner(t *testing.T) {
	f := newFixture()
	f.seedApplication(application.StatusViewed)

	_, err := f.decide.Handle(asStudent(context.Background()), DecideApplicationCommand{ApplicationID: appID.String(), Decision: "ACCEPT"})

	assert.True(t, shared.IsForbidden(err))
}

func TestMarkApplicationViewed_IdempotentNotification(t *testing.T) {
	f := newFixture()
	f.seedApplication(application.StatusPending)
	ctx := asCompany(context.Background())

	res, err := f.viewed.Handle(ctx, MarkApplicationViewedCommand{ApplicationID: appID.String()})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	res, err = f.viewed.Handle(ctx, MarkApplicationViewedCommand{ApplicationID: appID.String()})
	require.NoError(t, err)
	assert.False(t, res.Changed)

	// Only the first view notifies the student.
	assert.Len(t, f.notifs.forRecipient(studentID), 1)
}
