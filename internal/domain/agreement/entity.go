// Package agreement contains the internship agreement aggregate: the state
// machine that turns an accepted application into a signed internship
// agreement. The approval pipeline (faculty validation, then admin approval)
// and the three-party signature sub-process are kept as two orthogonal
// pieces of state; the published status is derived from both.
package agreement

import (
	"strings"
	"time"

	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// APPROVAL STATUS
// ═══════════════════════════════════════════════════════════════════════════

// ApprovalStatus tracks the position of an agreement in the approval
// pipeline. The signature sub-process is deliberately not part of this enum.
type ApprovalStatus string

const (
	// ApprovalPendingFacultyValidation - initial state; waiting for an
	// academic validator.
	ApprovalPendingFacultyValidation ApprovalStatus = "PENDING_FACULTY_VALIDATION"
	// ApprovalPendingAdminApproval - validated by faculty; waiting for a
	// platform administrator.
	ApprovalPendingAdminApproval ApprovalStatus = "PENDING_ADMIN_APPROVAL"
	// ApprovalApproved - terminal approval state.
	ApprovalApproved ApprovalStatus = "APPROVED"
	// ApprovalRejected - terminal rejection, by faculty or admin.
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// IsValid checks that the approval status is one of the known states.
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPendingFacultyValidation, ApprovalPendingAdminApproval, ApprovalApproved, ApprovalRejected:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once the approval pipeline can no longer move.
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}

// String returns the string representation of the approval status.
func (s ApprovalStatus) String() string {
	return string(s)
}

// ═══════════════════════════════════════════════════════════════════════════
// PUBLISHED STATUS
// ═══════════════════════════════════════════════════════════════════════════

// Status is the published agreement status as seen by callers. It equals the
// approval status until all three parties have signed, at which point it is
// forced to SIGNED regardless of the approval pipeline's position.
type Status string

const (
	StatusPendingFacultyValidation Status = "PENDING_FACULTY_VALIDATION"
	StatusPendingAdminApproval     Status = "PENDING_ADMIN_APPROVAL"
	StatusApproved                 Status = "APPROVED"
	StatusRejected                 Status = "REJECTED"
	StatusSigned                   Status = "SIGNED"
)

// IsValid checks that the status is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingFacultyValidation, StatusPendingAdminApproval, StatusApproved, StatusRejected, StatusSigned:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ═══════════════════════════════════════════════════════════════════════════
// SIGNATURES
// ═══════════════════════════════════════════════════════════════════════════

// SignatureSlot names one of the three independent signature slots.
type SignatureSlot string

const (
	// SlotStudent - signed by the applying student.
	SlotStudent SignatureSlot = "student"
	// SlotCompany - signed by the offer-owning company representative.
	SlotCompany SignatureSlot = "company"
	// SlotFaculty - signed by the assigned academic validator.
	SlotFaculty SignatureSlot = "faculty"
)

// IsValid checks that the slot is one of the three known slots.
func (s SignatureSlot) IsValid() bool {
	return s == SlotStudent || s == SlotCompany || s == SlotFaculty
}

// String returns the string representation of the slot.
func (s SignatureSlot) String() string {
	return string(s)
}

// SignatureRecord tracks one party's signature.
// Invariant: SignedAt is set iff Signed is true.
type SignatureRecord struct {
	Signed   bool
	SignedAt *time.Time
}

// Signatures holds the three independent signature records.
type Signatures struct {
	Student SignatureRecord
	Company SignatureRecord
	Faculty SignatureRecord
}

// Slot returns a pointer to the record for the given slot, or nil for an
// unknown slot.
func (s *Signatures) Slot(slot SignatureSlot) *SignatureRecord {
	switch slot {
	case SlotStudent:
		return &s.Student
	case SlotCompany:
		return &s.Company
	case SlotFaculty:
		return &s.Faculty
	default:
		return nil
	}
}

// AllSigned returns true once every slot is signed.
func (s Signatures) AllSigned() bool {
	return s.Student.Signed && s.Company.Signed && s.Faculty.Signed
}

// Count returns the number of signed slots.
func (s Signatures) Count() int {
	n := 0
	for _, rec := range []SignatureRecord{s.Student, s.Company, s.Faculty} {
		if rec.Signed {
			n++
		}
	}
	return n
}

// ═══════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: AGREEMENT
// ═══════════════════════════════════════════════════════════════════════════

// Agreement is the core workflow entity. Exactly one non-rejected agreement
// exists per application (enforced by a uniqueness constraint in storage).
// Agreements are never physically deleted; rejections and signings are
// terminal states, not removals.
type Agreement struct {
	// ID - internal unique identifier (UUID in string form).
	ID shared.AgreementID

	// ApplicationID - the application this agreement was created from.
	// Immutable after creation, unique across non-rejected agreements.
	ApplicationID shared.ApplicationID

	// DocumentRef - opaque handle produced by the external document
	// generator at creation time.
	DocumentRef string

	// ApprovalStatus - position in the approval pipeline.
	ApprovalStatus ApprovalStatus

	// FacultyValidatorID - the assigned academic validator. Assigned
	// lazily on the first matching validate call; nil until then.
	FacultyValidatorID *shared.UserID

	// FacultyValidatedAt - when the faculty decision was recorded.
	FacultyValidatedAt *time.Time

	// FacultyRejectionReason - set iff the most recent faculty decision
	// was a rejection.
	FacultyRejectionReason string

	// AdminApproverID - the administrator who approved or rejected.
	AdminApproverID *shared.UserID

	// AdminDecidedAt - when the admin decision was recorded.
	AdminDecidedAt *time.Time

	// AdminRejectionReason - set iff the most recent admin decision was
	// a rejection.
	AdminRejectionReason string

	// Signatures - the three independent signature records.
	Signatures Signatures

	// CreatedAt, UpdatedAt - audit timestamps.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates an agreement in its initial state for the given application.
func New(id shared.AgreementID, applicationID shared.ApplicationID, documentRef string, now time.Time) *Agreement {
	return &Agreement{
		ID:             id,
		ApplicationID:  applicationID,
		DocumentRef:    documentRef,
		ApprovalStatus: ApprovalPendingFacultyValidation,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Status derives the published status. Once all three parties have signed,
// the status is SIGNED regardless of the approval pipeline's position;
// signing is not gated on approval having completed.
func (a *Agreement) Status() Status {
	if a.Signatures.AllSigned() {
		return StatusSigned
	}
	return Status(a.ApprovalStatus)
}

// IsAssignedValidator returns true if the given user is the assigned
// academic validator.
func (a *Agreement) IsAssignedValidator(userID shared.UserID) bool {
	return a.FacultyValidatorID != nil && !userID.IsEmpty() && *a.FacultyValidatorID == userID
}

// AssignValidator records the validator claiming this agreement.
func (a *Agreement) AssignValidator(validatorID shared.UserID, now time.Time) {
	a.FacultyValidatorID = &validatorID
	a.UpdatedAt = now
}

// Validate records the faculty decision. The caller is responsible for
// authorization; this method only enforces the state machine:
//
//	PENDING_FACULTY_VALIDATION --accept--> PENDING_ADMIN_APPROVAL
//	PENDING_FACULTY_VALIDATION --reject--> REJECTED
//
// Rejections require a non-blank reason.
//
// The gate is the published status, not the raw approval position: once all
// three parties have signed, the agreement is SIGNED and review is closed.
func (a *Agreement) Validate(accept bool, reason string, now time.Time) error {
	if a.Status() != StatusPendingFacultyValidation {
		return shared.ErrNotPendingValidation
	}
	if accept {
		a.ApprovalStatus = ApprovalPendingAdminApproval
		a.FacultyValidatedAt = &now
		a.FacultyRejectionReason = ""
	} else {
		if strings.TrimSpace(reason) == "" {
			return shared.ErrRejectionReasonRequired
		}
		a.ApprovalStatus = ApprovalRejected
		a.FacultyValidatedAt = &now
		a.FacultyRejectionReason = reason
	}
	a.UpdatedAt = now
	return nil
}

// Approve records the admin decision:
//
//	PENDING_ADMIN_APPROVAL --approve--> APPROVED
//	PENDING_ADMIN_APPROVAL --reject--> REJECTED
//
// The deciding admin is recorded in both cases. Rejections require a
// non-blank reason.
//
// As with Validate, the gate is the published status: a fully signed
// agreement no longer accepts an admin decision.
func (a *Agreement) Approve(adminID shared.UserID, approve bool, reason string, now time.Time) error {
	if a.Status() != StatusPendingAdminApproval {
		return shared.ErrNotPendingApproval
	}
	if approve {
		a.ApprovalStatus = ApprovalApproved
		a.AdminRejectionReason = ""
	} else {
		if strings.TrimSpace(reason) == "" {
			return shared.ErrRejectionReasonRequired
		}
		a.ApprovalStatus = ApprovalRejected
		a.AdminRejectionReason = reason
	}
	a.AdminApproverID = &adminID
	a.AdminDecidedAt = &now
	a.UpdatedAt = now
	return nil
}

// Sign marks the given slot as signed. Returns shared.ErrAlreadySigned if
// the slot already carries a signature. The published status flips to SIGNED
// once the third slot is filled (see Status).
func (a *Agreement) Sign(slot SignatureSlot, now time.Time) error {
	rec := a.Signatures.Slot(slot)
	if rec == nil {
		return shared.NewDomainError("agreement", "Sign", shared.ErrInvalidInput, "unknown signature slot "+slot.String())
	}
	if rec.Signed {
		return shared.ErrAlreadySigned
	}
	rec.Signed = true
	rec.SignedAt = &now
	a.UpdatedAt = now
	return nil
}
