package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/stagehub/internship-hub/internal/domain/agreement"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// AGREEMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const agreementColumns = `
	a.id, a.application_id, a.document_ref, a.approval_status,
	a.faculty_validator_id, a.faculty_validated_at, a.faculty_rejection_reason,
	a.admin_approver_id, a.admin_decided_at, a.admin_rejection_reason,
	a.student_signed_at, a.company_signed_at, a.faculty_signed_at,
	a.created_at, a.updated_at
`

// AgreementRepository implements agreement.Repository for PostgreSQL.
type AgreementRepository struct {
	q Querier
}

// NewAgreementRepository creates a new AgreementRepository backed by the
// connection pool.
func NewAgreementRepository(conn *Connection) *AgreementRepository {
	return &AgreementRepository{q: conn}
}

// newAgreementRepositoryWithQuerier binds the repository to a transaction.
func newAgreementRepositoryWithQuerier(q Querier) *AgreementRepository {
	return &AgreementRepository{q: q}
}

// Create creates a new agreement. The partial unique index on non-rejected
// agreements turns concurrent creation into shared.ErrAgreementExists.
func (r *AgreementRepository) Create(ctx context.Context, ag *agreement.Agreement) error {
	query := `
		INSERT INTO agreements (
			id, application_id, document_ref, approval_status,
			faculty_validator_id, faculty_validated_at, faculty_rejection_reason,
			admin_approver_id, admin_decided_at, admin_rejection_reason,
			student_signed_at, company_signed_at, faculty_signed_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.q.Exec(ctx, query,
		ag.ID.String(),
		ag.ApplicationID.String(),
		ag.DocumentRef,
		ag.ApprovalStatus.String(),
		userIDOrNil(ag.FacultyValidatorID),
		ag.FacultyValidatedAt,
		ag.FacultyRejectionReason,
		userIDOrNil(ag.AdminApproverID),
		ag.AdminDecidedAt,
		ag.AdminRejectionReason,
		ag.Signatures.Student.SignedAt,
		ag.Signatures.Company.SignedAt,
		ag.Signatures.Faculty.SignedAt,
		ag.CreatedAt,
		ag.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAgreementExists
		}
		return fmt.Errorf("failed to create agreement: %w", err)
	}

	return nil
}

// GetByID returns an agreement by ID.
func (r *AgreementRepository) GetByID(ctx context.Context, id shared.AgreementID) (*agreement.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements a WHERE a.id = $1`
	return r.scanAgreement(r.q.QueryRow(ctx, query, id.String()))
}

// GetByIDForUpdate returns an agreement by ID with an exclusive row lock.
// Only meaningful inside a transaction.
func (r *AgreementRepository) GetByIDForUpdate(ctx context.Context, id shared.AgreementID) (*agreement.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements a WHERE a.id = $1 FOR UPDATE`
	return r.scanAgreement(r.q.QueryRow(ctx, query, id.String()))
}

// GetActiveByApplicationID returns the non-rejected agreement for an application.
func (r *AgreementRepository) GetActiveByApplicationID(ctx context.Context, applicationID shared.ApplicationID) (*agreement.Agreement, error) {
	query := `
		SELECT ` + agreementColumns + `
		FROM agreements a
		WHERE a.application_id = $1 AND a.approval_status != 'REJECTED'
	`
	return r.scanAgreement(r.q.QueryRow(ctx, query, applicationID.String()))
}

// Update updates an agreement.
func (r *AgreementRepository) Update(ctx context.Context, ag *agreement.Agreement) error {
	query := `
		UPDATE agreements SET
			approval_status = $1,
			faculty_validator_id = $2,
			faculty_validated_at = $3,
			faculty_rejection_reason = $4,
			admin_approver_id = $5,
			admin_decided_at = $6,
			admin_rejection_reason = $7,
			student_signed_at = $8,
			company_signed_at = $9,
			faculty_signed_at = $10,
			updated_at = $11
		WHERE id = $12
	`

	tag, err := r.q.Exec(ctx, query,
		ag.ApprovalStatus.String(),
		userIDOrNil(ag.FacultyValidatorID),
		ag.FacultyValidatedAt,
		ag.FacultyRejectionReason,
		userIDOrNil(ag.AdminApproverID),
		ag.AdminDecidedAt,
		ag.AdminRejectionReason,
		ag.Signatures.Student.SignedAt,
		ag.Signatures.Company.SignedAt,
		ag.Signatures.Faculty.SignedAt,
		ag.UpdatedAt,
		ag.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update agreement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrAgreementNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scoped Listings
// ─────────────────────────────────────────────────────────────────────────────

// ListAll returns all agreements, newest first.
func (r *AgreementRepository) ListAll(ctx context.Context, opts agreement.ListOptions) ([]*agreement.Agreement, error) {
	query := `
		SELECT ` + agreementColumns + `
		FROM agreements a
		ORDER BY a.created_at DESC
		OFFSET $1 LIMIT $2
	`
	return r.queryAgreements(ctx, query, opts.Offset, opts.Limit)
}

// ListByApprovalStatus returns agreements in the given approval state, newest first.
func (r *AgreementRepository) ListByApprovalStatus(ctx context.Context, status agreement.ApprovalStatus, opts agreement.ListOptions) ([]*agreement.Agreement, error) {
	query := `
		SELECT ` + agreementColumns + `
		FROM agreements a
		WHERE a.approval_status = $1
		ORDER BY a.created_at DESC
		OFFSET $2 LIMIT $3
	`
	return r.queryAgreements(ctx, query, status.String(), opts.Offset, opts.Limit)
}

// ListPendingValidationForFaculty returns the faculty's validation queue:
// agreements awaiting validation whose student belongs to the faculty and
// that are unclaimed or claimed by the given validator.
func (r *AgreementRepository) ListPendingValidationForFaculty(ctx context.Context, facultyID shared.FacultyID, validatorID shared.UserID, opts agreement.ListOptions) ([]*agreement.Agreement, error) {
	query := `
		SELECT ` + agreementColumns + `
		FROM agreements a
		JOIN applications ap ON ap.id = a.application_id
		WHERE a.approval_status = 'PENDING_FACULTY_VALIDATION'
		  AND ap.student_faculty_id = $1
		  AND (a.faculty_validator_id IS NULL OR a.faculty_validator_id = $2)
		ORDER BY a.created_at ASC
		OFFSET $3 LIMIT $4
	`
	return r.queryAgreements(ctx, query, facultyID.String(), validatorID.String(), opts.Offset, opts.Limit)
}

// ListByStudent returns agreements whose application belongs to the student.
func (r *AgreementRepository) ListByStudent(ctx context.Context, studentID shared.UserID, opts agreement.ListOptions) ([]*agreement.Agreement, error) {
	query := `
		SELECT ` + agreementColumns + `
		FROM agreements a
		JOIN applications ap ON ap.id = a.application_id
		WHERE ap.student_id = $1
		ORDER BY a.created_at DESC
		OFFSET $2 LIMIT $3
	`
	return r.queryAgreements(ctx, query, studentID.String(), opts.Offset, opts.Limit)
}

// ListByCompanyOwner returns agreements whose application targets an offer
// owned by the given company user.
func (r *AgreementRepository) ListByCompanyOwner(ctx context.Context, ownerID shared.UserID, opts agreement.ListOptions) ([]*agreement.Agreement, error) {
	query := `
		SELECT ` + agreementColumns + `
		FROM agreements a
		JOIN applications ap ON ap.id = a.application_id
		WHERE ap.company_owner_id = $1
		ORDER BY a.created_at DESC
		OFFSET $2 LIMIT $3
	`
	return r.queryAgreements(ctx, query, ownerID.String(), opts.Offset, opts.Limit)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *AgreementRepository) queryAgreements(ctx context.Context, query string, args ...interface{}) ([]*agreement.Agreement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query agreements: %w", err)
	}
	defer rows.Close()

	var out []*agreement.Agreement
	for rows.Next() {
		ag, err := r.scanAgreement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ag)
	}
	return out, rows.Err()
}

func (r *AgreementRepository) scanAgreement(row rowScanner) (*agreement.Agreement, error) {
	var ag agreement.Agreement
	var id, applicationID, approvalStatus string
	var validatorID, approverID *string
	var studentSignedAt, companySignedAt, facultySignedAt *time.Time

	err := row.Scan(
		&id,
		&applicationID,
		&ag.DocumentRef,
		&approvalStatus,
		&validatorID,
		&ag.FacultyValidatedAt,
		&ag.FacultyRejectionReason,
		&approverID,
		&ag.AdminDecidedAt,
		&ag.AdminRejectionReason,
		&studentSignedAt,
		&companySignedAt,
		&facultySignedAt,
		&ag.CreatedAt,
		&ag.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrAgreementNotFound
		}
		return nil, fmt.Errorf("failed to scan agreement: %w", err)
	}

	ag.ID = shared.AgreementID(id)
	ag.ApplicationID = shared.ApplicationID(applicationID)
	ag.ApprovalStatus = agreement.ApprovalStatus(approvalStatus)
	if validatorID != nil {
		uid := shared.UserID(*validatorID)
		ag.FacultyValidatorID = &uid
	}
	if approverID != nil {
		uid := shared.UserID(*approverID)
		ag.AdminApproverID = &uid
	}
	ag.Signatures.Student = signatureFromTimestamp(studentSignedAt)
	ag.Signatures.Company = signatureFromTimestamp(companySignedAt)
	ag.Signatures.Faculty = signatureFromTimestamp(facultySignedAt)

	return &ag, nil
}

// signatureFromTimestamp restores a signature record from its stored
// timestamp: a slot is signed iff the timestamp is set.
func signatureFromTimestamp(ts *time.Time) agreement.SignatureRecord {
	if ts == nil {
		return agreement.SignatureRecord{}
	}
	return agreement.SignatureRecord{Signed: true, SignedAt: ts}
}

// userIDOrNil maps an optional user ID to a nullable column value.
func userIDOrNil(id *shared.UserID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}
