package postgres

import (
	"context"
	"fmt"

	"github.com/stagehub/internship-hub/internal/domain/application"
	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const applicationColumns = `
	id, student_id, student_name, student_faculty_id,
	offer_id, offer_title, company_id, company_name, company_owner_id,
	cover_note, status, decided_at, submitted_at, created_at, updated_at
`

// ApplicationRepository implements application.Repository for PostgreSQL.
type ApplicationRepository struct {
	q Querier
}

// NewApplicationRepository creates a new ApplicationRepository backed by the
// connection pool.
func NewApplicationRepository(conn *Connection) *ApplicationRepository {
	return &ApplicationRepository{q: conn}
}

// newApplicationRepositoryWithQuerier binds the repository to a transaction.
func newApplicationRepositoryWithQuerier(q Querier) *ApplicationRepository {
	return &ApplicationRepository{q: q}
}

// Create creates a new application.
func (r *ApplicationRepository) Create(ctx context.Context, app *application.Application) error {
	query := `
		INSERT INTO applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.q.Exec(ctx, query,
		app.ID.String(),
		app.StudentID.String(),
		app.StudentName,
		app.StudentFacultyID.String(),
		app.OfferID.String(),
		app.OfferTitle,
		app.CompanyID.String(),
		app.CompanyName,
		app.CompanyOwnerID.String(),
		app.CoverNote,
		app.Status.String(),
		app.DecidedAt,
		app.SubmittedAt,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrApplicationExists
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetByID returns an application by ID.
func (r *ApplicationRepository) GetByID(ctx context.Context, id shared.ApplicationID) (*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return r.scanApplication(r.q.QueryRow(ctx, query, id.String()))
}

// GetByIDForUpdate returns an application by ID with an exclusive row lock.
// Only meaningful inside a transaction.
func (r *ApplicationRepository) GetByIDForUpdate(ctx context.Context, id shared.ApplicationID) (*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 FOR UPDATE`
	return r.scanApplication(r.q.QueryRow(ctx, query, id.String()))
}

// Update updates an application.
func (r *ApplicationRepository) Update(ctx context.Context, app *application.Application) error {
	query := `
		UPDATE applications SET
			student_name = $1,
			cover_note = $2,
			status = $3,
			decided_at = $4,
			updated_at = $5
		WHERE id = $6
	`

	tag, err := r.q.Exec(ctx, query,
		app.StudentName,
		app.CoverNote,
		app.Status.String(),
		app.DecidedAt,
		app.UpdatedAt,
		app.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrApplicationNotFound
	}

	return nil
}

// GetByIDs returns the applications matching the given IDs.
func (r *ApplicationRepository) GetByIDs(ctx context.Context, ids []shared.ApplicationID) ([]*application.Application, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = ANY($1)`
	rows, err := r.q.Query(ctx, query, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications by ids: %w", err)
	}
	defer rows.Close()

	return r.collectApplications(rows)
}

// ListByStudent returns the student's applications, newest first.
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID shared.UserID, opts application.ListOptions) ([]*application.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE student_id = $1
		ORDER BY submitted_at DESC
		OFFSET $2 LIMIT $3
	`
	rows, err := r.q.Query(ctx, query, studentID.String(), opts.Offset, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by student: %w", err)
	}
	defer rows.Close()

	return r.collectApplications(rows)
}

// ListByCompanyOwner returns the applications to the owner's offers, newest first.
func (r *ApplicationRepository) ListByCompanyOwner(ctx context.Context, ownerID shared.UserID, opts application.ListOptions) ([]*application.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE company_owner_id = $1
		ORDER BY submitted_at DESC
		OFFSET $2 LIMIT $3
	`
	rows, err := r.q.Query(ctx, query, ownerID.String(), opts.Offset, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by company owner: %w", err)
	}
	defer rows.Close()

	return r.collectApplications(rows)
}

// ListByStatus returns applications with the given status, newest first.
func (r *ApplicationRepository) ListByStatus(ctx context.Context, status application.Status, opts application.ListOptions) ([]*application.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE status = $1
		ORDER BY submitted_at DESC
		OFFSET $2 LIMIT $3
	`
	rows, err := r.q.Query(ctx, query, status.String(), opts.Offset, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by status: %w", err)
	}
	defer rows.Close()

	return r.collectApplications(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ApplicationRepository) scanApplication(row rowScanner) (*application.Application, error) {
	var app application.Application
	var id, studentID, facultyID, offerID, companyID, ownerID, status string

	err := row.Scan(
		&id,
		&studentID,
		&app.StudentName,
		&facultyID,
		&offerID,
		&app.OfferTitle,
		&companyID,
		&app.CompanyName,
		&ownerID,
		&app.CoverNote,
		&status,
		&app.DecidedAt,
		&app.SubmittedAt,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	app.ID = shared.ApplicationID(id)
	app.StudentID = shared.UserID(studentID)
	app.StudentFacultyID = shared.FacultyID(facultyID)
	app.OfferID = shared.OfferID(offerID)
	app.CompanyID = shared.CompanyID(companyID)
	app.CompanyOwnerID = shared.UserID(ownerID)
	app.Status = application.Status(status)

	return &app, nil
}

func (r *ApplicationRepository) collectApplications(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]*application.Application, error) {
	var out []*application.Application
	for rows.Next() {
		app, err := r.scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}
