// Package query contains read operations (CQRS - Queries).
package query

import (
	"time"

	"github.com/stagehub/internship-hub/internal/domain/agreement"
	"github.com/stagehub/internship-hub/internal/domain/application"
	"github.com/stagehub/internship-hub/internal/domain/notification"
)

// ══════════════════════════════════════════════════════════════════════════════
// DTOs
// Read models returned to the interface layer. Statuses are published
// statuses: an agreement with all three signatures reads as SIGNED.
// ══════════════════════════════════════════════════════════════════════════════

// SignatureDTO is the read model of one signature slot.
type SignatureDTO struct {
	Signed   bool       `json:"signed"`
	SignedAt *time.Time `json:"signed_at,omitempty"`
}

// AgreementDTO is the read model of an agreement.
type AgreementDTO struct {
	ID            string `json:"id"`
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
	DocumentRef   string `json:"document_ref"`

	FacultyValidatorID     string     `json:"faculty_validator_id,omitempty"`
	FacultyValidatedAt     *time.Time `json:"faculty_validated_at,omitempty"`
	FacultyRejectionReason string     `json:"faculty_rejection_reason,omitempty"`

	AdminApproverID      string     `json:"admin_approver_id,omitempty"`
	AdminDecidedAt       *time.Time `json:"admin_decided_at,omitempty"`
	AdminRejectionReason string     `json:"admin_rejection_reason,omitempty"`

	Signatures struct {
		Student SignatureDTO `json:"student"`
		Company SignatureDTO `json:"company"`
		Faculty SignatureDTO `json:"faculty"`
	} `json:"signatures"`

	// Application summary, denormalized for list views.
	StudentName  string `json:"student_name,omitempty"`
	OfferTitle   string `json:"offer_title,omitempty"`
	CompanyName  string `json:"company_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToAgreementDTO maps an agreement (and optionally its application) to the
// read model.
func ToAgreementDTO(ag *agreement.Agreement, app *application.Application) AgreementDTO {
	dto := AgreementDTO{
		ID:                     ag.ID.String(),
		ApplicationID:          ag.ApplicationID.String(),
		Status:                 ag.Status().String(),
		DocumentRef:            ag.DocumentRef,
		FacultyValidatedAt:     ag.FacultyValidatedAt,
		FacultyRejectionReason: ag.FacultyRejectionReason,
		AdminDecidedAt:         ag.AdminDecidedAt,
		AdminRejectionReason:   ag.AdminRejectionReason,
		CreatedAt:              ag.CreatedAt,
		UpdatedAt:              ag.UpdatedAt,
	}
	if ag.FacultyValidatorID != nil {
		dto.FacultyValidatorID = ag.FacultyValidatorID.String()
	}
	if ag.AdminApproverID != nil {
		dto.AdminApproverID = ag.AdminApproverID.String()
	}
	dto.Signatures.Student = SignatureDTO{Signed: ag.Signatures.Student.Signed, SignedAt: ag.Signatures.Student.SignedAt}
	dto.Signatures.Company = SignatureDTO{Signed: ag.Signatures.Company.Signed, SignedAt: ag.Signatures.Company.SignedAt}
	dto.Signatures.Faculty = SignatureDTO{Signed: ag.Signatures.Faculty.Signed, SignedAt: ag.Signatures.Faculty.SignedAt}
	if app != nil {
		dto.StudentName = app.StudentName
		dto.OfferTitle = app.OfferTitle
		dto.CompanyName = app.CompanyName
	}
	return dto
}

// NotificationDTO is the read model of an in-app notification.
type NotificationDTO struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// toNotificationDTO maps a notification to the read model.
func toNotificationDTO(n *notification.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Type:      n.Type.String(),
		Category:  n.Type.Category(),
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
