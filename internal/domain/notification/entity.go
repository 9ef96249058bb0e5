// Package notification contains the in-app notification model. Notifications
// are recorded transactionally alongside the workflow transition that caused
// them and delivered to live channels asynchronously, best-effort: a channel
// failure never rolls back the transition.
package notification

import (
	"time"

	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION TYPE
// ══════════════════════════════════════════════════════════════════════════════

// Type identifies the workflow event a notification reports.
type Type string

const (
	// TypeApplicationViewed - the company opened the student's application.
	TypeApplicationViewed Type = "APPLICATION_VIEWED"
	// TypeApplicationAccepted - the company accepted the application.
	TypeApplicationAccepted Type = "APPLICATION_ACCEPTED"
	// TypeApplicationRejected - the company rejected the application.
	TypeApplicationRejected Type = "APPLICATION_REJECTED"
	// TypeAgreementCreated - an agreement was generated for the student.
	TypeAgreementCreated Type = "AGREEMENT_CREATED"
	// TypeAgreementValidated - faculty validated the agreement.
	TypeAgreementValidated Type = "AGREEMENT_VALIDATED"
	// TypeAgreementApproved - admin approved the agreement.
	TypeAgreementApproved Type = "AGREEMENT_APPROVED"
	// TypeAgreementRejected - faculty or admin rejected the agreement.
	TypeAgreementRejected Type = "AGREEMENT_REJECTED"
	// TypeAgreementSigned - one party placed their signature.
	TypeAgreementSigned Type = "AGREEMENT_SIGNED"
	// TypeAgreementFullySigned - all three parties have signed.
	TypeAgreementFullySigned Type = "AGREEMENT_FULLY_SIGNED"
)

// IsValid checks that the type is one of the known notification types.
func (t Type) IsValid() bool {
	switch t {
	case TypeApplicationViewed, TypeApplicationAccepted, TypeApplicationRejected,
		TypeAgreementCreated, TypeAgreementValidated, TypeAgreementApproved,
		TypeAgreementRejected, TypeAgreementSigned, TypeAgreementFullySigned:
		return true
	default:
		return false
	}
}

// String returns the string representation of the type.
func (t Type) String() string {
	return string(t)
}

// Category groups types for display purposes.
func (t Type) Category() string {
	switch t {
	case TypeApplicationViewed, TypeApplicationAccepted, TypeApplicationRejected:
		return "application"
	default:
		return "agreement"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DELIVERY STATUS
// ══════════════════════════════════════════════════════════════════════════════

// DeliveryStatus tracks progress of the asynchronous live delivery.
// The in-app record itself is always available regardless of this status.
type DeliveryStatus string

const (
	// DeliveryPending - not yet handed to a live channel.
	DeliveryPending DeliveryStatus = "pending"
	// DeliveryDelivered - at least one live channel accepted it.
	DeliveryDelivered DeliveryStatus = "delivered"
	// DeliveryFailed - all delivery attempts exhausted.
	DeliveryFailed DeliveryStatus = "failed"
)

// IsValid checks that the status is one of the known delivery statuses.
func (s DeliveryStatus) IsValid() bool {
	return s == DeliveryPending || s == DeliveryDelivered || s == DeliveryFailed
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: NOTIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// Notification is one in-app message addressed to a single recipient.
type Notification struct {
	// ID - internal unique identifier.
	ID string

	// RecipientID - the user this notification is addressed to.
	RecipientID shared.UserID

	// Type - the workflow event being reported.
	Type Type

	// Message - human-readable text.
	Message string

	// Link - relative path to the subject resource, e.g. an agreement.
	Link string

	// IsRead - set when the recipient opens the notification.
	IsRead bool

	// DeliveryStatus, Attempts, LastError - live delivery bookkeeping,
	// maintained by the dispatcher.
	DeliveryStatus DeliveryStatus
	Attempts       int
	LastError      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a pending notification.
func New(id string, recipientID shared.UserID, typ Type, message, link string, now time.Time) *Notification {
	return &Notification{
		ID:             id,
		RecipientID:    recipientID,
		Type:           typ,
		Message:        message,
		Link:           link,
		DeliveryStatus: DeliveryPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// MarkRead marks the notification as read. Idempotent.
func (n *Notification) MarkRead(now time.Time) {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.UpdatedAt = now
}

// MarkDelivered records a successful live delivery.
func (n *Notification) MarkDelivered(now time.Time) {
	n.DeliveryStatus = DeliveryDelivered
	n.UpdatedAt = now
}

// RecordAttempt records a failed delivery attempt. Once maxAttempts is
// reached the notification is marked failed and will not be retried.
func (n *Notification) RecordAttempt(err error, maxAttempts int, now time.Time) {
	n.Attempts++
	if err != nil {
		n.LastError = err.Error()
	}
	if n.Attempts >= maxAttempts {
		n.DeliveryStatus = DeliveryFailed
	}
	n.UpdatedAt = now
}
