// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents a completed state transition
// that other parts of the system may react to.
const (
	// Application events
	EventApplicationViewed  EventType = "application.viewed"
	EventApplicationDecided EventType = "application.decided"

	// Agreement workflow events
	EventAgreementCreated          EventType = "agreement.created"
	EventAgreementFacultyValidated EventType = "agreement.faculty_validated"
	EventAgreementFacultyRejected  EventType = "agreement.faculty_rejected"
	EventAgreementAdminApproved    EventType = "agreement.admin_approved"
	EventAgreementAdminRejected    EventType = "agreement.admin_rejected"

	// Signature events
	EventAgreementSigned      EventType = "agreement.signed"
	EventAgreementFullySigned EventType = "agreement.fully_signed"

	// Notification events
	EventNotificationSent   EventType = "notification.sent"
	EventNotificationFailed EventType = "notification.failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// Payload implements Event interface. A bare BaseEvent carries no data
// beyond its envelope; typed events shadow this with their own fields.
func (e BaseEvent) Payload() map[string]interface{} {
	return map[string]interface{}{}
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Application Events
// ═══════════════════════════════════════════════════════════════════════════

// ApplicationViewedEvent is emitted the first time the offer owner opens
// an application.
type ApplicationViewedEvent struct {
	BaseEvent
	ApplicationID string `json:"application_id"`
	StudentID     string `json:"student_id"`
	ViewedBy      string `json:"viewed_by"`
}

// Payload implements Event interface.
func (e ApplicationViewedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"application_id": e.ApplicationID,
		"student_id":     e.StudentID,
		"viewed_by":      e.ViewedBy,
	}
}

// NewApplicationViewedEvent creates a new ApplicationViewedEvent.
func NewApplicationViewedEvent(applicationID, studentID, viewedBy string) ApplicationViewedEvent {
	return ApplicationViewedEvent{
		BaseEvent:     NewBaseEvent(EventApplicationViewed, applicationID),
		ApplicationID: applicationID,
		StudentID:     studentID,
		ViewedBy:      viewedBy,
	}
}

// ApplicationDecidedEvent is emitted when a company records a hiring decision.
type ApplicationDecidedEvent struct {
	BaseEvent
	ApplicationID string `json:"application_id"`
	StudentID     string `json:"student_id"`
	Decision      string `json:"decision"` // "ACCEPT" or "REJECT"
	DecidedBy     string `json:"decided_by"`
}

// Payload implements Event interface.
func (e ApplicationDecidedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"application_id": e.ApplicationID,
		"student_id":     e.StudentID,
		"decision":       e.Decision,
		"decided_by":     e.DecidedBy,
	}
}

// NewApplicationDecidedEvent creates a new ApplicationDecidedEvent.
func NewApplicationDecidedEvent(applicationID, studentID, decision, decidedBy string) ApplicationDecidedEvent {
	return ApplicationDecidedEvent{
		BaseEvent:     NewBaseEvent(EventApplicationDecided, applicationID),
		ApplicationID: applicationID,
		StudentID:     studentID,
		Decision:      decision,
		DecidedBy:     decidedBy,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Agreement Workflow Events
// ═══════════════════════════════════════════════════════════════════════════

// AgreementCreatedEvent is emitted when a new agreement enters the workflow.
type AgreementCreatedEvent struct {
	BaseEvent
	AgreementID   string `json:"agreement_id"`
	ApplicationID string `json:"application_id"`
	StudentID     string `json:"student_id"`
	DocumentRef   string `json:"document_ref"`
}

// Payload implements Event interface.
func (e AgreementCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"agreement_id":   e.AgreementID,
		"application_id": e.ApplicationID,
		"student_id":     e.StudentID,
		"document_ref":   e.DocumentRef,
	}
}

// NewAgreementCreatedEvent creates a new AgreementCreatedEvent.
func NewAgreementCreatedEvent(agreementID, applicationID, studentID, documentRef string) AgreementCreatedEvent {
	return AgreementCreatedEvent{
		BaseEvent:     NewBaseEvent(EventAgreementCreated, agreementID),
		AgreementID:   agreementID,
		ApplicationID: applicationID,
		StudentID:     studentID,
		DocumentRef:   documentRef,
	}
}

// AgreementReviewedEvent is emitted when a validator or admin decides on an agreement.
type AgreementReviewedEvent struct {
	BaseEvent
	AgreementID string `json:"agreement_id"`
	ReviewerID  string `json:"reviewer_id"`
	Accepted    bool   `json:"accepted"`
	Reason      string `json:"reason,omitempty"`
	NewStatus   string `json:"new_status"`
}

// Payload implements Event interface.
func (e AgreementReviewedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"agreement_id": e.AgreementID,
		"reviewer_id":  e.ReviewerID,
		"accepted":     e.Accepted,
		"reason":       e.Reason,
		"new_status":   e.NewStatus,
	}
}

// NewAgreementReviewedEvent creates a review event of the given type
// (faculty validated/rejected, admin approved/rejected).
func NewAgreementReviewedEvent(eventType EventType, agreementID, reviewerID string, accepted bool, reason, newStatus string) AgreementReviewedEvent {
	return AgreementReviewedEvent{
		BaseEvent:   NewBaseEvent(eventType, agreementID),
		AgreementID: agreementID,
		ReviewerID:  reviewerID,
		Accepted:    accepted,
		Reason:      reason,
		NewStatus:   newStatus,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Signature Events
// ═══════════════════════════════════════════════════════════════════════════

// AgreementSignedEvent is emitted when one party signs an agreement.
type AgreementSignedEvent struct {
	BaseEvent
	AgreementID string `json:"agreement_id"`
	SignerID    string `json:"signer_id"`
	Slot        string `json:"slot"` // "student", "company", "faculty"
	FullySigned bool   `json:"fully_signed"`
}

// Payload implements Event interface.
func (e AgreementSignedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"agreement_id": e.AgreementID,
		"signer_id":    e.SignerID,
		"slot":         e.Slot,
		"fully_signed": e.FullySigned,
	}
}

// NewAgreementSignedEvent creates a new AgreementSignedEvent.
func NewAgreementSignedEvent(agreementID, signerID, slot string, fullySigned bool) AgreementSignedEvent {
	eventType := EventAgreementSigned
	if fullySigned {
		eventType = EventAgreementFullySigned
	}
	return AgreementSignedEvent{
		BaseEvent:   NewBaseEvent(eventType, agreementID),
		AgreementID: agreementID,
		SignerID:    signerID,
		Slot:        slot,
		FullySigned: fullySigned,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
