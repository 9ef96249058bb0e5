// Package application contains the internship application aggregate.
// An application tracks a student's candidacy for a company's internship
// offer and gate-keeps the agreement workflow: only ACCEPTED applications
// may enter it.
package application

import (
	"time"

	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// STATUS
// ═══════════════════════════════════════════════════════════════════════════

// Status defines the application lifecycle state.
type Status string

const (
	// StatusPending - submitted, not yet seen by the company.
	StatusPending Status = "PENDING"
	// StatusViewed - the company has opened the application.
	StatusViewed Status = "VIEWED"
	// StatusAccepted - the company accepted the candidate.
	StatusAccepted Status = "ACCEPTED"
	// StatusRejected - the company rejected the candidate.
	StatusRejected Status = "REJECTED"
	// StatusAwaitingAgreement - an agreement has been created for this
	// application; set by the workflow engine, not by the company.
	StatusAwaitingAgreement Status = "AWAITING_AGREEMENT"
)

// IsValid checks that the status is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusViewed, StatusAccepted, StatusRejected, StatusAwaitingAgreement:
		return true
	default:
		return false
	}
}

// IsDecided returns true once the company's hiring decision is terminal.
// AWAITING_AGREEMENT counts as decided: it is only reachable from ACCEPTED.
func (s Status) IsDecided() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusAwaitingAgreement
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ═══════════════════════════════════════════════════════════════════════════
// DECISION
// ═══════════════════════════════════════════════════════════════════════════

// Decision is the company's hiring decision on an application.
type Decision string

const (
	// DecisionAccept - hire the candidate.
	DecisionAccept Decision = "ACCEPT"
	// DecisionReject - pass on the candidate.
	DecisionReject Decision = "REJECT"
)

// IsValid checks that the decision is one of the known decisions.
func (d Decision) IsValid() bool {
	return d == DecisionAccept || d == DecisionReject
}

// String returns the string representation of the decision.
func (d Decision) String() string {
	return string(d)
}

// ═══════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: APPLICATION
// ═══════════════════════════════════════════════════════════════════════════

// Application represents a student's candidacy for an internship offer.
type Application struct {
	// ID - internal unique identifier (UUID in string form).
	ID shared.ApplicationID

	// StudentID - the applying student.
	StudentID shared.UserID

	// StudentName - display name of the student, carried for documents
	// and notification messages.
	StudentName string

	// StudentFacultyID - the student's academic affiliation; the workflow
	// engine matches validators against it.
	StudentFacultyID shared.FacultyID

	// OfferID - the internship offer applied to.
	OfferID shared.OfferID

	// OfferTitle - title of the offer, carried for documents.
	OfferTitle string

	// CompanyID - the company behind the offer.
	CompanyID shared.CompanyID

	// CompanyName - display name of the company, carried for documents.
	CompanyName string

	// CompanyOwnerID - the user who owns the offer (primary company contact).
	CompanyOwnerID shared.UserID

	// CoverNote - optional free-text note from the student.
	CoverNote string

	// Status - current lifecycle state.
	Status Status

	// DecidedAt - when the company recorded its decision (nil before).
	DecidedAt *time.Time

	// SubmittedAt - when the student submitted the application.
	SubmittedAt time.Time

	// CreatedAt, UpdatedAt - audit timestamps.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarkViewed transitions PENDING to VIEWED. Idempotent: any other status
// is left untouched. Returns true if the status changed.
func (a *Application) MarkViewed(now time.Time) bool {
	if a.Status != StatusPending {
		return false
	}
	a.Status = StatusViewed
	a.UpdatedAt = now
	return true
}

// RecordDecision records the company's terminal hiring decision.
// Returns ErrApplicationAlreadyDecided once a decision exists.
func (a *Application) RecordDecision(decision Decision, now time.Time) error {
	if !decision.IsValid() {
		return shared.NewDomainError("application", "RecordDecision", shared.ErrInvalidInput, "unknown decision "+decision.String())
	}
	if a.Status.IsDecided() {
		return shared.ErrApplicationAlreadyDecided
	}
	switch decision {
	case DecisionAccept:
		a.Status = StatusAccepted
	case DecisionReject:
		a.Status = StatusRejected
	}
	a.DecidedAt = &now
	a.UpdatedAt = now
	return nil
}

// AwaitAgreement flips ACCEPTED to AWAITING_AGREEMENT. Called by the
// agreement workflow engine as a side effect of agreement creation.
func (a *Application) AwaitAgreement(now time.Time) error {
	if a.Status != StatusAccepted {
		return shared.ErrApplicationNotAccepted
	}
	a.Status = StatusAwaitingAgreement
	a.UpdatedAt = now
	return nil
}

// IsOwnedByStudent returns true if the given user is the applying student.
func (a *Application) IsOwnedByStudent(userID shared.UserID) bool {
	return !userID.IsEmpty() && a.StudentID == userID
}

// IsOwnedByCompanyUser returns true if the given user owns the offer behind
// this application.
func (a *Application) IsOwnedByCompanyUser(userID shared.UserID) bool {
	return !userID.IsEmpty() && a.CompanyOwnerID == userID
}
