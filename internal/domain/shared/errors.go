// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation   = errors.New("validation error")
	ErrInvalidID    = errors.New("invalid ID")
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyValue   = errors.New("value cannot be empty")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")

	// Authorization errors
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "agreement", "application", "notification"
	Op      string // Operation that failed, e.g., "Validate", "Sign"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Application domain errors
var (
	ErrApplicationNotFound       = NewDomainError("application", "Find", ErrNotFound, "application not found")
	ErrApplicationExists         = NewDomainError("application", "Create", ErrAlreadyExists, "application already exists for this student and offer")
	ErrApplicationAlreadyDecided = NewDomainError("application", "RecordDecision", ErrInvalidState, "application decision has already been recorded")
	ErrApplicationNotAccepted    = NewDomainError("application", "CheckStatus", ErrInvalidState, "application is not in ACCEPTED status")
	ErrNotOfferOwner             = NewDomainError("application", "Authorize", ErrForbidden, "actor does not own the offer behind this application")
)

// Agreement domain errors
var (
	ErrAgreementNotFound          = NewDomainError("agreement", "Find", ErrNotFound, "agreement not found")
	ErrAgreementExists            = NewDomainError("agreement", "Create", ErrAlreadyExists, "agreement already exists for this application")
	ErrNotPendingValidation       = NewDomainError("agreement", "Validate", ErrInvalidState, "agreement is not pending faculty validation")
	ErrNotPendingApproval         = NewDomainError("agreement", "Approve", ErrInvalidState, "agreement is not pending admin approval")
	ErrRejectionReasonRequired    = NewDomainError("agreement", "Reject", ErrInvalidInput, "rejection reason is required when rejecting an agreement")
	ErrAlreadySigned              = NewDomainError("agreement", "Sign", ErrInvalidInput, "agreement slot is already signed")
	ErrNotAuthorizedToView        = NewDomainError("agreement", "Get", ErrForbidden, "actor is not authorized to view this agreement")
	ErrNotAuthorizedToValidate    = NewDomainError("agreement", "Validate", ErrForbidden, "actor is not authorized to validate this agreement")
	ErrNotAuthorizedToSign        = NewDomainError("agreement", "Sign", ErrForbidden, "actor is not authorized to sign this agreement")
	ErrDocumentGenerationFailed   = NewDomainError("agreement", "Create", ErrExternalService, "failed to generate agreement document")
	ErrAgreementCreationForbidden = NewDomainError("agreement", "Create", ErrForbidden, "actor is not authorized to create this agreement")
)

// Identity domain errors
var (
	ErrNoActor     = NewDomainError("identity", "CurrentActor", ErrUnauthenticated, "no valid actor context")
	ErrInvalidRole = NewDomainError("identity", "Validate", ErrInvalidInput, "invalid actor role")
	ErrRoleMissing = NewDomainError("identity", "Authorize", ErrForbidden, "actor does not hold the required role")
)

// Notification domain errors
var (
	ErrNotificationNotFound = NewDomainError("notification", "Find", ErrNotFound, "notification not found")
	ErrNotificationFailed   = NewDomainError("notification", "Send", ErrExternalService, "failed to send notification")
	ErrInvalidChannel       = NewDomainError("notification", "Validate", ErrInvalidInput, "invalid notification channel")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden checks if the error is an authorization failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsInvalidState checks if the error is a state precondition failure.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrStateTransition)
}

// IsBadRequest checks if the error is a client input error.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue)
}

// IsUnauthenticated checks if the error is a missing actor context.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
