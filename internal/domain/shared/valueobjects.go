// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// UserID identifies a platform user (student, company contact, faculty, admin).
type UserID string

// IsValid checks if the user ID is a valid UUID.
func (u UserID) IsValid() bool {
	return uuidRegex.MatchString(string(u))
}

// IsEmpty checks if the ID is empty.
func (u UserID) IsEmpty() bool {
	return u == ""
}

// String returns the string representation.
func (u UserID) String() string {
	return string(u)
}

// NewUserID creates a new UserID with validation.
func NewUserID(id string) (UserID, error) {
	uid := UserID(strings.ToLower(strings.TrimSpace(id)))
	if !uid.IsValid() {
		return "", NewDomainError("shared", "NewUserID", ErrInvalidID, "invalid user ID format")
	}
	return uid, nil
}

// ApplicationID identifies an internship application.
type ApplicationID string

// IsValid checks if the application ID is a valid UUID.
func (a ApplicationID) IsValid() bool {
	return uuidRegex.MatchString(string(a))
}

// IsEmpty checks if the ID is empty.
func (a ApplicationID) IsEmpty() bool {
	return a == ""
}

// String returns the string representation.
func (a ApplicationID) String() string {
	return string(a)
}

// AgreementID identifies an internship agreement.
type AgreementID string

// IsValid checks if the agreement ID is a valid UUID.
func (a AgreementID) IsValid() bool {
	return uuidRegex.MatchString(string(a))
}

// IsEmpty checks if the ID is empty.
func (a AgreementID) IsEmpty() bool {
	return a == ""
}

// String returns the string representation.
func (a AgreementID) String() string {
	return string(a)
}

// OfferID identifies an internship offer published by a company.
type OfferID string

// String returns the string representation.
func (o OfferID) String() string {
	return string(o)
}

// IsEmpty checks if the ID is empty.
func (o OfferID) IsEmpty() bool {
	return o == ""
}

// CompanyID identifies a company.
type CompanyID string

// String returns the string representation.
func (c CompanyID) String() string {
	return string(c)
}

// IsEmpty checks if the ID is empty.
func (c CompanyID) IsEmpty() bool {
	return c == ""
}

// FacultyID identifies an academic affiliation (faculty/department).
type FacultyID string

// String returns the string representation.
func (f FacultyID) String() string {
	return string(f)
}

// IsEmpty checks if the ID is empty.
func (f FacultyID) IsEmpty() bool {
	return f == ""
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// NewPagination creates a new Pagination with defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// DefaultPagination returns default pagination.
func DefaultPagination() Pagination {
	return NewPagination(1, DefaultPageSize)
}
