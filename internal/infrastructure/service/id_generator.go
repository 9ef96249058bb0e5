package service

import (
	"github.com/google/uuid"

	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// UUIDGenerator implements shared.IDGenerator with random UUIDs.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUIDGenerator.
func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

// NewID returns a new UUIDv4 in string form.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

var _ shared.IDGenerator = UUIDGenerator{}
