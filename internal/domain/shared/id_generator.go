package shared

// IDGenerator produces unique identifiers for new entities.
// The production implementation lives in infrastructure/service.
type IDGenerator interface {
	// NewID returns a new unique identifier in string form.
	NewID() string
}
