package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Every event the bus carries must satisfy the Event interface, including
// a bare envelope with no typed payload.
var (
	_ Event = BaseEvent{}
	_ Event = ApplicationViewedEvent{}
	_ Event = ApplicationDecidedEvent{}
	_ Event = AgreementCreatedEvent{}
	_ Event = AgreementReviewedEvent{}
	_ Event = AgreementSignedEvent{}
)

func TestBaseEvent_IsCompleteEvent(t *testing.T) {
	e := NewBaseEvent(EventAgreementCreated, "agr-1")

	assert.Equal(t, EventAgreementCreated, e.EventType())
	assert.Equal(t, "agr-1", e.AggregateID())
	assert.False(t, e.OccurredAt().IsZero())
	assert.Empty(t, e.Payload())
}

func TestApplicationViewedEvent_Payload(t *testing.T) {
	e := NewApplicationViewedEvent("app-1", "stu-1", "comp-1")

	assert.Equal(t, EventApplicationViewed, e.EventType())
	assert.Equal(t, "app-1", e.AggregateID())
	assert.Equal(t, map[string]interface{}{
		"application_id": "app-1",
		"student_id":     "stu-1",
		"viewed_by":      "comp-1",
	}, e.Payload())
}
