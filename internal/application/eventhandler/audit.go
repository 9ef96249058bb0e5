// Package eventhandler contains the subscribers that react to domain events.
// They run side effects outside the command handlers, such as writing the
// audit trail of workflow transitions.
package eventhandler

import (
	"log/slog"

	"github.com/stagehub/internship-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// AUDIT TRAIL HANDLER
// ═══════════════════════════════════════════════════════════════════════════

// AuditHandler writes every workflow transition to the structured log,
// producing the audit trail for agreements and application decisions.
// It subscribes to all event types.
type AuditHandler struct {
	logger *slog.Logger
}

// NewAuditHandler creates the audit subscriber.
func NewAuditHandler(logger *slog.Logger) *AuditHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditHandler{logger: logger}
}

// Handle records the event. It never fails: the audit trail must not
// interfere with the workflow that produced the event.
func (h *AuditHandler) Handle(event shared.Event) error {
	attrs := []any{
		slog.String("event", string(event.EventType())),
		slog.String("aggregate_id", event.AggregateID()),
		slog.Time("occurred_at", event.OccurredAt()),
	}

	for key, value := range event.Payload() {
		attrs = append(attrs, slog.Any(key, value))
	}

	h.logger.Info("audit", attrs...)
	return nil
}
