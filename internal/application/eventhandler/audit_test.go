package eventhandler

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehub/internship-hub/internal/domain/shared"
)

func TestAuditHandlerLogsTransition(t *testing.T) {
	var buf bytes.Buffer
	handler := NewAuditHandler(slog.New(slog.NewJSONHandler(&buf, nil)))

	event := shared.NewAgreementSignedEvent("agr-1", "user-1", "STUDENT", false)
	require.NoError(t, handler.Handle(event))

	out := buf.String()
	assert.Contains(t, out, string(shared.EventAgreementSigned))
	assert.Contains(t, out, "agr-1")
	assert.Contains(t, out, "STUDENT")
}

func TestAuditHandlerNeverFails(t *testing.T) {
	handler := NewAuditHandler(nil)

	event := shared.NewAgreementCreatedEvent("agr-2", "app-2", "user-2", "agreements/agr-2.pdf")
	assert.NoError(t, handler.Handle(event))
}
