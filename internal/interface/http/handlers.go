package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stagehub/internship-hub/internal/application/command"
	"github.com/stagehub/internship-hub/internal/application/query"
	"github.com/stagehub/internship-hub/internal/domain/shared"
	"github.com/stagehub/internship-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "internal_server_error"

	// Unauthenticated is checked before bad-request: rejected identity
	// headers wrap a validation error, and the outer kind must win.
	switch {
	case shared.IsUnauthenticated(err):
		status, code = http.StatusUnauthorized, "unauthenticated"
	case shared.IsBadRequest(err):
		status, code = http.StatusBadRequest, "invalid_request"
	case shared.IsForbidden(err):
		status, code = http.StatusForbidden, "forbidden"
	case shared.IsNotFound(err):
		status, code = http.StatusNotFound, "not_found"
	case shared.IsInvalidState(err):
		status, code = http.StatusConflict, "conflict"
	case shared.IsExternalService(err):
		status, code = http.StatusBadGateway, "upstream_unavailable"
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Err(err),
		)
		writeJSON(w, status, errorBody{Error: code, Message: "an unexpected error occurred"})
		return
	}

	writeJSON(w, status, errorBody{Error: code, Message: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return shared.WrapError("http", "Decode", shared.ErrInvalidInput, "invalid JSON body", err)
	}
	return nil
}

func queryInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(key))
	return v
}

func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleMarkApplicationViewed handles POST /api/v1/applications/{applicationID}/view
func (s *Server) handleMarkApplicationViewed(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.MarkApplicationViewed.Handle(r.Context(), command.MarkApplicationViewedCommand{
		ApplicationID: chi.URLParam(r, "applicationID"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"application_id": result.Application.ID.String(),
		"status":         result.Application.Status.String(),
		"changed":        result.Changed,
	})
}

type decisionRequest struct {
	Decision string `json:"decision"`
}

// handleDecideApplication handles POST /api/v1/applications/{applicationID}/decision
func (s *Server) handleDecideApplication(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.deps.DecideApplication.Handle(r.Context(), command.DecideApplicationCommand{
		ApplicationID: chi.URLParam(r, "applicationID"),
		Decision:      req.Decision,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"application_id": result.Application.ID.String(),
		"status":         result.Application.Status.String(),
		"decided_at":     result.DecidedAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// AGREEMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type createAgreementRequest struct {
	ApplicationID string `json:"application_id"`
}

// handleCreateAgreement handles POST /api/v1/agreements
func (s *Server) handleCreateAgreement(w http.ResponseWriter, r *http.Request) {
	var req createAgreementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.deps.CreateAgreement.Handle(r.Context(), command.CreateAgreementCommand{
		ApplicationID: req.ApplicationID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	writeJSON(w, status, query.ToAgreementDTO(result.Agreement, nil))
}

// handleGetAgreement handles GET /api/v1/agreements/{agreementID}
func (s *Server) handleGetAgreement(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.GetAgreement.Handle(r.Context(), query.GetAgreementQuery{
		AgreementID: chi.URLParam(r, "agreementID"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto)
}

// handleListAgreements handles GET /api/v1/agreements
func (s *Server) handleListAgreements(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.ListAgreements.Handle(r.Context(), query.ListAgreementsQuery{
		Status:   r.URL.Query().Get("status"),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type validationRequest struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason,omitempty"`
}

// handleValidateAgreement handles POST /api/v1/agreements/{agreementID}/validation
func (s *Server) handleValidateAgreement(w http.ResponseWriter, r *http.Request) {
	var req validationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.deps.ValidateAgreement.Handle(r.Context(), command.ValidateAgreementCommand{
		AgreementID: chi.URLParam(r, "agreementID"),
		Accept:      req.Accept,
		Reason:      req.Reason,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, query.ToAgreementDTO(result.Agreement, nil))
}

type approvalRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason,omitempty"`
}

// handleApproveAgreement handles POST /api/v1/agreements/{agreementID}/approval
func (s *Server) handleApproveAgreement(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.deps.ApproveAgreement.Handle(r.Context(), command.ApproveAgreementCommand{
		AgreementID: chi.URLParam(r, "agreementID"),
		Approve:     req.Approve,
		Reason:      req.Reason,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, query.ToAgreementDTO(result.Agreement, nil))
}

// handleSignAgreement handles POST /api/v1/agreements/{agreementID}/signature
func (s *Server) handleSignAgreement(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.SignAgreement.Handle(r.Context(), command.SignAgreementCommand{
		AgreementID: chi.URLParam(r, "agreementID"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"agreement":    query.ToAgreementDTO(result.Agreement, nil),
		"slot":         result.Slot.String(),
		"fully_signed": result.FullySigned,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListNotifications handles GET /api/v1/notifications
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.ListNotifications.Handle(r.Context(), query.ListNotificationsQuery{
		UnreadOnly: queryBool(r, "unread_only"),
		Page:       queryInt(r, "page"),
		PageSize:   queryInt(r, "page_size"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleMarkNotificationRead handles POST /api/v1/notifications/{notificationID}/read
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := s.deps.MarkNotificationRead.Handle(r.Context(), command.MarkNotificationReadCommand{
		NotificationID: chi.URLParam(r, "notificationID"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// handleNotificationStream handles GET /api/v1/notifications/stream.
// Streams the actor's live feed as server-sent events until the client
// disconnects.
func (s *Server) handleNotificationStream(w http.ResponseWriter, r *http.Request) {
	if s.deps.Feed == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Error:   "stream_unavailable",
			Message: "live notifications are not configured",
		})
		return
	}

	actor, err := s.actorFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "stream_unavailable",
			Message: "streaming unsupported by this connection",
		})
		return
	}

	messages, err := s.deps.Feed.Listen(r.Context(), actor.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for msg := range messages {
		payload, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload)
		flusher.Flush()
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PROBES
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady handles GET /ready. Reports 503 until the database answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": "database unreachable",
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
