package http

import (
	"net/http"
	"runtime/debug"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/stagehub/internship-hub/internal/domain/identity"
	"github.com/stagehub/internship-hub/internal/domain/shared"
	"github.com/stagehub/internship-hub/pkg/logger"
)

// Identity headers. Authentication happens upstream (the API gateway
// terminates the session); it forwards the acting user's identity in these
// headers.
const (
	headerActorID      = "X-Actor-Id"
	headerActorRole    = "X-Actor-Role"
	headerActorName    = "X-Actor-Name"
	headerActorCompany = "X-Actor-Company"
	headerActorFaculty = "X-Actor-Faculty"
)

// actorContext resolves the acting user from the identity headers and puts
// it on the request context. Requests without a valid identity are
// rejected; every API route below this middleware can assume an actor.
func (s *Server) actorContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := identity.Actor{
			ID:          shared.UserID(r.Header.Get(headerActorID)),
			Role:        identity.Role(r.Header.Get(headerActorRole)),
			DisplayName: r.Header.Get(headerActorName),
			CompanyID:   shared.CompanyID(r.Header.Get(headerActorCompany)),
			FacultyID:   shared.FacultyID(r.Header.Get(headerActorFaculty)),
		}

		if err := actor.Validate(); err != nil {
			s.writeError(w, r, shared.WrapError("identity", "Resolve", shared.ErrUnauthenticated,
				"missing or invalid identity headers", err))
			return
		}

		next.ServeHTTP(w, r.WithContext(identity.WithActor(r.Context(), actor)))
	})
}

// actorFrom returns the actor placed on the context by actorContext.
func (s *Server) actorFrom(r *http.Request) (identity.Actor, error) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		return identity.Actor{}, shared.ErrNoActor
	}
	return actor, nil
}

// requestLogger logs each request with its chi request ID.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Int64("duration_ms", time.Since(start).Milliseconds()),
			logger.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
	})
}

// recoverer converts panics into 500 responses.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					logger.Any("error", rec),
					logger.String("path", r.URL.Path),
					logger.String("stack", string(debug.Stack())),
				)
				writeJSON(w, http.StatusInternalServerError, errorBody{
					Error:   "internal_server_error",
					Message: "an unexpected error occurred",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
