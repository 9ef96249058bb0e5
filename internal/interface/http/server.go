// Package http exposes the REST API of the internship hub: application
// decisions, the agreement workflow, and the notification feed.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/stagehub/internship-hub/internal/application/command"
	"github.com/stagehub/internship-hub/internal/application/query"
	redisfeed "github.com/stagehub/internship-hub/internal/infrastructure/persistence/redis"
	"github.com/stagehub/internship-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Host - address to bind (default: "0.0.0.0").
	Host string

	// Port - port to listen on (default: 8080).
	Port int

	// ReadTimeout - maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout - maximum duration for writing the response.
	WriteTimeout time.Duration

	// IdleTimeout - maximum duration for idle connections.
	IdleTimeout time.Duration

	// RequestTimeout - per-request deadline applied by middleware.
	RequestTimeout time.Duration

	// MaxHeaderBytes - maximum size of request headers.
	MaxHeaderBytes int
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		RequestTimeout: 30 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}
}

// Address returns the server address string.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Pinger reports backend connectivity for readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies contains everything the HTTP handlers need.
type Dependencies struct {
	// Command handlers (write side)
	MarkApplicationViewed *command.MarkApplicationViewedHandler
	DecideApplication     *command.DecideApplicationHandler
	CreateAgreement       *command.CreateAgreementHandler
	ValidateAgreement     *command.ValidateAgreementHandler
	ApproveAgreement      *command.ApproveAgreementHandler
	SignAgreement         *command.SignAgreementHandler
	MarkNotificationRead  *command.MarkNotificationReadHandler

	// Query handlers (read side)
	GetAgreement      *query.GetAgreementHandler
	ListAgreements    *query.ListAgreementsHandler
	ListNotifications *query.ListNotificationsHandler

	// Feed is the live notification subscriber for the streaming
	// endpoint. Optional; the endpoint returns 503 when absent.
	Feed *redisfeed.Subscriber

	// DB is pinged by the readiness probe. Optional.
	DB Pinger

	// Logger for structured logging.
	Logger *logger.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server is the HTTP server for the REST API.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	logger     *logger.Logger
}

// NewServer creates an HTTP server with the given configuration and
// dependencies.
func NewServer(config Config, deps Dependencies) *Server {
	s := &Server{
		config: config,
		deps:   deps,
		logger: deps.Logger,
	}
	if s.logger == nil {
		s.logger = logger.Default()
	}

	s.httpServer = &http.Server{
		Addr:           config.Address(),
		Handler:        s.Routes(),
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		IdleTimeout:    config.IdleTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}

	return s
}

// Routes builds the router. Exposed for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	// Probes stay outside the actor requirement.
	r.Get("/health", s.handleHealth)
	r.Get("/healthz", s.handleHealth) // Kubernetes alias
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(s.config.RequestTimeout))
		r.Use(s.actorContext)

		r.Route("/applications/{applicationID}", func(r chi.Router) {
			r.Post("/view", s.handleMarkApplicationViewed)
			r.Post("/decision", s.handleDecideApplication)
		})

		r.Route("/agreements", func(r chi.Router) {
			r.Post("/", s.handleCreateAgreement)
			r.Get("/", s.handleListAgreements)
			r.Route("/{agreementID}", func(r chi.Router) {
				r.Get("/", s.handleGetAgreement)
				r.Post("/validation", s.handleValidateAgreement)
				r.Post("/approval", s.handleApproveAgreement)
				r.Post("/signature", s.handleSignAgreement)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleListNotifications)
			r.Get("/stream", s.handleNotificationStream)
			r.Post("/{notificationID}/read", s.handleMarkNotificationRead)
		})
	})

	return r
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("http server starting", logger.String("addr", s.config.Address()))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
