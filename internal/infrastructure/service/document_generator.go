// Package service contains infrastructure-side implementations of the
// domain's external service contracts.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stagehub/internship-hub/internal/domain/application"
	"github.com/stagehub/internship-hub/internal/domain/shared"
	"github.com/stagehub/internship-hub/pkg/circuitbreaker"
	"github.com/stagehub/internship-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// AGREEMENT DOCUMENT GENERATOR
// Renders the internship agreement document to local storage and returns an
// opaque reference. The generator sits behind a circuit breaker: document
// rendering is the one slow external dependency of agreement creation, and
// when it is down, creation should fail fast instead of piling up requests.
// ══════════════════════════════════════════════════════════════════════════════

// DocumentGeneratorConfig configures the generator.
type DocumentGeneratorConfig struct {
	// OutputDir is where rendered documents are stored.
	OutputDir string

	// RenderTimeout bounds a single render.
	RenderTimeout time.Duration

	// FailureThreshold is the consecutive failures before the breaker opens.
	FailureThreshold int

	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration
}

// DefaultDocumentGeneratorConfig returns sensible defaults.
func DefaultDocumentGeneratorConfig() DocumentGeneratorConfig {
	return DocumentGeneratorConfig{
		OutputDir:        "./data/agreements",
		RenderTimeout:    10 * time.Second,
		FailureThreshold: 3,
		BreakerTimeout:   time.Minute,
	}
}

// DocumentGenerator implements agreement.DocumentGenerator against local
// storage.
type DocumentGenerator struct {
	config  DocumentGeneratorConfig
	breaker *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

// NewDocumentGenerator creates a new DocumentGenerator.
func NewDocumentGenerator(cfg DocumentGeneratorConfig, log *logger.Logger) (*DocumentGenerator, error) {
	if cfg.OutputDir == "" {
		cfg = DefaultDocumentGeneratorConfig()
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = time.Minute
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("document generator: create output dir: %w", err)
	}

	return &DocumentGenerator{
		config: cfg,
		breaker: circuitbreaker.New("document-generator",
			circuitbreaker.WithFailureThreshold(cfg.FailureThreshold),
			circuitbreaker.WithTimeout(cfg.BreakerTimeout),
		),
		log: log,
	}, nil
}

// Generate renders the agreement document for an accepted application and
// returns its storage reference.
func (g *DocumentGenerator) Generate(ctx context.Context, app *application.Application) (string, error) {
	var ref string

	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		renderCtx, cancel := context.WithTimeout(ctx, g.config.RenderTimeout)
		defer cancel()

		var renderErr error
		ref, renderErr = g.render(renderCtx, app)
		return renderErr
	})
	if err != nil {
		g.log.Error("agreement document generation failed",
			logger.String("application_id", app.ID.String()),
			logger.Err(err),
		)
		return "", shared.WrapError("agreement", "GenerateDocument", shared.ErrExternalService,
			"document generation failed", err)
	}

	g.log.Info("agreement document generated",
		logger.String("application_id", app.ID.String()),
		logger.String("document_ref", ref),
	)
	return ref, nil
}

func (g *DocumentGenerator) render(ctx context.Context, app *application.Application) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("convention_%s_%d.pdf", app.ID.String(), time.Now().UTC().Unix())
	path := filepath.Join(g.config.OutputDir, filename)

	content := fmt.Sprintf(
		"INTERNSHIP AGREEMENT\n\nStudent: %s\nFaculty: %s\nCompany: %s\nPosition: %s\nApplication: %s\nGenerated: %s\n",
		app.StudentName,
		app.StudentFacultyID,
		app.CompanyName,
		app.OfferTitle,
		app.ID,
		time.Now().UTC().Format(time.RFC3339),
	)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}

	return filepath.ToSlash(filepath.Join("agreements", filename)), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PLACEHOLDER GENERATOR
// ══════════════════════════════════════════════════════════════════════════════

// PlaceholderDocumentGenerator implements agreement.DocumentGenerator
// without rendering anything. Used when document generation is switched off:
// the workflow still needs a stable document reference per application.
type PlaceholderDocumentGenerator struct{}

// Generate returns a deterministic placeholder reference.
func (PlaceholderDocumentGenerator) Generate(_ context.Context, app *application.Application) (string, error) {
	return "agreements/placeholder_" + app.ID.String() + ".pdf", nil
}
