// Package main is the entry point of the internship hub API server.
//
// The service runs the internship agreement workflow: companies decide on
// applications, agreements are generated for accepted ones, faculty
// validate, administrators approve, and the three parties sign. Every
// transition fans out notifications to the affected users.
//
// The architecture follows Clean Architecture and DDD:
//   - Domain: workflow rules without external dependencies
//   - Application: use case orchestration (Commands/Queries)
//   - Infrastructure: postgres persistence, Redis live feed, messaging
//   - Interface: REST API
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stagehub/internship-hub/config"
	"github.com/stagehub/internship-hub/internal/application/command"
	"github.com/stagehub/internship-hub/internal/application/eventhandler"
	"github.com/stagehub/internship-hub/internal/application/query"
	"github.com/stagehub/internship-hub/internal/domain/agreement"
	"github.com/stagehub/internship-hub/internal/domain/identity"
	"github.com/stagehub/internship-hub/internal/domain/notification"
	"github.com/stagehub/internship-hub/internal/infrastructure/messaging"
	"github.com/stagehub/internship-hub/internal/infrastructure/persistence/postgres"
	redisfeed "github.com/stagehub/internship-hub/internal/infrastructure/persistence/redis"
	"github.com/stagehub/internship-hub/internal/infrastructure/scheduler"
	"github.com/stagehub/internship-hub/internal/infrastructure/scheduler/jobs"
	"github.com/stagehub/internship-hub/internal/infrastructure/service"
	httpserver "github.com/stagehub/internship-hub/internal/interface/http"
	"github.com/stagehub/internship-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// Configuration and logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	log.Info("starting internship hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// The messaging and scheduler layers log through slog.
	slogLevel := slog.LevelInfo
	if cfg.App.Debug {
		slogLevel = slog.LevelDebug
	}
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))

	// ─────────────────────────────────────────────────────────────────────────
	// PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")
	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		conn.Close()
	}()

	if cfg.Database.AutoMigrate {
		log.Info("running database migrations")
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Repositories and unit of work
	// ─────────────────────────────────────────────────────────────────────────
	applicationRepo := postgres.NewApplicationRepository(conn)
	agreementRepo := postgres.NewAgreementRepository(conn)
	notificationRepo := postgres.NewNotificationRepository(conn)
	uowFactory := postgres.NewUnitOfWorkFactory(conn)

	// ─────────────────────────────────────────────────────────────────────────
	// Redis live feed (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var channels []notification.Channel
	var feed *redisfeed.Subscriber

	if !cfg.Redis.Disabled && cfg.Features.IsEnabled(config.FeatureLiveFeed) {
		log.Info("connecting to Redis", logger.String("addr", fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)))
		redisClient, err := redisfeed.NewClient(redisfeed.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			// The in-app feed still works without the live channel.
			log.Warn("redis unavailable, live notifications disabled", logger.Err(err))
		} else {
			defer redisClient.Close()
			channels = append(channels, redisfeed.NewLiveFeed(redisClient))
			if cfg.Features.IsEnabled(config.FeatureNotificationStream) {
				feed = redisfeed.NewSubscriber(redisClient)
			}
			log.Info("redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Event bus and notification dispatcher
	// ─────────────────────────────────────────────────────────────────────────
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = slogger
	eventBus := messaging.NewInMemoryEventBus(busConfig)
	defer func() {
		log.Info("closing event bus")
		_ = eventBus.Close()
	}()

	auditor := eventhandler.NewAuditHandler(slogger)
	if err := eventBus.SubscribeAll(auditor.Handle); err != nil {
		return fmt.Errorf("failed to register audit handler: %w", err)
	}

	dispatcherConfig := messaging.DefaultDispatcherConfig(notificationRepo, channels...)
	dispatcherConfig.PollInterval = cfg.Dispatcher.PollInterval
	dispatcherConfig.BatchSize = cfg.Dispatcher.BatchSize
	dispatcherConfig.MaxAttempts = cfg.Dispatcher.MaxAttempts
	dispatcherConfig.Logger = slogger
	dispatcher, err := messaging.NewDispatcher(dispatcherConfig)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// ─────────────────────────────────────────────────────────────────────────
	// Background maintenance
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Scheduler.Enabled {
		sched := scheduler.NewScheduler(slogger)
		purgeJob := jobs.NewPurgeNotificationsJob(
			notificationRepo, cfg.Scheduler.RetentionPeriod, slogger)
		if err := sched.Register(purgeJob, scheduler.Every(cfg.Scheduler.PurgeInterval)); err != nil {
			return fmt.Errorf("failed to register purge job: %w", err)
		}
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() { _ = sched.Stop() }()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Domain services
	// ─────────────────────────────────────────────────────────────────────────
	var docGen agreement.DocumentGenerator
	if cfg.Features.IsEnabled(config.FeatureAgreementDocuments) {
		generator, err := service.NewDocumentGenerator(service.DocumentGeneratorConfig{
			OutputDir:        cfg.Documents.OutputDir,
			RenderTimeout:    cfg.Documents.RenderTimeout,
			FailureThreshold: cfg.Documents.CircuitBreakerThreshold,
			BreakerTimeout:   cfg.Documents.CircuitBreakerTimeout,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create document generator: %w", err)
		}
		docGen = generator
	} else {
		log.Warn("document rendering disabled, using placeholder references")
		docGen = service.PlaceholderDocumentGenerator{}
	}

	actors := identity.NewContextProvider()
	policy := agreement.NewPolicy()
	ids := service.NewUUIDGenerator()

	// ─────────────────────────────────────────────────────────────────────────
	// Application layer
	// ─────────────────────────────────────────────────────────────────────────
	deps := httpserver.Dependencies{
		MarkApplicationViewed: command.NewMarkApplicationViewedHandler(actors, uowFactory, ids, eventBus),
		DecideApplication:     command.NewDecideApplicationHandler(actors, uowFactory, ids, eventBus),
		CreateAgreement: command.NewCreateAgreementHandler(
			actors, applicationRepo, agreementRepo, uowFactory, docGen, policy, ids, eventBus),
		ValidateAgreement:    command.NewValidateAgreementHandler(actors, uowFactory, policy, ids, eventBus),
		ApproveAgreement:     command.NewApproveAgreementHandler(actors, uowFactory, policy, ids, eventBus),
		SignAgreement:        command.NewSignAgreementHandler(actors, uowFactory, policy, ids, eventBus),
		MarkNotificationRead: command.NewMarkNotificationReadHandler(actors, notificationRepo),

		GetAgreement:      query.NewGetAgreementHandler(actors, agreementRepo, applicationRepo, policy),
		ListAgreements:    query.NewListAgreementsHandler(actors, agreementRepo, applicationRepo),
		ListNotifications: query.NewListNotificationsHandler(actors, notificationRepo),

		Feed:   feed,
		DB:     conn,
		Logger: log,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	srv := httpserver.NewServer(httpserver.Config{
		Host:           cfg.HTTP.Host,
		Port:           cfg.HTTP.Port,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}, deps)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// Shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case s := <-sig:
		log.Info("shutdown signal received", logger.String("signal", s.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	log.Info("internship hub stopped")
	return nil
}
