// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Arxsub submission API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (postgres backend only) and run migrations.
//  4. Connect to Redis.
//  5. Start the event bus and the audit log recorder.
//  6. Wire domain services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/arxsub/internal/api"
	"github.com/taibuivan/arxsub/internal/core/auditlog"
	"github.com/taibuivan/arxsub/internal/core/category"
	"github.com/taibuivan/arxsub/internal/core/submission"
	"github.com/taibuivan/arxsub/internal/core/workflow"
	"github.com/taibuivan/arxsub/internal/platform/config"
	"github.com/taibuivan/arxsub/internal/platform/constants"
	"github.com/taibuivan/arxsub/internal/platform/eventbus"
	"github.com/taibuivan/arxsub/internal/platform/filestore"
	"github.com/taibuivan/arxsub/internal/platform/migration"
	pgstore "github.com/taibuivan/arxsub/internal/platform/postgres"
	redisstore "github.com/taibuivan/arxsub/internal/platform/redis"
	"github.com/taibuivan/arxsub/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String(constants.FieldApp, constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String(constants.FieldVersion, constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String(constants.FieldApp, constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("backend", cfg.SubmissionBackend),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Root context for background subscribers. Cancelled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	var pool *pgxpool.Pool
	if cfg.SubmissionBackend == config.BackendPostgres {
		pool, err = pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")
	}

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Token verification ─────────────────────────────────────────────
	verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize token verifier")

	// ── 6. Event bus and audit log ────────────────────────────────────────
	bus := eventbus.New(log, eventbus.Options{})
	defer func() {
		if cerr := bus.Close(); cerr != nil {
			log.Error("event bus close error", slog.Any("error", cerr))
		}
	}()

	var logRepository auditlog.Repository = auditlog.NewMemoryRepository()
	if pool != nil {
		logRepository = auditlog.NewPostgresRepository(pool)
	}
	must(log, auditlog.NewRecorder(logRepository, log).Start(rootCtx, bus), "start audit log recorder")

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	taxonomy, err := category.DefaultTaxonomy()
	must(log, err, "load category taxonomy")

	files := filestore.New(cfg.FileStoreRoot, constants.FileLockRetryDelay, log)

	repository, err := submission.OpenBackend(cfg.SubmissionBackend, submission.BackendDeps{Pool: pool, Logger: log})
	must(log, err, "open submission backend")

	catalog, err := workflow.NewCatalog()
	must(log, err, "build workflow catalog")
	workflowService := workflow.NewService(catalog, workflow.NewRedisSeenStore(rdb, cfg.SeenTTL), log)

	submissionService := submission.NewService(
		repository,
		taxonomy,
		files,
		workflowService,
		bus,
		submission.Options{
			ActivePolicyID:          cfg.ActivePolicyID,
			MaxSourceBytes:          cfg.MaxSourceBytes,
			SerializeFileOperations: cfg.SerializeFileOperations,
		},
		log,
	)

	// ── 8. Health handlers ────────────────────────────────────────────────
	health := api.HealthDependencies{
		Backend: cfg.SubmissionBackend,
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckFileStore: files.IsAvailable,
	}
	if pool != nil {
		health.CheckDatabase = func() error {
			return pgstore.Ping(context.Background(), pool)
		}
	}
	liveness, readiness, status := api.NewHealthHandlers(health, log)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Status:     status,
		Category:   category.NewHandler(taxonomy),
		Submission: submission.NewHandler(submissionService),
		Workflow:   workflow.NewHandler(workflowService, submissionService),
		AuditLog:   auditlog.NewHandler(auditlog.NewService(logRepository)),
	}

	server := api.NewServer(rootCtx, cfg, log, verifier, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
