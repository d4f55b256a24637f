package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hirewise/interview-assistant/internal/config"
	"github.com/hirewise/interview-assistant/internal/database"
	"github.com/hirewise/interview-assistant/internal/gateway"
	"github.com/hirewise/interview-assistant/internal/handler"
	"github.com/hirewise/interview-assistant/internal/logger"
	"github.com/hirewise/interview-assistant/internal/repository"
	"github.com/hirewise/interview-assistant/internal/router"
	"github.com/hirewise/interview-assistant/internal/service"
	"github.com/hirewise/interview-assistant/internal/session"
	"github.com/hirewise/interview-assistant/internal/validator"
	"github.com/hirewise/interview-assistant/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Interview Assistant")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	candidateRepo := repository.NewCandidateRepository(pool)
	interviewerRepo := repository.NewInterviewerRepository(pool)
	snapshotRepo := repository.NewSnapshotRepository(rdb)
	projectionQueue := repository.NewProjectionQueue(rdb)

	// ─── Initialize AI Gateway ─────────────────────────────────────────
	aiClient := gateway.New(cfg)

	// ─── Initialize Session Manager ────────────────────────────────────
	sessionManager := session.NewManager(
		session.Config{
			ScoreMin:             cfg.ScoreMin,
			ScoreMax:             cfg.ScoreMax,
			AllowEmptyAutoSubmit: cfg.AllowEmptyAutoSubmit,
			GatewayTimeout:       cfg.GatewayTimeout,
		},
		aiClient,
		aiClient,
		snapshotRepo,
		projectionQueue,
		log,
	)
	defer sessionManager.Shutdown()

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	candidateService := service.NewCandidateService(cfg, candidateRepo, snapshotRepo, log)
	interviewService := service.NewInterviewService(cfg, sessionManager, candidateService, aiClient, log)

	// Incomplete sessions survive restarts; log how many await recovery.
	if ids, err := interviewService.ListIncompleteSessions(ctx); err != nil {
		log.Warn().Err(err).Msg("Incomplete session scan failed")
	} else if len(ids) > 0 {
		log.Info().Int("count", len(ids)).Msg("Incomplete sessions awaiting recovery")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, interviewerRepo),
		Candidate: handler.NewCandidateHandler(candidateService, interviewService, log),
		Interview: handler.NewInterviewHandler(interviewService, log),
		WS:        handler.NewWSHandler(interviewService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	projectionWorker := worker.NewProjectionWorker(candidateRepo, rdb, log)
	go projectionWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Close session controllers so the last snapshots are already durable.
	sessionManager.Shutdown()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
