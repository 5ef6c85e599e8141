package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/gelos/backend/internal/api"
	"github.com/gelos/backend/internal/cache"
	"github.com/gelos/backend/internal/domain/studysession"
	"github.com/gelos/backend/internal/infrastructure/config"
	"github.com/gelos/backend/internal/jobs"
	"github.com/gelos/backend/internal/service"
	"github.com/gelos/backend/internal/store"

	_ "github.com/gelos/backend/docs" // generated swagger docs
)

// @title           Gelos API
// @version         1.0
// @description     Flashcard decks and spaced-repetition study sessions.

// @host      localhost:8080
// @BasePath  /

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// ── Dependencies ────────────────────────────────────────────────
	db, err := store.NewSQLite(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var repo studysession.Repository = db
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(context.Background(), cfg.RedisAddr)
		if err != nil {
			logger.Warn("stats cache disabled", "error", err)
		} else {
			defer rdb.Close()
			repo = cache.NewCachedRepository(db, rdb, cfg.StatsCacheTTL, logger)
			logger.Info("stats cache enabled", "redis_addr", cfg.RedisAddr)
		}
	}

	var writer studysession.Writer
	if cfg.WriterWorkers > 0 {
		rw := service.NewReviewWriter(repo, cfg.WriterWorkers, cfg.PersistTimeout, logger)
		defer rw.Close()
		writer = rw
	}

	study := service.NewStudyService(repo, writer, logger)
	handler := api.NewHandler(db, repo, study, logger)

	scheduler := jobs.New(study, db, jobs.Config{
		SweepInterval: cfg.SessionSweepInterval,
		IdleTimeout:   cfg.SessionIdleTimeout,
	}, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start jobs", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	api.RegisterRoutes(mux, handler)

	// Swagger UI served at /swagger/
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// ── Middleware chain: Logging → CORS → mux ──────────────────────
	logged := api.Logging(logger)(api.CORS(mux))

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}
