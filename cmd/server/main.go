// Package main is the entry point for the sweepstake manager API server.
// It wires the store, services and WebSocket hub together and serves HTTP
// until interrupted.
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

	"github.com/jaektomo/SweepstakeManager/internal/api"
	"github.com/jaektomo/SweepstakeManager/internal/api/middleware"
	"github.com/jaektomo/SweepstakeManager/internal/config"
	"github.com/jaektomo/SweepstakeManager/internal/engine"
	"github.com/jaektomo/SweepstakeManager/internal/repository"
	"github.com/jaektomo/SweepstakeManager/internal/service"
	"github.com/jaektomo/SweepstakeManager/internal/ws"
)

func main() {
	// ── 1. Logger ─────────────────────────────────────────────────────────────
	cfg := config.MustLoad()

	var logHandler slog.Handler
	if cfg.IsProd() {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("starting sweepstake server", "env", cfg.Server.Env, "port", cfg.Server.Port, "driver", cfg.DB.Driver)

	// ── 2. Root context + signal handling ─────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 3. Database + migrations ──────────────────────────────────────────────
	db, err := repository.Open(ctx, cfg.DB)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connected")

	if err = repository.Migrate(ctx, db); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// ── 4. Repositories ───────────────────────────────────────────────────────
	poolRepo := repository.NewPoolRepository(db)
	competitorRepo := repository.NewCompetitorRepository(db)

	// ── 5. Engine + services ──────────────────────────────────────────────────
	src := engine.DefaultSource()
	if cfg.Sweep.RandomSeed != 0 {
		src = engine.NewSeededSource(cfg.Sweep.RandomSeed)
		logger.Warn("draws are seeded and therefore predictable", "seed", cfg.Sweep.RandomSeed)
	}

	poolSvc := service.NewPoolService(poolRepo, competitorRepo, engine.New(src), cfg, logger)
	competitorSvc := service.NewCompetitorService(competitorRepo, logger)

	// ── 6. WebSocket Hub ──────────────────────────────────────────────────────
	hub := ws.NewHub(logger, cfg.Server.AllowedOrigins)
	poolSvc.SetBroadcaster(hub)

	go hub.Run(ctx)
	logger.Info("websocket hub started")

	// ── 7. HTTP Router ────────────────────────────────────────────────────────
	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimitRPS)
		go limiter.RunSweeper(ctx, 5*time.Minute, 10*time.Minute)
	}

	router := api.SetupRouter(api.RouterDeps{
		PoolSvc:       poolSvc,
		CompetitorSvc: competitorSvc,
		Hub:           hub,
		Limiter:       limiter,
		Cfg:           cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// ── 8. Start server ───────────────────────────────────────────────────────
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
			stop() // trigger graceful shutdown
		}
	}()

	// ── 9. Graceful shutdown ──────────────────────────────────────────────────
	<-ctx.Done()
	logger.Info("shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "err", err)
	}
	logger.Info("server stopped cleanly")
}
