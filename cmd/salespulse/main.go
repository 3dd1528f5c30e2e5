package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/salespulse/salespulse/internal/app"
	"github.com/salespulse/salespulse/internal/customers"
	"github.com/salespulse/salespulse/internal/export"
	"github.com/salespulse/salespulse/internal/funnel"
	"github.com/salespulse/salespulse/internal/leaderboard"
	"github.com/salespulse/salespulse/internal/observability"
	"github.com/salespulse/salespulse/internal/overview"
	"github.com/salespulse/salespulse/internal/platform/cache"
	"github.com/salespulse/salespulse/internal/platform/db"
	"github.com/salespulse/salespulse/internal/roster"
	"github.com/salespulse/salespulse/internal/team"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, running without cache", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	versioned := cache.NewVersioned(redisClient, cfg.CacheTTL)
	if err := versioned.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	rosterService := roster.NewService(roster.NewRepository(pool))
	overviewService := overview.NewService(overview.NewRepository(pool), rosterService, versioned)
	boardService := leaderboard.NewService(leaderboard.NewRepository(pool), rosterService, versioned)
	teamService := team.NewService(team.NewRepository(pool), rosterService, versioned)
	customerService := customers.NewService(customers.NewRepository(pool), rosterService, versioned)
	funnelService := funnel.NewService(funnel.NewRepository(pool), rosterService, versioned)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		OverviewHandler:    overview.NewHandler(logger, overviewService),
		LeaderboardHandler: leaderboard.NewHandler(logger, boardService),
		TeamHandler:        team.NewHandler(logger, teamService),
		CustomersHandler:   customers.NewHandler(logger, customerService),
		FunnelHandler:      funnel.NewHandler(logger, funnelService),
		ExportHandler:      export.NewHandler(logger, overviewService, boardService),
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
