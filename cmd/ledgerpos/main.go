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

	"github.com/ledgerpos/ledgerpos/internal/app"
	"github.com/ledgerpos/ledgerpos/internal/docs"
	"github.com/ledgerpos/ledgerpos/internal/platform/cache"
	"github.com/ledgerpos/ledgerpos/internal/platform/db"
	"github.com/ledgerpos/ledgerpos/internal/pos"
	"github.com/ledgerpos/ledgerpos/internal/reports"
	reporthttp "github.com/ledgerpos/ledgerpos/internal/reports/http"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, reports run uncached", slog.Any("error", err))
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

	posRepo := pos.NewRepository(dbpool)

	var reportCache *reports.Cache
	if redisClient != nil {
		reportCache = reports.NewCache(redisClient, cfg.ReportCacheTTL)
		if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
			logger.Warn("cache invalidation listener", slog.Any("error", err))
		}
	}
	reportService := reports.NewService(posRepo, reportCache)

	builder := docs.NewBuilder(docs.DefaultPageSize, cfg.DefaultLocale)
	posService := pos.NewService(posRepo, reportCache, logger)
	posHandler := pos.NewHandler(logger, posService, builder, cfg.DefaultCurrency)
	reportsHandler := reporthttp.NewHandler(logger, reportService)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		POSHandler:     posHandler,
		ReportsHandler: reportsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ledgerpos listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
