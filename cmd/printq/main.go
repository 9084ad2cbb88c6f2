package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/orrn/printq/internal/api"
	"github.com/orrn/printq/internal/api/middleware"
	"github.com/orrn/printq/internal/config"
	"github.com/orrn/printq/internal/core"
	"github.com/orrn/printq/internal/db"
	"github.com/orrn/printq/internal/logging"
	"github.com/orrn/printq/internal/metrics"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("PRINTQ_CONFIG"), "Path to YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "printq: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	database, err := db.Open(db.Config{Path: cfg.Database.Path})
	if err != nil {
		return err
	}
	store := db.NewStore(database)
	defer store.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	services := core.NewServices(core.Options{
		Store:                      store,
		Logger:                     logger,
		Metrics:                    m,
		LowStockThresholdGrams:     cfg.Jobs.LowStockThresholdGrams,
		DeductEstimateOnCompletion: cfg.Jobs.DeductEstimateOnCompletion,
		BcryptCost:                 cfg.Auth.BcryptCost,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if admin := cfg.Auth.BootstrapAdmin; admin.Email != "" {
		u, err := services.Users.EnsureAdmin(ctx, admin.Name, admin.Email, admin.Password)
		if err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
		logger.Info("bootstrap admin ready", zap.Int64("user_id", u.ID), zap.String("email", u.Email))
	}
	if err := services.Printers.RefreshAll(ctx); err != nil {
		return fmt.Errorf("failed to refresh printer compatibility: %w", err)
	}
	if _, err := services.Jobs.CompleteDue(ctx); err != nil {
		return fmt.Errorf("failed to settle finished jobs: %w", err)
	}
	services.Jobs.RecordOccupancy(ctx)

	auth, err := middleware.NewAuthMiddleware(ctx, store.Settings, services.Users, middleware.AuthConfig{
		CookieName:   cfg.Auth.CookieName,
		TokenTTL:     cfg.Auth.TokenTTL,
		SecureCookie: cfg.Auth.SecureCookie,
	}, logger)
	if err != nil {
		return err
	}

	router, err := api.NewRouter(api.Dependencies{
		Config:   cfg,
		Services: services,
		Settings: store.Settings,
		Auth:     auth,
		Database: database,
		Logger:   logger,
		Metrics:  m,
		Gatherer: registry,
	})
	if err != nil {
		return err
	}

	if cfg.Jobs.SweepInterval > 0 {
		sweeper := core.NewCompletionSweeper(services.Jobs, cfg.Jobs.SweepInterval, logger, m)
		go sweeper.RunForever(ctx)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("printq stopped")
	return nil
}
