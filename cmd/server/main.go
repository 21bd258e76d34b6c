package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Achyut2001/Data-provider-Service/internal/config"
	"github.com/Achyut2001/Data-provider-Service/internal/core"
	"github.com/Achyut2001/Data-provider-Service/internal/database"
	"github.com/Achyut2001/Data-provider-Service/internal/logging"
	"github.com/Achyut2001/Data-provider-Service/internal/repository/memory"
	"github.com/Achyut2001/Data-provider-Service/internal/repository/postgres"
	"github.com/Achyut2001/Data-provider-Service/internal/web"
	"github.com/Achyut2001/Data-provider-Service/internal/xlsx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Overload lets a local .env win over inherited environment variables.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	var (
		audits core.AuditRepository
		props  core.PropertyRepository
	)
	if cfg.Database.InMemory() {
		store := memory.NewStore()
		audits, props = store.Audits(), store.Properties()
		slog.Warn("using in-memory storage; data is lost on exit")
	} else {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if cfg.Database.MigrateOnStart {
			if err := database.Migrate(pool); err != nil {
				slog.Error("failed to migrate database", "error", err)
				os.Exit(1)
			}
		}

		store := postgres.NewStore(pool)
		audits, props = store.Audits(), store.Properties()
	}

	opts := []core.Option{
		core.WithUploadLimiter(core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)),
	}
	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		recorder := core.NewPrometheusRecorder()
		opts = append(opts, core.WithMetrics(recorder))
		gatherer = recorder.Registry()
	}

	service := core.NewService(audits, props, xlsx.NewReader(), opts...)
	server := web.NewServer(service, cfg, gatherer)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.UploadLimiterStatus(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
			if err := service.WaitForUploads(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
