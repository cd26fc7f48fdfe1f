package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rmachado/welldata/internal/config"
	"github.com/rmachado/welldata/internal/core"
	"github.com/rmachado/welldata/internal/logging"
	"github.com/rmachado/welldata/internal/session"
	"github.com/rmachado/welldata/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
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

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_dir", cfg.Upload.Dir,
		"chunk_size", cfg.Upload.ChunkSize,
		"file_ttl", cfg.Session.FileTTL,
		"upload_ttl", cfg.Session.UploadTTL,
	)

	sessions, err := session.NewManager(session.Config{
		Dir:       cfg.Upload.Dir,
		FileTTL:   cfg.Session.FileTTL,
		UploadTTL: cfg.Session.UploadTTL,
	})
	if err != nil {
		slog.Error("failed to create session manager", "error", err)
		os.Exit(1)
	}

	service := core.NewService(cfg, sessions)
	server := web.NewServer(service, cfg)

	// Cancellable context for the background sweep
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go sessions.StartSweeper(jobCtx, cfg.Session.SweepInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight table parses finish before pulling the listener
		if active := service.Limiter().ActiveCount(); active > 0 {
			slog.Info("waiting for parses to complete", "active", active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("parses did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
