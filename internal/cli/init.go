// Package cli provides common initialization shared by cmd/cfp and
// cmd/cfp-backup: env loading, logging, config and store setup, and
// graceful shutdown plumbing.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kevenbotelho/controle-pessoal/internal/backend"
	"github.com/kevenbotelho/controle-pessoal/internal/config"
	applog "github.com/kevenbotelho/controle-pessoal/internal/log"
)

// SetupLogger initializes structured logging and sets it as default.
func SetupLogger() *applog.Logger {
	logger := applog.New(slog.LevelInfo)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored silently as the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting
// the process on failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitStore builds the configured document store, exiting on failure.
func InitStore(logger *applog.Logger, cfg *config.Config) backend.Store {
	store, err := backend.New(logger.Logger, backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return store
}

// SignalContext returns a context cancelled on SIGINT/SIGTERM.
func SignalContext(logger *applog.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	return ctx
}

// ShutdownTimeout is how long the server gets to drain connections.
const ShutdownTimeout = 30 * time.Second
