// Package cli provides the process-level setup shared by the finman
// subcommands: environment loading, configuration, logging and signal
// handling.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finman/internal/config"
	"finman/internal/log"
)

// SetupLogger builds the process logger from config and sets it as the
// slog default. Output goes to w so command output on stdout stays clean.
func SetupLogger(cfg *config.Config, w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Config{
		Level:     level,
		Component: log.ComponentApp,
		Output:    w,
		JSON:      cfg.LogJSON,
	})
	log.SetDefault(logger)
	return logger, nil
}

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error.
func LoadEnvFile(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// LoadAndValidateConfig loads configuration from the environment, lets
// override adjust it (flags win over env) and validates the result.
func LoadAndValidateConfig(override func(*config.Config)) (*config.Config, error) {
	cfg := config.Load()
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM.
// The stop function restores default signal handling.
func GracefulShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
