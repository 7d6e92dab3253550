// Package main is the entry point for the foodgram API server.
//
// The main package stays minimal. Its job is to:
// 1. Read configuration (.env file and environment variables)
// 2. Create the logger and make sure the data directories exist
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
// cmd/importdata is the second executable; it loads tags and ingredients.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/foodgram/internal/config"
	"github.com/sakif/foodgram/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// config.Load reads an optional .env file first, then the environment.
	// JWT_SECRET is the only required variable:
	//   JWT_SECRET=$(openssl rand -hex 32)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// LOG_LEVEL and LOG_FORMAT pick the level and text or JSON output.
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	// === 3. DATA DIRECTORIES ===
	// os.MkdirAll is `mkdir -p`. The media directory is created by the
	// media store itself.
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	if !cfg.GitHubEnabled() {
		logger.Info("GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET not set, GitHub sign-in disabled")
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
