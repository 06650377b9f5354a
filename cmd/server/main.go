// Package main implements the entry point for the task management API
// server: user accounts, per-user task CRUD with a Redis-accelerated
// listing, and asynchronous completion notifications.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Kamran-007-lab/task-management-api/internal/config"
	"github.com/Kamran-007-lab/task-management-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// run loads configuration, wires the application together, and serves until
// interrupted.
func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"pid", os.Getpid())

	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
