package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kamran-007-lab/task-management-api/internal/api"
	apimiddleware "github.com/Kamran-007-lab/task-management-api/internal/api/middleware"
	"github.com/Kamran-007-lab/task-management-api/internal/config"
	"github.com/Kamran-007-lab/task-management-api/internal/jobs"
	"github.com/Kamran-007-lab/task-management-api/internal/platform/mail"
	"github.com/Kamran-007-lab/task-management-api/internal/platform/postgres"
	"github.com/Kamran-007-lab/task-management-api/internal/platform/rediscache"
	"github.com/Kamran-007-lab/task-management-api/internal/service"
	"github.com/Kamran-007-lab/task-management-api/internal/service/auth"
)

// application holds the wired-together components of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	db          *sql.DB
	redisClient *redis.Client
	jobRunner   *jobs.Runner

	authHandler *api.AuthHandler
	taskHandler *api.TaskHandler
	authMW      func(next http.Handler) http.Handler
}

// newApplication builds the dependency graph: storage, cache, auth, the task
// service, the notification runner, and the HTTP handlers.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	redisClient, err := setupRedis(ctx, cfg.Cache.Addr, cfg.Cache.Password)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	// Stores
	userStore := postgres.NewUserStore(db, bcrypt.DefaultCost)
	taskStore := postgres.NewTaskStore(db)
	jobStore := postgres.NewNotificationJobStore(db)

	// Auth
	tokenService, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetimeMinutes)
	if err != nil {
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	passwordVerifier := auth.NewBcryptVerifier()

	// Notification queue
	mailer := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	jobRunner := jobs.NewRunner(jobStore, jobs.RunnerConfig{
		WorkerCount: cfg.Jobs.WorkerCount,
		QueueSize:   cfg.Jobs.QueueSize,
		BackoffBase: time.Duration(cfg.Jobs.BackoffBaseSeconds) * time.Second,
		BackoffCap:  time.Duration(cfg.Jobs.BackoffCapSeconds) * time.Second,
		StuckJobAge: time.Duration(cfg.Jobs.StuckJobAgeMinutes) * time.Minute,
	}, logger)
	jobRunner.RegisterHandler(jobs.NewEmailNotificationHandler(userStore, mailer))

	// Core service
	listingCache := rediscache.NewListingCache(redisClient, time.Duration(cfg.Cache.ListingTTLSeconds)*time.Second)
	taskService := service.NewTaskService(taskStore, listingCache, jobRunner, cfg.Jobs.MaxAttempts)

	app := &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
		jobRunner:   jobRunner,
		authHandler: api.NewAuthHandler(userStore, tokenService, passwordVerifier),
		taskHandler: api.NewTaskHandler(taskService),
	}
	app.authMW = apimiddleware.NewAuthMiddleware(tokenService).Authenticate

	return app, nil
}

// Run starts the notification runner and serves HTTP until shutdown.
func (app *application) Run(ctx context.Context) error {
	if err := app.jobRunner.Start(ctx); err != nil {
		app.cleanup()
		return fmt.Errorf("failed to start job runner: %w", err)
	}

	return app.startHTTPServer(ctx, app.routes())
}

// cleanup releases the application's long-lived resources in reverse
// dependency order.
func (app *application) cleanup() {
	app.jobRunner.Stop()

	if err := app.redisClient.Close(); err != nil {
		app.logger.Error("failed to close redis client", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", "error", err)
	}
}
