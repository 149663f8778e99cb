package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/explore-grabby/booking-backend/internal/app"
	"github.com/explore-grabby/booking-backend/internal/config"
	"github.com/explore-grabby/booking-backend/internal/db"
	"github.com/explore-grabby/booking-backend/internal/events"
	"github.com/explore-grabby/booking-backend/internal/jobs"
	"github.com/explore-grabby/booking-backend/internal/logger"
	"github.com/explore-grabby/booking-backend/internal/pkg/storage"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// run owns every resource so its defers execute before main exits.
func run() error {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Initialize(cfg.LogLevel, cfg.LogFormat)

	// Connect DB
	var pool *pgxpool.Pool
	if cfg.DBDSN != "" {
		pool, err = db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("connect to db: %w", err)
		}
		defer pool.Close()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	} else {
		logger.Warn("DB_DSN not set, using in-memory repositories")
	}

	// Redis catalog cache is optional
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", "addr", cfg.RedisAddr, "error", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			defer rdb.Close()
		}
		cancel()
	}

	// Booking events
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := events.NewAMQPPublisher(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("connect to rabbitmq: %w", err)
		}
		defer p.Close()
		publisher = p
	}

	store, err := storage.NewLocalStorage(cfg.StorageDir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	container := app.NewContainer(app.Config{
		IsProduction:     cfg.IsProduction,
		ProdOrigins:      cfg.ProdOrigins,
		AdminRole:        cfg.AdminRole,
		JWTSecret:        cfg.JWTSecret,
		JWTTTL:           cfg.JWTAccessTokenTTL,
		MaxExtensionDays: cfg.MaxExtensionDays,
		SoonOverdueDays:  cfg.SoonOverdueDays,
		CacheTTL:         cfg.CacheTTL,
		DBPool:           pool,
		Redis:            rdb,
		Publisher:        publisher,
		Storage:          store,
	})

	// Reminder scheduler
	if cfg.ReminderSchedule != "" {
		runner := jobs.NewJobRunner(container.Ledger, container.Clock, container.Publisher, cfg.SoonOverdueDays)
		scheduler, err := jobs.NewScheduler(runner, cfg.ReminderSchedule)
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: container.Router,
	}

	// Run server in separate goroutine
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for Ctrl+C or a listener failure
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		return fmt.Errorf("serve http: %w", err)
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited gracefully")
	return nil
}
