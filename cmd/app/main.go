package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitclub/internal/auth"
	"fitclub/internal/booking"
	"fitclub/internal/config"
	"fitclub/internal/db"
	"fitclub/internal/events"
	"fitclub/internal/logger"
	"fitclub/internal/notify"
	"fitclub/internal/server"

	"github.com/redis/go-redis/v9"
)

// @title FitClub API
// @version 1.0
// @description Fitness club bookings: class registration, PT sessions and member dashboards.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting FitClub application")

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		// revocation and the mail queue degrade, bookings keep working
		logger.Warn("Redis unavailable", "addr", cfg.RedisAddr, "error", err)
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		logger.Fatalf("Failed to start event publisher: %v", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	var mailer *notify.Service
	if cfg.NotifyEnabled {
		mailer = notify.New(rdb, notify.SMTPConfig{
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Pass:     cfg.SMTPPass,
		})
		go mailer.Start(ctx)
		logger.Info("Email worker started")
	}

	srv := server.New(server.Deps{
		DB:        database,
		Config:    cfg,
		Locker:    newLocker(cfg, rdb),
		Publisher: publisher,
		Revoker:   auth.NewRedisRevoker(rdb),
		Mailer:    mailer,
	})

	if err := srv.Bootstrap(ctx); err != nil {
		logger.Fatalf("Failed to create admin account: %v", err)
	}

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

func newLocker(cfg *config.Config, rdb *redis.Client) booking.Locker {
	if cfg.LockBackend == config.LockRedis {
		logger.Info("Using redis booking locks", "ttl", cfg.LockTTL, "wait", cfg.LockWait)
		return booking.NewRedisLocker(rdb, cfg.LockTTL, cfg.LockWait)
	}
	return booking.NewMemoryLocker(cfg.LockWait)
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	switch cfg.EventsBroker {
	case config.BrokerKafka:
		logger.Info("Publishing booking events to kafka", "topic", cfg.KafkaTopic)
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	case config.BrokerRabbitMQ:
		logger.Info("Publishing booking events to rabbitmq", "exchange", cfg.RabbitMQExchange)
		return events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	default:
		return events.Nop{}, nil
	}
}
