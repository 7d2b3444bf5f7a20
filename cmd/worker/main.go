package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nurturelink/consult-api/internal/config"
	"github.com/nurturelink/consult-api/internal/repository/postgres"
	"github.com/nurturelink/consult-api/pkg/logger"
	"github.com/nurturelink/consult-api/pkg/messaging/redis"
	"github.com/nurturelink/consult-api/pkg/metrics"
	"github.com/nurturelink/consult-api/pkg/storage"
	"github.com/nurturelink/consult-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.NewLogger(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		lg.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)
	linkRepo := postgres.NewLinkRepository(base)

	store, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		lg.Fatal(err, "failed to initialize object storage")
	}

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &lg.ZL)
	if err != nil {
		lg.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		linkRepo,
		store,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.MaxRetries,
			RetryDelay:    cfg.Outbox.RetryDelay,
			Retention:     time.Duration(cfg.Outbox.RetentionDays) * 24 * time.Hour,
		},
		lg,
		metrics.NewMetrics("consult", "worker"),
	)

	go processor.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("shutting down worker")
	cancel()
}
