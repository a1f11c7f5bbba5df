package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rosterup/platform/internal/infra"
	"github.com/rosterup/platform/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("notifier failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("notifier connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	pollInterval := 2 * time.Second
	if s := os.Getenv("NOTIFIER_POLL_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			pollInterval = d
		}
	}

	batchSize := 100
	if s := os.Getenv("NOTIFIER_BATCH_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			batchSize = n
		}
	}

	repo := repository.NewNotificationRepository()
	logger.Info("notifier starting", "poll_interval", pollInterval, "batch_size", batchSize)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("notifier shutting down")
			return nil
		case <-ticker.C:
			if err := poll(ctx, pool, repo, producer, logger, batchSize); err != nil {
				logger.Error("poll error", "error", err)
			}
		}
	}
}

func poll(ctx context.Context, pool *pgxpool.Pool, repo repository.NotificationRepository, producer *infra.KafkaProducer, logger *slog.Logger, limit int) error {
	rows, err := repo.FetchUnpublished(ctx, pool, limit)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	published := make([]int64, 0, len(rows))
	for _, row := range rows {
		err := producer.Publish(ctx, row.Topic, []byte(row.NotificationID.String()), row.Payload)
		if err != nil {
			logger.Error("publish failed", "seq_id", row.SeqID, "notification_id", row.NotificationID, "error", err)
			continue
		}
		logger.Info("notification published",
			"seq_id", row.SeqID,
			"notification_id", row.NotificationID,
			"topic", row.Topic,
		)
		published = append(published, row.SeqID)
	}

	if err := repo.MarkPublished(ctx, pool, published); err != nil {
		return fmt.Errorf("mark published: %w", err)
	}

	if len(published) > 0 {
		logger.Info("processed notification batch", "count", len(published))
	}
	return nil
}
