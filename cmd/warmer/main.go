// Command warmer consumes article events and pre-builds every section's
// annotated document into the shared Redis cache.
//
// Usage:
//
//	go run ./cmd/warmer [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/analytics/collector"
	annotatorcache "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/cache"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/matcher"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article/store"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/warmer"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting warmer service", "matcher", cfg.Annotator.Matcher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	deps := warmer.Deps{
		Cache:   annotatorcache.New(redisClient, cfg.Redis.CacheTTL),
		Metrics: m,
	}

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, article status will not be updated", "error", err)
	} else {
		defer db.Close()
		deps.Marker = store.New(db)
	}

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer analyticsProducer.Close()
	batch := collector.NewBatchCollector(analyticsProducer, cfg.Analytics.BatchSize, cfg.Analytics.FlushInterval)
	batch.Start(ctx)
	defer batch.Close()
	deps.Tracker = batch

	w := warmer.New(matcher.Kind(cfg.Annotator.Matcher), cfg.Annotator.BuildConcurrency, deps)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.ArticleEvents, w.HandleMessage())

	slog.Info("warmer ready, consuming from kafka",
		"topic", cfg.Kafka.Topics.ArticleEvents,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := consumer.Start(ctx); err != nil {
		slog.Error("consumer error", "error", err)
	}

	slog.Info("warmer service stopped")
}
