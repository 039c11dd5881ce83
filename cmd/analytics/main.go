// Command analytics starts the standalone analytics aggregation service.
//
// It consumes annotation analytics events from Kafka (annotate requests,
// definition lookups, warmed documents), aggregates them in memory, snapshots
// the aggregate to PostgreSQL, and serves GET /api/v1/analytics.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/postgres"
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
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checker := health.NewChecker()

	agg := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, agg.HandleEvent())
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	checker.Register("kafka", health.PingCheck(func(ctx context.Context) error {
		return kafka.Ping(ctx, cfg.Kafka.Brokers)
	}, false))
	slog.Info("analytics aggregator started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	var snapshots analytics.SnapshotLister
	var snapshotsDone <-chan struct{}
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, snapshots disabled", "error", err)
	} else {
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			slog.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		store := aggregator.NewStore(db)
		if last, err := store.LatestSnapshot(ctx); err != nil {
			slog.Warn("loading latest snapshot failed", "error", err)
		} else if last != nil {
			slog.Info("previous snapshot found",
				"total_annotate_requests", last.TotalAnnotateRequests,
				"total_lookups", last.TotalLookups,
			)
		}
		snapshotsDone = store.StartPeriodicSave(ctx, agg, cfg.Analytics.SnapshotInterval)
		snapshots = store
		checker.Register("postgres", health.PingCheck(db.Ping, true))
	}

	analyticsHandler := analytics.NewHandler(agg, snapshots)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshots", analyticsHandler.Snapshots)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", metrics.Handler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	<-consumerDone
	if snapshotsDone != nil {
		<-snapshotsDone
	}
	slog.Info("analytics service stopped")
}
