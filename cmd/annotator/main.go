// Command annotator starts the annotation HTTP and RPC service.
//
// The service builds annotated documents for article sections, resolves
// definitions for activated annotations, and accepts articles for
// pre-building by the warmer.
//
// Usage:
//
//	go run ./cmd/annotator [-config configs/development.yaml]
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
	annotatorcache "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/cache"
	annotatorhandler "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/handler"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/matcher"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/service"
	articlehandler "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article/handler"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article/publisher"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article/store"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/definition"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/server"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/validator"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/grpc"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/tracing"
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
	tracing.Configure(cfg.Tracing.Enabled, cfg.Tracing.SampleRate)
	slog.Info("starting annotation service", "port", cfg.Server.Port, "matcher", cfg.Annotator.Matcher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	checker := health.NewChecker()

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		if cfg.Definitions.Source == definition.SourcePostgres {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		slog.Warn("postgres unavailable, article routes disabled", "error", err)
		db = nil
	} else {
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			slog.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		checker.Register("postgres", health.PingCheck(db.Ping, false))
		slog.Info("connected to postgres")
	}

	var docCache *annotatorcache.DocumentCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		docCache = annotatorcache.New(redisClient, cfg.Redis.CacheTTL)
		checker.Register("redis", health.PingCheck(redisClient.Ping, true))
		slog.Info("document cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	defDeps := definition.Deps{Redis: redisClient, Metrics: m}
	if db != nil {
		defDeps.DB = db.DB
	}
	definitions, err := definition.New(cfg.Definitions, cfg.Redis, defDeps)
	if err != nil {
		slog.Error("failed to build definition provider", "error", err)
		os.Exit(1)
	}
	slog.Info("definition provider ready", "source", cfg.Definitions.Source)

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer analyticsProducer.Close()
	collector := analytics.NewCollector(analyticsProducer, cfg.Analytics.BufferSize)
	collector.Start(ctx)
	defer collector.Close()
	checker.Register("kafka", health.PingCheck(func(ctx context.Context) error {
		return kafka.Ping(ctx, cfg.Kafka.Brokers)
	}, true))

	limits := validator.LimitsFrom(cfg.Annotator)
	svc := service.New(service.Config{
		Matcher:     matcher.Kind(cfg.Annotator.Matcher),
		Concurrency: cfg.Annotator.BuildConcurrency,
		Limits:      limits,
	}, service.Deps{
		Cache:       docCache,
		Definitions: definitions,
		Metrics:     m,
		Tracker:     collector,
	})

	opts := server.Options{
		Health:  checker,
		Metrics: m,
		CORS:    middleware.DefaultCORSConfig(),
		Timeout: cfg.Server.WriteTimeout,
	}
	if db != nil {
		articles := store.New(db)
		articleProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.ArticleEvents)
		defer articleProducer.Close()
		opts.Articles = articlehandler.New(publisher.New(articles, articleProducer, m), articles, limits)
		opts.Annotate = annotatorhandler.New(svc, articles)
	} else {
		opts.Annotate = annotatorhandler.New(svc, nil)
	}
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		defer limiter.Close()
		opts.Limiter = limiter
	}

	if cfg.RPC.Enabled {
		rpc := grpc.NewServer()
		server.RegisterRPC(rpc, svc, checker)
		go func() {
			if err := rpc.Serve(cfg.RPC.Addr); err != nil {
				slog.Error("rpc server error", "error", err)
			}
		}()
		defer rpc.Stop()
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.New(opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("annotation service listening", "addr", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("annotation service stopped")
}
