// Package definition resolves an annotated term to the text shown when a
// reader activates it. Sources are interchangeable behind Provider and are
// selected by configuration; caching and fault tolerance are layered on as
// decorators.
package definition

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/resilience"
)

const (
	SourceStatic   = "static"
	SourcePostgres = "postgres"
)

// Definition is the payload for one term. Example is optional.
type Definition struct {
	Term       string `json:"term" yaml:"-"`
	Definition string `json:"definition" yaml:"definition"`
	Example    string `json:"example,omitempty" yaml:"example"`
}

// Provider looks up a term by its exact string. A missing term yields an
// error wrapping apperrors.ErrDefinitionNotFound.
type Provider interface {
	Lookup(ctx context.Context, term string) (*Definition, error)
}

// Deps carries the optional backends a provider chain may use. A nil Redis
// disables caching; DB is required only for the postgres source.
type Deps struct {
	DB      *sql.DB
	Redis   *pkgredis.Client
	Metrics *metrics.Metrics
}

// New builds the provider chain selected by cfg.Source:
// source → Resilient → Cached.
func New(cfg config.DefinitionsConfig, redisCfg config.RedisConfig, deps Deps) (Provider, error) {
	var base Provider
	switch cfg.Source {
	case SourceStatic:
		s, err := LoadStatic(cfg.StaticPath)
		if err != nil {
			return nil, err
		}
		base = s
	case SourcePostgres:
		if deps.DB == nil {
			return nil, fmt.Errorf("definitions source %q requires a database", cfg.Source)
		}
		base = NewPostgres(deps.DB)
	default:
		return nil, fmt.Errorf("unknown definitions source %q", cfg.Source)
	}

	var onChange func(name string, from, to resilience.State)
	if deps.Metrics != nil {
		onChange = func(name string, _, to resilience.State) {
			deps.Metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		}
	}
	p := NewResilient(base, ResilientConfig{
		Timeout: cfg.LookupTimeout,
		Retry: resilience.RetryConfig{
			MaxAttempts:  cfg.Retry.MaxAttempts,
			InitialDelay: cfg.Retry.InitialDelay,
			MaxDelay:     cfg.Retry.MaxDelay,
		},
		Breaker: resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
			ResetTimeout:     cfg.CircuitBreaker.ResetTimeout,
			OnStateChange:    onChange,
		},
	})

	if deps.Redis != nil {
		ttl := cfg.CacheTTL
		if ttl <= 0 {
			ttl = redisCfg.CacheTTL
		}
		slog.Info("definition cache enabled", "ttl", ttl)
		return NewCached(p, deps.Redis, ttl), nil
	}
	return p, nil
}
