package definition

import (
	"context"
	"errors"
	"net/http"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/resilience"
)

// ResilientConfig tunes the Resilient decorator.
type ResilientConfig struct {
	Timeout time.Duration
	Retry   resilience.RetryConfig
	Breaker resilience.CircuitBreakerConfig
}

// Resilient bounds each lookup with a timeout, retries transient failures,
// and stops calling a failing source through a circuit breaker. NotFound is
// an answer, not a failure: it is never retried and never trips the breaker.
type Resilient struct {
	next    Provider
	cfg     ResilientConfig
	breaker *resilience.CircuitBreaker
}

func NewResilient(next Provider, cfg ResilientConfig) *Resilient {
	cfg.Breaker.IsFailure = func(err error) bool {
		return !errors.Is(err, apperrors.ErrDefinitionNotFound)
	}
	return &Resilient{
		next:    next,
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker("definitions", cfg.Breaker),
	}
}

func (r *Resilient) Lookup(ctx context.Context, term string) (*Definition, error) {
	var out *Definition
	err := resilience.Retry(ctx, "definition-lookup", r.cfg.Retry, func() error {
		// d belongs to this attempt; a timed-out attempt may still write it.
		var d *Definition
		err := r.breaker.Execute(func() error {
			return resilience.WithTimeout(ctx, r.cfg.Timeout, "definition-lookup", func(ctx context.Context) error {
				res, err := r.next.Lookup(ctx, term)
				if err != nil {
					return err
				}
				d = res
				return nil
			})
		})
		if errors.Is(err, apperrors.ErrDefinitionNotFound) || errors.Is(err, resilience.ErrCircuitOpen) {
			return resilience.Permanent(err)
		}
		if err == nil {
			out = d
		}
		return err
	})
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, apperrors.ErrDefinitionNotFound):
		return nil, err
	case errors.Is(err, resilience.ErrCircuitOpen):
		return nil, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "definition source unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.New(apperrors.ErrTimeout, http.StatusGatewayTimeout, "definition lookup timed out")
	default:
		return nil, apperrors.Newf(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "definition lookup failed: %v", err)
	}
}

// State reports the circuit breaker state.
func (r *Resilient) State() resilience.State {
	return r.breaker.GetState()
}
