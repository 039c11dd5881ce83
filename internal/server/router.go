// Package server wires the annotation service routes, middleware chain and
// RPC methods.
package server

import (
	"net/http"
	"time"

	annotatorhandler "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/handler"
	articlehandler "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article/handler"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/middleware"
)

// Options collects the handlers and middleware dependencies. Articles,
// Limiter and Metrics are optional.
type Options struct {
	Annotate *annotatorhandler.Handler
	Articles *articlehandler.Handler
	Health   *health.Checker
	Limiter  middleware.Limiter
	Metrics  *metrics.Metrics
	CORS     middleware.CORSConfig
	Timeout  time.Duration
}

// New builds the HTTP handler.
//
// Route table:
//
//	POST   /api/v1/annotate                 → build documents for sections
//	POST   /api/v1/articles                 → ingest article
//	GET    /api/v1/articles/{id}            → stored article
//	GET    /api/v1/articles/{id}/documents  → built documents of a stored article
//	GET    /api/v1/definitions/{term}       → resolve an annotation
//	GET    /api/v1/cache/stats              → document cache counters
//	POST   /api/v1/cache/invalidate         → drop cached documents and definitions
//	GET    /health/live, /health/ready
//
// Middleware chain (outermost first):
//
//	RequestID → CORS → RateLimit → Metrics → Timeout → mux
func New(opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/live", opts.Health.LiveHandler())
	mux.HandleFunc("GET /health/ready", opts.Health.ReadyHandler())

	mux.HandleFunc("POST /api/v1/annotate", opts.Annotate.Annotate)
	mux.HandleFunc("GET /api/v1/articles/{id}/documents", opts.Annotate.ArticleDocuments)
	mux.HandleFunc("GET /api/v1/definitions/{term}", opts.Annotate.Definition)
	mux.HandleFunc("GET /api/v1/cache/stats", opts.Annotate.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", opts.Annotate.CacheInvalidate)

	if opts.Articles != nil {
		mux.HandleFunc("POST /api/v1/articles", opts.Articles.Ingest)
		mux.HandleFunc("GET /api/v1/articles/{id}", opts.Articles.Get)
	}

	var chain http.Handler = mux
	if opts.Timeout > 0 {
		chain = middleware.Timeout(opts.Timeout)(chain)
	}
	if opts.Metrics != nil {
		chain = middleware.Metrics(opts.Metrics)(chain)
	}
	if opts.Limiter != nil {
		chain = middleware.RateLimit(opts.Limiter)(chain)
	}
	chain = middleware.CORS(opts.CORS)(chain)
	chain = middleware.RequestID(chain)

	return chain
}
