// Package service runs annotate and definition-lookup requests. It is the
// single entry point shared by the HTTP handlers and the RPC server.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/cache"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/document"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/matcher"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/definition"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/proto"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/tracing"
)

// Config holds the static settings of a Service.
type Config struct {
	Matcher     matcher.Kind
	Concurrency int
	Limits      validator.Limits
}

// Deps carries the collaborators of a Service. Cache, Metrics and Tracker
// are optional.
type Deps struct {
	Cache       *cache.DocumentCache
	Definitions definition.Provider
	Metrics     *metrics.Metrics
	Tracker     analytics.Tracker
}

type Service struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger
}

func New(cfg Config, deps Deps) *Service {
	if cfg.Matcher == "" {
		cfg.Matcher = matcher.KindAutomaton
	}
	if deps.Tracker == nil {
		deps.Tracker = analytics.Discard{}
	}
	return &Service{
		cfg:    cfg,
		deps:   deps,
		logger: slog.Default().With("component", "annotation-service"),
	}
}

// Annotate validates req, builds one document per section and reports
// whether every document came from the cache. articleID is recorded in
// analytics only.
func (s *Service) Annotate(ctx context.Context, req *proto.AnnotateRequest, articleID string) (*proto.AnnotateResponse, error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "annotate", logger.RequestID(ctx))
	defer func() {
		span.End()
		span.Log()
	}()

	sections := make([]annotator.Section, len(req.Sections))
	for i, sec := range req.Sections {
		sections[i] = annotator.Section{ID: sec.ID, Text: sec.Text}
	}
	if err := validator.ValidateAnnotate(sections, req.Terms, s.cfg.Limits); err != nil {
		return nil, err
	}

	kind := s.cfg.Matcher
	if req.Matcher != "" {
		k, err := matcher.ParseKind(req.Matcher)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, err.Error())
		}
		kind = k
	}
	span.SetAttr("matcher", kind)
	span.SetAttr("sections", len(sections))

	_, compile := tracing.StartChildSpan(ctx, "compile")
	b, err := annotator.NewFromTerms(req.Terms, kind, annotator.WithConcurrency(s.cfg.Concurrency))
	compile.End()
	if err != nil {
		return nil, err
	}

	docs, hit, err := s.build(ctx, b, sections)
	if err != nil {
		return nil, err
	}

	resp := &proto.AnnotateResponse{
		Documents: docs,
		CacheHit:  hit,
	}
	var annotated []string
	for _, d := range docs {
		resp.AnnotationCount += d.AnnotationCount()
		annotated = append(annotated, d.Terms()...)
	}
	resp.LatencyMs = time.Since(start).Milliseconds()
	span.SetAttr("annotations", resp.AnnotationCount)

	logger.FromContext(ctx).Info("annotate completed",
		"matcher", kind,
		"sections", len(sections),
		"terms", len(req.Terms),
		"annotations", resp.AnnotationCount,
		"cache_hit", hit,
		"latency_ms", resp.LatencyMs,
	)
	s.deps.Tracker.Track(analytics.AnnotateEvent{
		Type:           analytics.EventAnnotate,
		RequestID:      logger.RequestID(ctx),
		ArticleID:      articleID,
		Matcher:        string(kind),
		Sections:       len(sections),
		Terms:          len(req.Terms),
		Annotations:    resp.AnnotationCount,
		AnnotatedTerms: annotated,
		CacheHit:       hit,
		LatencyMs:      resp.LatencyMs,
		Timestamp:      time.Now().UTC(),
	})
	return resp, nil
}

func (s *Service) build(ctx context.Context, b *annotator.Builder, sections []annotator.Section) ([]*document.Document, bool, error) {
	ctx, span := tracing.StartChildSpan(ctx, "build")
	defer span.End()

	start := time.Now()
	var (
		docs []*document.Document
		hit  bool
		err  error
	)
	if s.deps.Cache != nil {
		docs, hit, err = s.deps.Cache.GetOrBuildAll(ctx, b, sections)
	} else {
		docs, err = b.BuildAll(ctx, sections)
	}
	if err != nil {
		return nil, false, fmt.Errorf("building documents: %w", err)
	}
	span.SetAttr("cache_hit", hit)

	if m := s.deps.Metrics; m != nil {
		if hit {
			m.DocumentCacheHits.Inc()
		} else {
			m.DocumentCacheMisses.Inc()
			m.DocumentsBuiltTotal.WithLabelValues(string(b.Kind())).Add(float64(len(docs)))
			m.DocumentBuildDuration.WithLabelValues(string(b.Kind())).Observe(time.Since(start).Seconds())
		}
		for _, d := range docs {
			m.AnnotationsEmitted.Add(float64(d.AnnotationCount()))
		}
	}
	return docs, hit, nil
}

// Lookup resolves term through the definition provider. A missing term is
// returned as an error wrapping apperrors.ErrDefinitionNotFound so callers
// can render their fallback.
func (s *Service) Lookup(ctx context.Context, term string) (*proto.LookupResponse, error) {
	start := time.Now()
	if term == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "term is required")
	}
	if s.deps.Definitions == nil {
		return nil, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "definitions are not configured")
	}

	d, err := s.deps.Definitions.Lookup(ctx, term)
	result := "found"
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrDefinitionNotFound):
		result = "missing"
	default:
		result = "error"
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.DefinitionLookupsTotal.WithLabelValues(result).Inc()
	}
	if result != "error" {
		s.deps.Tracker.Track(analytics.LookupEvent{
			Type:      analytics.EventLookup,
			RequestID: logger.RequestID(ctx),
			Term:      term,
			Found:     err == nil,
			LatencyMs: time.Since(start).Milliseconds(),
			Timestamp: time.Now().UTC(),
		})
	}
	if err != nil {
		if result == "error" {
			logger.FromContext(ctx).Error("definition lookup failed", "term", term, "error", err)
		}
		return nil, err
	}
	return &proto.LookupResponse{Term: term, Definition: d.Definition, Example: d.Example}, nil
}

// CacheStats returns document cache counters; enabled is false without a
// cache.
func (s *Service) CacheStats() (hits, misses int64, enabled bool) {
	if s.deps.Cache == nil {
		return 0, 0, false
	}
	hits, misses = s.deps.Cache.Stats()
	return hits, misses, true
}

// InvalidateCache drops every cached document.
func (s *Service) InvalidateCache(ctx context.Context) (int64, error) {
	if s.deps.Cache == nil {
		return 0, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "caching is disabled")
	}
	return s.deps.Cache.Invalidate(ctx)
}

type invalidator interface {
	Invalidate(ctx context.Context) (int64, error)
}

// InvalidateDefinitions drops cached definitions. ok is false when the
// provider chain has no cache.
func (s *Service) InvalidateDefinitions(ctx context.Context) (deleted int64, ok bool, err error) {
	inv, ok := s.deps.Definitions.(invalidator)
	if !ok {
		return 0, false, nil
	}
	deleted, err = inv.Invalidate(ctx)
	return deleted, true, err
}
