// Package warmer pre-builds the section documents of newly ingested articles
// so that the first reader request is served from the cache.
package warmer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/cache"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/document"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/matcher"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// StatusMarker records that an article's documents are ready.
type StatusMarker interface {
	MarkBuilt(ctx context.Context, id string) error
}

// Deps carries the warmer's collaborators. Every field is optional.
type Deps struct {
	Cache   *cache.DocumentCache
	Marker  StatusMarker
	Tracker analytics.Tracker
	Metrics *metrics.Metrics
}

type Warmer struct {
	kind        matcher.Kind
	concurrency int
	deps        Deps
	logger      *slog.Logger
}

// New returns a warmer building sections with kind, at most concurrency at a
// time per article. A non-positive concurrency uses the builder default.
func New(kind matcher.Kind, concurrency int, deps Deps) *Warmer {
	if deps.Tracker == nil {
		deps.Tracker = analytics.Discard{}
	}
	return &Warmer{
		kind:        kind,
		concurrency: concurrency,
		deps:        deps,
		logger:      logger.WithComponent("warmer"),
	}
}

// HandleMessage decodes article events and warms them. Undecodable events
// and articles whose terms cannot be compiled are skipped.
func (w *Warmer) HandleMessage() kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[article.Event](value)
		if err != nil {
			return err
		}
		return w.Warm(ctx, event)
	}
}

// Warm builds and caches every section of ev, then marks the article built.
func (w *Warmer) Warm(ctx context.Context, ev article.Event) error {
	b, err := annotator.NewFromTerms(ev.Terms, w.kind, annotator.WithConcurrency(w.concurrency))
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidTerm) {
			return fmt.Errorf("article %s: %w: %w", ev.ArticleID, kafka.ErrSkip, err)
		}
		return fmt.Errorf("article %s: %w", ev.ArticleID, err)
	}

	counts := make([]int, len(ev.Sections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Concurrency())
	for i, section := range ev.Sections {
		g.Go(func() error {
			start := time.Now()
			doc, err := w.build(gctx, b, section)
			if err != nil {
				return fmt.Errorf("article %s section %s: %w", ev.ArticleID, section.ID, err)
			}
			elapsed := time.Since(start)
			counts[i] = doc.AnnotationCount()

			if m := w.deps.Metrics; m != nil {
				m.DocumentsBuiltTotal.WithLabelValues(string(w.kind)).Inc()
				m.DocumentBuildDuration.WithLabelValues(string(w.kind)).Observe(elapsed.Seconds())
				m.AnnotationsEmitted.Add(float64(counts[i]))
			}
			w.deps.Tracker.Track(analytics.DocumentBuiltEvent{
				Type:        analytics.EventDocumentBuilt,
				ArticleID:   ev.ArticleID,
				SectionID:   section.ID,
				Annotations: counts[i],
				LatencyMs:   elapsed.Milliseconds(),
				Timestamp:   time.Now().UTC(),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	annotations := 0
	for _, n := range counts {
		annotations += n
	}

	if w.deps.Marker != nil {
		if err := w.deps.Marker.MarkBuilt(ctx, ev.ArticleID); err != nil {
			if !errors.Is(err, apperrors.ErrArticleNotFound) {
				return fmt.Errorf("article %s: %w", ev.ArticleID, err)
			}
			w.logger.Warn("built article no longer stored", "article_id", ev.ArticleID)
		}
	}
	w.logger.Info("article warmed",
		"article_id", ev.ArticleID,
		"sections", len(ev.Sections),
		"annotations", annotations,
	)
	return nil
}

func (w *Warmer) build(ctx context.Context, b *annotator.Builder, section annotator.Section) (*document.Document, error) {
	if w.deps.Cache == nil {
		return b.Build(section), nil
	}
	doc, _, err := w.deps.Cache.GetOrBuild(ctx, b, section)
	return doc, err
}
