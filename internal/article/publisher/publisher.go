// Package publisher accepts articles: it persists them and publishes an
// article event so the warmer can pre-build their documents. Idempotency
// keys make retried submissions safe.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/sanitize"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/metrics"
	"github.com/google/uuid"
)

// Repository is the persistence the publisher needs.
type Repository interface {
	FindByIdempotencyKey(ctx context.Context, key string) (*article.IngestResponse, error)
	Insert(ctx context.Context, a *article.Article, idempotencyKey string) error
}

// Publisher coordinates article persistence and Kafka event production.
type Publisher struct {
	repo     Repository
	producer kafka.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Publisher. m may be nil.
func New(repo Repository, producer kafka.Publisher, m *metrics.Metrics) *Publisher {
	return &Publisher{
		repo:     repo,
		producer: producer,
		metrics:  m,
		logger:   slog.Default().With("component", "article-publisher"),
		now:      time.Now,
	}
}

// Ingest stores the article as PENDING and publishes an article.Event.
// Section text and the title are reduced to plain text first. A repeated
// idempotency key returns the original article without re-inserting.
// The request must already be validated.
func (p *Publisher) Ingest(ctx context.Context, req *article.IngestRequest) (*article.IngestResponse, error) {
	if req.IdempotencyKey != "" {
		existing, err := p.repo.FindByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			p.count("error")
			return nil, fmt.Errorf("checking idempotency key: %w", err)
		}
		if existing != nil {
			p.logger.Info("duplicate ingestion detected",
				"idempotency_key", req.IdempotencyKey,
				"existing_id", existing.ArticleID,
			)
			p.count("duplicate")
			existing.Duplicate = true
			return existing, nil
		}
	}

	a := &article.Article{
		ID:       uuid.NewString(),
		Title:    sanitize.PlainText(req.Title),
		Sections: make([]annotator.Section, len(req.Sections)),
		Terms:    append([]string{}, req.Terms...),
		Status:   article.StatusPending,
	}
	for i, s := range req.Sections {
		a.Sections[i] = annotator.Section{ID: s.ID, Text: sanitize.PlainText(s.Text)}
	}

	if err := p.repo.Insert(ctx, a, req.IdempotencyKey); err != nil {
		p.count("error")
		return nil, fmt.Errorf("inserting article: %w", err)
	}

	event := kafka.Event{
		Key: a.ID,
		Value: article.Event{
			ArticleID:  a.ID,
			Title:      a.Title,
			Sections:   a.Sections,
			Terms:      a.Terms,
			IngestedAt: p.now().UTC(),
		},
	}
	if err := p.producer.Publish(ctx, event); err != nil {
		// The article is stored; documents will be built on first read.
		p.logger.Error("failed to publish article event, article stays PENDING",
			"article_id", a.ID,
			"error", err,
		)
	}
	p.count("accepted")
	return &article.IngestResponse{ArticleID: a.ID, Status: a.Status}, nil
}

func (p *Publisher) count(status string) {
	if p.metrics != nil {
		p.metrics.ArticlesIngestedTotal.WithLabelValues(status).Inc()
	}
}
