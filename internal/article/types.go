// Package article defines the stored article model and the Kafka event
// emitted when an article is accepted for annotation.
package article

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator"
)

const (
	StatusPending = "PENDING"
	StatusBuilt   = "BUILT"
)

// Article is a stored article: its independently gated sections and the
// vocabulary its documents are built with.
type Article struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Sections  []annotator.Section `json:"sections"`
	Terms     []string            `json:"terms"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// IngestRequest is the JSON body accepted by POST /api/v1/articles. The
// idempotency key may also arrive in the Idempotency-Key header.
type IngestRequest struct {
	Title          string              `json:"title"`
	Sections       []annotator.Section `json:"sections"`
	Terms          []string            `json:"terms"`
	IdempotencyKey string              `json:"idempotency_key,omitempty"`
}

// IngestResponse is returned to the caller after an article is accepted.
type IngestResponse struct {
	ArticleID string `json:"article_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// Event is the Kafka payload produced after an article is persisted.
type Event struct {
	ArticleID  string              `json:"article_id"`
	Title      string              `json:"title"`
	Sections   []annotator.Section `json:"sections"`
	Terms      []string            `json:"terms"`
	IngestedAt time.Time           `json:"ingested_at"`
}
