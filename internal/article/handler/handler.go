// Package handler serves the article ingestion and retrieval endpoints.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/logger"
)

const maxBodyBytes = 8 << 20

// Ingester accepts validated articles.
type Ingester interface {
	Ingest(ctx context.Context, req *article.IngestRequest) (*article.IngestResponse, error)
}

// Getter loads stored articles.
type Getter interface {
	Get(ctx context.Context, id string) (*article.Article, error)
}

type Handler struct {
	ingester Ingester
	getter   Getter
	limits   validator.Limits
	logger   *slog.Logger
}

func New(ingester Ingester, getter Getter, limits validator.Limits) *Handler {
	return &Handler{
		ingester: ingester,
		getter:   getter,
		limits:   limits,
		logger:   slog.Default().With("component", "article-handler"),
	}
}

// Ingest serves POST /api/v1/articles.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req article.IngestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if key := r.Header.Get("Idempotency-Key"); key != "" && req.IdempotencyKey == "" {
		req.IdempotencyKey = key
	}
	if err := validator.ValidateIngest(&req, h.limits); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.ingester.Ingest(ctx, &req)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("ingestion failed", "error", err, "status_code", statusCode)
		h.writeError(w, statusCode, apperrors.Message(err, "ingestion failed"))
		return
	}
	log.Info("article ingested", "article_id", resp.ArticleID, "duplicate", resp.Duplicate)
	h.writeJSON(w, http.StatusAccepted, resp)
}

// Get serves GET /api/v1/articles/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	a, err := h.getter.Get(r.Context(), id)
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			logger.FromContext(r.Context()).Error("loading article failed", "article_id", id, "error", err)
		}
		h.writeError(w, status, apperrors.Message(err, "loading article failed"))
		return
	}
	h.writeJSON(w, http.StatusOK, a)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
