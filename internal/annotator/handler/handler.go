package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/service"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/proto"
)

const maxBodyBytes = 8 << 20

// ArticleGetter loads a stored article.
type ArticleGetter interface {
	Get(ctx context.Context, id string) (*article.Article, error)
}

type Handler struct {
	svc      *service.Service
	articles ArticleGetter
	logger   *slog.Logger
}

// New returns the annotation handlers. articles may be nil when no article
// store is configured.
func New(svc *service.Service, articles ArticleGetter) *Handler {
	return &Handler{
		svc:      svc,
		articles: articles,
		logger:   slog.Default().With("component", "annotate-handler"),
	}
}

// Annotate serves POST /api/v1/annotate.
func (h *Handler) Annotate(w http.ResponseWriter, r *http.Request) {
	var req proto.AnnotateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	resp, err := h.svc.Annotate(r.Context(), &req, "")
	if err != nil {
		h.fail(w, r, err, "annotation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ArticleDocumentsResponse is returned by GET /api/v1/articles/{id}/documents.
type ArticleDocumentsResponse struct {
	ArticleID string `json:"article_id"`
	Title     string `json:"title"`
	*proto.AnnotateResponse
}

// ArticleDocuments serves GET /api/v1/articles/{id}/documents.
func (h *Handler) ArticleDocuments(w http.ResponseWriter, r *http.Request) {
	if h.articles == nil {
		h.writeError(w, http.StatusServiceUnavailable, "article store not configured")
		return
	}
	id := r.PathValue("id")
	a, err := h.articles.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "loading article failed")
		return
	}
	req := &proto.AnnotateRequest{Terms: a.Terms, Sections: make([]proto.Section, len(a.Sections))}
	for i, s := range a.Sections {
		req.Sections[i] = proto.Section{ID: s.ID, Text: s.Text}
	}
	resp, err := h.svc.Annotate(r.Context(), req, a.ID)
	if err != nil {
		h.fail(w, r, err, "annotation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, ArticleDocumentsResponse{ArticleID: a.ID, Title: a.Title, AnnotateResponse: resp})
}

// Definition serves GET /api/v1/definitions/{term}.
func (h *Handler) Definition(w http.ResponseWriter, r *http.Request) {
	term := r.PathValue("term")
	resp, err := h.svc.Lookup(r.Context(), term)
	if err != nil {
		if errors.Is(err, apperrors.ErrDefinitionNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{
				"term":  term,
				"error": apperrors.Message(err, fmt.Sprintf("no definition found for «%s»", term)),
			})
			return
		}
		h.fail(w, r, err, "definition lookup failed")
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	hits, misses, enabled := h.svc.CacheStats()
	if !enabled {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate drops cached documents and, when cached, definitions.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.InvalidateCache(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrUnavailable) {
			h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
			return
		}
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	body := map[string]any{"status": "invalidated", "documents_deleted": docs}
	defs, ok, err := h.svc.InvalidateDefinitions(r.Context())
	if err != nil {
		h.logger.Error("definition cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	if ok {
		body["definitions_deleted"] = defs
	}
	h.writeJSON(w, http.StatusOK, body)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var validationErr *validator.ValidationError
	if errors.As(err, &validationErr) {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
		return
	}
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error(fallback, "path", r.URL.Path, "error", err)
	}
	h.writeError(w, status, apperrors.Message(err, fallback))
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
