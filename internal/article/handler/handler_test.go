package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngester struct {
	got  *article.IngestRequest
	resp *article.IngestResponse
	err  error
}

func (f *fakeIngester) Ingest(_ context.Context, req *article.IngestRequest) (*article.IngestResponse, error) {
	f.got = req
	return f.resp, f.err
}

type fakeGetter map[string]*article.Article

func (f fakeGetter) Get(_ context.Context, id string) (*article.Article, error) {
	if a, ok := f[id]; ok {
		return a, nil
	}
	return nil, apperrors.Newf(apperrors.ErrArticleNotFound, http.StatusNotFound, "article %s not found", id)
}

var limits = validator.Limits{MaxSections: 4, MaxTerms: 10, MaxSectionBytes: 1 << 10}

func newMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/articles", h.Ingest)
	mux.HandleFunc("GET /api/v1/articles/{id}", h.Get)
	return mux
}

const validBody = `{"title":"AI weekly","sections":[{"id":"short","text":"AI"}],"terms":["AI"]}`

func TestIngestAccepted(t *testing.T) {
	ing := &fakeIngester{resp: &article.IngestResponse{ArticleID: "a-1", Status: article.StatusPending}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/articles", strings.NewReader(validBody))
	req.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()

	newMux(New(ing, fakeGetter{}, limits)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "key-1", ing.got.IdempotencyKey)
	var resp article.IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a-1", resp.ArticleID)
}

func TestIngestRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"title":`},
		{"missing sections", `{"title":"x","terms":["AI"]}`},
		{"empty term", `{"title":"x","sections":[{"id":"short","text":"AI"}],"terms":["AI",""]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing := &fakeIngester{}
			rec := httptest.NewRecorder()
			newMux(New(ing, fakeGetter{}, limits)).ServeHTTP(rec,
				httptest.NewRequest(http.MethodPost, "/api/v1/articles", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, ing.got)
		})
	}
}

func TestIngestMapsStoreErrors(t *testing.T) {
	ing := &fakeIngester{err: apperrors.New(apperrors.ErrIdempotencyConflict, http.StatusConflict, "idempotency key already in use")}
	rec := httptest.NewRecorder()
	newMux(New(ing, fakeGetter{}, limits)).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/v1/articles", strings.NewReader(validBody)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "idempotency key already in use")

	ing.err = errors.New("connection reset")
	rec = httptest.NewRecorder()
	newMux(New(ing, fakeGetter{}, limits)).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/v1/articles", strings.NewReader(validBody)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestGetArticle(t *testing.T) {
	getter := fakeGetter{"a-1": {
		ID:       "a-1",
		Title:    "AI weekly",
		Sections: []annotator.Section{{ID: "short", Text: "AI"}},
		Terms:    []string{"AI"},
		Status:   article.StatusBuilt,
	}}
	mux := newMux(New(&fakeIngester{}, getter, limits))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles/a-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var a article.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, article.StatusBuilt, a.Status)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
