package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/matcher"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/service"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/definition"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type articles map[string]*article.Article

func (a articles) Get(_ context.Context, id string) (*article.Article, error) {
	if art, ok := a[id]; ok {
		return art, nil
	}
	return nil, apperrors.Newf(apperrors.ErrArticleNotFound, http.StatusNotFound, "article %s not found", id)
}

func newMux(t *testing.T) *http.ServeMux {
	t.Helper()
	svc := service.New(
		service.Config{Matcher: matcher.KindPattern, Limits: validator.Limits{MaxSections: 4, MaxTerms: 8}},
		service.Deps{Definitions: definition.NewStatic(map[string]definition.Definition{
			"AI": {Definition: "Artificial intelligence."},
		})},
	)
	h := New(svc, articles{"a-1": {
		ID:       "a-1",
		Title:    "AI weekly",
		Sections: []annotator.Section{{ID: "short", Text: "AI and AI"}},
		Terms:    []string{"AI"},
	}})
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/annotate", h.Annotate)
	mux.HandleFunc("GET /api/v1/articles/{id}/documents", h.ArticleDocuments)
	mux.HandleFunc("GET /api/v1/definitions/{term}", h.Definition)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	return mux
}

func do(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestAnnotateEndpoint(t *testing.T) {
	mux := newMux(t)

	rec := do(t, mux, http.MethodPost, "/api/v1/annotate",
		`{"sections":[{"id":"long","text":"We love C++ and C++."}],"terms":["C++"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp proto.AnnotateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, 1, resp.AnnotationCount)
	assert.Equal(t, "We love C++ and C++.", resp.Documents[0].Text())
}

func TestAnnotateEndpointErrors(t *testing.T) {
	mux := newMux(t)
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"malformed", `{"sections":`, http.StatusBadRequest, "invalid JSON body"},
		{"empty term", `{"sections":[{"id":"s","text":"AI"}],"terms":[""]}`, http.StatusBadRequest, "term 0"},
		{"no sections", `{"terms":["AI"]}`, http.StatusBadRequest, "validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodPost, "/api/v1/annotate", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestArticleDocuments(t *testing.T) {
	mux := newMux(t)

	rec := do(t, mux, http.MethodGet, "/api/v1/articles/a-1/documents", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ArticleDocumentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a-1", resp.ArticleID)
	assert.Equal(t, 1, resp.AnnotationCount)

	rec = do(t, mux, http.MethodGet, "/api/v1/articles/nope/documents", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDefinitionEndpoint(t *testing.T) {
	mux := newMux(t)

	rec := do(t, mux, http.MethodGet, "/api/v1/definitions/AI", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Artificial intelligence.")

	rec = do(t, mux, http.MethodGet, "/api/v1/definitions/ML", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no definition found for «ML»", body["error"])
	assert.Equal(t, "ML", body["term"])
}

func TestCacheEndpointsWithoutCache(t *testing.T) {
	mux := newMux(t)

	rec := do(t, mux, http.MethodGet, "/api/v1/cache/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "disabled")

	rec = do(t, mux, http.MethodPost, "/api/v1/cache/invalidate", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
