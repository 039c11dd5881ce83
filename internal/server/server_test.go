package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	annotatorhandler "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/handler"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/matcher"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/service"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/definition"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/grpc"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/proto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *service.Service {
	return service.New(
		service.Config{Matcher: matcher.KindAutomaton, Limits: validator.Limits{MaxSections: 4, MaxTerms: 8}},
		service.Deps{Definitions: definition.NewStatic(map[string]definition.Definition{
			"AI": {Definition: "Artificial intelligence."},
		})},
	)
}

func TestRouterChain(t *testing.T) {
	limiter := ratelimit.New(2, time.Minute)
	t.Cleanup(limiter.Close)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	h := New(Options{
		Annotate: annotatorhandler.New(newService(), nil),
		Health:   health.NewChecker(),
		Limiter:  limiter,
		Metrics:  m,
		CORS:     middleware.DefaultCORSConfig(),
		Timeout:  time.Second,
	})

	body := `{"sections":[{"id":"short","text":"AI"}],"terms":["AI"]}`
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/annotate", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/annotate", strings.NewReader(body)))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/annotate", "200")))
}

func TestArticleRoutesAbsentWithoutStore(t *testing.T) {
	h := New(Options{
		Annotate: annotatorhandler.New(newService(), nil),
		Health:   health.NewChecker(),
		CORS:     middleware.DefaultCORSConfig(),
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/articles", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRPC(t *testing.T) {
	s := grpc.NewServer()
	RegisterRPC(s, newService(), health.NewChecker())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go s.ServeListener(ln)
	t.Cleanup(s.Stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := grpc.Dial(ctx, ln.Addr().String())
	require.NoError(t, err)
	defer c.Close()

	var annotated proto.AnnotateResponse
	require.NoError(t, c.Call(ctx, proto.MethodAnnotate, &proto.AnnotateRequest{
		Sections: []proto.Section{{ID: "long", Text: "AI is AI again"}},
		Terms:    []string{"AI"},
	}, &annotated))
	require.Len(t, annotated.Documents, 1)
	assert.Equal(t, 1, annotated.AnnotationCount)
	assert.Equal(t, "AI is AI again", annotated.Documents[0].Text())

	var def proto.LookupResponse
	require.NoError(t, c.Call(ctx, proto.MethodLookup, &proto.LookupRequest{Term: "AI"}, &def))
	assert.Equal(t, "Artificial intelligence.", def.Definition)

	err = c.Call(ctx, proto.MethodLookup, &proto.LookupRequest{Term: "ML"}, &def)
	assert.ErrorIs(t, err, apperrors.ErrDefinitionNotFound)

	err = c.Call(ctx, proto.MethodAnnotate, &proto.AnnotateRequest{
		Sections: []proto.Section{{ID: "s", Text: "x"}},
		Terms:    []string{""},
	}, &annotated)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTerm)

	var hc proto.HealthCheckResponse
	require.NoError(t, c.Call(ctx, proto.MethodHealth, nil, &hc))
	assert.Equal(t, "SERVING", hc.Status)
}
