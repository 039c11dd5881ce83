package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/cache"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/document"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/matcher"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/definition"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/validator"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/proto"
	pkgredis "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (r *recorder) Track(e analytics.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Events() []analytics.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]analytics.Event(nil), r.events...)
}

type failingProvider struct{}

func (failingProvider) Lookup(context.Context, string) (*definition.Definition, error) {
	return nil, errors.New("connection refused")
}

var limits = validator.Limits{MaxSections: 8, MaxTerms: 16, MaxSectionBytes: 1 << 12}

func newService(t *testing.T, withCache bool) (*Service, *recorder, *metrics.Metrics) {
	t.Helper()
	deps := Deps{
		Definitions: definition.NewStatic(map[string]definition.Definition{
			"AI": {Definition: "Artificial intelligence.", Example: "AI writes headlines."},
		}),
		Metrics: metrics.NewWithRegistry(prometheus.NewRegistry()),
		Tracker: &recorder{},
	}
	if withCache {
		mr := miniredis.RunT(t)
		client, err := pkgredis.NewClient(config.RedisConfig{Addr: mr.Addr()})
		require.NoError(t, err)
		t.Cleanup(func() { client.Close() })
		deps.Cache = cache.New(client, time.Minute)
	}
	svc := New(Config{Matcher: matcher.KindAutomaton, Concurrency: 2, Limits: limits}, deps)
	return svc, deps.Tracker.(*recorder), deps.Metrics
}

func annotateRequest() *proto.AnnotateRequest {
	return &proto.AnnotateRequest{
		Sections: []proto.Section{
			{ID: "short", Text: "Why AI matters"},
			{ID: "long", Text: "AI is AI again\n\nand C++ too"},
		},
		Terms: []string{"AI", "C++"},
	}
}

func TestAnnotateGatesEachSection(t *testing.T) {
	svc, rec, m := newService(t, false)

	resp, err := svc.Annotate(context.Background(), annotateRequest(), "")
	require.NoError(t, err)
	require.Len(t, resp.Documents, 2)
	assert.Equal(t, 3, resp.AnnotationCount)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, []string{"AI"}, resp.Documents[0].Terms())
	assert.Equal(t, []string{"AI", "C++"}, resp.Documents[1].Terms())
	assert.Equal(t, document.Text("AI"), resp.Documents[1].Paragraphs[0].Lines[0].Runs[2])

	events := rec.Events()
	require.Len(t, events, 1)
	ev := events[0].(analytics.AnnotateEvent)
	assert.Equal(t, 3, ev.Annotations)
	assert.Equal(t, "automaton", ev.Matcher)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsBuiltTotal.WithLabelValues("automaton")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.AnnotationsEmitted))
}

func TestAnnotateServesRepeatsFromCache(t *testing.T) {
	svc, _, m := newService(t, true)

	first, err := svc.Annotate(context.Background(), annotateRequest(), "")
	require.NoError(t, err)
	second, err := svc.Annotate(context.Background(), annotateRequest(), "a-1")
	require.NoError(t, err)

	assert.False(t, first.CacheHit)
	assert.True(t, second.CacheHit)
	for i := range first.Documents {
		assert.True(t, first.Documents[i].Equal(second.Documents[i]))
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentCacheHits))

	hits, misses, enabled := svc.CacheStats()
	assert.True(t, enabled)
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(2), misses)

	deleted, err := svc.InvalidateCache(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestAnnotateMatcherOverride(t *testing.T) {
	svc, rec, _ := newService(t, false)
	req := annotateRequest()
	req.Matcher = "pattern"

	_, err := svc.Annotate(context.Background(), req, "")
	require.NoError(t, err)
	assert.Equal(t, "pattern", rec.Events()[0].(analytics.AnnotateEvent).Matcher)

	req.Matcher = "fuzzy"
	_, err = svc.Annotate(context.Background(), req, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAnnotateRejectsBadInput(t *testing.T) {
	svc, rec, _ := newService(t, false)

	req := annotateRequest()
	req.Terms = []string{"AI", ""}
	_, err := svc.Annotate(context.Background(), req, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTerm)

	req = annotateRequest()
	req.Sections = nil
	_, err = svc.Annotate(context.Background(), req, "")
	var validationErr *validator.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	assert.Empty(t, rec.Events())
}

func TestLookup(t *testing.T) {
	svc, rec, m := newService(t, false)
	ctx := context.Background()

	resp, err := svc.Lookup(ctx, "AI")
	require.NoError(t, err)
	assert.Equal(t, "Artificial intelligence.", resp.Definition)
	assert.Equal(t, "AI writes headlines.", resp.Example)

	_, err = svc.Lookup(ctx, "ML")
	assert.ErrorIs(t, err, apperrors.ErrDefinitionNotFound)
	assert.Equal(t, "no definition found for «ML»", apperrors.Message(err, ""))

	_, err = svc.Lookup(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	events := rec.Events()
	require.Len(t, events, 2)
	assert.True(t, events[0].(analytics.LookupEvent).Found)
	assert.False(t, events[1].(analytics.LookupEvent).Found)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DefinitionLookupsTotal.WithLabelValues("found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DefinitionLookupsTotal.WithLabelValues("missing")))
}

func TestLookupBackendFailure(t *testing.T) {
	rec := &recorder{}
	svc := New(Config{Limits: limits}, Deps{Definitions: failingProvider{}, Tracker: rec})

	_, err := svc.Lookup(context.Background(), "AI")
	assert.ErrorContains(t, err, "connection refused")
	assert.Empty(t, rec.Events())

	_, ok, err := svc.InvalidateDefinitions(context.Background())
	assert.False(t, ok)
	assert.NoError(t, err)

	_, err = svc.InvalidateCache(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}
