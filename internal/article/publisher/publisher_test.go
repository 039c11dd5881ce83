package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/analytics/analyticstest"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu        sync.Mutex
	byID      map[string]*article.Article
	byKey     map[string]string
	insertErr error
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*article.Article{}, byKey: map[string]string{}}
}

func (r *memRepo) FindByIdempotencyKey(_ context.Context, key string) (*article.IngestResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byKey[key]
	if !ok {
		return nil, nil
	}
	return &article.IngestResponse{ArticleID: id, Status: r.byID[id].Status}, nil
}

func (r *memRepo) Insert(_ context.Context, a *article.Article, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.byID[a.ID] = a
	if key != "" {
		r.byKey[key] = a.ID
	}
	return nil
}

func request() *article.IngestRequest {
	return &article.IngestRequest{
		Title: "<h1>AI weekly</h1>",
		Sections: []annotator.Section{
			{ID: "short", Text: "AI <b>matters</b>"},
			{ID: "long", Text: "AI is AI again"},
		},
		Terms:          []string{"AI"},
		IdempotencyKey: "k-1",
	}
}

func TestIngestPersistsAndPublishes(t *testing.T) {
	repo := newMemRepo()
	pub := &analyticstest.Publisher{}
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	p := New(repo, pub, m)

	resp, err := p.Ingest(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, article.StatusPending, resp.Status)
	assert.False(t, resp.Duplicate)

	stored := repo.byID[resp.ArticleID]
	require.NotNil(t, stored)
	assert.Equal(t, "AI weekly", stored.Title)
	assert.Equal(t, "AI matters", stored.Sections[0].Text)

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, resp.ArticleID, events[0].Key)
	ev := events[0].Value.(article.Event)
	assert.Equal(t, []string{"AI"}, ev.Terms)
	assert.Len(t, ev.Sections, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArticlesIngestedTotal.WithLabelValues("accepted")))
}

func TestIngestIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	pub := &analyticstest.Publisher{}
	p := New(repo, pub, nil)

	first, err := p.Ingest(context.Background(), request())
	require.NoError(t, err)
	second, err := p.Ingest(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, first.ArticleID, second.ArticleID)
	assert.True(t, second.Duplicate)
	assert.Len(t, repo.byID, 1)
	assert.Len(t, pub.Events(), 1)
}

func TestIngestSurvivesPublishFailure(t *testing.T) {
	pub := &analyticstest.Publisher{}
	pub.SetErr(errors.New("broker down"))
	resp, err := New(newMemRepo(), pub, nil).Ingest(context.Background(), request())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ArticleID)
}

func TestIngestInsertFailure(t *testing.T) {
	repo := newMemRepo()
	repo.insertErr = errors.New("disk full")
	_, err := New(repo, &analyticstest.Publisher{}, nil).Ingest(context.Background(), request())
	assert.ErrorContains(t, err, "disk full")
}
