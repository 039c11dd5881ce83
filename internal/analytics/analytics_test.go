package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/analytics/analyticstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDispatchesOnType(t *testing.T) {
	data, err := json.Marshal(LookupEvent{Type: EventLookup, Term: "AI", Found: true})
	require.NoError(t, err)
	ev, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, LookupEvent{Type: EventLookup, Term: "AI", Found: true}, ev)

	_, err = Decode([]byte(`{"type":"search"}`))
	assert.ErrorContains(t, err, "unknown event type")
	_, err = Decode([]byte(`nope`))
	assert.Error(t, err)
}

func TestAggregatorStats(t *testing.T) {
	a := NewAggregator()
	start := a.startTime
	a.now = func() time.Time { return start.Add(2 * time.Minute) }

	for i, ms := range []int64{10, 20, 30, 40} {
		a.Record(AnnotateEvent{
			Type:           EventAnnotate,
			Annotations:    2,
			AnnotatedTerms: []string{"AI", "C++"},
			CacheHit:       i%2 == 0,
			LatencyMs:      ms,
		})
	}
	a.Record(LookupEvent{Type: EventLookup, Term: "AI", Found: true})
	a.Record(LookupEvent{Type: EventLookup, Term: "AI", Found: true})
	a.Record(LookupEvent{Type: EventLookup, Term: "GPU", Found: false})
	a.Record(DocumentBuiltEvent{Type: EventDocumentBuilt, Annotations: 3})

	s := a.Stats()
	assert.Equal(t, int64(4), s.TotalAnnotateRequests)
	assert.Equal(t, int64(11), s.TotalAnnotations)
	assert.Equal(t, int64(1), s.TotalDocumentsBuilt)
	assert.Equal(t, int64(2), s.CacheHits)
	assert.Equal(t, int64(2), s.CacheMisses)
	assert.Equal(t, int64(3), s.TotalLookups)
	assert.Equal(t, int64(1), s.MissingLookups)
	assert.Equal(t, 25.0, s.AvgLatencyMs)
	assert.Equal(t, int64(30), s.P50LatencyMs)
	assert.Equal(t, int64(40), s.P99LatencyMs)
	assert.Equal(t, []TermCount{{"AI", 2}, {"GPU", 1}}, s.TopLookedUpTerms)
	assert.Equal(t, []TermCount{{"GPU", 1}}, s.TopMissingTerms)
	assert.Equal(t, []TermCount{{"AI", 4}, {"C++", 4}}, s.TopAnnotatedTerms)
	assert.InDelta(t, 2.0, s.RequestsPerMinute, 0.001)
}

func TestLatencySamplesAreBounded(t *testing.T) {
	a := NewAggregator()
	for i := 0; i < maxLatencySamples+500; i++ {
		a.Record(AnnotateEvent{Type: EventAnnotate, LatencyMs: int64(i)})
	}
	assert.Len(t, a.latencies, maxLatencySamples)
	assert.Equal(t, int64(maxLatencySamples+500), a.Stats().TotalAnnotateRequests)
}

func TestTermCountersAreBounded(t *testing.T) {
	a := NewAggregator()
	for i := 0; i < 5; i++ {
		a.Record(LookupEvent{Type: EventLookup, Term: "AI", Found: false})
	}
	for i := 0; i < maxTrackedTerms+100; i++ {
		a.Record(LookupEvent{Type: EventLookup, Term: fmt.Sprintf("junk-%d", i), Found: false})
	}

	assert.LessOrEqual(t, len(a.lookedUp), maxTrackedTerms)
	assert.LessOrEqual(t, len(a.missing), maxTrackedTerms)
	stats := a.Stats()
	assert.Equal(t, int64(maxTrackedTerms+105), stats.TotalLookups)
	require.NotEmpty(t, stats.TopMissingTerms)
	assert.Equal(t, TermCount{Term: "AI", Count: 5}, stats.TopMissingTerms[0])
}

func TestHandleEventSkipsGarbage(t *testing.T) {
	a := NewAggregator()
	h := a.HandleEvent()
	require.NoError(t, h(context.Background(), nil, []byte(`garbage`)))
	require.NoError(t, h(context.Background(), nil, []byte(`{"type":"definition_lookup","term":"AI","found":false}`)))
	assert.Equal(t, int64(1), a.Stats().MissingLookups)
}

func TestCollectorPublishesAndDrains(t *testing.T) {
	pub := &analyticstest.Publisher{}
	c := NewCollector(pub, 10)
	c.Start(context.Background())

	c.Track(LookupEvent{Type: EventLookup, Term: "AI"})
	c.Track(AnnotateEvent{Type: EventAnnotate})
	c.Close()
	c.Track(LookupEvent{Type: EventLookup, Term: "late"})

	events := pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "definition_lookup", events[0].Key)
	assert.Equal(t, "annotate", events[1].Key)
}

func TestCollectorDropsWhenFull(t *testing.T) {
	pub := &analyticstest.Publisher{}
	c := NewCollector(pub, 1)
	c.Track(LookupEvent{Term: "a"})
	c.Track(LookupEvent{Term: "b"})
	assert.Len(t, c.eventCh, 1)
	c.Close()
}

func TestCollectorSurvivesPublishErrors(t *testing.T) {
	pub := &analyticstest.Publisher{}
	pub.SetErr(errors.New("broker down"))
	c := NewCollector(pub, 10)
	c.Start(context.Background())
	c.Track(LookupEvent{Term: "a"})
	c.Close()
	assert.Empty(t, pub.Events())
}

type fakeSnapshots struct {
	stats []AggregatedStats
	err   error
	limit int
}

func (f *fakeSnapshots) ListSnapshots(_ context.Context, limit int) ([]AggregatedStats, error) {
	f.limit = limit
	return f.stats, f.err
}

func TestHandler(t *testing.T) {
	a := NewAggregator()
	a.Record(LookupEvent{Type: EventLookup, Term: "AI", Found: true})
	snaps := &fakeSnapshots{stats: []AggregatedStats{{TotalLookups: 7}}}
	h := NewHandler(a, snaps)

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var got AggregatedStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.TotalLookups)

	rec = httptest.NewRecorder()
	h.Snapshots(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/snapshots?limit=5", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, snaps.limit)
	assert.Contains(t, rec.Body.String(), `"total_lookups":7`)

	rec = httptest.NewRecorder()
	h.Snapshots(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/snapshots?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	NewHandler(a, nil).Snapshots(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/snapshots", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
