package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/kafka"
)

const (
	maxLatencySamples = 10000
	topListSize       = 10
	// maxTrackedTerms caps each per-term counter map; on overflow the map
	// is trimmed to its most frequent half.
	maxTrackedTerms = 10000
)

type AggregatedStats struct {
	TotalAnnotateRequests int64       `json:"total_annotate_requests"`
	TotalAnnotations      int64       `json:"total_annotations"`
	TotalDocumentsBuilt   int64       `json:"total_documents_built"`
	CacheHits             int64       `json:"cache_hits"`
	CacheMisses           int64       `json:"cache_misses"`
	TotalLookups          int64       `json:"total_lookups"`
	MissingLookups        int64       `json:"missing_lookups"`
	AvgLatencyMs          float64     `json:"avg_latency_ms"`
	P50LatencyMs          int64       `json:"p50_latency_ms"`
	P95LatencyMs          int64       `json:"p95_latency_ms"`
	P99LatencyMs          int64       `json:"p99_latency_ms"`
	TopLookedUpTerms      []TermCount `json:"top_looked_up_terms"`
	TopMissingTerms       []TermCount `json:"top_missing_terms"`
	TopAnnotatedTerms     []TermCount `json:"top_annotated_terms"`
	RequestsPerMinute     float64     `json:"requests_per_minute"`
}

type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Aggregator folds analytics events into running totals. Annotate latency
// is sampled into a fixed-size ring and per-term counters are capped at
// maxTrackedTerms, so memory stays bounded.
type Aggregator struct {
	mu          sync.RWMutex
	stats       AggregatedStats
	latencies   []int64
	latencyNext int
	lookedUp    map[string]int64
	missing     map[string]int64
	annotated   map[string]int64
	startTime   time.Time
	now         func() time.Time
	logger      *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies: make([]int64, 0, 1024),
		lookedUp:  make(map[string]int64),
		missing:   make(map[string]int64),
		annotated: make(map[string]int64),
		startTime: time.Now(),
		now:       time.Now,
		logger:    slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent adapts the aggregator to a Kafka consumer. Undecodable
// messages are skipped so they do not block the partition.
func (a *Aggregator) HandleEvent() kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := Decode(value)
		if err != nil {
			a.logger.Error("failed to decode analytics event", "key", string(key), "error", err)
			return nil
		}
		a.Record(event)
		return nil
	}
}

func (a *Aggregator) Record(event Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch e := event.(type) {
	case AnnotateEvent:
		a.stats.TotalAnnotateRequests++
		a.stats.TotalAnnotations += int64(e.Annotations)
		if e.CacheHit {
			a.stats.CacheHits++
		} else {
			a.stats.CacheMisses++
		}
		for _, t := range e.AnnotatedTerms {
			countTerm(a.annotated, t)
		}
		a.recordLatency(e.LatencyMs)
	case LookupEvent:
		a.stats.TotalLookups++
		countTerm(a.lookedUp, e.Term)
		if !e.Found {
			a.stats.MissingLookups++
			countTerm(a.missing, e.Term)
		}
	case DocumentBuiltEvent:
		a.stats.TotalDocumentsBuilt++
		a.stats.TotalAnnotations += int64(e.Annotations)
	}
}

func (a *Aggregator) recordLatency(ms int64) {
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, ms)
		return
	}
	a.latencies[a.latencyNext] = ms
	a.latencyNext = (a.latencyNext + 1) % maxLatencySamples
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := a.stats
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopLookedUpTerms = topN(a.lookedUp, topListSize)
	stats.TopMissingTerms = topN(a.missing, topListSize)
	stats.TopAnnotatedTerms = topN(a.annotated, topListSize)
	if elapsed := a.now().Sub(a.startTime).Minutes(); elapsed > 0 {
		stats.RequestsPerMinute = float64(stats.TotalAnnotateRequests) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count descending, then term, so ties are stable.
// countTerm increments term in counts. A new term arriving at a full map
// first evicts the least frequent half; counts of evicted terms are lost.
func countTerm(counts map[string]int64, term string) {
	if _, ok := counts[term]; !ok && len(counts) >= maxTrackedTerms {
		keep := topN(counts, maxTrackedTerms/2)
		clear(counts)
		for _, tc := range keep {
			counts[tc.Term] = tc.Count
		}
	}
	counts[term]++
}

func topN(counts map[string]int64, n int) []TermCount {
	result := make([]TermCount, 0, len(counts))
	for term, count := range counts {
		result = append(result, TermCount{Term: term, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Term < result[j].Term
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
