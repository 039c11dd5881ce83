// Command loadtest drives concurrent annotate and definition-lookup traffic
// against a running annotation service and prints a latency report.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/proto"
)

type Config struct {
	BaseURL      string
	Concurrency  int
	Duration     time.Duration
	LookupEvery  int
	Payloads     [][]byte
	LookupTerms  []string
	SectionBytes int
}

type Stats struct {
	totalRequests atomic.Int64
	successCount  atomic.Int64
	errorCount    atomic.Int64
	cacheHits     atomic.Int64
	lookups       atomic.Int64
	latencies     []time.Duration
	latenciesMu   sync.Mutex
	statusCodes   map[int]*atomic.Int64
	statusCodesMu sync.Mutex
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]*atomic.Int64),
	}
}

func (s *Stats) RecordRequest(duration time.Duration, statusCode int, err error) {
	s.totalRequests.Add(1)

	if err != nil {
		s.errorCount.Add(1)
		return
	}

	if statusCode >= 200 && statusCode < 300 {
		s.successCount.Add(1)
	} else {
		s.errorCount.Add(1)
	}

	s.latenciesMu.Lock()
	s.latencies = append(s.latencies, duration)
	s.latenciesMu.Unlock()

	s.statusCodesMu.Lock()
	if _, ok := s.statusCodes[statusCode]; !ok {
		s.statusCodes[statusCode] = &atomic.Int64{}
	}
	s.statusCodes[statusCode].Add(1)
	s.statusCodesMu.Unlock()
}

var vocabulary = []string{
	"AI", "machine learning", "C++", "neural network", "transformer",
	"人工智慧", "機器學習", "GPU", "large language model", "inference",
}

var paragraphs = []string{
	"AI labs keep shipping larger transformer models, and GPU supply remains tight.",
	"人工智慧與機器學習正在改變新聞編輯室。",
	"A neural network trained on C++ code can suggest fixes; inference costs fall each quarter.",
	"Critics say a large language model is still just machine learning at scale.",
}

// buildPayloads returns n distinct annotate bodies so that some requests
// miss the cache and repeats hit it.
func buildPayloads(n, sectionBytes int) [][]byte {
	payloads := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		var long strings.Builder
		for j := 0; long.Len() < sectionBytes; j++ {
			long.WriteString(paragraphs[(i+j)%len(paragraphs)])
			long.WriteString("\n\n")
		}
		req := proto.AnnotateRequest{
			Sections: []proto.Section{
				{ID: "short", Text: paragraphs[i%len(paragraphs)]},
				{ID: "long", Text: long.String()},
			},
			Terms: vocabulary[:3+i%(len(vocabulary)-3)],
		}
		data, err := json.Marshal(req)
		if err != nil {
			panic(fmt.Sprintf("marshaling payload: %v", err))
		}
		payloads = append(payloads, data)
	}
	return payloads
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the annotation service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	variants := flag.Int("variants", 20, "number of distinct annotate payloads")
	sectionBytes := flag.Int("section-bytes", 4096, "approximate size of the long section")
	lookupEvery := flag.Int("lookup-every", 5, "issue a definition lookup every N requests (0 disables)")
	flag.Parse()

	cfg := Config{
		BaseURL:      *baseURL,
		Concurrency:  *concurrency,
		Duration:     *duration,
		LookupEvery:  *lookupEvery,
		Payloads:     buildPayloads(*variants, *sectionBytes),
		LookupTerms:  vocabulary,
		SectionBytes: *sectionBytes,
	}

	fmt.Println("=== News Annotation Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Payloads:    %d unique, ~%d bytes each\n", len(cfg.Payloads), cfg.SectionBytes)
	fmt.Println()

	stats := runLoadTest(cfg)
	printReport(stats, cfg.Duration)
}

func runLoadTest(cfg Config) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	fmt.Print("Running")

	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := workerID; ; i++ {
				select {
				case <-ctx.Done():
					return
				default:
				}

				var req *http.Request
				lookup := cfg.LookupEvery > 0 && i%cfg.LookupEvery == 0
				if lookup {
					term := cfg.LookupTerms[i%len(cfg.LookupTerms)]
					req = mustNewRequest(ctx, http.MethodGet,
						fmt.Sprintf("%s/api/v1/definitions/%s", cfg.BaseURL, url.PathEscape(term)), nil)
				} else {
					req = mustNewRequest(ctx, http.MethodPost,
						cfg.BaseURL+"/api/v1/annotate", cfg.Payloads[i%len(cfg.Payloads)])
				}

				start := time.Now()
				resp, err := client.Do(req)
				duration := time.Since(start)
				if err != nil {
					if ctx.Err() == nil {
						stats.RecordRequest(duration, 0, err)
					}
					continue
				}
				if lookup {
					stats.lookups.Add(1)
					io.Copy(io.Discard, resp.Body)
				} else {
					var body struct {
						CacheHit bool `json:"cache_hit"`
					}
					if json.NewDecoder(resp.Body).Decode(&body) == nil && body.CacheHit {
						stats.cacheHits.Add(1)
					}
				}
				resp.Body.Close()

				// a definition miss is a valid answer, not a failure
				status := resp.StatusCode
				if lookup && status == http.StatusNotFound {
					status = http.StatusOK
				}
				stats.RecordRequest(duration, status, nil)
			}
		}(w)
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return stats
}

func mustNewRequest(ctx context.Context, method, rawURL string, body []byte) *http.Request {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
	if err != nil {
		panic(fmt.Sprintf("creating request: %v", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func printReport(stats *Stats, duration time.Duration) {
	total := stats.totalRequests.Load()
	success := stats.successCount.Load()
	errors := stats.errorCount.Load()
	lookups := stats.lookups.Load()

	fmt.Println("=== Results ===")
	fmt.Printf("Total Requests:  %d\n", total)
	fmt.Printf("Successful:      %d\n", success)
	fmt.Printf("Errors:          %d\n", errors)
	fmt.Printf("Lookups:         %d\n", lookups)

	if total > 0 {
		errorRate := float64(errors) / float64(total) * 100
		fmt.Printf("Error Rate:      %.2f%%\n", errorRate)
		rps := float64(total) / duration.Seconds()
		fmt.Printf("Requests/sec:    %.2f\n", rps)
	}
	if annotates := total - lookups; annotates > 0 {
		fmt.Printf("Cache Hit Rate:  %.2f%%\n", float64(stats.cacheHits.Load())/float64(annotates)*100)
	}

	stats.latenciesMu.Lock()
	latencies := make([]time.Duration, len(stats.latencies))
	copy(latencies, stats.latencies)
	stats.latenciesMu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool {
			return latencies[i] < latencies[j]
		})

		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))

		fmt.Println()
		fmt.Println("=== Latency ===")
		fmt.Printf("Min:    %s\n", latencies[0])
		fmt.Printf("Avg:    %s\n", avg)
		fmt.Printf("P50:    %s\n", percentile(latencies, 50))
		fmt.Printf("P95:    %s\n", percentile(latencies, 95))
		fmt.Printf("P99:    %s\n", percentile(latencies, 99))
		fmt.Printf("Max:    %s\n", latencies[len(latencies)-1])
	}

	fmt.Println()
	fmt.Println("=== Status Codes ===")
	stats.statusCodesMu.Lock()
	codes := make([]int, 0, len(stats.statusCodes))
	for code := range stats.statusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Printf("  %d: %d\n", code, stats.statusCodes[code].Load())
	}
	stats.statusCodesMu.Unlock()

	if total == 0 {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
