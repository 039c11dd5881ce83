// Package proto defines the message types exchanged over the platform's
// JSON-over-TCP RPC layer (see pkg/grpc). Method names follow the
// "Service.Method" convention and are declared here so clients and servers
// agree on them.
package proto

import (
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/document"
)

const (
	MethodAnnotate = "AnnotationService.Annotate"
	MethodLookup   = "DefinitionService.Lookup"
	MethodHealth   = "Health.Check"
)

// ---------- Annotation ----------

// Section is one independently gated block of article text.
type Section struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// AnnotateRequest is the input to AnnotationService.Annotate. An empty
// Matcher uses the server's configured strategy.
type AnnotateRequest struct {
	Sections []Section `json:"sections"`
	Terms    []string  `json:"terms"`
	Matcher  string    `json:"matcher,omitempty"`
}

// AnnotateResponse carries one document per requested section, in order.
type AnnotateResponse struct {
	Documents       []*document.Document `json:"documents"`
	AnnotationCount int                  `json:"annotation_count"`
	CacheHit        bool                 `json:"cache_hit"`
	LatencyMs       int64                `json:"latency_ms"`
}

// ---------- Definitions ----------

// LookupRequest is the input to DefinitionService.Lookup.
type LookupRequest struct {
	Term string `json:"term"`
}

// LookupResponse is the output of DefinitionService.Lookup.
type LookupResponse struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Example    string `json:"example,omitempty"`
}

// HealthCheckResponse mirrors the gRPC health check spec.
type HealthCheckResponse struct {
	Status string `json:"status"` // SERVING, NOT_SERVING, UNKNOWN
}
