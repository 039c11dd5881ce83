// Package analytics collects usage events from the annotation services,
// ships them over Kafka, and aggregates them into dashboard statistics.
package analytics

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	EventAnnotate      EventType = "annotate"
	EventLookup        EventType = "definition_lookup"
	EventDocumentBuilt EventType = "document_built"
)

// Event is implemented by every payload the collectors accept.
type Event interface {
	EventType() EventType
}

// AnnotateEvent is emitted once per annotate request.
type AnnotateEvent struct {
	Type           EventType `json:"type"`
	RequestID      string    `json:"request_id,omitempty"`
	ArticleID      string    `json:"article_id,omitempty"`
	Matcher        string    `json:"matcher"`
	Sections       int       `json:"sections"`
	Terms          int       `json:"terms"`
	Annotations    int       `json:"annotations"`
	AnnotatedTerms []string  `json:"annotated_terms,omitempty"`
	CacheHit       bool      `json:"cache_hit"`
	LatencyMs      int64     `json:"latency_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

func (AnnotateEvent) EventType() EventType { return EventAnnotate }

// LookupEvent is emitted when a reader activates an annotation.
type LookupEvent struct {
	Type      EventType `json:"type"`
	RequestID string    `json:"request_id,omitempty"`
	Term      string    `json:"term"`
	Found     bool      `json:"found"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

func (LookupEvent) EventType() EventType { return EventLookup }

// DocumentBuiltEvent is emitted by the warmer for each pre-built section.
type DocumentBuiltEvent struct {
	Type        EventType `json:"type"`
	ArticleID   string    `json:"article_id"`
	SectionID   string    `json:"section_id"`
	Annotations int       `json:"annotations"`
	LatencyMs   int64     `json:"latency_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

func (DocumentBuiltEvent) EventType() EventType { return EventDocumentBuilt }

// Decode reads the type tag and unmarshals value into the matching event.
func Decode(value []byte) (Event, error) {
	var envelope struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(value, &envelope); err != nil {
		return nil, fmt.Errorf("decoding event envelope: %w", err)
	}
	var (
		ev  Event
		err error
	)
	switch envelope.Type {
	case EventAnnotate:
		var e AnnotateEvent
		err = json.Unmarshal(value, &e)
		ev = e
	case EventLookup:
		var e LookupEvent
		err = json.Unmarshal(value, &e)
		ev = e
	case EventDocumentBuilt:
		var e DocumentBuiltEvent
		err = json.Unmarshal(value, &e)
		ev = e
	default:
		return nil, fmt.Errorf("unknown event type %q", envelope.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s event: %w", envelope.Type, err)
	}
	return ev, nil
}
