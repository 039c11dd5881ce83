// Package document defines the render tree produced for one section:
// paragraphs of lines of runs, where a run is either plain text or an
// annotation carrying the matched term. The tree is a plain value with no
// behaviour attached; presentation layers walk it and decide how to render
// and activate annotations.
package document

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RunKind tags a Run.
type RunKind string

const (
	RunText       RunKind = "text"
	RunAnnotation RunKind = "annotation"
)

// Run is a tagged variant. Text runs carry only Value; annotation runs also
// carry the Term they resolve to. Value is always the exact source text.
type Run struct {
	Kind  RunKind `json:"kind"`
	Value string  `json:"value"`
	Term  string  `json:"term,omitempty"`
}

// Text returns a plain text run.
func Text(value string) Run {
	return Run{Kind: RunText, Value: value}
}

// Annotation returns an annotation run for term. The surface value of an
// exact-substring match is the term itself.
func Annotation(term string) Run {
	return Run{Kind: RunAnnotation, Value: term, Term: term}
}

func (r Run) IsAnnotation() bool {
	return r.Kind == RunAnnotation
}

// UnmarshalJSON rejects unknown kinds and annotation runs without a term.
func (r *Run) UnmarshalJSON(data []byte) error {
	type plain Run
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	switch p.Kind {
	case RunText:
		if p.Term != "" {
			return fmt.Errorf("text run must not carry a term")
		}
	case RunAnnotation:
		if p.Term == "" {
			return fmt.Errorf("annotation run requires a term")
		}
	default:
		return fmt.Errorf("unknown run kind %q", p.Kind)
	}
	*r = Run(p)
	return nil
}

// Line is the runs of one source line, without its line break.
type Line struct {
	Runs []Run `json:"runs"`
}

// Paragraph holds lines joined by "\n" in the source. Separator is the
// source text between this paragraph and the next.
type Paragraph struct {
	Lines     []Line `json:"lines"`
	Separator string `json:"separator,omitempty"`
}

// Document is the render tree for one section.
type Document struct {
	SectionID  string      `json:"section_id"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// Text reassembles the section text the document was built from.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, p := range d.Paragraphs {
		for i, line := range p.Lines {
			if i > 0 {
				sb.WriteByte('\n')
			}
			for _, run := range line.Runs {
				sb.WriteString(run.Value)
			}
		}
		sb.WriteString(p.Separator)
	}
	return sb.String()
}

// Annotations returns the annotation runs in document order.
func (d *Document) Annotations() []Run {
	var out []Run
	d.walk(func(r Run) {
		if r.IsAnnotation() {
			out = append(out, r)
		}
	})
	return out
}

func (d *Document) AnnotationCount() int {
	n := 0
	d.walk(func(r Run) {
		if r.IsAnnotation() {
			n++
		}
	})
	return n
}

// Terms returns the annotated terms in document order.
func (d *Document) Terms() []string {
	runs := d.Annotations()
	terms := make([]string, len(runs))
	for i, r := range runs {
		terms[i] = r.Term
	}
	return terms
}

// Equal reports whether both documents have the same structure and runs.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.SectionID != other.SectionID || len(d.Paragraphs) != len(other.Paragraphs) {
		return false
	}
	for i, p := range d.Paragraphs {
		q := other.Paragraphs[i]
		if p.Separator != q.Separator || len(p.Lines) != len(q.Lines) {
			return false
		}
		for j, line := range p.Lines {
			if len(line.Runs) != len(q.Lines[j].Runs) {
				return false
			}
			for k, run := range line.Runs {
				if run != q.Lines[j].Runs[k] {
					return false
				}
			}
		}
	}
	return true
}

func (d *Document) walk(fn func(Run)) {
	for _, p := range d.Paragraphs {
		for _, line := range p.Lines {
			for _, run := range line.Runs {
				fn(run)
			}
		}
	}
}
