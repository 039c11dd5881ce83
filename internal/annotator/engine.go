// Package annotator builds annotated render trees for article sections. A
// Builder compiles a vocabulary once and turns each section's text into a
// document.Document in which every term is annotated at its first match in
// that section and left as plain text everywhere else.
package annotator

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/document"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/matcher"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/occurrence"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/segmenter"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/vocabulary"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Section is an independently gated block of article text.
type Section struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Builder is immutable once constructed and may be shared between
// goroutines; all per-build state lives inside Build.
type Builder struct {
	vocab       *vocabulary.Vocabulary
	kind        matcher.Kind
	matcher     matcher.Matcher
	concurrency int
}

// Option configures a Builder.
type Option func(*Builder)

// WithConcurrency bounds how many sections BuildAll builds at once.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// New compiles vocab with the given matcher strategy.
func New(vocab *vocabulary.Vocabulary, kind matcher.Kind, opts ...Option) (*Builder, error) {
	m, err := matcher.New(kind, vocab)
	if err != nil {
		return nil, fmt.Errorf("creating matcher: %w", err)
	}
	b := &Builder{
		vocab:       vocab,
		kind:        kind,
		matcher:     m,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// NewFromTerms validates terms and compiles them. An invalid term fails the
// whole construction.
func NewFromTerms(terms []string, kind matcher.Kind, opts ...Option) (*Builder, error) {
	vocab, err := vocabulary.New(terms)
	if err != nil {
		return nil, err
	}
	return New(vocab, kind, opts...)
}

// BuildSection builds a single section from raw terms.
func BuildSection(section Section, terms []string, kind matcher.Kind) (*document.Document, error) {
	b, err := NewFromTerms(terms, kind)
	if err != nil {
		return nil, err
	}
	return b.Build(section), nil
}

func (b *Builder) Vocabulary() *vocabulary.Vocabulary {
	return b.vocab
}

func (b *Builder) Kind() matcher.Kind {
	return b.kind
}

// Concurrency is the most sections built at once by BuildAll and by callers
// fanning out over sections themselves.
func (b *Builder) Concurrency() int {
	return b.concurrency
}

// Build renders one section. Matches are gated in source order: paragraph,
// then line, then position within the line.
func (b *Builder) Build(section Section) *document.Document {
	tracker := occurrence.New()
	paragraphs := segmenter.Segment(section.Text)
	doc := &document.Document{
		SectionID:  section.ID,
		Paragraphs: make([]document.Paragraph, 0, len(paragraphs)),
	}
	for _, p := range paragraphs {
		para := document.Paragraph{
			Lines:     make([]document.Line, 0, len(p.Lines)),
			Separator: p.Separator,
		}
		for _, line := range p.Lines {
			para.Lines = append(para.Lines, b.buildLine(line, tracker))
		}
		doc.Paragraphs = append(doc.Paragraphs, para)
	}
	return doc
}

func (b *Builder) buildLine(line string, tracker *occurrence.Tracker) document.Line {
	matches := b.matcher.Match(line)
	runs := make([]document.Run, 0, 2*len(matches)+1)
	cursor := 0
	for _, m := range matches {
		if m.Start > cursor {
			runs = append(runs, document.Text(line[cursor:m.Start]))
		}
		if tracker.ShouldAnnotate(m.Term) {
			runs = append(runs, document.Annotation(m.Term))
		} else {
			// later occurrences keep their own run so the surface text is
			// unchanged but inert
			runs = append(runs, document.Text(line[m.Start:m.End]))
		}
		cursor = m.End
	}
	if cursor < len(line) {
		runs = append(runs, document.Text(line[cursor:]))
	}
	return document.Line{Runs: runs}
}

// BuildAll builds every section concurrently, each with its own occurrence
// tracker, and returns the documents in input order. Section IDs must be
// unique.
func (b *Builder) BuildAll(ctx context.Context, sections []Section) ([]*document.Document, error) {
	seen := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		if _, dup := seen[s.ID]; dup {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "duplicate section id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	docs := make([]*document.Document, len(sections))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, s := range sections {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs[i] = b.Build(s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building sections: %w", err)
	}
	return docs, nil
}
