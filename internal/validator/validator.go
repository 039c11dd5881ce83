// Package validator checks request shapes and sizes before they reach the
// annotator or the article store, and reports problems per field.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/vocabulary"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
)

const (
	maxTitleLength          = 1024
	maxIdempotencyKeyLength = 255
	maxSectionIDLength      = 64
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets callers match validation failures with ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// Limits bounds request sizes.
type Limits struct {
	MaxSections     int
	MaxTerms        int
	MaxSectionBytes int
}

func LimitsFrom(cfg config.AnnotatorConfig) Limits {
	return Limits{
		MaxSections:     cfg.MaxSections,
		MaxTerms:        cfg.MaxTerms,
		MaxSectionBytes: cfg.MaxSectionBytes,
	}
}

// ValidateAnnotate checks the sections and terms of an annotate request.
// Term contents are validated when the vocabulary is built.
func ValidateAnnotate(sections []annotator.Section, terms []string, limits Limits) error {
	errs := make(map[string]string)
	checkSections(errs, sections, limits)
	checkTermCount(errs, terms, limits)
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// ValidateIngest checks an article ingestion request, including every term,
// so that a stored article can always be built.
func ValidateIngest(req *article.IngestRequest, limits Limits) error {
	errs := make(map[string]string)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs["title"] = "title is required"
	} else if len(title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	checkSections(errs, req.Sections, limits)
	checkTermCount(errs, req.Terms, limits)
	if _, ok := errs["terms"]; !ok {
		if _, err := vocabulary.New(req.Terms); err != nil {
			errs["terms"] = apperrors.Message(err, err.Error())
		}
	}
	if len(req.IdempotencyKey) > maxIdempotencyKeyLength {
		errs["idempotency_key"] = fmt.Sprintf("idempotency key must be at most %d characters", maxIdempotencyKeyLength)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func checkSections(errs map[string]string, sections []annotator.Section, limits Limits) {
	if len(sections) == 0 {
		errs["sections"] = "at least one section is required"
		return
	}
	if limits.MaxSections > 0 && len(sections) > limits.MaxSections {
		errs["sections"] = fmt.Sprintf("at most %d sections are allowed", limits.MaxSections)
		return
	}
	seen := make(map[string]bool, len(sections))
	for i, s := range sections {
		field := fmt.Sprintf("sections[%d]", i)
		switch {
		case s.ID == "":
			errs[field] = "id is required"
		case len(s.ID) > maxSectionIDLength:
			errs[field] = fmt.Sprintf("id must be at most %d characters", maxSectionIDLength)
		case seen[s.ID]:
			errs[field] = fmt.Sprintf("duplicate section id %q", s.ID)
		case limits.MaxSectionBytes > 0 && len(s.Text) > limits.MaxSectionBytes:
			errs[field] = fmt.Sprintf("text must be at most %d bytes", limits.MaxSectionBytes)
		}
		seen[s.ID] = true
	}
}

func checkTermCount(errs map[string]string, terms []string, limits Limits) {
	if limits.MaxTerms > 0 && len(terms) > limits.MaxTerms {
		errs["terms"] = fmt.Sprintf("at most %d terms are allowed", limits.MaxTerms)
	}
}
