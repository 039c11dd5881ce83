package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var limits = Limits{MaxSections: 2, MaxTerms: 3, MaxSectionBytes: 16}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	return ve.Fields
}

func TestValidateAnnotate(t *testing.T) {
	ok := []annotator.Section{{ID: "short", Text: "AI"}, {ID: "long", Text: ""}}
	assert.NoError(t, ValidateAnnotate(ok, []string{"AI"}, limits))

	tests := []struct {
		name     string
		sections []annotator.Section
		terms    []string
		field    string
	}{
		{"no sections", nil, nil, "sections"},
		{"too many sections", []annotator.Section{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil, "sections"},
		{"missing id", []annotator.Section{{Text: "x"}}, nil, "sections[0]"},
		{"duplicate id", []annotator.Section{{ID: "a"}, {ID: "a"}}, nil, "sections[1]"},
		{"text too large", []annotator.Section{{ID: "a", Text: strings.Repeat("x", 17)}}, nil, "sections[0]"},
		{"too many terms", ok, []string{"a", "b", "c", "d"}, "terms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fields(t, ValidateAnnotate(tt.sections, tt.terms, limits))
			assert.Contains(t, f, tt.field)
		})
	}
}

func TestValidateIngest(t *testing.T) {
	req := &article.IngestRequest{
		Title:    "Machines that read",
		Sections: []annotator.Section{{ID: "short", Text: "AI news"}},
		Terms:    []string{"AI"},
	}
	require.NoError(t, ValidateIngest(req, limits))

	bad := &article.IngestRequest{
		Title:          "  ",
		Sections:       []annotator.Section{{ID: "short"}},
		Terms:          []string{"AI", ""},
		IdempotencyKey: strings.Repeat("k", 256),
	}
	f := fields(t, ValidateIngest(bad, limits))
	assert.Equal(t, "title is required", f["title"])
	assert.Equal(t, "term 1: term must not be empty", f["terms"])
	assert.Contains(t, f, "idempotency_key")
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"title": "b", "sections": "a"}}
	assert.Equal(t, "sections: a; title: b", err.Error())
}
