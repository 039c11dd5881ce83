package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error wins", New(ErrInternal, http.StatusTeapot, "brew"), http.StatusTeapot},
		{"invalid term", InvalidTerm(2, "empty"), http.StatusBadRequest},
		{"wrapped invalid term", fmt.Errorf("building vocabulary: %w", ErrInvalidTerm), http.StatusBadRequest},
		{"definition not found", DefinitionNotFound("AI"), http.StatusNotFound},
		{"article not found", ErrArticleNotFound, http.StatusNotFound},
		{"idempotency", ErrIdempotencyConflict, http.StatusConflict},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"timeout", fmt.Errorf("lookup: %w", ErrTimeout), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestDefinitionNotFoundMessage(t *testing.T) {
	err := DefinitionNotFound("機器學習")
	assert.True(t, errors.Is(err, ErrDefinitionNotFound))
	assert.Equal(t, "no definition found for «機器學習»", err.Message)
}

func TestCodeRoundTrip(t *testing.T) {
	for _, sentinel := range []error{ErrInvalidTerm, ErrDefinitionNotFound, ErrArticleNotFound, ErrTimeout} {
		wrapped := fmt.Errorf("calling provider: %w", New(sentinel, 0, "detail"))
		rebuilt := FromCode(Code(wrapped), "detail")
		assert.True(t, errors.Is(rebuilt, sentinel), sentinel.Error())
	}
	assert.Equal(t, "internal", Code(errors.New("boom")))
	assert.True(t, errors.Is(FromCode("nonsense", "x"), ErrInternal))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "no definition found for «AI»", Message(fmt.Errorf("x: %w", DefinitionNotFound("AI")), "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("plain"), "fallback"))
}
