package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidTerm         = errors.New("invalid term")
	ErrArticleNotFound     = errors.New("article not found")
	ErrArticleExists       = errors.New("article already exists")
	ErrDefinitionNotFound  = errors.New("definition not found")
	ErrIdempotencyConflict = errors.New("idempotency key already used")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrUnavailable         = errors.New("dependency unavailable")
	ErrInternal            = errors.New("internal error")
	ErrTimeout             = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// InvalidTerm reports a vocabulary entry that cannot be matched. index is the
// entry's position in the caller-supplied term list.
func InvalidTerm(index int, reason string) *AppError {
	return Newf(ErrInvalidTerm, http.StatusBadRequest, "term %d: %s", index, reason)
}

// DefinitionNotFound reports that no provider entry exists for term.
func DefinitionNotFound(term string) *AppError {
	return Newf(ErrDefinitionNotFound, http.StatusNotFound, "no definition found for «%s»", term)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrArticleNotFound), errors.Is(err, ErrDefinitionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrArticleExists), errors.Is(err, ErrIdempotencyConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidTerm):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var codes = []struct {
	code     string
	sentinel error
	status   int
}{
	{"invalid_input", ErrInvalidInput, http.StatusBadRequest},
	{"invalid_term", ErrInvalidTerm, http.StatusBadRequest},
	{"article_not_found", ErrArticleNotFound, http.StatusNotFound},
	{"article_exists", ErrArticleExists, http.StatusConflict},
	{"definition_not_found", ErrDefinitionNotFound, http.StatusNotFound},
	{"idempotency_conflict", ErrIdempotencyConflict, http.StatusConflict},
	{"rate_limited", ErrRateLimited, http.StatusTooManyRequests},
	{"unavailable", ErrUnavailable, http.StatusServiceUnavailable},
	{"timeout", ErrTimeout, http.StatusServiceUnavailable},
}

// Code returns a stable wire identifier for the sentinel err wraps, or
// "internal".
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return "internal"
}

// FromCode rebuilds an error received over the wire so that errors.Is works
// against the original sentinel.
func FromCode(code, message string) error {
	for _, c := range codes {
		if c.code == code {
			return New(c.sentinel, c.status, message)
		}
	}
	return New(ErrInternal, http.StatusInternalServerError, message)
}

// Message returns the client-facing message of an AppError, or fallback.
func Message(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
