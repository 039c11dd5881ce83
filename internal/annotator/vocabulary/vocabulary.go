// Package vocabulary builds the validated, deduplicated term set that the
// matchers compile. Terms are ordered longest first, ties broken
// lexicographically, which is the preference order for overlapping matches.
package vocabulary

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
)

// Vocabulary is an immutable set of terms.
type Vocabulary struct {
	terms []string
	set   map[string]struct{}
}

// New validates terms and returns the deduplicated vocabulary. An empty
// term, or one that is not valid UTF-8 or contains U+FFFD, fails the whole
// construction with ErrInvalidTerm. Whitespace-only terms are accepted. A
// nil or empty list yields an empty vocabulary.
//
// U+FFFD is excluded because regexp reads every invalid input byte as
// U+FFFD, so the pattern and automaton strategies would match it at
// different places.
func New(terms []string) (*Vocabulary, error) {
	v := &Vocabulary{
		terms: make([]string, 0, len(terms)),
		set:   make(map[string]struct{}, len(terms)),
	}
	for i, term := range terms {
		if term == "" {
			return nil, apperrors.InvalidTerm(i, "term must not be empty")
		}
		if !utf8.ValidString(term) || strings.ContainsRune(term, utf8.RuneError) {
			return nil, apperrors.InvalidTerm(i, "term must be valid UTF-8 text")
		}
		if _, dup := v.set[term]; dup {
			continue
		}
		v.set[term] = struct{}{}
		v.terms = append(v.terms, term)
	}
	sort.Slice(v.terms, func(i, j int) bool {
		a, b := v.terms[i], v.terms[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return v, nil
}

// Terms returns the terms in preference order. The slice is a copy.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

func (v *Vocabulary) Len() int {
	return len(v.terms)
}

func (v *Vocabulary) Contains(term string) bool {
	_, ok := v.set[term]
	return ok
}

// Fingerprint identifies the vocabulary's content independent of the order
// or duplication of the input list.
func (v *Vocabulary) Fingerprint() string {
	h := sha256.New()
	for _, term := range v.terms {
		h.Write([]byte(term))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:16])
}
