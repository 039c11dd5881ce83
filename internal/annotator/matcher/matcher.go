// Package matcher finds vocabulary terms in a line of text using a
// longest-match-first, left-to-right, non-overlapping policy. Terms are
// always matched as literal substrings; there is no notion of word
// boundary, so scripts written without spaces match the same way.
package matcher

import (
	"fmt"
	"regexp"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/vocabulary"
)

// Kind names a matching strategy.
type Kind string

const (
	// KindPattern compiles the vocabulary into one escaped regexp alternation.
	KindPattern Kind = "pattern"
	// KindAutomaton scans with an Aho-Corasick automaton.
	KindAutomaton Kind = "automaton"
)

// Match is one matched term. Start and End are byte offsets into the line.
type Match struct {
	Start int
	End   int
	Term  string
}

// Matcher returns the ordered, non-overlapping matches in line. A Matcher is
// immutable after construction and safe for concurrent use.
type Matcher interface {
	Match(line string) []Match
}

// ParseKind validates a configured strategy name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPattern, KindAutomaton:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown matcher kind %q", s)
	}
}

// New compiles vocab with the given strategy.
func New(kind Kind, vocab *vocabulary.Vocabulary) (Matcher, error) {
	switch kind {
	case KindPattern:
		return newPatternMatcher(vocab)
	case KindAutomaton:
		return newAutomatonMatcher(vocab)
	default:
		return nil, fmt.Errorf("unknown matcher kind %q", kind)
	}
}

// Literal escapes term so that a regexp built from it matches only the exact
// characters of term.
func Literal(term string) string {
	return regexp.QuoteMeta(term)
}
