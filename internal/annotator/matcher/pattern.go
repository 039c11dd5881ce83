package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/vocabulary"
)

// patternMatcher relies on Go's leftmost-first alternation: at the leftmost
// matching offset the first listed alternative wins, and the vocabulary lists
// terms longest first.
type patternMatcher struct {
	re *regexp.Regexp
}

func newPatternMatcher(vocab *vocabulary.Vocabulary) (*patternMatcher, error) {
	if vocab.Len() == 0 {
		return &patternMatcher{}, nil
	}
	terms := vocab.Terms()
	alternatives := make([]string, len(terms))
	for i, term := range terms {
		alternatives[i] = Literal(term)
	}
	re, err := regexp.Compile(strings.Join(alternatives, "|"))
	if err != nil {
		return nil, fmt.Errorf("compiling term pattern: %w", err)
	}
	return &patternMatcher{re: re}, nil
}

func (m *patternMatcher) Match(line string) []Match {
	if m.re == nil || line == "" {
		return nil
	}
	locs := m.re.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}
	matches := make([]Match, len(locs))
	for i, loc := range locs {
		matches[i] = Match{Start: loc[0], End: loc[1], Term: line[loc[0]:loc[1]]}
	}
	return matches
}
