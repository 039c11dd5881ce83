package matcher

import (
	"fmt"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/vocabulary"
	"github.com/coregx/ahocorasick"
)

// automatonMatcher collects every occurrence with the automaton, then keeps
// the longest candidate at each start and sweeps left to right.
type automatonMatcher struct {
	ac    *ahocorasick.Automaton
	terms []string
}

type candidate struct {
	end  int
	term string
}

func newAutomatonMatcher(vocab *vocabulary.Vocabulary) (*automatonMatcher, error) {
	if vocab.Len() == 0 {
		return &automatonMatcher{}, nil
	}
	terms := vocab.Terms()
	ac, err := ahocorasick.NewBuilder().
		AddStrings(terms).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building term automaton: %w", err)
	}
	return &automatonMatcher{ac: ac, terms: terms}, nil
}

func (m *automatonMatcher) Match(line string) []Match {
	if m.ac == nil || line == "" {
		return nil
	}
	hits := m.ac.FindAllOverlapping([]byte(line))
	if len(hits) == 0 {
		return nil
	}

	longest := make(map[int]candidate, len(hits))
	for _, h := range hits {
		if c, ok := longest[h.Start]; ok && c.end >= h.End {
			continue
		}
		longest[h.Start] = candidate{end: h.End, term: m.terms[h.PatternID]}
	}
	starts := make([]int, 0, len(longest))
	for start := range longest {
		starts = append(starts, start)
	}
	sort.Ints(starts)

	matches := make([]Match, 0, len(starts))
	next := 0
	for _, start := range starts {
		if start < next {
			continue
		}
		c := longest[start]
		matches = append(matches, Match{Start: start, End: c.end, Term: c.term})
		next = c.end
	}
	return matches
}
