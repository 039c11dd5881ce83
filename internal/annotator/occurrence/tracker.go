// Package occurrence gates annotations so each term is annotated at most
// once per section.
package occurrence

// Tracker records which terms have already been annotated in one section
// build. Create one per build and discard it afterwards; it is not safe for
// concurrent use.
type Tracker struct {
	seen map[string]struct{}
}

func New() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

// ShouldAnnotate reports whether this match of term is the first in the
// section, and marks term as consumed. Call it once per match in source
// order.
func (t *Tracker) ShouldAnnotate(term string) bool {
	if _, ok := t.seen[term]; ok {
		return false
	}
	t.seen[term] = struct{}{}
	return true
}

// Seen reports whether term has already been annotated.
func (t *Tracker) Seen(term string) bool {
	_, ok := t.seen[term]
	return ok
}

// Len returns the number of distinct terms annotated so far.
func (t *Tracker) Len() int {
	return len(t.seen)
}
