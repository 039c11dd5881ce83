package definition

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Static serves definitions from an in-memory table.
type Static struct {
	entries map[string]Definition
}

type staticFile struct {
	Terms map[string]Definition `yaml:"terms"`
}

// NewStatic copies entries into a new table. Keys are the exact terms.
func NewStatic(entries map[string]Definition) *Static {
	s := &Static{entries: make(map[string]Definition, len(entries))}
	for term, d := range entries {
		d.Term = term
		s.entries[term] = d
	}
	return s
}

// LoadStatic reads a YAML table of the form
//
//	terms:
//	  AI:
//	    definition: ...
//	    example: ...
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definitions file: %w", err)
	}
	return ParseStatic(data)
}

// ParseStatic parses the YAML form accepted by LoadStatic. Entries without a
// definition are rejected.
func ParseStatic(data []byte) (*Static, error) {
	var f staticFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing definitions file: %w", err)
	}
	for term, d := range f.Terms {
		if term == "" {
			return nil, fmt.Errorf("definitions file: empty term")
		}
		if strings.TrimSpace(d.Definition) == "" {
			return nil, fmt.Errorf("definitions file: term %q has no definition", term)
		}
	}
	return NewStatic(f.Terms), nil
}

func (s *Static) Lookup(_ context.Context, term string) (*Definition, error) {
	d, ok := s.entries[term]
	if !ok {
		return nil, apperrors.DefinitionNotFound(term)
	}
	return &d, nil
}

// All returns every entry sorted by term.
func (s *Static) All() []Definition {
	out := make([]Definition, 0, len(s.entries))
	for _, d := range s.entries {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out
}

// Terms returns every term in the table, unordered.
func (s *Static) Terms() []string {
	out := make([]string, 0, len(s.entries))
	for t := range s.entries {
		out = append(out, t)
	}
	return out
}

func (s *Static) Len() int {
	return len(s.entries)
}
