// Package sanitize turns stored or submitted markup into plain text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText strips every HTML element from s and decodes the entities the
// policy leaves behind. Line breaks and spacing are preserved.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	return html.UnescapeString(strict.Sanitize(s))
}
