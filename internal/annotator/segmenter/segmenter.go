// Package segmenter splits section text into paragraphs and lines while
// keeping the exact break text, so the original can be reassembled.
package segmenter

import (
	"regexp"
	"strings"
)

// LineBreak separates lines within a paragraph.
const LineBreak = "\n"

// paragraphBreak matches a line break, any whitespace, then another line
// break. It is greedy, so a whitespace run spanning several blank lines is a
// single boundary. RE2's \s is ASCII only; \p{Z}, \v and U+FEFF widen it to
// the Unicode spaces found in CJK text (U+3000, U+00A0).
var paragraphBreak = regexp.MustCompile(`\n[\s\v\p{Z}\x{FEFF}]*\n`)

// Paragraph is one blank-line-delimited block of text. Separator holds the
// boundary text that followed it in the source and is empty for the last
// paragraph.
type Paragraph struct {
	Lines     []string
	Separator string
}

// Segment splits text into paragraphs, each split into lines. Empty text
// yields no paragraphs. Leading or trailing boundaries produce empty
// paragraphs rather than being dropped.
func Segment(text string) []Paragraph {
	if text == "" {
		return nil
	}
	bounds := paragraphBreak.FindAllStringIndex(text, -1)
	paragraphs := make([]Paragraph, 0, len(bounds)+1)
	start := 0
	for _, b := range bounds {
		paragraphs = append(paragraphs, Paragraph{
			Lines:     strings.Split(text[start:b[0]], LineBreak),
			Separator: text[b[0]:b[1]],
		})
		start = b[1]
	}
	paragraphs = append(paragraphs, Paragraph{
		Lines: strings.Split(text[start:], LineBreak),
	})
	return paragraphs
}

// Join reassembles segmented paragraphs into the original text.
func Join(paragraphs []Paragraph) string {
	var sb strings.Builder
	for _, p := range paragraphs {
		sb.WriteString(strings.Join(p.Lines, LineBreak))
		sb.WriteString(p.Separator)
	}
	return sb.String()
}
