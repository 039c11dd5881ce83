package segmenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Paragraph
	}{
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "single line",
			text: "AI is AI again",
			want: []Paragraph{{Lines: []string{"AI is AI again"}}},
		},
		{
			name: "line breaks stay in one paragraph",
			text: "first\nsecond\nthird",
			want: []Paragraph{{Lines: []string{"first", "second", "third"}}},
		},
		{
			name: "blank line splits paragraphs",
			text: "one\n\ntwo",
			want: []Paragraph{
				{Lines: []string{"one"}, Separator: "\n\n"},
				{Lines: []string{"two"}},
			},
		},
		{
			name: "whitespace-only line is a boundary",
			text: "one\n  \t\ntwo\nthree",
			want: []Paragraph{
				{Lines: []string{"one"}, Separator: "\n  \t\n"},
				{Lines: []string{"two", "three"}},
			},
		},
		{
			name: "ideographic space line is a boundary",
			text: "第一段。\n\u3000\n第二段。",
			want: []Paragraph{
				{Lines: []string{"第一段。"}, Separator: "\n\u3000\n"},
				{Lines: []string{"第二段。"}},
			},
		},
		{
			name: "no-break space line is a boundary",
			text: "p1\n\u00a0\np2",
			want: []Paragraph{
				{Lines: []string{"p1"}, Separator: "\n\u00a0\n"},
				{Lines: []string{"p2"}},
			},
		},
		{
			name: "no-break space inside a line does not split",
			text: "p1\u00a0p2\nnext",
			want: []Paragraph{{Lines: []string{"p1\u00a0p2", "next"}}},
		},
		{
			name: "several blank lines collapse into one boundary",
			text: "one\n\n\n\ntwo",
			want: []Paragraph{
				{Lines: []string{"one"}, Separator: "\n\n\n\n"},
				{Lines: []string{"two"}},
			},
		},
		{
			name: "indentation of next paragraph is kept in its text",
			text: "one\n\n  two",
			want: []Paragraph{
				{Lines: []string{"one"}, Separator: "\n\n"},
				{Lines: []string{"  two"}},
			},
		},
		{
			name: "leading boundary yields an empty paragraph",
			text: "\n\nbody",
			want: []Paragraph{
				{Lines: []string{""}, Separator: "\n\n"},
				{Lines: []string{"body"}},
			},
		},
		{
			name: "trailing newline is an empty last line",
			text: "body\n",
			want: []Paragraph{{Lines: []string{"body", ""}}},
		},
		{
			name: "carriage returns stay in line text",
			text: "a\r\nb\r\n\r\nc",
			want: []Paragraph{
				{Lines: []string{"a\r", "b\r"}, Separator: "\n\r\n"},
				{Lines: []string{"c"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, Join(got), "round trip")
		})
	}
}

func TestJoinRoundTripsMixedWhitespace(t *testing.T) {
	texts := []string{
		"人工智慧與機器學習\n\n第二段\n第三行",
		"\n",
		"\n\n",
		" \n \n ",
		"a\n\n\n",
		"tabs\t\n\t\n\tand spaces",
	}
	for _, text := range texts {
		assert.Equal(t, text, Join(Segment(text)), "text %q", text)
	}
}
