package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Document {
	return &Document{
		SectionID: "long",
		Paragraphs: []Paragraph{
			{
				Lines: []Line{
					{Runs: []Run{Annotation("AI"), Text(" is "), Text("AI"), Text(" again")}},
					{Runs: []Run{}},
				},
				Separator: "\n\n",
			},
			{
				Lines: []Line{{Runs: []Run{Text("We love "), Annotation("C++")}}},
			},
		},
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "AI is AI again\n\n\nWe love C++", sample().Text())
	assert.Equal(t, "", (&Document{}).Text())
}

func TestAnnotations(t *testing.T) {
	doc := sample()
	assert.Equal(t, []Run{Annotation("AI"), Annotation("C++")}, doc.Annotations())
	assert.Equal(t, 2, doc.AnnotationCount())
	assert.Equal(t, []string{"AI", "C++"}, doc.Terms())
}

func TestJSONShape(t *testing.T) {
	data, err := json.Marshal(Line{Runs: []Run{Text("We love "), Annotation("C++")}})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"runs":[{"kind":"text","value":"We love "},{"kind":"annotation","value":"C++","term":"C++"}]}`,
		string(data))
}

func TestJSONDecodePreservesDocument(t *testing.T) {
	doc := sample()
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, doc.Equal(&decoded))
}

func TestRunUnmarshalRejectsMalformedRuns(t *testing.T) {
	for _, raw := range []string{
		`{"kind":"link","value":"x"}`,
		`{"kind":"annotation","value":"AI"}`,
		`{"kind":"text","value":"AI","term":"AI"}`,
	} {
		var r Run
		assert.Error(t, json.Unmarshal([]byte(raw), &r), raw)
	}
}

func TestEqual(t *testing.T) {
	a, b := sample(), sample()
	assert.True(t, a.Equal(b))

	b.Paragraphs[0].Lines[0].Runs[2] = Annotation("AI")
	assert.False(t, a.Equal(b))

	c := sample()
	c.Paragraphs[0].Separator = "\n \n"
	assert.False(t, a.Equal(c))

	var nilDoc *Document
	assert.False(t, a.Equal(nilDoc))
	assert.True(t, nilDoc.Equal(nil))
}
