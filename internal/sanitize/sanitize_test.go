package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text is untouched", "AI is AI\n\nagain", "AI is AI\n\nagain"},
		{"tags are stripped", "<p>Large <b>language</b> model</p>", "Large language model"},
		{"scripts are removed", "safe<script>alert(1)</script>", "safe"},
		{"entities are decoded", "R&amp;D &lt;3", "R&D <3"},
		{"comparison survives", "a < b & c", "a < b & c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}
