package occurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldAnnotateFirstOccurrenceOnly(t *testing.T) {
	tr := New()

	assert.False(t, tr.Seen("AI"))
	assert.True(t, tr.ShouldAnnotate("AI"))
	assert.True(t, tr.Seen("AI"))
	assert.False(t, tr.ShouldAnnotate("AI"))
	assert.False(t, tr.ShouldAnnotate("AI"))

	assert.True(t, tr.ShouldAnnotate("ML"))
	assert.Equal(t, 2, tr.Len())
}

func TestTrackersAreIndependent(t *testing.T) {
	short, long := New(), New()

	assert.True(t, short.ShouldAnnotate("AI"))
	assert.True(t, long.ShouldAnnotate("AI"))
	assert.False(t, long.ShouldAnnotate("AI"))
	assert.Equal(t, 1, short.Len())
}
