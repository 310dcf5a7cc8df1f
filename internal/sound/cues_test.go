package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCues_EveryCueHasATone(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for _, name := range Cues() {
		assert.False(t, seen[name], "duplicate cue %s", name)
		seen[name] = true

		freq, ok := cueTones[name]
		assert.True(t, ok, "cue %s has no tone", name)
		assert.Greater(t, freq, 0.0)
	}
	assert.Len(t, cueTones, len(seen))
}
