package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	cases := map[State]string{
		Scanned:           "scanned",
		OpenReleased:       "open(released)",
		OpenCharacterized: "open(characterized)",
		OpenKnownMedia:    "open(known-media)",
		Writing:           "writing",
		SyncingCache:      "sync-cache",
		Disposed:          "disposed",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
}

func TestErrInvalidTransitionMessage(t *testing.T) {
	err := &ErrInvalidTransition{From: Scanned, Attempted: Writing}
	assert.Contains(t, err.Error(), "scanned")
	assert.Contains(t, err.Error(), "writing")
}

func TestMediaKindNeedsClose(t *testing.T) {
	assert.True(t, MediaKindSequential.NeedsClose())
	assert.False(t, MediaKindOverwriteable.NeedsClose())
	assert.False(t, MediaKindUnknown.NeedsClose())
}
