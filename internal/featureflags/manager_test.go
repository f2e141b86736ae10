package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_Enabled(t *testing.T) {
	t.Parallel()

	m := NewManager("live_count=on, beta_upload=off ,new_explore=50%,weird=banana,empty=,=orphan")

	assert.True(t, m.Enabled("live_count", 1))
	assert.True(t, m.Enabled("LIVE_COUNT", 1), "flag names are case-insensitive")
	assert.False(t, m.Enabled("beta_upload", 1))
	assert.False(t, m.Enabled("weird", 1), "unknown values mean off")
	assert.False(t, m.Enabled("missing", 1), "unknown flags mean off")
}

func TestManager_PercentRollout(t *testing.T) {
	t.Parallel()

	m := NewManager("new_explore=50%")

	// Deterministic per user.
	for _, userID := range []uint{1, 7, 42, 9000} {
		first := m.Enabled("new_explore", userID)
		assert.Equal(t, first, m.Enabled("new_explore", userID))
	}

	// Anonymous callers never land in a partial rollout.
	assert.False(t, m.Enabled("new_explore", 0))

	// Across many users roughly half should be in. Allow a wide band; the
	// bucketing is a hash, not a coin flip.
	in := 0
	for userID := uint(1); userID <= 1000; userID++ {
		if m.Enabled("new_explore", userID) {
			in++
		}
	}
	assert.Greater(t, in, 300)
	assert.Less(t, in, 700)
}

func TestManager_PercentBounds(t *testing.T) {
	t.Parallel()

	assert.True(t, NewManager("f=100%").Enabled("f", 0), "100%% is plain on")
	assert.True(t, NewManager("f=250%").Enabled("f", 0))
	assert.False(t, NewManager("f=0%").Enabled("f", 5))
	assert.False(t, NewManager("f=-3%").Enabled("f", 5))
	assert.False(t, NewManager("f=x%").Enabled("f", 5))
}

func TestManager_NilSafety(t *testing.T) {
	t.Parallel()

	var m *Manager
	assert.False(t, m.Enabled("anything", 1))
	assert.Nil(t, m.Snapshot(1))
}

func TestManager_Snapshot(t *testing.T) {
	t.Parallel()

	m := NewManager("a=on,b=off")
	snap := m.Snapshot(3)
	assert.Equal(t, map[string]bool{"a": true, "b": false}, snap)
}
