package wheel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartyToggleTracksCount(t *testing.T) {
	p := NewParty(3)

	count, err := p.Toggle(0)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "count after first toggle")
	count, err = p.Toggle(2)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "count after second toggle")
	assert.True(t, p.IsActive(0))
	assert.False(t, p.IsActive(1))
	assert.Equal(t, []int{0, 2}, p.ActiveIndices())

	count, err = p.Toggle(0)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "toggling an active member should remove it")
	assert.False(t, p.IsActive(0))
}

func TestPartyToggleOutOfRange(t *testing.T) {
	p := NewParty(2)
	_, _ = p.Toggle(1)

	for _, idx := range []int{-1, 2, 99} {
		count, err := p.Toggle(idx)
		require.ErrorIsf(t, err, ErrOutOfRange, "index %d", idx)
		assert.Equalf(t, 1, count, "count must be unchanged for index %d", idx)
	}
	assert.False(t, p.IsActive(5), "out-of-range reads are inactive")
}

func TestPartyReset(t *testing.T) {
	p := NewParty(4)
	for i := 0; i < 4; i++ {
		_, err := p.Toggle(i)
		require.NoError(t, err)
	}
	p.Reset()

	assert.Equal(t, 0, p.ActiveCount(), "count after reset")
	assert.Empty(t, p.ActiveIndices(), "active after reset")
	assert.Equal(t, 4, p.Size(), "reset keeps roster slots")
}
