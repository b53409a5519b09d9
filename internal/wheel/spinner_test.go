package wheel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpinDistanceBounds(t *testing.T) {
	sp := NewSeededSpinner(42)
	for _, n := range []int{1, 2, 3, 10} {
		seen := map[int]bool{}
		for i := 0; i < 2000; i++ {
			d := SpinDistance(sp, n)
			require.GreaterOrEqualf(t, d, n, "n=%d", n)
			require.LessOrEqualf(t, d, 2*n, "n=%d", n)
			seen[d] = true
		}
		assert.Lenf(t, seen, n+1, "every distance in [%d,%d] should occur", n, 2*n)
	}
	assert.Equal(t, 0, SpinDistance(sp, 0))
}

func TestSeededSpinnerReplays(t *testing.T) {
	a := NewSeededSpinner(7)
	b := NewSeededSpinner(7)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.IntN(100), b.IntN(100), "draw %d", i)
	}
	assert.Equal(t, uint64(7), a.Seed())
}

func TestNewSeed(t *testing.T) {
	s1, err := NewSeed()
	require.NoError(t, err)
	s2, err := NewSeed()
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2, "two crypto seeds should differ")
}
