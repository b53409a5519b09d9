package wheel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("G%d", i+1)
	}
	return names
}

func TestBuildEmpty(t *testing.T) {
	_, err := Build(nil)
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestBuildIsCircularForEverySize(t *testing.T) {
	for n := 1; n <= 7; n++ {
		r, err := Build(makeNames(n))
		require.NoErrorf(t, err, "Build n=%d", n)
		assert.Equalf(t, n, r.Size(), "size for n=%d", n)

		start := r.Tail()
		for offset := 0; offset < n; offset++ {
			anchor := r.Spin(start, offset)
			assert.Equalf(t, anchor, r.Spin(anchor, n), "n=%d offset=%d should lap back to itself", n, offset)
		}
	}
}

func TestBuildSingleNodePointsAtItself(t *testing.T) {
	r, err := Build([]string{"only"})
	require.NoError(t, err)

	tail := r.Tail()
	assert.Equal(t, tail, r.Next(tail), "single node must be its own successor")
	assert.Equal(t, Window{Previous: "only", Selected: "only", Next: "only"}, r.Window(tail))
}

func TestBuildKeepsInputOrder(t *testing.T) {
	r, err := Build([]string{"G1", "G2", "G3"})
	require.NoError(t, err)

	var got []string
	for _, n := range r.Walk(r.Tail(), 3) {
		got = append(got, r.Name(n))
	}
	assert.Equal(t, []string{"G1", "G2", "G3"}, got, "walk from the tail starts at the head")
}

func TestRemoveDownToOne(t *testing.T) {
	r, err := Build([]string{"G1", "G2", "G3"})
	require.NoError(t, err)
	anchor := r.Tail()

	removed, ok := r.RemoveAfter(anchor)
	require.True(t, ok)
	assert.Equal(t, "G1", removed)
	assert.Equal(t, 2, r.Size())

	removed, ok = r.RemoveAfter(anchor)
	require.True(t, ok)
	assert.Equal(t, "G2", removed)
	assert.Equal(t, 1, r.Size())

	removed, ok = r.RemoveAfter(anchor)
	assert.False(t, ok, "removing from a one-node ring is a no-op")
	assert.Empty(t, removed)
	assert.Equal(t, 1, r.Size())
	assert.Equal(t, "G3", r.Name(anchor))
	assert.Equal(t, anchor, r.Next(anchor))
}

func TestRemoveTailMovesTail(t *testing.T) {
	r, err := Build([]string{"G1", "G2", "G3"})
	require.NoError(t, err)
	head := r.Next(r.Tail())
	second := r.Next(head)

	removed, ok := r.RemoveAfter(second)
	require.True(t, ok)
	assert.Equal(t, "G3", removed)
	assert.Equal(t, second, r.Tail(), "predecessor becomes the tail")
	assert.Equal(t, 2, r.Size())
	assert.Equal(t, head, r.Next(r.Tail()))
}

func TestRemovedSlotIsReused(t *testing.T) {
	r, err := Build([]string{"G1", "G2"})
	require.NoError(t, err)
	victim := r.Next(r.Tail())
	_, ok := r.RemoveAfter(r.Tail())
	require.True(t, ok)
	assert.Equal(t, NoNode, r.Next(victim), "freed slot is no longer linked")

	reused := r.insert("G9")
	assert.Equal(t, victim, reused, "insert should take the freed slot")
	assert.Equal(t, 2, r.Size())
}

func TestWalkIsRestartable(t *testing.T) {
	r, err := Build(makeNames(4))
	require.NoError(t, err)

	collect := func() []string {
		var names []string
		for _, n := range r.Walk(r.Tail(), 6) {
			names = append(names, r.Name(n))
		}
		return names
	}
	first := collect()
	assert.Equal(t, []string{"G1", "G2", "G3", "G4", "G1", "G2"}, first)
	assert.Equal(t, first, collect())
}

func TestReleasedRingIsEmpty(t *testing.T) {
	r, err := Build(makeNames(3))
	require.NoError(t, err)
	r.Release()

	assert.Equal(t, 0, r.Size())
	assert.Equal(t, NoNode, r.Tail())
	assert.Equal(t, NoNode, r.Spin(0, 1))

	var nilRing *Ring
	assert.Equal(t, 0, nilRing.Size())
	nilRing.Release()
}
