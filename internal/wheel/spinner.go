package wheel

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Spinner supplies uniform integers in [0, n) for n >= 1.
type Spinner interface {
	IntN(n int) int
}

// SpinDistance draws the number of steps for a ring of size n uniformly
// from [n, 2n], so every spin makes at least one full lap.
func SpinDistance(sp Spinner, n int) int {
	if n < 1 {
		return 0
	}
	return n + sp.IntN(n+1)
}

// SeededSpinner is a PCG stream; the same seed replays the same spins.
type SeededSpinner struct {
	seed uint64
	rng  *rand.Rand
}

func NewSeededSpinner(seed uint64) *SeededSpinner {
	return &SeededSpinner{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *SeededSpinner) IntN(n int) int {
	if n <= 1 {
		return 0
	}
	return s.rng.IntN(n)
}

func (s *SeededSpinner) Seed() uint64 {
	return s.seed
}

// NewSeed reads a fresh seed from crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
