package wheel

import "fmt"

// Party tracks which roster slots are opted in for the current round.
// It is the only writer of the active flags.
type Party struct {
	active []bool
	count  int
}

func NewParty(size int) *Party {
	if size < 0 {
		size = 0
	}
	return &Party{active: make([]bool, size)}
}

// Toggle flips the member at the 0-based index and returns the new active count.
func (p *Party) Toggle(index int) (int, error) {
	if index < 0 || index >= len(p.active) {
		return p.count, fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, index, len(p.active))
	}
	if p.active[index] {
		p.active[index] = false
		p.count--
	} else {
		p.active[index] = true
		p.count++
	}
	return p.count, nil
}

func (p *Party) ActiveCount() int {
	return p.count
}

func (p *Party) IsActive(index int) bool {
	if index < 0 || index >= len(p.active) {
		return false
	}
	return p.active[index]
}

// ActiveIndices lists active slots in roster order.
func (p *Party) ActiveIndices() []int {
	out := make([]int, 0, p.count)
	for i, on := range p.active {
		if on {
			out = append(out, i)
		}
	}
	return out
}

func (p *Party) Size() int {
	return len(p.active)
}

// Reset clears every flag.
func (p *Party) Reset() {
	for i := range p.active {
		p.active[i] = false
	}
	p.count = 0
}
