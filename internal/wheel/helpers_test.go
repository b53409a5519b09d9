package wheel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixedSpinner cycles through canned draws, clamped into [0, n).
type fixedSpinner struct {
	draws []int
	calls int
}

func (s *fixedSpinner) IntN(n int) int {
	if len(s.draws) == 0 || n <= 1 {
		s.calls++
		return 0
	}
	v := s.draws[s.calls%len(s.draws)] % n
	s.calls++
	return v
}

type recorder struct {
	events []Event
}

func (r *recorder) Render(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) of(match func(Event) bool) []Event {
	var out []Event
	for _, ev := range r.events {
		if match(ev) {
			out = append(out, ev)
		}
	}
	return out
}

var errScriptExhausted = errors.New("script exhausted")

// scriptedInput replays toggles and answers. A toggle of 0 ends the party.
type scriptedInput struct {
	toggles []int
	answers map[ConfirmKind][]bool
	asked   []ConfirmKind
}

func (s *scriptedInput) NextToggle(ctx context.Context) (int, bool, error) {
	if len(s.toggles) == 0 {
		return 0, false, errScriptExhausted
	}
	next := s.toggles[0]
	s.toggles = s.toggles[1:]
	if next == 0 {
		return 0, true, nil
	}
	return next, false, nil
}

func (s *scriptedInput) Confirm(ctx context.Context, kind ConfirmKind) (bool, error) {
	s.asked = append(s.asked, kind)
	queue := s.answers[kind]
	if len(queue) == 0 {
		return false, errScriptExhausted
	}
	s.answers[kind] = queue[1:]
	return queue[0], nil
}

func makeCatalogue(t *testing.T, names []string, records ...ItemRecord) *Catalogue {
	t.Helper()
	cat, err := NewCatalogue(names, records)
	require.NoError(t, err, "NewCatalogue")
	return cat
}

func makeRound(t *testing.T, cat *Catalogue, sp Spinner) *Round {
	t.Helper()
	if sp == nil {
		sp = &fixedSpinner{}
	}
	r, err := NewRound(cat, sp)
	require.NoError(t, err, "NewRound")
	return r
}
