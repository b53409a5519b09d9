package wheel

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// State is a Round's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateRosterLoaded
	StatePartyOpen
	StateFiltering
	StateRinged
	StateSpinning
	StateDecided
	StateRerollPending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRosterLoaded:
		return "roster_loaded"
	case StatePartyOpen:
		return "party_open"
	case StateFiltering:
		return "filtering"
	case StateRinged:
		return "ringed"
	case StateSpinning:
		return "spinning"
	case StateDecided:
		return "decided"
	case StateRerollPending:
		return "reroll_pending"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Outcome string

const (
	OutcomeNone       Outcome = ""
	OutcomePicked     Outcome = "picked"
	OutcomeNoParty    Outcome = "no_party"
	OutcomeNoEligible Outcome = "no_eligible_items"
)

// Result is what a decided round reports.
type Result struct {
	RoundID string
	Outcome Outcome
	Pick    string
	Window  Window
	// Seed replays the round's spins when the spinner was seeded.
	Seed    uint64
	Spins   int
	Removed []string
}

type seeded interface {
	Seed() uint64
}

// Round drives one selection from party building to a decided pick. It is
// not safe for concurrent use; callers serialize signals.
type Round struct {
	id      string
	state   State
	cat     *Catalogue
	party   *Party
	spinner Spinner

	includePending bool
	ring           *Ring
	anchor         Node
	result         Result
}

// NewRound loads a catalogue into a fresh round. A catalogue without
// members fails with ErrNoData. A catalogue without items is decided
// immediately with no eligible items.
func NewRound(cat *Catalogue, sp Spinner) (*Round, error) {
	if cat == nil || len(cat.Members) == 0 {
		return nil, fmt.Errorf("%w: roster is empty", ErrNoData)
	}
	if sp == nil {
		return nil, errors.New("spinner required")
	}
	r := &Round{
		id:      uuid.NewString(),
		state:   StateRosterLoaded,
		cat:     cat,
		party:   NewParty(len(cat.Members)),
		spinner: sp,
		anchor:  NoNode,
	}
	r.result.RoundID = r.id
	if s, ok := sp.(seeded); ok {
		r.result.Seed = s.Seed()
	}
	if len(cat.Items) == 0 {
		r.decideEmpty(ReasonNoEligibleItems)
		return r, nil
	}
	r.state = StatePartyOpen
	return r, nil
}

func (r *Round) ID() string { return r.id }

func (r *Round) State() State { return r.state }

func (r *Round) Party() *Party { return r.party }

func (r *Round) Result() Result { return r.result }

// Catalogue is nil once the round has been reset.
func (r *Round) Catalogue() *Catalogue { return r.cat }

// RingSize is 0 when no ring is built.
func (r *Round) RingSize() int {
	return r.ring.Size()
}

// Pending reports which confirmation the round is waiting on, if any.
func (r *Round) Pending() ConfirmKind {
	switch r.state {
	case StateFiltering:
		return ConfirmIncludePending
	case StateRerollPending:
		return ConfirmReroll
	default:
		return ConfirmNone
	}
}

// Snapshot re-describes the current state for a renderer that joins late.
func (r *Round) Snapshot() []Event {
	if r.state == StateIdle || r.cat == nil {
		return nil
	}
	events := []Event{r.rosterEvent()}
	switch r.state {
	case StatePartyOpen:
		events = append(events, r.partyEvent())
	case StateFiltering:
		events = append(events, r.partyEvent(), ShowPrompt{Kind: ConfirmIncludePending})
	case StateRerollPending:
		events = append(events,
			r.partyEvent(),
			ShowSelection{Window: r.ring.Window(r.anchor), Remaining: r.ring.Size()},
			ShowPrompt{Kind: ConfirmReroll},
		)
	case StateDecided:
		switch r.result.Outcome {
		case OutcomePicked:
			events = append(events, ShowFinal{Window: r.result.Window, Remaining: r.ring.Size()})
		case OutcomeNoParty:
			events = append(events, ShowEmptyResult{Reason: ReasonNoParty})
		case OutcomeNoEligible:
			events = append(events, ShowEmptyResult{Reason: ReasonNoEligibleItems})
		}
	}
	return events
}

// Toggle flips a member by 1-based roster position.
func (r *Round) Toggle(member int) ([]Event, error) {
	if r.state != StatePartyOpen {
		return nil, fmt.Errorf("%w: toggle in %s", ErrWrongState, r.state)
	}
	if _, err := r.party.Toggle(member - 1); err != nil {
		return []Event{ShowRejected{Member: member, Reason: "member not in list"}}, err
	}
	return []Event{r.partyEvent()}, nil
}

// EndPartySelection closes the party. An empty party decides the round
// without filtering.
func (r *Round) EndPartySelection() ([]Event, error) {
	if r.state != StatePartyOpen {
		return nil, fmt.Errorf("%w: end party in %s", ErrWrongState, r.state)
	}
	if r.party.ActiveCount() == 0 {
		return r.decideEmpty(ReasonNoParty), nil
	}
	r.state = StateFiltering
	return []Event{ShowPrompt{Kind: ConfirmIncludePending}}, nil
}

// Confirm answers the question named by Pending.
func (r *Round) Confirm(kind ConfirmKind, yes bool) ([]Event, error) {
	if kind == ConfirmNone || kind != r.Pending() {
		return nil, fmt.Errorf("%w: confirm %s in %s", ErrWrongState, kind, r.state)
	}
	switch kind {
	case ConfirmIncludePending:
		return r.filter(yes), nil
	case ConfirmReroll:
		return r.reroll(yes), nil
	}
	return nil, fmt.Errorf("%w: confirm %s", ErrWrongState, kind)
}

func (r *Round) filter(includePending bool) []Event {
	r.includePending = includePending
	eligible := Filter(r.cat, r.party, includePending)
	events := []Event{ShowFilteredCount{Count: len(eligible), IncludePending: includePending}}

	ring, err := Build(eligible)
	if err != nil {
		return append(events, r.decideEmpty(ReasonNoEligibleItems)...)
	}
	r.ring = ring
	r.anchor = ring.Tail()
	r.state = StateRinged
	return append(events, r.spin()...)
}

func (r *Round) reroll(yes bool) []Event {
	if !yes || r.ring.Size() <= 1 {
		return r.finish()
	}
	name, ok := r.ring.RemoveAfter(r.anchor)
	if !ok {
		return r.finish()
	}
	r.result.Removed = append(r.result.Removed, name)
	events := []Event{ShowRemoved{Name: name, Remaining: r.ring.Size()}}
	return append(events, r.spin()...)
}

// spin walks the ring once. A single remaining name is the answer without
// spinning.
func (r *Round) spin() []Event {
	r.state = StateSpinning
	size := r.ring.Size()
	if size <= 1 {
		return r.finish()
	}

	distance := SpinDistance(r.spinner, size)
	events := make([]Event, 0, distance+2)
	for step, at := range r.ring.Walk(r.anchor, distance) {
		events = append(events, ShowSpinFrame{
			Window: r.ring.Window(at),
			Frame:  step,
			Total:  distance,
		})
	}
	r.anchor = r.ring.Spin(r.anchor, distance)
	r.result.Spins++

	r.state = StateRerollPending
	return append(events,
		ShowSelection{Window: r.ring.Window(r.anchor), Remaining: size},
		ShowPrompt{Kind: ConfirmReroll},
	)
}

func (r *Round) finish() []Event {
	w := r.ring.Window(r.anchor)
	r.state = StateDecided
	r.result.Outcome = OutcomePicked
	r.result.Pick = w.Selected
	r.result.Window = w
	return []Event{ShowFinal{Window: w, Remaining: r.ring.Size()}}
}

func (r *Round) decideEmpty(reason EmptyReason) []Event {
	r.state = StateDecided
	switch reason {
	case ReasonNoParty:
		r.result.Outcome = OutcomeNoParty
	default:
		r.result.Outcome = OutcomeNoEligible
	}
	return []Event{ShowEmptyResult{Reason: reason}}
}

// Reset abandons the round from any state: the party is cleared, every ring
// slot is released and the catalogue is dropped.
func (r *Round) Reset() {
	r.party.Reset()
	r.ring.Release()
	r.ring = nil
	r.anchor = NoNode
	r.includePending = false
	r.cat = nil
	r.result = Result{RoundID: r.id}
	r.state = StateIdle
}

func (r *Round) rosterEvent() ShowRoster {
	names := make([]string, len(r.cat.Members))
	for i, m := range r.cat.Members {
		names[i] = m.Name
	}
	return ShowRoster{Members: names}
}

func (r *Round) partyEvent() ShowParty {
	active := make([]string, 0, r.party.ActiveCount())
	for _, idx := range r.party.ActiveIndices() {
		active = append(active, r.cat.Members[idx].Name)
	}
	return ShowParty{Active: active}
}
