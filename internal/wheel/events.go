package wheel

import "fmt"

// Window is the three names framing a selection on screen.
type Window struct {
	Previous string `json:"previous"`
	Selected string `json:"selected"`
	Next     string `json:"next"`
}

// ConfirmKind names a yes/no question put to the input source.
type ConfirmKind int

const (
	ConfirmNone ConfirmKind = iota
	ConfirmSpinAgain
	ConfirmIncludePending
	ConfirmReroll
)

func (k ConfirmKind) String() string {
	switch k {
	case ConfirmSpinAgain:
		return "spin_again"
	case ConfirmIncludePending:
		return "include_pending"
	case ConfirmReroll:
		return "reroll"
	default:
		return "none"
	}
}

func ParseConfirmKind(raw string) (ConfirmKind, error) {
	switch raw {
	case "spin_again":
		return ConfirmSpinAgain, nil
	case "include_pending":
		return ConfirmIncludePending, nil
	case "reroll":
		return ConfirmReroll, nil
	default:
		return ConfirmNone, fmt.Errorf("unknown confirm kind %q", raw)
	}
}

// EmptyReason explains a round that ended without a pick.
type EmptyReason string

const (
	ReasonNoData          EmptyReason = "no_data"
	ReasonNoParty         EmptyReason = "no_party"
	ReasonNoEligibleItems EmptyReason = "no_eligible_items"
)

// Event is one display state handed to a renderer.
type Event interface{ isEvent() }

// ShowRoster lists the members in roster order.
type ShowRoster struct {
	Members []string
}

// ShowParty lists the active members after a toggle.
type ShowParty struct {
	Active []string
}

// ShowRejected reports a toggle for a member slot that does not exist.
// Member is the index as the input source sent it.
type ShowRejected struct {
	Member int
	Reason string
}

// ShowPrompt announces the question the round is waiting on.
type ShowPrompt struct {
	Kind ConfirmKind
}

type ShowFilteredCount struct {
	Count          int
	IncludePending bool
}

// ShowSpinFrame is one step of a spin. Frame runs from 1 to Total.
type ShowSpinFrame struct {
	Window Window
	Frame  int
	Total  int
}

// ShowSelection is where a spin came to rest.
type ShowSelection struct {
	Window    Window
	Remaining int
}

// ShowRemoved reports a name dropped by a reroll.
type ShowRemoved struct {
	Name      string
	Remaining int
}

type ShowFinal struct {
	Window    Window
	Remaining int
}

type ShowEmptyResult struct {
	Reason EmptyReason
}

func (ShowRoster) isEvent()        {}
func (ShowParty) isEvent()         {}
func (ShowRejected) isEvent()      {}
func (ShowPrompt) isEvent()        {}
func (ShowFilteredCount) isEvent() {}
func (ShowSpinFrame) isEvent()     {}
func (ShowSelection) isEvent()     {}
func (ShowRemoved) isEvent()       {}
func (ShowFinal) isEvent()         {}
func (ShowEmptyResult) isEvent()   {}
