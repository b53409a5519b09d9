package wheel

import (
	"context"
	"errors"
	"fmt"
)

// Input is a blocking source of player decisions.
type Input interface {
	// NextToggle returns a 1-based member index, or done once the party is final.
	NextToggle(ctx context.Context) (member int, done bool, err error)
	Confirm(ctx context.Context, kind ConfirmKind) (bool, error)
}

// Renderer consumes display events. It decides how long to hold each one.
type Renderer interface {
	Render(ev Event)
}

// Source produces a fresh catalogue for each round.
type Source interface {
	Load(ctx context.Context) (*Catalogue, error)
}

// RenderAll hands events to a renderer in order.
func RenderAll(out Renderer, events []Event) {
	for _, ev := range events {
		out.Render(ev)
	}
}

// Play drives a round to a decision with blocking collaborators. Rejected
// toggles are shown and the party stays open.
func Play(ctx context.Context, round *Round, in Input, out Renderer) (Result, error) {
	RenderAll(out, round.Snapshot())
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		var events []Event
		var err error
		switch round.State() {
		case StatePartyOpen:
			member, done, inErr := in.NextToggle(ctx)
			if inErr != nil {
				return Result{}, fmt.Errorf("read party selection: %w", inErr)
			}
			if done {
				events, err = round.EndPartySelection()
			} else {
				events, err = round.Toggle(member)
				if errors.Is(err, ErrOutOfRange) {
					err = nil
				}
			}
		case StateFiltering, StateRerollPending:
			kind := round.Pending()
			yes, inErr := in.Confirm(ctx, kind)
			if inErr != nil {
				return Result{}, fmt.Errorf("read %s confirmation: %w", kind, inErr)
			}
			events, err = round.Confirm(kind, yes)
		case StateDecided:
			return round.Result(), nil
		default:
			return Result{}, fmt.Errorf("%w: cannot play from %s", ErrWrongState, round.State())
		}
		if err != nil {
			return Result{}, err
		}
		RenderAll(out, events)
	}
}

// Session repeats rounds until the input declines another spin.
type Session struct {
	Source   Source
	Input    Input
	Renderer Renderer
	// NewSpinner is called once per round. Defaults to a freshly seeded spinner.
	NewSpinner func() (Spinner, error)
	// OnResult, if set, sees every decided round.
	OnResult func(Result)
}

func (s *Session) Run(ctx context.Context) error {
	newSpinner := s.NewSpinner
	if newSpinner == nil {
		newSpinner = func() (Spinner, error) {
			seed, err := NewSeed()
			if err != nil {
				return nil, err
			}
			return NewSeededSpinner(seed), nil
		}
	}

	for {
		again, err := s.Input.Confirm(ctx, ConfirmSpinAgain)
		if err != nil {
			return fmt.Errorf("read spin confirmation: %w", err)
		}
		if !again {
			return nil
		}

		cat, err := s.Source.Load(ctx)
		if err != nil {
			return fmt.Errorf("load catalogue: %w", err)
		}
		sp, err := newSpinner()
		if err != nil {
			return fmt.Errorf("create spinner: %w", err)
		}
		round, err := NewRound(cat, sp)
		if errors.Is(err, ErrNoData) {
			s.Renderer.Render(ShowEmptyResult{Reason: ReasonNoData})
			continue
		}
		if err != nil {
			return err
		}

		result, err := Play(ctx, round, s.Input, s.Renderer)
		round.Reset()
		if err != nil {
			return err
		}
		if s.OnResult != nil {
			s.OnResult(result)
		}
	}
}
