package wheel

import "errors"

var (
	// ErrOutOfRange is returned when a member index does not address a roster slot.
	ErrOutOfRange = errors.New("member index out of range")
	// ErrEmptyInput is returned when a ring is built from zero names.
	ErrEmptyInput = errors.New("no names to build ring from")
	// ErrNoData is returned when a round starts without any members.
	ErrNoData = errors.New("no roster data")
	// ErrWrongState is returned when a signal arrives in a state that does not accept it.
	ErrWrongState = errors.New("signal not accepted in current state")
	// ErrInvalidCatalogue is returned for malformed roster or item records.
	ErrInvalidCatalogue = errors.New("invalid catalogue")
)
