package machine

import (
	"errors"

	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrNoUnitsAvailable = errors.New(f("no units available"))
	ErrUnitInvalid      = errors.New(f("unit invalid"))
	ErrStateInvalid     = errors.New(f("illegal state transition"))
	ErrTickLimit        = errors.New(f("tick limit reached"))
	ErrConfigInvalid    = errors.New(f("config invalid"))
)

// ErrTransition reports a lifecycle transition that is not allowed
// from the current state.
type ErrTransition struct {
	From State
	To   State
}

func (err ErrTransition) Error() string {
	return f("illegal state transition %v -> %v", err.From, err.To)
}

func (err ErrTransition) Is(target error) bool {
	return target == ErrStateInvalid
}

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Unit  int // Execution unit.
	Index int // Position in the supplied instruction sequence.
	Err   error
}

func (err *ErrRuntime) Error() string {
	return f("unit %d instruction %d %v", err.Unit, err.Index, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
