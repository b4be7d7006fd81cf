package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a model parameter outside its valid domain.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrUnknownParameter indicates a parameter name the model does not define.
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")

	// ErrDegenerateHorizon indicates a zero or negative integration horizon.
	ErrDegenerateHorizon = errors.New("dynamo: degenerate horizon")

	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates the adaptive timestep underflowed its minimum.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrStepBudget indicates the adaptive solver exhausted its step budget
	// without reaching the end of the horizon.
	ErrStepBudget = errors.New("dynamo: step budget exhausted")
)

// SolveError wraps a solver failure with the time and step at which it occurred.
type SolveError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
