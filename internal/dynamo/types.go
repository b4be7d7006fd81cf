package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// AdaptiveIntegrator exposes a single embedded-error-controlled step.
// The returned float64 is the suggested size for the next step.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, u Control, t, dt, tol float64) (State, float64, error)
}

// DenseIntegrator advances the solution with internally chosen adaptive
// steps and evaluates it, via dense output, at every point of a strictly
// increasing caller grid. grid[0] is the initial time for x0.
type DenseIntegrator interface {
	Integrator
	SolveGrid(dyn System, x0 State, u Control, grid []float64, tol float64) ([]State, error)
}

// Configurable allows parameters of a system to be read and overridden by
// name, which is what parameter sweeps are built on.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
