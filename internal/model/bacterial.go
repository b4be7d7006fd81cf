package model

import (
	"fmt"

	"bactsim/internal/dynamo"
)

// Params holds the seven scalar parameters of the stress-damage model.
type Params struct {
	R     float64 // growth/relaxation rate, > 0
	K     float64 // carrying capacity, > 0
	T     float64 // damage threshold, >= 0
	Alpha float64 // concentration-to-damage conversion, >= 0
	C     float64 // external concentration, >= 0
	X0    float64 // initial bacterial density, >= 0
	Y0    float64 // initial damage, >= 0
}

// DefaultParams are the reference defaults for the model.
func DefaultParams() Params {
	return Params{R: 1.0, K: 1.0, T: 0.5, Alpha: 2.5, C: 0.2, X0: 0.1, Y0: 0.0}
}

// Validate checks every field against its domain constraint. K is required
// to be strictly positive since the growth term divides by it.
func (p Params) Validate() error {
	checks := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"r", p.R, true},
		{"k", p.K, true},
		{"threshold", p.T, false},
		{"alpha", p.Alpha, false},
		{"conc", p.C, false},
		{"x0", p.X0, false},
		{"y0", p.Y0, false},
	}
	for _, c := range checks {
		if c.positive && c.value <= 0 {
			return fmt.Errorf("%w: %s must be > 0, got %g", dynamo.ErrInvalidParameter, c.name, c.value)
		}
		if !c.positive && c.value < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %g", dynamo.ErrInvalidParameter, c.name, c.value)
		}
	}
	return nil
}

// WithParam returns a copy of p with the named parameter replaced.
func (p Params) WithParam(name string, value float64) (Params, error) {
	switch name {
	case "r":
		p.R = value
	case "k":
		p.K = value
	case "threshold", "T":
		p.T = value
	case "alpha":
		p.Alpha = value
	case "conc", "c":
		p.C = value
	case "x0":
		p.X0 = value
	case "y0":
		p.Y0 = value
	default:
		return p, fmt.Errorf("%w: %s", dynamo.ErrUnknownParameter, name)
	}
	return p, nil
}

// InitState is the initial state vector [y0, x0].
func (p Params) InitState() dynamo.State {
	return dynamo.State{p.Y0, p.X0}
}

// Equilibrium is the damage level y relaxes toward.
func (p Params) Equilibrium() float64 {
	return p.Alpha * p.C
}

// Bacterial implements bacterial population growth under accumulating
// stress damage.
// State: [y, x] where y = damage, x = density
// Equations:
//
//	dy/dt = r(αc - y)
//	dx/dt = rx(1 - x/k)·1[y < T]
//
// Damage relaxes linearly toward αc independent of x; growth is logistic,
// gated off entirely once damage reaches the threshold. The gate is a hard
// step, not a smoothed sigmoid: growth arrest above threshold is total.
type Bacterial struct {
	p Params
}

func NewBacterial(p Params) *Bacterial {
	return &Bacterial{p: p}
}

func (b *Bacterial) StateDim() int   { return 2 }
func (b *Bacterial) ControlDim() int { return 0 }

// Derive evaluates the right-hand side. The gate comparison is y < T; its
// complement y >= T is what crash detection uses, so the two agree at exact
// threshold equality. Out-of-range state (e.g. slightly negative x from
// integrator overshoot) is evaluated as-is, never rejected here.
func (b *Bacterial) Derive(state dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	y, x := state[0], state[1]

	dy := b.p.R * (b.p.Alpha*b.p.C - y)

	dx := 0.0
	if y < b.p.T {
		dx = b.p.R * x * (1 - x/b.p.K)
	}

	return dynamo.State{dy, dx}
}

func (b *Bacterial) DefaultState() dynamo.State {
	return b.p.InitState()
}

func (b *Bacterial) Params() Params {
	return b.p
}

// GetParams implements dynamo.Configurable
func (b *Bacterial) GetParams() map[string]float64 {
	return map[string]float64{
		"r":         b.p.R,
		"k":         b.p.K,
		"threshold": b.p.T,
		"alpha":     b.p.Alpha,
		"conc":      b.p.C,
		"x0":        b.p.X0,
		"y0":        b.p.Y0,
	}
}

// SetParam implements dynamo.Configurable
func (b *Bacterial) SetParam(name string, value float64) error {
	p, err := b.p.WithParam(name, value)
	if err != nil {
		return err
	}
	b.p = p
	return nil
}
