package sim

import (
	"context"
	"fmt"

	"bactsim/internal/dynamo"
	"bactsim/internal/integrators"
	"bactsim/internal/model"
)

const (
	DefaultHorizon   = 10.0
	DefaultSamples   = 100
	DefaultTolerance = 1e-6
)

// Config controls one simulation run.
type Config struct {
	Horizon   float64 // simulated time span [0, Horizon]
	Samples   int     // number of evenly spaced output samples
	Tolerance float64 // local error tolerance for adaptive stepping
}

func DefaultConfig() Config {
	return Config{
		Horizon:   DefaultHorizon,
		Samples:   DefaultSamples,
		Tolerance: DefaultTolerance,
	}
}

// Trajectory is one sampled solution. All three slices share the same length
// and the same strictly increasing time grid; it is never mutated after the
// run that produced it.
type Trajectory struct {
	Times   []float64
	Damage  []float64
	Density []float64
}

func (tr *Trajectory) Len() int {
	return len(tr.Times)
}

// Interval is the sample spacing, which is also the resolution of any
// quantity read off the grid (crash times included).
func (tr *Trajectory) Interval() float64 {
	if len(tr.Times) < 2 {
		return 0
	}
	return tr.Times[1] - tr.Times[0]
}

func (tr *Trajectory) MaxDamage() float64 {
	return maxOf(tr.Damage)
}

func (tr *Trajectory) MaxDensity() float64 {
	return maxOf(tr.Density)
}

func maxOf(vs []float64) float64 {
	m := 0.0
	for i, v := range vs {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

// Simulator runs a system over a horizon and samples it onto a fixed grid.
type Simulator struct {
	dyn   dynamo.System
	integ dynamo.Integrator
}

func New(dyn dynamo.System, integ dynamo.Integrator) *Simulator {
	return &Simulator{dyn: dyn, integ: integ}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Horizon <= 0 {
		return fmt.Errorf("%w: horizon must be positive, got %g", dynamo.ErrDegenerateHorizon, cfg.Horizon)
	}
	if cfg.Samples < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", dynamo.ErrInvalidParameter, cfg.Samples)
	}
	if cfg.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive, got %g", dynamo.ErrInvalidParameter, cfg.Tolerance)
	}
	return nil
}

// Run integrates from x0 and returns the sampled trajectory. State layout is
// [damage, density]. Adaptive integrators advance at their own internal step
// sizes and fill the grid through dense output; fixed-step integrators
// substep each sampling interval directly.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Trajectory, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grid := make([]float64, cfg.Samples)
	for i := range grid {
		grid[i] = cfg.Horizon * float64(i) / float64(cfg.Samples-1)
	}

	var states []dynamo.State
	var err error

	if dense, ok := s.integ.(dynamo.DenseIntegrator); ok {
		states, err = dense.SolveGrid(s.dyn, x0, nil, grid, cfg.Tolerance)
	} else {
		states, err = s.runFixed(ctx, x0, grid)
	}
	if err != nil {
		return nil, fmt.Errorf("integration failed: %w", err)
	}

	tr := &Trajectory{
		Times:   grid,
		Damage:  make([]float64, cfg.Samples),
		Density: make([]float64, cfg.Samples),
	}
	for i, st := range states {
		if !st.IsValid() {
			return nil, fmt.Errorf("integration failed: %w at t=%.4f", dynamo.ErrInvalidState, grid[i])
		}
		tr.Damage[i] = st[0]
		tr.Density[i] = st[1]
	}

	return tr, nil
}

// fixedSubsteps is how many integrator steps a fixed-step method takes per
// sampling interval.
const fixedSubsteps = 10

func (s *Simulator) runFixed(ctx context.Context, x0 dynamo.State, grid []float64) ([]dynamo.State, error) {
	states := make([]dynamo.State, len(grid))
	states[0] = x0.Clone()

	x := x0.Clone()
	for i := 1; i < len(grid); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t := grid[i-1]
		dt := (grid[i] - grid[i-1]) / fixedSubsteps
		for j := 0; j < fixedSubsteps; j++ {
			x = s.integ.Step(s.dyn, x, nil, t, dt)
			t += dt
		}
		states[i] = x.Clone()
	}

	return states, nil
}

// Simulate validates params, builds the stress model and the default RK45
// integrator, and runs it. This is the one-shot entry point the callers use.
func Simulate(ctx context.Context, p model.Params, cfg Config) (*Trajectory, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s := New(model.NewBacterial(p), integrators.NewRK45())
	return s.Run(ctx, p.InitState(), cfg)
}
