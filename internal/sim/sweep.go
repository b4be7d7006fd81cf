package sim

import (
	"context"
	"sync"

	"bactsim/internal/model"
)

// axisHeadroom scales shared axis bounds so both runs plot with a margin.
const axisHeadroom = 1.1

// AxisBounds are display bounds shared by both runs of a sweep.
type AxisBounds struct {
	MaxDensity float64
	MaxDamage  float64
}

// SweepRun is one side of a two-value comparison.
type SweepRun struct {
	Value      float64
	Trajectory *Trajectory
	CrashAt    float64
	Crashed    bool
}

// SweepResult holds both runs of a one-parameter comparison plus the shared
// axis bounds for rendering them on common scales.
type SweepResult struct {
	Param  string
	Runs   [2]SweepRun
	Bounds AxisBounds
}

// Compare runs the model twice with the named parameter set to valueA and
// valueB respectively, everything else held at base. The two runs are
// independent and execute concurrently; each is a pure function of its
// parameter set, so there is nothing to synchronize beyond the join.
func Compare(ctx context.Context, base model.Params, param string, valueA, valueB float64, cfg Config) (*SweepResult, error) {
	values := [2]float64{valueA, valueB}

	var params [2]model.Params
	for i, v := range values {
		p, err := base.WithParam(param, v)
		if err != nil {
			return nil, err
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		params[i] = p
	}

	var (
		wg    sync.WaitGroup
		trajs [2]*Trajectory
		errs  [2]error
	)
	for i := range params {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			trajs[idx], errs[idx] = Simulate(ctx, params[idx], cfg)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	res := &SweepResult{Param: param}
	for i := range values {
		crashAt, crashed := CrashTime(trajs[i], params[i].T)
		res.Runs[i] = SweepRun{
			Value:      values[i],
			Trajectory: trajs[i],
			CrashAt:    crashAt,
			Crashed:    crashed,
		}

		if m := trajs[i].MaxDensity(); m > res.Bounds.MaxDensity {
			res.Bounds.MaxDensity = m
		}
		if m := trajs[i].MaxDamage(); m > res.Bounds.MaxDamage {
			res.Bounds.MaxDamage = m
		}
	}
	res.Bounds.MaxDensity *= axisHeadroom
	res.Bounds.MaxDamage *= axisHeadroom

	return res, nil
}
