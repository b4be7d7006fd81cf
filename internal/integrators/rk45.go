package integrators

import (
	"math"

	"bactsim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

const (
	// maxSolveSteps bounds accepted+rejected attempts in SolveGrid so a
	// pathological right-hand side cannot spin forever.
	maxSolveSteps = 100000

	// firstStepFraction sizes the initial trial step relative to the span.
	firstStepFraction = 1e-2

	// minStepFraction is the underflow floor relative to the span.
	minStepFraction = 1e-12
)

type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	newX, _, _ := r.StepAdaptive(dyn, x, u, t, dt, 1e-6)
	return newX
}

// attempt performs one trial step of size dt. k1 is the derivative at (t, x),
// which the caller already has thanks to the FSAL property. It returns the
// candidate state, the derivative at the candidate state (k7, reusable as the
// next step's k1), and the error-to-tolerance ratio.
func (r *RK45) attempt(dyn dynamo.System, x, k1 dynamo.State, u dynamo.Control, t, dt, tol float64) (dynamo.State, dynamo.State, float64) {
	n := len(x)

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := dyn.Derive(x2, u, t+a2*dt)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := dyn.Derive(x3, u, t+a3*dt)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := dyn.Derive(x4, u, t+a4*dt)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := dyn.Derive(x5, u, t+a5*dt)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := dyn.Derive(x6, u, t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := dyn.Derive(xNew, u, t+dt)

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := math.Abs(x[i]) + math.Abs(dt*k1[i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}

	return xNew, k7, errMax / tol
}

// StepAdaptive takes one step of size dt and returns the suggested size for
// the next step. The step is always accepted; callers wanting reject-and-retry
// semantics should use [RK45.SolveGrid].
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt, tol float64) (dynamo.State, float64, error) {
	k1 := dyn.Derive(x, u, t)
	xNew, _, errRatio := r.attempt(dyn, x, k1, u, t, dt, tol)

	var dtNew float64
	if errRatio > 1 {
		scale := math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
		dtNew = dt * scale
	} else {
		if errRatio > 0 {
			scale := math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
			dtNew = dt * scale
		} else {
			dtNew = dt * r.maxScale
		}
	}

	return xNew, dtNew, nil
}

// SolveGrid integrates from grid[0] to the last grid point with full
// accept/reject step control, evaluating the solution at every grid point by
// cubic Hermite dense output over each accepted step. The internal step
// sequence is chosen purely by the error estimator, so a discontinuous
// right-hand side shrinks steps around the discontinuity while the caller
// still receives its fixed grid.
func (r *RK45) SolveGrid(dyn dynamo.System, x0 dynamo.State, u dynamo.Control, grid []float64, tol float64) ([]dynamo.State, error) {
	if len(grid) == 0 {
		return nil, nil
	}

	out := make([]dynamo.State, len(grid))
	out[0] = x0.Clone()
	if len(grid) == 1 {
		return out, nil
	}

	t := grid[0]
	tEnd := grid[len(grid)-1]
	span := tEnd - t

	x := x0.Clone()
	k1 := dyn.Derive(x, u, t)
	dt := span * firstStepFraction
	minDt := span * minStepFraction
	next := 1

	for steps := 0; t < tEnd && next < len(grid); steps++ {
		if steps >= maxSolveSteps {
			return nil, &dynamo.SolveError{Step: steps, Time: t, Wrapped: dynamo.ErrStepBudget}
		}

		if t+dt > tEnd {
			dt = tEnd - t
		}

		xNew, k7, errRatio := r.attempt(dyn, x, k1, u, t, dt, tol)

		if errRatio > 1 {
			dt *= math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
			if dt < minDt {
				return nil, &dynamo.SolveError{Step: steps, Time: t, Wrapped: dynamo.ErrStepTooSmall}
			}
			continue
		}

		if !xNew.IsValid() {
			return nil, &dynamo.SolveError{Step: steps, Time: t, Wrapped: dynamo.ErrInvalidState}
		}

		for next < len(grid) {
			theta := (grid[next] - t) / dt
			if theta > 1+1e-9 {
				break
			}
			out[next] = hermite(x, xNew, k1, k7, dt, math.Min(theta, 1))
			next++
		}

		x = xNew
		k1 = k7
		t += dt

		if errRatio > 0 {
			dt *= math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
		} else {
			dt *= r.maxScale
		}
	}

	// Float slop can leave the final grid point unfilled; it coincides with
	// the final accepted state.
	for next < len(grid) {
		out[next] = x.Clone()
		next++
	}

	return out, nil
}

// hermite evaluates the cubic Hermite interpolant on a step [t, t+dt] at
// fraction theta, using the endpoint states and derivatives.
func hermite(x0, x1, d0, d1 dynamo.State, dt, theta float64) dynamo.State {
	t2 := theta * theta
	t3 := t2 * theta

	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + theta
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	out := make(dynamo.State, len(x0))
	for i := range x0 {
		out[i] = h00*x0[i] + h10*dt*d0[i] + h01*x1[i] + h11*dt*d1[i]
	}
	return out
}
