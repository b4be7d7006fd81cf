package integrators

import (
	"math"
	"testing"

	"bactsim/internal/dynamo"
)

func TestRK4_Accuracy(t *testing.T) {
	integrator := NewRK4()
	dyn := &decay{}
	x := dynamo.State{1.0}

	dt := 0.01
	for i := 0; i < 100; i++ {
		x = integrator.Step(dyn, x, nil, float64(i)*dt, dt)
	}

	exact := math.Exp(-1.0)
	if math.Abs(x[0]-exact) > 1e-8 {
		t.Errorf("expected %e, got %e", exact, x[0])
	}
}

func TestEuler_Converges(t *testing.T) {
	integrator := NewEuler()
	dyn := &decay{}
	x := dynamo.State{1.0}

	dt := 0.001
	for i := 0; i < 1000; i++ {
		x = integrator.Step(dyn, x, nil, float64(i)*dt, dt)
	}

	exact := math.Exp(-1.0)
	if math.Abs(x[0]-exact) > 1e-3 {
		t.Errorf("expected ~%e, got %e", exact, x[0])
	}
}
