package integrators

import (
	"fmt"

	"bactsim/internal/dynamo"
)

// ByName returns a fresh integrator for a name used in configs and CLI flags.
func ByName(name string) (dynamo.Integrator, error) {
	switch name {
	case "euler":
		return NewEuler(), nil
	case "rk4":
		return NewRK4(), nil
	case "rk45", "":
		return NewRK45(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}
