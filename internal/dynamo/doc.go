// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical integrator interface
//   - [DenseIntegrator]: adaptive integrator with dense output on a fixed grid
//
// # Example
//
//	dyn := model.NewBacterial(params)
//	integ := integrators.NewRK45()
//	states, err := integ.SolveGrid(dyn, dyn.DefaultState(), nil, grid, 1e-6)
//
// # Thread Safety
//
// Integrator instances are NOT thread-safe. Concurrent runs must each use
// their own integrator, which is how the sweep comparator does it.
package dynamo
