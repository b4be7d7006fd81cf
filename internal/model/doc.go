// Package model defines the hybrid ODE describing bacterial growth under
// stress damage.
//
// The model is two-dimensional: accumulated damage y relaxes toward an
// equilibrium set by the external concentration, and bacterial density x
// follows logistic growth that is switched off whenever damage sits at or
// above the threshold. The right-hand side is therefore discontinuous in y,
// which is why the solver side insists on adaptive stepping.
package model
