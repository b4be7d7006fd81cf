// Package sim is the simulation engine: it turns a parameter set into a
// fixed-grid trajectory, extracts crash times, and compares runs that differ
// in one parameter.
//
// Every entry point is a pure batch computation over its inputs. There is no
// shared state between runs, which is what lets [Compare] execute its two
// runs on separate goroutines with only a join.
package sim
