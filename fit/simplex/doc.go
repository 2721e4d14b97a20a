// Package simplex implements a box-constrained downhill-simplex
// (Nelder-Mead) minimizer for low-dimensional spectral fitting problems.
//
// [Minimize] is a pure function: each call builds its own simplex from the
// initial guess and discards it on return, so concurrent fits need no
// synchronization. The optimizer never fails; it always reports the best
// vertex found, and callers judge fit quality from residual diagnostics
// afterwards.
//
// Every trial point is brought back inside [Config.Lower, Config.Upper]
// before evaluation using one of two [Recovery] policies: [ClampToBounds]
// clips to the violated bound, [MidRangeRecenter] resets to one third or
// two thirds of the bound sum so vertices do not pile up on the boundary.
//
// The initial simplex is deliberately non-standard: vertex 0 is the guess
// itself, and vertex i keeps only coordinate i-1 of the guess with every
// other coordinate zeroed. A guess with zero components therefore spans a
// degenerate simplex in those coordinates and they stay pinned at zero;
// with a single unknown the two vertices coincide and the search returns
// the guess unchanged.
//
// # Usage
//
//	res := simplex.Minimize([]float64{1, 1}, simplex.Config{
//	    Objective: cost,
//	    Lower:     0,
//	    Upper:     10000,
//	    Recovery:  simplex.ClampToBounds,
//	    Tolerance: 1e-9,
//	})
package simplex
