package simplex

import (
	"math"
	"testing"
)

func quadratic(tx, ty float64) Objective {
	return func(x []float64) float64 {
		dx := x[0] - tx
		dy := x[1] - ty
		return dx*dx + dy*dy
	}
}

func TestMinimizeEmptyGuess(t *testing.T) {
	called := false
	res := Minimize(nil, Config{
		Objective: func(x []float64) float64 {
			called = true
			if len(x) != 0 {
				t.Fatalf("objective received %d coordinates, want 0", len(x))
			}
			return 7
		},
	})

	if !called {
		t.Fatal("objective was not evaluated")
	}

	if len(res.X) != 0 || res.Value != 7 || !res.Converged || res.Iterations != 0 {
		t.Fatalf("unexpected result for empty guess: %+v", res)
	}
}

func TestMinimizeQuadratic(t *testing.T) {
	res := Minimize([]float64{1, 1}, Config{
		Objective: quadratic(3, 5),
		Lower:     0,
		Upper:     10000,
		Recovery:  ClampToBounds,
		Tolerance: 1e-12,
	})

	if !res.Converged {
		t.Fatalf("did not converge: %+v", res)
	}

	if math.Abs(res.X[0]-3) > 1e-3 || math.Abs(res.X[1]-5) > 1e-3 {
		t.Fatalf("minimum = %v, want near [3 5]", res.X)
	}

	if res.Value > 1e-6 {
		t.Fatalf("objective at minimum = %v, want near 0", res.Value)
	}
}

func TestMinimizeMonotonicImprovement(t *testing.T) {
	prev := math.Inf(1)

	for limit := 1; limit <= 40; limit++ {
		res := Minimize([]float64{1, 1}, Config{
			Objective:     quadratic(3, 5),
			Lower:         0,
			Upper:         100,
			Tolerance:     0,
			MaxIterations: limit,
		})

		// Runs share their prefix of moves, so the best value may never
		// regress as the iteration cap grows.
		if res.Value > prev {
			t.Fatalf("best value regressed at cap %d: %v > %v", limit, res.Value, prev)
		}

		prev = res.Value
	}
}

func TestMinimizeBoundsRespectedClamp(t *testing.T) {
	res := Minimize([]float64{5, 5}, Config{
		Objective: quadratic(20, 20),
		Lower:     0,
		Upper:     10,
		Recovery:  ClampToBounds,
		Tolerance: 1e-12,
	})

	for i, v := range res.X {
		if v < 0 || v > 10 {
			t.Fatalf("coordinate %d = %v outside [0, 10]", i, v)
		}
	}

	// The unconstrained minimum lies outside the box, so the fit should
	// press against the upper bound.
	if math.Abs(res.X[0]-10) > 1e-3 || math.Abs(res.X[1]-10) > 1e-3 {
		t.Fatalf("minimum = %v, want near [10 10]", res.X)
	}
}

func TestMinimizeBoundsRespectedMidRange(t *testing.T) {
	res := Minimize([]float64{0.4, 0.4}, Config{
		Objective: quadratic(2, 2),
		Lower:     0,
		Upper:     1,
		Recovery:  MidRangeRecenter,
		Tolerance: 1e-12,
	})

	for i, v := range res.X {
		if v < 0 || v > 1 {
			t.Fatalf("coordinate %d = %v outside [0, 1]", i, v)
		}
	}

	start := quadratic(2, 2)([]float64{0.4, 0.4})
	if res.Value > start {
		t.Fatalf("no improvement over the guess: %v > %v", res.Value, start)
	}
}

func TestMinimizeCornerMinimum(t *testing.T) {
	res := Minimize([]float64{5, 5}, Config{
		Objective: quadratic(-5, -5),
		Lower:     0,
		Upper:     10,
		Recovery:  ClampToBounds,
		Tolerance: 1e-12,
	})

	if math.Abs(res.X[0]) > 1e-3 || math.Abs(res.X[1]) > 1e-3 {
		t.Fatalf("minimum = %v, want near [0 0]", res.X)
	}
}

func TestMinimizeSingleVariableReturnsGuess(t *testing.T) {
	// With one unknown both initial vertices coincide, the value spread
	// is zero, and the search terminates on the guess itself.
	res := Minimize([]float64{5}, Config{
		Objective: func(x []float64) float64 {
			d := x[0] - 2
			return d * d
		},
		Lower: 0,
		Upper: 10,
	})

	if res.X[0] != 5 || res.Iterations != 0 || !res.Converged {
		t.Fatalf("unexpected result for single unknown: %+v", res)
	}
}

func TestMinimizeZeroGuessComponentStaysPinned(t *testing.T) {
	res := Minimize([]float64{0, 1}, Config{
		Objective: quadratic(1, 1),
		Lower:     -10,
		Upper:     10,
		Tolerance: 1e-12,
	})

	if res.X[0] != 0 {
		t.Fatalf("zeroed guess coordinate moved to %v, want 0", res.X[0])
	}

	if math.Abs(res.X[1]-1) > 1e-3 {
		t.Fatalf("free coordinate = %v, want near 1", res.X[1])
	}
}

func TestMinimizeConvergedFlagAtCap(t *testing.T) {
	res := Minimize([]float64{1, 1}, Config{
		Objective:     quadratic(3, 5),
		Lower:         0,
		Upper:         100,
		Tolerance:     0,
		MaxIterations: 3,
	})

	if res.Converged {
		t.Fatal("expected Converged=false at the iteration cap")
	}

	if res.Iterations != 3 {
		t.Fatalf("Iterations = %d, want 3", res.Iterations)
	}
}

func TestMinimizeInvertedBoundsSwapped(t *testing.T) {
	res := Minimize([]float64{1, 1}, Config{
		Objective: quadratic(3, 5),
		Lower:     10000,
		Upper:     0,
		Tolerance: 1e-12,
	})

	if math.Abs(res.X[0]-3) > 1e-3 || math.Abs(res.X[1]-5) > 1e-3 {
		t.Fatalf("minimum = %v, want near [3 5]", res.X)
	}
}

func TestRecoverBoundsClamp(t *testing.T) {
	x := []float64{-1, 0.5, 2}
	recoverBounds(x, Config{Lower: 0, Upper: 1, Recovery: ClampToBounds})

	want := []float64{0, 0.5, 1}
	for i := range x {
		if x[i] != want[i] {
			t.Fatalf("x[%d] = %v, want %v", i, x[i], want[i])
		}
	}
}

func TestRecoverBoundsMidRange(t *testing.T) {
	x := []float64{-1, 0.5, 2}
	recoverBounds(x, Config{Lower: 0, Upper: 1, Recovery: MidRangeRecenter})

	want := []float64{1.0 / 3, 0.5, 2.0 / 3}
	for i := range x {
		if math.Abs(x[i]-want[i]) > 1e-15 {
			t.Fatalf("x[%d] = %v, want %v", i, x[i], want[i])
		}
	}
}

func TestPopulationStdDev(t *testing.T) {
	if got := populationStdDev([]float64{4, 4, 4}); got != 0 {
		t.Fatalf("stddev of constant values = %v, want 0", got)
	}

	// Population formula: sqrt(((2-3)^2 + (4-3)^2) / 2) = 1.
	if got := populationStdDev([]float64{2, 4}); math.Abs(got-1) > 1e-15 {
		t.Fatalf("stddev = %v, want 1", got)
	}
}

func TestExtremes(t *testing.T) {
	best, worst := extremes([]float64{3, 1, 5, 2})
	if best != 1 || worst != 2 {
		t.Fatalf("extremes = (%d, %d), want (1, 2)", best, worst)
	}

	best, worst = extremes([]float64{2, 2, 2})
	if best != 0 || worst != 0 {
		t.Fatalf("tie extremes = (%d, %d), want (0, 0)", best, worst)
	}
}
