package simplex

import "math"

const (
	defaultMaxIterations = 1000

	reflectCoeff  = 1.0
	expandCoeff   = 2.0
	contractCoeff = 0.5
	shrinkCoeff   = 0.5
)

// Objective evaluates a candidate parameter vector and returns the cost to
// minimize. The optimizer reuses the backing storage of x between
// evaluations, so implementations must not retain it.
type Objective func(x []float64) float64

// Recovery selects how out-of-bounds coordinates are brought back inside
// the box before an evaluation.
type Recovery int

const (
	// ClampToBounds clips a violating coordinate to the violated bound.
	ClampToBounds Recovery = iota
	// MidRangeRecenter resets a coordinate below Lower to (Lower+Upper)/3
	// and one above Upper to 2*(Lower+Upper)/3, keeping vertices off the
	// boundary so the simplex does not flatten against it.
	MidRangeRecenter
)

// Config holds the optimization parameters for [Minimize].
type Config struct {
	// Objective is the cost function. It must not be nil.
	Objective Objective
	// Lower and Upper bound every coordinate. Inverted bounds are swapped.
	Lower float64
	Upper float64
	// Recovery is the out-of-bounds policy, [ClampToBounds] by default.
	Recovery Recovery
	// Tolerance terminates the search once the population standard
	// deviation of all vertex values drops to it or below.
	Tolerance float64
	// MaxIterations caps the number of simplex moves. Default 1000.
	MaxIterations int
}

// Result holds the outcome of a [Minimize] call. The caller owns it
// exclusively; the optimizer keeps no state across calls.
type Result struct {
	// X is the best vertex found.
	X []float64
	// Value is the objective at X.
	Value float64
	// Iterations is the number of simplex moves performed.
	Iterations int
	// Converged reports whether the tolerance criterion was met within
	// MaxIterations.
	Converged bool
}

// Minimize runs a downhill-simplex search from the initial guess x0 and
// returns the best vertex found. It never fails: when the tolerance is
// not reached within MaxIterations the current best is returned with
// Converged false. An empty guess returns immediately with the objective
// evaluated on the empty vector.
//
// Each iteration recovers every vertex to the bounds, re-evaluates it,
// and then performs one reflect/expand/contract/shrink move with the
// classic coefficients 1, 2, and 0.5.
func Minimize(x0 []float64, cfg Config) Result {
	cfg = normalizeConfig(cfg)

	n := len(x0)
	if n == 0 {
		return Result{X: []float64{}, Value: cfg.Objective(nil), Converged: true}
	}

	// Vertex 0 is the guess; vertex i keeps only coordinate i-1 of it.
	vertices := make([][]float64, n+1)
	for i := range vertices {
		vertices[i] = make([]float64, n)
	}

	copy(vertices[0], x0)

	for i := 1; i <= n; i++ {
		vertices[i][i-1] = x0[i-1]
	}

	values := make([]float64, n+1)
	centroid := make([]float64, n)
	reflected := make([]float64, n)
	trial := make([]float64, n)

	iterations := 0
	converged := false

	for {
		for i := range vertices {
			recoverBounds(vertices[i], cfg)
			values[i] = cfg.Objective(vertices[i])
		}

		if populationStdDev(values) <= cfg.Tolerance {
			converged = true
			break
		}

		if iterations >= cfg.MaxIterations {
			break
		}

		iterations++
		moveSimplex(vertices, values, centroid, reflected, trial, cfg)
	}

	best, _ := extremes(values)

	out := make([]float64, n)
	copy(out, vertices[best])

	return Result{X: out, Value: values[best], Iterations: iterations, Converged: converged}
}

// moveSimplex performs one Nelder-Mead move: reflect the worst vertex
// through the centroid of the others, then expand, accept, or contract,
// shrinking the whole simplex toward the best vertex when even the
// contraction is worse than the worst value.
func moveSimplex(vertices [][]float64, values []float64, centroid, reflected, trial []float64, cfg Config) {
	best, worst := extremes(values)

	for j := range centroid {
		centroid[j] = 0
	}

	for i, v := range vertices {
		if i == worst {
			continue
		}

		for j := range centroid {
			centroid[j] += v[j]
		}
	}

	inv := 1 / float64(len(vertices)-1)
	for j := range centroid {
		centroid[j] *= inv
	}

	for j := range reflected {
		reflected[j] = centroid[j] + reflectCoeff*(centroid[j]-vertices[worst][j])
	}

	recoverBounds(reflected, cfg)
	fr := cfg.Objective(reflected)

	switch {
	case fr < values[best]:
		// The reflection leads; try doubling down in the same direction.
		for j := range trial {
			trial[j] = centroid[j] + expandCoeff*(reflected[j]-centroid[j])
		}

		recoverBounds(trial, cfg)

		fe := cfg.Objective(trial)
		if fe < fr {
			copy(vertices[worst], trial)
			values[worst] = fe
		} else {
			copy(vertices[worst], reflected)
			values[worst] = fr
		}

	case fr >= secondWorstValue(values, worst):
		// The reflection is at least as bad as some surviving vertex.
		// Accept it first when it still improves the worst, then pull
		// the worst vertex halfway in toward the centroid.
		if fr < values[worst] {
			copy(vertices[worst], reflected)
			values[worst] = fr
		}

		for j := range trial {
			trial[j] = centroid[j] + contractCoeff*(vertices[worst][j]-centroid[j])
		}

		recoverBounds(trial, cfg)

		fc := cfg.Objective(trial)
		if fc > values[worst] {
			shrink(vertices, best, cfg)
		} else {
			copy(vertices[worst], trial)
			values[worst] = fc
		}

	default:
		copy(vertices[worst], reflected)
		values[worst] = fr
	}
}

// shrink pulls every vertex except the best halfway toward the best one.
// Values are left stale; the caller re-evaluates all vertices before the
// next move.
func shrink(vertices [][]float64, best int, cfg Config) {
	for i, v := range vertices {
		if i == best {
			continue
		}

		for j := range v {
			v[j] = vertices[best][j] + shrinkCoeff*(v[j]-vertices[best][j])
		}

		recoverBounds(v, cfg)
	}
}

// recoverBounds brings every coordinate of x back inside the box
// according to the configured policy. In-bounds coordinates are left
// untouched, so the operation is idempotent.
func recoverBounds(x []float64, cfg Config) {
	for j, v := range x {
		if v >= cfg.Lower && v <= cfg.Upper {
			continue
		}

		if cfg.Recovery == MidRangeRecenter {
			if v < cfg.Lower {
				x[j] = (cfg.Lower + cfg.Upper) / 3
			} else {
				x[j] = 2 * (cfg.Lower + cfg.Upper) / 3
			}

			continue
		}

		if v < cfg.Lower {
			x[j] = cfg.Lower
		} else {
			x[j] = cfg.Upper
		}
	}
}

// extremes returns the indices of the lowest and highest objective
// values. Ties resolve to the lowest index.
func extremes(values []float64) (best, worst int) {
	for i, v := range values {
		if v < values[best] {
			best = i
		}

		if v > values[worst] {
			worst = i
		}
	}

	return best, worst
}

// secondWorstValue returns the highest objective value among all vertices
// except the worst one.
func secondWorstValue(values []float64, worst int) float64 {
	second := math.Inf(-1)

	for i, v := range values {
		if i == worst {
			continue
		}

		if v > second {
			second = v
		}
	}

	return second
}

// populationStdDev returns the population standard deviation of values.
func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}

	mean /= float64(len(values))

	sum := 0.0

	for _, v := range values {
		d := v - mean
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(values)))
}

func normalizeConfig(cfg Config) Config {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}

	if cfg.Tolerance < 0 {
		cfg.Tolerance = 0
	}

	if cfg.Upper < cfg.Lower {
		cfg.Lower, cfg.Upper = cfg.Upper, cfg.Lower
	}

	return cfg
}
