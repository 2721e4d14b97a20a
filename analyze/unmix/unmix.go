// Package unmix decomposes a composite spectrum into linear fractions of
// known component spectra.
//
// The fit works on min-max normalized values: for a trial fraction vector
// c the model at an analysis wavelength is Σ c_j · component_j and the
// objective is the Euclidean distance to the normalized composite. The
// fractions are searched inside [0, 10000] with hard bounds clamping; the
// fit never fails once its preconditions hold, and callers judge quality
// from the returned [stats/residual.Stats].
//
// # Usage
//
//	res, err := unmix.Fit(composite, []unmix.Component{
//		{Spectrum: a, Concentration: 1e-6, Guess: 0.5},
//		{Spectrum: b, Concentration: 1e-6, Guess: 0.5},
//	}, unmix.Config{Wavelengths: wavelengths})
package unmix

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-spectra/fit/simplex"
	"github.com/cwbudde/algo-spectra/spectral/series"
	"github.com/cwbudde/algo-spectra/stats/residual"
)

// Errors returned by Fit.
var (
	ErrTooFewComponents  = errors.New("unmix: need at least 2 component spectra")
	ErrKindMismatch      = errors.New("unmix: component kind differs from composite kind")
	ErrTooFewWavelengths = errors.New("unmix: need more analysis wavelengths than components")
)

const (
	defaultTolerance = 1e-9

	// Fractions are fitted inside [0, fractionBound] with hard clamping.
	fractionBound = 10000.0
)

// Component pairs a reference spectrum with its mixing metadata.
type Component struct {
	// Spectrum is the pure compound's reference series. Its kind must
	// match the composite's.
	Spectrum series.Series
	// Concentration scales the fitted fraction into the reported
	// concentration.
	Concentration float64
	// Guess seeds the optimizer. Out-of-range guesses are allowed; the
	// first bounds recovery clamps them.
	Guess float64
}

// Config holds the fit parameters.
type Config struct {
	// Wavelengths are the analysis wavelengths. Non-finite and duplicate
	// entries are dropped, as are wavelengths outside the composite's
	// sampled extent; the survivors must outnumber the components.
	Wavelengths []float64
	// Tolerance is the base convergence tolerance, rescaled by the
	// composite's peak normalized value. Defaults to 1e-9.
	Tolerance float64
	// MaxIterations caps the simplex search. Defaults to 1000.
	MaxIterations int
}

// ComponentFit is the fitted share of one component.
type ComponentFit struct {
	// Fraction is the fitted linear weight.
	Fraction float64
	// Concentration is Fraction times the supplied concentration.
	Concentration float64
}

// Result holds the fitted fractions and the fit diagnostics.
type Result struct {
	// Components holds one entry per input component, in input order.
	Components []ComponentFit
	// Stats carries lsq, R² and the per-wavelength residuals of the
	// best vertex.
	Stats residual.Stats
	// Iterations and Converged mirror the optimizer's termination state.
	// A capped, non-converged fit still reports its best vertex.
	Iterations int
	Converged  bool
}

// Fit decomposes the composite spectrum into fractions of the given
// components at the configured analysis wavelengths.
func Fit(composite series.Series, components []Component, cfg Config) (Result, error) {
	if len(components) < 2 {
		return Result{}, fmt.Errorf("%w: got %d", ErrTooFewComponents, len(components))
	}

	for i, comp := range components {
		if comp.Spectrum.Kind != composite.Kind {
			return Result{}, fmt.Errorf("%w: component %d is %v, composite is %v",
				ErrKindMismatch, i, comp.Spectrum.Kind, composite.Kind)
		}
	}

	sortedComposite := composite.SortedAscending()

	wavelengths := filterWavelengths(cfg.Wavelengths, sortedComposite.Extent())
	if len(wavelengths) <= len(components) {
		return Result{}, fmt.Errorf("%w: %d wavelengths for %d components",
			ErrTooFewWavelengths, len(wavelengths), len(components))
	}

	experimental := normalizedGrid(sortedComposite, wavelengths)

	grids := make([][]float64, len(components))
	guesses := make([]float64, len(components))
	for j, comp := range components {
		grids[j] = normalizedGrid(comp.Spectrum.SortedAscending(), wavelengths)
		guesses[j] = comp.Guess
	}

	tolerance := cfg.Tolerance
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}
	tolerance = scaleTolerance(tolerance, vecmath.MaxAbs(experimental))

	n := len(wavelengths)
	model := make([]float64, n)
	scaled := make([]float64, n)
	resid := make([]float64, n)

	negExperimental := make([]float64, n)
	vecmath.ScaleBlock(negExperimental, experimental, -1)

	objective := func(x []float64) float64 {
		accumulateModel(model, scaled, grids, x)
		vecmath.AddMulBlock(resid, model, negExperimental, 1)

		return residual.Norm(resid)
	}

	res := simplex.Minimize(guesses, simplex.Config{
		Objective:     objective,
		Lower:         0,
		Upper:         fractionBound,
		Recovery:      simplex.ClampToBounds,
		Tolerance:     tolerance,
		MaxIterations: cfg.MaxIterations,
	})

	calculated := make([]float64, n)
	accumulateModel(calculated, scaled, grids, res.X)

	out := Result{
		Components: make([]ComponentFit, len(components)),
		Stats:      residual.Evaluate(wavelengths, calculated, experimental),
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}
	for j := range out.Components {
		out.Components[j] = ComponentFit{
			Fraction:      res.X[j],
			Concentration: res.X[j] * components[j].Concentration,
		}
	}

	return out, nil
}

// accumulateModel writes Σ x_j·grids_j into model, using scaled as scratch.
func accumulateModel(model, scaled []float64, grids [][]float64, x []float64) {
	vecmath.ScaleBlock(model, grids[0], x[0])
	for j := 1; j < len(grids); j++ {
		vecmath.ScaleBlock(scaled, grids[j], x[j])
		vecmath.AddBlockInPlace(model, scaled)
	}
}

// scaleTolerance rescales the base tolerance by the composite's peak
// normalized value so convergence is scale-invariant: shrink for peaks
// above 1, tighten proportionally below, unchanged for an all-zero grid.
func scaleTolerance(base, peak float64) float64 {
	switch {
	case peak > 1:
		return base / peak
	case peak > 0:
		return base * peak
	default:
		return base
	}
}

// filterWavelengths drops non-finite and duplicate wavelengths plus those
// outside extent, returning the survivors in ascending order.
func filterWavelengths(wavelengths []float64, extent series.Window) []float64 {
	out := make([]float64, 0, len(wavelengths))
	for _, w := range wavelengths {
		if math.IsNaN(w) || math.IsInf(w, 0) || !extent.Contains(w) {
			continue
		}

		out = append(out, w)
	}

	sort.Float64s(out)

	dedup := out[:0]
	for i, w := range out {
		if i > 0 && w == out[i-1] {
			continue
		}

		dedup = append(dedup, w)
	}

	return dedup
}

// normalizedGrid samples the series' normalized value at each wavelength,
// with the min-max range hoisted out of the loop.
func normalizedGrid(sorted series.Series, wavelengths []float64) []float64 {
	out := make([]float64, len(wavelengths))

	n := sorted.Len()
	if n == 0 {
		return out
	}

	lo, hi := sorted.ValueRange()
	extent := sorted.Extent()

	for i, w := range wavelengths {
		if n > 1 && !extent.Contains(w) {
			continue
		}

		if hi == lo {
			out[i] = 0.5
			continue
		}

		out[i] = (sorted.ValueAt(w) - lo) / (hi - lo)
	}

	return out
}
