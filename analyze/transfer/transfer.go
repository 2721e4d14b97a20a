// Package transfer models excitation energy flow along a linear
// donor→…→acceptor chromophore chain.
//
// Each chromophore receives excitation directly, in proportion to its
// absorption weight, and indirectly as carry-over from upstream transfer.
// For a transfer vector T the chain evaluates, in order,
//
//	Q'_i  = (fracE_i + carry) · QY_i · (1 − T_i)
//	carry = (carry + fracE_i) · T_i
//
// where fracE normalizes the absorption weights against their sum.
// [Forward] evaluates the chain for a known T; [Fit] recovers T from the
// measured emission of the mixture, optimizing over [0,1] with mid-range
// bounds recovery.
package transfer

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

// Errors returned by Forward and Fit.
var (
	ErrTooFewSpectra   = errors.New("transfer: need at least 2 emission spectra")
	ErrNoWavelengths   = errors.New("transfer: no usable analysis wavelengths")
	ErrUnknownSpectrum = errors.New("transfer: component references unknown spectrum")
	ErrNotEmission     = errors.New("transfer: spectrum is not emission kind")
	ErrTransferCount   = errors.New("transfer: transfer count differs from component count")
)

const defaultTolerance = 1e-9

// Component is one chromophore in the chain, in donor-to-acceptor order.
type Component struct {
	// SpectrumID keys the component's emission spectrum in the spectra
	// map passed to Fit. Forward evaluation does not resolve spectra.
	SpectrumID string
	// AbsorptionWeight is the component's direct-excitation share before
	// normalization against the chain's total.
	AbsorptionWeight float64
	// QuantumYield of the chromophore. A missing yield is 0: the
	// component emits nothing but still carries excitation downstream.
	QuantumYield float64
	// Guess seeds the fitted transfer efficiency in reverse mode. A zero
	// guess holds that transfer at zero for the whole search.
	Guess float64
}

// Yield is the per-component outcome of a chain evaluation.
type Yield struct {
	// Transfer is the efficiency T_i passed to or recovered by the
	// evaluation.
	Transfer float64
	// QuantumYield is the effective emission share Q'_i.
	QuantumYield float64
}

// ForwardResult holds the chain evaluation for a known transfer vector.
type ForwardResult struct {
	Yields  []Yield
	TotalQY float64
}

// Config holds the reverse-fit parameters.
type Config struct {
	// Wavelengths are the analysis wavelengths. Non-finite and duplicate
	// entries are dropped, as are wavelengths outside the composite's
	// sampled extent; at least one must survive.
	Wavelengths []float64
	// PinLastTransfer fixes the terminal component's transfer at 0: a
	// final acceptor passes nothing on. It overrides that component's
	// guess.
	PinLastTransfer bool
	// Tolerance is the base convergence tolerance, rescaled by the
	// composite's largest normalized intensity magnitude. Defaults to
	// 1e-9.
	Tolerance float64
	// MaxIterations caps the simplex search. Defaults to 1000.
	MaxIterations int
}

// Validate reports whether the configuration can drive a fit at all.
func (cfg Config) Validate() error {
	if len(cfg.Wavelengths) == 0 {
		return ErrNoWavelengths
	}

	return nil
}

// Result holds the fitted transfer chain and the fit diagnostics.
type Result struct {
	// Yields holds the fitted transfer and derived quantum yield per
	// component, in input order.
	Yields []Yield
	// TotalQY is the sum of the per-component quantum yields.
	TotalQY float64
	// Stats carries lsq, R² and the per-wavelength residuals of the
	// best vertex.
	Stats residual.Stats
	// Iterations and Converged mirror the optimizer's termination state.
	Iterations int
	Converged  bool
}

// Forward evaluates the chain for a known transfer vector. transfers must
// hold one efficiency per component.
func Forward(components []Component, transfers []float64) (ForwardResult, error) {
	if len(transfers) != len(components) {
		return ForwardResult{}, fmt.Errorf("%w: %d transfers for %d components",
			ErrTransferCount, len(transfers), len(components))
	}

	fractions := excitationFractions(components)
	yields := make([]Yield, len(components))
	total := evaluateChain(yields, fractions, components, transfers)

	return ForwardResult{Yields: yields, TotalQY: total}, nil
}

// Fit recovers the transfer vector from the measured composite emission.
//
// Every component must resolve its emission spectrum through spectra by id;
// a failed lookup reports [ErrUnknownSpectrum] since it indicates corrupt
// caller-side data, not a poor fit.
func Fit(composite series.Series, components []Component, spectra map[string]series.Series, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	if len(components) < 2 {
		return Result{}, fmt.Errorf("%w: got %d", ErrTooFewSpectra, len(components))
	}

	if composite.Kind != series.Emission {
		return Result{}, fmt.Errorf("%w: composite is %v", ErrNotEmission, composite.Kind)
	}

	resolved := make([]series.Series, len(components))
	for i, comp := range components {
		s, ok := spectra[comp.SpectrumID]
		if !ok {
			return Result{}, fmt.Errorf("%w: %q", ErrUnknownSpectrum, comp.SpectrumID)
		}

		if s.Kind != series.Emission {
			return Result{}, fmt.Errorf("%w: %q is %v", ErrNotEmission, comp.SpectrumID, s.Kind)
		}

		resolved[i] = s.SortedAscending()
	}

	sortedComposite := composite.SortedAscending()

	wavelengths := filterWavelengths(cfg.Wavelengths, sortedComposite.Extent())
	if len(wavelengths) == 0 {
		return Result{}, fmt.Errorf("%w: none inside the composite extent", ErrNoWavelengths)
	}

	experimental := normalizedGrid(sortedComposite, wavelengths)

	grids := make([][]float64, len(components))
	guesses := make([]float64, len(components))
	for i := range components {
		grids[i] = normalizedGrid(resolved[i], wavelengths)
		guesses[i] = components[i].Guess
	}

	if cfg.PinLastTransfer {
		guesses[len(guesses)-1] = 0
	}

	tolerance := cfg.Tolerance
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}

	if peak := vecmath.MaxAbs(experimental); peak > 0 {
		tolerance *= peak
	}

	fractions := excitationFractions(components)

	n := len(wavelengths)
	model := make([]float64, n)
	scaled := make([]float64, n)
	resid := make([]float64, n)
	yields := make([]Yield, len(components))

	negExperimental := make([]float64, n)
	vecmath.ScaleBlock(negExperimental, experimental, -1)

	objective := func(t []float64) float64 {
		evaluateChain(yields, fractions, components, t)

		vecmath.ScaleBlock(model, grids[0], yields[0].QuantumYield)
		for j := 1; j < len(grids); j++ {
			vecmath.ScaleBlock(scaled, grids[j], yields[j].QuantumYield)
			vecmath.AddBlockInPlace(model, scaled)
		}

		vecmath.AddMulBlock(resid, model, negExperimental, 1)

		return residual.Norm(resid)
	}

	res := simplex.Minimize(guesses, simplex.Config{
		Objective:     objective,
		Lower:         0,
		Upper:         1,
		Recovery:      simplex.MidRangeRecenter,
		Tolerance:     tolerance,
		MaxIterations: cfg.MaxIterations,
	})

	out := Result{
		Yields:     make([]Yield, len(components)),
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}
	out.TotalQY = evaluateChain(out.Yields, fractions, components, res.X)

	calculated := make([]float64, n)
	vecmath.ScaleBlock(calculated, grids[0], out.Yields[0].QuantumYield)
	for j := 1; j < len(grids); j++ {
		vecmath.ScaleBlock(scaled, grids[j], out.Yields[j].QuantumYield)
		vecmath.AddBlockInPlace(calculated, scaled)
	}
	out.Stats = residual.Evaluate(wavelengths, calculated, experimental)

	return out, nil
}

// evaluateChain fills yields for the transfer vector t and returns the
// total quantum yield.
func evaluateChain(yields []Yield, fractions []float64, components []Component, t []float64) float64 {
	carry := 0.0
	total := 0.0

	for i := range components {
		q := (fractions[i] + carry) * components[i].QuantumYield * (1 - t[i])
		carry = (carry + fractions[i]) * t[i]

		yields[i] = Yield{Transfer: t[i], QuantumYield: q}
		total += q
	}

	return total
}

// excitationFractions normalizes the absorption weights against their sum.
// A non-positive sum zeroes every fraction instead of dividing by it.
func excitationFractions(components []Component) []float64 {
	fractions := make([]float64, len(components))

	sum := 0.0
	for _, comp := range components {
		sum += comp.AbsorptionWeight
	}

	if sum <= 0 {
		return fractions
	}

	for i, comp := range components {
		fractions[i] = comp.AbsorptionWeight / sum
	}

	return fractions
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
