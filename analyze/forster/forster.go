// Package forster computes Förster resonance energy transfer quantities
// from a donor emission and an acceptor absorption spectrum.
//
// The overlap integral J is evaluated trapezoidally on the donor emission
// samples inside the analysis window, with the donor emission normalized
// by its own wavenumber-domain area over the same window and the acceptor
// absorption rescaled to molar units through an anchor (λ*, ε*) pair. From
// J follow the Förster radius R₀, the transfer efficiency at the given
// donor-acceptor distance and the transfer rate constant.
package forster

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-spectra/spectral/series"
)

// Errors returned by Analyze.
var (
	ErrWindow           = errors.New("forster: window low must be below high")
	ErrRefractiveIndex  = errors.New("forster: refractive index must be positive")
	ErrDistance         = errors.New("forster: distance must be positive")
	ErrLifetime         = errors.New("forster: donor lifetime must be positive")
	ErrOrientation      = errors.New("forster: orientation factor must not be negative")
	ErrQuantumYield     = errors.New("forster: quantum yield must not be negative")
	ErrAnchorEpsilon    = errors.New("forster: anchor epsilon must be positive")
	ErrKind             = errors.New("forster: spectra kinds must be emission and absorption")
	ErrTooFewSamples    = errors.New("forster: spectra need at least 2 samples")
	ErrAnchorAbsorbance = errors.New("forster: absorbance at the anchor wavelength must be positive")
	ErrNoOverlap        = errors.New("forster: no donor emission inside the window")
)

// forsterFactor converts J·κ²·Φ_D/n⁴ into R₀⁶ in Å⁶ for J in M⁻¹cm⁻¹nm⁴.
const forsterFactor = 8.79e-5

// Config holds the transfer parameters.
type Config struct {
	// Window bounds the overlap integration.
	Window series.Window
	// Orientation is the dipole orientation factor κ².
	Orientation float64
	// DonorQuantumYield is Φ_D in the absence of the acceptor.
	DonorQuantumYield float64
	// RefractiveIndex of the medium.
	RefractiveIndex float64
	// DonorLifetime is τ_D in ns.
	DonorLifetime float64
	// Distance is the donor-acceptor separation r in Å.
	Distance float64
	// AnchorWavelength and AnchorEpsilon rescale the acceptor absorption
	// into molar units: ε(λ) = A(λ)·AnchorEpsilon/A(AnchorWavelength).
	AnchorWavelength float64
	AnchorEpsilon    float64
}

// Validate checks the parameters that the evaluation divides by.
func (cfg Config) Validate() error {
	switch {
	case !cfg.Window.Valid():
		return fmt.Errorf("%w: [%v, %v]", ErrWindow, cfg.Window.Low, cfg.Window.High)
	case cfg.RefractiveIndex <= 0:
		return fmt.Errorf("%w: got %v", ErrRefractiveIndex, cfg.RefractiveIndex)
	case cfg.Distance <= 0:
		return fmt.Errorf("%w: got %v", ErrDistance, cfg.Distance)
	case cfg.DonorLifetime <= 0:
		return fmt.Errorf("%w: got %v", ErrLifetime, cfg.DonorLifetime)
	case cfg.Orientation < 0:
		return fmt.Errorf("%w: got %v", ErrOrientation, cfg.Orientation)
	case cfg.DonorQuantumYield < 0:
		return fmt.Errorf("%w: got %v", ErrQuantumYield, cfg.DonorQuantumYield)
	case cfg.AnchorEpsilon <= 0:
		return fmt.Errorf("%w: got %v", ErrAnchorEpsilon, cfg.AnchorEpsilon)
	default:
		return nil
	}
}

// Result holds the derived transfer quantities.
type Result struct {
	// OverlapIntegral is J in M⁻¹cm⁻¹nm⁴.
	OverlapIntegral float64
	// R0 is the Förster radius in Å.
	R0 float64
	// Efficiency is the transfer efficiency at the configured distance,
	// in percent.
	Efficiency float64
	// RateConstant is k_T in s⁻¹.
	RateConstant float64
}

// Analyze computes the overlap integral and the derived Förster
// quantities for the given donor emission and acceptor absorption.
func Analyze(donor, acceptor series.Series, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	if donor.Kind != series.Emission || acceptor.Kind != series.Absorption {
		return Result{}, fmt.Errorf("%w: got %v and %v", ErrKind, donor.Kind, acceptor.Kind)
	}

	if donor.Len() < 2 || acceptor.Len() < 2 {
		return Result{}, fmt.Errorf("%w: got %d and %d", ErrTooFewSamples, donor.Len(), acceptor.Len())
	}

	sortedDonor := donor.SortedAscending()
	sortedAcceptor := acceptor.SortedAscending()

	anchor := sortedAcceptor.ValueAt(cfg.AnchorWavelength)
	if anchor <= 0 {
		return Result{}, fmt.Errorf("%w: got %v at %v nm", ErrAnchorAbsorbance, anchor, cfg.AnchorWavelength)
	}

	epsilonScale := cfg.AnchorEpsilon / anchor

	donorArea := sortedDonor.AreaIn(series.DomainWavenumber, cfg.Window)
	if donorArea <= 0 {
		return Result{}, fmt.Errorf("%w: wavenumber-domain area %v", ErrNoOverlap, donorArea)
	}

	overlap := 0.0
	sortedDonor.EachSegment(cfg.Window, func(a, b series.Sample) {
		ya := overlapIntegrand(a, sortedAcceptor, donorArea, epsilonScale)
		yb := overlapIntegrand(b, sortedAcceptor, donorArea, epsilonScale)
		overlap += 1e7 * math.Abs(b.Wavelength-a.Wavelength) * (ya + yb) / 2
	})

	r0six := forsterFactor * overlap * cfg.Orientation * cfg.DonorQuantumYield /
		math.Pow(cfg.RefractiveIndex, 4)
	r6 := math.Pow(cfg.Distance, 6)

	return Result{
		OverlapIntegral: overlap,
		R0:              math.Pow(r0six, 1.0/6),
		Efficiency:      100 * r0six / (r0six + r6),
		RateConstant:    1e9 * r0six / (r6 * cfg.DonorLifetime),
	}, nil
}

// overlapIntegrand evaluates f(λ)·ε(λ)/ν⁴ at one donor sample.
func overlapIntegrand(smp series.Sample, acceptor series.Series, donorArea, epsilonScale float64) float64 {
	nu := series.Wavenumber(smp.Wavelength)
	f := smp.Intensity / donorArea
	eps := acceptor.ValueAt(smp.Wavelength) * epsilonScale

	return f * eps / (nu * nu * nu * nu)
}
