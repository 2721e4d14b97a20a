// Package lifetime estimates radiative rates and natural fluorescence
// lifetimes from a compound's absorption and emission spectra using the
// Strickler-Berg relation.
//
// The radiative rate combines three spectral factors, each integrated
// inside the analysis window: the emission mean-frequency factor
// EmissionArea/EmissionThirdMoment, the absorption strength ∫A d(ln ν)
// rescaled so the curve passes through a known molar absorptivity anchor,
// and the n² solvent correction:
//
//	k_f = 2.88e-9 · n² · (EmissionArea/EmissionThirdMoment) · (ε*/A(λ*)) · ∫A d(ln ν)
//
// The natural lifetime is τ0 = 1/k_f and the expected fluorescence
// lifetime is τ = Φf·τ0.
package lifetime

import (
	"errors"

	"github.com/cwbudde/algo-spectra/spectral/series"
)

var (
	ErrWindow           = errors.New("lifetime: window must have positive width")
	ErrRefractiveIndex  = errors.New("lifetime: refractive index must be positive")
	ErrQuantumYield     = errors.New("lifetime: fluorescence quantum yield must not be negative")
	ErrAnchorEpsilon    = errors.New("lifetime: anchor epsilon must be positive")
	ErrKind             = errors.New("lifetime: expected one absorption and one emission spectrum")
	ErrTooFewSamples    = errors.New("lifetime: spectrum needs at least two samples")
	ErrAnchorAbsorbance = errors.New("lifetime: absorbance at the anchor wavelength must be positive")
	ErrNoEmission       = errors.New("lifetime: emission integrals vanish inside the window")
	ErrNoAbsorption     = errors.New("lifetime: absorption integral vanishes inside the window")
)

// stricklerFactor is the prefactor of the Strickler-Berg relation for
// wavenumbers in cm⁻¹ and molar absorptivity in M⁻¹cm⁻¹.
const stricklerFactor = 2.88e-9

// Config holds the scalar parameters of a Strickler-Berg estimate.
type Config struct {
	// Window bounds the wavelength range of both integrals, in nm.
	Window series.Window
	// RefractiveIndex of the solvent.
	RefractiveIndex float64
	// FluorescenceQuantumYield Φf scales the natural lifetime down to the
	// expected fluorescence lifetime.
	FluorescenceQuantumYield float64
	// AnchorWavelength is where the absorption spectrum's molar
	// absorptivity is known, in nm.
	AnchorWavelength float64
	// AnchorEpsilon is the molar absorptivity at AnchorWavelength, in
	// M⁻¹cm⁻¹.
	AnchorEpsilon float64
}

// Validate reports the first invalid parameter.
func (c Config) Validate() error {
	switch {
	case !c.Window.Valid():
		return ErrWindow
	case c.RefractiveIndex <= 0:
		return ErrRefractiveIndex
	case c.FluorescenceQuantumYield < 0:
		return ErrQuantumYield
	case c.AnchorEpsilon <= 0:
		return ErrAnchorEpsilon
	}

	return nil
}

// Result holds the radiative rate and the derived lifetimes.
type Result struct {
	// RadiativeRate k_f in s⁻¹.
	RadiativeRate float64
	// NaturalLifetime τ0 = 1/k_f in ns.
	NaturalLifetime float64
	// Lifetime τ = Φf·τ0 in ns.
	Lifetime float64
}

// Analyze estimates the radiative rate and lifetimes of a compound from
// its absorption and emission spectra. Both spectra are evaluated inside
// cfg.Window only; the absorption curve is rescaled so it passes through
// the configured anchor.
func Analyze(absorption, emission series.Series, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	if absorption.Kind != series.Absorption || emission.Kind != series.Emission {
		return Result{}, ErrKind
	}

	if absorption.Len() < 2 || emission.Len() < 2 {
		return Result{}, ErrTooFewSamples
	}

	sortedAbs := absorption.SortedAscending()
	sortedEm := emission.SortedAscending()

	anchor := sortedAbs.ValueAt(cfg.AnchorWavelength)
	if anchor <= 0 {
		return Result{}, ErrAnchorAbsorbance
	}

	emissionArea := sortedEm.EmissionArea(cfg.Window)
	thirdMoment := sortedEm.EmissionThirdMoment(cfg.Window)
	if emissionArea <= 0 || thirdMoment <= 0 {
		return Result{}, ErrNoEmission
	}

	logArea := sortedAbs.LogWavenumberArea(cfg.Window)
	if logArea <= 0 {
		return Result{}, ErrNoAbsorption
	}

	n2 := cfg.RefractiveIndex * cfg.RefractiveIndex
	rate := stricklerFactor * n2 * (emissionArea / thirdMoment) * (cfg.AnchorEpsilon / anchor) * logArea

	tau0 := 1e9 / rate

	return Result{
		RadiativeRate:   rate,
		NaturalLifetime: tau0,
		Lifetime:        cfg.FluorescenceQuantumYield * tau0,
	}, nil
}
