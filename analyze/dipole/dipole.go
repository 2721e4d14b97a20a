// Package dipole extracts oscillator strengths and transition dipole
// moments from the peak and half-width of an absorption band.
//
// The band peak is located inside the analysis window, the two
// half-maximum crossings are found by walking outward from the peak and
// interpolating between the bracketing samples, and the half-width in
// wavenumber space feeds the classical relations
//
//	f   = 4.32e-9 · ε_peak · Δν½
//	μ²  = f / (4.702e-7 · ν_peak)   (μ in Debye)
//
// Spectra may be stored with ascending or descending wavelengths; the
// storage direction only decides which crossing is reported as the low
// and which as the high wavelength.
package dipole

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-spectra/spectral/series"
)

var (
	ErrWindow           = errors.New("dipole: window must have positive width")
	ErrAnchorEpsilon    = errors.New("dipole: anchor epsilon must be positive")
	ErrKind             = errors.New("dipole: expected an absorption spectrum")
	ErrTooFewSamples    = errors.New("dipole: need at least five samples inside the window")
	ErrPeakNotPositive  = errors.New("dipole: absorption peak must be positive")
	ErrPeakAtEdge       = errors.New("dipole: absorption peak too close to the window edge")
	ErrAnchorAbsorbance = errors.New("dipole: absorbance at the anchor wavelength must be positive")
)

const (
	// oscillatorFactor converts ε_peak·Δν½ into an oscillator strength.
	oscillatorFactor = 4.32e-9
	// dipoleFactor relates oscillator strength to μ²·ν with μ in Debye.
	dipoleFactor = 4.702e-7
	// debyeToSI converts a dipole moment from Debye to C·m.
	debyeToSI = 3.33564e-30
)

// Config holds the parameters of an oscillator-strength extraction.
type Config struct {
	// Window bounds the peak and half-width search, in nm.
	Window series.Window
	// AnchorWavelength is where the spectrum's molar absorptivity is
	// known, in nm.
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
	case c.AnchorEpsilon <= 0:
		return ErrAnchorEpsilon
	}

	return nil
}

// Result describes the located band and the derived moments.
type Result struct {
	// PeakWavelength of the band maximum, in nm.
	PeakWavelength float64
	// HalfMaxLow and HalfMaxHigh are the half-maximum crossing
	// wavelengths on the short and long wavelength side, in nm.
	HalfMaxLow  float64
	HalfMaxHigh float64
	// HalfWidth Δν½ between the crossings, in cm⁻¹.
	HalfWidth float64
	// PeakEpsilon is the anchored molar absorptivity at the peak, in
	// M⁻¹cm⁻¹.
	PeakEpsilon float64
	// OscillatorStrength f, dimensionless.
	OscillatorStrength float64
	// DipoleMomentDebye and DipoleMomentSI are the transition dipole
	// moment in Debye and C·m.
	DipoleMomentDebye float64
	DipoleMomentSI    float64
}

// Analyze locates the absorption peak inside cfg.Window and derives the
// oscillator strength and transition dipole moment from its half-width.
//
// Peaks at the first two or last two in-window samples leave no shoulder
// to interpolate a crossing on and are rejected. A side whose absorption
// never drops below half maximum inside the window falls back to the
// outermost in-window sample.
func Analyze(absorption series.Series, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	if absorption.Kind != series.Absorption {
		return Result{}, ErrKind
	}

	// In-window sample indices in storage order. The scan below walks
	// this subsequence, so ascending and descending storage behave the
	// same up to the low/high labels.
	idxs := make([]int, 0, absorption.Len())
	for i, smp := range absorption.Samples {
		if cfg.Window.Contains(smp.Wavelength) {
			idxs = append(idxs, i)
		}
	}

	if len(idxs) < 5 {
		return Result{}, ErrTooFewSamples
	}

	peak := 0
	for p := range idxs {
		if absorption.Samples[idxs[p]].Coefficient > absorption.Samples[idxs[peak]].Coefficient {
			peak = p
		}
	}

	peakVal := absorption.Samples[idxs[peak]].Coefficient
	if peakVal <= 0 {
		return Result{}, ErrPeakNotPositive
	}

	if peak < 2 || peak > len(idxs)-3 {
		return Result{}, ErrPeakAtEdge
	}

	half := peakVal / 2
	before := crossing(absorption, idxs, peak, -1, half)
	after := crossing(absorption, idxs, peak, +1, half)

	low, high := before, after
	if descending(absorption) {
		low, high = after, before
	}

	anchor := absorption.SortedAscending().ValueAt(cfg.AnchorWavelength)
	if anchor <= 0 {
		return Result{}, ErrAnchorAbsorbance
	}

	peakWavelength := absorption.Samples[idxs[peak]].Wavelength
	width := math.Abs(series.Wavenumber(low) - series.Wavenumber(high))
	peakEpsilon := cfg.AnchorEpsilon * peakVal / anchor
	strength := oscillatorFactor * peakEpsilon * width
	debye := math.Sqrt(strength / (dipoleFactor * series.Wavenumber(peakWavelength)))

	return Result{
		PeakWavelength:     peakWavelength,
		HalfMaxLow:         low,
		HalfMaxHigh:        high,
		HalfWidth:          width,
		PeakEpsilon:        peakEpsilon,
		OscillatorStrength: strength,
		DipoleMomentDebye:  debye,
		DipoleMomentSI:     debye * debyeToSI,
	}, nil
}

// crossing walks outward from the peak until the absorption drops below
// the half maximum and interpolates the crossing wavelength between the
// bracketing samples. It returns the outermost in-window wavelength when
// no crossing exists on that side.
func crossing(s series.Series, idxs []int, peak, dir int, half float64) float64 {
	for p := peak; p+dir >= 0 && p+dir < len(idxs); p += dir {
		cur := s.Samples[idxs[p]]
		next := s.Samples[idxs[p+dir]]

		if next.Coefficient >= half {
			continue
		}

		t := (cur.Coefficient - half) / (cur.Coefficient - next.Coefficient)

		return cur.Wavelength + (next.Wavelength-cur.Wavelength)*t
	}

	edge := idxs[0]
	if dir > 0 {
		edge = idxs[len(idxs)-1]
	}

	return s.Samples[edge].Wavelength
}

// descending reports whether samples are stored from long to short
// wavelengths, detected from the endpoint order.
func descending(s series.Series) bool {
	return s.Len() > 1 && s.Samples[0].Wavelength > s.Samples[s.Len()-1].Wavelength
}
