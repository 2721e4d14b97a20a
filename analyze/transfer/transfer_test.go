package transfer

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-spectra/internal/testutil"
	"github.com/cwbudde/algo-spectra/spectral/series"
)

func TestForwardKnownChain(t *testing.T) {
	components := []Component{
		{AbsorptionWeight: 1, QuantumYield: 0.5},
		{AbsorptionWeight: 1, QuantumYield: 0.8},
	}

	res, err := Forward(components, []float64{0.4, 0})
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	// fracE = (0.5, 0.5): Q'_1 = 0.5·0.5·0.6, carry = 0.5·0.4 = 0.2,
	// Q'_2 = (0.5+0.2)·0.8.
	testutil.RequireNearlyEqual(t, res.Yields[0].QuantumYield, 0.15, 1e-12)
	testutil.RequireNearlyEqual(t, res.Yields[1].QuantumYield, 0.56, 1e-12)
	testutil.RequireNearlyEqual(t, res.TotalQY, 0.71, 1e-12)
}

func TestForwardMissingYieldStillCarries(t *testing.T) {
	components := []Component{
		{AbsorptionWeight: 1, QuantumYield: 0.5},
		{AbsorptionWeight: 1},
		{AbsorptionWeight: 1, QuantumYield: 0.5},
	}

	res, err := Forward(components, []float64{0.5, 0.5, 0})
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	// The yield-less middle component emits nothing but keeps relaying
	// excitation: Q'_3 = (1/3 + 1/4)·0.5 = 7/24.
	if res.Yields[1].QuantumYield != 0 {
		t.Fatalf("Q'_2 = %v, want 0", res.Yields[1].QuantumYield)
	}

	testutil.RequireNearlyEqual(t, res.Yields[2].QuantumYield, 7.0/24, 1e-12)
}

func TestForwardZeroWeightSum(t *testing.T) {
	components := []Component{
		{QuantumYield: 0.5},
		{QuantumYield: 0.8},
	}

	res, err := Forward(components, []float64{0.4, 0.2})
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	testutil.RequireFinite(t, []float64{res.TotalQY})

	if res.TotalQY != 0 {
		t.Fatalf("TotalQY = %v, want 0 for an unexcited chain", res.TotalQY)
	}
}

func TestForwardTransferCountMismatch(t *testing.T) {
	components := []Component{{AbsorptionWeight: 1}, {AbsorptionWeight: 1}}

	_, err := Forward(components, []float64{0.5})
	if !errors.Is(err, ErrTransferCount) {
		t.Fatalf("err = %v, want ErrTransferCount", err)
	}
}

var chainWavelengths = []float64{400, 410, 420, 430, 440, 450, 460, 470}

// chainFixture builds a three-chromophore chain whose emission grids share
// a zero at 400 nm and a unit peak at 450 nm, and rescales the quantum
// yields so the true chain yields sum to exactly 1. Both choices make the
// composite's min-max normalization the identity, so the reverse fit can
// reproduce the forward chain exactly.
func chainFixture(t *testing.T, transfers []float64) ([]Component, map[string]series.Series, series.Series) {
	t.Helper()

	profiles := map[string][]float64{
		"d1": {0, 0.9, 0.7, 0.5, 0.3, 1, 0.2, 0.1},
		"d2": {0, 0.1, 0.3, 0.5, 0.7, 1, 0.4, 0.2},
		"d3": {0, 0.2, 0.5, 0.8, 0.6, 1, 0.9, 0.3},
	}

	spectra := make(map[string]series.Series, len(profiles))
	for id, values := range profiles {
		s := series.Series{Kind: series.Emission}
		for i, w := range chainWavelengths {
			s.Samples = append(s.Samples, series.Sample{Wavelength: w, Intensity: values[i]})
		}

		spectra[id] = s
	}

	components := []Component{
		{SpectrumID: "d1", AbsorptionWeight: 1, QuantumYield: 0.8, Guess: 0.5},
		{SpectrumID: "d2", AbsorptionWeight: 2, QuantumYield: 0.7, Guess: 0.5},
		{SpectrumID: "d3", AbsorptionWeight: 1.5, QuantumYield: 0.9, Guess: 0.5},
	}

	first, err := Forward(components, transfers)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	for i := range components {
		components[i].QuantumYield /= first.TotalQY
	}

	scaledFwd, err := Forward(components, transfers)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	testutil.RequireNearlyEqual(t, scaledFwd.TotalQY, 1, 1e-12)

	composite := series.Series{Kind: series.Emission}
	for i, w := range chainWavelengths {
		v := 0.0
		for j, comp := range components {
			v += scaledFwd.Yields[j].QuantumYield * profiles[comp.SpectrumID][i]
		}

		composite.Samples = append(composite.Samples, series.Sample{Wavelength: w, Intensity: v})
	}

	return components, spectra, composite
}

func TestFitRoundTrip(t *testing.T) {
	want := []float64{0.6, 0.3, 0}
	components, spectra, composite := chainFixture(t, want)

	res, err := Fit(composite, components, spectra, Config{
		Wavelengths:     chainWavelengths,
		PinLastTransfer: true,
	})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if !res.Converged {
		t.Fatalf("fit did not converge: %+v", res)
	}

	for i, w := range want {
		testutil.RequireNearlyEqual(t, res.Yields[i].Transfer, w, 1e-3)
	}

	if res.Yields[2].Transfer != 0 {
		t.Fatalf("pinned transfer = %v, want exactly 0", res.Yields[2].Transfer)
	}

	testutil.RequireNearlyEqual(t, res.TotalQY, 1, 1e-3)

	if res.Stats.Lsq >= 1e-5 {
		t.Fatalf("lsq = %v, want < 1e-5", res.Stats.Lsq)
	}
}

func TestFitBoundsHold(t *testing.T) {
	components, spectra, composite := chainFixture(t, []float64{0.6, 0.3, 0})

	res, err := Fit(composite, components, spectra, Config{Wavelengths: chainWavelengths})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	for i, y := range res.Yields {
		testutil.RequireInRange(t, y.Transfer, 0, 1)

		if y.QuantumYield < 0 {
			t.Fatalf("Yields[%d].QuantumYield = %v, want >= 0", i, y.QuantumYield)
		}
	}
}

func TestFitTooFewSpectra(t *testing.T) {
	components, spectra, composite := chainFixture(t, []float64{0.6, 0.3, 0})

	_, err := Fit(composite, components[:1], spectra, Config{Wavelengths: chainWavelengths})
	if !errors.Is(err, ErrTooFewSpectra) {
		t.Fatalf("err = %v, want ErrTooFewSpectra", err)
	}
}

func TestFitNoWavelengths(t *testing.T) {
	components, spectra, composite := chainFixture(t, []float64{0.6, 0.3, 0})

	_, err := Fit(composite, components, spectra, Config{})
	if !errors.Is(err, ErrNoWavelengths) {
		t.Fatalf("err = %v, want ErrNoWavelengths", err)
	}

	// All wavelengths outside the composite extent is the same refusal.
	_, err = Fit(composite, components, spectra, Config{Wavelengths: []float64{900, 950}})
	if !errors.Is(err, ErrNoWavelengths) {
		t.Fatalf("err = %v, want ErrNoWavelengths", err)
	}
}

func TestFitUnknownSpectrum(t *testing.T) {
	components, spectra, composite := chainFixture(t, []float64{0.6, 0.3, 0})
	components[1].SpectrumID = "missing"

	_, err := Fit(composite, components, spectra, Config{Wavelengths: chainWavelengths})
	if !errors.Is(err, ErrUnknownSpectrum) {
		t.Fatalf("err = %v, want ErrUnknownSpectrum", err)
	}
}

func TestFitRejectsAbsorptionSpectrum(t *testing.T) {
	components, spectra, composite := chainFixture(t, []float64{0.6, 0.3, 0})

	wrong := spectra["d2"]
	wrong.Kind = series.Absorption
	spectra["d2"] = wrong

	_, err := Fit(composite, components, spectra, Config{Wavelengths: chainWavelengths})
	if !errors.Is(err, ErrNotEmission) {
		t.Fatalf("err = %v, want ErrNotEmission", err)
	}
}

func TestExcitationFractions(t *testing.T) {
	components := []Component{
		{AbsorptionWeight: 1},
		{AbsorptionWeight: 3},
	}

	got := excitationFractions(components)
	testutil.RequireSliceNearlyEqual(t, got, []float64{0.25, 0.75}, 1e-15)
}
