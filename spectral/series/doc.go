// Package series provides the tabulated-spectrum substrate for spectral
// analysis: wavelength-ordered samples with clamped linear interpolation,
// min-max normalization, and trapezoidal integrals in wavelength and
// wavenumber domains.
//
// A [Series] reads one of two stored quantities through its [Kind] tag:
// absorption coefficients or emission intensities. Interpolation is
// deliberately conservative: wavelengths outside the sampled range yield
// zero rather than extrapolating, so downstream fits never see invented
// signal.
//
// # Usage
//
// Sort once, then sample and integrate:
//
//	abs := series.Series{Kind: series.Absorption, Samples: pts}.SortedAscending()
//	v := abs.NormalizedValueAt(450)
//	a := abs.AreaIn(series.DomainWavenumber, series.Window{Low: 400, High: 500})
//
// The emission-specific integrals [Series.EmissionArea] and
// [Series.EmissionThirdMoment] feed the Strickler-Berg radiative-rate
// relation; [Series.LogWavenumberArea] is the matching absorption-side
// integral against d(ln nu).
package series
