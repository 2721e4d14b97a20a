package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-spectra/spectral/series"
)

// Wavelengths returns n uniformly spaced wavelengths spanning [low, high]
// inclusive.
func Wavelengths(low, high float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = low
		return out
	}

	step := (high - low) / float64(n-1)
	for i := range out {
		out[i] = low + step*float64(i)
	}

	return out
}

// GaussianBand samples amplitude*exp(-((w-center)/width)^2) at the given
// wavelengths.
func GaussianBand(kind series.Kind, center, width, amplitude float64, wavelengths []float64) series.Series {
	out := series.Series{Kind: kind, Samples: make([]series.Sample, len(wavelengths))}
	for i, w := range wavelengths {
		d := (w - center) / width
		out.Samples[i] = series.NewSample(kind, w, amplitude*math.Exp(-d*d))
	}

	return out
}

// TriangleBand samples a piecewise-linear band amplitude*(1-|w-center|/halfWidth),
// floored at zero, at the given wavelengths. With the center and the feet
// on grid points the band interpolates exactly, which makes it the
// preferred shape for exact-recovery fitting tests.
func TriangleBand(kind series.Kind, center, halfWidth, amplitude float64, wavelengths []float64) series.Series {
	out := series.Series{Kind: kind, Samples: make([]series.Sample, len(wavelengths))}
	for i, w := range wavelengths {
		v := 1 - math.Abs(w-center)/halfWidth
		if v < 0 {
			v = 0
		}

		out.Samples[i] = series.NewSample(kind, w, amplitude*v)
	}

	return out
}

// FlatBand samples a constant value at the given wavelengths.
func FlatBand(kind series.Kind, value float64, wavelengths []float64) series.Series {
	out := series.Series{Kind: kind, Samples: make([]series.Sample, len(wavelengths))}
	for i, w := range wavelengths {
		out.Samples[i] = series.NewSample(kind, w, value)
	}

	return out
}

// MixSeries returns the pointwise weighted sum of the spectra evaluated on
// the first spectrum's wavelength grid.
func MixSeries(kind series.Kind, weights []float64, spectra []series.Series) series.Series {
	if len(spectra) == 0 {
		return series.Series{Kind: kind}
	}

	base := spectra[0]
	out := series.Series{Kind: kind, Samples: make([]series.Sample, len(base.Samples))}

	for i, smp := range base.Samples {
		sum := 0.0
		for j, sp := range spectra {
			sum += weights[j] * sp.ValueAt(smp.Wavelength)
		}

		out.Samples[i] = series.NewSample(kind, smp.Wavelength, sum)
	}

	return out
}

// WithNoise returns a copy of the series with deterministic uniform noise
// in [-amplitude, amplitude] added to each value.
func WithNoise(s series.Series, seed int64, amplitude float64) series.Series {
	rng := rand.New(rand.NewSource(seed))
	out := series.Series{Kind: s.Kind, Samples: make([]series.Sample, len(s.Samples))}

	for i, smp := range s.Samples {
		noise := (rng.Float64()*2 - 1) * amplitude
		out.Samples[i] = series.NewSample(s.Kind, smp.Wavelength, smp.Value(s.Kind)+noise)
	}

	return out
}
