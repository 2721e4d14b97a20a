// Package prep reshapes measured spectra before analysis.
//
// Catalog spectra arrive on whatever wavelength grid the instrument used.
// [UniformGrid] and [Resample] move a series onto an evenly spaced grid,
// [Crop] restricts it to a wavelength window, and [Smooth] removes
// high-frequency measurement noise with an FFT low-pass.
package prep

import (
	"github.com/cwbudde/algo-spectra/spectral/series"
)

// UniformGrid returns n wavelengths spaced evenly from low to high,
// endpoints included. Inverted bounds are swapped. Returns nil for n <= 0
// and the single wavelength low for n == 1.
func UniformGrid(low, high float64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	if high < low {
		low, high = high, low
	}

	if n == 1 {
		return []float64{low}
	}

	grid := make([]float64, n)
	step := (high - low) / float64(n-1)
	for i := range grid {
		grid[i] = low + float64(i)*step
	}
	grid[n-1] = high

	return grid
}

// Resample evaluates s at each grid wavelength by linear interpolation and
// returns the result as a new series of the same kind. Wavelengths outside
// the sampled extent read as zero. Samples are produced in grid order.
func Resample(s series.Series, grid []float64) series.Series {
	out := series.Series{Kind: s.Kind}
	if len(grid) == 0 {
		return out
	}

	out.Samples = make([]series.Sample, len(grid))
	for i, w := range grid {
		out.Samples[i] = series.NewSample(s.Kind, w, s.ValueAt(w))
	}

	return out
}

// Crop returns the samples of s whose wavelengths lie inside the window,
// endpoints included, preserving order and kind.
func Crop(s series.Series, w series.Window) series.Series {
	out := series.Series{Kind: s.Kind}
	for _, sample := range s.Samples {
		if w.Contains(sample.Wavelength) {
			out.Samples = append(out.Samples, sample)
		}
	}

	return out
}
