package prep

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-spectra/spectral/series"
)

// Errors returned by Smooth.
var (
	ErrTooFewSamples  = errors.New("prep: smoothing needs at least 4 samples")
	ErrUnevenSpacing  = errors.New("prep: smoothing needs near-uniform wavelength spacing")
	ErrKeepOutOfRange = errors.New("prep: keep fraction must be in (0, 1]")
)

// spacingTolerance is the allowed relative deviation of each wavelength
// step from the mean step.
const spacingTolerance = 0.01

// Smooth attenuates high-frequency noise in s with an FFT low-pass and
// returns the smoothed series on the original wavelengths, sorted ascending.
//
// keep is the retained fraction of the Nyquist band: 1 passes the series
// through unchanged, smaller values cut progressively harder. The series
// must hold at least 4 samples on a near-uniform wavelength grid; the
// signal is padded to a power of two by edge replication before the
// transform and trimmed afterwards.
func Smooth(s series.Series, keep float64) (series.Series, error) {
	if keep <= 0 || keep > 1 {
		return series.Series{}, fmt.Errorf("%w: got %v", ErrKeepOutOfRange, keep)
	}

	sorted := s.SortedAscending()

	n := sorted.Len()
	if n < 4 {
		return series.Series{}, fmt.Errorf("%w: got %d", ErrTooFewSamples, n)
	}

	if err := checkUniformSpacing(sorted.Samples); err != nil {
		return series.Series{}, err
	}

	fftSize := nextPowerOf2(n)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return series.Series{}, fmt.Errorf("prep: failed to create FFT plan: %w", err)
	}

	// Pad by replicating the last value so the cutoff does not ring
	// against an artificial step down to zero.
	buf := make([]complex128, fftSize)
	for i := range buf {
		j := i
		if j >= n {
			j = n - 1
		}

		buf[i] = complex(sorted.Samples[j].Value(sorted.Kind), 0)
	}

	freq := make([]complex128, fftSize)
	if err := plan.Forward(freq, buf); err != nil {
		return series.Series{}, fmt.Errorf("prep: forward FFT failed: %w", err)
	}

	// Zero every bin above the cutoff, symmetrically, so the inverse
	// transform stays real.
	cutoff := int(keep * float64(fftSize/2))
	for k := cutoff + 1; k < fftSize-cutoff; k++ {
		freq[k] = 0
	}

	smoothed := make([]complex128, fftSize)
	if err := plan.Inverse(smoothed, freq); err != nil {
		return series.Series{}, fmt.Errorf("prep: inverse FFT failed: %w", err)
	}

	out := series.Series{
		Kind:    sorted.Kind,
		Samples: make([]series.Sample, n),
	}
	for i := range out.Samples {
		out.Samples[i] = series.NewSample(sorted.Kind, sorted.Samples[i].Wavelength, real(smoothed[i]))
	}

	return out, nil
}

func checkUniformSpacing(samples []series.Sample) error {
	first := samples[0].Wavelength
	last := samples[len(samples)-1].Wavelength
	mean := (last - first) / float64(len(samples)-1)

	if mean <= 0 {
		return ErrUnevenSpacing
	}

	for i := 1; i < len(samples); i++ {
		step := samples[i].Wavelength - samples[i-1].Wavelength
		if math.Abs(step-mean) > spacingTolerance*mean {
			return fmt.Errorf("%w: step %v at sample %d, mean %v", ErrUnevenSpacing, step, i, mean)
		}
	}

	return nil
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
