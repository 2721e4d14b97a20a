package series

import "sort"

// Kind selects which stored quantity of a [Sample] a series reads.
type Kind int

const (
	// Absorption reads Sample.Coefficient.
	Absorption Kind = iota
	// Emission reads Sample.Intensity.
	Emission
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Absorption:
		return "absorption"
	case Emission:
		return "emission"
	default:
		return "unknown"
	}
}

// Sample is one tabulated spectral point.
//
// Coefficient carries the molar absorption coefficient in M⁻¹cm⁻¹ for
// absorption data; Intensity carries the emission intensity in arbitrary
// units. The field the kind does not read stays zero.
type Sample struct {
	Wavelength  float64 // nm
	Coefficient float64
	Intensity   float64
}

// Value returns the stored quantity selected by kind.
func (smp Sample) Value(kind Kind) float64 {
	if kind == Emission {
		return smp.Intensity
	}

	return smp.Coefficient
}

// NewSample returns a sample whose kind-selected field holds value.
func NewSample(kind Kind, wavelength, value float64) Sample {
	smp := Sample{Wavelength: wavelength}
	if kind == Emission {
		smp.Intensity = value
	} else {
		smp.Coefficient = value
	}

	return smp
}

// Series is a wavelength-ordered sequence of samples read through a [Kind].
//
// Interpolation and integration assume ascending wavelength order; use
// [Series.SortedAscending] first when the origin of the data does not
// guarantee it. Duplicate wavelengths are kept as stored, they are not
// deduplicated.
type Series struct {
	Kind    Kind
	Samples []Sample
}

// Len returns the number of samples.
func (s Series) Len() int { return len(s.Samples) }

// SortedAscending returns a copy of the series ordered by ascending
// wavelength. The receiver is not modified. Sorting is stable, so samples
// sharing a wavelength keep their stored order.
func (s Series) SortedAscending() Series {
	out := Series{Kind: s.Kind, Samples: make([]Sample, len(s.Samples))}
	copy(out.Samples, s.Samples)
	sort.SliceStable(out.Samples, func(i, j int) bool {
		return out.Samples[i].Wavelength < out.Samples[j].Wavelength
	})

	return out
}

// Extent returns the window spanning the first and last sample of an
// ascending series. An empty series yields the zero window.
func (s Series) Extent() Window {
	if len(s.Samples) == 0 {
		return Window{}
	}

	return Window{
		Low:  s.Samples[0].Wavelength,
		High: s.Samples[len(s.Samples)-1].Wavelength,
	}
}

// ValueAt returns the series value at the given wavelength using linear
// interpolation between the bracketing samples.
//
// An empty series yields 0. A single-sample series yields that sample's
// value at every wavelength. Wavelengths outside the sampled range yield
// 0; there is no extrapolation. An exact wavelength match returns the
// stored value.
func (s Series) ValueAt(wavelength float64) float64 {
	n := len(s.Samples)
	if n == 0 {
		return 0
	}

	if n == 1 {
		return s.Samples[0].Value(s.Kind)
	}

	if wavelength < s.Samples[0].Wavelength || wavelength > s.Samples[n-1].Wavelength {
		return 0
	}

	j := sort.Search(n, func(k int) bool { return s.Samples[k].Wavelength >= wavelength })
	if s.Samples[j].Wavelength == wavelength {
		return s.Samples[j].Value(s.Kind)
	}

	// j is the first index past wavelength, so [j-1, j] brackets it with
	// strictly increasing abscissae.
	x0 := s.Samples[j-1].Wavelength
	x1 := s.Samples[j].Wavelength
	y0 := s.Samples[j-1].Value(s.Kind)
	y1 := s.Samples[j].Value(s.Kind)
	t := (wavelength - x0) / (x1 - x0)

	return y0 + t*(y1-y0)
}

// ValueRange returns the minimum and maximum value of the kind the series
// reads. An empty series yields (0, 0).
func (s Series) ValueRange() (min, max float64) {
	if len(s.Samples) == 0 {
		return 0, 0
	}

	min = s.Samples[0].Value(s.Kind)
	max = min

	for _, smp := range s.Samples[1:] {
		v := smp.Value(s.Kind)
		if v < min {
			min = v
		}

		if v > max {
			max = v
		}
	}

	return min, max
}

// NormalizedValueAt returns the series value at the given wavelength after
// min-max normalizing every sample value to [0,1] over the whole series.
//
// Interpolation and range lookup follow [Series.ValueAt] in normalized
// space: empty series and out-of-range wavelengths yield 0. A degenerate
// series whose values are all equal normalizes to 0.5 everywhere. This is
// the default path for fitting.
func (s Series) NormalizedValueAt(wavelength float64) float64 {
	n := len(s.Samples)
	if n == 0 {
		return 0
	}

	if n > 1 && (wavelength < s.Samples[0].Wavelength || wavelength > s.Samples[n-1].Wavelength) {
		return 0
	}

	lo, hi := s.ValueRange()
	if hi == lo {
		return 0.5
	}

	return (s.ValueAt(wavelength) - lo) / (hi - lo)
}

// Normalized returns a copy of the series with the value its kind reads
// min-max normalized to [0,1]. The mapping is affine and linear
// interpolation commutes with it, so sampling the copy with
// [Series.ValueAt] matches [Series.NormalizedValueAt] on the original for
// in-range wavelengths. Degenerate series normalize to 0.5.
func (s Series) Normalized() Series {
	out := Series{Kind: s.Kind, Samples: make([]Sample, len(s.Samples))}
	copy(out.Samples, s.Samples)

	if len(out.Samples) == 0 {
		return out
	}

	lo, hi := s.ValueRange()
	for i := range out.Samples {
		v := 0.5
		if hi != lo {
			v = (out.Samples[i].Value(s.Kind) - lo) / (hi - lo)
		}

		out.Samples[i] = NewSample(s.Kind, out.Samples[i].Wavelength, v)
	}

	return out
}
