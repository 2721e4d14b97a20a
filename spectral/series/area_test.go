package series

import (
	"math"
	"testing"
)

func flatSeries(value, low, high float64, n int) Series {
	s := Series{Kind: Absorption, Samples: make([]Sample, n)}
	step := (high - low) / float64(n-1)
	for i := range s.Samples {
		s.Samples[i] = Sample{Wavelength: low + step*float64(i), Coefficient: value}
	}
	return s
}

func TestWindowValid(t *testing.T) {
	if !(Window{Low: 400, High: 500}).Valid() {
		t.Fatal("400..500 should be valid")
	}

	if (Window{Low: 500, High: 500}).Valid() {
		t.Fatal("zero-width window should be invalid")
	}

	if (Window{Low: 500, High: 400}).Valid() {
		t.Fatal("inverted window should be invalid")
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{Low: 400, High: 500}

	for _, tc := range []struct {
		wl   float64
		want bool
	}{
		{400, true},
		{500, true},
		{450, true},
		{399.999, false},
		{500.001, false},
	} {
		if got := w.Contains(tc.wl); got != tc.want {
			t.Fatalf("Contains(%v) = %v, want %v", tc.wl, got, tc.want)
		}
	}
}

func TestWavenumber(t *testing.T) {
	if got := Wavenumber(400); got != 25000 {
		t.Fatalf("Wavenumber(400) = %v, want 25000", got)
	}

	if got := Wavenumber(500); got != 20000 {
		t.Fatalf("Wavenumber(500) = %v, want 20000", got)
	}
}

func TestAreaWavelengthRectangle(t *testing.T) {
	s := flatSeries(2, 400, 500, 11)

	if got := s.Area(DomainWavelength); math.Abs(got-200) > 1e-10 {
		t.Fatalf("Area = %v, want 200", got)
	}
}

func TestAreaWavelengthTriangle(t *testing.T) {
	// Piecewise-linear band peaking at 450, zero at 400 and 500:
	// the trapezoid rule is exact, area = base*height/2 = 50.
	s := Series{Kind: Absorption}
	for w := 400.0; w <= 500; w += 10 {
		v := 1 - math.Abs(w-450)/50
		s.Samples = append(s.Samples, Sample{Wavelength: w, Coefficient: v})
	}

	if got := s.Area(DomainWavelength); math.Abs(got-50) > 1e-10 {
		t.Fatalf("Area = %v, want 50", got)
	}
}

func TestAreaInWindow(t *testing.T) {
	s := flatSeries(2, 400, 500, 11)

	// Only the samples at 430..470 lie inside the window.
	got := s.AreaIn(DomainWavelength, Window{Low: 425, High: 475})
	if math.Abs(got-80) > 1e-10 {
		t.Fatalf("AreaIn = %v, want 80", got)
	}
}

func TestAreaWavenumber(t *testing.T) {
	s := absorptionSeries([2]float64{400, 1}, [2]float64{500, 1})

	// dnu = |1e7/400 - 1e7/500| = 5000.
	if got := s.Area(DomainWavenumber); math.Abs(got-5000) > 1e-9 {
		t.Fatalf("Area = %v, want 5000", got)
	}
}

func TestAreaDegenerate(t *testing.T) {
	var empty Series
	if got := empty.Area(DomainWavelength); got != 0 {
		t.Fatalf("Area of empty series = %v, want 0", got)
	}

	single := absorptionSeries([2]float64{450, 3})
	if got := single.Area(DomainWavelength); got != 0 {
		t.Fatalf("Area of single sample = %v, want 0", got)
	}
}

func TestEmissionArea(t *testing.T) {
	s := Series{Kind: Emission, Samples: []Sample{
		{Wavelength: 400, Intensity: 1},
		{Wavelength: 500, Intensity: 1},
	}}

	got := s.EmissionArea(Window{Low: 300, High: 600})
	want := 1e7 * 100.0
	if math.Abs(got-want) > 1e-3 {
		t.Fatalf("EmissionArea = %v, want %v", got, want)
	}
}

func TestEmissionThirdMoment(t *testing.T) {
	s := Series{Kind: Emission, Samples: []Sample{
		{Wavelength: 400, Intensity: 1},
		{Wavelength: 500, Intensity: 1},
	}}

	n1 := 25000.0
	n2 := 20000.0
	want := 100 * 1e7 * (1/(n1*n1*n1) + 1/(n2*n2*n2)) / 2

	got := s.EmissionThirdMoment(Window{Low: 300, High: 600})
	if math.Abs(got-want) > math.Abs(want)*1e-12 {
		t.Fatalf("EmissionThirdMoment = %v, want %v", got, want)
	}
}

func TestLogWavenumberArea(t *testing.T) {
	s := absorptionSeries([2]float64{400, 2}, [2]float64{500, 2})

	// |d ln nu| = ln(25000) - ln(20000) = ln(1.25).
	want := math.Log(1.25) * 2
	got := s.LogWavenumberArea(Window{Low: 300, High: 600})
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("LogWavenumberArea = %v, want %v", got, want)
	}
}

func TestEachSegmentWindowEndpoints(t *testing.T) {
	s := flatSeries(1, 400, 500, 11)

	// A segment participates only when both endpoints are inside.
	count := 0
	s.EachSegment(Window{Low: 405, High: 495}, func(a, b Sample) { count++ })
	if count != 8 {
		t.Fatalf("segment count = %d, want 8", count)
	}

	count = 0
	s.EachSegment(Window{Low: 400, High: 500}, func(a, b Sample) { count++ })
	if count != 10 {
		t.Fatalf("full-window segment count = %d, want 10", count)
	}
}

func TestExtent(t *testing.T) {
	s := absorptionSeries([2]float64{400, 1}, [2]float64{500, 2})

	ext := s.Extent()
	if ext.Low != 400 || ext.High != 500 {
		t.Fatalf("Extent = %+v, want {400 500}", ext)
	}

	var empty Series
	if empty.Extent() != (Window{}) {
		t.Fatalf("Extent of empty series = %+v, want zero window", empty.Extent())
	}
}
