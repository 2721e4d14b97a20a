// Package residual scores fitted spectra against measured ones.
//
// [Evaluate] pairs calculated values with experimental ones and reports the
// least-squares distance, the coefficient of determination and the
// per-wavelength residuals. [Norm] is the bare distance used inside optimizer
// objectives, where only the scalar matters.
package residual

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Point pairs a calculated and an experimental value at one wavelength.
type Point struct {
	Wavelength   float64
	Calculated   float64
	Experimental float64
	Residual     float64
}

// Stats summarizes the quality of a fit.
type Stats struct {
	// Lsq is the Euclidean norm of the residual vector.
	Lsq float64
	// RSquared is the coefficient of determination against the
	// experimental values, 0 when they carry no variance.
	RSquared float64
	// MeanAbs and MaxAbs describe the residual magnitudes.
	MeanAbs float64
	MaxAbs  float64
	// Points holds the per-wavelength pairing, in input order.
	Points []Point
}

// Norm returns the Euclidean norm of r. Returns 0 for an empty slice.
func Norm(r []float64) float64 {
	return mathSqrt(vecmath.DotProduct(r, r))
}

// Evaluate compares calculated against experimental values sampled at the
// given wavelengths and returns the fit diagnostics. Inputs longer than the
// shortest slice are truncated to it.
func Evaluate(wavelengths, calculated, experimental []float64) Stats {
	n := min(len(wavelengths), len(calculated), len(experimental))
	if n == 0 {
		return Stats{}
	}

	resid := make([]float64, n)
	vecmath.ScaleBlock(resid, experimental[:n], -1)
	vecmath.AddBlockInPlace(resid, calculated[:n])

	points := make([]Point, n)
	meanAbs := 0.0
	for i := range points {
		points[i] = Point{
			Wavelength:   wavelengths[i],
			Calculated:   calculated[i],
			Experimental: experimental[i],
			Residual:     resid[i],
		}
		meanAbs += math.Abs(resid[i])
	}
	meanAbs /= float64(n)

	ssr := vecmath.DotProduct(resid, resid)

	mean := vecmath.Sum(experimental[:n]) / float64(n)
	sstot := 0.0
	for _, y := range experimental[:n] {
		d := y - mean
		sstot += d * d
	}

	rsq := 0.0
	if sstot > 0 {
		rsq = 1 - ssr/sstot
	}

	return Stats{
		Lsq:      mathSqrt(ssr),
		RSquared: rsq,
		MeanAbs:  meanAbs,
		MaxAbs:   vecmath.MaxAbs(resid),
		Points:   points,
	}
}
