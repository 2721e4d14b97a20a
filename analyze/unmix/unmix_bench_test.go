package unmix

import (
	"testing"

	"github.com/cwbudde/algo-spectra/internal/testutil"
	"github.com/cwbudde/algo-spectra/spectral/series"
)

func BenchmarkFit(b *testing.B) {
	for _, n := range []int{16, 64, 256} {
		wavelengths := testutil.Wavelengths(400, 700, n)

		a := testutil.GaussianBand(series.Absorption, 480, 40, 1, wavelengths)
		c := testutil.GaussianBand(series.Absorption, 580, 50, 1, wavelengths)
		composite := testutil.MixSeries(series.Absorption, []float64{0.4, 0.6}, []series.Series{a, c})

		components := []Component{
			{Spectrum: a, Concentration: 1, Guess: 0.5},
			{Spectrum: c, Concentration: 1, Guess: 0.5},
		}
		cfg := Config{Wavelengths: wavelengths}

		b.Run("points_"+itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for range b.N {
				if _, err := Fit(composite, components, cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[i:])
}
