package prep_test

import (
	"fmt"

	"github.com/cwbudde/algo-spectra/spectral/prep"
	"github.com/cwbudde/algo-spectra/spectral/series"
)

func ExampleUniformGrid() {
	fmt.Println(prep.UniformGrid(400, 500, 5))
	// Output:
	// [400 425 450 475 500]
}

func ExampleCrop() {
	s := series.Series{
		Kind: series.Absorption,
		Samples: []series.Sample{
			{Wavelength: 400, Coefficient: 1},
			{Wavelength: 450, Coefficient: 2},
			{Wavelength: 500, Coefficient: 3},
		},
	}

	cropped := prep.Crop(s, series.Window{Low: 425, High: 475})
	fmt.Println(cropped.Len(), cropped.Samples[0].Wavelength)
	// Output:
	// 1 450
}
