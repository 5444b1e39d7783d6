package source

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Gaussian returns an h x w image of a circular Gaussian of width sigma
// centred on the image, normalised to a peak of one.
func Gaussian(h, w int, sigma float64) *mat.Dense {
	img := mat.NewDense(h, w, nil)
	cy, cx := float64(h-1)/2, float64(w-1)/2
	s2 := 2 * sigma * sigma
	img.Apply(func(y, x int, _ float64) float64 {
		dy, dx := float64(y)-cy, float64(x)-cx
		return math.Exp(-(dy*dy + dx*dx) / s2)
	}, img)
	return img
}

// Flat returns an h x w image filled with v.
func Flat(h, w int, v float64) *mat.Dense {
	data := make([]float64, h*w)
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(h, w, data)
}
