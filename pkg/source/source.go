// Package source provides simple parameterizations of the two factors of a
// factorized component: a free-form spectrum (one amplitude per channel) and
// a free-form morphology image. Each carries the box it is defined on.
package source

import (
	"deblend/pkg/bbox"
	"deblend/pkg/modelerr"
	"deblend/pkg/parameter"

	"gonum.org/v1/gonum/mat"
)

// Parameter names used by this package.
const (
	SpectrumName   = "spectrum"
	MorphologyName = "morphology"
)

// Spectrum is a per-channel amplitude vector.
type Spectrum struct {
	box   bbox.Box
	param *parameter.Parameter
}

// NewSpectrum creates a spectrum with one value per channel of box. The
// amplitudes are positive with a relative step unless opts say otherwise.
func NewSpectrum(values []float64, box bbox.Box, opts ...parameter.Option) (*Spectrum, error) {
	if !box.Valid() {
		return nil, modelerr.New(modelerr.CodeInvalidDimension, "spectrum box %v has negative extent", box.Shape)
	}
	if len(values) != box.C() {
		return nil, modelerr.New(modelerr.CodeInvalidDimension, "spectrum has %d values for %d channels", len(values), box.C())
	}
	p, err := parameter.New(SpectrumName, append([]float64(nil), values...), []int{len(values)},
		defaults(opts)...)
	if err != nil {
		return nil, err
	}
	return &Spectrum{box: box, param: p}, nil
}

// Box returns the region the spectrum is defined on.
func (s *Spectrum) Box() bbox.Box { return s.box }

// Parameters returns the amplitude parameter.
func (s *Spectrum) Parameters() []*parameter.Parameter { return []*parameter.Parameter{s.param} }

// Spectrum returns a copy of the amplitudes.
func (s *Spectrum) Spectrum(values parameter.Values) []float64 {
	return append([]float64(nil), values.Of(s.param)...)
}

// Morphology is a 2D image placed at the spatial bounds of its box.
type Morphology struct {
	box   bbox.Box
	param *parameter.Parameter
}

// defaults prepends the positive, relative-step policy to opts.
func defaults(opts []parameter.Option) []parameter.Option {
	return append([]parameter.Option{
		parameter.WithStep(parameter.RelativeStep(0.1, 0)),
		parameter.WithConstraint(parameter.PositivityConstraint{}),
	}, opts...)
}

// NewMorphology creates a morphology from img. The spatial extent of box must
// match the image dimensions; its depth selects the channels the morphology
// applies to.
func NewMorphology(img mat.Matrix, box bbox.Box, opts ...parameter.Option) (*Morphology, error) {
	r, c := img.Dims()
	if !box.Valid() || box.Ny() != r || box.Nx() != c {
		return nil, modelerr.New(modelerr.CodeInvalidDimension, "morphology box %v does not match %dx%d image", box.Shape, r, c)
	}
	data := make([]float64, 0, r*c)
	for y := 0; y < r; y++ {
		for x := 0; x < c; x++ {
			data = append(data, img.At(y, x))
		}
	}
	p, err := parameter.New(MorphologyName, data, []int{r, c}, defaults(opts)...)
	if err != nil {
		return nil, err
	}
	return &Morphology{box: box, param: p}, nil
}

// Box returns the region the morphology is defined on.
func (m *Morphology) Box() bbox.Box { return m.box }

// Parameters returns the image parameter.
func (m *Morphology) Parameters() []*parameter.Parameter { return []*parameter.Parameter{m.param} }

// Morphology returns a copy of the image.
func (m *Morphology) Morphology(values parameter.Values) *mat.Dense {
	data := append([]float64(nil), values.Of(m.param)...)
	return mat.NewDense(m.box.Ny(), m.box.Nx(), data)
}
