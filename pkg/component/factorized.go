package component

import (
	"deblend/internal/models"
	"deblend/pkg/bbox"
	"deblend/pkg/modelerr"
	"deblend/pkg/parameter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Spectrum is the spectral factor of a Factorized component.
type Spectrum interface {
	Box() bbox.Box
	Parameters() []*parameter.Parameter
	// Spectrum returns one amplitude per channel of Box().
	Spectrum(values parameter.Values) []float64
}

// Morphology is the spatial factor of a Factorized component.
type Morphology interface {
	Box() bbox.Box
	Parameters() []*parameter.Parameter
	// Morphology returns an image of Box().Ny() x Box().Nx() pixels.
	Morphology(values parameter.Values) *mat.Dense
}

// Factorized models a source as the outer product of a spectrum and a
// morphology. Its box is the intersection of the boxes of both factors.
type Factorized struct {
	Component
	spectrum   Spectrum
	morphology Morphology
}

// NewFactorized combines spectrum and morphology into a component of f.
func NewFactorized(f Frame, spectrum Spectrum, morphology Morphology) (*Factorized, error) {
	if spectrum == nil {
		return nil, modelerr.New(modelerr.CodeTypeMismatch, "factorized component needs a spectrum")
	}
	if morphology == nil {
		return nil, modelerr.New(modelerr.CodeTypeMismatch, "factorized component needs a morphology")
	}
	box := spectrum.Box().Intersect(morphology.Box())
	var params []*parameter.Parameter
	params = append(params, spectrum.Parameters()...)
	params = append(params, morphology.Parameters()...)
	c, err := newComponent(f, &box, nil, params)
	if err != nil {
		return nil, err
	}
	return &Factorized{Component: c, spectrum: spectrum, morphology: morphology}, nil
}

// Spectrum returns the spectral factor.
func (c *Factorized) Spectrum() Spectrum { return c.spectrum }

// Morphology returns the spatial factor.
func (c *Factorized) Morphology() Morphology { return c.morphology }

// UpdateBox assigns a new box. The box must stay inside the intersection of
// the spectrum and morphology boxes, the only region both factors define.
func (c *Factorized) UpdateBox(b bbox.Box) error {
	limit := c.spectrum.Box().Intersect(c.morphology.Box())
	if !b.Valid() || !b.Within(limit) {
		return modelerr.New(modelerr.CodeInvalidDimension, "box %v is outside the factor overlap %v", b, limit)
	}
	return c.Component.UpdateBox(b)
}

// Render implements Model. Only the channels and pixels of both factors that
// fall inside the component box contribute.
func (c *Factorized) Render(values parameter.Values, target Frame) models.Cube {
	model := models.NewCube(c.box.Shape)
	if c.box.Empty() {
		return c.project(target, model)
	}

	spectrum := c.spectrum.Spectrum(values)
	sb, mb := c.spectrum.Box(), c.morphology.Box()

	img := bbox.ExtractImage(c.box.Sub(mb.Origin), c.morphology.Morphology(values), nil)
	pixels := img.RawMatrix().Data
	offset := c.box.Front() - sb.Front()
	for z := 0; z < model.Depth(); z++ {
		floats.ScaleTo(model.Plane(z), spectrum[offset+z], pixels)
	}
	return c.project(target, model)
}
