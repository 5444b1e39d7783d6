package component

import (
	"deblend/internal/models"
	"deblend/pkg/bbox"
	"deblend/pkg/modelerr"
	"deblend/pkg/parameter"
)

// CubeParameterName is the name a CubeComponent requires of its parameter.
const CubeParameterName = "cube"

// CubeComponent is parameterized by a full (channel, row, column) data cube.
type CubeComponent struct {
	Component
	cube *parameter.Parameter
}

// NewCubeComponent creates a component from a parameter named "cube" whose
// shape equals the component box. The box defaults to the frame box.
func NewCubeComponent(f Frame, cube *parameter.Parameter, opts ...Option) (*CubeComponent, error) {
	if cube == nil || cube.Name != CubeParameterName {
		return nil, modelerr.New(modelerr.CodeTypeMismatch, "cube component needs a %q parameter", CubeParameterName)
	}
	o := applyOptions(opts)
	c, err := newComponent(f, o.box, nil, []*parameter.Parameter{cube})
	if err != nil {
		return nil, err
	}
	data, err := cube.Cube()
	if err != nil {
		return nil, err
	}
	if data.Shape != c.box.Shape {
		return nil, modelerr.New(modelerr.CodeInvalidDimension, "cube shape %v does not match box %v", data.Shape, c.box.Shape)
	}
	return &CubeComponent{Component: c, cube: cube}, nil
}

// NewCubeComponentFromData wraps data in a positive "cube" parameter with a
// relative step size. WithParameterOptions adjusts that parameter.
func NewCubeComponentFromData(f Frame, data models.Cube, opts ...Option) (*CubeComponent, error) {
	popts := append([]parameter.Option{
		parameter.WithStep(parameter.RelativeStep(0.1, 0)),
		parameter.WithConstraint(parameter.PositivityConstraint{}),
	}, applyOptions(opts).paramOpts...)
	p, err := parameter.New(CubeParameterName, data.Clone().Data, data.Shape[:], popts...)
	if err != nil {
		return nil, err
	}
	return NewCubeComponent(f, p, opts...)
}

// UpdateBox keeps the box consistent with the cube shape.
func (c *CubeComponent) UpdateBox(b bbox.Box) error {
	if b.Shape != [3]int(c.cube.Shape) {
		return modelerr.New(modelerr.CodeInvalidDimension, "box %v does not match cube shape %v", b.Shape, c.cube.Shape)
	}
	return c.Component.UpdateBox(b)
}

// Render implements Model. The result never aliases the parameter.
func (c *CubeComponent) Render(values parameter.Values, target Frame) models.Cube {
	model := models.NewCube(c.box.Shape)
	copy(model.Data, values.Of(c.cube))
	return c.project(target, model)
}
