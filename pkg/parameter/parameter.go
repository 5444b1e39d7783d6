// Package parameter holds the optimisable values of a model together with the
// step-size and constraint policies an optimiser applies to them. The model
// graph only reads values; updating them is the optimiser's job.
package parameter

import (
	"fmt"

	"deblend/internal/models"
	"deblend/pkg/modelerr"

	"gonum.org/v1/gonum/stat"
)

// StepFunc returns the gradient step size for the current value x at
// iteration it.
type StepFunc func(x []float64, it int) float64

// RelativeStep returns a step proportional to the mean of x, floored at
// minimum.
func RelativeStep(factor, minimum float64) StepFunc {
	return func(x []float64, it int) float64 {
		if len(x) == 0 {
			return minimum
		}
		return max(minimum, factor*stat.Mean(x, nil))
	}
}

// Constraint projects a value back onto its feasible set.
type Constraint interface {
	Project(x []float64, step float64)
}

// PositivityConstraint clamps every element to at least Zero.
type PositivityConstraint struct {
	Zero float64
}

// Project implements Constraint.
func (c PositivityConstraint) Project(x []float64, step float64) {
	for i, v := range x {
		if v < c.Zero {
			x[i] = c.Zero
		}
	}
}

// Parameter is a named, shaped array of model values.
type Parameter struct {
	Name       string
	Data       []float64
	Shape      []int
	Step       StepFunc
	Constraint Constraint
	Fixed      bool
}

// Option configures a Parameter.
type Option func(*Parameter)

// WithStep sets the step-size policy.
func WithStep(s StepFunc) Option { return func(p *Parameter) { p.Step = s } }

// WithConstraint sets the constraint.
func WithConstraint(c Constraint) Option { return func(p *Parameter) { p.Constraint = c } }

// Fixed excludes the parameter from optimisation.
func Fixed() Option { return func(p *Parameter) { p.Fixed = true } }

// New creates a parameter over data laid out with shape. The product of the
// shape must equal len(data).
func New(name string, data []float64, shape []int, opts ...Option) (*Parameter, error) {
	n := 1
	for _, s := range shape {
		if s < 0 {
			return nil, modelerr.New(modelerr.CodeInvalidDimension, "parameter %q has negative extent in %v", name, shape)
		}
		n *= s
	}
	if n != len(data) {
		return nil, modelerr.New(modelerr.CodeInvalidDimension, "parameter %q: shape %v needs %d values, got %d", name, shape, n, len(data))
	}
	p := &Parameter{
		Name:  name,
		Data:  data,
		Shape: append([]int(nil), shape...),
		Step:  RelativeStep(0.1, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Size returns the number of values.
func (p *Parameter) Size() int { return len(p.Data) }

// Cube views a 3D parameter as a cube sharing its storage.
func (p *Parameter) Cube() (models.Cube, error) {
	if len(p.Shape) != 3 {
		return models.Cube{}, modelerr.New(modelerr.CodeInvalidDimension, "parameter %q has %d axes, want 3", p.Name, len(p.Shape))
	}
	c, err := models.CubeFromData([3]int{p.Shape[0], p.Shape[1], p.Shape[2]}, p.Data)
	if err != nil {
		return models.Cube{}, modelerr.Wrap(modelerr.CodeInvalidDimension, err, "parameter %q", p.Name)
	}
	return c, nil
}

// StepSize evaluates the step policy for the current value.
func (p *Parameter) StepSize(it int) float64 {
	if p.Step == nil {
		return 0
	}
	return p.Step(p.Data, it)
}

// Set replaces the values and applies the constraint.
func (p *Parameter) Set(data []float64) error {
	if len(data) != len(p.Data) {
		return modelerr.New(modelerr.CodeInvalidDimension, "parameter %q holds %d values, got %d", p.Name, len(p.Data), len(data))
	}
	copy(p.Data, data)
	if p.Constraint != nil {
		p.Constraint.Project(p.Data, p.StepSize(0))
	}
	return nil
}

func (p *Parameter) String() string {
	return fmt.Sprintf("Parameter(%s, shape=%v)", p.Name, p.Shape)
}
