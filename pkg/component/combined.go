package component

import (
	"deblend/internal/models"
	"deblend/pkg/bbox"
	"deblend/pkg/modelerr"
	"deblend/pkg/parameter"

	"gonum.org/v1/gonum/floats"
)

// Operation is the elementwise fold applied by a Combined node.
type Operation string

const (
	Add      Operation = "add"
	Multiply Operation = "multiply"
)

// ParseOperation validates an operation name.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case Add, Multiply:
		return op, nil
	default:
		return "", modelerr.New(modelerr.CodeInvalidOperation, "unsupported operation %q", s)
	}
}

// Combined folds the renders of its children elementwise. All children share
// the frame of the first child; by default they must also share its box.
type Combined struct {
	Component
	operation Operation
}

// NewCombined creates a node over children. The operation defaults to Add.
func NewCombined(children []Model, opts ...Option) (*Combined, error) {
	o := applyOptions(opts)
	if _, err := ParseOperation(string(o.operation)); err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, modelerr.New(modelerr.CodeAlignmentMismatch, "combined component needs at least one child")
	}
	for i, c := range children {
		if c == nil {
			return nil, modelerr.New(modelerr.CodeTypeMismatch, "child %d is nil", i)
		}
	}

	f, box := children[0].Frame(), children[0].Box()
	for i, c := range children[1:] {
		if !SameFrame(c.Frame(), f) {
			return nil, modelerr.New(modelerr.CodeAlignmentMismatch, "child %d uses a different frame", i+1)
		}
		if o.checkBoxes && !c.Box().Equal(box) {
			return nil, modelerr.New(modelerr.CodeAlignmentMismatch, "child %d box %v differs from %v", i+1, c.Box(), box)
		}
	}

	c, err := newComponent(f, &box, append([]Model(nil), children...), nil)
	if err != nil {
		return nil, err
	}
	return &Combined{Component: c, operation: o.operation}, nil
}

// Operation returns the fold of the node.
func (c *Combined) Operation() Operation { return c.operation }

// Render implements Model.
func (c *Combined) Render(values parameter.Values, target Frame) models.Cube {
	model := c.childModel(c.children[0], values)
	for _, child := range c.children[1:] {
		m := c.childModel(child, values)
		switch c.operation {
		case Add:
			floats.Add(model.Data, m.Data)
		case Multiply:
			floats.Mul(model.Data, m.Data)
		}
	}
	return c.project(target, model)
}

// childModel renders child over the box of c. Children with a different box
// (only possible without the box check) are re-cut to it.
func (c *Combined) childModel(child Model, values parameter.Values) models.Cube {
	m := child.Render(values, nil)
	if cb := child.Box(); !cb.Equal(c.box) {
		m = bbox.ExtractFrom(c.box.Sub(cb.Origin), m, nil)
	}
	return m
}
