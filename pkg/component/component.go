// Package component builds hierarchical source models and renders them into
// frames.
//
// Every node of a model graph carries a frame, the coordinate system shared
// by the whole graph, and a box locating its own rendered array inside that
// frame. Leaves evaluate their parameters directly (Factorized, CubeComponent);
// Combined folds the renders of its children. Rendering without a target
// frame returns the array over the node's box; rendering into a frame places
// that array at the box position and leaves every other pixel zero.
//
// All structural problems are reported by the constructors and by
// UpdateFrame/UpdateBox. A successfully built graph renders without errors.
package component

import (
	"reflect"

	"deblend/internal/models"
	"deblend/pkg/bbox"
	"deblend/pkg/frame"
	"deblend/pkg/modelerr"
	"deblend/pkg/parameter"
)

// Frame is the coordinate system a model is rendered into.
type Frame interface {
	Shape() [3]int
	Box() bbox.Box
}

// SameFrame reports whether a and b are the same frame. Frames of comparable
// dynamic type (typically pointers) are compared by identity. Other frame
// values cannot be compared with == and match when their types and boxes are
// equal.
func SameFrame(a, b Frame) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return a.Box().Equal(b.Box())
}

// typedFrame is implemented by frames that declare an element type.
type typedFrame interface {
	DType() frame.DType
}

// Model is a node of a model graph.
type Model interface {
	// Box is the region of the frame the node renders into.
	Box() bbox.Box
	// Frame is the coordinate system of the graph.
	Frame() Frame
	// Parameters lists the parameters of the node and its descendants in
	// depth-first order.
	Parameters() []*parameter.Parameter
	// Children returns the direct sub-models; nil for leaves.
	Children() []Model
	// Render evaluates the node. With a nil target the result has the shape
	// of Box(); otherwise it has the shape of the target frame.
	Render(values parameter.Values, target Frame) models.Cube
}

// Component holds the state shared by all nodes: frame, box and the cached
// overlap between them. It is embedded by the concrete node types.
type Component struct {
	frame    Frame
	box      bbox.Box
	children []Model
	params   []*parameter.Parameter

	// overlap of box and frame, in frame and in box coordinates
	frameSlices [3]bbox.Range
	modelSlices [3]bbox.Range
}

func newComponent(f Frame, box *bbox.Box, children []Model, params []*parameter.Parameter) (Component, error) {
	if f == nil {
		return Component{}, modelerr.New(modelerr.CodeTypeMismatch, "component needs a frame")
	}
	b := f.Box()
	if box != nil {
		b = *box
	}
	if !b.Valid() {
		return Component{}, modelerr.New(modelerr.CodeInvalidDimension, "box %v has negative extent", b.Shape)
	}
	c := Component{
		frame:    f,
		box:      b,
		children: children,
		params:   params,
	}
	c.refresh()
	return c, nil
}

func (c *Component) refresh() {
	c.frameSlices, c.modelSlices = bbox.OverlappedSlices(c.frame.Box(), c.box)
}

// Box returns the region covered by the node.
func (c *Component) Box() bbox.Box { return c.box }

// Frame returns the coordinate system of the node.
func (c *Component) Frame() Frame { return c.frame }

// Children returns the direct sub-models.
func (c *Component) Children() []Model { return c.children }

// Parameters returns the parameters of the node followed by those of its
// children.
func (c *Component) Parameters() []*parameter.Parameter {
	out := append([]*parameter.Parameter(nil), c.params...)
	for _, child := range c.children {
		out = append(out, child.Parameters()...)
	}
	return out
}

// UpdateFrame assigns a new frame and recomputes the frame/box overlap.
func (c *Component) UpdateFrame(f Frame) error {
	if f == nil {
		return modelerr.New(modelerr.CodeTypeMismatch, "component needs a frame")
	}
	c.frame = f
	c.refresh()
	return nil
}

// UpdateBox assigns a new box and recomputes the frame/box overlap.
func (c *Component) UpdateBox(b bbox.Box) error {
	if !b.Valid() {
		return modelerr.New(modelerr.CodeInvalidDimension, "box %v has negative extent", b.Shape)
	}
	c.box = b
	c.refresh()
	return nil
}

// ModelToFrame projects model, an array over the node's box, into target.
// A nil target selects the node's own frame. Pixels of target outside the box
// are zero. Frames declaring an element type get values in that type.
func (c *Component) ModelToFrame(target Frame, model models.Cube) models.Cube {
	if target == nil {
		target = c.frame
	}
	frameSlices, modelSlices := c.frameSlices, c.modelSlices
	if !target.Box().Equal(c.frame.Box()) {
		frameSlices, modelSlices = bbox.OverlappedSlices(target.Box(), c.box)
	}

	result := models.NewCube(target.Shape())
	bbox.CopyRanges(result, frameSlices, model, modelSlices)
	if t, ok := target.(typedFrame); ok {
		t.DType().Convert(result)
	}
	return result
}

// project returns model unchanged without a target and its projection
// otherwise.
func (c *Component) project(target Frame, model models.Cube) models.Cube {
	if target == nil {
		return model
	}
	return c.ModelToFrame(target, model)
}
