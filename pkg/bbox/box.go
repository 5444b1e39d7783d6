// Package bbox implements axis-aligned bounding boxes in (depth, row, column)
// index space and the transfer of array contents between boxes whose origins
// differ.
//
// A Box locates a data unit in the global model coordinate system. It is used
// to find spectral and spatial overlap between sources and frames and to map
// from model to observed frames and back. All operations are value based:
// offsetting a box returns a new box and never changes the receiver.
package bbox

import (
	"fmt"

	"deblend/internal/models"
	"deblend/pkg/modelerr"

	"gonum.org/v1/gonum/mat"
)

// Box is an axis-aligned region of a 3D index space.
//
// Shape holds the extent along depth, height and width and is never negative
// for boxes produced by this package. Origin is the minimum (z, y, x) corner
// and may be negative.
type Box struct {
	Shape  [3]int
	Origin [3]int
}

// New builds a box from a shape and an origin given in the caller's
// convention. Two-element inputs are promoted to 3D with a zero depth extent
// and a zero depth origin. A nil origin places the box at zero.
func New(shape, origin []int) (Box, error) {
	s, err := promote(shape, "shape")
	if err != nil {
		return Box{}, err
	}
	var o [3]int
	if origin != nil {
		if o, err = promote(origin, "origin"); err != nil {
			return Box{}, err
		}
	}
	for d, n := range s {
		if n < 0 {
			return Box{}, modelerr.New(modelerr.CodeInvalidDimension, "negative extent %d on axis %d", n, d)
		}
	}
	return Box{Shape: s, Origin: o}, nil
}

func promote(v []int, what string) ([3]int, error) {
	switch len(v) {
	case 2:
		return [3]int{0, v[0], v[1]}, nil
	case 3:
		return [3]int{v[0], v[1], v[2]}, nil
	default:
		return [3]int{}, modelerr.New(modelerr.CodeInvalidDimension, "%s %v must have 2 or 3 axes, got %d", what, v, len(v))
	}
}

// FromShape returns a zero-origin box covering an array of the given shape.
func FromShape(shape [3]int) Box {
	return Box{Shape: shape}
}

// FromCube returns the box covering every element of c.
func FromCube(c models.Cube) Box {
	return FromShape(c.Shape)
}

// FromBounds builds a box from its bounds along each axis. Reversed pairs are
// swapped, so the result does not depend on argument order within a pair.
func FromBounds(front, back, bottom, top, left, right int) Box {
	if back < front {
		back, front = front, back
	}
	if top < bottom {
		top, bottom = bottom, top
	}
	if right < left {
		right, left = left, right
	}
	return Box{
		Shape:  [3]int{back - front, top - bottom, right - left},
		Origin: [3]int{front, bottom, left},
	}
}

// FromData returns the tightest box enclosing every element of c above
// minValue. When nothing exceeds the threshold the zero Box is returned; it
// is empty and callers should read it as "no signal".
func FromData(c models.Cube, minValue float64) Box {
	lo := [3]int{c.Shape[0], c.Shape[1], c.Shape[2]}
	hi := [3]int{-1, -1, -1}
	found := false
	for z := 0; z < c.Shape[0]; z++ {
		for y := 0; y < c.Shape[1]; y++ {
			row := c.Row(z, y)
			for x, v := range row {
				if v <= minValue {
					continue
				}
				found = true
				p := [3]int{z, y, x}
				for d := range p {
					lo[d] = min(lo[d], p[d])
					hi[d] = max(hi[d], p[d])
				}
			}
		}
	}
	if !found {
		return Box{}
	}
	return FromBounds(lo[0], hi[0]+1, lo[1], hi[1]+1, lo[2], hi[2]+1)
}

// FromImage is the 2D form of FromData. The depth axis of the result has zero
// extent, matching the promotion of 2D shapes in New.
func FromImage(m mat.Matrix, minValue float64) Box {
	b := FromData(models.CubeFromMatrix(m), minValue)
	if b.Empty() {
		return Box{}
	}
	return FromBounds(0, 0, b.Bottom(), b.Top(), b.Left(), b.Right())
}

// C returns the number of channels.
func (b Box) C() int { return b.Shape[0] }

// Ny returns the number of pixels in the y-direction.
func (b Box) Ny() int { return b.Shape[1] }

// Nx returns the number of pixels in the x-direction.
func (b Box) Nx() int { return b.Shape[2] }

// Front is the minimum z value.
func (b Box) Front() int { return b.Origin[0] }

// Back is the exclusive maximum z value.
func (b Box) Back() int { return b.Origin[0] + b.Shape[0] }

// Bottom is the minimum y value.
func (b Box) Bottom() int { return b.Origin[1] }

// Top is the exclusive maximum y value.
func (b Box) Top() int { return b.Origin[1] + b.Shape[1] }

// Left is the minimum x value.
func (b Box) Left() int { return b.Origin[2] }

// Right is the exclusive maximum x value.
func (b Box) Right() int { return b.Origin[2] + b.Shape[2] }

// Empty reports whether any axis has zero extent.
func (b Box) Empty() bool {
	return b.Shape[0] <= 0 || b.Shape[1] <= 0 || b.Shape[2] <= 0
}

// Valid reports whether every extent is non-negative.
func (b Box) Valid() bool {
	return b.Shape[0] >= 0 && b.Shape[1] >= 0 && b.Shape[2] >= 0
}

// Contains reports whether p lies in the closed box, i.e. the upper bound is
// inclusive: origin <= p <= origin+shape on every axis. A 2D point is
// promoted with a zero depth coordinate; other lengths are never contained.
func (b Box) Contains(p []int) bool {
	q, err := promote(p, "point")
	if err != nil {
		return false
	}
	for d := range q {
		if q[d] < b.Origin[d] || q[d] > b.Origin[d]+b.Shape[d] {
			return false
		}
	}
	return true
}

// ContainsPixel reports whether the pixel index p lies in the half-open box
// [origin, origin+shape) used by all slicing operations.
func (b Box) ContainsPixel(p [3]int) bool {
	for d := range p {
		if p[d] < b.Origin[d] || p[d] >= b.Origin[d]+b.Shape[d] {
			return false
		}
	}
	return true
}

// Within reports whether every pixel of b lies inside o, using the half-open
// bounds of both boxes.
func (b Box) Within(o Box) bool {
	for d := range b.Shape {
		if b.Origin[d] < o.Origin[d] || b.Origin[d]+b.Shape[d] > o.Origin[d]+o.Shape[d] {
			return false
		}
	}
	return true
}

// Union returns the smallest box that contains both boxes.
func (b Box) Union(o Box) Box {
	return FromBounds(
		min(b.Front(), o.Front()), max(b.Back(), o.Back()),
		min(b.Bottom(), o.Bottom()), max(b.Top(), o.Top()),
		min(b.Left(), o.Left()), max(b.Right(), o.Right()),
	)
}

// Intersect returns the overlap of both boxes. Axes without overlap collapse
// to zero extent at the larger lower bound, so disjoint boxes yield an empty
// box instead of an error.
func (b Box) Intersect(o Box) Box {
	var out Box
	lo := [3]int{max(b.Front(), o.Front()), max(b.Bottom(), o.Bottom()), max(b.Left(), o.Left())}
	hi := [3]int{min(b.Back(), o.Back()), min(b.Top(), o.Top()), min(b.Right(), o.Right())}
	for d := range lo {
		out.Origin[d] = lo[d]
		out.Shape[d] = max(hi[d]-lo[d], 0)
	}
	return out
}

// Offset returns the box shifted by delta.
func (b Box) Offset(delta [3]int) Box {
	for d := range delta {
		b.Origin[d] += delta[d]
	}
	return b
}

// Sub returns the box shifted by -delta, i.e. re-expressed in a coordinate
// system whose origin is delta.
func (b Box) Sub(delta [3]int) Box {
	for d := range delta {
		b.Origin[d] -= delta[d]
	}
	return b
}

// Equal reports structural equality of shape and origin.
func (b Box) Equal(o Box) bool {
	return b.Shape == o.Shape && b.Origin == o.Origin
}

// planar drops the depth axis: the result spans exactly one plane at z=0 and
// keeps the spatial bounds of b.
func (b Box) planar() Box {
	b.Shape[0], b.Origin[0] = 1, 0
	return b
}

func (b Box) String() string {
	return fmt.Sprintf("Box(%d..%d, %d..%d, %d..%d)", b.Front(), b.Back(), b.Bottom(), b.Top(), b.Left(), b.Right())
}
