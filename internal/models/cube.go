package models

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Cube is a dense hyper-spectral array addressed as (channel, row, column).
//
// Data is stored in row-major order, so the pixel (z, y, x) lives at
// z*Height*Width + y*Width + x, the same layout used for reconstructed volumes.
type Cube struct {
	// Shape holds the extent along depth (channels), height and width
	Shape [3]int

	// Data is the flattened array, len(Data) == Shape[0]*Shape[1]*Shape[2]
	Data []float64
}

// NewCube allocates a zero-filled cube of the given shape.
// Negative extents are treated as zero.
func NewCube(shape [3]int) Cube {
	for i := range shape {
		if shape[i] < 0 {
			shape[i] = 0
		}
	}
	return Cube{
		Shape: shape,
		Data:  make([]float64, shape[0]*shape[1]*shape[2]),
	}
}

// CubeFromData wraps data without copying. It fails when the length of data
// does not match the shape.
func CubeFromData(shape [3]int, data []float64) (Cube, error) {
	if shape[0] < 0 || shape[1] < 0 || shape[2] < 0 {
		return Cube{}, fmt.Errorf("negative cube shape %v", shape)
	}
	if n := shape[0] * shape[1] * shape[2]; n != len(data) {
		return Cube{}, fmt.Errorf("cube shape %v needs %d values, got %d", shape, n, len(data))
	}
	return Cube{Shape: shape, Data: data}, nil
}

// CubeFromMatrix copies a 2D image into a single-channel cube.
func CubeFromMatrix(m mat.Matrix) Cube {
	r, c := m.Dims()
	cube := NewCube([3]int{1, r, c})
	for y := 0; y < r; y++ {
		for x := 0; x < c; x++ {
			cube.Data[y*c+x] = m.At(y, x)
		}
	}
	return cube
}

// Depth returns the number of channels.
func (c Cube) Depth() int { return c.Shape[0] }

// Height returns the number of rows.
func (c Cube) Height() int { return c.Shape[1] }

// Width returns the number of columns.
func (c Cube) Width() int { return c.Shape[2] }

// Len returns the number of elements.
func (c Cube) Len() int { return len(c.Data) }

// Empty reports whether the cube has no elements.
func (c Cube) Empty() bool { return len(c.Data) == 0 }

// Index returns the flat offset of (z, y, x).
func (c Cube) Index(z, y, x int) int {
	return (z*c.Shape[1]+y)*c.Shape[2] + x
}

// At returns the value at (z, y, x).
func (c Cube) At(z, y, x int) float64 {
	return c.Data[c.Index(z, y, x)]
}

// Set stores v at (z, y, x).
func (c Cube) Set(z, y, x int, v float64) {
	c.Data[c.Index(z, y, x)] = v
}

// Plane returns channel z as a row-major slice sharing storage with the cube.
func (c Cube) Plane(z int) []float64 {
	n := c.Shape[1] * c.Shape[2]
	return c.Data[z*n : (z+1)*n]
}

// Row returns row y of channel z, sharing storage with the cube.
func (c Cube) Row(z, y int) []float64 {
	off := c.Index(z, y, 0)
	return c.Data[off : off+c.Shape[2]]
}

// Matrix copies channel z into a new dense matrix. It returns nil when the
// plane has no pixels since gonum cannot represent zero-sized matrices.
func (c Cube) Matrix(z int) *mat.Dense {
	if c.Shape[1] == 0 || c.Shape[2] == 0 {
		return nil
	}
	plane := make([]float64, c.Shape[1]*c.Shape[2])
	copy(plane, c.Plane(z))
	return mat.NewDense(c.Shape[1], c.Shape[2], plane)
}

// Clone returns a deep copy.
func (c Cube) Clone() Cube {
	data := make([]float64, len(c.Data))
	copy(data, c.Data)
	return Cube{Shape: c.Shape, Data: data}
}

// Fill sets every element to v.
func (c Cube) Fill(v float64) {
	for i := range c.Data {
		c.Data[i] = v
	}
}

// Sum returns the total of all elements.
func (c Cube) Sum() float64 {
	if len(c.Data) == 0 {
		return 0
	}
	return floats.Sum(c.Data)
}

// Max returns the largest element, or 0 for an empty cube.
func (c Cube) Max() float64 {
	if len(c.Data) == 0 {
		return 0
	}
	return floats.Max(c.Data)
}

// SameShape reports whether both cubes have identical extents.
func (c Cube) SameShape(o Cube) bool {
	return c.Shape == o.Shape
}
