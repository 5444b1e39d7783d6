// Package frame describes the coordinate system a model is expressed in: the
// full hyper-spectral extent of an observation or of the model space, its
// channel names and the element type rendered arrays are stored with.
package frame

import (
	"fmt"
	"strings"

	"deblend/internal/models"
	"deblend/pkg/bbox"
	"deblend/pkg/modelerr"
)

// DType is the numeric element type of rendered arrays.
type DType int

const (
	// Float64 keeps full double precision
	Float64 DType = iota
	// Float32 rounds every value to single precision
	Float32
)

// ParseDType maps a configuration name to a DType.
func ParseDType(s string) (DType, error) {
	switch strings.ToLower(s) {
	case "", "float64", "f8":
		return Float64, nil
	case "float32", "f4":
		return Float32, nil
	default:
		return Float64, modelerr.New(modelerr.CodeTypeMismatch, "unknown element type %q", s)
	}
}

func (d DType) String() string {
	if d == Float32 {
		return "float32"
	}
	return "float64"
}

// Convert rounds the values of c in place to the precision of d and returns c.
func (d DType) Convert(c models.Cube) models.Cube {
	if d == Float32 {
		for i, v := range c.Data {
			c.Data[i] = float64(float32(v))
		}
	}
	return c
}

// Frame is the full-extent coordinate system shared by the nodes of a model
// graph. It is immutable after construction and safe to share between
// goroutines.
type Frame struct {
	box      bbox.Box
	channels []string
	dtype    DType
}

// Option configures a Frame.
type Option func(*Frame)

// WithChannels names the channels of the frame.
func WithChannels(names ...string) Option {
	return func(f *Frame) { f.channels = append([]string(nil), names...) }
}

// WithDType sets the element type of arrays rendered into the frame.
func WithDType(d DType) Option {
	return func(f *Frame) { f.dtype = d }
}

// WithOrigin places the frame at origin instead of zero, e.g. for an
// observation covering part of a larger model space.
func WithOrigin(origin [3]int) Option {
	return func(f *Frame) { f.box.Origin = origin }
}

// New creates a frame of the given shape. A 2D shape describes a single-channel
// image. Every extent must be positive and the number of channel names, if
// given, must match the depth.
func New(shape []int, opts ...Option) (*Frame, error) {
	b, err := bbox.New(shape, nil)
	if err != nil {
		return nil, err
	}
	if len(shape) == 2 {
		b.Shape[0] = 1
	}
	if b.Empty() {
		return nil, modelerr.New(modelerr.CodeInvalidDimension, "frame shape %v has an empty axis", b.Shape)
	}

	f := &Frame{box: b}
	for _, opt := range opts {
		opt(f)
	}
	if f.channels != nil && len(f.channels) != b.C() {
		return nil, modelerr.New(modelerr.CodeInvalidDimension, "%d channel names for %d channels", len(f.channels), b.C())
	}
	return f, nil
}

// Shape returns the (channels, height, width) extent.
func (f *Frame) Shape() [3]int { return f.box.Shape }

// Box returns the region covered by the frame.
func (f *Frame) Box() bbox.Box { return f.box }

// C returns the number of channels.
func (f *Frame) C() int { return f.box.C() }

// Channels returns the channel names, or nil when they were not set.
func (f *Frame) Channels() []string { return f.channels }

// DType returns the element type of rendered arrays.
func (f *Frame) DType() DType { return f.dtype }

func (f *Frame) String() string {
	return fmt.Sprintf("Frame(%v, %s)", f.box, f.dtype)
}
