package component

import (
	"deblend/pkg/bbox"
	"deblend/pkg/parameter"
)

type options struct {
	box        *bbox.Box
	operation  Operation
	checkBoxes bool
	paramOpts  []parameter.Option
}

// Option configures the construction of a node.
type Option func(*options)

// WithBox sets the box of a CubeComponent instead of the frame box.
func WithBox(b bbox.Box) Option {
	return func(o *options) { o.box = &b }
}

// WithOperation selects the fold of a Combined node.
func WithOperation(op Operation) Option {
	return func(o *options) { o.operation = op }
}

// WithBoxCheck controls whether a Combined node requires identical child
// boxes. It is on by default.
func WithBoxCheck(check bool) Option {
	return func(o *options) { o.checkBoxes = check }
}

// WithParameterOptions adds options to the parameter NewCubeComponentFromData
// creates, e.g. parameter.Fixed().
func WithParameterOptions(opts ...parameter.Option) Option {
	return func(o *options) { o.paramOpts = append(o.paramOpts, opts...) }
}

func applyOptions(opts []Option) options {
	o := options{operation: Add, checkBoxes: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
