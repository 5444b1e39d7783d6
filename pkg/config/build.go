package config

import (
	"fmt"

	"deblend/internal/models"
	"deblend/pkg/bbox"
	"deblend/pkg/component"
	"deblend/pkg/frame"
	"deblend/pkg/modelerr"
	"deblend/pkg/parameter"
	"deblend/pkg/source"

	"gonum.org/v1/gonum/mat"
)

// BuildFrame creates the model frame described by the configuration.
func (c *Config) BuildFrame() (*frame.Frame, error) {
	dtype, err := frame.ParseDType(c.Frame.DType)
	if err != nil {
		return nil, err
	}
	opts := []frame.Option{frame.WithDType(dtype)}
	if len(c.Frame.Channels) > 0 {
		opts = append(opts, frame.WithChannels(c.Frame.Channels...))
	}
	return frame.New(c.Frame.Shape, opts...)
}

// BuildSources creates the model graph of every configured source in f.
func (c *Config) BuildSources(f *frame.Frame) ([]component.Model, error) {
	out := make([]component.Model, 0, len(c.Sources))
	for i, sc := range c.Sources {
		m, err := sc.Build(f)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// Build creates the model node described by sc.
func (sc SourceConfig) Build(f *frame.Frame) (component.Model, error) {
	switch sc.Type {
	case SourceFactorized:
		return sc.buildFactorized(f)
	case SourceCube:
		return sc.buildCube(f)
	case SourceCombined:
		return sc.buildCombined(f)
	default:
		return nil, modelerr.New(modelerr.CodeTypeMismatch, "unknown source type %q", sc.Type)
	}
}

// paramOpts returns the parameter options implied by the node settings.
func (sc SourceConfig) paramOpts() []parameter.Option {
	if sc.Fixed {
		return []parameter.Option{parameter.Fixed()}
	}
	return nil
}

// box returns the node box: all channels of f, Size pixels centred on Center.
func (sc SourceConfig) box(f *frame.Frame) (bbox.Box, error) {
	if len(sc.Center) != 2 || len(sc.Size) != 2 {
		return bbox.Box{}, modelerr.New(modelerr.CodeInvalidDimension, "center and size need (y, x), got %v and %v", sc.Center, sc.Size)
	}
	if sc.Size[0] <= 0 || sc.Size[1] <= 0 {
		return bbox.Box{}, modelerr.New(modelerr.CodeInvalidDimension, "size %v must be positive", sc.Size)
	}
	fb := f.Box()
	return bbox.Box{
		Shape:  [3]int{fb.C(), sc.Size[0], sc.Size[1]},
		Origin: [3]int{fb.Front(), sc.Center[0] - sc.Size[0]/2, sc.Center[1] - sc.Size[1]/2},
	}, nil
}

func (sc SourceConfig) buildFactorized(f *frame.Frame) (component.Model, error) {
	box, err := sc.box(f)
	if err != nil {
		return nil, err
	}
	spectrum, err := source.NewSpectrum(sc.Spectrum, f.Box(), sc.paramOpts()...)
	if err != nil {
		return nil, err
	}

	var img *mat.Dense
	switch sc.Profile {
	case "", "gaussian":
		sigma := sc.Sigma
		if sigma <= 0 {
			sigma = float64(min(box.Ny(), box.Nx())) / 6
		}
		img = source.Gaussian(box.Ny(), box.Nx(), sigma)
	case "flat":
		img = source.Flat(box.Ny(), box.Nx(), 1)
	default:
		return nil, modelerr.New(modelerr.CodeTypeMismatch, "unknown profile %q", sc.Profile)
	}
	morphology, err := source.NewMorphology(img, box, sc.paramOpts()...)
	if err != nil {
		return nil, err
	}
	return component.NewFactorized(f, spectrum, morphology)
}

func (sc SourceConfig) buildCube(f *frame.Frame) (component.Model, error) {
	box, err := sc.box(f)
	if err != nil {
		return nil, err
	}
	data := models.NewCube(box.Shape)
	data.Fill(sc.Value)
	return component.NewCubeComponentFromData(f, data, component.WithBox(box),
		component.WithParameterOptions(sc.paramOpts()...))
}

func (sc SourceConfig) buildCombined(f *frame.Frame) (component.Model, error) {
	op := component.Add
	if sc.Operation != "" {
		var err error
		if op, err = component.ParseOperation(sc.Operation); err != nil {
			return nil, err
		}
	}
	children := make([]component.Model, 0, len(sc.Children))
	for i, child := range sc.Children {
		child.Fixed = child.Fixed || sc.Fixed
		m, err := child.Build(f)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		children = append(children, m)
	}
	check := sc.CheckBoxes == nil || *sc.CheckBoxes
	return component.NewCombined(children, component.WithOperation(op), component.WithBoxCheck(check))
}
