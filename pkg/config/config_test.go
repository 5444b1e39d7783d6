package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"deblend/pkg/component"
	"deblend/pkg/frame"
	"deblend/pkg/modelerr"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Frame.Shape) != 3 || cfg.Frame.Shape[0] != 3 {
		t.Errorf("Expected a 3-channel frame, got %v", cfg.Frame.Shape)
	}
	if cfg.Render.NumWorkers < 1 {
		t.Errorf("Expected at least one worker, got %d", cfg.Render.NumWorkers)
	}
	if len(cfg.Sources) != 2 {
		t.Errorf("Expected 2 default sources, got %d", len(cfg.Sources))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}

	f, err := cfg.BuildFrame()
	if err != nil {
		t.Fatalf("Failed to build frame: %v", err)
	}
	sources, err := cfg.BuildSources(f)
	if err != nil {
		t.Fatalf("Failed to build default sources: %v", err)
	}
	for i, s := range sources {
		if s.Render(nil, f).Sum() <= 0 {
			t.Errorf("Default source %d renders no flux", i)
		}
	}
}

func TestLoadMissingConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for a missing file, got error: %v", err)
	}
	if len(cfg.Sources) != len(DefaultConfig().Sources) {
		t.Errorf("Expected default sources, got %d", len(cfg.Sources))
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scene.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	def := DefaultConfig()
	if len(cfg.Sources) != len(def.Sources) {
		t.Fatalf("Expected %d sources, got %d", len(def.Sources), len(cfg.Sources))
	}
	if cfg.Sources[1].Sigma != def.Sources[1].Sigma {
		t.Errorf("Expected sigma %v, got %v", def.Sources[1].Sigma, cfg.Sources[1].Sigma)
	}
	if len(cfg.Frame.Channels) != 3 {
		t.Errorf("Expected channel names to round trip, got %v", cfg.Frame.Channels)
	}
}

const sceneYAML = `
frame:
  shape: [2, 16, 16]
  dtype: float32
render:
  numWorkers: 2
sources:
  - type: combined
    operation: multiply
    children:
      - type: factorized
        center: [8, 8]
        size: [5, 5]
        spectrum: [1, 2]
        profile: flat
      - type: cube
        center: [8, 8]
        size: [5, 5]
        value: 0.5
  - type: cube
    center: [1, 1]
    size: [4, 4]
    value: 1
`

func TestLoadScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(sceneYAML), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Frame.Channels != nil {
		t.Errorf("Expected no channel names, got %v", cfg.Frame.Channels)
	}
	if cfg.Render.NumWorkers != 2 {
		t.Errorf("Expected 2 workers, got %d", cfg.Render.NumWorkers)
	}

	f, err := cfg.BuildFrame()
	if err != nil {
		t.Fatalf("Failed to build frame: %v", err)
	}
	if f.DType() != frame.Float32 {
		t.Errorf("Expected float32 frame, got %v", f.DType())
	}

	sources, err := cfg.BuildSources(f)
	if err != nil {
		t.Fatalf("Failed to build sources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(sources))
	}

	combined, ok := sources[0].(*component.Combined)
	if !ok {
		t.Fatalf("Expected *component.Combined, got %T", sources[0])
	}
	if combined.Operation() != component.Multiply {
		t.Errorf("Expected multiply, got %v", combined.Operation())
	}
	// channel 1: spectrum 2 * flat 1 * cube 0.5 over 25 pixels
	img := combined.Render(nil, f)
	if got := img.At(1, 8, 8); got != 1 {
		t.Errorf("Expected pixel value 1, got %v", got)
	}
	if got := img.Sum(); got != 25*(0.5+1) {
		t.Errorf("Expected total flux %v, got %v", 25*(0.5+1), got)
	}

	// the second source hangs over the frame corner: only 3x3 pixels per channel remain
	if got := sources[1].Render(nil, f).Sum(); got != 2*9 {
		t.Errorf("Expected clipped flux 18, got %v", got)
	}
}

func TestBuildSourceErrors(t *testing.T) {
	f, err := frame.New([]int{1, 10, 10})
	if err != nil {
		t.Fatalf("Failed to create frame: %v", err)
	}
	off := false

	tests := []struct {
		name string
		sc   SourceConfig
		want error
	}{
		{"unknown type", SourceConfig{Type: "sersic"}, modelerr.ErrTypeMismatch},
		{"missing size", SourceConfig{Type: SourceCube, Center: []int{1, 1}}, modelerr.ErrInvalidDimension},
		{"spectrum length", SourceConfig{Type: SourceFactorized, Center: []int{5, 5}, Size: []int{3, 3}, Spectrum: []float64{1, 2}}, modelerr.ErrInvalidDimension},
		{"unknown profile", SourceConfig{Type: SourceFactorized, Center: []int{5, 5}, Size: []int{3, 3}, Spectrum: []float64{1}, Profile: "moffat"}, modelerr.ErrTypeMismatch},
		{"bad operation", SourceConfig{Type: SourceCombined, Operation: "divide"}, modelerr.ErrInvalidOperation},
		{"no children", SourceConfig{Type: SourceCombined}, modelerr.ErrAlignmentMismatch},
		{"misaligned children", SourceConfig{Type: SourceCombined, Children: []SourceConfig{
			{Type: SourceCube, Center: []int{5, 5}, Size: []int{3, 3}, Value: 1},
			{Type: SourceCube, Center: []int{6, 5}, Size: []int{3, 3}, Value: 1},
		}}, modelerr.ErrAlignmentMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sc.Build(f)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	relaxed := SourceConfig{Type: SourceCombined, CheckBoxes: &off, Children: []SourceConfig{
		{Type: SourceCube, Center: []int{5, 5}, Size: []int{3, 3}, Value: 1},
		{Type: SourceCube, Center: []int{6, 5}, Size: []int{3, 3}, Value: 1},
	}}
	if _, err := relaxed.Build(f); err != nil {
		t.Errorf("Expected misaligned children to be accepted without box check: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frame.Shape = []int{4}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for 1D frame shape")
	}

	cfg = DefaultConfig()
	cfg.Output.SaveSlices = true
	cfg.Output.SlicesDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for missing slices directory")
	}
}

func TestFixedSources(t *testing.T) {
	f, err := frame.New([]int{2, 10, 10})
	if err != nil {
		t.Fatalf("Failed to create frame: %v", err)
	}

	sc := SourceConfig{Type: SourceCombined, Fixed: true, Children: []SourceConfig{
		{Type: SourceFactorized, Center: []int{5, 5}, Size: []int{3, 3}, Spectrum: []float64{1, 1}, Profile: "flat"},
		{Type: SourceCube, Center: []int{5, 5}, Size: []int{3, 3}, Value: 1},
	}}
	m, err := sc.Build(f)
	if err != nil {
		t.Fatalf("Failed to build source: %v", err)
	}
	params := m.Parameters()
	if len(params) != 3 {
		t.Fatalf("Expected 3 parameters, got %d", len(params))
	}
	for _, p := range params {
		if !p.Fixed {
			t.Errorf("Expected parameter %s to be fixed", p.Name)
		}
	}

	free, err := SourceConfig{Type: SourceCube, Center: []int{5, 5}, Size: []int{3, 3}, Value: 1}.Build(f)
	if err != nil {
		t.Fatalf("Failed to build source: %v", err)
	}
	if free.Parameters()[0].Fixed {
		t.Error("Sources are free unless marked fixed")
	}
}
