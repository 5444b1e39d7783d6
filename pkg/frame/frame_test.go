package frame

import (
	"errors"
	"testing"

	"deblend/internal/models"
	"deblend/pkg/bbox"
	"deblend/pkg/modelerr"
)

func TestNewFrame(t *testing.T) {
	f, err := New([]int{3, 20, 30}, WithChannels("g", "r", "i"), WithDType(Float32))
	if err != nil {
		t.Fatalf("Failed to create frame: %v", err)
	}
	if f.Shape() != [3]int{3, 20, 30} {
		t.Errorf("Expected shape (3,20,30), got %v", f.Shape())
	}
	if !f.Box().Equal(bbox.FromShape([3]int{3, 20, 30})) {
		t.Errorf("Unexpected frame box %v", f.Box())
	}
	if f.C() != 3 || len(f.Channels()) != 3 {
		t.Errorf("Expected 3 channels, got %d (%v)", f.C(), f.Channels())
	}
	if f.DType() != Float32 {
		t.Errorf("Expected float32, got %v", f.DType())
	}
}

func TestNewFrameImage(t *testing.T) {
	f, err := New([]int{8, 9}, WithOrigin([3]int{0, -4, 2}))
	if err != nil {
		t.Fatalf("Failed to create frame: %v", err)
	}
	if f.Shape() != [3]int{1, 8, 9} {
		t.Errorf("Expected a single channel, got %v", f.Shape())
	}
	if f.Box().Origin != [3]int{0, -4, 2} {
		t.Errorf("Expected origin (0,-4,2), got %v", f.Box().Origin)
	}
}

func TestNewFrameErrors(t *testing.T) {
	if _, err := New([]int{1, 2, 3, 4}); !errors.Is(err, modelerr.ErrInvalidDimension) {
		t.Errorf("Expected ErrInvalidDimension for 4D shape, got %v", err)
	}
	if _, err := New([]int{2, 0, 3}); !errors.Is(err, modelerr.ErrInvalidDimension) {
		t.Errorf("Expected ErrInvalidDimension for empty axis, got %v", err)
	}
	if _, err := New([]int{2, 4, 4}, WithChannels("g")); !errors.Is(err, modelerr.ErrInvalidDimension) {
		t.Errorf("Expected ErrInvalidDimension for channel count, got %v", err)
	}
}

func TestDType(t *testing.T) {
	for _, name := range []string{"float32", "F4"} {
		if d, err := ParseDType(name); err != nil || d != Float32 {
			t.Errorf("ParseDType(%q) = %v, %v", name, d, err)
		}
	}
	if d, err := ParseDType(""); err != nil || d != Float64 {
		t.Errorf("ParseDType(\"\") = %v, %v", d, err)
	}
	if _, err := ParseDType("int8"); !errors.Is(err, modelerr.ErrTypeMismatch) {
		t.Errorf("Expected ErrTypeMismatch, got %v", err)
	}

	c := models.NewCube([3]int{1, 1, 2})
	c.Data[0], c.Data[1] = 0.1, 1.5
	Float32.Convert(c)
	if c.Data[0] != float64(float32(0.1)) || c.Data[1] != 1.5 {
		t.Errorf("Unexpected float32 conversion %v", c.Data)
	}
	c.Data[0] = 0.1
	Float64.Convert(c)
	if c.Data[0] != 0.1 {
		t.Errorf("Float64 conversion should keep values, got %v", c.Data[0])
	}
}
