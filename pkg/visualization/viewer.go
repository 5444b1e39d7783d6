package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"deblend/internal/models"
	"deblend/pkg/bbox"
)

// Viewer exports planes of a rendered model cube as grayscale images.
//
// Axis "z" selects a channel (a y/x image), "y" a row (an x/z image) and "x"
// a column (a z/y image). Intensities are scaled so that the brightest pixel
// of the cube maps to white; negative values are clipped to black.
type Viewer struct {
	// cube holds the rendered data
	cube models.Cube

	// scale maps cube values onto [0, 1]
	scale float64
}

// NewViewer creates a viewer for cube.
func NewViewer(cube models.Cube) *Viewer {
	scale := 0.0
	if m := cube.Max(); m > 0 {
		scale = 1 / m
	}
	return &Viewer{cube: cube, scale: scale}
}

func (v *Viewer) gray(value float64) color.Gray16 {
	return color.Gray16{Y: uint16(math.Max(0, math.Min(65535, value*v.scale*65535)))}
}

// ExtractSlice extracts a 2D plane from the cube along the specified axis.
func (v *Viewer) ExtractSlice(axis string, position int) (*image.Gray16, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}
	depth, height, width := v.cube.Depth(), v.cube.Height(), v.cube.Width()

	var img *image.Gray16
	switch axis {
	case "x", "X":
		if position >= width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, width)
		}
		img = image.NewGray16(image.Rect(0, 0, depth, height))
		for y := 0; y < height; y++ {
			for z := 0; z < depth; z++ {
				img.SetGray16(z, y, v.gray(v.cube.At(z, y, position)))
			}
		}

	case "y", "Y":
		if position >= height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, height)
		}
		img = image.NewGray16(image.Rect(0, 0, width, depth))
		for z := 0; z < depth; z++ {
			for x := 0; x < width; x++ {
				img.SetGray16(x, z, v.gray(v.cube.At(z, position, x)))
			}
		}

	case "z", "Z":
		if position >= depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, depth)
		}
		img = image.NewGray16(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.SetGray16(x, y, v.gray(v.cube.At(position, y, x)))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// ExtractRegion returns the part of the cube covered by b. Pixels of b
// outside the cube are zero.
func (v *Viewer) ExtractRegion(b bbox.Box) models.Cube {
	return bbox.ExtractFrom(b, v.cube, nil)
}

// SaveSlice writes an extracted plane as a PNG image.
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// SaveSliceSequence extracts and saves every plane along the specified axis.
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.cube.Width()
	case "y", "Y":
		maxPos = v.cube.Height()
	case "z", "Z":
		maxPos = v.cube.Depth()
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
