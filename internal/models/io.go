package models

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// WriteRaw writes the cube data as little-endian float64 values in row-major
// order. The shape is not stored.
func (c Cube) WriteRaw(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, c.Data); err != nil {
		return fmt.Errorf("error writing cube data: %w", err)
	}
	return nil
}

// ReadRaw reads a cube of the given shape written by WriteRaw.
func ReadRaw(r io.Reader, shape [3]int) (Cube, error) {
	c := NewCube(shape)
	if err := binary.Read(r, binary.LittleEndian, c.Data); err != nil {
		return Cube{}, fmt.Errorf("error reading %v cube: %w", shape, err)
	}
	return c, nil
}

// SaveRaw writes the cube to a file.
func (c Cube) SaveRaw(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	if err := c.WriteRaw(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadRaw reads a cube of the given shape from a file.
func LoadRaw(filename string, shape [3]int) (Cube, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Cube{}, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()
	return ReadRaw(f, shape)
}
