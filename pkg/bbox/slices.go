package bbox

import (
	"fmt"

	"deblend/pkg/modelerr"
)

// Range is a half-open index interval [Start, Stop) along one axis.
type Range struct {
	Start, Stop int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return max(r.Stop-r.Start, 0)
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d", r.Start, r.Stop)
}

// Ranges returns the bounds of b as index ranges, one per axis.
func (b Box) Ranges() [3]Range {
	return [3]Range{
		{b.Front(), b.Back()},
		{b.Bottom(), b.Top()},
		{b.Left(), b.Right()},
	}
}

// SlicesFor returns the ranges that restrict an array of the given shape to
// the part covered by b.
func (b Box) SlicesFor(shape [3]int) [3]Range {
	return b.Intersect(FromShape(shape)).Ranges()
}

// SlicesForShape is the caller-convention form of SlicesFor. A 2D shape
// yields the (y, x) ranges only and ignores the depth extent of b; a 3D shape
// yields all three ranges.
func (b Box) SlicesForShape(shape []int) ([]Range, error) {
	switch len(shape) {
	case 2:
		r := b.planar().SlicesFor([3]int{1, shape[0], shape[1]})
		return r[1:], nil
	case 3:
		r := b.SlicesFor([3]int{shape[0], shape[1], shape[2]})
		return r[:], nil
	default:
		return nil, modelerr.New(modelerr.CodeInvalidDimension, "cannot slice a %d-dimensional array", len(shape))
	}
}

// OverlappedSlices returns the overlap of a and b, once in the local indices
// of a and once in the local indices of b. Slicing an array laid out over a
// with ra and an array laid out over b with rb selects the same pixels.
func OverlappedSlices(a, b Box) (ra, rb [3]Range) {
	overlap := a.Intersect(b)
	return overlap.Sub(a.Origin).Ranges(), overlap.Sub(b.Origin).Ranges()
}
