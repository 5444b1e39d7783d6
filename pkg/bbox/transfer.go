package bbox

import (
	"deblend/internal/models"

	"gonum.org/v1/gonum/mat"
)

// ExtractFrom copies the part of src covered by b into dst and returns it.
//
// When dst is nil a zero cube of b.Shape is allocated. Only pixels inside both
// src and the box are copied; everything else in dst is left untouched, so a
// box outside src yields an all-zero result.
func ExtractFrom(b Box, src models.Cube, dst *models.Cube) models.Cube {
	var out models.Cube
	if dst == nil {
		out = models.NewCube(b.Shape)
	} else {
		out = *dst
	}

	// src expressed in the frame of the box
	srcBox := FromShape(src.Shape).Sub(b.Origin)
	overlap := srcBox.Intersect(FromShape(out.Shape))
	CopyRanges(out, overlap.Ranges(), src, overlap.Offset(b.Origin).Ranges())
	return out
}

// InsertInto copies the overlapping part of sub into dst at the position of
// b. It is the inverse of ExtractFrom and returns dst.
func InsertInto(b Box, dst models.Cube, sub models.Cube) models.Cube {
	dstBox := FromShape(dst.Shape).Sub(b.Origin)
	overlap := dstBox.Intersect(FromShape(sub.Shape))
	CopyRanges(dst, overlap.Offset(b.Origin).Ranges(), sub, overlap.Ranges())
	return dst
}

// CopyRanges copies src[sr] into dst[dr]. Both range triples must have equal
// lengths; the innermost axis is copied row by row.
func CopyRanges(dst models.Cube, dr [3]Range, src models.Cube, sr [3]Range) {
	nz, ny, nx := dr[0].Len(), dr[1].Len(), dr[2].Len()
	if nz == 0 || ny == 0 || nx == 0 {
		return
	}
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			d := dst.Row(dr[0].Start+z, dr[1].Start+y)
			s := src.Row(sr[0].Start+z, sr[1].Start+y)
			copy(d[dr[2].Start:dr[2].Stop], s[sr[2].Start:sr[2].Stop])
		}
	}
}

// ExtractImage is the 2D form of ExtractFrom. The depth axis of b is
// ignored. When dst is nil a new matrix of b.Ny() x b.Nx() is allocated; if
// that extent is empty nil is returned.
func ExtractImage(b Box, img mat.Matrix, dst *mat.Dense) *mat.Dense {
	pb := b.planar()
	if dst == nil {
		if pb.Empty() {
			return nil
		}
		dst = mat.NewDense(pb.Ny(), pb.Nx(), nil)
	}
	r, c := img.Dims()
	dr, dc := dst.Dims()
	overlap := FromShape([3]int{1, r, c}).Sub(pb.Origin).Intersect(FromShape([3]int{1, dr, dc}))
	ys, xs := overlap.Ranges()[1], overlap.Ranges()[2]
	for y := ys.Start; y < ys.Stop; y++ {
		for x := xs.Start; x < xs.Stop; x++ {
			dst.Set(y, x, img.At(y+pb.Bottom(), x+pb.Left()))
		}
	}
	return dst
}

// InsertImage is the 2D form of InsertInto and returns img.
func InsertImage(b Box, img *mat.Dense, sub mat.Matrix) *mat.Dense {
	pb := b.planar()
	r, c := img.Dims()
	sr, sc := sub.Dims()
	overlap := FromShape([3]int{1, r, c}).Sub(pb.Origin).Intersect(FromShape([3]int{1, sr, sc}))
	ys, xs := overlap.Ranges()[1], overlap.Ranges()[2]
	for y := ys.Start; y < ys.Stop; y++ {
		for x := xs.Start; x < xs.Stop; x++ {
			img.Set(y+pb.Bottom(), x+pb.Left(), sub.At(y, x))
		}
	}
	return img
}
