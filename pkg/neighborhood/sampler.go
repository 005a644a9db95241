// Package neighborhood samples atlas label codes inside a discrete ball
// centred on a voxel.
package neighborhood

import (
	"sync"

	"github.com/rotisserie/eris"

	"brainzone/internal/models"
	"brainzone/pkg/coords"
)

// Volume is read access to an atlas label volume.
type Volume interface {
	// Dims returns the number of voxels along i, j and k
	Dims() (int, int, int)

	// Sample returns the label code stored at voxel (i, j, k)
	Sample(i, j, k int) int
}

// Offset is a displacement from the neighborhood center in voxels
type Offset struct {
	DI, DJ, DK int
}

// offsetCache memoises Offsets by side length; stored slices are never
// modified.
var offsetCache sync.Map

// Radius returns the ball radius used for a side length.
func Radius(sideLength int) int {
	return sideLength / 2
}

// Offsets returns the voxel offsets of the ball inscribed in a cube of
// the given side length: every (i, j, k) with each component in
// [-r, r] and i²+j²+k² <= r², where r = floor(sideLength/2). Order is
// i, then j, then k, each ascending.
//
// The returned slice is shared and must not be modified.
func Offsets(sideLength int) ([]Offset, error) {
	if sideLength < 1 {
		return nil, eris.Wrapf(models.ErrEmptyNeighborhood, "neighborhood: side length %d", sideLength)
	}

	if cached, ok := offsetCache.Load(sideLength); ok {
		return cached.([]Offset), nil
	}

	r := Radius(sideLength)
	r2 := r * r
	offsets := make([]Offset, 0, (2*r+1)*(2*r+1)*(2*r+1))
	for i := -r; i <= r; i++ {
		for j := -r; j <= r; j++ {
			for k := -r; k <= r; k++ {
				if i*i+j*j+k*k <= r2 {
					offsets = append(offsets, Offset{DI: i, DJ: j, DK: k})
				}
			}
		}
	}

	actual, _ := offsetCache.LoadOrStore(sideLength, offsets)
	return actual.([]Offset), nil
}

// Sample returns the label codes of every voxel in the ball around
// center, in Offsets order. If any voxel lies outside the volume the
// whole neighborhood is rejected with ErrIndexOutOfRange.
func Sample(vol Volume, center coords.Index, sideLength int) ([]int, error) {
	offsets, err := Offsets(sideLength)
	if err != nil {
		return nil, err
	}

	w, h, d := vol.Dims()
	codes := make([]int, len(offsets))
	for n, o := range offsets {
		idx := center.Add(o.DI, o.DJ, o.DK)
		if idx.I < 0 || idx.I >= w || idx.J < 0 || idx.J >= h || idx.K < 0 || idx.K >= d {
			return nil, eris.Wrapf(models.ErrIndexOutOfRange,
				"neighborhood: voxel %v around center %v outside volume %dx%dx%d", idx, center, w, h, d)
		}
		codes[n] = vol.Sample(idx.I, idx.J, idx.K)
	}

	return codes, nil
}
