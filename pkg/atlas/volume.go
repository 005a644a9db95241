// Package atlas holds labelled atlas volumes in memory and loads them
// from a stack of 2D label slices.
package atlas

import (
	"github.com/rotisserie/eris"

	"brainzone/internal/models"
	"brainzone/pkg/coords"
)

// Volume is a 3D grid of integer label codes plus the affine transform
// from physical (RAS) space to voxel indices.
type Volume struct {
	// Data holds the codes in k-major order: k*Width*Height + j*Width + i
	Data []int

	// Width, Height and Depth are the voxel counts along i, j and k
	Width  int
	Height int
	Depth  int

	// Transform is the row-major 4x4 physical-to-index matrix
	Transform [16]float64
}

// New creates a zero-filled volume with an identity transform
func New(width, height, depth int) (*Volume, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, eris.Wrapf(models.ErrConfiguration,
			"atlas: invalid dimensions %dx%dx%d", width, height, depth)
	}
	return &Volume{
		Data:      make([]int, width*height*depth),
		Width:     width,
		Height:    height,
		Depth:     depth,
		Transform: coords.Identity(),
	}, nil
}

func (v *Volume) index(i, j, k int) int {
	return k*v.Width*v.Height + j*v.Width + i
}

// Dims returns the volume size in voxels
func (v *Volume) Dims() (int, int, int) {
	return v.Width, v.Height, v.Depth
}

// Contains reports whether (i, j, k) is inside the volume
func (v *Volume) Contains(i, j, k int) bool {
	return i >= 0 && i < v.Width && j >= 0 && j < v.Height && k >= 0 && k < v.Depth
}

// Sample returns the code at (i, j, k). The caller must stay in bounds.
func (v *Volume) Sample(i, j, k int) int {
	return v.Data[v.index(i, j, k)]
}

// Set stores code at (i, j, k)
func (v *Volume) Set(i, j, k, code int) {
	v.Data[v.index(i, j, k)] = code
}

// Fill sets every voxel to code
func (v *Volume) Fill(code int) {
	for n := range v.Data {
		v.Data[n] = code
	}
}

// FillBall sets every voxel within radius of the center to code.
// Voxels outside the volume are ignored.
func (v *Volume) FillBall(center coords.Index, radius, code int) {
	r2 := radius * radius
	for i := -radius; i <= radius; i++ {
		for j := -radius; j <= radius; j++ {
			for k := -radius; k <= radius; k++ {
				if i*i+j*j+k*k > r2 {
					continue
				}
				p := center.Add(i, j, k)
				if v.Contains(p.I, p.J, p.K) {
					v.Set(p.I, p.J, p.K, code)
				}
			}
		}
	}
}

// PhysicalToIndex returns the physical-to-index transform
func (v *Volume) PhysicalToIndex() [16]float64 {
	return v.Transform
}

// Codes returns the distinct codes present with their voxel counts
func (v *Volume) Codes() map[int]int {
	counts := make(map[int]int)
	for _, c := range v.Data {
		counts[c]++
	}
	return counts
}
