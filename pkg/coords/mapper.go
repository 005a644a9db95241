// Package coords maps physical (RAS) positions into the discrete voxel
// index space of an atlas volume.
package coords

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Index is a voxel coordinate in the atlas volume
type Index struct {
	I, J, K int
}

func (x Index) String() string {
	return fmt.Sprintf("(%d,%d,%d)", x.I, x.J, x.K)
}

// Add returns x translated by the given offsets
func (x Index) Add(di, dj, dk int) Index {
	return Index{I: x.I + di, J: x.J + dj, K: x.K + dk}
}

// Mapper applies a fixed physical-to-index affine transform.
type Mapper struct {
	// m is the 4x4 homogeneous transform
	m *mat.Dense
}

// NewMapper creates a mapper from a row-major 4x4 matrix.
func NewMapper(m [16]float64) *Mapper {
	data := make([]float64, 16)
	copy(data, m[:])
	return &Mapper{m: mat.NewDense(4, 4, data)}
}

// Identity returns the row-major 4x4 identity matrix
func Identity() [16]float64 {
	return [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Transform returns the continuous index-space coordinate of p: p is
// extended with a homogeneous 1, multiplied by the matrix, and the
// first three components are kept.
func (mp *Mapper) Transform(p [3]float64) [3]float64 {
	in := mat.NewVecDense(4, []float64{p[0], p[1], p[2], 1})
	var out mat.VecDense
	out.MulVec(mp.m, in)
	return [3]float64{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}

// ToIndex maps p to the nearest voxel. Halfway cases round to the even
// neighbour (math.RoundToEven), so a result is the same for every run.
func (mp *Mapper) ToIndex(p [3]float64) Index {
	v := mp.Transform(p)
	return Index{
		I: int(math.RoundToEven(v[0])),
		J: int(math.RoundToEven(v[1])),
		K: int(math.RoundToEven(v[2])),
	}
}
