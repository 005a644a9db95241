package coords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityMapper(t *testing.T) {
	mp := NewMapper(Identity())

	assert.Equal(t, Index{3, 4, 5}, mp.ToIndex([3]float64{3, 4, 5}))
	assert.Equal(t, Index{3, 4, 5}, mp.ToIndex([3]float64{3.2, 3.7, 4.9}))
	assert.Equal(t, Index{-1, 0, 0}, mp.ToIndex([3]float64{-1.2, -0.3, 0.4}))
}

func TestMapperAppliesAffine(t *testing.T) {
	// 2 mm isotropic voxels with the origin at (-10, -20, 4)
	mp := NewMapper([16]float64{
		0.5, 0, 0, 5,
		0, 0.5, 0, 10,
		0, 0, 0.5, -2,
		0, 0, 0, 1,
	})

	v := mp.Transform([3]float64{-10, -20, 4})
	assert.InDeltaSlice(t, []float64{0, 0, 0}, v[:], 1e-12)

	assert.Equal(t, Index{2, 3, 1}, mp.ToIndex([3]float64{-6, -14, 6}))
}

func TestMapperAxisSwap(t *testing.T) {
	// RAS to LPS-like flip plus permutation of the first two axes
	mp := NewMapper([16]float64{
		0, -1, 0, 10,
		-1, 0, 0, 20,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})

	assert.Equal(t, Index{8, 19, 3}, mp.ToIndex([3]float64{1, 2, 3}))
}

func TestToIndexRoundsHalfToEven(t *testing.T) {
	mp := NewMapper(Identity())

	tests := []struct {
		in   [3]float64
		want Index
	}{
		{[3]float64{0.5, 1.5, 2.5}, Index{0, 2, 2}},
		{[3]float64{-0.5, -1.5, -2.5}, Index{0, -2, -2}},
		{[3]float64{0.5000001, 1.4999999, 3.5}, Index{1, 1, 4}},
	}

	for _, tt := range tests {
		got := mp.ToIndex(tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
		// deterministic on repeat
		require.Equal(t, got, mp.ToIndex(tt.in))
	}
}

func TestNewMapperCopiesMatrix(t *testing.T) {
	m := Identity()
	mp := NewMapper(m)
	m[3] = 100

	assert.Equal(t, Index{1, 1, 1}, mp.ToIndex([3]float64{1, 1, 1}))
}

func TestIndexHelpers(t *testing.T) {
	x := Index{1, 2, 3}
	assert.Equal(t, Index{0, 4, 3}, x.Add(-1, 2, 0))
	assert.Equal(t, "(1,2,3)", x.String())
}
