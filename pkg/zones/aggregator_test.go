package zones

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainzone/internal/models"
)

type mapLabels map[int]string

func (m mapLabels) Name(code int) (string, bool) {
	name, ok := m[code]
	return name, ok
}

type mapResolver map[string]string

func (m mapResolver) Resolve(label string) string {
	if short, ok := m[label]; ok {
		return short
	}
	return label
}

var freesurfer = mapLabels{
	0:    "Unknown",
	2:    "Left-Cerebral-White-Matter",
	3:    "Left-Cerebral-Cortex",
	4:    "Left-Lateral-Ventricle",
	17:   "Left-Hippocampus",
	41:   "Right-Cerebral-White-Matter",
	53:   "Right-Hippocampus",
	1024: "ctx-lh-precentral",
	2024: "ctx-rh-precentral",
	1028: "ctx_lh_superiorfrontal",
}

func repeat(code, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = code
	}
	return out
}

func TestCanonical(t *testing.T) {
	tests := map[string]string{
		"ctx-lh-precentral":           "precentral",
		"ctx-rh-precentral":           "precentral",
		"ctx_lh_superiorfrontal":      "superiorfrontal",
		"ctx_rh_G_front_middle":       "G_front_middle",
		"Left-Cerebral-White-Matter":  "White-Matter",
		"Right-Cerebral-White-Matter": "White-Matter",
		"Left-Hippocampus":            "Hippocampus",
		"Right-Lateral-Ventricle":     "Lateral-Ventricle",
		"Unknown":                     "Unknown",
		"WM-hypointensities":          "WM-hypointensities",
	}
	for in, want := range tests {
		assert.Equal(t, want, Canonical(in), in)
	}
}

func TestAggregateAllWhite(t *testing.T) {
	b, err := Aggregate(repeat(2, 7), freesurfer, nil)
	require.NoError(t, err)

	require.Len(t, b.Zones, 1)
	assert.Equal(t, models.ZoneShare{Label: "White-Matter", Count: 7, Percent: 100}, b.Zones[0])
	assert.Equal(t, 7, b.White)
	assert.Equal(t, 0, b.Gray)
	assert.Equal(t, -1.0, b.PTD)
}

func TestAggregateAllGray(t *testing.T) {
	b, err := Aggregate(repeat(3, 33), freesurfer, nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, b.PTD)
	assert.Equal(t, "Cortex", b.Zones[0].Label)
	assert.Equal(t, 100, b.Zones[0].Percent)
}

func TestAggregateMergesHemispheres(t *testing.T) {
	codes := append(repeat(1024, 3), repeat(2024, 2)...)
	codes = append(codes, repeat(17, 2)...)

	b, err := Aggregate(codes, freesurfer, nil)
	require.NoError(t, err)

	require.Len(t, b.Zones, 2)
	assert.Equal(t, "precentral", b.Zones[0].Label)
	assert.Equal(t, 5, b.Zones[0].Count)
	assert.Equal(t, 71, b.Zones[0].Percent)
	assert.Equal(t, "Hippocampus", b.Zones[1].Label)
	assert.Equal(t, 29, b.Zones[1].Percent)
}

func TestAggregateLeftAndRightWhiteMatter(t *testing.T) {
	codes := append(repeat(2, 2), repeat(41, 2)...)
	codes = append(codes, 3, 3, 3, 3)

	b, err := Aggregate(codes, freesurfer, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, b.White)
	assert.Equal(t, 4, b.Gray)
	assert.Equal(t, 0.0, b.PTD)

	// Cortex (code 3) was discovered after White-Matter (code 2), so the
	// tie keeps White-Matter first
	require.Len(t, b.Zones, 2)
	assert.Equal(t, "White-Matter", b.Zones[0].Label)
	assert.Equal(t, "Cortex", b.Zones[1].Label)
	assert.Equal(t, 50, b.Zones[0].Percent)
}

func TestAggregateOrdering(t *testing.T) {
	// 17 x1, 4 x3, 0 x2, 3 x1
	codes := []int{4, 17, 0, 4, 3, 0, 4}

	b, err := Aggregate(codes, freesurfer, nil)
	require.NoError(t, err)

	labels := make([]string, len(b.Zones))
	for i, z := range b.Zones {
		labels[i] = z.Label
	}
	assert.Equal(t, []string{"Lateral-Ventricle", "Unknown", "Cortex", "Hippocampus"}, labels)

	for i := 1; i < len(b.Zones); i++ {
		assert.GreaterOrEqual(t, b.Zones[i-1].Count, b.Zones[i].Count)
	}
}

func TestAggregateUsesResolver(t *testing.T) {
	resolver := mapResolver{"precentral": "PreC", "Hippocampus": "Hip"}
	codes := []int{1024, 2024, 53, 17, 17}

	b, err := Aggregate(codes, freesurfer, resolver)
	require.NoError(t, err)

	require.Len(t, b.Zones, 2)
	assert.Equal(t, "Hip", b.Zones[0].Label)
	assert.Equal(t, 3, b.Zones[0].Count)
	assert.Equal(t, "PreC", b.Zones[1].Label)
	assert.Equal(t, 2, b.Zones[1].Count)
}

func TestAggregatePercentagesSumToHundred(t *testing.T) {
	samples := [][]int{
		{0, 2, 3, 4, 17, 41, 53},
		append(append(repeat(3, 11), repeat(2, 11)...), repeat(17, 11)...),
		{1024, 1024, 2024, 3, 3, 3, 4, 4, 0, 0, 0, 0, 17},
	}

	for _, codes := range samples {
		b, err := Aggregate(codes, freesurfer, nil)
		require.NoError(t, err)

		sum := 0
		for _, z := range b.Zones {
			sum += z.Percent
		}
		assert.InDelta(t, 100, sum, float64(len(b.Zones)), "codes %v", codes)
		assert.GreaterOrEqual(t, b.PTD, -1.0)
		assert.LessOrEqual(t, b.PTD, 1.0)
		assert.Equal(t, len(codes), b.White+b.Gray)
	}
}

func TestAggregateUnknownCode(t *testing.T) {
	_, err := Aggregate([]int{2, 2, 9999}, freesurfer, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, models.ErrUnknownLabel))
	assert.Contains(t, err.Error(), "9999")
}

func TestAggregateEmpty(t *testing.T) {
	_, err := Aggregate(nil, freesurfer, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, models.ErrEmptyNeighborhood))
}

func TestPercentRoundsHalfToEven(t *testing.T) {
	assert.Equal(t, 12, Percent(1, 8))  // 12.5
	assert.Equal(t, 38, Percent(3, 8))  // 37.5
	assert.Equal(t, 14, Percent(1, 7))  // 14.28
	assert.Equal(t, 100, Percent(7, 7))
}

func TestPTD(t *testing.T) {
	v, err := PTD(3, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	_, err = PTD(0, 0)
	assert.True(t, eris.Is(err, models.ErrEmptyNeighborhood))
}
