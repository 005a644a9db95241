// Package zones turns the label codes sampled around a contact into a
// ranked breakdown of anatomical zones and a gray/white polarity score.
package zones

import (
	"math"
	"regexp"
	"sort"

	"github.com/rotisserie/eris"

	"brainzone/internal/models"
)

// Cerebral white matter codes of the FreeSurfer lookup scheme.
const (
	LeftWhiteMatter  = 2
	RightWhiteMatter = 41
)

// hemispherePrefix matches the qualifiers that only encode hemisphere
// or tissue type: "ctx-lh-", "ctx_rh_", "Left-", "Right-Cerebral-", ...
var hemispherePrefix = regexp.MustCompile(`ctx[-_][lr]h[-_]|(Right|Left)-(Cerebral-)?`)

// LabelSource resolves atlas codes to raw structure names.
type LabelSource interface {
	Name(code int) (string, bool)
}

// Resolver shortens canonical zone labels.
type Resolver interface {
	Resolve(label string) string
}

// Canonical strips hemisphere and tissue qualifiers from a raw
// structure name, so "ctx-lh-precentral" and "ctx-rh-precentral" both
// become "precentral" and "Left-Cerebral-White-Matter" becomes
// "White-Matter".
func Canonical(name string) string {
	return hemispherePrefix.ReplaceAllString(name, "")
}

// IsWhiteMatter reports whether code is cerebral white matter.
func IsWhiteMatter(code int) bool {
	return code == LeftWhiteMatter || code == RightWhiteMatter
}

// PTD returns the normalised gray-minus-white excess (gray-white)/(gray+white).
func PTD(gray, white int) (float64, error) {
	if gray+white == 0 {
		return 0, eris.Wrap(models.ErrEmptyNeighborhood, "zones: no voxels sampled")
	}
	return float64(gray-white) / float64(gray+white), nil
}

// Percent returns count/total*100 rounded half-to-even.
func Percent(count, total int) int {
	return int(math.RoundToEven(float64(count) / float64(total) * 100))
}

// Aggregate builds the zone breakdown of a sampled neighborhood.
//
// Distinct codes are visited in ascending order; each is named through
// labels, canonicalised, then passed through resolver (which may be
// nil). Codes that end up under the same label are counted as one zone.
// Zones are ranked by descending voxel count, ties keeping the order in
// which they were first met.
func Aggregate(codes []int, labels LabelSource, resolver Resolver) (*models.Breakdown, error) {
	total := len(codes)
	if total == 0 {
		return nil, eris.Wrap(models.ErrEmptyNeighborhood, "zones: no voxels sampled")
	}

	counts := make(map[int]int)
	white := 0
	for _, code := range codes {
		counts[code]++
		if IsWhiteMatter(code) {
			white++
		}
	}
	gray := total - white

	ptd, err := PTD(gray, white)
	if err != nil {
		return nil, err
	}

	distinct := make([]int, 0, len(counts))
	for code := range counts {
		distinct = append(distinct, code)
	}
	sort.Ints(distinct)

	var zones []models.ZoneShare
	position := make(map[string]int)
	for _, code := range distinct {
		name, ok := labels.Name(code)
		if !ok {
			return nil, eris.Wrapf(models.ErrUnknownLabel, "zones: code %d is not in the lookup table", code)
		}

		label := Canonical(name)
		if resolver != nil {
			label = resolver.Resolve(label)
		}

		if at, seen := position[label]; seen {
			zones[at].Count += counts[code]
			continue
		}
		position[label] = len(zones)
		zones = append(zones, models.ZoneShare{Label: label, Count: counts[code]})
	}

	sort.SliceStable(zones, func(a, b int) bool {
		return zones[a].Count > zones[b].Count
	})
	for i := range zones {
		zones[i].Percent = Percent(zones[i].Count, total)
	}

	return &models.Breakdown{
		Zones: zones,
		Total: total,
		White: white,
		Gray:  gray,
		PTD:   ptd,
	}, nil
}
