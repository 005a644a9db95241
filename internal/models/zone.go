package models

// ZoneShare is one entry of a zone breakdown: a canonical zone label
// (resolved to its acronym when one is known) and how much of the
// sampling neighborhood it covers.
type ZoneShare struct {
	// Label is the acronym or canonical structure name
	Label string

	// Count is the number of sampled voxels that fell in this zone
	Count int

	// Percent is Count/Total*100 rounded half-to-even
	Percent int
}

// Breakdown is the classification of a single point's neighborhood.
type Breakdown struct {
	// Zones are ordered by descending Count, ties kept in discovery order
	Zones []ZoneShare

	// Total is the number of voxels sampled
	Total int

	// White and Gray are the white-matter and non-white-matter voxel counts
	White int
	Gray  int

	// PTD is (Gray-White)/(Gray+White), in [-1, 1]
	PTD float64
}

// State is the lifecycle position of a point during a classification run.
type State int

const (
	StatePending State = iota
	StateSkipped
	StateSampled
	StateAggregated
	StateAnnotated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSkipped:
		return "skipped"
	case StateSampled:
		return "sampled"
	case StateAggregated:
		return "aggregated"
	case StateAnnotated:
		return "annotated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	return s == StateSkipped || s == StateAnnotated || s == StateFailed
}

// Outcome records what happened to one point of the batch.
type Outcome struct {
	// Index is the point's position in the point set
	Index int

	// Label is the host's display label for the point, if it has one
	Label string

	State State

	// Stage is the last state reached before a failure
	Stage State

	// Annotation is the text appended to the description (Annotated only)
	Annotation string

	// Breakdown is set for Annotated points
	Breakdown *Breakdown

	// Err is the failure cause (Failed only)
	Err error
}

// Reason returns the taxonomy name of the failure, or "" if the point
// did not fail.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return Reason(o.Err)
}
