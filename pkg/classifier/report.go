package classifier

import (
	"fmt"
	"sort"
	"strings"

	"brainzone/internal/models"
)

// Report is the end-of-batch record of a classification run.
type Report struct {
	// Total is the number of points in the set
	Total int

	// Outcomes holds one entry per handled point, in point order
	Outcomes []models.Outcome
}

func (r *Report) add(o models.Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Count returns how many points ended in state s.
func (r *Report) Count(s models.State) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == s {
			n++
		}
	}
	return n
}

// Failures returns the failed outcomes in point order.
func (r *Report) Failures() []models.Outcome {
	var failed []models.Outcome
	for _, o := range r.Outcomes {
		if o.State == models.StateFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Reasons counts failures per taxonomy class.
func (r *Report) Reasons() map[string]int {
	reasons := make(map[string]int)
	for _, o := range r.Failures() {
		reasons[o.Reason()]++
	}
	return reasons
}

// Summary renders the counts of annotated, failed and skipped points
// followed by one line per failure. With verbose set, annotated points
// are listed too.
func (r *Report) Summary(verbose bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d points: %d annotated, %d failed, %d skipped",
		r.Total, r.Count(models.StateAnnotated), r.Count(models.StateFailed), r.Count(models.StateSkipped))
	if handled := len(r.Outcomes); handled < r.Total {
		fmt.Fprintf(&b, ", %d not reached", r.Total-handled)
	}
	b.WriteString("\n")

	reasons := r.Reasons()
	names := make([]string, 0, len(reasons))
	for name := range reasons {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: %d\n", name, reasons[name])
	}

	for _, o := range r.Outcomes {
		switch {
		case o.State == models.StateFailed:
			fmt.Fprintf(&b, "  %s failed (%s): %v\n", pointName(o), o.Reason(), o.Err)
		case verbose && o.State == models.StateAnnotated:
			fmt.Fprintf(&b, "  %s: %s\n", pointName(o), o.Annotation)
		}
	}

	return b.String()
}

// pointName refers to a point by index, with its label when known.
func pointName(o models.Outcome) string {
	if o.Label == "" {
		return fmt.Sprintf("point %d", o.Index)
	}
	return fmt.Sprintf("point %d (%s)", o.Index, o.Label)
}
