package attendance

import (
	"sort"

	"github.com/warp/attendance-engine/generic"
)

// Folded is the single effective punch a period's punches collapse into.
type Folded struct {
	Punch Punch

	// Attended is the sum of the individual punch durations.
	Attended generic.Minutes

	// Gap is the time between the folded arrival and departure that no punch
	// covers. It counts as absence.
	Gap generic.Minutes
}

// Fold collapses punches into one arrival/departure pair: the earliest
// arrival and the latest departure. Attended time excludes the gaps between
// punches. An inverted punch or overlapping punches (negative gap) fail
// with an invariant violation.
func Fold(punches []Punch) (Folded, error) {
	if len(punches) == 0 {
		return Folded{}, nil
	}

	ordered := sortedByArrival(punches)

	folded := Folded{Punch: ordered[0]}
	for _, p := range ordered {
		d := p.Duration()
		if d < 0 {
			return Folded{}, &generic.InvariantViolationError{Field: "punch " + p.Window().String(), Value: d}
		}
		folded.Attended += d
		if p.Departure > folded.Punch.Departure {
			folded.Punch.Departure = p.Departure
		}
	}

	folded.Gap = folded.Punch.Duration() - folded.Attended
	if folded.Gap < 0 {
		return Folded{}, &generic.InvariantViolationError{Field: "gap (overlapping punches)", Value: folded.Gap}
	}
	return folded, nil
}

// orderPunches sorts a day's punches by arrival and rejects inverted punches
// and any punch that arrives before the previous one departed. Touching
// punches are fine.
func orderPunches(punches []Punch) ([]Punch, error) {
	ordered := sortedByArrival(punches)
	for i, p := range ordered {
		if d := p.Duration(); d < 0 {
			return nil, &generic.InvariantViolationError{Field: "punch " + p.Window().String(), Value: d}
		}
		if i == 0 {
			continue
		}
		prev := ordered[i-1]
		if gap := generic.Duration(prev.Departure, p.Arrival); gap < 0 {
			return nil, &generic.InvariantViolationError{
				Field: "punch " + p.Window().String() + " overlapping " + prev.Window().String(),
				Value: gap,
			}
		}
	}
	return ordered, nil
}

func sortedByArrival(punches []Punch) []Punch {
	out := make([]Punch, len(punches))
	copy(out, punches)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Arrival < out[j].Arrival })
	return out
}

// splitByPeriod assigns each punch to the first period if it starts before
// the first period ends, otherwise to the second.
func splitByPeriod(plan *ShiftPlan, punches []Punch) (first, second []Punch) {
	for _, p := range punches {
		if p.Arrival < plan.FirstPeriod.End {
			first = append(first, p)
		} else {
			second = append(second, p)
		}
	}
	return first, second
}

// attendedTotal sums the durations of all punches.
func attendedTotal(punches []Punch) (generic.Minutes, error) {
	var total generic.Minutes
	for _, p := range punches {
		d := p.Duration()
		if d < 0 {
			return 0, &generic.InvariantViolationError{Field: "punch " + p.Window().String(), Value: d}
		}
		total += d
	}
	return total, nil
}
