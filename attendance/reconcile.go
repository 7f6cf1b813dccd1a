package attendance

import "github.com/warp/attendance-engine/generic"

// reconcilePeriod measures one folded punch against one duty period.
//
// Tolerances only suppress, they never discount: a late arrival is zeroed
// when PermittedDelay exceeds it and kept whole otherwise. The same holds
// for an early departure under PermittedAcceleration.
//
// The early departure is measured from the arrival to the period end, not
// from the departure. Existing reports depend on that figure; see DESIGN.md.
func reconcilePeriod(plan *ShiftPlan, period generic.Window, p Punch) PeriodDeviation {
	var d PeriodDeviation

	switch {
	case p.Arrival > period.Start:
		d.LateArrival = generic.Duration(period.Start, p.Arrival)
		if delay := generic.Limit(plan.PermittedDelay); delay > 0 && delay > d.LateArrival {
			d.LateArrival = 0
		}
	case p.Arrival < period.Start:
		d.EarlyArrival = generic.Duration(p.Arrival, period.Start)
	}

	switch {
	case p.Departure < period.End:
		d.EarlyDeparture = generic.Duration(p.Arrival, period.End)
		if acc := generic.Limit(plan.PermittedAcceleration); acc > 0 && d.EarlyDeparture < acc {
			d.EarlyDeparture = 0
		}
	case p.Departure > period.End:
		d.LateDeparture = generic.Duration(period.End, p.Departure)
	}

	return d
}

// reallocateFloatingTime lets a late departure pay back a late arrival, up
// to the plan's floating-time budget.
func reallocateFloatingTime(d PeriodDeviation, floatingTime generic.Minutes) PeriodDeviation {
	if d.LateArrival <= 0 || d.LateDeparture <= 0 || floatingTime <= 0 {
		return d
	}
	f := floatingTime.Min(d.LateArrival)
	if d.LateDeparture > f {
		d.LateDeparture -= f
		d.LateArrival -= f
	} else {
		d.LateArrival -= d.LateDeparture
		d.LateDeparture = 0
	}
	return d
}
