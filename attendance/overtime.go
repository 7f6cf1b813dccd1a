package attendance

import "github.com/warp/attendance-engine/generic"

// offsetAbsence lets accumulated absence consume positive deviation minutes
// before they can become overtime. Only the first non-zero bucket is drawn
// from, in the order: first early arrival, first late departure, second
// early arrival, second late departure.
func offsetAbsence(s *DailyStatus) {
	if s.Absent <= 0 {
		return
	}
	buckets := []*generic.Minutes{
		&s.FirstPeriod.EarlyArrival,
		&s.FirstPeriod.LateDeparture,
		&s.SecondPeriod.EarlyArrival,
		&s.SecondPeriod.LateDeparture,
	}
	for _, b := range buckets {
		if *b <= 0 {
			continue
		}
		taken := b.Min(s.Absent)
		*b -= taken
		s.Absent -= taken
		return
	}
}

// allocateOvertime converts surplus deviations into capped overtime. The
// part above a cap is burned out. A segment without a configured cap grants
// nothing and burns nothing.
func allocateOvertime(plan *ShiftPlan, s *DailyStatus) error {
	ending := s.deviationFor(plan, plan.LastPeriod()).LateDeparture
	if err := capped(s, CauseEndingOvertime, ending, plan.EndingOvertimeCap); err != nil {
		return err
	}

	if err := capped(s, CauseBeginningOvertime, s.FirstPeriod.EarlyArrival, plan.BeginningOvertimeCap); err != nil {
		return err
	}

	if plan.HasSecondPeriod() {
		middle := s.FirstPeriod.LateDeparture + s.SecondPeriod.EarlyArrival
		if err := capped(s, CauseMiddleOvertime, middle, plan.MiddleOvertimeCap); err != nil {
			return err
		}
	}
	return nil
}

func capped(s *DailyStatus, cause Cause, requested generic.Minutes, cap *generic.Minutes) error {
	limit := generic.Limit(cap)
	if requested <= 0 || limit <= 0 {
		return nil
	}
	return s.grantOvertime(cause, requested, limit)
}

// chargeDeviations books every late arrival and early departure left after
// overtime allocation as absence.
func chargeDeviations(s *DailyStatus) error {
	return s.AddAbsent(s.FirstPeriod.LateArrival + s.FirstPeriod.EarlyDeparture +
		s.SecondPeriod.LateArrival + s.SecondPeriod.EarlyDeparture)
}
