/*
daily.go - Daily report orchestrator

PURPOSE:
  BuildDailyStatus turns one employee-day of inputs into a DailyStatus.
  It picks exactly one reconciliation path, then applies the approved
  exception requests against the resulting absence.

PATHS (selected by plan type and punch count):
  no plan                         -> rest day: attendance only, nothing owed
  simple, no punches              -> absent = nominal shift duration
  simple, one period, one punch   -> reconcile directly
  simple, one period, many        -> fold, then reconcile
  simple, two periods             -> split, fold and reconcile each period
  floating                        -> compare total attendance to daily duty

SIMPLE PLAN PIPELINE (after reconciliation):
  1. Floating-time reallocation, per period
  2. Absence offsets early arrival / late departure minutes
  3. Overtime allocation with caps (ending, beginning, middle)
  4. Remaining late arrivals and early departures become absence

REQUESTS (approved only, filtered by the caller):
  Hourly requests first: the overlap of the request window with the period
  it starts in is excused and deducted from absence. Daily requests
  covering the date then excuse the whole shift and clear the absence.
  Manual traffic requests are ignored here; PairEvents consumes them.

ERRORS:
  All errors are day-fatal (see generic.IsDayFatal). Nothing is clamped.
*/
package attendance

import (
	"fmt"

	"github.com/warp/attendance-engine/generic"
)

// DayInput is everything the engine needs for one employee-day.
type DayInput struct {
	Date generic.Date
	// Plan is nil on days without a shift plan (rest days).
	Plan     *ShiftPlan
	Punches  []Punch
	Requests []Request
}

// BuildDailyStatus computes the status of one employee-day.
func BuildDailyStatus(in DayInput) (*DailyStatus, error) {
	s := NewDailyStatus(in.Date)
	s.Punches = len(in.Punches)

	punches, err := orderPunches(in.Punches)
	if err != nil {
		return nil, err
	}

	if in.Plan == nil {
		total, err := attendedTotal(punches)
		if err != nil {
			return nil, err
		}
		if err := s.AddAttend(total); err != nil {
			return nil, err
		}
		return s, nil
	}

	plan := in.Plan
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	switch plan.Type {
	case PlanSimple:
		err = buildSimple(plan, punches, s)
	case PlanFloating:
		err = buildFloating(plan, punches, s)
	default:
		err = fmt.Errorf("%w: %q", generic.ErrUnsupportedPlanType, plan.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := applyRequests(plan, in.Date, in.Requests, s); err != nil {
		return nil, err
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	return s, nil
}

// =============================================================================
// SIMPLE PLANS
// =============================================================================

func buildSimple(plan *ShiftPlan, punches []Punch, s *DailyStatus) error {
	switch {
	case len(punches) == 0:
		return s.AddAbsent(plan.ShiftDuration())
	case plan.HasSecondPeriod():
		if err := reconcileTwoPeriods(plan, punches, s); err != nil {
			return err
		}
	case len(punches) == 1:
		p := punches[0]
		if err := s.AddAttend(p.Duration()); err != nil {
			return err
		}
		if err := s.FirstPeriodArrivalAndDeparture(reconcilePeriod(plan, plan.FirstPeriod, p)); err != nil {
			return err
		}
	default:
		folded, err := Fold(punches)
		if err != nil {
			return err
		}
		if err := s.AddAttend(folded.Attended); err != nil {
			return err
		}
		if err := s.AddAbsent(folded.Gap); err != nil {
			return err
		}
		if err := s.FirstPeriodArrivalAndDeparture(reconcilePeriod(plan, plan.FirstPeriod, folded.Punch)); err != nil {
			return err
		}
	}
	return settle(plan, s)
}

func reconcileTwoPeriods(plan *ShiftPlan, punches []Punch, s *DailyStatus) error {
	total, err := attendedTotal(punches)
	if err != nil {
		return err
	}
	if err := s.AddAttend(total); err != nil {
		return err
	}

	first, second := splitByPeriod(plan, punches)

	dev, err := foldPeriod(plan, plan.FirstPeriod, first, s)
	if err != nil {
		return err
	}
	if err := s.FirstPeriodArrivalAndDeparture(dev); err != nil {
		return err
	}

	dev, err = foldPeriod(plan, *plan.SecondPeriod, second, s)
	if err != nil {
		return err
	}
	return s.SecondPeriodArrivalAndDeparture(dev)
}

// foldPeriod reconciles the punches of one period. A period nobody punched
// in is absent for its whole span.
func foldPeriod(plan *ShiftPlan, period generic.Window, punches []Punch, s *DailyStatus) (PeriodDeviation, error) {
	if len(punches) == 0 {
		return PeriodDeviation{}, s.AddAbsent(period.Span())
	}
	folded, err := Fold(punches)
	if err != nil {
		return PeriodDeviation{}, err
	}
	if err := s.AddAbsent(folded.Gap); err != nil {
		return PeriodDeviation{}, err
	}
	return reconcilePeriod(plan, period, folded.Punch), nil
}

func settle(plan *ShiftPlan, s *DailyStatus) error {
	floating := generic.Limit(plan.FloatingTime)
	s.FirstPeriod = reallocateFloatingTime(s.FirstPeriod, floating)
	s.SecondPeriod = reallocateFloatingTime(s.SecondPeriod, floating)

	offsetAbsence(s)

	if err := allocateOvertime(plan, s); err != nil {
		return err
	}
	return chargeDeviations(s)
}

// =============================================================================
// FLOATING PLANS
// =============================================================================

func buildFloating(plan *ShiftPlan, punches []Punch, s *DailyStatus) error {
	total, err := attendedTotal(punches)
	if err != nil {
		return err
	}
	if err := s.AddAttend(total); err != nil {
		return err
	}

	duty := plan.DailyDutyDuration
	switch {
	case total > duty:
		return capped(s, CauseFloatingOvertime, total-duty, plan.DailyOvertimeCap)
	case total < duty:
		return s.AddAbsent(duty - total)
	}
	return nil
}

// =============================================================================
// EXCEPTION REQUESTS
// =============================================================================

func applyRequests(plan *ShiftPlan, date generic.Date, requests []Request, s *DailyStatus) error {
	var daily []Request
	for _, r := range requests {
		switch {
		case r.Category == CategoryManualTraffic:
			continue
		case r.Category.IsDaily():
			daily = append(daily, r)
			continue
		}
		if err := r.Validate(); err != nil {
			return err
		}
		if !r.Covers(date) {
			continue
		}
		excused, err := hourlyOverlap(plan, r)
		if err != nil {
			return err
		}
		if err := s.excuse(r.Category.Group(), excused); err != nil {
			return err
		}
		if err := s.DeductAbsent(excused); err != nil {
			return err
		}
	}

	for _, r := range daily {
		if err := r.Validate(); err != nil {
			return err
		}
		if !r.Covers(date) {
			continue
		}
		if err := s.excuse(r.Category.Group(), plan.ShiftDuration()); err != nil {
			return err
		}
		if err := s.DeductAbsent(s.Absent); err != nil {
			return err
		}
	}
	return nil
}

// hourlyOverlap is how much of the request window falls inside the duty
// period it starts in. Floating plans have no periods: the whole window
// counts.
func hourlyOverlap(plan *ShiftPlan, r Request) (generic.Minutes, error) {
	w, err := r.Window()
	if err != nil {
		return 0, err
	}
	if plan.Type == PlanFloating {
		return w.Span(), nil
	}
	return w.Overlap(plan.PeriodFor(w.Start)), nil
}
