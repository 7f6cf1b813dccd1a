/*
status.go - Daily status accumulator

PURPOSE:
  DailyStatus is both the working state and the result of one employee-day.
  The reconciliation steps feed minutes into it; the caller receives it as
  a value once the day is built.

CRITICAL INVARIANT:
  Every accumulator field is >= 0 after every mutation. Mutators take only
  non-negative arguments and refuse any change that would push a field
  below zero. Violations return *generic.InvariantViolationError and are
  never clamped: a negative count means the input data is inconsistent
  (e.g. a departure before its arrival) and the day must be reported as
  failed.

FIELDS:
  Attend / Absent / Overtime:  Running totals in minutes
  FirstPeriod / SecondPeriod:  Arrival and departure deviations per period
  BurnedOut:                   Overtime denied by a cap, keyed by Cause
  Excused:                     Time covered by approved requests, by group

Mutate a DailyStatus only through its methods.
*/
package attendance

import (
	"github.com/warp/attendance-engine/generic"
)

// PeriodDeviation is how far the folded punch of one period strayed from
// the period's boundaries.
type PeriodDeviation struct {
	EarlyArrival   generic.Minutes
	LateArrival    generic.Minutes
	EarlyDeparture generic.Minutes
	LateDeparture  generic.Minutes
}

// IsZero reports whether the punch matched the period exactly.
func (d PeriodDeviation) IsZero() bool { return d == PeriodDeviation{} }

func (d PeriodDeviation) check(prefix string) error {
	return positiveOnly(
		named{prefix + ".early_arrival", d.EarlyArrival},
		named{prefix + ".late_arrival", d.LateArrival},
		named{prefix + ".early_departure", d.EarlyDeparture},
		named{prefix + ".late_departure", d.LateDeparture},
	)
}

// DailyStatus is the accounting result of one employee-day.
type DailyStatus struct {
	Date generic.Date

	Attend   generic.Minutes
	Absent   generic.Minutes
	Overtime generic.Minutes

	FirstPeriod  PeriodDeviation
	SecondPeriod PeriodDeviation

	BurnedOut map[Cause]generic.Minutes
	Excused   map[RequestGroup]generic.Minutes

	// Punches is how many complete punches the day was built from.
	Punches int
}

// NewDailyStatus returns a zeroed status for the day.
func NewDailyStatus(date generic.Date) *DailyStatus {
	return &DailyStatus{
		Date:      date,
		BurnedOut: make(map[Cause]generic.Minutes),
		Excused:   make(map[RequestGroup]generic.Minutes),
	}
}

// =============================================================================
// GUARDED MUTATORS
// =============================================================================

// deviationFor returns the deviation booked for one of the plan's periods.
func (s *DailyStatus) deviationFor(plan *ShiftPlan, period generic.Window) PeriodDeviation {
	if plan.HasSecondPeriod() && period == *plan.SecondPeriod {
		return s.SecondPeriod
	}
	return s.FirstPeriod
}

// AddAttend rejects negative minutes with an InvariantViolationError.
func (s *DailyStatus) AddAttend(m generic.Minutes) error {
	if err := positiveOnly(named{"attend", m}); err != nil {
		return err
	}
	s.Attend += m
	return nil
}

// AddAbsent rejects negative minutes with an InvariantViolationError.
func (s *DailyStatus) AddAbsent(m generic.Minutes) error {
	if err := positiveOnly(named{"absent", m}); err != nil {
		return err
	}
	s.Absent += m
	return nil
}

// DeductAbsent removes excused minutes from absence. Deducting more than is
// currently absent is an invariant violation.
func (s *DailyStatus) DeductAbsent(m generic.Minutes) error {
	if err := positiveOnly(named{"deduct_absent", m}); err != nil {
		return err
	}
	return decrease("absent", &s.Absent, m)
}

// FirstPeriodArrivalAndDeparture rejects negative deviation fields with an
// InvariantViolationError.
func (s *DailyStatus) FirstPeriodArrivalAndDeparture(d PeriodDeviation) error {
	if err := d.check("first_period"); err != nil {
		return err
	}
	s.FirstPeriod = s.FirstPeriod.add(d)
	return nil
}

// SecondPeriodArrivalAndDeparture rejects negative deviation fields with an
// InvariantViolationError.
func (s *DailyStatus) SecondPeriodArrivalAndDeparture(d PeriodDeviation) error {
	if err := d.check("second_period"); err != nil {
		return err
	}
	s.SecondPeriod = s.SecondPeriod.add(d)
	return nil
}

// grantOvertime credits up to limit minutes out of requested and burns the
// remainder under cause.
func (s *DailyStatus) grantOvertime(cause Cause, requested, limit generic.Minutes) error {
	if err := positiveOnly(named{string(cause), requested}, named{string(cause) + "_cap", limit}); err != nil {
		return err
	}
	grant := requested.Min(limit)
	s.Overtime += grant
	if burned := requested - grant; burned > 0 {
		s.BurnedOut[cause] += burned
	}
	return nil
}

func (s *DailyStatus) excuse(group RequestGroup, m generic.Minutes) error {
	if err := positiveOnly(named{"excused." + string(group), m}); err != nil {
		return err
	}
	if m > 0 {
		s.Excused[group] += m
	}
	return nil
}

// TotalBurnedOut sums burned-out minutes over every cause.
func (s *DailyStatus) TotalBurnedOut() generic.Minutes {
	var total generic.Minutes
	for _, m := range s.BurnedOut {
		total += m
	}
	return total
}

// TotalExcused sums excused minutes over every request group.
func (s *DailyStatus) TotalExcused() generic.Minutes {
	var total generic.Minutes
	for _, m := range s.Excused {
		total += m
	}
	return total
}

// Check re-verifies the non-negativity invariant over every field.
func (s *DailyStatus) Check() error {
	fields := []named{
		{"attend", s.Attend},
		{"absent", s.Absent},
		{"overtime", s.Overtime},
	}
	for cause, m := range s.BurnedOut {
		fields = append(fields, named{"burned_out." + string(cause), m})
	}
	for group, m := range s.Excused {
		fields = append(fields, named{"excused." + string(group), m})
	}
	if err := positiveOnly(fields...); err != nil {
		return err
	}
	if err := s.FirstPeriod.check("first_period"); err != nil {
		return err
	}
	return s.SecondPeriod.check("second_period")
}

// =============================================================================
// GUARDS
// =============================================================================

type named struct {
	field string
	value generic.Minutes
}

// positiveOnly fails on the first negative value.
func positiveOnly(values ...named) error {
	for _, v := range values {
		if v.value < 0 {
			return &generic.InvariantViolationError{Field: v.field, Value: v.value}
		}
	}
	return nil
}

// decrease subtracts by from *field, refusing to go below zero.
func decrease(field string, target *generic.Minutes, by generic.Minutes) error {
	if by < 0 {
		return &generic.InvariantViolationError{Field: field, Value: by}
	}
	if next := *target - by; next < 0 {
		return &generic.InvariantViolationError{Field: field, Value: next}
	}
	*target -= by
	return nil
}

func (d PeriodDeviation) add(o PeriodDeviation) PeriodDeviation {
	return PeriodDeviation{
		EarlyArrival:   d.EarlyArrival + o.EarlyArrival,
		LateArrival:    d.LateArrival + o.LateArrival,
		EarlyDeparture: d.EarlyDeparture + o.EarlyDeparture,
		LateDeparture:  d.LateDeparture + o.LateDeparture,
	}
}
