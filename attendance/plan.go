/*
plan.go - Shift plan: the per-day attendance policy

PURPOSE:
  A ShiftPlan is the immutable contract for one employee-day: when duty
  starts and ends, how much lateness is tolerated, and how much overtime
  may be granted before the rest is burned out.

PLAN TYPES:
  Simple:
    - One or two fixed duty periods (e.g. 08:00-12:00 and 13:00-17:00)
    - Tolerances: PermittedDelay, PermittedAcceleration, FloatingTime
    - Overtime caps per segment: beginning, middle, ending

  Floating:
    - No fixed boundaries, only DailyDutyDuration
    - Anything above it is overtime up to DailyOvertimeCap

OPTIONAL LIMITS:
  Every tolerance and cap is a *Minutes. nil and 0 both mean "not
  configured": no tolerance is applied and no overtime is granted.

NIGHT SHIFTS:
  NightShift marks plans whose periods cross midnight. Cross-midnight
  arithmetic is not implemented; such plans fail validation with
  generic.ErrNightShiftUnsupported.
*/
package attendance

import (
	"fmt"

	"github.com/warp/attendance-engine/generic"
)

// PlanType is the closed set of plan kinds the orchestrator handles.
type PlanType string

const (
	PlanSimple   PlanType = "simple"
	PlanFloating PlanType = "floating"
)

func (t PlanType) Valid() bool {
	switch t {
	case PlanSimple, PlanFloating:
		return true
	default:
		return false
	}
}

// ShiftPlan is the policy for one employee-day.
type ShiftPlan struct {
	ID         generic.PlanID
	EmployeeID generic.EmployeeID
	Date       generic.Date
	Type       PlanType

	// Simple plans
	FirstPeriod  generic.Window
	SecondPeriod *generic.Window // nil for a one-period day

	PermittedDelay        *generic.Minutes
	PermittedAcceleration *generic.Minutes
	FloatingTime          *generic.Minutes

	BeginningOvertimeCap *generic.Minutes
	MiddleOvertimeCap    *generic.Minutes
	EndingOvertimeCap    *generic.Minutes

	// Floating plans
	DailyDutyDuration generic.Minutes
	DailyOvertimeCap  *generic.Minutes

	NightShift bool
}

// HasSecondPeriod reports whether this is a two-period day.
func (p *ShiftPlan) HasSecondPeriod() bool { return p.SecondPeriod != nil }

// LastPeriod is the period whose late departure counts as ending overtime.
func (p *ShiftPlan) LastPeriod() generic.Window {
	if p.SecondPeriod != nil {
		return *p.SecondPeriod
	}
	return p.FirstPeriod
}

// PeriodFor picks the period a wall-clock time belongs to: the first period
// for anything before it ends, otherwise the second (if there is one).
func (p *ShiftPlan) PeriodFor(c generic.Clock) generic.Window {
	if c < p.FirstPeriod.End || p.SecondPeriod == nil {
		return p.FirstPeriod
	}
	return *p.SecondPeriod
}

// ShiftDuration is the nominal duty time of the day: the sum of the period
// spans for Simple plans, DailyDutyDuration for Floating ones.
func (p *ShiftPlan) ShiftDuration() generic.Minutes {
	switch p.Type {
	case PlanFloating:
		return p.DailyDutyDuration
	default:
		total := p.FirstPeriod.Span()
		if p.SecondPeriod != nil {
			total += p.SecondPeriod.Span()
		}
		return total
	}
}

// Validate checks the structural invariants of the plan.
func (p *ShiftPlan) Validate() error {
	switch p.Type {
	case PlanSimple:
		return p.validateSimple()
	case PlanFloating:
		return p.validateFloating()
	default:
		return fmt.Errorf("%w: %q", generic.ErrUnsupportedPlanType, p.Type)
	}
}

func (p *ShiftPlan) validateSimple() error {
	if err := p.validatePeriod("first", p.FirstPeriod); err != nil {
		return err
	}
	if p.SecondPeriod != nil {
		if err := p.validatePeriod("second", *p.SecondPeriod); err != nil {
			return err
		}
		if p.SecondPeriod.Start < p.FirstPeriod.End {
			return p.malformed(fmt.Sprintf("second period starts at %s, before the first period ends at %s",
				p.SecondPeriod.Start, p.FirstPeriod.End), nil)
		}
	}
	return p.validateLimits(map[string]*generic.Minutes{
		"permitted_delay":        p.PermittedDelay,
		"permitted_acceleration": p.PermittedAcceleration,
		"floating_time":          p.FloatingTime,
		"beginning_overtime":     p.BeginningOvertimeCap,
		"middle_overtime":        p.MiddleOvertimeCap,
		"ending_overtime":        p.EndingOvertimeCap,
	})
}

func (p *ShiftPlan) validatePeriod(name string, w generic.Window) error {
	if !w.Start.Valid() || !w.End.Valid() {
		return p.malformed(fmt.Sprintf("%s period %s is outside the day", name, w), nil)
	}
	if w.End <= w.Start {
		if p.NightShift {
			return p.malformed(fmt.Sprintf("%s period %s crosses midnight", name, w), generic.ErrNightShiftUnsupported)
		}
		return p.malformed(fmt.Sprintf("%s period %s must start before it ends", name, w), nil)
	}
	return nil
}

func (p *ShiftPlan) validateFloating() error {
	if p.DailyDutyDuration <= 0 || p.DailyDutyDuration > generic.MinutesPerDay {
		return p.malformed(fmt.Sprintf("daily duty duration %d is out of range", p.DailyDutyDuration), nil)
	}
	return p.validateLimits(map[string]*generic.Minutes{
		"daily_overtime": p.DailyOvertimeCap,
	})
}

func (p *ShiftPlan) validateLimits(limits map[string]*generic.Minutes) error {
	for name, v := range limits {
		if v != nil && *v < 0 {
			return p.malformed(fmt.Sprintf("%s is negative (%d)", name, *v), nil)
		}
	}
	return nil
}

func (p *ShiftPlan) malformed(reason string, cause error) error {
	return &generic.MalformedPlanError{PlanID: p.ID, Reason: reason, Cause: cause}
}
