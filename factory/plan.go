/*
Package factory provides JSON to Go shift plan conversion.

PURPOSE:
  Converts JSON shift plan definitions into attendance.ShiftPlan values and
  back. Plans are stored as JSON in the database and accepted as JSON by
  the HTTP API, so this is the one place where their wire shape lives.

JSON SCHEMA:
  {
    "date": "2024-03-04",
    "type": "simple",
    "first_period":  {"start": "08:00", "end": "12:00"},
    "second_period": {"start": "13:00", "end": "17:00"},
    "permitted_delay": 10,
    "permitted_acceleration": 10,
    "floating_time": 20,
    "beginning_overtime": 30,
    "middle_overtime": 30,
    "ending_overtime": 120
  }

  {
    "date": "2024-03-04",
    "type": "floating",
    "daily_duty_duration": 480,
    "daily_overtime": 60
  }

VALIDATION:
  Two layers. Struct tags (go-playground/validator) reject the wrong shape:
  unknown type, bad date, negative minutes. ShiftPlan.Validate then checks
  the period rules. Both fail with generic.ErrMalformedPlan.

USAGE:
  f := factory.NewPlanFactory()
  plan, err := f.ParsePlan(jsonString)
  stored := f.ToJSON(plan)

SEE ALSO:
  - attendance/plan.go: ShiftPlan type definition
  - factory/presets.go: Ready-made plan templates
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PlanJSON is the JSON representation of a shift plan.
type PlanJSON struct {
	ID         string `json:"id,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Type       string `json:"type" validate:"required,oneof=simple floating"`

	FirstPeriod  *WindowJSON `json:"first_period,omitempty" validate:"required_if=Type simple"`
	SecondPeriod *WindowJSON `json:"second_period,omitempty"`

	PermittedDelay        *int `json:"permitted_delay,omitempty" validate:"omitempty,min=0"`
	PermittedAcceleration *int `json:"permitted_acceleration,omitempty" validate:"omitempty,min=0"`
	FloatingTime          *int `json:"floating_time,omitempty" validate:"omitempty,min=0"`
	BeginningOvertime     *int `json:"beginning_overtime,omitempty" validate:"omitempty,min=0"`
	MiddleOvertime        *int `json:"middle_overtime,omitempty" validate:"omitempty,min=0"`
	EndingOvertime        *int `json:"ending_overtime,omitempty" validate:"omitempty,min=0"`

	DailyDutyDuration int  `json:"daily_duty_duration,omitempty" validate:"min=0,max=1440"`
	DailyOvertime     *int `json:"daily_overtime,omitempty" validate:"omitempty,min=0"`

	NightShift bool `json:"night_shift,omitempty"`
}

// WindowJSON is a wall-clock window, "HH:MM" on both ends.
type WindowJSON struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// =============================================================================
// PLAN FACTORY
// =============================================================================

// PlanFactory converts JSON plans to Go structs.
type PlanFactory struct {
	validate *validator.Validate
}

func NewPlanFactory() *PlanFactory {
	return &PlanFactory{validate: validator.New()}
}

// ParsePlan parses a JSON string into a validated ShiftPlan.
func (f *PlanFactory) ParsePlan(jsonStr string) (*attendance.ShiftPlan, error) {
	var pj PlanJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, &generic.MalformedPlanError{Reason: fmt.Sprintf("failed to parse plan JSON: %v", err)}
	}
	return f.FromJSON(pj)
}

// FromJSON converts PlanJSON to a validated ShiftPlan.
func (f *PlanFactory) FromJSON(pj PlanJSON) (*attendance.ShiftPlan, error) {
	if err := f.validate.Struct(pj); err != nil {
		return nil, &generic.MalformedPlanError{PlanID: generic.PlanID(pj.ID), Reason: err.Error()}
	}

	date, err := generic.ParseDate(pj.Date)
	if err != nil {
		return nil, &generic.MalformedPlanError{PlanID: generic.PlanID(pj.ID), Reason: err.Error()}
	}

	plan := &attendance.ShiftPlan{
		ID:                    generic.PlanID(pj.ID),
		EmployeeID:            generic.EmployeeID(pj.EmployeeID),
		Date:                  date,
		Type:                  attendance.PlanType(pj.Type),
		PermittedDelay:        minutes(pj.PermittedDelay),
		PermittedAcceleration: minutes(pj.PermittedAcceleration),
		FloatingTime:          minutes(pj.FloatingTime),
		BeginningOvertimeCap:  minutes(pj.BeginningOvertime),
		MiddleOvertimeCap:     minutes(pj.MiddleOvertime),
		EndingOvertimeCap:     minutes(pj.EndingOvertime),
		DailyDutyDuration:     generic.Minutes(pj.DailyDutyDuration),
		DailyOvertimeCap:      minutes(pj.DailyOvertime),
		NightShift:            pj.NightShift,
	}

	if pj.FirstPeriod != nil {
		if plan.FirstPeriod, err = parseWindow(*pj.FirstPeriod); err != nil {
			return nil, &generic.MalformedPlanError{PlanID: plan.ID, Reason: "first_period: " + err.Error()}
		}
	}
	if pj.SecondPeriod != nil {
		w, err := parseWindow(*pj.SecondPeriod)
		if err != nil {
			return nil, &generic.MalformedPlanError{PlanID: plan.ID, Reason: "second_period: " + err.Error()}
		}
		plan.SecondPeriod = &w
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// ToJSON converts a ShiftPlan to PlanJSON.
func (f *PlanFactory) ToJSON(plan *attendance.ShiftPlan) PlanJSON {
	pj := PlanJSON{
		ID:                    string(plan.ID),
		EmployeeID:            string(plan.EmployeeID),
		Date:                  plan.Date.String(),
		Type:                  string(plan.Type),
		PermittedDelay:        ints(plan.PermittedDelay),
		PermittedAcceleration: ints(plan.PermittedAcceleration),
		FloatingTime:          ints(plan.FloatingTime),
		BeginningOvertime:     ints(plan.BeginningOvertimeCap),
		MiddleOvertime:        ints(plan.MiddleOvertimeCap),
		EndingOvertime:        ints(plan.EndingOvertimeCap),
		DailyDutyDuration:     int(plan.DailyDutyDuration),
		DailyOvertime:         ints(plan.DailyOvertimeCap),
		NightShift:            plan.NightShift,
	}
	if plan.Type == attendance.PlanSimple {
		pj.FirstPeriod = &WindowJSON{Start: plan.FirstPeriod.Start.String(), End: plan.FirstPeriod.End.String()}
		if plan.SecondPeriod != nil {
			pj.SecondPeriod = &WindowJSON{Start: plan.SecondPeriod.Start.String(), End: plan.SecondPeriod.End.String()}
		}
	}
	return pj
}

// Marshal renders a plan as the JSON string stored in the database.
func (f *PlanFactory) Marshal(plan *attendance.ShiftPlan) (string, error) {
	b, err := json.Marshal(f.ToJSON(plan))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseWindow(wj WindowJSON) (generic.Window, error) {
	start, err := generic.ParseClock(wj.Start)
	if err != nil {
		return generic.Window{}, err
	}
	end, err := generic.ParseClock(wj.End)
	if err != nil {
		return generic.Window{}, err
	}
	return generic.NewWindow(start, end), nil
}

func minutes(v *int) *generic.Minutes {
	if v == nil {
		return nil
	}
	return generic.MinutesPtr(*v)
}

func ints(m *generic.Minutes) *int {
	if m == nil {
		return nil
	}
	v := int(*m)
	return &v
}
