/*
presets.go - Pre-built shift plan templates

PURPOSE:
  Ready-to-use plan shapes for the common working patterns. The demo
  scenarios and tests build their plans from these; real deployments
  usually post their own JSON.

AVAILABLE PRESETS:
  OfficeDay:   One period, 09:00-17:00, 10 min delay and acceleration
  SplitShift:  08:00-12:00 and 13:00-17:00, floating time and overtime caps
  FlexDay:     Floating plan, 8 hours of duty, 1 hour of overtime

EXAMPLE:
  pj := factory.SplitShift("2024-03-04")
  pj.EndingOvertime = factory.Int(60)
  plan, err := factory.NewPlanFactory().FromJSON(pj)
*/
package factory

// OfficeDay is a single 09:00-17:00 period.
func OfficeDay(date string) PlanJSON {
	return PlanJSON{
		Date:                  date,
		Type:                  "simple",
		FirstPeriod:           &WindowJSON{Start: "09:00", End: "17:00"},
		PermittedDelay:        Int(10),
		PermittedAcceleration: Int(10),
		EndingOvertime:        Int(120),
	}
}

// SplitShift is a two-period day with a lunch break.
func SplitShift(date string) PlanJSON {
	return PlanJSON{
		Date:                  date,
		Type:                  "simple",
		FirstPeriod:           &WindowJSON{Start: "08:00", End: "12:00"},
		SecondPeriod:          &WindowJSON{Start: "13:00", End: "17:00"},
		PermittedDelay:        Int(10),
		PermittedAcceleration: Int(10),
		FloatingTime:          Int(20),
		BeginningOvertime:     Int(30),
		MiddleOvertime:        Int(30),
		EndingOvertime:        Int(120),
	}
}

// FlexDay only requires a total amount of work.
func FlexDay(date string) PlanJSON {
	return PlanJSON{
		Date:              date,
		Type:              "floating",
		DailyDutyDuration: 480,
		DailyOvertime:     Int(60),
	}
}

// Int is a convenience for optional JSON minutes.
func Int(v int) *int { return &v }
