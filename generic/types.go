/*
Package generic provides the domain-agnostic primitives of the attendance engine.

PURPOSE:
  This package contains the small value types every other package builds on:
  wall-clock minutes, calendar days, duty windows, identifiers and the error
  taxonomy. It knows nothing about shift plans, punches or requests.

KEY CONCEPTS IN THIS FILE (types.go):
  - Minutes: A non-negative count of minutes (attended, absent, overtime...)
  - Identifiers: Type-safe ids for employees, plans, events and requests

DESIGN PRINCIPLES:
  1. Integers: All accounting is done in whole minutes, never floats
  2. Precision: Conversion to hours goes through decimal.Decimal
  3. Type Safety: Strong typing for IDs prevents mixing employee/plan IDs

USAGE:
  total := generic.Minutes(470)
  total.Hours()        // 7.8333
  total.HourMinute()   // "7:50"

SEE ALSO:
  - time.go: Clock (minute-of-day) and Date
  - period.go: Window and DateRange
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MINUTES - The unit of every accumulator in the engine
// =============================================================================

// Minutes is a whole number of minutes.
type Minutes int

var minutesPerHour = decimal.NewFromInt(60)

// Hours converts to decimal hours without floating point drift.
func (m Minutes) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(m)).DivRound(minutesPerHour, 4)
}

// HourMinute renders the value as "H:M" the way the reports display totals.
func (m Minutes) HourMinute() string {
	sign := ""
	v := int(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d:%02d", sign, v/60, v%60)
}

func (m Minutes) Min(o Minutes) Minutes {
	if m < o {
		return m
	}
	return o
}

// Limit reads an optional policy value. Unset and zero both mean "no limit
// configured" in shift plans, so callers only need a single > 0 check.
func Limit(m *Minutes) Minutes {
	if m == nil || *m < 0 {
		return 0
	}
	return *m
}

// MinutesPtr is a convenience for building plans in code and tests.
func MinutesPtr(v int) *Minutes {
	m := Minutes(v)
	return &m
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type PlanID string
type EventID string
type RequestID string
