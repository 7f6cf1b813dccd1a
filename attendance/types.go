// Package attendance implements attendance reconciliation and time accounting.
// Given a shift plan, the day's clock events and the approved exception
// requests, it computes one DailyStatus: attended, absent and overtime
// minutes, plus the overtime that was requested but denied ("burned out").
//
// The engine is pure: no I/O, no shared state. Every employee-day is an
// independent computation and may run concurrently with any other.
package attendance

import "github.com/warp/attendance-engine/generic"

// =============================================================================
// ATTENDANCE EVENTS
// =============================================================================

// Event is a raw clock event as recorded by a device or app. Either side may
// be missing; such an event is "imperfect" and must be paired (see PairEvents)
// before the engine can use it.
type Event struct {
	ID         generic.EventID
	EmployeeID generic.EmployeeID
	Date       generic.Date
	Arrival    *generic.Clock
	Departure  *generic.Clock
}

// Complete reports whether both arrival and departure are present.
func (e Event) Complete() bool { return e.Arrival != nil && e.Departure != nil }

// Punch returns the arrival/departure pair of a complete event.
func (e Event) Punch() (Punch, bool) {
	if !e.Complete() {
		return Punch{}, false
	}
	return Punch{Arrival: *e.Arrival, Departure: *e.Departure}, true
}

// Punch is one complete (arrival, departure) pair.
type Punch struct {
	Arrival   generic.Clock
	Departure generic.Clock
}

func NewPunch(arrival, departure generic.Clock) Punch {
	return Punch{Arrival: arrival, Departure: departure}
}

// Duration is departure - arrival; negative for an inverted punch.
func (p Punch) Duration() generic.Minutes { return generic.Duration(p.Arrival, p.Departure) }

func (p Punch) Window() generic.Window { return generic.NewWindow(p.Arrival, p.Departure) }

// =============================================================================
// BURN-OUT CAUSES
// =============================================================================

// Cause names the cap that denied overtime minutes.
type Cause string

const (
	CauseBeginningOvertime Cause = "beginning_overtime" // before the first period
	CauseMiddleOvertime    Cause = "middle_overtime"    // between the two periods
	CauseEndingOvertime    Cause = "ending_overtime"    // after the last period
	CauseFloatingOvertime  Cause = "floating_overtime"  // above a floating plan's daily duty
)
