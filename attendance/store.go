/*
store.go - Persistence interfaces for the attendance engine

PURPOSE:
  The engine itself never does I/O. The Reporter and the HTTP layer read
  their inputs through Source and cache computed days through StatusStore.

KEY INTERFACES:
  Source:      Employees, shift plans, raw events and requests by range
  StatusStore: Computed DailyStatus snapshots (upsert by employee-day)

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - attendance/store/memory.go: In-memory for tests and dev

SEE ALSO:
  - reporter.go: Reads through Source
  - api/scheduler.go: Writes through StatusStore
*/
package attendance

import (
	"context"

	"github.com/warp/attendance-engine/generic"
)

// Employee is the minimal employee record the reports need.
type Employee struct {
	ID   generic.EmployeeID
	Name string
}

// Source supplies the inputs of range reports.
type Source interface {
	// Employee returns generic.ErrEmployeeNotFound for an unknown id.
	Employee(ctx context.Context, id generic.EmployeeID) (Employee, error)
	Employees(ctx context.Context) ([]Employee, error)

	// PlansInRange returns at most one plan per day, for days in r.
	PlansInRange(ctx context.Context, id generic.EmployeeID, r generic.DateRange) ([]ShiftPlan, error)

	// EventsInRange returns the raw events recorded on days in r.
	EventsInRange(ctx context.Context, id generic.EmployeeID, r generic.DateRange) ([]Event, error)

	// RequestsInRange returns requests of any status that touch a day in r.
	RequestsInRange(ctx context.Context, id generic.EmployeeID, r generic.DateRange) ([]Request, error)
}

// StatusStore caches computed days.
type StatusStore interface {
	// SaveStatus replaces any earlier snapshot of the same employee-day.
	SaveStatus(ctx context.Context, id generic.EmployeeID, status *DailyStatus) error
	Statuses(ctx context.Context, id generic.EmployeeID, r generic.DateRange) ([]DailyStatus, error)
}
