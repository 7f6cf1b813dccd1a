/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The engine never clamps or substitutes defaults: every inconsistency is
  returned as one of these errors, scoped to the employee-day it came from.

ERROR CATEGORIES:
  1. Day-fatal errors - InvariantViolation, UnsupportedPlanType, MalformedPlan,
     MalformedEvent. They abort one employee-day, never a whole report.
  2. Lookup errors - Missing employees or plans in a store.
  3. Input errors - Bad date ranges from callers.

USAGE:
  if errors.Is(err, generic.ErrInvariantViolation) {
      var iv *generic.InvariantViolationError
      errors.As(err, &iv)
      log.Printf("field %s went to %d", iv.Field, iv.Value)
  }

SEE ALSO:
  - attendance/status.go: Raises InvariantViolationError
  - attendance/plan.go: Raises MalformedPlanError
  - attendance/reporter.go: Wraps per-day failures in DayError
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvariantViolation is returned when an accumulator mutation would
	// take a minute count below zero, or was given a negative argument.
	ErrInvariantViolation = errors.New("invariant violation: negative minutes")

	// ErrUnsupportedPlanType is returned for a plan type the engine does not know.
	ErrUnsupportedPlanType = errors.New("unsupported plan type")

	// ErrMalformedPlan is returned when a shift plan breaks a structural rule
	// (e.g. second period starting before the first one ends).
	ErrMalformedPlan = errors.New("malformed shift plan")

	// ErrNightShiftUnsupported is returned for plans whose periods cross
	// midnight. It is also a MalformedPlan.
	ErrNightShiftUnsupported = fmt.Errorf("%w: night shifts crossing midnight are not reconciled", ErrMalformedPlan)

	// ErrMalformedEvent is returned for attendance events or manual traffic
	// requests that cannot be used (no side set, unknown traffic type).
	ErrMalformedEvent = errors.New("malformed attendance event")

	// ErrMalformedRequest is returned for exception requests missing the
	// fields their category needs (e.g. an hourly leave without a window).
	ErrMalformedRequest = errors.New("malformed exception request")

	// ErrInvalidRange is returned when a report range is empty or inverted.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrPlanNotFound is returned when a referenced shift plan doesn't exist.
	ErrPlanNotFound = errors.New("shift plan not found")

	// ErrRequestNotFound is returned when a referenced request doesn't exist.
	ErrRequestNotFound = errors.New("request not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvariantViolationError names the accumulator field that would have gone
// negative and the offending value.
type InvariantViolationError struct {
	Field string
	Value Minutes
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: %s would be %d minutes", e.Field, e.Value)
}

func (e *InvariantViolationError) Unwrap() error {
	return ErrInvariantViolation
}

// MalformedPlanError explains which structural rule a plan broke.
type MalformedPlanError struct {
	PlanID PlanID
	Reason string
	// Cause is an optional more specific sentinel (e.g. ErrNightShiftUnsupported).
	Cause error
}

func (e *MalformedPlanError) Error() string {
	if e.PlanID != "" {
		return fmt.Sprintf("malformed shift plan %s: %s", e.PlanID, e.Reason)
	}
	return "malformed shift plan: " + e.Reason
}

func (e *MalformedPlanError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrMalformedPlan
}

// DayError scopes a failure to one employee-day so batch reports can list it
// next to the days that succeeded.
type DayError struct {
	EmployeeID EmployeeID
	Date       Date
	Err        error
}

func (e *DayError) Error() string {
	return fmt.Sprintf("employee %s on %s: %v", e.EmployeeID, e.Date, e.Err)
}

func (e *DayError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsDayFatal returns true for errors that invalidate a single employee-day.
func IsDayFatal(err error) bool {
	return errors.Is(err, ErrInvariantViolation) ||
		errors.Is(err, ErrUnsupportedPlanType) ||
		errors.Is(err, ErrMalformedPlan) ||
		errors.Is(err, ErrMalformedEvent) ||
		errors.Is(err, ErrMalformedRequest)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return IsDayFatal(err) || errors.Is(err, ErrInvalidRange)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrRequestNotFound)
}
