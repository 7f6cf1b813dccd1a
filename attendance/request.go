package attendance

import (
	"fmt"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// EXCEPTION REQUEST CATEGORIES
// =============================================================================

// Category is the closed set of exception request kinds.
type Category string

const (
	CategoryHourlyMission     Category = "hourly_mission"
	CategoryDailyMission      Category = "daily_mission"
	CategoryHourlyEarnedLeave Category = "hourly_earned_leave"
	CategoryDailyEarnedLeave  Category = "daily_earned_leave"
	CategoryHourlySickLeave   Category = "hourly_sick_leave"
	CategoryDailySickLeave    Category = "daily_sick_leave"
	CategoryHourlyUnpaidLeave Category = "hourly_unpaid_leave"
	CategoryDailyUnpaidLeave  Category = "daily_unpaid_leave"
	CategoryManualTraffic     Category = "manual_traffic"
)

// Categories lists every known category, in display order.
var Categories = []Category{
	CategoryHourlyMission, CategoryDailyMission,
	CategoryHourlyEarnedLeave, CategoryDailyEarnedLeave,
	CategoryHourlySickLeave, CategoryDailySickLeave,
	CategoryHourlyUnpaidLeave, CategoryDailyUnpaidLeave,
	CategoryManualTraffic,
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", generic.ErrMalformedRequest, s)
}

func (c Category) IsHourly() bool {
	switch c {
	case CategoryHourlyMission, CategoryHourlyEarnedLeave, CategoryHourlySickLeave, CategoryHourlyUnpaidLeave:
		return true
	}
	return false
}

func (c Category) IsDaily() bool {
	switch c {
	case CategoryDailyMission, CategoryDailyEarnedLeave, CategoryDailySickLeave, CategoryDailyUnpaidLeave:
		return true
	}
	return false
}

// Group is the report column a category is totalled under. Manual traffic
// has no group: it corrects punches instead of excusing time.
func (c Category) Group() RequestGroup {
	switch c {
	case CategoryHourlyMission, CategoryDailyMission:
		return GroupMissions
	case CategoryHourlyEarnedLeave, CategoryDailyEarnedLeave:
		return GroupEarnedLeave
	case CategoryHourlySickLeave, CategoryDailySickLeave:
		return GroupSickLeave
	case CategoryHourlyUnpaidLeave, CategoryDailyUnpaidLeave:
		return GroupUnpaidLeave
	}
	return ""
}

// RequestGroup totals excused minutes across hourly and daily variants.
type RequestGroup string

const (
	GroupMissions    RequestGroup = "missions"
	GroupEarnedLeave RequestGroup = "earned_leave"
	GroupSickLeave   RequestGroup = "sick_leave"
	GroupUnpaidLeave RequestGroup = "unpaid_leave"
)

// RequestStatus is owned by the external approval workflow.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// TrafficType tells which side of a punch a manual traffic request supplies.
type TrafficType string

const (
	TrafficLogin  TrafficType = "login"  // supplies an arrival
	TrafficLogout TrafficType = "logout" // supplies a departure
)

// =============================================================================
// REQUEST
// =============================================================================

// Request is an exception request relevant to attendance: leave, mission or
// a manual traffic correction.
type Request struct {
	ID         generic.RequestID
	EmployeeID generic.EmployeeID
	Category   Category
	Status     RequestStatus

	// Date is the day of an hourly/traffic request, or the first day of a
	// daily one. EndDate is the last day of a daily request (zero = Date).
	Date    generic.Date
	EndDate generic.Date

	// Time and ToTime bound an hourly request. Time alone is the corrected
	// clock value of a manual traffic request.
	Time   *generic.Clock
	ToTime *generic.Clock

	Traffic TrafficType
	Reason  string
}

func (r Request) Approved() bool { return r.Status == StatusApproved }

// LastDay is the final day the request applies to.
func (r Request) LastDay() generic.Date {
	if r.Category.IsDaily() && !r.EndDate.IsZero() {
		return r.EndDate
	}
	return r.Date
}

// Covers reports whether the request applies to the given day.
func (r Request) Covers(d generic.Date) bool {
	return d.AfterOrEqual(r.Date) && d.BeforeOrEqual(r.LastDay())
}

// Window is the excused wall-clock window of an hourly request.
func (r Request) Window() (generic.Window, error) {
	if r.Time == nil || r.ToTime == nil {
		return generic.Window{}, fmt.Errorf("%w: %s request %s has no time window", generic.ErrMalformedRequest, r.Category, r.ID)
	}
	w := generic.NewWindow(*r.Time, *r.ToTime)
	if !w.Valid() {
		return generic.Window{}, fmt.Errorf("%w: %s request %s has window %s", generic.ErrMalformedRequest, r.Category, r.ID, w)
	}
	return w, nil
}

// Validate checks the fields the category needs.
func (r Request) Validate() error {
	if _, err := ParseCategory(string(r.Category)); err != nil {
		return err
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: request %s has no date", generic.ErrMalformedRequest, r.ID)
	}
	switch {
	case r.Category.IsHourly():
		_, err := r.Window()
		return err
	case r.Category.IsDaily():
		if !r.EndDate.IsZero() && r.EndDate.Before(r.Date) {
			return fmt.Errorf("%w: request %s ends before it starts", generic.ErrMalformedRequest, r.ID)
		}
	case r.Category == CategoryManualTraffic:
		if r.Time == nil || !r.Time.Valid() {
			return fmt.Errorf("%w: manual traffic %s has no time", generic.ErrMalformedRequest, r.ID)
		}
		if r.Traffic != TrafficLogin && r.Traffic != TrafficLogout {
			return fmt.Errorf("%w: manual traffic %s has type %q", generic.ErrMalformedEvent, r.ID, r.Traffic)
		}
	}
	return nil
}
