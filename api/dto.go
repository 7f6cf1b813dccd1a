/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Employee:     EmployeeDTO, CreateEmployeeRequest
  Plans:        CreatePlanRequest (wraps factory.PlanJSON)
  Events:       EventDTO, CreateEventRequest
  Requests:     RequestDTO, CreateRequestRequest, UpdateRequestStatusRequest
  Days:         DailyStatusDTO, DayResultDTO, TimelineDTO
  Reports:      TotalsDTO, ReportDTO
  Stateless:    ComputeDailyStatusRequest
  Admin:        SnapshotRunDTO, ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Request types carry go-playground/validator tags. Handlers run
  h.validate.Struct before touching the store.

MINUTES AND HOURS:
  Every duration is sent as integer minutes. Totals also carry exact
  decimal hours and an "H:MM" rendering for display.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/plan.go: PlanJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type CreateEmployeeRequest struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	dto := EmployeeDTO{ID: e.ID, Name: e.Name, Email: e.Email}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// PLANS
// =============================================================================

// CreatePlanRequest is a plan for Date, optionally repeated on every day up
// to EndDate.
type CreatePlanRequest struct {
	factory.PlanJSON
	EndDate string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// =============================================================================
// EVENTS
// =============================================================================

type EventDTO struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Arrival   string `json:"arrival,omitempty"`
	Departure string `json:"departure,omitempty"`
}

// CreateEventRequest is a raw clock event. Either side may be missing.
type CreateEventRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Arrival   string `json:"arrival,omitempty" validate:"required_without=Departure"`
	Departure string `json:"departure,omitempty" validate:"required_without=Arrival"`
}

func toEventDTO(e attendance.Event) EventDTO {
	return EventDTO{
		ID:        string(e.ID),
		Date:      e.Date.String(),
		Arrival:   clockString(e.Arrival),
		Departure: clockString(e.Departure),
	}
}

// =============================================================================
// EXCEPTION REQUESTS
// =============================================================================

type RequestDTO struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Date     string `json:"date"`
	EndDate  string `json:"end_date,omitempty"`
	Time     string `json:"time,omitempty"`
	ToTime   string `json:"to_time,omitempty"`
	Traffic  string `json:"traffic,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type CreateRequestRequest struct {
	Category string `json:"category" validate:"required"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=pending approved rejected"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	EndDate  string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time     string `json:"time,omitempty"`
	ToTime   string `json:"to_time,omitempty"`
	Traffic  string `json:"traffic,omitempty" validate:"omitempty,oneof=login logout"`
	Reason   string `json:"reason,omitempty"`
}

type UpdateRequestStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

func toRequestDTO(r attendance.Request) RequestDTO {
	dto := RequestDTO{
		ID:       string(r.ID),
		Category: string(r.Category),
		Status:   string(r.Status),
		Date:     r.Date.String(),
		Time:     clockString(r.Time),
		ToTime:   clockString(r.ToTime),
		Traffic:  string(r.Traffic),
		Reason:   r.Reason,
	}
	if !r.LastDay().Equal(r.Date) {
		dto.EndDate = r.LastDay().String()
	}
	return dto
}

// =============================================================================
// DAILY STATUS
// =============================================================================

type DeviationDTO struct {
	EarlyArrival   int `json:"early_arrival"`
	LateArrival    int `json:"late_arrival"`
	EarlyDeparture int `json:"early_departure"`
	LateDeparture  int `json:"late_departure"`
}

type DailyStatusDTO struct {
	Date         string         `json:"date"`
	Attend       int            `json:"attend"`
	Absent       int            `json:"absent"`
	Overtime     int            `json:"overtime"`
	BurnedOut    map[string]int `json:"burned_out"`
	Excused      map[string]int `json:"excused"`
	FirstPeriod  DeviationDTO   `json:"first_period"`
	SecondPeriod DeviationDTO   `json:"second_period"`
	Punches      int            `json:"punches"`
}

type DayResultDTO struct {
	Date   string          `json:"date"`
	Status *DailyStatusDTO `json:"status,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type TimelineDTO struct {
	EmployeeID string         `json:"employee_id"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
	Days       []DayResultDTO `json:"days"`
}

func toDeviationDTO(d attendance.PeriodDeviation) DeviationDTO {
	return DeviationDTO{
		EarlyArrival:   int(d.EarlyArrival),
		LateArrival:    int(d.LateArrival),
		EarlyDeparture: int(d.EarlyDeparture),
		LateDeparture:  int(d.LateDeparture),
	}
}

func toDailyStatusDTO(s *attendance.DailyStatus) *DailyStatusDTO {
	dto := &DailyStatusDTO{
		Date:         s.Date.String(),
		Attend:       int(s.Attend),
		Absent:       int(s.Absent),
		Overtime:     int(s.Overtime),
		BurnedOut:    make(map[string]int, len(s.BurnedOut)),
		Excused:      make(map[string]int, len(s.Excused)),
		FirstPeriod:  toDeviationDTO(s.FirstPeriod),
		SecondPeriod: toDeviationDTO(s.SecondPeriod),
		Punches:      s.Punches,
	}
	for cause, m := range s.BurnedOut {
		dto.BurnedOut[string(cause)] = int(m)
	}
	for group, m := range s.Excused {
		dto.Excused[string(group)] = int(m)
	}
	return dto
}

func toDayResultDTO(d attendance.DayResult) DayResultDTO {
	dto := DayResultDTO{Date: d.Date.String()}
	if d.Err != nil {
		dto.Error = d.Err.Error()
		return dto
	}
	dto.Status = toDailyStatusDTO(d.Status)
	return dto
}

// =============================================================================
// REPORTS
// =============================================================================

// DurationDTO is one total in three renderings.
type DurationDTO struct {
	Minutes int             `json:"minutes"`
	Hours   decimal.Decimal `json:"hours"`
	Display string          `json:"display"`
}

type TotalsDTO struct {
	Attend       DurationDTO            `json:"attend"`
	Absent       DurationDTO            `json:"absent"`
	Overtime     DurationDTO            `json:"overtime"`
	BurnedOut    DurationDTO            `json:"burned_out"`
	Excused      map[string]DurationDTO `json:"excused"`
	Days         int                    `json:"days"`
	DaysAttended int                    `json:"days_attended"`
	FailedDays   int                    `json:"failed_days"`
}

type ReportDTO struct {
	EmployeeID string         `json:"employee_id"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
	Totals     *TotalsDTO     `json:"totals,omitempty"`
	Failures   []DayResultDTO `json:"failures,omitempty"`
	Error      string         `json:"error,omitempty"`
}

func toDurationDTO(m generic.Minutes) DurationDTO {
	return DurationDTO{Minutes: int(m), Hours: m.Hours(), Display: m.HourMinute()}
}

func toTotalsDTO(t attendance.Totals) *TotalsDTO {
	dto := &TotalsDTO{
		Attend:       toDurationDTO(t.Attend),
		Absent:       toDurationDTO(t.Absent),
		Overtime:     toDurationDTO(t.Overtime),
		BurnedOut:    toDurationDTO(t.BurnedOut),
		Excused:      make(map[string]DurationDTO, len(t.Excused)),
		Days:         t.Days,
		DaysAttended: t.DaysAttended,
		FailedDays:   t.FailedDays,
	}
	for group, m := range t.Excused {
		dto.Excused[string(group)] = toDurationDTO(m)
	}
	return dto
}

func toReportDTO(rep attendance.EmployeeReport) ReportDTO {
	dto := ReportDTO{
		EmployeeID: string(rep.EmployeeID),
		Start:      rep.Range.Start.String(),
		End:        rep.Range.End.String(),
	}
	if rep.Err != nil {
		dto.Error = rep.Err.Error()
		return dto
	}
	dto.Totals = toTotalsDTO(rep.Totals)
	for _, d := range rep.Days {
		if d.Err != nil {
			dto.Failures = append(dto.Failures, toDayResultDTO(d))
		}
	}
	return dto
}

// =============================================================================
// STATELESS COMPUTATION
// =============================================================================

// ComputeDailyStatusRequest carries one employee-day of inputs. Plan may be
// omitted for a rest day. Requests must already be approved; their status
// field is ignored. Nested dates default to Date, so the nested values are
// checked when they are converted rather than by struct tags.
type ComputeDailyStatusRequest struct {
	Date     string                 `json:"date" validate:"required,datetime=2006-01-02"`
	Plan     *factory.PlanJSON      `json:"plan,omitempty" validate:"-"`
	Events   []CreateEventRequest   `json:"events" validate:"-"`
	Requests []CreateRequestRequest `json:"requests" validate:"-"`
}

// =============================================================================
// ADMIN
// =============================================================================

type SnapshotRunDTO struct {
	ID          string `json:"id"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Status      string `json:"status"`
	Days        int    `json:"days"`
	FailedDays  int    `json:"failed_days"`
	Error       string `json:"error,omitempty"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

func toSnapshotRunDTO(r sqlite.SnapshotRun) SnapshotRunDTO {
	dto := SnapshotRunDTO{
		ID:         r.ID,
		Start:      r.RangeStart.String(),
		End:        r.RangeEnd.String(),
		Status:     r.Status,
		Days:       r.Days,
		FailedDays: r.FailedDays,
		Error:      r.Error,
		StartedAt:  r.StartedAt.Format(time.RFC3339),
	}
	if r.CompletedAt != nil {
		dto.CompletedAt = r.CompletedAt.Format(time.RFC3339)
	}
	return dto
}

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func clockString(c *generic.Clock) string {
	if c == nil {
		return ""
	}
	return c.String()
}
