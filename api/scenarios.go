/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with one working
	week of realistic data. Each scenario creates an employee, a plan per
	day, raw clock events and exception requests that exercise specific
	parts of the engine.

AVAILABLE SCENARIOS:

	office-week:    Single-period days: tolerance, ending overtime,
	                a forgotten logout fixed by manual traffic, a day of leave
	split-shift:    Two periods with a lunch break: floating time,
	                middle overtime, an hourly sick leave, a no-show period
	flex-and-leave: Floating plans: capped overtime, shortfall, a mission

	All scenarios use the week starting Monday 2024-03-04.

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create employee
 3. Create plans via factory presets
 4. Record events
 5. Record requests with their approval outcome

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "split-shift"}

	then GET /api/employees/{id}/timeline?start=2024-03-04&end=2024-03-08

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
  - factory/presets.go: Plan templates
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// scenarioWeek is the Monday every scenario starts on.
var scenarioWeek = generic.MustParseDate("2024-03-04")

var scenarios = []ScenarioDTO{
	{
		ID:          "office-week",
		Name:        "Office Week",
		Description: "09:00-17:00 days with tolerance, overtime, a manual logout and a day of leave",
	},
	{
		ID:          "split-shift",
		Name:        "Split Shift",
		Description: "Two periods per day with floating time, middle overtime and hourly sick leave",
	},
	{
		ID:          "flex-and-leave",
		Name:        "Flex Days",
		Description: "Floating plans with capped overtime, a short day and an hourly mission",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	var load func(context.Context) error
	switch req.ScenarioID {
	case "office-week":
		load = h.loadOfficeWeekScenario
	case "split-shift":
		load = h.loadSplitShiftScenario
	case "flex-and-leave":
		load = h.loadFlexScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if err := load(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO DATA
// =============================================================================

// demoDay is one day of scenario input, as offsets from scenarioWeek.
type demoDay struct {
	offset   int
	plan     func(date string) factory.PlanJSON
	punches  [][2]string // "" leaves a side missing
	requests []demoRequest
}

type demoRequest struct {
	category attendance.Category
	status   attendance.RequestStatus
	from, to string
	traffic  attendance.TrafficType
	reason   string
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadOfficeWeekScenario(ctx context.Context) error {
	return h.loadDemoEmployee(ctx, "emp-office", "Alice Martin", []demoDay{
		// Five minutes either side: the early ones earn nothing without a
		// beginning cap, the late ones are ending overtime.
		{offset: 0, plan: factory.OfficeDay, punches: [][2]string{{"08:55", "17:05"}}},
		// 25 minutes late, past the 10 minute tolerance.
		{offset: 1, plan: factory.OfficeDay, punches: [][2]string{{"09:25", "17:00"}}},
		// Stayed until 18:30: 90 minutes of ending overtime.
		{offset: 2, plan: factory.OfficeDay, punches: [][2]string{{"09:00", "18:30"}}},
		// Forgot to clock out; an approved manual logout supplies 17:00.
		{
			offset:  3,
			plan:    factory.OfficeDay,
			punches: [][2]string{{"09:00", ""}},
			requests: []demoRequest{{
				category: attendance.CategoryManualTraffic, status: attendance.StatusApproved,
				from: "17:00", traffic: attendance.TrafficLogout, reason: "Badge reader offline",
			}},
		},
		// Day of earned leave, no events.
		{
			offset: 4,
			plan:   factory.OfficeDay,
			requests: []demoRequest{{
				category: attendance.CategoryDailyEarnedLeave, status: attendance.StatusApproved,
				reason: "Long weekend",
			}},
		},
	})
}

func (h *Handler) loadSplitShiftScenario(ctx context.Context) error {
	return h.loadDemoEmployee(ctx, "emp-split", "Bruno Costa", []demoDay{
		// Started 15 minutes late and stayed 15 minutes longer: floating time
		// cancels both.
		{offset: 0, plan: factory.SplitShift, punches: [][2]string{{"08:15", "12:15"}, {"13:00", "17:00"}}},
		// Worked through lunch: middle overtime, capped at 30.
		{offset: 1, plan: factory.SplitShift, punches: [][2]string{{"08:00", "12:40"}, {"12:50", "17:00"}}},
		// Left for the doctor at 15:00 with an approved hourly sick leave.
		{
			offset:  2,
			plan:    factory.SplitShift,
			punches: [][2]string{{"08:00", "12:00"}, {"13:00", "15:00"}},
			requests: []demoRequest{{
				category: attendance.CategoryHourlySickLeave, status: attendance.StatusApproved,
				from: "15:00", to: "17:00", reason: "Doctor appointment",
			}},
		},
		// Never came back after lunch.
		{offset: 3, plan: factory.SplitShift, punches: [][2]string{{"08:00", "12:00"}}},
		// Early start, rejected leave request has no effect.
		{
			offset:  4,
			plan:    factory.SplitShift,
			punches: [][2]string{{"07:20", "12:00"}, {"13:00", "16:00"}},
			requests: []demoRequest{{
				category: attendance.CategoryHourlyEarnedLeave, status: attendance.StatusRejected,
				from: "16:00", to: "17:00", reason: "Leaving early",
			}},
		},
	})
}

func (h *Handler) loadFlexScenario(ctx context.Context) error {
	return h.loadDemoEmployee(ctx, "emp-flex", "Chen Wei", []demoDay{
		// Exactly 8 hours split over two punches.
		{offset: 0, plan: factory.FlexDay, punches: [][2]string{{"10:00", "14:00"}, {"15:00", "19:00"}}},
		// 9h20: 60 minutes of overtime granted, 20 burned by the daily cap.
		{offset: 1, plan: factory.FlexDay, punches: [][2]string{{"08:00", "17:20"}}},
		// Short day: 6 hours worked, 2 hours absent.
		{offset: 2, plan: factory.FlexDay, punches: [][2]string{{"09:00", "15:00"}}},
		// 6 hours on site plus a 2 hour client visit.
		{
			offset:  3,
			plan:    factory.FlexDay,
			punches: [][2]string{{"09:00", "15:00"}},
			requests: []demoRequest{{
				category: attendance.CategoryHourlyMission, status: attendance.StatusApproved,
				from: "15:00", to: "17:00", reason: "Client visit",
			}},
		},
		// Saturday, no plan: a few hours of attendance only.
		{offset: 5, punches: [][2]string{{"10:00", "13:00"}}},
	})
}

// loadDemoEmployee writes one employee and their week.
func (h *Handler) loadDemoEmployee(ctx context.Context, id, name string, days []demoDay) error {
	emp := sqlite.Employee{ID: id, Name: name}
	if err := h.Store.SaveEmployee(ctx, &emp); err != nil {
		return err
	}
	employeeID := generic.EmployeeID(id)

	for _, d := range days {
		date := scenarioWeek.AddDays(d.offset)

		if d.plan != nil {
			plan, err := h.Plans.FromJSON(d.plan(date.String()))
			if err != nil {
				return err
			}
			plan.EmployeeID = employeeID
			if err := h.Store.SavePlan(ctx, plan); err != nil {
				return err
			}
		}

		for _, p := range d.punches {
			e, err := eventFromRequest(employeeID, CreateEventRequest{Date: date.String(), Arrival: p[0], Departure: p[1]})
			if err != nil {
				return err
			}
			if err := h.Store.SaveEvent(ctx, &e); err != nil {
				return err
			}
		}

		for _, dr := range d.requests {
			req, err := requestFromRequest(employeeID, CreateRequestRequest{
				Category: string(dr.category),
				Status:   string(dr.status),
				Date:     date.String(),
				Time:     dr.from,
				ToTime:   dr.to,
				Traffic:  string(dr.traffic),
				Reason:   dr.reason,
			})
			if err != nil {
				return err
			}
			if err := h.Store.SaveRequest(ctx, &req); err != nil {
				return err
			}
		}
	}
	return nil
}
