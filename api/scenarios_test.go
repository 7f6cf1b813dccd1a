/*
scenarios_test.go - Tests for the demo scenarios

PURPOSE:
	Each scenario loads a week of inputs. These tests run the reporter over
	that week and check the days the scenario comments describe, so the
	demo data stays an accurate showcase of the engine.
*/
package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
)

func scenarioRange() generic.DateRange {
	return generic.DateRange{Start: scenarioWeek, End: scenarioWeek.AddDays(6)}
}

func loadTimeline(t *testing.T, s *testServer, load func(context.Context) error, id generic.EmployeeID) []attendance.DayResult {
	t.Helper()
	ctx := context.Background()
	if err := load(ctx); err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}
	days, err := s.handler.Reporter.Timeline(ctx, id, scenarioRange())
	if err != nil {
		t.Fatalf("Failed to build timeline: %v", err)
	}
	for _, d := range days {
		require.NoError(t, d.Err, d.Date.String())
	}
	return days
}

func TestScenario_OfficeWeek(t *testing.T) {
	s := setupTestServer(t)

	days := loadTimeline(t, s, s.handler.loadOfficeWeekScenario, "emp-office")

	require.Len(t, days, 5)
	assert.Equal(t, generic.Minutes(25), days[1].Status.Absent, "25 minutes late")
	assert.Equal(t, generic.Minutes(90), days[2].Status.Overtime, "stayed until 18:30")
	assert.Equal(t, 1, days[3].Status.Punches, "manual logout completes the event")
	assert.Equal(t, generic.Minutes(0), days[3].Status.Absent)
	assert.Equal(t, generic.Minutes(480), days[4].Status.Excused[attendance.GroupEarnedLeave])
	assert.Equal(t, generic.Minutes(0), days[4].Status.Absent)
}

func TestScenario_SplitShift(t *testing.T) {
	s := setupTestServer(t)

	days := loadTimeline(t, s, s.handler.loadSplitShiftScenario, "emp-split")

	require.Len(t, days, 5)
	mon := days[0].Status
	assert.Equal(t, generic.Minutes(480), mon.Attend)
	assert.Equal(t, generic.Minutes(0), mon.Absent, "floating time cancels the late start")
	assert.True(t, mon.FirstPeriod.IsZero())

	tue := days[1].Status
	assert.Equal(t, generic.Minutes(30), tue.Overtime)
	assert.Equal(t, generic.Minutes(20), tue.BurnedOut[attendance.CauseMiddleOvertime])

	assert.Equal(t, generic.Minutes(240), days[3].Status.Absent, "no-show second period")
	assert.Empty(t, days[4].Status.Excused, "rejected leave is ignored")
}

func TestScenario_FlexWeek(t *testing.T) {
	// GIVEN: The flex scenario
	// WHEN: Summarizing its week
	// THEN: Saturday counts as attendance only and the mission covers Thursday

	s := setupTestServer(t)

	days := loadTimeline(t, s, s.handler.loadFlexScenario, "emp-flex")

	require.Len(t, days, 5)
	assert.Equal(t, scenarioWeek.AddDays(5), days[4].Date)

	totals := attendance.Summarize(days)
	assert.Equal(t, generic.Minutes(1940), totals.Attend)
	assert.Equal(t, generic.Minutes(120), totals.Absent)
	assert.Equal(t, generic.Minutes(60), totals.Overtime)
	assert.Equal(t, generic.Minutes(20), totals.BurnedOut)
	assert.Equal(t, generic.Minutes(120), totals.Excused[attendance.GroupMissions])
	assert.Equal(t, 5, totals.DaysAttended)
}

func TestLoadScenario_Endpoint(t *testing.T) {
	s := setupTestServer(t)

	var current *ScenarioDTO
	s.do(t, http.MethodGet, "/api/scenarios/current", nil, &current)
	assert.Nil(t, current)

	rec := s.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "office-week"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	s.do(t, http.MethodGet, "/api/scenarios/current", nil, &current)
	require.NotNil(t, current)
	assert.Equal(t, "office-week", current.ID)

	// Loading another scenario replaces the first one.
	rec = s.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "flex-and-leave"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var employees []EmployeeDTO
	s.do(t, http.MethodGet, "/api/employees", nil, &employees)
	require.Len(t, employees, 1)
	assert.Equal(t, "emp-flex", employees[0].ID)

	var reports []ReportDTO
	s.do(t, http.MethodGet, "/api/reports?start=2024-03-04&end=2024-03-10", nil, &reports)
	require.Len(t, reports, 1)
	assert.Equal(t, "32:20", reports[0].Totals.Attend.Display)
	assert.Equal(t, "32.3333", reports[0].Totals.Attend.Hours.String())

	rec = s.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/scenarios/reset", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s.do(t, http.MethodGet, "/api/employees", nil, &employees)
	assert.Empty(t, employees)
}

func TestListScenarios(t *testing.T) {
	s := setupTestServer(t)

	var list []ScenarioDTO
	rec := s.do(t, http.MethodGet, "/api/scenarios", nil, &list)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list, len(scenarios))
}
