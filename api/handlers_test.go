/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Employee, plan, event and request endpoints
- Timeline and report over stored inputs
- Stateless daily status computation
- Error mapping (400, 404, 409)
- Request logging middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testServer struct {
	handler *Handler
	router  http.Handler
	logs    *observer.ObservedLogs
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	h := NewHandler(store, 2, log)
	return &testServer{
		handler: h,
		router:  NewRouter(h, config.ServerConfig{}, log),
		logs:    logs,
	}
}

// do sends a request and decodes the JSON response into out when non-nil.
func (s *testServer) do(t *testing.T, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func (s *testServer) createEmployee(t *testing.T, id string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/employees", CreateEmployeeRequest{ID: id, Name: "Test User"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

const week = "?start=2024-03-04&end=2024-03-10"

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployees_CreateAndGet(t *testing.T) {
	s := setupTestServer(t)

	var created EmployeeDTO
	rec := s.do(t, http.MethodPost, "/api/employees", CreateEmployeeRequest{Name: "Dana", Email: "dana@example.com"}, &created)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, created.ID)

	var got EmployeeDTO
	rec = s.do(t, http.MethodGet, "/api/employees/"+created.ID, nil, &got)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dana", got.Name)

	var list []EmployeeDTO
	s.do(t, http.MethodGet, "/api/employees", nil, &list)
	assert.Len(t, list, 1)
}

func TestEmployees_Validation(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/employees", CreateEmployeeRequest{Email: "not-an-email"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	rec = s.do(t, http.MethodGet, "/api/employees/ghost", nil, &resp)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, resp.Details, "ghost")

	rec = s.do(t, http.MethodGet, "/api/employees/ghost/timeline"+week, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// INPUTS AND RESULTS
// =============================================================================

func TestCreatePlan_RepeatsToEndDate(t *testing.T) {
	// GIVEN: An employee
	// WHEN: Posting an office plan for Monday repeated until Friday
	// THEN: Five plans are stored, one per day

	s := setupTestServer(t)
	s.createEmployee(t, "emp-1")

	plan := CreatePlanRequest{PlanJSON: factory.OfficeDay("2024-03-04"), EndDate: "2024-03-08"}
	var created []factory.PlanJSON
	rec := s.do(t, http.MethodPost, "/api/employees/emp-1/plans", plan, &created)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, created, 5)
	assert.Equal(t, "2024-03-08", created[4].Date)
	assert.Equal(t, "emp-1", created[4].EmployeeID)

	var listed []factory.PlanJSON
	s.do(t, http.MethodGet, "/api/employees/emp-1/plans"+week, nil, &listed)
	assert.Len(t, listed, 5)
}

func TestCreatePlan_Invalid(t *testing.T) {
	s := setupTestServer(t)
	s.createEmployee(t, "emp-1")

	night := factory.OfficeDay("2024-03-04")
	night.NightShift = true
	rec := s.do(t, http.MethodPost, "/api/employees/emp-1/plans", CreatePlanRequest{PlanJSON: night}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	backwards := CreatePlanRequest{PlanJSON: factory.OfficeDay("2024-03-04"), EndDate: "2024-03-01"}
	rec = s.do(t, http.MethodPost, "/api/employees/emp-1/plans", backwards, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimeline_FromStoredInputs(t *testing.T) {
	// GIVEN: Monday and Tuesday office plans
	// AND: Monday 09:20-17:00, Tuesday an arrival and a manual logout
	// WHEN: Fetching the timeline
	// THEN: Monday is 20 minutes absent and Tuesday is clean

	s := setupTestServer(t)
	s.createEmployee(t, "emp-1")
	s.do(t, http.MethodPost, "/api/employees/emp-1/plans",
		CreatePlanRequest{PlanJSON: factory.OfficeDay("2024-03-04"), EndDate: "2024-03-05"}, nil)

	for _, e := range []CreateEventRequest{
		{Date: "2024-03-04", Arrival: "09:20", Departure: "17:00"},
		{Date: "2024-03-05", Arrival: "09:00"},
	} {
		rec := s.do(t, http.MethodPost, "/api/employees/emp-1/events", e, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	var submitted RequestDTO
	rec := s.do(t, http.MethodPost, "/api/employees/emp-1/requests", CreateRequestRequest{
		Category: "manual_traffic", Date: "2024-03-05", Time: "17:00", Traffic: "logout",
	}, &submitted)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "pending", submitted.Status)

	var before TimelineDTO
	s.do(t, http.MethodGet, "/api/employees/emp-1/timeline"+week, nil, &before)
	require.Len(t, before.Days, 2)
	assert.Equal(t, 0, before.Days[1].Status.Punches, "a pending logout does not complete the event")

	rec = s.do(t, http.MethodPut, "/api/requests/"+submitted.ID+"/status", UpdateRequestStatusRequest{Status: "approved"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var timeline TimelineDTO
	rec = s.do(t, http.MethodGet, "/api/employees/emp-1/timeline"+week, nil, &timeline)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, timeline.Days, 2)

	mon := timeline.Days[0].Status
	require.NotNil(t, mon)
	assert.Equal(t, 460, mon.Attend)
	assert.Equal(t, 20, mon.Absent)
	assert.Equal(t, 20, mon.FirstPeriod.LateArrival)

	tue := timeline.Days[1].Status
	require.NotNil(t, tue)
	assert.Equal(t, 480, tue.Attend)
	assert.Equal(t, 0, tue.Absent)
	assert.Equal(t, 1, tue.Punches)

	var report ReportDTO
	s.do(t, http.MethodGet, "/api/employees/emp-1/report"+week, nil, &report)
	require.NotNil(t, report.Totals)
	assert.Equal(t, 940, report.Totals.Attend.Minutes)
	assert.Equal(t, "15:40", report.Totals.Attend.Display)
	assert.Empty(t, report.Failures)
}

func TestTimeline_FailedDayIsReported(t *testing.T) {
	s := setupTestServer(t)
	s.createEmployee(t, "emp-1")
	s.do(t, http.MethodPost, "/api/employees/emp-1/plans", CreatePlanRequest{PlanJSON: factory.OfficeDay("2024-03-04")}, nil)
	s.do(t, http.MethodPost, "/api/employees/emp-1/events", CreateEventRequest{Date: "2024-03-04", Arrival: "17:00", Departure: "09:00"}, nil)

	var report ReportDTO
	rec := s.do(t, http.MethodGet, "/api/employees/emp-1/report"+week, nil, &report)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "2024-03-04", report.Failures[0].Date)
	assert.Equal(t, 1, report.Totals.FailedDays)
	assert.NotEmpty(t, s.logs.FilterMessage("day failed").All())
}

func TestRanges_Rejected(t *testing.T) {
	s := setupTestServer(t)
	s.createEmployee(t, "emp-1")

	for _, query := range []string{"", "?start=2024-03-04", "?start=2024-03-10&end=2024-03-04", "?start=monday&end=friday"} {
		rec := s.do(t, http.MethodGet, "/api/employees/emp-1/timeline"+query, nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestSubmitRequest_Invalid(t *testing.T) {
	s := setupTestServer(t)
	s.createEmployee(t, "emp-1")

	tests := []struct {
		name string
		req  CreateRequestRequest
	}{
		{"unknown category", CreateRequestRequest{Category: "vacation", Date: "2024-03-04"}},
		{"hourly without window", CreateRequestRequest{Category: "hourly_mission", Date: "2024-03-04"}},
		{"bad date", CreateRequestRequest{Category: "daily_mission", Date: "04/03/2024"}},
		{"bad status", CreateRequestRequest{Category: "daily_mission", Date: "2024-03-04", Status: "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/employees/emp-1/requests", tt.req, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	rec := s.do(t, http.MethodPut, "/api/requests/missing/status", UpdateRequestStatusRequest{Status: "approved"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePlan_UnknownEmployee(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/employees/ghost/plans", CreatePlanRequest{PlanJSON: factory.OfficeDay("2024-03-04")}, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// STATELESS COMPUTATION
// =============================================================================

func TestComputeDailyStatus(t *testing.T) {
	plan := factory.OfficeDay("")

	tests := []struct {
		name        string
		req         ComputeDailyStatusRequest
		wantAttend  int
		wantAbsent  int
		wantExcused map[string]int
	}{
		{
			name: "late arrival",
			req: ComputeDailyStatusRequest{
				Date:   "2024-03-04",
				Plan:   &plan,
				Events: []CreateEventRequest{{Arrival: "09:20", Departure: "17:00"}},
			},
			wantAttend: 460, wantAbsent: 20, wantExcused: map[string]int{},
		},
		{
			name: "late arrival excused by hourly leave",
			req: ComputeDailyStatusRequest{
				Date:     "2024-03-04",
				Plan:     &plan,
				Events:   []CreateEventRequest{{Arrival: "09:20", Departure: "17:00"}},
				Requests: []CreateRequestRequest{{Category: "hourly_earned_leave", Time: "09:00", ToTime: "09:20", Status: "pending"}},
			},
			wantAttend: 460, wantAbsent: 0, wantExcused: map[string]int{"earned_leave": 20},
		},
		{
			name: "rest day",
			req: ComputeDailyStatusRequest{
				Date:   "2024-03-09",
				Events: []CreateEventRequest{{Arrival: "10:00"}, {Departure: "12:30"}},
			},
			wantAttend: 150, wantAbsent: 0, wantExcused: map[string]int{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(t)

			var status DailyStatusDTO
			rec := s.do(t, http.MethodPost, "/api/daily-status", tt.req, &status)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.req.Date, status.Date)
			assert.Equal(t, tt.wantAttend, status.Attend)
			assert.Equal(t, tt.wantAbsent, status.Absent)
			assert.Equal(t, tt.wantExcused, status.Excused)
		})
	}
}

func TestComputeDailyStatus_Rejects(t *testing.T) {
	s := setupTestServer(t)
	night := factory.OfficeDay("")
	night.NightShift = true
	plan := factory.OfficeDay("")

	for name, req := range map[string]ComputeDailyStatusRequest{
		"no date":       {Plan: &plan},
		"night shift":   {Date: "2024-03-04", Plan: &night},
		"bad clock":     {Date: "2024-03-04", Plan: &plan, Events: []CreateEventRequest{{Arrival: "9h"}}},
		"inverted":      {Date: "2024-03-04", Plan: &plan, Events: []CreateEventRequest{{Arrival: "17:00", Departure: "09:00"}}},
		"empty event":   {Date: "2024-03-04", Plan: &plan, Events: []CreateEventRequest{{}}},
		"leave too big": {Date: "2024-03-04", Plan: &plan, Events: []CreateEventRequest{{Arrival: "09:00", Departure: "17:00"}}, Requests: []CreateRequestRequest{{Category: "hourly_sick_leave", Time: "10:00", ToTime: "11:00"}}},
	} {
		t.Run(name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/daily-status", req, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

// =============================================================================
// ROUTER AND MIDDLEWARE
// =============================================================================

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	s := setupTestServer(t)

	s.do(t, http.MethodGet, "/api/employees", nil, nil)
	s.do(t, http.MethodGet, "/api/nowhere", nil, nil)

	ok := s.logs.FilterMessage("request completed").All()
	require.Len(t, ok, 1)
	assert.Equal(t, zapcore.InfoLevel, ok[0].Level)
	assert.Equal(t, "/api/employees", ok[0].ContextMap()["path"])

	notFound := s.logs.FilterMessage("client error").All()
	require.Len(t, notFound, 1)
	assert.Equal(t, zapcore.WarnLevel, notFound[0].Level)
	assert.EqualValues(t, http.StatusNotFound, notFound[0].ContextMap()["status"])
	assert.NotEmpty(t, notFound[0].ContextMap()["request_id"])
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}
