package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/store/sqlite"
)

var monday = generic.MustParseDate("2024-03-04")

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.SaveEmployee(context.Background(), &sqlite.Employee{ID: "emp-1", Name: "Alice", Email: "alice@example.com"}))
	return s
}

func officePlan(t *testing.T, date generic.Date) *attendance.ShiftPlan {
	t.Helper()
	plan, err := factory.NewPlanFactory().FromJSON(factory.OfficeDay(date.String()))
	require.NoError(t, err)
	plan.EmployeeID = "emp-1"
	return plan
}

func at(s string) *generic.Clock {
	c := generic.MustParseClock(s)
	return &c
}

func week() generic.DateRange {
	return generic.DateRange{Start: monday, End: monday.AddDays(6)}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployees(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	bob := &sqlite.Employee{Name: "Bob"}
	require.NoError(t, s.SaveEmployee(ctx, bob))
	assert.NotEmpty(t, bob.ID, "an empty ID gets a UUID")
	assert.False(t, bob.CreatedAt.IsZero())

	got, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	all, err := s.Employees(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alice", all[0].Name)
	assert.Equal(t, "Bob", all[1].Name)

	_, err = s.Employee(ctx, "ghost")
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)
}

// =============================================================================
// PLANS
// =============================================================================

func TestSavePlan_ReplacesSameDay(t *testing.T) {
	// GIVEN: A plan stored for Monday
	// WHEN: Storing another plan with a different ID for the same day
	// THEN: Only the second plan remains

	s := newStore(t)
	ctx := context.Background()

	first := officePlan(t, monday)
	first.ID = "plan-a"
	require.NoError(t, s.SavePlan(ctx, first))

	pj := factory.FlexDay(monday.String())
	second, err := factory.NewPlanFactory().FromJSON(pj)
	require.NoError(t, err)
	second.ID = "plan-b"
	second.EmployeeID = "emp-1"
	require.NoError(t, s.SavePlan(ctx, second))

	plans, err := s.PlansInRange(ctx, "emp-1", week())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, generic.PlanID("plan-b"), plans[0].ID)
	assert.Equal(t, attendance.PlanFloating, plans[0].Type)

	_, err = s.GetPlan(ctx, "plan-a")
	assert.ErrorIs(t, err, generic.ErrPlanNotFound)
}

func TestSavePlan_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	plan := officePlan(t, monday)
	require.NoError(t, s.SavePlan(ctx, plan))
	require.NotEmpty(t, plan.ID)

	got, err := s.GetPlan(ctx, string(plan.ID))
	require.NoError(t, err)
	assert.Equal(t, plan, got)
}

func TestSavePlan_RejectsInvalid(t *testing.T) {
	s := newStore(t)

	plan := officePlan(t, monday)
	plan.FirstPeriod = generic.NewWindow(generic.NewClock(17, 0), generic.NewClock(9, 0))

	err := s.SavePlan(context.Background(), plan)
	assert.ErrorIs(t, err, generic.ErrMalformedPlan)
}

func TestSavePlan_UnknownEmployee(t *testing.T) {
	s := newStore(t)

	plan := officePlan(t, monday)
	plan.EmployeeID = "ghost"

	err := s.SavePlan(context.Background(), plan)
	require.Error(t, err)
	assert.True(t, sqlite.IsConstraintError(err))
}

// =============================================================================
// EVENTS
// =============================================================================

func TestEvents(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.SaveEvent(ctx, &attendance.Event{EmployeeID: "emp-1", Date: monday})
	assert.ErrorIs(t, err, generic.ErrMalformedEvent)

	require.NoError(t, s.SaveEvent(ctx, &attendance.Event{EmployeeID: "emp-1", Date: monday, Departure: at("17:00")}))
	require.NoError(t, s.SaveEvent(ctx, &attendance.Event{EmployeeID: "emp-1", Date: monday, Arrival: at("09:00")}))
	require.NoError(t, s.SaveEvent(ctx, &attendance.Event{EmployeeID: "emp-1", Date: monday.AddDays(7), Arrival: at("09:00")}))

	events, err := s.EventsInRange(ctx, "emp-1", week())
	require.NoError(t, err)
	require.Len(t, events, 2, "next week is out of range")

	assert.Equal(t, generic.MustParseClock("09:00"), *events[0].Arrival)
	assert.Nil(t, events[0].Departure)
	assert.Nil(t, events[1].Arrival)
	assert.Equal(t, generic.MustParseClock("17:00"), *events[1].Departure)
}

// =============================================================================
// REQUESTS
// =============================================================================

func TestRequests_DefaultPendingAndApprove(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	r := &attendance.Request{
		EmployeeID: "emp-1",
		Category:   attendance.CategoryHourlyMission,
		Date:       monday,
		Time:       at("10:00"),
		ToTime:     at("11:00"),
		Reason:     "client visit",
	}
	require.NoError(t, s.SaveRequest(ctx, r))
	assert.Equal(t, attendance.StatusPending, r.Status)

	require.NoError(t, s.UpdateRequestStatus(ctx, string(r.ID), attendance.StatusApproved))

	got, err := s.GetRequest(ctx, string(r.ID))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusApproved, got.Status)
	assert.Equal(t, "client visit", got.Reason)
	assert.True(t, got.EndDate.IsZero(), "single-day requests keep an empty end date")
	assert.Equal(t, generic.MustParseClock("10:00"), *got.Time)
}

func TestRequests_StatusErrors(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.UpdateRequestStatus(ctx, "missing", attendance.StatusApproved)
	assert.ErrorIs(t, err, generic.ErrRequestNotFound)

	err = s.UpdateRequestStatus(ctx, "missing", "maybe")
	assert.ErrorIs(t, err, generic.ErrMalformedRequest)

	_, err = s.GetRequest(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrRequestNotFound)
}

func TestRequests_RejectsMalformed(t *testing.T) {
	s := newStore(t)

	err := s.SaveRequest(context.Background(), &attendance.Request{
		EmployeeID: "emp-1",
		Category:   attendance.CategoryHourlyEarnedLeave,
		Date:       monday,
	})

	assert.ErrorIs(t, err, generic.ErrMalformedRequest)
}

func TestRequestsInRange_Overlap(t *testing.T) {
	// GIVEN: A leave from the previous Friday to Tuesday and one next week
	// WHEN: Querying this week
	// THEN: The overlapping leave is returned with its full span

	s := newStore(t)
	ctx := context.Background()

	leave := &attendance.Request{
		ID:         "req-leave",
		EmployeeID: "emp-1",
		Category:   attendance.CategoryDailySickLeave,
		Date:       monday.AddDays(-3),
		EndDate:    monday.AddDays(1),
	}
	later := &attendance.Request{
		ID:         "req-later",
		EmployeeID: "emp-1",
		Category:   attendance.CategoryDailyEarnedLeave,
		Date:       monday.AddDays(8),
	}
	require.NoError(t, s.SaveRequest(ctx, leave))
	require.NoError(t, s.SaveRequest(ctx, later))

	got, err := s.RequestsInRange(ctx, "emp-1", week())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, generic.RequestID("req-leave"), got[0].ID)
	assert.Equal(t, monday.AddDays(-3), got[0].Date)
	assert.Equal(t, monday.AddDays(1), got[0].EndDate)

	all, err := s.RequestsByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, generic.RequestID("req-later"), all[0].ID, "newest day first")
}

// =============================================================================
// STATUSES AND SNAPSHOT RUNS
// =============================================================================

func TestStatuses_Upsert(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	st := attendance.NewDailyStatus(monday)
	st.Attend = 470
	st.Absent = 10
	st.Punches = 1
	st.FirstPeriod = attendance.PeriodDeviation{LateArrival: 10}
	st.BurnedOut[attendance.CauseEndingOvertime] = 15
	require.NoError(t, s.SaveStatus(ctx, "emp-1", st))

	st.Overtime = 30
	st.Excused[attendance.GroupMissions] = 60
	require.NoError(t, s.SaveStatus(ctx, "emp-1", st))

	got, err := s.Statuses(ctx, "emp-1", week())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *st, got[0])
}

func TestSnapshotRuns(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	started := time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC)
	run := &sqlite.SnapshotRun{RangeStart: monday, RangeEnd: monday.AddDays(6), Status: "running", StartedAt: started}
	require.NoError(t, s.SaveSnapshotRun(ctx, run))
	require.NotEmpty(t, run.ID)

	done := started.Add(time.Minute)
	run.Status, run.Days, run.FailedDays, run.CompletedAt = "completed", 5, 1, &done
	require.NoError(t, s.SaveSnapshotRun(ctx, run))

	older := &sqlite.SnapshotRun{RangeStart: monday, RangeEnd: monday, Status: "failed", Error: "boom", StartedAt: started.Add(-time.Hour)}
	require.NoError(t, s.SaveSnapshotRun(ctx, older))

	runs, err := s.ListSnapshotRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, 5, runs[0].Days)
	require.NotNil(t, runs[0].CompletedAt)
	assert.True(t, done.Equal(*runs[0].CompletedAt))
	assert.Equal(t, "boom", runs[1].Error)
	assert.Nil(t, runs[1].CompletedAt)
}

func TestReset(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.SavePlan(ctx, officePlan(t, monday)))

	require.NoError(t, s.Reset(ctx))

	employees, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
	plans, err := s.PlansInRange(ctx, "emp-1", week())
	require.NoError(t, err)
	assert.Empty(t, plans)
}

// =============================================================================
// END TO END
// =============================================================================

func TestReporterOverSQLite(t *testing.T) {
	// GIVEN: Monday 09:20-17:00 and Tuesday with an approved daily mission
	// WHEN: Reporting the week from the database
	// THEN: Monday is 20 minutes late and Tuesday is fully excused

	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePlan(ctx, officePlan(t, monday)))
	require.NoError(t, s.SavePlan(ctx, officePlan(t, monday.AddDays(1))))
	require.NoError(t, s.SaveEvent(ctx, &attendance.Event{EmployeeID: "emp-1", Date: monday, Arrival: at("09:20"), Departure: at("17:00")}))
	require.NoError(t, s.SaveRequest(ctx, &attendance.Request{
		EmployeeID: "emp-1",
		Category:   attendance.CategoryDailyMission,
		Status:     attendance.StatusApproved,
		Date:       monday.AddDays(1),
	}))

	rep, err := attendance.NewReporter(s, 2).Report(ctx, "emp-1", week())

	require.NoError(t, err)
	assert.Equal(t, 2, rep.Totals.Days)
	assert.Equal(t, 0, rep.Totals.FailedDays)
	assert.Equal(t, generic.Minutes(460), rep.Totals.Attend)
	assert.Equal(t, generic.Minutes(20), rep.Totals.Absent)
	assert.Equal(t, generic.Minutes(480), rep.Totals.Excused[attendance.GroupMissions])
}
