package attendance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
)

func event(arrival, departure string) attendance.Event {
	e := attendance.Event{EmployeeID: "emp-1", Date: monday}
	if arrival != "" {
		e.Arrival = clockPtr(arrival)
	}
	if departure != "" {
		e.Departure = clockPtr(departure)
	}
	return e
}

func traffic(kind attendance.TrafficType, at string) attendance.Request {
	return attendance.Request{
		ID:         generic.RequestID("mt-" + at),
		EmployeeID: "emp-1",
		Category:   attendance.CategoryManualTraffic,
		Status:     attendance.StatusApproved,
		Date:       monday,
		Time:       clockPtr(at),
		Traffic:    kind,
	}
}

func TestPairEvents_CompleteEventsPassThrough(t *testing.T) {
	punches, err := attendance.PairEvents([]attendance.Event{
		event("13:00", "17:00"),
		event("08:00", "12:00"),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, []attendance.Punch{punch("08:00", "12:00"), punch("13:00", "17:00")}, punches)
}

func TestPairEvents_MatchesLatestArrivalFirst(t *testing.T) {
	// GIVEN: Two lone arrivals and two lone departures
	// WHEN: Pairing
	// THEN: 13:00 takes 17:00 and 08:00 takes 12:00

	punches, err := attendance.PairEvents([]attendance.Event{
		event("08:00", ""),
		event("", "17:00"),
		event("13:00", ""),
		event("", "12:00"),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, []attendance.Punch{punch("08:00", "12:00"), punch("13:00", "17:00")}, punches)
}

func TestPairEvents_UnmatchedSidesAreDropped(t *testing.T) {
	punches, err := attendance.PairEvents([]attendance.Event{
		event("09:00", "12:00"),
		event("13:00", ""),
		event("", "12:30"),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, []attendance.Punch{punch("09:00", "12:00")}, punches)
}

func TestPairEvents_ManualTrafficCompletesEvent(t *testing.T) {
	// GIVEN: A forgotten logout corrected by an approved manual traffic request
	punches, err := attendance.PairEvents(
		[]attendance.Event{event("09:00", "")},
		[]attendance.Request{traffic(attendance.TrafficLogout, "17:00"), approved(attendance.CategoryDailyMission, "", "")},
	)

	require.NoError(t, err)
	assert.Equal(t, []attendance.Punch{punch("09:00", "17:00")}, punches)
}

func TestPairEvents_ManualLogin(t *testing.T) {
	punches, err := attendance.PairEvents(
		[]attendance.Event{event("", "17:30")},
		[]attendance.Request{traffic(attendance.TrafficLogin, "08:45")},
	)

	require.NoError(t, err)
	assert.Equal(t, []attendance.Punch{punch("08:45", "17:30")}, punches)
}

func TestPairEvents_EmptyEventMalformed(t *testing.T) {
	_, err := attendance.PairEvents([]attendance.Event{event("", "")}, nil)

	assert.ErrorIs(t, err, generic.ErrMalformedEvent)
}

func TestPairEvents_ManualTrafficWithoutType(t *testing.T) {
	_, err := attendance.PairEvents(nil, []attendance.Request{traffic("", "17:00")})

	assert.ErrorIs(t, err, generic.ErrMalformedEvent)
}

// =============================================================================
// REQUEST TESTS
// =============================================================================

func TestRequest_CoversDailyRange(t *testing.T) {
	r := approved(attendance.CategoryDailySickLeave, "", "")
	r.EndDate = monday.AddDays(2)

	assert.True(t, r.Covers(monday))
	assert.True(t, r.Covers(monday.AddDays(2)))
	assert.False(t, r.Covers(monday.AddDays(3)))
	assert.NoError(t, r.Validate())
}

func TestRequest_HourlyEndDateIgnored(t *testing.T) {
	r := approved(attendance.CategoryHourlyMission, "10:00", "11:00")
	r.EndDate = monday.AddDays(5)

	assert.Equal(t, monday, r.LastDay())
	assert.False(t, r.Covers(monday.AddDays(1)))
}

func TestRequest_Validate(t *testing.T) {
	inverted := approved(attendance.CategoryHourlyMission, "11:00", "10:00")
	assert.ErrorIs(t, inverted.Validate(), generic.ErrMalformedRequest)

	backwards := approved(attendance.CategoryDailyMission, "", "")
	backwards.EndDate = monday.AddDays(-1)
	assert.ErrorIs(t, backwards.Validate(), generic.ErrMalformedRequest)

	unknown := approved("vacation", "", "")
	assert.ErrorIs(t, unknown.Validate(), generic.ErrMalformedRequest)
}

func TestCategory_Groups(t *testing.T) {
	for _, c := range attendance.Categories {
		switch {
		case c == attendance.CategoryManualTraffic:
			assert.Empty(t, c.Group())
			assert.False(t, c.IsHourly() || c.IsDaily())
		default:
			assert.NotEmpty(t, c.Group(), c)
			assert.NotEqual(t, c.IsHourly(), c.IsDaily(), c)
		}
	}
}
