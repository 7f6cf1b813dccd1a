package attendance

import (
	"fmt"
	"sort"

	"github.com/warp/attendance-engine/generic"
)

// PairEvents turns a day's raw events into complete punches.
//
// Complete events are used as they are. One-sided events are pooled with
// manual traffic requests (login supplies an arrival, logout a departure).
// Arrivals are then matched latest first, each with the earliest remaining
// departure at or after it. Whatever cannot be matched is dropped.
//
// The result is ordered by arrival.
func PairEvents(events []Event, requests []Request) ([]Punch, error) {
	var (
		punches    []Punch
		arrivals   []generic.Clock
		departures []generic.Clock
	)

	for _, e := range events {
		switch {
		case e.Complete():
			p, _ := e.Punch()
			punches = append(punches, p)
		case e.Arrival != nil:
			arrivals = append(arrivals, *e.Arrival)
		case e.Departure != nil:
			departures = append(departures, *e.Departure)
		default:
			return nil, fmt.Errorf("%w: event %s has neither arrival nor departure", generic.ErrMalformedEvent, e.ID)
		}
	}

	for _, r := range requests {
		if r.Category != CategoryManualTraffic {
			continue
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if r.Traffic == TrafficLogin {
			arrivals = append(arrivals, *r.Time)
		} else {
			departures = append(departures, *r.Time)
		}
	}

	sort.Slice(arrivals, func(i, j int) bool { return arrivals[i] > arrivals[j] })
	sort.Slice(departures, func(i, j int) bool { return departures[i] < departures[j] })

	for _, a := range arrivals {
		i := sort.Search(len(departures), func(i int) bool { return departures[i] >= a })
		if i == len(departures) {
			continue
		}
		punches = append(punches, NewPunch(a, departures[i]))
		departures = append(departures[:i], departures[i+1:]...)
	}

	sort.SliceStable(punches, func(i, j int) bool { return punches[i].Arrival < punches[j].Arrival })
	return punches, nil
}
