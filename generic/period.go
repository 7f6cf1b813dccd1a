package generic

import "fmt"

// =============================================================================
// WINDOW - A wall-clock interval within one day
// =============================================================================

// Window is the closed interval [Start, End] of one day. Duty periods,
// attendance punches and hourly requests are all windows.
type Window struct {
	Start Clock
	End   Clock
}

func NewWindow(start, end Clock) Window { return Window{Start: start, End: end} }

// Span is End - Start. Negative for an inverted window.
func (w Window) Span() Minutes { return Duration(w.Start, w.End) }

// Valid reports whether both ends are in-day and Start < End.
func (w Window) Valid() bool {
	return w.Start.Valid() && w.End.Valid() && w.Start < w.End
}

// Clip returns the intersection of w and o. ok is false when they don't
// overlap by at least one minute.
func (w Window) Clip(o Window) (clipped Window, ok bool) {
	start := w.Start
	if o.Start > start {
		start = o.Start
	}
	end := w.End
	if o.End < end {
		end = o.End
	}
	if end <= start {
		return Window{}, false
	}
	return Window{Start: start, End: end}, true
}

// Overlap is the number of minutes w and o share (never negative).
func (w Window) Overlap(o Window) Minutes {
	clipped, ok := w.Clip(o)
	if !ok {
		return 0
	}
	return clipped.Span()
}

func (w Window) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + "]"
}

// =============================================================================
// DATE RANGE - The calendar boundary for reports
// =============================================================================

// DateRange is the closed range of days [Start, End].
type DateRange struct {
	Start Date
	End   Date
}

func NewDateRange(start, end Date) (DateRange, error) {
	r := DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidRange)
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: %s is before %s", ErrInvalidRange, r.End, r.Start)
	}
	return nil
}

// Contains returns true if the day is within [Start, End].
func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Days returns every day in the range, in order.
func (r DateRange) Days() []Date {
	var days []Date
	for current := r.Start; current.BeforeOrEqual(r.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}
