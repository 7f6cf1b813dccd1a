/*
reporter.go - Range reports over many employee-days

PURPOSE:
  The Reporter is the batch layer around BuildDailyStatus. It loads a
  range of inputs from a Source, computes every day independently and
  sums the results.

PARTIAL FAILURE:
  A day that fails (malformed plan, invariant violation...) is recorded in
  its DayResult and counted in Totals.FailedDays. It never aborts the range.
  Likewise ReportAll records an employee whose inputs could not be loaded
  and carries on with the others. Only context cancellation stops a report.

CONCURRENCY:
  Days and employees are computed in parallel, bounded by Workers. The
  engine shares no state between days, so no locking is needed beyond
  writing each result into its own slot.
*/
package attendance

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/warp/attendance-engine/generic"
)

const DefaultWorkers = 4

// DayResult is one computed day. Exactly one of Status and Err is set.
type DayResult struct {
	Date   generic.Date
	Status *DailyStatus
	Err    error
}

// Totals is the associative sum of a set of days.
type Totals struct {
	Attend       generic.Minutes
	Absent       generic.Minutes
	Overtime     generic.Minutes
	BurnedOut    generic.Minutes
	Excused      map[RequestGroup]generic.Minutes
	Days         int
	DaysAttended int
	FailedDays   int
}

// Add folds one day into the totals.
func (t *Totals) Add(d DayResult) {
	t.Days++
	if d.Err != nil || d.Status == nil {
		t.FailedDays++
		return
	}
	s := d.Status
	t.Attend += s.Attend
	t.Absent += s.Absent
	t.Overtime += s.Overtime
	t.BurnedOut += s.TotalBurnedOut()
	if s.Punches > 0 {
		t.DaysAttended++
	}
	for g, m := range s.Excused {
		if t.Excused == nil {
			t.Excused = make(map[RequestGroup]generic.Minutes)
		}
		t.Excused[g] += m
	}
}

// EmployeeReport is the report of one employee over one range.
type EmployeeReport struct {
	EmployeeID generic.EmployeeID
	Range      generic.DateRange
	Days       []DayResult
	Totals     Totals
	// Err is set when the employee's inputs could not be loaded.
	Err error
}

// Summarize sums a timeline.
func Summarize(days []DayResult) Totals {
	var t Totals
	for _, d := range days {
		t.Add(d)
	}
	return t
}

// =============================================================================
// REPORTER
// =============================================================================

type Reporter struct {
	Source  Source
	Workers int
}

func NewReporter(src Source, workers int) *Reporter {
	return &Reporter{Source: src, Workers: workers}
}

func (r *Reporter) workers() int {
	if r.Workers <= 0 {
		return DefaultWorkers
	}
	return r.Workers
}

// Timeline computes every day in rng that has a plan or at least one event.
// Results are ordered by date.
func (r *Reporter) Timeline(ctx context.Context, id generic.EmployeeID, rng generic.DateRange) ([]DayResult, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	inputs, err := r.load(ctx, id, rng)
	if err != nil {
		return nil, err
	}

	results := make([]DayResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = computeDay(id, in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Report is Timeline followed by Summarize.
func (r *Reporter) Report(ctx context.Context, id generic.EmployeeID, rng generic.DateRange) (EmployeeReport, error) {
	days, err := r.Timeline(ctx, id, rng)
	if err != nil {
		return EmployeeReport{}, err
	}
	return EmployeeReport{EmployeeID: id, Range: rng, Days: days, Totals: Summarize(days)}, nil
}

// ReportAll reports every employee in ids. A load failure for one employee
// is recorded in that employee's Err.
func (r *Reporter) ReportAll(ctx context.Context, ids []generic.EmployeeID, rng generic.DateRange) ([]EmployeeReport, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	reports := make([]EmployeeReport, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i, id := range ids {
		g.Go(func() error {
			rep, err := r.Report(gctx, id, rng)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				rep = EmployeeReport{EmployeeID: id, Range: rng, Err: err}
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// =============================================================================
// INPUT ASSEMBLY
// =============================================================================

// dayBundle holds the raw inputs of one day before pairing.
type dayBundle struct {
	date     generic.Date
	plan     *ShiftPlan
	events   []Event
	requests []Request
}

func (r *Reporter) load(ctx context.Context, id generic.EmployeeID, rng generic.DateRange) ([]dayBundle, error) {
	if _, err := r.Source.Employee(ctx, id); err != nil {
		return nil, err
	}
	plans, err := r.Source.PlansInRange(ctx, id, rng)
	if err != nil {
		return nil, err
	}
	events, err := r.Source.EventsInRange(ctx, id, rng)
	if err != nil {
		return nil, err
	}
	requests, err := r.Source.RequestsInRange(ctx, id, rng)
	if err != nil {
		return nil, err
	}
	return bundleDays(rng, plans, events, requests), nil
}

// bundleDays groups inputs by day. Only approved requests are kept.
func bundleDays(rng generic.DateRange, plans []ShiftPlan, events []Event, requests []Request) []dayBundle {
	byDate := make(map[generic.Date]*dayBundle)
	get := func(d generic.Date) *dayBundle {
		b, ok := byDate[d]
		if !ok {
			b = &dayBundle{date: d}
			byDate[d] = b
		}
		return b
	}

	for i := range plans {
		if rng.Contains(plans[i].Date) {
			get(plans[i].Date).plan = &plans[i]
		}
	}
	for _, e := range events {
		if rng.Contains(e.Date) {
			b := get(e.Date)
			b.events = append(b.events, e)
		}
	}

	out := make([]dayBundle, 0, len(byDate))
	for _, b := range byDate {
		for _, req := range requests {
			if req.Approved() && req.Covers(b.date) {
				b.requests = append(b.requests, req)
			}
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].date.Before(out[j].date) })
	return out
}

func computeDay(id generic.EmployeeID, b dayBundle) DayResult {
	fail := func(err error) DayResult {
		return DayResult{Date: b.date, Err: &generic.DayError{EmployeeID: id, Date: b.date, Err: err}}
	}
	punches, err := PairEvents(b.events, b.requests)
	if err != nil {
		return fail(err)
	}
	status, err := BuildDailyStatus(DayInput{Date: b.date, Plan: b.plan, Punches: punches, Requests: b.requests})
	if err != nil {
		return fail(err)
	}
	return DayResult{Date: b.date, Status: status}
}
