/*
scheduler.go - Daily status snapshot scheduler

PURPOSE:
  Periodically recomputes the last few closed days of every employee and
  caches the resulting daily statuses, so that reads of recent history do
  not have to re-run the engine.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Each run covers [today - lookback, today - 1]; today is still open
  - Days that fail are logged and counted, never cached
  - Every run is recorded for audit and the admin endpoint

USAGE:
  scheduler := NewSnapshotScheduler(store, reporter, cfg, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunSnapshots endpoint (manual run)
  - attendance/reporter.go: ReportAll
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/store/sqlite"
)

const (
	runRunning   = "running"
	runCompleted = "completed"
	runFailed    = "failed"
)

// SnapshotScheduler caches daily statuses of recently closed days.
type SnapshotScheduler struct {
	Store        *sqlite.Store
	Reporter     *attendance.Reporter
	Log          *zap.Logger
	Interval     time.Duration
	LookbackDays int
	Enabled      bool

	now func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSnapshotScheduler creates a new scheduler.
func NewSnapshotScheduler(store *sqlite.Store, reporter *attendance.Reporter, cfg config.SchedulerConfig, log *zap.Logger) *SnapshotScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SnapshotScheduler{
		Store:        store,
		Reporter:     reporter,
		Log:          log.Named("scheduler"),
		Interval:     cfg.Interval,
		LookbackDays: cfg.LookbackDays,
		Enabled:      cfg.Enabled,
		now:          time.Now,
	}
}

// Start begins the scheduler. Calling it on a running scheduler does nothing.
func (s *SnapshotScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Log.Info("disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.Interval)
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.run(s.ticker, s.stop)

	s.Log.Info("started", zap.Duration("interval", s.Interval), zap.Int("lookback_days", s.LookbackDays))
}

// Stop stops the scheduler and waits for an in-flight run. It is safe to
// call more than once.
func (s *SnapshotScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.wg.Wait()
	s.ticker = nil
	s.Log.Info("stopped")
}

func (s *SnapshotScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stop
		cancel()
	}()

	// Run immediately on start
	s.runLogged(ctx)

	for {
		select {
		case <-ticker.C:
			s.runLogged(ctx)
		case <-stop:
			return
		}
	}
}

func (s *SnapshotScheduler) runLogged(ctx context.Context) {
	if _, err := s.RunNow(ctx); err != nil && ctx.Err() == nil {
		s.Log.Error("snapshot run failed", zap.Error(err))
	}
}

// Range is the window of days the next run covers.
func (s *SnapshotScheduler) Range() generic.DateRange {
	today := generic.DateOf(s.now())
	lookback := s.LookbackDays
	if lookback <= 0 {
		lookback = 1
	}
	return generic.DateRange{Start: today.AddDays(-lookback), End: today.AddDays(-1)}
}

// RunNow computes and caches every employee's days in Range and returns the
// recorded run.
func (s *SnapshotScheduler) RunNow(ctx context.Context) (sqlite.SnapshotRun, error) {
	rng := s.Range()
	run := sqlite.SnapshotRun{
		RangeStart: rng.Start,
		RangeEnd:   rng.End,
		Status:     runRunning,
		StartedAt:  s.now(),
	}
	if err := s.Store.SaveSnapshotRun(ctx, &run); err != nil {
		return run, fmt.Errorf("failed to save run record: %w", err)
	}

	days, failed, err := s.snapshot(ctx, rng)
	run.Days, run.FailedDays = days, failed
	completed := s.now()
	run.CompletedAt = &completed
	if err != nil {
		run.Status = runFailed
		run.Error = err.Error()
	} else {
		run.Status = runCompleted
	}

	if saveErr := s.Store.SaveSnapshotRun(context.WithoutCancel(ctx), &run); saveErr != nil {
		return run, fmt.Errorf("failed to update run record: %w", saveErr)
	}
	if err != nil {
		return run, err
	}

	s.Log.Info("snapshot run completed",
		zap.String("run_id", run.ID),
		zap.Stringer("range", rng),
		zap.Int("days", days),
		zap.Int("failed_days", failed))
	return run, nil
}

func (s *SnapshotScheduler) snapshot(ctx context.Context, rng generic.DateRange) (days, failed int, err error) {
	employees, err := s.Store.Employees(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	ids := make([]generic.EmployeeID, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}

	reports, err := s.Reporter.ReportAll(ctx, ids, rng)
	if err != nil {
		return 0, 0, err
	}

	for _, rep := range reports {
		if rep.Err != nil {
			s.Log.Warn("employee skipped", zap.String("employee_id", string(rep.EmployeeID)), zap.Error(rep.Err))
			continue
		}
		for _, d := range rep.Days {
			if d.Err != nil {
				failed++
				s.Log.Warn("day failed",
					zap.String("employee_id", string(rep.EmployeeID)),
					zap.Stringer("date", d.Date),
					zap.Error(d.Err))
				continue
			}
			if err := s.Store.SaveStatus(ctx, rep.EmployeeID, d.Status); err != nil {
				return days, failed, fmt.Errorf("failed to save status of %s on %s: %w", rep.EmployeeID, d.Date, err)
			}
			days++
		}
	}
	return days, failed, nil
}

// NextRunTime returns when the next scheduled run will occur.
func (s *SnapshotScheduler) NextRunTime() time.Time {
	return s.now().Add(s.Interval)
}
