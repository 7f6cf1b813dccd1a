/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists everything around the engine: employees, per-day shift plans,
  raw clock events, exception requests and the computed daily statuses.
  The engine never sees this package; the Reporter reads through
  attendance.Source and the scheduler writes through attendance.StatusStore.

INTERFACES IMPLEMENTED:
  attendance.Source:      Employees, plans, events and requests by range
  attendance.StatusStore: Daily status snapshots

KEY TABLES:
  employees:       Employee records
  shift_plans:     One plan per employee-day, stored as plan JSON
  events:          Raw clock events (either side may be NULL)
  requests:        Exception requests and their workflow status
  daily_statuses:  Computed days, upserted by the snapshot scheduler
  snapshot_runs:   History of scheduler runs

STORAGE FORMATS:
  Dates are TEXT "YYYY-MM-DD" so range filters compare lexicographically.
  Wall-clock values are INTEGER minutes since midnight.
  Plans reuse the factory JSON schema in config_json.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  reporter := attendance.NewReporter(store, 4)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - attendance/store.go: Interface definitions
  - attendance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	factory *factory.PlanFactory
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, factory: factory.NewPlanFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		created_at TEXT NOT NULL
	);

	-- One plan per employee-day
	CREATE TABLE IF NOT EXISTS shift_plans (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		plan_type TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(employee_id, date)
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		arrival INTEGER,
		departure INTEGER,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_employee_date
		ON events(employee_id, date);

	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		category TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		time INTEGER,
		to_time INTEGER,
		traffic TEXT,
		reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_employee_dates
		ON requests(employee_id, date, end_date);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON requests(status);

	-- Computed days (cache, safe to rebuild)
	CREATE TABLE IF NOT EXISTS daily_statuses (
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		attend INTEGER NOT NULL,
		absent INTEGER NOT NULL,
		overtime INTEGER NOT NULL,
		punches INTEGER NOT NULL,
		deviations_json TEXT NOT NULL,
		burned_out_json TEXT NOT NULL,
		excused_json TEXT NOT NULL,
		computed_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, date)
	);

	CREATE TABLE IF NOT EXISTS snapshot_runs (
		id TEXT PRIMARY KEY,
		range_start TEXT NOT NULL,
		range_end TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'running',
		days INTEGER DEFAULT 0,
		failed_days INTEGER DEFAULT 0,
		error TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// Employee represents an employee record.
type Employee struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// SaveEmployee saves an employee. An empty ID gets a new UUID.
func (s *Store) SaveEmployee(ctx context.Context, emp *Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO employees (id, name, email, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email
	`
	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, nullString(emp.Email), emp.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp Employee
	var email sql.NullString
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, created_at FROM employees WHERE id = ?",
		id,
	).Scan(&emp.ID, &emp.Name, &email, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	emp.Email = email.String
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &emp, nil
}

// ListEmployees returns all employees.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, created_at FROM employees ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var emp Employee
		var email sql.NullString
		var createdAt string
		if err := rows.Scan(&emp.ID, &emp.Name, &email, &createdAt); err != nil {
			return nil, err
		}
		emp.Email = email.String
		emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// Employee implements attendance.Source.
func (s *Store) Employee(ctx context.Context, id generic.EmployeeID) (attendance.Employee, error) {
	emp, err := s.GetEmployee(ctx, string(id))
	if err != nil {
		return attendance.Employee{}, err
	}
	return attendance.Employee{ID: generic.EmployeeID(emp.ID), Name: emp.Name}, nil
}

// Employees implements attendance.Source.
func (s *Store) Employees(ctx context.Context) ([]attendance.Employee, error) {
	records, err := s.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]attendance.Employee, 0, len(records))
	for _, r := range records {
		out = append(out, attendance.Employee{ID: generic.EmployeeID(r.ID), Name: r.Name})
	}
	return out, nil
}

// =============================================================================
// SHIFT PLAN STORE
// =============================================================================

// SavePlan stores the plan of one employee-day, replacing the plan already
// stored for that day. An empty ID gets a new UUID.
func (s *Store) SavePlan(ctx context.Context, plan *attendance.ShiftPlan) error {
	if err := plan.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if plan.ID == "" {
		plan.ID = generic.PlanID(uuid.NewString())
	}
	configJSON, err := s.factory.Marshal(plan)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM shift_plans WHERE employee_id = ? AND date = ? AND id <> ?",
		string(plan.EmployeeID), plan.Date.String(), string(plan.ID),
	); err != nil {
		return err
	}

	query := `
		INSERT INTO shift_plans (id, employee_id, date, plan_type, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			date = excluded.date,
			plan_type = excluded.plan_type,
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, query,
		string(plan.ID), string(plan.EmployeeID), plan.Date.String(), string(plan.Type),
		configJSON, now, now,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// GetPlan retrieves a plan by ID.
func (s *Store) GetPlan(ctx context.Context, id string) (*attendance.ShiftPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON string
	err := s.db.QueryRowContext(ctx, "SELECT config_json FROM shift_plans WHERE id = ?", id).Scan(&configJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", generic.ErrPlanNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return s.factory.ParsePlan(configJSON)
}

// PlansInRange implements attendance.Source.
func (s *Store) PlansInRange(ctx context.Context, id generic.EmployeeID, r generic.DateRange) ([]attendance.ShiftPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT config_json FROM shift_plans
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date
	`, string(id), r.Start.String(), r.End.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []attendance.ShiftPlan
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, err
		}
		plan, err := s.factory.ParsePlan(configJSON)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

// =============================================================================
// EVENT STORE
// =============================================================================

// SaveEvent stores a raw clock event. An empty ID gets a new UUID.
func (s *Store) SaveEvent(ctx context.Context, e *attendance.Event) error {
	if e.Arrival == nil && e.Departure == nil {
		return fmt.Errorf("%w: event has neither arrival nor departure", generic.ErrMalformedEvent)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = generic.EventID(uuid.NewString())
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, employee_id, date, arrival, departure, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, string(e.ID), string(e.EmployeeID), e.Date.String(),
		nullClock(e.Arrival), nullClock(e.Departure),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// EventsInRange implements attendance.Source.
func (s *Store) EventsInRange(ctx context.Context, id generic.EmployeeID, r generic.DateRange) ([]attendance.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, date, arrival, departure FROM events
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date, COALESCE(arrival, departure)
	`, string(id), r.Start.String(), r.End.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []attendance.Event
	for rows.Next() {
		var e attendance.Event
		var eventID, employeeID, date string
		var arrival, departure sql.NullInt64
		if err := rows.Scan(&eventID, &employeeID, &date, &arrival, &departure); err != nil {
			return nil, err
		}
		e.ID = generic.EventID(eventID)
		e.EmployeeID = generic.EmployeeID(employeeID)
		if e.Date, err = generic.ParseDate(date); err != nil {
			return nil, err
		}
		e.Arrival = clockOf(arrival)
		e.Departure = clockOf(departure)
		events = append(events, e)
	}
	return events, rows.Err()
}

// =============================================================================
// REQUEST STORE
// =============================================================================

// SaveRequest stores an exception request. An empty ID gets a new UUID and
// an empty status becomes pending.
func (s *Store) SaveRequest(ctx context.Context, r *attendance.Request) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = generic.RequestID(uuid.NewString())
	}
	if r.Status == "" {
		r.Status = attendance.StatusPending
	}

	query := `
		INSERT INTO requests (id, employee_id, category, status, date, end_date,
			time, to_time, traffic, reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		string(r.ID), string(r.EmployeeID), string(r.Category), string(r.Status),
		r.Date.String(), r.LastDay().String(),
		nullClock(r.Time), nullClock(r.ToTime),
		nullString(string(r.Traffic)), nullString(r.Reason), now, now,
	)
	return err
}

// GetRequest retrieves a request by ID.
func (s *Store) GetRequest(ctx context.Context, id string) (*attendance.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	requests, err := s.queryRequests(ctx, requestColumns+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("%w: %s", generic.ErrRequestNotFound, id)
	}
	return &requests[0], nil
}

// UpdateRequestStatus records the outcome of the external approval workflow.
func (s *Store) UpdateRequestStatus(ctx context.Context, id string, status attendance.RequestStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", generic.ErrMalformedRequest, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE requests SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrRequestNotFound, id)
	}
	return nil
}

// RequestsByEmployee returns every request of an employee, newest day first.
func (s *Store) RequestsByEmployee(ctx context.Context, id generic.EmployeeID) ([]attendance.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryRequests(ctx, requestColumns+" WHERE employee_id = ? ORDER BY date DESC", string(id))
}

// RequestsInRange implements attendance.Source: requests of any status whose
// [date, end_date] intersects the range.
func (s *Store) RequestsInRange(ctx context.Context, id generic.EmployeeID, r generic.DateRange) ([]attendance.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryRequests(ctx,
		requestColumns+" WHERE employee_id = ? AND date <= ? AND end_date >= ? ORDER BY date",
		string(id), r.End.String(), r.Start.String(),
	)
}

const requestColumns = `
	SELECT id, employee_id, category, status, date, end_date, time, to_time, traffic, reason
	FROM requests`

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]attendance.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []attendance.Request
	for rows.Next() {
		var (
			r                                attendance.Request
			id, employeeID, category, status string
			date, endDate                    string
			at, to                           sql.NullInt64
			traffic, reason                  sql.NullString
		)
		if err := rows.Scan(&id, &employeeID, &category, &status, &date, &endDate, &at, &to, &traffic, &reason); err != nil {
			return nil, err
		}
		r.ID = generic.RequestID(id)
		r.EmployeeID = generic.EmployeeID(employeeID)
		r.Category = attendance.Category(category)
		r.Status = attendance.RequestStatus(status)
		if r.Date, err = generic.ParseDate(date); err != nil {
			return nil, err
		}
		if endDate != date {
			if r.EndDate, err = generic.ParseDate(endDate); err != nil {
				return nil, err
			}
		}
		r.Time = clockOf(at)
		r.ToTime = clockOf(to)
		r.Traffic = attendance.TrafficType(traffic.String)
		r.Reason = reason.String
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// =============================================================================
// DAILY STATUS STORE
// =============================================================================

type deviations struct {
	First  attendance.PeriodDeviation `json:"first"`
	Second attendance.PeriodDeviation `json:"second"`
}

// SaveStatus implements attendance.StatusStore (upsert by employee-day).
func (s *Store) SaveStatus(ctx context.Context, id generic.EmployeeID, st *attendance.DailyStatus) error {
	devJSON, err := json.Marshal(deviations{First: st.FirstPeriod, Second: st.SecondPeriod})
	if err != nil {
		return err
	}
	burnedJSON, err := json.Marshal(st.BurnedOut)
	if err != nil {
		return err
	}
	excusedJSON, err := json.Marshal(st.Excused)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_statuses (employee_id, date, attend, absent, overtime, punches,
			deviations_json, burned_out_json, excused_json, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			attend = excluded.attend,
			absent = excluded.absent,
			overtime = excluded.overtime,
			punches = excluded.punches,
			deviations_json = excluded.deviations_json,
			burned_out_json = excluded.burned_out_json,
			excused_json = excluded.excused_json,
			computed_at = excluded.computed_at
	`, string(id), st.Date.String(), int(st.Attend), int(st.Absent), int(st.Overtime), st.Punches,
		string(devJSON), string(burnedJSON), string(excusedJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Statuses implements attendance.StatusStore.
func (s *Store) Statuses(ctx context.Context, id generic.EmployeeID, r generic.DateRange) ([]attendance.DailyStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, attend, absent, overtime, punches, deviations_json, burned_out_json, excused_json
		FROM daily_statuses
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date
	`, string(id), r.Start.String(), r.End.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []attendance.DailyStatus
	for rows.Next() {
		var (
			date                              string
			attend, absent, overtime, punches int
			devJSON, burnedJSON, excusedJSON  string
		)
		if err := rows.Scan(&date, &attend, &absent, &overtime, &punches, &devJSON, &burnedJSON, &excusedJSON); err != nil {
			return nil, err
		}
		d, err := generic.ParseDate(date)
		if err != nil {
			return nil, err
		}
		st := attendance.NewDailyStatus(d)
		st.Attend = generic.Minutes(attend)
		st.Absent = generic.Minutes(absent)
		st.Overtime = generic.Minutes(overtime)
		st.Punches = punches

		var dev deviations
		if err := json.Unmarshal([]byte(devJSON), &dev); err != nil {
			return nil, err
		}
		st.FirstPeriod, st.SecondPeriod = dev.First, dev.Second
		if err := json.Unmarshal([]byte(burnedJSON), &st.BurnedOut); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(excusedJSON), &st.Excused); err != nil {
			return nil, err
		}
		statuses = append(statuses, *st)
	}
	return statuses, rows.Err()
}

// =============================================================================
// SNAPSHOT RUNS STORE
// =============================================================================

// SnapshotRun records one run of the snapshot scheduler.
type SnapshotRun struct {
	ID          string
	RangeStart  generic.Date
	RangeEnd    generic.Date
	Status      string // running, completed, failed
	Days        int
	FailedDays  int
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// SaveSnapshotRun inserts or updates a run. An empty ID gets a new UUID.
func (s *Store) SaveSnapshotRun(ctx context.Context, r *SnapshotRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	var completedAt *string
	if r.CompletedAt != nil {
		v := r.CompletedAt.UTC().Format(time.RFC3339)
		completedAt = &v
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshot_runs (id, range_start, range_end, status, days, failed_days,
			error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			days = excluded.days,
			failed_days = excluded.failed_days,
			error = excluded.error,
			completed_at = excluded.completed_at
	`, r.ID, r.RangeStart.String(), r.RangeEnd.String(), r.Status, r.Days, r.FailedDays,
		nullString(r.Error), r.StartedAt.UTC().Format(time.RFC3339), completedAt,
	)
	return err
}

// ListSnapshotRuns returns the most recent runs first.
func (s *Store) ListSnapshotRuns(ctx context.Context, limit int) ([]SnapshotRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, range_start, range_end, status, days, failed_days, error, started_at, completed_at
		FROM snapshot_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []SnapshotRun
	for rows.Next() {
		var r SnapshotRun
		var rangeStart, rangeEnd, startedAt string
		var runErr, completedAt sql.NullString
		if err := rows.Scan(&r.ID, &rangeStart, &rangeEnd, &r.Status, &r.Days, &r.FailedDays,
			&runErr, &startedAt, &completedAt); err != nil {
			return nil, err
		}
		r.RangeStart, _ = generic.ParseDate(rangeStart)
		r.RangeEnd, _ = generic.ParseDate(rangeEnd)
		r.Error = runErr.String
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if completedAt.Valid {
			t, _ := time.Parse(time.RFC3339, completedAt.String)
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Reset clears all data. Used by the demo scenarios.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"daily_statuses", "requests", "events", "shift_plans", "employees", "snapshot_runs"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ attendance.Source      = (*Store)(nil)
	_ attendance.StatusStore = (*Store)(nil)
)

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullClock(c *generic.Clock) sql.NullInt64 {
	if c == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*c), Valid: true}
}

func clockOf(v sql.NullInt64) *generic.Clock {
	if !v.Valid {
		return nil
	}
	c := generic.Clock(v.Int64)
	return &c
}

// IsConstraintError reports whether err came from a violated SQL constraint
// (e.g. an event for an unknown employee).
func IsConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
