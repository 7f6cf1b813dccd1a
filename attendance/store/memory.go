// Package store provides in-memory Source and StatusStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[generic.EmployeeID]attendance.Employee
	plans     map[key]attendance.ShiftPlan
	events    map[generic.EmployeeID][]attendance.Event
	requests  map[generic.EmployeeID][]attendance.Request
	statuses  map[key]attendance.DailyStatus
}

type key struct {
	EmployeeID generic.EmployeeID
	Date       generic.Date
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[generic.EmployeeID]attendance.Employee),
		plans:     make(map[key]attendance.ShiftPlan),
		events:    make(map[generic.EmployeeID][]attendance.Event),
		requests:  make(map[generic.EmployeeID][]attendance.Request),
		statuses:  make(map[key]attendance.DailyStatus),
	}
}

// =============================================================================
// WRITES
// =============================================================================

func (m *Memory) AddEmployee(e attendance.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
}

// PutPlan stores the plan of one employee-day, replacing any earlier one.
func (m *Memory) PutPlan(p attendance.ShiftPlan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[key{EmployeeID: p.EmployeeID, Date: p.Date}] = p
}

func (m *Memory) AddEvent(e attendance.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.EmployeeID] = append(m.events[e.EmployeeID], e)
}

func (m *Memory) AddRequest(r attendance.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.EmployeeID] = append(m.requests[r.EmployeeID], r)
}

// =============================================================================
// SOURCE
// =============================================================================

func (m *Memory) Employee(_ context.Context, id generic.EmployeeID) (attendance.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return attendance.Employee{}, generic.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *Memory) Employees(_ context.Context) ([]attendance.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]attendance.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) PlansInRange(_ context.Context, id generic.EmployeeID, r generic.DateRange) ([]attendance.ShiftPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []attendance.ShiftPlan
	for _, day := range r.Days() {
		if p, ok := m.plans[key{EmployeeID: id, Date: day}]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *Memory) EventsInRange(_ context.Context, id generic.EmployeeID, r generic.DateRange) ([]attendance.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []attendance.Event
	for _, e := range m.events[id] {
		if r.Contains(e.Date) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *Memory) RequestsInRange(_ context.Context, id generic.EmployeeID, r generic.DateRange) ([]attendance.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []attendance.Request
	for _, req := range m.requests[id] {
		if req.Date.BeforeOrEqual(r.End) && req.LastDay().AfterOrEqual(r.Start) {
			result = append(result, req)
		}
	}
	return result, nil
}

// =============================================================================
// STATUS STORE
// =============================================================================

func (m *Memory) SaveStatus(_ context.Context, id generic.EmployeeID, s *attendance.DailyStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[key{EmployeeID: id, Date: s.Date}] = *s
	return nil
}

func (m *Memory) Statuses(_ context.Context, id generic.EmployeeID, r generic.DateRange) ([]attendance.DailyStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []attendance.DailyStatus
	for _, day := range r.Days() {
		if s, ok := m.statuses[key{EmployeeID: id, Date: day}]; ok {
			result = append(result, s)
		}
	}
	return result, nil
}

var (
	_ attendance.Source      = (*Memory)(nil)
	_ attendance.StatusStore = (*Memory)(nil)
)
