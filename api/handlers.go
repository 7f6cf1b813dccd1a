/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes the attendance engine via REST API. Handles HTTP request and
  response, JSON serialization and validation, and delegates the
  computation to attendance.BuildDailyStatus and attendance.Reporter.

ENDPOINTS:
  Employees:
    GET    /api/employees                        List all employees
    POST   /api/employees                        Create employee
    GET    /api/employees/{id}                   Get employee details

  Inputs:
    GET    /api/employees/{id}/plans?start&end   Shift plans in range
    POST   /api/employees/{id}/plans             Create plan (optionally repeated)
    GET    /api/employees/{id}/events?start&end  Raw clock events in range
    POST   /api/employees/{id}/events            Record a clock event
    GET    /api/employees/{id}/requests          Exception requests
    POST   /api/employees/{id}/requests          Submit exception request
    PUT    /api/requests/{id}/status             Record approval outcome

  Results:
    GET    /api/employees/{id}/timeline?start&end        Per-day statuses
    GET    /api/employees/{id}/report?start&end          Totals
    GET    /api/employees/{id}/daily-statuses?start&end  Cached snapshots
    GET    /api/reports?start&end                        Totals, all employees
    POST   /api/daily-status                             Stateless computation

  Admin:
    GET    /api/admin/snapshots       Snapshot run history
    POST   /api/admin/snapshots       Run the snapshot job now

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, malformed plans/events/requests, bad ranges
  - 404: Employee, plan or request not found
  - 500: Internal errors
  A day that fails inside a timeline or report is NOT a failed request:
  it shows up as an entry with an error next to the days that worked.

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Plans     *factory.PlanFactory
	Reporter  *attendance.Reporter
	Scheduler *SnapshotScheduler
	Log       *zap.Logger

	validate *validator.Validate

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store. workers bounds
// report parallelism.
func NewHandler(store *sqlite.Store, workers int, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Plans:    factory.NewPlanFactory(),
		Reporter: attendance.NewReporter(store, workers),
		Log:      log,
		validate: validator.New(),
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeFailure(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	emp := sqlite.Employee{ID: req.ID, Name: req.Name, Email: req.Email}
	if err := h.Store.SaveEmployee(r.Context(), &emp); err != nil {
		h.writeFailure(w, r, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// PLAN HANDLERS
// =============================================================================

// ListPlans returns the plans of an employee in [start, end].
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	id, ok := h.employeeID(w, r)
	if !ok {
		return
	}
	rng, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}

	plans, err := h.Store.PlansInRange(r.Context(), id, rng)
	if err != nil {
		h.writeFailure(w, r, "Failed to list plans", err)
		return
	}
	dtos := make([]factory.PlanJSON, len(plans))
	for i := range plans {
		dtos[i] = h.Plans.ToJSON(&plans[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePlan stores a plan for one day, or for every day in
// [date, end_date] when end_date is given. Each day replaces the plan
// already stored for it.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := h.employeeID(w, r)
	if !ok {
		return
	}
	var req CreatePlanRequest
	if !h.decode(w, r, &req) {
		return
	}

	template, err := h.Plans.FromJSON(req.PlanJSON)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid plan", err)
		return
	}
	days := []generic.Date{template.Date}
	if req.EndDate != "" {
		end, _ := generic.ParseDate(req.EndDate)
		rng, err := generic.NewDateRange(template.Date, end)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date", err)
			return
		}
		days = rng.Days()
	}

	created := make([]factory.PlanJSON, 0, len(days))
	for _, day := range days {
		plan := *template
		plan.ID = ""
		plan.EmployeeID = id
		plan.Date = day
		if err := h.Store.SavePlan(r.Context(), &plan); err != nil {
			h.writeFailure(w, r, "Failed to save plan", err)
			return
		}
		created = append(created, h.Plans.ToJSON(&plan))
	}
	writeJSON(w, http.StatusCreated, created)
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

// ListEvents returns the raw events of an employee in [start, end].
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := h.employeeID(w, r)
	if !ok {
		return
	}
	rng, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}

	events, err := h.Store.EventsInRange(r.Context(), id, rng)
	if err != nil {
		h.writeFailure(w, r, "Failed to list events", err)
		return
	}
	dtos := make([]EventDTO, len(events))
	for i, e := range events {
		dtos[i] = toEventDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEvent records a raw clock event.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.employeeID(w, r)
	if !ok {
		return
	}
	var req CreateEventRequest
	if !h.decode(w, r, &req) {
		return
	}

	event, err := eventFromRequest(id, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event", err)
		return
	}
	if err := h.Store.SaveEvent(r.Context(), &event); err != nil {
		h.writeFailure(w, r, "Failed to save event", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventDTO(event))
}

// =============================================================================
// EXCEPTION REQUEST HANDLERS
// =============================================================================

// ListRequests returns all exception requests of an employee.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	id, ok := h.employeeID(w, r)
	if !ok {
		return
	}
	requests, err := h.Store.RequestsByEmployee(r.Context(), id)
	if err != nil {
		h.writeFailure(w, r, "Failed to list requests", err)
		return
	}
	dtos := make([]RequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitRequest stores an exception request. It starts pending unless the
// caller already knows the workflow outcome.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.employeeID(w, r)
	if !ok {
		return
	}
	var req CreateRequestRequest
	if !h.decode(w, r, &req) {
		return
	}

	request, err := requestFromRequest(id, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}
	if err := h.Store.SaveRequest(r.Context(), &request); err != nil {
		h.writeFailure(w, r, "Failed to save request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(request))
}

// UpdateRequestStatus records the outcome of the external approval workflow.
func (h *Handler) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequestStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	requestID := chi.URLParam(r, "id")
	if err := h.Store.UpdateRequestStatus(r.Context(), requestID, attendance.RequestStatus(req.Status)); err != nil {
		h.writeFailure(w, r, "Failed to update request", err)
		return
	}
	updated, err := h.Store.GetRequest(r.Context(), requestID)
	if err != nil {
		h.writeFailure(w, r, "Failed to get request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*updated))
}

// =============================================================================
// RESULT HANDLERS
// =============================================================================

// GetTimeline computes every day of an employee in [start, end].
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id := generic.EmployeeID(chi.URLParam(r, "id"))
	rng, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}

	days, err := h.Reporter.Timeline(r.Context(), id, rng)
	if err != nil {
		h.writeFailure(w, r, "Failed to build timeline", err)
		return
	}
	h.logDayFailures(r, id, days)

	dto := TimelineDTO{
		EmployeeID: string(id),
		Start:      rng.Start.String(),
		End:        rng.End.String(),
		Days:       make([]DayResultDTO, len(days)),
	}
	for i, d := range days {
		dto.Days[i] = toDayResultDTO(d)
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetReport returns the totals of an employee in [start, end].
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := generic.EmployeeID(chi.URLParam(r, "id"))
	rng, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}

	rep, err := h.Reporter.Report(r.Context(), id, rng)
	if err != nil {
		h.writeFailure(w, r, "Failed to build report", err)
		return
	}
	h.logDayFailures(r, id, rep.Days)
	writeJSON(w, http.StatusOK, toReportDTO(rep))
}

// ListReports returns the totals of every employee in [start, end].
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}

	employees, err := h.Store.Employees(r.Context())
	if err != nil {
		h.writeFailure(w, r, "Failed to list employees", err)
		return
	}
	ids := make([]generic.EmployeeID, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}

	reports, err := h.Reporter.ReportAll(r.Context(), ids, rng)
	if err != nil {
		h.writeFailure(w, r, "Failed to build reports", err)
		return
	}
	dtos := make([]ReportDTO, len(reports))
	for i, rep := range reports {
		if rep.Err != nil {
			h.Log.Warn("employee report failed",
				zap.String("employee_id", string(rep.EmployeeID)), zap.Error(rep.Err))
		}
		dtos[i] = toReportDTO(rep)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListDailyStatuses returns the cached snapshots of an employee.
func (h *Handler) ListDailyStatuses(w http.ResponseWriter, r *http.Request) {
	id, ok := h.employeeID(w, r)
	if !ok {
		return
	}
	rng, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}

	statuses, err := h.Store.Statuses(r.Context(), id, rng)
	if err != nil {
		h.writeFailure(w, r, "Failed to list daily statuses", err)
		return
	}
	dtos := make([]*DailyStatusDTO, len(statuses))
	for i := range statuses {
		dtos[i] = toDailyStatusDTO(&statuses[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ComputeDailyStatus runs the engine on inputs supplied in the body. Nothing
// is read from or written to the store.
func (h *Handler) ComputeDailyStatus(w http.ResponseWriter, r *http.Request) {
	var req ComputeDailyStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	date, _ := generic.ParseDate(req.Date)
	in := attendance.DayInput{Date: date}

	if req.Plan != nil {
		pj := *req.Plan
		if pj.Date == "" {
			pj.Date = req.Date
		}
		plan, err := h.Plans.FromJSON(pj)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid plan", err)
			return
		}
		in.Plan = plan
	}

	events := make([]attendance.Event, 0, len(req.Events))
	for _, er := range req.Events {
		if er.Date == "" {
			er.Date = req.Date
		}
		e, err := eventFromRequest("", er)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid event", err)
			return
		}
		events = append(events, e)
	}
	for _, rr := range req.Requests {
		if rr.Date == "" {
			rr.Date = req.Date
		}
		rr.Status = string(attendance.StatusApproved)
		request, err := requestFromRequest("", rr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request", err)
			return
		}
		in.Requests = append(in.Requests, request)
	}

	punches, err := attendance.PairEvents(events, in.Requests)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid events", err)
		return
	}
	in.Punches = punches

	status, err := attendance.BuildDailyStatus(in)
	if err != nil {
		h.writeFailure(w, r, "Failed to compute daily status", err)
		return
	}
	writeJSON(w, http.StatusOK, toDailyStatusDTO(status))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// RunSnapshots runs the snapshot job synchronously and returns its record.
func (h *Handler) RunSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.Scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "Snapshot scheduler not configured", nil)
		return
	}
	run, err := h.Scheduler.RunNow(r.Context())
	if err != nil {
		h.writeFailure(w, r, "Snapshot run failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotRunDTO(run))
}

// ListSnapshotRuns returns the most recent snapshot runs.
func (h *Handler) ListSnapshotRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListSnapshotRuns(r.Context(), 50)
	if err != nil {
		h.writeFailure(w, r, "Failed to list snapshot runs", err)
		return
	}
	dtos := make([]SnapshotRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toSnapshotRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// INPUT CONVERSION
// =============================================================================

func eventFromRequest(id generic.EmployeeID, req CreateEventRequest) (attendance.Event, error) {
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		return attendance.Event{}, err
	}
	e := attendance.Event{EmployeeID: id, Date: date}
	if e.Arrival, err = optionalClock(req.Arrival); err != nil {
		return attendance.Event{}, err
	}
	if e.Departure, err = optionalClock(req.Departure); err != nil {
		return attendance.Event{}, err
	}
	return e, nil
}

func requestFromRequest(id generic.EmployeeID, req CreateRequestRequest) (attendance.Request, error) {
	category, err := attendance.ParseCategory(req.Category)
	if err != nil {
		return attendance.Request{}, err
	}
	out := attendance.Request{
		EmployeeID: id,
		Category:   category,
		Status:     attendance.RequestStatus(req.Status),
		Traffic:    attendance.TrafficType(req.Traffic),
		Reason:     req.Reason,
	}
	if out.Date, err = generic.ParseDate(req.Date); err != nil {
		return attendance.Request{}, err
	}
	if req.EndDate != "" {
		if out.EndDate, err = generic.ParseDate(req.EndDate); err != nil {
			return attendance.Request{}, err
		}
	}
	if out.Time, err = optionalClock(req.Time); err != nil {
		return attendance.Request{}, err
	}
	if out.ToTime, err = optionalClock(req.ToTime); err != nil {
		return attendance.Request{}, err
	}
	return out, out.Validate()
}

func optionalClock(s string) (*generic.Clock, error) {
	if s == "" {
		return nil, nil
	}
	c, err := generic.ParseClock(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func parseRange(r *http.Request) (generic.DateRange, error) {
	start, err := generic.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		return generic.DateRange{}, errors.Join(generic.ErrInvalidRange, err)
	}
	end, err := generic.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		return generic.DateRange{}, errors.Join(generic.ErrInvalidRange, err)
	}
	return generic.NewDateRange(start, end)
}

// =============================================================================
// HELPERS
// =============================================================================

// employeeID reads {id} and checks the employee exists, writing a 404 if not.
func (h *Handler) employeeID(w http.ResponseWriter, r *http.Request) (generic.EmployeeID, bool) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetEmployee(r.Context(), id); err != nil {
		h.writeFailure(w, r, "Failed to get employee", err)
		return "", false
	}
	return generic.EmployeeID(id), true
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

func (h *Handler) logDayFailures(r *http.Request, id generic.EmployeeID, days []attendance.DayResult) {
	for _, d := range days {
		if d.Err != nil {
			h.Log.Warn("day failed",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("employee_id", string(id)),
				zap.Stringer("date", d.Date),
				zap.Error(d.Err))
		}
	}
}

// writeFailure maps a domain error to its HTTP status. Unexpected errors
// are logged.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case sqlite.IsConstraintError(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.Log.Error(message,
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
