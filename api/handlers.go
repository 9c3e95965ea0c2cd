/*
handlers.go - HTTP handlers for the vacation management API

PURPOSE:
  Exposes the vacation engine via REST. Handles HTTP request/response, JSON
  serialization and input validation, and delegates everything else to the
  domain packages.

ERROR HANDLING:
  Domain errors map onto HTTP status by category:
  - 400: validation errors (missing field, empty span, insufficient balance)
  - 403: admin-only operations, self-delete
  - 404: unknown person/request/department
  - 409: workflow conflicts (terminal request, out-of-scope reviewer,
         duplicate department name)
  - 500: everything else

CACHING:
  Hot read-only responses (stats, calendar) sit in a short-TTL cache that is
  flushed on every mutation, so readers never see state older than the last
  write.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo seed data
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/realcore/vacation-hub/vacation"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers. Constructed once at
// startup and injected; no ambient singletons.
type Handler struct {
	Store    vacation.Store
	Workflow *vacation.Workflow
	Ledger   *vacation.Ledger
	Admin    *vacation.Admin

	validate *validator.Validate
	cache    *gocache.Cache
	log      *zap.Logger
}

// NewHandler creates a handler over the given store.
func NewHandler(store vacation.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Workflow: vacation.NewWorkflow(store),
		Ledger:   vacation.NewLedger(store),
		Admin:    vacation.NewAdmin(store),
		validate: validator.New(),
		cache:    gocache.New(gocache.NoExpiration, 0),
		log:      logger,
	}
}

// invalidate drops all cached read responses. Called after every mutation.
func (h *Handler) invalidate() {
	h.cache.Flush()
}

// =============================================================================
// PEOPLE
// =============================================================================

// ListPeople returns all people.
// GET /api/users
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.Store.ListPeople(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]PersonDTO, 0, len(people))
	for i := range people {
		dtos = append(dtos, toPersonDTO(&people[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPerson returns one person.
// GET /api/users/{id}
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPerson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonDTO(p))
}

// CreatePerson adds a person. Admin only.
// POST /api/users
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var body CreatePersonRequest
	if !h.decode(w, r, &body) {
		return
	}

	p, err := h.Admin.CreateUser(r.Context(), body.ActorID, vacation.Person{
		Name:       body.Name,
		Email:      body.Email,
		Role:       vacation.Role(body.Role),
		Department: body.Department,
		ManagerID:  body.ManagerID,
		TotalDays:  decimal.NewFromFloat(body.TotalDays),
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.invalidate()
	h.log.Info("person created", zap.String("id", p.ID), zap.String("role", string(p.Role)))
	writeJSON(w, http.StatusCreated, toPersonDTO(p))
}

// UpdatePerson edits a person. Admin only; used days are never edited here.
// PUT /api/users/{id}
func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	var body UpdatePersonRequest
	if !h.decode(w, r, &body) {
		return
	}

	p, err := h.Admin.UpdateUser(r.Context(), body.ActorID, vacation.Person{
		ID:         chi.URLParam(r, "id"),
		Name:       body.Name,
		Email:      body.Email,
		Role:       vacation.Role(body.Role),
		Department: body.Department,
		ManagerID:  body.ManagerID,
		TotalDays:  decimal.NewFromFloat(body.TotalDays),
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.invalidate()
	writeJSON(w, http.StatusOK, toPersonDTO(p))
}

// DeletePerson removes a person. Admin only; self-delete is refused.
// DELETE /api/users/{id}?actor={adminID}
func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	actorID := r.URL.Query().Get("actor")
	if actorID == "" {
		writeError(w, http.StatusBadRequest, "actor query parameter is required", nil)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Admin.DeleteUser(r.Context(), actorID, id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.invalidate()
	h.log.Info("person deleted", zap.String("id", id), zap.String("actor", actorID))
	w.WriteHeader(http.StatusNoContent)
}

// GetBalance returns the derived total/used/remaining view.
// GET /api/users/{id}/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.Ledger.Balance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// GetLedger returns the audit entries for a person, oldest first.
// GET /api/users/{id}/ledger
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetPerson(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	entries, err := h.Ledger.History(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, LedgerEntryDTO{
			ID:        e.ID,
			PersonID:  e.PersonID,
			Delta:     e.Delta.InexactFloat64(),
			RequestID: e.RequestID,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCalendar returns the approved vacation days of a person in one month.
// GET /api/users/{id}/calendar?year=2026&month=2
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return
	}

	cacheKey := r.URL.String()
	if cached, ok := h.cache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	requests, err := h.Workflow.RequestsFor(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	days := []string{}
	for i := range requests {
		if requests[i].Status != vacation.StatusApproved {
			continue
		}
		for _, d := range vacation.VacationDays(requests[i].StartDate, requests[i].EndDate) {
			if d.Year() == year && int(d.Month()) == month {
				days = append(days, d.String())
			}
		}
	}

	dto := CalendarDTO{PersonID: id, Year: year, Month: month, Days: days}
	h.cache.Set(cacheKey, dto, gocache.DefaultExpiration)
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// SubmitRequest submits a vacation request for the person in the URL.
// POST /api/users/{id}/requests
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body SubmitRequestBody
	if !h.decode(w, r, &body) {
		return
	}

	start, err := vacation.ParseDate(body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := vacation.ParseDate(body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date (use YYYY-MM-DD)", err)
		return
	}

	personID := chi.URLParam(r, "id")
	req, err := h.Workflow.Submit(r.Context(), personID, start, end, body.Reason)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.invalidate()
	h.log.Info("request submitted",
		zap.String("request_id", req.ID),
		zap.String("person_id", personID),
		zap.Float64("days", req.Days.InexactFloat64()))
	writeJSON(w, http.StatusCreated, toRequestDTO(req))
}

// ListOwnRequests returns a person's own requests, newest first.
// GET /api/users/{id}/requests
func (h *Handler) ListOwnRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Workflow.RequestsFor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// ListPending returns the pending requests inside the reviewer's scope.
// GET /api/requests/pending?reviewer={id}
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	h.listScoped(w, r, h.Workflow.PendingFor)
}

// ListProcessed returns the terminal requests inside the reviewer's scope.
// GET /api/requests/processed?reviewer={id}
func (h *Handler) ListProcessed(w http.ResponseWriter, r *http.Request) {
	h.listScoped(w, r, h.Workflow.ProcessedFor)
}

func (h *Handler) listScoped(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, reviewerID string) ([]vacation.LeaveRequest, error)) {
	reviewerID := r.URL.Query().Get("reviewer")
	if reviewerID == "" {
		writeError(w, http.StatusBadRequest, "reviewer query parameter is required", nil)
		return
	}
	requests, err := list(r.Context(), reviewerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// ApproveRequest approves a pending request and debits the ledger.
// POST /api/requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, vacation.DecisionApprove)
}

// RejectRequest rejects a pending request. No balance changes.
// POST /api/requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, vacation.DecisionReject)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, decision vacation.Decision) {
	var body ReviewRequestBody
	if !h.decode(w, r, &body) {
		return
	}

	requestID := chi.URLParam(r, "id")
	req, err := h.Workflow.Review(r.Context(), requestID, body.ReviewerID, decision, body.Comment)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.invalidate()
	h.log.Info("request reviewed",
		zap.String("request_id", req.ID),
		zap.String("reviewer_id", body.ReviewerID),
		zap.String("status", string(req.Status)))
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

// ListDepartments returns all departments.
// GET /api/departments
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Store.ListDepartments(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]DepartmentDTO, 0, len(departments))
	for _, d := range departments {
		dtos = append(dtos, DepartmentDTO{ID: d.ID, Name: d.Name, ManagerID: d.ManagerID})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDepartment adds a department. Admin only; names are unique.
// POST /api/departments
func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var body CreateDepartmentRequest
	if !h.decode(w, r, &body) {
		return
	}

	dept, err := h.Admin.CreateDepartment(r.Context(), body.ActorID, body.Name, body.ManagerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.invalidate()
	writeJSON(w, http.StatusCreated, DepartmentDTO{ID: dept.ID, Name: dept.Name, ManagerID: dept.ManagerID})
}

// UpdateDepartment renames a department or reassigns its manager. Admin only.
// PUT /api/departments/{id}
func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var body UpdateDepartmentRequest
	if !h.decode(w, r, &body) {
		return
	}

	dept, err := h.Admin.UpdateDepartment(r.Context(), body.ActorID, vacation.Department{
		ID:        chi.URLParam(r, "id"),
		Name:      body.Name,
		ManagerID: body.ManagerID,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.invalidate()
	writeJSON(w, http.StatusOK, DepartmentDTO{ID: dept.ID, Name: dept.Name, ManagerID: dept.ManagerID})
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings returns the system settings.
// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Admin.Settings(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsDTO{
		CompanyName:         settings.CompanyName,
		ContactEmail:        settings.ContactEmail,
		DefaultVacationDays: settings.DefaultVacationDays.InexactFloat64(),
	})
}

// UpdateSettings replaces the system settings. Admin only.
// PUT /api/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body UpdateSettingsRequest
	if !h.decode(w, r, &body) {
		return
	}

	err := h.Admin.UpdateSettings(r.Context(), body.ActorID, vacation.Settings{
		CompanyName:         body.CompanyName,
		ContactEmail:        body.ContactEmail,
		DefaultVacationDays: decimal.NewFromFloat(body.DefaultVacationDays),
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// STATS
// =============================================================================

// GetStats returns the dashboard numbers for a person: their balance plus
// request counters in their view. Reviewers count scoped requests; employees
// count their own.
// GET /api/stats?user={id}
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	personID := r.URL.Query().Get("user")
	if personID == "" {
		writeError(w, http.StatusBadRequest, "user query parameter is required", nil)
		return
	}

	cacheKey := r.URL.String()
	if cached, ok := h.cache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	ctx := r.Context()
	person, err := h.Store.GetPerson(ctx, personID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	balance, err := h.Ledger.Balance(ctx, personID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	var requests []vacation.LeaveRequest
	if person.Role.CanReview() {
		pending, err := h.Workflow.PendingFor(ctx, personID)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		processed, err := h.Workflow.ProcessedFor(ctx, personID)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		requests = append(pending, processed...)
	} else {
		if requests, err = h.Workflow.RequestsFor(ctx, personID); err != nil {
			h.writeDomainError(w, err)
			return
		}
	}

	stats := StatsDTO{Balance: toBalanceDTO(balance)}
	for i := range requests {
		switch requests[i].Status {
		case vacation.StatusPending:
			stats.Pending++
		case vacation.StatusApproved:
			stats.Approved++
		case vacation.StatusRejected:
			stats.Rejected++
		}
	}

	h.cache.Set(cacheKey, stats, gocache.DefaultExpiration)
	writeJSON(w, http.StatusOK, stats)
}

// =============================================================================
// HELPERS
// =============================================================================

// decode parses and validates a JSON request body. Writes the error response
// itself and returns false when the body is unusable.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "request validation failed", err)
		return false
	}
	return true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case vacation.IsNotFound(err):
		writeErrorWithCode(w, http.StatusNotFound, "not_found", err)
	case vacation.IsForbidden(err):
		writeErrorWithCode(w, http.StatusForbidden, "forbidden", err)
	case vacation.IsValidation(err):
		code := "validation"
		var ve *vacation.ValidationError
		if errors.As(err, &ve) {
			code = ve.Code
		} else if errors.Is(err, vacation.ErrInsufficientBalance) {
			code = "insufficient_balance"
		}
		writeErrorWithCode(w, http.StatusBadRequest, code, err)
	case vacation.IsWorkflow(err):
		code := "workflow"
		var we *vacation.WorkflowError
		if errors.As(err, &we) {
			code = we.Code
		}
		writeErrorWithCode(w, http.StatusConflict, code, err)
	case errors.Is(err, vacation.ErrDuplicateDepartment):
		writeErrorWithCode(w, http.StatusConflict, "duplicate_department", err)
	case errors.Is(err, vacation.ErrAllowanceBelowUsed):
		writeErrorWithCode(w, http.StatusBadRequest, "allowance_below_used", err)
	default:
		h.log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", err)
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

func writeErrorWithCode(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}
