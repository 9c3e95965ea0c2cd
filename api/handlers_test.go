package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memstore "github.com/realcore/vacation-hub/vacation/store"
)

// newTestRouter wires the full router over an in-memory store loaded with the
// demo scenario: Max (1) and Anna (2) report to Thomas (3, manager), Lisa (4)
// and Thomas report to Klaus (5, admin). v1 and v2 are pending, v3 approved.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memstore.NewMemory()
	require.NoError(t, SeedDemo(context.Background(), store))
	return NewRouter(NewHandler(store, nil))
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

// =============================================================================
// PEOPLE
// =============================================================================

func TestListPeople(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var people []PersonDTO
	decodeInto(t, rec, &people)
	assert.Len(t, people, 5)
}

func TestGetPerson_DerivedRemaining(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/users/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var p PersonDTO
	decodeInto(t, rec, &p)
	assert.Equal(t, "Max Mustermann", p.Name)
	assert.Equal(t, 30.0, p.TotalDays)
	assert.Equal(t, 8.0, p.UsedDays)
	assert.Equal(t, 22.0, p.RemainingDays)
}

func TestGetPerson_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/users/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePerson(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/users", CreatePersonRequest{
		ActorID: "5", Name: "Nina Neu", Email: "nina.neu@realcore.de",
		Role: "employee", Department: "Produktion", ManagerID: "3",
		TotalDays: 25,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var p PersonDTO
	decodeInto(t, rec, &p)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 25.0, p.TotalDays)
	assert.Equal(t, 25.0, p.RemainingDays)
}

func TestCreatePerson_NonAdmin_Forbidden(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/users", CreatePersonRequest{
		ActorID: "1", Name: "Eve", Email: "eve@realcore.de",
		Role: "employee", Department: "Produktion",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreatePerson_InvalidBody(t *testing.T) {
	router := newTestRouter(t)

	// Missing required fields fail validation before any domain call.
	rec := do(t, router, http.MethodPost, "/api/users", map[string]string{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePerson_AllowanceBelowUsed(t *testing.T) {
	// Max has used 8 days; cutting the allowance to 5 is refused.
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPut, "/api/users/1", UpdatePersonRequest{
		ActorID: "5", Name: "Max Mustermann", Email: "max.mustermann@realcore.de",
		Role: "employee", Department: "Produktion", ManagerID: "3",
		TotalDays: 5,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	decodeInto(t, rec, &resp)
	assert.Equal(t, "allowance_below_used", resp.Code)
}

func TestDeletePerson(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodDelete, "/api/users/1?actor=5", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/users/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePerson_Self_Forbidden(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodDelete, "/api/users/5?actor=5", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/users/5", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "refused delete leaves the account intact")
}

func TestDeletePerson_MissingActor(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodDelete, "/api/users/1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// BALANCE & CALENDAR
// =============================================================================

func TestGetBalance(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/users/1/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var b BalanceDTO
	decodeInto(t, rec, &b)
	assert.Equal(t, 30.0, b.Total)
	assert.Equal(t, 8.0, b.Used)
	assert.Equal(t, 22.0, b.Remaining)
}

func TestGetCalendar_ApprovedDaysOnly(t *testing.T) {
	// Lisa's approved request covers Tue 2026-01-20 .. Thu 2026-01-22.
	// Max's pending request must not show up on anyone's calendar.
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/users/4/calendar?year=2026&month=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cal CalendarDTO
	decodeInto(t, rec, &cal)
	assert.Equal(t, []string{"2026-01-20", "2026-01-21", "2026-01-22"}, cal.Days)

	rec = do(t, router, http.MethodGet, "/api/users/1/calendar?year=2026&month=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &cal)
	assert.Empty(t, cal.Days)
}

func TestGetCalendar_InvalidMonth(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/users/4/calendar?year=2026&month=13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

func TestSubmitRequest(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/users/1/requests", SubmitRequestBody{
		StartDate: "2026-06-01", EndDate: "2026-06-05", Reason: "Sommerurlaub",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var req RequestDTO
	decodeInto(t, rec, &req)
	assert.Equal(t, "pending", req.Status)
	assert.Equal(t, 5.0, req.Days)
	assert.Equal(t, "Max Mustermann", req.PersonName)
}

func TestSubmitRequest_InsufficientBalance(t *testing.T) {
	// Max has 22 days remaining; a 25-business-day span is refused.
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/users/1/requests", SubmitRequestBody{
		StartDate: "2026-06-01", EndDate: "2026-07-03", Reason: "Sabbatical",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	decodeInto(t, rec, &resp)
	assert.Equal(t, "insufficient_balance", resp.Code)
}

func TestSubmitRequest_BadDate(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/users/1/requests", SubmitRequestBody{
		StartDate: "01.06.2026", EndDate: "2026-06-05", Reason: "Urlaub",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPending_ManagerScope(t *testing.T) {
	// Thomas (3) manages Max and Anna: both pending demo requests are his.
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/requests/pending?reviewer=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var requests []RequestDTO
	decodeInto(t, rec, &requests)
	require.Len(t, requests, 2)
	for _, r := range requests {
		assert.Equal(t, "pending", r.Status)
	}
}

func TestListPending_AdminScope(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/requests/pending?reviewer=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var requests []RequestDTO
	decodeInto(t, rec, &requests)
	assert.Len(t, requests, 2)
}

func TestListPending_Employee_Conflict(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/requests/pending?reviewer=1", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	decodeInto(t, rec, &resp)
	assert.Equal(t, "no_review_scope", resp.Code)
}

func TestListPending_MissingReviewer(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/requests/pending", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApproveRequest_DebitsBalance(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/requests/v1/approve", ReviewRequestBody{
		ReviewerID: "3", Comment: "genehmigt",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var req RequestDTO
	decodeInto(t, rec, &req)
	assert.Equal(t, "approved", req.Status)
	assert.Equal(t, "Thomas Weber", req.ReviewerName)
	assert.NotEmpty(t, req.ReviewedAt)

	// Max's used days went from 8 to 13.
	rec = do(t, router, http.MethodGet, "/api/users/1/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var b BalanceDTO
	decodeInto(t, rec, &b)
	assert.Equal(t, 13.0, b.Used)
	assert.Equal(t, 17.0, b.Remaining)

	// The debit shows up in the audit ledger.
	rec = do(t, router, http.MethodGet, "/api/users/1/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []LedgerEntryDTO
	decodeInto(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, -5.0, entries[0].Delta)
	assert.Equal(t, "v1", entries[0].RequestID)
}

func TestApproveRequest_Terminal_Conflict(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/requests/v1/approve", ReviewRequestBody{ReviewerID: "3"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/requests/v1/approve", ReviewRequestBody{ReviewerID: "3"})
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	decodeInto(t, rec, &resp)
	assert.Equal(t, "not_pending", resp.Code)
}

func TestApproveRequest_OutOfScope_Conflict(t *testing.T) {
	// Lisa's manager is Klaus; Thomas has no scope over request v3's person.
	// v2 belongs to Anna, managed by Thomas - an employee reviewer or an
	// unrelated manager must be refused.
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/requests/v2/approve", ReviewRequestBody{ReviewerID: "1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRejectRequest_NoBalanceChange(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/requests/v2/reject", ReviewRequestBody{
		ReviewerID: "3", Comment: "Personalengpass",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var req RequestDTO
	decodeInto(t, rec, &req)
	assert.Equal(t, "rejected", req.Status)

	// Anna's balance is untouched.
	rec = do(t, router, http.MethodGet, "/api/users/2/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var b BalanceDTO
	decodeInto(t, rec, &b)
	assert.Equal(t, 12.0, b.Used)
}

func TestReview_UnknownRequest_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/requests/nope/approve", ReviewRequestBody{ReviewerID: "5"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOwnRequests(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/users/1/requests", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var requests []RequestDTO
	decodeInto(t, rec, &requests)
	require.Len(t, requests, 1)
	assert.Equal(t, "v1", requests[0].ID)
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

func TestCreateDepartment_Duplicate_Conflict(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/departments", CreateDepartmentRequest{
		ActorID: "5", Name: "Produktion",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	decodeInto(t, rec, &resp)
	assert.Equal(t, "duplicate_department", resp.Code)
}

func TestCreateDepartment(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/departments", CreateDepartmentRequest{
		ActorID: "5", Name: "Logistik", ManagerID: "3",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/departments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var departments []DepartmentDTO
	decodeInto(t, rec, &departments)
	assert.Len(t, departments, 5)
}

// =============================================================================
// SETTINGS & STATS
// =============================================================================

func TestSettings_RoundTrip(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var settings SettingsDTO
	decodeInto(t, rec, &settings)
	assert.Equal(t, "hr@realcore.de", settings.ContactEmail)
	assert.Equal(t, 30.0, settings.DefaultVacationDays)

	rec = do(t, router, http.MethodPut, "/api/settings", UpdateSettingsRequest{
		ActorID: "5", CompanyName: "RealCore GmbH",
		ContactEmail: "personal@realcore.de", DefaultVacationDays: 28,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &settings)
	assert.Equal(t, "RealCore GmbH", settings.CompanyName)
	assert.Equal(t, 28.0, settings.DefaultVacationDays)
}

func TestUpdateSettings_NonAdmin_Forbidden(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPut, "/api/settings", UpdateSettingsRequest{
		ActorID: "1", CompanyName: "X", ContactEmail: "x@x.de", DefaultVacationDays: 30,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetStats_Employee(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/stats?user=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats StatsDTO
	decodeInto(t, rec, &stats)
	assert.Equal(t, 22.0, stats.Balance.Remaining)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 0, stats.Approved)
}

func TestGetStats_Manager_ScopedCounts(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/stats?user=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats StatsDTO
	decodeInto(t, rec, &stats)
	assert.Equal(t, 2, stats.Pending, "both direct reports have pending requests")
}

func TestGetStats_CacheInvalidatedOnMutation(t *testing.T) {
	// A cached stats response must not survive an approval.
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/stats?user=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var before StatsDTO
	decodeInto(t, rec, &before)
	assert.Equal(t, 1, before.Pending)

	rec = do(t, router, http.MethodPost, "/api/requests/v1/approve", ReviewRequestBody{ReviewerID: "3"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/stats?user=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var after StatsDTO
	decodeInto(t, rec, &after)
	assert.Equal(t, 0, after.Pending)
	assert.Equal(t, 1, after.Approved)
	assert.Equal(t, 13.0, after.Balance.Used)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios_Reset(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var people []PersonDTO
	decodeInto(t, rec, &people)
	assert.Empty(t, people)

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &people)
	assert.Len(t, people, 5)
}
