/*
scenarios.go - Demo seed data

Loads the demo company: five people across three departments, two pending
requests and one already-approved request whose debit is reflected in the
requester's used days. Handy for manual testing and the frontend demo.
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/realcore/vacation-hub/vacation"
)

// LoadScenario resets the store and loads the demo company.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	if err := SeedDemo(r.Context(), h.Store); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.invalidate()
	h.log.Info("demo scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

// ResetData drops all state.
// POST /api/scenarios/reset
func (h *Handler) ResetData(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.invalidate()
	h.log.Info("store reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// SeedDemo resets the store and loads the demo data set.
func SeedDemo(ctx context.Context, store vacation.Store) error {
	if err := store.Reset(ctx); err != nil {
		return err
	}

	days := func(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

	people := []vacation.Person{
		{
			ID: "1", Name: "Max Mustermann", Email: "max.mustermann@realcore.de",
			Role: vacation.RoleEmployee, Department: "Produktion", ManagerID: "3",
			TotalDays: days(30), UsedDays: days(8),
		},
		{
			ID: "2", Name: "Anna Schmidt", Email: "anna.schmidt@realcore.de",
			Role: vacation.RoleEmployee, Department: "Produktion", ManagerID: "3",
			TotalDays: days(30), UsedDays: days(12),
		},
		{
			ID: "3", Name: "Thomas Weber", Email: "thomas.weber@realcore.de",
			Role: vacation.RoleManager, Department: "Produktion", ManagerID: "5",
			TotalDays: days(30), UsedDays: days(5),
		},
		{
			ID: "4", Name: "Lisa Müller", Email: "lisa.mueller@realcore.de",
			Role: vacation.RoleEmployee, Department: "Verwaltung", ManagerID: "5",
			TotalDays: days(28), UsedDays: days(10),
		},
		{
			ID: "5", Name: "Dr. Klaus Fischer", Email: "klaus.fischer@realcore.de",
			Role: vacation.RoleAdmin, Department: "Geschäftsführung", ManagerID: "",
			TotalDays: days(30), UsedDays: days(3),
		},
	}

	departments := []vacation.Department{
		{ID: "d1", Name: "Produktion", ManagerID: "3"},
		{ID: "d2", Name: "Verwaltung", ManagerID: "5"},
		{ID: "d3", Name: "Geschäftsführung", ManagerID: "5"},
		{ID: "d4", Name: "Forschung & Entwicklung", ManagerID: "3"},
	}

	date := vacation.NewDate
	reviewed := date(2026, time.January, 6)

	requests := []vacation.LeaveRequest{
		{
			ID: "v1", PersonID: "1", PersonName: "Max Mustermann", PersonDepartment: "Produktion",
			StartDate: date(2026, time.February, 9), EndDate: date(2026, time.February, 13),
			Days: days(5), Reason: "Winterurlaub",
			Status: vacation.StatusPending, CreatedAt: date(2026, time.January, 10),
		},
		{
			ID: "v2", PersonID: "2", PersonName: "Anna Schmidt", PersonDepartment: "Produktion",
			StartDate: date(2026, time.March, 2), EndDate: date(2026, time.March, 6),
			Days: days(5), Reason: "Familienbesuch",
			Status: vacation.StatusPending, CreatedAt: date(2026, time.January, 12),
		},
		{
			ID: "v3", PersonID: "4", PersonName: "Lisa Müller", PersonDepartment: "Verwaltung",
			StartDate: date(2026, time.January, 20), EndDate: date(2026, time.January, 22),
			Days: days(3), Reason: "Persönliche Angelegenheiten",
			Status: vacation.StatusApproved, CreatedAt: date(2026, time.January, 5),
			ReviewerID: "5", ReviewerName: "Dr. Klaus Fischer", ReviewedAt: &reviewed,
		},
	}

	return store.WithTx(ctx, func(s vacation.Store) error {
		for _, p := range people {
			if err := s.SavePerson(ctx, p); err != nil {
				return err
			}
		}
		for _, d := range departments {
			if err := s.SaveDepartment(ctx, d); err != nil {
				return err
			}
		}
		for _, req := range requests {
			if err := s.SaveRequest(ctx, req); err != nil {
				return err
			}
		}
		return s.SaveSettings(ctx, vacation.DefaultSettings())
	})
}
