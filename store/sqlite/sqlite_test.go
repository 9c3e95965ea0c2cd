package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realcore/vacation-hub/vacation"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func days(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// =============================================================================
// PEOPLE
// =============================================================================

func TestSQLite_PersonRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := vacation.Person{
		ID: "p1", Name: "Max Mustermann", Email: "max@realcore.de",
		Role: vacation.RoleEmployee, Department: "Produktion", ManagerID: "m1",
		TotalDays: days(30), UsedDays: decimal.NewFromFloat(8.5),
	}
	require.NoError(t, s.SavePerson(ctx, p))

	got, err := s.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Email, got.Email)
	assert.Equal(t, p.Role, got.Role)
	assert.Equal(t, p.ManagerID, got.ManagerID)
	assert.True(t, p.TotalDays.Equal(got.TotalDays))
	assert.True(t, p.UsedDays.Equal(got.UsedDays), "fractional days survive the round trip")
}

func TestSQLite_SavePerson_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := vacation.Person{ID: "p1", Name: "Before", TotalDays: days(30), UsedDays: days(0), Role: vacation.RoleEmployee}
	require.NoError(t, s.SavePerson(ctx, p))

	p.Name = "After"
	p.UsedDays = days(5)
	require.NoError(t, s.SavePerson(ctx, p))

	got, err := s.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)
	assert.True(t, days(5).Equal(got.UsedDays))

	people, err := s.ListPeople(ctx)
	require.NoError(t, err)
	assert.Len(t, people, 1, "upsert must not create a second row")
}

func TestSQLite_GetPerson_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetPerson(context.Background(), "nope")
	assert.ErrorIs(t, err, vacation.ErrPersonNotFound)
}

func TestSQLite_DeletePerson(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePerson(ctx, vacation.Person{
		ID: "p1", Name: "X", TotalDays: days(30), UsedDays: days(0),
	}))
	require.NoError(t, s.DeletePerson(ctx, "p1"))

	_, err := s.GetPerson(ctx, "p1")
	assert.ErrorIs(t, err, vacation.ErrPersonNotFound)

	assert.ErrorIs(t, s.DeletePerson(ctx, "p1"), vacation.ErrPersonNotFound)
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

func TestSQLite_DepartmentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := vacation.Department{ID: "d1", Name: "Produktion", ManagerID: "m1"}
	require.NoError(t, s.SaveDepartment(ctx, d))

	got, err := s.GetDepartment(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, d, *got)

	_, err = s.GetDepartment(ctx, "nope")
	assert.ErrorIs(t, err, vacation.ErrDepartmentNotFound)
}

// =============================================================================
// REQUESTS
// =============================================================================

func TestSQLite_RequestRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := vacation.LeaveRequest{
		ID: "r1", PersonID: "p1", PersonName: "Max", PersonDepartment: "Produktion",
		StartDate: vacation.NewDate(2026, time.February, 10),
		EndDate:   vacation.NewDate(2026, time.February, 14),
		Days:      days(4), Reason: "Winterurlaub",
		Status: vacation.StatusPending, CreatedAt: vacation.NewDate(2026, time.January, 10),
	}
	require.NoError(t, s.SaveRequest(ctx, r))

	got, err := s.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, vacation.StatusPending, got.Status)
	assert.Equal(t, "2026-02-10", got.StartDate.String())
	assert.Equal(t, "2026-02-14", got.EndDate.String())
	assert.True(t, days(4).Equal(got.Days))
	assert.Nil(t, got.ReviewedAt, "unreviewed request has no review date")
}

func TestSQLite_SaveRequest_UpsertsReviewFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := vacation.LeaveRequest{
		ID: "r1", PersonID: "p1", PersonName: "Max", PersonDepartment: "Produktion",
		StartDate: vacation.NewDate(2026, time.February, 10),
		EndDate:   vacation.NewDate(2026, time.February, 14),
		Days:      days(4), Reason: "Winterurlaub",
		Status: vacation.StatusPending, CreatedAt: vacation.NewDate(2026, time.January, 10),
	}
	require.NoError(t, s.SaveRequest(ctx, r))

	reviewed := vacation.NewDate(2026, time.January, 15)
	r.Status = vacation.StatusApproved
	r.ReviewerID = "m1"
	r.ReviewerName = "Mara Manager"
	r.ReviewedAt = &reviewed
	r.ReviewComment = "approved"
	require.NoError(t, s.SaveRequest(ctx, r))

	got, err := s.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, vacation.StatusApproved, got.Status)
	assert.Equal(t, "m1", got.ReviewerID)
	assert.Equal(t, "Mara Manager", got.ReviewerName)
	require.NotNil(t, got.ReviewedAt)
	assert.True(t, reviewed.Equal(*got.ReviewedAt))
	assert.Equal(t, "approved", got.ReviewComment)
}

func TestSQLite_GetRequest_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRequest(context.Background(), "nope")
	assert.ErrorIs(t, err, vacation.ErrRequestNotFound)
}

// =============================================================================
// LEDGER ENTRIES
// =============================================================================

func TestSQLite_LedgerEntries_OrderedOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, s.AppendEntry(ctx, vacation.LedgerEntry{
			ID: id, PersonID: "p1", Delta: days(-1), RequestID: "r" + id,
			Reason: "approved vacation request", CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	entries, err := s.EntriesFor(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, "e3", entries[2].ID)
	assert.True(t, days(-1).Equal(entries[0].Delta))
	assert.True(t, base.Equal(entries[0].CreatedAt))
}

func TestSQLite_EntriesFor_FiltersByPerson(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendEntry(ctx, vacation.LedgerEntry{
		ID: "e1", PersonID: "p1", Delta: days(-2), CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, s.AppendEntry(ctx, vacation.LedgerEntry{
		ID: "e2", PersonID: "p2", Delta: days(-3), CreatedAt: time.Now().UTC(),
	}))

	entries, err := s.EntriesFor(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSQLite_Settings_DefaultsWhenUnset(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, vacation.DefaultSettings().CompanyName, got.CompanyName)
	assert.True(t, days(30).Equal(got.DefaultVacationDays))
}

func TestSQLite_Settings_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	set := vacation.Settings{
		CompanyName:         "RealCore GmbH",
		ContactEmail:        "personal@realcore.de",
		DefaultVacationDays: days(28),
	}
	require.NoError(t, s.SaveSettings(ctx, set))

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, set.CompanyName, got.CompanyName)
	assert.Equal(t, set.ContactEmail, got.ContactEmail)
	assert.True(t, set.DefaultVacationDays.Equal(got.DefaultVacationDays))
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestSQLite_WithTx_Commit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx vacation.Store) error {
		if err := tx.SavePerson(ctx, vacation.Person{
			ID: "p1", Name: "Max", TotalDays: days(30), UsedDays: days(5),
		}); err != nil {
			return err
		}
		return tx.AppendEntry(ctx, vacation.LedgerEntry{
			ID: "e1", PersonID: "p1", Delta: days(-5), CreatedAt: time.Now().UTC(),
		})
	})
	require.NoError(t, err)

	p, err := s.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, days(5).Equal(p.UsedDays))

	entries, err := s.EntriesFor(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSQLite_WithTx_RollbackOnError(t *testing.T) {
	// A status write and its ledger debit commit together or not at all.
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePerson(ctx, vacation.Person{
		ID: "p1", Name: "Max", TotalDays: days(30), UsedDays: days(0),
	}))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx vacation.Store) error {
		p, err := tx.GetPerson(ctx, "p1")
		if err != nil {
			return err
		}
		p.UsedDays = days(5)
		if err := tx.SavePerson(ctx, *p); err != nil {
			return err
		}
		if err := tx.AppendEntry(ctx, vacation.LedgerEntry{
			ID: "e1", PersonID: "p1", Delta: days(-5), CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := s.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, days(0).Equal(p.UsedDays), "rolled-back debit must not be visible")

	entries, err := s.EntriesFor(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSQLite_Reset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePerson(ctx, vacation.Person{
		ID: "p1", Name: "Max", TotalDays: days(30), UsedDays: days(0),
	}))
	require.NoError(t, s.SaveDepartment(ctx, vacation.Department{ID: "d1", Name: "Produktion"}))

	require.NoError(t, s.Reset(ctx))

	people, err := s.ListPeople(ctx)
	require.NoError(t, err)
	assert.Empty(t, people)
	departments, err := s.ListDepartments(ctx)
	require.NoError(t, err)
	assert.Empty(t, departments)
}
