/*
Package sqlite provides the SQLite-backed implementation of vacation.Store.

PURPOSE:
  Persists people, departments, leave requests, ledger entries and settings
  in SQLite. The same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

APPEND-ONLY LEDGER:
  The ledger_entries table is append-only: there are no UPDATE or DELETE
  statements against it anywhere in this package (Reset excepted).

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

TRANSACTIONS:
  WithTx wraps fn in a database transaction. Review+debit runs through this
  so a status write and its ledger debit commit together or not at all.

USAGE:
  store, err := sqlite.New("./data/vacation.db")   // or ":memory:"
  if err != nil { ... }
  defer store.Close()

SEE ALSO:
  - vacation/store.go: Interface definition
  - vacation/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/realcore/vacation-hub/vacation"
)

// Store implements vacation.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a SQLite store at dbPath. Use ":memory:" for an in-memory
// database. The schema is migrated on open.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
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

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		department TEXT NOT NULL,
		manager_id TEXT NOT NULL DEFAULT '',
		total_days TEXT NOT NULL,
		used_days TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_people_manager ON people(manager_id);

	CREATE TABLE IF NOT EXISTS departments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		manager_id TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL,
		person_name TEXT NOT NULL,
		person_department TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days TEXT NOT NULL,
		reason TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		reviewer_id TEXT NOT NULL DEFAULT '',
		reviewer_name TEXT NOT NULL DEFAULT '',
		reviewed_at TEXT,
		review_comment TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_requests_person ON requests(person_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);

	-- Append-only ledger
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL,
		delta TEXT NOT NULL,
		request_id TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_person ON ledger_entries(person_id);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		company_name TEXT NOT NULL,
		contact_email TEXT NOT NULL,
		default_vacation_days TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// queryer is satisfied by both *sql.DB and *sql.Tx so every data access
// helper works inside and outside a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// PEOPLE
// =============================================================================

func (s *Store) SavePerson(ctx context.Context, p vacation.Person) error {
	return savePerson(ctx, s.db, p)
}

func savePerson(ctx context.Context, q queryer, p vacation.Person) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO people (id, name, email, role, department, manager_id, total_days, used_days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			department = excluded.department,
			manager_id = excluded.manager_id,
			total_days = excluded.total_days,
			used_days = excluded.used_days`,
		p.ID, p.Name, p.Email, string(p.Role), p.Department, p.ManagerID,
		p.TotalDays.String(), p.UsedDays.String())
	if err != nil {
		return fmt.Errorf("save person %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) GetPerson(ctx context.Context, id string) (*vacation.Person, error) {
	return getPerson(ctx, s.db, id)
}

func getPerson(ctx context.Context, q queryer, id string) (*vacation.Person, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, email, role, department, manager_id, total_days, used_days
		FROM people WHERE id = ?`, id)
	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, vacation.ErrPersonNotFound
	}
	return p, err
}

func (s *Store) ListPeople(ctx context.Context) ([]vacation.Person, error) {
	return listPeople(ctx, s.db)
}

func listPeople(ctx context.Context, q queryer) ([]vacation.Person, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, email, role, department, manager_id, total_days, used_days
		FROM people ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []vacation.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

func (s *Store) DeletePerson(ctx context.Context, id string) error {
	return deletePerson(ctx, s.db, id)
}

func deletePerson(ctx context.Context, q queryer, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return vacation.ErrPersonNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*vacation.Person, error) {
	var p vacation.Person
	var role, total, used string
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &role, &p.Department, &p.ManagerID, &total, &used); err != nil {
		return nil, err
	}
	p.Role = vacation.Role(role)

	var err error
	if p.TotalDays, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total_days: %w", err)
	}
	if p.UsedDays, err = decimal.NewFromString(used); err != nil {
		return nil, fmt.Errorf("parse used_days: %w", err)
	}
	return &p, nil
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

func (s *Store) SaveDepartment(ctx context.Context, d vacation.Department) error {
	return saveDepartment(ctx, s.db, d)
}

func saveDepartment(ctx context.Context, q queryer, d vacation.Department) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO departments (id, name, manager_id)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			manager_id = excluded.manager_id`,
		d.ID, d.Name, d.ManagerID)
	if err != nil {
		return fmt.Errorf("save department %s: %w", d.ID, err)
	}
	return nil
}

func (s *Store) GetDepartment(ctx context.Context, id string) (*vacation.Department, error) {
	return getDepartment(ctx, s.db, id)
}

func getDepartment(ctx context.Context, q queryer, id string) (*vacation.Department, error) {
	var d vacation.Department
	err := q.QueryRowContext(ctx,
		`SELECT id, name, manager_id FROM departments WHERE id = ?`, id).
		Scan(&d.ID, &d.Name, &d.ManagerID)
	if err == sql.ErrNoRows {
		return nil, vacation.ErrDepartmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]vacation.Department, error) {
	return listDepartments(ctx, s.db)
}

func listDepartments(ctx context.Context, q queryer) ([]vacation.Department, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, manager_id FROM departments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []vacation.Department
	for rows.Next() {
		var d vacation.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.ManagerID); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// =============================================================================
// REQUESTS
// =============================================================================

func (s *Store) SaveRequest(ctx context.Context, r vacation.LeaveRequest) error {
	return saveRequest(ctx, s.db, r)
}

func saveRequest(ctx context.Context, q queryer, r vacation.LeaveRequest) error {
	var reviewedAt any
	if r.ReviewedAt != nil {
		reviewedAt = r.ReviewedAt.String()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO requests (id, person_id, person_name, person_department,
			start_date, end_date, days, reason, status, created_at,
			reviewer_id, reviewer_name, reviewed_at, review_comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			reviewer_id = excluded.reviewer_id,
			reviewer_name = excluded.reviewer_name,
			reviewed_at = excluded.reviewed_at,
			review_comment = excluded.review_comment`,
		r.ID, r.PersonID, r.PersonName, r.PersonDepartment,
		r.StartDate.String(), r.EndDate.String(), r.Days.String(),
		r.Reason, string(r.Status), r.CreatedAt.String(),
		r.ReviewerID, r.ReviewerName, reviewedAt, r.ReviewComment)
	if err != nil {
		return fmt.Errorf("save request %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (*vacation.LeaveRequest, error) {
	return getRequest(ctx, s.db, id)
}

func getRequest(ctx context.Context, q queryer, id string) (*vacation.LeaveRequest, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, person_id, person_name, person_department, start_date,
			end_date, days, reason, status, created_at, reviewer_id,
			reviewer_name, reviewed_at, review_comment
		FROM requests WHERE id = ?`, id)
	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, vacation.ErrRequestNotFound
	}
	return r, err
}

func (s *Store) ListRequests(ctx context.Context) ([]vacation.LeaveRequest, error) {
	return listRequests(ctx, s.db)
}

func listRequests(ctx context.Context, q queryer) ([]vacation.LeaveRequest, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, person_id, person_name, person_department, start_date,
			end_date, days, reason, status, created_at, reviewer_id,
			reviewer_name, reviewed_at, review_comment
		FROM requests ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []vacation.LeaveRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func scanRequest(row rowScanner) (*vacation.LeaveRequest, error) {
	var r vacation.LeaveRequest
	var start, end, days, status, created string
	var reviewedAt sql.NullString
	err := row.Scan(&r.ID, &r.PersonID, &r.PersonName, &r.PersonDepartment,
		&start, &end, &days, &r.Reason, &status, &created,
		&r.ReviewerID, &r.ReviewerName, &reviewedAt, &r.ReviewComment)
	if err != nil {
		return nil, err
	}

	r.Status = vacation.RequestStatus(status)
	if r.StartDate, err = vacation.ParseDate(start); err != nil {
		return nil, err
	}
	if r.EndDate, err = vacation.ParseDate(end); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = vacation.ParseDate(created); err != nil {
		return nil, err
	}
	if r.Days, err = decimal.NewFromString(days); err != nil {
		return nil, fmt.Errorf("parse days: %w", err)
	}
	if reviewedAt.Valid && reviewedAt.String != "" {
		d, err := vacation.ParseDate(reviewedAt.String)
		if err != nil {
			return nil, err
		}
		r.ReviewedAt = &d
	}
	return &r, nil
}

// =============================================================================
// LEDGER ENTRIES - Append-only: no UPDATE, no DELETE
// =============================================================================

func (s *Store) AppendEntry(ctx context.Context, e vacation.LedgerEntry) error {
	return appendEntry(ctx, s.db, e)
}

func appendEntry(ctx context.Context, q queryer, e vacation.LedgerEntry) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, person_id, delta, request_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.PersonID, e.Delta.String(), e.RequestID, e.Reason,
		e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append ledger entry %s: %w", e.ID, err)
	}
	return nil
}

func (s *Store) EntriesFor(ctx context.Context, personID string) ([]vacation.LedgerEntry, error) {
	return entriesFor(ctx, s.db, personID)
}

func entriesFor(ctx context.Context, q queryer, personID string) ([]vacation.LedgerEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, person_id, delta, request_id, reason, created_at
		FROM ledger_entries WHERE person_id = ? ORDER BY created_at, id`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []vacation.LedgerEntry
	for rows.Next() {
		var e vacation.LedgerEntry
		var delta, created string
		if err := rows.Scan(&e.ID, &e.PersonID, &delta, &e.RequestID, &e.Reason, &created); err != nil {
			return nil, err
		}
		if e.Delta, err = decimal.NewFromString(delta); err != nil {
			return nil, fmt.Errorf("parse delta: %w", err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) GetSettings(ctx context.Context) (*vacation.Settings, error) {
	return getSettings(ctx, s.db)
}

func getSettings(ctx context.Context, q queryer) (*vacation.Settings, error) {
	var set vacation.Settings
	var defaultDays string
	err := q.QueryRowContext(ctx,
		`SELECT company_name, contact_email, default_vacation_days FROM settings WHERE id = 1`).
		Scan(&set.CompanyName, &set.ContactEmail, &defaultDays)
	if err == sql.ErrNoRows {
		defaults := vacation.DefaultSettings()
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}
	if set.DefaultVacationDays, err = decimal.NewFromString(defaultDays); err != nil {
		return nil, fmt.Errorf("parse default_vacation_days: %w", err)
	}
	return &set, nil
}

func (s *Store) SaveSettings(ctx context.Context, set vacation.Settings) error {
	return saveSettings(ctx, s.db, set)
}

func saveSettings(ctx context.Context, q queryer, set vacation.Settings) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO settings (id, company_name, contact_email, default_vacation_days)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			company_name = excluded.company_name,
			contact_email = excluded.contact_email,
			default_vacation_days = excluded.default_vacation_days`,
		set.CompanyName, set.ContactEmail, set.DefaultVacationDays.String())
	return err
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn inside a database transaction. All writes through the
// view commit together or roll back together.
func (s *Store) WithTx(ctx context.Context, fn func(vacation.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// Reset drops all state. Dev and demo use only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM people;
		DELETE FROM departments;
		DELETE FROM requests;
		DELETE FROM ledger_entries;
		DELETE FROM settings;`)
	return err
}

// txStore routes every operation through the open transaction.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) SavePerson(ctx context.Context, p vacation.Person) error {
	return savePerson(ctx, ts.tx, p)
}

func (ts *txStore) GetPerson(ctx context.Context, id string) (*vacation.Person, error) {
	return getPerson(ctx, ts.tx, id)
}

func (ts *txStore) ListPeople(ctx context.Context) ([]vacation.Person, error) {
	return listPeople(ctx, ts.tx)
}

func (ts *txStore) DeletePerson(ctx context.Context, id string) error {
	return deletePerson(ctx, ts.tx, id)
}

func (ts *txStore) SaveDepartment(ctx context.Context, d vacation.Department) error {
	return saveDepartment(ctx, ts.tx, d)
}

func (ts *txStore) GetDepartment(ctx context.Context, id string) (*vacation.Department, error) {
	return getDepartment(ctx, ts.tx, id)
}

func (ts *txStore) ListDepartments(ctx context.Context) ([]vacation.Department, error) {
	return listDepartments(ctx, ts.tx)
}

func (ts *txStore) SaveRequest(ctx context.Context, r vacation.LeaveRequest) error {
	return saveRequest(ctx, ts.tx, r)
}

func (ts *txStore) GetRequest(ctx context.Context, id string) (*vacation.LeaveRequest, error) {
	return getRequest(ctx, ts.tx, id)
}

func (ts *txStore) ListRequests(ctx context.Context) ([]vacation.LeaveRequest, error) {
	return listRequests(ctx, ts.tx)
}

func (ts *txStore) AppendEntry(ctx context.Context, e vacation.LedgerEntry) error {
	return appendEntry(ctx, ts.tx, e)
}

func (ts *txStore) EntriesFor(ctx context.Context, personID string) ([]vacation.LedgerEntry, error) {
	return entriesFor(ctx, ts.tx, personID)
}

func (ts *txStore) GetSettings(ctx context.Context) (*vacation.Settings, error) {
	return getSettings(ctx, ts.tx)
}

func (ts *txStore) SaveSettings(ctx context.Context, set vacation.Settings) error {
	return saveSettings(ctx, ts.tx, set)
}

// WithTx inside an open transaction is a no-op wrapper.
func (ts *txStore) WithTx(_ context.Context, fn func(vacation.Store) error) error {
	return fn(ts)
}

func (ts *txStore) Reset(ctx context.Context) error {
	_, err := ts.tx.ExecContext(ctx, `
		DELETE FROM people;
		DELETE FROM departments;
		DELETE FROM requests;
		DELETE FROM ledger_entries;
		DELETE FROM settings;`)
	return err
}
