/*
store.go - Persistence interface for people, departments, requests and the ledger

PURPOSE:
  Defines the interface between the domain logic and storage. The engine
  never touches a database directly; it is handed a Store. Implementations:

  - vacation/store (Memory):  mutex-guarded maps, snapshot-rollback WithTx.
    Default for tests and for running without a database file.
  - store/sqlite (Store):     SQLite with WAL mode and SQL transactions.

ATOMICITY:
  WithTx executes fn against a transactional view of the store. Either every
  write inside fn lands, or none does. Review+debit runs inside WithTx so a
  debited-but-still-pending request can never be observed.

APPEND-ONLY LEDGER:
  LedgerEntry rows are append-only. The interface deliberately has no way to
  update or delete an entry.
*/
package vacation

import "context"

// Store handles persistence of all engine state.
type Store interface {
	// People. SavePerson inserts or replaces.
	SavePerson(ctx context.Context, p Person) error
	GetPerson(ctx context.Context, id string) (*Person, error)
	ListPeople(ctx context.Context) ([]Person, error)
	DeletePerson(ctx context.Context, id string) error

	// Departments. No delete: departments are created and edited only.
	SaveDepartment(ctx context.Context, d Department) error
	GetDepartment(ctx context.Context, id string) (*Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)

	// Leave requests. SaveRequest inserts or replaces; status transitions
	// are enforced by the workflow, not the store.
	SaveRequest(ctx context.Context, r LeaveRequest) error
	GetRequest(ctx context.Context, id string) (*LeaveRequest, error)
	ListRequests(ctx context.Context) ([]LeaveRequest, error)

	// Ledger entries. Append-only: no update, no delete.
	AppendEntry(ctx context.Context, e LedgerEntry) error
	EntriesFor(ctx context.Context, personID string) ([]LedgerEntry, error)

	// System settings (single record).
	GetSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, s Settings) error

	// WithTx executes fn atomically. The Store passed to fn is a
	// transactional view; nesting WithTx inside fn is a no-op wrapper.
	WithTx(ctx context.Context, fn func(Store) error) error

	// Reset drops all state. Used by demo scenario loading and tests.
	Reset(ctx context.Context) error
}
