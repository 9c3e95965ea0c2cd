/*
Package vacation provides the core vacation-day accounting and approval engine.

PURPOSE:
  This package contains the domain model and algorithms for managing employee
  vacation requests: business-day calendar arithmetic, per-person allowance
  accounting (the ledger), the request approval workflow with reviewer scoping,
  and read-only directory lookups.

KEY CONCEPTS IN THIS FILE (types.go):
  - Person: An employee/manager/admin with a vacation allowance
  - Department: A named unit with a designated manager
  - LeaveRequest: A request to consume vacation days, with a pending →
    approved/rejected lifecycle
  - LedgerEntry: An immutable audit record of a balance change
  - BalanceView: The derived total/used/remaining summary

DESIGN PRINCIPLES:
  1. Derived balance: remaining is always total - used, never stored
  2. Precision: decimal.Decimal for day amounts (half-day adjustments stay exact)
  3. Snapshots: requests denormalize requester name/department at submission
     so historical rows stay stable when the person record changes
  4. Auditability: every debit appends a ledger entry; entries are never edited

SEE ALSO:
  - calendar.go: Business-day arithmetic
  - ledger.go: Balance accounting
  - workflow.go: Request lifecycle and reviewer scoping
  - directory.go: Relationship lookups
*/
package vacation

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROLES
// =============================================================================

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// CanReview reports whether the role carries a review scope at all.
// Employees never review; their scope is a usage error, not an empty set.
func (r Role) CanReview() bool {
	return r == RoleManager || r == RoleAdmin
}

// =============================================================================
// PERSON - Source of truth for allowance balances
// =============================================================================

type Person struct {
	ID         string
	Name       string
	Email      string
	Role       Role
	Department string

	// ManagerID is empty when the person has no manager (e.g. top-level admin).
	ManagerID string

	// TotalDays is the annual allowance; UsedDays is consumed allowance.
	// Invariant at rest: 0 <= UsedDays <= TotalDays.
	TotalDays decimal.Decimal
	UsedDays  decimal.Decimal
}

// Remaining returns the derived balance. Never cached, never stored.
func (p *Person) Remaining() decimal.Decimal {
	return p.TotalDays.Sub(p.UsedDays)
}

// =============================================================================
// DEPARTMENT
// =============================================================================

// Department is a named unit with a designated manager. Departments are
// created and edited by admins; there is no delete operation.
type Department struct {
	ID        string
	Name      string
	ManagerID string
}

// =============================================================================
// LEAVE REQUEST - Pending → Approved | Rejected, terminal once reviewed
// =============================================================================

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// LeaveRequest is a request to consume vacation days.
//
// PersonName and PersonDepartment are captured at submission time and never
// re-derived, so lists and history render consistently even if the person
// record is later edited or deleted.
//
// Days is the business-day span of [StartDate, EndDate], computed once at
// submission and immutable afterward.
type LeaveRequest struct {
	ID               string
	PersonID         string
	PersonName       string
	PersonDepartment string

	StartDate Date
	EndDate   Date
	Days      decimal.Decimal
	Reason    string

	Status    RequestStatus
	CreatedAt Date

	// Review fields, set exactly once when the request leaves Pending.
	ReviewerID    string
	ReviewerName  string
	ReviewedAt    *Date
	ReviewComment string
}

// Terminal reports whether the request has reached a final status.
// Terminal requests refuse any further review.
func (r *LeaveRequest) Terminal() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}

// =============================================================================
// LEDGER ENTRY - Immutable audit record of a balance change
// =============================================================================

// LedgerEntry records one change to a person's used allowance.
// Entries are append-only: corrections would be new entries, never edits.
type LedgerEntry struct {
	ID        string
	PersonID  string
	Delta     decimal.Decimal // negative for consumption
	RequestID string
	Reason    string
	CreatedAt time.Time
}

// =============================================================================
// BALANCE VIEW - What the person sees
// =============================================================================

type BalanceView struct {
	PersonID  string
	Total     decimal.Decimal
	Used      decimal.Decimal
	Remaining decimal.Decimal
}

// =============================================================================
// SETTINGS - System-wide configuration (admin settings page)
// =============================================================================

type Settings struct {
	CompanyName         string
	ContactEmail        string
	DefaultVacationDays decimal.Decimal
}

// DefaultSettings returns the configuration a fresh system starts with.
func DefaultSettings() Settings {
	return Settings{
		CompanyName:         "RealCore Industry & Materials",
		ContactEmail:        "hr@realcore.de",
		DefaultVacationDays: decimal.NewFromInt(30),
	}
}
