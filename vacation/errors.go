/*
errors.go - Centralized error types for the vacation engine

PURPOSE:
  All error types in one place for consistency and discoverability.

ERROR CATEGORIES:
  1. Validation errors - a submission refused before any state change
  2. Workflow errors   - a review refused (wrong state, wrong reviewer)
  3. Not-found errors  - referenced records that do not exist

  Every error is a rejected operation: state is left unchanged, nothing
  is retried, nothing is fatal to the process.

USAGE:
  Callers branch on category, not on individual sentinels:

    if vacation.IsValidation(err) { ... 400 ... }
    if vacation.IsWorkflow(err)   { ... 409 ... }
    if vacation.IsNotFound(err)   { ... 404 ... }

SEE ALSO:
  - workflow.go: Produces validation and workflow errors
  - admin.go: Produces admin-operation errors
*/
package vacation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingField is returned when a required submission field is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrEmptySpan is returned when a date range contains no business days.
	ErrEmptySpan = errors.New("no business days in range")

	// ErrInsufficientBalance is returned when a request exceeds the
	// remaining allowance.
	ErrInsufficientBalance = errors.New("insufficient vacation balance")

	// ErrNotPending is returned when a review targets a terminal request.
	ErrNotPending = errors.New("request is not pending")

	// ErrOutOfScope is returned when the requester is outside the
	// reviewer's scope.
	ErrOutOfScope = errors.New("requester outside reviewer scope")

	// ErrNoReviewScope is returned when a review or review-listing is
	// attempted by a role with no scope at all (employees).
	ErrNoReviewScope = errors.New("role has no review scope")

	// ErrPersonNotFound / ErrRequestNotFound / ErrDepartmentNotFound mark
	// missing records.
	ErrPersonNotFound     = errors.New("person not found")
	ErrRequestNotFound    = errors.New("request not found")
	ErrDepartmentNotFound = errors.New("department not found")

	// ErrAdminRequired is returned when an administrative operation is
	// attempted by a non-admin.
	ErrAdminRequired = errors.New("admin role required")

	// ErrSelfDelete is returned when an admin tries to delete themself.
	ErrSelfDelete = errors.New("cannot delete own account")

	// ErrDuplicateDepartment is returned when a department name is taken.
	ErrDuplicateDepartment = errors.New("department name already exists")

	// ErrAllowanceBelowUsed is returned when an allowance edit would push
	// total below already-used days.
	ErrAllowanceBelowUsed = errors.New("total allowance below used days")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError refuses a submission. Code is machine-readable so a
// boundary layer can enumerate which precondition failed.
type ValidationError struct {
	Field   string // offending field, if any
	Code    string // "missing_field", "empty_span", "insufficient_balance"
	Message string
	err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s (%s)", e.Message, e.Field)
	}
	return "validation failed: " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.err }

func missingField(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Code:    "missing_field",
		Message: field + " is required",
		err:     ErrMissingField,
	}
}

// InsufficientBalanceError reports the shortfall on a refused submission.
type InsufficientBalanceError struct {
	PersonID  string
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %s days, %s remaining",
		e.Requested, e.Remaining)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// WorkflowError refuses a review action. The source application silently
// no-ops on these cases; here they are explicit.
type WorkflowError struct {
	RequestID string
	Code      string // "not_pending", "out_of_scope", "no_review_scope", "insufficient_balance"
	Message   string
	err       error
}

func (e *WorkflowError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("workflow error on request %s: %s", e.RequestID, e.Message)
	}
	return "workflow error: " + e.Message
}

func (e *WorkflowError) Unwrap() error { return e.err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation reports whether err refused a submission. Always locally
// recoverable; never retried automatically.
func IsValidation(err error) bool {
	var ve *ValidationError
	var ibe *InsufficientBalanceError
	return errors.As(err, &ve) || errors.As(err, &ibe)
}

// IsWorkflow reports whether err refused a review action.
func IsWorkflow(err error) bool {
	var we *WorkflowError
	return errors.As(err, &we)
}

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPersonNotFound) ||
		errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrDepartmentNotFound)
}

// IsForbidden reports whether err refused an operation for role or
// self-protection reasons.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrAdminRequired) || errors.Is(err, ErrSelfDelete)
}
