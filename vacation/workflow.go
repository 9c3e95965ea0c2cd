/*
workflow.go - Leave request lifecycle

PURPOSE:
  State machine governing a leave request from submission to terminal
  disposition, plus the ledger debit on approval.

STATES:
  Pending → Approved   (terminal)
  Pending → Rejected   (terminal)

  No transition out of a terminal state. No cancellation or withdrawal.

SUBMISSION:
  Validation, in order: both dates and the reason present; the computed
  business-day span is positive; the span fits the remaining balance at
  submission time. Any failure refuses the operation - no request is
  created and no state changes.

REVIEW:
  A review requires a Pending request and a reviewer whose scope contains
  the requester. Approval re-validates the balance and debits the ledger
  atomically with the status transition (the original application only
  validated at submission, which could over-draw after intervening
  approvals; see DESIGN.md).

REVIEWER SCOPE:
  Admin   → every person in the system
  Manager → exactly their direct reports (non-transitive)
  Employee → no scope; asking for one is a usage error

  Scope is resolved once per review/list call by resolveScope, keyed on
  role, instead of role-conditioned branching at every read path.

CONCURRENCY:
  Submit and review each run as one atomic unit. A mutex serializes writers
  (the workload is low write volume, a single serialization point suffices)
  and review+debit additionally runs inside a store transaction so no
  partial application is visible to a concurrent reader.
*/
package vacation

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Workflow orchestrates the request lifecycle. Construct one per process
// with NewWorkflow and share it; there is no ambient singleton.
type Workflow struct {
	store Store

	mu sync.Mutex

	// Injection points for tests.
	newID func() string
	today func() Date
}

func NewWorkflow(store Store) *Workflow {
	return &Workflow{
		store: store,
		newID: uuid.NewString,
		today: Today,
	}
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submit validates and creates a new leave request in Pending status.
// The day count is computed here and never mutated afterward.
func (w *Workflow) Submit(ctx context.Context, personID string, start, end Date, reason string) (*LeaveRequest, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if start.IsZero() {
		return nil, missingField("start_date")
	}
	if end.IsZero() {
		return nil, missingField("end_date")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, missingField("reason")
	}

	person, err := w.store.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	days := BusinessDays(start, end)
	if days <= 0 {
		return nil, &ValidationError{
			Code:    "empty_span",
			Message: "date range contains no business days",
			err:     ErrEmptySpan,
		}
	}

	requested := decimal.NewFromInt(int64(days))
	if requested.GreaterThan(person.Remaining()) {
		return nil, &InsufficientBalanceError{
			PersonID:  personID,
			Requested: requested,
			Remaining: person.Remaining(),
		}
	}

	req := LeaveRequest{
		ID:               w.newID(),
		PersonID:         person.ID,
		PersonName:       person.Name,
		PersonDepartment: person.Department,
		StartDate:        start,
		EndDate:          end,
		Days:             requested,
		Reason:           reason,
		Status:           StatusPending,
		CreatedAt:        w.today(),
	}

	if err := w.store.SaveRequest(ctx, req); err != nil {
		return nil, err
	}
	return &req, nil
}

// =============================================================================
// REVIEW
// =============================================================================

// Review transitions a pending request to Approved or Rejected. Approval
// debits the requester's ledger in the same store transaction as the status
// write; rejection changes no balance.
func (w *Workflow) Review(ctx context.Context, requestID, reviewerID string, decision Decision, comment string) (*LeaveRequest, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var result *LeaveRequest
	err := w.store.WithTx(ctx, func(s Store) error {
		req, err := s.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return &WorkflowError{
				RequestID: req.ID,
				Code:      "not_pending",
				Message:   "request already " + string(req.Status),
				err:       ErrNotPending,
			}
		}

		reviewer, err := s.GetPerson(ctx, reviewerID)
		if err != nil {
			return err
		}
		scope, err := resolveScope(ctx, s, reviewer)
		if err != nil {
			return err
		}
		if _, ok := scope[req.PersonID]; !ok {
			return &WorkflowError{
				RequestID: req.ID,
				Code:      "out_of_scope",
				Message:   "requester is outside the reviewer's scope",
				err:       ErrOutOfScope,
			}
		}

		today := w.today()
		req.ReviewerID = reviewer.ID
		req.ReviewerName = reviewer.Name
		req.ReviewedAt = &today
		req.ReviewComment = comment

		switch decision {
		case DecisionApprove:
			// Balance may have shrunk since submission; refuse instead of
			// over-drawing the ledger.
			person, err := s.GetPerson(ctx, req.PersonID)
			if err != nil {
				return err
			}
			if req.Days.GreaterThan(person.Remaining()) {
				return &WorkflowError{
					RequestID: req.ID,
					Code:      "insufficient_balance",
					Message:   "approval would exceed the remaining allowance",
					err:       ErrInsufficientBalance,
				}
			}
			req.Status = StatusApproved
			if err := s.SaveRequest(ctx, *req); err != nil {
				return err
			}
			if err := NewLedger(s).Debit(ctx, req.PersonID, req.Days, req.ID); err != nil {
				return err
			}
		case DecisionReject:
			req.Status = StatusRejected
			if err := s.SaveRequest(ctx, *req); err != nil {
				return err
			}
		default:
			return &WorkflowError{
				RequestID: req.ID,
				Code:      "invalid_decision",
				Message:   "decision must be approve or reject",
				err:       ErrNotPending,
			}
		}

		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// =============================================================================
// LISTING
// =============================================================================

// PendingFor returns the pending requests the reviewer may act on,
// oldest first.
func (w *Workflow) PendingFor(ctx context.Context, reviewerID string) ([]LeaveRequest, error) {
	return w.listScoped(ctx, reviewerID, func(r *LeaveRequest) bool {
		return r.Status == StatusPending
	})
}

// ProcessedFor returns the terminal requests inside the reviewer's scope,
// oldest first.
func (w *Workflow) ProcessedFor(ctx context.Context, reviewerID string) ([]LeaveRequest, error) {
	return w.listScoped(ctx, reviewerID, (*LeaveRequest).Terminal)
}

func (w *Workflow) listScoped(ctx context.Context, reviewerID string, keep func(*LeaveRequest) bool) ([]LeaveRequest, error) {
	reviewer, err := w.store.GetPerson(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	scope, err := resolveScope(ctx, w.store, reviewer)
	if err != nil {
		return nil, err
	}

	all, err := w.store.ListRequests(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]LeaveRequest, 0)
	for i := range all {
		if _, ok := scope[all[i].PersonID]; !ok {
			continue
		}
		if keep(&all[i]) {
			result = append(result, all[i])
		}
	}
	sortRequests(result, false)
	return result, nil
}

// RequestsFor returns a person's own requests, newest first.
func (w *Workflow) RequestsFor(ctx context.Context, personID string) ([]LeaveRequest, error) {
	if _, err := w.store.GetPerson(ctx, personID); err != nil {
		return nil, err
	}
	all, err := w.store.ListRequests(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]LeaveRequest, 0)
	for i := range all {
		if all[i].PersonID == personID {
			result = append(result, all[i])
		}
	}
	sortRequests(result, true)
	return result, nil
}

// Balance is a convenience passthrough to the ledger.
func (w *Workflow) Balance(ctx context.Context, personID string) (*BalanceView, error) {
	return NewLedger(w.store).Balance(ctx, personID)
}

func sortRequests(reqs []LeaveRequest, newestFirst bool) {
	sort.SliceStable(reqs, func(i, j int) bool {
		if !reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			if newestFirst {
				return reqs[j].CreatedAt.Before(reqs[i].CreatedAt)
			}
			return reqs[i].CreatedAt.Before(reqs[j].CreatedAt)
		}
		return reqs[i].ID < reqs[j].ID
	})
}

// =============================================================================
// SCOPE RESOLUTION
// =============================================================================

// resolveScope returns the set of person IDs the reviewer is authorized to
// act on. Computed once per review/list call, keyed on role.
func resolveScope(ctx context.Context, s Store, reviewer *Person) (map[string]struct{}, error) {
	if !reviewer.Role.CanReview() {
		return nil, &WorkflowError{
			Code:    "no_review_scope",
			Message: "employees have no review scope",
			err:     ErrNoReviewScope,
		}
	}

	people, err := s.ListPeople(ctx)
	if err != nil {
		return nil, err
	}

	scope := make(map[string]struct{}, len(people))
	for _, p := range people {
		switch reviewer.Role {
		case RoleAdmin:
			scope[p.ID] = struct{}{}
		case RoleManager:
			if p.ManagerID == reviewer.ID {
				scope[p.ID] = struct{}{}
			}
		}
	}
	return scope, nil
}
