/*
ledger.go - Per-person allowance accounting

PURPOSE:
  The ledger answers "how many days does this person have left?" and applies
  approved consumption. The person record is the source of truth for total
  and used days; remaining is always derived on read (total - used), never
  cached, so it can't diverge.

DEBIT CONTRACT:
  Debit increases used days. The caller (the workflow) guarantees days > 0
  and has already validated sufficiency - the ledger does not re-validate.
  There is no credit or refund operation: a rejection never debited anything,
  so there is nothing to give back.

AUDIT TRAIL:
  Every debit also appends an immutable LedgerEntry with a reference to the
  request that caused it. Entries explain how a balance got to its current
  state; they are never edited.

SEE ALSO:
  - workflow.go: The only caller of Debit
  - store.go: Persistence interface
*/
package vacation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger provides balance reads and the single debit entry point.
// Construct it over a transactional store view to make a debit atomic
// with other writes.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Balance returns the derived total/used/remaining view for a person.
// Reading repeatedly without intervening approvals yields identical results.
func (l *Ledger) Balance(ctx context.Context, personID string) (*BalanceView, error) {
	p, err := l.store.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}
	return &BalanceView{
		PersonID:  p.ID,
		Total:     p.TotalDays,
		Used:      p.UsedDays,
		Remaining: p.Remaining(),
	}, nil
}

// Debit increases a person's used days by the given amount and appends an
// audit entry referencing the request. Caller guarantees days > 0 and prior
// sufficiency validation.
func (l *Ledger) Debit(ctx context.Context, personID string, days decimal.Decimal, requestID string) error {
	p, err := l.store.GetPerson(ctx, personID)
	if err != nil {
		return err
	}

	p.UsedDays = p.UsedDays.Add(days)
	if err := l.store.SavePerson(ctx, *p); err != nil {
		return fmt.Errorf("debit %s days for %s: %w", days, personID, err)
	}

	entry := LedgerEntry{
		ID:        uuid.NewString(),
		PersonID:  personID,
		Delta:     days.Neg(), // consumption
		RequestID: requestID,
		Reason:    "approved vacation request",
		CreatedAt: time.Now().UTC(),
	}
	if err := l.store.AppendEntry(ctx, entry); err != nil {
		return fmt.Errorf("append ledger entry for %s: %w", personID, err)
	}
	return nil
}

// History returns the audit entries for a person, oldest first.
func (l *Ledger) History(ctx context.Context, personID string) ([]LedgerEntry, error) {
	return l.store.EntriesFor(ctx, personID)
}
