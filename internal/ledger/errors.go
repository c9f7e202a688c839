package ledger

import (
	"errors"
	"fmt"

	"github.com/financeflow/financeflow/internal/domain"
)

// ErrInvalidAmount rejects input that is not a positive finite number. It is
// returned before any persistence call is made.
var ErrInvalidAmount = errors.New("amount must be a positive number")

// ErrPersonRequired rejects debts with an empty counterparty name.
var ErrPersonRequired = errors.New("person is required")

// PartialSettlementError reports a settlement whose debt update was persisted
// but whose synthesized transaction was not. The debt carries the state that
// is now durable; the caller must reconcile the missing transaction.
type PartialSettlementError struct {
	Debt domain.Debt
	Err  error
}

func (e *PartialSettlementError) Error() string {
	return fmt.Sprintf("debt %s partially settled: payment recorded on debt but transaction insert failed: %v", e.Debt.ID, e.Err)
}

func (e *PartialSettlementError) Unwrap() error {
	return e.Err
}
