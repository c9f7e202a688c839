package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DebtType says which direction the debt runs.
type DebtType string

const (
	// OwedByMe means I owe money to the counterparty.
	OwedByMe DebtType = "OWED_BY_ME"
	// OwedToMe means the counterparty owes money to me.
	OwedToMe DebtType = "OWED_TO_ME"
)

// Valid reports whether t is one of the two known variants.
func (t DebtType) Valid() bool {
	return t == OwedByMe || t == OwedToMe
}

// Debt is an outstanding amount between the user and a counterparty, with
// partial-payment support. Invariant: 0 <= PaidAmount <= Amount, and
// IsPaid == (PaidAmount >= Amount) after every settlement.
type Debt struct {
	ID         string          `json:"id"`
	Person     string          `json:"person"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	Type       DebtType        `json:"type"`
	IsPaid     bool            `json:"isPaid"`
	Note       string          `json:"note"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Remaining returns the unpaid balance, never negative.
func (d Debt) Remaining() decimal.Decimal {
	rem := d.Amount.Sub(d.PaidAmount)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// SettlementNote is the note written on a transaction synthesized by a debt
// payment, e.g. "Abono de: Juan".
func SettlementNote(person string) string {
	return fmt.Sprintf("Abono de: %s", person)
}

// SettlementType maps a debt direction to the transaction type its payments
// generate: paying my own debt is an expense, collecting is income.
func SettlementType(t DebtType) TransactionType {
	if t == OwedByMe {
		return TypeExpense
	}
	return TypeIncome
}
