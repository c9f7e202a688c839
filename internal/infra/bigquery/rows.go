// Package bigquery exports ledger data to BigQuery for analysis. The hosted
// gateway remains the source of truth; these tables are an append-only sink.
package bigquery

import (
	"math/big"
	"time"
)

const (
	transactionsTable = "transactions"
	debtsTable        = "debts"
)

// TransactionRow is the export schema for one transaction.
type TransactionRow struct {
	TransactionID string    `bigquery:"transaction_id"` // REQUIRED
	Amount        *big.Rat  `bigquery:"amount"`         // REQUIRED NUMERIC
	Type          string    `bigquery:"type"`           // INCOME | EXPENSE
	Category      string    `bigquery:"category"`
	Note          string    `bigquery:"note"`
	Date          time.Time `bigquery:"date"`        // REQUIRED TIMESTAMP
	ExportedTS    time.Time `bigquery:"exported_ts"` // REQUIRED TIMESTAMP
}

// DebtRow is the export schema for one debt.
type DebtRow struct {
	DebtID     string    `bigquery:"debt_id"` // REQUIRED
	Person     string    `bigquery:"person"`
	Amount     *big.Rat  `bigquery:"amount"`      // REQUIRED NUMERIC
	PaidAmount *big.Rat  `bigquery:"paid_amount"` // REQUIRED NUMERIC
	Type       string    `bigquery:"type"`        // OWED_BY_ME | OWED_TO_ME
	IsPaid     bool      `bigquery:"is_paid"`
	Note       string    `bigquery:"note"`
	CreatedAt  time.Time `bigquery:"created_at"`
	ExportedTS time.Time `bigquery:"exported_ts"` // REQUIRED TIMESTAMP
}
