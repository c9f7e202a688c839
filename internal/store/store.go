// Package store defines the persistence gateway contract the ledger depends
// on. Implementations live under internal/infra; all of them must honor the
// same semantics: List returns records newest-first, Create assigns the id,
// Update and Delete fail with ErrNotFound when the id is absent.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/financeflow/financeflow/internal/domain"
)

// ErrNotFound is returned by Update and Delete when no record has the id.
var ErrNotFound = errors.New("record not found")

// TransactionPatch is a partial update for a transaction. Nil fields are left
// untouched; Date is deliberately absent so edits preserve the original
// timestamp.
type TransactionPatch struct {
	Amount   *decimal.Decimal
	Type     *domain.TransactionType
	Category *string
	Note     *string
}

// DebtPatch is a partial update for a debt. PaidAmount and IsPaid are only set
// by the settlement path and by amount-edit re-clamping.
type DebtPatch struct {
	Person     *string
	Amount     *decimal.Decimal
	Type       *domain.DebtType
	Note       *string
	PaidAmount *decimal.Decimal
	IsPaid     *bool
}

// TransactionStore persists the transactions collection, ordered by date
// descending.
type TransactionStore interface {
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// DebtStore persists the debts collection, ordered by creation time
// descending.
type DebtStore interface {
	ListDebts(ctx context.Context) ([]domain.Debt, error)
	CreateDebt(ctx context.Context, d domain.Debt) (domain.Debt, error)
	UpdateDebt(ctx context.Context, id string, patch DebtPatch) (domain.Debt, error)
	DeleteDebt(ctx context.Context, id string) error
}

// PreferenceStore is a durable key-value slot for client preferences such as
// the display currency. Preference returns "" for an unset key.
type PreferenceStore interface {
	Preference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error
}

// Store is the full persistence gateway.
type Store interface {
	TransactionStore
	DebtStore
	PreferenceStore
}
