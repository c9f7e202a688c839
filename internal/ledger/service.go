// Package ledger holds the in-memory collections of transactions and debts,
// derives aggregate statistics, and implements the debt-settlement algorithm.
// All mutations go through the persistence gateway first; memory is only
// updated after the store confirms the write, so a failed call leaves the
// in-memory state untouched.
package ledger

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/financeflow/financeflow/internal/domain"
	"github.com/financeflow/financeflow/internal/store"
)

// Service is the ledger and debt model. It is safe for concurrent use; the
// mutex serializes the read-modify-write sequence of settlements within this
// process.
type Service struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time

	mu           sync.RWMutex
	transactions []domain.Transaction
	debts        []domain.Debt
}

// NewService creates a ledger service backed by the given store.
func NewService(st store.Store, log zerolog.Logger) *Service {
	return &Service{
		store: st,
		log:   log,
		now:   time.Now,
	}
}

// Load fetches both collections from the store, replacing the in-memory state.
// Called once after a successful sign-in.
func (s *Service) Load(ctx context.Context) error {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return err
	}
	debts, err := s.store.ListDebts(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.transactions = txs
	s.debts = debts
	s.mu.Unlock()

	s.log.Info().Int("transactions", len(txs)).Int("debts", len(debts)).Msg("Ledger loaded")
	return nil
}

// Reset clears both in-memory collections. Called on sign-out.
func (s *Service) Reset() {
	s.mu.Lock()
	s.transactions = nil
	s.debts = nil
	s.mu.Unlock()
}

// Transactions returns a copy of the transaction collection, newest first.
func (s *Service) Transactions() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Debts returns a copy of the debt collection, newest first.
func (s *Service) Debts() []domain.Debt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Debt, len(s.debts))
	copy(out, s.debts)
	return out
}

// Stats recomputes the derived statistics from the current collections.
func (s *Service) Stats() domain.FinancialStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ComputeStats(s.transactions, s.debts)
}

// RecordTransaction persists a new transaction dated now and prepends it to
// the collection.
func (s *Service) RecordTransaction(ctx context.Context, amount decimal.Decimal, typ domain.TransactionType, category, note string) (domain.Transaction, error) {
	if !amount.IsPositive() {
		return domain.Transaction{}, ErrInvalidAmount
	}

	created, err := s.store.CreateTransaction(ctx, domain.Transaction{
		Amount:   amount,
		Type:     typ,
		Category: category,
		Note:     note,
		Date:     s.now().UTC(),
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.mu.Lock()
	s.transactions = append([]domain.Transaction{created}, s.transactions...)
	s.mu.Unlock()

	return created, nil
}

// UpdateTransaction replaces the editable fields of an existing transaction.
// The original date and list position are preserved.
func (s *Service) UpdateTransaction(ctx context.Context, id string, amount decimal.Decimal, typ domain.TransactionType, category, note string) (domain.Transaction, error) {
	if !amount.IsPositive() {
		return domain.Transaction{}, ErrInvalidAmount
	}

	updated, err := s.store.UpdateTransaction(ctx, id, store.TransactionPatch{
		Amount:   &amount,
		Type:     &typ,
		Category: &category,
		Note:     &note,
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.mu.Lock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			updated.Date = s.transactions[i].Date
			s.transactions[i] = updated
			break
		}
	}
	s.mu.Unlock()

	return updated, nil
}

// DeleteTransaction removes a transaction. The store call fails with
// store.ErrNotFound when the id is absent and the collection is left as is.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	return nil
}

// RecordDebt creates a debt with nothing paid yet.
func (s *Service) RecordDebt(ctx context.Context, person string, amount decimal.Decimal, typ domain.DebtType, note string) (domain.Debt, error) {
	if strings.TrimSpace(person) == "" {
		return domain.Debt{}, ErrPersonRequired
	}
	if !amount.IsPositive() {
		return domain.Debt{}, ErrInvalidAmount
	}

	created, err := s.store.CreateDebt(ctx, domain.Debt{
		Person:     person,
		Amount:     amount,
		PaidAmount: decimal.Zero,
		Type:       typ,
		IsPaid:     false,
		Note:       note,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return domain.Debt{}, err
	}

	s.mu.Lock()
	s.debts = append([]domain.Debt{created}, s.debts...)
	s.mu.Unlock()

	return created, nil
}

// UpdateDebt edits the non-settlement fields of a debt. Lowering the amount
// below what is already paid clamps PaidAmount to the new amount and marks the
// debt paid, so the settlement invariant survives edits.
func (s *Service) UpdateDebt(ctx context.Context, id string, person string, amount decimal.Decimal, typ domain.DebtType, note string) (domain.Debt, error) {
	if strings.TrimSpace(person) == "" {
		return domain.Debt{}, ErrPersonRequired
	}
	if !amount.IsPositive() {
		return domain.Debt{}, ErrInvalidAmount
	}

	s.mu.RLock()
	current, ok := s.findDebt(id)
	s.mu.RUnlock()
	if !ok {
		return domain.Debt{}, store.ErrNotFound
	}

	patch := store.DebtPatch{
		Person: &person,
		Amount: &amount,
		Type:   &typ,
		Note:   &note,
	}
	if current.PaidAmount.GreaterThan(amount) {
		clamped := amount
		paid := true
		patch.PaidAmount = &clamped
		patch.IsPaid = &paid
	} else {
		isPaid := current.PaidAmount.GreaterThanOrEqual(amount)
		patch.IsPaid = &isPaid
	}

	updated, err := s.store.UpdateDebt(ctx, id, patch)
	if err != nil {
		return domain.Debt{}, err
	}

	s.mu.Lock()
	s.replaceDebt(updated)
	s.mu.Unlock()

	return updated, nil
}

// DeleteDebt removes a debt.
func (s *Service) DeleteDebt(ctx context.Context, id string) error {
	if err := s.store.DeleteDebt(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.debts {
		if s.debts[i].ID == id {
			s.debts = append(s.debts[:i], s.debts[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	return nil
}

// SettleDebtPayment applies a payment against a debt and records the matching
// transaction. The paid amount is clamped at the debt total; any excess is
// discarded. The synthesized transaction always carries the full requested
// payment, matching the behavior the production client has always had.
//
// The debt update and the transaction insert are two separate store calls. If
// the second fails after the first succeeded, a *PartialSettlementError is
// returned carrying the persisted debt state.
func (s *Service) SettleDebtPayment(ctx context.Context, debtID string, payment decimal.Decimal) (domain.Debt, domain.Transaction, error) {
	if !payment.IsPositive() {
		return domain.Debt{}, domain.Transaction{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	debt, ok := s.findDebt(debtID)
	if !ok {
		return domain.Debt{}, domain.Transaction{}, store.ErrNotFound
	}

	newPaid := debt.PaidAmount.Add(payment)
	fullyPaid := newPaid.GreaterThanOrEqual(debt.Amount)
	if fullyPaid {
		newPaid = debt.Amount
	}

	updated, err := s.store.UpdateDebt(ctx, debtID, store.DebtPatch{
		PaidAmount: &newPaid,
		IsPaid:     &fullyPaid,
	})
	if err != nil {
		return domain.Debt{}, domain.Transaction{}, err
	}
	s.replaceDebt(updated)

	tx, err := s.store.CreateTransaction(ctx, domain.Transaction{
		Amount:   payment,
		Type:     domain.SettlementType(debt.Type),
		Category: domain.SettlementCategory,
		Note:     domain.SettlementNote(debt.Person),
		Date:     s.now().UTC(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("debt_id", debtID).Msg("Settlement transaction insert failed after debt update")
		return updated, domain.Transaction{}, &PartialSettlementError{Debt: updated, Err: err}
	}
	s.transactions = append([]domain.Transaction{tx}, s.transactions...)

	return updated, tx, nil
}

// findDebt looks up a debt by id. Callers hold the lock.
func (s *Service) findDebt(id string) (domain.Debt, bool) {
	for _, d := range s.debts {
		if d.ID == id {
			return d, true
		}
	}
	return domain.Debt{}, false
}

// replaceDebt swaps the stored copy of a debt in place, preserving order.
// Callers hold the lock.
func (s *Service) replaceDebt(d domain.Debt) {
	for i := range s.debts {
		if s.debts[i].ID == d.ID {
			s.debts[i] = d
			return
		}
	}
}
