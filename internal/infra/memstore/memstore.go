// Package memstore is an in-memory implementation of the persistence gateway.
// Data is lost on restart; it exists for tests and for running the server
// without a hosted backend.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/financeflow/financeflow/internal/domain"
	"github.com/financeflow/financeflow/internal/store"
)

// Store implements store.Store in memory. Safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	transactions map[string]domain.Transaction
	debts        map[string]domain.Debt
	preferences  map[string]string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		transactions: make(map[string]domain.Transaction),
		debts:        make(map[string]domain.Debt),
		preferences:  make(map[string]string),
	}
}

func (s *Store) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.ID = uuid.New().String()
	s.transactions[tx.ID] = tx
	return tx, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, id string, patch store.TransactionPatch) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok {
		return domain.Transaction{}, store.ErrNotFound
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.Note != nil {
		tx.Note = *patch.Note
	}
	s.transactions[id] = tx
	return tx, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) ListDebts(ctx context.Context) ([]domain.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Debt, 0, len(s.debts))
	for _, d := range s.debts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateDebt(ctx context.Context, d domain.Debt) (domain.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = uuid.New().String()
	s.debts[d.ID] = d
	return d, nil
}

func (s *Store) UpdateDebt(ctx context.Context, id string, patch store.DebtPatch) (domain.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.debts[id]
	if !ok {
		return domain.Debt{}, store.ErrNotFound
	}
	if patch.Person != nil {
		d.Person = *patch.Person
	}
	if patch.Amount != nil {
		d.Amount = *patch.Amount
	}
	if patch.Type != nil {
		d.Type = *patch.Type
	}
	if patch.Note != nil {
		d.Note = *patch.Note
	}
	if patch.PaidAmount != nil {
		d.PaidAmount = *patch.PaidAmount
	}
	if patch.IsPaid != nil {
		d.IsPaid = *patch.IsPaid
	}
	s.debts[id] = d
	return d, nil
}

func (s *Store) DeleteDebt(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.debts[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.debts, id)
	return nil
}

func (s *Store) Preference(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preferences[key], nil
}

func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences[key] = value
	return nil
}

// Ensure Store implements the gateway contract.
var _ store.Store = (*Store)(nil)
