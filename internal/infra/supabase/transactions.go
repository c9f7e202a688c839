package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/financeflow/financeflow/internal/domain"
	"github.com/financeflow/financeflow/internal/store"
)

// Ensure the client satisfies the full gateway contract.
var _ store.Store = (*Client)(nil)

// ListTransactions returns the transactions collection, newest first.
func (c *Client) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	q := url.Values{}
	q.Set("order", "date.desc")

	var records []transactionRecord
	if err := c.rest(ctx, http.MethodGet, "transactions", q, "", nil, &records); err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}

	out := make([]domain.Transaction, 0, len(records))
	for _, r := range records {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// CreateTransaction inserts a transaction and returns the stored record with
// its server-assigned id.
func (c *Client) CreateTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	var records []transactionRecord
	err := c.rest(ctx, http.MethodPost, "transactions", nil, preferReturn, transactionCreatePayload(tx), &records)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("CreateTransaction: %w", err)
	}
	if len(records) == 0 {
		return domain.Transaction{}, fmt.Errorf("CreateTransaction: empty representation")
	}
	return records[0].toDomain(), nil
}

// UpdateTransaction applies a partial update. Fails with store.ErrNotFound
// when no row matches the id.
func (c *Client) UpdateTransaction(ctx context.Context, id string, patch store.TransactionPatch) (domain.Transaction, error) {
	var records []transactionRecord
	err := c.rest(ctx, http.MethodPatch, "transactions", idFilter(id), preferReturn, transactionPatchPayload(patch), &records)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("UpdateTransaction: %w", err)
	}
	if len(records) == 0 {
		return domain.Transaction{}, store.ErrNotFound
	}
	return records[0].toDomain(), nil
}

// DeleteTransaction removes a transaction. Deleting an unknown id is an
// error, not an idempotent success.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	var records []transactionRecord
	err := c.rest(ctx, http.MethodDelete, "transactions", idFilter(id), preferReturn, nil, &records)
	if err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	if len(records) == 0 {
		return store.ErrNotFound
	}
	return nil
}
