package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/financeflow/financeflow/internal/domain"
	"github.com/financeflow/financeflow/internal/store"
)

// ListDebts returns the debts collection, newest first.
func (c *Client) ListDebts(ctx context.Context) ([]domain.Debt, error) {
	q := url.Values{}
	q.Set("order", "created_at.desc")

	var records []debtRecord
	if err := c.rest(ctx, http.MethodGet, "debts", q, "", nil, &records); err != nil {
		return nil, fmt.Errorf("ListDebts: %w", err)
	}

	out := make([]domain.Debt, 0, len(records))
	for _, r := range records {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// CreateDebt inserts a debt and returns the stored record with its
// server-assigned id and created_at.
func (c *Client) CreateDebt(ctx context.Context, d domain.Debt) (domain.Debt, error) {
	var records []debtRecord
	err := c.rest(ctx, http.MethodPost, "debts", nil, preferReturn, debtCreatePayload(d), &records)
	if err != nil {
		return domain.Debt{}, fmt.Errorf("CreateDebt: %w", err)
	}
	if len(records) == 0 {
		return domain.Debt{}, fmt.Errorf("CreateDebt: empty representation")
	}
	return records[0].toDomain(), nil
}

// UpdateDebt applies a partial update. Fails with store.ErrNotFound when no
// row matches the id.
func (c *Client) UpdateDebt(ctx context.Context, id string, patch store.DebtPatch) (domain.Debt, error) {
	var records []debtRecord
	err := c.rest(ctx, http.MethodPatch, "debts", idFilter(id), preferReturn, debtPatchPayload(patch), &records)
	if err != nil {
		return domain.Debt{}, fmt.Errorf("UpdateDebt: %w", err)
	}
	if len(records) == 0 {
		return domain.Debt{}, store.ErrNotFound
	}
	return records[0].toDomain(), nil
}

// DeleteDebt removes a debt. Deleting an unknown id is an error.
func (c *Client) DeleteDebt(ctx context.Context, id string) error {
	var records []debtRecord
	err := c.rest(ctx, http.MethodDelete, "debts", idFilter(id), preferReturn, nil, &records)
	if err != nil {
		return fmt.Errorf("DeleteDebt: %w", err)
	}
	if len(records) == 0 {
		return store.ErrNotFound
	}
	return nil
}
