package supabase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/financeflow/financeflow/internal/domain"
	"github.com/financeflow/financeflow/internal/store"
)

// transactionRecord is the wire shape of a row in the transactions table.
type transactionRecord struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Type     string          `json:"type"`
	Category string          `json:"category"`
	Note     string          `json:"note"`
	Date     time.Time       `json:"date"`
}

func (r transactionRecord) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:       r.ID,
		Amount:   r.Amount,
		Type:     domain.TransactionType(r.Type),
		Category: r.Category,
		Note:     r.Note,
		Date:     r.Date,
	}
}

// transactionCreatePayload maps a new transaction onto the wire. The id is
// omitted; the store assigns it.
func transactionCreatePayload(tx domain.Transaction) map[string]interface{} {
	return map[string]interface{}{
		"amount":   tx.Amount,
		"type":     string(tx.Type),
		"category": tx.Category,
		"note":     tx.Note,
		"date":     tx.Date,
	}
}

func transactionPatchPayload(p store.TransactionPatch) map[string]interface{} {
	fields := map[string]interface{}{}
	if p.Amount != nil {
		fields["amount"] = *p.Amount
	}
	if p.Type != nil {
		fields["type"] = string(*p.Type)
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.Note != nil {
		fields["note"] = *p.Note
	}
	return fields
}

// debtRecord is the wire shape of a row in the debts table. The semantic
// fields are snake_case on the wire; a missing paid_amount reads as zero and
// a missing is_paid as false, matching what older rows look like.
type debtRecord struct {
	ID         string          `json:"id"`
	Person     string          `json:"person"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	IsPaid     bool            `json:"is_paid"`
	Type       string          `json:"type"`
	Note       string          `json:"note"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (r debtRecord) toDomain() domain.Debt {
	return domain.Debt{
		ID:         r.ID,
		Person:     r.Person,
		Amount:     r.Amount,
		PaidAmount: r.PaidAmount,
		IsPaid:     r.IsPaid,
		Type:       domain.DebtType(r.Type),
		Note:       r.Note,
		CreatedAt:  r.CreatedAt,
	}
}

// debtCreatePayload maps a new debt onto the wire; created_at is left to the
// table default.
func debtCreatePayload(d domain.Debt) map[string]interface{} {
	return map[string]interface{}{
		"person":      d.Person,
		"amount":      d.Amount,
		"paid_amount": d.PaidAmount,
		"is_paid":     d.IsPaid,
		"type":        string(d.Type),
		"note":        d.Note,
	}
}

func debtPatchPayload(p store.DebtPatch) map[string]interface{} {
	fields := map[string]interface{}{}
	if p.Person != nil {
		fields["person"] = *p.Person
	}
	if p.Amount != nil {
		fields["amount"] = *p.Amount
	}
	if p.Type != nil {
		fields["type"] = string(*p.Type)
	}
	if p.Note != nil {
		fields["note"] = *p.Note
	}
	if p.PaidAmount != nil {
		fields["paid_amount"] = *p.PaidAmount
	}
	if p.IsPaid != nil {
		fields["is_paid"] = *p.IsPaid
	}
	return fields
}
