package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is one of the two known variants.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// SettlementCategory is the category assigned to transactions synthesized by a
// debt payment. The label matches what the production UI has always written.
const SettlementCategory = "Pagos/Cobros"

// IncomeCategories and ExpenseCategories are the fixed label sets offered per
// transaction type. Membership is a UI concern and is not enforced on writes.
var (
	IncomeCategories = []string{
		"Salario",
		"Ventas",
		"Inversiones",
		SettlementCategory,
		"Otros",
	}
	ExpenseCategories = []string{
		"Comida",
		"Transporte",
		"Hogar",
		"Servicios",
		"Entretenimiento",
		"Salud",
		SettlementCategory,
		"Otros",
	}
)

// Transaction is one income or expense movement in the ledger. Amount is always
// positive; Type carries the sign. Amounts are dimensionless and interpreted in
// whatever display currency the user selected.
type Transaction struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Type     TransactionType `json:"type"`
	Category string          `json:"category"`
	Note     string          `json:"note"`
	Date     time.Time       `json:"date"`
}
