package domain

import "github.com/shopspring/decimal"

// FinancialStats is the derived view over the current collections. It is never
// persisted; callers recompute it in full whenever either collection changes.
type FinancialStats struct {
	TotalBalance       decimal.Decimal `json:"totalBalance"`
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	TotalExpenses      decimal.Decimal `json:"totalExpenses"`
	TotalDebtToPay     decimal.Decimal `json:"totalDebtToPay"`
	TotalDebtToReceive decimal.Decimal `json:"totalDebtToReceive"`
}

// ComputeStats derives aggregate figures from the given collections. Paid debts
// contribute nothing to either debt total.
func ComputeStats(transactions []Transaction, debts []Debt) FinancialStats {
	var stats FinancialStats

	for _, tx := range transactions {
		switch tx.Type {
		case TypeIncome:
			stats.TotalIncome = stats.TotalIncome.Add(tx.Amount)
		case TypeExpense:
			stats.TotalExpenses = stats.TotalExpenses.Add(tx.Amount)
		}
	}
	stats.TotalBalance = stats.TotalIncome.Sub(stats.TotalExpenses)

	for _, d := range debts {
		if d.IsPaid {
			continue
		}
		switch d.Type {
		case OwedByMe:
			stats.TotalDebtToPay = stats.TotalDebtToPay.Add(d.Remaining())
		case OwedToMe:
			stats.TotalDebtToReceive = stats.TotalDebtToReceive.Add(d.Remaining())
		}
	}

	return stats
}
