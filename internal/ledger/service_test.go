package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financeflow/financeflow/internal/domain"
	"github.com/financeflow/financeflow/internal/infra/memstore"
	"github.com/financeflow/financeflow/internal/store"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// flakyStore wraps a real store and fails selected operations, for exercising
// the no-mutation-on-failure and partial-settlement paths.
type flakyStore struct {
	store.Store
	failCreateTransaction bool
	failUpdateDebt        bool
}

var errStoreDown = errors.New("store unavailable")

func (f *flakyStore) CreateTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if f.failCreateTransaction {
		return domain.Transaction{}, errStoreDown
	}
	return f.Store.CreateTransaction(ctx, tx)
}

func (f *flakyStore) UpdateDebt(ctx context.Context, id string, patch store.DebtPatch) (domain.Debt, error) {
	if f.failUpdateDebt {
		return domain.Debt{}, errStoreDown
	}
	return f.Store.UpdateDebt(ctx, id, patch)
}

func newTestService(t *testing.T) (*Service, *flakyStore) {
	t.Helper()
	fs := &flakyStore{Store: memstore.New()}
	svc := NewService(fs, zerolog.Nop())
	require.NoError(t, svc.Load(context.Background()))
	return svc, fs
}

func TestRecordTransaction_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tx, err := svc.RecordTransaction(ctx, dec("200"), domain.TypeIncome, "Salario", "nómina")
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.False(t, tx.Date.IsZero())

	txs := svc.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, tx.ID, txs[0].ID)
	assert.True(t, txs[0].Amount.Equal(dec("200")))
	assert.Equal(t, domain.TypeIncome, txs[0].Type)
	assert.Equal(t, "Salario", txs[0].Category)
	assert.Equal(t, "nómina", txs[0].Note)
}

func TestRecordTransaction_PrependsNewest(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.RecordTransaction(ctx, dec("10"), domain.TypeExpense, "Comida", "")
	require.NoError(t, err)
	second, err := svc.RecordTransaction(ctx, dec("20"), domain.TypeExpense, "Comida", "")
	require.NoError(t, err)

	txs := svc.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, second.ID, txs[0].ID)
	assert.Equal(t, first.ID, txs[1].ID)
}

func TestRecordTransaction_RejectsNonPositive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordTransaction(ctx, dec("0"), domain.TypeExpense, "Comida", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RecordTransaction(ctx, dec("-5"), domain.TypeExpense, "Comida", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Empty(t, svc.Transactions())
}

func TestRecordTransaction_StoreFailureLeavesMemoryUnchanged(t *testing.T) {
	svc, fs := newTestService(t)
	fs.failCreateTransaction = true

	_, err := svc.RecordTransaction(context.Background(), dec("10"), domain.TypeExpense, "Comida", "")
	assert.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, svc.Transactions())
}

func TestUpdateTransaction_PreservesDateAndOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tx, err := svc.RecordTransaction(ctx, dec("10"), domain.TypeExpense, "Comida", "")
	require.NoError(t, err)
	_, err = svc.RecordTransaction(ctx, dec("20"), domain.TypeExpense, "Hogar", "")
	require.NoError(t, err)

	updated, err := svc.UpdateTransaction(ctx, tx.ID, dec("15"), domain.TypeIncome, "Ventas", "corregido")
	require.NoError(t, err)
	assert.True(t, updated.Date.Equal(tx.Date))

	txs := svc.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, tx.ID, txs[1].ID, "edited record keeps its position")
	assert.True(t, txs[1].Amount.Equal(dec("15")))
	assert.Equal(t, domain.TypeIncome, txs[1].Type)
}

func TestDeleteTransaction_UnknownIDFails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordTransaction(ctx, dec("10"), domain.TypeExpense, "Comida", "")
	require.NoError(t, err)

	err = svc.DeleteTransaction(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Len(t, svc.Transactions(), 1)
}

func TestRecordDebt_Defaults(t *testing.T) {
	svc, _ := newTestService(t)

	d, err := svc.RecordDebt(context.Background(), "Juan", dec("100"), domain.OwedByMe, "préstamo")
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.True(t, d.PaidAmount.IsZero())
	assert.False(t, d.IsPaid)
}

func TestRecordDebt_RequiresPerson(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RecordDebt(context.Background(), "", dec("100"), domain.OwedByMe, "")
	assert.ErrorIs(t, err, ErrPersonRequired)
	assert.Empty(t, svc.Debts())
}

func TestSettleDebtPayment_PartialThenFull(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.RecordDebt(ctx, "Juan", dec("100"), domain.OwedByMe, "")
	require.NoError(t, err)

	after, tx, err := svc.SettleDebtPayment(ctx, d.ID, dec("30"))
	require.NoError(t, err)
	assert.True(t, after.PaidAmount.Equal(dec("30")))
	assert.False(t, after.IsPaid)
	assert.Equal(t, domain.TypeExpense, tx.Type)
	assert.Equal(t, domain.SettlementCategory, tx.Category)
	assert.Equal(t, "Abono de: Juan", tx.Note)

	after, _, err = svc.SettleDebtPayment(ctx, d.ID, dec("70"))
	require.NoError(t, err)
	assert.True(t, after.PaidAmount.Equal(dec("100")))
	assert.True(t, after.IsPaid)
}

func TestSettleDebtPayment_OverpaymentClamps(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.RecordDebt(ctx, "Ana", dec("100"), domain.OwedToMe, "")
	require.NoError(t, err)
	_, _, err = svc.SettleDebtPayment(ctx, d.ID, dec("80"))
	require.NoError(t, err)

	after, tx, err := svc.SettleDebtPayment(ctx, d.ID, dec("50"))
	require.NoError(t, err)
	assert.True(t, after.PaidAmount.Equal(dec("100")), "paid clamps at amount, got %s", after.PaidAmount)
	assert.True(t, after.IsPaid)
	// The synthesized transaction keeps the full requested payment even though
	// only 20 was credited to the debt.
	assert.True(t, tx.Amount.Equal(dec("50")))
	assert.Equal(t, domain.TypeIncome, tx.Type)
}

func TestSettleDebtPayment_Monotonic(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.RecordDebt(ctx, "Ana", dec("60"), domain.OwedToMe, "")
	require.NoError(t, err)

	prev := decimal.Zero
	for _, p := range []string{"10", "0.5", "100"} {
		after, _, err := svc.SettleDebtPayment(ctx, d.ID, dec(p))
		require.NoError(t, err)
		assert.True(t, after.PaidAmount.GreaterThanOrEqual(prev))
		assert.True(t, after.PaidAmount.LessThanOrEqual(after.Amount))
		assert.Equal(t, after.PaidAmount.GreaterThanOrEqual(after.Amount), after.IsPaid)
		prev = after.PaidAmount
	}
}

func TestSettleDebtPayment_RejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.RecordDebt(ctx, "Juan", dec("100"), domain.OwedByMe, "")
	require.NoError(t, err)

	_, _, err = svc.SettleDebtPayment(ctx, d.ID, dec("-5"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, _, err = svc.SettleDebtPayment(ctx, d.ID, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	debts := svc.Debts()
	require.Len(t, debts, 1)
	assert.True(t, debts[0].PaidAmount.IsZero())
	assert.Empty(t, svc.Transactions())
}

func TestSettleDebtPayment_UnknownDebt(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.SettleDebtPayment(context.Background(), "missing", dec("10"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSettleDebtPayment_PartialSettlementError(t *testing.T) {
	svc, fs := newTestService(t)
	ctx := context.Background()

	d, err := svc.RecordDebt(ctx, "Juan", dec("100"), domain.OwedByMe, "")
	require.NoError(t, err)

	fs.failCreateTransaction = true
	_, _, err = svc.SettleDebtPayment(ctx, d.ID, dec("40"))

	var pse *PartialSettlementError
	require.ErrorAs(t, err, &pse)
	assert.True(t, pse.Debt.PaidAmount.Equal(dec("40")))

	// The debt update was durable; the transaction never happened.
	debts := svc.Debts()
	require.Len(t, debts, 1)
	assert.True(t, debts[0].PaidAmount.Equal(dec("40")))
	assert.Empty(t, svc.Transactions())
}

func TestSettleDebtPayment_DebtUpdateFailureLeavesStateUnchanged(t *testing.T) {
	svc, fs := newTestService(t)
	ctx := context.Background()

	d, err := svc.RecordDebt(ctx, "Juan", dec("100"), domain.OwedByMe, "")
	require.NoError(t, err)

	fs.failUpdateDebt = true
	_, _, err = svc.SettleDebtPayment(ctx, d.ID, dec("40"))
	assert.ErrorIs(t, err, errStoreDown)

	debts := svc.Debts()
	require.Len(t, debts, 1)
	assert.True(t, debts[0].PaidAmount.IsZero())
	assert.Empty(t, svc.Transactions())
}

func TestUpdateDebt_AmountEditReclamps(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.RecordDebt(ctx, "Juan", dec("100"), domain.OwedByMe, "")
	require.NoError(t, err)
	_, _, err = svc.SettleDebtPayment(ctx, d.ID, dec("80"))
	require.NoError(t, err)

	after, err := svc.UpdateDebt(ctx, d.ID, "Juan", dec("50"), domain.OwedByMe, "")
	require.NoError(t, err)
	assert.True(t, after.PaidAmount.Equal(dec("50")), "paid re-clamped to the new amount")
	assert.True(t, after.IsPaid)
}

func TestUpdateDebt_RaisingAmountReopensDebt(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.RecordDebt(ctx, "Juan", dec("50"), domain.OwedByMe, "")
	require.NoError(t, err)
	_, _, err = svc.SettleDebtPayment(ctx, d.ID, dec("50"))
	require.NoError(t, err)

	after, err := svc.UpdateDebt(ctx, d.ID, "Juan", dec("80"), domain.OwedByMe, "")
	require.NoError(t, err)
	assert.True(t, after.PaidAmount.Equal(dec("50")))
	assert.False(t, after.IsPaid)
}

func TestStats_RecomputedFromCollections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordTransaction(ctx, dec("200"), domain.TypeIncome, "Salario", "")
	require.NoError(t, err)
	_, err = svc.RecordTransaction(ctx, dec("50"), domain.TypeExpense, "Comida", "")
	require.NoError(t, err)
	d, err := svc.RecordDebt(ctx, "Juan", dec("100"), domain.OwedByMe, "")
	require.NoError(t, err)
	_, _, err = svc.SettleDebtPayment(ctx, d.ID, dec("30"))
	require.NoError(t, err)

	stats := svc.Stats()
	assert.True(t, stats.TotalIncome.Equal(dec("200")))
	// Settlement of an OWED_BY_ME debt added a 30 expense.
	assert.True(t, stats.TotalExpenses.Equal(dec("80")))
	assert.True(t, stats.TotalBalance.Equal(dec("120")))
	assert.True(t, stats.TotalDebtToPay.Equal(dec("70")))
}

func TestLoadAndReset(t *testing.T) {
	ms := memstore.New()
	ctx := context.Background()
	_, err := ms.CreateTransaction(ctx, domain.Transaction{Amount: dec("10"), Type: domain.TypeExpense})
	require.NoError(t, err)

	svc := NewService(ms, zerolog.Nop())
	require.NoError(t, svc.Load(ctx))
	assert.Len(t, svc.Transactions(), 1)

	svc.Reset()
	assert.Empty(t, svc.Transactions())
	assert.Empty(t, svc.Debts())
}
