package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/financeflow/financeflow/internal/domain"
)

// Exporter pushes ledger snapshots into a BigQuery dataset.
type Exporter struct {
	client  *bigquery.Client
	dataset string
}

// NewExporter creates an exporter with its own BigQuery client.
func NewExporter(ctx context.Context, projectID, dataset string) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewExporter: bigquery client: %w", err)
	}
	return &Exporter{client: client, dataset: dataset}, nil
}

// Close releases the BigQuery client.
func (e *Exporter) Close() error {
	return e.client.Close()
}

// ExportLedger appends the given collections to the export tables, stamping
// every row with the same export timestamp.
func (e *Exporter) ExportLedger(ctx context.Context, txs []domain.Transaction, debts []domain.Debt) error {
	now := time.Now().UTC()

	txRows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		txRows = append(txRows, &TransactionRow{
			TransactionID: tx.ID,
			Amount:        tx.Amount.Rat(),
			Type:          string(tx.Type),
			Category:      tx.Category,
			Note:          tx.Note,
			Date:          tx.Date,
			ExportedTS:    now,
		})
	}

	debtRows := make([]*DebtRow, 0, len(debts))
	for _, d := range debts {
		debtRows = append(debtRows, &DebtRow{
			DebtID:     d.ID,
			Person:     d.Person,
			Amount:     d.Amount.Rat(),
			PaidAmount: d.PaidAmount.Rat(),
			Type:       string(d.Type),
			IsPaid:     d.IsPaid,
			Note:       d.Note,
			CreatedAt:  d.CreatedAt,
			ExportedTS: now,
		})
	}

	if len(txRows) > 0 {
		inserter := e.client.Dataset(e.dataset).Table(transactionsTable).Inserter()
		if err := inserter.Put(ctx, txRows); err != nil {
			return fmt.Errorf("ExportLedger: inserting transactions: %w", err)
		}
	}
	if len(debtRows) > 0 {
		inserter := e.client.Dataset(e.dataset).Table(debtsTable).Inserter()
		if err := inserter.Put(ctx, debtRows); err != nil {
			return fmt.Errorf("ExportLedger: inserting debts: %w", err)
		}
	}

	return nil
}

// ExportedCounts reports how many rows each export table holds, as a cheap
// way to verify an export landed.
func (e *Exporter) ExportedCounts(ctx context.Context) (transactions, debts int64, err error) {
	q := e.client.Query(fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %s.%s) AS transactions,
			(SELECT COUNT(*) FROM %s.%s) AS debts
	`, e.dataset, transactionsTable, e.dataset, debtsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("ExportedCounts: query read: %w", err)
	}

	var row struct {
		Transactions int64 `bigquery:"transactions"`
		Debts        int64 `bigquery:"debts"`
	}
	if err := it.Next(&row); err != nil && err != iterator.Done {
		return 0, 0, fmt.Errorf("ExportedCounts: iter next: %w", err)
	}
	return row.Transactions, row.Debts, nil
}
