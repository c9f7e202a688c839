// Package backup writes JSON snapshots of the ledger to a GCS bucket, either
// on demand or on a schedule.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/financeflow/financeflow/internal/domain"
	"github.com/financeflow/financeflow/internal/ledger"
)

// Snapshot is one point-in-time copy of both collections plus the derived
// stats at that moment.
type Snapshot struct {
	TakenAt      time.Time             `json:"taken_at"`
	Transactions []domain.Transaction  `json:"transactions"`
	Debts        []domain.Debt         `json:"debts"`
	Stats        domain.FinancialStats `json:"stats"`
}

// Service uploads ledger snapshots to a GCS bucket.
type Service struct {
	svc    *ledger.Service
	bucket string
	log    zerolog.Logger
}

// NewService creates a backup service targeting the given bucket.
func NewService(svc *ledger.Service, bucket string, log zerolog.Logger) *Service {
	return &Service{svc: svc, bucket: bucket, log: log}
}

// Snapshot captures the current in-memory state.
func (s *Service) Snapshot() Snapshot {
	txs := s.svc.Transactions()
	debts := s.svc.Debts()
	return Snapshot{
		TakenAt:      time.Now().UTC(),
		Transactions: txs,
		Debts:        debts,
		Stats:        domain.ComputeStats(txs, debts),
	}
}

// Upload writes a snapshot to the bucket and returns its object name.
func (s *Service) Upload(ctx context.Context) (string, error) {
	snap := s.Snapshot()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("Upload: storage client: %w", err)
	}
	defer client.Close()

	objectName := fmt.Sprintf("snapshots/%s/%s-ledger.json",
		snap.TakenAt.Format("2006/01/02"), uuid.New().String())

	wc := client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = "application/json"

	if err := json.NewEncoder(wc).Encode(snap); err != nil {
		wc.Close()
		return "", fmt.Errorf("Upload: writing snapshot: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("Upload: closing object writer: %w", err)
	}

	s.log.Info().
		Str("object", objectName).
		Int("transactions", len(snap.Transactions)).
		Int("debts", len(snap.Debts)).
		Msg("Ledger snapshot uploaded")

	return objectName, nil
}
