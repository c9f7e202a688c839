// Command cli is the operational companion to the API server: it reads the
// same store and prints stats, exports to BigQuery, or uploads a snapshot.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/financeflow/financeflow/internal/backup"
	"github.com/financeflow/financeflow/internal/config"
	"github.com/financeflow/financeflow/internal/domain"
	infraBQ "github.com/financeflow/financeflow/internal/infra/bigquery"
	"github.com/financeflow/financeflow/internal/infra/memstore"
	"github.com/financeflow/financeflow/internal/infra/mongostore"
	"github.com/financeflow/financeflow/internal/infra/supabase"
	"github.com/financeflow/financeflow/internal/ledger"
	"github.com/financeflow/financeflow/internal/logger"
	"github.com/financeflow/financeflow/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "financeflow",
		Short: "Personal finance ledger tooling",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newBackupCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openLedger builds the configured store, signs in if the backend needs it,
// and loads the ledger. The returned closer releases backend connections.
func openLedger(ctx context.Context) (*ledger.Service, store.Store, func(), error) {
	log := logger.New("financeflow-cli")

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	var (
		st     store.Store
		closer = func() {}
	)
	switch cfg.StoreBackend {
	case config.BackendSupabase:
		client := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, log)
		email := os.Getenv("SUPABASE_EMAIL")
		password := os.Getenv("SUPABASE_PASSWORD")
		if email == "" || password == "" {
			return nil, nil, nil, fmt.Errorf("SUPABASE_EMAIL and SUPABASE_PASSWORD must be set")
		}
		if _, err := client.SignIn(ctx, email, password); err != nil {
			return nil, nil, nil, fmt.Errorf("signing in: %w", err)
		}
		st = client
	case config.BackendMongo:
		mongo, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to MongoDB: %w", err)
		}
		st = mongo
		closer = func() { _ = mongo.Close(context.Background()) }
	case config.BackendMemory:
		st = memstore.New()
	}

	svc := ledger.NewService(st, log)
	if err := svc.Load(ctx); err != nil {
		closer()
		return nil, nil, nil, fmt.Errorf("loading ledger: %w", err)
	}
	return svc, st, closer, nil
}

func newStatsCommand() *cobra.Command {
	var currencyFlag string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the current financial statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, st, closer, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer closer()

			currency := domain.DefaultCurrency
			if currencyFlag != "" {
				currency, err = domain.ParseCurrency(currencyFlag)
				if err != nil {
					return err
				}
			} else if raw, err := st.Preference(ctx, domain.CurrencyPreferenceKey); err == nil && raw != "" {
				if parsed, err := domain.ParseCurrency(raw); err == nil {
					currency = parsed
				}
			}

			stats := svc.Stats()
			fmt.Printf("Income:       %s\n", currency.Format(stats.TotalIncome))
			fmt.Printf("Expenses:     %s\n", currency.Format(stats.TotalExpenses))
			fmt.Printf("Balance:      %s\n", currency.Format(stats.TotalBalance))
			fmt.Printf("I owe:        %s\n", currency.Format(stats.TotalDebtToPay))
			fmt.Printf("Owed to me:   %s\n", currency.Format(stats.TotalDebtToReceive))
			return nil
		},
	}

	cmd.Flags().StringVar(&currencyFlag, "currency", "", "display currency (USD, COP or EUR); defaults to the stored preference")

	return cmd
}

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Append the ledger to the BigQuery export tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.BigQueryProject == "" {
				return fmt.Errorf("BIGQUERY_PROJECT must be set")
			}

			svc, _, closer, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer closer()

			exporter, err := infraBQ.NewExporter(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
			if err != nil {
				return err
			}
			defer exporter.Close()

			txs := svc.Transactions()
			debts := svc.Debts()
			if err := exporter.ExportLedger(ctx, txs, debts); err != nil {
				return err
			}

			totalTxs, totalDebts, err := exporter.ExportedCounts(ctx)
			if err != nil {
				return fmt.Errorf("export landed but count check failed: %w", err)
			}
			fmt.Printf("Exported %d transactions and %d debts (tables now hold %d / %d rows)\n",
				len(txs), len(debts), totalTxs, totalDebts)
			return nil
		},
	}
}

func newBackupCommand() *cobra.Command {
	var bucket string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Upload a JSON snapshot of the ledger to GCS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if bucket == "" {
				bucket = cfg.BackupBucket
			}
			if bucket == "" {
				return fmt.Errorf("no bucket: set --bucket or BACKUP_BUCKET")
			}

			svc, _, closer, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer closer()

			log := logger.New("financeflow-cli")
			object, err := backup.NewService(svc, bucket, log).Upload(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Snapshot uploaded to gs://%s/%s\n", bucket, object)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "GCS bucket for the snapshot (defaults to BACKUP_BUCKET)")

	return cmd
}
