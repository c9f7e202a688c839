// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Backend selects the persistence gateway implementation.
type Backend string

const (
	BackendSupabase Backend = "supabase"
	BackendMongo    Backend = "mongo"
	BackendMemory   Backend = "memory"
)

// Config holds all settings for the API server and CLI.
type Config struct {
	Port string

	StoreBackend Backend

	SupabaseURL     string
	SupabaseAnonKey string

	MongoURI string
	MongoDB  string

	// Optional: GCS bucket for ledger snapshots. Empty disables backups.
	BackupBucket string
	// Optional: cron expression for scheduled snapshots, e.g. "0 3 * * *".
	BackupSchedule string

	// Optional: BigQuery destination for analytics exports.
	BigQueryProject string
	BigQueryDataset string
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getenv("PORT", "8080"),
		StoreBackend:    Backend(getenv("STORE_BACKEND", string(BackendSupabase))),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDB:         getenv("MONGODB_DB", "financeflow"),
		BackupBucket:    os.Getenv("BACKUP_BUCKET"),
		BackupSchedule:  os.Getenv("BACKUP_SCHEDULE"),
		BigQueryProject: os.Getenv("BIGQUERY_PROJECT"),
		BigQueryDataset: getenv("BIGQUERY_DATASET", "financeflow"),
	}

	switch cfg.StoreBackend {
	case BackendSupabase:
		if cfg.SupabaseURL == "" {
			return nil, fmt.Errorf("SUPABASE_URL not set")
		}
		if cfg.SupabaseAnonKey == "" {
			return nil, fmt.Errorf("SUPABASE_ANON_KEY not set")
		}
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI not set")
		}
	case BackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
