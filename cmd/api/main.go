package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/financeflow/financeflow/internal/api/handlers"
	"github.com/financeflow/financeflow/internal/api/middleware"
	"github.com/financeflow/financeflow/internal/backup"
	"github.com/financeflow/financeflow/internal/config"
	"github.com/financeflow/financeflow/internal/infra/memstore"
	"github.com/financeflow/financeflow/internal/infra/mongostore"
	"github.com/financeflow/financeflow/internal/infra/supabase"
	"github.com/financeflow/financeflow/internal/ledger"
	"github.com/financeflow/financeflow/internal/logger"
	"github.com/financeflow/financeflow/internal/store"
)

func main() {
	log := logger.New("financeflow-api")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	// Select the persistence gateway. Supabase is the hosted default; the
	// session gate and the auth endpoints only exist on that backend.
	var (
		st            store.Store
		authenticator handlers.Authenticator
		sessionCheck  middleware.SessionCheck
	)
	switch cfg.StoreBackend {
	case config.BackendSupabase:
		client := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, log)
		st = client
		authenticator = client
		sessionCheck = func(r *http.Request) bool {
			token := middleware.BearerToken(r)
			return token != "" && token == client.Token()
		}
	case config.BackendMongo:
		mongo, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer mongo.Close(ctx)
		st = mongo
	case config.BackendMemory:
		st = memstore.New()
	}

	svc := ledger.NewService(st, log)

	// The Supabase backend loads at sign-in; the others have no auth step,
	// so hydrate the ledger now.
	if authenticator == nil {
		if err := svc.Load(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to load ledger")
		}
	}

	var backups *backup.Service
	if cfg.BackupBucket != "" {
		backups = backup.NewService(svc, cfg.BackupBucket, log)
	} else {
		log.Warn().Msg("No backup bucket configured - snapshots disabled")
	}

	// Initialize handlers
	transactionsHandler := handlers.NewTransactionsHandler(svc, log)
	debtsHandler := handlers.NewDebtsHandler(svc, log)
	statsHandler := handlers.NewStatsHandler(svc, log)
	preferencesHandler := handlers.NewPreferencesHandler(st, log)
	backupHandler := handlers.NewBackupHandler(backups, log)

	// Create router
	mux := http.NewServeMux()

	// Transactions endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.List(w, r)
		case http.MethodPost:
			transactionsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		switch r.Method {
		case http.MethodPut:
			transactionsHandler.Update(w, r, id)
		case http.MethodDelete:
			transactionsHandler.Delete(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Debts endpoints
	mux.HandleFunc("/api/debts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			debtsHandler.List(w, r)
		case http.MethodPost:
			debtsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/debts/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/debts/")

		// POST /api/debts/{id}/payments settles a payment.
		if id, ok := strings.CutSuffix(rest, "/payments"); ok {
			if id == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Debt ID is required")
				return
			}
			if r.Method != http.MethodPost {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			debtsHandler.Settle(w, r, id)
			return
		}

		if rest == "" || strings.Contains(rest, "/") {
			middleware.WriteError(w, http.StatusBadRequest, "Debt ID is required")
			return
		}
		switch r.Method {
		case http.MethodPut:
			debtsHandler.Update(w, r, rest)
		case http.MethodDelete:
			debtsHandler.Delete(w, r, rest)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Stats endpoint
	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			statsHandler.Get(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Categories endpoint
	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			handlers.Categories(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Preferences endpoints
	mux.HandleFunc("/api/preferences/currency", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			preferencesHandler.GetCurrency(w, r)
		case http.MethodPut:
			preferencesHandler.SetCurrency(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Backup endpoint
	mux.HandleFunc("/api/backup", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			backupHandler.Create(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Auth endpoints (hosted backend only)
	if authenticator != nil {
		authHandler := handlers.NewAuthHandler(authenticator, svc, log)
		mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				authHandler.Login(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})
		mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				authHandler.Logout(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})
	}

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(sessionCheck)(mux),
				),
			),
		),
	)

	// Scheduled snapshots
	var scheduler *cron.Cron
	if backups != nil && cfg.BackupSchedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.BackupSchedule, func() {
			if _, err := backups.Upload(context.Background()); err != nil {
				log.Error().Err(err).Msg("Scheduled backup failed")
			}
		})
		if err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.BackupSchedule).Msg("Invalid backup schedule")
		}
		scheduler.Start()
		log.Info().Str("schedule", cfg.BackupSchedule).Msg("Scheduled backups enabled")
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", string(cfg.StoreBackend)).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
