package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/financeflow/financeflow/internal/api/middleware"
	"github.com/financeflow/financeflow/internal/backup"
)

// BackupHandler triggers on-demand ledger snapshots. A nil backup service
// means no bucket is configured and the endpoint reports that.
type BackupHandler struct {
	backups *backup.Service
	log     zerolog.Logger
}

// NewBackupHandler creates a new backup handler.
func NewBackupHandler(backups *backup.Service, log zerolog.Logger) *BackupHandler {
	return &BackupHandler{backups: backups, log: log}
}

// Create handles POST /api/backup
func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Backups are not configured")
		return
	}

	object, err := h.backups.Upload(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Backup upload failed")
		middleware.WriteError(w, http.StatusBadGateway, "Backup upload failed")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, map[string]string{"object": object})
}
