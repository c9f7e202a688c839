package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/financeflow/financeflow/internal/api/middleware"
	"github.com/financeflow/financeflow/internal/ledger"
)

// StatsHandler serves the derived financial statistics.
type StatsHandler struct {
	svc *ledger.Service
	log zerolog.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(svc *ledger.Service, log zerolog.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, log: log}
}

// Get handles GET /api/stats. Stats are recomputed in full from the current
// collections on every call.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.Stats())
}
