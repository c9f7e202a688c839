// Package handlers implements the HTTP surface over the ledger service.
package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/financeflow/financeflow/internal/api/middleware"
	"github.com/financeflow/financeflow/internal/ledger"
	"github.com/financeflow/financeflow/internal/store"
)

// writeServiceError maps ledger errors onto HTTP statuses. Validation
// failures never reached the store; persistence failures are reported without
// touching in-memory state.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var pse *ledger.PartialSettlementError

	switch {
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrPersonRequired):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Record not found")
	case errors.As(err, &pse):
		log.Error().Err(err).Msg("Partial settlement")
		middleware.WriteJSON(w, http.StatusConflict, map[string]interface{}{
			"error": "partially settled: debt updated but transaction insert failed",
			"debt":  pse.Debt,
		})
	default:
		log.Error().Err(err).Msg("Persistence failure")
		middleware.WriteError(w, http.StatusBadGateway, "Persistence failure")
	}
}
