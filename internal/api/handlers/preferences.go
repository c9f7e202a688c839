package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/financeflow/financeflow/internal/api/middleware"
	"github.com/financeflow/financeflow/internal/domain"
	"github.com/financeflow/financeflow/internal/store"
)

// PreferencesHandler reads and writes the display-currency slot. The value
// only ever affects presentation; stored amounts are never converted.
type PreferencesHandler struct {
	prefs store.PreferenceStore
	log   zerolog.Logger
}

// NewPreferencesHandler creates a new preferences handler.
func NewPreferencesHandler(prefs store.PreferenceStore, log zerolog.Logger) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs, log: log}
}

// GetCurrency handles GET /api/preferences/currency
func (h *PreferencesHandler) GetCurrency(w http.ResponseWriter, r *http.Request) {
	raw, err := h.prefs.Preference(r.Context(), domain.CurrencyPreferenceKey)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read currency preference")
		middleware.WriteError(w, http.StatusBadGateway, "Persistence failure")
		return
	}

	currency := domain.DefaultCurrency
	if raw != "" {
		if parsed, err := domain.ParseCurrency(raw); err == nil {
			currency = parsed
		}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"currency": string(currency),
		"symbol":   currency.Symbol(),
	})
}

// SetCurrency handles PUT /api/preferences/currency
func (h *PreferencesHandler) SetCurrency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "currency must be USD, COP or EUR")
		return
	}

	if err := h.prefs.SetPreference(r.Context(), domain.CurrencyPreferenceKey, string(currency)); err != nil {
		h.log.Error().Err(err).Msg("Failed to save currency preference")
		middleware.WriteError(w, http.StatusBadGateway, "Persistence failure")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"currency": string(currency)})
}
