package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/financeflow/financeflow/internal/api/middleware"
	"github.com/financeflow/financeflow/internal/domain"
	"github.com/financeflow/financeflow/internal/ledger"
)

// DebtsHandler handles the debt endpoints, including settlement.
type DebtsHandler struct {
	svc *ledger.Service
	log zerolog.Logger
}

// NewDebtsHandler creates a new debts handler.
func NewDebtsHandler(svc *ledger.Service, log zerolog.Logger) *DebtsHandler {
	return &DebtsHandler{svc: svc, log: log}
}

// debtRequest is the payload for creating or editing a debt.
type debtRequest struct {
	Person string          `json:"person"`
	Amount decimal.Decimal `json:"amount"`
	Type   domain.DebtType `json:"type"`
	Note   string          `json:"note"`
}

// paymentRequest is the payload for settling a payment against a debt.
type paymentRequest struct {
	PaymentAmount decimal.Decimal `json:"paymentAmount"`
}

// List handles GET /api/debts
func (h *DebtsHandler) List(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.Debts())
}

// Create handles POST /api/debts
func (h *DebtsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req debtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Type.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "type must be OWED_BY_ME or OWED_TO_ME")
		return
	}

	d, err := h.svc.RecordDebt(r.Context(), req.Person, req.Amount, req.Type, req.Note)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, d)
}

// Update handles PUT /api/debts/{id}
func (h *DebtsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var req debtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Type.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "type must be OWED_BY_ME or OWED_TO_ME")
		return
	}

	d, err := h.svc.UpdateDebt(r.Context(), id, req.Person, req.Amount, req.Type, req.Note)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, d)
}

// Delete handles DELETE /api/debts/{id}
func (h *DebtsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.DeleteDebt(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// Settle handles POST /api/debts/{id}/payments
func (h *DebtsHandler) Settle(w http.ResponseWriter, r *http.Request, id string) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	debt, tx, err := h.svc.SettleDebtPayment(r.Context(), id, req.PaymentAmount)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"debt":        debt,
		"transaction": tx,
	})
}
