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

// TransactionsHandler handles the transaction endpoints.
type TransactionsHandler struct {
	svc *ledger.Service
	log zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(svc *ledger.Service, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{svc: svc, log: log}
}

// transactionRequest is the payload for creating or editing a transaction.
// Amount accepts a JSON number or a numeric string; anything else fails to
// decode and the operation never reaches the store.
type transactionRequest struct {
	Amount   decimal.Decimal        `json:"amount"`
	Type     domain.TransactionType `json:"type"`
	Category string                 `json:"category"`
	Note     string                 `json:"note"`
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.Transactions())
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Type.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "type must be INCOME or EXPENSE")
		return
	}

	tx, err := h.svc.RecordTransaction(r.Context(), req.Amount, req.Type, req.Category, req.Note)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// Update handles PUT /api/transactions/{id}
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Type.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "type must be INCOME or EXPENSE")
		return
	}

	tx, err := h.svc.UpdateTransaction(r.Context(), id, req.Amount, req.Type, req.Category, req.Note)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.DeleteTransaction(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// Categories handles GET /api/categories
func Categories(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"income":  domain.IncomeCategories,
		"expense": domain.ExpenseCategories,
	})
}
