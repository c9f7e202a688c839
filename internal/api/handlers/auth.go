package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/financeflow/financeflow/internal/api/middleware"
	"github.com/financeflow/financeflow/internal/infra/supabase"
	"github.com/financeflow/financeflow/internal/ledger"
)

// Authenticator is the identity provider the auth endpoints proxy to.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (supabase.Session, error)
	SignOut(ctx context.Context) error
}

// AuthHandler handles sign-in and sign-out. A successful sign-in initializes
// the ledger from the store; sign-out tears it down.
type AuthHandler struct {
	auth Authenticator
	svc  *ledger.Service
	log  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth Authenticator, svc *ledger.Service, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, svc: svc, log: log}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		middleware.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx := r.Context()
	session, err := h.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		var authErr *supabase.AuthError
		if errors.As(err, &authErr) {
			// The provider's message goes back verbatim for the login form.
			middleware.WriteError(w, http.StatusUnauthorized, authErr.Message)
			return
		}
		h.log.Error().Err(err).Msg("Sign-in failed")
		middleware.WriteError(w, http.StatusBadGateway, "Identity provider unavailable")
		return
	}

	if err := h.svc.Load(ctx); err != nil {
		h.log.Error().Err(err).Msg("Failed to load ledger after sign-in")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to load ledger")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": session.AccessToken,
		"token_type":   session.TokenType,
		"expires_in":   session.ExpiresIn,
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context()); err != nil {
		h.log.Warn().Err(err).Msg("Sign-out call failed; clearing local state anyway")
	}
	h.svc.Reset()
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
