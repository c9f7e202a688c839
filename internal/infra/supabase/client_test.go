package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financeflow/financeflow/internal/domain"
	"github.com/financeflow/financeflow/internal/store"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, "anon-key", zerolog.Nop()), srv
}

func TestListDebts_WireTranslation(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/debts", r.URL.Path)
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		// Second row is an old record with no paid_amount/is_paid columns.
		w.Write([]byte(`[
			{"id":"d1","person":"Juan","amount":100,"paid_amount":30.5,"is_paid":false,"type":"OWED_BY_ME","note":"","created_at":"2026-08-01T10:00:00Z"},
			{"id":"d2","person":"Ana","amount":40,"type":"OWED_TO_ME","note":"x","created_at":"2026-07-01T10:00:00Z"}
		]`))
	}))
	defer srv.Close()

	debts, err := client.ListDebts(context.Background())
	require.NoError(t, err)
	require.Len(t, debts, 2)

	assert.Equal(t, "d1", debts[0].ID)
	assert.True(t, debts[0].PaidAmount.Equal(dec("30.5")))
	assert.Equal(t, domain.OwedByMe, debts[0].Type)

	// Missing wire fields default to zero / false.
	assert.True(t, debts[1].PaidAmount.IsZero())
	assert.False(t, debts[1].IsPaid)
}

func TestCreateTransaction_ReturnsRepresentation(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/transactions", r.URL.Path)
		assert.Contains(t, r.Header.Get("Prefer"), "return=representation")

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "EXPENSE", payload["type"])
		assert.NotContains(t, payload, "id")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":"tx1","amount":50,"type":"EXPENSE","category":"Comida","note":"","date":"2026-08-31T12:00:00Z"}]`))
	}))
	defer srv.Close()

	tx, err := client.CreateTransaction(context.Background(), domain.Transaction{
		Amount:   dec("50"),
		Type:     domain.TypeExpense,
		Category: "Comida",
	})
	require.NoError(t, err)
	assert.Equal(t, "tx1", tx.ID)
	assert.True(t, tx.Amount.Equal(dec("50")))
}

func TestUpdateDebt_PatchesOnlySetFields(t *testing.T) {
	paid := dec("40")
	isPaid := false

	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.d1", r.URL.Query().Get("id"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Contains(t, payload, "paid_amount")
		assert.Contains(t, payload, "is_paid")
		assert.NotContains(t, payload, "person")
		assert.NotContains(t, payload, "amount")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"d1","person":"Juan","amount":100,"paid_amount":40,"is_paid":false,"type":"OWED_BY_ME","note":"","created_at":"2026-08-01T10:00:00Z"}]`))
	}))
	defer srv.Close()

	d, err := client.UpdateDebt(context.Background(), "d1", store.DebtPatch{PaidAmount: &paid, IsPaid: &isPaid})
	require.NoError(t, err)
	assert.True(t, d.PaidAmount.Equal(dec("40")))
}

func TestUpdateAndDelete_UnknownIDIsNotFound(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx := context.Background()
	note := "x"

	_, err := client.UpdateTransaction(ctx, "missing", store.TransactionPatch{Note: &note})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = client.DeleteTransaction(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = client.DeleteDebt(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRest_ServerErrorSurfacesMessage(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"relation does not exist"}`))
	}))
	defer srv.Close()

	_, err := client.ListTransactions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestSignIn_InstallsToken(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"user-token","token_type":"bearer","expires_in":3600,"refresh_token":"r"}`))
		case "/rest/v1/transactions":
			assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	session, err := client.SignIn(ctx, "user@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-token", session.AccessToken)
	assert.Equal(t, "user-token", client.Token())

	_, err = client.ListTransactions(ctx)
	require.NoError(t, err)
}

func TestSignIn_RejectionSurfacesProviderMessage(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_description":"Invalid login credentials"}`))
	}))
	defer srv.Close()

	_, err := client.SignIn(context.Background(), "user@example.com", "wrong")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid login credentials", authErr.Message)
	assert.Empty(t, client.Token())
}

func TestPreference_UnsetReturnsEmpty(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.ff_currency", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	v, err := client.Preference(context.Background(), "ff_currency")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSetPreference_Upserts(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Prefer"), "resolution=merge-duplicates")

		var payload preferenceRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "ff_currency", payload.Key)
		assert.Equal(t, "COP", payload.Value)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"key":"ff_currency","value":"COP"}]`))
	}))
	defer srv.Close()

	err := client.SetPreference(context.Background(), "ff_currency", "COP")
	require.NoError(t, err)
}
