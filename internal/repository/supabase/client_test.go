package supabase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/internal/config"
	"github.com/bulgareesoft/bulgaree/internal/domain/models"
	"github.com/bulgareesoft/bulgaree/internal/repository/supabase"
)

func newTestClient(srv *httptest.Server) *supabase.Client {
	return supabase.NewClient(config.RemoteConfig{URL: srv.URL, Key: "anon-key"}, zap.NewNop())
}

func TestSignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var creds supabase.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "dona@bulgaree.app", creds.Email)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "tok-123",
			"user": {"id": "user-1", "email": "dona@bulgaree.app"}
		}`))
	}))
	defer srv.Close()

	sess, err := newTestClient(srv).SignIn(context.Background(), supabase.Credentials{
		Email:    "dona@bulgaree.app",
		Password: "segredo",
	})
	require.NoError(t, err)

	assert.Equal(t, "tok-123", sess.AccessToken)
	assert.Equal(t, "user-1", sess.User.ID)
}

func TestSignInBadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid_grant", "error_description": "Invalid login credentials"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SignIn(context.Background(), supabase.Credentials{
		Email:    "dona@bulgaree.app",
		Password: "errada",
	})

	var authErr *supabase.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusBadRequest, authErr.Status)
	assert.Equal(t, "Invalid login credentials", authErr.Message)
}

func TestSignUpPendingConfirmation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user": {"id": "user-2", "email": "nova@bulgaree.app"}}`))
	}))
	defer srv.Close()

	sess, err := newTestClient(srv).SignUp(context.Background(), supabase.Credentials{
		Email:    "nova@bulgaree.app",
		Password: "segredo",
	})
	require.NoError(t, err)

	assert.Empty(t, sess.AccessToken)
	assert.Equal(t, "user-2", sess.User.ID)
}

func TestCollectionFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/produtos", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": "rec-1", "data": "hoje", "mercadorias": "arroz", "preco": "10.00"}]`))
	}))
	defer srv.Close()

	col := supabase.NewCollection[models.InventoryRecord](newTestClient(srv), "produtos")
	rows, err := col.Fetch(context.Background(), "user-token")
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "rec-1", rows[0].ID)
	assert.Equal(t, "arroz", rows[0].Merchandise)
}

func TestCollectionFetchFallsBackToAnonKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	col := supabase.NewCollection[models.InventoryRecord](newTestClient(srv), "produtos")
	rows, err := col.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCollectionUpsert(t *testing.T) {
	var gotPrefer string
	var gotBody []models.SaleRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/vendas", r.URL.Path)
		gotPrefer = r.Header.Get("Prefer")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	col := supabase.NewCollection[models.SaleRecord](newTestClient(srv), "vendas")
	err := col.Upsert(context.Background(), "user-token", []models.SaleRecord{
		{ID: "rec-1", UserID: "user-1", Product: "arroz", Total: "20.00"},
	})
	require.NoError(t, err)

	assert.Equal(t, "resolution=merge-duplicates,return=minimal", gotPrefer)
	require.Len(t, gotBody, 1)
	assert.Equal(t, "user-1", gotBody[0].UserID)
}

func TestCollectionUpsertEmptySetSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for an empty snapshot")
	}))
	defer srv.Close()

	col := supabase.NewCollection[models.SaleRecord](newTestClient(srv), "vendas")
	require.NoError(t, col.Upsert(context.Background(), "user-token", nil))
}

func TestCollectionUpsertErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message": "duplicate key"}`))
	}))
	defer srv.Close()

	col := supabase.NewCollection[models.InventoryRecord](newTestClient(srv), "produtos")
	err := col.Upsert(context.Background(), "user-token", []models.InventoryRecord{{ID: "rec-1"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 409")
}
