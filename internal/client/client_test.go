package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/harper/dealflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *TokenStore {
	t.Helper()
	store, err := NewTokenStore(filepath.Join(t.TempDir(), "tokens.json"))
	require.NoError(t, err)
	return store
}

func TestTokenStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, store.Save(&Tokens{AccessToken: "a", RefreshToken: "r"}))

	loaded, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "a", loaded.AccessToken)
	assert.Equal(t, "r", loaded.RefreshToken)

	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Clearing twice is fine
	require.NoError(t, store.Clear())
}

func TestClient_Login_StoresTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user":{"email":"ana@fund.vc","full_name":"Ana"},"access_token":"acc1","refresh_token":"ref1","token_type":"bearer"}`))
	}))
	defer srv.Close()

	store := newTestStore(t)
	c := New(srv.URL, store)

	user, err := c.Login(context.Background(), "ana@fund.vc", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.FullName)

	tokens, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, tokens)
	assert.Equal(t, "acc1", tokens.AccessToken)
	assert.Equal(t, "ref1", tokens.RefreshToken)
}

func TestClient_RefreshOn401_RetriesOnce(t *testing.T) {
	var meCalls, refreshCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/me":
			meCalls++
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"email":"ana@fund.vc","full_name":"Ana"}`))
		case "/api/v1/auth/refresh":
			refreshCalls++
			w.Write([]byte(`{"access_token":"fresh","refresh_token":"fresh-r","token_type":"bearer"}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	store := newTestStore(t)
	require.NoError(t, store.Save(&Tokens{AccessToken: "stale", RefreshToken: "ref1"}))

	c := New(srv.URL, store)
	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.FullName)
	assert.Equal(t, 2, meCalls)
	assert.Equal(t, 1, refreshCalls)

	// The rotated pair replaced the stale one
	tokens, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh", tokens.AccessToken)
	assert.Equal(t, "fresh-r", tokens.RefreshToken)
}

func TestClient_SecondRejectionExpiresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/refresh":
			w.Write([]byte(`{"access_token":"new","refresh_token":"new-r","token_type":"bearer"}`))
		default:
			// Every authenticated call is rejected
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	store := newTestStore(t)
	require.NoError(t, store.Save(&Tokens{AccessToken: "stale", RefreshToken: "ref1"}))

	c := New(srv.URL, store)
	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)

	tokens, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, tokens)
}

func TestClient_FailedRefreshExpiresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/refresh" {
			http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := newTestStore(t)
	require.NoError(t, store.Save(&Tokens{AccessToken: "stale", RefreshToken: "bad"}))

	c := New(srv.URL, store)
	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)

	tokens, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, tokens)
}

func TestClient_NoTokensMeansExpired(t *testing.T) {
	store := newTestStore(t)
	c := New("http://localhost:0", store)
	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Job not found"}`))
	}))
	defer srv.Close()

	store := newTestStore(t)
	require.NoError(t, store.Save(&Tokens{AccessToken: "acc", RefreshToken: "ref"}))

	c := New(srv.URL, store)
	_, err := c.DiscoveryJobStatus(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Job not found", apiErr.Message)
}

func TestClient_SubmitDiscovery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/discovery/run", r.URL.Path)
		require.Equal(t, "Bearer acc", r.Header.Get("Authorization"))

		var req types.DiscoveryRunRequest
		require.NoError(t, jsonDecode(r, &req))
		assert.Equal(t, []string{"yc"}, req.Sources)

		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"job_id":"abc","status":"pending"}`))
	}))
	defer srv.Close()

	store := newTestStore(t)
	require.NoError(t, store.Save(&Tokens{AccessToken: "acc", RefreshToken: "ref"}))

	c := New(srv.URL, store)
	jobID, err := c.SubmitDiscovery(context.Background(), &types.DiscoveryRunRequest{
		Sources:        []string{"yc"},
		LimitPerSource: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", jobID)
}

func TestClient_DiscoveryResultsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("skip"))
		assert.Equal(t, "200", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"id":"s1","name":"Acme","sector":"AI/ML","sources":[],"discovery_score":80,"is_saved":false}]`))
	}))
	defer srv.Close()

	store := newTestStore(t)
	require.NoError(t, store.Save(&Tokens{AccessToken: "acc", RefreshToken: "ref"}))

	c := New(srv.URL, store)
	results, err := c.DiscoveryResults(context.Background(), "abc", 100, 200)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Acme", results[0].Name)
	assert.Equal(t, float64(80), results[0].DiscoveryScore)
}

func jsonDecode(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
