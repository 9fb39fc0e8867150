package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AiiMS-Group/landbot/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wildJarServer(t *testing.T, tokenCalls *atomic.Int64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		if tokenCalls != nil {
			tokenCalls.Add(1)
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 3600})
	})
	mux.HandleFunc("/account", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "wj-2", "father": "wj-1"},
			{"id": "wj-3", "father": "wj-1"},
			{"id": "wj-9", "father": "other"},
		})
	})
	mux.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "wj-2,wj-1", r.URL.Query().Get("account"))
		assert.Equal(t, "Australia/Sydney", r.URL.Query().Get("timezone"))
		assert.Equal(t, "2026-08-26T00:00:00", r.URL.Query().Get("datefrom"))
		json.NewEncoder(w).Encode(map[string]any{
			"summary": map[string]any{"answeredTot": 8, "missedTot": 3, "abandonedTot": 1},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestWildJarListSubAccounts(t *testing.T) {
	var tokenCalls atomic.Int64
	srv := wildJarServer(t, &tokenCalls)
	svc := NewWildJarService(config.WildJarConfig{APIDomain: srv.URL, ClientID: "id", ClientSecret: "secret"})

	ids, err := svc.ListSubAccounts(context.Background(), "wj-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"wj-2", "wj-3", "wj-1"}, ids)

	// Second call reuses the cached token.
	_, err = svc.ListSubAccounts(context.Background(), "wj-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tokenCalls.Load())
}

func TestWildJarSummary(t *testing.T) {
	srv := wildJarServer(t, nil)
	svc := NewWildJarService(config.WildJarConfig{APIDomain: srv.URL, ClientID: "id", ClientSecret: "secret"})

	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)
	from := time.Date(2026, 8, 26, 0, 0, 0, 0, loc)
	to := time.Date(2026, 8, 26, 23, 59, 59, 0, loc)

	summary, err := svc.Summary(context.Background(), []string{"wj-2", "wj-1"}, from, to, "Australia/Sydney")
	require.NoError(t, err)
	assert.Equal(t, CallSummary{Answered: 8, Missed: 3, Abandoned: 1}, summary)
	assert.Equal(t, int64(12), summary.Total())
}
