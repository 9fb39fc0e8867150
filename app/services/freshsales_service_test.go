package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AiiMS-Group/landbot/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdWordsIDs(t *testing.T) {
	assert.Nil(t, ParseAdWordsIDs(""))
	assert.Nil(t, ParseAdWordsIDs("  \n "))
	assert.Equal(t, []string{"1234567890"}, ParseAdWordsIDs("123-456-7890"))
	assert.Equal(t, []string{"1234567890", "9876543210"}, ParseAdWordsIDs("123-456-7890\n987-654-3210"))
	assert.Equal(t, []string{"1234567890"}, ParseAdWordsIDs(" 1234567890 \n\n"))
}

func TestFreshSalesAccountLookup(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token token=secret", r.Header.Get("Authorization"))
		assert.Equal(t, "61400123456", r.URL.Query().Get("q"))
		json.NewEncoder(w).Encode([]map[string]any{{"id": 501}})
	})
	mux.HandleFunc("/api/sales_accounts/501", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"sales_account": map[string]any{
				"id":   501,
				"name": "Acme Plumbing",
				"custom_field": map[string]any{
					"cf_adwords_ids":             "123-456-7890\n987-654-3210",
					"cf_wildjar_id":              "wj-1",
					"cf_wa_number":               "+61 400 123 456",
					"cf_budget_recommendation":   true,
					"cf_whatsapp_hourly_updates": "true",
				},
			},
		})
	})
	mux.HandleFunc("/api/sales_accounts/404", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := NewFreshSalesService(config.FreshSalesConfig{APIDomain: srv.URL, APIKey: "secret"})

	t.Run("ResolvesAndParsesCustomFields", func(t *testing.T) {
		account, err := svc.AccountByPhone(ctx, "61400123456")
		require.NoError(t, err)
		require.NotNil(t, account)

		assert.Equal(t, "501", account.ID)
		assert.Equal(t, "Acme Plumbing", account.Name)
		assert.Equal(t, []string{"1234567890", "9876543210"}, account.AdWordsIDs)
		assert.Equal(t, "wj-1", account.WildJarID)
		assert.True(t, account.BudgetRecommendation)
		assert.True(t, account.HourlyUpdates)
		assert.True(t, account.HasAdsAccounts())
		assert.True(t, account.HasCallTracking())
	})

	t.Run("MissingAccountIsNil", func(t *testing.T) {
		account, err := svc.Account(ctx, "404")
		require.NoError(t, err)
		assert.Nil(t, account)
	})
}

func TestFreshSalesFindFlaggedAccounts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/filtered_search/sales_account", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			FilterRule []struct {
				Attribute string `json:"attribute"`
				Operator  string `json:"operator"`
			} `json:"filter_rule"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.FilterRule, 1)
		assert.Equal(t, "cf_whatsapp_hourly_updates", payload.FilterRule[0].Attribute)
		assert.Equal(t, "is_any", payload.FilterRule[0].Operator)

		json.NewEncoder(w).Encode(map[string]any{
			"sales_accounts": []map[string]any{
				{"id": 501, "name": "Acme Plumbing"},
				{"id": 502, "name": "Bright Dental"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := NewFreshSalesService(config.FreshSalesConfig{APIDomain: srv.URL, APIKey: "secret"})
	refs, err := svc.FindFlaggedAccounts(context.Background(), "cf_whatsapp_hourly_updates")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, AccountRef{ID: "501", Name: "Acme Plumbing"}, refs[0])
}
