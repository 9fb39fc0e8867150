// Package services provides external service integrations for the advertising, call tracking, CRM and chat platforms
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AiiMS-Group/landbot/config"
)

// AccountRef is a lightweight CRM account reference from a search result.
type AccountRef struct {
	ID   string
	Name string
}

// SalesAccount is the typed view of a FreshSales account and the custom
// fields this service reads. The raw custom_field map is parsed exactly
// once, here at the boundary.
type SalesAccount struct {
	ID                   string
	Name                 string
	AdWordsIDs           []string
	WildJarID            string
	WANumber             string
	BudgetRecommendation bool
	HourlyUpdates        bool
}

// HasAdsAccounts reports whether at least one ad platform ID is configured.
func (a *SalesAccount) HasAdsAccounts() bool {
	return len(a.AdWordsIDs) > 0
}

// HasCallTracking reports whether a call tracking account is configured.
func (a *SalesAccount) HasCallTracking() bool {
	return a.WildJarID != ""
}

// CRMService is the contract the flows need from the CRM.
type CRMService interface {
	// FindFlaggedAccounts lists accounts whose named boolean custom field
	// is set.
	FindFlaggedAccounts(ctx context.Context, flag string) ([]AccountRef, error)
	AccountByPhone(ctx context.Context, phone string) (*SalesAccount, error)
	Account(ctx context.Context, id string) (*SalesAccount, error)
}

// FreshSalesService implements CRMService against the FreshSales API.
type FreshSalesService struct {
	cfg    config.FreshSalesConfig
	client *http.Client
}

// NewFreshSalesService creates a new FreshSales client
func NewFreshSalesService(cfg config.FreshSalesConfig) *FreshSalesService {
	return &FreshSalesService{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type rawSalesAccount struct {
	ID          json.Number    `json:"id"`
	Name        string         `json:"name"`
	CustomField map[string]any `json:"custom_field"`
}

// FindFlaggedAccounts runs a filtered search on a boolean custom field.
func (s *FreshSalesService) FindFlaggedAccounts(ctx context.Context, flag string) ([]AccountRef, error) {
	payload := map[string]any{
		"filter_rule": []map[string]any{
			{
				"attribute": flag,
				"operator":  "is_any",
				"value":     []string{"true"},
			},
		},
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL()+"/filtered_search/sales_account", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transportError("freshsales", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newUpstreamError("freshsales", resp.StatusCode)
	}

	var out struct {
		SalesAccounts []rawSalesAccount `json:"sales_accounts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode filtered search response: %w", err)
	}

	refs := make([]AccountRef, 0, len(out.SalesAccounts))
	for _, acc := range out.SalesAccounts {
		refs = append(refs, AccountRef{ID: acc.ID.String(), Name: acc.Name})
	}
	return refs, nil
}

// AccountByPhone resolves the account a chat request belongs to by the
// phone number the webhook supplies.
func (s *FreshSalesService) AccountByPhone(ctx context.Context, phone string) (*SalesAccount, error) {
	q := url.Values{}
	q.Set("q", phone)
	q.Set("include", "sales_account")
	q.Set("per_page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL()+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transportError("freshsales", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newUpstreamError("freshsales", resp.StatusCode)
	}

	var out []struct {
		ID json.Number `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}

	return s.Account(ctx, out[0].ID.String())
}

// Account fetches one account by ID with its custom fields.
func (s *FreshSalesService) Account(ctx context.Context, id string) (*SalesAccount, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL()+"/sales_accounts/"+id, nil)
	if err != nil {
		return nil, err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transportError("freshsales", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newUpstreamError("freshsales", resp.StatusCode)
	}

	var out struct {
		SalesAccount rawSalesAccount `json:"sales_account"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode account response: %w", err)
	}

	return parseSalesAccount(out.SalesAccount), nil
}

func (s *FreshSalesService) baseURL() string {
	return strings.TrimRight(s.cfg.APIDomain, "/") + "/api"
}

func (s *FreshSalesService) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Token token="+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
}

func parseSalesAccount(raw rawSalesAccount) *SalesAccount {
	return &SalesAccount{
		ID:                   raw.ID.String(),
		Name:                 raw.Name,
		AdWordsIDs:           ParseAdWordsIDs(customString(raw.CustomField, "cf_adwords_ids")),
		WildJarID:            customString(raw.CustomField, "cf_wildjar_id"),
		WANumber:             customString(raw.CustomField, "cf_wa_number"),
		BudgetRecommendation: customBool(raw.CustomField, "cf_budget_recommendation"),
		HourlyUpdates:        customBool(raw.CustomField, "cf_whatsapp_hourly_updates"),
	}
}

// ParseAdWordsIDs splits the newline-separated ad account list from the
// CRM, stripping the display hyphens (123-456-7890 -> 1234567890).
func ParseAdWordsIDs(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}

	var ids []string
	for _, line := range strings.Split(strings.ReplaceAll(field, "-", ""), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			ids = append(ids, line)
		}
	}
	return ids
}

func customString(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func customBool(fields map[string]any, key string) bool {
	switch v := fields[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
		return b
	default:
		return false
	}
}
