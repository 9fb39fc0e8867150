// Package services provides external service integrations for the advertising, call tracking, CRM and chat platforms
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AiiMS-Group/landbot/config"
)

// Campaign is one advertising campaign row as returned by the ads platform.
// Budget is in currency units; multiple campaigns may share one BudgetID.
type Campaign struct {
	AccountID   string
	CampaignID  string
	Name        string
	BudgetID    string
	Budget      float64
	ChannelType string
}

// AccountMetrics is the aggregate spend/clicks answer for one ad account.
type AccountMetrics struct {
	Spend  float64
	Clicks int64
}

// AdsService is the contract the flows need from the advertising platform.
// Mutation calls are idempotent: applying the same target value twice is a
// no-op success upstream.
type AdsService interface {
	ListCampaigns(ctx context.Context, accountID string) ([]Campaign, error)
	QueryMetrics(ctx context.Context, accountID, dateKeyword string) (AccountMetrics, error)
	SetBudgetAmount(ctx context.Context, accountID, budgetID string, amount float64) error
	SetCampaignStatus(ctx context.Context, accountID string, campaignIDs []string, status string) error
}

// GoogleAdsService implements AdsService against the Google Ads REST API.
type GoogleAdsService struct {
	cfg    config.GoogleAdsConfig
	client *http.Client
	logger *log.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewGoogleAdsService creates a new Google Ads client
func NewGoogleAdsService(cfg config.GoogleAdsConfig, logger *log.Logger) *GoogleAdsService {
	if logger == nil {
		logger = log.Default()
	}
	return &GoogleAdsService{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

type googleAdsSearchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

type googleAdsSearchResponse struct {
	Results []struct {
		Campaign struct {
			ID                     string `json:"id"`
			Name                   string `json:"name"`
			AdvertisingChannelType string `json:"advertisingChannelType"`
		} `json:"campaign"`
		CampaignBudget struct {
			ID           string `json:"id"`
			AmountMicros string `json:"amountMicros"`
		} `json:"campaignBudget"`
		Metrics struct {
			CostMicros string `json:"costMicros"`
			Clicks     string `json:"clicks"`
		} `json:"metrics"`
	} `json:"results"`
	NextPageToken string `json:"nextPageToken"`
}

// ListCampaigns fetches all campaigns of one account with their shared
// budget amounts, following search pagination to the end.
func (s *GoogleAdsService) ListCampaigns(ctx context.Context, accountID string) ([]Campaign, error) {
	query := "SELECT campaign.id, campaign.name, campaign.advertising_channel_type, " +
		"campaign_budget.id, campaign_budget.amount_micros FROM campaign"

	var campaigns []Campaign
	pageToken := ""
	for {
		resp, err := s.search(ctx, accountID, query, pageToken)
		if err != nil {
			return nil, err
		}
		for _, row := range resp.Results {
			micros, _ := strconv.ParseInt(row.CampaignBudget.AmountMicros, 10, 64)
			campaigns = append(campaigns, Campaign{
				AccountID:   accountID,
				CampaignID:  row.Campaign.ID,
				Name:        row.Campaign.Name,
				BudgetID:    row.CampaignBudget.ID,
				Budget:      float64(micros) / 1e6,
				ChannelType: row.Campaign.AdvertisingChannelType,
			})
		}
		if resp.NextPageToken == "" {
			return campaigns, nil
		}
		pageToken = resp.NextPageToken
	}
}

// QueryMetrics returns the account's summed spend and clicks for a
// platform-native relative date keyword, scoped server-side.
func (s *GoogleAdsService) QueryMetrics(ctx context.Context, accountID, dateKeyword string) (AccountMetrics, error) {
	query := "SELECT metrics.cost_micros, metrics.clicks FROM customer " +
		"WHERE segments.date DURING " + dateKeyword

	var metrics AccountMetrics
	pageToken := ""
	for {
		resp, err := s.search(ctx, accountID, query, pageToken)
		if err != nil {
			return AccountMetrics{}, err
		}
		for _, row := range resp.Results {
			micros, _ := strconv.ParseInt(row.Metrics.CostMicros, 10, 64)
			clicks, _ := strconv.ParseInt(row.Metrics.Clicks, 10, 64)
			metrics.Spend += float64(micros) / 1e6
			metrics.Clicks += clicks
		}
		if resp.NextPageToken == "" {
			return metrics, nil
		}
		pageToken = resp.NextPageToken
	}
}

// SetBudgetAmount updates a shared campaign budget to the given amount.
// The current amount is read first so the audit log carries both sides of
// the change.
func (s *GoogleAdsService) SetBudgetAmount(ctx context.Context, accountID, budgetID string, amount float64) error {
	previous, err := s.budgetAmount(ctx, accountID, budgetID)
	if err != nil {
		return err
	}

	resourceName := fmt.Sprintf("customers/%s/campaignBudgets/%s", accountID, budgetID)
	payload := map[string]any{
		"operations": []map[string]any{
			{
				"updateMask": "amount_micros",
				"update": map[string]any{
					"resourceName": resourceName,
					"amountMicros": strconv.FormatInt(int64(amount*1e6), 10),
				},
			},
		},
	}

	if err := s.mutate(ctx, accountID, "campaignBudgets", payload); err != nil {
		return err
	}

	s.logger.Printf("googleads: budget mutated account=%s budget=%s previous=%.2f amount=%.2f", accountID, budgetID, previous, amount)
	return nil
}

// budgetAmount reads the current amount of one shared budget.
func (s *GoogleAdsService) budgetAmount(ctx context.Context, accountID, budgetID string) (float64, error) {
	query := "SELECT campaign_budget.amount_micros FROM campaign_budget " +
		"WHERE campaign_budget.id = " + budgetID
	resp, err := s.search(ctx, accountID, query, "")
	if err != nil {
		return 0, err
	}
	if len(resp.Results) == 0 {
		return 0, fmt.Errorf("budget %s not found on account %s", budgetID, accountID)
	}
	micros, _ := strconv.ParseInt(resp.Results[0].CampaignBudget.AmountMicros, 10, 64)
	return float64(micros) / 1e6, nil
}

// SetCampaignStatus batch-updates the status of the given campaigns in one
// mutate call.
func (s *GoogleAdsService) SetCampaignStatus(ctx context.Context, accountID string, campaignIDs []string, status string) error {
	if len(campaignIDs) == 0 {
		return nil
	}

	operations := make([]map[string]any, 0, len(campaignIDs))
	for _, id := range campaignIDs {
		operations = append(operations, map[string]any{
			"updateMask": "status",
			"update": map[string]any{
				"resourceName": fmt.Sprintf("customers/%s/campaigns/%s", accountID, id),
				"status":       status,
			},
		})
	}

	if err := s.mutate(ctx, accountID, "campaigns", payloadWith(operations)); err != nil {
		return err
	}

	s.logger.Printf("googleads: status mutated account=%s campaigns=%d status=%s", accountID, len(campaignIDs), status)
	return nil
}

func payloadWith(operations []map[string]any) map[string]any {
	return map[string]any{"operations": operations}
}

func (s *GoogleAdsService) search(ctx context.Context, accountID, query, pageToken string) (*googleAdsSearchResponse, error) {
	token, err := s.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	body, _ := json.Marshal(googleAdsSearchRequest{Query: query, PageToken: pageToken})
	endpoint := fmt.Sprintf("%s/customers/%s/googleAds:search", s.baseURL(), accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	s.setHeaders(req, token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transportError("googleads", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newUpstreamError("googleads", resp.StatusCode)
	}

	var out googleAdsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &out, nil
}

func (s *GoogleAdsService) mutate(ctx context.Context, accountID, resource string, payload map[string]any) error {
	token, err := s.getAccessToken(ctx)
	if err != nil {
		return err
	}

	body, _ := json.Marshal(payload)
	endpoint := fmt.Sprintf("%s/customers/%s/%s:mutate", s.baseURL(), accountID, resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	s.setHeaders(req, token)

	resp, err := s.client.Do(req)
	if err != nil {
		return transportError("googleads", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		s.logger.Printf("googleads: mutate failed account=%s resource=%s status=%d body=%s",
			accountID, resource, resp.StatusCode, strings.TrimSpace(string(detail)))
		return newUpstreamError("googleads", resp.StatusCode)
	}
	return nil
}

func (s *GoogleAdsService) baseURL() string {
	if s.cfg.APIDomain != "" {
		return strings.TrimRight(s.cfg.APIDomain, "/")
	}
	return "https://googleads.googleapis.com/v16"
}

func (s *GoogleAdsService) setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("developer-token", s.cfg.DeveloperToken)
	if s.cfg.LoginCustomerID != "" {
		req.Header.Set("login-customer-id", s.cfg.LoginCustomerID)
	}
}

// getAccessToken exchanges the configured refresh token for an access
// token, caching it until shortly before expiry.
func (s *GoogleAdsService) getAccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return s.accessToken, nil
	}

	tokenURL := s.cfg.TokenURL
	if tokenURL == "" {
		tokenURL = "https://oauth2.googleapis.com/token"
	}

	form := url.Values{}
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("refresh_token", s.cfg.RefreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", transportError("googleads", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newUpstreamError("googleads", resp.StatusCode)
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("empty access_token")
	}

	s.accessToken = out.AccessToken
	s.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn-60) * time.Second)
	return s.accessToken, nil
}
