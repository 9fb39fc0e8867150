// Package services provides external service integrations for the advertising, call tracking, CRM and chat platforms
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/AiiMS-Group/landbot/config"
)

// CallSummary is the call-tracking roll-up for a set of accounts and a
// date window.
type CallSummary struct {
	Answered  int64
	Missed    int64
	Abandoned int64
}

// Total counts every tracked enquiry, whatever its outcome.
func (s CallSummary) Total() int64 {
	return s.Answered + s.Missed + s.Abandoned
}

// CallsService is the contract the flows need from the call tracking
// platform.
type CallsService interface {
	// ListSubAccounts returns the child account IDs rolled up under the
	// given root, including the root itself.
	ListSubAccounts(ctx context.Context, rootID string) ([]string, error)
	Summary(ctx context.Context, accountIDs []string, from, to time.Time, timezone string) (CallSummary, error)
}

// WildJarService implements CallsService against the WildJar API.
type WildJarService struct {
	cfg    config.WildJarConfig
	client *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewWildJarService creates a new WildJar client
func NewWildJarService(cfg config.WildJarConfig) *WildJarService {
	return &WildJarService{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListSubAccounts lists every account whose father is rootID, plus rootID
// itself, so summaries cover the whole roll-up.
func (s *WildJarService) ListSubAccounts(ctx context.Context, rootID string) ([]string, error) {
	token, err := s.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL()+"/account", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transportError("wildjar", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newUpstreamError("wildjar", resp.StatusCode)
	}

	var out []struct {
		ID     string `json:"id"`
		Father string `json:"father"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode account list: %w", err)
	}

	ids := make([]string, 0, len(out)+1)
	for _, acc := range out {
		if acc.Father == rootID {
			ids = append(ids, acc.ID)
		}
	}
	ids = append(ids, rootID)
	return ids, nil
}

// Summary fetches the answered/missed/abandoned totals for the accounts
// over [from, to] in the given timezone.
func (s *WildJarService) Summary(ctx context.Context, accountIDs []string, from, to time.Time, timezone string) (CallSummary, error) {
	token, err := s.getAccessToken(ctx)
	if err != nil {
		return CallSummary{}, err
	}

	q := url.Values{}
	q.Set("account", strings.Join(accountIDs, ","))
	q.Set("datefrom", from.Format("2006-01-02T15:04:05"))
	q.Set("dateto", to.Format("2006-01-02T15:04:05"))
	q.Set("timezone", timezone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL()+"/summary?"+q.Encode(), nil)
	if err != nil {
		return CallSummary{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return CallSummary{}, transportError("wildjar", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return CallSummary{}, newUpstreamError("wildjar", resp.StatusCode)
	}

	var out struct {
		Summary struct {
			AnsweredTot  int64 `json:"answeredTot"`
			MissedTot    int64 `json:"missedTot"`
			AbandonedTot int64 `json:"abandonedTot"`
		} `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return CallSummary{}, fmt.Errorf("failed to decode summary: %w", err)
	}

	return CallSummary{
		Answered:  out.Summary.AnsweredTot,
		Missed:    out.Summary.MissedTot,
		Abandoned: out.Summary.AbandonedTot,
	}, nil
}

func (s *WildJarService) baseURL() string {
	if s.cfg.APIDomain != "" {
		return strings.TrimRight(s.cfg.APIDomain, "/")
	}
	return "https://api.wildjar.com/v1"
}

func (s *WildJarService) getAccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return s.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL()+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", transportError("wildjar", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newUpstreamError("wildjar", resp.StatusCode)
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
