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

// Customer is an opted-in chat customer.
type Customer struct {
	ID   int64
	Name string
}

// ChatService is the contract the flows need from the chat platform.
type ChatService interface {
	// FindCustomerByPhone returns the first opted-in customer matching the
	// phone number, or nil when none is opted in.
	FindCustomerByPhone(ctx context.Context, phone string) (*Customer, error)
	SendTemplate(ctx context.Context, customerID int64, templateID int, language string, params []string) error
}

// LandBotService implements ChatService against the LandBot API.
type LandBotService struct {
	cfg    config.LandBotConfig
	client *http.Client
}

// NewLandBotService creates a new LandBot client
func NewLandBotService(cfg config.LandBotConfig) *LandBotService {
	return &LandBotService{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// FindCustomerByPhone searches customers by phone and filters to opted-in.
func (s *LandBotService) FindCustomerByPhone(ctx context.Context, phone string) (*Customer, error) {
	q := url.Values{}
	q.Set("search_by", "phone")
	q.Set("search_value", phone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL()+"/customers/?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transportError("landbot", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newUpstreamError("landbot", resp.StatusCode)
	}

	var out struct {
		Customers []struct {
			ID    int64  `json:"id"`
			Name  string `json:"name"`
			OptIn bool   `json:"opt_in"`
		} `json:"customers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode customers response: %w", err)
	}

	for _, c := range out.Customers {
		if c.OptIn {
			return &Customer{ID: c.ID, Name: c.Name}, nil
		}
	}
	return nil, nil
}

// SendTemplate sends a templated message with positional parameters.
func (s *LandBotService) SendTemplate(ctx context.Context, customerID int64, templateID int, language string, params []string) error {
	payload := map[string]any{
		"template_id":       templateID,
		"template_language": language,
		"template_params":   params,
	}
	body, _ := json.Marshal(payload)

	endpoint := s.baseURL() + "/customers/" + strconv.FormatInt(customerID, 10) + "/send_template/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return &UpstreamError{Service: "landbot", Err: fmt.Errorf("%w: %v", ErrDelivery, err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{
			Service:    "landbot",
			StatusCode: resp.StatusCode,
			Err:        ErrDelivery,
		}
	}

	var out struct {
		Errors any `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err == nil && out.Errors != nil {
		return &UpstreamError{
			Service: "landbot",
			Err:     fmt.Errorf("%w: %v", ErrDelivery, out.Errors),
		}
	}
	return nil
}

func (s *LandBotService) baseURL() string {
	if s.cfg.APIDomain != "" {
		return strings.TrimRight(s.cfg.APIDomain, "/")
	}
	return "https://api.landbot.io/v1"
}

func (s *LandBotService) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Token "+s.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")
}
