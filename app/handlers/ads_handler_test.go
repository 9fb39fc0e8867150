package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AiiMS-Group/landbot/app/dto"
	businessflow "github.com/AiiMS-Group/landbot/business_flow"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMutationFlow struct {
	spending *businessflow.SpendingResult
	pause    *businessflow.PauseResult
	err      error
}

func (s *stubMutationFlow) ActiveCampaigns(_ context.Context, _ string) (*businessflow.ActiveCampaignsResult, error) {
	return nil, s.err
}

func (s *stubMutationFlow) PauseBudget(_ context.Context, _ string, _, _ int) (*businessflow.PauseResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pause, nil
}

func (s *stubMutationFlow) PauseAds(_ context.Context, _ string, _ int) (*businessflow.PauseResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pause, nil
}

func (s *stubMutationFlow) EnableAds(_ context.Context, _ string) (string, error) {
	return "Acme Plumbing", s.err
}

func (s *stubMutationFlow) Spending(_ context.Context, _ string, _ int) (*businessflow.SpendingResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.spending, nil
}

func newTestApp(flow businessflow.MutationFlow) *fiber.App {
	app := fiber.New()
	h := NewAdsHandler(flow)
	app.Post("/ads/spending", h.Spending)
	app.Post("/ads/budget/pause", h.PauseBudget)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) (int, dto.APIResponse) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out dto.APIResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestSpendingEndpoint(t *testing.T) {
	t.Run("FormatsSpend", func(t *testing.T) {
		app := newTestApp(&stubMutationFlow{
			spending: &businessflow.SpendingResult{Name: "Acme Plumbing", Spend: 1234.5},
		})

		status, out := postJSON(t, app, "/ads/spending", dto.SpendingRequest{Phone: "61400123456", Date: 1})
		assert.Equal(t, fiber.StatusOK, status)
		require.True(t, out.Success)

		data := out.Data.(map[string]any)
		assert.Equal(t, "Acme Plumbing", data["name"])
		assert.Equal(t, "$1,234.50", data["spend"])
	})

	t.Run("ValidationRejectsMissingPhone", func(t *testing.T) {
		app := newTestApp(&stubMutationFlow{})

		status, out := postJSON(t, app, "/ads/spending", map[string]any{"date": 1})
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.False(t, out.Success)
	})

	t.Run("UnknownAccountIs404", func(t *testing.T) {
		app := newTestApp(&stubMutationFlow{
			err: businessflow.NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", businessflow.ErrAccountNotFound),
		})

		status, out := postJSON(t, app, "/ads/spending", dto.SpendingRequest{Phone: "000", Date: 1})
		assert.Equal(t, fiber.StatusNotFound, status)
		assert.False(t, out.Success)
	})
}

func TestPauseBudgetEndpoint(t *testing.T) {
	t.Run("ReturnsRevertDate", func(t *testing.T) {
		revertAt := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
		app := newTestApp(&stubMutationFlow{
			pause: &businessflow.PauseResult{
				Name:        "Acme Plumbing",
				Paused:      []string{"Search $50.00"},
				RevertAt:    revertAt,
				RevertLabel: "Thursday Aug 27, 2026 09:00am",
			},
		})

		status, out := postJSON(t, app, "/ads/budget/pause", dto.PauseBudgetRequest{Phone: "61400123456", Campaign: 1, Duration: 1})
		assert.Equal(t, fiber.StatusOK, status)

		data := out.Data.(map[string]any)
		assert.Equal(t, "Thursday Aug 27, 2026 09:00am", data["date"])
	})

	t.Run("NoActiveCampaignsIs422", func(t *testing.T) {
		app := newTestApp(&stubMutationFlow{
			err: businessflow.NewBusinessError("NO_ACTIVE_CAMPAIGNS", "No active campaigns to pause", businessflow.ErrNoActiveCampaigns),
		})

		status, _ := postJSON(t, app, "/ads/budget/pause", dto.PauseBudgetRequest{Phone: "61400123456", Campaign: 1, Duration: 1})
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	})
}
