// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"fmt"
	"log"

	"github.com/AiiMS-Group/landbot/app/dto"
	businessflow "github.com/AiiMS-Group/landbot/business_flow"
	"github.com/AiiMS-Group/landbot/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AdsHandlerInterface defines the contract for ad mutation handlers
type AdsHandlerInterface interface {
	Spending(c fiber.Ctx) error
	Campaigns(c fiber.Ctx) error
	PauseBudget(c fiber.Ctx) error
	PauseAds(c fiber.Ctx) error
	EnableAds(c fiber.Ctx) error
}

// AdsHandler handles budget and status mutation HTTP requests
type AdsHandler struct {
	mutationFlow businessflow.MutationFlow
	validator    *validator.Validate
}

// NewAdsHandler creates a new ads handler
func NewAdsHandler(mutationFlow businessflow.MutationFlow) *AdsHandler {
	return &AdsHandler{
		mutationFlow: mutationFlow,
		validator:    validator.New(),
	}
}

func (h *AdsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AdsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Spending returns the summed ad spend for the requested date range.
func (h *AdsHandler) Spending(c fiber.Ctx) error {
	var req dto.SpendingRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/ads/spending")
	defer cancel()

	result, err := h.mutationFlow.Spending(ctx, req.Phone, req.Date)
	if err != nil {
		return h.businessErrorResponse(c, err, "Failed to fetch spending")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Spending fetched successfully", dto.SpendingResponse{
		Name:     result.Name,
		Spend:    utils.FormatCurrency(result.Spend),
		Warnings: warningStrings(result.Warnings),
	})
}

// Campaigns lists active budget groups for the pause menu.
func (h *AdsHandler) Campaigns(c fiber.Ctx) error {
	var req dto.CampaignsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/ads/budget/campaigns")
	defer cancel()

	result, err := h.mutationFlow.ActiveCampaigns(ctx, req.Phone)
	if err != nil {
		return h.businessErrorResponse(c, err, "Failed to fetch campaigns")
	}

	displays := make([]string, 0, len(result.Groups))
	for _, g := range result.Groups {
		displays = append(displays, g.Display)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaigns fetched successfully", dto.CampaignsResponse{
		Name:      result.Name,
		Budget:    utils.FormatCurrency(result.CurrentBudget),
		Campaigns: displays,
	})
}

// PauseBudget pauses one budget group, or all of them when the index is
// past the end of the listing.
func (h *AdsHandler) PauseBudget(c fiber.Ctx) error {
	var req dto.PauseBudgetRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/ads/budget/pause")
	defer cancel()

	result, err := h.mutationFlow.PauseBudget(ctx, req.Phone, req.Campaign, req.Duration)
	if err != nil {
		return h.businessErrorResponse(c, err, "Failed to pause budget")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Budget paused successfully", dto.PauseResponse{
		Name:   result.Name,
		Paused: result.Paused,
		Date:   result.RevertLabel,
	})
}

// PauseAds pauses every campaign via the status mechanism.
func (h *AdsHandler) PauseAds(c fiber.Ctx) error {
	var req dto.PauseAdsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/ads/pause")
	defer cancel()

	result, err := h.mutationFlow.PauseAds(ctx, req.Phone, req.Duration)
	if err != nil {
		return h.businessErrorResponse(c, err, "Failed to pause ads")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Ads paused successfully", dto.PauseResponse{
		Name:   result.Name,
		Paused: result.Paused,
		Date:   result.RevertLabel,
	})
}

// EnableAds re-enables every campaign immediately.
func (h *AdsHandler) EnableAds(c fiber.Ctx) error {
	var req dto.EnableAdsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/ads/enable")
	defer cancel()

	name, err := h.mutationFlow.EnableAds(ctx, req.Phone)
	if err != nil {
		return h.businessErrorResponse(c, err, "Failed to enable ads")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Ads enabled successfully", dto.EnableAdsResponse{
		Name: name,
	})
}

// businessErrorResponse maps business flow failures onto HTTP statuses.
// Unexpected errors are logged and answered with a generic 500 so upstream
// details never leak into the chat transcript.
func (h *AdsHandler) businessErrorResponse(c fiber.Ctx, err error, fallback string) error {
	switch {
	case businessflow.IsAccountNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
	case businessflow.IsFeatureNotEnabled(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "This feature is not enabled on this account", "FEATURE_NOT_ENABLED", nil)
	case businessflow.IsAccountNotConfigured(err):
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Account is not fully configured", "ACCOUNT_NOT_CONFIGURED", nil)
	case businessflow.IsNoActiveCampaigns(err):
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "No active campaigns", "NO_ACTIVE_CAMPAIGNS", nil)
	case businessflow.IsInvalidDuration(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pause duration", "INVALID_DURATION", nil)
	}

	log.Println(fallback, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallback, "INTERNAL_ERROR", nil)
}

func validationMessages(err error) []string {
	var messages []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			messages = append(messages, getValidationErrorMessage(verr))
		}
	}
	return messages
}

func warningStrings(failures []businessflow.AccountError) []string {
	var out []string
	for _, f := range failures {
		out = append(out, fmt.Sprintf("account %s unavailable", f.AccountID))
	}
	return out
}
