// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/AiiMS-Group/landbot/app/dto"
	businessflow "github.com/AiiMS-Group/landbot/business_flow"
	"github.com/AiiMS-Group/landbot/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// StatisticsHandlerInterface defines the contract for statistics handlers
type StatisticsHandlerInterface interface {
	Report(c fiber.Ctx) error
}

// StatisticsHandler handles metric report HTTP requests
type StatisticsHandler struct {
	statsFlow businessflow.StatisticsFlow
	validator *validator.Validate
}

// NewStatisticsHandler creates a new statistics handler
func NewStatisticsHandler(statsFlow businessflow.StatisticsFlow) *StatisticsHandler {
	return &StatisticsHandler{
		statsFlow: statsFlow,
		validator: validator.New(),
	}
}

func (h *StatisticsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *StatisticsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Report returns the combined ads and call metric bundle for a date range.
func (h *StatisticsHandler) Report(c fiber.Ctx) error {
	var req dto.StatisticsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/statistics")
	defer cancel()

	report, err := h.statsFlow.Report(ctx, req.Phone, req.Date)
	if err != nil {
		switch {
		case businessflow.IsAccountNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		case businessflow.IsAccountNotConfigured(err):
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Account is not fully configured", "ACCOUNT_NOT_CONFIGURED", nil)
		}
		log.Println("Statistics report failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build statistics report", "INTERNAL_ERROR", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Statistics fetched successfully", dto.StatisticsResponse{
		Name:        report.Name,
		DateName:    report.DateLabel,
		Spend:       utils.FormatCurrency(report.Spend),
		Clicks:      report.Clicks,
		Calls:       report.Calls,
		Answered:    report.Answered,
		Missed:      report.Missed,
		CostPerCall: utils.FormatCurrency(report.CostPerCall),
		ClickToCall: utils.FormatNumber(report.ClickToCall) + "%",
		Warnings:    warningStrings(report.Warnings),
	})
}
