// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/app/middleware"
	businessflow "github.com/amirphl/pesquisa-campo/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	log "github.com/sirupsen/logrus"
)

const requestTimeout = 30 * time.Second

// baseHandler carries the response helpers every handler shares
type baseHandler struct {
	validator *validator.Validate
}

func newBaseHandler() baseHandler {
	return baseHandler{validator: validator.New()}
}

// ErrorResponse standard JSON error
func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: &dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// bindJSON decodes and validates a JSON body, writing the 400 response itself on failure
func (h *baseHandler) bindJSON(c fiber.Ctx, req any) (bool, error) {
	if err := c.Bind().JSON(req); err != nil {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if errs := h.validate(req); len(errs) > 0 {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}
	return true, nil
}

func (h *baseHandler) validate(req any) []string {
	err := h.validator.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, getValidationErrorMessage(fe))
	}
	return messages
}

// createRequestContext bounds flow calls made on behalf of one request
func (h *baseHandler) createRequestContext(c fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), requestTimeout)
}

func (h *baseHandler) session(c fiber.Ctx) *businessflow.Session {
	return middleware.SessionFromContext(c)
}

func (h *baseHandler) metadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(fiber.HeaderXRequestID))
	if metadata.RequestID == "" {
		metadata.SetRequestID(string(c.Response().Header.Peek(fiber.HeaderXRequestID)))
	}
	return metadata
}

// FlowError maps a business flow failure onto an HTTP status and stable error code.
// Failures without a business code fall back to fallbackMessage/fallbackCode.
func (h *baseHandler) FlowError(c fiber.Ctx, err error, fallbackMessage, fallbackCode string) error {
	status := statusForError(err)

	message, code := fallbackMessage, fallbackCode
	var be *businessflow.BusinessError
	if errors.As(err, &be) && be.Code != "" {
		code = be.Code
		if status != fiber.StatusInternalServerError && status != fiber.StatusServiceUnavailable {
			message = be.Message
		}
	}

	if status >= fiber.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"code":   code,
			"path":   c.Path(),
			"method": c.Method(),
		}).Error(fallbackMessage)
	}
	return h.ErrorResponse(c, status, message, code, nil)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, businessflow.ErrSessionRequired):
		return fiber.StatusUnauthorized
	case businessflow.IsAccountNotFound(err), businessflow.IsIncorrectPassword(err):
		return fiber.StatusUnauthorized
	case businessflow.IsAccountInactive(err), businessflow.IsAccessDenied(err):
		return fiber.StatusForbidden
	case businessflow.IsCampaignNotFound(err),
		businessflow.IsDraftNotFound(err),
		businessflow.IsCompanyNotFound(err),
		errors.Is(err, businessflow.ErrResearcherNotFound),
		businessflow.IsVoucherNotFound(err):
		return fiber.StatusNotFound
	case businessflow.IsCampaignVersionConflict(err),
		businessflow.IsEmailAlreadyExists(err),
		businessflow.IsVoucherExhausted(err):
		return fiber.StatusConflict
	case errors.Is(err, businessflow.ErrDraftStoreUnavailable):
		return fiber.StatusServiceUnavailable
	case businessflow.IsCampaignValidationError(err),
		businessflow.IsEditorStateError(err),
		businessflow.IsSurveyRejected(err),
		businessflow.IsCaptchaInvalid(err),
		businessflow.IsInvalidLogo(err),
		businessflow.IsInvalidRouteDate(err),
		errors.Is(err, businessflow.ErrInvalidCampaignID),
		errors.Is(err, businessflow.ErrUnsupportedExportFormat):
		return fiber.StatusBadRequest
	}

	var be *businessflow.BusinessError
	if errors.As(err, &be) && be.Code == "VALIDATION_ERROR" {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "len":
		return err.Field() + " must be exactly " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + strings.ReplaceAll(err.Param(), " ", ", ")
	case "uuid":
		return err.Field() + " must be a valid UUID"
	case "url":
		return err.Field() + " must be a valid URL"
	case "datetime":
		return fmt.Sprintf("%s must match the layout %s", err.Field(), err.Param())
	case "numeric":
		return err.Field() + " must contain only numbers"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
