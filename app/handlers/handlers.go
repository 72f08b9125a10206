// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/amirphl/carrier-pos/app/dto"
	businessflow "github.com/amirphl/carrier-pos/business_flow"
	"github.com/amirphl/carrier-pos/database"
	"github.com/amirphl/carrier-pos/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

const defaultRequestTimeout = 30 * time.Second

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
		return err.Field() + " must be one of: " + err.Param()
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

// baseHandler carries the response envelope helpers shared by every handler
type baseHandler struct {
	validator      *validator.Validate
	requestTimeout time.Duration
}

// Option configures a handler
type Option func(*baseHandler)

// WithRequestTimeout bounds the context handed to flows; non-positive values keep the default
func WithRequestTimeout(d time.Duration) Option {
	return func(h *baseHandler) {
		if d > 0 {
			h.requestTimeout = d
		}
	}
}

func newBaseHandler(opts ...Option) baseHandler {
	h := baseHandler{
		validator:      validator.New(),
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// bindJSON decodes and validates the request body, writing a 400 on failure
func (h *baseHandler) bindJSON(c fiber.Ctx, req any) (bool, error) {
	if err := c.Bind().JSON(req); err != nil {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	return h.validate(c, req)
}

func (h *baseHandler) validate(c fiber.Ctx, req any) (bool, error) {
	err := h.validator.Struct(req)
	if err == nil {
		return true, nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	}
	var validationErrors []string
	for _, fe := range fieldErrors {
		validationErrors = append(validationErrors, getValidationErrorMessage(fe))
	}
	return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *baseHandler) createRequestContext(c fiber.Ctx) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), h.requestTimeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	return ctx, cancel
}

// metadata describes the calling terminal for audit log lines
func (h *baseHandler) metadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))
	metadata.SetTerminalID(terminalID(c))
	if operator, ok := c.Locals("operator").(string); ok {
		metadata.SetOperator(operator)
	}
	return metadata
}

func terminalID(c fiber.Ctx) string {
	if id := strings.TrimSpace(c.Get(utils.TerminalIDHeader)); id != "" {
		return id
	}
	return utils.DefaultTerminalID
}

// errorStatus maps a flow error to its HTTP status; zero means unclassified
func errorStatus(err error) int {
	switch {
	case errors.Is(err, database.ErrNotInitialized):
		return fiber.StatusServiceUnavailable
	case businessflow.IsInvalidMDN(err),
		businessflow.IsInvalidIMEI(err),
		businessflow.IsCustomerNameRequired(err),
		businessflow.IsReasonRequired(err),
		businessflow.IsInvalidLineCount(err),
		businessflow.IsDeviceLabelRequired(err):
		return fiber.StatusBadRequest
	case businessflow.IsInvalidCredentials(err):
		return fiber.StatusUnauthorized
	case businessflow.IsOperatorDisabled(err):
		return fiber.StatusForbidden
	case businessflow.IsCustomerNotFound(err),
		businessflow.IsLineNotFound(err),
		businessflow.IsDeviceNotFound(err),
		businessflow.IsDeviceForSaleNotFound(err),
		businessflow.IsPlanNotFound(err),
		businessflow.IsQueueItemNotFound(err):
		return fiber.StatusNotFound
	case businessflow.IsDuplicateMDN(err),
		businessflow.IsDuplicateIMEI(err),
		businessflow.IsDeviceNotAvailable(err),
		businessflow.IsNoAvailableIMEI(err):
		return fiber.StatusConflict
	}
	return 0
}

// FlowError writes the response for an error returned by a business flow.
// Unclassified errors are logged and answered generically with fallbackMessage.
func (h *baseHandler) FlowError(c fiber.Ctx, err error, fallbackMessage, fallbackCode string) error {
	status := errorStatus(err)

	if status == fiber.StatusServiceUnavailable {
		return h.ErrorResponse(c, status, "Store is not initialized", "STORE_NOT_INITIALIZED", nil)
	}
	if status != 0 {
		code := fallbackCode
		message := fallbackMessage
		var be *businessflow.BusinessError
		if errors.As(err, &be) {
			code = be.Code
			message = be.Message
		}
		return h.ErrorResponse(c, status, message, code, nil)
	}

	log.Printf("%s: %v (request=%s)", fallbackMessage, err, c.Get("X-Request-ID"))
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}
