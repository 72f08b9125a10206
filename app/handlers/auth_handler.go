package handlers

import (
	"github.com/amirphl/carrier-pos/app/dto"
	businessflow "github.com/amirphl/carrier-pos/business_flow"
	"github.com/gofiber/fiber/v3"
)

// AuthHandlerInterface defines the contract for operator authentication handlers
type AuthHandlerInterface interface {
	Login(c fiber.Ctx) error
	RefreshToken(c fiber.Ctx) error
}

// AuthHandler handles operator sign-in
type AuthHandler struct {
	baseHandler
	authFlow businessflow.OperatorAuthFlow
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authFlow businessflow.OperatorAuthFlow, opts ...Option) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(opts...),
		authFlow:    authFlow,
	}
}

// Login handles operator login
// @Summary Operator login
// @Description Authenticate a store operator and issue an access/refresh token pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.OperatorLoginRequest true "Operator credentials"
// @Success 200 {object} dto.APIResponse{data=dto.OperatorLoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 403 {object} dto.APIResponse "Operator login not configured"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.OperatorLoginRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.authFlow.Login(ctx, &req, h.metadata(c))
	if err != nil {
		return h.FlowError(c, err, "Login failed", "LOGIN_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// RefreshToken exchanges a refresh token for a new pair
// @Summary Refresh operator token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.OperatorLoginResponse} "Token refreshed"
// @Failure 401 {object} dto.APIResponse "Invalid refresh token"
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.authFlow.RefreshToken(ctx, &req, h.metadata(c))
	if err != nil {
		return h.FlowError(c, err, "Token refresh failed", "TOKEN_REFRESH_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Token refreshed", result)
}
