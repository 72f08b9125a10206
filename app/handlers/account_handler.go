package handlers

import (
	"strconv"

	"github.com/amirphl/carrier-pos/app/dto"
	businessflow "github.com/amirphl/carrier-pos/business_flow"
	"github.com/gofiber/fiber/v3"
)

// AccountHandlerInterface defines the contract for account and line handlers
type AccountHandlerInterface interface {
	FindByMDN(c fiber.Ctx) error
	CreateCustomer(c fiber.Ctx) error
	LoadAccount(c fiber.Ctx) error
	CreateLine(c fiber.Ctx) error
	UpdateLine(c fiber.Ctx) error
}

// AccountHandler serves the account screen and the line edit form
type AccountHandler struct {
	baseHandler
	accountFlow businessflow.AccountFlow
	lineFlow    businessflow.LineFlow
}

func NewAccountHandler(accountFlow businessflow.AccountFlow, lineFlow businessflow.LineFlow, opts ...Option) *AccountHandler {
	return &AccountHandler{
		baseHandler: newBaseHandler(opts...),
		accountFlow: accountFlow,
		lineFlow:    lineFlow,
	}
}

// FindByMDN opens the account owning a line
// @Summary Find customer by MDN
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param mdn path string true "10-digit MDN"
// @Success 200 {object} dto.APIResponse{data=dto.AccountResponse} "Account"
// @Failure 400 {object} dto.APIResponse "Invalid MDN"
// @Failure 404 {object} dto.APIResponse "Customer not found"
// @Router /api/v1/customers/by-mdn/{mdn} [get]
func (h *AccountHandler) FindByMDN(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.accountFlow.FindCustomer(ctx, c.Params("mdn"))
	if err != nil {
		return h.FlowError(c, err, "Customer lookup failed", "CUSTOMER_LOOKUP_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Account retrieved", result)
}

// CreateCustomer opens a new account
// @Summary Create customer
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCustomerRequest true "Customer"
// @Success 201 {object} dto.APIResponse{data=dto.CustomerDTO} "Customer created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/customers [post]
func (h *AccountHandler) CreateCustomer(c fiber.Ctx) error {
	var req dto.CreateCustomerRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.accountFlow.CreateCustomer(ctx, &req, h.metadata(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to create customer", "CUSTOMER_CREATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Customer created", result)
}

// LoadAccount returns a customer and all of their lines
// @Summary Load account
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param account path int true "Account number"
// @Success 200 {object} dto.APIResponse{data=dto.AccountResponse} "Account"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Router /api/v1/accounts/{account} [get]
func (h *AccountHandler) LoadAccount(c fiber.Ctx) error {
	accountNumber, ok := parseID(c.Params("account"))
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account number", "INVALID_ACCOUNT_NUMBER", nil)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.accountFlow.LoadAccount(ctx, accountNumber)
	if err != nil {
		return h.FlowError(c, err, "Failed to load account", "ACCOUNT_LOAD_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Account retrieved", result)
}

// CreateLine adds a line to an account
// @Summary Create line
// @Tags Lines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param account path int true "Account number"
// @Param request body dto.CreateLineRequest true "Line"
// @Success 201 {object} dto.APIResponse{data=dto.LineMutationResponse} "Line created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Account or device not found"
// @Failure 409 {object} dto.APIResponse "MDN or IMEI already in use"
// @Router /api/v1/accounts/{account}/lines [post]
func (h *AccountHandler) CreateLine(c fiber.Ctx) error {
	accountNumber, ok := parseID(c.Params("account"))
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account number", "INVALID_ACCOUNT_NUMBER", nil)
	}

	var req dto.CreateLineRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.MDN = businessflow.NormalizeMDN(req.MDN)
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.lineFlow.CreateLine(ctx, accountNumber, &req, h.metadata(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to create line", "LINE_CREATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// UpdateLine replaces the editable fields of a line
// @Summary Update line
// @Description Name, IMEI, plan and features are replaced as submitted; empty values clear them
// @Tags Lines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param mdn path string true "10-digit MDN"
// @Param request body dto.UpdateLineRequest true "Line fields"
// @Success 200 {object} dto.APIResponse{data=dto.LineMutationResponse} "Line updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Line or device not found"
// @Failure 409 {object} dto.APIResponse "IMEI already in use"
// @Router /api/v1/lines/{mdn} [put]
func (h *AccountHandler) UpdateLine(c fiber.Ctx) error {
	var req dto.UpdateLineRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.lineFlow.UpdateLine(ctx, c.Params("mdn"), &req, h.metadata(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to update line", "LINE_UPDATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
