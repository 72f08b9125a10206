package handlers

import (
	"strconv"

	businessflow "github.com/amirphl/carrier-pos/business_flow"
	"github.com/gofiber/fiber/v3"
)

// CatalogHandlerInterface defines the contract for the plan and feature shops
type CatalogHandlerInterface interface {
	ListPlans(c fiber.Ctx) error
	ListFeatures(c fiber.Ctx) error
	QuotePlan(c fiber.Ctx) error
}

type CatalogHandler struct {
	baseHandler
	catalogFlow businessflow.CatalogFlow
}

func NewCatalogHandler(catalogFlow businessflow.CatalogFlow, opts ...Option) *CatalogHandler {
	return &CatalogHandler{
		baseHandler: newBaseHandler(opts...),
		catalogFlow: catalogFlow,
	}
}

// ListPlans returns the tiered plans and the plan shop
// @Summary List plans
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ListPlansResponse} "Plans"
// @Router /api/v1/catalog/plans [get]
func (h *CatalogHandler) ListPlans(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.catalogFlow.ListPlans(ctx)
	if err != nil {
		return h.FlowError(c, err, "Failed to load plans", "PLAN_LIST_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Plans retrieved", result)
}

// ListFeatures returns the feature shop
// @Summary List features
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ListFeaturesResponse} "Features"
// @Router /api/v1/catalog/features [get]
func (h *CatalogHandler) ListFeatures(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.catalogFlow.ListFeatures(ctx)
	if err != nil {
		return h.FlowError(c, err, "Failed to load features", "FEATURE_LIST_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Features retrieved", result)
}

// QuotePlan prices a plan for a number of lines
// @Summary Quote plan
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param lines query int false "Number of lines (default 1)"
// @Success 200 {object} dto.APIResponse{data=dto.PlanQuoteResponse} "Quote"
// @Failure 400 {object} dto.APIResponse "Invalid line count"
// @Failure 404 {object} dto.APIResponse "Plan not found"
// @Router /api/v1/catalog/plans/{id}/quote [get]
func (h *CatalogHandler) QuotePlan(c fiber.Ctx) error {
	lines := 1
	if raw := c.Query("lines"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "lines must be a number", "INVALID_LINE_COUNT", nil)
		}
		lines = n
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.catalogFlow.QuotePlan(ctx, c.Params("id"), lines)
	if err != nil {
		return h.FlowError(c, err, "Failed to quote plan", "PLAN_QUOTE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Plan quoted", result)
}
