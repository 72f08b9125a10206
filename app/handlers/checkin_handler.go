package handlers

import (
	"context"
	"errors"

	"github.com/amirphl/carrier-pos/app/dto"
	businessflow "github.com/amirphl/carrier-pos/business_flow"
	"github.com/amirphl/carrier-pos/checkin"
	"github.com/gofiber/fiber/v3"
)

// CheckInHandlerInterface defines the contract for the check-in keypad
type CheckInHandlerInterface interface {
	Lookup(c fiber.Ctx) error
	CheckIn(c fiber.Ctx) error
	VisitReasons(c fiber.Ctx) error
}

// CheckInHandler serves the customer-facing check-in terminal
type CheckInHandler struct {
	baseHandler
	searches    *checkin.Registry
	queueFlow   businessflow.QueueFlow
	catalogFlow businessflow.CatalogFlow
}

func NewCheckInHandler(searches *checkin.Registry, queueFlow businessflow.QueueFlow, catalogFlow businessflow.CatalogFlow, opts ...Option) *CheckInHandler {
	return &CheckInHandler{
		baseHandler: newBaseHandler(opts...),
		searches:    searches,
		queueFlow:   queueFlow,
		catalogFlow: catalogFlow,
	}
}

// NameLookup adapts the account flow to the check-in searcher
func NameLookup(accountFlow businessflow.AccountFlow) checkin.LookupFunc {
	return func(ctx context.Context, mdn string) (*string, error) {
		resp, err := accountFlow.LookupCustomerName(ctx, mdn)
		if err != nil {
			return nil, err
		}
		return resp.Name, nil
	}
}

// Lookup previews the owner's name while the MDN is typed. A newer lookup from the
// same terminal supersedes this one.
// @Summary Check-in name preview
// @Tags Check-in
// @Produce json
// @Param mdn query string true "MDN typed so far"
// @Param X-Terminal-ID header string false "Terminal issuing the lookup"
// @Success 200 {object} dto.APIResponse{data=dto.CustomerNameResponse} "Lookup result"
// @Failure 409 {object} dto.APIResponse "Superseded by a newer lookup"
// @Failure 503 {object} dto.APIResponse "Store not initialized"
// @Router /api/v1/checkin/lookup [get]
func (h *CheckInHandler) Lookup(c fiber.Ctx) error {
	mdn := businessflow.NormalizeMDN(c.Query("mdn"))

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	name, err := h.searches.For(terminalID(c)).Lookup(ctx, mdn)
	if err != nil {
		if errors.Is(err, checkin.ErrSuperseded) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Lookup superseded by a newer request", "LOOKUP_SUPERSEDED", nil)
		}
		return h.FlowError(c, err, "Customer lookup failed", "CUSTOMER_LOOKUP_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Lookup completed", dto.CustomerNameResponse{
		MDN:   mdn,
		Found: name != nil,
		Name:  name,
	})
}

// CheckIn submits a walk-in customer to the service queue
// @Summary Check in
// @Description Announce a customer; the queue resolves the MDN asynchronously
// @Tags Check-in
// @Accept json
// @Produce json
// @Param request body dto.CheckInRequest true "MDN and visit reason"
// @Success 202 {object} dto.APIResponse{data=dto.CheckInResponse} "Check-in received"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/checkin [post]
func (h *CheckInHandler) CheckIn(c fiber.Ctx) error {
	var req dto.CheckInRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.MDN = businessflow.NormalizeMDN(req.MDN)
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.queueFlow.CheckIn(ctx, &req, h.metadata(c))
	if err != nil {
		return h.FlowError(c, err, "Check-in failed", "CHECK_IN_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusAccepted, result.Message, result)
}

// VisitReasons returns the reason menu of the check-in terminal
// @Summary Visit reasons
// @Tags Check-in
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListVisitReasonsResponse} "Visit reasons"
// @Router /api/v1/checkin/reasons [get]
func (h *CheckInHandler) VisitReasons(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.catalogFlow.ListVisitReasons(ctx)
	if err != nil {
		return h.FlowError(c, err, "Failed to load visit reasons", "VISIT_REASONS_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Visit reasons retrieved", result)
}
