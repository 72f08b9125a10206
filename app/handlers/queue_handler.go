package handlers

import (
	businessflow "github.com/amirphl/carrier-pos/business_flow"
	"github.com/amirphl/carrier-pos/utils"
	"github.com/gofiber/fiber/v3"
)

// QueueHandlerInterface defines the contract for the operator's queue view
type QueueHandlerInterface interface {
	List(c fiber.Ctx) error
	Assist(c fiber.Ctx) error
	Remove(c fiber.Ctx) error
}

type QueueHandler struct {
	baseHandler
	queueFlow businessflow.QueueFlow
}

func NewQueueHandler(queueFlow businessflow.QueueFlow, opts ...Option) *QueueHandler {
	return &QueueHandler{
		baseHandler: newBaseHandler(opts...),
		queueFlow:   queueFlow,
	}
}

// List returns the waiting customers in check-in order
// @Summary List queue
// @Tags Queue
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.QueueListResponse} "Queue"
// @Router /api/v1/queue [get]
func (h *QueueHandler) List(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.queueFlow.List(ctx, utils.UTCNow())
	if err != nil {
		return h.FlowError(c, err, "Failed to load queue", "QUEUE_LIST_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Queue retrieved", result)
}

// Assist serves a waiting customer and returns their account
// @Summary Assist customer
// @Tags Queue
// @Produce json
// @Security BearerAuth
// @Param id path string true "Queue entry ID"
// @Success 200 {object} dto.APIResponse{data=dto.AssistResponse} "Customer assisted"
// @Failure 404 {object} dto.APIResponse "Queue entry or account not found"
// @Router /api/v1/queue/{id}/assist [post]
func (h *QueueHandler) Assist(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.queueFlow.Assist(ctx, c.Params("id"), h.metadata(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to assist customer", "QUEUE_ASSIST_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Customer assisted", result)
}

// Remove drops a waiting customer without serving them
// @Summary Remove from queue
// @Tags Queue
// @Produce json
// @Security BearerAuth
// @Param id path string true "Queue entry ID"
// @Success 200 {object} dto.APIResponse "Removed"
// @Failure 404 {object} dto.APIResponse "Queue entry not found"
// @Router /api/v1/queue/{id} [delete]
func (h *QueueHandler) Remove(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	if err := h.queueFlow.Remove(ctx, c.Params("id"), h.metadata(c)); err != nil {
		return h.FlowError(c, err, "Failed to remove queue entry", "QUEUE_REMOVE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Removed from queue", nil)
}
