package handlers

import (
	"context"
	"log"
	"time"

	"github.com/amirphl/carrier-pos/app/dto"
	"github.com/amirphl/carrier-pos/database"
	"github.com/amirphl/carrier-pos/utils"
	"github.com/gofiber/fiber/v3"
)

// StoreLifecycle is the part of the store the health and retry endpoints need
type StoreLifecycle interface {
	State() database.State
	Initialize(ctx context.Context) error
}

// StoreHandlerInterface defines the contract for store lifecycle handlers
type StoreHandlerInterface interface {
	Health(c fiber.Ctx) error
	Status(c fiber.Ctx) error
	Initialize(c fiber.Ctx) error
}

// StoreHandler reports and retries store initialization
type StoreHandler struct {
	baseHandler
	store StoreLifecycle
}

func NewStoreHandler(store StoreLifecycle, opts ...Option) *StoreHandler {
	return &StoreHandler{
		baseHandler: newBaseHandler(opts...),
		store:       store,
	}
}

// Health reports liveness; the service is up even while the store is not
// @Summary Health check
// @Tags Store
// @Produce json
// @Success 200 {object} dto.APIResponse "Service is healthy"
// @Router /health [get]
func (h *StoreHandler) Health(c fiber.Ctx) error {
	return h.SuccessResponse(c, fiber.StatusOK, "Service is healthy", fiber.Map{
		"status":    "ok",
		"store":     h.store.State().String(),
		"timestamp": utils.UTCNow().Unix(),
		"service":   "carrier-pos",
	})
}

// Status reports the store lifecycle state
// @Summary Store status
// @Tags Store
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StoreStatusResponse} "Store state"
// @Router /api/v1/store/status [get]
func (h *StoreHandler) Status(c fiber.Ctx) error {
	return h.SuccessResponse(c, fiber.StatusOK, "Store state retrieved", dto.StoreStatusResponse{
		State: h.store.State().String(),
	})
}

// Initialize retries opening the store
// @Summary Initialize store
// @Description Provision the store from its template if needed, open it and verify its tables
// @Tags Store
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StoreStatusResponse} "Store ready"
// @Failure 503 {object} dto.APIResponse "Store could not be initialized"
// @Router /api/v1/store/initialize [post]
func (h *StoreHandler) Initialize(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := h.store.Initialize(ctx); err != nil {
		log.Printf("Store initialization failed: %v", err)
		return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Store could not be initialized", "STORE_INITIALIZATION_FAILED", err.Error())
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Store initialized", dto.StoreStatusResponse{
		State: h.store.State().String(),
	})
}
