package handlers

import (
	"strconv"

	"github.com/amirphl/carrier-pos/app/dto"
	businessflow "github.com/amirphl/carrier-pos/business_flow"
	"github.com/gofiber/fiber/v3"
)

// InventoryHandlerInterface defines the contract for device inventory and shop handlers
type InventoryHandlerInterface interface {
	ListDevices(c fiber.Ctx) error
	GetDevice(c fiber.Ctx) error
	AvailableIMEIs(c fiber.Ctx) error
	RandomIMEI(c fiber.Ctx) error
	IMEIUsage(c fiber.Ctx) error
	ExportInventory(c fiber.Ctx) error

	ListShop(c fiber.Ctx) error
	GetShopDevice(c fiber.Ctx) error
	SelectShopDevice(c fiber.Ctx) error
	CreateShopDevice(c fiber.Ctx) error
	UpdateShopDevice(c fiber.Ctx) error
	DeleteShopDevice(c fiber.Ctx) error
}

type InventoryHandler struct {
	baseHandler
	inventoryFlow businessflow.InventoryFlow
}

func NewInventoryHandler(inventoryFlow businessflow.InventoryFlow, opts ...Option) *InventoryHandler {
	return &InventoryHandler{
		baseHandler:   newBaseHandler(opts...),
		inventoryFlow: inventoryFlow,
	}
}

// ListDevices returns the device picker grouped by manufacturer
// @Summary List devices
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param q query string false "Label or IMEI filter"
// @Param available query bool false "Only devices no line holds"
// @Success 200 {object} dto.APIResponse{data=dto.ListDevicesResponse} "Devices"
// @Router /api/v1/devices [get]
func (h *InventoryHandler) ListDevices(c fiber.Ctx) error {
	req := dto.ListDevicesRequest{
		Query:         c.Query("q"),
		AvailableOnly: queryBool(c, "available"),
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.inventoryFlow.ListDevices(ctx, &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to list devices", "DEVICE_LIST_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Devices retrieved", result)
}

// GetDevice returns the inventory device with an IMEI
// @Summary Get device
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param imei path string true "15-digit IMEI"
// @Success 200 {object} dto.APIResponse{data=dto.DeviceDTO} "Device"
// @Failure 404 {object} dto.APIResponse "Device not found"
// @Router /api/v1/devices/{imei} [get]
func (h *InventoryHandler) GetDevice(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.inventoryFlow.DeviceByIMEI(ctx, c.Params("imei"))
	if err != nil {
		return h.FlowError(c, err, "Failed to load device", "DEVICE_LOOKUP_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Device retrieved", result)
}

// AvailableIMEIs lists device IMEIs no line holds
// @Summary Available IMEIs
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AvailableIMEIsResponse} "IMEIs"
// @Router /api/v1/inventory/imeis/available [get]
func (h *InventoryHandler) AvailableIMEIs(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.inventoryFlow.AvailableIMEIs(ctx)
	if err != nil {
		return h.FlowError(c, err, "Failed to list available IMEIs", "IMEI_LIST_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Available IMEIs retrieved", result)
}

// RandomIMEI picks one available IMEI; imei is null when the inventory is exhausted
// @Summary Random available IMEI
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.RandomIMEIResponse} "IMEI"
// @Router /api/v1/inventory/imeis/random [get]
func (h *InventoryHandler) RandomIMEI(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.inventoryFlow.RandomAvailableIMEI(ctx)
	if err != nil {
		return h.FlowError(c, err, "Failed to pick an IMEI", "IMEI_PICK_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "IMEI picked", result)
}

// IMEIUsage tells whether an IMEI is held by a line other than exclude_mdn
// @Summary IMEI usage
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param imei path string true "15-digit IMEI"
// @Param exclude_mdn query string false "Line being edited"
// @Success 200 {object} dto.APIResponse{data=dto.IMEIUsageResponse} "Usage"
// @Failure 400 {object} dto.APIResponse "Invalid IMEI"
// @Router /api/v1/inventory/imeis/{imei}/in-use [get]
func (h *InventoryHandler) IMEIUsage(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.inventoryFlow.IMEIUsage(ctx, c.Params("imei"), c.Query("exclude_mdn"))
	if err != nil {
		return h.FlowError(c, err, "Failed to check IMEI", "IMEI_CHECK_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "IMEI usage retrieved", result)
}

// ExportInventory downloads the inventory and the shop as an xlsx workbook
// @Summary Export inventory
// @Tags Inventory
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file "Workbook"
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/inventory/export [get]
func (h *InventoryHandler) ExportInventory(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	data, err := h.inventoryFlow.ExportInventory(ctx)
	if err != nil {
		return h.FlowError(c, err, "Failed to export inventory", "INVENTORY_EXPORT_FAILED")
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+businessflow.InventoryExportFilename)
	return c.Send(data)
}

// ListShop returns the device shop; q searches available devices
// @Summary List devices for sale
// @Tags Shop
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search text"
// @Param available query bool false "Only available devices"
// @Success 200 {object} dto.APIResponse{data=dto.ListDevicesForSaleResponse} "Devices"
// @Router /api/v1/shop/devices [get]
func (h *InventoryHandler) ListShop(c fiber.Ctx) error {
	req := dto.ListDevicesForSaleRequest{
		Query:         c.Query("q"),
		AvailableOnly: queryBool(c, "available"),
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.inventoryFlow.ListDevicesForSale(ctx, &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to load devices", "SHOP_LIST_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Devices retrieved", result)
}

// GetShopDevice returns one device for sale
// @Summary Get device for sale
// @Tags Shop
// @Produce json
// @Security BearerAuth
// @Param id path int true "Device ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeviceForSaleDTO} "Device"
// @Failure 404 {object} dto.APIResponse "Device not found"
// @Router /api/v1/shop/devices/{id} [get]
func (h *InventoryHandler) GetShopDevice(c fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid device ID", "INVALID_DEVICE_ID", nil)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.inventoryFlow.GetDeviceForSale(ctx, id)
	if err != nil {
		return h.FlowError(c, err, "Failed to load device", "SHOP_LOOKUP_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Device retrieved", result)
}

// SelectShopDevice pairs a device for sale with a free IMEI from inventory
// @Summary Select device for sale
// @Tags Shop
// @Produce json
// @Security BearerAuth
// @Param id path int true "Device ID"
// @Success 200 {object} dto.APIResponse{data=dto.SelectDeviceForSaleResponse} "Selection"
// @Failure 404 {object} dto.APIResponse "Device not found"
// @Failure 409 {object} dto.APIResponse "Device unavailable or inventory exhausted"
// @Router /api/v1/shop/devices/{id}/select [post]
func (h *InventoryHandler) SelectShopDevice(c fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid device ID", "INVALID_DEVICE_ID", nil)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.inventoryFlow.SelectDeviceForSale(ctx, id, h.metadata(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to select device", "SHOP_SELECT_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Device selected", result)
}

// CreateShopDevice adds a device to the shop
// @Summary Create device for sale
// @Tags Shop
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDeviceForSaleRequest true "Device"
// @Success 201 {object} dto.APIResponse{data=dto.DeviceForSaleDTO} "Device created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/shop/devices [post]
func (h *InventoryHandler) CreateShopDevice(c fiber.Ctx) error {
	var req dto.CreateDeviceForSaleRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.inventoryFlow.CreateDeviceForSale(ctx, &req, h.metadata(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to create device", "SHOP_CREATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Device created", result)
}

// UpdateShopDevice changes the fields present in the request
// @Summary Update device for sale
// @Tags Shop
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Device ID"
// @Param request body dto.UpdateDeviceForSaleRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.DeviceForSaleDTO} "Device updated"
// @Failure 404 {object} dto.APIResponse "Device not found"
// @Router /api/v1/shop/devices/{id} [put]
func (h *InventoryHandler) UpdateShopDevice(c fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid device ID", "INVALID_DEVICE_ID", nil)
	}
	var req dto.UpdateDeviceForSaleRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.inventoryFlow.UpdateDeviceForSale(ctx, id, &req, h.metadata(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to update device", "SHOP_UPDATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Device updated", result)
}

// DeleteShopDevice removes a device from the shop
// @Summary Delete device for sale
// @Tags Shop
// @Produce json
// @Security BearerAuth
// @Param id path int true "Device ID"
// @Success 200 {object} dto.APIResponse "Device deleted"
// @Failure 404 {object} dto.APIResponse "Device not found"
// @Router /api/v1/shop/devices/{id} [delete]
func (h *InventoryHandler) DeleteShopDevice(c fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid device ID", "INVALID_DEVICE_ID", nil)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	if err := h.inventoryFlow.DeleteDeviceForSale(ctx, id, h.metadata(c)); err != nil {
		return h.FlowError(c, err, "Failed to delete device", "SHOP_DELETE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Device deleted", nil)
}

func queryBool(c fiber.Ctx, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}
