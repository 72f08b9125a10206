package businessflow

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"strings"

	"github.com/amirphl/carrier-pos/app/dto"
	"github.com/amirphl/carrier-pos/models"
	"github.com/amirphl/carrier-pos/repository"
	"github.com/amirphl/carrier-pos/utils"
)

// InventoryFlow covers the device inventory, IMEI availability and the device shop
type InventoryFlow interface {
	DeviceByIMEI(ctx context.Context, imei string) (*dto.DeviceDTO, error)
	ListDevices(ctx context.Context, req *dto.ListDevicesRequest) (*dto.ListDevicesResponse, error)
	AvailableIMEIs(ctx context.Context) (*dto.AvailableIMEIsResponse, error)
	RandomAvailableIMEI(ctx context.Context) (*dto.RandomIMEIResponse, error)
	IsIMEIAvailable(ctx context.Context, imei string) (bool, error)
	IsIMEIInUse(ctx context.Context, imei, excludeMDN string) (bool, error)
	IMEIUsage(ctx context.Context, imei, excludeMDN string) (*dto.IMEIUsageResponse, error)

	ListDevicesForSale(ctx context.Context, req *dto.ListDevicesForSaleRequest) (*dto.ListDevicesForSaleResponse, error)
	SearchDevicesForSale(ctx context.Context, query string) (*dto.ListDevicesForSaleResponse, error)
	GetDeviceForSale(ctx context.Context, id int64) (*dto.DeviceForSaleDTO, error)
	SelectDeviceForSale(ctx context.Context, id int64, metadata *ClientMetadata) (*dto.SelectDeviceForSaleResponse, error)
	CreateDeviceForSale(ctx context.Context, req *dto.CreateDeviceForSaleRequest, metadata *ClientMetadata) (*dto.DeviceForSaleDTO, error)
	UpdateDeviceForSale(ctx context.Context, id int64, req *dto.UpdateDeviceForSaleRequest, metadata *ClientMetadata) (*dto.DeviceForSaleDTO, error)
	DeleteDeviceForSale(ctx context.Context, id int64, metadata *ClientMetadata) error

	ExportInventory(ctx context.Context) ([]byte, error)
}

type InventoryFlowImpl struct {
	deviceRepo        repository.DeviceRepository
	lineRepo          repository.LineRepository
	deviceForSaleRepo repository.DeviceForSaleRepository
	pick              func(n int) int
}

func NewInventoryFlow(deviceRepo repository.DeviceRepository, lineRepo repository.LineRepository, deviceForSaleRepo repository.DeviceForSaleRepository) InventoryFlow {
	return &InventoryFlowImpl{
		deviceRepo:        deviceRepo,
		lineRepo:          lineRepo,
		deviceForSaleRepo: deviceForSaleRepo,
		pick:              rand.IntN,
	}
}

// manufacturerOrder is the display order of the device picker groups
var manufacturerOrder = []string{"Apple iPhone", "Apple iPad", "Apple Watch", "Samsung", "Google Pixel", "Other"}

func (f *InventoryFlowImpl) DeviceByIMEI(ctx context.Context, imei string) (_ *dto.DeviceDTO, err error) {
	defer wrapError(&err, "DEVICE_LOOKUP_FAILED", "Failed to look up device")

	parsed, err := parseIMEI(imei)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, NewBusinessError("INVALID_IMEI", "IMEI must be exactly 15 digits", ErrInvalidIMEI)
	}

	device, err := f.deviceRepo.ByIMEI(ctx, *parsed)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, NewBusinessError("DEVICE_NOT_FOUND", "No device with this IMEI in inventory", ErrDeviceNotFound)
	}

	result := ToDeviceDTO(*device)
	return &result, nil
}

// ListDevices returns the inventory grouped by manufacturer, optionally filtered by
// label or IMEI and restricted to devices no line holds
func (f *InventoryFlowImpl) ListDevices(ctx context.Context, req *dto.ListDevicesRequest) (_ *dto.ListDevicesResponse, err error) {
	defer wrapError(&err, "DEVICE_LIST_FAILED", "Failed to list devices")

	if req == nil {
		req = &dto.ListDevicesRequest{}
	}

	devices, err := f.deviceRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var assigned map[string]struct{}
	if req.AvailableOnly {
		if assigned, err = f.assignedSet(ctx); err != nil {
			return nil, err
		}
	}

	groups := make(map[string][]dto.DeviceDTO)
	count := 0
	for _, d := range devices {
		if !d.Matches(req.Query) {
			continue
		}
		if _, taken := assigned[d.IMEI]; taken {
			continue
		}
		m := d.Manufacturer()
		groups[m] = append(groups[m], ToDeviceDTO(*d))
		count++
	}

	resp := &dto.ListDevicesResponse{Groups: []dto.DeviceGroup{}, Count: count}
	for _, m := range manufacturerOrder {
		if len(groups[m]) > 0 {
			resp.Groups = append(resp.Groups, dto.DeviceGroup{Manufacturer: m, Devices: groups[m]})
		}
	}
	return resp, nil
}

// AvailableIMEIs is every device IMEI minus those held by a line, in device order
func (f *InventoryFlowImpl) AvailableIMEIs(ctx context.Context) (_ *dto.AvailableIMEIsResponse, err error) {
	defer wrapError(&err, "IMEI_LIST_FAILED", "Failed to list available IMEIs")

	imeis, err := f.availableIMEIs(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.AvailableIMEIsResponse{IMEIs: imeis, Count: len(imeis)}, nil
}

// RandomAvailableIMEI picks uniformly among the available IMEIs; IMEI is nil when none is left
func (f *InventoryFlowImpl) RandomAvailableIMEI(ctx context.Context) (_ *dto.RandomIMEIResponse, err error) {
	defer wrapError(&err, "IMEI_PICK_FAILED", "Failed to pick an available IMEI")

	imei, err := f.randomIMEI(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.RandomIMEIResponse{IMEI: imei}, nil
}

func (f *InventoryFlowImpl) IsIMEIAvailable(ctx context.Context, imei string) (_ bool, err error) {
	defer wrapError(&err, "IMEI_CHECK_FAILED", "Failed to check IMEI")

	assigned, err := f.lineRepo.IMEIAssigned(ctx, strings.TrimSpace(imei))
	if err != nil {
		return false, err
	}
	return !assigned, nil
}

func (f *InventoryFlowImpl) IsIMEIInUse(ctx context.Context, imei, excludeMDN string) (_ bool, err error) {
	defer wrapError(&err, "IMEI_CHECK_FAILED", "Failed to check IMEI")

	return f.lineRepo.IMEIInUse(ctx, strings.TrimSpace(imei), NormalizeMDN(excludeMDN))
}

// IMEIUsage answers the edit form's availability check for imei
func (f *InventoryFlowImpl) IMEIUsage(ctx context.Context, imei, excludeMDN string) (*dto.IMEIUsageResponse, error) {
	parsed, err := parseIMEI(imei)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, NewBusinessError("INVALID_IMEI", "IMEI must be exactly 15 digits", ErrInvalidIMEI)
	}

	resp := &dto.IMEIUsageResponse{IMEI: *parsed, ExcludeMDN: NormalizeMDN(excludeMDN)}
	if resp.InUse, err = f.IsIMEIInUse(ctx, *parsed, resp.ExcludeMDN); err != nil {
		return nil, err
	}
	if resp.Available, err = f.IsIMEIAvailable(ctx, *parsed); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListDevicesForSale returns the shop; a non-empty query searches available devices only
func (f *InventoryFlowImpl) ListDevicesForSale(ctx context.Context, req *dto.ListDevicesForSaleRequest) (_ *dto.ListDevicesForSaleResponse, err error) {
	defer wrapError(&err, "SHOP_LIST_FAILED", "Failed to load devices")

	if req == nil {
		req = &dto.ListDevicesForSaleRequest{}
	}
	if strings.TrimSpace(req.Query) != "" {
		return f.SearchDevicesForSale(ctx, req.Query)
	}

	var devices []*models.DeviceForSale
	if req.AvailableOnly {
		devices, err = f.deviceForSaleRepo.ListAvailable(ctx)
	} else {
		devices, err = f.deviceForSaleRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return toShopResponse(devices), nil
}

func (f *InventoryFlowImpl) SearchDevicesForSale(ctx context.Context, query string) (_ *dto.ListDevicesForSaleResponse, err error) {
	defer wrapError(&err, "SHOP_SEARCH_FAILED", "Failed to search devices")

	devices, err := f.deviceForSaleRepo.SearchAvailable(ctx, query)
	if err != nil {
		return nil, err
	}
	return toShopResponse(devices), nil
}

func (f *InventoryFlowImpl) GetDeviceForSale(ctx context.Context, id int64) (_ *dto.DeviceForSaleDTO, err error) {
	defer wrapError(&err, "SHOP_LOOKUP_FAILED", "Failed to load device")

	device, err := f.deviceForSale(ctx, id)
	if err != nil {
		return nil, err
	}
	result := ToDeviceForSaleDTO(*device)
	return &result, nil
}

// SelectDeviceForSale pairs an available shop device with a random unassigned IMEI
func (f *InventoryFlowImpl) SelectDeviceForSale(ctx context.Context, id int64, metadata *ClientMetadata) (_ *dto.SelectDeviceForSaleResponse, err error) {
	defer wrapError(&err, "SHOP_SELECT_FAILED", "Failed to select device")

	device, err := f.deviceForSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if device.IsAvailable != nil && !*device.IsAvailable {
		return nil, NewBusinessError("DEVICE_NOT_AVAILABLE", "Device is not available", ErrDeviceNotAvailable)
	}

	imei, err := f.randomIMEI(ctx)
	if err != nil {
		return nil, err
	}
	if imei == nil {
		return nil, NewBusinessError("NO_AVAILABLE_IMEI", "No unassigned IMEI left in inventory", ErrNoAvailableIMEI)
	}

	log.Printf("shop: selected %s with imei %s %s", device.Device, *imei, metadata)
	return &dto.SelectDeviceForSaleResponse{Device: ToDeviceForSaleDTO(*device), IMEI: *imei}, nil
}

func (f *InventoryFlowImpl) CreateDeviceForSale(ctx context.Context, req *dto.CreateDeviceForSaleRequest, metadata *ClientMetadata) (_ *dto.DeviceForSaleDTO, err error) {
	defer wrapError(&err, "SHOP_CREATE_FAILED", "Failed to create device")

	if req == nil || strings.TrimSpace(req.Device) == "" {
		return nil, NewBusinessError("DEVICE_LABEL_REQUIRED", "Device label is required", ErrDeviceLabelRequired)
	}

	available := req.IsAvailable == nil || *req.IsAvailable
	device := &models.DeviceForSale{
		Device:      strings.TrimSpace(req.Device),
		Price:       req.Price,
		ImageURL:    utils.EmptyToNil(req.ImageURL),
		IsAvailable: &available,
	}
	if err = f.deviceForSaleRepo.Save(ctx, device); err != nil {
		return nil, err
	}

	log.Printf("shop: added %q (id=%d) %s", device.Device, device.ID, metadata)
	result := ToDeviceForSaleDTO(*device)
	return &result, nil
}

func (f *InventoryFlowImpl) UpdateDeviceForSale(ctx context.Context, id int64, req *dto.UpdateDeviceForSaleRequest, metadata *ClientMetadata) (_ *dto.DeviceForSaleDTO, err error) {
	defer wrapError(&err, "SHOP_UPDATE_FAILED", "Failed to update device")

	device, err := f.deviceForSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if req != nil {
		if label := utils.EmptyToNil(req.Device); label != nil {
			device.Device = *label
		}
		if req.Price != nil {
			device.Price = *req.Price
		}
		if req.ImageURL != nil {
			device.ImageURL = utils.EmptyToNil(req.ImageURL)
		}
		if req.IsAvailable != nil {
			device.IsAvailable = req.IsAvailable
		}
	}

	if err = f.deviceForSaleRepo.Update(ctx, device); err != nil {
		return nil, f.notFoundOr(err)
	}

	log.Printf("shop: updated %q (id=%d) %s", device.Device, device.ID, metadata)
	result := ToDeviceForSaleDTO(*device)
	return &result, nil
}

func (f *InventoryFlowImpl) DeleteDeviceForSale(ctx context.Context, id int64, metadata *ClientMetadata) (err error) {
	defer wrapError(&err, "SHOP_DELETE_FAILED", "Failed to delete device")

	if err = f.deviceForSaleRepo.Delete(ctx, id); err != nil {
		return f.notFoundOr(err)
	}
	log.Printf("shop: deleted device %d %s", id, metadata)
	return nil
}

func (f *InventoryFlowImpl) deviceForSale(ctx context.Context, id int64) (*models.DeviceForSale, error) {
	device, err := f.deviceForSaleRepo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, NewBusinessError("DEVICE_FOR_SALE_NOT_FOUND", "Device for sale not found", ErrDeviceForSaleNotFound)
	}
	return device, nil
}

func (f *InventoryFlowImpl) notFoundOr(err error) error {
	if errors.Is(err, repository.ErrNoRowsUpdated) {
		return NewBusinessError("DEVICE_FOR_SALE_NOT_FOUND", "Device for sale not found", ErrDeviceForSaleNotFound)
	}
	return err
}

// availableIMEIs scans both tables and filters in memory; fine for a single store's inventory
func (f *InventoryFlowImpl) availableIMEIs(ctx context.Context) ([]string, error) {
	all, err := f.deviceRepo.AllIMEIs(ctx)
	if err != nil {
		return nil, err
	}
	assigned, err := f.assignedSet(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(all))
	for _, imei := range all {
		if _, taken := assigned[imei]; !taken {
			out = append(out, imei)
		}
	}
	return out, nil
}

func (f *InventoryFlowImpl) assignedSet(ctx context.Context) (map[string]struct{}, error) {
	assigned, err := f.lineRepo.AssignedIMEIs(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(assigned))
	for _, imei := range assigned {
		set[imei] = struct{}{}
	}
	return set, nil
}

func (f *InventoryFlowImpl) randomIMEI(ctx context.Context) (*string, error) {
	imeis, err := f.availableIMEIs(ctx)
	if err != nil {
		return nil, err
	}
	if len(imeis) == 0 {
		return nil, nil
	}
	return &imeis[f.pick(len(imeis))], nil
}

func toShopResponse(devices []*models.DeviceForSale) *dto.ListDevicesForSaleResponse {
	items := make([]dto.DeviceForSaleDTO, 0, len(devices))
	for _, d := range devices {
		items = append(items, ToDeviceForSaleDTO(*d))
	}
	return &dto.ListDevicesForSaleResponse{Devices: items, Count: len(items)}
}
