package dto

// DeviceDTO is a handset of the store inventory
type DeviceDTO struct {
	ID           int64   `json:"id" example:"3"`
	Device       *string `json:"device,omitempty" example:"Pixel 9"`
	IMEI         string  `json:"imei" example:"356938035643809"`
	ICCID        *string `json:"iccid,omitempty" example:"8901410321111851072"`
	Manufacturer string  `json:"manufacturer" example:"Google Pixel"`
}

// DeviceGroup lists the devices of one manufacturer for the device picker
type DeviceGroup struct {
	Manufacturer string      `json:"manufacturer" example:"Samsung"`
	Devices      []DeviceDTO `json:"devices"`
}

// ListDevicesRequest filters the device picker by label or IMEI
type ListDevicesRequest struct {
	Query         string `json:"query" validate:"max=100"`
	AvailableOnly bool   `json:"available_only"`
}

// ListDevicesResponse returns the inventory grouped by manufacturer
type ListDevicesResponse struct {
	Groups []DeviceGroup `json:"groups"`
	Count  int           `json:"count" example:"12"`
}

// AvailableIMEIsResponse lists the IMEIs not assigned to any line
type AvailableIMEIsResponse struct {
	IMEIs []string `json:"imeis"`
	Count int      `json:"count" example:"2"`
}

// RandomIMEIResponse carries one unassigned IMEI; IMEI is null when the inventory is exhausted
type RandomIMEIResponse struct {
	IMEI *string `json:"imei" example:"356938035643809"`
}

// IMEIUsageResponse reports whether an IMEI is held by a line other than ExcludeMDN
type IMEIUsageResponse struct {
	IMEI       string `json:"imei" example:"356938035643809"`
	ExcludeMDN string `json:"exclude_mdn,omitempty" example:"5551234567"`
	InUse      bool   `json:"in_use" example:"false"`
	Available  bool   `json:"available" example:"true"`
}

// DeviceForSaleDTO is an entry of the device shop
type DeviceForSaleDTO struct {
	ID          int64   `json:"id" example:"1"`
	Device      string  `json:"device" example:"iPhone 17"`
	Price       float64 `json:"price" example:"899.99"`
	ImageURL    *string `json:"image_url,omitempty" example:"iPhone 17"`
	IsAvailable bool    `json:"is_available" example:"true"`
}

// ListDevicesForSaleRequest selects the shop listing; a query searches available devices only
type ListDevicesForSaleRequest struct {
	Query         string `json:"query" validate:"max=100"`
	AvailableOnly bool   `json:"available_only"`
}

// ListDevicesForSaleResponse returns shop entries ordered by label
type ListDevicesForSaleResponse struct {
	Devices []DeviceForSaleDTO `json:"devices"`
	Count   int                `json:"count" example:"5"`
}

// CreateDeviceForSaleRequest adds a shop entry
type CreateDeviceForSaleRequest struct {
	Device      string  `json:"device" validate:"required,min=1,max=255" example:"Pixel 10 Pro"`
	Price       float64 `json:"price" validate:"gte=0" example:"999.99"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,max=512" example:"Pixel 10 Pro"`
	IsAvailable *bool   `json:"is_available,omitempty" example:"true"`
}

// UpdateDeviceForSaleRequest changes the fields that are present
type UpdateDeviceForSaleRequest struct {
	Device      *string  `json:"device,omitempty" validate:"omitempty,min=1,max=255" example:"Pixel 10 Pro"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0" example:"949.99"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,max=512"`
	IsAvailable *bool    `json:"is_available,omitempty" example:"false"`
}

// SelectDeviceForSaleResponse pairs a chosen shop device with an unassigned inventory IMEI
type SelectDeviceForSaleResponse struct {
	Device DeviceForSaleDTO `json:"device"`
	IMEI   string           `json:"imei" example:"356938035643809"`
}
