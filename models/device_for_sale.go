package models

// DeviceForSale is a catalog entry of the device shop
type DeviceForSale struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Device      string  `gorm:"column:device;not null" json:"device"`
	Price       float64 `gorm:"column:price;default:0" json:"price"`
	ImageURL    *string `gorm:"column:imageUrl" json:"image_url,omitempty"`
	IsAvailable *bool   `gorm:"column:is_available;default:true" json:"is_available"`
}

func (DeviceForSale) TableName() string {
	return "devices_for_sale"
}

// DeviceForSaleFilter represents filter criteria for device shop queries
type DeviceForSaleFilter struct {
	ID          *int64
	IsAvailable *bool
	// Search matches the device label case-insensitively anywhere in the string
	Search *string
}

// DefaultDevicesForSale is the catalog seeded into an empty devices_for_sale table
func DefaultDevicesForSale() []*DeviceForSale {
	seed := []struct {
		name  string
		price float64
	}{
		{"iPhone 17", 899.99},
		{"iPhone 17 Pro Max", 1199.99},
		{"iPhone Air", 799.99},
		{"Samsung Galaxy Z Fold 7", 1799.99},
		{"Samsung Galaxy Z Flip 7", 999.99},
	}

	out := make([]*DeviceForSale, 0, len(seed))
	for _, s := range seed {
		image := s.name
		available := true
		out = append(out, &DeviceForSale{
			Device:      s.name,
			Price:       s.price,
			ImageURL:    &image,
			IsAvailable: &available,
		})
	}
	return out
}
