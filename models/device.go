package models

import "strings"

// Device is a handset in store inventory, identified by its IMEI.
type Device struct {
	ID     int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Device *string `gorm:"column:device" json:"device,omitempty"`
	IMEI   string  `gorm:"column:imei;not null;index:idx_devices_imei" json:"imei"`
	ICCID  *string `gorm:"column:iccid" json:"iccid,omitempty"`
}

func (Device) TableName() string {
	return "devices"
}

// DeviceFilter represents filter criteria for device queries
type DeviceFilter struct {
	ID   *int64
	IMEI *string
}

// Manufacturer groups a device for the picker by keywords in its label
func (d Device) Manufacturer() string {
	if d.Device != nil {
		label := strings.ToLower(*d.Device)
		switch {
		case strings.Contains(label, "iphone"):
			return "Apple iPhone"
		case strings.Contains(label, "ipad"):
			return "Apple iPad"
		case strings.Contains(label, "watch"):
			return "Apple Watch"
		case strings.Contains(label, "samsung"), strings.Contains(label, "galaxy"):
			return "Samsung"
		case strings.Contains(label, "google"), strings.Contains(label, "pixel"):
			return "Google Pixel"
		}
	}
	return "Other"
}

// Matches reports whether the label or IMEI contains query, ignoring case
func (d Device) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if d.Device != nil && strings.Contains(strings.ToLower(*d.Device), query) {
		return true
	}
	return strings.Contains(strings.ToLower(d.IMEI), query)
}
