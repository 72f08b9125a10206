// Package businessflow contains the use cases of the point-of-sale system
package businessflow

import (
	"fmt"
	"time"

	"github.com/amirphl/carrier-pos/app/dto"
	"github.com/amirphl/carrier-pos/models"
)

// ClientMetadata describes the terminal and operator behind a request, for audit logging
type ClientMetadata struct {
	IPAddress  string `json:"ip_address"`
	UserAgent  string `json:"user_agent"`
	RequestID  string `json:"request_id,omitempty"`
	TerminalID string `json:"terminal_id,omitempty"`
	Operator   string `json:"operator,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

func (cm *ClientMetadata) SetTerminalID(terminalID string) {
	cm.TerminalID = terminalID
}

func (cm *ClientMetadata) SetOperator(operator string) {
	cm.Operator = operator
}

// String renders the metadata for log lines; a nil receiver is allowed
func (cm *ClientMetadata) String() string {
	if cm == nil {
		return "terminal=- operator=- ip=-"
	}
	return fmt.Sprintf("terminal=%s operator=%s ip=%s request=%s", orDash(cm.TerminalID), orDash(cm.Operator), orDash(cm.IPAddress), orDash(cm.RequestID))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ToCustomerDTO converts a customer model for API responses
func ToCustomerDTO(customer models.Customer) dto.CustomerDTO {
	return dto.CustomerDTO{
		AccountNumber: customer.AccountNumber,
		Name:          customer.Name,
		Email:         customer.Email,
		Device:        customer.Device,
	}
}

// ToLineDTO converts a line; deviceLabel is the inventory label of the line's IMEI, if known
func ToLineDTO(line models.Line, deviceLabel *string) dto.LineDTO {
	features := []string(line.Features)
	if features == nil {
		features = []string{}
	}
	return dto.LineDTO{
		ID:          line.ID,
		MDN:         line.MDN,
		Name:        line.Name,
		IMEI:        line.IMEI,
		DeviceLabel: deviceLabel,
		Plan:        line.Plan,
		Features:    features,
	}
}

func ToDeviceDTO(device models.Device) dto.DeviceDTO {
	return dto.DeviceDTO{
		ID:           device.ID,
		Device:       device.Device,
		IMEI:         device.IMEI,
		ICCID:        device.ICCID,
		Manufacturer: device.Manufacturer(),
	}
}

func ToDeviceForSaleDTO(device models.DeviceForSale) dto.DeviceForSaleDTO {
	return dto.DeviceForSaleDTO{
		ID:          device.ID,
		Device:      device.Device,
		Price:       device.Price,
		ImageURL:    device.ImageURL,
		IsAvailable: device.IsAvailable == nil || *device.IsAvailable,
	}
}

// ToQueueItemDTO converts a queue entry, computing its wait time at now
func ToQueueItemDTO(item models.QueueItem, now time.Time) dto.QueueItemDTO {
	minutes := item.WaitMinutes(now)
	return dto.QueueItemDTO{
		ID:            item.ID.String(),
		AccountNumber: item.Customer.AccountNumber,
		CustomerName:  item.Customer.Name,
		Reason:        item.Reason,
		AddedAt:       item.AddedAt,
		WaitMinutes:   minutes,
		WaitLabel:     fmt.Sprintf("%d mins", minutes),
	}
}
