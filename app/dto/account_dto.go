// Package dto contains Data Transfer Objects for API request and response structures
package dto

// CreateCustomerRequest carries the data of a new account holder
type CreateCustomerRequest struct {
	Name   string  `json:"name" validate:"required,min=1,max=255" example:"Acme"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email,max=255" example:"billing@acme.example"`
	Device *string `json:"device,omitempty" validate:"omitempty,max=255" example:"iPhone 15 Pro"`
}

// CustomerDTO is the account holder part of an account
type CustomerDTO struct {
	AccountNumber int64   `json:"account_number" example:"1001"`
	Name          string  `json:"name" example:"Acme"`
	Email         *string `json:"email,omitempty" example:"billing@acme.example"`
	Device        *string `json:"device,omitempty" example:"iPhone 15 Pro"`
}

// LineDTO is one line of an account. DeviceLabel is resolved from the inventory by IMEI.
type LineDTO struct {
	ID          int64    `json:"id" example:"12"`
	MDN         string   `json:"mdn" example:"5551234567"`
	Name        *string  `json:"name,omitempty" example:"Office phone"`
	IMEI        *string  `json:"imei,omitempty" example:"356938035643809"`
	DeviceLabel *string  `json:"device_label,omitempty" example:"Galaxy S24"`
	Plan        *string  `json:"plan,omitempty" example:"Unlimited Plus - $80/mo"`
	Features    []string `json:"features"`
}

// AccountResponse is a customer with every line of the account
type AccountResponse struct {
	Customer  CustomerDTO `json:"customer"`
	Lines     []LineDTO   `json:"lines"`
	LineCount int         `json:"line_count" example:"1"`
}

// CustomerNameResponse answers the check-in keypad lookup
type CustomerNameResponse struct {
	MDN   string  `json:"mdn" example:"5551234567"`
	Found bool    `json:"found" example:"true"`
	Name  *string `json:"name,omitempty" example:"Acme"`
}
