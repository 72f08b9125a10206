package dto

// CreateLineRequest adds a line to an account. An empty plan falls back to the default plan label.
type CreateLineRequest struct {
	MDN      string   `json:"mdn" validate:"required,len=10,numeric" example:"5559990000"`
	Name     *string  `json:"name,omitempty" validate:"omitempty,max=255" example:"Kid's phone"`
	IMEI     *string  `json:"imei,omitempty" validate:"omitempty,len=15,numeric" example:"356938035643809"`
	Plan     *string  `json:"plan,omitempty" validate:"omitempty,max=255" example:"Unlimited Plus - $80/mo"`
	Features []string `json:"features,omitempty" validate:"omitempty,max=20,dive,min=1,max=100" example:"HD Streaming"`
}

// UpdateLineRequest replaces the editable fields of a line. An empty IMEI unassigns the device;
// an empty name or plan clears it.
type UpdateLineRequest struct {
	Name     string   `json:"name" validate:"max=255" example:"Office phone"`
	IMEI     string   `json:"imei" validate:"omitempty,len=15,numeric" example:"356938035643809"`
	Plan     string   `json:"plan" validate:"max=255" example:"Unlimited Ultimate - $90/mo"`
	Features []string `json:"features" validate:"max=20,dive,min=1,max=100" example:"4K Streaming"`
}

// LineMutationResponse returns the line written and the reloaded account
type LineMutationResponse struct {
	Message string          `json:"message" example:"Line updated successfully"`
	Line    LineDTO         `json:"line"`
	Account AccountResponse `json:"account"`
}
