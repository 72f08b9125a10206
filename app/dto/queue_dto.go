package dto

import "time"

// CheckInRequest announces a walk-in customer
type CheckInRequest struct {
	MDN    string `json:"mdn" validate:"required,len=10,numeric" example:"5551234567"`
	Reason string `json:"reason" validate:"required,min=1,max=100" example:"Pay a Bill"`
}

// CheckInResponse acknowledges a check-in; the queue resolves the customer asynchronously
type CheckInResponse struct {
	Message string `json:"message" example:"Check-in received"`
	QueueID string `json:"queue_id" example:"3f1c2a9e-8d4b-4c57-9b1a-2e6f0d7c5a11"`
	MDN     string `json:"mdn" example:"5551234567"`
	Reason  string `json:"reason" example:"Pay a Bill"`
}

// QueueItemDTO is a waiting customer with the wait time computed at read time
type QueueItemDTO struct {
	ID            string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	AccountNumber int64     `json:"account_number" example:"1001"`
	CustomerName  string    `json:"customer_name" example:"Acme"`
	Reason        string    `json:"reason" example:"Pay a Bill"`
	AddedAt       time.Time `json:"added_at" example:"2025-10-01T09:30:00Z"`
	WaitMinutes   int       `json:"wait_minutes" example:"4"`
	WaitLabel     string    `json:"wait_label" example:"4 mins"`
}

// QueueListResponse lists the queue in check-in order
type QueueListResponse struct {
	Items []QueueItemDTO `json:"items"`
	Count int            `json:"count" example:"3"`
}

// AssistResponse returns the served entry and the freshly loaded account
type AssistResponse struct {
	Item    QueueItemDTO    `json:"item"`
	Account AccountResponse `json:"account"`
}
