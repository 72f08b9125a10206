package models

import (
	"time"

	"github.com/amirphl/carrier-pos/utils"
	"github.com/google/uuid"
)

// QueueItem is a checked-in customer waiting for service. Customer is a snapshot
// taken at check-in time and is not refreshed.
type QueueItem struct {
	ID       uuid.UUID `json:"id"`
	Customer Customer  `json:"customer"`
	Reason   string    `json:"reason"`
	AddedAt  time.Time `json:"added_at"`
}

// WaitTime is how long the entry has been waiting at now
func (q QueueItem) WaitTime(now time.Time) time.Duration {
	if now.Before(q.AddedAt) {
		return 0
	}
	return now.Sub(q.AddedAt)
}

// WaitMinutes is WaitTime truncated to whole minutes
func (q QueueItem) WaitMinutes(now time.Time) int {
	return utils.WholeMinutes(q.WaitTime(now))
}

// Visit reasons offered by the check-in menu, grouped by category
var VisitReasons = map[string][]string{
	"Sales":              {"Upgrade", "Add A Line", "Accessory"},
	"Billing":            {"Billing Question", "Pay a Bill"},
	"Trade In or Return": {"Trade in Return", "Return Equipment"},
}
