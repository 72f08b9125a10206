// Package models contains the store records and catalog types of the point-of-sale system
package models

// Customer is an account holder. AccountNumber is assigned by the store on insert.
// MDN is a legacy column kept for round-trip fidelity; line MDNs are authoritative.
type Customer struct {
	AccountNumber int64   `gorm:"column:account_number;primaryKey;autoIncrement" json:"account_number"`
	Name          string  `gorm:"column:name;not null" json:"name"`
	Email         *string `gorm:"column:email" json:"email,omitempty"`
	Device        *string `gorm:"column:device" json:"device,omitempty"`
	MDN           *int64  `gorm:"column:mdn" json:"mdn,omitempty"`

	Lines []*Line `gorm:"-" json:"lines"`
}

func (Customer) TableName() string {
	return "customers"
}

// CustomerFilter represents filter criteria for customer queries
type CustomerFilter struct {
	AccountNumber *int64
	Name          *string
	Email         *string
}
