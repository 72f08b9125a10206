package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Line is a phone subscription on an account. MDN is fixed once the line exists;
// IMEI is nil while no device is assigned.
type Line struct {
	ID            int64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AccountNumber *int64      `gorm:"column:account_number;index:idx_lines_account" json:"account_number,omitempty"`
	Name          *string     `gorm:"column:name" json:"name,omitempty"`
	IMEI          *string     `gorm:"column:imei" json:"imei,omitempty"`
	MDN           string      `gorm:"column:mdn;not null;index:idx_lines_mdn" json:"mdn"`
	Plan          *string     `gorm:"column:plan" json:"plan,omitempty"`
	Features      FeatureList `gorm:"column:features;type:text" json:"features"`
}

func (Line) TableName() string {
	return "lines"
}

// LineFilter represents filter criteria for line queries
type LineFilter struct {
	ID            *int64
	AccountNumber *int64
	MDN           *string
	IMEI          *string
	ExcludeMDN    *string
	HasIMEI       *bool
}

// FeatureList is the ordered list of add-on names attached to a line.
// It is stored as a JSON array; rows written by older builds hold a comma-separated string.
type FeatureList []string

// Value implements the driver.Valuer interface for FeatureList
func (f FeatureList) Value() (driver.Value, error) {
	if len(f) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(f))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for FeatureList
func (f *FeatureList) Scan(value any) error {
	if value == nil {
		*f = FeatureList{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into FeatureList", value)
	}

	*f = ParseFeatureList(raw)
	return nil
}

// MarshalJSON always encodes an array, never null
func (f FeatureList) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(f))
}

// ParseFeatureList decodes stored feature text, JSON first, then the legacy CSV form
func ParseFeatureList(raw string) FeatureList {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FeatureList{}
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		if list == nil {
			return FeatureList{}
		}
		return FeatureList(list)
	}

	parts := strings.Split(raw, ",")
	out := make(FeatureList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
