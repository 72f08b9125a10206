package utils

import (
	"time"
)

// Token time constants
const (
	// AccessTokenTTL is the time-to-live for operator access tokens (12 hours, one store shift)
	AccessTokenTTL = 12 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Identifier formats
const (
	// MDNLength is the number of digits in a mobile directory number
	MDNLength = 10

	// IMEILength is the number of digits in a device IMEI
	IMEILength = 15
)

// Check-in constants
const (
	// CheckInDebounce is the quiet period before a typed MDN is looked up
	CheckInDebounce = 300 * time.Millisecond

	// DefaultTerminalID is used when a request does not name its terminal
	DefaultTerminalID = "default"

	// TerminalIDHeader names the terminal issuing a check-in lookup
	TerminalIDHeader = "X-Terminal-ID"
)
