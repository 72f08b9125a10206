// Package utils provides utility functions for the application.
package utils

import (
	"strings"

	"github.com/google/uuid"
)

type contextKey string

// RequestIDKey is the context key carrying the request ID set by the router middleware
const RequestIDKey contextKey = "request_id"

func ToPtr[T any](v T) *T {
	return &v
}

// EmptyToNil trims s and returns nil when nothing is left
func EmptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// DerefString returns the pointed-to string or ""
func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ParseUUID parses a UUID string
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

// DigitsOnly drops every rune that is not an ASCII digit
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// IsDigits reports whether s is exactly n ASCII digits
func IsDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
