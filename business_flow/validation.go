package businessflow

import (
	"strings"

	"github.com/amirphl/carrier-pos/utils"
)

// NormalizeMDN keeps only the digits of s, so "(555) 123-4567" becomes "5551234567"
func NormalizeMDN(s string) string {
	return utils.DigitsOnly(s)
}

// ValidMDN reports whether s is exactly 10 ASCII digits
func ValidMDN(s string) bool {
	return utils.IsDigits(s, utils.MDNLength)
}

// ValidIMEI reports whether s is exactly 15 ASCII digits
func ValidIMEI(s string) bool {
	return utils.IsDigits(s, utils.IMEILength)
}

// parseMDN normalizes raw and fails with ErrInvalidMDN unless 10 digits remain
func parseMDN(raw string) (string, error) {
	mdn := NormalizeMDN(raw)
	if !ValidMDN(mdn) {
		return "", NewBusinessError("INVALID_MDN", "MDN must be exactly 10 digits", ErrInvalidMDN)
	}
	return mdn, nil
}

// parseIMEI trims raw; an empty result means no device. Anything else must be 15 digits.
func parseIMEI(raw string) (*string, error) {
	imei := strings.TrimSpace(raw)
	if imei == "" {
		return nil, nil
	}
	if !ValidIMEI(imei) {
		return nil, NewBusinessError("INVALID_IMEI", "IMEI must be exactly 15 digits", ErrInvalidIMEI)
	}
	return &imei, nil
}

// cleanFeatures trims every label and drops empty ones, keeping order
func cleanFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
