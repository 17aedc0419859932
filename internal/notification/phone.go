package notification

import "strings"

// countryCallingCode is prefixed to bare national numbers (Brazil)
const countryCallingCode = "55"

// nationalNumberLength is the length of a bare national number with area
// code and the mobile ninth digit, e.g. "11987654321"
const nationalNumberLength = 11

// NormalizePhone reduces a free-text phone field to the digits usable in a
// wa.me deep link. All non-digit characters are stripped; a bare
// national-format number gets the country calling code prefixed. An empty
// result means no usable phone; callers skip dispatch, it is not an error.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if len(digits) == nationalNumberLength {
		return countryCallingCode + digits
	}
	return digits
}
