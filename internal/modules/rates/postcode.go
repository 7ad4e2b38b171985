package rates

import (
	"errors"
	"strings"
)

// ErrInvalidPostcode is returned when a destination postcode cannot be
// reduced to a 4-digit string.
var ErrInvalidPostcode = errors.New("invalid postcode")

// NormalizePostcode strips every non-digit character and requires exactly
// four digits to remain. "3000" and " 30 00 " both normalize to "3000";
// "3-0K0" fails because only three digits survive the strip.
func NormalizePostcode(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 4 {
		return "", ErrInvalidPostcode
	}
	return digits, nil
}
