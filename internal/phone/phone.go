package phone

import (
	"errors"
	"strings"
)

const Length = 10

var ErrInvalid = errors.New("phone number must be exactly 10 digits")

// Normalize strips every non-digit character and requires exactly ten digits
// remaining, matching the login form's input rule.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != Length {
		return "", ErrInvalid
	}
	return digits, nil
}

// Mask hides all but the last four digits, e.g. "******3210".
func Mask(number string) string {
	if len(number) < 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
