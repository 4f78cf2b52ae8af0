// Package luhn implements the mod-10 checksum used by payment card numbers.
package luhn

import (
	"errors"
	"fmt"
)

// ErrNotDigits is returned when input contains anything but ASCII digits.
var ErrNotDigits = errors.New("not a digit string")

// Valid reports whether number passes the mod-10 check.
// Empty input or any non-digit character is invalid.
func Valid(number string) bool {
	if number == "" {
		return false
	}
	sum, ok := checksum(number, false)
	return ok && sum%10 == 0
}

// CheckDigit returns the digit that, appended to payload, makes the
// result pass Valid.
func CheckDigit(payload string) (byte, error) {
	if payload == "" {
		return 0, fmt.Errorf("check digit: empty payload: %w", ErrNotDigits)
	}

	// the appended digit takes the undoubled rightmost slot, so the
	// payload's own rightmost digit is doubled
	sum, ok := checksum(payload, true)
	if !ok {
		return 0, fmt.Errorf("check digit %q: %w", payload, ErrNotDigits)
	}

	return byte('0' + (10-sum%10)%10), nil
}

// checksum sums s from the right, doubling every second digit. When
// doubleFirst is set the rightmost digit is doubled too.
func checksum(s string, doubleFirst bool) (int, bool) {
	sum := 0
	double := doubleFirst
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}

		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum, true
}
