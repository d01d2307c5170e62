package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// MinPhoneDigits is the minimum number of digit characters a phone number
// must contain after stripping separators.
const MinPhoneDigits = 10

// ValidateName rejects empty names and names containing any digit.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if strings.ContainsFunc(name, unicode.IsDigit) {
		return fmt.Errorf("%w: name must not contain digits", ErrValidation)
	}
	return nil
}

// ValidatePhone rejects numbers with fewer than MinPhoneDigits digits.
// Separators such as spaces, dashes and parentheses are ignored.
func ValidatePhone(number string) error {
	if strings.TrimSpace(number) == "" {
		return fmt.Errorf("%w: phone number cannot be empty", ErrValidation)
	}
	if CountDigits(number) < MinPhoneDigits {
		return fmt.Errorf("%w: phone number must contain at least %d digits", ErrValidation, MinPhoneDigits)
	}
	return nil
}

// CountDigits returns the number of digit runes in s.
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
