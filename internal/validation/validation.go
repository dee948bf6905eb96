// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	PasswordMinLength = 12
	PasswordMaxLength = 128
	MaxFieldLength    = 255
)

// maxPrice is the first value that needs more than 5 digits at 2 decimal places.
var maxPrice = decimal.NewFromInt(1000)

// ValidatePassword checks password length in characters.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength {
		return fmt.Errorf("Ensure this field has at least %d characters.", PasswordMinLength)
	}
	if n > PasswordMaxLength {
		return fmt.Errorf("Ensure this field has no more than %d characters.", PasswordMaxLength)
	}
	return nil
}

// NormalizeEmail trims the address and lower-cases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// ValidateEmail requires a bare address such as "user@example.com".
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("This field may not be blank.")
	}
	if utf8.RuneCountInString(email) > MaxFieldLength {
		return fmt.Errorf("Ensure this field has no more than %d characters.", MaxFieldLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return fmt.Errorf("Enter a valid email address.")
	}
	if !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return fmt.Errorf("Enter a valid email address.")
	}
	return nil
}

// ValidateRequiredText checks a required, length-limited text field.
func ValidateRequiredText(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("This field may not be blank.")
	}
	return ValidateOptionalText(value)
}

// ValidateOptionalText checks the length of an optional text field.
func ValidateOptionalText(value string) error {
	if utf8.RuneCountInString(value) > MaxFieldLength {
		return fmt.Errorf("Ensure this field has no more than %d characters.", MaxFieldLength)
	}
	return nil
}

// ValidateTimeMinutes rejects negative durations.
func ValidateTimeMinutes(minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("Ensure this value is greater than or equal to 0.")
	}
	return nil
}

// ValidatePrice enforces at most 5 digits with 2 decimal places.
func ValidatePrice(price decimal.Decimal) error {
	if !price.Equal(price.Round(2)) {
		return fmt.Errorf("Ensure that there are no more than 2 decimal places.")
	}
	if price.Abs().GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("Ensure that there are no more than 5 digits in total.")
	}
	return nil
}
