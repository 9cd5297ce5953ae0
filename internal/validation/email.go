package validation

import (
	"errors"
	"net/mail"
)

// ValidateEmail accepts a bare RFC 5322 address of at most 254 characters.
// Display-name forms such as "Kim <kim@example.com>" are rejected; the user table stores the address only.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address format")
	}

	return nil
}
