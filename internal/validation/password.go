package validation

import (
	"errors"
	"strings"
)

const (
	minPasswordLength = 12
	maxPasswordLength = 72 // bcrypt ignores anything past 72 bytes
)

var weakPasswordFragments = []string{
	"password", "123456", "qwerty", "admin", "letmein",
	"welcome", "travel", "diary", "iloveyou", "sunshine",
}

// ValidatePassword checks length and rejects passwords built on common fragments
// or on the account's own username.
func ValidatePassword(password, username string) error {
	if len(password) < minPasswordLength {
		return errors.New("password must be at least 12 characters")
	}
	if len(password) > maxPasswordLength {
		return errors.New("password must not exceed 72 bytes")
	}

	lower := strings.ToLower(password)
	for _, fragment := range weakPasswordFragments {
		if strings.Contains(lower, fragment) {
			return errors.New("password is too common, please choose a stronger one")
		}
	}

	name := strings.ToLower(strings.TrimSpace(username))
	if len(name) >= 3 && strings.Contains(lower, name) {
		return errors.New("password must not contain the username")
	}

	return nil
}
