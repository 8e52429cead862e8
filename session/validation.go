package session

import "strings"

const minPasswordLength = 8

// ValidateCredentials checks login credentials locally before any network
// call. The backend applies the authoritative rules; this only rejects input
// that can never be valid.
func ValidateCredentials(email, password string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidatePassword(password)
}

// ValidateEmail rejects empty or obviously malformed addresses.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Reason: "is required"}
	}
	if !strings.Contains(email, "@") {
		return &ValidationError{Field: "email", Reason: "must contain @"}
	}
	return nil
}

// ValidatePassword enforces the minimum length the backend requires.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	return nil
}
