package store

import (
	"fmt"
	"strings"
)

// Identity is the registration metadata attached to one face sample.
// Identities are immutable once registered and are never deleted.
type Identity struct {
	Name      string
	StudentID string
	Email     string
	Phone     string
}

// ValidationError reports a rejected registration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateIdentity checks that all identity fields are populated and well formed.
// The email check is deliberately loose (must contain '@' and '.'); the phone
// number must be 10-15 numeric digits.
func ValidateIdentity(id Identity) error {
	if strings.TrimSpace(id.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if strings.TrimSpace(id.StudentID) == "" {
		return &ValidationError{Field: "student_id", Reason: "required"}
	}
	if strings.TrimSpace(id.Email) == "" {
		return &ValidationError{Field: "email", Reason: "required"}
	}
	if !strings.Contains(id.Email, "@") || !strings.Contains(id.Email, ".") {
		return &ValidationError{Field: "email", Reason: "must contain '@' and '.'"}
	}
	if strings.TrimSpace(id.Phone) == "" {
		return &ValidationError{Field: "phone", Reason: "required"}
	}
	if !isDigits(id.Phone) || len(id.Phone) < 10 || len(id.Phone) > 15 {
		return &ValidationError{Field: "phone", Reason: "must be 10-15 digits"}
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
