package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// User is the core user entity. HashedPassword is internal to the service and
// must never cross the handler boundary outward.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	IsActive       bool
	IsSuperuser    bool
	IsActivated    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail lowercases and trims an email for the case-insensitive
// uniqueness invariant.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// ErrValidation wraps every validation failure so handlers can map the whole
// class to a 400 without inspecting messages.
var ErrValidation = errors.New("validation failed")

// ValidateEmail checks the email is present and well formed.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	return nil
}

// ValidatePassword enforces the minimum password policy for registration and
// password changes.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	return nil
}

// Validate validates the user for persistence. Returns an error describing the
// first validation failure.
func (u *User) Validate() error {
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if u.HashedPassword == "" {
		return fmt.Errorf("%w: hashed password is required", ErrValidation)
	}
	return nil
}
