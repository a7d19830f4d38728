package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// User is a marketplace account. Sellers and buyers share the same table.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Roles.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// Account statuses. Blocked accounts cannot log in.
const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:     3,
		RoleModerator: 2,
		RoleUser:      1,
	}
	return levels[role] >= levels[minimum] && levels[minimum] > 0
}

// ValidRole reports whether role is known.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleModerator || role == RoleUser
}

// ValidUserStatus reports whether status is active or blocked.
func ValidUserStatus(status string) bool {
	return status == UserStatusActive || status == UserStatusBlocked
}

// ValidatePassword enforces the password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

// NormalizeEmail validates an address and returns it lower-cased.
func NormalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return "", errors.New("invalid email address")
	}
	return strings.ToLower(addr.Address), nil
}
