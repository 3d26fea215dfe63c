package domain

import (
	"net/mail"
	"strings"
	"time"
)

// Role determines which marketplace operations a user may perform.
type Role string

const (
	RoleShipper Role = "shipper"
	RoleLoader  Role = "loader"
)

const (
	minPasswordLength = 6
	// bcrypt hashes at most 72 bytes.
	maxPasswordLength = 72
)

// Valid reports whether the role is one the marketplace knows about.
func (r Role) Valid() bool {
	return r == RoleShipper || r == RoleLoader
}

// User represents an authenticated identity in the platform.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	UserName     string    `json:"user_name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) Is(role Role) bool {
	return u != nil && u.Role == role
}

// NormalizeEmail lower-cases and trims an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Registration carries the raw input of a sign-up request.
type Registration struct {
	Email    string
	Password string
	Role     Role
	UserName string
}

// Validate checks registration fields and reports the first offending one.
func (r Registration) Validate() error {
	email := NormalizeEmail(r.Email)
	if email == "" {
		return Validation("email", "email is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return Validation("email", "email is malformed")
	}
	if len(r.Password) < minPasswordLength {
		return Validation("password", "password must be at least 6 characters")
	}
	if len(r.Password) > maxPasswordLength {
		return Validation("password", "password must be at most 72 bytes")
	}
	if !r.Role.Valid() {
		return Validation("role", "role must be shipper or loader")
	}
	if strings.TrimSpace(r.UserName) == "" {
		return Validation("user_name", "user name is required")
	}
	return nil
}
