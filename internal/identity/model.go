package identity

import (
	"errors"
	"time"
)

// Role is the single role a user holds in the portal.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRegistration = errors.New("invalid registration")
)

// User represents a registered portal account.
type User struct {
	ID           string
	Email        string
	FullName     string
	Role         Role
	PasswordHash []byte
	TokenVersion int
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// Credentials request structure.
type Credentials struct {
	Email    string
	Password string
}

// Registration carries the data needed to create a user.
type Registration struct {
	Email    string
	Password string
	FullName string
	Role     Role
}
