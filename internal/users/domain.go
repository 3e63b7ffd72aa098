package users

import (
	"errors"
	"time"

	"github.com/lift-alumni/liftfund/internal/rbac"
)

// User represents an alumni network account.
type User struct {
	ID             int64
	Email          string
	Name           string
	Role           rbac.Role
	GraduationYear int
	PasswordHash   string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Sentinel errors.
var (
	ErrNotFound   = errors.New("users: not found")
	ErrDuplicate  = errors.New("users: email already registered")
	ErrValidation = errors.New("users: validation failed")
)

// CreateUserInput for creating accounts.
type CreateUserInput struct {
	Email          string
	Name           string
	Role           rbac.Role
	GraduationYear int
	Password       string
}

// UpdateUserInput for admin updates. Nil fields are left unchanged.
type UpdateUserInput struct {
	Name     *string
	Role     *rbac.Role
	IsActive *bool
	Password *string
}
