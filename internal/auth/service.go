package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/lift-alumni/liftfund/internal/shared"
	"github.com/lift-alumni/liftfund/internal/users"
)

// Repository resolves accounts for authentication.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (users.User, error)
	GetByID(ctx context.Context, id int64) (users.User, error)
}

// Service authenticates accounts against stored credentials.
type Service struct {
	repo Repository
}

// NewService constructs the auth service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate verifies the credentials and returns the account.
// Disabled accounts and unknown emails fail identically so callers
// cannot probe which addresses exist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (users.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.User{}, shared.ErrInvalidCredentials
		}
		return users.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return users.User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return users.User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Current loads the account bound to the given user id.
func (s *Service) Current(ctx context.Context, id int64) (users.User, error) {
	return s.repo.GetByID(ctx, id)
}
