package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Store abstracts persistence so handlers and tests can swap it out.
type Store interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u User) error
}

// Service manages accounts.
type Service struct {
	repo   Store
	logger *slog.Logger
}

// NewService constructs the user service.
func NewService(repo Store, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

const minPasswordLength = 8

// Create registers a new account with a bcrypt hashed password.
func (s *Service) Create(ctx context.Context, input CreateUserInput) (User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Name == "" {
		return User{}, fmt.Errorf("%w: email and name are required", ErrValidation)
	}
	if !input.Role.Valid() {
		return User{}, fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
	}
	if len(input.Password) < minPasswordLength {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, User{
		Email:          email,
		Name:           input.Name,
		Role:           input.Role,
		GraduationYear: input.GraduationYear,
		PasswordHash:   string(hash),
	})
	if err != nil {
		return User{}, err
	}

	s.logger.Info("user created", slog.Int64("id", user.ID), slog.String("role", string(user.Role)))
	return user, nil
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Update applies admin changes to an account.
func (s *Service) Update(ctx context.Context, id int64, input UpdateUserInput) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return User{}, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		user.Name = *input.Name
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return User{}, fmt.Errorf("%w: unknown role %q", ErrValidation, *input.Role)
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != nil {
		if len(*input.Password) < minPasswordLength {
			return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}
