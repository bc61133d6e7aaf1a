package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/halcyon-edu/campus/internal/shared"
)

// Service wraps user account business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a user with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, email, name, password, legacyRole, branchID string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("%w: valid email required", shared.ErrValidation)
	}
	if len(password) < 8 {
		return User{}, fmt.Errorf("%w: password must be at least 8 characters", shared.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}
	return s.repo.Create(ctx, User{
		ID:         uuid.NewString(),
		Email:      email,
		Name:       strings.TrimSpace(name),
		LegacyRole: legacyRole,
		BranchID:   branchID,
	}, string(hash))
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.Get(ctx, id)
}
