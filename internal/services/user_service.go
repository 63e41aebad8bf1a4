package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/planwise/nutrisync/internal/domain"
	apperrors "github.com/planwise/nutrisync/internal/errors"
)

// UserService handles account registration and lookup.
type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// RegisterUser returns the existing account for the email or creates a new
// one with fresh engagement state.
func (s *UserService) RegisterUser(ctx context.Context, email, name string) (*domain.User, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewDatabaseError(fmt.Errorf("failed to look up user: %w", err))
	}
	if existing != nil {
		return existing, nil
	}

	user := &domain.User{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      email,
		Engagement: domain.NewEngagement(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.NewDatabaseError(fmt.Errorf("failed to register user: %w", err))
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(fmt.Errorf("failed to get user: %w", err))
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}
