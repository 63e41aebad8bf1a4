package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/planwise/nutrisync/internal/database"
	"github.com/planwise/nutrisync/internal/domain"
)

// UserRepository persists accounts and their engagement state.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var record database.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userToDomain(&record)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var record database.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return userToDomain(&record)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	engagement, err := json.Marshal(user.Engagement)
	if err != nil {
		return fmt.Errorf("failed to marshal engagement: %w", err)
	}
	record := &database.User{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Engagement: datatypes.JSON(engagement),
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateEngagement(ctx context.Context, userID string, engagement domain.Engagement) error {
	data, err := json.Marshal(engagement)
	if err != nil {
		return fmt.Errorf("failed to marshal engagement: %w", err)
	}
	result := r.db.WithContext(ctx).
		Model(&database.User{}).
		Where("id = ?", userID).
		Update("engagement", data)
	if result.Error != nil {
		return fmt.Errorf("failed to update engagement: %w", result.Error)
	}
	return nil
}

// RestoreStreakFreezes flips the freeze capability back on for every user
// that has spent it. The sweep only moves false to true, making it
// idempotent and safe to run alongside per-user writes.
func (r *UserRepository) RestoreStreakFreezes(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&database.User{}).
		Where("engagement ->> 'streak_freeze_available' = 'false'").
		Update("engagement", gorm.Expr(
			`jsonb_set(engagement, '{streak_freeze_available}', 'true'::jsonb)`))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to restore streak freezes: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func userToDomain(record *database.User) (*domain.User, error) {
	user := &domain.User{
		ID:        record.ID,
		Name:      record.Name,
		Email:     record.Email,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if len(record.Engagement) > 0 {
		if err := json.Unmarshal(record.Engagement, &user.Engagement); err != nil {
			return nil, fmt.Errorf("failed to unmarshal engagement: %w", err)
		}
	} else {
		user.Engagement = domain.NewEngagement()
	}
	return user, nil
}
