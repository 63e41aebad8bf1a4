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

// ProgressRepository persists the per-day consumption ledgers. The unique
// (user_id, date_key) index backs the one-row-per-day invariant.
type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) GetByUserAndDate(ctx context.Context, userID, dateKey string) (*domain.Progress, error) {
	var record database.Progress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date_key = ?", userID, dateKey).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return progressToDomain(&record)
}

func (r *ProgressRepository) Create(ctx context.Context, progress *domain.Progress) error {
	record, err := progressToRecord(progress)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create progress: %w", err)
	}
	return nil
}

func (r *ProgressRepository) Update(ctx context.Context, progress *domain.Progress) error {
	record, err := progressToRecord(progress)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]domain.Progress, error) {
	var records []database.Progress
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_key ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	out := make([]domain.Progress, 0, len(records))
	for i := range records {
		p, err := progressToDomain(&records[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func progressToDomain(record *database.Progress) (*domain.Progress, error) {
	progress := &domain.Progress{
		ID:               record.ID,
		UserID:           record.UserID,
		DateKey:          record.DateKey,
		CaloriesConsumed: record.CaloriesConsumed,
		ProteinConsumed:  record.ProteinConsumed,
		CarbsConsumed:    record.CarbsConsumed,
		FatConsumed:      record.FatConsumed,
		WaterConsumed:    record.WaterConsumed,
		CaloriesGoal:     record.CaloriesGoal,
		ProteinGoal:      record.ProteinGoal,
		CarbsGoal:        record.CarbsGoal,
		FatGoal:          record.FatGoal,
		WaterGoal:        record.WaterGoal,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
	if len(record.Meals) > 0 {
		if err := json.Unmarshal(record.Meals, &progress.Meals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal progress meals: %w", err)
		}
	}
	if len(record.Workouts) > 0 {
		if err := json.Unmarshal(record.Workouts, &progress.Workouts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal progress workouts: %w", err)
		}
	}
	return progress, nil
}

func progressToRecord(progress *domain.Progress) (*database.Progress, error) {
	meals, err := json.Marshal(progress.Meals)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress meals: %w", err)
	}
	workouts, err := json.Marshal(progress.Workouts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress workouts: %w", err)
	}
	return &database.Progress{
		ID:               progress.ID,
		UserID:           progress.UserID,
		DateKey:          progress.DateKey,
		Meals:            datatypes.JSON(meals),
		Workouts:         datatypes.JSON(workouts),
		CaloriesConsumed: progress.CaloriesConsumed,
		ProteinConsumed:  progress.ProteinConsumed,
		CarbsConsumed:    progress.CarbsConsumed,
		FatConsumed:      progress.FatConsumed,
		WaterConsumed:    progress.WaterConsumed,
		CaloriesGoal:     progress.CaloriesGoal,
		ProteinGoal:      progress.ProteinGoal,
		CarbsGoal:        progress.CarbsGoal,
		FatGoal:          progress.FatGoal,
		WaterGoal:        progress.WaterGoal,
		CreatedAt:        progress.CreatedAt,
		UpdatedAt:        progress.UpdatedAt,
	}, nil
}
