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

// PlanRepository persists weekly plan documents. The store's unique index
// on user_id backs the one-plan-per-user invariant.
type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) GetByUserID(ctx context.Context, userID string) (*domain.Plan, error) {
	var record database.Plan
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan by user: %w", err)
	}
	return planToDomain(&record)
}

func (r *PlanRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	var record database.Plan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return planToDomain(&record)
}

func (r *PlanRepository) Create(ctx context.Context, plan *domain.Plan) error {
	record, err := planToRecord(plan)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

func (r *PlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	record, err := planToRecord(plan)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	return nil
}

func planToDomain(record *database.Plan) (*domain.Plan, error) {
	plan := &domain.Plan{
		ID:               record.ID,
		UserID:           record.UserID,
		WeekStart:        record.WeekStart,
		ConsumedCalories: record.ConsumedCalories,
		ConsumedProtein:  record.ConsumedProtein,
		ConsumedCarbs:    record.ConsumedCarbs,
		ConsumedFat:      record.ConsumedFat,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
	if len(record.Metrics) > 0 {
		if err := json.Unmarshal(record.Metrics, &plan.Metrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan metrics: %w", err)
		}
	}
	if len(record.WeeklyPlan) > 0 {
		if err := json.Unmarshal(record.WeeklyPlan, &plan.WeeklyPlan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal weekly plan: %w", err)
		}
	}
	if plan.WeeklyPlan == nil {
		plan.WeeklyPlan = make(map[string]*domain.DayEntry)
	}
	return plan, nil
}

func planToRecord(plan *domain.Plan) (*database.Plan, error) {
	metrics, err := json.Marshal(plan.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan metrics: %w", err)
	}
	weekly, err := json.Marshal(plan.WeeklyPlan)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal weekly plan: %w", err)
	}
	return &database.Plan{
		ID:               plan.ID,
		UserID:           plan.UserID,
		WeekStart:        plan.WeekStart,
		Metrics:          datatypes.JSON(metrics),
		WeeklyPlan:       datatypes.JSON(weekly),
		ConsumedCalories: plan.ConsumedCalories,
		ConsumedProtein:  plan.ConsumedProtein,
		ConsumedCarbs:    plan.ConsumedCarbs,
		ConsumedFat:      plan.ConsumedFat,
		CreatedAt:        plan.CreatedAt,
		UpdatedAt:        plan.UpdatedAt,
	}, nil
}
