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

// MealRepository persists catalog entries.
type MealRepository struct {
	db *gorm.DB
}

func NewMealRepository(db *gorm.DB) *MealRepository {
	return &MealRepository{db: db}
}

func (r *MealRepository) GetByID(ctx context.Context, id string) (*domain.Meal, error) {
	var record database.Meal
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal: %w", err)
	}
	return mealToDomain(&record)
}

func (r *MealRepository) GetBySignature(ctx context.Context, signature string) (*domain.Meal, error) {
	var record database.Meal
	err := r.db.WithContext(ctx).Where("signature = ?", signature).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal by signature: %w", err)
	}
	return mealToDomain(&record)
}

func (r *MealRepository) FindSimilar(ctx context.Context, name string, category domain.MealType, minCalories, maxCalories int) (*domain.Meal, error) {
	var record database.Meal
	err := r.db.WithContext(ctx).
		Where("name ILIKE ? AND category = ? AND calories BETWEEN ? AND ?",
			name, string(category), minCalories, maxCalories).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find similar meal: %w", err)
	}
	return mealToDomain(&record)
}

func (r *MealRepository) GetByNameAndCategory(ctx context.Context, name string, category domain.MealType) (*domain.Meal, error) {
	var record database.Meal
	err := r.db.WithContext(ctx).
		Where("name ILIKE ? AND category = ?", name, string(category)).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal by name and category: %w", err)
	}
	return mealToDomain(&record)
}

func (r *MealRepository) Create(ctx context.Context, meal *domain.Meal) error {
	record, err := mealToRecord(meal)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create meal: %w", err)
	}
	return nil
}

func (r *MealRepository) IncrementUsage(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&database.Meal{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment meal usage: %w", result.Error)
	}
	return nil
}

func mealToDomain(record *database.Meal) (*domain.Meal, error) {
	meal := &domain.Meal{
		ID:              record.ID,
		Name:            record.Name,
		Category:        domain.MealType(record.Category),
		Calories:        record.Calories,
		Protein:         record.Protein,
		Carbs:           record.Carbs,
		Fat:             record.Fat,
		PrepTimeMinutes: record.PrepTimeMinutes,
		Signature:       record.Signature,
		UsageCount:      record.UsageCount,
		ParentMealID:    record.ParentMealID,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
	if len(record.Ingredients) > 0 {
		if err := json.Unmarshal(record.Ingredients, &meal.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal meal ingredients: %w", err)
		}
	}
	if len(record.Variations) > 0 {
		if err := json.Unmarshal(record.Variations, &meal.VariationIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal meal variations: %w", err)
		}
	}
	return meal, nil
}

func mealToRecord(meal *domain.Meal) (*database.Meal, error) {
	ingredients, err := json.Marshal(meal.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meal ingredients: %w", err)
	}
	variations, err := json.Marshal(meal.VariationIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meal variations: %w", err)
	}
	return &database.Meal{
		ID:              meal.ID,
		Name:            meal.Name,
		Category:        string(meal.Category),
		Calories:        meal.Calories,
		Protein:         meal.Protein,
		Carbs:           meal.Carbs,
		Fat:             meal.Fat,
		PrepTimeMinutes: meal.PrepTimeMinutes,
		Signature:       meal.Signature,
		UsageCount:      meal.UsageCount,
		ParentMealID:    meal.ParentMealID,
		Ingredients:     datatypes.JSON(ingredients),
		Variations:      datatypes.JSON(variations),
		CreatedAt:       meal.CreatedAt,
		UpdatedAt:       meal.UpdatedAt,
	}, nil
}
