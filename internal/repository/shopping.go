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

// ShoppingListRepository persists the aggregated shopping lists.
type ShoppingListRepository struct {
	db *gorm.DB
}

func NewShoppingListRepository(db *gorm.DB) *ShoppingListRepository {
	return &ShoppingListRepository{db: db}
}

func (r *ShoppingListRepository) GetByUserAndPlan(ctx context.Context, userID, planID string) (*domain.ShoppingList, error) {
	var record database.ShoppingList
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND plan_id = ?", userID, planID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}

	list := &domain.ShoppingList{
		ID:        record.ID,
		UserID:    record.UserID,
		PlanID:    record.PlanID,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if len(record.Items) > 0 {
		if err := json.Unmarshal(record.Items, &list.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal shopping items: %w", err)
		}
	}
	return list, nil
}

func (r *ShoppingListRepository) Upsert(ctx context.Context, list *domain.ShoppingList) error {
	items, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping items: %w", err)
	}
	record := &database.ShoppingList{
		ID:        list.ID,
		UserID:    list.UserID,
		PlanID:    list.PlanID,
		Items:     datatypes.JSON(items),
		CreatedAt: list.CreatedAt,
		UpdatedAt: list.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to upsert shopping list: %w", err)
	}
	return nil
}
