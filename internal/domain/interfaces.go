package domain

import (
	"context"
)

// MealRepository handles catalog entry persistence. Lookup methods return
// (nil, nil) when no entry matches.
type MealRepository interface {
	GetByID(ctx context.Context, id string) (*Meal, error)
	GetBySignature(ctx context.Context, signature string) (*Meal, error)
	// FindSimilar matches case-insensitively on name, exactly on category,
	// and on calories within [minCalories, maxCalories].
	FindSimilar(ctx context.Context, name string, category MealType, minCalories, maxCalories int) (*Meal, error)
	GetByNameAndCategory(ctx context.Context, name string, category MealType) (*Meal, error)
	Create(ctx context.Context, meal *Meal) error
	IncrementUsage(ctx context.Context, id string) error
}

// PlanRepository handles weekly plan persistence. One plan per user.
type PlanRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Plan, error)
	GetByID(ctx context.Context, id string) (*Plan, error)
	Create(ctx context.Context, plan *Plan) error
	Update(ctx context.Context, plan *Plan) error
}

// ProgressRepository handles the per-day consumption ledgers. One record per
// (user, date key) pair.
type ProgressRepository interface {
	GetByUserAndDate(ctx context.Context, userID, dateKey string) (*Progress, error)
	Create(ctx context.Context, progress *Progress) error
	Update(ctx context.Context, progress *Progress) error
	ListByUser(ctx context.Context, userID string) ([]Progress, error)
}

// ShoppingListRepository handles shopping list persistence. One list per
// (user, plan) pair.
type ShoppingListRepository interface {
	GetByUserAndPlan(ctx context.Context, userID, planID string) (*ShoppingList, error)
	Upsert(ctx context.Context, list *ShoppingList) error
}

// UserRepository handles user accounts and engagement state.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdateEngagement(ctx context.Context, userID string, engagement Engagement) error
	// RestoreStreakFreezes flips the freeze capability back on for every
	// user that has consumed it. Idempotent; returns the number of rows
	// touched.
	RestoreStreakFreezes(ctx context.Context) (int64, error)
}
