package interfaces

import (
	"context"

	"github.com/planwise/nutrisync/internal/domain"
	"github.com/planwise/nutrisync/internal/services"
)

// PlanServiceInterface defines the contract for plan synchronization
// operations.
type PlanServiceInterface interface {
	ReplaceMeal(ctx context.Context, req services.ReplaceMealRequest) (*services.ReplaceMealResult, error)
	AddWorkout(ctx context.Context, userID, dateOrDay string, spec services.WorkoutSpec) (*services.WorkoutResult, error)
	UpdateWorkout(ctx context.Context, userID, dateOrDay, workoutID string, spec services.WorkoutSpec) (*services.WorkoutResult, error)
	DeleteWorkout(ctx context.Context, userID, dateOrDay, workoutID string) (*services.WorkoutResult, error)
	AddSnack(ctx context.Context, userID, dateOrDay, name, language string) (*services.SnackResult, error)
	GetCurrentWeeklyPlan(ctx context.Context, userID string) (*domain.Plan, error)
	ToggleMealDone(ctx context.Context, userID, dateOrDay string, mealType domain.MealType, snackIndex *int) (*domain.Progress, error)
	ToggleWorkoutDone(ctx context.Context, userID, dateOrDay, workoutID string) (*domain.Progress, error)
}

// CatalogServiceInterface defines the contract for meal catalog resolution.
type CatalogServiceInterface interface {
	Resolve(ctx context.Context, candidate services.MealCandidate) (*domain.Meal, error)
	GetOrGenerate(ctx context.Context, req services.GenerateMealRequest) (*domain.Meal, string, error)
}

// ShoppingServiceInterface defines the contract for shopping list syncs.
type ShoppingServiceInterface interface {
	Sync(ctx context.Context, userID, planID string, weekly map[string]*domain.DayEntry) (*domain.ShoppingList, error)
}

// UserServiceInterface defines the contract for account registration and
// lookup.
type UserServiceInterface interface {
	RegisterUser(ctx context.Context, email, name string) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// StreakServiceInterface defines the contract for streak and habit score
// computation.
type StreakServiceInterface interface {
	GetStreak(ctx context.Context, userID string) (*domain.StreakInfo, error)
	GetHabitScore(ctx context.Context, userID string) (int, error)
	ConsumeStreakFreeze(ctx context.Context, userID string) (bool, error)
	ResetMonthlyFreezes(ctx context.Context) (int64, error)
}

// MealGeneratorInterface defines the contract for the generative meal
// drafting collaborator.
type MealGeneratorInterface interface {
	GenerateMeal(ctx context.Context, req services.GenerateMealRequest) (*services.MealDraft, error)
	GenerateWeeklyPlan(ctx context.Context, req services.GeneratePlanRequest) (map[string]*domain.DayEntry, error)
}
