package domain

import (
	"time"
)

// MealType identifies one of the four meal slots in a day.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// IsValid reports whether t is one of the known meal slots.
func (t MealType) IsValid() bool {
	switch t {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}

// Ingredient is a single line of a meal's ingredient list.
type Ingredient struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Category string `json:"category,omitempty"`
}

// Meal is a catalog entry. Immutable once created except for the usage
// counter and the variation back-references.
type Meal struct {
	ID              string
	Name            string
	Category        MealType
	Calories        int
	Protein         int // grams
	Carbs           int // grams
	Fat             int // grams
	Ingredients     []Ingredient
	PrepTimeMinutes int
	Signature       string
	UsageCount      int
	// ParentMealID and VariationIDs are lookup-only references. Deleting a
	// meal never cascades through them.
	ParentMealID string
	VariationIDs []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PlanMeal is a meal as scheduled in a plan day, copied by value from the
// catalog entry it was resolved from.
type PlanMeal struct {
	MealID          string       `json:"meal_id"`
	Name            string       `json:"name"`
	Category        MealType     `json:"category"`
	Calories        int          `json:"calories"`
	Protein         int          `json:"protein"`
	Carbs           int          `json:"carbs"`
	Fat             int          `json:"fat"`
	Ingredients     []Ingredient `json:"ingredients,omitempty"`
	PrepTimeMinutes int          `json:"prep_time_minutes,omitempty"`
}

// Workout is a scheduled workout within a plan day.
type Workout struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	CaloriesBurned  int    `json:"calories_burned"`
	TimeOfDay       string `json:"time_of_day,omitempty"` // "HH:MM", optional
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// DayMeals holds the four meal slots of a single day.
type DayMeals struct {
	Breakfast *PlanMeal  `json:"breakfast,omitempty"`
	Lunch     *PlanMeal  `json:"lunch,omitempty"`
	Dinner    *PlanMeal  `json:"dinner,omitempty"`
	Snacks    []PlanMeal `json:"snacks,omitempty"`
}

// DayEntry is one day of the weekly plan. The total counters are optional
// aggregates: when present they equal the sum over the four meal slots, and
// mutations apply deltas rather than recomputing from scratch.
type DayEntry struct {
	Meals           DayMeals  `json:"meals"`
	Workouts        []Workout `json:"workouts,omitempty"`
	WaterIntakeGoal int       `json:"water_intake_goal,omitempty"` // glasses
	TotalCalories   *int      `json:"total_calories,omitempty"`
	TotalProtein    *int      `json:"total_protein,omitempty"`
	TotalCarbs      *int      `json:"total_carbs,omitempty"`
	TotalFat        *int      `json:"total_fat,omitempty"`
}

// TargetMetrics are computed once at plan creation and never re-derived.
type TargetMetrics struct {
	BMR            int     `json:"bmr"`
	TDEE           int     `json:"tdee"`
	TargetCalories int     `json:"target_calories"`
	IdealWeightMin float64 `json:"ideal_weight_min"`
	IdealWeightMax float64 `json:"ideal_weight_max"`
	ProteinTarget  int     `json:"protein_target"`
	CarbsTarget    int     `json:"carbs_target"`
	FatTarget      int     `json:"fat_target"`
	WaterGoal      int     `json:"water_goal"` // glasses
}

// Plan is a user's single active weekly schedule. One per user.
type Plan struct {
	ID        string
	UserID    string
	WeekStart string // date key of the week's first day
	Metrics   TargetMetrics
	// WeeklyPlan is keyed by canonical YYYY-MM-DD date keys.
	WeeklyPlan       map[string]*DayEntry
	ConsumedCalories int
	ConsumedProtein  int
	ConsumedCarbs    int
	ConsumedFat      int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MealSnapshot is a meal copied by value into a Progress day. It carries an
// independent Done flag; the Plan never sees these.
type MealSnapshot struct {
	MealID   string   `json:"meal_id"`
	Name     string   `json:"name"`
	Category MealType `json:"category"`
	Calories int      `json:"calories"`
	Protein  int      `json:"protein"`
	Carbs    int      `json:"carbs"`
	Fat      int      `json:"fat"`
	Done     bool     `json:"done"`
}

// WorkoutSnapshot is a workout copied by value into a Progress day.
type WorkoutSnapshot struct {
	WorkoutID      string `json:"workout_id"`
	Name           string `json:"name"`
	CaloriesBurned int    `json:"calories_burned"`
	TimeOfDay      string `json:"time_of_day,omitempty"`
	Done           bool   `json:"done"`
}

// ProgressMeals mirrors the day's meal slots inside a Progress record.
type ProgressMeals struct {
	Breakfast *MealSnapshot  `json:"breakfast,omitempty"`
	Lunch     *MealSnapshot  `json:"lunch,omitempty"`
	Dinner    *MealSnapshot  `json:"dinner,omitempty"`
	Snacks    []MealSnapshot `json:"snacks,omitempty"`
}

// Progress is the per-day consumption ledger. It is seeded from the Plan at
// creation or swap time and mutated independently afterwards; it is never
// re-derived from the Plan on read.
type Progress struct {
	ID       string
	UserID   string
	DateKey  string
	Meals    ProgressMeals
	Workouts []WorkoutSnapshot

	CaloriesConsumed int
	ProteinConsumed  int
	CarbsConsumed    int
	FatConsumed      int
	WaterConsumed    int

	CaloriesGoal int
	ProteinGoal  int
	CarbsGoal    int
	FatGoal      int
	WaterGoal    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShoppingItem is one aggregated ingredient row.
type ShoppingItem struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Category string `json:"category,omitempty"`
	Done     bool   `json:"done"`
	Key      string `json:"key"`
}

// ShoppingList holds the aggregated ingredients of a plan's week. At most
// one row exists per normalized ingredient key.
type ShoppingList struct {
	ID        string
	UserID    string
	PlanID    string
	Items     []ShoppingItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Engagement holds streak/badge state for a user.
type Engagement struct {
	StreakFreezeAvailable bool     `json:"streak_freeze_available"`
	FreezeUsedMonth       string   `json:"freeze_used_month,omitempty"` // "YYYY-MM" of last consumption
	Badges                []string `json:"badges,omitempty"`
}

// NewEngagement returns the default engagement state. It is the single
// construction point for these defaults, invoked at user creation.
func NewEngagement() Engagement {
	return Engagement{
		StreakFreezeAvailable: true,
		Badges:                []string{},
	}
}

// User is an account owning one plan and its progress history.
type User struct {
	ID         string
	Name       string
	Email      string
	Engagement Engagement
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StreakInfo is the computed streak state for a user.
type StreakInfo struct {
	Current    int  `json:"current"`
	Longest    int  `json:"longest"`
	FrozenHold bool `json:"frozen_hold"` // current value held by the one-miss freeze rule
}
