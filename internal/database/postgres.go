package database

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/planwise/nutrisync/internal/config"
	"github.com/planwise/nutrisync/internal/database/migrations"
	"github.com/planwise/nutrisync/internal/logger"
)

// User is an account row. Engagement state lives in a JSON column so the
// monthly freeze sweep stays a single bulk update.
type User struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	Name       string
	Email      string `gorm:"uniqueIndex"`
	Engagement datatypes.JSON
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Meal is a catalog entry row. The signature column carries the content
// hash used for deduplication.
type Meal struct {
	ID              string `gorm:"type:uuid;primaryKey"`
	Name            string `gorm:"index"`
	Category        string `gorm:"index"`
	Calories        int
	Protein         int
	Carbs           int
	Fat             int
	PrepTimeMinutes int
	Signature       string `gorm:"uniqueIndex"`
	UsageCount      int    `gorm:"default:1"`
	ParentMealID    string
	Ingredients     datatypes.JSON
	Variations      datatypes.JSON
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Plan is the weekly plan document. The unique index on user_id enforces
// one plan per user at the store level.
type Plan struct {
	ID               string `gorm:"type:uuid;primaryKey"`
	UserID           string `gorm:"uniqueIndex"`
	WeekStart        string
	Metrics          datatypes.JSON
	WeeklyPlan       datatypes.JSON
	ConsumedCalories int
	ConsumedProtein  int
	ConsumedCarbs    int
	ConsumedFat      int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Progress is the per-day ledger document, unique per (user, date key).
type Progress struct {
	ID      string `gorm:"type:uuid;primaryKey"`
	UserID  string `gorm:"index;uniqueIndex:idx_progress_user_date,priority:1"`
	DateKey string `gorm:"uniqueIndex:idx_progress_user_date,priority:2"`

	Meals    datatypes.JSON
	Workouts datatypes.JSON

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

// ShoppingList holds the aggregated ingredient rows for one plan's week.
type ShoppingList struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	UserID    string `gorm:"uniqueIndex:idx_shopping_user_plan,priority:1"`
	PlanID    string `gorm:"uniqueIndex:idx_shopping_user_plan,priority:2"`
	Items     datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPostgresDB opens the database, runs SQL migrations when present and
// auto-migrates the schema.
func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("failed to get current file path")
	}
	migrationsDir := filepath.Join(filepath.Dir(filename), "migrations")

	if err := migrations.LoadSQLMigrations(db, migrationsDir); err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &Meal{}, &Plan{}, &Progress{}, &ShoppingList{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	logger.Info("Database connection established and migrations completed")
	return db, nil
}
