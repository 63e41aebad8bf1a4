package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/planwise/nutrisync/internal/config"
	"github.com/planwise/nutrisync/internal/database"
	"github.com/planwise/nutrisync/internal/logger"
	"github.com/planwise/nutrisync/internal/repository"
	"github.com/planwise/nutrisync/internal/services"
)

// Manual trigger for the monthly streak-freeze reset sweep. Safe to run
// more than once; the sweep only flips the capability from false to true.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: "stdout",
		Format:     "text",
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	streaks := services.NewStreakService(
		repository.NewProgressRepository(db),
		repository.NewUserRepository(db),
	)

	restored, err := streaks.ResetMonthlyFreezes(context.Background())
	if err != nil {
		logger.Errorf("Freeze reset failed: %v", err)
		os.Exit(1)
	}
	fmt.Printf("Restored streak freezes for %d users\n", restored)
}
