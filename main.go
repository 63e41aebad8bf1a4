package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/planwise/nutrisync/internal/cache"
	"github.com/planwise/nutrisync/internal/config"
	"github.com/planwise/nutrisync/internal/database"
	"github.com/planwise/nutrisync/internal/logger"
	"github.com/planwise/nutrisync/internal/repository"
	"github.com/planwise/nutrisync/internal/services"
)

// app holds the wired engine. The transport layer consumes Plans; the
// maintenance loop below only needs Streaks.
type app struct {
	Plans     *services.PlanService
	Streaks   *services.StreakService
	Users     *services.UserService
	planCache *cache.RedisPlanCache
}

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
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Info("Starting NutriSync engine...")

	a, err := buildApp(cfg)
	if err != nil {
		logger.Fatalf("Failed to build application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.runFreezeResetLoop(ctx)

	logger.Info("Shutting down")
	if a.planCache != nil {
		_ = a.planCache.Close()
	}
}

func buildApp(cfg *config.Config) (*app, error) {
	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		return nil, err
	}

	planCache, err := cache.NewRedisPlanCache(cfg.Redis.Host, cfg.Redis.Port)
	if err != nil {
		// The cache is an optimization; every read falls through to the
		// store without it.
		logger.Warn("Redis unavailable, running without plan cache", "error", err.Error())
		planCache = nil
	}

	mealRepo := repository.NewMealRepository(db)
	planRepo := repository.NewPlanRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	shoppingRepo := repository.NewShoppingListRepository(db)
	userRepo := repository.NewUserRepository(db)

	aiService, err := services.NewAIService(cfg.GeminiAPIKey, cfg.OpenAIAPIKey)
	if err != nil {
		return nil, err
	}

	catalogService := services.NewCatalogService(mealRepo, aiService)
	shoppingService := services.NewShoppingService(shoppingRepo)
	streakService := services.NewStreakService(progressRepo, userRepo)
	userService := services.NewUserService(userRepo)

	var cacheForPlans services.PlanCache
	if planCache != nil {
		cacheForPlans = planCache
	}
	planService := services.NewPlanService(planRepo, progressRepo, catalogService, shoppingService, aiService, cacheForPlans)

	logger.Info("Services initialized successfully")
	return &app{
		Plans:     planService,
		Streaks:   streakService,
		Users:     userService,
		planCache: planCache,
	}, nil
}

// runFreezeResetLoop runs the monthly streak-freeze reset sweep. The sweep
// only flips a boolean from false to true, so a tick landing twice in the
// same month is harmless.
func (a *app) runFreezeResetLoop(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Day() != 1 {
				continue
			}
			if _, err := a.Streaks.ResetMonthlyFreezes(ctx); err != nil {
				logger.Error("Monthly freeze reset failed", "error", err.Error())
			}
		}
	}
}
