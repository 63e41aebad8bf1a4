package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/planwise/nutrisync/internal/domain"
	apperrors "github.com/planwise/nutrisync/internal/errors"
	"github.com/planwise/nutrisync/internal/logger"
	"github.com/planwise/nutrisync/internal/utils"
)

// snackTargetCalories is the drafting target used when a snack is added
// without an explicit calorie budget.
const snackTargetCalories = 200

// PlanCache caches the current weekly plan per user. Implementations must
// degrade silently: a cache miss or error always falls through to the store.
type PlanCache interface {
	Get(ctx context.Context, userID string) (*domain.Plan, bool)
	Set(ctx context.Context, plan *domain.Plan)
	Invalidate(ctx context.Context, userID string)
}

// MealSpec is a client-supplied meal for a replace operation. A spec
// carrying calories, the full macro set and at least one ingredient is
// treated as client-authored; anything less goes through the get-or-generate
// path.
type MealSpec struct {
	Name                string
	Calories            int
	Protein             int
	Carbs               int
	Fat                 int
	Ingredients         []domain.Ingredient
	PrepTimeMinutes     int
	DietaryRestrictions []string
	Preferences         []string
	Dislikes            []string
}

// ReplaceMealRequest addresses one meal slot of one day.
type ReplaceMealRequest struct {
	UserID     string
	DateOrDay  string // canonical date key or weekday name
	MealType   domain.MealType
	Meal       MealSpec
	SnackIndex *int
	Language   string
	AIRules    string
}

// ReplaceMealResult carries both the evicted and the resolved meal for
// audit and display.
type ReplaceMealResult struct {
	Plan         *domain.Plan
	ReplacedMeal *domain.PlanMeal
	NewMeal      *domain.PlanMeal
	DateKey      string
	MealType     domain.MealType
	SnackIndex   *int
	MealSource   string
}

// WorkoutSpec describes a workout to schedule.
type WorkoutSpec struct {
	Name            string
	CaloriesBurned  int
	TimeOfDay       string // "HH:MM", optional
	DurationMinutes int
}

// WorkoutResult is returned by every workout mutation.
type WorkoutResult struct {
	Plan        *domain.Plan
	Workout     *domain.Workout
	Adjustments WorkoutAdjustments
	DateKey     string
}

// SnackResult is returned by AddSnack.
type SnackResult struct {
	Plan    *domain.Plan
	Snack   *domain.PlanMeal
	DateKey string
}

// PlanService is the synchronization engine: every meal or workout mutation
// flows through it, and it keeps the Plan, the day's Progress ledger and the
// ShoppingList consistent. Propagation is sequential, not transactional;
// a failed shopping resync is logged and never fails the mutation.
type PlanService struct {
	plans     domain.PlanRepository
	progress  domain.ProgressRepository
	catalog   *CatalogService
	shopping  *ShoppingService
	generator MealGenerator
	cache     PlanCache
	now       func() time.Time
}

func NewPlanService(
	plans domain.PlanRepository,
	progress domain.ProgressRepository,
	catalog *CatalogService,
	shopping *ShoppingService,
	generator MealGenerator,
	cache PlanCache,
) *PlanService {
	return &PlanService{
		plans:     plans,
		progress:  progress,
		catalog:   catalog,
		shopping:  shopping,
		generator: generator,
		cache:     cache,
		now:       time.Now,
	}
}

// ReplaceMeal swaps one meal slot of one day, propagates the calorie/macro
// deltas into the day's optional totals and into an existing Progress row,
// then triggers the shopping list resync.
func (s *PlanService) ReplaceMeal(ctx context.Context, req ReplaceMealRequest) (*ReplaceMealResult, error) {
	if !req.MealType.IsValid() {
		return nil, apperrors.ErrInvalidMealType
	}
	if req.MealType == domain.MealTypeSnack && req.SnackIndex == nil {
		return nil, apperrors.ErrSnackIndexRequired
	}

	plan, err := s.plans.GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if plan == nil {
		return nil, apperrors.ErrPlanNotFound
	}

	dateKey, err := s.resolveDateKey(plan, req.DateOrDay)
	if err != nil {
		return nil, err
	}

	day, ok := plan.WeeklyPlan[dateKey]
	if !ok || day == nil {
		return nil, apperrors.ErrDayNotFound
	}

	oldMeal, err := mealAtSlot(day, req.MealType, req.SnackIndex)
	if err != nil {
		return nil, err
	}

	resolved, source, err := s.resolveMealSpec(ctx, req)
	if err != nil {
		return nil, err
	}
	newMeal := planMealFromCatalog(resolved, req.MealType)

	replaced := *oldMeal
	setMealAtSlot(day, req.MealType, req.SnackIndex, newMeal)
	applyTotalsDelta(day, newMeal, &replaced)

	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	s.invalidateCache(ctx, req.UserID)

	// Progress is an independent ledger: swap the snapshot and unwind the
	// old meal's consumed contribution, but never touch the goal counters.
	if err := s.propagateMealSwap(ctx, req.UserID, dateKey, req.MealType, req.SnackIndex, newMeal); err != nil {
		return nil, err
	}

	s.resyncShopping(ctx, req.UserID, plan)

	return &ReplaceMealResult{
		Plan:         plan,
		ReplacedMeal: &replaced,
		NewMeal:      newMeal,
		DateKey:      dateKey,
		MealType:     req.MealType,
		SnackIndex:   req.SnackIndex,
		MealSource:   source,
	}, nil
}

// AddWorkout schedules a workout and applies the paired calorie/water goal
// deltas, mirroring them into today's Progress when the date is today.
func (s *PlanService) AddWorkout(ctx context.Context, userID, dateOrDay string, spec WorkoutSpec) (*WorkoutResult, error) {
	plan, dateKey, day, err := s.locateDay(ctx, userID, dateOrDay)
	if err != nil {
		return nil, err
	}

	workout := domain.Workout{
		ID:              uuid.NewString(),
		Name:            spec.Name,
		CaloriesBurned:  spec.CaloriesBurned,
		TimeOfDay:       spec.TimeOfDay,
		DurationMinutes: spec.DurationMinutes,
	}
	day.Workouts = append(day.Workouts, workout)

	adjustments := s.applyWaterGoal(plan, day)
	adjustments.CaloriesGoalChange = spec.CaloriesBurned

	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	s.invalidateCache(ctx, userID)

	if err := s.mirrorWorkoutChange(ctx, userID, dateKey, adjustments, &workout, workoutMirrorAdd); err != nil {
		return nil, err
	}

	return &WorkoutResult{Plan: plan, Workout: &workout, Adjustments: adjustments, DateKey: dateKey}, nil
}

// UpdateWorkout edits a scheduled workout. The water delta is recomputed
// from the current workout set, never accumulated from history.
func (s *PlanService) UpdateWorkout(ctx context.Context, userID, dateOrDay, workoutID string, spec WorkoutSpec) (*WorkoutResult, error) {
	plan, dateKey, day, err := s.locateDay(ctx, userID, dateOrDay)
	if err != nil {
		return nil, err
	}

	idx := workoutIndex(day, workoutID)
	if idx < 0 {
		return nil, apperrors.ErrWorkoutNotFound
	}

	previous := day.Workouts[idx]
	day.Workouts[idx] = domain.Workout{
		ID:              previous.ID,
		Name:            spec.Name,
		CaloriesBurned:  spec.CaloriesBurned,
		TimeOfDay:       spec.TimeOfDay,
		DurationMinutes: spec.DurationMinutes,
	}

	adjustments := s.applyWaterGoal(plan, day)
	adjustments.CaloriesGoalChange = spec.CaloriesBurned - previous.CaloriesBurned

	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	s.invalidateCache(ctx, userID)

	updated := day.Workouts[idx]
	if err := s.mirrorWorkoutChange(ctx, userID, dateKey, adjustments, &updated, workoutMirrorUpdate); err != nil {
		return nil, err
	}

	return &WorkoutResult{Plan: plan, Workout: &updated, Adjustments: adjustments, DateKey: dateKey}, nil
}

// DeleteWorkout removes a workout and subtracts the exact adjustments its
// stored calories and time produce, keeping the operation invertible.
func (s *PlanService) DeleteWorkout(ctx context.Context, userID, dateOrDay, workoutID string) (*WorkoutResult, error) {
	plan, dateKey, day, err := s.locateDay(ctx, userID, dateOrDay)
	if err != nil {
		return nil, err
	}

	idx := workoutIndex(day, workoutID)
	if idx < 0 {
		return nil, apperrors.ErrWorkoutNotFound
	}

	deleted := day.Workouts[idx]
	day.Workouts = append(day.Workouts[:idx], day.Workouts[idx+1:]...)

	adjustments := s.applyWaterGoal(plan, day)
	adjustments.CaloriesGoalChange = -deleted.CaloriesBurned

	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	s.invalidateCache(ctx, userID)

	if err := s.mirrorWorkoutChange(ctx, userID, dateKey, adjustments, &deleted, workoutMirrorDelete); err != nil {
		return nil, err
	}

	return &WorkoutResult{Plan: plan, Workout: &deleted, Adjustments: adjustments, DateKey: dateKey}, nil
}

// AddSnack appends a snack to a day, delegating the macro and ingredient
// fill to the generation collaborator through the catalog.
func (s *PlanService) AddSnack(ctx context.Context, userID, dateOrDay, name, language string) (*SnackResult, error) {
	plan, dateKey, day, err := s.locateDay(ctx, userID, dateOrDay)
	if err != nil {
		return nil, err
	}

	meal, _, err := s.catalog.GetOrGenerate(ctx, GenerateMealRequest{
		Name:           name,
		Category:       domain.MealTypeSnack,
		TargetCalories: snackTargetCalories,
		Language:       language,
	})
	if err != nil {
		return nil, err
	}

	snack := planMealFromCatalog(meal, domain.MealTypeSnack)
	day.Meals.Snacks = append(day.Meals.Snacks, *snack)
	applyTotalsDelta(day, snack, nil)

	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	s.invalidateCache(ctx, userID)

	if err := s.propagateSnackAdd(ctx, userID, dateKey, snack); err != nil {
		return nil, err
	}

	s.resyncShopping(ctx, userID, plan)

	return &SnackResult{Plan: plan, Snack: snack, DateKey: dateKey}, nil
}

// GetCurrentWeeklyPlan returns the user's plan, regenerating the week via
// the generation collaborator when today's date key is absent from the
// stored map.
func (s *PlanService) GetCurrentWeeklyPlan(ctx context.Context, userID string) (*domain.Plan, error) {
	if s.cache != nil {
		if plan, ok := s.cache.Get(ctx, userID); ok {
			if _, exists := plan.WeeklyPlan[utils.DateKey(s.now())]; exists {
				return plan, nil
			}
		}
	}

	plan, err := s.plans.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if plan == nil {
		return nil, apperrors.ErrPlanNotFound
	}

	todayKey := utils.DateKey(s.now())
	if _, ok := plan.WeeklyPlan[todayKey]; !ok {
		weekStart := utils.DateKey(startOfWeek(s.now()))
		week, err := s.generator.GenerateWeeklyPlan(ctx, GeneratePlanRequest{
			TargetCalories: plan.Metrics.TargetCalories,
			ProteinTarget:  plan.Metrics.ProteinTarget,
			CarbsTarget:    plan.Metrics.CarbsTarget,
			FatTarget:      plan.Metrics.FatTarget,
			WeekStart:      weekStart,
		})
		if err != nil {
			return nil, err
		}
		plan.WeeklyPlan = week
		plan.WeekStart = weekStart
		if err := s.plans.Update(ctx, plan); err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		s.resyncShopping(ctx, userID, plan)
	}

	if s.cache != nil {
		s.cache.Set(ctx, plan)
	}
	return plan, nil
}

// ToggleMealDone flips a Progress snapshot's done flag and moves the meal's
// calorie and macro contribution in or out of the consumed counters.
func (s *PlanService) ToggleMealDone(ctx context.Context, userID, dateOrDay string, mealType domain.MealType, snackIndex *int) (*domain.Progress, error) {
	if !mealType.IsValid() {
		return nil, apperrors.ErrInvalidMealType
	}
	if mealType == domain.MealTypeSnack && snackIndex == nil {
		return nil, apperrors.ErrSnackIndexRequired
	}

	plan, dateKey, _, err := s.locateDay(ctx, userID, dateOrDay)
	if err != nil {
		return nil, err
	}

	prog, err := s.ensureProgress(ctx, userID, dateKey, plan)
	if err != nil {
		return nil, err
	}

	snap, err := snapshotAtSlot(&prog.Meals, mealType, snackIndex)
	if err != nil {
		return nil, err
	}

	sign := 1
	if snap.Done {
		sign = -1
	}
	snap.Done = !snap.Done
	prog.CaloriesConsumed += sign * snap.Calories
	prog.ProteinConsumed += sign * snap.Protein
	prog.CarbsConsumed += sign * snap.Carbs
	prog.FatConsumed += sign * snap.Fat

	if err := s.progress.Update(ctx, prog); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return prog, nil
}

// ToggleWorkoutDone flips a workout snapshot's done flag in the day's
// Progress ledger.
func (s *PlanService) ToggleWorkoutDone(ctx context.Context, userID, dateOrDay, workoutID string) (*domain.Progress, error) {
	plan, dateKey, _, err := s.locateDay(ctx, userID, dateOrDay)
	if err != nil {
		return nil, err
	}

	prog, err := s.ensureProgress(ctx, userID, dateKey, plan)
	if err != nil {
		return nil, err
	}

	for i := range prog.Workouts {
		if prog.Workouts[i].WorkoutID == workoutID {
			prog.Workouts[i].Done = !prog.Workouts[i].Done
			if err := s.progress.Update(ctx, prog); err != nil {
				return nil, apperrors.NewDatabaseError(err)
			}
			return prog, nil
		}
	}
	return nil, apperrors.ErrWorkoutNotFound
}

func (s *PlanService) resolveMealSpec(ctx context.Context, req ReplaceMealRequest) (*domain.Meal, string, error) {
	candidate := MealCandidate{
		Name:            req.Meal.Name,
		Category:        req.MealType,
		Calories:        req.Meal.Calories,
		Protein:         req.Meal.Protein,
		Carbs:           req.Meal.Carbs,
		Fat:             req.Meal.Fat,
		Ingredients:     req.Meal.Ingredients,
		PrepTimeMinutes: req.Meal.PrepTimeMinutes,
	}

	if candidate.IsComplete() {
		meal, err := s.catalog.Resolve(ctx, candidate)
		if err != nil {
			return nil, "", err
		}
		return meal, MealSourceClient, nil
	}

	return s.catalog.GetOrGenerate(ctx, GenerateMealRequest{
		Name:                req.Meal.Name,
		Category:            req.MealType,
		TargetCalories:      req.Meal.Calories,
		DietaryRestrictions: req.Meal.DietaryRestrictions,
		Preferences:         req.Meal.Preferences,
		Dislikes:            req.Meal.Dislikes,
		Language:            req.Language,
		Rules:               req.AIRules,
	})
}

// resolveDateKey maps a date key or weekday name onto a canonical date key
// within the plan's stored week. The mapping is deterministic for a given
// plan state.
func (s *PlanService) resolveDateKey(plan *domain.Plan, dateOrDay string) (string, error) {
	if utils.IsDateKey(dateOrDay) {
		return dateOrDay, nil
	}

	weekday, ok := utils.ParseWeekday(dateOrDay)
	if !ok {
		return "", apperrors.ErrInvalidDateToken
	}

	keys := make([]string, 0, len(plan.WeeklyPlan))
	for key := range plan.WeeklyPlan {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if t, err := utils.ParseDateKey(key); err == nil && t.Weekday() == weekday {
			return key, nil
		}
	}

	// Fall back to projecting from the plan's reference date.
	ws, err := utils.ParseDateKey(plan.WeekStart)
	if err != nil {
		return "", apperrors.ErrDayNotFound
	}
	offset := (int(weekday) - int(ws.Weekday()) + 7) % 7
	return utils.DateKey(ws.AddDate(0, 0, offset)), nil
}

func (s *PlanService) locateDay(ctx context.Context, userID, dateOrDay string) (*domain.Plan, string, *domain.DayEntry, error) {
	plan, err := s.plans.GetByUserID(ctx, userID)
	if err != nil {
		return nil, "", nil, apperrors.NewDatabaseError(err)
	}
	if plan == nil {
		return nil, "", nil, apperrors.ErrPlanNotFound
	}

	dateKey, err := s.resolveDateKey(plan, dateOrDay)
	if err != nil {
		return nil, "", nil, err
	}

	day, ok := plan.WeeklyPlan[dateKey]
	if !ok || day == nil {
		return nil, "", nil, apperrors.ErrDayNotFound
	}
	return plan, dateKey, day, nil
}

// applyWaterGoal recomputes the day's water goal from the current workout
// set. The goal never drops below the daily minimum and never drifts from
// accumulated deltas: it is always a function of the workouts as stored.
func (s *PlanService) applyWaterGoal(plan *domain.Plan, day *domain.DayEntry) WorkoutAdjustments {
	base := plan.Metrics.WaterGoal
	if base < MinimumWaterGlasses {
		base = MinimumWaterGlasses
	}

	goal := base
	for _, w := range day.Workouts {
		goal += WorkoutWaterGlasses(w.CaloriesBurned, w.TimeOfDay)
	}
	if goal < MinimumWaterGlasses {
		goal = MinimumWaterGlasses
	}

	previous := day.WaterIntakeGoal
	if previous == 0 {
		previous = base
	}
	day.WaterIntakeGoal = goal

	return WorkoutAdjustments{WaterGoalChange: goal - previous}
}

type workoutMirrorMode int

const (
	workoutMirrorAdd workoutMirrorMode = iota
	workoutMirrorUpdate
	workoutMirrorDelete
)

// mirrorWorkoutChange applies a workout mutation's goal deltas to today's
// Progress ledger. Dates other than today leave Progress untouched.
func (s *PlanService) mirrorWorkoutChange(ctx context.Context, userID, dateKey string, adj WorkoutAdjustments, workout *domain.Workout, mode workoutMirrorMode) error {
	if dateKey != utils.DateKey(s.now()) {
		return nil
	}

	prog, err := s.progress.GetByUserAndDate(ctx, userID, dateKey)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if prog == nil {
		return nil
	}

	prog.CaloriesGoal += adj.CaloriesGoalChange
	prog.WaterGoal = flooredWaterGoal(prog.WaterGoal, adj.WaterGoalChange)

	switch mode {
	case workoutMirrorAdd:
		prog.Workouts = append(prog.Workouts, domain.WorkoutSnapshot{
			WorkoutID:      workout.ID,
			Name:           workout.Name,
			CaloriesBurned: workout.CaloriesBurned,
			TimeOfDay:      workout.TimeOfDay,
		})
	case workoutMirrorUpdate:
		for i := range prog.Workouts {
			if prog.Workouts[i].WorkoutID == workout.ID {
				done := prog.Workouts[i].Done
				prog.Workouts[i] = domain.WorkoutSnapshot{
					WorkoutID:      workout.ID,
					Name:           workout.Name,
					CaloriesBurned: workout.CaloriesBurned,
					TimeOfDay:      workout.TimeOfDay,
					Done:           done,
				}
				break
			}
		}
	case workoutMirrorDelete:
		for i := range prog.Workouts {
			if prog.Workouts[i].WorkoutID == workout.ID {
				prog.Workouts = append(prog.Workouts[:i], prog.Workouts[i+1:]...)
				break
			}
		}
	}

	if err := s.progress.Update(ctx, prog); err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// propagateMealSwap updates the date's Progress row after a meal swap: the
// old snapshot's consumed contribution is unwound when it was done, and the
// new snapshot starts over as not done. Goal counters stay untouched; they
// are fixed by the user's metabolic targets, not by the schedule.
func (s *PlanService) propagateMealSwap(ctx context.Context, userID, dateKey string, mealType domain.MealType, snackIndex *int, newMeal *domain.PlanMeal) error {
	prog, err := s.progress.GetByUserAndDate(ctx, userID, dateKey)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if prog == nil {
		return nil
	}

	old, err := snapshotAtSlot(&prog.Meals, mealType, snackIndex)
	if err != nil {
		// The Progress slot layout can lag behind the plan; nothing to
		// unwind in that case.
		return nil
	}

	if old.Done {
		prog.CaloriesConsumed -= old.Calories
		prog.ProteinConsumed -= old.Protein
		prog.CarbsConsumed -= old.Carbs
		prog.FatConsumed -= old.Fat
	}

	*old = domain.MealSnapshot{
		MealID:   newMeal.MealID,
		Name:     newMeal.Name,
		Category: newMeal.Category,
		Calories: newMeal.Calories,
		Protein:  newMeal.Protein,
		Carbs:    newMeal.Carbs,
		Fat:      newMeal.Fat,
		Done:     false,
	}

	if err := s.progress.Update(ctx, prog); err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

func (s *PlanService) propagateSnackAdd(ctx context.Context, userID, dateKey string, snack *domain.PlanMeal) error {
	prog, err := s.progress.GetByUserAndDate(ctx, userID, dateKey)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if prog == nil {
		return nil
	}

	prog.Meals.Snacks = append(prog.Meals.Snacks, domain.MealSnapshot{
		MealID:   snack.MealID,
		Name:     snack.Name,
		Category: snack.Category,
		Calories: snack.Calories,
		Protein:  snack.Protein,
		Carbs:    snack.Carbs,
		Fat:      snack.Fat,
	})

	if err := s.progress.Update(ctx, prog); err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// ensureProgress loads the date's Progress row, seeding one from the plan
// day when absent. Seeding copies snapshots by value; the ledger never
// shares state with the plan afterwards.
func (s *PlanService) ensureProgress(ctx context.Context, userID, dateKey string, plan *domain.Plan) (*domain.Progress, error) {
	prog, err := s.progress.GetByUserAndDate(ctx, userID, dateKey)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if prog != nil {
		return prog, nil
	}

	day := plan.WeeklyPlan[dateKey]
	prog = seedProgress(userID, dateKey, day, plan.Metrics)
	if err := s.progress.Create(ctx, prog); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return prog, nil
}

func seedProgress(userID, dateKey string, day *domain.DayEntry, metrics domain.TargetMetrics) *domain.Progress {
	prog := &domain.Progress{
		ID:           uuid.NewString(),
		UserID:       userID,
		DateKey:      dateKey,
		CaloriesGoal: metrics.TargetCalories,
		ProteinGoal:  metrics.ProteinTarget,
		CarbsGoal:    metrics.CarbsTarget,
		FatGoal:      metrics.FatTarget,
		WaterGoal:    metrics.WaterGoal,
	}
	if prog.WaterGoal < MinimumWaterGlasses {
		prog.WaterGoal = MinimumWaterGlasses
	}
	if day == nil {
		return prog
	}

	snapshot := func(meal *domain.PlanMeal) *domain.MealSnapshot {
		if meal == nil {
			return nil
		}
		return &domain.MealSnapshot{
			MealID:   meal.MealID,
			Name:     meal.Name,
			Category: meal.Category,
			Calories: meal.Calories,
			Protein:  meal.Protein,
			Carbs:    meal.Carbs,
			Fat:      meal.Fat,
		}
	}

	prog.Meals.Breakfast = snapshot(day.Meals.Breakfast)
	prog.Meals.Lunch = snapshot(day.Meals.Lunch)
	prog.Meals.Dinner = snapshot(day.Meals.Dinner)
	for i := range day.Meals.Snacks {
		prog.Meals.Snacks = append(prog.Meals.Snacks, *snapshot(&day.Meals.Snacks[i]))
	}
	for _, w := range day.Workouts {
		prog.Workouts = append(prog.Workouts, domain.WorkoutSnapshot{
			WorkoutID:      w.ID,
			Name:           w.Name,
			CaloriesBurned: w.CaloriesBurned,
			TimeOfDay:      w.TimeOfDay,
		})
		prog.CaloriesGoal += w.CaloriesBurned
		prog.WaterGoal = flooredWaterGoal(prog.WaterGoal, WorkoutWaterGlasses(w.CaloriesBurned, w.TimeOfDay))
	}
	if day.WaterIntakeGoal > prog.WaterGoal {
		prog.WaterGoal = day.WaterIntakeGoal
	}
	return prog
}

// resyncShopping is best-effort: a failure here never rolls back the plan
// or progress writes, it is logged and heals on the next mutation.
func (s *PlanService) resyncShopping(ctx context.Context, userID string, plan *domain.Plan) {
	if s.shopping == nil {
		return
	}
	if _, err := s.shopping.Sync(ctx, userID, plan.ID, plan.WeeklyPlan); err != nil {
		logger.Warn("Shopping list resync failed",
			"user_id", userID,
			"plan_id", plan.ID,
			"error", err.Error(),
		)
	}
}

func (s *PlanService) invalidateCache(ctx context.Context, userID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

func mealAtSlot(day *domain.DayEntry, mealType domain.MealType, snackIndex *int) (*domain.PlanMeal, error) {
	switch mealType {
	case domain.MealTypeBreakfast:
		if day.Meals.Breakfast == nil {
			return nil, apperrors.ErrMealNotFound
		}
		return day.Meals.Breakfast, nil
	case domain.MealTypeLunch:
		if day.Meals.Lunch == nil {
			return nil, apperrors.ErrMealNotFound
		}
		return day.Meals.Lunch, nil
	case domain.MealTypeDinner:
		if day.Meals.Dinner == nil {
			return nil, apperrors.ErrMealNotFound
		}
		return day.Meals.Dinner, nil
	case domain.MealTypeSnack:
		if snackIndex == nil {
			return nil, apperrors.ErrSnackIndexRequired
		}
		if *snackIndex < 0 || *snackIndex >= len(day.Meals.Snacks) {
			return nil, apperrors.ErrSnackNotFound
		}
		return &day.Meals.Snacks[*snackIndex], nil
	}
	return nil, apperrors.ErrInvalidMealType
}

func setMealAtSlot(day *domain.DayEntry, mealType domain.MealType, snackIndex *int, meal *domain.PlanMeal) {
	switch mealType {
	case domain.MealTypeBreakfast:
		day.Meals.Breakfast = meal
	case domain.MealTypeLunch:
		day.Meals.Lunch = meal
	case domain.MealTypeDinner:
		day.Meals.Dinner = meal
	case domain.MealTypeSnack:
		day.Meals.Snacks[*snackIndex] = *meal
	}
}

func snapshotAtSlot(meals *domain.ProgressMeals, mealType domain.MealType, snackIndex *int) (*domain.MealSnapshot, error) {
	switch mealType {
	case domain.MealTypeBreakfast:
		if meals.Breakfast == nil {
			return nil, apperrors.ErrMealNotFound
		}
		return meals.Breakfast, nil
	case domain.MealTypeLunch:
		if meals.Lunch == nil {
			return nil, apperrors.ErrMealNotFound
		}
		return meals.Lunch, nil
	case domain.MealTypeDinner:
		if meals.Dinner == nil {
			return nil, apperrors.ErrMealNotFound
		}
		return meals.Dinner, nil
	case domain.MealTypeSnack:
		if snackIndex == nil {
			return nil, apperrors.ErrSnackIndexRequired
		}
		if *snackIndex < 0 || *snackIndex >= len(meals.Snacks) {
			return nil, apperrors.ErrSnackNotFound
		}
		return &meals.Snacks[*snackIndex], nil
	}
	return nil, apperrors.ErrInvalidMealType
}

// applyTotalsDelta shifts the day's optional total counters by the swap
// delta. Totals absent from the document stay absent; they are aggregates,
// not authoritative state.
func applyTotalsDelta(day *domain.DayEntry, added, removed *domain.PlanMeal) {
	dCal, dProt, dCarb, dFat := 0, 0, 0, 0
	if added != nil {
		dCal += added.Calories
		dProt += added.Protein
		dCarb += added.Carbs
		dFat += added.Fat
	}
	if removed != nil {
		dCal -= removed.Calories
		dProt -= removed.Protein
		dCarb -= removed.Carbs
		dFat -= removed.Fat
	}

	if day.TotalCalories != nil {
		*day.TotalCalories += dCal
	}
	if day.TotalProtein != nil {
		*day.TotalProtein += dProt
	}
	if day.TotalCarbs != nil {
		*day.TotalCarbs += dCarb
	}
	if day.TotalFat != nil {
		*day.TotalFat += dFat
	}
}

func planMealFromCatalog(meal *domain.Meal, slot domain.MealType) *domain.PlanMeal {
	return &domain.PlanMeal{
		MealID:          meal.ID,
		Name:            meal.Name,
		Category:        slot,
		Calories:        meal.Calories,
		Protein:         meal.Protein,
		Carbs:           meal.Carbs,
		Fat:             meal.Fat,
		Ingredients:     append([]domain.Ingredient(nil), meal.Ingredients...),
		PrepTimeMinutes: meal.PrepTimeMinutes,
	}
}

func workoutIndex(day *domain.DayEntry, workoutID string) int {
	for i := range day.Workouts {
		if day.Workouts[i].ID == workoutID {
			return i
		}
	}
	return -1
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday-based week
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -offset)
}
