package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/planwise/nutrisync/internal/domain"
	apperrors "github.com/planwise/nutrisync/internal/errors"
	"github.com/planwise/nutrisync/internal/logger"
	"github.com/planwise/nutrisync/internal/utils"
)

// Habit score weights. The four parts sum to 100.
const (
	weightActivity   = 30 // recent 7-day activity ratio
	weightStreak     = 25 // current streak, capped at 30 days
	weightGoalHit    = 25 // 7-day calorie goal-hit rate
	weightMindful    = 20 // badge-derived mindfulness points
	streakCapDays    = 30
	goalHitLowerPct  = 0.85
	goalHitUpperPct  = 1.15
	mindfulPointsCap = 20
)

// mindfulBadgePoints maps qualifying badges to their fixed contribution.
var mindfulBadgePoints = map[string]int{
	"mindful_eater":     5,
	"meditation_week":   5,
	"hydration_hero":    5,
	"early_riser":       5,
	"consistency_month": 5,
}

// StreakService computes activity streaks and the composite habit score
// from a user's progress history.
type StreakService struct {
	progress domain.ProgressRepository
	users    domain.UserRepository
	now      func() time.Time
}

func NewStreakService(progress domain.ProgressRepository, users domain.UserRepository) *StreakService {
	return &StreakService{
		progress: progress,
		users:    users,
		now:      time.Now,
	}
}

// GetStreak computes the user's current and longest streaks.
func (s *StreakService) GetStreak(ctx context.Context, userID string) (*domain.StreakInfo, error) {
	history, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	info := ComputeStreaks(ActiveDays(history), s.now())
	return &info, nil
}

// GetHabitScore computes the 0-100 composite engagement score.
func (s *StreakService) GetHabitScore(ctx context.Context, userID string) (int, error) {
	history, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		return 0, apperrors.NewDatabaseError(err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, apperrors.NewDatabaseError(err)
	}
	if user == nil {
		return 0, apperrors.ErrUserNotFound
	}

	today := s.now()
	streaks := ComputeStreaks(ActiveDays(history), today)
	return ComputeHabitScore(history, streaks.Current, user.Engagement.Badges, today), nil
}

// ConsumeStreakFreeze spends the user's freeze capability. It reports false
// when the freeze was already used this month; the capability only comes
// back through the monthly reset sweep.
func (s *StreakService) ConsumeStreakFreeze(ctx context.Context, userID string) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, apperrors.NewDatabaseError(err)
	}
	if user == nil {
		return false, apperrors.ErrUserNotFound
	}
	if !user.Engagement.StreakFreezeAvailable {
		return false, nil
	}

	engagement := user.Engagement
	engagement.StreakFreezeAvailable = false
	engagement.FreezeUsedMonth = s.now().Format("2006-01")
	if err := s.users.UpdateEngagement(ctx, userID, engagement); err != nil {
		return false, apperrors.NewDatabaseError(err)
	}
	return true, nil
}

// ResetMonthlyFreezes restores the freeze capability for every user. The
// sweep only flips false to true, so it is idempotent and safe to run
// concurrently with per-user operations.
func (s *StreakService) ResetMonthlyFreezes(ctx context.Context) (int64, error) {
	restored, err := s.users.RestoreStreakFreezes(ctx)
	if err != nil {
		return 0, apperrors.NewDatabaseError(err)
	}
	logger.Info("Monthly streak freeze reset completed", "users_restored", restored)
	return restored, nil
}

// ActiveDays reduces a progress history to the set of active date keys. A
// day is active when any of breakfast, lunch or dinner is done, or any
// snack is done.
func ActiveDays(history []domain.Progress) map[string]bool {
	active := make(map[string]bool, len(history))
	for i := range history {
		if isActiveDay(&history[i]) {
			active[history[i].DateKey] = true
		}
	}
	return active
}

func isActiveDay(p *domain.Progress) bool {
	meals := p.Meals
	if meals.Breakfast != nil && meals.Breakfast.Done {
		return true
	}
	if meals.Lunch != nil && meals.Lunch.Done {
		return true
	}
	if meals.Dinner != nil && meals.Dinner.Done {
		return true
	}
	for _, snack := range meals.Snacks {
		if snack.Done {
			return true
		}
	}
	return false
}

// ComputeStreaks walks the active-day set backward from today. One missed
// day never breaks the count: before the streak has started it is a grace
// day, and inside a run it freezes the streak across the gap. A gap of two
// or more days in front of the most recent run decays the streak by exactly
// one instead of resetting it; a two-day gap inside the walk terminates it.
func ComputeStreaks(active map[string]bool, today time.Time) domain.StreakInfo {
	var info domain.StreakInfo
	if len(active) == 0 {
		return info
	}

	oldest := oldestActive(active)

	anchor := today
	if !active[utils.DateKey(anchor)] {
		anchor = anchor.AddDate(0, 0, -1)
	}

	// Lead phase: count misses until the most recent active day.
	cursor := anchor
	leadMisses := 0
	for cursor.After(oldest) || utils.DateKey(cursor) == utils.DateKey(oldest) {
		if active[utils.DateKey(cursor)] {
			break
		}
		leadMisses++
		cursor = cursor.AddDate(0, 0, -1)
	}

	current := 0
	misses := 0
	for cursor.After(oldest) || utils.DateKey(cursor) == utils.DateKey(oldest) {
		if active[utils.DateKey(cursor)] {
			current++
			misses = 0
		} else {
			misses++
			if misses >= 2 {
				break
			}
		}
		cursor = cursor.AddDate(0, 0, -1)
	}

	if leadMisses >= 2 && current > 0 {
		current--
		info.FrozenHold = false
	} else if leadMisses == 1 && current > 0 {
		info.FrozenHold = true
	}

	info.Current = current
	info.Longest = longestRun(active, current)
	return info
}

// longestRun is a single forward pass over the sorted active days, seeded
// with the current streak as a lower bound.
func longestRun(active map[string]bool, currentStreak int) int {
	days := make([]time.Time, 0, len(active))
	for key := range active {
		if t, err := utils.ParseDateKey(key); err == nil {
			days = append(days, t)
		}
	}
	if len(days) == 0 {
		return currentStreak
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest := currentStreak
	run := 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	if run == 1 && longest < 1 {
		longest = 1
	}
	return longest
}

func oldestActive(active map[string]bool) time.Time {
	var oldest time.Time
	first := true
	for key := range active {
		t, err := utils.ParseDateKey(key)
		if err != nil {
			continue
		}
		if first || t.Before(oldest) {
			oldest = t
			first = false
		}
	}
	return oldest
}

// ComputeHabitScore blends consistency, streak length, goal adherence and
// mindfulness badges into a clamped 0-100 score.
func ComputeHabitScore(history []domain.Progress, currentStreak int, badges []string, today time.Time) int {
	byDate := make(map[string]*domain.Progress, len(history))
	for i := range history {
		byDate[history[i].DateKey] = &history[i]
	}

	activeCount := 0
	goalDays := 0
	goalHits := 0
	for offset := 0; offset < 7; offset++ {
		key := utils.DateKey(today.AddDate(0, 0, -offset))
		p, ok := byDate[key]
		if !ok {
			continue
		}
		if isActiveDay(p) {
			activeCount++
		}
		if p.CaloriesGoal > 0 {
			goalDays++
			ratio := float64(p.CaloriesConsumed) / float64(p.CaloriesGoal)
			if ratio >= goalHitLowerPct && ratio <= goalHitUpperPct {
				goalHits++
			}
		}
	}

	activityPart := float64(weightActivity) * float64(activeCount) / 7

	streak := currentStreak
	if streak > streakCapDays {
		streak = streakCapDays
	}
	streakPart := float64(weightStreak) * float64(streak) / streakCapDays

	goalPart := 0.0
	if goalDays > 0 {
		goalPart = float64(weightGoalHit) * float64(goalHits) / float64(goalDays)
	}

	mindfulPoints := 0
	for _, badge := range badges {
		mindfulPoints += mindfulBadgePoints[badge]
	}
	if mindfulPoints > mindfulPointsCap {
		mindfulPoints = mindfulPointsCap
	}
	mindfulPart := float64(weightMindful) * float64(mindfulPoints) / mindfulPointsCap

	score := int(math.Round(activityPart + streakPart + goalPart + mindfulPart))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
