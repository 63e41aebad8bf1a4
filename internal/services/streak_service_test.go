package services

import (
	"context"
	"testing"
	"time"

	"github.com/planwise/nutrisync/internal/domain"
	"github.com/planwise/nutrisync/internal/utils"
)

func day(t *testing.T, key string) time.Time {
	t.Helper()
	parsed, err := utils.ParseDateKey(key)
	if err != nil {
		t.Fatalf("bad date key %q: %v", key, err)
	}
	return parsed
}

func activeSet(keys ...string) map[string]bool {
	active := make(map[string]bool, len(keys))
	for _, k := range keys {
		active[k] = true
	}
	return active
}

func TestComputeStreaksEmptyHistory(t *testing.T) {
	t.Parallel()
	info := ComputeStreaks(nil, time.Now())
	if info.Current != 0 || info.Longest != 0 || info.FrozenHold {
		t.Fatalf("expected zero streaks, got %+v", info)
	}
}

func TestComputeStreaksCountsConsecutiveDays(t *testing.T) {
	t.Parallel()
	info := ComputeStreaks(activeSet("2026-03-08", "2026-03-09", "2026-03-10"), day(t, "2026-03-10"))
	if info.Current != 3 {
		t.Fatalf("expected current 3, got %d", info.Current)
	}
	if info.Longest != 3 {
		t.Fatalf("expected longest 3, got %d", info.Longest)
	}
	if info.FrozenHold {
		t.Fatalf("unexpected frozen hold")
	}
}

func TestComputeStreaksSingleInteriorMissBridges(t *testing.T) {
	t.Parallel()
	// Active, miss, then active again: the miss freezes the count instead
	// of breaking it.
	info := ComputeStreaks(activeSet("2026-03-07", "2026-03-08", "2026-03-10"), day(t, "2026-03-10"))
	if info.Current != 3 {
		t.Fatalf("single miss broke the streak: got %d, want 3", info.Current)
	}
}

func TestComputeStreaksMissedTodayHoldsValue(t *testing.T) {
	t.Parallel()
	info := ComputeStreaks(activeSet("2026-03-07", "2026-03-08"), day(t, "2026-03-10"))
	if info.Current != 2 {
		t.Fatalf("one missed day should hold the streak at 2, got %d", info.Current)
	}
	if !info.FrozenHold {
		t.Fatalf("expected the frozen-hold marker")
	}
}

func TestComputeStreaksLeadGapDecaysByExactlyOne(t *testing.T) {
	t.Parallel()
	info := ComputeStreaks(activeSet("2026-03-05", "2026-03-06", "2026-03-07"), day(t, "2026-03-10"))
	if info.Current != 2 {
		t.Fatalf("two missed days should decay 3 to 2, got %d", info.Current)
	}
	if info.FrozenHold {
		t.Fatalf("decayed streak should not be marked frozen")
	}
}

func TestComputeStreaksDecayFloorsAtZero(t *testing.T) {
	t.Parallel()
	info := ComputeStreaks(activeSet("2026-03-01"), day(t, "2026-03-10"))
	if info.Current != 0 {
		t.Fatalf("expected decay floor 0, got %d", info.Current)
	}
	if info.Longest != 1 {
		t.Fatalf("expected longest 1, got %d", info.Longest)
	}
}

func TestComputeStreaksInteriorTwoDayGapTerminatesWalk(t *testing.T) {
	t.Parallel()
	info := ComputeStreaks(
		activeSet("2026-03-05", "2026-03-06", "2026-03-09", "2026-03-10"),
		day(t, "2026-03-10"),
	)
	if info.Current != 2 {
		t.Fatalf("walk should stop at the two-day gap: got %d, want 2", info.Current)
	}
}

func TestComputeStreaksLongestSurvivesReset(t *testing.T) {
	t.Parallel()
	info := ComputeStreaks(
		activeSet("2026-03-01", "2026-03-02", "2026-03-03", "2026-03-04", "2026-03-09", "2026-03-10"),
		day(t, "2026-03-10"),
	)
	if info.Current != 2 {
		t.Fatalf("expected current 2, got %d", info.Current)
	}
	if info.Longest != 4 {
		t.Fatalf("expected longest 4, got %d", info.Longest)
	}
}

func doneDay(userID, dateKey string, consumed, goal int) domain.Progress {
	return domain.Progress{
		UserID:  userID,
		DateKey: dateKey,
		Meals: domain.ProgressMeals{
			Breakfast: &domain.MealSnapshot{Name: "Breakfast", Calories: consumed, Done: true},
		},
		CaloriesConsumed: consumed,
		CaloriesGoal:     goal,
	}
}

func TestComputeHabitScorePerfectWeek(t *testing.T) {
	t.Parallel()
	today := day(t, "2026-03-10")
	var history []domain.Progress
	for offset := 0; offset < 7; offset++ {
		history = append(history, doneDay("u1", utils.DateKey(today.AddDate(0, 0, -offset)), 2000, 2000))
	}
	badges := []string{"mindful_eater", "meditation_week", "hydration_hero", "early_riser"}

	if got := ComputeHabitScore(history, 30, badges, today); got != 100 {
		t.Fatalf("expected a perfect score, got %d", got)
	}
}

func TestComputeHabitScoreEmptyHistory(t *testing.T) {
	t.Parallel()
	if got := ComputeHabitScore(nil, 0, nil, day(t, "2026-03-10")); got != 0 {
		t.Fatalf("expected 0 for no history, got %d", got)
	}
}

func TestComputeHabitScoreGoalBandEdges(t *testing.T) {
	t.Parallel()
	today := day(t, "2026-03-10")
	history := []domain.Progress{
		doneDay("u1", "2026-03-10", 1700, 2000), // exactly 85%: a hit
		doneDay("u1", "2026-03-09", 1680, 2000), // 84%: a miss
	}

	// 30*2/7 activity + 25*2/30 streak + 25*1/2 goal adherence, rounded.
	if got := ComputeHabitScore(history, 2, nil, today); got != 23 {
		t.Fatalf("expected 23, got %d", got)
	}
}

func TestComputeHabitScoreCapsMindfulPoints(t *testing.T) {
	t.Parallel()
	today := day(t, "2026-03-10")
	allBadges := []string{"mindful_eater", "meditation_week", "hydration_hero", "early_riser", "consistency_month"}
	capped := ComputeHabitScore(nil, 0, allBadges, today)
	fourOnly := ComputeHabitScore(nil, 0, allBadges[:4], today)
	if capped != fourOnly {
		t.Fatalf("fifth badge should not raise the score past the cap: %d != %d", capped, fourOnly)
	}
	if capped != 20 {
		t.Fatalf("expected mindful component 20, got %d", capped)
	}
}

func TestGetStreakReadsProgressLedger(t *testing.T) {
	t.Parallel()
	progress := newFakeProgressRepo()
	users := newFakeUserRepo()
	svc := NewStreakService(progress, users)
	svc.now = func() time.Time { return day(t, "2026-03-10") }

	ctx := context.Background()
	for _, key := range []string{"2026-03-08", "2026-03-09", "2026-03-10"} {
		p := doneDay("u1", key, 1800, 2000)
		if err := progress.Create(ctx, &p); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	info, err := svc.GetStreak(ctx, "u1")
	if err != nil {
		t.Fatalf("GetStreak failed: %v", err)
	}
	if info.Current != 3 {
		t.Fatalf("expected current 3, got %d", info.Current)
	}
}

func TestConsumeStreakFreezeSingleUsePerMonth(t *testing.T) {
	t.Parallel()
	users := newFakeUserRepo()
	svc := NewStreakService(newFakeProgressRepo(), users)
	svc.now = func() time.Time { return day(t, "2026-03-10") }

	ctx := context.Background()
	if err := users.Create(ctx, &domain.User{ID: "u1", Engagement: domain.NewEngagement()}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ok, err := svc.ConsumeStreakFreeze(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("first consume should succeed: ok=%v err=%v", ok, err)
	}

	stored := users.users["u1"]
	if stored.Engagement.StreakFreezeAvailable {
		t.Fatalf("freeze still available after consumption")
	}
	if stored.Engagement.FreezeUsedMonth != "2026-03" {
		t.Fatalf("expected usage month 2026-03, got %q", stored.Engagement.FreezeUsedMonth)
	}

	ok, err = svc.ConsumeStreakFreeze(ctx, "u1")
	if err != nil {
		t.Fatalf("second consume errored: %v", err)
	}
	if ok {
		t.Fatalf("freeze consumed twice in one month")
	}
}

func TestResetMonthlyFreezesRestoresSpentUsers(t *testing.T) {
	t.Parallel()
	users := newFakeUserRepo()
	svc := NewStreakService(newFakeProgressRepo(), users)

	ctx := context.Background()
	spent := domain.NewEngagement()
	spent.StreakFreezeAvailable = false
	if err := users.Create(ctx, &domain.User{ID: "u1", Engagement: spent}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := users.Create(ctx, &domain.User{ID: "u2", Engagement: domain.NewEngagement()}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	restored, err := svc.ResetMonthlyFreezes(ctx)
	if err != nil {
		t.Fatalf("ResetMonthlyFreezes failed: %v", err)
	}
	if restored != 1 {
		t.Fatalf("expected 1 restored user, got %d", restored)
	}
	if !users.users["u1"].Engagement.StreakFreezeAvailable {
		t.Fatalf("spent freeze not restored")
	}
}
