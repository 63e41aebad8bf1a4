package services

import "testing"

func TestWorkoutWaterGlassesMinimumOneGlass(t *testing.T) {
	t.Parallel()
	if got := WorkoutWaterGlasses(0, ""); got != 1 {
		t.Fatalf("expected 1 glass for a zero-calorie workout, got %d", got)
	}
	if got := WorkoutWaterGlasses(-100, "13:00"); got != 1 {
		t.Fatalf("expected 1 glass for negative calories, got %d", got)
	}
}

func TestWorkoutWaterGlassesScalesWithCalories(t *testing.T) {
	t.Parallel()
	cases := []struct {
		calories int
		want     int
	}{
		{150, 1},
		{151, 2},
		{300, 2},
		{600, 4},
	}
	for _, tc := range cases {
		if got := WorkoutWaterGlasses(tc.calories, "13:00"); got != tc.want {
			t.Fatalf("WorkoutWaterGlasses(%d, 13:00) = %d, want %d", tc.calories, got, tc.want)
		}
	}

	prev := 0
	for calories := 0; calories <= 2000; calories += 50 {
		got := WorkoutWaterGlasses(calories, "13:00")
		if got < prev {
			t.Fatalf("glasses decreased from %d to %d at %d calories", prev, got, calories)
		}
		prev = got
	}
}

func TestWorkoutWaterGlassesEarlierWorkoutsNeedMore(t *testing.T) {
	t.Parallel()
	cases := []struct {
		timeOfDay string
		want      int
	}{
		{"07:00", 6},
		{"10:00", 5},
		{"13:00", 4},
		{"18:00", 3},
		{"22:00", 2},
	}
	prev := -1
	for _, tc := range cases {
		got := WorkoutWaterGlasses(600, tc.timeOfDay)
		if got != tc.want {
			t.Fatalf("WorkoutWaterGlasses(600, %s) = %d, want %d", tc.timeOfDay, got, tc.want)
		}
		if prev >= 0 && got > prev {
			t.Fatalf("glasses increased later in the day: %d at %s after %d", got, tc.timeOfDay, prev)
		}
		prev = got
	}
}

func TestWorkoutWaterGlassesUnparsedTimeUsesBase(t *testing.T) {
	t.Parallel()
	if got := WorkoutWaterGlasses(600, "whenever"); got != 4 {
		t.Fatalf("expected base glasses for unparsed time, got %d", got)
	}
}

func TestFlooredWaterGoal(t *testing.T) {
	t.Parallel()
	cases := []struct {
		current, delta, want int
	}{
		{10, -5, MinimumWaterGlasses},
		{12, -2, 10},
		{8, 3, 11},
		{8, -100, MinimumWaterGlasses},
	}
	for _, tc := range cases {
		if got := flooredWaterGoal(tc.current, tc.delta); got != tc.want {
			t.Fatalf("flooredWaterGoal(%d, %d) = %d, want %d", tc.current, tc.delta, got, tc.want)
		}
	}
}

func TestAdjustmentsForWorkoutPairsDeltas(t *testing.T) {
	t.Parallel()
	adj := adjustmentsForWorkout(450, "08:30")
	if adj.CaloriesGoalChange != 450 {
		t.Fatalf("expected calorie delta 450, got %d", adj.CaloriesGoalChange)
	}
	if adj.WaterGoalChange != WorkoutWaterGlasses(450, "08:30") {
		t.Fatalf("water delta %d does not match the model", adj.WaterGoalChange)
	}
}
