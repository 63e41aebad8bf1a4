package services

import (
	"math"

	"github.com/planwise/nutrisync/internal/utils"
)

// MinimumWaterGlasses is the daily floor applied after any workout delta.
const MinimumWaterGlasses = 8

const caloriesPerGlass = 150

// WorkoutWaterGlasses maps a workout's calorie burn and time of day to the
// extra water glasses it requires. Earlier workouts leave more of the day to
// rehydrate, so morning sessions scale the base up and late sessions scale
// it down.
func WorkoutWaterGlasses(caloriesBurned int, timeOfDay string) int {
	if caloriesBurned < 0 {
		caloriesBurned = 0
	}
	base := int(math.Ceil(float64(caloriesBurned) / caloriesPerGlass))
	if base < 1 {
		base = 1
	}

	multiplier := 1.0
	if minutes := utils.TimeToMinutes(timeOfDay); minutes >= 0 {
		switch {
		case minutes < 9*60:
			multiplier = 1.5
		case minutes < 12*60:
			multiplier = 1.25
		case minutes < 17*60:
			multiplier = 1.0
		case minutes < 21*60:
			multiplier = 0.75
		default:
			multiplier = 0.5
		}
	}

	glasses := int(math.Ceil(float64(base) * multiplier))
	if glasses < 1 {
		glasses = 1
	}
	return glasses
}

// WorkoutAdjustments pairs the calorie-goal and water-goal deltas produced
// by a single workout change.
type WorkoutAdjustments struct {
	CaloriesGoalChange int `json:"calories_goal_change"`
	WaterGoalChange    int `json:"water_goal_change"`
}

// adjustmentsForWorkout computes the deltas for adding a workout. Deletion
// uses the same formula on the stored fields with the sign flipped, keeping
// the operation invertible.
func adjustmentsForWorkout(caloriesBurned int, timeOfDay string) WorkoutAdjustments {
	return WorkoutAdjustments{
		CaloriesGoalChange: caloriesBurned,
		WaterGoalChange:    WorkoutWaterGlasses(caloriesBurned, timeOfDay),
	}
}

// flooredWaterGoal applies a delta to a water goal without dropping below
// the daily minimum.
func flooredWaterGoal(current, delta int) int {
	goal := current + delta
	if goal < MinimumWaterGlasses {
		return MinimumWaterGlasses
	}
	return goal
}
