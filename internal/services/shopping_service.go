package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/planwise/nutrisync/internal/domain"
	apperrors "github.com/planwise/nutrisync/internal/errors"
)

// ShoppingService derives the consolidated shopping list from a plan's week.
type ShoppingService struct {
	lists domain.ShoppingListRepository
}

func NewShoppingService(lists domain.ShoppingListRepository) *ShoppingService {
	return &ShoppingService{lists: lists}
}

// Sync recomputes the shopping list for a plan's full week and persists it.
// Purchased flags carry forward for keys that survive the rebuild; keys that
// no longer appear are dropped. Re-running on an unchanged week yields the
// same rows.
func (s *ShoppingService) Sync(ctx context.Context, userID, planID string, weekly map[string]*domain.DayEntry) (*domain.ShoppingList, error) {
	items := AggregateWeekIngredients(weekly)

	existing, err := s.lists.GetByUserAndPlan(ctx, userID, planID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	if existing != nil {
		purchased := make(map[string]bool, len(existing.Items))
		for _, item := range existing.Items {
			purchased[item.Key] = item.Done
		}
		for i := range items {
			items[i].Done = purchased[items[i].Key]
		}
	}

	list := &domain.ShoppingList{
		UserID: userID,
		PlanID: planID,
		Items:  items,
	}
	if existing != nil {
		list.ID = existing.ID
		list.CreatedAt = existing.CreatedAt
	} else {
		list.ID = uuid.NewString()
	}

	if err := s.lists.Upsert(ctx, list); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return list, nil
}

type ingredientBucket struct {
	displayName string
	category    string
	units       []string // insertion-ordered distinct units among parsed amounts
	sums        map[string]float64
	unparsed    []string
}

// AggregateWeekIngredients flattens every meal's ingredients across the week
// into one row per normalized key. Numeric amounts sharing a unit are
// summed; mismatched units are concatenated with " + " as a display
// fallback. Rows come back sorted by key so the result is stable for a
// given week.
func AggregateWeekIngredients(weekly map[string]*domain.DayEntry) []domain.ShoppingItem {
	dateKeys := make([]string, 0, len(weekly))
	for k := range weekly {
		dateKeys = append(dateKeys, k)
	}
	sort.Strings(dateKeys)

	buckets := make(map[string]*ingredientBucket)
	order := make([]string, 0)

	collect := func(meal *domain.PlanMeal) {
		if meal == nil {
			return
		}
		for _, ing := range meal.Ingredients {
			key := NormalizeIngredientKey(ing.Name)
			if key == "" {
				continue
			}
			bucket, ok := buckets[key]
			if !ok {
				bucket = &ingredientBucket{
					displayName: ing.Name,
					sums:        make(map[string]float64),
				}
				buckets[key] = bucket
				order = append(order, key)
			}
			if bucket.category == "" && ing.Category != "" {
				bucket.category = ing.Category
			}
			if parsed, ok := ParseAmount(ing.Amount); ok {
				if _, seen := bucket.sums[parsed.Unit]; !seen {
					bucket.units = append(bucket.units, parsed.Unit)
				}
				bucket.sums[parsed.Unit] += parsed.Value
			} else if ing.Amount != "" {
				bucket.unparsed = append(bucket.unparsed, ing.Amount)
			}
		}
	}

	for _, dateKey := range dateKeys {
		day := weekly[dateKey]
		if day == nil {
			continue
		}
		collect(day.Meals.Breakfast)
		collect(day.Meals.Lunch)
		collect(day.Meals.Dinner)
		for i := range day.Meals.Snacks {
			collect(&day.Meals.Snacks[i])
		}
	}

	sort.Strings(order)

	items := make([]domain.ShoppingItem, 0, len(order))
	for _, key := range order {
		bucket := buckets[key]
		items = append(items, domain.ShoppingItem{
			Name:     bucket.displayName,
			Amount:   bucket.mergedAmount(),
			Category: bucket.category,
			Key:      key,
		})
	}
	return items
}

func (b *ingredientBucket) mergedAmount() string {
	parts := make([]string, 0, len(b.units)+len(b.unparsed))
	for _, unit := range b.units {
		parts = append(parts, FormatAmount(b.sums[unit], unit))
	}
	parts = append(parts, b.unparsed...)
	return strings.Join(parts, " + ")
}
