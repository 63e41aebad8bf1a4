package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/planwise/nutrisync/internal/domain"
	apperrors "github.com/planwise/nutrisync/internal/errors"
)

// fuzzyCalorieWindow is the ± calorie band for name-based catalog matches.
const fuzzyCalorieWindow = 50

// MealCandidate is a meal spec submitted for catalog resolution. Zero-valued
// fields fall back to the matched catalog entry; non-zero fields act as
// client overrides on top of it.
type MealCandidate struct {
	Name            string
	Category        domain.MealType
	Calories        int
	Protein         int
	Carbs           int
	Fat             int
	Ingredients     []domain.Ingredient
	PrepTimeMinutes int
}

// IsComplete reports whether the candidate carries enough nutrition data to
// be treated as client-authored: calories, the full macro set and at least
// one ingredient.
func (c MealCandidate) IsComplete() bool {
	return c.Calories > 0 && c.Protein > 0 && c.Carbs > 0 && c.Fat > 0 && len(c.Ingredients) > 0
}

// MealSignature derives the deduplication hash over category, calories,
// protein and the sorted normalized ingredient names. Ingredient order never
// affects the result.
func MealSignature(category domain.MealType, calories, protein int, ingredients []domain.Ingredient) string {
	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		names = append(names, NormalizeIngredientKey(ing.Name))
	}
	sort.Strings(names)

	payload := fmt.Sprintf("%s|%d|%d|%s", category, calories, protein, strings.Join(names, ","))
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// CatalogService deduplicates generated and client-authored meals against
// the shared meal catalog.
type CatalogService struct {
	meals     domain.MealRepository
	generator MealGenerator
}

func NewCatalogService(meals domain.MealRepository, generator MealGenerator) *CatalogService {
	return &CatalogService{
		meals:     meals,
		generator: generator,
	}
}

// Resolve finds or creates the canonical catalog entry for a candidate and
// returns it with the candidate's overrides applied. The catalog base entry
// itself is never mutated beyond its usage counter.
func (s *CatalogService) Resolve(ctx context.Context, candidate MealCandidate) (*domain.Meal, error) {
	signature := MealSignature(candidate.Category, candidate.Calories, candidate.Protein, candidate.Ingredients)

	existing, err := s.meals.GetBySignature(ctx, signature)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if existing == nil {
		existing, err = s.meals.FindSimilar(ctx, candidate.Name, candidate.Category,
			candidate.Calories-fuzzyCalorieWindow, candidate.Calories+fuzzyCalorieWindow)
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
	}

	if existing != nil {
		if err := s.meals.IncrementUsage(ctx, existing.ID); err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		existing.UsageCount++
		return applyOverrides(existing, candidate), nil
	}

	meal := &domain.Meal{
		ID:              uuid.NewString(),
		Name:            candidate.Name,
		Category:        candidate.Category,
		Calories:        candidate.Calories,
		Protein:         candidate.Protein,
		Carbs:           candidate.Carbs,
		Fat:             candidate.Fat,
		Ingredients:     candidate.Ingredients,
		PrepTimeMinutes: candidate.PrepTimeMinutes,
		Signature:       signature,
		UsageCount:      1,
	}
	if err := s.meals.Create(ctx, meal); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return meal, nil
}

// GetOrGenerate serves the incomplete-spec path: the catalog is checked by
// name and category first, and the generation collaborator is invoked only
// on a miss. Generated meals are persisted into the catalog before being
// returned. Generation failures propagate; nutrition data is never
// fabricated in their place.
func (s *CatalogService) GetOrGenerate(ctx context.Context, req GenerateMealRequest) (*domain.Meal, string, error) {
	existing, err := s.meals.GetByNameAndCategory(ctx, req.Name, req.Category)
	if err != nil {
		return nil, "", apperrors.NewDatabaseError(err)
	}
	if existing != nil {
		if err := s.meals.IncrementUsage(ctx, existing.ID); err != nil {
			return nil, "", apperrors.NewDatabaseError(err)
		}
		existing.UsageCount++
		return existing, MealSourceCatalog, nil
	}

	draft, err := s.generator.GenerateMeal(ctx, req)
	if err != nil {
		return nil, "", err
	}

	meal, err := s.Resolve(ctx, MealCandidate{
		Name:            draft.Name,
		Category:        req.Category,
		Calories:        draft.Calories,
		Protein:         draft.Protein,
		Carbs:           draft.Carbs,
		Fat:             draft.Fat,
		Ingredients:     draft.Ingredients,
		PrepTimeMinutes: draft.PrepTimeMinutes,
	})
	if err != nil {
		return nil, "", err
	}
	return meal, MealSourceGenerated, nil
}

// Meal sources reported back to callers for audit purposes.
const (
	MealSourceCatalog   = "catalog"
	MealSourceGenerated = "generated"
	MealSourceClient    = "client"
)

func applyOverrides(base *domain.Meal, candidate MealCandidate) *domain.Meal {
	resolved := *base
	resolved.Ingredients = append([]domain.Ingredient(nil), base.Ingredients...)

	if candidate.Name != "" {
		resolved.Name = candidate.Name
	}
	if candidate.Calories > 0 {
		resolved.Calories = candidate.Calories
	}
	if candidate.Protein > 0 {
		resolved.Protein = candidate.Protein
	}
	if candidate.Carbs > 0 {
		resolved.Carbs = candidate.Carbs
	}
	if candidate.Fat > 0 {
		resolved.Fat = candidate.Fat
	}
	if candidate.PrepTimeMinutes > 0 {
		resolved.PrepTimeMinutes = candidate.PrepTimeMinutes
	}
	if len(candidate.Ingredients) > 0 {
		resolved.Ingredients = candidate.Ingredients
	}
	return &resolved
}
