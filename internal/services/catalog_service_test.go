package services

import (
	"context"
	"errors"
	"testing"

	"github.com/planwise/nutrisync/internal/domain"
)

func oatmealCandidate() MealCandidate {
	return MealCandidate{
		Name:     "Oatmeal",
		Category: domain.MealTypeBreakfast,
		Calories: 300,
		Protein:  10,
		Carbs:    50,
		Fat:      5,
		Ingredients: []domain.Ingredient{
			{Name: "Oats", Amount: "50 g"},
			{Name: "Milk", Amount: "200 ml"},
		},
	}
}

func TestMealSignatureIgnoresIngredientOrder(t *testing.T) {
	t.Parallel()
	a := []domain.Ingredient{{Name: "Oats"}, {Name: "Milk"}, {Name: "Honey"}}
	b := []domain.Ingredient{{Name: "honey"}, {Name: "OATS"}, {Name: "Milk"}}

	sigA := MealSignature(domain.MealTypeBreakfast, 300, 10, a)
	sigB := MealSignature(domain.MealTypeBreakfast, 300, 10, b)
	if sigA != sigB {
		t.Fatalf("signature depends on ingredient order or casing: %s != %s", sigA, sigB)
	}
}

func TestMealSignatureChangesWithNutrition(t *testing.T) {
	t.Parallel()
	ings := []domain.Ingredient{{Name: "Oats"}}
	base := MealSignature(domain.MealTypeBreakfast, 300, 10, ings)
	if MealSignature(domain.MealTypeBreakfast, 310, 10, ings) == base {
		t.Fatalf("signature ignored a calorie change")
	}
	if MealSignature(domain.MealTypeLunch, 300, 10, ings) == base {
		t.Fatalf("signature ignored a category change")
	}
}

func TestResolveCreatesNewCatalogEntry(t *testing.T) {
	t.Parallel()
	repo := &fakeMealRepo{}
	svc := NewCatalogService(repo, &fakeGenerator{})

	meal, err := svc.Resolve(context.Background(), oatmealCandidate())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if meal.ID == "" || meal.Signature == "" {
		t.Fatalf("new entry missing identity: %+v", meal)
	}
	if meal.UsageCount != 1 {
		t.Fatalf("expected usage count 1, got %d", meal.UsageCount)
	}
	if len(repo.meals) != 1 {
		t.Fatalf("expected 1 persisted meal, got %d", len(repo.meals))
	}
}

func TestResolveDeduplicatesBySignature(t *testing.T) {
	t.Parallel()
	repo := &fakeMealRepo{}
	svc := NewCatalogService(repo, &fakeGenerator{})

	first, err := svc.Resolve(context.Background(), oatmealCandidate())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := svc.Resolve(context.Background(), oatmealCandidate())
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected the same catalog entry, got %s and %s", first.ID, second.ID)
	}
	if len(repo.meals) != 1 {
		t.Fatalf("duplicate catalog entry created: %d meals", len(repo.meals))
	}
	if repo.meals[0].UsageCount != 2 {
		t.Fatalf("expected usage count 2, got %d", repo.meals[0].UsageCount)
	}
}

func TestResolveFuzzyMatchesWithinCalorieWindow(t *testing.T) {
	t.Parallel()
	repo := &fakeMealRepo{}
	svc := NewCatalogService(repo, &fakeGenerator{})

	existing, err := svc.Resolve(context.Background(), oatmealCandidate())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// Same name and category, nearby calories, different ingredients: the
	// signature misses but the fuzzy pass should find the entry.
	variant := oatmealCandidate()
	variant.Name = "oatmeal"
	variant.Calories = 320
	variant.Ingredients = []domain.Ingredient{{Name: "Oats", Amount: "60 g"}, {Name: "Water", Amount: "250 ml"}}

	resolved, err := svc.Resolve(context.Background(), variant)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.ID != existing.ID {
		t.Fatalf("fuzzy match missed: got entry %s, want %s", resolved.ID, existing.ID)
	}
	if resolved.Calories != 320 {
		t.Fatalf("candidate override lost: calories %d, want 320", resolved.Calories)
	}
	if len(repo.meals) != 1 {
		t.Fatalf("fuzzy match still created a new entry: %d meals", len(repo.meals))
	}
	if repo.meals[0].Calories != 300 {
		t.Fatalf("catalog base entry was mutated: calories %d", repo.meals[0].Calories)
	}
}

func TestResolveMissesOutsideCalorieWindow(t *testing.T) {
	t.Parallel()
	repo := &fakeMealRepo{}
	svc := NewCatalogService(repo, &fakeGenerator{})

	if _, err := svc.Resolve(context.Background(), oatmealCandidate()); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	variant := oatmealCandidate()
	variant.Calories = 400
	variant.Ingredients = []domain.Ingredient{{Name: "Oats", Amount: "90 g"}}

	if _, err := svc.Resolve(context.Background(), variant); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(repo.meals) != 2 {
		t.Fatalf("expected a new entry outside the calorie window, got %d meals", len(repo.meals))
	}
}

func TestGetOrGenerateServesCatalogHitWithoutDrafting(t *testing.T) {
	t.Parallel()
	repo := &fakeMealRepo{}
	gen := &fakeGenerator{}
	svc := NewCatalogService(repo, gen)

	if _, err := svc.Resolve(context.Background(), oatmealCandidate()); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	meal, source, err := svc.GetOrGenerate(context.Background(), GenerateMealRequest{
		Name:     "oatmeal",
		Category: domain.MealTypeBreakfast,
	})
	if err != nil {
		t.Fatalf("GetOrGenerate failed: %v", err)
	}
	if source != MealSourceCatalog {
		t.Fatalf("expected source %q, got %q", MealSourceCatalog, source)
	}
	if meal.Calories != 300 {
		t.Fatalf("unexpected catalog entry: %+v", meal)
	}
	if gen.mealCalls != 0 {
		t.Fatalf("generator invoked on a catalog hit")
	}
}

func TestGetOrGenerateDraftsOnMiss(t *testing.T) {
	t.Parallel()
	repo := &fakeMealRepo{}
	gen := &fakeGenerator{draft: &MealDraft{
		Name:        "Trail Mix",
		Calories:    190,
		Protein:     6,
		Carbs:       18,
		Fat:         11,
		Ingredients: []domain.Ingredient{{Name: "Almonds", Amount: "20 g"}, {Name: "Raisins", Amount: "15 g"}},
	}}
	svc := NewCatalogService(repo, gen)

	meal, source, err := svc.GetOrGenerate(context.Background(), GenerateMealRequest{
		Name:           "Trail Mix",
		Category:       domain.MealTypeSnack,
		TargetCalories: 200,
	})
	if err != nil {
		t.Fatalf("GetOrGenerate failed: %v", err)
	}
	if source != MealSourceGenerated {
		t.Fatalf("expected source %q, got %q", MealSourceGenerated, source)
	}
	if meal.Calories != 190 {
		t.Fatalf("draft nutrition lost: %+v", meal)
	}
	if gen.mealCalls != 1 {
		t.Fatalf("expected 1 generator call, got %d", gen.mealCalls)
	}
	if len(repo.meals) != 1 {
		t.Fatalf("generated meal not persisted")
	}
}

func TestGetOrGenerateNeverFabricatesOnFailure(t *testing.T) {
	t.Parallel()
	repo := &fakeMealRepo{}
	gen := &fakeGenerator{err: errors.New("provider down")}
	svc := NewCatalogService(repo, gen)

	_, _, err := svc.GetOrGenerate(context.Background(), GenerateMealRequest{
		Name:     "Mystery Bowl",
		Category: domain.MealTypeLunch,
	})
	if err == nil {
		t.Fatalf("expected generation failure to propagate")
	}
	if len(repo.meals) != 0 {
		t.Fatalf("a meal was persisted despite the failure")
	}
}
