package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/planwise/nutrisync/internal/domain"
	apperrors "github.com/planwise/nutrisync/internal/errors"
	"github.com/planwise/nutrisync/internal/logger"
)

// GenerateMealRequest describes a meal to draft.
type GenerateMealRequest struct {
	Name                string
	Category            domain.MealType
	TargetCalories      int
	DietaryRestrictions []string
	Preferences         []string
	Dislikes            []string
	Language            string
	Rules               string
}

// MealDraft is the collaborator's answer: a complete meal spec ready for
// catalog resolution. Nutrition fields are never zero-filled on failure;
// errors propagate instead.
type MealDraft struct {
	Name            string              `json:"name"`
	Calories        int                 `json:"calories"`
	Protein         int                 `json:"protein"`
	Carbs           int                 `json:"carbs"`
	Fat             int                 `json:"fat"`
	Ingredients     []domain.Ingredient `json:"ingredients"`
	PrepTimeMinutes int                 `json:"prep_time_minutes"`
}

// GeneratePlanRequest describes a full week to draft.
type GeneratePlanRequest struct {
	TargetCalories int
	ProteinTarget  int
	CarbsTarget    int
	FatTarget      int
	WeekStart      string // date key of the first day to generate
	Restrictions   []string
	Preferences    []string
	Language       string
}

// MealGenerator is the generative collaborator consumed by the sync engine.
type MealGenerator interface {
	GenerateMeal(ctx context.Context, req GenerateMealRequest) (*MealDraft, error)
	GenerateWeeklyPlan(ctx context.Context, req GeneratePlanRequest) (map[string]*domain.DayEntry, error)
}

// AIService drafts meals and weekly plans. Gemini is the primary provider;
// OpenAI is tried when Gemini fails and a key is configured.
type AIService struct {
	geminiClient *genai.Client
	openaiClient *openai.Client
}

func NewAIService(geminiAPIKey, openaiAPIKey string) (*AIService, error) {
	geminiClient, err := genai.NewClient(context.Background(), option.WithAPIKey(geminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	svc := &AIService{geminiClient: geminiClient}
	if openaiAPIKey != "" {
		svc.openaiClient = openai.NewClient(openaiAPIKey)
	}
	return svc, nil
}

func (s *AIService) GenerateMeal(ctx context.Context, req GenerateMealRequest) (*MealDraft, error) {
	prompt := buildMealPrompt(req)

	draft, err := s.mealWithGemini(ctx, prompt)
	if err == nil {
		return draft, nil
	}
	if s.openaiClient != nil {
		logger.Warn("Gemini meal generation failed, falling back to OpenAI", "error", err.Error())
		if draft, fallbackErr := s.mealWithOpenAI(ctx, prompt); fallbackErr == nil {
			return draft, nil
		}
	}
	return nil, apperrors.NewExternalAPIError(err, "meal generation")
}

func (s *AIService) GenerateWeeklyPlan(ctx context.Context, req GeneratePlanRequest) (map[string]*domain.DayEntry, error) {
	prompt := buildPlanPrompt(req)

	week, err := s.planWithGemini(ctx, prompt)
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, "plan generation")
	}
	return week, nil
}

func (s *AIService) mealWithGemini(ctx context.Context, prompt string) (*MealDraft, error) {
	model := s.geminiClient.GenerativeModel("gemini-1.5-flash")

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response part type")
	}
	return parseMealDraft(string(text))
}

func (s *AIService) mealWithOpenAI(ctx context.Context, prompt string) (*MealDraft, error) {
	resp, err := s.openaiClient.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4oMini,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}
	return parseMealDraft(resp.Choices[0].Message.Content)
}

func (s *AIService) planWithGemini(ctx context.Context, prompt string) (map[string]*domain.DayEntry, error) {
	model := s.geminiClient.GenerativeModel("gemini-1.5-flash")

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response part type")
	}

	jsonStr := extractJSON(string(text))
	if jsonStr == "" {
		return nil, fmt.Errorf("no valid JSON found in response")
	}

	var week map[string]*domain.DayEntry
	if err := json.Unmarshal([]byte(jsonStr), &week); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(week) == 0 {
		return nil, fmt.Errorf("model returned an empty week")
	}
	return week, nil
}

func parseMealDraft(raw string) (*MealDraft, error) {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return nil, fmt.Errorf("no valid JSON found in response")
	}

	var draft MealDraft
	if err := json.Unmarshal([]byte(jsonStr), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if draft.Name == "" || draft.Calories <= 0 || len(draft.Ingredients) == 0 {
		return nil, fmt.Errorf("model returned an incomplete meal draft")
	}
	return &draft, nil
}

func buildMealPrompt(req GenerateMealRequest) string {
	language := req.Language
	if language == "" {
		language = "English"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `You are a professional nutritionist. Draft a single %s meal named "%s" with a target of %d kcal.

REQUIREMENTS:
- Use standard nutritional databases for macro values
- Ingredient amounts must be concrete, e.g. "200 g" or "1.5 cups"
- Respond in %s
`, req.Category, req.Name, req.TargetCalories, language)

	if len(req.DietaryRestrictions) > 0 {
		fmt.Fprintf(&sb, "- Dietary restrictions: %s\n", strings.Join(req.DietaryRestrictions, ", "))
	}
	if len(req.Preferences) > 0 {
		fmt.Fprintf(&sb, "- Preferences: %s\n", strings.Join(req.Preferences, ", "))
	}
	if len(req.Dislikes) > 0 {
		fmt.Fprintf(&sb, "- Never use: %s\n", strings.Join(req.Dislikes, ", "))
	}
	if req.Rules != "" {
		fmt.Fprintf(&sb, "- Additional rules: %s\n", req.Rules)
	}

	sb.WriteString(`
CRITICAL JSON FORMAT REQUIREMENTS:
- Your response MUST be a valid JSON object
- Do not include any markdown formatting or explanatory text
- The JSON must have these exact fields:
  {
    "name": "Meal name",
    "calories": 450,
    "protein": 30,
    "carbs": 40,
    "fat": 15,
    "ingredients": [{"name": "Eggs", "amount": "3", "category": "dairy"}],
    "prep_time_minutes": 15
  }`)

	return sb.String()
}

func buildPlanPrompt(req GeneratePlanRequest) string {
	language := req.Language
	if language == "" {
		language = "English"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `You are a professional nutritionist. Draft a seven day meal plan starting on %s.

REQUIREMENTS:
- Daily target: %d kcal, %dg protein, %dg carbs, %dg fat
- Each day needs breakfast, lunch, dinner and at least one snack
- Ingredient amounts must be concrete, e.g. "200 g"
- Respond in %s
`, req.WeekStart, req.TargetCalories, req.ProteinTarget, req.CarbsTarget, req.FatTarget, language)

	if len(req.Restrictions) > 0 {
		fmt.Fprintf(&sb, "- Dietary restrictions: %s\n", strings.Join(req.Restrictions, ", "))
	}
	if len(req.Preferences) > 0 {
		fmt.Fprintf(&sb, "- Preferences: %s\n", strings.Join(req.Preferences, ", "))
	}

	sb.WriteString(`
CRITICAL JSON FORMAT REQUIREMENTS:
- Your response MUST be a valid JSON object keyed by YYYY-MM-DD date strings
- Do not include any markdown formatting or explanatory text
- Each day must follow this exact shape:
  {
    "2025-01-06": {
      "meals": {
        "breakfast": {"name": "Oatmeal", "category": "breakfast", "calories": 300, "protein": 10, "carbs": 50, "fat": 6, "ingredients": [{"name": "Oats", "amount": "80 g"}]},
        "lunch": {},
        "dinner": {},
        "snacks": []
      },
      "water_intake_goal": 8
    }
  }`)

	return sb.String()
}

// extractJSON attempts to extract a valid JSON object from the given string.
// It handles cases where the JSON is wrapped in code blocks (```json ... ```)
// or other text.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
