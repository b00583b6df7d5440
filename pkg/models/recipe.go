package models

import (
	"fmt"
	"math"
	"strings"
)

// NutritionFields is the length of the nutrition vector; index 0 is calories.
const NutritionFields = 7

type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// ParseMealType accepts breakfast, lunch or dinner in any case.
func ParseMealType(s string) (MealType, error) {
	switch meal := MealType(strings.ToLower(strings.TrimSpace(s))); meal {
	case Breakfast, Lunch, Dinner:
		return meal, nil
	default:
		return "", fmt.Errorf("unknown meal type %q", s)
	}
}

// Ordinal places the meal on a light-to-heavy scale in [0,1].
func (m MealType) Ordinal() float64 {
	switch m {
	case Breakfast:
		return 0
	case Lunch:
		return 0.5
	default:
		return 1
	}
}

type Recipe struct {
	RecipeID    int                      `json:"recipe_id" db:"recipe_id"`
	Name        string                   `json:"name" db:"name"`
	Nutrition   [NutritionFields]float64 `json:"nutrition" db:"nutrition"`
	Ingredients string                   `json:"ingredients" db:"ingredients"`
	Calories    float64                  `json:"calories" db:"calories"`
	DietType    DietType                 `json:"diet_type" db:"diet_type"`
	PrepTime    int                      `json:"prep_time" db:"prep_time"`
	MealType    MealType                 `json:"meal_type" db:"meal_type"`
}

// Validate checks the fields scoring depends on. Errors wrap ErrMalformedRecipe.
func (r Recipe) Validate() error {
	switch {
	case r.RecipeID < 1:
		return fmt.Errorf("%w: recipe_id %d must be >= 1", ErrMalformedRecipe, r.RecipeID)
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("%w: recipe %d has no name", ErrMalformedRecipe, r.RecipeID)
	case strings.TrimSpace(r.Ingredients) == "":
		return fmt.Errorf("%w: recipe %d has no ingredients", ErrMalformedRecipe, r.RecipeID)
	case math.IsNaN(r.Calories) || math.IsInf(r.Calories, 0) || r.Calories <= 0:
		return fmt.Errorf("%w: recipe %d has non-positive calories %v", ErrMalformedRecipe, r.RecipeID, r.Calories)
	case !r.DietType.Valid():
		return fmt.Errorf("%w: recipe %d has unknown diet type", ErrMalformedRecipe, r.RecipeID)
	case r.PrepTime <= 0:
		return fmt.Errorf("%w: recipe %d has prep_time %d", ErrMalformedRecipe, r.RecipeID, r.PrepTime)
	}
	if _, err := ParseMealType(string(r.MealType)); err != nil {
		return fmt.Errorf("%w: recipe %d: %v", ErrMalformedRecipe, r.RecipeID, err)
	}
	return nil
}

// ScoreComponents breaks a recipe's score into its weighted parts.
type ScoreComponents struct {
	DietMatch  float64 `json:"diet_match"`
	CalorieFit float64 `json:"calorie_fit"`
	ContextFit float64 `json:"context_fit"`
}

type ScoredRecipe struct {
	Recipe     Recipe          `json:"recipe"`
	Score      float64         `json:"score"`
	Components ScoreComponents `json:"components"`
	Position   int             `json:"position,omitempty"`
}
