package services

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/temcen/smartdiet/internal/config"
	"github.com/temcen/smartdiet/pkg/models"
)

const (
	referenceBMI     = 22.0
	minBMIFactor     = 0.75
	maxBMIFactor     = 1.25
	shortestPrepTime = 5.0
	longestPrepTime  = 30.0
)

// baseMealCalories is the per-meal calorie target at the reference BMI.
var baseMealCalories = map[models.ActivityLevel]float64{
	models.ActivityLow:      400,
	models.ActivityModerate: 500,
	models.ActivityHigh:     600,
}

// ScoringTarget is what a recipe is measured against for one request.
type ScoringTarget struct {
	Profile  models.UserProfile
	BMI      float64
	Calories float64
}

// RecipeScorer combines diet affinity, calorie fit and context fit.
// It holds no per-request state.
type RecipeScorer struct {
	weights      config.ScoreWeights
	calorieScale float64
	logger       *logrus.Logger
}

// NewRecipeScorer creates a scorer. Weights must be non-negative and sum to 1.
func NewRecipeScorer(cfg *config.RecommendationConfig, logger *logrus.Logger) (*RecipeScorer, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	if cfg.CalorieScale <= 0 {
		return nil, fmt.Errorf("calorie scale must be positive, got %v", cfg.CalorieScale)
	}
	return &RecipeScorer{
		weights:      cfg.Weights,
		calorieScale: cfg.CalorieScale,
		logger:       logger,
	}, nil
}

// NewTarget derives the calorie target for a normalized profile.
func (s *RecipeScorer) NewTarget(profile models.UserProfile, bmi float64) ScoringTarget {
	profile = profile.Normalized()
	return ScoringTarget{
		Profile:  profile,
		BMI:      bmi,
		Calories: TargetCalories(profile.ActivityLevel, bmi),
	}
}

// TargetCalories rises with activity and falls with BMI.
func TargetCalories(activity models.ActivityLevel, bmi float64) float64 {
	base, ok := baseMealCalories[activity]
	if !ok {
		base = baseMealCalories[models.ActivityModerate]
	}
	factor := minBMIFactor
	if bmi > 0 {
		factor = clamp(referenceBMI/bmi, minBMIFactor, maxBMIFactor)
	}
	return base * factor
}

// CalorieFit is 1 at the target and decreases with distance, never reaching 0.
func CalorieFit(calories, target, scale float64) float64 {
	return 1 / (1 + math.Abs(calories-target)/scale)
}

// ContextFit rewards meals and preparation times that match the satiety
// preference: hungrier users lean towards longer prep and dinner.
func ContextFit(satiety int, recipe models.Recipe) float64 {
	pref := clamp(float64(satiety-1)/4, 0, 1)
	prep := clamp((float64(recipe.PrepTime)-shortestPrepTime)/(longestPrepTime-shortestPrepTime), 0, 1)

	mealFit := 1 - math.Abs(pref-recipe.MealType.Ordinal())
	prepFit := 1 - math.Abs(pref-prep)
	return clamp(0.5*mealFit+0.5*prepFit, 0, 1)
}

// Score returns the weighted score of one recipe. A recipe failing
// validation yields an error wrapping models.ErrMalformedRecipe.
func (s *RecipeScorer) Score(target ScoringTarget, output models.FuzzyOutput, recipe models.Recipe) (models.ScoredRecipe, error) {
	if err := recipe.Validate(); err != nil {
		return models.ScoredRecipe{}, err
	}

	c := models.ScoreComponents{
		DietMatch:  output.Degree(recipe.DietType),
		CalorieFit: CalorieFit(recipe.Calories, target.Calories, s.calorieScale),
		ContextFit: ContextFit(target.Profile.Satiety, recipe),
	}
	score := s.weights.Diet*c.DietMatch + s.weights.Calorie*c.CalorieFit + s.weights.Context*c.ContextFit

	return models.ScoredRecipe{
		Recipe:     recipe,
		Score:      clamp(score, 0, 1),
		Components: c,
	}, nil
}

// ScoreAll scores every recipe, skipping and logging malformed ones.
func (s *RecipeScorer) ScoreAll(target ScoringTarget, output models.FuzzyOutput, recipes []models.Recipe) ([]models.ScoredRecipe, int) {
	scored := make([]models.ScoredRecipe, 0, len(recipes))
	skipped := 0
	for _, r := range recipes {
		sr, err := s.Score(target, output, r)
		if err != nil {
			skipped++
			s.logger.WithFields(logrus.Fields{
				"recipe_id": r.RecipeID,
				"error":     err,
			}).Warn("Skipping recipe that failed validation")
			continue
		}
		scored = append(scored, sr)
	}
	return scored, skipped
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
