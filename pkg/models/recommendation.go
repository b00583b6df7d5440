package models

import (
	"time"

	"github.com/google/uuid"
)

type RecommendationRequest struct {
	Profile UserProfile `json:"profile"`
	Count   int         `json:"count,omitempty" validate:"omitempty,min=1,max=50"`
}

type BatchRecommendationRequest struct {
	Requests []RecommendationRequest `json:"requests" validate:"required,min=1,max=50"`
}

// DietProfile is the inference half of a recommendation.
type DietProfile struct {
	BMI         float64     `json:"bmi"`
	FuzzyOutput FuzzyOutput `json:"fuzzy_output"`
	BestDiet    DietType    `json:"best_diet"`
	DisplayName string      `json:"best_diet_display"`
}

type RecommendationResponse struct {
	RequestID       uuid.UUID      `json:"request_id"`
	DietProfile     DietProfile    `json:"diet_profile"`
	TargetCalories  float64        `json:"target_calories"`
	Recommendations []ScoredRecipe `json:"recommendations"`
	SkippedRecipes  int            `json:"skipped_recipes"`
	Warnings        []string       `json:"warnings,omitempty"`
	GeneratedAt     time.Time      `json:"generated_at"`
	CacheHit        bool           `json:"cache_hit"`
}

// Empty reports whether no recipe survived scoring.
func (r *RecommendationResponse) Empty() bool {
	return len(r.Recommendations) == 0
}

type BatchRecommendationResponse struct {
	Responses []BatchItemResponse `json:"responses"`
}

// BatchItemResponse carries either a response or an error for one profile.
type BatchItemResponse struct {
	*RecommendationResponse
	Error *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
