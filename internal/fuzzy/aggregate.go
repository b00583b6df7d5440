package fuzzy

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/temcen/smartdiet/pkg/models"
)

// Epsilon is the tolerance used when comparing degrees for ties.
const Epsilon = 1e-9

// bestPriority breaks argmax ties.
var bestPriority = []models.DietType{models.Vegan, models.HighProtein, models.LowCarb, models.Balanced}

// Normalize scales raw firing strengths to sum to 1. When nothing fired
// every diet type gets 0.25.
func Normalize(raw [models.DietTypeCount]float64) models.FuzzyOutput {
	var out models.FuzzyOutput
	total := floats.Sum(raw[:])
	if total <= 0 || math.IsNaN(total) {
		for i := range out {
			out[i] = 1.0 / models.DietTypeCount
		}
		return out
	}
	copy(out[:], raw[:])
	floats.Scale(1/total, out[:])
	return out
}

// BestDiet is the argmax of out with ties resolved by bestPriority.
func BestDiet(out models.FuzzyOutput) models.DietType {
	top := floats.Max(out[:])
	for _, d := range bestPriority {
		if math.Abs(out[d]-top) <= Epsilon {
			return d
		}
	}
	return models.Balanced
}
