package services

import (
	"sort"

	"github.com/temcen/smartdiet/pkg/models"
)

// DefaultTopK is used when no count is requested.
const DefaultTopK = 5

type Ranker struct {
	defaultK int
}

func NewRanker(defaultK int) *Ranker {
	if defaultK <= 0 {
		defaultK = DefaultTopK
	}
	return &Ranker{defaultK: defaultK}
}

// TopK orders by score descending then recipe_id ascending and returns at
// most k entries with 1-based positions. k <= 0 selects the default. The
// input slice is left untouched.
func (r *Ranker) TopK(scored []models.ScoredRecipe, k int) []models.ScoredRecipe {
	if k <= 0 {
		k = r.defaultK
	}

	ranked := make([]models.ScoredRecipe, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Recipe.RecipeID < ranked[j].Recipe.RecipeID
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}
