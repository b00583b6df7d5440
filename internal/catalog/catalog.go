// Package catalog loads the prebuilt recipe catalog the recommender scores.
package catalog

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/temcen/smartdiet/pkg/models"
)

// Catalog is an ordered, read-only recipe sequence. Callers must not modify
// the slice returned by Recipes.
type Catalog struct {
	recipes []models.Recipe
	skipped int
	version string
}

// New builds a catalog from already-parsed recipes, skipping rows that fail
// validation or repeat an id.
func New(recipes []models.Recipe, logger *logrus.Logger) *Catalog {
	b := newBuilder(logger)
	for _, r := range recipes {
		b.add(r)
	}
	return b.build()
}

func (c *Catalog) Recipes() []models.Recipe {
	return c.recipes
}

func (c *Catalog) Len() int {
	return len(c.recipes)
}

// Skipped is the number of source rows rejected while loading.
func (c *Catalog) Skipped() int {
	return c.skipped
}

// Version fingerprints the catalog contents; it changes whenever a recipe's
// id, diet type, calories, prep time or meal type changes.
func (c *Catalog) Version() string {
	return c.version
}

type builder struct {
	logger  *logrus.Logger
	recipes []models.Recipe
	seen    map[int]bool
	skipped int
}

func newBuilder(logger *logrus.Logger) *builder {
	return &builder{logger: logger, seen: make(map[int]bool)}
}

func (b *builder) reject(row int, err error) {
	b.skipped++
	b.logger.WithFields(logrus.Fields{
		"row":   row,
		"error": err,
	}).Warn("Skipping malformed recipe row")
}

func (b *builder) add(r models.Recipe) {
	r.Name = normalizeText(r.Name)
	r.Ingredients = normalizeText(r.Ingredients)
	if err := r.Validate(); err != nil {
		b.reject(r.RecipeID, err)
		return
	}
	if b.seen[r.RecipeID] {
		b.reject(r.RecipeID, fmt.Errorf("%w: duplicate recipe_id %d", models.ErrMalformedRecipe, r.RecipeID))
		return
	}
	b.seen[r.RecipeID] = true
	b.recipes = append(b.recipes, r)
}

func (b *builder) build() *Catalog {
	h := fnv.New64a()
	for _, r := range b.recipes {
		fmt.Fprintf(h, "%d|%s|%g|%d|%s;", r.RecipeID, r.DietType, r.Calories, r.PrepTime, r.MealType)
	}
	return &Catalog{
		recipes: b.recipes,
		skipped: b.skipped,
		version: fmt.Sprintf("%d-%x", len(b.recipes), h.Sum64()),
	}
}

func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// fillNutrition returns the 7-field vector. An empty source list falls back
// to calories followed by zeros.
func fillNutrition(values []float64, calories float64) ([models.NutritionFields]float64, error) {
	var out [models.NutritionFields]float64
	if len(values) == 0 {
		out[0] = calories
		return out, nil
	}
	if len(values) != models.NutritionFields {
		return out, fmt.Errorf("%w: nutrition has %d values, want %d", models.ErrMalformedRecipe, len(values), models.NutritionFields)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return out, fmt.Errorf("%w: nutrition[%d] is not a number", models.ErrMalformedRecipe, i)
		}
		out[i] = v
	}
	return out, nil
}
