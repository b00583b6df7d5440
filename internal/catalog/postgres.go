package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sirupsen/logrus"

	"github.com/temcen/smartdiet/pkg/models"
)

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

const selectRecipes = `
	SELECT recipe_id, name, nutrition, ingredients, calories, diet_type, prep_time, meal_type
	FROM recipes
	ORDER BY recipe_id`

// PostgresRepository reads the catalog from the recipes table.
type PostgresRepository struct {
	db     Querier
	logger *logrus.Logger
}

func NewPostgresRepository(db Querier, logger *logrus.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger}
}

// Load reads every row once. Rows with NULL or invalid columns are skipped.
// A scan error closes the result set in pgx, so it fails the load.
func (r *PostgresRepository) Load(ctx context.Context) (*Catalog, error) {
	rows, err := r.db.Query(ctx, selectRecipes)
	if err != nil {
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}
	defer rows.Close()

	b := newBuilder(r.logger)
	row := 0
	for rows.Next() {
		row++
		var cols recipeColumns
		if err := rows.Scan(&cols.id, &cols.name, &cols.nutrition, &cols.ingredients, &cols.calories, &cols.dietLabel, &cols.prepTime, &cols.mealLabel); err != nil {
			return nil, fmt.Errorf("catalog row %d scan failed: %w", row, err)
		}

		recipe, err := cols.recipe()
		if err != nil {
			b.reject(row, err)
			continue
		}
		b.add(recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog rows failed: %w", err)
	}

	c := b.build()
	r.logger.WithFields(logrus.Fields{
		"recipes": c.Len(),
		"skipped": c.Skipped(),
		"version": c.Version(),
	}).Info("Recipe catalog loaded from PostgreSQL")
	return c, nil
}

// recipeColumns holds one scanned row. Every column is nullable.
type recipeColumns struct {
	id          pgtype.Int8
	name        pgtype.Text
	nutrition   []float64
	ingredients pgtype.Text
	calories    pgtype.Float8
	dietLabel   pgtype.Text
	prepTime    pgtype.Int8
	mealLabel   pgtype.Text
}

func (c recipeColumns) recipe() (models.Recipe, error) {
	if !c.id.Valid {
		return models.Recipe{}, fmt.Errorf("%w: recipe_id is NULL", models.ErrMalformedRecipe)
	}
	id := int(c.id.Int64)
	required := []struct {
		column string
		valid  bool
	}{
		{"name", c.name.Valid},
		{"ingredients", c.ingredients.Valid},
		{"calories", c.calories.Valid},
		{"diet_type", c.dietLabel.Valid},
		{"prep_time", c.prepTime.Valid},
		{"meal_type", c.mealLabel.Valid},
	}
	for _, col := range required {
		if !col.valid {
			return models.Recipe{}, fmt.Errorf("%w: recipe %d: %s is NULL", models.ErrMalformedRecipe, id, col.column)
		}
	}
	return recipeFromColumns(id, c.name.String, c.nutrition, c.ingredients.String, c.calories.Float64,
		c.dietLabel.String, int(c.prepTime.Int64), c.mealLabel.String)
}

func recipeFromColumns(id int, name string, nutrition []float64, ingredients string, calories float64, dietLabel string, prepTime int, mealLabel string) (models.Recipe, error) {
	diet, err := models.ParseDietType(dietLabel)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("%w: recipe %d: %v", models.ErrMalformedRecipe, id, err)
	}
	meal, err := models.ParseMealType(mealLabel)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("%w: recipe %d: %v", models.ErrMalformedRecipe, id, err)
	}
	values, err := fillNutrition(nutrition, calories)
	if err != nil {
		return models.Recipe{}, err
	}
	return models.Recipe{
		RecipeID:    id,
		Name:        name,
		Nutrition:   values,
		Ingredients: ingredients,
		Calories:    calories,
		DietType:    diet,
		PrepTime:    prepTime,
		MealType:    meal,
	}, nil
}
