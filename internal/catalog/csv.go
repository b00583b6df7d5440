package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/temcen/smartdiet/pkg/models"
)

// Columns is the header written by the catalog builder.
var Columns = []string{"recipe_id", "name", "nutrition", "ingredients", "calories", "diet_type", "prep_time", "meal_type"}

// LoadCSVFile opens path and reads it with ReadCSV.
func LoadCSVFile(path string, logger *logrus.Logger) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	c, err := ReadCSV(f, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return c, nil
}

// ReadCSV parses a recipes.csv stream. A missing required column fails the
// load; individual malformed rows are skipped and counted.
func ReadCSV(r io.Reader, logger *logrus.Logger) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog is empty: missing header")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("catalog header is missing column %q", col)
		}
	}

	b := newBuilder(logger)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				b.reject(line, fmt.Errorf("%w: %v", models.ErrMalformedRecipe, err))
				continue
			}
			return nil, fmt.Errorf("failed to read catalog row %d: %w", line, err)
		}

		recipe, err := parseRecord(record, index)
		if err != nil {
			b.reject(line, err)
			continue
		}
		b.add(recipe)
	}

	c := b.build()
	logger.WithFields(logrus.Fields{
		"recipes": c.Len(),
		"skipped": c.Skipped(),
		"version": c.Version(),
	}).Info("Recipe catalog loaded")
	return c, nil
}

func parseRecord(record []string, index map[string]int) (models.Recipe, error) {
	field := func(name string) (string, error) {
		i := index[name]
		if i >= len(record) {
			return "", fmt.Errorf("%w: missing %s", models.ErrMalformedRecipe, name)
		}
		return strings.TrimSpace(record[i]), nil
	}

	var (
		recipe models.Recipe
		raw    = make(map[string]string, len(Columns))
	)
	for _, col := range Columns {
		v, err := field(col)
		if err != nil {
			return recipe, err
		}
		raw[col] = v
	}

	id, err := strconv.Atoi(raw["recipe_id"])
	if err != nil {
		return recipe, fmt.Errorf("%w: recipe_id %q", models.ErrMalformedRecipe, raw["recipe_id"])
	}
	calories, err := strconv.ParseFloat(raw["calories"], 64)
	if err != nil {
		return recipe, fmt.Errorf("%w: calories %q", models.ErrMalformedRecipe, raw["calories"])
	}
	diet, err := models.ParseDietType(raw["diet_type"])
	if err != nil {
		return recipe, fmt.Errorf("%w: %v", models.ErrMalformedRecipe, err)
	}
	prep, err := parseMinutes(raw["prep_time"])
	if err != nil {
		return recipe, err
	}
	meal, err := models.ParseMealType(raw["meal_type"])
	if err != nil {
		return recipe, fmt.Errorf("%w: %v", models.ErrMalformedRecipe, err)
	}
	values, err := parseNutrition(raw["nutrition"])
	if err != nil {
		return recipe, err
	}
	nutrition, err := fillNutrition(values, calories)
	if err != nil {
		return recipe, err
	}

	return models.Recipe{
		RecipeID:    id,
		Name:        raw["name"],
		Nutrition:   nutrition,
		Ingredients: raw["ingredients"],
		Calories:    calories,
		DietType:    diet,
		PrepTime:    prep,
		MealType:    meal,
	}, nil
}

// parseMinutes accepts "15" and the "15.0" pandas writes for float columns.
func parseMinutes(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%w: prep_time %q", models.ErrMalformedRecipe, s)
	}
	return int(f), nil
}

// parseNutrition reads a bracketed list such as "[51.5, 0.0, 13.0]".
func parseNutrition(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("%w: nutrition %q is not a list", models.ErrMalformedRecipe, s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return nil, nil
	}
	parts := strings.Split(body, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: nutrition value %q", models.ErrMalformedRecipe, p)
		}
		values = append(values, v)
	}
	return values, nil
}
