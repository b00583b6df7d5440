package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DietType is one of the four catalog diet labels.
type DietType int

const (
	Vegan DietType = iota
	Balanced
	HighProtein
	LowCarb
)

// DietTypeCount is the size of the closed DietType set.
const DietTypeCount = 4

// AllDietTypes lists the diet types in index order.
var AllDietTypes = [DietTypeCount]DietType{Vegan, Balanced, HighProtein, LowCarb}

var dietLabels = [DietTypeCount]string{"vegan", "balanced", "high_protein", "low_carb"}

var titleCaser = cases.Title(language.English)

// ParseDietType maps a catalog label to its DietType.
func ParseDietType(s string) (DietType, error) {
	label := strings.ToLower(strings.TrimSpace(s))
	for i, l := range dietLabels {
		if l == label {
			return DietType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown diet type %q", s)
}

// Valid reports whether d is one of the four known diet types.
func (d DietType) Valid() bool {
	return d >= 0 && int(d) < DietTypeCount
}

func (d DietType) String() string {
	if !d.Valid() {
		return fmt.Sprintf("diet_type(%d)", int(d))
	}
	return dietLabels[d]
}

// DisplayName returns the label in title case, e.g. "High Protein".
func (d DietType) DisplayName() string {
	return titleCaser.String(strings.ReplaceAll(d.String(), "_", " "))
}

func (d DietType) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid diet type %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *DietType) UnmarshalText(text []byte) error {
	parsed, err := ParseDietType(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// FuzzyOutput holds the normalized degree of affinity for each diet type.
type FuzzyOutput [DietTypeCount]float64

// Degree returns the affinity for d, or 0 for an unknown diet type.
func (f FuzzyOutput) Degree(d DietType) float64 {
	if !d.Valid() {
		return 0
	}
	return f[d]
}

// Map returns the output keyed by diet label.
func (f FuzzyOutput) Map() map[string]float64 {
	m := make(map[string]float64, DietTypeCount)
	for _, d := range AllDietTypes {
		m[d.String()] = f[d]
	}
	return m
}

func (f FuzzyOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Map())
}

func (f *FuzzyOutput) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out FuzzyOutput
	for label, degree := range m {
		d, err := ParseDietType(label)
		if err != nil {
			return err
		}
		out[d] = degree
	}
	*f = out
	return nil
}
