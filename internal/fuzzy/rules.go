package fuzzy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/temcen/smartdiet/pkg/models"
)

// Rule fires Weight x min(antecedent degrees) towards Diet.
type Rule struct {
	Antecedent map[Variable]string
	Diet       models.DietType
	Weight     float64
}

func (r Rule) String() string {
	vars := make([]string, 0, len(r.Antecedent))
	for v := range r.Antecedent {
		vars = append(vars, string(v))
	}
	sort.Strings(vars)
	terms := make([]string, len(vars))
	for i, v := range vars {
		terms[i] = fmt.Sprintf("%s is %s", v, r.Antecedent[Variable(v)])
	}
	return fmt.Sprintf("IF %s THEN %s (%.2f)", strings.Join(terms, " AND "), r.Diet, r.Weight)
}

// strength is the fuzzy AND of the antecedent. Every term is visited.
func (r Rule) strength(degrees MembershipDegrees) float64 {
	s := 1.0
	for v, label := range r.Antecedent {
		s = math.Min(s, degrees.Degree(v, label))
	}
	return s
}

func when(terms ...string) map[Variable]string {
	m := make(map[Variable]string, len(terms)/2)
	for i := 0; i+1 < len(terms); i += 2 {
		m[Variable(terms[i])] = terms[i+1]
	}
	return m
}

// DefaultRules returns the fixed rule base.
func DefaultRules() []Rule {
	return []Rule{
		{Antecedent: when("bmi", "normal", "activity", "low"), Diet: models.Balanced, Weight: 1.0},
		{Antecedent: when("bmi", "normal", "activity", "moderate"), Diet: models.Balanced, Weight: 0.9},
		{Antecedent: when("bmi", "normal", "activity", "high"), Diet: models.HighProtein, Weight: 0.9},
		{Antecedent: when("bmi", "underweight", "activity", "low"), Diet: models.Balanced, Weight: 0.7},
		{Antecedent: when("bmi", "underweight", "activity", "moderate"), Diet: models.HighProtein, Weight: 0.8},
		{Antecedent: when("bmi", "underweight", "activity", "high"), Diet: models.HighProtein, Weight: 1.0},
		{Antecedent: when("bmi", "overweight", "activity", "low"), Diet: models.LowCarb, Weight: 1.0},
		{Antecedent: when("bmi", "overweight", "activity", "moderate"), Diet: models.LowCarb, Weight: 0.8},
		{Antecedent: when("bmi", "overweight", "activity", "high"), Diet: models.HighProtein, Weight: 0.6},
		{Antecedent: when("bmi", "obese"), Diet: models.LowCarb, Weight: 1.0},
		{Antecedent: when("bmi", "obese", "satiety", "low"), Diet: models.Vegan, Weight: 0.7},
		{Antecedent: when("bmi", "overweight", "satiety", "low"), Diet: models.Vegan, Weight: 0.6},
		{Antecedent: when("age", "senior", "bmi", "normal"), Diet: models.Vegan, Weight: 0.7},
		{Antecedent: when("age", "senior", "bmi", "overweight"), Diet: models.Vegan, Weight: 0.8},
		{Antecedent: when("age", "young", "activity", "high"), Diet: models.HighProtein, Weight: 0.8},
		{Antecedent: when("age", "young", "satiety", "medium"), Diet: models.HighProtein, Weight: 0.4},
		{Antecedent: when("age", "adult", "satiety", "high"), Diet: models.Balanced, Weight: 0.6},
		{Antecedent: when("satiety", "low", "activity", "low"), Diet: models.Vegan, Weight: 0.5},
	}
}

func validateRules(rules []Rule, partitions []Partition) error {
	if len(rules) == 0 {
		return fmt.Errorf("%w: rule base is empty", models.ErrRuleBaseConfig)
	}
	byVar := make(map[Variable]Partition, len(partitions))
	for _, p := range partitions {
		byVar[p.Variable] = p
	}

	var reached [models.DietTypeCount]bool
	for i, r := range rules {
		if !r.Diet.Valid() {
			return fmt.Errorf("%w: rule %d has unknown diet type %d", models.ErrRuleBaseConfig, i, int(r.Diet))
		}
		if r.Weight <= 0 || r.Weight > 1 || math.IsNaN(r.Weight) {
			return fmt.Errorf("%w: rule %d weight %v outside (0,1]", models.ErrRuleBaseConfig, i, r.Weight)
		}
		if len(r.Antecedent) == 0 {
			return fmt.Errorf("%w: rule %d has an empty antecedent", models.ErrRuleBaseConfig, i)
		}
		for v, label := range r.Antecedent {
			if v == VarActivity {
				if _, err := models.ParseActivityLevel(label); err != nil || label != strings.ToLower(label) {
					return fmt.Errorf("%w: rule %d references unknown activity %q", models.ErrRuleBaseConfig, i, label)
				}
				continue
			}
			p, ok := byVar[v]
			if !ok {
				return fmt.Errorf("%w: rule %d references unknown variable %q", models.ErrRuleBaseConfig, i, v)
			}
			if !p.has(label) {
				return fmt.Errorf("%w: rule %d references unknown category %s/%s", models.ErrRuleBaseConfig, i, v, label)
			}
		}
		reached[r.Diet] = true
	}
	for _, d := range models.AllDietTypes {
		if !reached[d] {
			return fmt.Errorf("%w: no rule concludes %s", models.ErrRuleBaseConfig, d)
		}
	}
	return nil
}

// Fire evaluates every rule and keeps, per diet type, the strongest
// weighted contribution (Mamdani max aggregation).
func (e *Engine) Fire(degrees MembershipDegrees) [models.DietTypeCount]float64 {
	var raw [models.DietTypeCount]float64
	for _, r := range e.rules {
		raw[r.Diet] = math.Max(raw[r.Diet], r.Weight*r.strength(degrees))
	}
	return raw
}
