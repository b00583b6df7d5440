package fuzzy

import (
	"fmt"
	"math"
	"sort"

	"github.com/temcen/smartdiet/pkg/models"
)

// Variable names one input of the classifier.
type Variable string

const (
	VarAge      Variable = "age"
	VarBMI      Variable = "bmi"
	VarSatiety  Variable = "satiety"
	VarActivity Variable = "activity"
)

// MembershipDegrees maps variable -> category label -> degree in [0,1].
type MembershipDegrees map[Variable]map[string]float64

// Degree returns the degree for a label, 0 when absent.
func (m MembershipDegrees) Degree(v Variable, label string) float64 {
	return m[v][label]
}

// Category is a trapezoid A <= B <= C <= D. A triangle has B == C.
type Category struct {
	Label string
	A     float64
	B     float64
	C     float64
	D     float64
}

func (c Category) monotone() bool {
	return c.A <= c.B && c.B <= c.C && c.C <= c.D
}

func (c Category) degree(x float64, leftShoulder, rightShoulder bool) float64 {
	switch {
	case x >= c.B && x <= c.C:
		return 1
	case x < c.B:
		if leftShoulder {
			return 1
		}
		if x <= c.A {
			return 0
		}
		return (x - c.A) / (c.B - c.A)
	default:
		if rightShoulder {
			return 1
		}
		if x >= c.D {
			return 0
		}
		return (c.D - x) / (c.D - c.C)
	}
}

// Partition is the ordered family of categories over one numeric variable.
// The first category is a left shoulder and the last a right shoulder, so
// values outside the breakpoints clamp to 1.0 in the outermost category.
type Partition struct {
	Variable   Variable
	Categories []Category
}

// Fuzzify returns the degree of x in every category.
func (p Partition) Fuzzify(x float64) map[string]float64 {
	out := make(map[string]float64, len(p.Categories))
	last := len(p.Categories) - 1
	for i, c := range p.Categories {
		out[c.Label] = c.degree(x, i == 0, i == last)
	}
	return out
}

func (p Partition) has(label string) bool {
	for _, c := range p.Categories {
		if c.Label == label {
			return true
		}
	}
	return false
}

func (p Partition) validate() error {
	if len(p.Categories) == 0 {
		return fmt.Errorf("%w: variable %s has no categories", models.ErrRuleBaseConfig, p.Variable)
	}
	seen := make(map[string]bool, len(p.Categories))
	for _, c := range p.Categories {
		if c.Label == "" || seen[c.Label] {
			return fmt.Errorf("%w: variable %s has empty or duplicate label %q", models.ErrRuleBaseConfig, p.Variable, c.Label)
		}
		seen[c.Label] = true
		if !c.monotone() {
			return fmt.Errorf("%w: category %s/%s has non-monotone breakpoints [%g %g %g %g]",
				models.ErrRuleBaseConfig, p.Variable, c.Label, c.A, c.B, c.C, c.D)
		}
	}
	sorted := sort.SliceIsSorted(p.Categories, func(i, j int) bool {
		return p.Categories[i].B < p.Categories[j].B
	})
	if !sorted {
		return fmt.Errorf("%w: categories of %s are not ordered", models.ErrRuleBaseConfig, p.Variable)
	}
	// Neighbours must overlap so every value has a category with degree > 0.
	for i := 1; i < len(p.Categories); i++ {
		prev, next := p.Categories[i-1], p.Categories[i]
		touching := next.A == prev.D && (next.A == next.B || prev.C == prev.D)
		if next.A > prev.D || (next.A == prev.D && !touching) {
			return fmt.Errorf("%w: gap between %s/%s and %s/%s", models.ErrRuleBaseConfig,
				p.Variable, prev.Label, p.Variable, next.Label)
		}
	}
	return nil
}

// DefaultPartitions returns the fixed numeric categories.
func DefaultPartitions() []Partition {
	return []Partition{
		{Variable: VarAge, Categories: []Category{
			{Label: "young", A: 0, B: 0, C: 25, D: 35},
			{Label: "adult", A: 25, B: 35, C: 45, D: 55},
			{Label: "senior", A: 45, B: 55, C: 120, D: 120},
		}},
		{Variable: VarBMI, Categories: []Category{
			{Label: "underweight", A: 0, B: 0, C: 17.5, D: 19.5},
			{Label: "normal", A: 17.5, B: 19.5, C: 24, D: 26},
			{Label: "overweight", A: 24, B: 26, C: 29, D: 31},
			{Label: "obese", A: 29, B: 31, C: 60, D: 60},
		}},
		{Variable: VarSatiety, Categories: []Category{
			{Label: "low", A: 1, B: 1, C: 2, D: 3},
			{Label: "medium", A: 2, B: 3, C: 3, D: 4},
			{Label: "high", A: 3, B: 4, C: 5, D: 5},
		}},
	}
}

// activityLabels is the crisp vocabulary of VarActivity.
var activityLabels = []models.ActivityLevel{models.ActivityLow, models.ActivityModerate, models.ActivityHigh}

func activityDegrees(level models.ActivityLevel) map[string]float64 {
	out := make(map[string]float64, len(activityLabels))
	for _, l := range activityLabels {
		out[string(l)] = 0
	}
	out[string(level)] = 1
	return out
}

// Memberships validates the profile and computes the degree of every
// category. No degree is computed for an invalid profile.
func (e *Engine) Memberships(profile models.UserProfile, bmi float64) (MembershipDegrees, error) {
	p := profile.Normalized()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(bmi) || math.IsInf(bmi, 0) || bmi <= 0 {
		return nil, fmt.Errorf("%w: bmi %v must be a positive number", models.ErrInvalidProfile, bmi)
	}

	inputs := map[Variable]float64{
		VarAge:     float64(p.Age),
		VarBMI:     bmi,
		VarSatiety: float64(p.Satiety),
	}

	degrees := make(MembershipDegrees, len(e.partitions)+1)
	for _, part := range e.partitions {
		degrees[part.Variable] = part.Fuzzify(inputs[part.Variable])
	}
	degrees[VarActivity] = activityDegrees(p.ActivityLevel)
	return degrees, nil
}
