// Package fuzzy infers a user's diet affinity from fixed linguistic
// categories and a fixed rule base.
package fuzzy

import (
	"github.com/temcen/smartdiet/pkg/models"
)

// Engine holds validated categories and rules. It is immutable after
// NewEngine returns and may be shared across goroutines.
type Engine struct {
	partitions []Partition
	rules      []Rule
}

// Inference is the request-local result of running the classifier.
type Inference struct {
	Degrees MembershipDegrees
	Raw     [models.DietTypeCount]float64
	Output  models.FuzzyOutput
	Best    models.DietType
}

// NewEngine validates and copies the rule base. Errors wrap
// models.ErrRuleBaseConfig and should stop the process.
func NewEngine(partitions []Partition, rules []Rule) (*Engine, error) {
	for _, p := range partitions {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}
	if err := validateRules(rules, partitions); err != nil {
		return nil, err
	}

	e := &Engine{
		partitions: make([]Partition, len(partitions)),
		rules:      make([]Rule, len(rules)),
	}
	for i, p := range partitions {
		e.partitions[i] = Partition{Variable: p.Variable, Categories: append([]Category(nil), p.Categories...)}
	}
	for i, r := range rules {
		e.rules[i] = r.clone()
	}
	return e, nil
}

func (r Rule) clone() Rule {
	antecedent := make(map[Variable]string, len(r.Antecedent))
	for v, label := range r.Antecedent {
		antecedent[v] = label
	}
	return Rule{Antecedent: antecedent, Diet: r.Diet, Weight: r.Weight}
}

// NewDefaultEngine builds the engine from DefaultPartitions and DefaultRules.
func NewDefaultEngine() (*Engine, error) {
	return NewEngine(DefaultPartitions(), DefaultRules())
}

// Rules returns a copy of the loaded rules.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.clone()
	}
	return out
}

// Infer runs memberships, rule firing and normalization.
func (e *Engine) Infer(profile models.UserProfile, bmi float64) (*Inference, error) {
	degrees, err := e.Memberships(profile, bmi)
	if err != nil {
		return nil, err
	}
	raw := e.Fire(degrees)
	out := Normalize(raw)
	return &Inference{
		Degrees: degrees,
		Raw:     raw,
		Output:  out,
		Best:    BestDiet(out),
	}, nil
}
