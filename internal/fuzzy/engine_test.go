package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/smartdiet/pkg/models"
)

const tolerance = 1e-9

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewDefaultEngine()
	require.NoError(t, err)
	return e
}

func exampleProfile() models.UserProfile {
	return models.UserProfile{
		Age:           28,
		HeightCM:      160,
		WeightKG:      50,
		ActivityLevel: "Low",
		Satiety:       3,
	}
}

func TestEngine_Memberships_Breakpoints(t *testing.T) {
	e := newTestEngine(t)
	base := exampleProfile()

	tests := []struct {
		name     string
		age      int
		bmi      float64
		satiety  int
		variable Variable
		expected map[string]float64
	}{
		{
			name:     "bmi at normal/overweight boundary is split",
			bmi:      25.0,
			variable: VarBMI,
			expected: map[string]float64{"underweight": 0, "normal": 0.5, "overweight": 0.5, "obese": 0},
		},
		{
			name:     "bmi at underweight/normal boundary is split",
			bmi:      18.5,
			variable: VarBMI,
			expected: map[string]float64{"underweight": 0.5, "normal": 0.5, "overweight": 0, "obese": 0},
		},
		{
			name:     "bmi below lowest breakpoint clamps to underweight",
			bmi:      9,
			variable: VarBMI,
			expected: map[string]float64{"underweight": 1, "normal": 0, "overweight": 0, "obese": 0},
		},
		{
			name:     "bmi above highest breakpoint clamps to obese",
			bmi:      75,
			variable: VarBMI,
			expected: map[string]float64{"underweight": 0, "normal": 0, "overweight": 0, "obese": 1},
		},
		{
			name:     "age at young/adult crossing",
			age:      30,
			variable: VarAge,
			expected: map[string]float64{"young": 0.5, "adult": 0.5, "senior": 0},
		},
		{
			name:     "age past the domain clamps to senior",
			age:      125,
			variable: VarAge,
			expected: map[string]float64{"young": 0, "adult": 0, "senior": 1},
		},
		{
			name:     "satiety at triangle peak",
			satiety:  3,
			variable: VarSatiety,
			expected: map[string]float64{"low": 0, "medium": 1, "high": 0},
		},
		{
			name:     "satiety minimum",
			satiety:  1,
			variable: VarSatiety,
			expected: map[string]float64{"low": 1, "medium": 0, "high": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			bmi := 20.0
			if tt.age != 0 {
				p.Age = tt.age
			}
			if tt.satiety != 0 {
				p.Satiety = tt.satiety
			}
			if tt.bmi != 0 {
				bmi = tt.bmi
			}

			degrees, err := e.Memberships(p, bmi)
			require.NoError(t, err)
			got := degrees[tt.variable]
			require.Len(t, got, len(tt.expected))
			for label, want := range tt.expected {
				assert.InDelta(t, want, got[label], tolerance, label)
			}
		})
	}
}

func TestEngine_Memberships_ActivityIsOneHot(t *testing.T) {
	e := newTestEngine(t)
	for _, level := range []string{"Low", "moderate", "HIGH"} {
		p := exampleProfile()
		p.ActivityLevel = models.ActivityLevel(level)

		degrees, err := e.Memberships(p, 21)
		require.NoError(t, err)

		total := 0.0
		for _, d := range degrees[VarActivity] {
			assert.True(t, d == 0 || d == 1)
			total += d
		}
		assert.Equal(t, 1.0, total)
	}
}

func TestEngine_Memberships_PartitionCoverage(t *testing.T) {
	e := newTestEngine(t)
	for bmi := 5.0; bmi <= 70; bmi += 0.25 {
		degrees, err := e.Memberships(exampleProfile(), bmi)
		require.NoError(t, err)
		positive := false
		for _, d := range degrees[VarBMI] {
			assert.GreaterOrEqual(t, d, 0.0)
			assert.LessOrEqual(t, d, 1.0)
			positive = positive || d > 0
		}
		assert.True(t, positive, "bmi %v has no positive category", bmi)
	}
}

func TestEngine_Memberships_InvalidProfile(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name   string
		modify func(p *models.UserProfile)
		bmi    float64
	}{
		{name: "negative weight", modify: func(p *models.UserProfile) { p.WeightKG = -5 }, bmi: 20},
		{name: "zero height", modify: func(p *models.UserProfile) { p.HeightCM = 0 }, bmi: 20},
		{name: "negative age", modify: func(p *models.UserProfile) { p.Age = -1 }, bmi: 20},
		{name: "satiety too high", modify: func(p *models.UserProfile) { p.Satiety = 6 }, bmi: 20},
		{name: "satiety negative", modify: func(p *models.UserProfile) { p.Satiety = -2 }, bmi: 20},
		{name: "unknown activity", modify: func(p *models.UserProfile) { p.ActivityLevel = "extreme" }, bmi: 20},
		{name: "non-positive bmi", modify: func(p *models.UserProfile) {}, bmi: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := exampleProfile()
			tt.modify(&p)

			degrees, err := e.Memberships(p, tt.bmi)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrInvalidProfile)
			assert.Nil(t, degrees)
		})
	}
}

func TestEngine_Memberships_DefaultSatiety(t *testing.T) {
	e := newTestEngine(t)
	p := exampleProfile()
	p.Satiety = 0

	degrees, err := e.Memberships(p, 21)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, degrees.Degree(VarSatiety, "medium"), tolerance)
}

func TestEngine_Infer_ExampleScenario(t *testing.T) {
	e := newTestEngine(t)
	p := exampleProfile()
	bmi := models.BMI(p.WeightKG, p.HeightCM)
	assert.InDelta(t, 19.53125, bmi, tolerance)

	inf, err := e.Infer(p, bmi)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, inf.Raw[models.Balanced], tolerance)
	assert.InDelta(t, 0.28, inf.Raw[models.HighProtein], tolerance)
	assert.Equal(t, models.Balanced, inf.Best)
	for _, d := range models.AllDietTypes {
		if d != models.Balanced {
			assert.Greater(t, inf.Output[models.Balanced], inf.Output[d])
		}
	}
	assert.InDelta(t, 1/1.28, inf.Output[models.Balanced], tolerance)
}

func TestEngine_Infer_OutputIsDistribution(t *testing.T) {
	e := newTestEngine(t)
	activities := []models.ActivityLevel{models.ActivityLow, models.ActivityModerate, models.ActivityHigh}

	for age := 0; age <= 100; age += 7 {
		for _, height := range []float64{140, 165, 190} {
			for _, weight := range []float64{40, 65, 90, 130} {
				for _, activity := range activities {
					for satiety := 1; satiety <= 5; satiety++ {
						p := models.UserProfile{Age: age, HeightCM: height, WeightKG: weight, ActivityLevel: activity, Satiety: satiety}
						inf, err := e.Infer(p, models.BMI(weight, height))
						require.NoError(t, err)

						sum := 0.0
						for _, d := range inf.Output {
							assert.GreaterOrEqual(t, d, 0.0)
							assert.LessOrEqual(t, d, 1.0)
							sum += d
						}
						assert.InDelta(t, 1.0, sum, 1e-9)
					}
				}
			}
		}
	}
}

func TestEngine_Infer_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	p := exampleProfile()

	first, err := e.Infer(p, 27.3)
	require.NoError(t, err)
	second, err := e.Infer(p, 27.3)
	require.NoError(t, err)

	assert.Equal(t, first.Output, second.Output)
	assert.Equal(t, first.Best, second.Best)
}

func TestEngine_Fire_OrderIndependent(t *testing.T) {
	rules := DefaultRules()
	reversed := make([]Rule, len(rules))
	for i, r := range rules {
		reversed[len(rules)-1-i] = r
	}

	forward, err := NewEngine(DefaultPartitions(), rules)
	require.NoError(t, err)
	backward, err := NewEngine(DefaultPartitions(), reversed)
	require.NoError(t, err)

	p := exampleProfile()
	p.Age = 50
	p.Satiety = 2
	degrees, err := forward.Memberships(p, 25.4)
	require.NoError(t, err)

	assert.Equal(t, forward.Fire(degrees), backward.Fire(degrees))
}

func TestEngine_Fire_TakesMaximumNotSum(t *testing.T) {
	rules := []Rule{
		{Antecedent: when("bmi", "normal"), Diet: models.Balanced, Weight: 0.6},
		{Antecedent: when("activity", "low"), Diet: models.Balanced, Weight: 0.8},
		{Antecedent: when("bmi", "obese"), Diet: models.LowCarb, Weight: 1},
		{Antecedent: when("bmi", "underweight"), Diet: models.HighProtein, Weight: 1},
		{Antecedent: when("age", "senior"), Diet: models.Vegan, Weight: 1},
	}
	e, err := NewEngine(DefaultPartitions(), rules)
	require.NoError(t, err)

	degrees, err := e.Memberships(exampleProfile(), 21)
	require.NoError(t, err)
	raw := e.Fire(degrees)

	assert.InDelta(t, 0.8, raw[models.Balanced], tolerance)
}

func TestNewEngine_RejectsBadConfiguration(t *testing.T) {
	valid := DefaultRules()

	tests := []struct {
		name       string
		partitions []Partition
		rules      []Rule
	}{
		{
			name:       "unknown diet type",
			partitions: DefaultPartitions(),
			rules:      append(append([]Rule(nil), valid...), Rule{Antecedent: when("bmi", "normal"), Diet: models.DietType(7), Weight: 1}),
		},
		{
			name:       "weight out of range",
			partitions: DefaultPartitions(),
			rules:      append(append([]Rule(nil), valid...), Rule{Antecedent: when("bmi", "normal"), Diet: models.Vegan, Weight: 1.5}),
		},
		{
			name:       "unknown category",
			partitions: DefaultPartitions(),
			rules:      append(append([]Rule(nil), valid...), Rule{Antecedent: when("bmi", "huge"), Diet: models.Vegan, Weight: 1}),
		},
		{
			name:       "unknown variable",
			partitions: DefaultPartitions(),
			rules:      append(append([]Rule(nil), valid...), Rule{Antecedent: when("height", "tall"), Diet: models.Vegan, Weight: 1}),
		},
		{
			name:       "empty antecedent",
			partitions: DefaultPartitions(),
			rules:      append(append([]Rule(nil), valid...), Rule{Antecedent: map[Variable]string{}, Diet: models.Vegan, Weight: 1}),
		},
		{
			name:       "diet type never concluded",
			partitions: DefaultPartitions(),
			rules:      []Rule{{Antecedent: when("bmi", "normal"), Diet: models.Balanced, Weight: 1}},
		},
		{
			name: "non-monotone breakpoints",
			partitions: []Partition{{Variable: VarBMI, Categories: []Category{
				{Label: "normal", A: 20, B: 18, C: 24, D: 26},
			}}},
			rules: valid,
		},
		{
			name: "gap between categories",
			partitions: []Partition{{Variable: VarAge, Categories: []Category{
				{Label: "young", A: 0, B: 0, C: 20, D: 30},
				{Label: "senior", A: 40, B: 50, C: 120, D: 120},
			}}},
			rules: valid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(tt.partitions, tt.rules)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrRuleBaseConfig)
			assert.Nil(t, e)
		})
	}
}

func TestEngine_RulesAreCopied(t *testing.T) {
	rules := DefaultRules()
	e, err := NewEngine(DefaultPartitions(), rules)
	require.NoError(t, err)

	rules[0].Weight = 0.01
	rules[0].Antecedent[VarBMI] = "obese"

	loaded := e.Rules()
	assert.Equal(t, 1.0, loaded[0].Weight)
	assert.Equal(t, "normal", loaded[0].Antecedent[VarBMI])
}

func TestRule_String(t *testing.T) {
	r := Rule{Antecedent: when("bmi", "normal", "activity", "low"), Diet: models.Balanced, Weight: 1}
	assert.Equal(t, "IF activity is low AND bmi is normal THEN balanced (1.00)", r.String())
}
