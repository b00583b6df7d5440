package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NeutralSatiety is used when the user did not state a satiety level.
const NeutralSatiety = 3

type ActivityLevel string

const (
	ActivityLow      ActivityLevel = "low"
	ActivityModerate ActivityLevel = "moderate"
	ActivityHigh     ActivityLevel = "high"
)

// ParseActivityLevel accepts Low/Moderate/High in any case.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	switch level := ActivityLevel(strings.ToLower(strings.TrimSpace(s))); level {
	case ActivityLow, ActivityModerate, ActivityHigh:
		return level, nil
	default:
		return "", fmt.Errorf("unknown activity level %q", s)
	}
}

type UserProfile struct {
	Age           int           `json:"age" validate:"min=0,max=130"`
	HeightCM      float64       `json:"height_cm" validate:"gt=0,lte=300"`
	WeightKG      float64       `json:"weight_kg" validate:"gt=0,lte=700"`
	ActivityLevel ActivityLevel `json:"activity_level" validate:"required"`
	Satiety       int           `json:"satiety,omitempty" validate:"omitempty,min=1,max=5"`
}

var profileValidator = validator.New()

// Normalized returns a copy with a canonical activity label and the
// neutral satiety applied when none was given.
func (p UserProfile) Normalized() UserProfile {
	if level, err := ParseActivityLevel(string(p.ActivityLevel)); err == nil {
		p.ActivityLevel = level
	}
	if p.Satiety == 0 {
		p.Satiety = NeutralSatiety
	}
	return p
}

// Validate checks physical and logical ranges. Errors wrap ErrInvalidProfile.
func (p UserProfile) Validate() error {
	if math.IsNaN(p.HeightCM) || math.IsNaN(p.WeightKG) {
		return fmt.Errorf("%w: height and weight must be numbers", ErrInvalidProfile)
	}
	if err := profileValidator.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, describeValidation(err))
	}
	if _, err := ParseActivityLevel(string(p.ActivityLevel)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return nil
}

// BMI returns weight_kg / (height_cm/100)^2.
func BMI(weightKG, heightCM float64) float64 {
	meters := heightCM / 100
	return weightKG / (meters * meters)
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return strings.Join(parts, "; ")
}
