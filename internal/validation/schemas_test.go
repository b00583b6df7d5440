package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/smartdiet/pkg/models"
)

func newTestValidator(t *testing.T) *SchemaValidator {
	sv, err := NewSchemaValidator()
	require.NoError(t, err)
	return sv
}

func TestNewSchemaValidator_LoadsEmbeddedSchemas(t *testing.T) {
	sv := newTestValidator(t)

	for name := range schemaFiles {
		assert.True(t, sv.SchemaExists(name), name)
	}
	assert.False(t, sv.SchemaExists("content-item"))
}

func TestValidateRecommendationRequest(t *testing.T) {
	sv := newTestValidator(t)

	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{
			name:  "full request",
			body:  `{"profile":{"age":28,"height_cm":160,"weight_kg":50,"activity_level":"Low","satiety":3},"count":5}`,
			valid: true,
		},
		{
			name:  "satiety and count omitted",
			body:  `{"profile":{"age":28,"height_cm":160,"weight_kg":50,"activity_level":"low"}}`,
			valid: true,
		},
		{
			name:  "missing weight",
			body:  `{"profile":{"age":28,"height_cm":160,"activity_level":"low"}}`,
			valid: false,
		},
		{
			name:  "weight as string",
			body:  `{"profile":{"age":28,"height_cm":160,"weight_kg":"50","activity_level":"low"}}`,
			valid: false,
		},
		{
			name:  "fractional age",
			body:  `{"profile":{"age":28.5,"height_cm":160,"weight_kg":50,"activity_level":"low"}}`,
			valid: false,
		},
		{
			name:  "count too large",
			body:  `{"profile":{"age":28,"height_cm":160,"weight_kg":50,"activity_level":"low"},"count":51}`,
			valid: false,
		},
		{
			name:  "unknown field",
			body:  `{"profile":{"age":28,"height_cm":160,"weight_kg":50,"activity_level":"low"},"diet":"vegan"}`,
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sv.ValidateJSONString(RecommendationRequestSchema, tt.body)
			assert.Equal(t, tt.valid, result.Valid, "%+v", result.Errors)
		})
	}
}

func TestValidateBatchRecommendationRequest(t *testing.T) {
	sv := newTestValidator(t)

	valid := `{"requests":[{"profile":{"age":28,"height_cm":160,"weight_kg":50,"activity_level":"low"}}]}`
	assert.True(t, sv.ValidateBatchRecommendationRequest(valid).Valid)

	empty := `{"requests":[]}`
	assert.False(t, sv.ValidateBatchRecommendationRequest(empty).Valid)
}

func TestValidateUserProfile_Struct(t *testing.T) {
	sv := newTestValidator(t)

	profile := models.UserProfile{Age: 40, HeightCM: 175, WeightKG: 82, ActivityLevel: models.ActivityHigh, Satiety: 4}
	assert.True(t, sv.ValidateUserProfile(profile).Valid)
}

func TestValidationResult_ToAPIError(t *testing.T) {
	sv := newTestValidator(t)

	result := sv.ValidateRecommendationRequest(`{"count":3}`)
	require.False(t, result.Valid)

	apiError := result.ToAPIError()
	body, ok := apiError["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.NotEmpty(t, body["details"])

	assert.Nil(t, sv.ValidateRecommendationRequest(`{"profile":{"age":1,"height_cm":100,"weight_kg":20,"activity_level":"low"}}`).ToAPIError())
}

func TestValidate_UnknownSchema(t *testing.T) {
	sv := newTestValidator(t)

	result := sv.ValidateJSONString("missing", `{}`)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "SCHEMA_NOT_FOUND", result.Errors[0].Code)
}
