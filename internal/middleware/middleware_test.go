package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/smartdiet/internal/validation"
	"github.com/temcen/smartdiet/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

type stubValidator struct {
	claims *models.JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*models.JWTClaims, error) {
	return s.claims, s.err
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		validator  stubValidator
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing header",
			validator:  stubValidator{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "MISSING_AUTHORIZATION",
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			validator:  stubValidator{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_AUTHORIZATION_FORMAT",
		},
		{
			name:       "rejected token",
			header:     "Bearer a.b.c",
			validator:  stubValidator{err: errors.New("expired")},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_TOKEN",
		},
		{
			name:       "valid token",
			header:     "Bearer a.b.c",
			validator:  stubValidator{claims: &models.JWTClaims{ClientID: "planner", Scope: "recommendations"}},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/protected", Auth(tt.validator, testLogger()), func(c *gin.Context) {
				clientID, scope := GetClientFromContext(c)
				c.JSON(http.StatusOK, gin.H{"client_id": clientID, "scope": scope})
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Contains(t, w.Body.String(), tt.wantCode)
			} else {
				assert.Contains(t, w.Body.String(), `"client_id":"planner"`)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("assigns a new id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("keeps a caller id", func(t *testing.T) {
		id := uuid.New().String()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, id)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, id, w.Header().Get(RequestIDHeader))
	})
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(testLogger()))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestValidationMiddleware(t *testing.T) {
	sv, err := validation.NewSchemaValidator()
	require.NoError(t, err)
	vm := NewValidationMiddleware(sv)

	router := gin.New()
	router.POST("/recommendations", vm.ValidateRecommendationRequest(), func(c *gin.Context) {
		var req models.RecommendationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"weight": req.Profile.WeightKG})
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"valid body reaches handler", `{"profile":{"age":28,"height_cm":160,"weight_kg":50,"activity_level":"low"}}`, http.StatusOK, ""},
		{"empty body", ``, http.StatusBadRequest, "EMPTY_BODY"},
		{"malformed json", `{"profile":`, http.StatusBadRequest, "INVALID_JSON"},
		{"schema violation", `{"profile":{"age":28}}`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Contains(t, w.Body.String(), tt.wantCode)
			} else {
				assert.Contains(t, w.Body.String(), `"weight":50`)
			}
		})
	}
}

func TestValidationMiddleware_UnknownSchema(t *testing.T) {
	sv, err := validation.NewSchemaValidator()
	require.NoError(t, err)
	vm := NewValidationMiddleware(sv)

	called := false
	router := gin.New()
	router.POST("/rules", vm.validateRequestBody("rule-definition"), func(c *gin.Context) {
		called = true
	})

	req := httptest.NewRequest(http.MethodPost, "/rules", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SCHEMA_NOT_FOUND")
	assert.False(t, called)
}
