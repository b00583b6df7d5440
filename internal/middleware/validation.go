package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/temcen/smartdiet/internal/validation"
)

// maxBodyBytes bounds request bodies; a full batch is well under this.
const maxBodyBytes = 1 << 20

// ValidationMiddleware checks request bodies against JSON schemas
type ValidationMiddleware struct {
	validator *validation.SchemaValidator
}

func NewValidationMiddleware(validator *validation.SchemaValidator) *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validator,
	}
}

func (vm *ValidationMiddleware) ValidateRecommendationRequest() gin.HandlerFunc {
	return vm.validateRequestBody(validation.RecommendationRequestSchema)
}

func (vm *ValidationMiddleware) ValidateBatchRecommendationRequest() gin.HandlerFunc {
	return vm.validateRequestBody(validation.BatchRecommendationRequestSchema)
}

func (vm *ValidationMiddleware) ValidateUserProfile() gin.HandlerFunc {
	return vm.validateRequestBody(validation.UserProfileSchema)
}

func (vm *ValidationMiddleware) validateRequestBody(schemaName string) gin.HandlerFunc {
	if !vm.validator.SchemaExists(schemaName) {
		return func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":       "SCHEMA_NOT_FOUND",
					"message":    "Request schema is not loaded",
					"details":    gin.H{"schema": schemaName},
					"request_id": c.GetString("request_id"),
				},
			})
			c.Abort()
		}
	}

	return func(c *gin.Context) {
		bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
		if err != nil {
			vm.sendValidationError(c, "BODY_READ_ERROR", "Failed to read request body", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		if len(bodyBytes) > maxBodyBytes {
			vm.sendValidationError(c, "BODY_TOO_LARGE", "Request body is too large", nil)
			return
		}

		// Restore request body for downstream handlers
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		if len(bodyBytes) == 0 {
			vm.sendValidationError(c, "EMPTY_BODY", "Request body is required", nil)
			return
		}

		if !json.Valid(bodyBytes) {
			vm.sendValidationError(c, "INVALID_JSON", "Request body must be valid JSON", nil)
			return
		}

		result := vm.validator.ValidateJSONString(schemaName, string(bodyBytes))
		if !result.Valid {
			apiError := result.ToAPIError()
			if errorObj, ok := apiError["error"].(map[string]interface{}); ok {
				errorObj["timestamp"] = time.Now().UTC().Format(time.RFC3339)
				errorObj["request_id"] = c.GetString("request_id")
				errorObj["path"] = c.Request.URL.Path
				errorObj["method"] = c.Request.Method
			}

			c.JSON(http.StatusBadRequest, apiError)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (vm *ValidationMiddleware) sendValidationError(c *gin.Context, code, message string, details map[string]interface{}) {
	errorResponse := map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"details":    details,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		},
	}

	c.JSON(http.StatusBadRequest, errorResponse)
	c.Abort()
}
