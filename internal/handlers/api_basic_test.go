package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/temcen/smartdiet/internal/middleware"
	"github.com/temcen/smartdiet/internal/services"
)

type stubHealth struct {
	status string
}

func (s stubHealth) CheckHealth(context.Context) *services.HealthStatus {
	return &services.HealthStatus{Status: s.status, Services: map[string]string{"catalog": s.status}}
}

func TestBasicAPIEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	newRouter := func(status string) *gin.Engine {
		router := gin.New()
		router.Use(middleware.RequestID())
		router.Use(middleware.Logger(logger))
		router.Use(middleware.Recovery(logger))
		router.GET("/health", NewHealthHandler(logger, stubHealth{status: status}).Check)
		return router
	}

	tests := []struct {
		status     string
		wantStatus int
	}{
		{"healthy", http.StatusOK},
		{"degraded", http.StatusOK},
		{"unhealthy", http.StatusServiceUnavailable},
		{"unknown", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run("health "+tt.status, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/health", nil)
			w := httptest.NewRecorder()

			newRouter(tt.status).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.status)
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		})
	}

	t.Run("Basic routing works", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/nonexistent", nil)
		w := httptest.NewRecorder()

		newRouter("healthy").ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
