package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temcen/smartdiet/internal/database"
)

type HealthService struct {
	db      *database.Database
	catalog RecipeCatalog
	logger  *logrus.Logger
}

type HealthStatus struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]string      `json:"services"`
	Critical    []string               `json:"critical_failures,omitempty"`
	NonCritical []string               `json:"non_critical_failures,omitempty"`
	Latency     time.Duration          `json:"latency,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

func NewHealthService(db *database.Database, catalog RecipeCatalog, logger *logrus.Logger) *HealthService {
	return &HealthService{
		db:      db,
		catalog: catalog,
		logger:  logger,
	}
}

// CheckHealth reports unhealthy without a catalog and degraded when an
// optional backing store cannot be reached.
func (hs *HealthService) CheckHealth(ctx context.Context) *HealthStatus {
	started := time.Now()
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: started,
		Services:  make(map[string]string),
		Details:   make(map[string]interface{}),
	}

	if hs.catalog == nil || hs.catalog.Len() == 0 {
		status.Services["catalog"] = "empty"
		status.Critical = append(status.Critical, "catalog")
	} else {
		status.Services["catalog"] = "healthy"
		status.Details["catalog_recipes"] = hs.catalog.Len()
		status.Details["catalog_version"] = hs.catalog.Version()
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if hs.db != nil && hs.db.PG != nil {
		if err := hs.db.PG.Ping(ctx); err != nil {
			hs.logger.WithError(err).Warn("PostgreSQL health check failed")
			status.Services["postgres"] = "unhealthy"
			status.NonCritical = append(status.NonCritical, "postgres")
		} else {
			status.Services["postgres"] = "healthy"
		}
	}

	if hs.db != nil && hs.db.Redis != nil {
		if err := hs.db.Redis.Ping(ctx).Err(); err != nil {
			hs.logger.WithError(err).Warn("Redis health check failed")
			status.Services["redis"] = "unhealthy"
			status.NonCritical = append(status.NonCritical, "redis")
		} else {
			status.Services["redis"] = "healthy"
		}
	}

	switch {
	case len(status.Critical) > 0:
		status.Status = "unhealthy"
	case len(status.NonCritical) > 0:
		status.Status = "degraded"
	}
	status.Latency = time.Since(started)
	return status
}
