package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/temcen/smartdiet/internal/catalog"
	"github.com/temcen/smartdiet/internal/config"
	"github.com/temcen/smartdiet/internal/database"
	"github.com/temcen/smartdiet/internal/handlers"
	"github.com/temcen/smartdiet/internal/middleware"
	"github.com/temcen/smartdiet/internal/services"
	"github.com/temcen/smartdiet/internal/validation"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	registry *prometheus.Registry
	catalog  *catalog.Catalog
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config:   cfg,
		logger:   setupLogger(cfg),
		registry: prometheus.NewRegistry(),
	}
	app.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize database connections
	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	cat, err := app.loadCatalog()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load recipe catalog: %w", err)
	}
	app.catalog = cat

	services, err := services.New(cfg, app.logger, db, cat, app.registry)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = services

	app.handlers = handlers.New(app.logger, services)

	if err := app.setupRouter(); err != nil {
		app.Shutdown(context.Background())
		return nil, err
	}

	app.logger.WithFields(logrus.Fields{
		"source":  cfg.Catalog.Source,
		"recipes": cat.Len(),
		"skipped": cat.Skipped(),
		"version": cat.Version(),
	}).Info("Recipe catalog loaded")

	return app, nil
}

func (a *App) loadCatalog() (*catalog.Catalog, error) {
	switch a.config.Catalog.Source {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return catalog.NewPostgresRepository(a.db.PG, a.logger).Load(ctx)
	default:
		return catalog.LoadCSVFile(a.config.Catalog.Path, a.logger)
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.services != nil {
		if err := a.services.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing event publisher")
		}
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() error {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	schemas, err := validation.NewSchemaValidator()
	if err != nil {
		return fmt.Errorf("failed to load request schemas: %w", err)
	}
	validate := middleware.NewValidationMiddleware(schemas)

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	// Health check endpoints (no auth required)
	router.GET("/health", a.handlers.Health.Check)

	// Prometheus metrics endpoint (no auth required)
	if a.config.Monitoring.Enabled {
		path := a.config.Monitoring.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	}

	// API routes
	api := router.Group("/api/v1")
	{
		if a.config.Auth.Enabled {
			api.Use(middleware.Auth(a.services.Auth, a.logger))
		}

		recommendations := api.Group("/recommendations")
		{
			recommendations.POST("", validate.ValidateRecommendationRequest(), a.handlers.Recommendation.Recommend)
			recommendations.POST("/batch", validate.ValidateBatchRecommendationRequest(), a.handlers.Recommendation.RecommendBatch)
		}

		api.POST("/diet-profile", validate.ValidateUserProfile(), a.handlers.Recommendation.DietProfile)
		api.GET("/rules", a.handlers.Rules.List)
	}

	a.router = router
	return nil
}
