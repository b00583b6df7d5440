package services

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/smartdiet/internal/config"
	"github.com/temcen/smartdiet/internal/database"
	"github.com/temcen/smartdiet/internal/fuzzy"
	"github.com/temcen/smartdiet/internal/messaging"
)

type Services struct {
	Engine      *fuzzy.Engine
	Auth        *AuthService
	Health      *HealthService
	Metrics     *Metrics
	Publisher   *messaging.EventPublisher
	Recommender *Recommender
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database, catalog RecipeCatalog, reg prometheus.Registerer) (*Services, error) {
	engine, err := fuzzy.NewDefaultEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to build fuzzy engine: %w", err)
	}

	var opts []RecommenderOption
	s := &Services{
		Engine: engine,
		Auth:   NewAuthService(&cfg.Auth, logger),
		Health: NewHealthService(db, catalog, logger),
	}

	if cfg.Monitoring.Enabled {
		s.Metrics = NewMetrics(reg)
		opts = append(opts, WithMetrics(s.Metrics))
	}

	if db != nil && db.Redis != nil {
		opts = append(opts, WithCache(NewRedisRecommendationCache(db.Redis, cfg.Recommend.CacheTTL, logger)))
	}

	if cfg.Kafka.Enabled {
		s.Publisher = messaging.NewEventPublisher(&cfg.Kafka, logger)
		opts = append(opts, WithPublisher(s.Publisher))
	}

	s.Recommender, err = NewRecommender(engine, catalog, &cfg.Recommend, logger, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Services) Close() error {
	if s.Publisher != nil {
		return s.Publisher.Close()
	}
	return nil
}
