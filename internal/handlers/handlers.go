package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/temcen/smartdiet/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Recommendation *RecommendationHandler
	Rules          *RulesHandler
}

func New(logger *logrus.Logger, services *services.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Recommendation: NewRecommendationHandler(services.Recommender, logger),
		Rules:          NewRulesHandler(services.Engine),
	}
}
