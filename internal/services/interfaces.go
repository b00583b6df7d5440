package services

import (
	"context"

	"github.com/temcen/smartdiet/internal/messaging"
	"github.com/temcen/smartdiet/pkg/models"
)

// RecipeCatalog is the read-only catalog consumed by the recommender
type RecipeCatalog interface {
	Recipes() []models.Recipe
	Len() int
	Version() string
}

// RecommendationCache stores finished responses. Get returns nil, nil on a miss.
type RecommendationCache interface {
	Get(ctx context.Context, key string) (*models.RecommendationResponse, error)
	Set(ctx context.Context, key string, resp *models.RecommendationResponse) error
}

// EventPublisherInterface publishes recommendation events
type EventPublisherInterface interface {
	PublishRecommendation(ctx context.Context, event messaging.RecommendationEvent) error
}

// RecommenderInterface defines the operations served over HTTP
type RecommenderInterface interface {
	Recommend(ctx context.Context, profile models.UserProfile, count int) (*models.RecommendationResponse, error)
	InferDietProfile(profile models.UserProfile) (*models.DietProfile, error)
}
