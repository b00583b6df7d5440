package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/smartdiet/internal/config"
	"github.com/temcen/smartdiet/internal/fuzzy"
	"github.com/temcen/smartdiet/internal/messaging"
	"github.com/temcen/smartdiet/pkg/models"
)

// Recommender runs inference, scoring and ranking for one profile. The
// engine, scorer and catalog are shared read-only between requests.
type Recommender struct {
	engine    *fuzzy.Engine
	catalog   RecipeCatalog
	scorer    *RecipeScorer
	ranker    *Ranker
	cache     RecommendationCache
	publisher EventPublisherInterface
	metrics   *Metrics
	maxTopK   int
	logger    *logrus.Logger
}

// RecommenderOption wires an optional collaborator.
type RecommenderOption func(*Recommender)

func WithCache(cache RecommendationCache) RecommenderOption {
	return func(r *Recommender) { r.cache = cache }
}

func WithPublisher(publisher EventPublisherInterface) RecommenderOption {
	return func(r *Recommender) { r.publisher = publisher }
}

func WithMetrics(metrics *Metrics) RecommenderOption {
	return func(r *Recommender) { r.metrics = metrics }
}

func NewRecommender(
	engine *fuzzy.Engine,
	catalog RecipeCatalog,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
	opts ...RecommenderOption,
) (*Recommender, error) {
	scorer, err := NewRecipeScorer(cfg, logger)
	if err != nil {
		return nil, err
	}

	r := &Recommender{
		engine:  engine,
		catalog: catalog,
		scorer:  scorer,
		ranker:  NewRanker(cfg.TopK),
		maxTopK: cfg.MaxTopK,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.metrics.SetCatalogSize(catalog.Len())
	return r, nil
}

// InferDietProfile runs the classifier only.
func (r *Recommender) InferDietProfile(profile models.UserProfile) (*models.DietProfile, error) {
	p := profile.Normalized()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	bmi := models.BMI(p.WeightKG, p.HeightCM)
	inf, err := r.engine.Infer(p, bmi)
	if err != nil {
		return nil, err
	}
	return dietProfile(bmi, inf), nil
}

// Recommend returns the top count recipes. An empty result is not an error:
// the response carries models.ErrEmptyResultSet as a warning instead.
func (r *Recommender) Recommend(ctx context.Context, profile models.UserProfile, count int) (*models.RecommendationResponse, error) {
	started := time.Now()

	p := profile.Normalized()
	if err := p.Validate(); err != nil {
		r.metrics.observeRequest(outcomeInvalidProfile, started)
		return nil, err
	}

	k := r.resolveCount(count)
	key := CacheKey(p, k, r.catalog.Version())
	if cached := r.cached(ctx, key); cached != nil {
		r.metrics.observeRequest(outcomeOK, started)
		return cached, nil
	}

	bmi := models.BMI(p.WeightKG, p.HeightCM)
	inf, err := r.engine.Infer(p, bmi)
	if err != nil {
		r.metrics.observeRequest(outcomeInvalidProfile, started)
		return nil, err
	}

	target := r.scorer.NewTarget(p, bmi)
	scored, skipped := r.scorer.ScoreAll(target, inf.Output, r.catalog.Recipes())
	top := r.ranker.TopK(scored, k)

	resp := &models.RecommendationResponse{
		RequestID:       uuid.New(),
		DietProfile:     *dietProfile(bmi, inf),
		TargetCalories:  target.Calories,
		Recommendations: top,
		SkippedRecipes:  skipped,
		GeneratedAt:     time.Now(),
	}

	outcome := outcomeOK
	if resp.Empty() {
		outcome = outcomeEmpty
		resp.Warnings = append(resp.Warnings, models.ErrEmptyResultSet.Error())
		r.logger.WithFields(logrus.Fields{
			"request_id":   resp.RequestID,
			"catalog_size": r.catalog.Len(),
			"skipped":      skipped,
		}).Warn("No recipes survived scoring")
	}

	r.store(ctx, key, resp)
	r.publish(ctx, resp)
	r.metrics.observeInference(inf.Best, skipped)
	r.metrics.observeRequest(outcome, started)

	r.logger.WithFields(logrus.Fields{
		"request_id": resp.RequestID,
		"best_diet":  inf.Best,
		"count":      len(top),
		"skipped":    skipped,
		"latency":    time.Since(started),
	}).Info("Recommendations generated")

	return resp, nil
}

func (r *Recommender) resolveCount(count int) int {
	if count <= 0 {
		return r.ranker.defaultK
	}
	if r.maxTopK > 0 && count > r.maxTopK {
		return r.maxTopK
	}
	return count
}

func (r *Recommender) cached(ctx context.Context, key string) *models.RecommendationResponse {
	if r.cache == nil {
		return nil
	}
	resp, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.WithError(err).Warn("Failed to read cached recommendations")
		return nil
	}
	r.metrics.observeCache(resp != nil)
	if resp == nil {
		return nil
	}
	resp.CacheHit = true
	return resp
}

func (r *Recommender) store(ctx context.Context, key string, resp *models.RecommendationResponse) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, key, resp); err != nil {
		r.logger.WithError(err).Warn("Failed to cache recommendations")
	}
}

func (r *Recommender) publish(ctx context.Context, resp *models.RecommendationResponse) {
	if r.publisher == nil {
		return
	}
	event := messaging.NewRecommendationEvent(resp, r.catalog.Version())
	if err := r.publisher.PublishRecommendation(ctx, event); err != nil {
		r.logger.WithError(err).Warn("Failed to publish recommendation event")
	}
}

func dietProfile(bmi float64, inf *fuzzy.Inference) *models.DietProfile {
	return &models.DietProfile{
		BMI:         bmi,
		FuzzyOutput: inf.Output,
		BestDiet:    inf.Best,
		DisplayName: inf.Best.DisplayName(),
	}
}
