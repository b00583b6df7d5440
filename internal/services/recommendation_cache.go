package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/smartdiet/pkg/models"
)

// RedisRecommendationCache stores finished responses keyed by the
// normalized profile, the requested count and the catalog version.
type RedisRecommendationCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewRedisRecommendationCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisRecommendationCache {
	return &RedisRecommendationCache{
		redis:  client,
		ttl:    ttl,
		logger: logger,
	}
}

// CacheKey is deterministic for equal inputs. Height and weight keep full
// precision so that distinct profiles never share an entry.
func CacheKey(profile models.UserProfile, k int, catalogVersion string) string {
	p := profile.Normalized()
	return fmt.Sprintf("recommendations:%s:%d:%s:%s:%s:%d:%d",
		catalogVersion, p.Age, formatMeasure(p.HeightCM), formatMeasure(p.WeightKG), p.ActivityLevel, p.Satiety, k)
}

func formatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (c *RedisRecommendationCache) Get(ctx context.Context, key string) (*models.RecommendationResponse, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var resp models.RecommendationResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode cached recommendations: %w", err)
	}
	return &resp, nil
}

func (c *RedisRecommendationCache) Set(ctx context.Context, key string, resp *models.RecommendationResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}
	return c.redis.Set(ctx, key, data, c.ttl).Err()
}
