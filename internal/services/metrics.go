package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/temcen/smartdiet/pkg/models"
)

const (
	outcomeOK             = "ok"
	outcomeEmpty          = "empty"
	outcomeInvalidProfile = "invalid_profile"
	outcomeError          = "error"
)

// Metrics exposes recommendation counters and latency to Prometheus.
type Metrics struct {
	requests       *prometheus.CounterVec
	latency        prometheus.Histogram
	bestDiet       *prometheus.CounterVec
	skippedRecipes prometheus.Counter
	cacheLookups   *prometheus.CounterVec
	catalogSize    prometheus.Gauge
}

// NewMetrics registers the collectors on reg. Tests pass a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smartdiet_recommendation_requests_total",
			Help: "Recommendation requests by outcome",
		}, []string{"outcome"}),

		latency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "smartdiet_recommendation_latency_seconds",
			Help:    "Recommendation pipeline latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),

		bestDiet: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smartdiet_best_diet_total",
			Help: "Inferred best diet type per request",
		}, []string{"diet_type"}),

		skippedRecipes: factory.NewCounter(prometheus.CounterOpts{
			Name: "smartdiet_skipped_recipes_total",
			Help: "Recipes skipped during scoring because they failed validation",
		}),

		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smartdiet_cache_lookups_total",
			Help: "Recommendation cache lookups by result",
		}, []string{"result"}),

		catalogSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "smartdiet_catalog_recipes",
			Help: "Number of recipes in the loaded catalog",
		}),
	}
}

func (m *Metrics) observeRequest(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.latency.Observe(time.Since(started).Seconds())
}

func (m *Metrics) observeInference(best models.DietType, skipped int) {
	if m == nil {
		return
	}
	m.bestDiet.WithLabelValues(best.String()).Inc()
	m.skippedRecipes.Add(float64(skipped))
}

func (m *Metrics) observeCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// SetCatalogSize records the number of loaded recipes.
func (m *Metrics) SetCatalogSize(n int) {
	if m == nil {
		return
	}
	m.catalogSize.Set(float64(n))
}
