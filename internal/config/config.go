package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig         `mapstructure:"server"`
	Database   DatabaseConfig       `mapstructure:"database"`
	Redis      RedisConfig          `mapstructure:"redis"`
	Kafka      KafkaConfig          `mapstructure:"kafka"`
	Auth       AuthConfig           `mapstructure:"auth"`
	Logging    LoggingConfig        `mapstructure:"logging"`
	Catalog    CatalogConfig        `mapstructure:"catalog"`
	Recommend  RecommendationConfig `mapstructure:"recommendation"`
	Monitoring MonitoringConfig     `mapstructure:"monitoring"`
	Security   SecurityConfig       `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Brokers   []string `mapstructure:"brokers"`
	Topic     string   `mapstructure:"topic"`
	QueueSize int      `mapstructure:"queue_size"`
}

type AuthConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CatalogConfig selects where the prebuilt recipe catalog is read from.
type CatalogConfig struct {
	Source string `mapstructure:"source"` // csv or postgres
	Path   string `mapstructure:"path"`
}

type RecommendationConfig struct {
	TopK         int           `mapstructure:"top_k"`
	MaxTopK      int           `mapstructure:"max_top_k"`
	CalorieScale float64       `mapstructure:"calorie_scale"`
	Weights      ScoreWeights  `mapstructure:"weights"`
	CacheEnabled bool          `mapstructure:"cache_enabled"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// ScoreWeights are α, β and γ of the recipe score.
type ScoreWeights struct {
	Diet    float64 `mapstructure:"diet"`
	Calorie float64 `mapstructure:"calorie"`
	Context float64 `mapstructure:"context"`
}

// Validate requires non-negative weights that sum to 1.
func (w ScoreWeights) Validate() error {
	if w.Diet < 0 || w.Calorie < 0 || w.Context < 0 {
		return fmt.Errorf("score weights must be non-negative: %+v", w)
	}
	if sum := w.Diet + w.Calorie + w.Context; math.Abs(sum-1) > 0.001 {
		return fmt.Errorf("score weights sum to %.4f, must sum to 1.0", sum)
	}
	return nil
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// DefaultRecommendationConfig mirrors the defaults applied by Load.
func DefaultRecommendationConfig() RecommendationConfig {
	return RecommendationConfig{
		TopK:         5,
		MaxTopK:      50,
		CalorieScale: 200,
		Weights:      ScoreWeights{Diet: 0.5, Calorie: 0.3, Context: 0.2},
		CacheEnabled: true,
		CacheTTL:     15 * time.Minute,
	}
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)

	// Environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case "csv":
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for the csv source")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres catalog source")
		}
	default:
		return fmt.Errorf("unknown catalog.source %q (want csv or postgres)", c.Catalog.Source)
	}
	if c.Recommend.TopK <= 0 {
		return fmt.Errorf("recommendation.top_k must be positive, got %d", c.Recommend.TopK)
	}
	if c.Recommend.MaxTopK < c.Recommend.TopK {
		return fmt.Errorf("recommendation.max_top_k (%d) is below top_k (%d)", c.Recommend.MaxTopK, c.Recommend.TopK)
	}
	if c.Recommend.CalorieScale <= 0 {
		return fmt.Errorf("recommendation.calorie_scale must be positive")
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
	}
	return c.Recommend.Weights.Validate()
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "development")

	// Database defaults
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_time", "15m")
	v.SetDefault("database.max_lifetime", "1h")
	v.SetDefault("database.connect_timeout", "10s")

	// Redis defaults; an empty url disables the result cache
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.timeout", "2s")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "recommendation-events")
	v.SetDefault("kafka.queue_size", 1024)

	// Auth defaults
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token_ttl", "24h")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Catalog defaults
	v.SetDefault("catalog.source", "csv")
	v.SetDefault("catalog.path", "data/recipes.csv")

	// Recommendation defaults
	d := DefaultRecommendationConfig()
	v.SetDefault("recommendation.top_k", d.TopK)
	v.SetDefault("recommendation.max_top_k", d.MaxTopK)
	v.SetDefault("recommendation.calorie_scale", d.CalorieScale)
	v.SetDefault("recommendation.weights.diet", d.Weights.Diet)
	v.SetDefault("recommendation.weights.calorie", d.Weights.Calorie)
	v.SetDefault("recommendation.weights.context", d.Weights.Context)
	v.SetDefault("recommendation.cache_enabled", d.CacheEnabled)
	v.SetDefault("recommendation.cache_ttl", d.CacheTTL.String())

	// Monitoring defaults
	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"*"})
}
