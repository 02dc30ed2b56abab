package config

import (
	"fmt"
	"time"

	"github.com/RishiKendai/aegis-text/internal/configs/env"
	"github.com/RishiKendai/aegis-text/internal/plagiarism"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentCompute int
	Workers              int

	// Computation
	ComputationTimeout time.Duration
	MaxDocuments       int
	MaxDocumentBytes   int
	MaxCompareBytes    int

	// Engine thresholds
	Thresholds plagiarism.Thresholds

	// Logging
	LogLevel string

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "analysis:stream")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "analysis:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "analysis:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_DURATION", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "aegis-text")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentCompute = env.GetEnvInt("MAX_CONCURRENT_COMPUTE", 5)
	cfg.Workers = env.GetEnvInt("WORKERS", 0)

	// Computation
	timeoutMinutes := env.GetEnvInt("COMPUTATION_TIMEOUT_MINUTES", 30)
	cfg.ComputationTimeout = time.Duration(timeoutMinutes) * time.Minute
	cfg.MaxDocuments = env.GetEnvInt("MAX_DOCUMENTS", 50)
	cfg.MaxDocumentBytes = env.GetEnvInt("MAX_DOCUMENT_BYTES", 1<<20)
	cfg.MaxCompareBytes = env.GetEnvInt("MAX_COMPARE_BYTES", 16<<10)

	// Engine thresholds
	th := plagiarism.DefaultThresholds()
	th.MatchAcceptance = env.GetEnvFloat("MATCH_THRESHOLD", th.MatchAcceptance)
	th.LineMatch = env.GetEnvFloat("LINE_MATCH_THRESHOLD", th.LineMatch)
	th.Exact = env.GetEnvFloat("EXACT_THRESHOLD", th.Exact)
	th.Similar = env.GetEnvFloat("SIMILAR_THRESHOLD", th.Similar)
	th.MaxMatches = env.GetEnvInt("MAX_MATCHES", th.MaxMatches)
	cfg.Thresholds = th

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MaxConcurrentCompute <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_COMPUTE must be greater than 0")
	}
	if c.MaxDocuments < 2 {
		return fmt.Errorf("MAX_DOCUMENTS must be at least 2")
	}
	if c.MaxDocumentBytes <= 0 {
		return fmt.Errorf("MAX_DOCUMENT_BYTES must be greater than 0")
	}
	if c.MaxCompareBytes <= 0 {
		return fmt.Errorf("MAX_COMPARE_BYTES must be greater than 0")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_DURATION must be greater than 0")
	}
	return c.ValidateThresholds()
}

// ValidateThresholds checks the engine thresholds only; the CLI needs nothing else
func (c *Config) ValidateThresholds() error {
	th := c.Thresholds
	for name, value := range map[string]float64{
		"MATCH_THRESHOLD":      th.MatchAcceptance,
		"LINE_MATCH_THRESHOLD": th.LineMatch,
		"EXACT_THRESHOLD":      th.Exact,
		"SIMILAR_THRESHOLD":    th.Similar,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be within [0, 1]", name)
		}
	}
	if th.Similar > th.Exact {
		return fmt.Errorf("SIMILAR_THRESHOLD must not exceed EXACT_THRESHOLD")
	}
	if th.MaxMatches <= 0 {
		return fmt.Errorf("MAX_MATCHES must be greater than 0")
	}
	return nil
}
