package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Typesense  TypesenseConfig
	ICD11      ICD11Config
	Embedding  EmbeddingConfig
	Classifier ClassifierConfig
	Detection  DetectionConfig
	OTEL       OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// ICD11Config holds configuration for the remote ICD-11 terminology service.
// ClientID and ClientSecret enable remote enrichment; leaving either empty
// forces local-only mode.
type ICD11Config struct {
	ClientID          string
	ClientSecret      string
	BaseURL           string
	TokenURL          string
	GuidelinesURL     string
	RequestsPerMinute int
	MaxRetries        int
	RetryDelaySeconds float64
	TimeoutSeconds    int
	CooldownMinutes   int
	MaxFailures       int
}

// EmbeddingConfig holds the multilingual embedding sidecar configuration
type EmbeddingConfig struct {
	ServiceURL string
	ModelName  string
	Enabled    bool
}

// ClassifierConfig holds the fine-tuned classifier head configuration
type ClassifierConfig struct {
	ServiceURL     string
	ArtifactPath   string
	Enabled        bool
	MinProbability float64
}

// DetectionConfig holds detection pipeline tuning knobs
type DetectionConfig struct {
	CacheTimeoutSeconds   int
	LocalCacheTimeoutDays int
	TrendingWriteAll      bool
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "condition_screening"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", ""),
			APIKey: getEnv("TYPESENSE_API_KEY", ""),
		},
		ICD11: ICD11Config{
			ClientID:          getEnv("ICD11_CLIENT_ID", ""),
			ClientSecret:      getEnv("ICD11_CLIENT_SECRET", ""),
			BaseURL:           getEnv("ICD11_BASE_URL", "https://id.who.int/icd"),
			TokenURL:          getEnv("ICD11_TOKEN_URL", "https://icdaccessmanagement.who.int/connect/token"),
			GuidelinesURL:     getEnv("ICD11_GUIDELINES_URL", ""),
			RequestsPerMinute: getEnvAsInt("ICD11_REQUESTS_PER_MINUTE", 60),
			MaxRetries:        getEnvAsInt("ICD11_MAX_RETRIES", 3),
			RetryDelaySeconds: getEnvAsFloat("ICD11_RETRY_DELAY_SECONDS", 1.0),
			TimeoutSeconds:    getEnvAsInt("ICD11_TIMEOUT_SECONDS", 30),
			CooldownMinutes:   getEnvAsInt("ICD11_COOLDOWN_MINUTES", 30),
			MaxFailures:       getEnvAsInt("ICD11_MAX_FAILURES", 10),
		},
		Embedding: EmbeddingConfig{
			ServiceURL: getEnv("EMBEDDING_SERVICE_URL", ""),
			ModelName:  getEnv("EMBEDDING_MODEL_NAME", "distiluse-base-multilingual-cased-v2"),
			Enabled:    getEnvAsBool("ENABLE_SEMANTIC_MODEL", true),
		},
		Classifier: ClassifierConfig{
			ServiceURL:     getEnv("CLASSIFIER_SERVICE_URL", ""),
			ArtifactPath:   getEnv("CLASSIFIER_ARTIFACT_PATH", ""),
			Enabled:        getEnvAsBool("ENABLE_CLASSIFIER_HEAD", true),
			MinProbability: getEnvAsFloat("CLASSIFIER_MIN_PROBABILITY", 0.1),
		},
		Detection: DetectionConfig{
			CacheTimeoutSeconds:   getEnvAsInt("CACHE_TIMEOUT_SECONDS", 86400),
			LocalCacheTimeoutDays: getEnvAsInt("LOCAL_CACHE_TIMEOUT_DAYS", 7),
			TrendingWriteAll:      getEnvAsBool("TRENDING_WRITE_ALL", true),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "condition-screening"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HasCredentials reports whether the remote ICD-11 service can be used
func (c *ICD11Config) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Cooldown returns the wait after the remote failure budget is exhausted
func (c *ICD11Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
