package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds the whole application configuration.
// It is populated from environment variables.
type Config struct {
	App     AppConfig
	Redis   RedisConfig
	JWT     JWTConfig
	MinIO   MinIOConfig
	Upload  UploadConfig
	Breaker BreakerConfig
}

type AppConfig struct {
	Name         string
	Environment  string // development, staging, production
	Port         string
	Version      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
	BcryptCost        int
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL overrides the scheme://endpoint prefix of returned object URLs.
	PublicURL string
}

// UploadConfig limits what POST /books accepts.
type UploadConfig struct {
	MaxImageBytes    int64
	MaxDocumentBytes int64
	MaxImageWidth    int
	MaxImagePixels   int64
}

// =====================================================
// CIRCUIT BREAKER (object storage)
// =====================================================

type BreakerConfig struct {
	FailureRatio float64
	MinRequests  uint32
	Timeout      time.Duration
	Interval     time.Duration
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:         getEnv("APP_NAME", "Bookshelf API"),
			Environment:  getEnv("APP_ENV", "development"),
			Port:         getEnv("APP_PORT", "8080"),
			Version:      getEnv("APP_VERSION", "1.0.0"),
			ReadTimeout:  getEnvDuration("APP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("APP_WRITE_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 60*24),
			BcryptCost:        getEnvInt("BCRYPT_COST", 10),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "bookshelf"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
		},
		Upload: UploadConfig{
			MaxImageBytes:    int64(getEnvInt("UPLOAD_MAX_IMAGE_MB", 5)) << 20,
			MaxDocumentBytes: int64(getEnvInt("UPLOAD_MAX_DOCUMENT_MB", 50)) << 20,
			MaxImageWidth:    getEnvInt("UPLOAD_MAX_IMAGE_WIDTH", 1200),
			MaxImagePixels:   int64(getEnvInt("UPLOAD_MAX_IMAGE_PIXELS", 40_000_000)),
		},
		Breaker: BreakerConfig{
			FailureRatio: getEnvFloat("STORAGE_BREAKER_FAILURE_RATIO", 0.5),
			MinRequests:  uint32(getEnvInt("STORAGE_BREAKER_MIN_REQUESTS", 5)),
			Timeout:      getEnvDuration("STORAGE_BREAKER_TIMEOUT", 30*time.Second),
			Interval:     getEnvDuration("STORAGE_BREAKER_INTERVAL", 60*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks settings that must be explicit outside development.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRY must be positive")
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("STORAGE_BREAKER_FAILURE_RATIO must be in (0, 1]")
	}

	return nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
