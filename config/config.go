package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "change-me-in-production"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port              string
	Env               string
	StorageDriver     string
	MongoURI          string
	DBName            string
	JWTSecret         string
	AdminName         string
	AdminEmail        string
	AdminPassword     string
	S3Bucket          string
	S3Region          string
	S3AccessKeyID     string
	S3SecretKey       string
	UploadDir         string
	MaxUploadMB       int64
	LogLevel          string
	LogFormat         string
	AuthRatePerMinute int
	ReconcileInterval time.Duration
}

// Load reads the configuration from the environment. Call godotenv.Load first to pick up a .env file.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverMongo)),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:        getEnv("MONGODB_DB", "readingbud"),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		S3Bucket:      getEnv("AWS_S3_BUCKET", ""),
		S3Region:      getEnv("AWS_REGION", "us-east-1"),
		S3AccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", ""),
	}

	switch cfg.Env {
	case EnvDevelopment, EnvProduction:
	case EnvTest:
		if uri := os.Getenv("TEST_MONGODB_URI"); uri != "" {
			cfg.MongoURI = uri
		}
	default:
		return nil, fmt.Errorf("APP_ENV must be development, production or test, got %q", cfg.Env)
	}
	if cfg.StorageDriver != DriverMongo && cfg.StorageDriver != DriverMemory {
		return nil, fmt.Errorf("STORAGE_DRIVER must be mongo or memory, got %q", cfg.StorageDriver)
	}

	var err error
	if cfg.MaxUploadMB, err = getInt64("MAX_UPLOAD_MB", 10); err != nil {
		return nil, err
	}
	rate, err := getInt64("AUTH_RATE_PER_MINUTE", 20)
	if err != nil {
		return nil, err
	}
	cfg.AuthRatePerMinute = int(rate)
	if cfg.ReconcileInterval, err = getDuration("RECONCILE_INTERVAL", 0); err != nil {
		return nil, err
	}

	if cfg.Env == EnvProduction && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set to a strong secret (not the default %s)", defaultJWTSecret)
	}
	return cfg, nil
}

// MaxUploadBytes is the request body cap for multipart uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) (int64, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}

// getDuration accepts Go durations ("15m") or plain seconds.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s must be a duration like 15m, got %q", key, v)
	}
	return d, nil
}
