// Package config handles application configuration loading. Values come
// from environment variables, optionally layered over a config file named
// by CONFIG_FILE, with development defaults for everything else.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultDBPassword = "changeme"
	defaultJWTSecret  = "dev-secret-change-me"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	LogLevel string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int
	ValkeyPoolSize int

	// Bearer tokens
	JWTSecret string
	JWTTTL    time.Duration

	// Media storage. StorageBackend is "s3", "minio" or "none"; the local
	// disk under UploadDir is always available as the fallback.
	StorageBackend string
	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3PublicURL    string
	MinioUseSSL    bool
	UploadDir      string
	MaxUploadMB    int

	// Rate limiting for public write endpoints
	RateLimit  int
	RateWindow time.Duration
}

var defaults = map[string]any{
	"APP_HOST":          "0.0.0.0",
	"APP_PORT":          "8080",
	"APP_ENV":           "development",
	"LOG_LEVEL":         "info",
	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_USER":     "featherpress",
	"POSTGRES_PASSWORD": defaultDBPassword,
	"POSTGRES_DB":       "featherpress",
	"VALKEY_HOST":       "localhost",
	"VALKEY_PORT":       "6379",
	"VALKEY_PASSWORD":   "",
	"VALKEY_DB":         0,
	"VALKEY_POOL_SIZE":  10,
	"JWT_SECRET":        defaultJWTSecret,
	"JWT_TTL":           "24h",
	"STORAGE_BACKEND":   "none",
	"S3_ENDPOINT":       "",
	"S3_REGION":         "us-east-1",
	"S3_ACCESS_KEY":     "",
	"S3_SECRET_KEY":     "",
	"S3_BUCKET":         "featherpress",
	"S3_PUBLIC_URL":     "",
	"MINIO_USE_SSL":     false,
	"UPLOAD_DIR":        "uploads",
	"MAX_UPLOAD_MB":     50,
	"RATE_LIMIT":        60,
	"RATE_WINDOW":       "1m",
}

// Load reads configuration from the environment (and CONFIG_FILE when
// set), applying defaults for development. Returns an error if critical
// values are missing in production mode.
func Load() (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Host:     v.GetString("APP_HOST"),
		Port:     v.GetString("APP_PORT"),
		Env:      v.GetString("APP_ENV"),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),

		DBHost:     v.GetString("POSTGRES_HOST"),
		DBPort:     v.GetString("POSTGRES_PORT"),
		DBUser:     v.GetString("POSTGRES_USER"),
		DBPassword: v.GetString("POSTGRES_PASSWORD"),
		DBName:     v.GetString("POSTGRES_DB"),

		ValkeyHost:     v.GetString("VALKEY_HOST"),
		ValkeyPort:     v.GetString("VALKEY_PORT"),
		ValkeyPassword: v.GetString("VALKEY_PASSWORD"),
		ValkeyDB:       v.GetInt("VALKEY_DB"),
		ValkeyPoolSize: v.GetInt("VALKEY_POOL_SIZE"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		StorageBackend: strings.ToLower(v.GetString("STORAGE_BACKEND")),
		S3Endpoint:     v.GetString("S3_ENDPOINT"),
		S3Region:       v.GetString("S3_REGION"),
		S3AccessKey:    v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:    v.GetString("S3_SECRET_KEY"),
		S3Bucket:       v.GetString("S3_BUCKET"),
		S3PublicURL:    v.GetString("S3_PUBLIC_URL"),
		MinioUseSSL:    v.GetBool("MINIO_USE_SSL"),
		UploadDir:      v.GetString("UPLOAD_DIR"),
		MaxUploadMB:    v.GetInt("MAX_UPLOAD_MB"),

		RateLimit:  v.GetInt("RATE_LIMIT"),
		RateWindow: v.GetDuration("RATE_WINDOW"),
	}

	switch cfg.StorageBackend {
	case "s3", "minio", "none":
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be s3, minio or none, got %q", cfg.StorageBackend)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == defaultDBPassword {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.JWTSecret == defaultJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
