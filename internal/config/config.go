// Package config loads runtime configuration from config.yml and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	Env string `mapstructure:"APP_ENV"`

	// Database. DatabaseURL wins over the discrete DB_* fields when set.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBPort      string `mapstructure:"DB_PORT"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`
	DBName      string `mapstructure:"DB_NAME"`
	DBSSLMode   string `mapstructure:"DB_SSLMODE"`

	// JWT
	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	HostTokenExpiry  time.Duration `mapstructure:"JWT_HOST_ACCESS_EXPIRY"`
	GuestTokenExpiry time.Duration `mapstructure:"JWT_GUEST_ACCESS_EXPIRY"`
	JWTRefreshExpiry time.Duration `mapstructure:"JWT_REFRESH_EXPIRY"`

	// Sessions
	SessionExpiry time.Duration `mapstructure:"SESSION_EXPIRY"`
	RedisURL      string        `mapstructure:"REDIS_URL"`

	// Google OAuth
	GoogleClientID     string `mapstructure:"GOOGLE_OAUTH_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_OAUTH_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_OAUTH_REDIRECT_URL"`

	// Files
	UploadDir      string `mapstructure:"UPLOAD_DIR"`
	StaticDir      string `mapstructure:"STATIC_DIR"`
	MaxUploadBytes int64  `mapstructure:"MAX_UPLOAD_BYTES"`

	// Observability
	SentryDSN    string `mapstructure:"SENTRY_DSN"`
	OTelExporter string `mapstructure:"OTEL_EXPORTER"`
	OTelEndpoint string `mapstructure:"OTEL_ENDPOINT"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`

	// Server
	Port        string `mapstructure:"PORT"`
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
}

var defaults = map[string]any{
	"APP_ENV":                 "development",
	"DATABASE_URL":            "",
	"DB_HOST":                 "localhost",
	"DB_PORT":                 "5432",
	"DB_USER":                 "postgres",
	"DB_PASSWORD":             "",
	"DB_NAME":                 "babypool",
	"DB_SSLMODE":              "disable",
	"JWT_SECRET":              defaultJWTSecret,
	"JWT_HOST_ACCESS_EXPIRY":  "168h",
	"JWT_GUEST_ACCESS_EXPIRY": "720h",
	"JWT_REFRESH_EXPIRY":      "720h",
	"SESSION_EXPIRY":          "720h",
	"REDIS_URL":               "",

	"GOOGLE_OAUTH_CLIENT_ID":     "",
	"GOOGLE_OAUTH_CLIENT_SECRET": "",
	"GOOGLE_OAUTH_REDIRECT_URL":  "http://localhost:8080/google_auth/google_login/callback",

	"UPLOAD_DIR":              "static/uploads",
	"STATIC_DIR":              "static",
	"MAX_UPLOAD_BYTES":        5 * 1024 * 1024,
	"SENTRY_DSN":              "",
	"OTEL_EXPORTER":           "none",
	"OTEL_ENDPOINT":           "localhost:4318",
	"LOG_LEVEL":               "info",
	"PORT":                    "8080",
	"CORS_ORIGINS":            "*",
}

// Load reads config.yml (optional) from the working directory and overlays
// environment variables on top of it.
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks required values and refuses insecure defaults in production.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be changed and at least 32 characters in production")
		}
		if c.DatabaseURL == "" && c.DBPassword == "" {
			return errors.New("DB_PASSWORD is required in production")
		}
		if c.CORSOrigins == "*" {
			slog.Warn("CORS_ORIGINS is '*' in production")
		}
	} else if c.JWTSecret == defaultJWTSecret {
		slog.Warn("using the default JWT_SECRET, set one before deploying")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// UsesSQLite reports whether DATABASE_URL points at a SQLite file.
func (c *Config) UsesSQLite() bool {
	return strings.HasPrefix(c.DatabaseURL, "sqlite://")
}

// SQLitePath strips the sqlite:// scheme from DATABASE_URL.
func (c *Config) SQLitePath() string {
	return strings.TrimPrefix(c.DatabaseURL, "sqlite://")
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// GoogleEnabled reports whether the Google sign-in routes should be mounted.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// AccessExpiry returns the access-token lifetime: hosts get shorter tokens than guests.
func (c *Config) AccessExpiry(isHost bool) time.Duration {
	if isHost {
		return c.HostTokenExpiry
	}
	return c.GuestTokenExpiry
}
