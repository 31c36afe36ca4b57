package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"PORT"`
		Mode         string `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout  string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		// RequestTimeout bounds every store call made while serving a request.
		RequestTimeout string   `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT"`
		CORSOrigins    []string `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASS"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		URL             string `yaml:"url" env:"DATABASE_URL"`
		MinConns        int    `yaml:"min_conns" env:"DB_MIN_CONNS"`
		MaxConns        int    `yaml:"max_conns" env:"DB_MAX_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"ACCESS_TOKEN_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level      string `yaml:"level" env:"LOG_LEVEL"`
		Format     string `yaml:"format" env:"LOG_FORMAT"`
		File       string `yaml:"file" env:"LOG_FILE"`
		MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
		MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS"`
	} `yaml:"logging"`

	Redis struct {
		Addr       string `yaml:"addr" env:"REDIS_ADDR"`
		Password   string `yaml:"password" env:"REDIS_PASSWORD"`
		DB         int    `yaml:"db" env:"REDIS_DB"`
		CatalogTTL string `yaml:"catalog_ttl" env:"REDIS_CATALOG_TTL"`
	} `yaml:"redis"`

	Kafka struct {
		Brokers  []string `yaml:"brokers" env:"KAFKA_BROKERS"`
		Topic    string   `yaml:"topic" env:"KAFKA_TOPIC"`
		ClientID string   `yaml:"client_id" env:"KAFKA_CLIENT_ID"`
	} `yaml:"kafka"`

	Stripe struct {
		SecretKey string `yaml:"secret_key" env:"PAYMENT_SECRET_KEY"`
		Currency  string `yaml:"currency" env:"PAYMENT_CURRENCY"`
	} `yaml:"stripe"`

	Sentry struct {
		DSN         string `yaml:"dsn" env:"SENTRY_DSN"`
		Environment string `yaml:"environment" env:"SENTRY_ENVIRONMENT"`
		Release     string `yaml:"release" env:"SENTRY_RELEASE"`
	} `yaml:"sentry"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
	} `yaml:"smtp"`

	Enrollment struct {
		RestoreSeatOnCancel bool `yaml:"restore_seat_on_cancel" env:"ENROLLMENT_RESTORE_SEAT_ON_CANCEL"`
	} `yaml:"enrollment"`

	Storage struct {
		UploadDir     string `yaml:"upload_dir" env:"STORAGE_UPLOAD_DIR"`
		PublicBaseURL string `yaml:"public_base_url" env:"STORAGE_PUBLIC_BASE_URL"`
	} `yaml:"storage"`

	Admin struct {
		Emails   []string `yaml:"emails" env:"ADMIN_EMAILS"`
		SeedDemo bool     `yaml:"seed_demo" env:"SEED_DEMO_CLASSES"`
	} `yaml:"admin"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "5000"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "10s"
	config.Server.WriteTimeout = "10s"
	config.Server.RequestTimeout = "5s"
	config.Server.CORSOrigins = []string{"*"}

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "monchobi_school"
	config.Database.SSLMode = "disable"
	config.Database.MinConns = 2
	config.Database.MaxConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.Issuer = "monchobi-art-school"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.MaxSizeMB = 50
	config.Logging.MaxBackups = 3

	config.Redis.CatalogTTL = "2m"

	config.Kafka.Topic = "artschool.events"
	config.Kafka.ClientID = "artschool-api"

	config.Stripe.Currency = "usd"

	config.SMTP.Port = 587
	config.SMTP.FromName = "Monchobi Art School"

	config.Enrollment.RestoreSeatOnCancel = true

	config.Storage.UploadDir = "uploads"
	config.Storage.PublicBaseURL = "http://localhost:5000/uploads"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.URL == "" && config.Database.Host == "" {
		return fmt.Errorf("database host or url is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"jwt access token expiration": config.JWT.AccessTokenExpiration,
		"server read timeout":         config.Server.ReadTimeout,
		"server write timeout":        config.Server.WriteTimeout,
		"server request timeout":      config.Server.RequestTimeout,
		"database conn max lifetime":  config.Database.ConnMaxLifetime,
		"redis catalog ttl":           config.Redis.CatalogTTL,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in release mode.
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Server.Mode) == "production"
}
