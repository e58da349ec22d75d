package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// PostgresConfig is optional: an empty Host means the catalog runs on built-in
// defaults without a remote source.
type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MigrationsPath  string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

func (c PostgresConfig) Enabled() bool {
	return c.Host != ""
}

type Config struct {
	App struct {
		Port        string
		BaseURL     string
		ProductName string
	}
	Postgres PostgresConfig
	Redis    struct {
		Addr string
	}
	S3 struct {
		Bucket string
		Region string
	}
	Stripe struct {
		SecretKey string
	}
	Upload struct {
		MaxFiles int
	}
}

// Load reads configuration from the environment, optionally seeded from a
// .env file. Only hard requirements fail; optional backends are left empty
// and the caller degrades accordingly.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}

	cfg.App.Port = envOr("APP_PORT", "8080")
	cfg.App.BaseURL = envOr("BASE_URL", "http://localhost:3000")
	cfg.App.ProductName = envOr("PRODUCT_NAME", "Custom Stickers")

	cfg.Postgres.Host = os.Getenv("DB_HOST")
	cfg.Postgres.Port = envOr("DB_PORT", "5432")
	cfg.Postgres.User = os.Getenv("DB_USER")
	cfg.Postgres.Password = os.Getenv("DB_PASSWORD")
	cfg.Postgres.DBName = os.Getenv("DB_NAME")
	cfg.Postgres.SSLMode = envOr("DB_SSLMODE", "disable")
	cfg.Postgres.MigrationsPath = envOr("DB_MIGRATIONS_PATH", "migrations")
	cfg.Postgres.MaxConns = 10
	cfg.Postgres.MinConns = 2
	cfg.Postgres.MaxConnLifetime = 30 * time.Minute

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")

	cfg.S3.Bucket = os.Getenv("S3_BUCKET")
	cfg.S3.Region = envOr("AWS_REGION", "us-east-1")

	cfg.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")

	cfg.Upload.MaxFiles = 1
	if v := os.Getenv("MAX_UPLOAD_FILES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_FILES %q", v)
		}
		cfg.Upload.MaxFiles = n
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
