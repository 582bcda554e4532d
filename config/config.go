package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadENV loads environment variables from .env unless GO_ENV says otherwise
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GO_ENV       string
	PORT         int
	APP_BASE_URL string

	// Database
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string

	// JWT
	JWT_SECRET         string
	JWT_ISSUER         string
	JWT_ACCESS_EXPIRY  time.Duration
	JWT_REFRESH_EXPIRY time.Duration

	// Redis
	REDIS_URL string

	// SMTP
	SMTP_HOST     string
	SMTP_PORT     string
	SMTP_USER     string
	SMTP_PASSWORD string
	EMAIL_FROM    string
	OPS_EMAIL     string

	// Stripe
	STRIPE_API_KEY string

	// DigitalOcean Spaces (media storage)
	DO_SPACES_KEY      string
	DO_SPACES_SECRET   string
	DO_SPACES_BUCKET   string
	DO_SPACES_REGION   string
	DO_SPACES_ENDPOINT string

	// Background workers
	QUEUE_WORKERS       int
	NOTIFY_COOLDOWN     time.Duration
	INACTIVITY_CUTOFF   time.Duration
	BOOTSTRAP_ADMIN     string
	BOOTSTRAP_ADMIN_PWD string
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func Get() (*EnvironmentVariable, error) {
	envVariables := &EnvironmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		PORT:         getInt("PORT", 8080),
		APP_BASE_URL: getString("APP_BASE_URL", "http://localhost:8080"),

		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      getString("DB_HOST", "localhost"),
		DB_PORT:      getString("DB_PORT", "5432"),
		DB_SSL_MODE:  getString("DB_SSL_MODE", "disable"),

		JWT_SECRET:         os.Getenv("JWT_SECRET"),
		JWT_ISSUER:         getString("JWT_ISSUER", "skillforge"),
		JWT_ACCESS_EXPIRY:  getDuration("JWT_ACCESS_EXPIRY", 60*time.Minute),
		JWT_REFRESH_EXPIRY: getDuration("JWT_REFRESH_EXPIRY", 24*time.Hour),

		REDIS_URL: getString("REDIS_URL", "redis://localhost:6379/0"),

		SMTP_HOST:     os.Getenv("SMTP_HOST"),
		SMTP_PORT:     getString("SMTP_PORT", "587"),
		SMTP_USER:     os.Getenv("SMTP_USER"),
		SMTP_PASSWORD: os.Getenv("SMTP_PASSWORD"),
		EMAIL_FROM:    os.Getenv("EMAIL_FROM"),
		OPS_EMAIL:     os.Getenv("OPS_EMAIL"),

		STRIPE_API_KEY: os.Getenv("STRIPE_API_KEY"),

		DO_SPACES_KEY:      os.Getenv("DO_SPACES_KEY"),
		DO_SPACES_SECRET:   os.Getenv("DO_SPACES_SECRET"),
		DO_SPACES_BUCKET:   os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:   getString("DO_SPACES_REGION", "nyc3"),
		DO_SPACES_ENDPOINT: os.Getenv("DO_SPACES_ENDPOINT"),

		QUEUE_WORKERS:       getInt("QUEUE_WORKERS", 4),
		NOTIFY_COOLDOWN:     getDuration("NOTIFY_COOLDOWN", 4*time.Hour),
		INACTIVITY_CUTOFF:   getDuration("INACTIVITY_CUTOFF", 30*24*time.Hour),
		BOOTSTRAP_ADMIN:     os.Getenv("BOOTSTRAP_ADMIN"),
		BOOTSTRAP_ADMIN_PWD: os.Getenv("BOOTSTRAP_ADMIN_PWD"),
	}

	return envVariables, nil
}
