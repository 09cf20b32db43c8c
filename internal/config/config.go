package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSecretKey = "dev-only-secret-change-me"

type Config struct {
	Env  string
	Port int

	// DatabaseURL selects the store: sqlite:// (default), postgres:// or memory://.
	DatabaseURL string

	SecretKey              string
	SessionTTL             time.Duration
	PasswordHashIterations int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTelEndpoint string
	ServiceName  string

	LoginRateLimit  int
	LoginRateWindow time.Duration
}

func Load() Config {
	// a missing .env file is fine, real env vars still apply
	_ = godotenv.Load(getEnv("ENV_FILE", ".env"))

	env := getEnv("APP_ENV", "dev")

	secret := os.Getenv("SECRET_KEY")
	if secret == "" && env == "dev" {
		secret = devSecretKey
	}

	return Config{
		Env:                    env,
		Port:                   getEnvInt("PORT", 8080),
		DatabaseURL:            getEnv("DATABASE_URL", "sqlite://todo.db"),
		SecretKey:              secret,
		SessionTTL:             getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		PasswordHashIterations: getEnvInt("PASSWORD_HASH_ITERATIONS", 600000),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvInt("REDIS_DB", 0),
		OTelEndpoint:           getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:            getEnv("OTEL_SERVICE_NAME", "taskboard"),
		LoginRateLimit:         getEnvInt("LOGIN_RATE_LIMIT", 20),
		LoginRateWindow:        getEnvDuration("LOGIN_RATE_WINDOW", time.Minute),
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY must be set outside dev")
	}

	if c.Env == "prod" && c.SecretKey == devSecretKey {
		return errors.New("SECRET_KEY must not use the dev fallback in prod")
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}

	if _, _, err := c.Store(); err != nil {
		return err
	}

	return nil
}

// Store splits DatabaseURL into a driver name and the DSN that driver expects.
func (c Config) Store() (driver string, dsn string, err error) {
	raw := strings.TrimSpace(c.DatabaseURL)

	switch {
	case raw == "":
		return "sqlite", "todo.db", nil
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return "postgres", raw, nil
	case strings.HasPrefix(raw, "sqlite://"):
		// accept both sqlite://todo.db and the sqlite:///todo.db form
		path := strings.TrimPrefix(raw, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			path = "todo.db"
		}
		return "sqlite", path, nil
	case strings.HasPrefix(raw, "memory://"):
		return "memory", "", nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL scheme: %q", raw)
	}
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return d
	}
	return fallback
}
