package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Carig-G/the-bench/internal/domain"
)

type Config struct {
	AppName string
	Env     string
	Host    string
	Port    int

	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	JWTSecret          string
	AccessTokenMinutes int
	EncryptKey         string

	CORSOrigins []string
	Debug       bool

	RedisAddr            string
	RedisPassword        string
	TrendingCacheSeconds int

	Rules domain.Rules
}

// LoadEnvFile loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() (*Config, error) {
	dbHost := getEnv("POSTGRES_HOST", "localhost")
	dbPort := getEnv("POSTGRES_PORT", "5432")
	dbUser := getEnv("POSTGRES_USER", "postgres")
	dbPass := getEnv("POSTGRES_PASSWORD", "postgres")
	dbName := getEnv("POSTGRES_DB", "bench")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dbUser, dbPass),
		Host:     fmt.Sprintf("%s:%s", dbHost, dbPort),
		Path:     dbName,
		RawQuery: "sslmode=disable",
	}

	defaults := domain.DefaultRules()
	cfg := &Config{
		AppName: getEnv("APP_NAME", "The Bench API"),
		Env:     getEnv("APP_ENV", "development"),
		Host:    getEnv("HTTP_HOST", "0.0.0.0"),
		Port:    getEnvAsInt("HTTP_PORT", 8000),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL: getEnv("DATABASE_URL", u.String()),
		SQLitePath:  getEnv("SQLITE_PATH", "bench.db"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24*7),
		EncryptKey:         os.Getenv("ENCRYPTION_KEY"),

		Debug: getEnvAsBool("DEBUG", false),

		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		TrendingCacheSeconds: getEnvAsInt("TRENDING_CACHE_SECONDS", 60),

		Rules: domain.Rules{
			PublicMessageCount: getEnvAsInt("PUBLIC_MESSAGE_COUNT", defaults.PublicMessageCount),
			RevealThreshold:    getEnvAsInt("REVEAL_THRESHOLD", defaults.RevealThreshold),
			DefaultPriceCents:  int64(getEnvAsInt("DEFAULT_PRICE_CENTS", int(defaults.DefaultPriceCents))),
		},
	}

	cors := getEnv("CORS_ORIGINS", "")
	if cors != "" {
		parts := strings.Split(cors, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.CORSOrigins = parts
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.EncryptKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.Rules.PublicMessageCount < 1 {
		return fmt.Errorf("PUBLIC_MESSAGE_COUNT must be at least 1")
	}
	if c.Rules.RevealThreshold < 1 {
		return fmt.Errorf("REVEAL_THRESHOLD must be at least 1")
	}
	if c.Rules.DefaultPriceCents <= 0 {
		return fmt.Errorf("DEFAULT_PRICE_CENTS must be positive")
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

func (c *Config) TrendingCacheTTL() time.Duration {
	return time.Duration(c.TrendingCacheSeconds) * time.Second
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
