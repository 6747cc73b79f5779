package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevSessionSecret is filled in only by devauth builds running with
// APP_ENV=development. Validate rejects it everywhere else.
const DevSessionSecret = "fallback-secret-for-development-only"

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Slack     SlackConfig
	Firebase  FirebaseConfig
	App       AppConfig
	Timer     TimerConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	SessionSecret string
	JWKSURL       string
	CookieName    string
	SessionTTL    time.Duration
}

type SlackConfig struct {
	ClientID     string
	ClientSecret string
}

type FirebaseConfig struct {
	CredentialsPath string
}

type AppConfig struct {
	Environment   string
	LogLevel      string
	Version       string
	PublicBaseURL string
}

type TimerConfig struct {
	MaxSession     time.Duration
	ReaperSchedule string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "sakura"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			SessionSecret: getEnv("SESSION_SECRET", getEnv("BETTER_AUTH_SECRET", "")),
			JWKSURL:       getEnv("SESSION_JWKS_URL", ""),
			CookieName:    getEnv("SESSION_COOKIE_NAME", "better-auth.session"),
			SessionTTL:    getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
		},
		Slack: SlackConfig{
			ClientID:     getEnv("SLACK_CLIENT_ID", ""),
			ClientSecret: getEnv("SLACK_CLIENT_SECRET", ""),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		App: AppConfig{
			Environment:   getEnv("APP_ENV", "development"),
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			Version:       getEnv("APP_VERSION", "1.0.0"),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", getEnv("BETTER_AUTH_BASE_URL", "http://localhost:3000")), "/"),
		},
		Timer: TimerConfig{
			MaxSession:     getEnvAsDuration("TIMER_MAX_SESSION", 12*time.Hour),
			ReaperSchedule: getEnv("TIMER_REAPER_SCHEDULE", "@every 15m"),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
	}

	if cfg.Auth.SessionSecret == "" && cfg.Auth.JWKSURL == "" {
		cfg.Auth.SessionSecret = devSessionSecret(cfg.App.Environment)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("DB_DSN or DB_HOST is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.Auth.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}

	if c.Timer.MaxSession <= 0 {
		return fmt.Errorf("TIMER_MAX_SESSION must be positive")
	}

	if c.Auth.SessionSecret == "" && c.Auth.JWKSURL == "" {
		return fmt.Errorf("SESSION_SECRET or SESSION_JWKS_URL is required")
	}

	if c.Auth.SessionSecret == DevSessionSecret && !devSecretAllowed(c.App.Environment) {
		return fmt.Errorf("SESSION_SECRET must not use the development default in %q", c.App.Environment)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// DatabaseURL prefers an explicit DB_DSN over the discrete DB_* settings.
func (c *Config) DatabaseURL() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return DSN(&c.Database)
}

// SlackEnabled reports whether Slack sign-in can be offered.
func (c *Config) SlackEnabled() bool {
	return c.Slack.ClientID != "" && c.Slack.ClientSecret != ""
}

func DSN(cfg *DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
