package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_SECRET", "local-secret")
	t.Setenv("SESSION_JWKS_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "better-auth.session", cfg.Auth.CookieName)
	assert.Equal(t, "local-secret", cfg.Auth.SessionSecret)
	assert.Equal(t, 12*time.Hour, cfg.Timer.MaxSession)
	assert.Equal(t, "@every 15m", cfg.Timer.ReaperSchedule)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_SecretAliasAndBaseURL(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("BETTER_AUTH_SECRET", "from-better-auth")
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("BETTER_AUTH_BASE_URL", "https://sakura.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-better-auth", cfg.Auth.SessionSecret)
	assert.Equal(t, "https://sakura.example.com", cfg.App.PublicBaseURL)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("BETTER_AUTH_SECRET", "")
	t.Setenv("SESSION_JWKS_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoad_NonProductionEnvRequiresSecret(t *testing.T) {
	for _, env := range []string{"staging", "prod", "test"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			t.Setenv("SESSION_SECRET", "")
			t.Setenv("BETTER_AUTH_SECRET", "")
			t.Setenv("SESSION_JWKS_URL", "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "SESSION_SECRET")
		})
	}
}

func TestLoad_JWKSWithoutSecret(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("BETTER_AUTH_SECRET", "")
	t.Setenv("SESSION_JWKS_URL", "https://auth.example.com/.well-known/jwks.json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Auth.SessionSecret)
}

func TestValidate_RejectsDevSecret(t *testing.T) {
	for _, env := range []string{"production", "staging", ""} {
		cfg := &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Host: "localhost"},
			Redis:    RedisConfig{Addr: "localhost:6379"},
			Auth:     AuthConfig{SessionSecret: DevSessionSecret, CookieName: "s"},
			App:      AppConfig{Environment: env},
			Timer:    TimerConfig{MaxSession: time.Hour},
		}

		err := cfg.Validate()
		require.Error(t, err, env)
		assert.Contains(t, err.Error(), "development default")
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "sakura"}}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=sakura sslmode=disable", cfg.DatabaseURL())

	cfg.Database.DSN = "postgres://x"
	assert.Equal(t, "postgres://x", cfg.DatabaseURL())
}
