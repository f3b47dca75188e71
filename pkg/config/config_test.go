package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "Spanish", cfg.Scheduler.LanguageLabel)
	assert.Equal(t, 5*time.Minute, cfg.Summary.CacheTTL)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
	assert.Empty(t, cfg.Security.NotesEncryptionKey)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SCHEDULER_LANGUAGE_LABEL", " ASL ")
	t.Setenv("SUMMARY_CACHE_ENABLED", "true")
	t.Setenv("SUMMARY_CACHE_TTL", "not-a-duration")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "ASL", cfg.Scheduler.LanguageLabel)
	assert.True(t, cfg.Summary.CacheEnabled)
	assert.Equal(t, 5*time.Minute, cfg.Summary.CacheTTL)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("ENV", EnvProduction)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be changed")

	t.Setenv("JWT_SECRET", "rotated-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvProduction, cfg.Env)
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := &Config{Port: 0, APIPrefix: "api", Scheduler: SchedulerConfig{LanguageLabel: "Spanish"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT 0 out of range")
	assert.Contains(t, err.Error(), "API_PREFIX must start with /")
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}
