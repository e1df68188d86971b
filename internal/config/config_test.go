package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"DATABASE_DSN":           "postgres://localhost/squad",
		"INITIAL_ADMIN_PASSWORD": "secret",
		"INITIAL_ADMIN_EMAIL":    "admin@example.com",
		"JWT_SECRET":             "jwt",
		"EMAIL_SMTP_USERNAME":    "bot@example.com",
		"EMAIL_SMTP_PASSWORD":    "smtp",
		"EMAIL_SMTP_HOST":        "smtp.example.com",
		"RABBITMQ_DSN":           "amqp://localhost",
		"REDIS_PASSWORD":         "redis",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Search.MaxResult)
	assert.Equal(t, 30, cfg.Search.MaxSearchDurationSeconds)
	assert.Equal(t, 50, cfg.Search.SmallResultSize)
	assert.Equal(t, 1, cfg.Search.SmallResultSizeDurationSeconds)
	assert.Equal(t, "roster_queue", cfg.RabbitMQ.Queue)
	assert.Equal(t, "./squad_types.yaml", cfg.SquadTypes.File)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SEARCH_MAX_SEARCH_DURATION_SECONDS", "5")
	t.Setenv("SEARCH_MAX_SEARCH_DURATION_SECONDS_SMALL_RESULT_SIZE", "2")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Search.MaxSearchDurationSeconds)
	assert.Equal(t, 2, cfg.Search.SmallResultSizeDurationSeconds)
}

func TestLoadConfigMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := LoadConfig()
	assert.Error(t, err)
}
