package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"DB_TYPE", "DB_PATH", "DATABASE_URL", "OPENAI_API_KEY", "LLM_MODEL", "OPENAI_BASE_URL",
		"AI_TIMEOUT", "AI_REQUESTS_PER_MINUTE", "ENABLE_SCHEDULER", "TELEGRAM_BOT_TOKEN",
		"TELEGRAM_CHAT_ID", "TZ_LOCATION", "METRICS_ADDR", "LOG_MODE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "data/reminders.db", cfg.Database.Path)
	assert.Equal(t, "gpt-3.5-turbo", cfg.AI.Model)
	assert.Equal(t, 10*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 30, cfg.AI.RequestsPerMinute)
	assert.False(t, cfg.AI.Enabled())
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, time.Local, cfg.Scheduler.Location)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set
	for _, key := range []string{"DB_TYPE", "OPENAI_API_KEY", "AI_TIMEOUT", "TZ_LOCATION", "TELEGRAM_CHAT_ID"} {
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"DB_TYPE=memory\nOPENAI_API_KEY=sk-test\nAI_TIMEOUT=2s\nTZ_LOCATION=UTC\nTELEGRAM_CHAT_ID=42\n",
	), 0o600))
	t.Cleanup(func() {
		for _, key := range []string{"DB_TYPE", "OPENAI_API_KEY", "AI_TIMEOUT", "TZ_LOCATION", "TELEGRAM_CHAT_ID"} {
			os.Unsetenv(key)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Database.Type)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, 2*time.Second, cfg.AI.Timeout)
	assert.Equal(t, time.UTC, cfg.Scheduler.Location)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad timeout", "AI_TIMEOUT", "soon"},
		{"bad rate", "AI_REQUESTS_PER_MINUTE", "many"},
		{"zero rate", "AI_REQUESTS_PER_MINUTE", "0"},
		{"bad scheduler flag", "ENABLE_SCHEDULER", "maybe"},
		{"bad location", "TZ_LOCATION", "Mars/Olympus"},
		{"bad db type", "DB_TYPE", "oracle"},
		{"postgres without url", "DB_TYPE", "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
