package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	AI        AIConfig
	Scheduler SchedulerConfig
	Telegram  TelegramConfig
	Metrics   MetricsConfig
	Log       LogConfig
}

// DatabaseConfig selects the behavior store backend
type DatabaseConfig struct {
	Type string // sqlite, postgres or memory
	Path string
	URL  string
}

// AIConfig holds reasoning service settings. An empty APIKey disables the service.
type AIConfig struct {
	APIKey            string
	Model             string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Enabled reports whether reasoning calls should be attempted at all
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// SchedulerConfig holds reminder job settings
type SchedulerConfig struct {
	Enabled  bool
	Location *time.Location
}

// TelegramConfig holds reminder delivery settings
type TelegramConfig struct {
	Token  string
	ChatID int64
}

// MetricsConfig holds the metrics listener address
type MetricsConfig struct {
	Addr string
}

// LogConfig selects the zap preset
type LogConfig struct {
	Mode string
}

// Load reads an optional .env file, then the process environment
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// A missing .env file is normal outside development
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Type: getEnv("DB_TYPE", "sqlite"),
			Path: getEnv("DB_PATH", "data/reminders.db"),
			URL:  os.Getenv("DATABASE_URL"),
		},
		AI: AIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   getEnv("LLM_MODEL", "gpt-3.5-turbo"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
		},
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ":9090"),
		},
		Log: LogConfig{
			Mode: getEnv("LOG_MODE", "development"),
		},
	}

	var err error
	if cfg.AI.Timeout, err = getDuration("AI_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.AI.RequestsPerMinute, err = getInt("AI_REQUESTS_PER_MINUTE", 30); err != nil {
		return nil, err
	}
	if cfg.Scheduler.Enabled, err = getBool("ENABLE_SCHEDULER", true); err != nil {
		return nil, err
	}
	if cfg.Telegram.ChatID, err = getInt64("TELEGRAM_CHAT_ID", 0); err != nil {
		return nil, err
	}

	loc := getEnv("TZ_LOCATION", "Local")
	if cfg.Scheduler.Location, err = time.LoadLocation(loc); err != nil {
		return nil, fmt.Errorf("invalid TZ_LOCATION %q: %w", loc, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite", "memory":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.Database.Type)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive")
	}
	if c.AI.RequestsPerMinute <= 0 {
		return fmt.Errorf("AI_REQUESTS_PER_MINUTE must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return i, nil
}

func getInt64(key string, def int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return i, nil
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
