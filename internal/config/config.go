// Package config loads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StorePgx    = "pgx"
)

type Config struct {
	Port  string
	Debug bool

	StoreDriver     string
	StoreDSN        string
	StoreQuotaBytes int

	GeminiAPIKey          string
	GeminiModel           string
	GeminiTemperature     float32
	GeminiTopK            int32
	GeminiTopP            float32
	GeminiMaxOutputTokens int32

	RetryAttempts        int
	RetryBaseDelay       time.Duration
	ConnectivityProbeURL string

	LockSecret string
	UnlockTTL  time.Duration

	Location *time.Location
}

var ErrMissingLockSecret = errors.New("LOCK_SECRET is required")

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("STORE_DRIVER", StoreMemory)
	v.SetDefault("STORE_DSN", "")
	v.SetDefault("STORE_QUOTA_BYTES", 0)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_TEMPERATURE", 0.8)
	v.SetDefault("GEMINI_TOP_K", 40)
	v.SetDefault("GEMINI_TOP_P", 0.95)
	v.SetDefault("GEMINI_MAX_OUTPUT_TOKENS", 2048)
	v.SetDefault("AI_RETRY_ATTEMPTS", 3)
	v.SetDefault("AI_RETRY_BASE_DELAY", time.Second)
	v.SetDefault("CONNECTIVITY_PROBE_URL", "")
	v.SetDefault("LOCK_SECRET", "")
	v.SetDefault("UNLOCK_TTL", 12*time.Hour)
	v.SetDefault("TIMEZONE", "Local")
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:                  v.GetString("PORT"),
		Debug:                 v.GetBool("DEBUG"),
		StoreDriver:           v.GetString("STORE_DRIVER"),
		StoreDSN:              v.GetString("STORE_DSN"),
		StoreQuotaBytes:       v.GetInt("STORE_QUOTA_BYTES"),
		GeminiAPIKey:          v.GetString("GEMINI_API_KEY"),
		GeminiModel:           v.GetString("GEMINI_MODEL"),
		GeminiTemperature:     float32(v.GetFloat64("GEMINI_TEMPERATURE")),
		GeminiTopK:            v.GetInt32("GEMINI_TOP_K"),
		GeminiTopP:            float32(v.GetFloat64("GEMINI_TOP_P")),
		GeminiMaxOutputTokens: v.GetInt32("GEMINI_MAX_OUTPUT_TOKENS"),
		RetryAttempts:         v.GetInt("AI_RETRY_ATTEMPTS"),
		RetryBaseDelay:        v.GetDuration("AI_RETRY_BASE_DELAY"),
		ConnectivityProbeURL:  v.GetString("CONNECTIVITY_PROBE_URL"),
		LockSecret:            v.GetString("LOCK_SECRET"),
		UnlockTTL:             v.GetDuration("UNLOCK_TTL"),
	}

	switch cfg.StoreDriver {
	case StoreMemory, StoreSQLite, StorePgx:
	default:
		return nil, fmt.Errorf("config: unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.StoreDriver != StoreMemory && cfg.StoreDSN == "" {
		return nil, fmt.Errorf("config: STORE_DSN is required for driver %q", cfg.StoreDriver)
	}
	if cfg.LockSecret == "" {
		return nil, ErrMissingLockSecret
	}

	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("config: TIMEZONE: %w", err)
	}
	cfg.Location = loc
	return cfg, nil
}
