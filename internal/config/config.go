// Package config loads settings from the environment, optionally seeded
// by a .env file. Defaults keep a bare local run working with nothing
// but a GEMINI_API_KEY.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	GeminiBaseURL    string `env:"GEMINI_BASE_URL" env-default:"https://generativelanguage.googleapis.com"`
	GeminiAPIVersion string `env:"GEMINI_API_VERSION" env-default:"v1beta"`
	TextModel        string `env:"GEMINI_TEXT_MODEL" env-default:""`
	ImageModel       string `env:"GEMINI_IMAGE_MODEL" env-default:""`

	ListenAddr string `env:"LISTEN_ADDR" env-default:":8080"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`
	Debug      bool   `env:"DEBUG" env-default:"false"`

	RedisAddr     string `env:"REDIS_ADDR" env-default:""`
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	MaxRetries       int `env:"MAX_RETRIES" env-default:"3"`
	RetryBaseSeconds int `env:"RETRY_BASE_SECONDS" env-default:"2"`

	HTTPTimeoutSeconds    int  `env:"HTTP_TIMEOUT_SECONDS" env-default:"180"`
	RequestTimeoutSeconds int  `env:"REQUEST_TIMEOUT_SECONDS" env-default:"300"`
	SaveDebounceMS        int  `env:"SAVE_DEBOUNCE_MS" env-default:"800"`
	PreferIPv4            bool `env:"PREFER_IPV4" env-default:"true"`

	ExportWebP        bool `env:"EXPORT_WEBP" env-default:"false"`
	ExportWebPQuality int  `env:"EXPORT_WEBP_QUALITY" env-default:"80"`
}

// Load reads .env when present, then the process environment, then
// clamps values that would break the runtime.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg.GeminiAPIKey = strings.TrimSpace(cfg.GeminiAPIKey)
	if cfg.GeminiAPIKey == "" {
		return Config{}, errors.New("GEMINI_API_KEY is required")
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseSeconds < 1 {
		cfg.RetryBaseSeconds = 1
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = 180
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = 300
	}
	if cfg.SaveDebounceMS <= 0 {
		cfg.SaveDebounceMS = 800
	}
	if cfg.ExportWebPQuality < 1 || cfg.ExportWebPQuality > 100 {
		cfg.ExportWebPQuality = 80
	}

	return cfg, nil
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c Config) SaveDebounce() time.Duration {
	return time.Duration(c.SaveDebounceMS) * time.Millisecond
}

func (c Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseSeconds) * time.Second
}
