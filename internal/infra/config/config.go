package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	HTTPClient HTTPClientConfig `yaml:"http_client"`
	Limiter    LimiterConfig    `yaml:"limiter"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Video      VideoConfig      `yaml:"video"`
}

type ServerConfig struct {
	Addr                string `yaml:"addr" env:"SERVER_ADDR" validate:"required"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds" validate:"gt=0"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" env:"LOG_FORMAT" validate:"oneof=json console"`
}

type HTTPClientConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"gt=0"`
	MaxRetries     int `yaml:"max_retries" validate:"gte=0"`
}

type LimiterConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" env:"LIMITER_MAX_CONCURRENT" validate:"gt=0"`
	// RatePerSecond may be fractional, e.g. 0.2 for one call every five seconds.
	RatePerSecond float64 `yaml:"rate_per_second" env:"LIMITER_RATE_PER_SECOND" validate:"gt=0"`
}

type GeminiConfig struct {
	// APIKey seeds the credential store; it may stay empty until selected.
	APIKey     string `yaml:"api_key" env:"GEMINI_API_KEY"`
	ImageModel string `yaml:"image_model" env:"GEMINI_IMAGE_MODEL" validate:"required"`
	VideoModel string `yaml:"video_model" env:"GEMINI_VIDEO_MODEL" validate:"required"`
	DotenvPath string `yaml:"dotenv_path" env:"DOTENV_PATH"`
}

type VideoConfig struct {
	PollInterval time.Duration `yaml:"poll_interval" env:"VIDEO_POLL_INTERVAL" validate:"gt=0"`
	MaxPolls     int           `yaml:"max_polls" env:"VIDEO_MAX_POLLS" validate:"gt=0"`
	// MaxDuration of zero disables the wall-clock bound.
	MaxDuration time.Duration `yaml:"max_duration" env:"VIDEO_MAX_DURATION" validate:"gte=0"`
	Resolution  string        `yaml:"resolution" env:"VIDEO_RESOLUTION" validate:"oneof=720p 1080p"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 0, // SSE animation streams outlive any fixed write deadline
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		HTTPClient: HTTPClientConfig{
			TimeoutSeconds: 120,
			MaxRetries:     2,
		},
		Limiter: LimiterConfig{
			MaxConcurrent: 2,
			RatePerSecond: 1,
		},
		Gemini: GeminiConfig{
			ImageModel: "gemini-3-pro-image-preview",
			VideoModel: "veo-3.1-fast-generate-preview",
			DotenvPath: ".env",
		},
		Video: VideoConfig{
			PollInterval: 5 * time.Second,
			MaxPolls:     120,
			MaxDuration:  15 * time.Minute,
			Resolution:   "720p",
		},
	}
}

func applyEnvOverrides(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	cfg.Gemini.APIKey = strings.TrimSpace(cfg.Gemini.APIKey)
	return nil
}

// Validate checks struct constraints on a loaded config.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
