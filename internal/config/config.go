// Package config loads settings from the environment, optionally overlaid by a
// YAML file, and validates them.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Coverage is the National Grid box requests must fall in, in meters.
type Coverage struct {
	MinEasting  int `yaml:"min_easting" validate:"gte=0,ltfield=MaxEasting"`
	MaxEasting  int `yaml:"max_easting" validate:"gt=0"`
	MinNorthing int `yaml:"min_northing" validate:"gte=0,ltfield=MaxNorthing"`
	MaxNorthing int `yaml:"max_northing" validate:"gt=0"`
}

// Config holds application configuration.
type Config struct {
	Addr        string `yaml:"addr" validate:"required"`
	DBPath      string `yaml:"db_path" validate:"required"`
	NetworkPath string `yaml:"network_path"` // missing file disables route validation

	BusURL    string `yaml:"bus_url" validate:"required"`  // fmt template: stop code
	TubeURL   string `yaml:"tube_url" validate:"required"` // fmt template: line code, station code
	DLRURL    string `yaml:"dlr_url" validate:"required"`  // fmt template: station code
	UserAgent string `yaml:"user_agent" validate:"required"`

	CacheTTL      time.Duration `yaml:"cache_ttl" validate:"gt=0"`
	CacheSize     int           `yaml:"cache_size" validate:"gte=0"`
	HTTPTimeout   time.Duration `yaml:"http_timeout" validate:"gt=0"`
	MaxRetries    int           `yaml:"max_retries" validate:"gte=0,lte=10"`
	RetryInterval time.Duration `yaml:"retry_interval" validate:"gt=0"`

	AlertsURL      string        `yaml:"alerts_url" validate:"omitempty,url"`
	AlertsInterval time.Duration `yaml:"alerts_interval" validate:"gt=0"`

	GeocoderURL    string  `yaml:"geocoder_url" validate:"omitempty,url"`
	GeocoderRadius float64 `yaml:"geocoder_radius" validate:"gt=0"`

	MinConfidence int      `yaml:"min_confidence" validate:"gte=0,lte=100"`
	Coverage      Coverage `yaml:"coverage"`
	LogLevel      string   `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Addr:        envStr("TRANSITBOT_ADDR", ":8080"),
		DBPath:      envStr("TRANSITBOT_DB_PATH", "./locations.db"),
		NetworkPath: envStr("TRANSITBOT_NETWORK_PATH", "./network.db"),

		BusURL:    envStr("TRANSITBOT_BUS_URL", "http://countdown.tfl.gov.uk/stopBoard/%s"),
		TubeURL:   envStr("TRANSITBOT_TUBE_URL", "http://cloud.tfl.gov.uk/TrackerNet/PredictionDetailed/%s/%s"),
		DLRURL:    envStr("TRANSITBOT_DLR_URL", "http://www.dlrlondon.co.uk/xml/mobile/%s.xml"),
		UserAgent: envStr("TRANSITBOT_USER_AGENT", "When's My Transport?"),

		CacheTTL:      envDuration("TRANSITBOT_CACHE_TTL", 30*time.Second),
		CacheSize:     envInt("TRANSITBOT_CACHE_SIZE", 1000),
		HTTPTimeout:   envDuration("TRANSITBOT_HTTP_TIMEOUT", 10*time.Second),
		MaxRetries:    envInt("TRANSITBOT_MAX_RETRIES", 2),
		RetryInterval: envDuration("TRANSITBOT_RETRY_INTERVAL", 500*time.Millisecond),

		AlertsURL:      envStr("TRANSITBOT_ALERTS_URL", ""),
		AlertsInterval: envDuration("TRANSITBOT_ALERTS_INTERVAL", time.Minute),

		GeocoderURL:    envStr("TRANSITBOT_GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderRadius: envFloat("TRANSITBOT_GEOCODER_RADIUS", 30000),

		MinConfidence: envInt("TRANSITBOT_MIN_CONFIDENCE", 70),
		Coverage: Coverage{
			MinEasting:  envInt("TRANSITBOT_MIN_EASTING", 495000),
			MaxEasting:  envInt("TRANSITBOT_MAX_EASTING", 565000),
			MinNorthing: envInt("TRANSITBOT_MIN_NORTHING", 145000),
			MaxNorthing: envInt("TRANSITBOT_MAX_NORTHING", 205000),
		},
		LogLevel: envStr("TRANSITBOT_LOG_LEVEL", "info"),
	}
}

// LoadFile reads the environment configuration, overlays the keys present in the
// YAML file at path and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
