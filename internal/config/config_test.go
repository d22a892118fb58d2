package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v, want 30s", cfg.CacheTTL)
	}
	if cfg.MinConfidence != 70 {
		t.Errorf("MinConfidence = %d, want 70", cfg.MinConfidence)
	}
	if cfg.DLRURL != "http://www.dlrlondon.co.uk/xml/mobile/%s.xml" {
		t.Errorf("DLRURL = %q", cfg.DLRURL)
	}
	want := Coverage{MinEasting: 495000, MaxEasting: 565000, MinNorthing: 145000, MaxNorthing: 205000}
	if cfg.Coverage != want {
		t.Errorf("Coverage = %+v, want %+v", cfg.Coverage, want)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("TRANSITBOT_ADDR", ":9090")
	t.Setenv("TRANSITBOT_CACHE_TTL", "45s")
	t.Setenv("TRANSITBOT_GEOCODER_RADIUS", "12500.5")
	t.Setenv("TRANSITBOT_MAX_RETRIES", "not a number")

	cfg := Load()
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
	if cfg.CacheTTL != 45*time.Second {
		t.Errorf("CacheTTL = %v, want 45s", cfg.CacheTTL)
	}
	if cfg.GeocoderRadius != 12500.5 {
		t.Errorf("GeocoderRadius = %v, want 12500.5", cfg.GeocoderRadius)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want the default 2 for an unparsable value", cfg.MaxRetries)
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transitbot.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileOverlays(t *testing.T) {
	t.Setenv("TRANSITBOT_DB_PATH", "/srv/env.db")
	path := writeFile(t, `
addr: ":7070"
cache_ttl: 1m
log_level: debug
coverage:
  max_easting: 600000
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.CacheTTL != time.Minute {
		t.Errorf("LoadFile() = %q, %v; want :7070, 1m", cfg.Addr, cfg.CacheTTL)
	}
	if cfg.DBPath != "/srv/env.db" {
		t.Errorf("DBPath = %q, want the environment value kept", cfg.DBPath)
	}
	if cfg.Coverage.MaxEasting != 600000 || cfg.Coverage.MinEasting != 495000 {
		t.Errorf("Coverage = %+v, want only max_easting overridden", cfg.Coverage)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}
}

func TestLoadFileInvalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad level", "log_level: loud\n", "LogLevel"},
		{"confidence over 100", "min_confidence: 120\n", "MinConfidence"},
		{"inverted box", "coverage:\n  min_easting: 700000\n", "MinEasting"},
		{"bad alerts url", "alerts_url: not a url\n", "AlertsURL"},
		{"zero ttl", "cache_ttl: 0s\n", "CacheTTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, tt.body))
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("LoadFile() error = %v, want validation errors", err)
			}
			found := false
			for _, fe := range verrs {
				if fe.Field() == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("LoadFile() error = %v, want a complaint about %s", err, tt.field)
			}
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("LoadFile(missing) error = nil")
	}
	if _, err := LoadFile(writeFile(t, "addr: [unterminated\n")); err == nil {
		t.Error("LoadFile(bad yaml) error = nil")
	}
}
