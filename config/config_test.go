package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":5000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":5000")
	}
	if cfg.Locale.CurrencySuffix != "원" {
		t.Errorf("Locale.CurrencySuffix = %q, want %q", cfg.Locale.CurrencySuffix, "원")
	}
	if cfg.Sheet.DefaultQuantity != "1" || cfg.Sheet.DefaultUnitPrice != "0" {
		t.Errorf("Sheet defaults = %q/%q, want 1/0", cfg.Sheet.DefaultQuantity, cfg.Sheet.DefaultUnitPrice)
	}
	if cfg.Export.Label != "견적서" {
		t.Errorf("Export.Label = %q", cfg.Export.Label)
	}
	if cfg.Export.Scale != 2 {
		t.Errorf("Export.Scale = %d, want 2", cfg.Export.Scale)
	}
	if cfg.Events.Driver != "" {
		t.Errorf("Events.Driver = %q, want in-memory default", cfg.Events.Driver)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be true by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
	if cfg.SessionTTL() != 24*time.Hour {
		t.Errorf("SessionTTL() = %v, want 24h", cfg.SessionTTL())
	}
	if cfg.LanguageTag() != language.Korean {
		t.Errorf("LanguageTag() = %v, want ko", cfg.LanguageTag())
	}
	if lvl, _ := cfg.LogLevel(); lvl != slog.LevelInfo {
		t.Errorf("LogLevel() = %v, want INFO", lvl)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoad_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[server]
addr = "127.0.0.1:8080"

[locale]
language = "en-US"
currency_suffix = " USD"

[events]
driver = "sqlite"
dsn = "file:events.db"

[export]
format = "pdf"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.LanguageTag() != language.AmericanEnglish {
		t.Errorf("LanguageTag() = %v, want en-US", cfg.LanguageTag())
	}
	if cfg.Events.Driver != "sqlite" || cfg.Events.DSN != "file:events.db" {
		t.Errorf("Events = %+v", cfg.Events)
	}
	if cfg.Export.Format != "pdf" {
		t.Errorf("Export.Format = %q", cfg.Export.Format)
	}
	// untouched sections keep their defaults
	if cfg.Sheet.SessionTTL != "24h" {
		t.Errorf("Sheet.SessionTTL = %q, want default", cfg.Sheet.SessionTTL)
	}
	if cfg.Export.Scale != 2 {
		t.Errorf("Export.Scale = %d, want default", cfg.Export.Scale)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad driver", func(c *Config) { c.Events.Driver = "mysql" }},
		{"driver without dsn", func(c *Config) { c.Events.Driver = "postgres" }},
		{"bad format", func(c *Config) { c.Export.Format = "gif" }},
		{"bad scale", func(c *Config) { c.Export.Scale = 0 }},
		{"bad ttl", func(c *Config) { c.Sheet.SessionTTL = "forever" }},
		{"bad locale", func(c *Config) { c.Locale.Language = "not a tag!" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
