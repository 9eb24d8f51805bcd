// Package config loads the service configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
	Locale  LocaleConfig  `toml:"locale"`
	Sheet   SheetConfig   `toml:"sheet"`
	Events  EventsConfig  `toml:"events"`
	Export  ExportConfig  `toml:"export"`
	Share   ShareConfig   `toml:"share"`
	Admin   AdminConfig   `toml:"admin"`
	Metrics MetricsConfig `toml:"metrics"`
}

type ServerConfig struct {
	Addr            string `toml:"addr"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json
}

type LocaleConfig struct {
	Language       string `toml:"language"`
	CurrencySuffix string `toml:"currency_suffix"`
}

type SheetConfig struct {
	DefaultQuantity  string `toml:"default_quantity"`
	DefaultUnitPrice string `toml:"default_unit_price"`
	SessionTTL       string `toml:"session_ttl"`
	SweepInterval    string `toml:"sweep_interval"`
}

// EventsConfig selects where diagnostic events go. An empty driver keeps
// them in memory and writes them to the log.
type EventsConfig struct {
	Driver     string `toml:"driver"` // "", postgres, sqlite
	DSN        string `toml:"dsn"`
	BufferSize int    `toml:"buffer_size"`
}

type ExportConfig struct {
	Format   string `toml:"format"` // png, pdf
	Label    string `toml:"label"`
	Scale    int    `toml:"scale"`
	FontPath string `toml:"font_path"`
}

// ShareConfig enables uploading captures to S3. Empty bucket disables it.
type ShareConfig struct {
	S3Bucket string `toml:"s3_bucket"`
	S3Region string `toml:"s3_region"`
	S3Prefix string `toml:"s3_prefix"`
}

type AdminConfig struct {
	Username     string `toml:"username"`
	PasswordHash string `toml:"password_hash"` // bcrypt
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":5000",
			ShutdownTimeout: "10s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Locale: LocaleConfig{
			Language:       "ko",
			CurrencySuffix: "원",
		},
		Sheet: SheetConfig{
			DefaultQuantity:  "1",
			DefaultUnitPrice: "0",
			SessionTTL:       "24h",
			SweepInterval:    "10m",
		},
		Events: EventsConfig{
			BufferSize: 100,
		},
		Export: ExportConfig{
			Format: "png",
			Label:  "견적서",
			Scale:  2,
		},
		Share: ShareConfig{
			S3Region: "ap-northeast-2",
		},
		Admin: AdminConfig{
			Username: "admin",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads path over the defaults. An empty path or a missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decoding %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if _, err := language.Parse(c.Locale.Language); err != nil {
		return fmt.Errorf("%w: locale.language %q: %v", ErrInvalidConfig, c.Locale.Language, err)
	}
	for name, d := range map[string]string{
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"sheet.session_ttl":       c.Sheet.SessionTTL,
		"sheet.sweep_interval":    c.Sheet.SweepInterval,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("%w: %s %q", ErrInvalidConfig, name, d)
		}
	}
	switch c.Events.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("%w: events.driver %q", ErrInvalidConfig, c.Events.Driver)
	}
	if c.Events.Driver != "" && c.Events.DSN == "" {
		return fmt.Errorf("%w: events.dsn is required for driver %q", ErrInvalidConfig, c.Events.Driver)
	}
	switch c.Export.Format {
	case "png", "pdf":
	default:
		return fmt.Errorf("%w: export.format %q", ErrInvalidConfig, c.Export.Format)
	}
	if c.Export.Scale < 1 {
		return fmt.Errorf("%w: export.scale must be at least 1", ErrInvalidConfig)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}

func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}

// LanguageTag returns the parsed locale; Validate guarantees it parses.
func (c Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Locale.Language)
	if err != nil {
		return language.Korean
	}
	return tag
}

func (c Config) SessionTTL() time.Duration      { return duration(c.Sheet.SessionTTL) }
func (c Config) SweepInterval() time.Duration   { return duration(c.Sheet.SweepInterval) }
func (c Config) ShutdownTimeout() time.Duration { return duration(c.Server.ShutdownTimeout) }

// duration parses a value Validate already checked.
func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
