// Package config loads the harness configuration from TOML with
// PARAMCONFIG_* environment overrides.
package config

import (
	"fmt"
	"time"
)

// Config is the full harness configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Fields  FieldsConfig  `toml:"fields"`
	State   StateConfig   `toml:"state"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
	Theme   ThemeConfig   `toml:"theme"`
}

// ServerConfig configures the HTTP harness.
type ServerConfig struct {
	Addr              string   `toml:"addr"`
	BaseURL           string   `toml:"base_url"`
	Title             string   `toml:"title"`
	ReadHeaderTimeout Duration `toml:"read_header_timeout"`
	ShutdownTimeout   Duration `toml:"shutdown_timeout"`
}

// FieldsConfig points at the field document.
type FieldsConfig struct {
	Path        string   `toml:"path"`
	Operation   string   `toml:"operation"`
	HTTPTimeout Duration `toml:"http_timeout"`
}

// StateConfig selects the query encoding.
type StateConfig struct {
	Short bool   `toml:"short"`
	Extra string `toml:"extra"`
}

// LogConfig configures slog.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig configures the profiler.
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled"`
	Namespace string `toml:"namespace"`
}

// ThemeConfig feeds go-theme renderer settings.
type ThemeConfig struct {
	Name    string            `toml:"name"`
	Variant string            `toml:"variant"`
	Tokens  map[string]string `toml:"tokens"`
}

// Duration wraps time.Duration with TOML-friendly string parsing.
type Duration struct {
	time.Duration
}

// UnmarshalText accepts Go duration strings such as "5s" or "1m30s".
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("negative duration %q not allowed", s)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
