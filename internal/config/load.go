package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the config file looked up in the working directory.
const FileName = "paramconfig.toml"

// Load reads path, or the first existing file of the search paths when
// path is empty:
//  1. ./paramconfig.toml
//  2. $XDG_CONFIG_HOME/paramconfig/config.toml
//  3. ~/.config/paramconfig/config.toml
//
// Without a file the defaults apply. Environment overrides apply in every
// case.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromFile(path)
	}
	for _, candidate := range searchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return LoadFromFile(candidate)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes TOML over the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              "127.0.0.1:8080",
			Title:             "Parameters",
			ReadHeaderTimeout: Duration{5 * time.Second},
			ShutdownTimeout:   Duration{10 * time.Second},
		},
		Fields: FieldsConfig{
			HTTPTimeout: Duration{10 * time.Second},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "paramconfig",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PARAMCONFIG_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PARAMCONFIG_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("PARAMCONFIG_FIELDS"); v != "" {
		cfg.Fields.Path = v
	}
	if v := os.Getenv("PARAMCONFIG_OPERATION"); v != "" {
		cfg.Fields.Operation = v
	}
	if v := os.Getenv("PARAMCONFIG_SHORT"); v != "" {
		if short, err := strconv.ParseBool(v); err == nil {
			cfg.State.Short = short
		}
	}
	if v := os.Getenv("PARAMCONFIG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PARAMCONFIG_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("PARAMCONFIG_THEME"); v != "" {
		cfg.Theme.Name = v
	}
}

func searchPaths() []string {
	paths := []string{FileName}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "paramconfig", "config.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		fallback := filepath.Join(home, ".config", "paramconfig", "config.toml")
		if paths[len(paths)-1] != fallback {
			paths = append(paths, fallback)
		}
	}
	return paths
}
