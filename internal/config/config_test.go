package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadFromReader(t *testing.T) {
	input := `
[server]
addr = ":9000"
title = "Sketch"
shutdown_timeout = "3s"

[fields]
path = "fields.yaml"

[state]
short = true
extra = "v2"

[theme]
name = "acme"
tokens = { brand = "#123456" }
`
	cfg, err := LoadFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := DefaultConfig()
	want.Server.Addr = ":9000"
	want.Server.Title = "Sketch"
	want.Server.ShutdownTimeout = Duration{3 * time.Second}
	want.Fields.Path = "fields.yaml"
	want.State = StateConfig{Short: true, Extra: "v2"}
	want.Theme = ThemeConfig{Name: "acme", Tokens: map[string]string{"brand": "#123456"}}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PARAMCONFIG_ADDR", ":7000")
	t.Setenv("PARAMCONFIG_SHORT", "true")
	t.Setenv("PARAMCONFIG_LOG_LEVEL", "debug")

	cfg, err := LoadFromReader(strings.NewReader(`[server]
addr = ":9000"`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":7000" || !cfg.State.Short || cfg.Log.Level != "debug" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	if _, err := LoadFromReader(strings.NewReader(`[server]
shutdown_timeout = "-1s"`)); err == nil {
		t.Fatalf("expected negative duration error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFromFile("testdata/missing.toml"); err == nil {
		t.Fatalf("expected error for missing explicit file")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "component", "test")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("unexpected log output %q", out)
	}

	if _, err := NewLogger(LogConfig{Level: "loud"}, &buf); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := NewLogger(LogConfig{Level: "info", Format: "xml"}, &buf); err == nil {
		t.Fatalf("expected format error")
	}
}
