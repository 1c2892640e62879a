package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.OtelEnabled {
		t.Fatal("OtelEnabled default should be false")
	}
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("CIEL_LOG_LEVEL", "debug")
	t.Setenv("CIEL_OTEL_ENABLED", "true")
	cfg := Load()
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if !cfg.OtelEnabled {
		t.Fatal("OtelEnabled should be true when CIEL_OTEL_ENABLED=true")
	}
}
