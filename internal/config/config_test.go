package config

import (
	"testing"
	"time"
)

type mapEnv map[string]string

func (m mapEnv) Getenv(key string) string { return m[key] }

func baseEnv() mapEnv {
	return mapEnv{"SECRET_KEY": "x", "DATABASE_URL": "postgres://localhost/wakemeup"}
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv(baseEnv())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("expected default gin mode release, got %q", cfg.GinMode)
	}
	if cfg.WakeTimeout != 5*time.Second {
		t.Fatalf("expected default wake timeout 5s, got %v", cfg.WakeTimeout)
	}
}

func TestLoadConfigFromEnv_MissingRequired(t *testing.T) {
	if _, err := LoadConfigFromEnv(mapEnv{"DATABASE_URL": "postgres://x"}); err == nil {
		t.Fatalf("expected error for missing SECRET_KEY")
	}
	if _, err := LoadConfigFromEnv(mapEnv{"SECRET_KEY": "x"}); err == nil {
		t.Fatalf("expected error for missing DATABASE_URL")
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "1234"
	env["WAKE_TIMEOUT_SECONDS"] = "9"

	cfg, err := LoadConfigFromEnv(env)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != 1234 {
		t.Fatalf("expected port 1234, got %d", cfg.Port)
	}
	if cfg.WakeTimeout != 9*time.Second {
		t.Fatalf("expected wake timeout 9s, got %v", cfg.WakeTimeout)
	}
}

func TestLoadConfigFromEnv_InvalidValues(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "notaport"
	if _, err := LoadConfigFromEnv(env); err == nil {
		t.Fatalf("expected error for invalid PORT")
	}

	env = baseEnv()
	env["WAKE_TIMEOUT_SECONDS"] = "0"
	if _, err := LoadConfigFromEnv(env); err == nil {
		t.Fatalf("expected error for invalid WAKE_TIMEOUT_SECONDS")
	}
}
