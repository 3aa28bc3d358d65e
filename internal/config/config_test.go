package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServerAddress != ":8090" {
		t.Fatalf("unexpected default address: %q", cfg.ServerAddress)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("unexpected default ttl: %v", cfg.SessionTTL)
	}
	if cfg.SweepInterval != time.Hour {
		t.Fatalf("unexpected default sweep interval: %v", cfg.SweepInterval)
	}
	if len(cfg.AllowedOrigins) != 1 {
		t.Fatalf("unexpected default origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CODEPAIR_ADDR", ":9999")
	t.Setenv("CODEPAIR_SESSION_TTL", "1h")
	t.Setenv("CODEPAIR_ALLOWED_ORIGINS", "https://a.test,https://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServerAddress != ":9999" {
		t.Fatalf("address override ignored: %q", cfg.ServerAddress)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("ttl override ignored: %v", cfg.SessionTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.test" {
		t.Fatalf("origin list not split: %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("CODEPAIR_SESSION_TTL", "not-a-duration")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("CODEPAIR_SESSION_TTL", "0s")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
