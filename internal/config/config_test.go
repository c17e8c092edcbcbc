package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.MaxPatternMatches != 5 {
		t.Errorf("expected 5 pattern matches, got %d", cfg.MaxPatternMatches)
	}
	if cfg.ConfidenceThreshold != 0.60 {
		t.Errorf("expected threshold 0.60, got %v", cfg.ConfidenceThreshold)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected 30m session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.WorkerCount != 16 {
		t.Errorf("expected 16 workers, got %d", cfg.WorkerCount)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "localhost:9092, redpanda:9092")
	t.Setenv("API_KEYS", "k1:clinic,k2:portal")
	t.Setenv("SESSION_TTL", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %s", cfg.Port)
	}
	if b := cfg.Brokers(); len(b) != 2 || b[1] != "redpanda:9092" {
		t.Errorf("brokers = %v", b)
	}
	keys := cfg.APIKeys()
	if keys["k1"] != "clinic" || keys["k2"] != "portal" {
		t.Errorf("api keys = %v", keys)
	}
	if cfg.SessionTTL != 5*time.Minute {
		t.Errorf("session ttl = %s", cfg.SessionTTL)
	}
}

func TestLoad_RejectsOutOfRange(t *testing.T) {
	t.Setenv("CONFIDENCE_THRESHOLD", "1.5")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
}

func TestValidate(t *testing.T) {
	base := Config{Port: "8080", TraceSampleRate: 1, MaxPatternMatches: 5, ConfidenceThreshold: 0.6, WorkerCount: 1, SessionTTL: time.Minute}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"sample rate", func(c *Config) { c.TraceSampleRate = -0.1 }, true},
		{"zero matches", func(c *Config) { c.MaxPatternMatches = 0 }, true},
		{"zero workers", func(c *Config) { c.WorkerCount = 0 }, true},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, true},
		{"bad api key", func(c *Config) { c.APIKeyList = "justakey" }, true},
		{"empty port", func(c *Config) { c.Port = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}
	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}
