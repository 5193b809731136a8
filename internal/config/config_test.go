package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"UPSTREAM_API_URL", "NEXT_PUBLIC_API_URL", "PORT", "NOTIFICATION_CAPACITY", "UPSTREAM_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Upstream.BaseURL != DefaultUpstreamURL {
		t.Fatalf("BaseURL = %q, want %q", cfg.Upstream.BaseURL, DefaultUpstreamURL)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Notification.Capacity != 50 {
		t.Fatalf("Capacity = %d, want 50", cfg.Notification.Capacity)
	}
	if cfg.Upstream.Timeout != 30*time.Second {
		t.Fatalf("Timeout = %s, want 30s", cfg.Upstream.Timeout)
	}
}

func TestLoadUpstreamAlias(t *testing.T) {
	t.Setenv("UPSTREAM_API_URL", "")
	t.Setenv("NEXT_PUBLIC_API_URL", "http://localhost:5000/api/")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Upstream.BaseURL != "http://localhost:5000/api" {
		t.Fatalf("BaseURL = %q", cfg.Upstream.BaseURL)
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	os.Unsetenv("CORS_ALLOWED_ORIGINS")

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("CORS_ALLOWED_ORIGINS=http://a.test, http://b.test\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad-timeout", key: "UPSTREAM_TIMEOUT", value: "soon"},
		{name: "zero-capacity", key: "NOTIFICATION_CAPACITY", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(""); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error for explicit missing env file")
	}
}
