package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ServerPort != 8000 {
		t.Errorf("ServerPort = %d, want 8000", cfg.ServerPort)
	}
	if cfg.AI.Model != "gpt-4o" {
		t.Errorf("AI.Model = %q, want gpt-4o", cfg.AI.Model)
	}
	if cfg.Auth.TokenTTL != 7*24*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 168h", cfg.Auth.TokenTTL)
	}
	if cfg.Upload.Folder != "robotics_components" {
		t.Errorf("Upload.Folder = %q", cfg.Upload.Folder)
	}
	if cfg.Upload.Enabled() {
		t.Error("Upload should be disabled without credentials")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DISABLE_RATE_LIMIT", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.AI.Model != "gpt-4o-mini" {
		t.Errorf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.Auth.TokenTTL != 15*time.Minute {
		t.Errorf("Auth.TokenTTL = %v, want 15m", cfg.Auth.TokenTTL)
	}
	if got := strings.Join(cfg.CORS.AllowedOrigins, "|"); got != "https://a.example|https://b.example" {
		t.Errorf("AllowedOrigins = %q", got)
	}
	if !cfg.Limits.Disabled {
		t.Error("Limits.Disabled should be true")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("ai:\n  model: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AI.Model != "from-file" {
		t.Errorf("AI.Model = %q, want from-file", cfg.AI.Model)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error without API key and secret")
	}
	for _, want := range []string{"OPENAI_API_KEY", "JWT_SECRET"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestOrigins(t *testing.T) {
	cfg := defaultConfig()
	cfg.CORS.AllowedOrigins = []string{"http://localhost:5173", "https://circuit.example/"}
	cfg.CORS.FrontendURL = "http://localhost:5173"

	got := cfg.Origins()
	if len(got) != 2 || got[1] != "https://circuit.example" {
		t.Errorf("Origins() = %v", got)
	}

	cfg.CORS.AllowAll = true
	if got := cfg.Origins(); len(got) != 1 || got[0] != "*" {
		t.Errorf("Origins() with AllowAll = %v", got)
	}
}

func TestLoad_AppEnv(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.IsProduction() {
		t.Error("default environment should not be production")
	}

	t.Setenv("APP_ENV", "production")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Errorf("AppEnv = %q, want production", cfg.AppEnv)
	}
}
