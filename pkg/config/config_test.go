package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvAPIKey, EnvEngine, EnvModel, EnvBaseURL, EnvLanguage,
		EnvTimeout, EnvTemperature, EnvLogLevel, EnvHTTPPort, EnvGRPCPort,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	// Run from an empty directory so no stray .env is picked up.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		Engine:      "gemini",
		Model:       "gemini-2.5-flash",
		Language:    "en",
		Timeout:     60 * time.Second,
		Temperature: 0.7,
		HTTPPort:    8080,
		GRPCPort:    50051,
	}
	if cfg != want {
		t.Errorf("got %+v\nwant %+v", cfg, want)
	}
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "test-key")
	t.Setenv(EnvEngine, "openai")
	t.Setenv(EnvLanguage, "es")
	t.Setenv(EnvTimeout, "15s")
	t.Setenv(EnvTemperature, "0.2")
	t.Setenv(EnvHTTPPort, "9090")
	t.Setenv(EnvGRPCPort, "50052")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "test-key" || cfg.Engine != "openai" || cfg.Language != "es" {
		t.Errorf("unexpected string settings %+v", cfg)
	}
	if cfg.Timeout != 15*time.Second || cfg.Temperature != 0.2 || cfg.HTTPPort != 9090 {
		t.Errorf("unexpected numeric settings %+v", cfg)
	}
	if cfg.GRPCPort != 50052 {
		t.Errorf("unexpected gRPC port %d", cfg.GRPCPort)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{EnvTimeout, "abc"},
		{EnvTimeout, "-5"},
		{EnvTemperature, "warm"},
		{EnvTemperature, "3"},
		{EnvHTTPPort, "not-a-port"},
		{EnvGRPCPort, "70000"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("expected error to name %s, got %v", tt.key, err)
			}
		})
	}
}

func TestLoad_InvalidValuesAllReported(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeout, "abc")
	t.Setenv(EnvHTTPPort, "x")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), EnvTimeout) || !strings.Contains(err.Error(), EnvHTTPPort) {
		t.Fatalf("expected both variables in error, got %v", err)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvModel, "from-environment")

	path := filepath.Join(t.TempDir(), "pharmagen.env")
	content := "GEMINI_API_KEY=file-key\nPHARMAGEN_MODEL=from-file\nPHARMAGEN_TIMEOUT=45\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "file-key" {
		t.Errorf("expected key from file, got %q", cfg.APIKey)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("expected bare seconds to parse, got %v", cfg.Timeout)
	}
	if cfg.Model != "from-environment" {
		t.Errorf("expected environment to win over file, got %q", cfg.Model)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for missing env file")
	}
}
