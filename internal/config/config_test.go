// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validTestConfig() *Config {
	cfg := defaultConfig()
	cfg.API.Key = "test-api-key"
	cfg.API.UniverseID = 12345
	return cfg
}

func TestValidateDefaults(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateMissingKey(t *testing.T) {
	cfg := validTestConfig()
	cfg.API.Key = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing api key")
	}
	if !strings.Contains(err.Error(), "API.Key") {
		t.Errorf("error does not name the failing field: %v", err)
	}
}

func TestValidateUniverseID(t *testing.T) {
	tests := []struct {
		name       string
		universeID int64
		wantErr    bool
	}{
		{"positive id", 1, false},
		{"zero id", 0, true},
		{"negative id", -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			cfg.API.UniverseID = tt.universeID
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	cfg := validTestConfig()
	cfg.Log.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown log level")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env      string
		expected string
	}{
		{"KEYSCOPE_API_KEY", "api.key"},
		{"KEYSCOPE_API_UNIVERSE_ID", "api.universe_id"},
		{"KEYSCOPE_API_BASE_URL", "api.base_url"},
		{"KEYSCOPE_RETRY_MAX_ATTEMPTS", "retry.max_attempts"},
		{"KEYSCOPE_RETRY_TRANSPORT_ERRORS", "retry.transport_errors"},
		{"KEYSCOPE_LOG_LEVEL", "log.level"},
		{"KEYSCOPE_EXPORT_MODIFIED_WITHIN", "export.modified_within"},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.expected {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.expected)
		}
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "keyscope.yaml")
	yaml := `
api:
  key: file-key
  universe_id: 777
retry:
  max_attempts: 4
`
	if err := os.WriteFile(configPath, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("KEYSCOPE_API_KEY", "env-key") // env overrides file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.Key != "env-key" {
		t.Errorf("expected env var override, got key %q", cfg.API.Key)
	}
	if cfg.API.UniverseID != 777 {
		t.Errorf("expected universe id from file, got %d", cfg.API.UniverseID)
	}
	if cfg.Retry.MaxAttempts != 4 {
		t.Errorf("expected retry.max_attempts from file, got %d", cfg.Retry.MaxAttempts)
	}
	// untouched defaults survive layering
	if cfg.Retry.BaseDelay != 2*time.Second {
		t.Errorf("expected default base delay, got %v", cfg.Retry.BaseDelay)
	}
	if cfg.API.BaseURL != "https://apis.roblox.com" {
		t.Errorf("expected default base URL, got %q", cfg.API.BaseURL)
	}
}
