// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package config loads and validates Keyscope configuration.
//
// Configuration is layered via Koanf v2 (highest priority wins):
//   - Environment variables (KEYSCOPE_API_KEY, KEYSCOPE_RETRY_MAX_ATTEMPTS, ...)
//   - Config file (keyscope.yaml)
//   - Built-in defaults
package config

import "time"

// Config is the root configuration for Keyscope.
type Config struct {
	API     APIConfig     `koanf:"api"`
	Retry   RetryConfig   `koanf:"retry"`
	Log     LogConfig     `koanf:"log"`
	Export  ExportConfig  `koanf:"export"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// APIConfig identifies the cloud API endpoint and credentials.
type APIConfig struct {
	// BaseURL is the cloud API host. All resource families hang off it.
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// Key is the opaque bearer token sent as x-api-key on every request.
	Key string `koanf:"key" validate:"required"`

	// UniverseID selects the target universe for all operations.
	UniverseID int64 `koanf:"universe_id" validate:"required,gt=0"`

	// Production marks the credentials as targeting a production universe.
	// The engine itself does not change behavior; consumers may add
	// confirmation friction for destructive operations.
	Production bool `koanf:"production"`

	// Timeout is the per-HTTP-call timeout.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// RetryConfig controls the transient-failure policy of the request engine.
type RetryConfig struct {
	// MaxAttempts caps resends (429/502/504) per logical request.
	// 0 preserves the unbounded behavior; cancellation is then the only
	// way out of a persistently throttled operation.
	MaxAttempts int `koanf:"max_attempts" validate:"gte=0"`

	// BaseDelay is the first 429 backoff step. Subsequent steps double
	// twice and then stay flat.
	BaseDelay time.Duration `koanf:"base_delay" validate:"gt=0"`

	// TransportErrors retries network-level failures (DNS, connection
	// reset) like 502/504 instead of failing immediately.
	TransportErrors bool `koanf:"transport_errors"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// ExportConfig controls the bulk export sink.
type ExportConfig struct {
	// Path is the SQLite database file the sink writes to.
	Path string `koanf:"path"`

	// Prefix restricts exported datastores to those with this name prefix.
	Prefix string `koanf:"prefix"`

	// ModifiedWithin, when > 0, exports only entries whose latest version
	// is newer than the server-clock estimate minus this window.
	ModifiedWithin time.Duration `koanf:"modified_within" validate:"gte=0"`
}

// MetricsConfig controls the optional Prometheus exposition listener.
type MetricsConfig struct {
	// Addr is the listen address for /metrics (e.g. "127.0.0.1:9633").
	// Empty disables the listener.
	Addr string `koanf:"addr"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "https://apis.roblox.com",
			Key:        "",
			UniverseID: 0,
			Production: false,
			Timeout:    30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:     0, // unbounded, matches upstream behavior
			BaseDelay:       2 * time.Second,
			TransportErrors: false,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Export: ExportConfig{
			Path:           "keyscope-export.db",
			Prefix:         "",
			ModifiedWithin: 0,
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
	}
}
