// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Audit.BlockThreshold != 70 {
		t.Errorf("Audit.BlockThreshold = %d, want 70", cfg.Audit.BlockThreshold)
	}
	if cfg.Audit.MaxEvents != 10000 {
		t.Errorf("Audit.MaxEvents = %d, want 10000", cfg.Audit.MaxEvents)
	}
	if cfg.Sink.BatchSize != 10 {
		t.Errorf("Sink.BatchSize = %d, want 10", cfg.Sink.BatchSize)
	}
	if cfg.Sink.FlushInterval != 5*time.Second {
		t.Errorf("Sink.FlushInterval = %v, want 5s", cfg.Sink.FlushInterval)
	}
	if cfg.Sink.FallbackSize != 100 {
		t.Errorf("Sink.FallbackSize = %d, want 100", cfg.Sink.FallbackSize)
	}
	if cfg.Server.Environment != "development" {
		t.Errorf("Server.Environment = %q, want development", cfg.Server.Environment)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SENTINEL_BLOCK_THRESHOLD", "audit.block_threshold"},
		{"SENTINEL_DENYLIST", "audit.denylist"},
		{"ENVIRONMENT", "server.environment"},
		{"HTTP_PORT", "server.port"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"BADGER_IN_MEMORY", "sink.badger.in_memory"},
		{"NATS_EMBEDDED", "sink.nats.embedded_server"},
		{"ALERT_WEBHOOK_HEADERS", "alerts.webhook.headers"},
		{"log_level", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// isolate keeps a stray config.yaml or CONFIG_PATH from leaking in.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8470 {
		t.Errorf("Server.Port = %d, want 8470", cfg.Server.Port)
	}
	if !slices.Equal(cfg.Security.CORSOrigins, []string{"*"}) {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SENTINEL_BLOCK_THRESHOLD", "55")
	t.Setenv("SENTINEL_DENYLIST", "198.51.100.7, 203.0.113.0/24")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("SINK_FLUSH_INTERVAL", "2s")
	t.Setenv("ALERT_WEBHOOK_ENABLED", "true")
	t.Setenv("ALERT_WEBHOOK_URL", "https://hooks.example.com/sentinel")
	t.Setenv("ALERT_WEBHOOK_HEADERS", "Authorization=Bearer abc, X-Team=secops")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Audit.BlockThreshold != 55 {
		t.Errorf("Audit.BlockThreshold = %d, want 55", cfg.Audit.BlockThreshold)
	}
	if want := []string{"198.51.100.7", "203.0.113.0/24"}; !slices.Equal(cfg.Audit.Denylist, want) {
		t.Errorf("Audit.Denylist = %v, want %v", cfg.Audit.Denylist, want)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Sink.FlushInterval != 2*time.Second {
		t.Errorf("Sink.FlushInterval = %v, want 2s", cfg.Sink.FlushInterval)
	}
	if got := cfg.Alerts.Webhook.Headers["Authorization"]; got != "Bearer abc" {
		t.Errorf("Headers[Authorization] = %q, want %q", got, "Bearer abc")
	}
	if got := cfg.Alerts.Webhook.Headers["X-Team"]; got != "secops" {
		t.Errorf("Headers[X-Team] = %q, want secops", got)
	}
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "sentinel.yaml")
	yaml := strings.Join([]string{
		"audit:",
		"  block_threshold: 60",
		"  high_risk_ranges: [\"192.0.2.0/24\"]",
		"sink:",
		"  type: none",
		"logging:",
		"  level: debug",
	}, "\n")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Audit.BlockThreshold != 60 {
		t.Errorf("Audit.BlockThreshold = %d, want 60", cfg.Audit.BlockThreshold)
	}
	if !slices.Equal(cfg.Audit.HighRiskRanges, []string{"192.0.2.0/24"}) {
		t.Errorf("Audit.HighRiskRanges = %v", cfg.Audit.HighRiskRanges)
	}
	if cfg.Sink.Type != "none" {
		t.Errorf("Sink.Type = %q, want none", cfg.Sink.Type)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn (env beats file)", cfg.Logging.Level)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"threshold too high", map[string]string{"SENTINEL_BLOCK_THRESHOLD": "150"}, "audit.block_threshold"},
		{"bad environment", map[string]string{"ENVIRONMENT": "staging"}, "server.environment"},
		{"bad sink type", map[string]string{"SINK_TYPE": "kafka"}, "sink.type"},
		{"bad denylist", map[string]string{"SENTINEL_DENYLIST": "not-an-ip"}, "audit.denylist"},
		{"webhook without url", map[string]string{"ALERT_WEBHOOK_ENABLED": "true"}, "alerts.webhook.url"},
		{"webhook ftp url", map[string]string{"ALERT_WEBHOOK_ENABLED": "true", "ALERT_WEBHOOK_URL": "ftp://example.com"}, "alerts.webhook.url"},
		{"production without secret", map[string]string{"ENVIRONMENT": "production"}, "jwt_secret"},
		{"nats bad scheme", map[string]string{"SINK_TYPE": "nats", "NATS_URL": "http://broker:4222"}, "sink.nats.url"},
		{"bad header list", map[string]string{"ALERT_WEBHOOK_HEADERS": "novalue"}, "alerts.webhook.headers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ComponentSettings(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Environment = "production"
	cfg.Audit.Denylist = []string{"198.51.100.7"}

	ec := cfg.EngineConfig()
	if ec.Environment != "production" || ec.BlockThreshold != 70 || len(ec.Denylist) != 1 {
		t.Errorf("EngineConfig() = %+v", ec)
	}
	if mc := cfg.MirrorConfig(); mc.BatchSize != 10 || mc.FallbackSize != 100 {
		t.Errorf("MirrorConfig() = %+v", mc)
	}
	if nc := cfg.NATSSinkConfig("nats://127.0.0.1:5222"); nc.URL != "nats://127.0.0.1:5222" {
		t.Errorf("NATSSinkConfig().URL = %q", nc.URL)
	}
	if nc := cfg.NATSSinkConfig(""); nc.URL != cfg.Sink.NATS.URL {
		t.Errorf("NATSSinkConfig(\"\").URL = %q, want %q", nc.URL, cfg.Sink.NATS.URL)
	}
	if ac := cfg.APIConfig(); ac.RateLimitRequests != 100 || ac.MaxBodyBytes != 1<<20 {
		t.Errorf("APIConfig() = %+v", ac)
	}
	if tc := cfg.TreeConfig(); tc.FailureThreshold != 5 || tc.ShutdownTimeout != 10*time.Second {
		t.Errorf("TreeConfig() = %+v", tc)
	}
	if !cfg.Sink.UsesBadger() || cfg.Sink.UsesNATS() {
		t.Error("default sink should be badger only")
	}
}
