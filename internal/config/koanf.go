// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sentinel/config.yaml",
	"/etc/sentinel/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Audit: AuditConfig{
			BlockThreshold:   70,
			MaxEvents:        10000,
			Denylist:         []string{},
			HighRiskRanges:   []string{},
			PrivateAllowlist: []string{},
			SuspiciousAgents: []string{},
			HistoryCallers:   10000,
		},
		Alerts: AlertsConfig{
			QueueSize:      256,
			Workers:        1,
			PublishTimeout: 5 * time.Second,
			RecentLimit:    100,
			Webhook: WebhookConfig{
				Enabled:       false,
				Headers:       map[string]string{},
				Timeout:       10 * time.Second,
				RatePerSecond: 5,
				Burst:         10,
			},
			WebSocket: WebSocketConfig{
				Enabled:        true,
				AllowedOrigins: []string{},
			},
		},
		Sink: SinkConfig{
			Type:          "badger",
			BatchSize:     10,
			FlushInterval: 5 * time.Second,
			MaxPending:    10000,
			FallbackSize:  100,
			WriteTimeout:  10 * time.Second,
			Badger: BadgerConfig{
				Path:       "/data/sentinel/events",
				InMemory:   false,
				SyncWrites: false,
				Retention:  90 * 24 * time.Hour,
				GCInterval: 10 * time.Minute,
			},
			NATS: NATSConfig{
				URL:            "nats://127.0.0.1:4222",
				SubjectPrefix:  "sentinel.events",
				MaxReconnects:  -1,
				ReconnectWait:  2 * time.Second,
				EmbeddedServer: false,
				EmbeddedHost:   "127.0.0.1",
				EmbeddedPort:   4222,
			},
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8470,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			MaxBodyBytes:      1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}
	if err := processMapFields(k); err != nil {
		return nil, fmt.Errorf("failed to process map fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"audit.denylist",
	"audit.high_risk_ranges",
	"audit.private_allowlist",
	"audit.suspicious_agents",
	"alerts.websocket.allowed_origins",
	"security.cors_origins",
}

// mapConfigPaths arrive from the environment as "k1=v1,k2=v2".
var mapConfigPaths = []string{
	"alerts.webhook.headers",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		if err := k.Set(path, splitList(s)); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func processMapFields(k *koanf.Koanf) error {
	for _, path := range mapConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		m := make(map[string]any)
		for _, item := range splitList(s) {
			key, val, found := strings.Cut(item, "=")
			key = strings.TrimSpace(key)
			if !found || key == "" {
				return fmt.Errorf("%s: entry %q is not key=value", path, item)
			}
			m[key] = strings.TrimSpace(val)
		}
		// Delete first so the string value does not shadow the map keys.
		k.Delete(path)
		for key, val := range m {
			if err := k.Set(path+"."+key, val); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envMappings maps environment variable names (lower case) to koanf
// paths. Unlisted variables are ignored.
var envMappings = map[string]string{
	// Audit engine
	"sentinel_block_threshold":   "audit.block_threshold",
	"sentinel_max_events":        "audit.max_events",
	"sentinel_denylist":          "audit.denylist",
	"sentinel_high_risk_ranges":  "audit.high_risk_ranges",
	"sentinel_private_allowlist": "audit.private_allowlist",
	"sentinel_suspicious_agents": "audit.suspicious_agents",
	"sentinel_history_callers":   "audit.history_callers",

	// Alerts
	"alert_queue_size":        "alerts.queue_size",
	"alert_workers":           "alerts.workers",
	"alert_publish_timeout":   "alerts.publish_timeout",
	"alert_recent_limit":      "alerts.recent_limit",
	"alert_webhook_enabled":   "alerts.webhook.enabled",
	"alert_webhook_url":       "alerts.webhook.url",
	"alert_webhook_headers":   "alerts.webhook.headers",
	"alert_webhook_timeout":   "alerts.webhook.timeout",
	"alert_webhook_rate":      "alerts.webhook.rate_per_second",
	"alert_webhook_burst":     "alerts.webhook.burst",
	"alert_websocket_enabled": "alerts.websocket.enabled",
	"alert_websocket_origins": "alerts.websocket.allowed_origins",

	// Event mirror
	"sink_type":           "sink.type",
	"sink_batch_size":     "sink.batch_size",
	"sink_flush_interval": "sink.flush_interval",
	"sink_max_pending":    "sink.max_pending",
	"sink_fallback_size":  "sink.fallback_size",
	"sink_write_timeout":  "sink.write_timeout",
	"badger_path":         "sink.badger.path",
	"badger_in_memory":    "sink.badger.in_memory",
	"badger_sync_writes":  "sink.badger.sync_writes",
	"badger_retention":    "sink.badger.retention",
	"badger_gc_interval":  "sink.badger.gc_interval",
	"nats_url":            "sink.nats.url",
	"nats_subject_prefix": "sink.nats.subject_prefix",
	"nats_max_reconnects": "sink.nats.max_reconnects",
	"nats_reconnect_wait": "sink.nats.reconnect_wait",
	"nats_embedded":       "sink.nats.embedded_server",
	"nats_embedded_host":  "sink.nats.embedded_host",
	"nats_embedded_port":  "sink.nats.embedded_port",

	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"max_body_bytes":      "security.max_body_bytes",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps an environment variable name to its koanf path,
// or "" to skip it.
//
//	SENTINEL_BLOCK_THRESHOLD -> audit.block_threshold
//	HTTP_PORT                -> server.port
//	ENVIRONMENT              -> server.environment
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
