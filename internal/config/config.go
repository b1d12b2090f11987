// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package config

import (
	"time"

	"github.com/tomtom215/sentinel/internal/alerting"
	"github.com/tomtom215/sentinel/internal/api"
	"github.com/tomtom215/sentinel/internal/engine"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/sink"
	"github.com/tomtom215/sentinel/internal/supervisor"
)

// Config holds all application configuration.
//
// Loading order (koanf v2):
//  1. Defaults from defaultConfig
//  2. Optional YAML file (CONFIG_PATH, config.yaml, /etc/sentinel/config.yaml)
//  3. Environment variables listed in envMappings
type Config struct {
	Audit      AuditConfig      `koanf:"audit"`
	Alerts     AlertsConfig     `koanf:"alerts"`
	Sink       SinkConfig       `koanf:"sink"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// AuditConfig holds the scoring and retention settings of the engine.
type AuditConfig struct {
	BlockThreshold int `koanf:"block_threshold" validate:"min=1,max=100"`
	MaxEvents      int `koanf:"max_events" validate:"min=1"`

	// Denylist holds addresses and CIDRs treated as known-malicious.
	Denylist []string `koanf:"denylist"`

	// HighRiskRanges are CIDRs that count as an unusual location once a
	// caller has an established history elsewhere.
	HighRiskRanges []string `koanf:"high_risk_ranges"`

	// PrivateAllowlist exempts internal ranges from the malicious-source
	// signal in production.
	PrivateAllowlist []string `koanf:"private_allowlist"`

	SuspiciousAgents []string `koanf:"suspicious_agents"`
	HistoryCallers   int      `koanf:"history_callers" validate:"min=1"`
}

// AlertsConfig holds alert dispatch settings.
type AlertsConfig struct {
	QueueSize      int           `koanf:"queue_size" validate:"min=1"`
	Workers        int           `koanf:"workers" validate:"min=1,max=64"`
	PublishTimeout time.Duration `koanf:"publish_timeout" validate:"gt=0"`

	// RecentLimit bounds the in-memory alert history served by the API.
	RecentLimit int `koanf:"recent_limit" validate:"min=1"`

	Webhook   WebhookConfig   `koanf:"webhook"`
	WebSocket WebSocketConfig `koanf:"websocket"`
}

// WebhookConfig configures the optional HTTP alert receiver.
type WebhookConfig struct {
	Enabled       bool              `koanf:"enabled"`
	URL           string            `koanf:"url" validate:"omitempty,url"`
	Headers       map[string]string `koanf:"headers"`
	Timeout       time.Duration     `koanf:"timeout" validate:"gt=0"`
	RatePerSecond float64           `koanf:"rate_per_second" validate:"gte=0"`
	Burst         int               `koanf:"burst" validate:"gte=0"`
}

// WebSocketConfig configures the live alert stream.
type WebSocketConfig struct {
	Enabled        bool     `koanf:"enabled"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// SinkConfig configures the durable event mirror.
type SinkConfig struct {
	// Type is none, badger, nats or both.
	Type          string        `koanf:"type" validate:"oneof=none badger nats both"`
	BatchSize     int           `koanf:"batch_size" validate:"min=1"`
	FlushInterval time.Duration `koanf:"flush_interval" validate:"gt=0"`
	MaxPending    int           `koanf:"max_pending" validate:"min=1"`
	FallbackSize  int           `koanf:"fallback_size" validate:"min=1"`
	WriteTimeout  time.Duration `koanf:"write_timeout" validate:"gt=0"`

	Badger BadgerConfig `koanf:"badger"`
	NATS   NATSConfig   `koanf:"nats"`
}

// BadgerConfig configures the embedded event store.
type BadgerConfig struct {
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	SyncWrites bool          `koanf:"sync_writes"`
	Retention  time.Duration `koanf:"retention" validate:"gte=0"`
	GCInterval time.Duration `koanf:"gc_interval" validate:"gt=0"`
}

// NATSConfig configures event publishing to NATS.
type NATSConfig struct {
	URL           string        `koanf:"url"`
	SubjectPrefix string        `koanf:"subject_prefix" validate:"required"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait" validate:"gte=0"`

	// EmbeddedServer starts an in-process broker on EmbeddedHost:EmbeddedPort
	// and publishes to it instead of URL.
	EmbeddedServer bool   `koanf:"embedded_server"`
	EmbeddedHost   string `koanf:"embedded_host"`
	EmbeddedPort   int    `koanf:"embedded_port" validate:"min=-1,max=65535"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// Environment is development or production. Production enables the
	// internal-address heuristic and requires a JWT secret.
	Environment string `koanf:"environment" validate:"oneof=development production"`
}

// SecurityConfig holds API authentication and request limits.
type SecurityConfig struct {
	// JWTSecret signs API bearer tokens (HS256). Empty disables
	// authentication, which is only accepted in development.
	JWTSecret string `koanf:"jwt_secret"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`

	// MaxBodyBytes bounds ingestion request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes" validate:"min=1"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig holds the restart policy of the service tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gt=0"`
	FailureDecay     float64       `koanf:"failure_decay" validate:"gt=0"`
	FailureBackoff   time.Duration `koanf:"failure_backoff" validate:"gt=0"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// EngineConfig returns the engine settings.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		BlockThreshold:   c.Audit.BlockThreshold,
		MaxEvents:        c.Audit.MaxEvents,
		Environment:      c.Server.Environment,
		Denylist:         c.Audit.Denylist,
		HighRiskRanges:   c.Audit.HighRiskRanges,
		PrivateAllowlist: c.Audit.PrivateAllowlist,
		SuspiciousAgents: c.Audit.SuspiciousAgents,
		HistoryCallers:   c.Audit.HistoryCallers,
	}
}

// DispatcherConfig returns the alert dispatcher settings.
func (c *Config) DispatcherConfig() alerting.Config {
	return alerting.Config{
		QueueSize:      c.Alerts.QueueSize,
		PublishTimeout: c.Alerts.PublishTimeout,
		Workers:        c.Alerts.Workers,
	}
}

// WebhookChannelConfig returns the webhook channel settings.
func (c *Config) WebhookChannelConfig() alerting.WebhookConfig {
	w := c.Alerts.Webhook
	return alerting.WebhookConfig{
		URL:           w.URL,
		Headers:       w.Headers,
		Timeout:       w.Timeout,
		RatePerSecond: w.RatePerSecond,
		Burst:         w.Burst,
	}
}

// MirrorConfig returns the event mirror settings.
func (c *Config) MirrorConfig() sink.MirrorConfig {
	return sink.MirrorConfig{
		BatchSize:     c.Sink.BatchSize,
		FlushInterval: c.Sink.FlushInterval,
		MaxPending:    c.Sink.MaxPending,
		FallbackSize:  c.Sink.FallbackSize,
		WriteTimeout:  c.Sink.WriteTimeout,
	}
}

// BadgerSinkConfig returns the badger sink settings.
func (c *Config) BadgerSinkConfig() sink.BadgerConfig {
	b := c.Sink.Badger
	return sink.BadgerConfig{
		Path:       b.Path,
		InMemory:   b.InMemory,
		SyncWrites: b.SyncWrites,
		Retention:  b.Retention,
	}
}

// NATSSinkConfig returns the NATS sink settings. url overrides the
// configured URL when an embedded broker is running.
func (c *Config) NATSSinkConfig(url string) sink.NATSConfig {
	n := c.Sink.NATS
	if url == "" {
		url = n.URL
	}
	return sink.NATSConfig{
		URL:           url,
		SubjectPrefix: n.SubjectPrefix,
		MaxReconnects: n.MaxReconnects,
		ReconnectWait: n.ReconnectWait,
	}
}

// APIConfig returns the HTTP surface settings.
func (c *Config) APIConfig() api.Config {
	s := c.Security
	return api.Config{
		JWTSecret:         s.JWTSecret,
		RateLimitRequests: s.RateLimitReqs,
		RateLimitWindow:   s.RateLimitWindow,
		RateLimitDisabled: s.RateLimitDisabled,
		CORSOrigins:       s.CORSOrigins,
		MaxBodyBytes:      s.MaxBodyBytes,
	}
}

// TreeConfig returns the supervisor restart policy.
func (c *Config) TreeConfig() supervisor.TreeConfig {
	return supervisor.TreeConfig{
		FailureThreshold: c.Supervisor.FailureThreshold,
		FailureDecay:     c.Supervisor.FailureDecay,
		FailureBackoff:   c.Supervisor.FailureBackoff,
		ShutdownTimeout:  c.Supervisor.ShutdownTimeout,
	}
}

// LoggingSettings returns the logger settings.
func (c *Config) LoggingSettings() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}

// UsesBadger reports whether events are mirrored to badger.
func (s *SinkConfig) UsesBadger() bool {
	return s.Type == "badger" || s.Type == "both"
}

// UsesNATS reports whether events are published to NATS.
func (s *SinkConfig) UsesNATS() bool {
	return s.Type == "nats" || s.Type == "both"
}
