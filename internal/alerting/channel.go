// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package alerting

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Channel delivers alerts to one destination. Publish may block up to
// the context deadline; the dispatcher never calls it on the ingestion
// path.
type Channel interface {
	Name() string
	Publish(ctx context.Context, alert AdminAlert) error
}

// LogChannel writes alerts to the structured log. Urgent alerts are
// logged at error level, the rest at warn.
type LogChannel struct {
	logger zerolog.Logger
}

// NewLogChannel returns a channel logging through logger.
//
//nolint:gocritic // zerolog.Logger is passed by value by design
func NewLogChannel(logger zerolog.Logger) *LogChannel {
	return &LogChannel{logger: logger}
}

// Name implements Channel.
func (c *LogChannel) Name() string { return "log" }

// Publish implements Channel.
func (c *LogChannel) Publish(_ context.Context, alert AdminAlert) error {
	ev := c.logger.Warn()
	if alert.Urgent {
		ev = c.logger.Error()
	}
	ev.Str("event_id", alert.EventID).
		Str("type", string(alert.Kind)).
		Str("severity", string(alert.Severity)).
		Int("risk_score", alert.RiskScore).
		Str("subject", alert.Subject).
		Str("source_address", alert.SourceAddress).
		Bool("requires_action", alert.RequiresAction).
		Bool("urgent", alert.Urgent).
		Msg(alert.Message)
	return nil
}

// DefaultMemoryAlerts is the number of alerts a MemoryChannel keeps.
const DefaultMemoryAlerts = 100

// MemoryChannel keeps the most recent alerts in memory for the
// recent-alerts endpoint and for tests.
type MemoryChannel struct {
	mu     sync.Mutex
	alerts []AdminAlert
	limit  int
}

// NewMemoryChannel keeps at most limit alerts (DefaultMemoryAlerts when
// limit <= 0).
func NewMemoryChannel(limit int) *MemoryChannel {
	if limit <= 0 {
		limit = DefaultMemoryAlerts
	}
	return &MemoryChannel{limit: limit}
}

// Name implements Channel.
func (c *MemoryChannel) Name() string { return "memory" }

// Publish implements Channel.
func (c *MemoryChannel) Publish(_ context.Context, alert AdminAlert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, alert)
	if over := len(c.alerts) - c.limit; over > 0 {
		c.alerts = append(c.alerts[:0:0], c.alerts[over:]...)
	}
	return nil
}

// Recent returns up to n alerts, newest first. n <= 0 returns all.
func (c *MemoryChannel) Recent(n int) []AdminAlert {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n <= 0 || n > len(c.alerts) {
		n = len(c.alerts)
	}
	out := make([]AdminAlert, 0, n)
	for i := len(c.alerts) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, c.alerts[i])
	}
	return out
}

// Len returns the number of alerts held.
func (c *MemoryChannel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.alerts)
}
