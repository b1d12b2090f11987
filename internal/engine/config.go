// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package engine

import (
	"fmt"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/scoring"
)

// DefaultBlockThreshold is the risk score at which subjects are blocked.
const DefaultBlockThreshold = 70

// Config holds the engine settings.
type Config struct {
	// BlockThreshold: events scoring at least this block their user and IP.
	BlockThreshold int

	// MaxEvents is the audit log capacity.
	MaxEvents int

	// Environment is "development" or "production". Internal source
	// addresses are only suspicious outside development.
	Environment string

	Denylist         []string
	HighRiskRanges   []string
	PrivateAllowlist []string
	SuspiciousAgents []string

	// HistoryCallers bounds the callers tracked for unusual location.
	HistoryCallers int
}

// DefaultConfig returns a production engine with the standard threshold
// and capacity.
func DefaultConfig() Config {
	return Config{
		BlockThreshold: DefaultBlockThreshold,
		MaxEvents:      audit.DefaultMaxEvents,
		Environment:    "production",
		HistoryCallers: scoring.DefaultHistoryCallers,
	}
}

func (c *Config) applyDefaults() error {
	if c.BlockThreshold == 0 {
		c.BlockThreshold = DefaultBlockThreshold
	}
	if c.BlockThreshold < scoring.MinScore || c.BlockThreshold > scoring.MaxScore {
		return fmt.Errorf("block threshold %d outside [%d, %d]", c.BlockThreshold, scoring.MinScore, scoring.MaxScore)
	}
	if c.MaxEvents <= 0 {
		c.MaxEvents = audit.DefaultMaxEvents
	}
	return nil
}

// ScoringConfig returns the scorer settings carried by c.
func (c *Config) ScoringConfig() scoring.Config {
	return scoring.Config{
		Environment:      c.Environment,
		Denylist:         c.Denylist,
		HighRiskRanges:   c.HighRiskRanges,
		PrivateAllowlist: c.PrivateAllowlist,
		SuspiciousAgents: c.SuspiciousAgents,
		HistoryCallers:   c.HistoryCallers,
	}
}
