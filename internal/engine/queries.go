// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package engine

import (
	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/blocklist"
	"github.com/tomtom215/sentinel/internal/metrics"
	"github.com/tomtom215/sentinel/internal/scoring"
)

// Reads copy the log under the read lock and compute outside it, so they
// never re-trigger scoring and never hold up ingestion for long.

func (e *Engine) snapshot() []audit.SecurityEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.log.Snapshot()
}

// GetEvents returns the events matching f, newest first.
func (e *Engine) GetEvents(f audit.Filter) []audit.SecurityEvent {
	return audit.Query(e.snapshot(), f)
}

// GetSecurityStats aggregates the trailing window r.
func (e *Engine) GetSecurityStats(r audit.TimeRange) audit.Stats {
	events := e.snapshot()
	return audit.ComputeStats(events, r, e.clock.Now())
}

// DetectAnomalies runs the anomaly rules over the user's recent events.
func (e *Engine) DetectAnomalies(userID string) []string {
	events := e.snapshot()
	return audit.DetectAnomalies(events, userID, e.clock.Now(), e.rules)
}

// ExportEvents serializes the full history, newest first.
func (e *Engine) ExportEvents(format audit.Format) ([]byte, error) {
	return audit.Export(audit.Query(e.snapshot(), audit.Filter{}), format)
}

// GetSecuritySummary counts headline events over the last days days.
func (e *Engine) GetSecuritySummary(days int) audit.Summary {
	events := e.snapshot()
	return audit.Summarize(events, days, e.clock.Now())
}

// Len returns the number of events held in the audit log.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.log.Len()
}

// Total returns the number of events ever recorded.
func (e *Engine) Total() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.log.Total()
}

// Score assesses a hypothetical event without storing it, blocking,
// alerting or touching the location history.
func (e *Engine) Score(kind audit.EventKind, details audit.Details, actx audit.Context) (scoring.Assessment, error) {
	draft, err := audit.NewDraft(kind, details, actx)
	if err != nil {
		return scoring.Assessment{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scorer.Evaluate(draft, e.clock.Now()), nil
}

// IsUserBlocked reports whether userID is blocked right now.
func (e *Engine) IsUserBlocked(userID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.blocks.IsUserBlocked(userID, e.clock.Now())
}

// IsIPBlocked reports whether ip is blocked right now.
func (e *Engine) IsIPBlocked(ip string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.blocks.IsIPBlocked(ip, e.clock.Now())
}

// Blocks returns the active blocks, soonest expiry first.
func (e *Engine) Blocks() []blocklist.BlockRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.clock.Now()
	all := e.blocks.List()
	active := all[:0]
	for i := range all {
		if all[i].Active(now) {
			active = append(active, all[i])
		}
	}
	return active
}

// Block returns the active block on subject, if any.
func (e *Engine) Block(scope blocklist.Scope, subject string) (blocklist.BlockRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rec, ok := e.blocks.Get(scope, subject)
	if !ok || !rec.Active(e.clock.Now()) {
		return blocklist.BlockRecord{}, false
	}
	return rec, true
}

// Unblock lifts a block before it expires.
func (e *Engine) Unblock(scope blocklist.Scope, subject string) (blocklist.BlockRecord, bool) {
	e.mu.Lock()
	rec, ok := e.blocks.Unblock(scope, subject)
	active := e.blocks.Count(scope)
	e.mu.Unlock()

	if ok {
		metrics.RecordUnblock(string(scope), "manual", active)
		e.logger.Info().
			Str("scope", string(scope)).
			Str("subject", subject).
			Msg("Block lifted manually")
	}
	return rec, ok
}
