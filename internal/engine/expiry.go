// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package engine

import (
	"context"
	"time"

	"github.com/tomtom215/sentinel/internal/blocklist"
	"github.com/tomtom215/sentinel/internal/metrics"
)

// kick wakes Run so it re-arms its timer on the new earliest expiry.
func (e *Engine) kick() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Run removes blocks as they expire until ctx is cancelled. One timer is
// armed on the earliest expiry; a new or refreshed block re-arms it.
func (e *Engine) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}

		e.mu.RLock()
		next, ok := e.blocks.NextExpiry()
		e.mu.RUnlock()

		var fire <-chan time.Time
		if ok {
			d := next.Sub(e.clock.Now())
			if d < 0 {
				d = 0
			}
			timer.Reset(d)
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.wake:
		case <-fire:
			e.ExpireBlocks()
		}
	}
}

// Serve implements suture.Service.
func (e *Engine) Serve(ctx context.Context) error {
	return e.Run(ctx)
}

// String implements fmt.Stringer for supervisor logs.
func (e *Engine) String() string {
	return "blocklist-expiry"
}

// ExpireBlocks removes every block that has expired by now and returns
// the removed records.
func (e *Engine) ExpireBlocks() []blocklist.BlockRecord {
	e.mu.Lock()
	expired := e.blocks.ExpireDue(e.clock.Now())
	activeUsers, activeIPs := e.blocks.Count(blocklist.ScopeUser), e.blocks.Count(blocklist.ScopeIP)
	e.mu.Unlock()

	for i := range expired {
		rec := &expired[i]
		active := activeUsers
		if rec.Scope == blocklist.ScopeIP {
			active = activeIPs
		}
		metrics.RecordUnblock(string(rec.Scope), "expired", active)
		e.logger.Info().
			Str("scope", string(rec.Scope)).
			Str("subject", rec.Subject).
			Str("reason", string(rec.Reason)).
			Int("attempt_count", rec.AttemptCount).
			Msg("Block expired")
	}
	return expired
}
