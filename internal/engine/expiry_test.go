// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/blocklist"
)

func startRun(t *testing.T, e *Engine) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	return func() {
		stop()
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Run() error = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Run() did not return after cancel")
		}
	}
}

func waitForBlocks(t *testing.T, e *Engine, scope blocklist.Scope, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for storedBlocks(e, scope) != want {
		if time.Now().After(deadline) {
			t.Fatalf("stored %s blocks = %d, want %d", scope, storedBlocks(e, scope), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRun_ExpiresOverdueBlockOnStart(t *testing.T) {
	e, clock := newTestEngine(t, productionConfig())
	mustLog(t, e, audit.KindRateLimitExceeded, nil, audit.Context{IPAddress: maliciousIP})
	if storedBlocks(e, blocklist.ScopeIP) != 1 {
		t.Fatalf("stored IP blocks = %d, want 1", storedBlocks(e, blocklist.ScopeIP))
	}

	clock.Advance(blocklist.DurationRateLimit + time.Second)
	stop := startRun(t, e)
	defer stop()

	waitForBlocks(t, e, blocklist.ScopeIP, 0)
}

func TestRun_NewBlockRearmsTimer(t *testing.T) {
	e, clock := newTestEngine(t, productionConfig())
	stop := startRun(t, e)
	defer stop()

	// The first block is due in 15 real minutes as far as the timer knows.
	mustLog(t, e, audit.KindRateLimitExceeded, nil, audit.Context{IPAddress: maliciousIP})
	clock.Advance(blocklist.DurationRateLimit + time.Second)

	// A second block wakes the loop, which finds the first one overdue.
	mustLog(t, e, audit.KindSQLInjectionAttempt, nil, audit.Context{UserID: "u7"})

	waitForBlocks(t, e, blocklist.ScopeIP, 0)
	if !e.IsUserBlocked("u7") {
		t.Error("IsUserBlocked(u7) = false, want the fresh block to remain")
	}
}

func TestExpireBlocks(t *testing.T) {
	e, clock := newTestEngine(t, productionConfig())
	mustLog(t, e, audit.KindRateLimitExceeded, nil, audit.Context{IPAddress: maliciousIP})
	mustLog(t, e, audit.KindSQLInjectionAttempt, nil, audit.Context{UserID: "u8"})

	if got := e.ExpireBlocks(); len(got) != 0 {
		t.Fatalf("ExpireBlocks() before deadline = %d records, want 0", len(got))
	}

	clock.Advance(blocklist.DurationRateLimit)
	got := e.ExpireBlocks()
	if len(got) != 1 || got[0].Subject != maliciousIP {
		t.Fatalf("ExpireBlocks() = %+v, want the rate-limit IP block", got)
	}
	if !e.IsUserBlocked("u8") {
		t.Error("IsUserBlocked(u8) = false, want true")
	}
}

func TestEngine_ServiceName(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	if got := e.String(); got != "blocklist-expiry" {
		t.Errorf("String() = %q, want blocklist-expiry", got)
	}
}
