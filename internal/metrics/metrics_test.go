// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordEvent(t *testing.T) {
	before := testutil.ToFloat64(EventsIngested.WithLabelValues("LOGIN_FAILED", "MEDIUM"))
	blockedBefore := testutil.ToFloat64(EventsBlocked)

	RecordEvent("LOGIN_FAILED", "MEDIUM", 20, false)
	RecordEvent("LOGIN_FAILED", "MEDIUM", 90, true)

	if got := testutil.ToFloat64(EventsIngested.WithLabelValues("LOGIN_FAILED", "MEDIUM")) - before; got != 2 {
		t.Errorf("events_ingested_total delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(EventsBlocked) - blockedBefore; got != 1 {
		t.Errorf("events_blocked_total delta = %v, want 1", got)
	}
}

func TestRecordAlertDelivery(t *testing.T) {
	okBefore := testutil.ToFloat64(AlertDeliveries.WithLabelValues("webhook"))
	failBefore := testutil.ToFloat64(AlertDeliveryFailures.WithLabelValues("webhook"))

	RecordAlertDelivery("webhook", nil)
	RecordAlertDelivery("webhook", errors.New("timeout"))
	RecordAlertDelivery("webhook", errors.New("503"))

	if got := testutil.ToFloat64(AlertDeliveries.WithLabelValues("webhook")) - okBefore; got != 1 {
		t.Errorf("deliveries delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(AlertDeliveryFailures.WithLabelValues("webhook")) - failBefore; got != 2 {
		t.Errorf("failures delta = %v, want 2", got)
	}
}

func TestRecordBlockAndUnblock(t *testing.T) {
	RecordBlock("ip", "RATE_LIMIT_EXCEEDED", 3)
	if got := testutil.ToFloat64(BlocksActive.WithLabelValues("ip")); got != 3 {
		t.Errorf("blocks_active{ip} = %v, want 3", got)
	}

	before := testutil.ToFloat64(BlockExpiries.WithLabelValues("ip", "expired"))
	RecordUnblock("ip", "expired", 2)
	if got := testutil.ToFloat64(BlocksActive.WithLabelValues("ip")); got != 2 {
		t.Errorf("blocks_active{ip} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(BlockExpiries.WithLabelValues("ip", "expired")) - before; got != 1 {
		t.Errorf("block_expiries_total delta = %v, want 1", got)
	}
}

func TestRecordSinkFlush(t *testing.T) {
	writes := testutil.ToFloat64(SinkWrites.WithLabelValues("badger"))
	fails := testutil.ToFloat64(SinkFailures.WithLabelValues("badger"))

	RecordSinkFlush("badger", 10, 5*time.Millisecond, nil)
	RecordSinkFlush("badger", 10, time.Millisecond, errors.New("closed"))

	if got := testutil.ToFloat64(SinkWrites.WithLabelValues("badger")) - writes; got != 10 {
		t.Errorf("sink_writes_total delta = %v, want 10", got)
	}
	if got := testutil.ToFloat64(SinkFailures.WithLabelValues("badger")) - fails; got != 1 {
		t.Errorf("sink_failures_total delta = %v, want 1", got)
	}
}

func TestRecordLogAndGauges(t *testing.T) {
	ev := testutil.ToFloat64(LogEvictions)
	RecordLog(10000, true)
	RecordLog(10000, false)

	if got := testutil.ToFloat64(LogEvictions) - ev; got != 1 {
		t.Errorf("evictions delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(LogSize); got != 10000 {
		t.Errorf("audit_log_events = %v, want 10000", got)
	}

	UpdateMirrorGauges(4, 100)
	if testutil.ToFloat64(MirrorPending) != 4 || testutil.ToFloat64(MirrorFallback) != 100 {
		t.Error("mirror gauges not updated")
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/stats", "200"))
	RecordAPIRequest("GET", "/api/v1/stats", 200, 3*time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/stats", "200")) - before; got != 1 {
		t.Errorf("api_requests_total delta = %v, want 1", got)
	}
}
