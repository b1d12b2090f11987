// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package engine

import (
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/sentinel/internal/alerting"
	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/blocklist"
	"github.com/tomtom215/sentinel/internal/scoring"
)

// noon is inside business hours, so off-hours weighting stays out of the way.
var noon = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

const maliciousIP = "1.2.3.4"

type recordingAlerter struct {
	mu     sync.Mutex
	events []audit.SecurityEvent
}

func (r *recordingAlerter) MaybeAlert(e *audit.SecurityEvent) bool {
	if !alerting.ShouldAlert(e.Severity) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.Copy())
	return true
}

func (r *recordingAlerter) alerts() []alerting.AdminAlert {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]alerting.AdminAlert, 0, len(r.events))
	for i := range r.events {
		out = append(out, alerting.NewAlert(&r.events[i]))
	}
	return out
}

type panickingAlerter struct{}

func (panickingAlerter) MaybeAlert(*audit.SecurityEvent) bool { panic("alert channel exploded") }

type recordingMirror struct {
	mu     sync.Mutex
	events []audit.SecurityEvent
}

func (m *recordingMirror) Enqueue(e audit.SecurityEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func newTestEngine(t *testing.T, cfg Config, opts ...Option) (*Engine, *audit.ManualClock) {
	t.Helper()
	clock := audit.NewManualClock(noon)
	e, err := New(cfg, append([]Option{WithClock(clock)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e, clock
}

func productionConfig() Config {
	cfg := DefaultConfig()
	cfg.Denylist = []string{maliciousIP}
	return cfg
}

func mustLog(t *testing.T, e *Engine, kind audit.EventKind, details audit.Details, actx audit.Context) audit.SecurityEvent {
	t.Helper()
	ev, err := e.LogEvent(kind, details, actx)
	if err != nil {
		t.Fatalf("LogEvent(%s) error = %v", kind, err)
	}
	return ev
}

func storedBlocks(e *Engine, scope blocklist.Scope) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.blocks.Count(scope)
}

func TestLogEvent_LoginSuccessWithoutContext(t *testing.T) {
	e, _ := newTestEngine(t, productionConfig())

	ev := mustLog(t, e, audit.KindLoginSuccess, nil, audit.Context{})

	if ev.Severity != audit.SeverityLow {
		t.Errorf("Severity = %s, want LOW", ev.Severity)
	}
	if ev.RiskScore != 0 {
		t.Errorf("RiskScore = %d, want 0", ev.RiskScore)
	}
	if ev.Blocked {
		t.Error("Blocked = true, want false")
	}
	if e.Len() != 1 {
		t.Errorf("Len() = %d, want 1", e.Len())
	}
}

func TestLogEvent_PrivilegeEscalationBlocksAndAlerts(t *testing.T) {
	alerter := &recordingAlerter{}
	e, _ := newTestEngine(t, productionConfig(), WithAlerter(alerter))

	ev := mustLog(t, e, audit.KindPrivilegeEscalationAttempt,
		audit.Details{"attemptCount": 5},
		audit.Context{UserID: "u2", IPAddress: maliciousIP, UserAgent: "curl/8.4.0"})

	if ev.Severity != audit.SeverityCritical {
		t.Errorf("Severity = %s, want CRITICAL", ev.Severity)
	}
	if ev.RiskScore != scoring.MaxScore {
		t.Errorf("RiskScore = %d, want %d", ev.RiskScore, scoring.MaxScore)
	}
	if !ev.Blocked {
		t.Error("Blocked = false, want true")
	}
	if !e.IsUserBlocked("u2") {
		t.Error("IsUserBlocked(u2) = false, want true")
	}
	if !e.IsIPBlocked(maliciousIP) {
		t.Errorf("IsIPBlocked(%s) = false, want true", maliciousIP)
	}

	alerts := alerter.alerts()
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if !alerts[0].RequiresAction {
		t.Error("RequiresAction = false, want true")
	}
	if alerts[0].EventID != ev.ID {
		t.Errorf("EventID = %s, want %s", alerts[0].EventID, ev.ID)
	}
}

func TestDetectAnomalies_FailedLoginThreshold(t *testing.T) {
	e, clock := newTestEngine(t, DefaultConfig())
	actx := audit.Context{UserID: "u1"}

	for range 3 {
		mustLog(t, e, audit.KindLoginFailed, nil, actx)
		clock.Advance(10 * time.Second)
	}
	for _, f := range e.DetectAnomalies("u1") {
		if f == audit.FindingFailedLogins {
			t.Fatalf("DetectAnomalies after 3 failures = %v, want no failed-login finding", e.DetectAnomalies("u1"))
		}
	}

	for range 3 {
		mustLog(t, e, audit.KindLoginFailed, nil, actx)
		clock.Advance(10 * time.Second)
	}
	got := e.DetectAnomalies("u1")
	if len(got) != 1 || got[0] != audit.FindingFailedLogins {
		t.Errorf("DetectAnomalies after 6 failures = %v, want [%q]", got, audit.FindingFailedLogins)
	}
}

func TestLogEvent_CapacityEvictsOldest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 10000
	e, _ := newTestEngine(t, cfg)

	for i := range cfg.MaxEvents + 5 {
		mustLog(t, e, audit.KindLogout, audit.Details{"seq": i}, audit.Context{})
	}

	if e.Len() != cfg.MaxEvents {
		t.Fatalf("Len() = %d, want %d", e.Len(), cfg.MaxEvents)
	}
	if e.Total() != uint64(cfg.MaxEvents+5) {
		t.Errorf("Total() = %d, want %d", e.Total(), cfg.MaxEvents+5)
	}

	events := e.GetEvents(audit.Filter{})
	if len(events) != cfg.MaxEvents {
		t.Fatalf("GetEvents() = %d events, want %d", len(events), cfg.MaxEvents)
	}
	if got := events[len(events)-1].Details["seq"]; got != 5 {
		t.Errorf("oldest seq = %v, want 5", got)
	}
	if got := events[0].Details["seq"]; got != cfg.MaxEvents+4 {
		t.Errorf("newest seq = %v, want %d", got, cfg.MaxEvents+4)
	}
}

func TestLogEvent_ReblockExtendsFromSecondEvent(t *testing.T) {
	e, clock := newTestEngine(t, productionConfig())
	actx := audit.Context{IPAddress: maliciousIP}

	first := mustLog(t, e, audit.KindRateLimitExceeded, nil, actx)
	if !first.Blocked {
		t.Fatalf("first event Blocked = false (risk %d), want true", first.RiskScore)
	}

	second := clock.Advance(5 * time.Minute)
	mustLog(t, e, audit.KindRateLimitExceeded, nil, actx)

	rec, ok := e.Block(blocklist.ScopeIP, maliciousIP)
	if !ok {
		t.Fatal("Block() ok = false, want true")
	}
	if rec.AttemptCount != 2 {
		t.Errorf("AttemptCount = %d, want 2", rec.AttemptCount)
	}
	if want := second.Add(blocklist.DurationRateLimit); !rec.BlockUntil.Equal(want) {
		t.Errorf("BlockUntil = %v, want %v", rec.BlockUntil, want)
	}
	if storedBlocks(e, blocklist.ScopeIP) != 1 {
		t.Errorf("stored IP blocks = %d, want 1", storedBlocks(e, blocklist.ScopeIP))
	}
}

func TestGetSecurityStats_EmptyHour(t *testing.T) {
	e, clock := newTestEngine(t, DefaultConfig())
	mustLog(t, e, audit.KindLoginFailed, nil, audit.Context{UserID: "u1"})
	clock.Advance(2 * time.Hour)

	got := e.GetSecurityStats(audit.RangeHour)

	if got.TotalEvents != 0 {
		t.Errorf("TotalEvents = %d, want 0", got.TotalEvents)
	}
	for _, s := range audit.Severities() {
		if got.EventsBySeverity[s] != 0 {
			t.Errorf("EventsBySeverity[%s] = %d, want 0", s, got.EventsBySeverity[s])
		}
	}
	if len(got.RiskTrend) != audit.TrendBuckets {
		t.Fatalf("len(RiskTrend) = %d, want %d", len(got.RiskTrend), audit.TrendBuckets)
	}
	for i, v := range got.RiskTrend {
		if v != 0 {
			t.Errorf("RiskTrend[%d] = %d, want 0", i, v)
		}
	}
}

func TestLogEvent_TimestampsStrictlyIncrease(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())

	var prev time.Time
	for i := range 5 {
		ev := mustLog(t, e, audit.KindFileDownload, nil, audit.Context{})
		if i > 0 && !ev.Timestamp.After(prev) {
			t.Fatalf("event %d Timestamp = %v, not after %v", i, ev.Timestamp, prev)
		}
		prev = ev.Timestamp
	}
	if want := noon.Add(4 * time.Millisecond); !prev.Equal(want) {
		t.Errorf("last Timestamp = %v, want %v", prev, want)
	}
}

func TestLogEvent_IDFormat(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	re := regexp.MustCompile(`^sec_\d+_[0-9a-z]{9}$`)

	seen := make(map[string]bool)
	for range 50 {
		ev := mustLog(t, e, audit.KindLogout, nil, audit.Context{})
		if !re.MatchString(ev.ID) {
			t.Fatalf("ID = %q, does not match %s", ev.ID, re)
		}
		if seen[ev.ID] {
			t.Fatalf("duplicate ID %q", ev.ID)
		}
		seen[ev.ID] = true
	}
}

func TestLogEvent_BlockedImpliesThreshold(t *testing.T) {
	cfg := productionConfig()
	e, clock := newTestEngine(t, cfg)

	ips := []string{"", maliciousIP, "10.0.0.8", "203.0.113.7"}
	agents := []string{"", "Mozilla/5.0", "python-requests/2.31"}
	for _, kind := range audit.AllKinds() {
		for _, ip := range ips {
			for _, ua := range agents {
				ev := mustLog(t, e, kind, audit.Details{"attemptCount": 3},
					audit.Context{IPAddress: ip, UserAgent: ua})
				if ev.RiskScore < scoring.MinScore || ev.RiskScore > scoring.MaxScore {
					t.Errorf("%s: RiskScore = %d, out of bounds", kind, ev.RiskScore)
				}
				if ev.Blocked != (ev.RiskScore >= cfg.BlockThreshold) {
					t.Errorf("%s ip=%q ua=%q: Blocked = %v with risk %d", kind, ip, ua, ev.Blocked, ev.RiskScore)
				}
			}
		}
		clock.Advance(time.Second)
	}
}

func TestLogEvent_UnknownKindStoresNothing(t *testing.T) {
	mirror := &recordingMirror{}
	e, _ := newTestEngine(t, DefaultConfig(), WithSink(mirror))

	_, err := e.LogEvent("TELEPORT_ATTEMPT", nil, audit.Context{UserID: "u1"})
	if !errors.Is(err, audit.ErrUnknownKind) {
		t.Fatalf("LogEvent() error = %v, want ErrUnknownKind", err)
	}
	if e.Len() != 0 {
		t.Errorf("Len() = %d, want 0", e.Len())
	}
	if len(mirror.events) != 0 {
		t.Errorf("mirrored %d events, want 0", len(mirror.events))
	}
}

func TestLogEvent_AlerterPanicDoesNotFailIngestion(t *testing.T) {
	e, _ := newTestEngine(t, productionConfig(), WithAlerter(panickingAlerter{}))

	ev, err := e.LogEvent(audit.KindSQLInjectionAttempt, nil, audit.Context{IPAddress: maliciousIP})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}
	if !ev.Blocked {
		t.Error("Blocked = false, want true")
	}
	if e.Len() != 1 {
		t.Errorf("Len() = %d, want 1", e.Len())
	}
}

func TestLogEvent_MirrorReceivesCopies(t *testing.T) {
	mirror := &recordingMirror{}
	e, _ := newTestEngine(t, DefaultConfig(), WithSink(mirror))

	ev := mustLog(t, e, audit.KindFileUpload, audit.Details{"name": "report.pdf"}, audit.Context{UserID: "u1"})
	ev.Details["name"] = "changed"

	if len(mirror.events) != 1 {
		t.Fatalf("mirrored %d events, want 1", len(mirror.events))
	}
	if got := mirror.events[0].Details["name"]; got != "report.pdf" {
		t.Errorf("mirrored details name = %v, want report.pdf", got)
	}
	if got := e.GetEvents(audit.Filter{})[0].Details["name"]; got != "report.pdf" {
		t.Errorf("stored details name = %v, want report.pdf", got)
	}
}

func TestLogEvent_MirrorOrderMatchesLog(t *testing.T) {
	mirror := &recordingMirror{}
	e, _ := newTestEngine(t, DefaultConfig(), WithSink(mirror))

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				if _, err := e.LogEvent(audit.KindFileUpload, nil, audit.Context{UserID: string(rune('a' + w))}); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	stored := e.GetEvents(audit.Filter{})
	if len(mirror.events) != len(stored) || len(stored) != 200 {
		t.Fatalf("mirrored %d, stored %d, want 200 each", len(mirror.events), len(stored))
	}
	for i := range mirror.events {
		want := stored[len(stored)-1-i].ID
		if mirror.events[i].ID != want {
			t.Fatalf("mirror[%d] = %s, want %s", i, mirror.events[i].ID, want)
		}
	}
}

func TestScore_DryRunLeavesStateUntouched(t *testing.T) {
	e, _ := newTestEngine(t, productionConfig())

	a, err := e.Score(audit.KindSQLInjectionAttempt, nil, audit.Context{UserID: "u9", IPAddress: maliciousIP})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if a.RiskScore != scoring.MaxScore {
		t.Errorf("RiskScore = %d, want %d", a.RiskScore, scoring.MaxScore)
	}
	if e.Len() != 0 || e.IsUserBlocked("u9") || e.IsIPBlocked(maliciousIP) {
		t.Error("Score() changed engine state")
	}
	if _, err := e.Score("NOPE", nil, audit.Context{}); !errors.Is(err, audit.ErrUnknownKind) {
		t.Errorf("Score(NOPE) error = %v, want ErrUnknownKind", err)
	}
}

func TestUnblock(t *testing.T) {
	e, _ := newTestEngine(t, productionConfig())
	mustLog(t, e, audit.KindSQLInjectionAttempt, nil, audit.Context{UserID: "u3", IPAddress: maliciousIP})

	if got := len(e.Blocks()); got != 2 {
		t.Fatalf("Blocks() = %d, want 2", got)
	}
	if _, ok := e.Unblock(blocklist.ScopeUser, "u3"); !ok {
		t.Fatal("Unblock(user) ok = false, want true")
	}
	if e.IsUserBlocked("u3") {
		t.Error("IsUserBlocked(u3) = true after Unblock")
	}
	if _, ok := e.Unblock(blocklist.ScopeUser, "u3"); ok {
		t.Error("second Unblock(user) ok = true, want false")
	}
	if !e.IsIPBlocked(maliciousIP) {
		t.Error("IsIPBlocked() = false, want the IP block to remain")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"threshold above max", Config{BlockThreshold: 101}},
		{"negative threshold", Config{BlockThreshold: -1}},
		{"bad denylist", Config{Denylist: []string{"not-an-ip"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	cfg := e.Config()
	if cfg.BlockThreshold != DefaultBlockThreshold {
		t.Errorf("BlockThreshold = %d, want %d", cfg.BlockThreshold, DefaultBlockThreshold)
	}
	if cfg.MaxEvents != audit.DefaultMaxEvents {
		t.Errorf("MaxEvents = %d, want %d", cfg.MaxEvents, audit.DefaultMaxEvents)
	}
}
