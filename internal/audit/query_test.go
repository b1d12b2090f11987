// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func sampleEvents() []SecurityEvent {
	mk := func(id string, kind EventKind, sev Severity, minutes int, user string, risk int, blocked bool) SecurityEvent {
		return SecurityEvent{
			ID:        id,
			Kind:      kind,
			Severity:  sev,
			Timestamp: baseTime.Add(time.Duration(minutes) * time.Minute),
			UserID:    user,
			IPAddress: "203.0.113.7",
			Details:   Details{},
			RiskScore: risk,
			Blocked:   blocked,
		}
	}
	return []SecurityEvent{
		mk("e1", KindLoginSuccess, SeverityLow, -50, "u1", 0, false),
		mk("e2", KindLoginFailed, SeverityMedium, -40, "u1", 20, false),
		mk("e3", KindLoginFailed, SeverityMedium, -30, "u2", 35, false),
		mk("e4", KindPermissionDenied, SeverityHigh, -20, "u1", 40, false),
		mk("e5", KindSQLInjectionAttempt, SeverityCritical, -10, "u3", 100, true),
	}
}

func ids(events []SecurityEvent) string {
	parts := make([]string, len(events))
	for i := range events {
		parts[i] = events[i].ID
	}
	return strings.Join(parts, ",")
}

func timePtr(t time.Time) *time.Time { return &t }

func TestQuery(t *testing.T) {
	events := sampleEvents()

	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"no filter newest first", Filter{}, "e5,e4,e3,e2,e1"},
		{"by kind", Filter{Kind: KindLoginFailed}, "e3,e2"},
		{"by severity", Filter{Severity: SeverityHigh}, "e4"},
		{"by user", Filter{UserID: "u1"}, "e4,e2,e1"},
		{"start inclusive", Filter{StartDate: timePtr(baseTime.Add(-20 * time.Minute))}, "e5,e4"},
		{"end inclusive", Filter{EndDate: timePtr(baseTime.Add(-40 * time.Minute))}, "e2,e1"},
		{"combined", Filter{Kind: KindLoginFailed, UserID: "u1", StartDate: timePtr(baseTime.Add(-45 * time.Minute))}, "e2"},
		{"limit after sort", Filter{Limit: 2}, "e5,e4"},
		{"limit after filter", Filter{UserID: "u1", Limit: 2}, "e4,e2"},
		{"no match", Filter{UserID: "nobody"}, ""},
		{
			"inverted range",
			Filter{StartDate: timePtr(baseTime), EndDate: timePtr(baseTime.Add(-time.Hour))},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Query(events, tt.filter)
			if got == nil {
				t.Fatal("Query() returned nil slice")
			}
			if ids(got) != tt.want {
				t.Errorf("Query() = %s, want %s", ids(got), tt.want)
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	events := sampleEvents()
	now := baseTime

	stats := ComputeStats(events, RangeHour, now)

	if stats.TotalEvents != 5 {
		t.Errorf("TotalEvents = %d, want 5", stats.TotalEvents)
	}
	sum := 0
	for _, n := range stats.EventsBySeverity {
		sum += n
	}
	if sum != stats.TotalEvents {
		t.Errorf("sum(EventsBySeverity) = %d, want %d", sum, stats.TotalEvents)
	}
	if stats.EventsByType[KindLoginFailed] != 2 {
		t.Errorf("EventsByType[LOGIN_FAILED] = %d, want 2", stats.EventsByType[KindLoginFailed])
	}
	if stats.BlockedEvents != 1 {
		t.Errorf("BlockedEvents = %d, want 1", stats.BlockedEvents)
	}
	if len(stats.RiskTrend) != TrendBuckets {
		t.Fatalf("len(RiskTrend) = %d, want %d", len(stats.RiskTrend), TrendBuckets)
	}

	// Hour window => 2.5 minute buckets starting at now-60m.
	// e1 at -50m -> bucket 4; e2 -40m -> 8; e3 -30m -> 12; e4 -20m -> 16; e5 -10m -> 20.
	want := map[int]int{4: 0, 8: 20, 12: 35, 16: 40, 20: 100}
	for i, v := range stats.RiskTrend {
		if v != want[i] {
			t.Errorf("RiskTrend[%d] = %d, want %d", i, v, want[i])
		}
	}
}

func TestComputeStats_AverageRounded(t *testing.T) {
	events := []SecurityEvent{
		{ID: "a", Kind: KindLoginFailed, Severity: SeverityMedium, Timestamp: baseTime.Add(-time.Minute), RiskScore: 20},
		{ID: "b", Kind: KindLoginFailed, Severity: SeverityMedium, Timestamp: baseTime.Add(-time.Minute + time.Second), RiskScore: 25},
	}
	stats := ComputeStats(events, RangeHour, baseTime)
	if stats.RiskTrend[23] != 23 { // 22.5 rounds half away from zero
		t.Errorf("RiskTrend[23] = %d, want 23", stats.RiskTrend[23])
	}
}

func TestComputeStats_EmptyWindow(t *testing.T) {
	stats := ComputeStats(sampleEvents(), RangeHour, baseTime.Add(48*time.Hour))

	if stats.TotalEvents != 0 || stats.BlockedEvents != 0 {
		t.Errorf("stats = %+v, want zero counts", stats)
	}
	for _, s := range Severities() {
		n, ok := stats.EventsBySeverity[s]
		if !ok || n != 0 {
			t.Errorf("EventsBySeverity[%s] = %d (present %v), want 0", s, n, ok)
		}
	}
	for i, v := range stats.RiskTrend {
		if v != 0 {
			t.Errorf("RiskTrend[%d] = %d, want 0", i, v)
		}
	}
}

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 24 * time.Hour},
		{"hour", time.Hour},
		{"DAY", 24 * time.Hour},
		{"week", 7 * 24 * time.Hour},
		{"month", 30 * 24 * time.Hour},
	}
	for _, tt := range tests {
		r, err := ParseTimeRange(tt.in)
		if err != nil {
			t.Errorf("ParseTimeRange(%q) error = %v", tt.in, err)
			continue
		}
		if r.Duration() != tt.want {
			t.Errorf("ParseTimeRange(%q).Duration() = %v, want %v", tt.in, r.Duration(), tt.want)
		}
	}
	if _, err := ParseTimeRange("year"); !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("ParseTimeRange(year) error = %v", err)
	}
}

func TestDetectAnomalies(t *testing.T) {
	now := baseTime
	var events []SecurityEvent
	add := func(kind EventKind, user string, ago time.Duration) {
		events = append(events, SecurityEvent{
			ID:        strconv.Itoa(len(events)),
			Kind:      kind,
			UserID:    user,
			Timestamp: now.Add(-ago),
		})
	}

	for i := 0; i < 3; i++ {
		add(KindLoginFailed, "u1", time.Duration(i+1)*time.Minute)
	}
	if got := DetectAnomalies(events, "u1", now, DefaultAnomalyRules()); len(got) != 0 {
		t.Errorf("after 3 failures findings = %v, want none", got)
	}

	for i := 0; i < 3; i++ {
		add(KindLoginFailed, "u1", time.Duration(i+10)*time.Minute)
	}
	got := DetectAnomalies(events, "u1", now, DefaultAnomalyRules())
	if len(got) != 1 || got[0] != FindingFailedLogins {
		t.Errorf("after 6 failures findings = %v, want [%s]", got, FindingFailedLogins)
	}

	// Failures older than an hour do not count toward the login rule.
	stale := []SecurityEvent{}
	for i := 0; i < 8; i++ {
		stale = append(stale, SecurityEvent{ID: strconv.Itoa(i), Kind: KindLoginFailed, UserID: "u2", Timestamp: now.Add(-2 * time.Hour)})
	}
	if got := DetectAnomalies(stale, "u2", now, DefaultAnomalyRules()); len(got) != 0 {
		t.Errorf("stale failures findings = %v, want none", got)
	}

	for i := 0; i < 11; i++ {
		add(KindPermissionDenied, "u1", time.Duration(i+1)*time.Second)
	}
	got = DetectAnomalies(events, "u1", now, DefaultAnomalyRules())
	if len(got) != 2 || got[1] != FindingAccessDenials {
		t.Errorf("findings = %v, want both rules", got)
	}

	if got := DetectAnomalies(events, "u9", now, DefaultAnomalyRules()); got == nil || len(got) != 0 {
		t.Errorf("unknown user findings = %v, want empty", got)
	}
}

func TestDetectAnomalies_InspectsLast100(t *testing.T) {
	now := baseTime
	var events []SecurityEvent
	// 11 denials that are older than the 100 most recent events.
	for i := 0; i < 11; i++ {
		events = append(events, SecurityEvent{ID: "d" + strconv.Itoa(i), Kind: KindPermissionDenied, UserID: "u1", Timestamp: now.Add(-48*time.Hour + time.Duration(i)*time.Second)})
	}
	for i := 0; i < 100; i++ {
		events = append(events, SecurityEvent{ID: "s" + strconv.Itoa(i), Kind: KindLoginSuccess, UserID: "u1", Timestamp: now.Add(-time.Hour + time.Duration(i)*time.Second)})
	}

	if got := DetectAnomalies(events, "u1", now, DefaultAnomalyRules()); len(got) != 0 {
		t.Errorf("findings = %v, want none outside inspected window", got)
	}
}

func TestExport_RoundTrip(t *testing.T) {
	events := Query(sampleEvents(), Filter{})
	events[0].UserRole = "admin"
	events[0].Resource = "/api, with comma"

	t.Run("json", func(t *testing.T) {
		data, err := Export(events, FormatJSON)
		if err != nil {
			t.Fatalf("Export(json) error = %v", err)
		}
		if !bytes.Contains(data, []byte("\n  {")) {
			t.Error("json export is not pretty-printed")
		}

		var decoded []SecurityEvent
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(decoded) != len(events) {
			t.Fatalf("decoded %d events, want %d", len(decoded), len(events))
		}
		for i := range events {
			got, want := decoded[i], events[i]
			if got.ID != want.ID || got.Kind != want.Kind || got.Severity != want.Severity ||
				!got.Timestamp.Equal(want.Timestamp) || got.RiskScore != want.RiskScore ||
				got.Blocked != want.Blocked || got.UserID != want.UserID || got.Resource != want.Resource {
				t.Errorf("decoded[%d] = %+v, want %+v", i, got, want)
			}
		}
	})

	t.Run("csv", func(t *testing.T) {
		data, err := Export(events, FormatCSV)
		if err != nil {
			t.Fatalf("Export(csv) error = %v", err)
		}

		firstLine := strings.SplitN(string(data), "\n", 2)[0]
		if firstLine != "ID,Type,Severity,Timestamp,User ID,User Role,IP Address,Resource,Action,Risk Score,Blocked" {
			t.Errorf("header = %q", firstLine)
		}

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if err != nil {
			t.Fatalf("parse csv: %v", err)
		}
		if len(records) != len(events)+1 {
			t.Fatalf("rows = %d, want %d", len(records), len(events)+1)
		}
		for i, rec := range records[1:] {
			if rec[0] != events[i].ID {
				t.Errorf("row %d id = %s, want %s", i, rec[0], events[i].ID)
			}
			ts, err := time.Parse(time.RFC3339, rec[3])
			if err != nil || !ts.Equal(events[i].Timestamp) {
				t.Errorf("row %d timestamp = %s (%v)", i, rec[3], err)
			}
		}
		if records[1][7] != "/api, with comma" {
			t.Errorf("resource = %q, want quoted value preserved", records[1][7])
		}
		if records[1][10] != "true" || records[1][9] != "100" {
			t.Errorf("risk/blocked = %s/%s", records[1][9], records[1][10])
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if _, err := Export(events, Format("xml")); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Export(xml) error = %v", err)
		}
		if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("ParseFormat(xml) error = %v", err)
		}
	})

	t.Run("empty json", func(t *testing.T) {
		data, err := Export(nil, FormatJSON)
		if err != nil || string(data) != "[]" {
			t.Errorf("Export(nil) = %q, %v", data, err)
		}
	})
}

func TestSummarize(t *testing.T) {
	now := baseTime
	events := []SecurityEvent{
		{Kind: KindLoginSuccess, Severity: SeverityLow, Timestamp: now.Add(-time.Hour)},
		{Kind: KindLoginSuccess, Severity: SeverityLow, Timestamp: now.Add(-8 * 24 * time.Hour)},
		{Kind: KindLoginFailed, Severity: SeverityMedium, Timestamp: now.Add(-2 * time.Hour)},
		{Kind: KindPermissionDenied, Severity: SeverityHigh, Timestamp: now.Add(-3 * time.Hour)},
		{Kind: KindMaliciousFileDetected, Severity: SeverityCritical, Timestamp: now.Add(-4 * time.Hour)},
	}

	got := Summarize(events, 0, now)
	want := Summary{Days: 7, TotalLogins: 1, FailedLogins: 1, AccessDenied: 1, CriticalEvents: 1}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}

	got = Summarize(events, 30, now)
	if got.TotalLogins != 2 {
		t.Errorf("Summarize(30).TotalLogins = %d, want 2", got.TotalLogins)
	}
}
