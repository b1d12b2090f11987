// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import "time"

// AnomalyWindow is how many of a user's most recent events are inspected.
const AnomalyWindow = 100

// Anomaly findings.
const (
	FindingFailedLogins  = "Multiple failed login attempts"
	FindingAccessDenials = "Frequent access denials"
)

// AnomalyRule inspects a user's recent events (newest first) and returns
// a finding, or "" when the rule does not fire.
type AnomalyRule func(recent []SecurityEvent, now time.Time) string

// FailedLoginRule fires when more than maxFailures LOGIN_FAILED events
// occurred within window before now.
func FailedLoginRule(maxFailures int, window time.Duration) AnomalyRule {
	return func(recent []SecurityEvent, now time.Time) string {
		cutoff := now.Add(-window)
		n := 0
		for i := range recent {
			if recent[i].Kind == KindLoginFailed && recent[i].Timestamp.After(cutoff) {
				n++
			}
		}
		if n > maxFailures {
			return FindingFailedLogins
		}
		return ""
	}
}

// AccessDenialRule fires when more than maxDenials PERMISSION_DENIED
// events are present in the inspected window.
func AccessDenialRule(maxDenials int) AnomalyRule {
	return func(recent []SecurityEvent, _ time.Time) string {
		n := 0
		for i := range recent {
			if recent[i].Kind == KindPermissionDenied {
				n++
			}
		}
		if n > maxDenials {
			return FindingAccessDenials
		}
		return ""
	}
}

// DefaultAnomalyRules returns the built-in rule set.
func DefaultAnomalyRules() []AnomalyRule {
	return []AnomalyRule{
		FailedLoginRule(5, time.Hour),
		AccessDenialRule(10),
	}
}

// DetectAnomalies evaluates rules against the AnomalyWindow most recent
// events of userID. Each rule contributes at most one finding.
// The result is never nil.
func DetectAnomalies(events []SecurityEvent, userID string, now time.Time, rules []AnomalyRule) []string {
	findings := []string{}
	if userID == "" {
		return findings
	}

	recent := Query(events, Filter{UserID: userID, Limit: AnomalyWindow})
	for _, rule := range rules {
		if f := rule(recent, now); f != "" {
			findings = append(findings, f)
		}
	}
	return findings
}
