// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import "time"

// DefaultSummaryDays is the look-back used when no period is given.
const DefaultSummaryDays = 7

// Summary counts headline security events over a number of days.
type Summary struct {
	Days           int `json:"days"`
	TotalLogins    int `json:"totalLogins"`
	FailedLogins   int `json:"failedLogins"`
	AccessDenied   int `json:"accessDenied"`
	CriticalEvents int `json:"criticalEvents"`
}

// Summarize counts logins, failed logins, access denials and critical
// events at or after now minus days.
func Summarize(events []SecurityEvent, days int, now time.Time) Summary {
	if days <= 0 {
		days = DefaultSummaryDays
	}
	s := Summary{Days: days}
	cutoff := now.AddDate(0, 0, -days)

	for i := range events {
		e := &events[i]
		if e.Timestamp.Before(cutoff) {
			continue
		}
		switch e.Kind {
		case KindLoginSuccess:
			s.TotalLogins++
		case KindLoginFailed:
			s.FailedLogins++
		case KindPermissionDenied:
			s.AccessDenied++
		}
		if e.Severity == SeverityCritical {
			s.CriticalEvents++
		}
	}
	return s
}
