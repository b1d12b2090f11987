// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import (
	"slices"
	"time"
)

// Filter selects events. Zero-valued fields do not filter; set fields are
// combined with logical AND. Date bounds are inclusive.
type Filter struct {
	Kind      EventKind
	Severity  Severity
	UserID    string
	StartDate *time.Time
	EndDate   *time.Time

	// Limit truncates the sorted result. 0 means no limit.
	Limit int
}

// Inverted reports whether the date bounds describe an empty range.
func (f *Filter) Inverted() bool {
	return f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate)
}

// Matches reports whether e passes every set criterion.
func (f *Filter) Matches(e *SecurityEvent) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Severity != "" && e.Severity != f.Severity {
		return false
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.StartDate != nil && e.Timestamp.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && e.Timestamp.After(*f.EndDate) {
		return false
	}
	return true
}

// Query filters events, sorts them newest first and applies the limit.
// An inverted date range yields an empty, non-nil result.
func Query(events []SecurityEvent, f Filter) []SecurityEvent {
	if f.Inverted() {
		return []SecurityEvent{}
	}

	out := make([]SecurityEvent, 0, len(events))
	for i := range events {
		if f.Matches(&events[i]) {
			out = append(out, events[i])
		}
	}

	SortNewestFirst(out)

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// SortNewestFirst orders events by descending timestamp, keeping the
// relative order of equal timestamps.
func SortNewestFirst(events []SecurityEvent) {
	slices.SortStableFunc(events, func(a, b SecurityEvent) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}
