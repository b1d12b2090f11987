// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// TrendBuckets is the number of sub-intervals in a risk trend.
const TrendBuckets = 24

// ErrInvalidTimeRange is returned for an unrecognized time range name.
var ErrInvalidTimeRange = errors.New("invalid time range")

// TimeRange names a trailing statistics window.
type TimeRange string

const (
	RangeHour  TimeRange = "hour"
	RangeDay   TimeRange = "day"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
)

// Duration returns the window length. A month is 30 days.
func (r TimeRange) Duration() time.Duration {
	switch r {
	case RangeHour:
		return time.Hour
	case RangeDay:
		return 24 * time.Hour
	case RangeWeek:
		return 7 * 24 * time.Hour
	case RangeMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// ParseTimeRange converts s to a TimeRange. Empty means day.
func ParseTimeRange(s string) (TimeRange, error) {
	if s == "" {
		return RangeDay, nil
	}
	r := TimeRange(strings.ToLower(strings.TrimSpace(s)))
	if r.Duration() == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	return r, nil
}

// Stats aggregates events inside a trailing window.
type Stats struct {
	Range            TimeRange         `json:"range"`
	TotalEvents      int               `json:"totalEvents"`
	EventsBySeverity map[Severity]int  `json:"eventsBySeverity"`
	EventsByType     map[EventKind]int `json:"eventsByType"`
	BlockedEvents    int               `json:"blockedEvents"`
	RiskTrend        []int             `json:"riskTrend"`
}

// ComputeStats aggregates the events at or after now-window.
//
// The trend splits the window into TrendBuckets half-open sub-intervals
// and reports the rounded average risk of each; empty buckets are 0.
func ComputeStats(events []SecurityEvent, r TimeRange, now time.Time) Stats {
	window := r.Duration()
	stats := Stats{
		Range:            r,
		EventsBySeverity: make(map[Severity]int, 4),
		EventsByType:     make(map[EventKind]int),
		RiskTrend:        make([]int, TrendBuckets),
	}
	for _, s := range Severities() {
		stats.EventsBySeverity[s] = 0
	}
	if window == 0 {
		return stats
	}

	cutoff := now.Add(-window)
	interval := window / TrendBuckets
	var sums, counts [TrendBuckets]int

	for i := range events {
		e := &events[i]
		if e.Timestamp.Before(cutoff) {
			continue
		}
		stats.TotalEvents++
		stats.EventsBySeverity[e.Severity]++
		stats.EventsByType[e.Kind]++
		if e.Blocked {
			stats.BlockedEvents++
		}

		bucket := int(e.Timestamp.Sub(cutoff) / interval)
		if bucket < TrendBuckets {
			sums[bucket] += e.RiskScore
			counts[bucket]++
		}
	}

	for i := 0; i < TrendBuckets; i++ {
		if counts[i] > 0 {
			stats.RiskTrend[i] = int(math.Round(float64(sums[i]) / float64(counts[i])))
		}
	}
	return stats
}
