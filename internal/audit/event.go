// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DetailAttemptCount is the details key carrying a repetition counter.
const DetailAttemptCount = "attemptCount"

// Context describes who acted, from where, and on what.
// Every field is optional.
type Context struct {
	UserID    string `json:"userId,omitempty"`
	UserRole  string `json:"userRole,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Resource  string `json:"resource,omitempty"`
	Action    string `json:"action,omitempty"`
}

// Details is the open key/value bag supplied by the caller.
type Details map[string]any

// AttemptCount returns details.attemptCount as an int, or 0 when absent
// or not numeric. Values saturate at the int32 range.
func (d Details) AttemptCount() int {
	v, ok := d[DetailAttemptCount]
	if !ok || v == nil {
		return 0
	}

	switch n := v.(type) {
	case int:
		return saturate(int64(n))
	case int32:
		return int(n)
	case int64:
		return saturate(n)
	case uint:
		return saturateUnsigned(uint64(n))
	case uint32:
		return saturateUnsigned(uint64(n))
	case uint64:
		return saturateUnsigned(n)
	case float32:
		return saturateFloat(float64(n))
	case float64:
		return saturateFloat(n)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0
		}
		return saturate(i)
	case interface{ Int64() (int64, error) }:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return saturate(i)
	default:
		return 0
	}
}

func saturate(n int64) int {
	return int(max(math.MinInt32, min(n, math.MaxInt32)))
}

func saturateUnsigned(n uint64) int {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

func saturateFloat(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}

// Clone returns a shallow copy of d. Nil stays nil.
func (d Details) Clone() Details {
	if d == nil {
		return nil
	}
	out := make(Details, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Draft is an event that has not been scored or stored yet.
type Draft struct {
	Kind    EventKind
	Details Details
	Context Context
}

// NewDraft validates kind and builds a draft. An unknown kind is a caller
// bug and is reported as ErrUnknownKind rather than defaulted.
func NewDraft(kind EventKind, details Details, ctx Context) (Draft, error) {
	if !kind.Valid() {
		return Draft{}, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
	if details == nil {
		details = Details{}
	}
	return Draft{Kind: kind, Details: details.Clone(), Context: ctx}, nil
}

// MustDraft is like NewDraft but panics on an unknown kind.
func MustDraft(kind EventKind, details Details, ctx Context) Draft {
	d, err := NewDraft(kind, details, ctx)
	if err != nil {
		panic(err)
	}
	return d
}

// SecurityEvent is the immutable audit record produced at ingestion.
type SecurityEvent struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"type"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId,omitempty"`
	UserRole  string    `json:"userRole,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Resource  string    `json:"resource,omitempty"`
	Action    string    `json:"action,omitempty"`
	Details   Details   `json:"details"`
	RiskScore int       `json:"riskScore"`
	Blocked   bool      `json:"blocked"`
}

// Context returns the actor context the event was recorded with.
func (e *SecurityEvent) Context() Context {
	return Context{
		UserID:    e.UserID,
		UserRole:  e.UserRole,
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		Resource:  e.Resource,
		Action:    e.Action,
	}
}

// Copy returns a value copy whose Details map is not shared with e.
func (e *SecurityEvent) Copy() SecurityEvent {
	out := *e
	out.Details = e.Details.Clone()
	return out
}

// Finalize turns a scored draft into a stored event.
func (d Draft) Finalize(id string, ts time.Time, severity Severity, risk int, blocked bool) SecurityEvent {
	details := d.Details.Clone()
	if details == nil {
		details = Details{}
	}
	return SecurityEvent{
		ID:        id,
		Kind:      d.Kind,
		Severity:  severity,
		Timestamp: ts,
		UserID:    d.Context.UserID,
		UserRole:  d.Context.UserRole,
		IPAddress: d.Context.IPAddress,
		UserAgent: d.Context.UserAgent,
		Resource:  d.Context.Resource,
		Action:    d.Context.Action,
		Details:   details,
		RiskScore: risk,
		Blocked:   blocked,
	}
}
