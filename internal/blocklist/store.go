// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package blocklist

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/cache"
)

// ErrUnknownScope is returned when a scope string is neither user nor ip.
var ErrUnknownScope = errors.New("unknown block scope")

// Scope names the kind of subject a block applies to.
type Scope string

const (
	ScopeUser Scope = "user"
	ScopeIP   Scope = "ip"
)

// ParseScope parses "user" or "ip".
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeUser:
		return ScopeUser, nil
	case ScopeIP:
		return ScopeIP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, s)
}

// Block durations by cause.
const (
	DurationLoginFailed = 5 * time.Minute
	DurationRateLimit   = 15 * time.Minute
	DurationInjection   = time.Hour
	DurationCritical    = 24 * time.Hour
	DurationDefault     = 30 * time.Minute
)

// DurationFor returns how long a subject stays blocked for cause.
func DurationFor(cause audit.EventKind) time.Duration {
	switch cause {
	case audit.KindLoginFailed:
		return DurationLoginFailed
	case audit.KindRateLimitExceeded:
		return DurationRateLimit
	case audit.KindCSRFAttempt, audit.KindXSSAttempt:
		return DurationInjection
	case audit.KindSQLInjectionAttempt, audit.KindPrivilegeEscalationAttempt, audit.KindMaliciousFileDetected:
		return DurationCritical
	default:
		return DurationDefault
	}
}

// BlockRecord describes one active block.
type BlockRecord struct {
	Subject      string          `json:"subject"`
	Scope        Scope           `json:"scope"`
	Reason       audit.EventKind `json:"reason"`
	BlockedAt    time.Time       `json:"blockedAt"`
	BlockUntil   time.Time       `json:"blockUntil"`
	Duration     time.Duration   `json:"duration"`
	AttemptCount int             `json:"attemptCount"`
}

// Active reports whether the block is still in force at now.
func (r *BlockRecord) Active(now time.Time) bool {
	return r.BlockUntil.After(now)
}

// Store holds user and IP blocks and schedules their expiry.
//
// Each subject has exactly one record and one heap entry. Re-blocking an
// existing subject updates both in place, so there is never a second
// expiry racing to remove a refreshed block.
//
// Store is not safe for concurrent use. Its owner serializes all calls,
// including the expiry sweep.
type Store struct {
	users   map[string]*BlockRecord
	ips     map[string]*BlockRecord
	expires *cache.ExpiryHeap[*BlockRecord]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:   make(map[string]*BlockRecord),
		ips:     make(map[string]*BlockRecord),
		expires: cache.NewExpiryHeap[*BlockRecord](),
	}
}

func heapKey(scope Scope, subject string) string {
	return string(scope) + ":" + subject
}

func (s *Store) table(scope Scope) map[string]*BlockRecord {
	if scope == ScopeUser {
		return s.users
	}
	return s.ips
}

// BlockUser blocks a user for the duration associated with cause.
func (s *Store) BlockUser(userID string, cause audit.EventKind, now time.Time) BlockRecord {
	return s.block(ScopeUser, userID, cause, now)
}

// BlockIP blocks an address for the duration associated with cause.
// Blocking an address that is already blocked increments AttemptCount
// and moves BlockUntil to now plus the duration.
func (s *Store) BlockIP(ip string, cause audit.EventKind, now time.Time) BlockRecord {
	return s.block(ScopeIP, ip, cause, now)
}

func (s *Store) block(scope Scope, subject string, cause audit.EventKind, now time.Time) BlockRecord {
	d := DurationFor(cause)
	until := now.Add(d)
	tbl := s.table(scope)

	rec, ok := tbl[subject]
	if ok {
		rec.AttemptCount++
		rec.Reason = cause
		rec.Duration = d
		// A milder cause never shortens an existing block.
		if until.After(rec.BlockUntil) {
			rec.BlockUntil = until
		}
	} else {
		rec = &BlockRecord{
			Subject:      subject,
			Scope:        scope,
			Reason:       cause,
			BlockedAt:    now,
			BlockUntil:   until,
			Duration:     d,
			AttemptCount: 1,
		}
		tbl[subject] = rec
	}

	s.expires.Push(heapKey(scope, subject), rec, rec.BlockUntil)
	return *rec
}

// IsUserBlocked reports whether userID is blocked at now.
func (s *Store) IsUserBlocked(userID string, now time.Time) bool {
	rec, ok := s.users[userID]
	return ok && rec.Active(now)
}

// IsIPBlocked reports whether ip is blocked at now.
func (s *Store) IsIPBlocked(ip string, now time.Time) bool {
	rec, ok := s.ips[ip]
	return ok && rec.Active(now)
}

// Get returns the record for a subject.
func (s *Store) Get(scope Scope, subject string) (BlockRecord, bool) {
	rec, ok := s.table(scope)[subject]
	if !ok {
		return BlockRecord{}, false
	}
	return *rec, true
}

// NextExpiry returns the earliest scheduled expiry.
func (s *Store) NextExpiry() (time.Time, bool) {
	d, ok := s.expires.Peek()
	if !ok {
		return time.Time{}, false
	}
	return d.At, true
}

// ExpireDue removes every block whose BlockUntil is at or before now and
// returns the removed records, earliest first.
func (s *Store) ExpireDue(now time.Time) []BlockRecord {
	due := s.expires.PopDue(now)
	if len(due) == 0 {
		return nil
	}
	out := make([]BlockRecord, 0, len(due))
	for _, d := range due {
		rec := d.Value
		delete(s.table(rec.Scope), rec.Subject)
		out = append(out, *rec)
	}
	return out
}

// Unblock removes a block before it expires.
func (s *Store) Unblock(scope Scope, subject string) (BlockRecord, bool) {
	tbl := s.table(scope)
	rec, ok := tbl[subject]
	if !ok {
		return BlockRecord{}, false
	}
	delete(tbl, subject)
	s.expires.Remove(heapKey(scope, subject))
	return *rec, true
}

// List returns copies of all blocks, soonest expiry first.
func (s *Store) List() []BlockRecord {
	out := make([]BlockRecord, 0, len(s.users)+len(s.ips))
	for _, r := range s.users {
		out = append(out, *r)
	}
	for _, r := range s.ips {
		out = append(out, *r)
	}
	slices.SortFunc(out, func(a, b BlockRecord) int {
		if c := a.BlockUntil.Compare(b.BlockUntil); c != 0 {
			return c
		}
		return strings.Compare(heapKey(a.Scope, a.Subject), heapKey(b.Scope, b.Subject))
	})
	return out
}

// Count returns the number of blocks in scope.
func (s *Store) Count(scope Scope) int {
	return len(s.table(scope))
}
