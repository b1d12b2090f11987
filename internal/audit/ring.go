// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

// DefaultMaxEvents is the default retained-event capacity.
const DefaultMaxEvents = 10000

// Log is a bounded, insertion-ordered event buffer.
// When full, Append overwrites the oldest event.
//
// Log is not safe for concurrent use; the owner serializes access.
type Log struct {
	buf   []SecurityEvent
	head  int // index of the oldest event
	size  int
	total uint64
}

// NewLog creates a log holding at most capacity events.
// A non-positive capacity falls back to DefaultMaxEvents.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultMaxEvents
	}
	return &Log{buf: make([]SecurityEvent, capacity)}
}

// Append stores e and reports whether an older event was evicted.
func (l *Log) Append(e SecurityEvent) (evicted bool) {
	l.total++
	if l.size < len(l.buf) {
		l.buf[(l.head+l.size)%len(l.buf)] = e
		l.size++
		return false
	}
	l.buf[l.head] = e
	l.head = (l.head + 1) % len(l.buf)
	return true
}

// Len returns the number of retained events.
func (l *Log) Len() int { return l.size }

// Cap returns the configured capacity.
func (l *Log) Cap() int { return len(l.buf) }

// Total returns how many events were ever appended.
func (l *Log) Total() uint64 { return l.total }

// Last returns the most recently appended event.
func (l *Log) Last() (SecurityEvent, bool) {
	if l.size == 0 {
		return SecurityEvent{}, false
	}
	return l.buf[(l.head+l.size-1)%len(l.buf)], true
}

// Snapshot copies the retained events, oldest first.
func (l *Log) Snapshot() []SecurityEvent {
	out := make([]SecurityEvent, l.size)
	for i := 0; i < l.size; i++ {
		src := &l.buf[(l.head+i)%len(l.buf)]
		out[i] = src.Copy()
	}
	return out
}

// Each calls fn for events from newest to oldest until fn returns false.
// fn must not retain the pointer.
func (l *Log) Each(fn func(e *SecurityEvent) bool) {
	for i := l.size - 1; i >= 0; i-- {
		if !fn(&l.buf[(l.head+i)%len(l.buf)]) {
			return
		}
	}
}
