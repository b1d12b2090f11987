// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/metrics"
)

// ErrSinkClosed is returned by writes after Close.
var ErrSinkClosed = errors.New("sink closed")

// Sink durably stores batches of security events. A Write either stores
// the whole batch or returns an error; the mirror retries failed batches.
type Sink interface {
	Name() string
	Write(ctx context.Context, events []audit.SecurityEvent) error
	Close() error
}

// Multi writes every batch to each child sink.
type Multi struct {
	sinks []Sink
}

// NewMulti fans writes out to sinks.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Name implements Sink.
func (m *Multi) Name() string { return "multi" }

// Write implements Sink. Every child is attempted; the joined error of
// the failing children is returned. A retried batch is written again to
// children that already stored it, which they tolerate because event
// IDs are unique keys.
func (m *Multi) Write(ctx context.Context, events []audit.SecurityEvent) error {
	var errs []error
	for _, s := range m.sinks {
		start := time.Now()
		err := s.Write(ctx, events)
		metrics.RecordSinkFlush(s.Name(), len(events), time.Since(start), err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Close implements Sink.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of child sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}
