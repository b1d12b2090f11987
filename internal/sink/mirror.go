// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package sink

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/metrics"
)

// MirrorConfig configures a Mirror.
type MirrorConfig struct {
	// BatchSize events are written per Write call; reaching it triggers
	// a flush without waiting for the interval.
	BatchSize int

	// FlushInterval is the longest an event waits in the buffer.
	FlushInterval time.Duration

	// MaxPending bounds the retry buffer. Beyond it the oldest pending
	// events spill into the fallback store.
	MaxPending int

	// FallbackSize bounds the fallback store; the oldest entries are
	// evicted first.
	FallbackSize int

	// WriteTimeout bounds one Write call.
	WriteTimeout time.Duration
}

// DefaultMirrorConfig returns batches of 10 flushed at least every 5s and
// a 100-event fallback store.
func DefaultMirrorConfig() MirrorConfig {
	return MirrorConfig{
		BatchSize:     10,
		FlushInterval: 5 * time.Second,
		MaxPending:    10000,
		FallbackSize:  100,
		WriteTimeout:  10 * time.Second,
	}
}

// MirrorStats is a point-in-time view of the mirror buffers.
type MirrorStats struct {
	Sink     string `json:"sink"`
	Pending  int    `json:"pending"`
	Fallback int    `json:"fallback"`
	Written  uint64 `json:"written"`
	Failures uint64 `json:"failures"`
	Evicted  uint64 `json:"evicted"`
}

// Mirror copies ingested events to a durable sink in the background.
// Enqueue never blocks the caller. Failed batches are re-queued at the
// front of the buffer; events that overflow the buffer go to a small
// bounded fallback store that is retried once the sink recovers.
type Mirror struct {
	sink Sink
	cfg  MirrorConfig

	mu       sync.Mutex
	pending  []audit.SecurityEvent
	fallback []audit.SecurityEvent
	written  uint64
	failures uint64
	evicted  uint64

	// flushMu keeps flushes sequential so batches stay in order.
	flushMu  sync.Mutex
	flushNow chan struct{}
	logger   zerolog.Logger
}

// NewMirror returns a mirror writing to s. Serve must be running for
// events to be written.
func NewMirror(s Sink, cfg MirrorConfig) *Mirror {
	def := DefaultMirrorConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.MaxPending < cfg.BatchSize {
		cfg.MaxPending = def.MaxPending
	}
	if cfg.FallbackSize <= 0 {
		cfg.FallbackSize = def.FallbackSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	return &Mirror{
		sink:     s,
		cfg:      cfg,
		flushNow: make(chan struct{}, 1),
		logger:   logging.WithComponent("mirror").With().Str("sink", s.Name()).Logger(),
	}
}

// Enqueue buffers e for the next flush. CRITICAL events and full batches
// trigger an immediate flush.
func (m *Mirror) Enqueue(e audit.SecurityEvent) {
	m.mu.Lock()
	m.pending = append(m.pending, e)
	m.spillLocked()
	urgent := e.Severity == audit.SeverityCritical || len(m.pending) >= m.cfg.BatchSize
	m.updateGaugesLocked()
	m.mu.Unlock()

	if urgent {
		m.signal()
	}
}

func (m *Mirror) signal() {
	select {
	case m.flushNow <- struct{}{}:
	default:
	}
}

// Serve flushes on the interval and on demand until ctx is canceled,
// then makes one last bounded attempt to write what is buffered.
// It implements suture.Service.
func (m *Mirror) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.FlushInterval)
	defer ticker.Stop()

	m.logger.Info().
		Int("batch_size", m.cfg.BatchSize).
		Dur("flush_interval", m.cfg.FlushInterval).
		Msg("Event mirror started")

	for {
		select {
		case <-ctx.Done():
			m.drain()
			return ctx.Err()
		case <-ticker.C:
		case <-m.flushNow:
		}
		if err := m.Flush(ctx); err != nil && ctx.Err() == nil {
			m.logger.Error().Err(err).Int("pending", m.Stats().Pending).Msg("Event mirror flush failed")
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (m *Mirror) String() string {
	return "event-mirror"
}

func (m *Mirror) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.WriteTimeout)
	defer cancel()

	err := m.Flush(ctx)
	st := m.Stats()
	ev := m.logger.Info()
	if err != nil {
		ev = m.logger.Warn().Err(err)
	}
	ev.Int("pending", st.Pending).Int("fallback", st.Fallback).Msg("Event mirror stopped")
}

// Flush writes buffered events in batches until the buffer is empty or a
// write fails. After the buffer empties, the fallback store is retried.
func (m *Mirror) Flush(ctx context.Context) error {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	for {
		batch := m.take(false)
		if len(batch) == 0 {
			break
		}
		if err := m.write(ctx, batch); err != nil {
			m.requeue(batch, false)
			return err
		}
	}

	for {
		batch := m.take(true)
		if len(batch) == 0 {
			return nil
		}
		if err := m.write(ctx, batch); err != nil {
			m.requeue(batch, true)
			return err
		}
		m.logger.Info().Int("events", len(batch)).Msg("Recovered events from fallback store")
	}
}

func (m *Mirror) write(ctx context.Context, batch []audit.SecurityEvent) error {
	wctx, cancel := context.WithTimeout(ctx, m.cfg.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := m.sink.Write(wctx, batch)
	metrics.RecordSinkFlush(m.sink.Name(), len(batch), time.Since(start), err)

	m.mu.Lock()
	if err != nil {
		m.failures++
	} else {
		m.written += uint64(len(batch))
	}
	m.mu.Unlock()
	return err
}

// take removes up to BatchSize events from the front of a buffer.
func (m *Mirror) take(fromFallback bool) []audit.SecurityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := &m.pending
	if fromFallback {
		buf = &m.fallback
	}
	n := min(len(*buf), m.cfg.BatchSize)
	if n == 0 {
		return nil
	}
	batch := make([]audit.SecurityEvent, n)
	copy(batch, (*buf)[:n])
	*buf = append((*buf)[:0:0], (*buf)[n:]...)
	m.updateGaugesLocked()
	return batch
}

// requeue puts a failed batch back at the front of its buffer.
func (m *Mirror) requeue(batch []audit.SecurityEvent, toFallback bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if toFallback {
		m.fallback = append(batch, m.fallback...)
		m.trimFallbackLocked()
	} else {
		m.pending = append(batch, m.pending...)
		m.spillLocked()
	}
	m.updateGaugesLocked()
}

// spillLocked moves the oldest pending events into the fallback store
// while the buffer is over MaxPending.
func (m *Mirror) spillLocked() {
	over := len(m.pending) - m.cfg.MaxPending
	if over <= 0 {
		return
	}
	m.fallback = append(m.fallback, m.pending[:over]...)
	m.pending = append(m.pending[:0:0], m.pending[over:]...)
	m.trimFallbackLocked()
}

func (m *Mirror) trimFallbackLocked() {
	over := len(m.fallback) - m.cfg.FallbackSize
	if over <= 0 {
		return
	}
	m.fallback = append(m.fallback[:0:0], m.fallback[over:]...)
	m.evicted += uint64(over)
	metrics.MirrorFallbackEvictions.Add(float64(over))
}

func (m *Mirror) updateGaugesLocked() {
	metrics.UpdateMirrorGauges(len(m.pending), len(m.fallback))
}

// Stats returns buffer sizes and counters.
func (m *Mirror) Stats() MirrorStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MirrorStats{
		Sink:     m.sink.Name(),
		Pending:  len(m.pending),
		Fallback: len(m.fallback),
		Written:  m.written,
		Failures: m.failures,
		Evicted:  m.evicted,
	}
}

// Fallback returns a copy of the fallback store, oldest first.
func (m *Mirror) Fallback() []audit.SecurityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audit.SecurityEvent, len(m.fallback))
	copy(out, m.fallback)
	return out
}
