// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package sink

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/logging"
)

// Keys are "event:<unix nanos, zero padded>:<id>" so a prefix scan
// returns events in timestamp order.
const (
	eventPrefix = "event:"
	tsWidth     = 20
)

// BadgerConfig configures the badger sink.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in memory (tests).
	InMemory bool

	// SyncWrites fsyncs every batch.
	SyncWrites bool

	// Retention sets a TTL on stored events; 0 keeps them forever.
	Retention time.Duration

	// GCRatio is the value log GC discard ratio used by RunGC.
	GCRatio float64
}

// BadgerSink stores events in an embedded badger database and answers
// time range queries over them.
type BadgerSink struct {
	db        *badger.DB
	retention time.Duration
	gcRatio   float64

	mu     sync.RWMutex
	closed bool
}

// OpenBadger opens (or creates) the database described by cfg.
func OpenBadger(cfg BadgerConfig) (*BadgerSink, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger path is required")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	gcRatio := cfg.GCRatio
	if gcRatio <= 0 || gcRatio >= 1 {
		gcRatio = 0.5
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Dur("retention", cfg.Retention).
		Msg("Event store opened")
	return &BadgerSink{db: db, retention: cfg.Retention, gcRatio: gcRatio}, nil
}

// Name implements Sink.
func (b *BadgerSink) Name() string { return "badger" }

// Write implements Sink. The batch is committed in one transaction.
// Rewriting an event with the same ID and timestamp overwrites it.
func (b *BadgerSink) Write(ctx context.Context, events []audit.SecurityEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrSinkClosed
	}

	return b.db.Update(func(txn *badger.Txn) error {
		for i := range events {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := json.Marshal(&events[i])
			if err != nil {
				return fmt.Errorf("marshal event %s: %w", events[i].ID, err)
			}
			entry := badger.NewEntry(eventKey(&events[i]), data)
			if b.retention > 0 {
				entry = entry.WithTTL(b.retention)
			}
			if err := txn.SetEntry(entry); err != nil {
				return fmt.Errorf("store event %s: %w", events[i].ID, err)
			}
		}
		return nil
	})
}

// QueryRange returns stored events with start <= timestamp <= end, oldest
// first. A zero end means no upper bound; limit <= 0 means no limit.
func (b *BadgerSink) QueryRange(ctx context.Context, start, end time.Time, limit int) ([]audit.SecurityEvent, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrSinkClosed
	}

	var out []audit.SecurityEvent
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(eventPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(tsKey(start)); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var e audit.SecurityEvent
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(it.Item().Key())).Msg("Skipping unreadable stored event")
				continue
			}
			if !end.IsZero() && e.Timestamp.After(end) {
				break
			}
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return out, nil
}

// Count returns the number of stored events.
func (b *BadgerSink) Count() (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0, ErrSinkClosed
	}

	n := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(eventPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// RunGC reclaims value log space. It is a no-op when nothing could be
// rewritten.
func (b *BadgerSink) RunGC() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrSinkClosed
	}
	for {
		err := b.db.RunValueLogGC(b.gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Close implements Sink.
func (b *BadgerSink) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

func eventKey(e *audit.SecurityEvent) []byte {
	return []byte(fmt.Sprintf("%s%0*d:%s", eventPrefix, tsWidth, e.Timestamp.UnixNano(), e.ID))
}

// tsKey is the smallest key at or after t.
func tsKey(t time.Time) []byte {
	if t.IsZero() {
		return []byte(eventPrefix)
	}
	return []byte(fmt.Sprintf("%s%0*d", eventPrefix, tsWidth, t.UnixNano()))
}

// GCService runs value log GC on an interval under the supervisor.
type GCService struct {
	sink     *BadgerSink
	interval time.Duration
}

// NewGCService returns a GC loop for b; interval defaults to 10 minutes.
func NewGCService(b *BadgerSink, interval time.Duration) *GCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &GCService{sink: b, interval: interval}
}

// Serve implements suture.Service.
func (g *GCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := g.sink.RunGC(); err != nil {
				if errors.Is(err, ErrSinkClosed) {
					return err
				}
				logging.Warn().Err(err).Msg("Event store GC failed")
			}
		}
	}
}

// String implements fmt.Stringer.
func (g *GCService) String() string {
	return "badger-gc"
}
