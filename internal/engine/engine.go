// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package engine

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/blocklist"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/metrics"
	"github.com/tomtom215/sentinel/internal/scoring"
)

// Alerter receives every stored event and decides whether to alert.
// It must not block.
type Alerter interface {
	MaybeAlert(e *audit.SecurityEvent) bool
}

// Mirror receives a copy of every stored event for durable storage, in
// log order. Enqueue is called with the engine lock held, so it must not
// block or call back into the engine.
type Mirror interface {
	Enqueue(e audit.SecurityEvent)
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source (tests use audit.ManualClock).
func WithClock(c audit.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithAlerter sets the alert dispatcher.
func WithAlerter(a Alerter) Option {
	return func(e *Engine) { e.alerter = a }
}

// WithSink sets the event mirror.
func WithSink(m Mirror) Option {
	return func(e *Engine) { e.mirror = m }
}

// WithScorer replaces the scorer built from Config. The engine wires its
// blocklist into s, so s must not be shared with another engine.
func WithScorer(s *scoring.Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// WithAnomalyRules replaces the default anomaly rules.
func WithAnomalyRules(rules ...audit.AnomalyRule) Option {
	return func(e *Engine) { e.rules = rules }
}

// Engine is the ingestion facade. It scores events, maintains the
// blocklist, triggers alerts and keeps the bounded audit log.
//
// One RWMutex guards the log, the blocklist, the location history and
// the timestamp sequence; none of those types lock internally.
type Engine struct {
	cfg     Config
	clock   audit.Clock
	scorer  *scoring.Scorer
	alerter Alerter
	mirror  Mirror
	rules   []audit.AnomalyRule

	mu     sync.RWMutex
	log    *audit.Log
	blocks *blocklist.Store
	lastTS time.Time

	// wake interrupts Run when a block is scheduled.
	wake   chan struct{}
	logger zerolog.Logger
}

// New builds an engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		clock:  audit.SystemClock{},
		rules:  audit.DefaultAnomalyRules(),
		log:    audit.NewLog(cfg.MaxEvents),
		blocks: blocklist.NewStore(),
		wake:   make(chan struct{}, 1),
		logger: logging.WithComponent("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.scorer == nil {
		s, err := scoring.NewScorer(cfg.ScoringConfig())
		if err != nil {
			return nil, fmt.Errorf("build scorer: %w", err)
		}
		e.scorer = s
	}
	e.scorer.SetBlockChecker(e.blocks)
	return e, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// LogEvent records one security event and returns it.
//
// An unknown kind is rejected before anything is stored. Otherwise the
// event is scored, its user and IP are blocked when the score reaches the
// threshold, an alert is queued for HIGH and CRITICAL events, and the
// event is appended to the audit log. Alerting and mirroring are best
// effort and never fail the call.
func (e *Engine) LogEvent(kind audit.EventKind, details audit.Details, actx audit.Context) (audit.SecurityEvent, error) {
	draft, err := audit.NewDraft(kind, details, actx)
	if err != nil {
		metrics.RecordRejected("unknown_kind")
		return audit.SecurityEvent{}, err
	}

	e.mu.Lock()
	now := e.clock.Now()
	ts := e.nextTimestamp(now)
	assessment := e.scorer.Score(draft, now)
	blocked := assessment.RiskScore >= e.cfg.BlockThreshold

	var newBlocks []blocklist.BlockRecord
	if blocked {
		if actx.UserID != "" {
			newBlocks = append(newBlocks, e.blocks.BlockUser(actx.UserID, kind, now))
		}
		if actx.IPAddress != "" {
			newBlocks = append(newBlocks, e.blocks.BlockIP(actx.IPAddress, kind, now))
		}
	}

	event := draft.Finalize(newEventID(ts), ts, assessment.Severity, assessment.RiskScore, blocked)
	alerted := e.safeAlert(&event)
	evicted := e.log.Append(event)
	size := e.log.Len()
	activeUsers, activeIPs := e.blocks.Count(blocklist.ScopeUser), e.blocks.Count(blocklist.ScopeIP)
	// Enqueue never blocks; holding mu keeps mirror order equal to log order.
	if e.mirror != nil {
		e.mirror.Enqueue(event.Copy())
	}
	e.mu.Unlock()

	if len(newBlocks) > 0 {
		e.kick()
	}

	metrics.RecordEvent(string(event.Kind), string(event.Severity), event.RiskScore, blocked)
	factorNames := make([]string, 0, len(assessment.Factors))
	for _, f := range assessment.Factors[1:] {
		factorNames = append(factorNames, f.Name)
	}
	metrics.RecordFactors(factorNames)
	metrics.RecordLog(size, evicted)
	for i := range newBlocks {
		active := activeUsers
		if newBlocks[i].Scope == blocklist.ScopeIP {
			active = activeIPs
		}
		metrics.RecordBlock(string(newBlocks[i].Scope), string(kind), active)
	}

	e.logEvent(&event, newBlocks, alerted)
	return event.Copy(), nil
}

// nextTimestamp returns now at millisecond resolution, bumped so that
// timestamps strictly increase. Callers hold mu.
func (e *Engine) nextTimestamp(now time.Time) time.Time {
	ts := now.UTC().Truncate(time.Millisecond)
	if !ts.After(e.lastTS) {
		ts = e.lastTS.Add(time.Millisecond)
	}
	e.lastTS = ts
	return ts
}

// safeAlert shields ingestion from a misbehaving alerter.
func (e *Engine) safeAlert(event *audit.SecurityEvent) (alerted bool) {
	if e.alerter == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Str("event_id", event.ID).Msg("Alerter panicked")
			alerted = false
		}
	}()
	return e.alerter.MaybeAlert(event)
}

func (e *Engine) logEvent(event *audit.SecurityEvent, blocks []blocklist.BlockRecord, alerted bool) {
	var ev *zerolog.Event
	switch {
	case event.Blocked || event.Severity.AtLeast(audit.SeverityHigh):
		ev = e.logger.Warn()
	default:
		ev = e.logger.Debug()
	}
	ev = ev.Str("event_id", event.ID).
		Str("type", string(event.Kind)).
		Str("severity", string(event.Severity)).
		Int("risk_score", event.RiskScore).
		Bool("blocked", event.Blocked).
		Bool("alerted", alerted)
	if event.UserID != "" {
		ev = ev.Str("user_id", event.UserID)
	}
	if event.IPAddress != "" {
		ev = ev.Str("ip", event.IPAddress)
	}
	for i := range blocks {
		ev = ev.Time("block_until_"+string(blocks[i].Scope), blocks[i].BlockUntil)
	}
	ev.Msg("Security event recorded")
}

// newEventID returns "sec_<unix ms>_<9 base36 chars>".
func newEventID(ts time.Time) string {
	u := uuid.New()
	suffix := strconv.FormatUint(binary.BigEndian.Uint64(u[:8]), 36)
	if len(suffix) < 9 {
		suffix = strings.Repeat("0", 9-len(suffix)) + suffix
	}
	return fmt.Sprintf("sec_%d_%s", ts.UnixMilli(), suffix[:9])
}
