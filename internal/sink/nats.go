// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/breaker"
)

// DefaultSubjectPrefix is the root subject events are published under.
const DefaultSubjectPrefix = "sentinel.events"

// NATSConfig configures the NATS sink.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// NATSSink publishes each event on "<prefix>.<category>.<kind>", e.g.
// sentinel.events.attack.sql_injection_attempt, so consumers can
// subscribe to a category with a wildcard.
type NATSSink struct {
	publisher message.Publisher
	prefix    string
	breaker   *breaker.Breaker

	mu     sync.RWMutex
	closed bool
}

// NewNATSSink connects a core NATS publisher through watermill.
func NewNATSSink(cfg NATSConfig, logger watermill.LoggerAdapter) (*NATSSink, error) {
	if cfg.URL == "" {
		return nil, errors.New("nats url is required")
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = DefaultSubjectPrefix
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = -1
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("sentinel"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &NATSSink{
		publisher: pub,
		prefix:    cfg.SubjectPrefix,
		breaker:   breaker.New(breaker.DefaultConfig("nats-mirror")),
	}, nil
}

// Name implements Sink.
func (n *NATSSink) Name() string { return "nats" }

// Subject returns the subject e is published on.
func (n *NATSSink) Subject(e *audit.SecurityEvent) string {
	return n.prefix + "." + string(e.Kind.Category()) + "." + strings.ToLower(string(e.Kind))
}

// Write implements Sink. The event ID is the message UUID, so consumers
// can drop duplicates from retried batches.
func (n *NATSSink) Write(ctx context.Context, events []audit.SecurityEvent) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrSinkClosed
	}

	return n.breaker.Do(func() error {
		for i := range events {
			if err := ctx.Err(); err != nil {
				return err
			}
			e := &events[i]
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("marshal event %s: %w", e.ID, err)
			}

			msg := message.NewMessage(e.ID, data)
			msg.Metadata.Set("type", string(e.Kind))
			msg.Metadata.Set("severity", string(e.Severity))
			if err := n.publisher.Publish(n.Subject(e), msg); err != nil {
				return fmt.Errorf("publish event %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

// Close implements Sink.
func (n *NATSSink) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	return n.publisher.Close()
}
