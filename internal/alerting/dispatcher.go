// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package alerting

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/metrics"
)

// ErrQueueFull is returned by Enqueue when the delivery queue has no room.
var ErrQueueFull = errors.New("alert queue full")

// Config configures a Dispatcher.
type Config struct {
	// QueueSize bounds the alerts waiting for delivery.
	QueueSize int

	// PublishTimeout bounds one Publish call on one channel.
	PublishTimeout time.Duration

	// Workers is the number of delivery goroutines.
	Workers int
}

// DefaultConfig returns a 256-alert queue, a 5s publish timeout and one
// worker.
func DefaultConfig() Config {
	return Config{
		QueueSize:      256,
		PublishTimeout: 5 * time.Second,
		Workers:        1,
	}
}

// Dispatcher turns HIGH and CRITICAL events into alerts and delivers them
// to every channel in the background. Enqueueing never blocks, and
// delivery failures are logged and counted but never reported back to
// the caller.
type Dispatcher struct {
	cfg      Config
	channels []Channel
	queue    chan AdminAlert
	logger   zerolog.Logger
}

// NewDispatcher returns a dispatcher delivering to channels. Serve must be
// running for queued alerts to be delivered.
func NewDispatcher(cfg Config, channels ...Channel) *Dispatcher {
	def := DefaultConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = def.PublishTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	return &Dispatcher{
		cfg:      cfg,
		channels: channels,
		queue:    make(chan AdminAlert, cfg.QueueSize),
		logger:   logging.WithComponent("alerting"),
	}
}

// MaybeAlert queues an alert for e when its severity is HIGH or
// CRITICAL. It reports whether an alert was queued.
func (d *Dispatcher) MaybeAlert(e *audit.SecurityEvent) bool {
	if !ShouldAlert(e.Severity) {
		return false
	}
	if err := d.Enqueue(NewAlert(e)); err != nil {
		d.logger.Warn().
			Str("event_id", e.ID).
			Str("type", string(e.Kind)).
			Msg("Alert queue full, dropping alert")
		return false
	}
	return true
}

// Enqueue queues alert without blocking.
func (d *Dispatcher) Enqueue(alert AdminAlert) error {
	select {
	case d.queue <- alert:
		metrics.RecordAlertQueued(string(alert.Severity), len(d.queue))
		return nil
	default:
		metrics.RecordAlertDropped()
		return ErrQueueFull
	}
}

// Pending returns the number of queued alerts.
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

// Channels returns the configured channel names.
func (d *Dispatcher) Channels() []string {
	names := make([]string, len(d.channels))
	for i, c := range d.channels {
		names[i] = c.Name()
	}
	return names
}

// Serve delivers queued alerts until ctx is canceled. It implements
// suture.Service.
func (d *Dispatcher) Serve(ctx context.Context) error {
	d.logger.Info().
		Int("workers", d.cfg.Workers).
		Strs("channels", d.Channels()).
		Msg("Alert dispatcher started")

	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx)
		}()
	}
	wg.Wait()

	d.logger.Info().Int("undelivered", len(d.queue)).Msg("Alert dispatcher stopped")
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (d *Dispatcher) String() string {
	return "alert-dispatcher"
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		// Shutdown wins over pending alerts.
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case alert := <-d.queue:
			metrics.AlertQueueDepth.Set(float64(len(d.queue)))
			d.Deliver(ctx, alert)
		}
	}
}

// Deliver publishes alert to every channel, each bounded by the publish
// timeout. One failing channel does not stop the others.
func (d *Dispatcher) Deliver(ctx context.Context, alert AdminAlert) {
	for _, ch := range d.channels {
		pctx, cancel := context.WithTimeout(ctx, d.cfg.PublishTimeout)
		err := ch.Publish(pctx, alert)
		cancel()

		metrics.RecordAlertDelivery(ch.Name(), err)
		if err != nil {
			d.logger.Error().Err(err).
				Str("channel", ch.Name()).
				Str("event_id", alert.EventID).
				Msg("Alert delivery failed")
		}
	}
}
