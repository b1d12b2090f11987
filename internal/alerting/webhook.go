// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package alerting

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/sentinel/internal/breaker"
)

// PriorityHeader is set to "urgent" on urgent alerts so the receiver can
// page instead of queueing.
const PriorityHeader = "X-Alert-Priority"

// ErrWebhookStatus is wrapped when the receiver answers with status >= 400.
var ErrWebhookStatus = errors.New("webhook returned error status")

// WebhookConfig configures the webhook channel.
type WebhookConfig struct {
	URL     string
	Headers map[string]string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// RatePerSecond and Burst feed a token bucket; 0 disables limiting.
	RatePerSecond float64
	Burst         int
}

// WebhookPayload is the JSON body posted to the receiver.
type WebhookPayload struct {
	Alert     AdminAlert `json:"alert"`
	EventType string     `json:"event_type"`
	Timestamp time.Time  `json:"timestamp"`
	Source    string     `json:"source"`
}

// WebhookChannel posts alerts to an HTTP endpoint behind a rate limiter
// and a circuit breaker.
type WebhookChannel struct {
	url     string
	headers map[string]string
	client  *http.Client
	limiter *rate.Limiter
	breaker *breaker.Breaker
	now     func() time.Time
}

// NewWebhookChannel returns a webhook channel for cfg.
func NewWebhookChannel(cfg WebhookConfig) (*WebhookChannel, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &WebhookChannel{
		url:     cfg.URL,
		headers: headers,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		breaker: breaker.New(breaker.DefaultConfig("alert-webhook")),
		now:     time.Now,
	}, nil
}

// Name implements Channel.
func (w *WebhookChannel) Name() string { return "webhook" }

// Publish implements Channel.
func (w *WebhookChannel) Publish(ctx context.Context, alert AdminAlert) error {
	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("webhook rate limit: %w", err)
		}
	}

	body, err := json.Marshal(WebhookPayload{
		Alert:     alert,
		EventType: "security_alert",
		Timestamp: w.now().UTC(),
		Source:    "sentinel",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	return w.breaker.Do(func() error {
		return w.post(ctx, body, alert.Urgent)
	})
}

func (w *WebhookChannel) post(ctx context.Context, body []byte, urgent bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}
	if urgent {
		req.Header.Set(PriorityHeader, "urgent")
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %d", ErrWebhookStatus, resp.StatusCode)
	}
	return nil
}

// BreakerState returns the circuit breaker state name.
func (w *WebhookChannel) BreakerState() string {
	return w.breaker.State()
}
