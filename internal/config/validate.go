// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/tomtom215/sentinel/internal/scoring"
	"github.com/tomtom215/sentinel/internal/validation"
)

// MinJWTSecretLength is the shortest secret accepted in production.
const MinJWTSecretLength = 32

// Validate checks field constraints first, then the rules that span
// several fields.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	checks := []func() error{
		c.validateAudit,
		c.validateWebhook,
		c.validateSink,
		c.validateSecurity,
	}
	var errs []error
	for _, check := range checks {
		if err := check(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IsProduction reports whether production checks apply.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) validateAudit() error {
	lists := []struct {
		name    string
		entries []string
	}{
		{"audit.denylist", c.Audit.Denylist},
		{"audit.high_risk_ranges", c.Audit.HighRiskRanges},
		{"audit.private_allowlist", c.Audit.PrivateAllowlist},
	}
	for _, l := range lists {
		if _, err := scoring.NewIPSet(l.entries); err != nil {
			return fmt.Errorf("%s: %w", l.name, err)
		}
	}
	return nil
}

func (c *Config) validateWebhook() error {
	w := c.Alerts.Webhook
	if !w.Enabled {
		return nil
	}
	if w.URL == "" {
		return errors.New("alerts.webhook.url is required when the webhook is enabled")
	}
	return validateHTTPURL(w.URL, "alerts.webhook.url")
}

func (c *Config) validateSink() error {
	s := &c.Sink
	if s.UsesBadger() && !s.Badger.InMemory && s.Badger.Path == "" {
		return errors.New("sink.badger.path is required unless sink.badger.in_memory is set")
	}
	if s.UsesNATS() && !s.NATS.EmbeddedServer {
		if err := validateNATSURL(s.NATS.URL); err != nil {
			return fmt.Errorf("sink.nats.url is invalid: %w", err)
		}
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if !c.IsProduction() {
		return nil
	}
	if len(c.Security.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("security.jwt_secret must be at least %d characters in production", MinJWTSecretLength)
	}
	return nil
}

func validateHTTPURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", field)
	}
	return nil
}

func validateNATSURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	switch u.Scheme {
	case "nats", "tls", "ws", "wss":
	default:
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required (e.g., localhost:4222)")
	}
	return nil
}
