// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package logging provides the process-wide zerolog logger.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("addr", ":8080").Msg("HTTP server listening")
//	logging.Error().Err(err).Str("sink", "badger").Msg("Mirror write failed")
//	logging.Ctx(r.Context()).Warn().Msg("Access denied")
//
// Always terminate an event chain with Msg or Send; an unterminated chain
// is never written.
//
// # Adapters
//
// Two adapters route third-party logging into the same stream:
//
//   - SlogHandler, for libraries that take a *slog.Logger (sutureslog)
//   - WatermillAdapter, for the watermill NATS publisher
//
// # Fields
//
// Common field names: component, request_id, correlation_id, event_id,
// kind, severity, risk_score, user_id, ip, scope, channel, sink.
package logging
