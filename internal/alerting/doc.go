// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package alerting builds administrator alerts for HIGH and CRITICAL
security events and delivers them in the background.

The ingestion path only ever calls Dispatcher.MaybeAlert, which enqueues
without blocking. Worker goroutines started by Serve publish each alert
to every Channel with a per-publish timeout:

  - LogChannel writes the alert to the structured log
  - WebhookChannel posts JSON behind a token bucket and circuit breaker
  - MemoryChannel keeps recent alerts for the API
  - websocket.Hub streams alerts to connected admin consoles

An alert RequiresAction when its risk score is at least 70 and is Urgent
when the event is CRITICAL or scored 90 or more. Urgent webhook deliveries
carry the X-Alert-Priority: urgent header.
*/
package alerting
