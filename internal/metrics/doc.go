// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package metrics defines the Prometheus collectors for the service.
//
// Collectors are package-level and registered with the default registry
// through promauto; the HTTP server exposes them at /metrics. Callers use
// the Record* helpers rather than touching label values directly.
//
// Alert delivery failures are always counted
// (sentinel_alert_delivery_failures_total{channel}), so a missed alert is
// observable even though it never fails ingestion.
package metrics
