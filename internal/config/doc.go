// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package config loads Sentinel's configuration.

Sources, lowest precedence first:
  - built-in defaults (defaultConfig)
  - an optional YAML file: $CONFIG_PATH, ./config.yaml or /etc/sentinel/config.yaml
  - environment variables

Only the variables listed in envMappings are read, so unrelated
environment entries never leak into the configuration. The most common:

	SENTINEL_BLOCK_THRESHOLD  risk score that blocks a subject (default 70)
	SENTINEL_MAX_EVENTS       audit log capacity (default 10000)
	SENTINEL_DENYLIST         comma-separated addresses and CIDRs
	ENVIRONMENT               development or production
	HTTP_PORT                 API port (default 8470)
	JWT_SECRET                API token secret; required in production
	SINK_TYPE                 none, badger, nats or both (default badger)
	BADGER_PATH               event store directory
	NATS_URL                  broker URL; NATS_EMBEDDED=true runs one in-process
	ALERT_WEBHOOK_URL         alert receiver; ALERT_WEBHOOK_HEADERS="K=V,K2=V2"
	LOG_LEVEL, LOG_FORMAT     logging

A YAML file uses the koanf paths directly:

	audit:
	  block_threshold: 60
	  denylist: [198.51.100.0/24]
	sink:
	  type: both
	  nats:
	    embedded_server: true

Validate applies the struct tags through the validation package and then
the cross-field rules (webhook URL when enabled, badger path unless in
memory, JWT secret length in production).
*/
package config
