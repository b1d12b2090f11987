// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package engine is the ingestion facade of the security audit engine.

An Engine owns the bounded audit log, the blocklist and the risk scorer.
LogEvent scores an event, blocks its user and source address when the
score reaches the threshold, hands HIGH and CRITICAL events to the alert
dispatcher and mirrors a copy to the durable sinks:

	eng, err := engine.New(engine.DefaultConfig(),
		engine.WithAlerter(dispatcher),
		engine.WithSink(mirror),
	)
	ev, err := eng.LogEvent(audit.KindLoginFailed,
		audit.Details{"attemptCount": 6},
		audit.Context{UserID: "u1", IPAddress: "10.0.0.5"})

Reads (GetEvents, GetSecurityStats, DetectAnomalies, ExportEvents) work
on a copy taken under the read lock. Run removes expired blocks and is
meant to be run under the supervisor tree.
*/
package engine
