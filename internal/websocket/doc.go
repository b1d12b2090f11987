// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package websocket streams security alerts to connected admin consoles.

Hub is an alerting.Channel: the alert dispatcher publishes into the hub's
buffered broadcast channel and the hub loop (Serve, run under the
supervisor) fans each message out to every client in connection order.
A client whose send buffer is full is disconnected rather than allowed to
stall the others.

Messages are JSON envelopes:

	{"type": "security_alert", "data": {...AdminAlert...}}

Consoles may send {"type": "ping"} and receive {"type": "pong"}; the
server also sends websocket ping frames every 54 seconds and closes
connections that miss the 60 second pong deadline.
*/
package websocket
