// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package sink mirrors recorded security events to durable storage.

The in-memory audit log is bounded, so a Mirror copies every event to a
Sink in the background:

  - BadgerSink stores events in an embedded badger database keyed by
    timestamp, with optional TTL retention and time range queries
  - NATSSink publishes events through watermill on per-category
    subjects (sentinel.events.<category>.<kind>)
  - Multi fans a batch out to several sinks

Events are buffered and written in batches of BatchSize, at least every
FlushInterval; CRITICAL events trigger an immediate flush. A failed batch
is put back at the front of the buffer and retried on the next flush.
When the buffer outgrows MaxPending the oldest events move to a fallback
store of FallbackSize entries, evicting oldest first, which is retried
after the buffer drains.

Mirroring is best effort: nothing here ever blocks or fails ingestion.
*/
package sink
