// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package cache holds the in-memory data structures behind scoring and the
blocklist.

  - LRU: bounded string-keyed map with least-recently-used eviction. The
    scorer keeps per-caller address history in one so the number of
    tracked callers cannot grow without limit.
  - ExpiryHeap: min-heap of deadlines keyed by string, with O(log n)
    replace and remove. The blocklist pops due entries from it instead of
    scanning every block.
  - Matcher: Aho-Corasick automaton for case-insensitive substring search
    over many patterns in one pass. Used for user-agent signatures.

LRU and Matcher are safe for concurrent use. ExpiryHeap is not; the
blocklist guards it with the same mutex as its record map.
*/
package cache
