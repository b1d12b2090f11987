// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package blocklist keeps time-bounded user and IP blocks.
//
// A subject is either unblocked (absent) or blocked until a deadline. All
// deadlines live in one keyed min-heap; the owner drives expiry by
// sleeping until NextExpiry and calling ExpireDue.
package blocklist
