// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package scoring assigns severity and a 0-100 risk score to draft
// security events.
//
// Severity is a static function of the event kind. The risk score starts
// from a per-kind base and adds fixed weights for contextual signals:
//
//	repetition          min(attemptCount*10, 50) when attemptCount > 1
//	off hours           +15 before 06:00 or from 23:00
//	malicious source    +40 for denylisted, blocked or unexpected internal addresses
//	unusual location    +20 for a new high-risk network once 5 are on record
//	suspicious agent    +25 for automation user agents
//
// The result is clamped to [0, 100]. Every table is configuration, so the
// same input always produces the same score and Assessment.Factors
// explains it.
package scoring
