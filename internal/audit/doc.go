// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package audit defines the security event model and the read side of the
// audit trail.
//
// # Event Kinds
//
// Events belong to a closed taxonomy of 23 kinds grouped into six
// categories:
//
//   - authentication: LOGIN_SUCCESS, LOGIN_FAILED, LOGOUT, PASSWORD_CHANGE, ACCOUNT_LOCKED
//   - authorization: PERMISSION_DENIED, ROLE_CHANGED, PRIVILEGE_ESCALATION_ATTEMPT
//   - data_access: SENSITIVE_DATA_ACCESS, DATA_EXPORT, BULK_DATA_ACCESS
//   - attack: SUSPICIOUS_ACTIVITY, RATE_LIMIT_EXCEEDED, INVALID_TOKEN, CSRF_ATTEMPT, XSS_ATTEMPT, SQL_INJECTION_ATTEMPT
//   - system: SYSTEM_ACCESS, CONFIG_CHANGE, BACKUP_ACCESS
//   - file: FILE_UPLOAD, FILE_DOWNLOAD, MALICIOUS_FILE_DETECTED
//
// Unknown kinds are rejected with ErrUnknownKind.
//
// # Lifecycle
//
// A Draft carries the caller's kind, details and context. The ingestion
// engine scores it and calls Draft.Finalize exactly once; the resulting
// SecurityEvent is never modified afterwards. Read paths hand out copies.
//
// # Storage
//
// Log is a fixed-capacity ring buffer. Appending to a full log evicts the
// oldest event. Log has no locking of its own: the engine owns it and
// serializes writers while readers work on snapshots.
//
// # Queries
//
//	events := audit.Query(snapshot, audit.Filter{Kind: audit.KindLoginFailed, Limit: 50})
//	stats := audit.ComputeStats(snapshot, audit.RangeHour, clock.Now())
//	findings := audit.DetectAnomalies(snapshot, "u1", clock.Now(), audit.DefaultAnomalyRules())
//	data, err := audit.Export(audit.Query(snapshot, audit.Filter{}), audit.FormatCSV)
//
// Query results are ordered newest first. An inverted date range returns
// an empty result instead of an error.
package audit
