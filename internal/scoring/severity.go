// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package scoring

import "github.com/tomtom215/sentinel/internal/audit"

var criticalKinds = map[audit.EventKind]struct{}{
	audit.KindPrivilegeEscalationAttempt: {},
	audit.KindMaliciousFileDetected:      {},
	audit.KindSQLInjectionAttempt:        {},
}

var highKinds = map[audit.EventKind]struct{}{
	audit.KindPermissionDenied:   {},
	audit.KindSuspiciousActivity: {},
	audit.KindCSRFAttempt:        {},
	audit.KindXSSAttempt:         {},
	audit.KindAccountLocked:      {},
}

var mediumKinds = map[audit.EventKind]struct{}{
	audit.KindLoginFailed:         {},
	audit.KindRateLimitExceeded:   {},
	audit.KindInvalidToken:        {},
	audit.KindSensitiveDataAccess: {},
}

// Classify maps an event kind to its severity. Kinds outside the
// critical, high and medium sets are LOW.
func Classify(kind audit.EventKind) audit.Severity {
	if _, ok := criticalKinds[kind]; ok {
		return audit.SeverityCritical
	}
	if _, ok := highKinds[kind]; ok {
		return audit.SeverityHigh
	}
	if _, ok := mediumKinds[kind]; ok {
		return audit.SeverityMedium
	}
	return audit.SeverityLow
}

var baseScores = map[audit.EventKind]int{
	audit.KindLoginSuccess:               0,
	audit.KindLoginFailed:                20,
	audit.KindLogout:                     0,
	audit.KindPasswordChange:             10,
	audit.KindAccountLocked:              50,
	audit.KindPermissionDenied:           40,
	audit.KindRoleChanged:                30,
	audit.KindPrivilegeEscalationAttempt: 90,
	audit.KindSensitiveDataAccess:        30,
	audit.KindDataExport:                 40,
	audit.KindBulkDataAccess:             50,
	audit.KindSuspiciousActivity:         60,
	audit.KindRateLimitExceeded:          30,
	audit.KindInvalidToken:               25,
	audit.KindCSRFAttempt:                70,
	audit.KindXSSAttempt:                 70,
	audit.KindSQLInjectionAttempt:        90,
	audit.KindSystemAccess:               40,
	audit.KindConfigChange:               50,
	audit.KindBackupAccess:               60,
	audit.KindFileUpload:                 20,
	audit.KindFileDownload:               10,
	audit.KindMaliciousFileDetected:      95,
}

// BaseScore returns the starting risk score for kind.
func BaseScore(kind audit.EventKind) int {
	return baseScores[kind]
}
