// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when an event kind is not part of the taxonomy.
var ErrUnknownKind = errors.New("unknown event kind")

// ErrUnknownSeverity is returned when a severity string cannot be parsed.
var ErrUnknownSeverity = errors.New("unknown severity")

// EventKind identifies a security-relevant occurrence.
// The set is closed: severity and risk tables key off these values.
type EventKind string

// Authentication events
const (
	KindLoginSuccess   EventKind = "LOGIN_SUCCESS"
	KindLoginFailed    EventKind = "LOGIN_FAILED"
	KindLogout         EventKind = "LOGOUT"
	KindPasswordChange EventKind = "PASSWORD_CHANGE"
	KindAccountLocked  EventKind = "ACCOUNT_LOCKED"
)

// Authorization events
const (
	KindPermissionDenied           EventKind = "PERMISSION_DENIED"
	KindRoleChanged                EventKind = "ROLE_CHANGED"
	KindPrivilegeEscalationAttempt EventKind = "PRIVILEGE_ESCALATION_ATTEMPT"
)

// Data access events
const (
	KindSensitiveDataAccess EventKind = "SENSITIVE_DATA_ACCESS"
	KindDataExport          EventKind = "DATA_EXPORT"
	KindBulkDataAccess      EventKind = "BULK_DATA_ACCESS"
)

// Attack signatures
const (
	KindSuspiciousActivity  EventKind = "SUSPICIOUS_ACTIVITY"
	KindRateLimitExceeded   EventKind = "RATE_LIMIT_EXCEEDED"
	KindInvalidToken        EventKind = "INVALID_TOKEN"
	KindCSRFAttempt         EventKind = "CSRF_ATTEMPT"
	KindXSSAttempt          EventKind = "XSS_ATTEMPT"
	KindSQLInjectionAttempt EventKind = "SQL_INJECTION_ATTEMPT"
)

// System operations
const (
	KindSystemAccess EventKind = "SYSTEM_ACCESS"
	KindConfigChange EventKind = "CONFIG_CHANGE"
	KindBackupAccess EventKind = "BACKUP_ACCESS"
)

// File handling
const (
	KindFileUpload            EventKind = "FILE_UPLOAD"
	KindFileDownload          EventKind = "FILE_DOWNLOAD"
	KindMaliciousFileDetected EventKind = "MALICIOUS_FILE_DETECTED"
)

// Category groups event kinds for reporting.
type Category string

const (
	CategoryAuthentication Category = "authentication"
	CategoryAuthorization  Category = "authorization"
	CategoryDataAccess     Category = "data_access"
	CategoryAttack         Category = "attack"
	CategorySystem         Category = "system"
	CategoryFile           Category = "file"
)

// allKinds lists the taxonomy in declaration order.
var allKinds = []EventKind{
	KindLoginSuccess, KindLoginFailed, KindLogout, KindPasswordChange, KindAccountLocked,
	KindPermissionDenied, KindRoleChanged, KindPrivilegeEscalationAttempt,
	KindSensitiveDataAccess, KindDataExport, KindBulkDataAccess,
	KindSuspiciousActivity, KindRateLimitExceeded, KindInvalidToken,
	KindCSRFAttempt, KindXSSAttempt, KindSQLInjectionAttempt,
	KindSystemAccess, KindConfigChange, KindBackupAccess,
	KindFileUpload, KindFileDownload, KindMaliciousFileDetected,
}

var kindCategory = map[EventKind]Category{
	KindLoginSuccess:               CategoryAuthentication,
	KindLoginFailed:                CategoryAuthentication,
	KindLogout:                     CategoryAuthentication,
	KindPasswordChange:             CategoryAuthentication,
	KindAccountLocked:              CategoryAuthentication,
	KindPermissionDenied:           CategoryAuthorization,
	KindRoleChanged:                CategoryAuthorization,
	KindPrivilegeEscalationAttempt: CategoryAuthorization,
	KindSensitiveDataAccess:        CategoryDataAccess,
	KindDataExport:                 CategoryDataAccess,
	KindBulkDataAccess:             CategoryDataAccess,
	KindSuspiciousActivity:         CategoryAttack,
	KindRateLimitExceeded:          CategoryAttack,
	KindInvalidToken:               CategoryAttack,
	KindCSRFAttempt:                CategoryAttack,
	KindXSSAttempt:                 CategoryAttack,
	KindSQLInjectionAttempt:        CategoryAttack,
	KindSystemAccess:               CategorySystem,
	KindConfigChange:               CategorySystem,
	KindBackupAccess:               CategorySystem,
	KindFileUpload:                 CategoryFile,
	KindFileDownload:               CategoryFile,
	KindMaliciousFileDetected:      CategoryFile,
}

// AllKinds returns every event kind in taxonomy order.
func AllKinds() []EventKind {
	out := make([]EventKind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether k belongs to the taxonomy.
func (k EventKind) Valid() bool {
	_, ok := kindCategory[k]
	return ok
}

// Category returns the group k belongs to, or "" for unknown kinds.
func (k EventKind) Category() Category {
	return kindCategory[k]
}

// String implements fmt.Stringer.
func (k EventKind) String() string {
	return string(k)
}

// ParseKind converts s to an EventKind. Matching is case-insensitive.
func ParseKind(s string) (EventKind, error) {
	k := EventKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Severity is the coarse danger level of an event, derived from its kind.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severities returns all severities in ascending order.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// Rank orders severities; unknown values rank below LOW.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// ParseSeverity converts s to a Severity. Matching is case-insensitive.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if sev.Rank() == 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
	}
	return sev, nil
}
