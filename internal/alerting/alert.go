// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package alerting

import (
	"fmt"
	"time"

	"github.com/tomtom215/sentinel/internal/audit"
)

const (
	// RequiresActionScore is the risk score at which an operator is
	// expected to act on an alert.
	RequiresActionScore = 70

	// UrgentScore marks an alert urgent regardless of severity.
	UrgentScore = 90
)

// AdminAlert is the notification built for a HIGH or CRITICAL event.
// It is created once and never modified.
type AdminAlert struct {
	EventID        string          `json:"eventId"`
	Kind           audit.EventKind `json:"type"`
	Severity       audit.Severity  `json:"severity"`
	Timestamp      time.Time       `json:"timestamp"`
	Subject        string          `json:"subject,omitempty"`
	SourceAddress  string          `json:"sourceAddress,omitempty"`
	Resource       string          `json:"resource,omitempty"`
	RiskScore      int             `json:"riskScore"`
	Message        string          `json:"message"`
	RequiresAction bool            `json:"requiresAction"`
	Urgent         bool            `json:"urgent"`
}

// ShouldAlert reports whether events of severity s produce an alert.
func ShouldAlert(s audit.Severity) bool {
	return s.AtLeast(audit.SeverityHigh)
}

// NewAlert builds the alert for e. It does not check ShouldAlert.
func NewAlert(e *audit.SecurityEvent) AdminAlert {
	return AdminAlert{
		EventID:        e.ID,
		Kind:           e.Kind,
		Severity:       e.Severity,
		Timestamp:      e.Timestamp,
		Subject:        e.UserID,
		SourceAddress:  e.IPAddress,
		Resource:       e.Resource,
		RiskScore:      e.RiskScore,
		Message:        alertMessage(e),
		RequiresAction: e.RiskScore >= RequiresActionScore,
		Urgent:         e.Severity == audit.SeverityCritical || e.RiskScore >= UrgentScore,
	}
}

func alertMessage(e *audit.SecurityEvent) string {
	msg := fmt.Sprintf("%s security event %s (risk %d)", e.Severity, e.Kind, e.RiskScore)
	switch {
	case e.UserID != "" && e.IPAddress != "":
		msg += fmt.Sprintf(" by %s from %s", e.UserID, e.IPAddress)
	case e.UserID != "":
		msg += " by " + e.UserID
	case e.IPAddress != "":
		msg += " from " + e.IPAddress
	}
	if e.Blocked {
		msg += "; subject blocked"
	}
	return msg
}
