// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package engine

import (
	"fmt"

	"github.com/tomtom215/sentinel/internal/audit"
)

// DataAction names a change made to application data.
type DataAction string

const (
	DataCreated  DataAction = "data_created"
	DataUpdated  DataAction = "data_updated"
	DataDeleted  DataAction = "data_deleted"
	DataExported DataAction = "data_exported"
	DataBulkRead DataAction = "data_bulk_read"
)

// Kind returns the event kind recorded for a.
func (a DataAction) Kind() (audit.EventKind, error) {
	switch a {
	case DataCreated, DataUpdated, DataDeleted:
		return audit.KindSensitiveDataAccess, nil
	case DataExported:
		return audit.KindDataExport, nil
	case DataBulkRead:
		return audit.KindBulkDataAccess, nil
	default:
		return "", fmt.Errorf("unknown data action %q", string(a))
	}
}

// LogLogin records a successful or failed login.
func (e *Engine) LogLogin(success bool, actx audit.Context) (audit.SecurityEvent, error) {
	kind := audit.KindLoginFailed
	if success {
		kind = audit.KindLoginSuccess
	}
	return e.LogEvent(kind, nil, actx)
}

// LogAccessDenied records a failed authorization check.
func (e *Engine) LogAccessDenied(actx audit.Context, reason string) (audit.SecurityEvent, error) {
	var details audit.Details
	if reason != "" {
		details = audit.Details{"reason": reason}
	}
	return e.LogEvent(audit.KindPermissionDenied, details, actx)
}

// LogPermissionChange records a role change on userID. actx describes
// the actor; its UserID is replaced by the affected user.
func (e *Engine) LogPermissionChange(userID, fromRole, toRole, changedBy string, actx audit.Context) (audit.SecurityEvent, error) {
	actx.UserID = userID
	details := audit.Details{
		"fromRole": fromRole,
		"toRole":   toRole,
	}
	if changedBy != "" {
		details["changedBy"] = changedBy
	}
	return e.LogEvent(audit.KindRoleChanged, details, actx)
}

// LogDataChange records access to or modification of application data.
// metadata is copied into the event details.
func (e *Engine) LogDataChange(action DataAction, actx audit.Context, metadata map[string]any) (audit.SecurityEvent, error) {
	kind, err := action.Kind()
	if err != nil {
		return audit.SecurityEvent{}, err
	}
	details := make(audit.Details, len(metadata)+1)
	for k, v := range metadata {
		details[k] = v
	}
	actx.Action = string(action)
	return e.LogEvent(kind, details, actx)
}
