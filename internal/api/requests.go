// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/validation"
)

// EventRequest is the body of POST /events and POST /score.
type EventRequest struct {
	Type      string         `json:"type" validate:"required,eventkind"`
	Details   map[string]any `json:"details,omitempty"`
	UserID    string         `json:"userId,omitempty" validate:"max=256"`
	UserRole  string         `json:"userRole,omitempty" validate:"max=64"`
	IPAddress string         `json:"ipAddress,omitempty" validate:"omitempty,ip"`
	UserAgent string         `json:"userAgent,omitempty" validate:"max=1024"`
	Resource  string         `json:"resource,omitempty" validate:"max=2048"`
	Action    string         `json:"action,omitempty" validate:"max=256"`
}

// Context returns the actor context described by the request.
func (req *EventRequest) Context() audit.Context {
	return audit.Context{
		UserID:    req.UserID,
		UserRole:  req.UserRole,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Resource:  req.Resource,
		Action:    req.Action,
	}
}

// EventsQuery holds the query parameters of GET /events.
type EventsQuery struct {
	Type     string `json:"type" validate:"omitempty,eventkind"`
	Severity string `json:"severity" validate:"omitempty,severity"`
	UserID   string `json:"user_id" validate:"max=256"`
	Start    string `json:"start" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	End      string `json:"end" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit    int    `json:"limit" validate:"min=0,max=10000"`
}

// Filter converts the validated query into an audit filter.
func (q *EventsQuery) Filter() audit.Filter {
	f := audit.Filter{
		Kind:   audit.EventKind(q.Type),
		UserID: q.UserID,
		Limit:  q.Limit,
	}
	if q.Severity != "" {
		f.Severity, _ = audit.ParseSeverity(q.Severity)
	}
	if t, err := time.Parse(time.RFC3339, q.Start); err == nil {
		f.StartDate = &t
	}
	if t, err := time.Parse(time.RFC3339, q.End); err == nil {
		f.EndDate = &t
	}
	return f
}

// ArchiveQuery holds the query parameters of GET /archive.
type ArchiveQuery struct {
	Start string `json:"start" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	End   string `json:"end" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit int    `json:"limit" validate:"min=0,max=10000"`
}

// Range returns the requested window, defaulting to the last day.
func (q *ArchiveQuery) Range(now time.Time) (start, end time.Time) {
	end = now
	if t, err := time.Parse(time.RFC3339, q.End); err == nil {
		end = t
	}
	start = end.Add(-24 * time.Hour)
	if t, err := time.Parse(time.RFC3339, q.Start); err == nil {
		start = t
	}
	return start, end
}

var errBadBody = errors.New("request body must be a JSON object")

// decodeBody reads one JSON value from r into dst.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: body is empty", errBadBody)
		}
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// intParam returns the integer query parameter name, or def when absent.
func intParam(q url.Values, name string, def int) (int, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

// respondInvalid writes the 400 for a failed decode or validation.
func respondInvalid(rw *ResponseWriter, err error) {
	var verr *validation.Error
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &verr):
		rw.ValidationError(verr.Error(), verr.Details())
	case errors.As(err, &tooLarge):
		rw.Error(http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
	default:
		rw.BadRequest(err.Error())
	}
}
