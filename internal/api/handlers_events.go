// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/engine"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/validation"
)

func decodeEventRequest(r *http.Request) (*EventRequest, error) {
	var req EventRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// IngestEvent handles POST /api/v1/events.
func (rt *Router) IngestEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, err := decodeEventRequest(r)
	if err != nil {
		respondInvalid(rw, err)
		return
	}

	event, err := rt.engine.LogEvent(audit.EventKind(req.Type), req.Details, req.Context())
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	rw.Created(event)
}

// ScoreEvent handles POST /api/v1/score. Nothing is stored.
func (rt *Router) ScoreEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, err := decodeEventRequest(r)
	if err != nil {
		respondInvalid(rw, err)
		return
	}

	assessment, err := rt.engine.Score(audit.EventKind(req.Type), req.Details, req.Context())
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	rw.Success(assessment)
}

// ListEvents handles GET /api/v1/events.
func (rt *Router) ListEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q := r.URL.Query()

	limit, err := intParam(q, "limit", 100)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	query := EventsQuery{
		Type:     q.Get("type"),
		Severity: q.Get("severity"),
		UserID:   q.Get("user_id"),
		Start:    q.Get("start"),
		End:      q.Get("end"),
		Limit:    limit,
	}
	if err := validation.ValidateStruct(&query); err != nil {
		respondInvalid(rw, err)
		return
	}

	events := rt.engine.GetEvents(query.Filter())
	rw.List(events, len(events))
}

// ExportEvents handles GET /api/v1/export. The export itself is audited
// as a DATA_EXPORT event.
func (rt *Router) ExportEvents(w http.ResponseWriter, r *http.Request) {
	format, err := audit.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}

	data, err := rt.engine.ExportEvents(format)
	if err != nil {
		NewResponseWriter(w, r).InternalError("export failed", err)
		return
	}

	if _, err := rt.engine.LogDataChange(engine.DataExported, requestContext(r), map[string]any{
		"format": string(format),
		"rows":   rt.engine.Len(),
	}); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to audit export")
	}

	filename := fmt.Sprintf("security-events-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write export")
	}
}

// ArchiveEvents handles GET /api/v1/archive, a time-range read from the
// durable store rather than the in-memory log.
func (rt *Router) ArchiveEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if rt.deps.Archive == nil {
		rw.ServiceUnavailable("event archive not configured")
		return
	}

	q := r.URL.Query()
	limit, err := intParam(q, "limit", 1000)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	query := ArchiveQuery{Start: q.Get("start"), End: q.Get("end"), Limit: limit}
	if err := validation.ValidateStruct(&query); err != nil {
		respondInvalid(rw, err)
		return
	}

	start, end := query.Range(time.Now())
	events, err := rt.deps.Archive.QueryRange(r.Context(), start, end, query.Limit)
	if err != nil {
		rw.InternalError("archive query failed", err)
		return
	}
	rw.List(events, len(events))
}
