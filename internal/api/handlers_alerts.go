// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import "net/http"

// RecentAlerts handles GET /api/v1/alerts/recent?limit=N, newest first.
// limit=0 returns everything held.
func (rt *Router) RecentAlerts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if rt.deps.Alerts == nil {
		rw.ServiceUnavailable("alert history not configured")
		return
	}

	limit, err := intParam(r.URL.Query(), "limit", 50)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if limit < 0 {
		rw.BadRequest("limit must not be negative")
		return
	}

	alerts := rt.deps.Alerts.Recent(limit)
	rw.List(alerts, len(alerts))
}

// AlertStream handles GET /api/v1/alerts/stream, upgrading to a websocket
// that receives every dispatched alert.
func (rt *Router) AlertStream(w http.ResponseWriter, r *http.Request) {
	if rt.deps.Stream == nil {
		NewResponseWriter(w, r).ServiceUnavailable("alert stream disabled")
		return
	}
	rt.deps.Stream.ServeHTTP(w, r)
}
