// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sentinel/internal/audit"
)

// MaxSummaryDays bounds the summary window.
const MaxSummaryDays = 365

// Stats handles GET /api/v1/stats?range=hour|day|week|month.
func (rt *Router) Stats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	tr, err := audit.ParseTimeRange(r.URL.Query().Get("range"))
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	rw.Success(rt.engine.GetSecurityStats(tr))
}

// Summary handles GET /api/v1/summary?days=N.
func (rt *Router) Summary(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	days, err := intParam(r.URL.Query(), "days", audit.DefaultSummaryDays)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if days < 1 || days > MaxSummaryDays {
		rw.BadRequest("days must be between 1 and 365")
		return
	}
	rw.Success(rt.engine.GetSecuritySummary(days))
}

// AnomalyReport is the body of GET /api/v1/anomalies/{userID}.
type AnomalyReport struct {
	UserID   string   `json:"userId"`
	Findings []string `json:"findings"`
}

// Anomalies handles GET /api/v1/anomalies/{userID}.
func (rt *Router) Anomalies(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	findings := rt.engine.DetectAnomalies(userID)
	if findings == nil {
		findings = []string{}
	}
	NewResponseWriter(w, r).Success(AnomalyReport{UserID: userID, Findings: findings})
}
