// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/sentinel/internal/sink"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status        string            `json:"status"`
	Uptime        float64           `json:"uptime_seconds"`
	EventsStored  int               `json:"events_stored"`
	EventsTotal   uint64            `json:"events_total"`
	ActiveBlocks  int               `json:"active_blocks"`
	AuthEnabled   bool              `json:"auth_enabled"`
	StreamClients *int              `json:"stream_clients,omitempty"`
	AlertQueue    *int              `json:"alert_queue,omitempty"`
	Mirror        *sink.MirrorStats `json:"mirror,omitempty"`
}

// Health handles GET /api/v1/health. The status is "degraded" while the
// mirror is holding events in its fallback store.
func (rt *Router) Health(w http.ResponseWriter, r *http.Request) {
	h := HealthStatus{
		Status:       "healthy",
		Uptime:       time.Since(rt.startTime).Seconds(),
		EventsStored: rt.engine.Len(),
		EventsTotal:  rt.engine.Total(),
		ActiveBlocks: len(rt.engine.Blocks()),
		AuthEnabled:  rt.tokens != nil,
	}
	if rt.deps.Stream != nil {
		n := rt.deps.Stream.ClientCount()
		h.StreamClients = &n
	}
	if rt.deps.Queue != nil {
		n := rt.deps.Queue.Pending()
		h.AlertQueue = &n
	}
	if rt.deps.Mirror != nil {
		stats := rt.deps.Mirror.Stats()
		h.Mirror = &stats
		if stats.Fallback > 0 {
			h.Status = "degraded"
		}
	}
	NewResponseWriter(w, r).Success(h)
}
