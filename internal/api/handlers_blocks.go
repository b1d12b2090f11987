// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sentinel/internal/blocklist"
	"github.com/tomtom215/sentinel/internal/logging"
)

// ListBlocks handles GET /api/v1/blocks.
func (rt *Router) ListBlocks(w http.ResponseWriter, r *http.Request) {
	blocks := rt.engine.Blocks()
	NewResponseWriter(w, r).List(blocks, len(blocks))
}

func blockTarget(r *http.Request) (blocklist.Scope, string, error) {
	scope, err := blocklist.ParseScope(chi.URLParam(r, "scope"))
	if err != nil {
		return "", "", err
	}
	return scope, chi.URLParam(r, "subject"), nil
}

// GetBlock handles GET /api/v1/blocks/{scope}/{subject}.
func (rt *Router) GetBlock(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	scope, subject, err := blockTarget(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	rec, ok := rt.engine.Block(scope, subject)
	if !ok {
		rw.NotFound("no active block")
		return
	}
	rw.Success(rec)
}

// DeleteBlock handles DELETE /api/v1/blocks/{scope}/{subject}.
func (rt *Router) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	scope, subject, err := blockTarget(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	rec, ok := rt.engine.Unblock(scope, subject)
	if !ok {
		rw.NotFound("no active block")
		return
	}

	by := "anonymous"
	if c := ClaimsFromContext(r.Context()); c != nil {
		by = c.Subject
	}
	logging.Ctx(r.Context()).Info().
		Str("scope", string(scope)).
		Str("subject", subject).
		Str("lifted_by", by).
		Msg("Block lifted via API")
	rw.Success(rec)
}
