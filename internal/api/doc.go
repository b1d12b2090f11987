// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package api exposes the audit engine over HTTP.

Routes (all JSON unless noted):

	POST   /api/v1/events                    ingest an event (201)
	POST   /api/v1/score                     dry-run scoring, nothing stored
	GET    /api/v1/events                    ?type=&severity=&user_id=&start=&end=&limit=
	GET    /api/v1/stats                     ?range=hour|day|week|month
	GET    /api/v1/summary                   ?days=N
	GET    /api/v1/anomalies/{userID}
	GET    /api/v1/export                    ?format=json|csv (file download)
	GET    /api/v1/archive                   ?start=&end=&limit= (durable store)
	GET    /api/v1/blocks
	GET    /api/v1/blocks/{scope}/{subject}
	DELETE /api/v1/blocks/{scope}/{subject}  admin only
	GET    /api/v1/alerts/recent             ?limit=N
	GET    /api/v1/alerts/stream             websocket
	GET    /api/v1/health
	GET    /metrics                          Prometheus

Responses use the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "VALIDATION_FAILED", "message": "..."}}

# Security

When a JWT secret is configured every route except health and metrics
needs an HS256 bearer token whose claims carry "sub" and "role". Roles are
checked with casbin against the embedded policy.csv:

	analyst  GET on everything, POST /score
	ingest   POST /events
	admin    both of the above, plus DELETE /blocks/...

The API feeds the engine it serves. A presented but invalid token is
recorded as INVALID_TOKEN, a policy denial as PERMISSION_DENIED and a
rate-limit rejection as RATE_LIMIT_EXCEEDED, so abusive callers are scored
and eventually blocked like any other source. Requests from blocked
addresses are refused with 403 BLOCKED before authentication.
*/
package api
