// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sentinel/internal/alerting"
	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/engine"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/metrics"
	"github.com/tomtom215/sentinel/internal/sink"
)

// DefaultMaxBodyBytes bounds request bodies when Config leaves it unset.
const DefaultMaxBodyBytes = 1 << 20

// Config holds the HTTP surface settings.
type Config struct {
	// JWTSecret enables bearer authentication and role checks. Empty
	// leaves the API open.
	JWTSecret string
	TokenTTL  time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool

	CORSOrigins  []string
	MaxBodyBytes int64
}

// AlertHistory serves recently dispatched alerts.
type AlertHistory interface {
	Recent(n int) []alerting.AdminAlert
}

// AlertStream upgrades requests to a live alert feed.
type AlertStream interface {
	http.Handler
	ClientCount() int
}

// Archive answers time-range queries against durable storage.
type Archive interface {
	QueryRange(ctx context.Context, start, end time.Time, limit int) ([]audit.SecurityEvent, error)
}

// MirrorStatus reports the event mirror's buffers.
type MirrorStatus interface {
	Stats() sink.MirrorStats
}

// QueueStatus reports the alert queue depth.
type QueueStatus interface {
	Pending() int
}

// Deps are the components the API serves. Only Engine is required.
type Deps struct {
	Engine  *engine.Engine
	Alerts  AlertHistory
	Stream  AlertStream
	Archive Archive
	Mirror  MirrorStatus
	Queue   QueueStatus
}

// Router serves the HTTP API.
type Router struct {
	cfg           Config
	deps          Deps
	engine        *engine.Engine
	tokens        *TokenManager
	enforcer      *Enforcer
	chiMiddleware *ChiMiddleware
	startTime     time.Time
}

// NewRouter validates deps and builds the authentication stack.
func NewRouter(cfg Config, deps Deps) (*Router, error) {
	if deps.Engine == nil {
		return nil, errors.New("api: engine is required")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	rt := &Router{
		cfg:       cfg,
		deps:      deps,
		engine:    deps.Engine,
		startTime: time.Now(),
	}

	if cfg.JWTSecret != "" {
		tokens, err := NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			return nil, err
		}
		enforcer, err := NewEnforcer()
		if err != nil {
			return nil, err
		}
		rt.tokens = tokens
		rt.enforcer = enforcer
	} else {
		logging.Warn().Msg("JWT secret not configured; API authentication disabled")
	}

	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.CORSOrigins
	if cfg.RateLimitRequests > 0 {
		mwCfg.RateLimitRequests = cfg.RateLimitRequests
	}
	if cfg.RateLimitWindow > 0 {
		mwCfg.RateLimitWindow = cfg.RateLimitWindow
	}
	mwCfg.RateLimitDisabled = cfg.RateLimitDisabled
	mwCfg.RateLimitOnLimit = rt.onRateLimit
	rt.chiMiddleware = NewChiMiddleware(mwCfg)

	return rt, nil
}

// Tokens returns the token manager, or nil when authentication is off.
func (rt *Router) Tokens() *TokenManager {
	return rt.tokens
}

// Handler builds the route tree.
//
// Global middleware order: request ID, real IP, panic recovery, CORS,
// metrics. Everything under /api/v1 except health is additionally rate
// limited, then authenticated and authorized when a secret is
// configured. Read and admin routes refuse blocked addresses before
// authentication; POST /events and /score do not.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.chiMiddleware.CORS())
	r.Use(Metrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", rt.Health)

		r.Group(func(r chi.Router) {
			r.Use(rt.chiMiddleware.RateLimit())

			// Ingestion stays open to blocked addresses so reporters
			// sharing an address with an attacker keep recording.
			r.Group(func(r chi.Router) {
				rt.useAuth(r)
				r.Use(MaxBody(rt.cfg.MaxBodyBytes))
				r.Post("/events", rt.IngestEvent)
				r.Post("/score", rt.ScoreEvent)
			})

			r.Group(func(r chi.Router) {
				r.Use(rt.RejectBlocked)
				rt.useAuth(r)

				r.Get("/events", rt.ListEvents)
				r.Get("/export", rt.ExportEvents)
				r.Get("/archive", rt.ArchiveEvents)

				r.Get("/stats", rt.Stats)
				r.Get("/summary", rt.Summary)
				r.Get("/anomalies/{userID}", rt.Anomalies)

				r.Route("/blocks", func(r chi.Router) {
					r.Get("/", rt.ListBlocks)
					r.Get("/{scope}/{subject}", rt.GetBlock)
					r.Delete("/{scope}/{subject}", rt.DeleteBlock)
				})

				r.Get("/alerts/recent", rt.RecentAlerts)
				r.Get("/alerts/stream", rt.AlertStream)
			})
		})
	})

	return r
}

func (rt *Router) useAuth(r chi.Router) {
	if rt.tokens != nil {
		r.Use(rt.Authenticate)
		r.Use(rt.Authorize)
	}
}

// RejectBlocked refuses callers whose address is on the blocklist.
func (rt *Router) RejectBlocked(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := clientIP(r); rt.engine.IsIPBlocked(ip) {
			logging.Ctx(r.Context()).Debug().Str("ip", ip).Str("path", r.URL.Path).Msg("Refused blocked address")
			WriteError(w, r, http.StatusForbidden, ErrCodeBlocked, "address is blocked")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rt *Router) onRateLimit(w http.ResponseWriter, r *http.Request) {
	metrics.APIRateLimitHits.WithLabelValues(routePattern(r)).Inc()
	rt.record(r, audit.KindRateLimitExceeded, audit.Details{
		"limit":  rt.chiMiddleware.config.RateLimitRequests,
		"window": rt.chiMiddleware.config.RateLimitWindow.String(),
	}, requestContext(r))
	NewResponseWriter(w, r).TooManyRequests("rate limit exceeded")
}

// record ingests an event raised by the API itself. Failures are logged
// and never affect the response.
func (rt *Router) record(r *http.Request, kind audit.EventKind, details audit.Details, actx audit.Context) {
	if _, err := rt.engine.LogEvent(kind, details, actx); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("type", string(kind)).Msg("Failed to record API security event")
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
