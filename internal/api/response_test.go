// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/validation"
)

func TestResponseWriter(t *testing.T) {
	tests := []struct {
		name    string
		write   func(rw *ResponseWriter)
		status  int
		success bool
		code    string
	}{
		{"success", func(rw *ResponseWriter) { rw.Success("ok") }, http.StatusOK, true, ""},
		{"created", func(rw *ResponseWriter) { rw.Created("ok") }, http.StatusCreated, true, ""},
		{"bad request", func(rw *ResponseWriter) { rw.BadRequest("nope") }, http.StatusBadRequest, false, ErrCodeBadRequest},
		{"unauthorized", func(rw *ResponseWriter) { rw.Unauthorized("who") }, http.StatusUnauthorized, false, ErrCodeUnauthorized},
		{"forbidden", func(rw *ResponseWriter) { rw.Forbidden("no") }, http.StatusForbidden, false, ErrCodeForbidden},
		{"too many", func(rw *ResponseWriter) { rw.TooManyRequests("slow") }, http.StatusTooManyRequests, false, ErrCodeTooManyRequests},
		{"internal", func(rw *ResponseWriter) { rw.InternalError("boom", errors.New("disk")) }, http.StatusInternalServerError, false, ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(logging.ContextWithRequestID(req.Context(), "rid-1"))
			rec := httptest.NewRecorder()
			tt.write(NewResponseWriter(rec, req))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var env envelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatal(err)
			}
			if env.Success != tt.success {
				t.Errorf("Success = %v, want %v", env.Success, tt.success)
			}
			if got := errCode(env); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
			if env.Meta == nil || env.Meta.RequestID != "rid-1" {
				t.Errorf("meta = %+v, want request_id rid-1", env.Meta)
			}
		})
	}
}

func TestInternalErrorDoesNotLeak(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponseWriter(rec, httptest.NewRequest(http.MethodGet, "/", nil)).InternalError("export failed", errors.New("secret path /var/lib/x"))
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Error.Message != "export failed" {
		t.Errorf("Message = %q, want the generic message only", env.Error.Message)
	}
}

func TestRespondInvalid_ValidationDetails(t *testing.T) {
	req := EventRequest{Type: "TELEPORT"}
	err := validation.ValidateStruct(&req)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}

	rec := httptest.NewRecorder()
	respondInvalid(NewResponseWriter(rec, httptest.NewRequest(http.MethodPost, "/", nil)), err)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Error == nil || env.Error.Code != ErrCodeValidationFailed {
		t.Fatalf("error = %+v, want VALIDATION_FAILED", env.Error)
	}
	details, ok := env.Error.Details.(map[string]any)
	if !ok || details["field"] != "type" {
		t.Errorf("details = %#v, want field type", env.Error.Details)
	}
}
