// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package validation

import (
	"errors"
	"strings"
	"testing"
)

type ingestBody struct {
	Type      string `json:"type" validate:"required,eventkind"`
	Severity  string `json:"severity" validate:"omitempty,severity"`
	Range     string `json:"range" validate:"omitempty,timerange"`
	IPAddress string `json:"ipAddress" validate:"omitempty,ip"`
	UserID    string `json:"userId" validate:"max=8"`
}

type nested struct {
	Sink struct {
		BatchSize int `koanf:"batch_size" validate:"min=1"`
	} `koanf:"sink"`
}

func TestValidator_Singleton(t *testing.T) {
	if Validator() != Validator() {
		t.Error("Validator() returned different instances")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		body      ingestBody
		wantField string
		wantTag   string
	}{
		{"valid", ingestBody{Type: "LOGIN_FAILED", Severity: "high", Range: "week", IPAddress: "203.0.113.5"}, "", ""},
		{"missing type", ingestBody{}, "type", "required"},
		{"unknown type", ingestBody{Type: "LOGIN_MAYBE"}, "type", "eventkind"},
		{"bad severity", ingestBody{Type: "LOGOUT", Severity: "urgent"}, "severity", "severity"},
		{"bad range", ingestBody{Type: "LOGOUT", Range: "year"}, "range", "timerange"},
		{"bad ip", ingestBody{Type: "LOGOUT", IPAddress: "999.1.1.1"}, "ipAddress", "ip"},
		{"long user", ingestBody{Type: "LOGOUT", UserID: "abcdefghij"}, "userId", "max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.body)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() error = %v, want nil", err)
				}
				return
			}
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateStruct() error = %v, want *Error", err)
			}
			if len(verr.Fields) != 1 {
				t.Fatalf("Fields = %+v, want one", verr.Fields)
			}
			if verr.Fields[0].Field != tt.wantField || verr.Fields[0].Tag != tt.wantTag {
				t.Errorf("field/tag = %s/%s, want %s/%s", verr.Fields[0].Field, verr.Fields[0].Tag, tt.wantField, tt.wantTag)
			}
			if !strings.HasPrefix(verr.Error(), tt.wantField) {
				t.Errorf("Error() = %q, want it to start with %q", verr.Error(), tt.wantField)
			}
		})
	}
}

func TestValidateStruct_MultipleFields(t *testing.T) {
	err := ValidateStruct(&ingestBody{Type: "NOPE", Severity: "meh"})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("ValidateStruct() error = %v, want *Error", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("Fields = %d, want 2", len(verr.Fields))
	}
	if _, ok := verr.Details()["fields"]; !ok {
		t.Errorf("Details() = %v, want a fields key", verr.Details())
	}
	if !strings.Contains(verr.Error(), "; ") {
		t.Errorf("Error() = %q, want messages joined by '; '", verr.Error())
	}
}

func TestValidateStruct_NestedKoanfPath(t *testing.T) {
	var cfg nested
	err := ValidateStruct(&cfg)
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("ValidateStruct() error = %v, want *Error", err)
	}
	if got := verr.Fields[0].Field; got != "sink.batch_size" {
		t.Errorf("Field = %q, want sink.batch_size", got)
	}
	if got := verr.Error(); got != "sink.batch_size must be at least 1" {
		t.Errorf("Error() = %q", got)
	}
}
