// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package validation wraps go-playground/validator for request bodies and
configuration structs.

Besides the built-in tags it registers:

	eventkind   a known security event type (LOGIN_FAILED, ...)
	severity    LOW, MEDIUM, HIGH or CRITICAL, any case
	timerange   hour, day, week or month

Field names in errors come from json tags, falling back to koanf tags, so
a failing config reads "sink.batch_size must be at least 1":

	type ingestRequest struct {
		Type string `json:"type" validate:"required,eventkind"`
	}

	if err := validation.ValidateStruct(&req); err != nil {
		var verr *validation.Error
		errors.As(err, &verr)
		respondError(w, http.StatusBadRequest, validation.CodeValidation, verr.Error(), verr.Details())
	}
*/
package validation
