// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ErrUnsupportedFormat is returned for an unknown export format.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format selects the export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// CSVHeader is the fixed first row of a CSV export.
var CSVHeader = []string{
	"ID", "Type", "Severity", "Timestamp", "User ID", "User Role",
	"IP Address", "Resource", "Action", "Risk Score", "Blocked",
}

// ISOTimestamp is the timestamp layout used in CSV exports.
const ISOTimestamp = "2006-01-02T15:04:05.000Z07:00"

// ParseFormat converts s to a Format. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Export encodes events in the given format, preserving their order.
func Export(events []SecurityEvent, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return exportJSON(events)
	case FormatCSV:
		return exportCSV(events)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
}

func exportJSON(events []SecurityEvent) ([]byte, error) {
	if events == nil {
		events = []SecurityEvent{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal events: %w", err)
	}
	return data, nil
}

func exportCSV(events []SecurityEvent) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i := range events {
		if err := w.Write(CSVRecord(&events[i])); err != nil {
			return nil, fmt.Errorf("write csv row %s: %w", events[i].ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// CSVRecord renders one event as a CSV row matching CSVHeader.
func CSVRecord(e *SecurityEvent) []string {
	return []string{
		e.ID,
		string(e.Kind),
		string(e.Severity),
		e.Timestamp.UTC().Format(ISOTimestamp),
		e.UserID,
		e.UserRole,
		e.IPAddress,
		e.Resource,
		e.Action,
		strconv.Itoa(e.RiskScore),
		strconv.FormatBool(e.Blocked),
	}
}
