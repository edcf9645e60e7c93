// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package opencloud

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ClassifyValue inspects a raw payload string and returns its entry type
// together with the display form. It never fails; inputs matching no rule
// fall through to EntryTypeError with the raw payload as display.
//
// Precedence (first match wins):
//  1. JSON object or array  -> Json, display = raw
//  2. JSON-quoted string    -> String, display = unquoted value
//  3. numeric literal       -> Number, display = raw
//  4. literal true/false    -> Bool, display = raw
//
// The ordering is load-bearing: a quoted literal like "123" must be
// unwrapped as a String before the numeric check runs, and a bare 123
// must reach the numeric check instead of being treated as a string.
func ClassifyValue(raw string) (EntryType, string) {
	if isJSONContainer(raw) {
		return EntryTypeJSON, raw
	}
	if s, ok := DecodeStringValue(raw); ok {
		return EntryTypeString, s
	}
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return EntryTypeNumber, raw
	}
	if raw == "true" || raw == "false" {
		return EntryTypeBool, raw
	}
	return EntryTypeError, raw
}

// NumericValue returns the payload parsed as a float64 when the raw form
// is numeric-parseable, for the export sink's numeric column.
func NumericValue(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// EncodeStringValue wraps a plain string as the JSON string literal the
// API stores. The inverse of DecodeStringValue.
func EncodeStringValue(s string) string {
	// Encoding a string cannot fail; escaping is the whole point.
	data, _ := json.Marshal(s)
	return string(data)
}

// DecodeStringValue unwraps a double-quoted JSON string literal. Returns
// false when the input is not exactly one quoted string.
func DecodeStringValue(raw string) (string, bool) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", false
	}
	// Re-parse through a single-field wrapper object so trailing garbage
	// after the closing quote is rejected rather than ignored.
	var wrapper struct {
		V *string `json:"v"`
	}
	dec := json.NewDecoder(strings.NewReader(`{"v":` + raw + `}`))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wrapper); err != nil {
		return "", false
	}
	if wrapper.V == nil {
		return "", false
	}
	return *wrapper.V, true
}

// isJSONContainer reports whether raw parses as a JSON object or array.
func isJSONContainer(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return false
	}
	return json.Valid([]byte(raw))
}
