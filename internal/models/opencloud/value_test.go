// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package opencloud

import (
	"testing"
)

func TestClassifyValuePrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		wantType    EntryType
		wantDisplay string
	}{
		{"json object", `{"a":1}`, EntryTypeJSON, `{"a":1}`},
		{"json array", `[1,2,3]`, EntryTypeJSON, `[1,2,3]`},
		{"json object leading space", ` {"a":1}`, EntryTypeJSON, ` {"a":1}`},
		{"quoted string", `"hello"`, EntryTypeString, "hello"},
		{"quoted numeric string", `"42"`, EntryTypeString, "42"},
		{"quoted with escapes", `"line\none"`, EntryTypeString, "line\none"},
		{"quoted empty", `""`, EntryTypeString, ""},
		{"bare integer", `42`, EntryTypeNumber, `42`},
		{"bare float", `3.14`, EntryTypeNumber, `3.14`},
		{"negative exponent", `-1.5e3`, EntryTypeNumber, `-1.5e3`},
		{"bool true", `true`, EntryTypeBool, `true`},
		{"bool false", `false`, EntryTypeBool, `false`},
		{"plain text", `not json or number`, EntryTypeError, `not json or number`},
		{"broken json", `{"a":`, EntryTypeError, `{"a":`},
		{"dangling quote", `"unterminated`, EntryTypeError, `"unterminated`},
		{"quoted with trailing junk", `"a" trailing`, EntryTypeError, `"a" trailing`},
		{"empty input", ``, EntryTypeError, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gotType, gotDisplay := ClassifyValue(tt.raw)
			if gotType != tt.wantType {
				t.Errorf("ClassifyValue(%q) type = %v, want %v", tt.raw, gotType, tt.wantType)
			}
			if gotDisplay != tt.wantDisplay {
				t.Errorf("ClassifyValue(%q) display = %q, want %q", tt.raw, gotDisplay, tt.wantDisplay)
			}
		})
	}
}

func TestClassifyValueIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{`{"a":1}`, `"42"`, `42`, `true`, `garbage`, ``}
	for _, raw := range inputs {
		t1, d1 := ClassifyValue(raw)
		t2, d2 := ClassifyValue(raw)
		if t1 != t2 || d1 != d2 {
			t.Errorf("ClassifyValue(%q) not deterministic: (%v,%q) vs (%v,%q)", raw, t1, d1, t2, d2)
		}
	}
}

func TestStringValueRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"plain",
		"with \"quotes\"",
		"newline\nand\ttab",
		"unicode: héllo wörld ✓",
		`backslash \ and slash /`,
		"{looks: like json}",
		"42",
	}

	for _, s := range inputs {
		encoded := EncodeStringValue(s)
		decoded, ok := DecodeStringValue(encoded)
		if !ok {
			t.Errorf("DecodeStringValue(EncodeStringValue(%q)) not decodable", s)
			continue
		}
		if decoded != s {
			t.Errorf("round trip mismatch: %q -> %q -> %q", s, encoded, decoded)
		}
	}
}

func TestDecodeStringValueRejects(t *testing.T) {
	t.Parallel()

	inputs := []string{
		``,
		`"`,
		`abc`,
		`42`,
		`"a","b":"c"`, // quoted but not a single string literal
		`"unterminated`,
	}

	for _, raw := range inputs {
		if got, ok := DecodeStringValue(raw); ok {
			t.Errorf("DecodeStringValue(%q) = %q, expected rejection", raw, got)
		}
	}
}

func TestNumericValue(t *testing.T) {
	t.Parallel()

	if v, ok := NumericValue("2.5"); !ok || v != 2.5 {
		t.Errorf("NumericValue(2.5) = %v, %v", v, ok)
	}
	if _, ok := NumericValue("abc"); ok {
		t.Error("NumericValue(abc) unexpectedly parsed")
	}
	if _, ok := NumericValue(`"2.5"`); ok {
		t.Error("NumericValue on quoted string unexpectedly parsed")
	}
}

func TestEntryTypeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  EntryType
		want string
	}{
		{EntryTypeJSON, "Json"},
		{EntryTypeString, "String"},
		{EntryTypeNumber, "Number"},
		{EntryTypeBool, "Bool"},
		{EntryTypeError, "Error"},
		{EntryType(99), "Error"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("EntryType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
