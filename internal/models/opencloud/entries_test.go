// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package opencloud

import (
	"testing"
)

func TestParseEntryKeyPage(t *testing.T) {
	t.Parallel()

	t.Run("keys with explicit scope", func(t *testing.T) {
		body := `{"keys":[{"scope":"global","key":"player_1"},{"scope":"special","key":"player_2"}],"nextPageCursor":"tok"}`
		page, ok := ParseEntryKeyPage([]byte(body))
		if !ok {
			t.Fatal("expected page, got absent")
		}
		if len(page.Keys) != 2 {
			t.Fatalf("expected 2 keys, got %d", len(page.Keys))
		}
		if page.Keys[1].Scope != "special" || page.Keys[1].Key != "player_2" {
			t.Errorf("unexpected second key %+v", page.Keys[1])
		}
		if page.NextPageCursor != "tok" {
			t.Errorf("expected cursor tok, got %q", page.NextPageCursor)
		}
	})

	t.Run("missing scope defaults to global", func(t *testing.T) {
		body := `{"keys":[{"key":"k1"}]}`
		page, ok := ParseEntryKeyPage([]byte(body))
		if !ok {
			t.Fatal("expected page, got absent")
		}
		if page.Keys[0].Scope != DefaultScope {
			t.Errorf("expected default scope, got %q", page.Keys[0].Scope)
		}
	})

	t.Run("keyless items are dropped", func(t *testing.T) {
		body := `{"keys":[{"scope":"global"},{"key":"kept"}]}`
		page, ok := ParseEntryKeyPage([]byte(body))
		if !ok {
			t.Fatal("expected page, got absent")
		}
		if len(page.Keys) != 1 || page.Keys[0].Key != "kept" {
			t.Errorf("expected only kept, got %+v", page.Keys)
		}
	})

	t.Run("absent cases", func(t *testing.T) {
		absent := []string{
			`not json`,
			`{}`,
			`{"keys":[]}`,
			`{"keys":[{"scope":"global"}]}`,
		}
		for _, body := range absent {
			if page, ok := ParseEntryKeyPage([]byte(body)); ok {
				t.Errorf("ParseEntryKeyPage(%q) = %+v, expected absent", body, page)
			}
		}
	})
}

func TestParseUserIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []int64
	}{
		{"two ids", `[123,456]`, []int64{123, 456}},
		{"one id", `[1]`, []int64{1}},
		{"empty array", `[]`, nil},
		{"empty string", ``, nil},
		{"malformed", `[123,`, nil},
		{"wrong type", `["abc"]`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUserIDs(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseUserIDs(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseUserIDs(%q)[%d] = %d, want %d", tt.raw, i, got[i], tt.want[i])
				}
			}
		})
	}
}
