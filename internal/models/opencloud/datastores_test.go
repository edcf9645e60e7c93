// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package opencloud

import (
	"testing"
)

func TestParseDataStorePage(t *testing.T) {
	t.Parallel()

	t.Run("two datastores with cursor", func(t *testing.T) {
		body := `{"datastores":[{"name":"PlayerData","createdTime":"2023-01-01T00:00:00Z"},{"name":"Inventory"}],"nextPageCursor":"abc"}`
		page, ok := ParseDataStorePage([]byte(body))
		if !ok {
			t.Fatal("expected page, got absent")
		}
		if len(page.DataStores) != 2 {
			t.Fatalf("expected 2 datastores, got %d", len(page.DataStores))
		}
		if page.DataStores[0].Name != "PlayerData" {
			t.Errorf("expected PlayerData, got %q", page.DataStores[0].Name)
		}
		if page.DataStores[0].CreatedTime != "2023-01-01T00:00:00Z" {
			t.Errorf("unexpected createdTime %q", page.DataStores[0].CreatedTime)
		}
		if page.NextPageCursor != "abc" {
			t.Errorf("expected cursor abc, got %q", page.NextPageCursor)
		}
	})

	t.Run("items missing name are dropped", func(t *testing.T) {
		body := `{"datastores":[{"createdTime":"x"},{"name":"Kept"},{"name":""}]}`
		page, ok := ParseDataStorePage([]byte(body))
		if !ok {
			t.Fatal("expected page, got absent")
		}
		if len(page.DataStores) != 1 || page.DataStores[0].Name != "Kept" {
			t.Errorf("expected only Kept, got %+v", page.DataStores)
		}
	})

	t.Run("absent cases", func(t *testing.T) {
		absent := []string{
			``,
			`not json`,
			`{"datastores":`,
			`{}`,
			`{"datastores":[]}`,
			`{"datastores":[],"nextPageCursor":"abc"}`, // zero items terminate even with cursor
			`{"datastores":[{"createdTime":"only-bad-items"}]}`,
			`{"other":[{"name":"A"}]}`,
			`[]`,
			`42`,
		}
		for _, body := range absent {
			if page, ok := ParseDataStorePage([]byte(body)); ok {
				t.Errorf("ParseDataStorePage(%q) = %+v, expected absent", body, page)
			}
		}
	})
}
