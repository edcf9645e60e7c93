// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package opencloud

import (
	"github.com/goccy/go-json"
)

// EntryKey is one key coordinate within a standard datastore. The API does
// not echo the datastore name back, so it lives on the caller's side.
type EntryKey struct {
	Scope string
	Key   string
}

// EntryKeyPage is one page of the entry-key listing.
type EntryKeyPage struct {
	Keys           []EntryKey
	NextPageCursor string
}

// ParseEntryKeyPage decodes an entry-key-list response body. The scope
// field may be omitted by the server and defaults to "global"; the key
// field is required and keyless items are dropped.
func ParseEntryKeyPage(body []byte) (*EntryKeyPage, bool) {
	var raw struct {
		Keys []struct {
			Scope string  `json:"scope"`
			Key   *string `json:"key"`
		} `json:"keys"`
		NextPageCursor string `json:"nextPageCursor"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}
	if len(raw.Keys) == 0 {
		return nil, false
	}

	page := &EntryKeyPage{NextPageCursor: raw.NextPageCursor}
	for _, item := range raw.Keys {
		if item.Key == nil || *item.Key == "" {
			continue
		}
		scope := item.Scope
		if scope == "" {
			scope = DefaultScope
		}
		page.Keys = append(page.Keys, EntryKey{Scope: scope, Key: *item.Key})
	}
	if len(page.Keys) == 0 {
		return nil, false
	}
	return page, true
}

// DefaultScope is the namespace partition used when none is given.
const DefaultScope = "global"
