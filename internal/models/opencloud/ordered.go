// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package opencloud

import (
	"github.com/goccy/go-json"
)

// OrderedEntry is one id/value pair from an ordered datastore.
type OrderedEntry struct {
	ID    string
	Value int64
}

// OrderedEntryPage is one page of an ordered datastore listing.
// This family uses nextPageToken rather than nextPageCursor.
type OrderedEntryPage struct {
	Entries       []OrderedEntry
	NextPageToken string
}

// ParseOrderedEntryPage decodes an ordered-entry-list response body.
// The entry id is required; the value defaults to zero when absent since
// zero is a legal ordered value.
func ParseOrderedEntryPage(body []byte) (*OrderedEntryPage, bool) {
	var raw struct {
		Entries []struct {
			ID    *string `json:"id"`
			Value int64   `json:"value"`
		} `json:"entries"`
		NextPageToken string `json:"nextPageToken"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}
	if len(raw.Entries) == 0 {
		return nil, false
	}

	page := &OrderedEntryPage{NextPageToken: raw.NextPageToken}
	for _, item := range raw.Entries {
		if item.ID == nil || *item.ID == "" {
			continue
		}
		page.Entries = append(page.Entries, OrderedEntry{
			ID:    *item.ID,
			Value: item.Value,
		})
	}
	if len(page.Entries) == 0 {
		return nil, false
	}
	return page, true
}
