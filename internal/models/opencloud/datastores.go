// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package opencloud

import (
	"github.com/goccy/go-json"
)

// DataStore is one standard datastore within a universe.
type DataStore struct {
	Name        string
	CreatedTime string
}

// DataStorePage is one page of the datastore listing.
type DataStorePage struct {
	DataStores     []DataStore
	NextPageCursor string
}

// ParseDataStorePage decodes a datastore-list response body.
// Returns (nil, false) for malformed bodies, a missing datastores field,
// or an empty list. Items without a name are dropped.
func ParseDataStorePage(body []byte) (*DataStorePage, bool) {
	var raw struct {
		Datastores []struct {
			Name        *string `json:"name"` // nullable under load, required
			CreatedTime string  `json:"createdTime"`
		} `json:"datastores"`
		NextPageCursor string `json:"nextPageCursor"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}
	if len(raw.Datastores) == 0 {
		return nil, false
	}

	page := &DataStorePage{NextPageCursor: raw.NextPageCursor}
	for _, item := range raw.Datastores {
		if item.Name == nil || *item.Name == "" {
			continue
		}
		page.DataStores = append(page.DataStores, DataStore{
			Name:        *item.Name,
			CreatedTime: item.CreatedTime,
		})
	}
	if len(page.DataStores) == 0 {
		return nil, false
	}
	return page, true
}
