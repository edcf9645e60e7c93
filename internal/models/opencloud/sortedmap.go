// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package opencloud

import (
	"github.com/goccy/go-json"
)

// SortedMapItem is one item of a memory-store sorted map. Value is kept
// as raw JSON text; items hold arbitrary payloads.
type SortedMapItem struct {
	ID         string
	Value      string
	SortKey    string
	ExpireTime string
}

// SortedMapItemPage is one page of a sorted-map listing. This family uses
// nextPageToken rather than nextPageCursor.
type SortedMapItemPage struct {
	Items         []SortedMapItem
	NextPageToken string
}

// ParseSortedMapItemPage decodes a sorted-map-item-list response body.
// The item id is required; id-less items are dropped.
func ParseSortedMapItemPage(body []byte) (*SortedMapItemPage, bool) {
	var raw struct {
		Items []struct {
			ID         *string         `json:"id"`
			Value      json.RawMessage `json:"value"`
			SortKey    string          `json:"sortKey"`
			ExpireTime string          `json:"expireTime"`
		} `json:"items"`
		NextPageToken string `json:"nextPageToken"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}
	if len(raw.Items) == 0 {
		return nil, false
	}

	page := &SortedMapItemPage{NextPageToken: raw.NextPageToken}
	for _, item := range raw.Items {
		if item.ID == nil || *item.ID == "" {
			continue
		}
		page.Items = append(page.Items, SortedMapItem{
			ID:         *item.ID,
			Value:      string(item.Value),
			SortKey:    item.SortKey,
			ExpireTime: item.ExpireTime,
		})
	}
	if len(page.Items) == 0 {
		return nil, false
	}
	return page, true
}
