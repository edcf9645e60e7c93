// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package opencloud

import (
	"github.com/goccy/go-json"
)

// EntryVersionPage is one page of an entry's version history.
type EntryVersionPage struct {
	Versions       []EntryVersion
	NextPageCursor string
}

// ParseEntryVersionPage decodes a version-list response body. The version
// token is required; rows without one are dropped.
func ParseEntryVersionPage(body []byte) (*EntryVersionPage, bool) {
	var raw struct {
		Versions []struct {
			Version           *string `json:"version"`
			Deleted           bool    `json:"deleted"`
			ContentLength     int64   `json:"contentLength"`
			CreatedTime       string  `json:"createdTime"`
			ObjectCreatedTime string  `json:"objectCreatedTime"`
		} `json:"versions"`
		NextPageCursor string `json:"nextPageCursor"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}
	if len(raw.Versions) == 0 {
		return nil, false
	}

	page := &EntryVersionPage{NextPageCursor: raw.NextPageCursor}
	for _, item := range raw.Versions {
		if item.Version == nil || *item.Version == "" {
			continue
		}
		page.Versions = append(page.Versions, EntryVersion{
			Version:           *item.Version,
			Deleted:           item.Deleted,
			ContentLength:     item.ContentLength,
			CreatedTime:       item.CreatedTime,
			ObjectCreatedTime: item.ObjectCreatedTime,
		})
	}
	if len(page.Versions) == 0 {
		return nil, false
	}
	return page, true
}
