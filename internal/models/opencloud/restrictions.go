// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package opencloud

import (
	"github.com/goccy/go-json"
)

// UserRestriction is one row of a universe's ban list.
type UserRestriction struct {
	User          string
	Active        bool
	StartTime     string
	Duration      string
	PrivateReason string
	DisplayReason string
}

// UserRestrictionPage is one page of the ban-list listing. This family
// uses nextPageToken rather than nextPageCursor.
type UserRestrictionPage struct {
	Restrictions  []UserRestriction
	NextPageToken string
}

// ParseUserRestrictionPage decodes a user-restriction-list response body.
// The user reference is required; rows without one are dropped.
func ParseUserRestrictionPage(body []byte) (*UserRestrictionPage, bool) {
	var raw struct {
		UserRestrictions []struct {
			User                string `json:"user"`
			GameJoinRestriction *struct {
				Active        bool   `json:"active"`
				StartTime     string `json:"startTime"`
				Duration      string `json:"duration"`
				PrivateReason string `json:"privateReason"`
				DisplayReason string `json:"displayReason"`
			} `json:"gameJoinRestriction"`
		} `json:"userRestrictions"`
		NextPageToken string `json:"nextPageToken"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}
	if len(raw.UserRestrictions) == 0 {
		return nil, false
	}

	page := &UserRestrictionPage{NextPageToken: raw.NextPageToken}
	for _, item := range raw.UserRestrictions {
		if item.User == "" {
			continue
		}
		r := UserRestriction{User: item.User}
		if item.GameJoinRestriction != nil {
			r.Active = item.GameJoinRestriction.Active
			r.StartTime = item.GameJoinRestriction.StartTime
			r.Duration = item.GameJoinRestriction.Duration
			r.PrivateReason = item.GameJoinRestriction.PrivateReason
			r.DisplayReason = item.GameJoinRestriction.DisplayReason
		}
		page.Restrictions = append(page.Restrictions, r)
	}
	if len(page.Restrictions) == 0 {
		return nil, false
	}
	return page, true
}
