// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package opencloud

import (
	"github.com/goccy/go-json"
)

// EntryType classifies a stored value by how its raw payload parses.
type EntryType int

const (
	// EntryTypeJSON is a JSON object or array payload.
	EntryTypeJSON EntryType = iota
	// EntryTypeString is a JSON-quoted string payload, stored unwrapped.
	EntryTypeString
	// EntryTypeNumber is a bare numeric literal.
	EntryTypeNumber
	// EntryTypeBool is the literal true or false.
	EntryTypeBool
	// EntryTypeError is the fallback for payloads matching no other rule.
	EntryTypeError
)

// String returns the display name used in exports and log output.
func (t EntryType) String() string {
	switch t {
	case EntryTypeJSON:
		return "Json"
	case EntryTypeString:
		return "String"
	case EntryTypeNumber:
		return "Number"
	case EntryTypeBool:
		return "Bool"
	default:
		return "Error"
	}
}

// DecodedEntry is a single key's stored value plus its coordinate and
// version metadata, fully classified. Constructed once from a successful
// detail response; treated as immutable afterwards.
type DecodedEntry struct {
	UniverseID int64
	Datastore  string
	Scope      string
	Key        string

	// Version is the server-issued version token for this value.
	Version string

	// CreatedTime and VersionCreatedTime are opaque server timestamp
	// strings; no local time-zone conversion is applied.
	CreatedTime        string
	VersionCreatedTime string

	// Raw is the response body exactly as received.
	Raw string

	// Display is the classified presentation form of Raw (unquoted for
	// String entries, identical to Raw otherwise).
	Display string

	Type EntryType

	// UserIDs and Attributes come from the detail response's metadata
	// headers and are empty when the entry carries none.
	UserIDs    []int64
	Attributes string
}

// EntryVersion is one row of an entry's version history. Timestamps are
// kept as the opaque strings the server sent.
type EntryVersion struct {
	Version           string `json:"version"`
	Deleted           bool   `json:"deleted"`
	ContentLength     int64  `json:"contentLength"`
	CreatedTime       string `json:"createdTime"`
	ObjectCreatedTime string `json:"objectCreatedTime"`
}

// ParseUserIDs decodes the user-ids metadata header, a JSON array of
// numeric ids. Malformed input yields nil rather than an error; metadata
// headers are advisory and must never fail an otherwise good response.
func ParseUserIDs(raw string) []int64 {
	if raw == "" {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}
