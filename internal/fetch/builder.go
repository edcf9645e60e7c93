// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package fetch

import (
	"crypto/md5" //nolint:gosec // integrity header mandated by the API, not a security control
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/keyscope/internal/models/opencloud"
)

// Credentials authenticate every request. Immutable once a descriptor is
// built from them.
type Credentials struct {
	// APIKey is the opaque bearer token sent as x-api-key.
	APIKey string

	// Production marks the target universe as production. Carried for
	// consumers that add confirmation friction; the engine ignores it.
	Production bool
}

// Coordinate identifies a target resource. Name covers the datastore,
// sorted map, or topic depending on the endpoint kind; not every kind
// uses every field.
type Coordinate struct {
	UniverseID int64
	Name       string
	Scope      string
	Key        string
}

// Kind selects the endpoint a descriptor is built for.
type Kind int

const (
	KindListDataStores Kind = iota
	KindListEntries
	KindGetEntry
	KindSetEntry
	KindDeleteEntry
	KindListVersions
	KindListOrderedEntries
	KindListSortedMapItems
	KindPublishMessage
	KindListUserRestrictions
)

// Page sizes are fixed per endpoint family.
const (
	datastorePageSize = 50
	entryPageSize     = 100
)

// BuildOptions carries the optional, per-call inputs of a descriptor.
type BuildOptions struct {
	// Prefix filters list results by name/key prefix.
	Prefix string

	// Descending orders ordered-datastore listings largest first.
	Descending bool

	// Body is the raw POST payload.
	Body []byte

	// UserIDs and Attributes become metadata headers on write, only when
	// non-empty.
	UserIDs    []int64
	Attributes string
}

// Request is a fully-formed HTTP request descriptor: method, final URL
// with query pre-encoded, headers, and optional body. Never mutated after
// Build returns; retries resend it verbatim.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Build maps (endpoint kind, credentials, coordinate, options, cursor) to
// an immutable request descriptor. Pure: no I/O, no shared state. Every
// user-supplied value ends up percent-encoded in the URL.
func Build(baseURL string, kind Kind, creds Credentials, coord Coordinate, opts BuildOptions, cursor string) (*Request, error) {
	universe := strconv.FormatInt(coord.UniverseID, 10)
	q := url.Values{}
	var method, path string
	var body []byte

	switch kind {
	case KindListDataStores:
		method = http.MethodGet
		path = "/standard-datastores/v1/universes/" + universe + "/standard-datastores"
		q.Set("limit", strconv.Itoa(datastorePageSize))
		if opts.Prefix != "" {
			q.Set("prefix", opts.Prefix)
		}

	case KindListEntries:
		method = http.MethodGet
		path = "/standard-datastores/v1/universes/" + universe + "/standard-datastores/datastore/entries"
		q.Set("datastoreName", coord.Name)
		q.Set("limit", strconv.Itoa(entryPageSize))
		// An omitted scope widens the listing instead of defaulting.
		if coord.Scope == "" {
			q.Set("AllScopes", "true")
		} else {
			q.Set("scope", coord.Scope)
		}
		if opts.Prefix != "" {
			q.Set("prefix", opts.Prefix)
		}

	case KindGetEntry, KindSetEntry, KindDeleteEntry:
		switch kind {
		case KindGetEntry:
			method = http.MethodGet
		case KindSetEntry:
			method = http.MethodPost
			body = opts.Body
		default:
			method = http.MethodDelete
		}
		path = "/standard-datastores/v1/universes/" + universe + "/standard-datastores/datastore/entries/entry"
		q.Set("datastoreName", coord.Name)
		q.Set("entryKey", coord.Key)
		q.Set("scope", scopeOrDefault(coord.Scope))

	case KindListVersions:
		method = http.MethodGet
		path = "/standard-datastores/v1/universes/" + universe + "/standard-datastores/datastore/entries/entry/versions"
		q.Set("datastoreName", coord.Name)
		q.Set("entryKey", coord.Key)
		q.Set("scope", scopeOrDefault(coord.Scope))
		q.Set("limit", strconv.Itoa(entryPageSize))

	case KindListOrderedEntries:
		method = http.MethodGet
		path = "/ordered-datastores/v1/universes/" + universe +
			"/orderedDataStores/" + url.PathEscape(coord.Name) +
			"/scopes/" + url.PathEscape(scopeOrDefault(coord.Scope)) + "/entries"
		q.Set("limit", strconv.Itoa(entryPageSize))
		if opts.Descending {
			q.Set("order_by", "desc")
		}

	case KindListSortedMapItems:
		method = http.MethodGet
		path = "/memory-store/v1/universes/" + universe +
			"/sorted-maps/" + url.PathEscape(coord.Name) + "/items"
		q.Set("limit", strconv.Itoa(entryPageSize))

	case KindPublishMessage:
		method = http.MethodPost
		path = "/messaging-service/v1/universes/" + universe +
			"/topics/" + url.PathEscape(coord.Name)
		payload, err := json.Marshal(map[string]string{"message": string(opts.Body)})
		if err != nil {
			return nil, fmt.Errorf("encode message payload: %w", err)
		}
		body = payload

	case KindListUserRestrictions:
		method = http.MethodGet
		path = "/universes/v1/universes/" + universe + "/user-restrictions"
		q.Set("limit", strconv.Itoa(entryPageSize))

	default:
		return nil, fmt.Errorf("unknown endpoint kind %d", kind)
	}

	if cursor != "" {
		q.Set("cursor", cursor)
	}

	fullURL := baseURL + path
	if encoded := q.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	header := http.Header{}
	header.Set("x-api-key", creds.APIKey)
	if method == http.MethodPost {
		header.Set("content-type", "application/json")
		header.Set("content-md5", contentMD5(body))
		if len(opts.UserIDs) > 0 {
			ids, err := json.Marshal(opts.UserIDs)
			if err != nil {
				return nil, fmt.Errorf("encode user ids: %w", err)
			}
			header.Set("roblox-entry-userids", string(ids))
		}
		if opts.Attributes != "" {
			header.Set("roblox-entry-attributes", opts.Attributes)
		}
	}

	return &Request{
		Method: method,
		URL:    fullURL,
		Header: header,
		Body:   body,
	}, nil
}

// contentMD5 returns the base64 MD5 digest of the exact bytes sent, for
// the API's integrity header.
func contentMD5(body []byte) string {
	sum := md5.Sum(body) //nolint:gosec // see import note
	return base64.StdEncoding.EncodeToString(sum[:])
}

func scopeOrDefault(scope string) string {
	if scope == "" {
		return opencloud.DefaultScope
	}
	return scope
}
