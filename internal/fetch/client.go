// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package fetch

import (
	"context"
	"net/http"

	"github.com/tomtom215/keyscope/internal/models/opencloud"
)

// Detail response metadata header names.
const (
	headerEntryVersion            = "roblox-entry-version"
	headerEntryCreatedTime        = "roblox-entry-created-time"
	headerEntryVersionCreatedTime = "roblox-entry-version-created-time"
	headerEntryUserIDs            = "roblox-entry-userids"
	headerEntryAttributes         = "roblox-entry-attributes"
)

// Client exposes one typed method per endpoint of the cloud key-value
// API. Every method is one logical request: it owns its own retry and
// pagination state and may issue many physical calls. Methods are safe to
// run concurrently; each call gets a fresh operation.
//
// List methods take a max argument: a soft cap on accumulated results.
// 0 means walk all pages. The cap stops further page fetches once met
// but never truncates an already-received page.
type Client struct {
	eng     *Engine
	creds   Credentials
	coord   Coordinate // universe id only; per-call fields are overlaid
	baseURL string
}

// NewClient creates a client for one universe.
func NewClient(eng *Engine, baseURL string, creds Credentials, universeID int64) *Client {
	return &Client{
		eng:     eng,
		creds:   creds,
		coord:   Coordinate{UniverseID: universeID},
		baseURL: baseURL,
	}
}

// Engine returns the underlying request engine.
func (c *Client) Engine() *Engine {
	return c.eng
}

// build binds the client's base URL and credentials into the pure Build.
func (c *Client) build(kind Kind, coord Coordinate, opts BuildOptions, cursor string) (*Request, error) {
	coord.UniverseID = c.coord.UniverseID
	return Build(c.baseURL, kind, c.creds, coord, opts, cursor)
}

// ListDataStores lists the universe's standard datastores, optionally
// filtered by name prefix.
func (c *Client) ListDataStores(ctx context.Context, prefix string, max int) ([]opencloud.DataStore, error) {
	o := c.eng.newOperation()
	return collectPages(ctx, o,
		func(cursor string) (*Request, error) {
			return c.build(KindListDataStores, Coordinate{}, BuildOptions{Prefix: prefix}, cursor)
		},
		func(body []byte) ([]opencloud.DataStore, string, bool) {
			page, ok := opencloud.ParseDataStorePage(body)
			if !ok {
				return nil, "", false
			}
			return page.DataStores, page.NextPageCursor, true
		},
		max)
}

// ListEntries lists entry keys in a datastore. An empty scope lists all
// scopes; a key prefix narrows the listing.
func (c *Client) ListEntries(ctx context.Context, datastore, scope, prefix string, max int) ([]opencloud.EntryKey, error) {
	o := c.eng.newOperation()
	return collectPages(ctx, o,
		func(cursor string) (*Request, error) {
			return c.build(KindListEntries, Coordinate{Name: datastore, Scope: scope}, BuildOptions{Prefix: prefix}, cursor)
		},
		func(body []byte) ([]opencloud.EntryKey, string, bool) {
			page, ok := opencloud.ParseEntryKeyPage(body)
			if !ok {
				return nil, "", false
			}
			return page.Keys, page.NextPageCursor, true
		},
		max)
}

// GetEntry fetches and classifies one entry. Returns (nil, nil) when the
// entry does not exist: for a detail lookup 404 is a normal outcome, not
// an error.
func (c *Client) GetEntry(ctx context.Context, datastore, scope, key string) (*opencloud.DecodedEntry, error) {
	req, err := c.build(KindGetEntry, Coordinate{Name: datastore, Scope: scope, Key: key}, BuildOptions{}, "")
	if err != nil {
		return nil, err
	}

	o := c.eng.newOperation()
	res, err := o.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	if res.status == http.StatusNotFound {
		return nil, nil
	}

	raw := string(res.body)
	entryType, display := opencloud.ClassifyValue(raw)

	return &opencloud.DecodedEntry{
		UniverseID:         c.coord.UniverseID,
		Datastore:          datastore,
		Scope:              scopeOrDefault(scope),
		Key:                key,
		Version:            res.header.Get(headerEntryVersion),
		CreatedTime:        res.header.Get(headerEntryCreatedTime),
		VersionCreatedTime: res.header.Get(headerEntryVersionCreatedTime),
		Raw:                raw,
		Display:            display,
		Type:               entryType,
		UserIDs:            opencloud.ParseUserIDs(res.header.Get(headerEntryUserIDs)),
		Attributes:         res.header.Get(headerEntryAttributes),
	}, nil
}

// SetEntry writes one entry value. The value bytes are sent exactly as
// given; the integrity header is computed over them. UserIDs and
// attributes become metadata headers only when present.
func (c *Client) SetEntry(ctx context.Context, datastore, scope, key string, value []byte, userIDs []int64, attributes string) error {
	req, err := c.build(KindSetEntry,
		Coordinate{Name: datastore, Scope: scope, Key: key},
		BuildOptions{Body: value, UserIDs: userIDs, Attributes: attributes}, "")
	if err != nil {
		return err
	}

	o := c.eng.newOperation()
	res, err := o.execute(ctx, req)
	if err != nil {
		return err
	}
	if res.status == http.StatusNotFound {
		return &StatusError{Code: http.StatusNotFound, Body: "target datastore not found"}
	}
	return nil
}

// DeleteEntry removes one entry. Deleting an already-absent entry is not
// an error.
func (c *Client) DeleteEntry(ctx context.Context, datastore, scope, key string) error {
	req, err := c.build(KindDeleteEntry, Coordinate{Name: datastore, Scope: scope, Key: key}, BuildOptions{}, "")
	if err != nil {
		return err
	}

	o := c.eng.newOperation()
	_, err = o.execute(ctx, req)
	return err
}

// ListEntryVersions lists an entry's version history.
func (c *Client) ListEntryVersions(ctx context.Context, datastore, scope, key string, max int) ([]opencloud.EntryVersion, error) {
	o := c.eng.newOperation()
	return collectPages(ctx, o,
		func(cursor string) (*Request, error) {
			return c.build(KindListVersions, Coordinate{Name: datastore, Scope: scope, Key: key}, BuildOptions{}, cursor)
		},
		func(body []byte) ([]opencloud.EntryVersion, string, bool) {
			page, ok := opencloud.ParseEntryVersionPage(body)
			if !ok {
				return nil, "", false
			}
			return page.Versions, page.NextPageCursor, true
		},
		max)
}

// ListOrderedEntries lists an ordered datastore's entries, optionally
// largest first.
func (c *Client) ListOrderedEntries(ctx context.Context, name, scope string, descending bool, max int) ([]opencloud.OrderedEntry, error) {
	o := c.eng.newOperation()
	return collectPages(ctx, o,
		func(cursor string) (*Request, error) {
			return c.build(KindListOrderedEntries, Coordinate{Name: name, Scope: scope}, BuildOptions{Descending: descending}, cursor)
		},
		func(body []byte) ([]opencloud.OrderedEntry, string, bool) {
			page, ok := opencloud.ParseOrderedEntryPage(body)
			if !ok {
				return nil, "", false
			}
			return page.Entries, page.NextPageToken, true
		},
		max)
}

// ListSortedMapItems lists a memory-store sorted map's items.
func (c *Client) ListSortedMapItems(ctx context.Context, name string, max int) ([]opencloud.SortedMapItem, error) {
	o := c.eng.newOperation()
	return collectPages(ctx, o,
		func(cursor string) (*Request, error) {
			return c.build(KindListSortedMapItems, Coordinate{Name: name}, BuildOptions{}, cursor)
		},
		func(body []byte) ([]opencloud.SortedMapItem, string, bool) {
			page, ok := opencloud.ParseSortedMapItemPage(body)
			if !ok {
				return nil, "", false
			}
			return page.Items, page.NextPageToken, true
		},
		max)
}

// PublishMessage publishes one message to a messaging topic.
func (c *Client) PublishMessage(ctx context.Context, topic, message string) error {
	req, err := c.build(KindPublishMessage, Coordinate{Name: topic}, BuildOptions{Body: []byte(message)}, "")
	if err != nil {
		return err
	}

	o := c.eng.newOperation()
	res, err := o.execute(ctx, req)
	if err != nil {
		return err
	}
	if res.status == http.StatusNotFound {
		return &StatusError{Code: http.StatusNotFound, Body: "topic not found"}
	}
	return nil
}

// ListUserRestrictions lists the universe's ban list.
func (c *Client) ListUserRestrictions(ctx context.Context, max int) ([]opencloud.UserRestriction, error) {
	o := c.eng.newOperation()
	return collectPages(ctx, o,
		func(cursor string) (*Request, error) {
			return c.build(KindListUserRestrictions, Coordinate{}, BuildOptions{}, cursor)
		},
		func(body []byte) ([]opencloud.UserRestriction, string, bool) {
			page, ok := opencloud.ParseUserRestrictionPage(body)
			if !ok {
				return nil, "", false
			}
			return page.Restrictions, page.NextPageToken, true
		},
		max)
}
