// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package opencloud defines typed results for the cloud key-value API and
// the tolerant per-endpoint parsers that produce them.
//
// Parsing philosophy: the API may return partial or malformed payloads
// under load. Every parser returns (nil, false) instead of an error when
// the body is unparsable JSON, is missing its primary list field, or the
// primary list is empty. Individual items missing a required sub-field are
// silently dropped so one bad item can never fail a whole page. Callers
// must treat an absent result exactly like zero results.
//
// Pagination cursors are opaque server tokens. The field name varies by
// endpoint family (nextPageCursor for standard datastores, nextPageToken
// for the rest) and is extracted independently of item decoding.
package opencloud
