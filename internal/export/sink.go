// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package export persists fetched entries into a local analysis store.
package export

import (
	"context"

	"github.com/tomtom215/keyscope/internal/models/opencloud"
)

// Sink receives decoded entries during a bulk export. Implementations
// must tolerate being handed the same coordinate twice (re-runs upsert).
type Sink interface {
	WriteEntry(ctx context.Context, entry *opencloud.DecodedEntry) error
	Close() error
}
