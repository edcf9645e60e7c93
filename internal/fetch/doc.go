// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package fetch implements the request/retry/pagination engine against the
// cloud key-value API.
//
// A logical request is one caller-initiated operation that may span many
// physical HTTP calls: retries after rate limiting (429) or gateway
// failures (502/504), and cursor-chained pages for list endpoints. Each
// logical request owns at most one in-flight call at a time; distinct
// logical requests are independent and may run concurrently.
//
// Layering, bottom up:
//
//   - Build constructs immutable request descriptors per endpoint kind
//     (pure, no I/O).
//   - Engine sends descriptors, classifies HTTP statuses, and applies the
//     backoff schedule {2s, 4s, 8s, 8s, ...} for 429 with immediate
//     resends for 502/504. The 429 count persists across the pages of one
//     logical request so sustained throttling keeps the backoff grown.
//   - Client exposes one typed method per endpoint, pairing a descriptor
//     builder with a tolerant parser from internal/models/opencloud and a
//     404 policy (absence, not failure, for detail lookups).
//   - BreakerClient optionally wraps Client with a circuit breaker.
//
// Side channels: every physical call is recorded in the TransportLog
// before it is sent, and every response carrying a Date header feeds the
// ServerClock skew estimate. Both are mutex-guarded shared state owned by
// whoever constructed the Engine.
package fetch
