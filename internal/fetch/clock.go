// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package fetch

import (
	"net/http"
	"sync"
	"time"
)

// ServerClock estimates the remote API's clock from response Date headers.
// Downstream bulk filters compare entry timestamps against the server's
// notion of now, not the local clock, so skew between the two does not
// shift filter windows.
//
// The estimate pairs the last observed server time with the local
// monotonic instant it arrived at; Now re-derives the current server time
// by adding the elapsed monotonic duration. Observations only ever
// overwrite, never expire. Safe for concurrent use.
type ServerClock struct {
	mu         sync.Mutex
	serverTime time.Time
	observedAt time.Time // carries Go's monotonic reading
	seen       bool
}

// NewServerClock returns a clock with no observation yet.
func NewServerClock() *ServerClock {
	return &ServerClock{}
}

// Observe records the Date header from a response, if present and
// parsable. Responses without a usable header are ignored.
func (c *ServerClock) Observe(h http.Header) {
	raw := h.Get("Date")
	if raw == "" {
		return
	}
	// RFC 1123 with the literal GMT zone, e.g.
	// "Mon, 02 Jan 2006 15:04:05 GMT".
	parsed, err := time.Parse(http.TimeFormat, raw)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.serverTime = parsed
	c.observedAt = time.Now()
	c.seen = true
}

// Now returns the estimated current server time, or false when no Date
// header has been observed yet.
func (c *ServerClock) Now() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seen {
		return time.Time{}, false
	}
	return c.serverTime.Add(time.Since(c.observedAt)), true
}
