// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package fetch

import (
	"sync"
	"time"
)

// TransportLogEntry is one issued HTTP call. Entries are appended before
// the call is sent, so aborted and failed calls are recorded too.
type TransportLogEntry struct {
	Time      time.Time
	RequestID string // correlates the physical calls of one logical request
	Method    string
	URL       string
}

// TransportLog is an append-only record of every request issued through
// an Engine. It has no size cap; Clear is the only way to shrink it.
// Safe for concurrent use.
type TransportLog struct {
	mu      sync.Mutex
	entries []TransportLogEntry
}

// NewTransportLog returns an empty transport log.
func NewTransportLog() *TransportLog {
	return &TransportLog{}
}

// Record appends one entry with the current timestamp.
func (l *TransportLog) Record(requestID, method, url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, TransportLogEntry{
		Time:      time.Now(),
		RequestID: requestID,
		Method:    method,
		URL:       url,
	})
}

// Entries returns a newest-first copy of the log.
func (l *TransportLog) Entries() []TransportLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]TransportLogEntry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Len returns the number of recorded entries.
func (l *TransportLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear empties the log.
func (l *TransportLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
