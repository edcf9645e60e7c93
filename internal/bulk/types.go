// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package bulk

import (
	"time"
)

// ExportStats holds statistics about a bulk export run.
type ExportStats struct {
	// Datastores is the number of datastores walked so far.
	Datastores int64

	// Keys is the number of entry keys listed.
	Keys int64

	// Exported is the number of entries written to the sink.
	Exported int64

	// Skipped is the number of entries filtered out (age filter, absent
	// on fetch).
	Skipped int64

	// Errors is the number of entries that failed to export.
	Errors int64

	// StartTime is when the export started.
	StartTime time.Time

	// EndTime is when the export completed (zero if still running).
	EndTime time.Time

	// CompletedDatastores names datastores fully exported, for resuming
	// an interrupted run.
	CompletedDatastores []string
}

// Duration returns how long the export has been running.
func (s *ExportStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// EntriesPerSecond returns the export rate.
func (s *ExportStats) EntriesPerSecond() float64 {
	seconds := s.Duration().Seconds()
	if seconds == 0 {
		return 0
	}
	return float64(s.Exported) / seconds
}

func (s *ExportStats) completed(datastore string) bool {
	for _, name := range s.CompletedDatastores {
		if name == datastore {
			return true
		}
	}
	return false
}
