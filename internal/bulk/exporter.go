// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package bulk walks every entry of a universe's standard datastores and
// streams them into an export sink.
package bulk

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/keyscope/internal/export"
	"github.com/tomtom215/keyscope/internal/logging"
	"github.com/tomtom215/keyscope/internal/models/opencloud"
)

// EntrySource is the slice of the API client the exporter needs.
type EntrySource interface {
	ListDataStores(ctx context.Context, prefix string, max int) ([]opencloud.DataStore, error)
	ListEntries(ctx context.Context, datastore, scope, prefix string, max int) ([]opencloud.EntryKey, error)
	GetEntry(ctx context.Context, datastore, scope, key string) (*opencloud.DecodedEntry, error)
}

// Options filter and shape a bulk export.
type Options struct {
	// DatastorePrefix narrows the walk to datastores whose names start
	// with the prefix. Empty walks all.
	DatastorePrefix string

	// KeyPrefix narrows each datastore to keys with the prefix.
	KeyPrefix string

	// ModifiedWithin, when positive, skips entries whose latest version
	// is older than the window. The cutoff uses Now.
	ModifiedWithin time.Duration

	// Now supplies the reference time for the age filter. Wire the
	// engine's server clock here so the cutoff follows the API's own
	// time, not the local machine's. Nil falls back to time.Now.
	Now func() time.Time

	// OnProgress, when set, receives a stats snapshot after each
	// datastore completes.
	OnProgress func(ExportStats)
}

// Exporter drains datastore entries into a sink, resuming a previous
// interrupted run when the tracker holds progress.
type Exporter struct {
	source  EntrySource
	sink    export.Sink
	tracker ProgressTracker
	opts    Options
}

// NewExporter creates an exporter. A nil tracker disables resumability.
func NewExporter(source EntrySource, sink export.Sink, tracker ProgressTracker, opts Options) *Exporter {
	if tracker == nil {
		tracker = noopProgress{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Exporter{source: source, sink: sink, tracker: tracker, opts: opts}
}

// Run walks all matching datastores and exports their entries. The
// returned stats are also persisted through the tracker so a cancelled
// run resumes where it stopped. The tracker's progress is cleared on
// full completion.
func (e *Exporter) Run(ctx context.Context) (*ExportStats, error) {
	stats, err := e.tracker.Load(ctx)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &ExportStats{StartTime: time.Now()}
	} else {
		logging.Info().
			Int("completed_datastores", len(stats.CompletedDatastores)).
			Msg("resuming interrupted export")
	}

	stores, err := e.source.ListDataStores(ctx, e.opts.DatastorePrefix, 0)
	if err != nil {
		return stats, fmt.Errorf("list datastores: %w", err)
	}

	for _, ds := range stores {
		if stats.completed(ds.Name) {
			continue
		}
		if err := e.exportDatastore(ctx, ds.Name, stats); err != nil {
			// Persist progress before surfacing so the run can resume.
			_ = e.tracker.Save(ctx, stats)
			return stats, fmt.Errorf("export datastore %q: %w", ds.Name, err)
		}

		stats.Datastores++
		stats.CompletedDatastores = append(stats.CompletedDatastores, ds.Name)
		if err := e.tracker.Save(ctx, stats); err != nil {
			return stats, fmt.Errorf("save progress: %w", err)
		}
		if e.opts.OnProgress != nil {
			e.opts.OnProgress(*stats)
		}
	}

	stats.EndTime = time.Now()
	if err := e.tracker.Clear(ctx); err != nil {
		logging.Warn().Err(err).Msg("failed to clear export progress")
	}

	logging.Info().
		Int64("datastores", stats.Datastores).
		Int64("exported", stats.Exported).
		Int64("skipped", stats.Skipped).
		Dur("took", stats.Duration()).
		Msg("export complete")
	return stats, nil
}

func (e *Exporter) exportDatastore(ctx context.Context, name string, stats *ExportStats) error {
	// Empty scope lists keys across every scope of the datastore.
	keys, err := e.source.ListEntries(ctx, name, "", e.opts.KeyPrefix, 0)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	stats.Keys += int64(len(keys))

	for _, k := range keys {
		entry, err := e.source.GetEntry(ctx, name, k.Scope, k.Key)
		if err != nil {
			return fmt.Errorf("get entry %q: %w", k.Key, err)
		}
		if entry == nil {
			// Deleted between listing and fetch.
			stats.Skipped++
			continue
		}
		if e.stale(entry) {
			stats.Skipped++
			continue
		}

		if err := e.sink.WriteEntry(ctx, entry); err != nil {
			stats.Errors++
			return err
		}
		stats.Exported++
	}
	return nil
}

// stale reports whether the age filter excludes the entry. Entries whose
// timestamps cannot be parsed are kept.
func (e *Exporter) stale(entry *opencloud.DecodedEntry) bool {
	if e.opts.ModifiedWithin <= 0 {
		return false
	}

	stamp := entry.VersionCreatedTime
	if stamp == "" {
		stamp = entry.CreatedTime
	}
	if stamp == "" {
		return false
	}
	modified, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return false
	}
	return e.opts.Now().Sub(modified) > e.opts.ModifiedWithin
}
