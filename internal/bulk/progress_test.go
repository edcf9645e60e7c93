// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package bulk

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

func newTestBadger(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBadgerProgressRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tracker := NewBadgerProgress(newTestBadger(t))

	loaded, err := tracker.Load(ctx)
	if err != nil {
		t.Fatalf("Load on empty db failed: %v", err)
	}
	if loaded != nil {
		t.Fatal("expected nil progress before any save")
	}

	stats := &ExportStats{
		StartTime:           time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		Datastores:          1,
		Exported:            40,
		CompletedDatastores: []string{"PlayerData"},
	}
	if err := tracker.Save(ctx, stats); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err = tracker.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected saved progress")
	}
	if loaded.Exported != 40 || len(loaded.CompletedDatastores) != 1 {
		t.Errorf("loaded progress = %+v", loaded)
	}
	if !loaded.StartTime.Equal(stats.StartTime) {
		t.Errorf("start time = %v, want %v", loaded.StartTime, stats.StartTime)
	}
}

func TestBadgerProgressClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tracker := NewBadgerProgress(newTestBadger(t))

	// Clearing absent progress is fine.
	if err := tracker.Clear(ctx); err != nil {
		t.Fatalf("Clear on empty db failed: %v", err)
	}

	if err := tracker.Save(ctx, &ExportStats{StartTime: time.Now()}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := tracker.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	loaded, err := tracker.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != nil {
		t.Error("progress survived Clear")
	}
}
