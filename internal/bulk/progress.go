// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package bulk

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
)

// progressKey is the BadgerDB key for storing export progress.
const progressKey = "export:progress"

// ProgressTracker persists export progress so an interrupted run can
// resume without re-fetching completed datastores.
type ProgressTracker interface {
	Save(ctx context.Context, stats *ExportStats) error
	Load(ctx context.Context) (*ExportStats, error)
	Clear(ctx context.Context) error
}

// BadgerProgress implements ProgressTracker using BadgerDB for
// persistence across process restarts.
type BadgerProgress struct {
	db *badger.DB
}

// NewBadgerProgress creates a progress tracker on the provided BadgerDB
// instance.
func NewBadgerProgress(db *badger.DB) *BadgerProgress {
	return &BadgerProgress{db: db}
}

// Save persists the current export progress.
func (p *BadgerProgress) Save(ctx context.Context, stats *ExportStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(progressKey), data)
	})
}

// Load retrieves the last saved export progress. Returns nil, nil when
// no progress has been saved.
func (p *BadgerProgress) Load(ctx context.Context) (*ExportStats, error) {
	var stats ExportStats

	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(progressKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stats)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	if stats.StartTime.IsZero() {
		return nil, nil
	}
	return &stats, nil
}

// Clear removes saved progress to start a fresh export.
func (p *BadgerProgress) Clear(ctx context.Context) error {
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(progressKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// noopProgress is used when the caller does not want resumability.
type noopProgress struct{}

func (noopProgress) Save(context.Context, *ExportStats) error   { return nil }
func (noopProgress) Load(context.Context) (*ExportStats, error) { return nil, nil }
func (noopProgress) Clear(context.Context) error                { return nil }
