// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package fetch

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/keyscope/internal/logging"
	"github.com/tomtom215/keyscope/internal/metrics"

	"github.com/tomtom215/keyscope/internal/models/opencloud"
)

// BreakerClient wraps Client with a circuit breaker so a bulk operation
// fanning out over many datastores stops hammering an API that is hard
// down, instead of every logical request independently retrying into it.
//
// Expected absences (404s) and rate limiting are handled inside the
// engine and never trip the breaker; only terminal failures count.
type BreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[any]
}

// NewBreakerClient wraps client with a breaker.
// Configuration:
//   - Max 3 concurrent probes in half-open state
//   - 1 minute measurement window in closed state
//   - 2 minute open period before probing again
//   - Opens at >= 60% failures over at least 10 requests
func NewBreakerClient(client *Client) *BreakerClient {
	const cbName = "cloudkv-api"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRate := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRate >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &BreakerClient{client: client, cb: cb}
}

// Engine returns the wrapped client's request engine.
func (b *BreakerClient) Engine() *Engine {
	return b.client.Engine()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// through funnels one call through the breaker, preserving its typed
// result.
func through[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

func (b *BreakerClient) ListDataStores(ctx context.Context, prefix string, max int) ([]opencloud.DataStore, error) {
	return through(b.cb, func() ([]opencloud.DataStore, error) {
		return b.client.ListDataStores(ctx, prefix, max)
	})
}

func (b *BreakerClient) ListEntries(ctx context.Context, datastore, scope, prefix string, max int) ([]opencloud.EntryKey, error) {
	return through(b.cb, func() ([]opencloud.EntryKey, error) {
		return b.client.ListEntries(ctx, datastore, scope, prefix, max)
	})
}

func (b *BreakerClient) GetEntry(ctx context.Context, datastore, scope, key string) (*opencloud.DecodedEntry, error) {
	return through(b.cb, func() (*opencloud.DecodedEntry, error) {
		return b.client.GetEntry(ctx, datastore, scope, key)
	})
}

func (b *BreakerClient) SetEntry(ctx context.Context, datastore, scope, key string, value []byte, userIDs []int64, attributes string) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.client.SetEntry(ctx, datastore, scope, key, value, userIDs, attributes)
	})
	return err
}

func (b *BreakerClient) DeleteEntry(ctx context.Context, datastore, scope, key string) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.client.DeleteEntry(ctx, datastore, scope, key)
	})
	return err
}

func (b *BreakerClient) ListEntryVersions(ctx context.Context, datastore, scope, key string, max int) ([]opencloud.EntryVersion, error) {
	return through(b.cb, func() ([]opencloud.EntryVersion, error) {
		return b.client.ListEntryVersions(ctx, datastore, scope, key, max)
	})
}

func (b *BreakerClient) ListOrderedEntries(ctx context.Context, name, scope string, descending bool, max int) ([]opencloud.OrderedEntry, error) {
	return through(b.cb, func() ([]opencloud.OrderedEntry, error) {
		return b.client.ListOrderedEntries(ctx, name, scope, descending, max)
	})
}

func (b *BreakerClient) ListSortedMapItems(ctx context.Context, name string, max int) ([]opencloud.SortedMapItem, error) {
	return through(b.cb, func() ([]opencloud.SortedMapItem, error) {
		return b.client.ListSortedMapItems(ctx, name, max)
	})
}

func (b *BreakerClient) PublishMessage(ctx context.Context, topic, message string) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.client.PublishMessage(ctx, topic, message)
	})
	return err
}

func (b *BreakerClient) ListUserRestrictions(ctx context.Context, max int) ([]opencloud.UserRestriction, error) {
	return through(b.cb, func() ([]opencloud.UserRestriction, error) {
		return b.client.ListUserRestrictions(ctx, max)
	})
}
