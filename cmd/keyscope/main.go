// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package main is the Keyscope command line interface.
//
// Keyscope browses and exports the key-value resources of a Roblox Open
// Cloud universe: standard datastores, ordered datastores, memory-store
// sorted maps, messaging topics, and user restrictions.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (KEYSCOPE_API_KEY, KEYSCOPE_API_UNIVERSE_ID, ...)
//   - Config file (keyscope.yaml, or KEYSCOPE_CONFIG)
//   - Built-in defaults
//
// # Example Usage
//
//	export KEYSCOPE_API_KEY=your-open-cloud-key
//	export KEYSCOPE_API_UNIVERSE_ID=12345
//	keyscope datastores
//	keyscope entries -datastore PlayerData
//	keyscope get -datastore PlayerData -key player_266
//	keyscope export -path universe.db
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the active operation, including backoff
// waits during rate limiting. An interrupted export persists its
// progress and resumes on the next run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/keyscope/internal/bulk"
	"github.com/tomtom215/keyscope/internal/config"
	"github.com/tomtom215/keyscope/internal/export"
	"github.com/tomtom215/keyscope/internal/fetch"
	"github.com/tomtom215/keyscope/internal/logging"
)

const usage = `Usage: keyscope <command> [flags]

Commands:
  datastores    List standard datastores
  entries       List entry keys in a datastore
  get           Fetch and classify one entry
  set           Write one entry value
  delete        Remove one entry
  versions      List an entry's version history
  ordered       List an ordered datastore's entries
  sorted-map    List a memory-store sorted map's items
  publish       Publish a message to a topic
  restrictions  List the universe's user restrictions
  export        Export all datastore entries to SQLite
  translog      Run a command and dump the transport log

Run "keyscope <command> -h" for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr)
	}

	app := newApp(cfg)
	command := os.Args[1]
	args := os.Args[2:]

	// The transport log wrapper reruns dispatch with the real command.
	if command == "translog" {
		if len(args) == 0 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		err = app.dispatch(ctx, args[0], args[1:])
		app.dumpTransportLog()
	} else {
		err = app.dispatch(ctx, command, args)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			logging.Warn().Msg("Interrupted")
			os.Exit(130)
		}
		var se *fetch.StatusError
		if errors.As(err, &se) {
			logging.Error().Int("status", se.Code).Str("body", se.Body).Msg("Request failed")
		} else {
			logging.Error().Err(err).Msg("Command failed")
		}
		os.Exit(1)
	}
}

// app binds the configured client to the command handlers.
type app struct {
	cfg    *config.Config
	client *fetch.BreakerClient
}

func newApp(cfg *config.Config) *app {
	eng := fetch.NewEngine(
		&http.Client{Timeout: cfg.API.Timeout},
		fetch.RetryPolicy{
			MaxAttempts:     cfg.Retry.MaxAttempts,
			BaseDelay:       cfg.Retry.BaseDelay,
			TransportErrors: cfg.Retry.TransportErrors,
		},
		fetch.NewTransportLog(),
		fetch.NewServerClock(),
	)
	eng.OnStatus(func(msg string) {
		logging.Info().Msg(msg)
	})

	creds := fetch.Credentials{APIKey: cfg.API.Key, Production: cfg.API.Production}
	client := fetch.NewClient(eng, cfg.API.BaseURL, creds, cfg.API.UniverseID)
	return &app{cfg: cfg, client: fetch.NewBreakerClient(client)}
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "datastores":
		return a.cmdDataStores(ctx, args)
	case "entries":
		return a.cmdEntries(ctx, args)
	case "get":
		return a.cmdGet(ctx, args)
	case "set":
		return a.cmdSet(ctx, args)
	case "delete":
		return a.cmdDelete(ctx, args)
	case "versions":
		return a.cmdVersions(ctx, args)
	case "ordered":
		return a.cmdOrdered(ctx, args)
	case "sorted-map":
		return a.cmdSortedMap(ctx, args)
	case "publish":
		return a.cmdPublish(ctx, args)
	case "restrictions":
		return a.cmdRestrictions(ctx, args)
	case "export":
		return a.cmdExport(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// confirmProduction guards destructive operations against a universe
// marked as production.
func (a *app) confirmProduction(confirmed bool, verb string) error {
	if a.cfg.API.Production && !confirmed {
		return fmt.Errorf("refusing to %s on a production universe without -yes", verb)
	}
	return nil
}

func (a *app) cmdDataStores(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("datastores", flag.ExitOnError)
	prefix := fs.String("prefix", "", "name prefix filter")
	max := fs.Int("max", 0, "soft result cap, 0 for all")
	_ = fs.Parse(args)

	stores, err := a.client.ListDataStores(ctx, *prefix, *max)
	if err != nil {
		return err
	}
	for _, ds := range stores {
		fmt.Printf("%s\t%s\n", ds.Name, ds.CreatedTime)
	}
	logging.Info().Int("count", len(stores)).Msg("Datastores listed")
	return nil
}

func (a *app) cmdEntries(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("entries", flag.ExitOnError)
	datastore := fs.String("datastore", "", "datastore name (required)")
	scope := fs.String("scope", "", "scope, empty for all scopes")
	prefix := fs.String("prefix", "", "key prefix filter")
	max := fs.Int("max", 0, "soft result cap, 0 for all")
	_ = fs.Parse(args)
	if *datastore == "" {
		return errors.New("-datastore is required")
	}

	keys, err := a.client.ListEntries(ctx, *datastore, *scope, *prefix, *max)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Printf("%s\t%s\n", k.Scope, k.Key)
	}
	logging.Info().Int("count", len(keys)).Msg("Entry keys listed")
	return nil
}

func (a *app) cmdGet(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	datastore := fs.String("datastore", "", "datastore name (required)")
	scope := fs.String("scope", "", "scope, default global")
	key := fs.String("key", "", "entry key (required)")
	raw := fs.Bool("raw", false, "print the raw payload instead of the display form")
	_ = fs.Parse(args)
	if *datastore == "" || *key == "" {
		return errors.New("-datastore and -key are required")
	}

	entry, err := a.client.GetEntry(ctx, *datastore, *scope, *key)
	if err != nil {
		return err
	}
	if entry == nil {
		fmt.Println("(not found)")
		return nil
	}

	fmt.Printf("type: %s\nversion: %s\nmodified: %s\n", entry.Type, entry.Version, entry.VersionCreatedTime)
	if len(entry.UserIDs) > 0 {
		ids := make([]string, len(entry.UserIDs))
		for i, id := range entry.UserIDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		fmt.Printf("user ids: %s\n", strings.Join(ids, ", "))
	}
	if entry.Attributes != "" {
		fmt.Printf("attributes: %s\n", entry.Attributes)
	}
	if *raw {
		fmt.Println(entry.Raw)
	} else {
		fmt.Println(entry.Display)
	}
	return nil
}

func (a *app) cmdSet(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	datastore := fs.String("datastore", "", "datastore name (required)")
	scope := fs.String("scope", "", "scope, default global")
	key := fs.String("key", "", "entry key (required)")
	value := fs.String("value", "", "JSON value to store (required)")
	userIDs := fs.String("user-ids", "", "comma separated numeric user ids")
	attributes := fs.String("attributes", "", "JSON attributes object")
	yes := fs.Bool("yes", false, "allow writes to a production universe")
	_ = fs.Parse(args)
	if *datastore == "" || *key == "" || *value == "" {
		return errors.New("-datastore, -key and -value are required")
	}
	if err := a.confirmProduction(*yes, "write"); err != nil {
		return err
	}

	ids, err := parseUserIDFlag(*userIDs)
	if err != nil {
		return err
	}
	if err := a.client.SetEntry(ctx, *datastore, *scope, *key, []byte(*value), ids, *attributes); err != nil {
		return err
	}
	logging.Info().Str("datastore", *datastore).Str("key", *key).Msg("Entry written")
	return nil
}

func (a *app) cmdDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	datastore := fs.String("datastore", "", "datastore name (required)")
	scope := fs.String("scope", "", "scope, default global")
	key := fs.String("key", "", "entry key (required)")
	yes := fs.Bool("yes", false, "allow deletes on a production universe")
	_ = fs.Parse(args)
	if *datastore == "" || *key == "" {
		return errors.New("-datastore and -key are required")
	}
	if err := a.confirmProduction(*yes, "delete"); err != nil {
		return err
	}

	if err := a.client.DeleteEntry(ctx, *datastore, *scope, *key); err != nil {
		return err
	}
	logging.Info().Str("datastore", *datastore).Str("key", *key).Msg("Entry deleted")
	return nil
}

func (a *app) cmdVersions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("versions", flag.ExitOnError)
	datastore := fs.String("datastore", "", "datastore name (required)")
	scope := fs.String("scope", "", "scope, default global")
	key := fs.String("key", "", "entry key (required)")
	max := fs.Int("max", 0, "soft result cap, 0 for all")
	_ = fs.Parse(args)
	if *datastore == "" || *key == "" {
		return errors.New("-datastore and -key are required")
	}

	versions, err := a.client.ListEntryVersions(ctx, *datastore, *scope, *key, *max)
	if err != nil {
		return err
	}
	for _, v := range versions {
		marker := ""
		if v.Deleted {
			marker = "\t(deleted)"
		}
		fmt.Printf("%s\t%s\t%d bytes%s\n", v.Version, v.CreatedTime, v.ContentLength, marker)
	}
	logging.Info().Int("count", len(versions)).Msg("Versions listed")
	return nil
}

func (a *app) cmdOrdered(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ordered", flag.ExitOnError)
	name := fs.String("name", "", "ordered datastore name (required)")
	scope := fs.String("scope", "", "scope, default global")
	descending := fs.Bool("descending", false, "largest values first")
	max := fs.Int("max", 0, "soft result cap, 0 for all")
	_ = fs.Parse(args)
	if *name == "" {
		return errors.New("-name is required")
	}

	entries, err := a.client.ListOrderedEntries(ctx, *name, *scope, *descending, *max)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s\t%d\n", e.ID, e.Value)
	}
	logging.Info().Int("count", len(entries)).Msg("Ordered entries listed")
	return nil
}

func (a *app) cmdSortedMap(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sorted-map", flag.ExitOnError)
	name := fs.String("name", "", "sorted map name (required)")
	max := fs.Int("max", 0, "soft result cap, 0 for all")
	_ = fs.Parse(args)
	if *name == "" {
		return errors.New("-name is required")
	}

	items, err := a.client.ListSortedMapItems(ctx, *name, *max)
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Printf("%s\t%s\t%s\n", item.ID, item.SortKey, item.Value)
	}
	logging.Info().Int("count", len(items)).Msg("Sorted map items listed")
	return nil
}

func (a *app) cmdPublish(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	topic := fs.String("topic", "", "messaging topic (required)")
	message := fs.String("message", "", "message payload (required)")
	yes := fs.Bool("yes", false, "allow publishing to a production universe")
	_ = fs.Parse(args)
	if *topic == "" || *message == "" {
		return errors.New("-topic and -message are required")
	}
	if err := a.confirmProduction(*yes, "publish"); err != nil {
		return err
	}

	if err := a.client.PublishMessage(ctx, *topic, *message); err != nil {
		return err
	}
	logging.Info().Str("topic", *topic).Msg("Message published")
	return nil
}

func (a *app) cmdRestrictions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("restrictions", flag.ExitOnError)
	max := fs.Int("max", 0, "soft result cap, 0 for all")
	_ = fs.Parse(args)

	restrictions, err := a.client.ListUserRestrictions(ctx, *max)
	if err != nil {
		return err
	}
	for _, r := range restrictions {
		state := "inactive"
		if r.Active {
			state = "active"
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", r.User, state, r.StartTime, r.DisplayReason)
	}
	logging.Info().Int("count", len(restrictions)).Msg("Restrictions listed")
	return nil
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	path := fs.String("path", a.cfg.Export.Path, "SQLite output file")
	prefix := fs.String("prefix", a.cfg.Export.Prefix, "datastore name prefix filter")
	within := fs.Duration("modified-within", a.cfg.Export.ModifiedWithin,
		"only entries modified within this window, 0 for all")
	fresh := fs.Bool("fresh", false, "discard saved progress and start over")
	_ = fs.Parse(args)

	sink, err := export.NewSQLiteSink(*path)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing export database")
		}
	}()

	progressDB, err := badger.Open(badger.DefaultOptions(*path + ".progress").WithLogger(nil))
	if err != nil {
		return fmt.Errorf("open progress store: %w", err)
	}
	defer func() {
		if err := progressDB.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing progress store")
		}
	}()

	tracker := bulk.NewBadgerProgress(progressDB)
	if *fresh {
		if err := tracker.Clear(ctx); err != nil {
			return fmt.Errorf("clear progress: %w", err)
		}
	}

	// The age cutoff follows the API's own clock when a response has
	// been observed, so local clock skew cannot shift the window.
	clock := a.client.Engine().Clock()
	now := func() time.Time {
		if t, ok := clock.Now(); ok {
			return t
		}
		return time.Now()
	}

	exporter := bulk.NewExporter(a.client, sink, tracker, bulk.Options{
		DatastorePrefix: *prefix,
		ModifiedWithin:  *within,
		Now:             now,
		OnProgress: func(stats bulk.ExportStats) {
			logging.Info().
				Int64("datastores", stats.Datastores).
				Int64("exported", stats.Exported).
				Int64("skipped", stats.Skipped).
				Float64("entries_per_sec", stats.EntriesPerSecond()).
				Msg("Export progress")
		},
	})

	stats, err := exporter.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("exported %d entries from %d datastores in %s\n",
		stats.Exported, stats.Datastores, stats.Duration().Round(time.Millisecond))
	return nil
}

func (a *app) dumpTransportLog() {
	entries := a.client.Engine().TransportLog().Entries()
	fmt.Fprintf(os.Stderr, "transport log (%d calls, newest first):\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(os.Stderr, "%s  %s  %-6s %s\n",
			e.Time.Format(time.RFC3339Nano), e.RequestID, e.Method, e.URL)
	}
}

func parseUserIDFlag(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logging.Info().Str("addr", addr).Msg("Metrics listener started")
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error().Err(err).Msg("Metrics listener failed")
	}
}
