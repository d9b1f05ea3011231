// fetches IGDB popularity metrics for every port with a known IGDB id
// and merges them into the persisted popularity store.
//
// usage: igdb-popularity <game_ids.json> [output.json]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"portmaster-popularity/internal/catalog"
	"portmaster-popularity/internal/igdb"
	"portmaster-popularity/internal/popularity"
)

const default_output = "popularity.json"

// log error `msg` and die quietly.
func die(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

func init() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo})))
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <game_ids.json> [output.json]\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	args := pflag.Args()
	if len(args) < 1 || len(args) > 2 {
		pflag.Usage()
		os.Exit(1)
	}
	game_ids_path := args[0]
	output_path := default_output
	if len(args) == 2 {
		output_path = args[1]
	}

	client_id, _ := os.LookupEnv("IGDB_CLIENT_ID")
	client_secret, _ := os.LookupEnv("IGDB_CLIENT_SECRET")
	if client_id == "" || client_secret == "" {
		die("missing IGDB_CLIENT_ID or IGDB_CLIENT_SECRET")
	}

	ctx := context.Background()

	client := igdb.NewClient(client_id, client_secret)
	err := client.Authenticate(ctx)
	if err != nil {
		die("failed to get token", "error", err)
	}

	slog.Info("reading IGDB ids", "path", game_ids_path)
	mapping, total, err := catalog.IGDBMapping(game_ids_path)
	if err != nil {
		die("failed to read game ids", "error", err)
	}
	slog.Info("found IGDB ids", "num-ids", len(mapping), "num-games", total)
	if len(mapping) == 0 {
		die("no valid IGDB ids found in the game ids file")
	}

	metrics, type_ids := client.FetchMetrics(ctx, mapping)
	slog.Info("fetched metrics", "num-games", len(metrics), "num-types-seen", len(type_ids))

	types := client.FetchTypes(ctx)

	prior := popularity.LoadPrior(output_path)
	merged := popularity.MergeStore(prior, metrics, types, mapping)

	err = popularity.SaveStore(output_path, merged)
	if err != nil {
		die("failed to write popularity data", "error", err)
	}

	slog.Info("wrote popularity data", "num-games", len(merged.Metrics), "path", output_path)
}
