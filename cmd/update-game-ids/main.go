// extracts identifier fields from every port.json into the shared
// game_ids.json index, optionally stripping them from the port.json
// files afterwards.
//
// usage: update-game-ids <repo_path> <game_ids.json> [--remove]
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"portmaster-popularity/internal/catalog"
)

func die(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

func init() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo})))
}

func main() {
	var remove bool
	pflag.BoolVar(&remove, "remove", false, "strip the identifier fields from port.json files after extraction")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <repo_path> <game_ids.json> [--remove]\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	args := pflag.Args()
	if len(args) != 2 {
		pflag.Usage()
		os.Exit(1)
	}
	repo_path := args[0]
	game_ids_path := args[1]

	fresh, stats, err := catalog.Extract(repo_path)
	if err != nil {
		die("failed to extract game ids", "error", err)
	}

	existing := catalog.LoadGameIDs(game_ids_path)
	merged, new_entries, updated_entries := catalog.MergeGameIDs(existing, fresh)

	err = catalog.SaveGameIDs(game_ids_path, merged)
	if err != nil {
		die("failed to write game ids", "error", err)
	}

	slog.Info("processed ports", "total", stats.TotalPorts, "with-ids", stats.PortsWithIDs)
	for _, field := range catalog.ExtractFields {
		slog.Info("field found", "field", field, "num-ports", stats.FieldCounts[field])
	}
	slog.Info("merged game ids", "new", new_entries, "updated", updated_entries, "total", len(merged), "path", game_ids_path)

	if remove {
		slog.Info("removing identifier fields from port.json files")
		modified, err := catalog.RemoveIDFields(repo_path)
		if err != nil {
			die("failed to remove identifier fields", "error", err)
		}
		slog.Info("modified port.json files", "num-files", modified)
	}
}
