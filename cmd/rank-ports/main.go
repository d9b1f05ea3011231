// ranks PortMaster ports by their IGDB popularity score and renders a
// Markdown report.
//
// usage: rank-ports [-r] [-g genre] [-o ranked_ports.md] [--repo DIR]
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"portmaster-popularity/internal/catalog"
	"portmaster-popularity/internal/popularity"
)

const (
	popularity_file = "port_popularity.json"
	ports_info_file = "ports_info.json"
)

func die(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

func init() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo})))
}

func main() {
	var only_rtr bool
	var genre string
	var output string
	var repo string
	pflag.BoolVarP(&only_rtr, "ready-to-run", "r", false, "filter for only ready-to-run games")
	pflag.StringVarP(&genre, "genre", "g", "", "filter for games of a specific genre (e.g. puzzle, action, rpg)")
	pflag.StringVarP(&output, "output", "o", "ranked_ports.md", "output file name")
	pflag.StringVar(&repo, "repo", ".", "repository root holding the popularity and ports info files")
	pflag.Parse()

	filter_parts := []string{}
	if only_rtr {
		filter_parts = append(filter_parts, "Ready-to-Run")
	}
	if genre != "" {
		filter_parts = append(filter_parts, "Genre: "+genre)
	}
	if len(filter_parts) > 0 {
		slog.Info("filtering", "filters", strings.Join(filter_parts, " and "))
	}

	popularity_path := filepath.Join(repo, popularity_file)
	store, err := popularity.LoadStore(popularity_path)
	if err != nil {
		die("failed to load popularity data", "error", err)
	}

	ports_path := filepath.Join(repo, ports_info_file)
	ports, err := catalog.LoadPorts(ports_path)
	if err != nil {
		die("failed to load ports information", "error", err)
	}

	ports = catalog.Filter(ports, only_rtr, genre)
	slog.Info("found ports", "num-ports", len(ports))
	if len(ports) == 0 {
		slog.Info("no games match the specified filters")
		return
	}

	ranked := popularity.Rank(ports, store, popularity.DefaultWeights())

	path, err := popularity.WriteReport(output, ranked, only_rtr, genre)
	if err != nil {
		die("failed to write report", "error", err)
	}
	slog.Info("results written", "path", path)

	filter_desc := ""
	if len(filter_parts) > 0 {
		filter_desc = fmt.Sprintf(" (%s)", strings.Join(filter_parts, " & "))
	}
	popularity.PrintTop(os.Stdout, ranked, 20, filter_desc)
}
