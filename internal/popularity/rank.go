package popularity

import (
	"fmt"
	"slices"

	"portmaster-popularity/internal/catalog"
)

// RankedPort is one row of the ranking: a catalogue port plus its
// computed score and its metrics keyed by display name. derived per
// run, never persisted.
type RankedPort struct {
	Port    catalog.Port
	Score   float64
	Metrics map[string]float64
}

// Rank scores every port against the store and sorts descending.
// ports absent from the store score zero. metric-type codes without a
// known display name fall back to "Metric <code>".
//
// the sort is stable, so equal scores keep the input order (ports
// arrive sorted by name from the catalogue loader).
func Rank(ports []catalog.Port, store Store, weights Weights) []RankedPort {
	ranked := make([]RankedPort, 0, len(ports))

	for _, port := range ports {
		metrics := store.Metrics[port.Name]

		named_metrics := map[string]float64{}
		for code, value := range metrics {
			name, known := store.Types[code]
			if !known {
				name = fmt.Sprintf("Metric %s", code)
			}
			named_metrics[name] = value
		}

		ranked = append(ranked, RankedPort{
			Port:    port,
			Score:   weights.Score(metrics),
			Metrics: named_metrics,
		})
	}

	slices.SortStableFunc(ranked, func(a, b RankedPort) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	return ranked
}
