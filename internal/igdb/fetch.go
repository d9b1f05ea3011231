package igdb

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

const primitive_fields = "calculated_at,checksum,created_at,external_popularity_source,game_id," +
	"popularity_source,popularity_type,updated_at,value"

// Metrics maps a port name to its metric-type-code => value block.
type Metrics map[string]map[string]float64

// sweeps the id mapping sequentially, one rate-limited query per id.
// `mapping` maps IGDB ids (string encoded) to port names.
// returns the metrics found per port and the set of metric-type codes
// encountered along the way. ports whose query exhausts its retries or
// returns no records are skipped, never fatal.
func (c *Client) FetchMetrics(ctx context.Context, mapping map[string]string) (Metrics, map[string]bool) {
	metrics := Metrics{}
	type_ids := map[string]bool{}

	ids := sorted_ids(mapping)
	slog.Info("fetching popularity data", "num-games", len(ids))

	for i, gid := range ids {
		port_name := mapping[gid]
		slog.Info("processing game", "pos", fmt.Sprintf("%d/%d", i+1, len(ids)), "port", port_name, "igdb-id", gid)

		// stay inside the IGDB request quota.
		c.Sleep(c.RateLimit)

		query := fmt.Sprintf("fields %s; where game_id = %s;", primitive_fields, gid)
		body, ok := c.query(ctx, "/popularity_primitives", query)
		if !ok {
			continue
		}

		records := gjson.Parse(body).Array()
		if len(records) == 0 {
			slog.Info("no popularity data for game", "port", port_name, "igdb-id", gid)
			continue
		}

		metrics[port_name] = map[string]float64{}
		for _, record := range records {
			tid := record.Get("popularity_type").String()
			metrics[port_name][tid] = record.Get("value").Float()
			type_ids[tid] = true
		}
	}

	return metrics, type_ids
}

// fetches the id=>name lookup for all popularity types.
// a failed query degrades to an empty mapping.
func (c *Client) FetchTypes(ctx context.Context) map[string]string {
	slog.Info("fetching popularity type information")

	types := map[string]string{}
	body, ok := c.query(ctx, "/popularity_types", "fields name,popularity_source,updated_at; sort id asc;")
	if !ok {
		return types
	}

	for _, record := range gjson.Parse(body).Array() {
		types[record.Get("id").String()] = record.Get("name").String()
	}
	return types
}

// map iteration order is random, the sweep isn't. ascending numeric id.
func sorted_ids(mapping map[string]string) []string {
	ids := make([]string, 0, len(mapping))
	for gid := range mapping {
		ids = append(ids, gid)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		if a != b {
			return a < b
		}
		return ids[i] < ids[j]
	})
	return ids
}
