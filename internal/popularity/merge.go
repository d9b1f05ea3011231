package popularity

import (
	"log/slog"
	"sort"
)

// KeyKind tags a metric-store key as either a canonical port name or a
// leftover raw IGDB id from an older run.
type KeyKind int

const (
	CanonicalKey KeyKind = iota
	LegacyKey
)

type StoreKey struct {
	Raw  string
	Kind KeyKind
}

// a key made up entirely of digits is a raw IGDB id, anything else is a
// port name. port names never consist solely of digits.
func ClassifyKey(raw string) StoreKey {
	if raw == "" {
		return StoreKey{Raw: raw, Kind: CanonicalKey}
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return StoreKey{Raw: raw, Kind: CanonicalKey}
		}
	}
	return StoreKey{Raw: raw, Kind: LegacyKey}
}

// phase one of the merge: rewrite legacy id-keyed metric blocks under
// their canonical port names. the block is copied only when the
// canonical key is still free, and the legacy key is dropped either
// way. ids with no entry in `mapping` are left untouched.
func ReconcileLegacyKeys(metrics map[string]map[string]float64, mapping map[string]string) {
	keys := make([]string, 0, len(metrics))
	for key := range metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, raw := range keys {
		key := ClassifyKey(raw)
		if key.Kind != LegacyKey {
			continue
		}
		port_name, known := mapping[key.Raw]
		if !known {
			continue
		}
		_, taken := metrics[port_name]
		if !taken {
			metrics[port_name] = metrics[key.Raw]
		}
		delete(metrics, key.Raw)
		slog.Debug("reconciled legacy key", "igdb-id", key.Raw, "port", port_name, "copied", !taken)
	}
}

// phase two: freshly fetched metric blocks replace prior blocks
// wholesale. a fresh fetch is the whole truth for that port.
func Overlay(prior map[string]map[string]float64, fetched map[string]map[string]float64) {
	for port_name, block := range fetched {
		prior[port_name] = block
	}
}

// phase three: union of type names. previously persisted names win on
// conflict.
func MergeTypeNames(fetched map[string]string, prior map[string]string) map[string]string {
	merged := map[string]string{}
	for code, name := range fetched {
		merged[code] = name
	}
	for code, name := range prior {
		merged[code] = name
	}
	return merged
}

// MergeStore folds a fresh fetch into the prior persisted store,
// producing the store to write back.
func MergeStore(prior Store, fetched map[string]map[string]float64, types map[string]string, mapping map[string]string) Store {
	merged := NewStore()
	for port_name, block := range prior.Metrics {
		merged.Metrics[port_name] = block
	}

	ReconcileLegacyKeys(merged.Metrics, mapping)
	Overlay(merged.Metrics, fetched)
	merged.Types = MergeTypeNames(types, prior.Types)

	return merged
}
