// the persisted popularity store and the merge/score/rank logic built
// on top of it.
package popularity

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Store is the on-disk popularity file: one mapping of metric-type
// codes to display names, one mapping of port names (or legacy IGDB
// ids) to their metric blocks.
type Store struct {
	Metrics map[string]map[string]float64 `json:"popularity_metrics"`
	Types   map[string]string             `json:"popularity_types"`
}

func NewStore() Store {
	return Store{
		Metrics: map[string]map[string]float64{},
		Types:   map[string]string{},
	}
}

// guards the lenient load against stores mangled by hand-editing.
// deliberately loose: extra top-level keys are fine.
const store_schema = `{
	"type": "object",
	"properties": {
		"popularity_types": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		},
		"popularity_metrics": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"additionalProperties": {"type": "number"}
			}
		}
	}
}`

var compiled_store_schema = jsonschema.MustCompileString("popularity-store.schema.json", store_schema)

// LoadStore reads a popularity store, failing on absence or bad JSON.
// used where the store is a mandatory input.
func LoadStore(path string) (Store, error) {
	store := NewStore()
	data, err := os.ReadFile(path)
	if err != nil {
		return store, fmt.Errorf("failed to read popularity store: %w", err)
	}
	err = json.Unmarshal(data, &store)
	if err != nil {
		return store, fmt.Errorf("failed to parse popularity store '%s': %w", path, err)
	}
	return store, nil
}

// LoadPrior reads a previously persisted store ahead of a merge.
// absence, bad JSON and bad shape all degrade to an empty store.
func LoadPrior(path string) Store {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to read existing popularity data, starting empty", "path", path, "error", err)
		}
		return NewStore()
	}

	var shape any
	err = json.Unmarshal(data, &shape)
	if err != nil {
		slog.Warn("failed to parse existing popularity data, starting empty", "path", path, "error", err)
		return NewStore()
	}

	err = compiled_store_schema.Validate(shape)
	if err != nil {
		slog.Warn("existing popularity data has the wrong shape, starting empty", "path", path, "error", err)
		return NewStore()
	}

	store := NewStore()
	json.Unmarshal(data, &store)
	slog.Info("loaded existing popularity data", "num-entries", len(store.Metrics))
	return store
}

// SaveStore writes the full store, pretty-printed with sorted keys.
func SaveStore(path string, store Store) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render popularity store: %w", err)
	}
	err = os.WriteFile(path, append(data, '\n'), 0o644)
	if err != nil {
		return fmt.Errorf("failed to write popularity store: %w", err)
	}
	return nil
}
