package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"

	"github.com/tidwall/gjson"
)

// identifier fields harvested from each port.json.
var ExtractFields = []string{"igdb_id", "steam_id", "itchio_url"}

// identifier fields stripped by the removal pass. includes igdb_visits,
// a deprecated field the extractor never writes.
var RemoveFields = []string{"igdb_id", "steam_id", "itchio_url", "igdb_visits"}

// GameIDs is the repository-wide identifier index: port name => the
// identifier fields recorded for it. values keep whatever JSON type the
// port.json used (igdb_id is a number, itchio_url a string).
type GameIDs map[string]map[string]any

// ExtractStats summarises one extraction sweep.
type ExtractStats struct {
	TotalPorts   int
	PortsWithIDs int
	FieldCounts  map[string]int
}

// Extract walks every port directory under `<repo>/ports` and harvests
// the identifier fields from its port.json `attr` block. directories
// without a port.json, and port.json files that fail to parse, are
// skipped.
func Extract(repo_path string) (GameIDs, ExtractStats, error) {
	ports_dir := filepath.Join(repo_path, "ports")
	stats := ExtractStats{FieldCounts: map[string]int{}}
	for _, field := range ExtractFields {
		stats.FieldCounts[field] = 0
	}

	entries, err := os.ReadDir(ports_dir)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read ports directory: %w", err)
	}

	ids := GameIDs{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		port_name := entry.Name()
		port_json_path := filepath.Join(ports_dir, port_name, "port.json")

		data, err := os.ReadFile(port_json_path)
		if err != nil {
			continue
		}
		stats.TotalPorts += 1
		if !gjson.ValidBytes(data) {
			slog.Warn("failed to parse port.json, skipping", "path", port_json_path)
			continue
		}

		attr := gjson.GetBytes(data, "attr")
		port_ids := map[string]any{}
		for _, field := range ExtractFields {
			value := attr.Get(field)
			if !value.Exists() {
				continue
			}
			port_ids[field] = value.Value()
			stats.FieldCounts[field] += 1
		}

		if len(port_ids) > 0 {
			ids[port_name] = port_ids
			stats.PortsWithIDs += 1
		}
	}

	return ids, stats, nil
}

// MergeGameIDs folds a fresh extraction into the existing index.
// unknown ports are added wholesale, known ports only gain or update
// fields. nothing is ever removed. returns the merged index plus the
// number of new entries and of field updates.
func MergeGameIDs(existing GameIDs, fresh GameIDs) (GameIDs, int, int) {
	merged := GameIDs{}
	for port_name, fields := range existing {
		merged[port_name] = fields
	}

	new_entries := 0
	updated_entries := 0
	for port_name, fields := range fresh {
		current, present := merged[port_name]
		if !present {
			merged[port_name] = fields
			new_entries += 1
			continue
		}
		for field, value := range fields {
			old, has := current[field]
			if !has || !reflect.DeepEqual(old, value) {
				current[field] = value
				updated_entries += 1
			}
		}
	}

	return merged, new_entries, updated_entries
}

// LoadGameIDs reads an identifier index. absence or bad JSON starts an
// empty index, logged.
func LoadGameIDs(path string) GameIDs {
	data, err := os.ReadFile(path)
	if err != nil {
		return GameIDs{}
	}
	ids := GameIDs{}
	err = json.Unmarshal(data, &ids)
	if err != nil {
		slog.Warn("failed to parse existing game ids, starting empty", "path", path, "error", err)
		return GameIDs{}
	}
	slog.Info("loaded existing game ids", "num-entries", len(ids), "path", path)
	return ids
}

func SaveGameIDs(path string, ids GameIDs) error {
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render game ids: %w", err)
	}
	err = os.WriteFile(path, append(data, '\n'), 0o644)
	if err != nil {
		return fmt.Errorf("failed to write game ids: %w", err)
	}
	return nil
}

// IGDBMapping builds the IGDB id => port name mapping from an
// identifier index file. entries with an absent, empty or zero igdb_id
// are skipped. returns the mapping and the total number of entries
// inspected. duplicate ids resolve last-writer-wins in file order.
func IGDBMapping(path string) (map[string]string, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read game ids: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, 0, fmt.Errorf("failed to parse game ids '%s'", path)
	}

	mapping := map[string]string{}
	total := 0
	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		total += 1
		igdb_id := value.Get("igdb_id")
		if !truthy(igdb_id) {
			return true
		}
		mapping[igdb_id.String()] = key.String()
		slog.Debug("found IGDB id", "igdb-id", igdb_id.String(), "port", key.String())
		return true
	})

	return mapping, total, nil
}

func truthy(value gjson.Result) bool {
	switch {
	case !value.Exists():
		return false
	case value.Type == gjson.Null || value.Type == gjson.False:
		return false
	case value.Type == gjson.Number && value.Num == 0:
		return false
	case value.Type == gjson.String && value.Str == "":
		return false
	}
	return true
}

// RemoveIDFields strips the identifier fields from every port.json in
// place, keeping the original as a ".bak" sibling. files without any of
// the fields are untouched. returns how many files were modified.
func RemoveIDFields(repo_path string) (int, error) {
	ports_dir := filepath.Join(repo_path, "ports")
	entries, err := os.ReadDir(ports_dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read ports directory: %w", err)
	}

	modified_files := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		port_json_path := filepath.Join(ports_dir, entry.Name(), "port.json")

		data, err := os.ReadFile(port_json_path)
		if err != nil {
			continue
		}

		var port_data map[string]any
		err = json.Unmarshal(data, &port_data)
		if err != nil {
			slog.Warn("failed to parse port.json, skipping", "path", port_json_path)
			continue
		}

		attr, has_attr := port_data["attr"].(map[string]any)
		if !has_attr {
			continue
		}

		dirty := false
		for _, field := range RemoveFields {
			_, present := attr[field]
			if present {
				delete(attr, field)
				dirty = true
			}
		}
		if !dirty {
			continue
		}

		// back up before touching the live file.
		err = os.Rename(port_json_path, port_json_path+".bak")
		if err != nil {
			return modified_files, fmt.Errorf("failed to back up '%s': %w", port_json_path, err)
		}

		stripped, err := json.MarshalIndent(port_data, "", "    ")
		if err != nil {
			return modified_files, fmt.Errorf("failed to render '%s': %w", port_json_path, err)
		}
		err = os.WriteFile(port_json_path, append(stripped, '\n'), 0o644)
		if err != nil {
			return modified_files, fmt.Errorf("failed to write '%s': %w", port_json_path, err)
		}

		modified_files += 1
	}

	return modified_files, nil
}
