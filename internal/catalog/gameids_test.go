package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lays out a fake repo: `<tmp>/ports/<name>/port.json` per entry.
func write_repo(t *testing.T, port_jsons map[string]string) string {
	t.Helper()
	repo := t.TempDir()
	for name, content := range port_jsons {
		dir := filepath.Join(repo, "ports", name)
		require.Nil(t, os.MkdirAll(dir, 0o755))
		require.Nil(t, os.WriteFile(filepath.Join(dir, "port.json"), []byte(content), 0o644))
	}
	return repo
}

func Test_extract_is_field_selective(t *testing.T) {
	repo := write_repo(t, map[string]string{
		"celeste": `{"name": "celeste.zip", "attr": {"title": "Celeste", "igdb_id": 123, "steam_id": 504230, "unrelated": "x"}}`,
		"abuse":   `{"attr": {"itchio_url": "https://example.itch.io/abuse"}}`,
		"plainer": `{"attr": {"title": "nothing to see"}}`,
	})
	// a port directory without a port.json, and a stray file, both skipped.
	require.Nil(t, os.MkdirAll(filepath.Join(repo, "ports", "empty"), 0o755))
	require.Nil(t, os.WriteFile(filepath.Join(repo, "ports", "stray.txt"), []byte("x"), 0o644))

	ids, stats, err := Extract(repo)
	require.Nil(t, err)

	assert.Equal(t, GameIDs{
		"celeste": {"igdb_id": 123.0, "steam_id": 504230.0},
		"abuse":   {"itchio_url": "https://example.itch.io/abuse"},
	}, ids)

	assert.Equal(t, 3, stats.TotalPorts)
	assert.Equal(t, 2, stats.PortsWithIDs)
	assert.Equal(t, map[string]int{"igdb_id": 1, "steam_id": 1, "itchio_url": 1}, stats.FieldCounts)
}

func Test_extract_skips_malformed_port_json(t *testing.T) {
	repo := write_repo(t, map[string]string{
		"good": `{"attr": {"igdb_id": 1}}`,
		"bad":  `{nope`,
	})

	ids, stats, err := Extract(repo)
	require.Nil(t, err)
	assert.Equal(t, GameIDs{"good": {"igdb_id": 1.0}}, ids)
	assert.Equal(t, 2, stats.TotalPorts)
	assert.Equal(t, 1, stats.PortsWithIDs)
}

func Test_merge_game_ids(t *testing.T) {
	existing := GameIDs{
		"celeste": {"igdb_id": 1.0},
		"doom":    {"steam_id": 2.0},
	}
	fresh := GameIDs{
		"celeste": {"igdb_id": 123.0, "steam_id": 504230.0}, // one update, one addition
		"stardew": {"igdb_id": 17000.0},                     // brand new
	}

	merged, new_entries, updated_entries := MergeGameIDs(existing, fresh)

	assert.Equal(t, 1, new_entries)
	assert.Equal(t, 2, updated_entries)
	assert.Equal(t, GameIDs{
		"celeste": {"igdb_id": 123.0, "steam_id": 504230.0},
		"doom":    {"steam_id": 2.0},
		"stardew": {"igdb_id": 17000.0},
	}, merged)
}

func Test_merge_game_ids_never_removes_fields(t *testing.T) {
	existing := GameIDs{"celeste": {"igdb_id": 1.0, "itchio_url": "https://x.itch.io"}}
	fresh := GameIDs{"celeste": {"igdb_id": 1.0}}

	merged, new_entries, updated_entries := MergeGameIDs(existing, fresh)

	assert.Equal(t, 0, new_entries)
	assert.Equal(t, 0, updated_entries)
	assert.Equal(t, "https://x.itch.io", merged["celeste"]["itchio_url"])
}

func Test_igdb_mapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game_ids.json")
	content := `{
		"celeste": {"igdb_id": 123},
		"abuse": {"steam_id": 9},
		"zeroed": {"igdb_id": 0},
		"blank": {"igdb_id": ""},
		"strung": {"igdb_id": "77"}
	}`
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))

	mapping, total, err := IGDBMapping(path)
	require.Nil(t, err)

	assert.Equal(t, 5, total)
	assert.Equal(t, map[string]string{
		"123": "celeste",
		"77":  "strung",
	}, mapping)
}

func Test_igdb_mapping_errors(t *testing.T) {
	_, _, err := IGDBMapping(filepath.Join(t.TempDir(), "missing.json"))
	assert.NotNil(t, err)
}

func Test_remove_id_fields_backs_up_first(t *testing.T) {
	original := `{"name": "celeste.zip", "attr": {"title": "Celeste", "igdb_id": 123, "igdb_visits": 99, "genres": ["platformer"]}}`
	repo := write_repo(t, map[string]string{
		"celeste": original,
		"clean":   `{"attr": {"title": "no ids here"}}`,
	})

	modified, err := RemoveIDFields(repo)
	require.Nil(t, err)
	assert.Equal(t, 1, modified)

	// the backup holds the pre-removal content verbatim.
	backup, err := os.ReadFile(filepath.Join(repo, "ports", "celeste", "port.json.bak"))
	require.Nil(t, err)
	assert.Equal(t, original, string(backup))

	// the live file lost the identifier fields and nothing else.
	live, err := os.ReadFile(filepath.Join(repo, "ports", "celeste", "port.json"))
	require.Nil(t, err)
	var port_data map[string]any
	require.Nil(t, json.Unmarshal(live, &port_data))
	attr := port_data["attr"].(map[string]any)
	assert.NotContains(t, attr, "igdb_id")
	assert.NotContains(t, attr, "igdb_visits")
	assert.Equal(t, "Celeste", attr["title"])
	assert.Equal(t, "celeste.zip", port_data["name"])

	// untouched files gain no backup.
	assert.NoFileExists(t, filepath.Join(repo, "ports", "clean", "port.json.bak"))
}

func Test_game_ids_roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game_ids.json")

	ids := GameIDs{"celeste": {"igdb_id": 123.0}}
	require.Nil(t, SaveGameIDs(path, ids))
	assert.Equal(t, ids, LoadGameIDs(path))

	// lenient load: missing or mangled files start empty.
	assert.Empty(t, LoadGameIDs(filepath.Join(t.TempDir(), "nope.json")))
}
