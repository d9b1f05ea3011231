package popularity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_store_roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "popularity.json")

	store := NewStore()
	store.Types = map[string]string{"1": "Visits", "3": "Playing"}
	store.Metrics = map[string]map[string]float64{
		"celeste": {"1": 12345, "3": 10},
	}

	require.Nil(t, SaveStore(path, store))

	loaded, err := LoadStore(path)
	require.Nil(t, err)
	assert.Equal(t, store, loaded)
}

func Test_store_writes_sorted_keys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "popularity.json")

	store := NewStore()
	store.Metrics = map[string]map[string]float64{
		"zork":  {"1": 1},
		"abuse": {"1": 2},
	}
	require.Nil(t, SaveStore(path, store))

	data, err := os.ReadFile(path)
	require.Nil(t, err)
	assert.Less(t, strings.Index(string(data), "abuse"), strings.Index(string(data), "zork"))
}

func Test_load_store_strict(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadStore(filepath.Join(dir, "missing.json"))
	assert.NotNil(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.Nil(t, os.WriteFile(bad, []byte("{nope"), 0o644))
	_, err = LoadStore(bad)
	assert.NotNil(t, err)
}

func Test_load_prior_degrades_to_empty(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		label   string
		content string
	}{
		{"missing file", ""},
		{"unparseable", "{nope"},
		{"not an object", `[]`},
		{"metric block is not an object", `{"popularity_metrics": {"x": "nope"}}`},
		{"metric value is not a number", `{"popularity_metrics": {"x": {"1": "ten"}}}`},
		{"type name is not a string", `{"popularity_types": {"1": 2}}`},
	}

	for i, c := range cases {
		path := filepath.Join(dir, fmt.Sprintf("store%d.json", i))
		if c.content != "" {
			require.Nil(t, os.WriteFile(path, []byte(c.content), 0o644))
		}
		store := LoadPrior(path)
		assert.Empty(t, store.Metrics, c.label)
		assert.Empty(t, store.Types, c.label)
	}
}

func Test_load_prior_accepts_valid_store(t *testing.T) {
	path := filepath.Join(t.TempDir(), "popularity.json")
	content := `{
		"popularity_types": {"1": "Visits"},
		"popularity_metrics": {"celeste": {"1": 42.5}, "123": {"3": 7}}
	}`
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))

	store := LoadPrior(path)
	assert.Equal(t, map[string]string{"1": "Visits"}, store.Types)
	assert.Equal(t, 42.5, store.Metrics["celeste"]["1"])
	assert.Equal(t, 7.0, store.Metrics["123"]["3"])
}
