// reads the externally maintained PortMaster catalogue files.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Port is one catalogue entry. the name is the unique key, everything
// else is descriptive.
type Port struct {
	Name         string
	Title        string
	RTR          bool
	Genres       []string
	Availability string
}

type ports_info_file struct {
	Ports map[string]port_entry `json:"ports"`
}

type port_entry struct {
	Attr port_attr `json:"attr"`
}

type port_attr struct {
	Title        string   `json:"title"`
	RTR          bool     `json:"rtr"`
	Genres       []string `json:"genres"`
	Availability string   `json:"availability"`
}

// LoadPorts reads ports_info.json. entries are keyed by their zip
// filename ("celeste.zip"), the ".zip" suffix is stripped to get the
// port name. the result is sorted by name.
func LoadPorts(path string) ([]Port, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ports info: %w", err)
	}

	var info ports_info_file
	err = json.Unmarshal(data, &info)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ports info '%s': %w", path, err)
	}
	if info.Ports == nil {
		return nil, fmt.Errorf("no 'ports' found in %s", path)
	}

	ports := make([]Port, 0, len(info.Ports))
	for zip_name, entry := range info.Ports {
		name := strings.TrimSuffix(zip_name, ".zip")
		title := entry.Attr.Title
		if title == "" {
			title = name
		}
		ports = append(ports, Port{
			Name:         name,
			Title:        title,
			RTR:          entry.Attr.RTR,
			Genres:       entry.Attr.Genres,
			Availability: entry.Attr.Availability,
		})
	}

	sort.Slice(ports, func(i, j int) bool {
		return ports[i].Name < ports[j].Name
	})

	return ports, nil
}

// Filter keeps ports matching all requested filters: ready-to-run only
// when `only_rtr` and membership of `genre` (case-insensitive, exact)
// when non-empty.
func Filter(ports []Port, only_rtr bool, genre string) []Port {
	result := []Port{}
	for _, port := range ports {
		if only_rtr && !port.RTR {
			continue
		}
		if genre != "" && !has_genre(port, genre) {
			continue
		}
		result = append(result, port)
	}
	return result
}

func has_genre(port Port, genre string) bool {
	for _, g := range port.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}
