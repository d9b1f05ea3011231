package popularity

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// "title case" => "Title Case"
// `strings.ToTitle` behaves strangely and isn't safe with unicode.
func title_case(s string) string {
	caser := cases.Title(language.English)
	return caser.String(s)
}

// ReportFilename derives the output filename from the base name and
// the active filters: "ranked_ports.md" filtered by rtr and "puzzle"
// becomes "ranked_ports_rtr_puzzle.md".
func ReportFilename(base string, only_rtr bool, genre string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	parts := []string{stem}
	if only_rtr {
		parts = append(parts, "rtr")
	}
	if genre != "" {
		parts = append(parts, strings.ToLower(genre))
	}

	return strings.Join(parts, "_") + ext
}

// RenderReport writes the ranked list as a Markdown table.
func RenderReport(w io.Writer, ranked []RankedPort, only_rtr bool, genre string) error {
	title := "PortMaster Games Ranked by IGDB Popularity"
	filters := []string{}
	if only_rtr {
		filters = append(filters, "Ready-to-Run Only")
	}
	if genre != "" {
		filters = append(filters, "Genre: "+title_case(genre))
	}
	if len(filters) > 0 {
		title += " (" + strings.Join(filters, ", ") + ")"
	}

	_, err := fmt.Fprintf(w, "# %s\n\n", title)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "| Rank | Port Name | Title | Genres | RTR | Score | Metrics |")
	fmt.Fprintln(w, "|------|-----------|-------|--------|-----|-------|--------|")

	for i, port := range ranked {
		_, err = fmt.Fprintf(w, "| %d | %s | %s | %s | %s | %.6f | %s |\n",
			i+1,
			port.Port.Name,
			port.Port.Title,
			genres_cell(port.Port.Genres),
			rtr_cell(port.Port.RTR),
			port.Score,
			metrics_cell(port.Metrics))
		if err != nil {
			return err
		}
	}

	return nil
}

// WriteReport derives the filename, renders the table to it and
// returns the path actually written.
func WriteReport(base string, ranked []RankedPort, only_rtr bool, genre string) (string, error) {
	path := ReportFilename(base, only_rtr, genre)

	fh, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer fh.Close()

	err = RenderReport(fh, ranked, only_rtr, genre)
	if err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

// PrintTop writes a plain-text listing of the top `n` ports to `w`.
func PrintTop(w io.Writer, ranked []RankedPort, n int, filter_desc string) {
	if n > len(ranked) {
		n = len(ranked)
	}
	fmt.Fprintf(w, "\nTop %d Ports by Popularity%s:\n", n, filter_desc)
	for i, port := range ranked[:n] {
		fmt.Fprintf(w, "%d. [%s] %s (Score: %.6f)\n", i+1, rtr_cell(port.Port.RTR), port.Port.Title, port.Score)
	}
}

func rtr_cell(rtr bool) string {
	if rtr {
		return "✓"
	}
	return "✗"
}

func genres_cell(genres []string) string {
	if len(genres) == 0 {
		return "N/A"
	}
	return strings.Join(genres, ", ")
}

func metrics_cell(metrics map[string]float64) string {
	if len(metrics) == 0 {
		return "No metrics available"
	}

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf("%s: %.2e", name, metrics[name]))
	}
	return strings.Join(pairs, ", ")
}
