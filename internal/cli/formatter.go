package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/idelchi/topdirs/internal/dirstat"
)

// PathWidth is the minimum width of the path column in table output.
const PathWidth = 40

//nolint:gochecknoglobals // Unit labels
var units = []string{"B", "kB", "MB", "GB", "TB"}

// FormatSize renders size in the largest binary unit up to TB with a value of at least 1,
// using three decimals, e.g. "1.500 MB".
func FormatSize(size uint64) string {
	unit := 0
	for unit < len(units)-1 && size >= uint64(1)<<(10*(unit+1)) {
		unit++
	}

	value := float64(size) / float64(uint64(1)<<(10*unit))

	return fmt.Sprintf("%.3f %s", value, units[unit])
}

// jsonEntry is a ranked directory in JSON output.
type jsonEntry struct {
	Rank      int    `json:"rank"`
	Path      string `json:"path"`
	Size      uint64 `json:"size"`
	SizeHuman string `json:"size_human"`
}

// jsonReport replaces the report entries with ranked, formatted ones.
type jsonReport struct {
	*dirstat.Report

	Entries []jsonEntry `json:"entries"`
}

// PrintJSON outputs the report in JSON format.
func PrintJSON(report *dirstat.Report, writer io.Writer) error {
	out := jsonReport{Report: report, Entries: make([]jsonEntry, 0, len(report.Entries))}

	for i, e := range report.Entries {
		out.Entries = append(out.Entries, jsonEntry{
			Rank:      i + 1,
			Path:      e.Path,
			Size:      e.Size,
			SizeHuman: FormatSize(e.Size),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs one line per ranked directory: rank, padded path and size.
// An empty report prints nothing.
func PrintTable(report *dirstat.Report, writer io.Writer) error {
	for i, e := range report.Entries {
		if _, err := fmt.Fprintf(writer, "%-2d: %-*s - %s\n", i+1, PathWidth, e.Path, FormatSize(e.Size)); err != nil {
			return err
		}
	}

	return nil
}
