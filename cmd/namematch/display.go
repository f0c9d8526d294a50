package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/standardbeagle/namematch/internal/dataset"
	"github.com/standardbeagle/namematch/internal/index"
	"github.com/standardbeagle/namematch/internal/matcher"
	"github.com/standardbeagle/namematch/internal/normalize"
)

const nameColumnWidth = 28

func printBanner(w io.Writer, path string, size int, watching bool) {
	fmt.Fprintln(w, strings.Repeat("=", 64))
	fmt.Fprintln(w, "namematch interactive")
	fmt.Fprintf(w, "Dataset: %s (%d candidates)\n", path, size)
	if watching {
		fmt.Fprintln(w, "Watching for dataset changes.")
	}
	fmt.Fprintln(w, "Type a name to search, 'top N' to set result count, 'quit' to exit.")
	fmt.Fprintln(w, strings.Repeat("=", 64))
}

// renderResults prints the ranked matches as an aligned table, followed
// by the component detail for the best match.
func renderResults(w io.Writer, query string, results []matcher.Result, elapsed time.Duration) {
	q := normalize.Normalize(query)
	if q.Empty() {
		fmt.Fprintf(w, "Query %q contains no usable name.\n", query)
		return
	}
	fmt.Fprintf(w, "Query: %q (normalized: %q)\n", query, q.Norm)
	if len(results) == 0 {
		fmt.Fprintln(w, "No matches found.")
		return
	}
	fmt.Fprintf(w, "Matched in %.1fms\n\n", float64(elapsed.Microseconds())/1000.0)

	fmt.Fprintf(w, "%-4s %-*s %8s %7s %7s %7s\n",
		"Rank", nameColumnWidth, "Name", "Score", "First", "Edit", "Init")
	for i, r := range results {
		fmt.Fprintf(w, "%-4d %-*s %8.2f %7.1f %7.1f %7.1f\n",
			i+1, nameColumnWidth, truncateName(r.Name), r.Score,
			r.Breakdown.FirstName, r.Breakdown.EditDistance, r.Breakdown.Initials)
	}
	fmt.Fprintln(w)
	renderBreakdown(w, results[0])
}

// renderBreakdown prints components, the penalties that actually
// applied, and the softening note for one result.
func renderBreakdown(w io.Writer, r matcher.Result) {
	bd := r.Breakdown
	fmt.Fprintf(w, "Breakdown for %q (row %d):\n", r.Name, r.Row)
	fmt.Fprintf(w, "  first_name     %6.1f\n", bd.FirstName)
	fmt.Fprintf(w, "  edit_distance  %6.1f\n", bd.EditDistance)
	fmt.Fprintf(w, "  other_core     %6.1f\n", bd.OtherCore)
	fmt.Fprintf(w, "  initials       %6.1f\n", bd.Initials)
	fmt.Fprintf(w, "  phonetic_core  %6.1f\n", bd.PhoneticCore)
	fmt.Fprintf(w, "  full_string    %6.1f\n", bd.FullString)

	if bd.MissingInitialPenalty > 0 {
		fmt.Fprintf(w, "  missing initials %v  -%.1f\n", bd.MissingInitials, bd.MissingInitialPenalty)
	}
	if bd.ExtraInitialPenalty > 0 {
		fmt.Fprintf(w, "  extra initials %v    -%.1f\n", bd.ExtraInitials, bd.ExtraInitialPenalty)
	}
	if bd.MissingCorePenalty > 0 {
		fmt.Fprintf(w, "  missing name parts   -%.1f\n", bd.MissingCorePenalty)
	}
	if bd.OverlongPenalty > 0 {
		fmt.Fprintf(w, "  extra name parts     -%.1f\n", bd.OverlongPenalty)
	}
	if bd.LengthDiffPenalty > 0 {
		fmt.Fprintf(w, "  length difference    -%.1f\n", bd.LengthDiffPenalty)
	}
	if bd.Softened {
		fmt.Fprintln(w, "  (penalties softened: strong first-name match)")
	}
	fmt.Fprintf(w, "  final          %6.2f\n", bd.Final)
}

// writeResultsJSON emits the machine-readable result envelope.
func writeResultsJSON(w io.Writer, query string, results []matcher.Result, elapsed time.Duration) error {
	if results == nil {
		results = []matcher.Result{}
	}
	output := map[string]interface{}{
		"query":   query,
		"time_ms": float64(elapsed.Microseconds()) / 1000.0,
		"count":   len(results),
		"results": results,
	}
	return json.NewEncoder(w).Encode(output)
}

func renderStats(w io.Writer, path string, src *dataset.Source, st index.Stats) {
	fmt.Fprintf(w, "Dataset:              %s\n", path)
	fmt.Fprintf(w, "Files:                %d\n", len(src.Paths))
	fmt.Fprintf(w, "Rows:                 %d\n", len(src.Names))
	fmt.Fprintf(w, "Usable candidates:    %d\n", st.Candidates)
	fmt.Fprintf(w, "Skipped rows:         %d\n", st.Skipped)
	fmt.Fprintf(w, "Phonetic buckets:     %d\n", st.PhoneticBuckets)
	fmt.Fprintf(w, "First-letter buckets: %d\n", st.FirstLetterBuckets)
	fmt.Fprintf(w, "Fingerprint:          %016x\n", src.Fingerprint)
	if len(st.LargestBuckets) > 0 {
		fmt.Fprintln(w, "Largest phonetic buckets:")
		for _, b := range st.LargestBuckets {
			fmt.Fprintf(w, "  %-6s %d\n", b.Key, b.Size)
		}
	}
}

func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= nameColumnWidth {
		return name
	}
	return string(runes[:nameColumnWidth-2]) + ".."
}
