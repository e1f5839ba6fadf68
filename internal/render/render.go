// Package render prints command reports for terminals. Colors degrade
// automatically when the stream is not a TTY.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/fiqdev/fiq/internal/dedup"
	"github.com/fiqdev/fiq/internal/organize"
	"github.com/fiqdev/fiq/internal/search"
	"github.com/fiqdev/fiq/internal/stats"
)

var (
	headline = color.New(color.FgCyan, color.Bold)
	section  = color.New(color.FgYellow, color.Bold)
	label    = color.New(color.Bold)
	source   = color.New(color.FgRed, color.Bold)
	target   = color.New(color.FgGreen, color.Bold)
)

// Renderer writes human-readable reports to one stream.
type Renderer struct {
	out io.Writer
}

// New returns a renderer writing to out.
func New(out io.Writer) *Renderer { return &Renderer{out: out} }

// formatSize renders a byte count with decimal units, two digits of
// precision above 1 KB.
func formatSize(bytes int64) string {
	const (
		kb = 1_000
		mb = 1_000_000
		gb = 1_000_000_000
		tb = 1_000_000_000_000
	)
	switch {
	case bytes >= tb:
		return fmt.Sprintf("%.2f TB", float64(bytes)/tb)
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// Stats prints a directory summary.
func (r *Renderer) Stats(report stats.Report) {
	headline.Fprint(r.out, "\n  Directory Stats\n")
	fmt.Fprintln(r.out)

	label.Fprint(r.out, "  Total files: ")
	fmt.Fprintln(r.out, report.TotalFiles)
	label.Fprint(r.out, "  Total size:  ")
	fmt.Fprintln(r.out, formatSize(report.TotalSize))
	fmt.Fprintln(r.out)

	if len(report.ByExtension) > 0 {
		section.Fprint(r.out, "  By Extension\n")
		fmt.Fprintf(r.out, "  %-15s %8s %12s\n", "Extension", "Count", "Size")
		fmt.Fprintf(r.out, "  %s\n", strings.Repeat("-", 37))
		for _, ext := range report.ByExtension {
			fmt.Fprintf(r.out, "  %-15s %8d %12s\n",
				"."+ext.Extension, ext.Count, formatSize(ext.TotalSize))
		}
		fmt.Fprintln(r.out)
	}

	if len(report.LargestFiles) > 0 {
		section.Fprint(r.out, "  Largest Files\n")
		for i, f := range report.LargestFiles {
			fmt.Fprintf(r.out, "  %d. %s (%s)\n", i+1, f.Path, formatSize(f.Size))
		}
		fmt.Fprintln(r.out)
	}
}

// Duplicates prints a duplicate report, one block per group.
func (r *Renderer) Duplicates(report dedup.Report) {
	headline.Fprint(r.out, "\n  Duplicate Files\n")
	fmt.Fprintln(r.out)

	label.Fprint(r.out, "  Files scanned: ")
	fmt.Fprintln(r.out, report.TotalFilesScanned)
	label.Fprint(r.out, "  Duplicate groups: ")
	fmt.Fprintln(r.out, len(report.DuplicateGroups))
	label.Fprint(r.out, "  Wasted space: ")
	fmt.Fprintln(r.out, formatSize(report.TotalWastedBytes))
	fmt.Fprintln(r.out)

	for i, g := range report.DuplicateGroups {
		section.Fprintf(r.out, "  Group %d (%s, %d copies)\n",
			i+1, formatSize(g.Size), len(g.Files))
		for _, f := range g.Files {
			fmt.Fprintf(r.out, "    %s\n", f)
		}
		fmt.Fprintln(r.out)
	}
}

// Search prints matches, with matched lines nested under their file.
func (r *Renderer) Search(result search.Result) {
	headline.Fprint(r.out, "\n  Search Results\n")
	fmt.Fprintln(r.out)

	label.Fprint(r.out, "  Files scanned: ")
	fmt.Fprintln(r.out, result.FilesScanned)
	label.Fprint(r.out, "  Matches: ")
	fmt.Fprintln(r.out, result.TotalMatches)
	fmt.Fprintln(r.out)

	for _, m := range result.Matches {
		target.Fprintf(r.out, "  %s", m.Path)
		fmt.Fprintf(r.out, "  (%s)\n", formatSize(m.Size))
		for _, cm := range m.ContentMatches {
			fmt.Fprint(r.out, "    ")
			section.Fprintf(r.out, "%d:", cm.LineNumber)
			fmt.Fprintf(r.out, " %s\n", strings.TrimSpace(cm.Line))
		}
	}
	fmt.Fprintln(r.out)
}

// Organize prints planned or executed moves and any per-file errors.
func (r *Renderer) Organize(report organize.Report) {
	if report.DryRun {
		headline.Fprint(r.out, "\n  Organize Preview (dry run)\n")
	} else {
		headline.Fprint(r.out, "\n  Organize Complete\n")
	}
	fmt.Fprintln(r.out)

	label.Fprint(r.out, "  Total files: ")
	fmt.Fprintln(r.out, report.TotalFiles)
	label.Fprint(r.out, "  Files to move: ")
	fmt.Fprintln(r.out, len(report.Moves))
	fmt.Fprintln(r.out)

	for _, m := range report.Moves {
		fmt.Fprint(r.out, "  ")
		source.Fprint(r.out, m.From)
		fmt.Fprint(r.out, " -> ")
		target.Fprint(r.out, m.To)
		fmt.Fprintf(r.out, "  (%s)\n", formatSize(m.Size))
	}

	if len(report.Errors) > 0 {
		fmt.Fprintln(r.out)
		source.Fprint(r.out, "  Errors:\n")
		for _, e := range report.Errors {
			fmt.Fprintf(r.out, "    %s\n", e)
		}
	}
	fmt.Fprintln(r.out)
}
