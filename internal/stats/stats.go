// Package stats summarizes a directory tree: totals, per-extension
// breakdown and the largest files.
package stats

import (
	"context"
	"sort"

	"github.com/fiqdev/fiq/internal/walker"
)

const noExtKey = "(no ext)"

// ExtensionStats aggregates one extension group.
type ExtensionStats struct {
	Extension string `json:"extension"`
	Count     int    `json:"count"`
	TotalSize int64  `json:"total_size"`
}

// FileEntry is one entry of the largest-files list.
type FileEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Report is a completed summary.
type Report struct {
	TotalFiles   int              `json:"total_files"`
	TotalSize    int64            `json:"total_size"`
	ByExtension  []ExtensionStats `json:"by_extension"`
	LargestFiles []FileEntry      `json:"largest_files"`
}

// Options configures a stats run.
type Options struct {
	TopN      int
	Recursive bool
	Workers   int
}

// Collect scans root and summarizes it. Extensions compare lowercased;
// files without one group under "(no ext)".
func Collect(ctx context.Context, root string, opts Options) Report {
	records := walker.Scan(ctx, root, walker.Options{
		Mode:      walker.ModeFull,
		Recursive: opts.Recursive,
		Workers:   opts.Workers,
	})

	report := Report{
		TotalFiles:   len(records),
		ByExtension:  []ExtensionStats{},
		LargestFiles: []FileEntry{},
	}

	type group struct {
		count int
		size  int64
	}
	byExt := make(map[string]*group)
	for _, rec := range records {
		report.TotalSize += rec.Size
		key := rec.Ext
		if key == "" {
			key = noExtKey
		}
		g := byExt[key]
		if g == nil {
			g = &group{}
			byExt[key] = g
		}
		g.count++
		g.size += rec.Size
	}

	for ext, g := range byExt {
		report.ByExtension = append(report.ByExtension, ExtensionStats{
			Extension: ext,
			Count:     g.count,
			TotalSize: g.size,
		})
	}
	sort.Slice(report.ByExtension, func(i, j int) bool {
		a, b := report.ByExtension[i], report.ByExtension[j]
		if a.TotalSize != b.TotalSize {
			return a.TotalSize > b.TotalSize
		}
		return a.Extension < b.Extension
	})

	sort.Slice(records, func(i, j int) bool {
		if records[i].Size != records[j].Size {
			return records[i].Size > records[j].Size
		}
		return records[i].Path < records[j].Path
	})
	topN := max(opts.TopN, 0)
	for _, rec := range records[:min(topN, len(records))] {
		report.LargestFiles = append(report.LargestFiles, FileEntry{Path: rec.Path, Size: rec.Size})
	}

	return report
}
