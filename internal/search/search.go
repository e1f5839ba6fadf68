// Package search plans and runs file queries. Pure name queries over a
// whole tree go through the trigram index; everything else walks, with
// the scan mode chosen by which filters apply.
package search

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/fiqdev/fiq/internal/index"
	"github.com/fiqdev/fiq/internal/walker"
)

// Query is one search request. Size and time bounds stay raw strings; an
// unparseable bound silently disables that filter.
type Query struct {
	Root      string
	Name      string // basename glob
	Content   string // case-insensitive substring
	MinSize   string
	MaxSize   string
	Newer     string
	Older     string
	Recursive bool
	Workers   int
}

// Match is one hit. Size is zero when the match came from the name
// index, which stores no metadata.
type Match struct {
	Path           string         `json:"path"`
	Size           int64          `json:"size"`
	ContentMatches []ContentMatch `json:"content_matches,omitempty"`
}

// Result is a completed search. FilesScanned counts the files the chosen
// plan examined: the index population for indexed queries, the walk
// emission otherwise.
type Result struct {
	Matches      []Match `json:"matches"`
	TotalMatches int     `json:"total_matches"`
	FilesScanned int     `json:"files_scanned"`
}

// Run executes q. cache may be nil, which forces the walking plans;
// useMemoryCache is passed through to the index cache and is only set by
// long-lived servers.
func Run(ctx context.Context, q Query, cache *index.Cache, useMemoryCache bool) Result {
	nameOnly := q.Content == "" && q.MinSize == "" && q.MaxSize == "" &&
		q.Newer == "" && q.Older == ""

	if nameOnly && q.Recursive && cache != nil && index.Usable(q.Name) {
		ix := cache.Get(ctx, q.Root, useMemoryCache)
		if paths, ok := ix.Lookup(q.Name); ok {
			log.Debug().Str("pattern", q.Name).Int("hits", len(paths)).Msg("indexed search")
			matches := make([]Match, 0, len(paths))
			for _, p := range paths {
				matches = append(matches, Match{Path: p})
			}
			return Result{
				Matches:      matches,
				TotalMatches: len(matches),
				FilesScanned: ix.TotalFiles(),
			}
		}
	}

	mode := walker.ModeNamesOnly
	if !nameOnly {
		mode = walker.ModeFiltered
	}
	records := walker.Scan(ctx, q.Root, walker.Options{
		Mode:      mode,
		Pattern:   q.Name,
		Recursive: q.Recursive,
		Workers:   q.Workers,
	})
	scanned := len(records)

	// The walk already applied the name pattern; remaining filters run
	// cheapest first.
	minBytes, hasMin := ParseSize(q.MinSize)
	maxBytes, hasMax := ParseSize(q.MaxSize)
	newer, hasNewer := ParseTime(q.Newer)
	older, hasOlder := ParseTime(q.Older)

	kept := records[:0:0]
	for _, rec := range records {
		if hasMin && rec.Size < minBytes {
			continue
		}
		if hasMax && rec.Size > maxBytes {
			continue
		}
		if hasNewer && (rec.Modified.IsZero() || rec.Modified.Before(newer)) {
			continue
		}
		if hasOlder && (rec.Modified.IsZero() || rec.Modified.After(older)) {
			continue
		}
		kept = append(kept, rec)
	}

	matches := make([]Match, 0, len(kept))
	if q.Content == "" {
		for _, rec := range kept {
			matches = append(matches, Match{Path: rec.Path, Size: rec.Size})
		}
		return Result{Matches: matches, TotalMatches: len(matches), FilesScanned: scanned}
	}

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(runtime.NumCPU())
	for _, rec := range kept {
		rec := rec
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			cm := contentMatches(rec.Path, rec.Size, q.Content)
			if len(cm) == 0 {
				return
			}
			mu.Lock()
			matches = append(matches, Match{Path: rec.Path, Size: rec.Size, ContentMatches: cm})
			mu.Unlock()
		})
	}
	p.Wait()

	return Result{Matches: matches, TotalMatches: len(matches), FilesScanned: scanned}
}
