// Package dedup finds files with identical content. Candidates narrow in
// two passes: size buckets first, then BLAKE3 digests of the survivors,
// so a file with a unique size is never read.
package dedup

import (
	"context"
	"runtime"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/fiqdev/fiq/internal/hashing"
	"github.com/fiqdev/fiq/internal/walker"
)

// Group is one set of byte-identical files.
type Group struct {
	Hash  string   `json:"hash"`
	Size  int64    `json:"size"`
	Files []string `json:"files"`
}

// Report summarizes one duplicate scan. TotalWastedBytes counts every
// copy beyond the first in each group.
type Report struct {
	TotalFilesScanned int     `json:"total_files_scanned"`
	DuplicateGroups   []Group `json:"duplicate_groups"`
	TotalWastedBytes  int64   `json:"total_wasted_bytes"`
}

// Options configures a duplicate scan.
type Options struct {
	MinSize   int64
	Recursive bool
	Workers   int
	// OnHash, when set, is called after each candidate digest with the
	// number completed so far and the candidate total. Calls may arrive
	// from multiple goroutines.
	OnHash func(done, total int)
}

func (g Group) wasted() int64 {
	return g.Size * int64(len(g.Files)-1)
}

// Find scans root and groups byte-identical files of at least MinSize
// bytes. Files that cannot be hashed drop out of their group silently.
func Find(ctx context.Context, root string, opts Options) Report {
	records := walker.Scan(ctx, root, walker.Options{
		Mode:      walker.ModeFull,
		Recursive: opts.Recursive,
		Workers:   opts.Workers,
	})
	report := Report{
		TotalFilesScanned: len(records),
		DuplicateGroups:   []Group{},
	}

	bySize := make(map[int64][]walker.FileRecord)
	for _, rec := range records {
		if rec.Size < opts.MinSize {
			continue
		}
		bySize[rec.Size] = append(bySize[rec.Size], rec)
	}

	var candidates []walker.FileRecord
	for _, bucket := range bySize {
		if len(bucket) > 1 {
			candidates = append(candidates, bucket...)
		}
	}
	if len(candidates) == 0 {
		return report
	}
	log.Debug().Int("candidates", len(candidates)).Msg("hashing duplicate candidates")

	digests := make([]string, len(candidates))
	var done atomic.Int64

	p := pool.New().WithMaxGoroutines(runtime.NumCPU())
	for i, rec := range candidates {
		i, rec := i, rec
		p.Go(func() {
			if digest, err := hashing.Sum(rec.Path, rec.Size); err == nil {
				digests[i] = digest
			}
			if opts.OnHash != nil {
				opts.OnHash(int(done.Add(1)), len(candidates))
			}
		})
	}
	p.Wait()

	byHash := make(map[string][]int)
	for i, digest := range digests {
		if digest == "" {
			continue
		}
		byHash[digest] = append(byHash[digest], i)
	}

	for digest, members := range byHash {
		if len(members) < 2 {
			continue
		}
		g := Group{Hash: digest, Size: candidates[members[0]].Size}
		for _, i := range members {
			g.Files = append(g.Files, candidates[i].Path)
		}
		report.DuplicateGroups = append(report.DuplicateGroups, g)
		report.TotalWastedBytes += g.wasted()
	}

	sort.Slice(report.DuplicateGroups, func(i, j int) bool {
		wi, wj := report.DuplicateGroups[i].wasted(), report.DuplicateGroups[j].wasted()
		if wi != wj {
			return wi > wj
		}
		return report.DuplicateGroups[i].Hash < report.DuplicateGroups[j].Hash
	})
	return report
}
