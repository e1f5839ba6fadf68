// Package walker implements parallel directory traversal with tunable
// metadata cost. A scan emits one FileRecord per regular file; directories
// are never emitted. Three scan modes trade metadata for throughput: Full
// stats everything, Filtered stats only files whose basename matches a glob,
// and NamesOnly skips stat entirely.
package walker

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog/log"
)

// ScanMode selects how much metadata a scan gathers per file.
type ScanMode int

const (
	// ModeFull stats every file: size, modification time and extension.
	ModeFull ScanMode = iota
	// ModeFiltered applies the basename glob before stat; survivors are
	// statted but no extension is computed.
	ModeFiltered
	// ModeNamesOnly applies the glob and skips stat entirely.
	ModeNamesOnly
)

// FileRecord is one regular file found during a scan.
type FileRecord struct {
	Path     string    // absolute path
	Size     int64     // 0 when metadata was skipped
	Modified time.Time // zero when metadata was skipped
	Ext      string    // lowercased extension without the dot, "" when absent
}

// Options configures a single scan.
type Options struct {
	Mode      ScanMode
	Pattern   string // basename glob for ModeFiltered / ModeNamesOnly; "" matches all
	Recursive bool
	Workers   int // override for the worker count; 0 uses the per-mode default
}

const (
	defaultFullWorkers = 4
	batchSize          = 512
)

// Workers resolves the worker count for a scan. A positive override (from
// FIQ_THREADS via config) wins; otherwise full scans get a fixed small pool
// while filtered scans use half the CPUs, since a filtered scan does less
// per-file work and extra workers just contend on locks.
func Workers(mode ScanMode, override int) int {
	if override > 0 {
		return override
	}
	if mode == ModeFull {
		return defaultFullWorkers
	}
	return max(2, runtime.NumCPU()/2)
}

// collector accumulates records from walker goroutines. Appends go into
// striped batch buffers; a full batch moves to the shared slice under a
// single mutex acquisition, keeping the shared lock off the per-file path.
type collector struct {
	mu  sync.Mutex
	out []FileRecord

	next   atomic.Uint32
	shards []shard
}

type shard struct {
	mu  sync.Mutex
	buf []FileRecord
}

func newCollector(stripes int) *collector {
	if stripes < 1 {
		stripes = 1
	}
	c := &collector{
		out:    make([]FileRecord, 0, 4096),
		shards: make([]shard, stripes),
	}
	for i := range c.shards {
		c.shards[i].buf = make([]FileRecord, 0, batchSize)
	}
	return c
}

func (c *collector) add(rec FileRecord) {
	s := &c.shards[c.next.Add(1)%uint32(len(c.shards))]
	s.mu.Lock()
	s.buf = append(s.buf, rec)
	if len(s.buf) < batchSize {
		s.mu.Unlock()
		return
	}
	full := s.buf
	s.buf = make([]FileRecord, 0, batchSize)
	s.mu.Unlock()
	c.append(full)
}

func (c *collector) append(batch []FileRecord) {
	if len(batch) == 0 {
		return
	}
	c.mu.Lock()
	c.out = append(c.out, batch...)
	c.mu.Unlock()
}

// drain flushes every remaining batch and returns the combined result.
// Only call after all walker goroutines have stopped.
func (c *collector) drain() []FileRecord {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		buf := s.buf
		s.buf = nil
		s.mu.Unlock()
		c.append(buf)
	}
	return c.out
}

// Scan walks root and returns the matching files. Ordering is
// non-deterministic. Per-entry errors (permission denied, broken links,
// unreadable metadata) are skipped silently; an unreadable root yields an
// empty result rather than an error. Hidden files are included and no
// ignore-file rules apply.
func Scan(ctx context.Context, root string, opts Options) []FileRecord {
	workers := Workers(opts.Mode, opts.Workers)

	pattern := opts.Pattern
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		// An invalid glob disables name filtering rather than failing the scan.
		pattern = ""
	}

	coll := newCollector(workers)
	start := time.Now()

	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: workers,
	}

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !opts.Recursive {
				return fs.SkipDir
			}
			return nil
		}

		if pattern != "" {
			ok, _ := doublestar.Match(pattern, filepath.Base(path))
			if !ok {
				return nil
			}
		}

		rec := FileRecord{Path: path}
		if opts.Mode != ModeNamesOnly {
			info, err := d.Info()
			if err != nil {
				return nil
			}
			rec.Size = info.Size()
			rec.Modified = info.ModTime()
			if opts.Mode == ModeFull {
				rec.Ext = extOf(filepath.Base(path))
			}
		}
		coll.add(rec)
		return nil
	})

	records := coll.drain()
	if err != nil {
		log.Debug().Err(err).Str("root", root).Msg("walk ended early")
	}
	log.Debug().
		Str("root", root).
		Int("files", len(records)).
		Int("workers", workers).
		Dur("elapsed", time.Since(start)).
		Msg("scan complete")
	return records
}

// extOf returns the lowercased extension of name without the leading dot.
// Dotfiles such as ".bashrc" have no extension.
func extOf(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
