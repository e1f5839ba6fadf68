package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
)

// Cache resolves roots to indexes through two tiers: an in-memory map for
// long-lived server sessions and on-disk snapshots shared across
// processes. Values are shared by pointer and never mutated after build.
type Cache struct {
	dir     string
	workers int

	mu  sync.Mutex
	mem map[string]*Index
}

// NewCache returns a cache storing snapshots under dir. workers bounds the
// build walk; 0 uses the walker default.
func NewCache(dir string, workers int) *Cache {
	return &Cache{dir: dir, workers: workers}
}

// Get returns a fresh index for root. The memory tier is consulted only
// when useMemory is set (one-shot commands skip it), then the disk
// snapshot, then a new build. Builds run outside the lock; concurrent
// builds of the same root race benignly, last writer wins.
func (c *Cache) Get(ctx context.Context, root string, useMemory bool) *Index {
	canon := CanonicalRoot(root)

	if useMemory {
		c.mu.Lock()
		ix := c.mem[canon]
		c.mu.Unlock()
		if ix != nil && ix.IsFresh() {
			return ix
		}
	}

	if ix, err := LoadSnapshot(c.snapshotPath(canon)); err == nil && ix.Root() == canon && ix.IsFresh() {
		if useMemory {
			c.store(canon, ix)
		}
		return ix
	}

	return c.build(ctx, canon, useMemory)
}

// Rebuild bypasses both tiers, builds a new index for root, persists it
// and replaces the memory entry.
func (c *Cache) Rebuild(ctx context.Context, root string) *Index {
	return c.build(ctx, CanonicalRoot(root), true)
}

func (c *Cache) build(ctx context.Context, canon string, useMemory bool) *Index {
	ix := Build(ctx, canon, c.workers)
	if err := c.save(canon, ix); err != nil {
		log.Debug().Err(err).Str("root", canon).Msg("index snapshot not saved")
	}
	if useMemory {
		c.store(canon, ix)
	}
	return ix
}

func (c *Cache) store(canon string, ix *Index) {
	c.mu.Lock()
	if c.mem == nil {
		c.mem = make(map[string]*Index)
	}
	c.mem[canon] = ix
	c.mu.Unlock()
}

func (c *Cache) save(canon string, ix *Index) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return SaveSnapshot(c.snapshotPath(canon), ix)
}

func (c *Cache) snapshotPath(canon string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%016x.idx", xxhash.Sum64String(canon)))
}

// CanonicalRoot resolves root to an absolute, symlink-free form so every
// spelling of a directory maps to one cache entry. Resolution failures
// fall back to the cleaned absolute path.
func CanonicalRoot(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Clean(root)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return filepath.Clean(abs)
}
