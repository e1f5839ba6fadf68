package index

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundtrip(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.rs":       "fn main() {}",
		"lib.rs":        "",
		"src/parser.rs": "",
		"readme.md":     "",
	})
	ix := Build(context.Background(), root, 0)

	path := filepath.Join(t.TempDir(), "snap.idx")
	require.NoError(t, SaveSnapshot(path, ix))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, ix.Root(), loaded.Root())
	assert.Equal(t, ix.TotalFiles(), loaded.TotalFiles())
	assert.True(t, ix.BuiltAt().Equal(loaded.BuiltAt()))

	want, ok := ix.Lookup("*.rs")
	require.True(t, ok)
	got, ok := loaded.Lookup("*.rs")
	require.True(t, ok)
	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
}

func TestSnapshotRoundtripEmptyIndex(t *testing.T) {
	ix := Build(context.Background(), t.TempDir(), 0)

	path := filepath.Join(t.TempDir(), "snap.idx")
	require.NoError(t, SaveSnapshot(path, ix))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Zero(t, loaded.TotalFiles())
}

func TestLoadSnapshotRejectsGarbage(t *testing.T) {
	dir := t.TempDir()

	junk := filepath.Join(dir, "junk.idx")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not an index"), 0o644))
	_, err := LoadSnapshot(junk)
	assert.Error(t, err)

	truncated := filepath.Join(dir, "short.idx")
	require.NoError(t, os.WriteFile(truncated, []byte("FI"), 0o644))
	_, err = LoadSnapshot(truncated)
	assert.Error(t, err)

	_, err = LoadSnapshot(filepath.Join(dir, "absent.idx"))
	assert.Error(t, err)
}

func TestCacheMemoryTier(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.rs": ""})
	c := NewCache(t.TempDir(), 0)

	first := c.Get(context.Background(), root, true)
	second := c.Get(context.Background(), root, true)
	assert.Same(t, first, second, "fresh memory entry is reused")
}

func TestCacheSkipsMemoryWhenDisabled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.rs": ""})
	c := NewCache(t.TempDir(), 0)

	first := c.Get(context.Background(), root, false)
	second := c.Get(context.Background(), root, false)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.TotalFiles(), second.TotalFiles())
}

func TestCacheDiskTier(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.rs": "", "b.rs": ""})
	dir := t.TempDir()

	first := NewCache(dir, 0).Get(context.Background(), root, false)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".idx", filepath.Ext(entries[0].Name()))

	// A separate cache over the same directory loads the snapshot instead
	// of rebuilding, observable through the preserved build timestamp.
	reloaded := NewCache(dir, 0).Get(context.Background(), root, false)
	assert.True(t, first.BuiltAt().Equal(reloaded.BuiltAt()))
	assert.Equal(t, 2, reloaded.TotalFiles())
}

func TestCacheRebuild(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.rs": ""})
	c := NewCache(t.TempDir(), 0)

	first := c.Get(context.Background(), root, true)
	rebuilt := c.Rebuild(context.Background(), root)
	assert.NotSame(t, first, rebuilt)

	after := c.Get(context.Background(), root, true)
	assert.Same(t, rebuilt, after, "rebuild replaces the memory entry")
}

func TestCacheStaleEntryRebuilt(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.rs": ""})
	c := NewCache(t.TempDir(), 0)

	first := c.Get(context.Background(), root, true)

	future := first.BuiltAt().Add(time.Hour)
	require.NoError(t, os.Chtimes(root, future, future))

	second := c.Get(context.Background(), root, true)
	assert.NotSame(t, first, second)
}

func TestCanonicalRoot(t *testing.T) {
	dir := t.TempDir()
	resolved := CanonicalRoot(dir)

	nested := filepath.Join(dir, "a", "..")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a"), 0o755))
	assert.Equal(t, resolved, CanonicalRoot(nested))

	// Missing paths still canonicalize to something stable.
	missing := filepath.Join(dir, "nope")
	assert.Equal(t, CanonicalRoot(missing), CanonicalRoot(missing))
	assert.True(t, filepath.IsAbs(CanonicalRoot(missing)))
}

func TestCacheSurvivesUnwritableDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.rs": ""})

	// Snapshot dir is a file, so MkdirAll fails; Get still serves a build.
	blocked := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	ix := NewCache(blocked, 0).Get(context.Background(), root, false)
	require.NotNil(t, ix)
	assert.Equal(t, 1, ix.TotalFiles())
}
