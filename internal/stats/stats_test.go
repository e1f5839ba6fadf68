package stats

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":      "abc",
		"sub/b.TXT":  "12345",
		"c.rs":       "xy",
		"README":     "read",
		"sub/big.go": strings.Repeat("g", 100),
	})

	report := Collect(context.Background(), root, Options{TopN: 2, Recursive: true})

	assert.Equal(t, 5, report.TotalFiles)
	assert.Equal(t, int64(3+5+2+4+100), report.TotalSize)

	require.Len(t, report.ByExtension, 4)
	assert.Equal(t, ExtensionStats{Extension: "go", Count: 1, TotalSize: 100}, report.ByExtension[0])
	assert.Equal(t, ExtensionStats{Extension: "txt", Count: 2, TotalSize: 8}, report.ByExtension[1],
		"case-insensitive extension grouping")
	assert.Equal(t, ExtensionStats{Extension: noExtKey, Count: 1, TotalSize: 4}, report.ByExtension[2])
	assert.Equal(t, ExtensionStats{Extension: "rs", Count: 1, TotalSize: 2}, report.ByExtension[3])

	require.Len(t, report.LargestFiles, 2)
	assert.Equal(t, filepath.Join(root, "sub", "big.go"), report.LargestFiles[0].Path)
	assert.Equal(t, int64(100), report.LargestFiles[0].Size)
	assert.Equal(t, filepath.Join(root, "sub", "b.TXT"), report.LargestFiles[1].Path)
}

func TestCollectNonRecursive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"top.txt":    "abc",
		"sub/in.txt": "defgh",
	})

	report := Collect(context.Background(), root, Options{TopN: 10, Recursive: false})
	assert.Equal(t, 1, report.TotalFiles)
	assert.Equal(t, int64(3), report.TotalSize)
}

func TestCollectTopNClamped(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"only.txt": "x"})

	report := Collect(context.Background(), root, Options{TopN: 10, Recursive: true})
	assert.Len(t, report.LargestFiles, 1)

	report = Collect(context.Background(), root, Options{TopN: -1, Recursive: true})
	assert.Empty(t, report.LargestFiles)
}

func TestCollectEmptyTree(t *testing.T) {
	report := Collect(context.Background(), t.TempDir(), Options{TopN: 5, Recursive: true})
	assert.Zero(t, report.TotalFiles)
	assert.Zero(t, report.TotalSize)
	assert.NotNil(t, report.ByExtension)
	assert.Empty(t, report.ByExtension)
	assert.NotNil(t, report.LargestFiles)
	assert.Empty(t, report.LargestFiles)
}
