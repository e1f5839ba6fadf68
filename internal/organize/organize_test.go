package organize

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
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

func destBases(r Report) []string {
	out := make([]string, 0, len(r.Moves))
	for _, m := range r.Moves {
		out = append(out, filepath.Base(m.To))
	}
	return out
}

func TestCategorizeByType(t *testing.T) {
	cases := map[string]string{
		"jpg":  "Images",
		"mkv":  "Videos",
		"flac": "Audio",
		"pdf":  "Documents",
		"md":   "Documents",
		"zst":  "Archives",
		"go":   "Code",
		"ps1":  "Code",
		"deb":  "Executables",
		"woff": "Fonts",
		"iso":  "DiskImages",
		"xyz":  "Other",
		"":     "Other",
	}
	for ext, want := range cases {
		assert.Equal(t, want, categorizeByType(ext), ext)
	}
}

func TestCategorizeBySize(t *testing.T) {
	cases := map[int64]string{
		0:             "Empty",
		1:             "Tiny (< 1KB)",
		999:           "Tiny (< 1KB)",
		1_000:         "Small (1KB-1MB)",
		999_999:       "Small (1KB-1MB)",
		1_000_000:     "Medium (1MB-100MB)",
		99_999_999:    "Medium (1MB-100MB)",
		100_000_000:   "Large (100MB-1GB)",
		999_999_999:   "Large (100MB-1GB)",
		1_000_000_000: "Huge (> 1GB)",
	}
	for size, want := range cases {
		assert.Equal(t, want, categorizeBySize(size), size)
	}
}

func TestNumberedName(t *testing.T) {
	assert.Equal(t, "report_1.pdf", numberedName("report.pdf", 1))
	assert.Equal(t, "report_12.pdf", numberedName("report.pdf", 12))
	assert.Equal(t, "README_1", numberedName("README", 1))
	assert.Equal(t, ".bashrc_1", numberedName(".bashrc", 1))
	assert.Equal(t, "archive.tar_2.gz", numberedName("archive.tar.gz", 2))
}

func TestRunDryRunByType(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"photo.jpg": "p",
		"song.mp3":  "s",
		"doc.pdf":   "d",
		"mystery":   "m",
	})

	report := Run(context.Background(), root, Options{
		By: ByType, DryRun: true, Mode: ModeRename, Recursive: true,
	})

	assert.True(t, report.DryRun)
	assert.Equal(t, 4, report.TotalFiles)
	assert.Empty(t, report.Errors)
	_, err := uuid.Parse(report.RunID)
	assert.NoError(t, err)

	byFrom := make(map[string]string)
	for _, m := range report.Moves {
		byFrom[filepath.Base(m.From)] = m.To
	}
	assert.Equal(t, filepath.Join(root, "Images", "photo.jpg"), byFrom["photo.jpg"])
	assert.Equal(t, filepath.Join(root, "Audio", "song.mp3"), byFrom["song.mp3"])
	assert.Equal(t, filepath.Join(root, "Documents", "doc.pdf"), byFrom["doc.pdf"])
	assert.Equal(t, filepath.Join(root, "Other", "mystery"), byFrom["mystery"])

	// Nothing touched the filesystem.
	_, err = os.Stat(filepath.Join(root, "Images"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "photo.jpg"))
	assert.NoError(t, err)
}

func TestRunRealByType(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"photo.jpg": "picture",
		"notes.txt": "text",
	})

	report := Run(context.Background(), root, Options{
		By: ByType, Mode: ModeRename, Recursive: true,
	})

	assert.False(t, report.DryRun)
	assert.Empty(t, report.Errors)
	assert.Len(t, report.Moves, 2)

	moved, err := os.ReadFile(filepath.Join(root, "Images", "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "picture", string(moved))
	_, err = os.Stat(filepath.Join(root, "photo.jpg"))
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, filepath.Join(root, "Documents", "notes.txt"))
}

func TestRunAlreadyOrganized(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Images/photo.jpg": "p",
	})

	report := Run(context.Background(), root, Options{
		By: ByType, Mode: ModeRename, Recursive: true,
	})
	assert.Empty(t, report.Moves, "files already in place are skipped")
	assert.FileExists(t, filepath.Join(root, "Images", "photo.jpg"))
}

func TestRunCollisionRename(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/dup.txt": "first",
		"b/dup.txt": "second",
	})

	report := Run(context.Background(), root, Options{
		By: ByType, Mode: ModeRename, Recursive: true,
	})

	assert.Empty(t, report.Errors)
	assert.ElementsMatch(t, []string{"dup.txt", "dup_1.txt"}, destBases(report))
	assert.FileExists(t, filepath.Join(root, "Documents", "dup.txt"))
	assert.FileExists(t, filepath.Join(root, "Documents", "dup_1.txt"))
}

func TestRunCollisionSkip(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"dup.txt":           "incoming",
		"Documents/dup.txt": "existing",
	})

	report := Run(context.Background(), root, Options{
		By: ByType, Mode: ModeSkip, Recursive: true,
	})

	assert.Empty(t, report.Moves)
	existing, err := os.ReadFile(filepath.Join(root, "Documents", "dup.txt"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(existing))
	assert.FileExists(t, filepath.Join(root, "dup.txt"), "skipped source stays put")
}

func TestRunCollisionOverwrite(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"dup.txt":           "incoming",
		"Documents/dup.txt": "existing",
	})

	report := Run(context.Background(), root, Options{
		By: ByType, Mode: ModeOverwrite, Recursive: true,
	})

	require.Len(t, report.Moves, 1)
	content, err := os.ReadFile(filepath.Join(root, "Documents", "dup.txt"))
	require.NoError(t, err)
	assert.Equal(t, "incoming", string(content))
	_, err = os.Stat(filepath.Join(root, "dup.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunDryRunSimulatesRenames(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/dup.txt": "1",
		"b/dup.txt": "2",
		"c/dup.txt": "3",
	})

	report := Run(context.Background(), root, Options{
		By: ByType, DryRun: true, Mode: ModeRename, Recursive: true,
	})
	assert.ElementsMatch(t, []string{"dup.txt", "dup_1.txt", "dup_2.txt"}, destBases(report))
}

func TestRunByDate(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"old.txt": "x"})
	mtime := time.Date(2023, 7, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(root, "old.txt"), mtime, mtime))

	report := Run(context.Background(), root, Options{
		By: ByDate, Mode: ModeRename, Recursive: true,
	})

	require.Len(t, report.Moves, 1)
	wantDir := mtime.Local().Format("2006/01")
	assert.Equal(t, filepath.Join(root, wantDir, "old.txt"), report.Moves[0].To)
	assert.FileExists(t, report.Moves[0].To)
}

func TestRunByDateBadImageFallsBackToMtime(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"shot.jpg": "not a real jpeg"})
	mtime := time.Date(2022, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(root, "shot.jpg"), mtime, mtime))

	report := Run(context.Background(), root, Options{
		By: ByDate, Mode: ModeRename, Recursive: true,
	})

	require.Len(t, report.Moves, 1)
	assert.Equal(t, filepath.Join(root, mtime.Local().Format("2006/01"), "shot.jpg"), report.Moves[0].To)
}

func TestRunBySize(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"empty": "",
		"tiny":  "abc",
		"big":   strings.Repeat("x", 5000),
	})

	report := Run(context.Background(), root, Options{
		By: BySize, Mode: ModeRename, Recursive: true,
	})

	assert.FileExists(t, filepath.Join(root, "Empty", "empty"))
	assert.FileExists(t, filepath.Join(root, "Tiny (< 1KB)", "tiny"))
	assert.FileExists(t, filepath.Join(root, "Small (1KB-1MB)", "big"))
	assert.Len(t, report.Moves, 3)
}

func TestRunOutputDir(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeTree(t, root, map[string]string{"notes.md": "md"})

	report := Run(context.Background(), root, Options{
		By: ByType, Mode: ModeRename, Recursive: true, Output: out,
	})

	require.Len(t, report.Moves, 1)
	assert.FileExists(t, filepath.Join(out, "Documents", "notes.md"))
	_, err := os.Stat(filepath.Join(root, "notes.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunUnknownStrategy(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a", "b.txt": "b"})

	report := Run(context.Background(), root, Options{
		By: "flavor", Mode: ModeRename, Recursive: true,
	})
	assert.Empty(t, report.Moves)
	assert.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0], "unknown strategy")
}

func TestRunNonRecursive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"top.txt":       "t",
		"nested/in.txt": "n",
	})

	report := Run(context.Background(), root, Options{
		By: ByType, Mode: ModeRename, Recursive: false,
	})
	assert.Len(t, report.Moves, 1)
	assert.FileExists(t, filepath.Join(root, "nested", "in.txt"))
}

func TestCopyThenDelete(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	require.NoError(t, copyThenDelete(src, dst))

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestResolveCollision(t *testing.T) {
	dir := t.TempDir()
	taken := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(taken, []byte("x"), 0o644))

	assert.Equal(t, taken, resolveCollision(taken, ModeOverwrite))
	assert.Equal(t, filepath.Join(dir, "file_1.txt"), resolveCollision(taken, ModeRename))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "file_1.txt"), []byte("y"), 0o644))
	assert.Equal(t, filepath.Join(dir, "file_2.txt"), resolveCollision(taken, ModeRename))

	free := filepath.Join(dir, "unclaimed.txt")
	assert.Equal(t, free, resolveCollision(free, ModeRename))
}
