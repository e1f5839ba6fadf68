// Package organize moves files into category folders by type, date or
// size. A dry run produces the move list without touching the
// filesystem; real runs resolve name collisions per the configured mode
// and fall back to copy+delete for cross-device destinations.
package organize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fiqdev/fiq/internal/walker"
)

// Organization strategies.
const (
	ByType = "type"
	ByDate = "date"
	BySize = "size"
)

// Collision modes.
const (
	ModeSkip      = "skip"
	ModeRename    = "rename"
	ModeOverwrite = "overwrite"
)

// Move is one planned or executed relocation.
type Move struct {
	From string `json:"from"`
	To   string `json:"to"`
	Size int64  `json:"size"`
}

// Report summarizes one run. RunID lets callers correlate a dry run with
// the real run that follows it.
type Report struct {
	RunID      string   `json:"run_id"`
	TotalFiles int      `json:"total_files"`
	Moves      []Move   `json:"moves"`
	DryRun     bool     `json:"dry_run"`
	Errors     []string `json:"errors"`
}

// Options configures a run.
type Options struct {
	By        string // type, date or size
	DryRun    bool
	Mode      string // skip, rename or overwrite
	Recursive bool
	Output    string // destination base; empty reuses the scanned root
	Workers   int
}

// Run organizes the files under root. Files already at their destination
// are left alone; per-file failures become report errors rather than
// aborting the run.
func Run(ctx context.Context, root string, opts Options) Report {
	outputBase := opts.Output
	if outputBase == "" {
		outputBase = root
	}

	records := walker.Scan(ctx, root, walker.Options{
		Mode:      walker.ModeFull,
		Recursive: opts.Recursive,
		Workers:   opts.Workers,
	})

	report := Report{
		RunID:      uuid.NewString(),
		TotalFiles: len(records),
		Moves:      []Move{},
		DryRun:     opts.DryRun,
		Errors:     []string{},
	}

	// Dry runs simulate rename collisions purely by counting planned
	// destinations; the filesystem is never consulted.
	destCounts := make(map[string]int)

	for _, rec := range records {
		var category string
		switch opts.By {
		case ByType:
			category = categorizeByType(rec.Ext)
		case ByDate:
			category = categorizeByDate(rec)
		case BySize:
			category = categorizeBySize(rec.Size)
		default:
			report.Errors = append(report.Errors, fmt.Sprintf("unknown strategy: %s", opts.By))
			continue
		}

		destDir := filepath.Join(outputBase, category)
		destPath := filepath.Join(destDir, filepath.Base(rec.Path))
		if rec.Path == destPath {
			continue
		}

		finalDest := destPath
		if opts.DryRun {
			destCounts[destPath]++
			if n := destCounts[destPath]; n > 1 && opts.Mode == ModeRename {
				finalDest = filepath.Join(destDir, numberedName(filepath.Base(destPath), n-1))
			}
		} else {
			if err := os.MkdirAll(destDir, 0o755); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("create %s: %v", destDir, err))
				continue
			}
			if opts.Mode == ModeSkip {
				if _, err := os.Stat(destPath); err == nil {
					continue
				}
			}
			resolved := resolveCollision(destPath, opts.Mode)
			if err := moveFile(rec.Path, resolved); err != nil {
				report.Errors = append(report.Errors, err.Error())
				continue
			}
			finalDest = resolved
		}

		report.Moves = append(report.Moves, Move{From: rec.Path, To: finalDest, Size: rec.Size})
	}

	log.Debug().
		Str("run_id", report.RunID).
		Str("by", opts.By).
		Bool("dry_run", opts.DryRun).
		Int("moves", len(report.Moves)).
		Int("errors", len(report.Errors)).
		Msg("organize complete")
	return report
}

// moveFile renames src onto dst, falling back to copy+delete when the
// destination sits on another device.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDeviceError(err) {
		return fmt.Errorf("move %s -> %s: %v", src, dst, err)
	}
	log.Debug().Str("src", src).Str("dst", dst).Msg("cross-device move, copying")
	if err := copyThenDelete(src, dst); err != nil {
		return fmt.Errorf("copy %s -> %s: %v", src, dst, err)
	}
	return nil
}

func isCrossDeviceError(err error) bool {
	if linkErr, ok := err.(*os.LinkError); ok {
		return linkErr.Err == syscall.EXDEV
	}
	return errors.Is(err, syscall.EXDEV)
}

func copyThenDelete(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	return os.Remove(src)
}
