package organize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolveCollision decides where a move lands when its destination may
// already exist. Overwrite and absent destinations pass through; rename
// probes numbered alternatives and gives up on the original name after
// 999 tries. Skip destinations are filtered by the caller before this
// runs.
func resolveCollision(dest, mode string) string {
	if _, err := os.Stat(dest); err != nil || mode == ModeOverwrite {
		return dest
	}
	if mode == ModeSkip {
		return dest
	}

	dir, base := filepath.Dir(dest), filepath.Base(dest)
	for i := 1; i < 1000; i++ {
		candidate := filepath.Join(dir, numberedName(base, i))
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
	return dest
}

// numberedName inserts _n before the extension: "report.pdf" becomes
// "report_1.pdf", "README" becomes "README_1".
func numberedName(name string, n int) string {
	stem, ext := splitName(name)
	if ext == "" {
		return fmt.Sprintf("%s_%d", stem, n)
	}
	return fmt.Sprintf("%s_%d.%s", stem, n, ext)
}

// splitName separates the final extension from a basename. Dotfiles have
// no extension.
func splitName(name string) (stem, ext string) {
	e := filepath.Ext(name)
	if e == "" || e == name {
		return name, ""
	}
	return strings.TrimSuffix(name, e), strings.TrimPrefix(e, ".")
}
