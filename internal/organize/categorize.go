package organize

import (
	"os"
	"time"

	exiflib "github.com/rwcarlsen/goexif/exif"

	"github.com/fiqdev/fiq/internal/walker"
)

// categorizeByType maps a lowercased extension to its category folder.
func categorizeByType(ext string) string {
	switch ext {
	case "jpg", "jpeg", "png", "gif", "bmp", "svg", "webp", "ico", "tiff", "tif":
		return "Images"
	case "mp4", "mkv", "avi", "mov", "wmv", "flv", "webm":
		return "Videos"
	case "mp3", "wav", "flac", "aac", "ogg", "wma", "m4a":
		return "Audio"
	case "pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "odt", "ods", "odp",
		"txt", "rtf", "csv", "md":
		return "Documents"
	case "zip", "tar", "gz", "bz2", "xz", "7z", "rar", "zst":
		return "Archives"
	case "rs", "py", "js", "ts", "go", "c", "cpp", "h", "hpp", "java", "rb", "php",
		"swift", "kt", "cs", "sh", "bash", "zsh", "fish", "ps1", "toml", "yaml",
		"yml", "json", "xml", "html", "css", "scss", "less", "sql", "r", "lua",
		"vim", "el", "ex", "exs", "hs", "ml", "clj":
		return "Code"
	case "exe", "msi", "dmg", "app", "deb", "rpm", "appimage", "bin":
		return "Executables"
	case "ttf", "otf", "woff", "woff2", "eot":
		return "Fonts"
	case "iso", "img", "vmdk", "vdi", "qcow2":
		return "DiskImages"
	default:
		return "Other"
	}
}

// categorizeByDate buckets by capture or modification month, as a nested
// YYYY/MM folder in local time. Images prefer their EXIF capture time
// when one is readable.
func categorizeByDate(rec walker.FileRecord) string {
	t := rec.Modified
	if categorizeByType(rec.Ext) == "Images" {
		if captured := exifTime(rec.Path); !captured.IsZero() {
			t = captured
		}
	}
	if t.IsZero() {
		return "Unknown"
	}
	return t.Local().Format("2006/01")
}

// categorizeBySize buckets by decimal size ranges.
func categorizeBySize(size int64) string {
	switch {
	case size == 0:
		return "Empty"
	case size < 1_000:
		return "Tiny (< 1KB)"
	case size < 1_000_000:
		return "Small (1KB-1MB)"
	case size < 100_000_000:
		return "Medium (1MB-100MB)"
	case size < 1_000_000_000:
		return "Large (100MB-1GB)"
	default:
		return "Huge (> 1GB)"
	}
}

// exifTime returns the capture time recorded in the file's EXIF data, or
// a zero time when none is readable.
func exifTime(path string) time.Time {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}
	}
	defer f.Close()

	x, err := exiflib.Decode(f)
	if err != nil {
		return time.Time{}
	}
	t, err := x.DateTime()
	if err != nil {
		return time.Time{}
	}
	return t
}
