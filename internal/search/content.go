package search

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/edsrzf/mmap-go"
)

const (
	mmapThreshold     = 128 * 1024
	maxMatchesPerFile = 10
	maxLineBytes      = 200
)

// ContentMatch is one matching line of a content search.
type ContentMatch struct {
	LineNumber int    `json:"line_number"`
	Line       string `json:"line"`
}

// contentMatches scans the file at path for query, case-insensitively,
// line by line. At most ten matching lines are returned, in file order;
// nil means no match or an unreadable file. Bytes are treated as text
// best-effort, so binary files may yield garbled lines rather than being
// skipped.
func contentMatches(path string, size int64, query string) []ContentMatch {
	content, ok := loadContent(path, size)
	if !ok {
		return nil
	}

	queryLower := strings.ToLower(query)
	var matches []ContentMatch

	lineNo := 0
	for start := 0; start < len(content); {
		var line string
		if nl := strings.IndexByte(content[start:], '\n'); nl >= 0 {
			line = content[start : start+nl]
			start += nl + 1
		} else {
			line = content[start:]
			start = len(content)
		}
		lineNo++
		line = strings.TrimSuffix(line, "\r")

		if !strings.Contains(strings.ToLower(line), queryLower) {
			continue
		}
		matches = append(matches, ContentMatch{
			LineNumber: lineNo,
			Line:       clipLine(line),
		})
		if len(matches) == maxMatchesPerFile {
			break
		}
	}
	return matches
}

func loadContent(path string, size int64) (string, bool) {
	if size < mmapThreshold {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", false
		}
		return string(data), true
	}

	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return "", false
	}
	defer m.Unmap()
	return string(m), true
}

// clipLine truncates lines longer than maxLineBytes at a rune boundary
// and marks the cut.
func clipLine(line string) string {
	if len(line) <= maxLineBytes {
		return line
	}
	end := maxLineBytes
	for end > 0 && !utf8.RuneStart(line[end]) {
		end--
	}
	return line[:end] + "..."
}
