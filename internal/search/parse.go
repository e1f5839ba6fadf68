package search

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseSize parses a human size string into bytes. Accepted forms are a
// plain byte count and a number with a B, KB, MB or GB suffix (decimal
// multipliers); fractional numbers are truncated. ok is false for
// anything else, which callers treat as "no bound".
func ParseSize(s string) (bytes int64, ok bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
		return n, true
	}

	var num string
	var mult float64
	switch {
	case strings.HasSuffix(s, "GB"):
		num, mult = strings.TrimSuffix(s, "GB"), 1e9
	case strings.HasSuffix(s, "MB"):
		num, mult = strings.TrimSuffix(s, "MB"), 1e6
	case strings.HasSuffix(s, "KB"):
		num, mult = strings.TrimSuffix(s, "KB"), 1e3
	case strings.HasSuffix(s, "B"):
		num, mult = strings.TrimSuffix(s, "B"), 1
	default:
		return 0, false
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || f < 0 || f*mult > math.MaxInt64 {
		return 0, false
	}
	return int64(f * mult), true
}

// ParseTime parses a modification-time bound: an absolute date
// "YYYY-MM-DD" (midnight UTC, pre-epoch rejected) or a relative age like
// "7d", "24h", "30m" counted back from now.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)

	if len(s) == 10 && s[4] == '-' {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			if t.Unix() < 0 {
				return time.Time{}, false
			}
			return t, true
		}
	}

	var unit time.Duration
	switch {
	case strings.HasSuffix(s, "d"):
		unit = 24 * time.Hour
	case strings.HasSuffix(s, "h"):
		unit = time.Hour
	case strings.HasSuffix(s, "m"):
		unit = time.Minute
	default:
		return time.Time{}, false
	}

	n, err := strconv.ParseUint(strings.TrimSpace(s[:len(s)-1]), 10, 64)
	if err != nil || n > uint64(math.MaxInt64/unit) {
		return time.Time{}, false
	}
	return time.Now().Add(-time.Duration(n) * unit), true
}
