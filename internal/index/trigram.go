// Package index implements a trigram index over file basenames for fast
// glob search. Posting lists map each 3-byte window of a lowercased
// basename to the IDs of files containing it; a glob query intersects the
// lists for its literal runs and verifies survivors against the full
// pattern. Indexes snapshot to a single cache file and are resolved
// through a two-tier cache keyed by canonical root.
package index

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"

	"github.com/fiqdev/fiq/internal/walker"
)

type trigram [3]byte

// span locates one relative path inside the packed name buffer.
type span struct {
	off    uint32
	length uint16
}

// Index is an immutable trigram index of one directory tree. Paths are
// stored relative to the root in a packed buffer; file IDs are positions
// in emission order, so posting lists are ascending by construction.
type Index struct {
	root    string
	builtAt time.Time
	names   []byte
	spans   []span
	posting map[trigram][]uint32
}

// Build walks root and indexes every file basename. Build never fails: an
// unreadable root yields a valid empty index.
func Build(ctx context.Context, root string, workers int) *Index {
	// Stamp before the walk so changes racing the build register as stale.
	builtAt := time.Now()
	records := walker.Scan(ctx, root, walker.Options{
		Mode:      walker.ModeNamesOnly,
		Recursive: true,
		Workers:   workers,
	})

	ix := &Index{
		root:    root,
		builtAt: builtAt,
		spans:   make([]span, 0, len(records)),
		posting: make(map[trigram][]uint32),
	}

	bitmaps := make(map[trigram]*roaring.Bitmap)
	for _, rec := range records {
		rel, err := filepath.Rel(root, rec.Path)
		if err != nil {
			continue
		}
		id := uint32(len(ix.spans))
		ix.spans = append(ix.spans, span{
			off:    uint32(len(ix.names)),
			length: uint16(min(len(rel), 65535)),
		})
		ix.names = append(ix.names, rel...)

		lower := strings.ToLower(filepath.Base(rel))
		for i := 0; i+3 <= len(lower); i++ {
			var t trigram
			copy(t[:], lower[i:i+3])
			bm := bitmaps[t]
			if bm == nil {
				bm = roaring.New()
				bitmaps[t] = bm
			}
			bm.Add(id)
		}
	}
	for t, bm := range bitmaps {
		ix.posting[t] = bm.ToArray()
	}

	log.Debug().
		Str("root", root).
		Int("files", len(ix.spans)).
		Int("trigrams", len(ix.posting)).
		Msg("index built")
	return ix
}

// Root returns the canonical root the index was built over.
func (ix *Index) Root() string { return ix.root }

// TotalFiles returns the number of indexed files.
func (ix *Index) TotalFiles() int { return len(ix.spans) }

// BuiltAt returns the build timestamp.
func (ix *Index) BuiltAt() time.Time { return ix.builtAt }

// IsFresh reports whether the root has not been modified since the build.
// Only the root directory's own mtime is checked.
func (ix *Index) IsFresh() bool {
	info, err := os.Stat(ix.root)
	if err != nil {
		return false
	}
	return !info.ModTime().After(ix.builtAt)
}

func (ix *Index) pathAt(id uint32) string {
	s := ix.spans[id]
	return string(ix.names[s.off : s.off+uint32(s.length)])
}

// Lookup returns the root-joined paths whose basename matches pattern.
// ok is false when the pattern yields no trigrams and the index cannot
// serve it; callers must fall back to a walk. A trigram absent from the
// index means no file can match, which is an empty result with ok true.
func (ix *Index) Lookup(pattern string) (paths []string, ok bool) {
	tris := queryTrigrams(pattern)
	if len(tris) == 0 {
		return nil, false
	}

	lists := make([][]uint32, 0, len(tris))
	for _, t := range tris {
		list, present := ix.posting[t]
		if !present {
			return []string{}, true
		}
		lists = append(lists, list)
	}
	// Intersect smallest first to keep the candidate set tight.
	sort.Slice(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })

	ids := lists[0]
	for _, list := range lists[1:] {
		ids = intersect(ids, list)
		if len(ids) == 0 {
			return []string{}, true
		}
	}

	// Trigrams compare lowercased, so candidates are a superset; the glob
	// itself is applied case-sensitively against the stored basename.
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		rel := ix.pathAt(id)
		if matched, _ := doublestar.Match(pattern, filepath.Base(rel)); matched {
			out = append(out, filepath.Join(ix.root, rel))
		}
	}
	return out, true
}

// intersect merge-joins two ascending ID lists without mutating either.
func intersect(a, b []uint32) []uint32 {
	out := make([]uint32, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// Usable reports whether pattern carries enough literal text for the
// index to serve it. Callers check this before touching the cache so an
// unusable pattern never triggers a build.
func Usable(pattern string) bool {
	return len(queryTrigrams(pattern)) > 0
}

// queryTrigrams extracts the deduplicated trigrams of a glob's literal
// runs, in first-seen order. The pattern is lowercased first; runs are
// the substrings between the metacharacters * ? [ ] { }.
func queryTrigrams(pattern string) []trigram {
	lower := strings.ToLower(pattern)
	seen := make(map[trigram]struct{})
	var out []trigram

	emit := func(lit string) {
		for i := 0; i+3 <= len(lit); i++ {
			var t trigram
			copy(t[:], lit[i:i+3])
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}

	start := 0
	for i := 0; i < len(lower); i++ {
		switch lower[i] {
		case '*', '?', '[', ']', '{', '}':
			emit(lower[start:i])
			start = i + 1
		}
	}
	emit(lower[start:])
	return out
}
