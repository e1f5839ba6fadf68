package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/fiqdev/fiq/internal/dedup"
	"github.com/fiqdev/fiq/internal/organize"
	"github.com/fiqdev/fiq/internal/search"
	"github.com/fiqdev/fiq/internal/stats"
)

// args is a decoded tools/call argument object. The getters treat a
// wrong-typed value the same as an absent one, so sloppy clients get
// defaults rather than errors.
type args map[string]any

func decodeArgs(raw json.RawMessage) args {
	var a args
	if len(raw) == 0 || json.Unmarshal(raw, &a) != nil {
		return args{}
	}
	return a
}

func (a args) str(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok
}

func (a args) strOr(key, def string) string {
	if s, ok := a.str(key); ok {
		return s
	}
	return def
}

func (a args) intOr(key string, def int) int {
	f, ok := a[key].(float64)
	if !ok || f != math.Trunc(f) || f < 0 {
		return def
	}
	return int(f)
}

func (a args) boolOr(key string, def bool) bool {
	if b, ok := a[key].(bool); ok {
		return b
	}
	return def
}

// callTool routes one tools/call. ok is false only for tool names the
// server does not know, which is a protocol-level error.
func (s *Server) callTool(ctx context.Context, name string, a args) (res toolResult, ok bool) {
	switch name {
	case "scan_stats":
		return s.toolScanStats(ctx, a), true
	case "find_duplicates":
		return s.toolFindDuplicates(ctx, a), true
	case "search_files":
		return s.toolSearchFiles(ctx, a), true
	case "organize_files":
		return s.toolOrganizeFiles(ctx, a), true
	case "build_index":
		return s.toolBuildIndex(ctx, a), true
	default:
		return toolResult{}, false
	}
}

func (s *Server) toolScanStats(ctx context.Context, a args) toolResult {
	dir, ok := a.str("directory")
	if !ok {
		return errorResult("Missing required parameter: directory")
	}
	report := stats.Collect(ctx, dir, stats.Options{
		TopN:      a.intOr("top_n", 10),
		Recursive: a.boolOr("recursive", true),
		Workers:   s.workers,
	})
	return jsonResult(report)
}

func (s *Server) toolFindDuplicates(ctx context.Context, a args) toolResult {
	dir, ok := a.str("directory")
	if !ok {
		return errorResult("Missing required parameter: directory")
	}
	report := dedup.Find(ctx, dir, dedup.Options{
		MinSize:   int64(a.intOr("min_size", 1)),
		Recursive: a.boolOr("recursive", true),
		Workers:   s.workers,
	})
	return jsonResult(report)
}

func (s *Server) toolSearchFiles(ctx context.Context, a args) toolResult {
	dir, ok := a.str("directory")
	if !ok {
		return errorResult("Missing required parameter: directory")
	}
	q := search.Query{
		Root:      dir,
		Name:      a.strOr("name", ""),
		Content:   a.strOr("content", ""),
		MinSize:   a.strOr("min_size", ""),
		MaxSize:   a.strOr("max_size", ""),
		Newer:     a.strOr("newer", ""),
		Older:     a.strOr("older", ""),
		Recursive: a.boolOr("recursive", true),
		Workers:   s.workers,
	}
	// Long-lived process, so repeated searches get the memory tier.
	return jsonResult(search.Run(ctx, q, s.cache, true))
}

func (s *Server) toolOrganizeFiles(ctx context.Context, a args) toolResult {
	dir, ok := a.str("directory")
	if !ok {
		return errorResult("Missing required parameter: directory")
	}
	report := organize.Run(ctx, dir, organize.Options{
		By:        a.strOr("by", organize.ByType),
		DryRun:    a.boolOr("dry_run", true),
		Mode:      a.strOr("mode", organize.ModeRename),
		Recursive: a.boolOr("recursive", true),
		Output:    a.strOr("output", ""),
		Workers:   s.workers,
	})
	return jsonResult(report)
}

// indexSummary is the build_index result payload.
type indexSummary struct {
	Root       string `json:"root"`
	TotalFiles int    `json:"total_files"`
}

func (s *Server) toolBuildIndex(ctx context.Context, a args) toolResult {
	dir, ok := a.str("directory")
	if !ok {
		return errorResult("Missing required parameter: directory")
	}
	ix := s.cache.Rebuild(ctx, dir)
	return jsonResult(indexSummary{Root: ix.Root(), TotalFiles: ix.TotalFiles()})
}

func jsonResult(v any) toolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Serialization error: %v", err))
	}
	return textResult(string(b))
}
