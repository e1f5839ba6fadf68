package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/fiqdev/fiq/internal/config"
	"github.com/fiqdev/fiq/internal/dedup"
	"github.com/fiqdev/fiq/internal/index"
	"github.com/fiqdev/fiq/internal/mcp"
	"github.com/fiqdev/fiq/internal/organize"
	"github.com/fiqdev/fiq/internal/render"
	"github.com/fiqdev/fiq/internal/search"
	"github.com/fiqdev/fiq/internal/stats"
)

var version = "0.1.0"

var (
	cfg     *config.Config
	mcpMode bool
	verbose bool

	statsTop       int
	statsRecursive bool

	dupMinSize   int64
	dupRecursive bool

	searchName      string
	searchContent   string
	searchMinSize   string
	searchMaxSize   string
	searchNewer     string
	searchOlder     string
	searchRecursive bool

	orgBy        string
	orgDryRun    bool
	orgMode      string
	orgRecursive bool
	orgOutput    string
)

var rootCmd = &cobra.Command{
	Use:     "fiq",
	Short:   "Fast file intelligence CLI + MCP server",
	Long:    "Fast file intelligence: scan statistics, duplicate detection, indexed search\nand file organization, usable as a CLI or as an MCP server over stdio.",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = loadConfig()
		setupLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		if mcpMode {
			runMCP(cmd.Context())
			return
		}
		fmt.Fprintln(os.Stderr, "No command specified. Use --help for usage information.")
		os.Exit(1)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [directory]",
	Short: "Show file statistics for a directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		report := stats.Collect(cmd.Context(), dirArg(args), stats.Options{
			TopN:      statsTop,
			Recursive: statsRecursive,
			Workers:   cfg.Threads,
		})
		render.New(os.Stdout).Stats(report)
	},
}

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates [directory]",
	Short: "Find duplicate files by content hash",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			once sync.Once
			bar  *progressbar.ProgressBar
		)
		report := dedup.Find(cmd.Context(), dirArg(args), dedup.Options{
			MinSize:   dupMinSize,
			Recursive: dupRecursive,
			Workers:   cfg.Threads,
			OnHash: func(done, total int) {
				once.Do(func() { bar = newHashBar(total) })
				_ = bar.Set(done)
			},
		})
		if bar != nil {
			_ = bar.Finish()
		}
		render.New(os.Stdout).Duplicates(report)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [directory]",
	Short: "Search for files by name, content, size, or date",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cache := index.NewCache(cfg.CacheDir, cfg.Threads)
		result := search.Run(cmd.Context(), search.Query{
			Root:      dirArg(args),
			Name:      searchName,
			Content:   searchContent,
			MinSize:   searchMinSize,
			MaxSize:   searchMaxSize,
			Newer:     searchNewer,
			Older:     searchOlder,
			Recursive: searchRecursive,
			Workers:   cfg.Threads,
		}, cache, false)
		render.New(os.Stdout).Search(result)
	},
}

var organizeCmd = &cobra.Command{
	Use:   "organize <directory>",
	Short: "Organize files into folders by type, date, or size",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		report := organize.Run(cmd.Context(), args[0], organize.Options{
			By:        orgBy,
			DryRun:    orgDryRun,
			Mode:      orgMode,
			Recursive: orgRecursive,
			Output:    orgOutput,
			Workers:   cfg.Threads,
		})
		render.New(os.Stdout).Organize(report)
	},
}

func init() {
	rootCmd.Flags().BoolVar(&mcpMode, "mcp", false, "run as MCP (Model Context Protocol) JSON-RPC server over stdio")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	statsCmd.Flags().IntVar(&statsTop, "top", 10, "number of largest files to show")
	statsCmd.Flags().BoolVarP(&statsRecursive, "recursive", "r", true, "scan recursively")

	duplicatesCmd.Flags().Int64Var(&dupMinSize, "min-size", 1, "minimum file size to consider (bytes)")
	duplicatesCmd.Flags().BoolVarP(&dupRecursive, "recursive", "r", true, "scan recursively")

	searchCmd.Flags().StringVar(&searchName, "name", "", `glob pattern for file names (e.g. "*.rs")`)
	searchCmd.Flags().StringVar(&searchContent, "content", "", "search file contents for this string")
	searchCmd.Flags().StringVar(&searchMinSize, "min-size", "", `minimum file size (e.g. "1KB", "10MB")`)
	searchCmd.Flags().StringVar(&searchMaxSize, "max-size", "", `maximum file size (e.g. "100MB", "1GB")`)
	searchCmd.Flags().StringVar(&searchNewer, "newer", "", `files newer than this (e.g. "2024-01-01", "7d", "24h")`)
	searchCmd.Flags().StringVar(&searchOlder, "older", "", `files older than this (e.g. "2024-01-01", "7d", "24h")`)
	searchCmd.Flags().BoolVarP(&searchRecursive, "recursive", "r", true, "scan recursively")

	organizeCmd.Flags().StringVar(&orgBy, "by", organize.ByType, "organization strategy: type, date, or size")
	organizeCmd.Flags().BoolVar(&orgDryRun, "dry-run", false, "preview changes without moving files")
	organizeCmd.Flags().StringVar(&orgMode, "mode", organize.ModeRename, "how to handle conflicts: skip, rename, overwrite")
	organizeCmd.Flags().BoolVarP(&orgRecursive, "recursive", "r", true, "process subdirectories")
	organizeCmd.Flags().StringVar(&orgOutput, "output", "", "output directory (default: organize in-place)")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(duplicatesCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(organizeCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	c, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// setupLogging routes all log output to stderr so stdout stays clean for
// results and JSON-RPC traffic.
func setupLogging() {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

func runMCP(ctx context.Context) {
	cache := index.NewCache(cfg.CacheDir, cfg.Threads)
	srv := mcp.NewServer(cache, cfg.Threads, version)
	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("mcp server stopped")
		os.Exit(1)
	}
}

func dirArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func newHashBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions64(int64(total),
		progressbar.OptionSetDescription("hashing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65),
		progressbar.OptionShowCount(),
		progressbar.OptionSetVisibility(isatty.IsTerminal(os.Stderr.Fd())),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)
}
