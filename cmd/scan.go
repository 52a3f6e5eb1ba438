// This file implements the scan command: build the knowledge graph and the
// embedding index for a repository.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/adalundhe/codeatlas/core/builder"
	"github.com/adalundhe/codeatlas/core/config"
	"github.com/adalundhe/codeatlas/core/discover"
	"github.com/adalundhe/codeatlas/core/embed"
	"github.com/adalundhe/codeatlas/core/storage"
)

// timeRounding trims scan durations for display.
const timeRounding = 10 * time.Millisecond

// =============================================================================
// Scan Command Flags
// =============================================================================

var (
	scanNoHistory bool
	scanNoIndex   bool
	scanWorkers   int
)

// =============================================================================
// Scan Command
// =============================================================================

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Analyze the repository into a knowledge graph",
	Long: `Scan discovers source files, extracts symbols and imports, enriches
file nodes from version-control history, and persists the graph artifact.
Unless disabled, the embedding index is rebuilt afterwards.

Examples:
  codeatlas scan
  codeatlas scan --root ../my-app --workers 4
  codeatlas scan --no-history --no-index`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&scanNoHistory, "no-history", false, "Skip version-control enrichment")
	scanCmd.Flags().BoolVar(&scanNoIndex, "no-index", false, "Skip rebuilding the embedding index")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Extraction worker count (0 = automatic)")
}

// runScan executes the scan command.
func runScan(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := slog.Default()

	workers := cfg.Scan.Workers
	if scanWorkers > 0 {
		workers = scanWorkers
	}

	b := builder.NewBuilder(builder.WithDiscoverFunc(discoverFunc(cfg)))
	result := b.Build(context.Background(), root, builder.Options{
		IncludeHistory: cfg.Scan.IncludeHistory && !scanNoHistory,
		Timeout:        cfg.Scan.Timeout,
		FileTimeout:    cfg.Scan.FileTimeout,
		Workers:        workers,
		Logger:         logger,
		OnProgress:     reportProgress(cmd),
	})

	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	for _, buildErr := range result.Errors {
		logger.Error("scan error", "phase", buildErr.Phase, "path", buildErr.Path, "err", buildErr.Err)
	}

	meta := result.Graph.Metadata()
	fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d files: %d nodes, %d edges in %s\n",
		meta.FileCount, meta.NodeCount, meta.EdgeCount, meta.Duration.Round(timeRounding))

	store := storage.NewStore(artifactDir(root, cfg))
	if err := store.SaveGraph(result.Graph); err != nil {
		return fmt.Errorf("saving graph: %w", err)
	}

	if scanNoIndex || result.Graph.NodeCount() == 0 {
		return nil
	}

	idx, err := embed.BuildIndex(result.Graph)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	if err := store.SaveIndex(idx); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks over %d terms\n",
		idx.ChunkCount(), idx.VocabularySize())
	return nil
}

// discoverFunc adapts the configured scanner to the builder.
func discoverFunc(cfg *config.Config) builder.DiscoverFunc {
	return func(ctx context.Context, root string) ([]string, error) {
		scanner, err := discover.NewScanner(discover.Config{
			RootPath:        root,
			IncludePatterns: cfg.Scan.IncludePatterns,
			ExcludePatterns: cfg.Scan.ExcludePatterns,
			UseGitignore:    cfg.Scan.UseGitignore,
		})
		if err != nil {
			return nil, err
		}
		return scanner.Scan(ctx)
	}
}

// reportProgress prints per-phase progress on a single updating line.
func reportProgress(cmd *cobra.Command) builder.ProgressFunc {
	return func(phase builder.Phase, completed, total int) {
		if total == 0 {
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\r%-8s %d/%d", phase, completed, total)
		if completed == total {
			fmt.Fprintln(cmd.OutOrStdout())
		}
	}
}
