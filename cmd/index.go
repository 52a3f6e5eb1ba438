// This file implements the index command: inspect and rebuild the embedding
// index artifact.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adalundhe/codeatlas/core/embed"
	"github.com/adalundhe/codeatlas/core/storage"
)

// =============================================================================
// Index Command Flags
// =============================================================================

var indexStatusJSON bool

// =============================================================================
// Index Commands
// =============================================================================

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the embedding index",
	Long: `Manage the embedding index artifact.

Examples:
  codeatlas index status     # Show index freshness and statistics
  codeatlas index rebuild    # Rebuild the index from the persisted graph`,
	RunE: runIndexStatus,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index status and statistics",
	RunE:  runIndexStatus,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the index from the persisted graph",
	RunE:  runIndexRebuild,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexStatusCmd)
	indexCmd.AddCommand(indexRebuildCmd)

	indexCmd.PersistentFlags().BoolVar(&indexStatusJSON, "json", false, "Output as JSON")
}

// indexStatus is the status report of the index artifact.
type indexStatus struct {
	Exists         bool      `json:"exists"`
	Stale          bool      `json:"stale"`
	ChunkCount     int       `json:"chunkCount,omitempty"`
	VocabularySize int       `json:"vocabularySize,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
	Version        string    `json:"version,omitempty"`
}

// runIndexStatus executes the status subcommand.
func runIndexStatus(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := storage.NewStore(artifactDir(root, cfg))

	status := indexStatus{Stale: store.IndexStale()}
	idx, err := store.LoadIndex()
	switch {
	case errors.Is(err, storage.ErrNoArtifact):
		// Leave the zero report.
	case err != nil:
		return err
	default:
		status.Exists = true
		status.ChunkCount = idx.ChunkCount()
		status.VocabularySize = idx.VocabularySize()
		status.CreatedAt = idx.CreatedAt
		status.Version = idx.Version
	}

	if indexStatusJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
	}

	out := cmd.OutOrStdout()
	if !status.Exists {
		fmt.Fprintln(out, "No index artifact. Run `codeatlas scan` or `codeatlas index rebuild`.")
		return nil
	}
	fmt.Fprintf(out, "Index: %d chunks, %d terms, built %s (format %s)\n",
		status.ChunkCount, status.VocabularySize,
		status.CreatedAt.Format(time.RFC3339), status.Version)
	if status.Stale {
		fmt.Fprintln(out, "Status: STALE (graph is newer, rebuild recommended)")
	} else {
		fmt.Fprintln(out, "Status: fresh")
	}
	return nil
}

// runIndexRebuild executes the rebuild subcommand.
func runIndexRebuild(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := storage.NewStore(artifactDir(root, cfg))

	g, err := store.LoadGraph()
	if errors.Is(err, storage.ErrNoArtifact) {
		return fmt.Errorf("no graph artifact found, run `codeatlas scan` first")
	}
	if err != nil {
		return err
	}

	idx, err := embed.BuildIndex(g)
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
