// Package cmd provides the codeatlas command-line interface.
package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adalundhe/codeatlas/core/config"
)

// =============================================================================
// Global Flags
// =============================================================================

var (
	rootPath   string
	configPath string
	verbose    bool
)

// =============================================================================
// Root Command
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "codeatlas",
	Short: "Codeatlas - repository knowledge graph and code search",
	Long: `Codeatlas analyzes a TypeScript/JavaScript repository into a knowledge
graph of files, functions, classes and their relationships, builds a TF-IDF
embedding index over it, and answers keyword, semantic and hybrid queries.`,
	PersistentPreRunE: setupLogging,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootPath, "root", "r", ".", "Repository root to analyze")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default <root>/"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// setupLogging installs the process logger before any command runs.
func setupLogging(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig resolves the repository root and reads its configuration.
func loadConfig() (string, *config.Config, error) {
	root, err := filepath.Abs(rootPath)
	if err != nil {
		return "", nil, err
	}

	path := configPath
	if path == "" {
		path = filepath.Join(root, config.DefaultFileName)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

// artifactDir resolves the artifact directory against the repository root.
func artifactDir(root string, cfg *config.Config) string {
	dir := cfg.Artifacts.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return dir
}
