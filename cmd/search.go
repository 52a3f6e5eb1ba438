// This file implements the search command: query the knowledge graph with
// keyword, semantic or hybrid ranking.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adalundhe/codeatlas/core/search"
	"github.com/adalundhe/codeatlas/core/session"
	"github.com/adalundhe/codeatlas/core/storage"
)

// SearchMaxLimit caps the --limit flag.
const SearchMaxLimit = 100

// =============================================================================
// Search Command Flags
// =============================================================================

var (
	searchMode  string
	searchLimit int
	searchJSON  bool
)

// =============================================================================
// Search Command
// =============================================================================

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the analyzed repository",
	Long: `Search ranks graph nodes against the query string.

Modes:
  keyword   - substring match on names and paths, no index needed
  semantic  - cosine similarity over the embedding index
  hybrid    - semantic when an index exists, keyword otherwise

Examples:
  codeatlas search "session store"
  codeatlas search --mode keyword createSession
  codeatlas search --mode semantic --limit 5 "token validation"
  codeatlas search --json "auth" | jq '.matches'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "", "Search mode: keyword, semantic, hybrid")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "Maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output results as JSON")
}

// runSearch executes the search command.
func runSearch(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mode := search.Mode(searchMode)
	if searchMode == "" {
		mode = search.Mode(cfg.Search.DefaultMode)
	}
	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Search.Limit
	}
	if limit > SearchMaxLimit {
		limit = SearchMaxLimit
	}

	sess, err := session.New(root, storage.NewStore(artifactDir(root, cfg)), nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	g, err := sess.Graph()
	if errors.Is(err, storage.ErrNoArtifact) {
		return fmt.Errorf("no graph artifact found, run `codeatlas scan` first")
	}
	if err != nil {
		return err
	}

	// The index is optional: keyword works without it and hybrid degrades.
	idx, err := sess.Index()
	if err != nil && !errors.Is(err, storage.ErrNoArtifact) {
		return err
	}

	result, err := search.NewRanker(g, idx).Search(strings.Join(args, " "), mode, limit)
	if err != nil {
		return err
	}

	if searchJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
	}

	printResult(cmd, result)
	return nil
}

// printResult renders matches for a terminal.
func printResult(cmd *cobra.Command, result *search.Result) {
	out := cmd.OutOrStdout()
	if len(result.Matches) == 0 {
		fmt.Fprintf(out, "No results for %q (%s)\n", result.Query, result.Mode)
		return
	}

	fmt.Fprintf(out, "%d results for %q (%s)\n\n", len(result.Matches), result.Query, result.Mode)
	for i, m := range result.Matches {
		fmt.Fprintf(out, "%2d. %-10s %s  %s:%d-%d  (%.3f)\n",
			i+1, m.Kind, m.Name, m.Path, m.StartLine, m.EndLine, m.Score)
	}
}
