// Package search ranks knowledge graph nodes against free-text queries.
// Keyword ranking works directly off the graph; semantic ranking requires a
// built embedding index and scores by cosine similarity.
package search

import (
	"errors"
	"sort"
	"strings"

	"github.com/adalundhe/codeatlas/core/embed"
	"github.com/adalundhe/codeatlas/core/graph"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrNoIndex indicates semantic search was requested without a loaded
	// embedding index.
	ErrNoIndex = errors.New("no embedding index loaded")

	// ErrEmptyQuery indicates the query string was blank.
	ErrEmptyQuery = errors.New("empty query")

	// ErrUnknownMode indicates an unrecognized search mode.
	ErrUnknownMode = errors.New("unknown search mode")
)

// =============================================================================
// Types
// =============================================================================

// Mode selects the ranking strategy.
type Mode string

const (
	// ModeKeyword matches node names and paths by substring, no index needed.
	ModeKeyword Mode = "keyword"

	// ModeSemantic ranks by cosine similarity, requires an index.
	ModeSemantic Mode = "semantic"

	// ModeHybrid tries semantic and degrades to keyword without an index.
	ModeHybrid Mode = "hybrid"
)

// DefaultLimit caps results when the caller does not give a limit.
const DefaultLimit = 10

// Keyword scoring tiers, strongest match wins.
const (
	scoreExactName    = 1.0
	scoreNamePrefix   = 0.8
	scoreNameContains = 0.6
	scorePathContains = 0.4
)

// Match is one ranked hit.
type Match struct {
	// ID is the matched node's identifier.
	ID string `json:"id"`

	// Name is the node's display name.
	Name string `json:"name"`

	// Path is the owning file.
	Path string `json:"path"`

	// Kind is the node kind.
	Kind graph.NodeKind `json:"kind"`

	// StartLine and EndLine bound the match in its file.
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`

	// Score is the ranking score: a keyword tier or a cosine similarity.
	Score float64 `json:"score"`
}

// Result is a ranked result set. Mode records the strategy that actually
// ran, which differs from the requested mode when hybrid degrades.
type Result struct {
	// Query is the original query string.
	Query string `json:"query"`

	// Mode is the strategy that produced the matches.
	Mode Mode `json:"mode"`

	// Matches holds hits in descending score order.
	Matches []Match `json:"matches"`
}

// =============================================================================
// Ranker
// =============================================================================

// Ranker executes queries against one graph snapshot and, optionally, its
// embedding index. A nil index disables semantic mode.
type Ranker struct {
	graph *graph.KnowledgeGraph
	index *embed.Index
}

// NewRanker creates a ranker. index may be nil when only keyword search is
// needed.
func NewRanker(g *graph.KnowledgeGraph, index *embed.Index) *Ranker {
	return &Ranker{graph: g, index: index}
}

// Search ranks nodes against the query. limit <= 0 applies DefaultLimit.
func (r *Ranker) Search(query string, mode Mode, limit int) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	switch mode {
	case ModeKeyword:
		return r.keyword(query, limit), nil
	case ModeSemantic:
		if r.index == nil {
			return nil, ErrNoIndex
		}
		return r.semantic(query, limit), nil
	case ModeHybrid:
		if r.index == nil {
			return r.keyword(query, limit), nil
		}
		return r.semantic(query, limit), nil
	default:
		return nil, ErrUnknownMode
	}
}

// keyword scores every node by the strongest of four substring tiers: exact
// name fold, name prefix, name substring, path substring.
func (r *Ranker) keyword(query string, limit int) *Result {
	needle := strings.ToLower(strings.TrimSpace(query))

	var matches []Match
	for _, node := range r.graph.Nodes() {
		base := node.Base()
		score := keywordScore(needle, base.Name, base.Path)
		if score == 0 {
			continue
		}
		matches = append(matches, Match{
			ID:        base.ID,
			Name:      base.Name,
			Path:      base.Path,
			Kind:      node.Kind(),
			StartLine: base.StartLine,
			EndLine:   base.EndLine,
			Score:     score,
		})
	}

	sortMatches(matches)
	return &Result{Query: query, Mode: ModeKeyword, Matches: truncate(matches, limit)}
}

// semantic ranks chunks by cosine similarity against the query vector,
// keeping only strictly positive similarities. A query with no vocabulary
// overlap yields an empty result set.
func (r *Ranker) semantic(query string, limit int) *Result {
	qv := r.index.QueryVector(query)

	var matches []Match
	for _, chunk := range r.index.Chunks {
		score := embed.Cosine(qv, chunk.Vector)
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{
			ID:        chunk.ID,
			Name:      chunk.Name,
			Path:      chunk.Path,
			Kind:      chunk.Kind,
			StartLine: chunk.StartLine,
			EndLine:   chunk.EndLine,
			Score:     score,
		})
	}

	sortMatches(matches)
	return &Result{Query: query, Mode: ModeSemantic, Matches: truncate(matches, limit)}
}

// keywordScore returns the strongest matching tier, 0 for no match.
func keywordScore(needle, name, path string) float64 {
	loweredName := strings.ToLower(name)
	switch {
	case loweredName == needle:
		return scoreExactName
	case strings.HasPrefix(loweredName, needle):
		return scoreNamePrefix
	case strings.Contains(loweredName, needle):
		return scoreNameContains
	case strings.Contains(strings.ToLower(path), needle):
		return scorePathContains
	default:
		return 0
	}
}

// sortMatches orders by descending score, ties broken by node ID so results
// are stable across runs.
func sortMatches(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
}

// truncate caps matches at limit.
func truncate(matches []Match, limit int) []Match {
	if len(matches) > limit {
		return matches[:limit]
	}
	return matches
}
