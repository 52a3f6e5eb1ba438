package search

import (
	"testing"

	"github.com/adalundhe/codeatlas/core/embed"
	"github.com/adalundhe/codeatlas/core/graph"
)

// =============================================================================
// Test Helpers
// =============================================================================

func testGraph(t *testing.T) *graph.KnowledgeGraph {
	t.Helper()

	nodes := []graph.Node{
		&graph.FileNode{
			BaseNode: graph.BaseNode{
				ID: "src/auth/session.ts", Name: "session.ts",
				Path: "src/auth/session.ts", StartLine: 1, EndLine: 30,
			},
			Language: "typescript", LineCount: 30,
		},
		&graph.FunctionNode{
			BaseNode: graph.BaseNode{
				ID: "src/auth/session.ts:function:createSession:3", Name: "createSession",
				Path: "src/auth/session.ts", StartLine: 3, EndLine: 10, Exported: true,
			},
			Parameters: []string{"userId"},
		},
		&graph.FunctionNode{
			BaseNode: graph.BaseNode{
				ID: "src/auth/session.ts:function:session:12", Name: "session",
				Path: "src/auth/session.ts", StartLine: 12, EndLine: 14, Exported: true,
			},
		},
		&graph.ClassNode{
			BaseNode: graph.BaseNode{
				ID: "src/db/store.ts:class:SessionStore:1", Name: "SessionStore",
				Path: "src/db/store.ts", StartLine: 1, EndLine: 25, Exported: true,
			},
		},
		&graph.VariableNode{
			BaseNode: graph.BaseNode{
				ID: "src/auth/config.ts:variable:TIMEOUT:2", Name: "TIMEOUT",
				Path: "src/auth/config.ts", StartLine: 2, EndLine: 2, Exported: true,
			},
		},
	}

	g, err := graph.New(graph.Metadata{}, nodes, nil)
	if err != nil {
		t.Fatalf("building test graph: %v", err)
	}
	return g
}

func testIndex(t *testing.T, g *graph.KnowledgeGraph) *embed.Index {
	t.Helper()
	idx, err := embed.BuildIndex(g)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	return idx
}

// =============================================================================
// Keyword Mode
// =============================================================================

func TestKeywordScoringTiers(t *testing.T) {
	t.Parallel()

	r := NewRanker(testGraph(t), nil)
	result, err := r.Search("session", ModeKeyword, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Mode != ModeKeyword {
		t.Errorf("mode = %q, want keyword", result.Mode)
	}

	scores := make(map[string]float64, len(result.Matches))
	for _, m := range result.Matches {
		scores[m.Name] = m.Score
	}

	if scores["session"] != 1.0 {
		t.Errorf("exact name score = %v, want 1.0", scores["session"])
	}
	if scores["session.ts"] != 0.8 {
		t.Errorf("name prefix score = %v, want 0.8", scores["session.ts"])
	}
	if scores["createSession"] != 0.6 {
		t.Errorf("name substring score = %v, want 0.6", scores["createSession"])
	}
	if scores["SessionStore"] != 0.8 {
		t.Errorf("case-folded prefix score = %v, want 0.8", scores["SessionStore"])
	}
	// TIMEOUT matches only through its path under src/auth.
	result, err = r.Search("auth", ModeKeyword, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	found := false
	for _, m := range result.Matches {
		if m.Name == "TIMEOUT" {
			found = true
			if m.Score != 0.4 {
				t.Errorf("path score = %v, want 0.4", m.Score)
			}
		}
	}
	if !found {
		t.Error("expected path-only match for TIMEOUT")
	}
}

func TestKeywordOrderingAndLimit(t *testing.T) {
	t.Parallel()

	r := NewRanker(testGraph(t), nil)
	result, err := r.Search("session", ModeKeyword, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Matches) != 2 {
		t.Fatalf("limit not applied: got %d matches", len(result.Matches))
	}
	if result.Matches[0].Score < result.Matches[1].Score {
		t.Error("matches not in descending score order")
	}
	if result.Matches[0].Name != "session" {
		t.Errorf("top match = %q, want exact name hit", result.Matches[0].Name)
	}
}

func TestKeywordNoMatches(t *testing.T) {
	t.Parallel()

	r := NewRanker(testGraph(t), nil)
	result, err := r.Search("zzqq", ModeKeyword, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Matches) != 0 {
		t.Errorf("expected no matches, got %d", len(result.Matches))
	}
}

// =============================================================================
// Semantic Mode
// =============================================================================

func TestSemanticRanksByName(t *testing.T) {
	t.Parallel()

	g := testGraph(t)
	r := NewRanker(g, testIndex(t, g))

	result, err := r.Search("create session", ModeSemantic, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Mode != ModeSemantic {
		t.Errorf("mode = %q, want semantic", result.Mode)
	}
	if len(result.Matches) == 0 {
		t.Fatal("expected matches")
	}
	if result.Matches[0].Name != "createSession" {
		t.Errorf("top match = %q, want createSession", result.Matches[0].Name)
	}
	for _, m := range result.Matches {
		if m.Score <= 0 {
			t.Errorf("match %s has non-positive score %v", m.ID, m.Score)
		}
	}
}

func TestSemanticAbsentTokenReturnsEmpty(t *testing.T) {
	t.Parallel()

	g := testGraph(t)
	r := NewRanker(g, testIndex(t, g))

	result, err := r.Search("nonexistent_token_xyz", ModeSemantic, 10)
	if err != nil {
		t.Fatalf("absent token must not be an error, got %v", err)
	}
	if len(result.Matches) != 0 {
		t.Errorf("expected empty result set, got %d matches", len(result.Matches))
	}
}

func TestSemanticWithoutIndexFails(t *testing.T) {
	t.Parallel()

	r := NewRanker(testGraph(t), nil)
	if _, err := r.Search("session", ModeSemantic, 10); err != ErrNoIndex {
		t.Errorf("expected ErrNoIndex, got %v", err)
	}
}

// =============================================================================
// Hybrid Mode
// =============================================================================

func TestHybridUsesSemanticWhenIndexed(t *testing.T) {
	t.Parallel()

	g := testGraph(t)
	r := NewRanker(g, testIndex(t, g))

	result, err := r.Search("create session", ModeHybrid, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Mode != ModeSemantic {
		t.Errorf("mode = %q, want semantic", result.Mode)
	}
}

func TestHybridFallsBackToKeyword(t *testing.T) {
	t.Parallel()

	r := NewRanker(testGraph(t), nil)
	result, err := r.Search("session", ModeHybrid, 10)
	if err != nil {
		t.Fatalf("hybrid without index must not fail, got %v", err)
	}
	if result.Mode != ModeKeyword {
		t.Errorf("mode = %q, want keyword", result.Mode)
	}
	if len(result.Matches) == 0 {
		t.Error("expected keyword matches")
	}
}

// =============================================================================
// Validation
// =============================================================================

func TestSearchValidation(t *testing.T) {
	t.Parallel()

	r := NewRanker(testGraph(t), nil)

	if _, err := r.Search("   ", ModeKeyword, 10); err != ErrEmptyQuery {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if _, err := r.Search("session", Mode("fuzzy"), 10); err != ErrUnknownMode {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}
