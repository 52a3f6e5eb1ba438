package resolve

import (
	"reflect"
	"testing"

	"github.com/adalundhe/codeatlas/core/extract"
	"github.com/adalundhe/codeatlas/core/graph"
)

// =============================================================================
// Fixtures
// =============================================================================

func fileResult(path string, imports ...extract.ImportDecl) *extract.Result {
	return &extract.Result{
		File: &graph.FileNode{
			BaseNode: graph.BaseNode{ID: path, Name: path, Path: path},
		},
		Imports: imports,
	}
}

func testFileSet() []*extract.Result {
	return []*extract.Result{
		fileResult("src/app.ts",
			extract.ImportDecl{Specifier: "./util", Names: []string{"clamp"}, Line: 1},
			extract.ImportDecl{Specifier: "./models/index", Names: []string{"User"}, Line: 2},
			extract.ImportDecl{Specifier: "lodash", Names: []string{"chunk"}, Line: 3},
		),
		fileResult("src/util.ts"),
		fileResult("src/models/index.ts"),
		fileResult("src/other.ts",
			extract.ImportDecl{Specifier: "./util.ts", Names: nil, Line: 1},
		),
	}
}

// =============================================================================
// Resolution Tests
// =============================================================================

func TestResolve_RelativeSpecifiers(t *testing.T) {
	t.Parallel()

	result := NewResolver().Resolve(testFileSet())

	if len(result.Edges) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(result.Edges))
	}

	first := result.Edges[0]
	if first.Source != "src/app.ts" || first.Target != "src/util.ts" {
		t.Errorf("unexpected edge %s -> %s", first.Source, first.Target)
	}
	if first.Type != graph.EdgeImports {
		t.Errorf("expected imports edge, got %s", first.Type)
	}
	if first.Meta == nil || !reflect.DeepEqual(first.Meta.ImportedNames, []string{"clamp"}) {
		t.Errorf("unexpected metadata %+v", first.Meta)
	}

	if result.Edges[1].Target != "src/models/index.ts" {
		t.Errorf("directory import should resolve to index file, got %s", result.Edges[1].Target)
	}
}

func TestResolve_ExternalPackagesDropped(t *testing.T) {
	t.Parallel()

	result := NewResolver().Resolve(testFileSet())

	for _, edge := range result.Edges {
		if edge.Target == "lodash" {
			t.Error("external package should not produce an edge")
		}
	}
}

func TestResolve_DependencyCounts(t *testing.T) {
	t.Parallel()

	result := NewResolver().Resolve(testFileSet())

	if result.Dependencies["src/app.ts"] != 2 {
		t.Errorf("expected app.ts to depend on 2 files, got %d", result.Dependencies["src/app.ts"])
	}
	if result.Dependencies["src/other.ts"] != 1 {
		t.Errorf("expected other.ts to depend on 1 file, got %d", result.Dependencies["src/other.ts"])
	}

	deps := result.Dependents["src/util.ts"]
	want := []string{"src/app.ts", "src/other.ts"}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("expected dependents %v, got %v", want, deps)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	t.Parallel()

	// Same file set handed over in a different order must yield an
	// identical edge list.
	files := testFileSet()
	reversed := make([]*extract.Result, len(files))
	for i, f := range files {
		reversed[len(files)-1-i] = f
	}

	a := NewResolver().Resolve(files)
	b := NewResolver().Resolve(reversed)

	if !reflect.DeepEqual(a.Edges, b.Edges) {
		t.Error("edge lists differ across runs")
	}
	if !reflect.DeepEqual(a.Dependents, b.Dependents) {
		t.Error("dependents differ across runs")
	}
}

// =============================================================================
// Heritage Tests
// =============================================================================

func TestHeritageEdges(t *testing.T) {
	t.Parallel()

	base := graph.ClassNode{
		BaseNode: graph.BaseNode{ID: "src/a.ts:class:Base:1", Name: "Base", Path: "src/a.ts", StartLine: 1},
	}
	visitor := graph.InterfaceNode{
		BaseNode: graph.BaseNode{ID: "src/a.ts:interface:Visitor:10", Name: "Visitor", Path: "src/a.ts", StartLine: 10},
	}
	walker := graph.ClassNode{
		BaseNode:   graph.BaseNode{ID: "src/b.ts:class:Walker:1", Name: "Walker", Path: "src/b.ts", StartLine: 1},
		Extends:    "Base",
		Implements: []string{"Visitor", "Unknown"},
	}

	edges := HeritageEdges([]graph.Node{&base, &visitor, &walker})

	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(edges))
	}
	if edges[0].Type != graph.EdgeExtends || edges[0].Target != base.ID {
		t.Errorf("unexpected extends edge %+v", edges[0])
	}
	if edges[1].Type != graph.EdgeImplements || edges[1].Target != visitor.ID {
		t.Errorf("unexpected implements edge %+v", edges[1])
	}
}

func TestHeritageEdges_PrefersSameFile(t *testing.T) {
	t.Parallel()

	local := graph.ClassNode{
		BaseNode: graph.BaseNode{ID: "src/b.ts:class:Base:1", Name: "Base", Path: "src/b.ts", StartLine: 1},
	}
	remote := graph.ClassNode{
		BaseNode: graph.BaseNode{ID: "src/a.ts:class:Base:1", Name: "Base", Path: "src/a.ts", StartLine: 1},
	}
	child := graph.ClassNode{
		BaseNode: graph.BaseNode{ID: "src/b.ts:class:Child:10", Name: "Child", Path: "src/b.ts", StartLine: 10},
		Extends:  "Base",
	}

	edges := HeritageEdges([]graph.Node{&local, &remote, &child})

	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if edges[0].Target != local.ID {
		t.Errorf("expected same-file target %s, got %s", local.ID, edges[0].Target)
	}
}
