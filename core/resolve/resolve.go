// Package resolve turns per-file import declarations into typed graph edges
// and dependency counts. Resolution is purely path-based: a specifier either
// maps onto a scanned file or it is dropped. Results are deterministic for a
// given file set.
package resolve

import (
	"path"
	"sort"

	"github.com/adalundhe/codeatlas/core/extract"
	"github.com/adalundhe/codeatlas/core/graph"
)

// candidateSuffixes are tried in order when a specifier does not name a
// scanned file directly.
var candidateSuffixes = []string{
	".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs",
	"/index.ts", "/index.tsx", "/index.js", "/index.jsx",
}

// =============================================================================
// Result
// =============================================================================

// Result holds the resolver's output: import edges in deterministic order,
// plus per-file dependency counts and their inverse.
type Result struct {
	// Edges lists one imports edge per resolved import statement, ordered by
	// importing file path then declaration order.
	Edges []graph.Edge

	// Dependencies maps each file path to the number of scanned files it
	// imports.
	Dependencies map[string]int

	// Dependents maps each file path to the paths that import it, sorted.
	Dependents map[string][]string
}

// =============================================================================
// Resolver
// =============================================================================

// Resolver resolves import specifiers against a scanned file set.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve maps every import declaration onto a scanned file, producing one
// imports edge per resolved statement. External packages and specifiers
// that do not resolve to a scanned file are dropped, not errors. Running
// Resolve twice over the same inputs yields identical edge lists.
func (r *Resolver) Resolve(files []*extract.Result) *Result {
	known := make(map[string]struct{}, len(files))
	for _, file := range files {
		known[file.File.Path] = struct{}{}
	}

	ordered := make([]*extract.Result, len(files))
	copy(ordered, files)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].File.Path < ordered[j].File.Path
	})

	result := &Result{
		Dependencies: make(map[string]int),
		Dependents:   make(map[string][]string),
	}

	for _, file := range ordered {
		from := file.File.Path
		for _, decl := range file.Imports {
			target, ok := resolveSpecifier(from, decl.Specifier, known)
			if !ok {
				continue
			}

			edge := graph.Edge{
				Source: graph.FileID(from),
				Target: graph.FileID(target),
				Type:   graph.EdgeImports,
			}
			if len(decl.Names) > 0 {
				names := make([]string, len(decl.Names))
				copy(names, decl.Names)
				edge.Meta = &graph.EdgeMeta{ImportedNames: names}
			}

			result.Edges = append(result.Edges, edge)
			result.Dependencies[from]++
			result.Dependents[target] = append(result.Dependents[target], from)
		}
	}

	for target := range result.Dependents {
		sort.Strings(result.Dependents[target])
	}

	return result
}

// resolveSpecifier maps one import specifier onto a scanned file path.
// Only relative specifiers are considered; bare package names never
// resolve to scanned files.
func resolveSpecifier(from, specifier string, known map[string]struct{}) (string, bool) {
	if len(specifier) == 0 || specifier[0] != '.' {
		return "", false
	}

	base := path.Clean(path.Join(path.Dir(from), specifier))

	if _, ok := known[base]; ok {
		return base, true
	}
	for _, suffix := range candidateSuffixes {
		candidate := base + suffix
		if _, ok := known[candidate]; ok {
			return candidate, true
		}
	}

	return "", false
}

// =============================================================================
// Heritage Edges
// =============================================================================

// HeritageEdges resolves class extends/implements names to nodes in the
// same snapshot. A name resolves first to a symbol in the class's own file,
// then to the first matching symbol across all files in sorted path order.
// Unresolvable names are dropped.
func HeritageEdges(symbols []graph.Node) []graph.Edge {
	byName := make(map[string][]graph.Node)
	var classes []*graph.ClassNode

	for _, node := range symbols {
		switch n := node.(type) {
		case *graph.ClassNode:
			classes = append(classes, n)
			byName[n.Name] = append(byName[n.Name], node)
		case *graph.InterfaceNode:
			byName[n.Name] = append(byName[n.Name], node)
		}
	}

	for name := range byName {
		candidates := byName[name]
		sort.Slice(candidates, func(i, j int) bool {
			a, b := candidates[i].Base(), candidates[j].Base()
			if a.Path != b.Path {
				return a.Path < b.Path
			}
			return a.StartLine < b.StartLine
		})
	}

	sort.Slice(classes, func(i, j int) bool {
		a, b := classes[i].Base(), classes[j].Base()
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.StartLine < b.StartLine
	})

	var edges []graph.Edge
	for _, cls := range classes {
		if cls.Extends != "" {
			if target, ok := lookupHeritage(byName, cls.Extends, cls.Path, cls.ID); ok {
				edges = append(edges, graph.Edge{Source: cls.ID, Target: target, Type: graph.EdgeExtends})
			}
		}
		for _, iface := range cls.Implements {
			if target, ok := lookupHeritage(byName, iface, cls.Path, cls.ID); ok {
				edges = append(edges, graph.Edge{Source: cls.ID, Target: target, Type: graph.EdgeImplements})
			}
		}
	}

	return edges
}

// lookupHeritage finds the node a heritage name refers to, preferring the
// referencing class's own file.
func lookupHeritage(byName map[string][]graph.Node, name, fromPath, selfID string) (string, bool) {
	candidates := byName[name]
	for _, candidate := range candidates {
		if candidate.Base().ID == selfID {
			continue
		}
		if candidate.Base().Path == fromPath {
			return candidate.Base().ID, true
		}
	}
	for _, candidate := range candidates {
		if candidate.Base().ID != selfID {
			return candidate.Base().ID, true
		}
	}
	return "", false
}
