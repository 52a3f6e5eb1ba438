package graph

import (
	"errors"
	"sort"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrDuplicateNode indicates two nodes with the same identifier were
	// offered to one snapshot.
	ErrDuplicateNode = errors.New("duplicate node identifier")

	// ErrNodeNotFound indicates a lookup for an unknown node identifier.
	ErrNodeNotFound = errors.New("node not found")
)

// =============================================================================
// KnowledgeGraph
// =============================================================================

// KnowledgeGraph is an immutable snapshot of a repository's structure:
// a set of nodes keyed by identifier, an ordered edge list, and scan
// metadata. Snapshots are created wholesale and replaced wholesale on
// rescan; there is no in-place mutation.
type KnowledgeGraph struct {
	meta  Metadata
	nodes map[string]Node
	edges []Edge

	// Derived lookup indexes, built once at construction.
	byFile     map[string][]string
	dependents map[string][]string
}

// New creates a snapshot from the given metadata, nodes, and edges.
// Node and edge counts in the metadata are overwritten with the actual
// totals. Returns ErrDuplicateNode if two nodes share an identifier.
func New(meta Metadata, nodes []Node, edges []Edge) (*KnowledgeGraph, error) {
	g := &KnowledgeGraph{
		meta:       meta,
		nodes:      make(map[string]Node, len(nodes)),
		edges:      make([]Edge, len(edges)),
		byFile:     make(map[string][]string),
		dependents: make(map[string][]string),
	}
	copy(g.edges, edges)

	for _, node := range nodes {
		id := node.Base().ID
		if _, exists := g.nodes[id]; exists {
			return nil, ErrDuplicateNode
		}
		g.nodes[id] = node
	}

	g.buildIndexes()

	g.meta.NodeCount = len(g.nodes)
	g.meta.EdgeCount = len(g.edges)

	return g, nil
}

// buildIndexes populates the per-file and dependents lookup indexes.
func (g *KnowledgeGraph) buildIndexes() {
	for _, node := range g.nodes {
		if node.Kind() == KindFile {
			continue
		}
		path := node.Base().Path
		g.byFile[path] = append(g.byFile[path], node.Base().ID)
	}

	// Stable symbol order per file regardless of map iteration.
	for path := range g.byFile {
		ids := g.byFile[path]
		sort.Slice(ids, func(i, j int) bool {
			a, b := g.nodes[ids[i]].Base(), g.nodes[ids[j]].Base()
			if a.StartLine != b.StartLine {
				return a.StartLine < b.StartLine
			}
			return a.ID < b.ID
		})
	}

	for _, edge := range g.edges {
		if edge.Type != EdgeImports {
			continue
		}
		g.dependents[edge.Target] = append(g.dependents[edge.Target], edge.Source)
	}
}

// =============================================================================
// Accessors
// =============================================================================

// Metadata returns the snapshot metadata.
func (g *KnowledgeGraph) Metadata() Metadata {
	return g.meta
}

// NodeByID returns the node with the given identifier.
// Returns ErrNodeNotFound for unknown identifiers.
func (g *KnowledgeGraph) NodeByID(id string) (Node, error) {
	node, ok := g.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return node, nil
}

// NodeCount returns the number of nodes in the snapshot.
func (g *KnowledgeGraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the snapshot.
func (g *KnowledgeGraph) EdgeCount() int {
	return len(g.edges)
}

// Nodes returns all nodes in the snapshot, sorted by identifier for
// deterministic iteration.
func (g *KnowledgeGraph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Base().ID < nodes[j].Base().ID
	})
	return nodes
}

// Edges returns a copy of the ordered edge list.
func (g *KnowledgeGraph) Edges() []Edge {
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// EdgesByType returns all edges of the given type, in edge-list order.
func (g *KnowledgeGraph) EdgesByType(t EdgeType) []Edge {
	var edges []Edge
	for _, edge := range g.edges {
		if edge.Type == t {
			edges = append(edges, edge)
		}
	}
	return edges
}

// EdgesTouching returns all edges whose source or target is the given node,
// in edge-list order.
func (g *KnowledgeGraph) EdgesTouching(id string) []Edge {
	var edges []Edge
	for _, edge := range g.edges {
		if edge.Source == id || edge.Target == id {
			edges = append(edges, edge)
		}
	}
	return edges
}

// NodesByFile returns the symbol nodes declared in the given file, ordered
// by start line. The file node itself is not included.
func (g *KnowledgeGraph) NodesByFile(path string) []Node {
	ids := g.byFile[path]
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// DependentsOf returns the identifiers of files that import the given file,
// sorted for determinism.
func (g *KnowledgeGraph) DependentsOf(path string) []string {
	ids := g.dependents[FileID(path)]
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return out
}

// FileNodes returns all file nodes, sorted by path.
func (g *KnowledgeGraph) FileNodes() []*FileNode {
	var files []*FileNode
	for _, node := range g.nodes {
		if file, ok := node.(*FileNode); ok {
			files = append(files, file)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files
}
