package embed

import (
	"strings"

	"github.com/adalundhe/codeatlas/core/graph"
)

// maxRelatedNames bounds how many neighbor names are appended to a document.
const maxRelatedNames = 10

// synthesizeDocument builds the text document indexed for a node. It combines
// the node's own identity (name, kind, path segments, documentation), its
// kind-specific signature details, and the names of up to ten directly
// related nodes so that relational context contributes to the vector.
func synthesizeDocument(g *graph.KnowledgeGraph, node graph.Node) string {
	base := node.Base()

	var sb strings.Builder
	sb.WriteString(base.Name)
	sb.WriteByte(' ')
	sb.WriteString(string(node.Kind()))
	for _, segment := range strings.Split(base.Path, "/") {
		sb.WriteByte(' ')
		sb.WriteString(segment)
	}
	if base.Doc != "" {
		sb.WriteByte(' ')
		sb.WriteString(base.Doc)
	}

	switch n := node.(type) {
	case *graph.FunctionNode:
		for _, param := range n.Parameters {
			sb.WriteByte(' ')
			sb.WriteString(param)
		}
		if n.ReturnType != "" {
			sb.WriteByte(' ')
			sb.WriteString(n.ReturnType)
		}
		if n.Async {
			sb.WriteString(" async")
		}
	case *graph.ClassNode:
		if n.Extends != "" {
			sb.WriteByte(' ')
			sb.WriteString(n.Extends)
		}
		for _, iface := range n.Implements {
			sb.WriteByte(' ')
			sb.WriteString(iface)
		}
	}

	for _, name := range relatedNames(g, base.ID) {
		sb.WriteByte(' ')
		sb.WriteString(name)
	}

	return sb.String()
}

// relatedNames collects names of nodes reachable over any edge touching id,
// in edge order, capped at maxRelatedNames.
func relatedNames(g *graph.KnowledgeGraph, id string) []string {
	edges := g.EdgesTouching(id)
	if len(edges) == 0 {
		return nil
	}

	names := make([]string, 0, maxRelatedNames)
	for _, edge := range edges {
		other := edge.Target
		if other == id {
			other = edge.Source
		}
		node, err := g.NodeByID(other)
		if err != nil {
			continue
		}
		names = append(names, node.Base().Name)
		if len(names) == maxRelatedNames {
			break
		}
	}
	return names
}
