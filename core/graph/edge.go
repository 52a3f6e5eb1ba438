package graph

// =============================================================================
// EdgeType
// =============================================================================

// EdgeType identifies the kind of relationship an edge represents.
type EdgeType string

const (
	// EdgeImports connects an importing file to the imported file or symbol.
	EdgeImports EdgeType = "imports"

	// EdgeExports connects a file to a symbol it exports.
	EdgeExports EdgeType = "exports"

	// EdgeCalls connects a caller to a callee.
	EdgeCalls EdgeType = "calls"

	// EdgeExtends connects a class to its superclass.
	EdgeExtends EdgeType = "extends"

	// EdgeImplements connects a class to an interface it implements.
	EdgeImplements EdgeType = "implements"

	// EdgeUses connects a symbol to a symbol it references.
	EdgeUses EdgeType = "uses"

	// EdgeContains connects a file to a symbol declared in it.
	EdgeContains EdgeType = "contains"
)

// validEdgeTypes contains all recognized edge types for validation.
var validEdgeTypes = map[EdgeType]struct{}{
	EdgeImports:    {},
	EdgeExports:    {},
	EdgeCalls:      {},
	EdgeExtends:    {},
	EdgeImplements: {},
	EdgeUses:       {},
	EdgeContains:   {},
}

// IsValid returns true if the edge type is recognized.
func (t EdgeType) IsValid() bool {
	_, ok := validEdgeTypes[t]
	return ok
}

// String returns the string representation of the edge type.
func (t EdgeType) String() string {
	return string(t)
}

// =============================================================================
// Edge
// =============================================================================

// EdgeMeta carries optional edge metadata.
type EdgeMeta struct {
	// ImportedNames lists the names brought in by an imports edge.
	ImportedNames []string `json:"importedNames,omitempty"`
}

// Edge is a directed, typed relationship between two node identifiers.
// Edges are append-only; multiple edges may exist between the same pair
// with different types, and no deduplication is performed.
type Edge struct {
	// Source is the identifier of the origin node.
	Source string `json:"source"`

	// Target is the identifier of the destination node.
	Target string `json:"target"`

	// Type is the relationship type.
	Type EdgeType `json:"type"`

	// Meta carries optional per-edge metadata.
	Meta *EdgeMeta `json:"meta,omitempty"`
}
