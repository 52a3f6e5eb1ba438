// Package graph provides the knowledge graph data model for analyzed
// repositories: typed symbol nodes, directed edges, and immutable graph
// snapshots with read-only accessors.
package graph

import (
	"fmt"
	"time"
)

// =============================================================================
// NodeKind
// =============================================================================

// NodeKind identifies the kind of structural element a node represents.
type NodeKind string

const (
	// KindFile represents a source file.
	KindFile NodeKind = "file"

	// KindFunction represents a function or method declaration.
	KindFunction NodeKind = "function"

	// KindClass represents a class declaration.
	KindClass NodeKind = "class"

	// KindInterface represents an interface declaration.
	KindInterface NodeKind = "interface"

	// KindTypeAlias represents a type alias declaration.
	KindTypeAlias NodeKind = "type"

	// KindVariable represents an exported variable declaration.
	KindVariable NodeKind = "variable"

	// KindEnum represents an enum declaration.
	KindEnum NodeKind = "enum"
)

// validNodeKinds contains all recognized node kinds for validation.
var validNodeKinds = map[NodeKind]struct{}{
	KindFile:      {},
	KindFunction:  {},
	KindClass:     {},
	KindInterface: {},
	KindTypeAlias: {},
	KindVariable:  {},
	KindEnum:      {},
}

// IsValid returns true if the kind is a recognized node kind.
func (k NodeKind) IsValid() bool {
	_, ok := validNodeKinds[k]
	return ok
}

// String returns the string representation of the node kind.
func (k NodeKind) String() string {
	return string(k)
}

// =============================================================================
// History
// =============================================================================

// History holds version-control enrichment data for a file node.
// It is attached only when history enrichment runs; a node without
// enrichment carries a nil History.
type History struct {
	// LastModified is the author time of the most recent commit touching the file.
	LastModified time.Time `json:"lastModified"`

	// ModificationCount is the total number of commits touching the file.
	ModificationCount int `json:"modificationCount"`

	// Contributors lists author display names in order of first appearance,
	// most recent commit first.
	Contributors []string `json:"contributors,omitempty"`
}

// =============================================================================
// BaseNode
// =============================================================================

// BaseNode carries the fields shared by every node variant.
type BaseNode struct {
	// ID is the node identifier, unique within one graph snapshot.
	ID string `json:"id"`

	// Name is the display name of the element.
	Name string `json:"name"`

	// Path is the repository-relative path of the owning file.
	Path string `json:"path"`

	// StartLine is the 1-indexed first line of the element.
	StartLine int `json:"startLine"`

	// EndLine is the 1-indexed last line of the element.
	EndLine int `json:"endLine"`

	// Exported indicates whether the element is exported from its file.
	Exported bool `json:"exported"`

	// Complexity is the cyclomatic complexity score. Zero means not scored.
	Complexity int `json:"complexity,omitempty"`

	// Doc is the documentation comment attached to the element, if any.
	Doc string `json:"doc,omitempty"`

	// History is version-control enrichment data, populated only on file
	// nodes and only when enrichment ran.
	History *History `json:"history,omitempty"`
}

// Base returns the shared node fields.
func (b *BaseNode) Base() *BaseNode {
	return b
}

// =============================================================================
// Node Interface
// =============================================================================

// Node is one structural element of the analyzed repository. Concrete
// variants carry only the fields relevant to their kind; shared fields are
// reached through Base. Nodes are immutable once placed into a snapshot.
type Node interface {
	// Base returns the fields common to all node variants.
	Base() *BaseNode

	// Kind returns the node kind tag for this variant.
	Kind() NodeKind
}

// =============================================================================
// Node Variants
// =============================================================================

// FileNode represents one analyzed source file.
type FileNode struct {
	BaseNode

	// Language is the detected source language (e.g. "typescript").
	Language string `json:"language"`

	// LineCount is the total number of lines in the file.
	LineCount int `json:"lineCount"`

	// ImportCount is the number of import declarations in the file.
	ImportCount int `json:"importCount"`

	// ExportCount is the number of export declarations in the file.
	ExportCount int `json:"exportCount"`
}

// Kind returns KindFile.
func (n *FileNode) Kind() NodeKind { return KindFile }

// FunctionNode represents a function or method declaration.
type FunctionNode struct {
	BaseNode

	// Parameters lists parameter names in declaration order.
	Parameters []string `json:"parameters,omitempty"`

	// ReturnType is the explicitly annotated return type, empty when the
	// declaration carries no annotation. No inference is performed.
	ReturnType string `json:"returnType,omitempty"`

	// Async indicates an async function.
	Async bool `json:"async,omitempty"`

	// Generator indicates a generator function.
	Generator bool `json:"generator,omitempty"`
}

// Kind returns KindFunction.
func (n *FunctionNode) Kind() NodeKind { return KindFunction }

// ClassNode represents a class declaration.
type ClassNode struct {
	BaseNode

	// Abstract indicates an abstract class.
	Abstract bool `json:"abstract,omitempty"`

	// Extends is the superclass name, empty when the class has none.
	Extends string `json:"extends,omitempty"`

	// Implements lists implemented interface names.
	Implements []string `json:"implements,omitempty"`

	// MemberCount is the number of members declared in the class body.
	MemberCount int `json:"memberCount"`
}

// Kind returns KindClass.
func (n *ClassNode) Kind() NodeKind { return KindClass }

// InterfaceNode represents an interface declaration.
type InterfaceNode struct {
	BaseNode
}

// Kind returns KindInterface.
func (n *InterfaceNode) Kind() NodeKind { return KindInterface }

// TypeAliasNode represents a type alias declaration.
type TypeAliasNode struct {
	BaseNode
}

// Kind returns KindTypeAlias.
func (n *TypeAliasNode) Kind() NodeKind { return KindTypeAlias }

// EnumNode represents an enum declaration.
type EnumNode struct {
	BaseNode
}

// Kind returns KindEnum.
func (n *EnumNode) Kind() NodeKind { return KindEnum }

// VariableNode represents an exported top-level variable declaration.
type VariableNode struct {
	BaseNode
}

// Kind returns KindVariable.
func (n *VariableNode) Kind() NodeKind { return KindVariable }

// =============================================================================
// Identifiers
// =============================================================================

// FileID returns the identifier for a file node: the relative path alone.
func FileID(path string) string {
	return path
}

// SymbolID returns the identifier for a non-file node, derived from the
// owning path, node kind, display name, and start line.
func SymbolID(path string, kind NodeKind, name string, line int) string {
	return fmt.Sprintf("%s:%s:%s:%d", path, kind, name, line)
}
