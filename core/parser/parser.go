// Package parser provides the parsed-file front end for graph construction.
// Parsing is done with tree-sitter; language parsers are registered by file
// extension and looked up through a registry, so new languages can be added
// without touching the extraction pipeline.
package parser

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrNoParser is returned when no parser is registered for a file type.
	ErrNoParser = errors.New("no parser available for file type")

	// ErrParseFailed is returned when tree-sitter could not produce a tree.
	ErrParseFailed = errors.New("parse failed")
)

// =============================================================================
// ParsedFile
// =============================================================================

// ParsedFile is the handle handed to the symbol extractor: one parsed
// source file together with its concrete syntax tree.
type ParsedFile struct {
	// Path is the absolute path of the file.
	Path string

	// RelPath is the repository-relative path, used for node identifiers.
	RelPath string

	// Language is the detected language name (e.g. "typescript").
	Language string

	// Content is the raw file content the tree was parsed from.
	Content []byte

	// Tree is the tree-sitter parse tree. Owned by this handle; call Close
	// when done.
	Tree *sitter.Tree

	// LineCount is the number of lines in Content.
	LineCount int
}

// Root returns the root node of the parse tree.
func (f *ParsedFile) Root() *sitter.Node {
	return f.Tree.RootNode()
}

// Close releases the parse tree.
func (f *ParsedFile) Close() {
	if f.Tree != nil {
		f.Tree.Close()
		f.Tree = nil
	}
}

// CountLines returns the number of lines in the given content.
func CountLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}

// =============================================================================
// Parser Interface
// =============================================================================

// Parser parses one source file into a ParsedFile handle.
type Parser interface {
	// Parse parses file content. The context bounds the parse; a canceled
	// context abandons the parse and its partial output is discarded.
	Parse(ctx context.Context, content []byte, path string) (*ParsedFile, error)

	// Extensions returns the file extensions this parser handles (e.g. [".ts"]).
	Extensions() []string
}

// =============================================================================
// Registry
// =============================================================================

// Registry manages parser registration and lookup by file extension.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]Parser),
	}
}

// Register registers a parser for all its supported extensions.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range p.Extensions() {
		r.parsers[ext] = p
	}
}

// ForFile returns the parser for a file based on its extension.
// Returns ErrNoParser if none is registered.
func (r *Registry) ForFile(path string) (Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parsers[filepath.Ext(path)]
	if !ok {
		return nil, ErrNoParser
	}
	return p, nil
}

// Has returns true if a parser is registered for the extension.
func (r *Registry) Has(extension string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.parsers[extension]
	return ok
}

// Extensions returns all registered file extensions.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	extensions := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		extensions = append(extensions, ext)
	}
	return extensions
}

// DefaultRegistry returns a registry with the source parser registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewSourceParser())
	return r
}
