package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// =============================================================================
// SourceParser
// =============================================================================

// SourceParser parses TypeScript, TSX, and JavaScript files with tree-sitter.
// Each Parse call creates its own tree-sitter parser instance, so a single
// SourceParser is safe for concurrent use.
type SourceParser struct{}

// NewSourceParser creates a new TypeScript/JavaScript parser.
func NewSourceParser() *SourceParser {
	return &SourceParser{}
}

// Extensions returns the file extensions handled by this parser.
func (p *SourceParser) Extensions() []string {
	return []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}
}

// Parse parses source content into a ParsedFile.
func (p *SourceParser) Parse(ctx context.Context, content []byte, path string) (*ParsedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ts := sitter.NewParser()
	ts.SetLanguage(languageFor(path))

	tree, err := ts.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParseFailed, path, err)
	}

	return &ParsedFile{
		Path:      path,
		Language:  DetectLanguage(path),
		Content:   content,
		Tree:      tree,
		LineCount: CountLines(content),
	}, nil
}

// DetectLanguage returns the language name for a file path.
func DetectLanguage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".mts", ".cts":
		return "typescript"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	default:
		return "unknown"
	}
}

// languageFor selects the tree-sitter grammar for a file path.
func languageFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return tsx.GetLanguage()
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}
