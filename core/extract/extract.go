// Package extract turns one parsed source file into graph nodes: a file node
// plus one node per function, class, interface, type alias, enum, and exported
// variable, each with position, export status, and cyclomatic complexity.
package extract

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/adalundhe/codeatlas/core/graph"
	"github.com/adalundhe/codeatlas/core/parser"
)

// =============================================================================
// Result Types
// =============================================================================

// ImportDecl is one import statement collected during extraction, consumed
// later by the relationship resolver.
type ImportDecl struct {
	// Specifier is the module specifier as written (e.g. "./util").
	Specifier string

	// Names lists the imported names, in declaration order.
	Names []string

	// Line is the 1-indexed line of the import statement.
	Line int
}

// Result holds everything extracted from one file.
type Result struct {
	// File is the file node, complexity already aggregated from Symbols.
	File *graph.FileNode

	// Symbols lists the symbol nodes in declaration order.
	Symbols []graph.Node

	// Imports lists the file's import declarations.
	Imports []ImportDecl
}

// =============================================================================
// Extractor
// =============================================================================

// Extractor produces graph nodes from parsed files.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract walks the parse tree of one file and produces its file node,
// symbol nodes, and import declarations. The file node's complexity is the
// sum of its symbols' complexities.
func (e *Extractor) Extract(pf *parser.ParsedFile) (*Result, error) {
	result := &Result{}

	root := pf.Root()
	src := pf.Content

	walker := &fileWalker{relPath: pf.RelPath, src: src}
	walker.walk(root)

	aggregate := 0
	for _, sym := range walker.symbols {
		aggregate += sym.Base().Complexity
	}

	result.File = &graph.FileNode{
		BaseNode: graph.BaseNode{
			ID:         graph.FileID(pf.RelPath),
			Name:       filepath.Base(pf.RelPath),
			Path:       pf.RelPath,
			StartLine:  1,
			EndLine:    pf.LineCount,
			Complexity: aggregate,
		},
		Language:    pf.Language,
		LineCount:   pf.LineCount,
		ImportCount: len(walker.imports),
		ExportCount: walker.exportCount,
	}
	result.Symbols = walker.symbols
	result.Imports = walker.imports

	return result, nil
}

// =============================================================================
// fileWalker
// =============================================================================

// fileWalker accumulates symbols and imports while walking one parse tree.
type fileWalker struct {
	relPath     string
	src         []byte
	symbols     []graph.Node
	imports     []ImportDecl
	exportCount int
}

// walk dispatches on top-level declarations. Only the program's direct
// children (and the declarations inside export statements) produce symbols;
// nested functions do not become separate nodes.
func (w *fileWalker) walk(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		w.visitTopLevel(child, false)
	}
}

// visitTopLevel handles one top-level statement.
func (w *fileWalker) visitTopLevel(node *sitter.Node, exported bool) {
	switch node.Type() {
	case "export_statement":
		w.exportCount++
		if decl := node.ChildByFieldName("declaration"); decl != nil {
			w.visitTopLevel(decl, true)
		}
	case "import_statement":
		w.collectImport(node)
	case "function_declaration", "generator_function_declaration":
		w.addFunction(node, "", exported)
	case "class_declaration", "abstract_class_declaration":
		w.addClass(node, exported)
	case "interface_declaration":
		w.addSimple(node, graph.KindInterface, exported)
	case "type_alias_declaration":
		w.addSimple(node, graph.KindTypeAlias, exported)
	case "enum_declaration":
		w.addSimple(node, graph.KindEnum, exported)
	case "lexical_declaration", "variable_declaration":
		// Unexported top-level variables are skipped entirely.
		if exported {
			w.addVariables(node)
		}
	}
}

// =============================================================================
// Symbol Construction
// =============================================================================

// addFunction adds a function or method node. qualifier is the owning class
// name for methods, empty for free functions.
func (w *fileWalker) addFunction(node *sitter.Node, qualifier string, exported bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	name := w.text(nameNode)
	if qualifier != "" {
		name = qualifier + "." + name
	}

	fn := &graph.FunctionNode{
		BaseNode:   w.base(node, graph.KindFunction, name, exported),
		Parameters: w.parameters(node),
		ReturnType: w.returnType(node),
		Async:      hasKeyword(node, "async"),
		Generator:  node.Type() == "generator_function_declaration" || hasKeyword(node, "*"),
	}
	fn.Complexity = Complexity(node)

	w.symbols = append(w.symbols, fn)
}

// addClass adds a class node plus one function node per method, qualified
// as ClassName.methodName.
func (w *fileWalker) addClass(node *sitter.Node, exported bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	className := w.text(nameNode)

	cls := &graph.ClassNode{
		BaseNode: w.base(node, graph.KindClass, className, exported),
		Abstract: node.Type() == "abstract_class_declaration" || hasKeyword(node, "abstract"),
	}
	cls.Extends, cls.Implements = w.heritage(node)
	cls.Complexity = Complexity(node)

	body := node.ChildByFieldName("body")
	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			switch member.Type() {
			case "method_definition":
				cls.MemberCount++
				w.addMethod(member, className, exported)
			case "public_field_definition":
				cls.MemberCount++
			}
		}
	}

	w.symbols = append(w.symbols, cls)
}

// addMethod adds one method as a function node. Private methods are never
// marked exported regardless of the class's status.
func (w *fileWalker) addMethod(node *sitter.Node, className string, classExported bool) {
	exported := classExported && !isPrivateMember(node, w.src)
	w.addFunction(node, className, exported)
}

// addSimple adds an interface, type alias, or enum node.
func (w *fileWalker) addSimple(node *sitter.Node, kind graph.NodeKind, exported bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	base := w.base(node, kind, w.text(nameNode), exported)

	switch kind {
	case graph.KindInterface:
		w.symbols = append(w.symbols, &graph.InterfaceNode{BaseNode: base})
	case graph.KindTypeAlias:
		w.symbols = append(w.symbols, &graph.TypeAliasNode{BaseNode: base})
	case graph.KindEnum:
		w.symbols = append(w.symbols, &graph.EnumNode{BaseNode: base})
	}
}

// addVariables adds one variable node per declarator in an exported
// variable statement.
func (w *fileWalker) addVariables(node *sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		declarator := node.NamedChild(i)
		if declarator.Type() != "variable_declarator" {
			continue
		}
		nameNode := declarator.ChildByFieldName("name")
		if nameNode == nil || nameNode.Type() != "identifier" {
			continue
		}

		v := &graph.VariableNode{
			BaseNode: w.base(declarator, graph.KindVariable, w.text(nameNode), true),
		}
		w.symbols = append(w.symbols, v)
	}
}

// base builds the shared fields for a symbol node.
func (w *fileWalker) base(node *sitter.Node, kind graph.NodeKind, name string, exported bool) graph.BaseNode {
	start := int(node.StartPoint().Row) + 1
	end := int(node.EndPoint().Row) + 1

	return graph.BaseNode{
		ID:        graph.SymbolID(w.relPath, kind, name, start),
		Name:      name,
		Path:      w.relPath,
		StartLine: start,
		EndLine:   end,
		Exported:  exported,
		Doc:       w.docComment(node),
	}
}

// =============================================================================
// Signatures
// =============================================================================

// parameters returns the declared parameter names, using the raw pattern
// text for destructuring patterns.
func (w *fileWalker) parameters(node *sitter.Node) []string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}

	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)
		if pattern := param.ChildByFieldName("pattern"); pattern != nil {
			names = append(names, w.text(pattern))
			continue
		}
		if param.Type() == "identifier" {
			names = append(names, w.text(param))
		}
	}
	return names
}

// returnType returns the annotated return type, empty when the declaration
// has no annotation. This is a pure syntax lookup: the annotation text is
// read as written and no type inference runs.
func (w *fileWalker) returnType(node *sitter.Node) string {
	annotation := node.ChildByFieldName("return_type")
	if annotation == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(w.text(annotation), ":"))
}

// heritage returns the superclass name and implemented interface names
// from a class_heritage clause.
func (w *fileWalker) heritage(node *sitter.Node) (string, []string) {
	var extends string
	var implements []string

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "class_heritage" {
			continue
		}

		for j := 0; j < int(child.ChildCount()); j++ {
			clause := child.Child(j)
			switch clause.Type() {
			case "extends_clause":
				for k := 0; k < int(clause.NamedChildCount()); k++ {
					ref := clause.NamedChild(k)
					if ref.Type() == "identifier" || ref.Type() == "type_identifier" {
						extends = w.text(ref)
					}
				}
			case "implements_clause":
				for k := 0; k < int(clause.NamedChildCount()); k++ {
					ref := clause.NamedChild(k)
					if ref.Type() == "identifier" || ref.Type() == "type_identifier" {
						implements = append(implements, w.text(ref))
					}
				}
			}
		}
	}

	return extends, implements
}

// =============================================================================
// Imports
// =============================================================================

// collectImport records one import statement: its specifier and the names
// it brings into scope.
func (w *fileWalker) collectImport(node *sitter.Node) {
	source := node.ChildByFieldName("source")
	if source == nil {
		return
	}

	decl := ImportDecl{
		Specifier: strings.Trim(w.text(source), "\"'`"),
		Line:      int(node.StartPoint().Row) + 1,
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "import_clause" {
			decl.Names = append(decl.Names, w.importedNames(child)...)
		}
	}

	w.imports = append(w.imports, decl)
}

// importedNames collects names from an import clause: default imports,
// named imports, and namespace imports.
func (w *fileWalker) importedNames(clause *sitter.Node) []string {
	var names []string

	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case "identifier":
			names = append(names, w.text(child))
		case "named_imports":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				if name := spec.ChildByFieldName("name"); name != nil {
					names = append(names, w.text(name))
				}
			}
		case "namespace_import":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if child.NamedChild(j).Type() == "identifier" {
					names = append(names, w.text(child.NamedChild(j)))
				}
			}
		}
	}

	return names
}

// =============================================================================
// Helpers
// =============================================================================

// text returns the source text of a node.
func (w *fileWalker) text(node *sitter.Node) string {
	return node.Content(w.src)
}

// docComment returns the block comment immediately preceding a declaration,
// following export wrappers outward, or empty if there is none.
func (w *fileWalker) docComment(node *sitter.Node) string {
	anchor := node
	if parent := node.Parent(); parent != nil && parent.Type() == "export_statement" {
		anchor = parent
	}

	prev := anchor.PrevNamedSibling()
	if prev == nil || prev.Type() != "comment" {
		return ""
	}

	text := w.text(prev)
	if !strings.HasPrefix(text, "/**") {
		return ""
	}
	return cleanDocComment(text)
}

// cleanDocComment strips comment markers and leading asterisks.
func cleanDocComment(text string) string {
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimSuffix(text, "*/")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// hasKeyword reports whether a declaration carries the given anonymous
// keyword token (e.g. "async", "abstract", "*").
func hasKeyword(node *sitter.Node, keyword string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == keyword {
			return true
		}
		// Modifier tokens only appear before the name.
		if child.Type() == "identifier" || child.Type() == "property_identifier" {
			break
		}
	}
	return false
}

// isPrivateMember reports whether a method has a private accessibility
// modifier or a #-prefixed name.
func isPrivateMember(node *sitter.Node, src []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "accessibility_modifier" && child.Content(src) == "private" {
			return true
		}
		if child.Type() == "private_property_identifier" {
			return true
		}
	}
	if name := node.ChildByFieldName("name"); name != nil && name.Type() == "private_property_identifier" {
		return true
	}
	return false
}
