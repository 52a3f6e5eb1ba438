package graph

import (
	"encoding/json"
	"fmt"
)

// nodeEnvelope is the flattened wire form of a node. The kind tag selects
// which optional fields are meaningful on decode.
type nodeEnvelope struct {
	Kind NodeKind `json:"kind"`

	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Path       string   `json:"path"`
	StartLine  int      `json:"startLine"`
	EndLine    int      `json:"endLine"`
	Exported   bool     `json:"exported"`
	Complexity int      `json:"complexity,omitempty"`
	Doc        string   `json:"doc,omitempty"`
	History    *History `json:"history,omitempty"`

	// File fields
	Language    string `json:"language,omitempty"`
	LineCount   int    `json:"lineCount,omitempty"`
	ImportCount int    `json:"importCount,omitempty"`
	ExportCount int    `json:"exportCount,omitempty"`

	// Function fields
	Parameters []string `json:"parameters,omitempty"`
	ReturnType string   `json:"returnType,omitempty"`
	Async      bool     `json:"async,omitempty"`
	Generator  bool     `json:"generator,omitempty"`

	// Class fields
	Abstract    bool     `json:"abstract,omitempty"`
	Extends     string   `json:"extends,omitempty"`
	Implements  []string `json:"implements,omitempty"`
	MemberCount int      `json:"memberCount,omitempty"`
}

// EncodeNode marshals a node into its tagged wire form.
func EncodeNode(node Node) ([]byte, error) {
	base := node.Base()
	env := nodeEnvelope{
		Kind:       node.Kind(),
		ID:         base.ID,
		Name:       base.Name,
		Path:       base.Path,
		StartLine:  base.StartLine,
		EndLine:    base.EndLine,
		Exported:   base.Exported,
		Complexity: base.Complexity,
		Doc:        base.Doc,
		History:    base.History,
	}

	switch n := node.(type) {
	case *FileNode:
		env.Language = n.Language
		env.LineCount = n.LineCount
		env.ImportCount = n.ImportCount
		env.ExportCount = n.ExportCount
	case *FunctionNode:
		env.Parameters = n.Parameters
		env.ReturnType = n.ReturnType
		env.Async = n.Async
		env.Generator = n.Generator
	case *ClassNode:
		env.Abstract = n.Abstract
		env.Extends = n.Extends
		env.Implements = n.Implements
		env.MemberCount = n.MemberCount
	}

	return json.Marshal(env)
}

// DecodeNode unmarshals a tagged wire form back into the matching variant.
func DecodeNode(data []byte) (Node, error) {
	var env nodeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	base := BaseNode{
		ID:         env.ID,
		Name:       env.Name,
		Path:       env.Path,
		StartLine:  env.StartLine,
		EndLine:    env.EndLine,
		Exported:   env.Exported,
		Complexity: env.Complexity,
		Doc:        env.Doc,
		History:    env.History,
	}

	switch env.Kind {
	case KindFile:
		return &FileNode{
			BaseNode:    base,
			Language:    env.Language,
			LineCount:   env.LineCount,
			ImportCount: env.ImportCount,
			ExportCount: env.ExportCount,
		}, nil
	case KindFunction:
		return &FunctionNode{
			BaseNode:   base,
			Parameters: env.Parameters,
			ReturnType: env.ReturnType,
			Async:      env.Async,
			Generator:  env.Generator,
		}, nil
	case KindClass:
		return &ClassNode{
			BaseNode:    base,
			Abstract:    env.Abstract,
			Extends:     env.Extends,
			Implements:  env.Implements,
			MemberCount: env.MemberCount,
		}, nil
	case KindInterface:
		return &InterfaceNode{BaseNode: base}, nil
	case KindTypeAlias:
		return &TypeAliasNode{BaseNode: base}, nil
	case KindEnum:
		return &EnumNode{BaseNode: base}, nil
	case KindVariable:
		return &VariableNode{BaseNode: base}, nil
	default:
		return nil, fmt.Errorf("unknown node kind %q", env.Kind)
	}
}
