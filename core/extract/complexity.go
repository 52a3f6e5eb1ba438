package extract

import sitter "github.com/smacker/go-tree-sitter"

// logicalOperators are the short-circuit and nullish operators that add a
// decision point.
var logicalOperators = map[string]struct{}{
	"&&": {},
	"||": {},
	"??": {},
}

// branchNodeTypes are the construct kinds that add one decision point each.
var branchNodeTypes = map[string]struct{}{
	"if_statement":       {},
	"ternary_expression": {},
	"for_statement":      {},
	"for_in_statement":   {},
	"while_statement":    {},
	"do_statement":       {},
	"switch_case":        {},
	"catch_clause":       {},
	"conditional_type":   {},
}

// Complexity computes the cyclomatic complexity of a construct: base 1 plus
// one per branching construct in its subtree, plus one per binary expression
// node whose operator is a short-circuit or nullish logical operator. A
// chain like `a && b && c` nests two binary expression nodes and counts 2:
// the increment is per expression node visited, not per operator token.
func Complexity(node *sitter.Node) int {
	count := 1
	for i := 0; i < int(node.NamedChildCount()); i++ {
		count += countDecisionPoints(node.NamedChild(i))
	}
	return count
}

// countDecisionPoints counts decision points in a subtree, root included.
func countDecisionPoints(node *sitter.Node) int {
	count := 0

	if _, ok := branchNodeTypes[node.Type()]; ok {
		count++
	}
	if node.Type() == "binary_expression" {
		if op := node.ChildByFieldName("operator"); op != nil {
			if _, ok := logicalOperators[op.Type()]; ok {
				count++
			}
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		count += countDecisionPoints(node.NamedChild(i))
	}

	return count
}
