package constprop

import "github.com/constprop/constprop/internal/ast"

// Walk traverses stmts depth-first in pre-order. Each statement is replaced
// by the statements transform returns for it (possibly none or several),
// then the bodies of the resulting blocks are walked in turn. The result is
// the flattened list in source order; the input is never modified.
func Walk(stmts []ast.Statement, transform func(ast.Statement) []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, 0, len(stmts))
	for _, stmt := range stmts {
		for _, replaced := range transform(stmt) {
			out = append(out, walkChildren(replaced, transform))
		}
	}
	return out
}

func walkChildren(stmt ast.Statement, transform func(ast.Statement) []ast.Statement) ast.Statement {
	block, ok := stmt.(*ast.BlockStatement)
	if !ok || len(block.Statements) == 0 {
		return stmt
	}
	children := Walk(block.Statements, transform)
	if sameStatements(children, block.Statements) {
		return stmt
	}
	copied := *block
	copied.Statements = children
	return &copied
}

func sameStatements(a, b []ast.Statement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
