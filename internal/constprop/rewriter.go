package constprop

import (
	"strings"

	"github.com/constprop/constprop/internal/ast"
)

// Rewrite returns the statements replacing original given the constants
// resolved for clause. original must be an import or a re-export-from;
// any other statement, or an empty constant map, is returned unchanged.
//
// Imports lose their resolved items, and disappear when nothing is left.
// Re-exports keep exporting every resolved name through a plain local
// export placed after the synthesized constants.
func Rewrite(original ast.Statement, clause []*ast.ClauseItem, constants map[string]*ast.Literal) []ast.Statement {
	if len(constants) == 0 {
		return []ast.Statement{original}
	}

	var kept, resolved []*ast.ClauseItem
	for _, item := range clause {
		if _, ok := constants[item.Name]; ok {
			resolved = append(resolved, item)
		} else {
			kept = append(kept, item)
		}
	}
	if len(resolved) == 0 {
		return []ast.Statement{original}
	}

	var out []ast.Statement
	switch stmt := original.(type) {
	case *ast.ImportDeclaration:
		if len(kept) > 0 || stmt.Default != "" {
			out = append(out, shrinkImport(stmt, kept))
		}
		out = append(out, constDeclarations(resolved, constants)...)

	case *ast.ExportFromDeclaration:
		if len(kept) > 0 {
			out = append(out, shrinkExportFrom(stmt, kept))
		}
		out = append(out, constDeclarations(resolved, constants)...)
		out = append(out, exportResolved(resolved))

	default:
		return []ast.Statement{original}
	}

	layout(original, out)
	return out
}

func shrinkImport(stmt *ast.ImportDeclaration, kept []*ast.ClauseItem) *ast.ImportDeclaration {
	return &ast.ImportDeclaration{
		StmtBase:   ast.StmtBase{Synthesized: true},
		TypeOnly:   stmt.TypeOnly,
		Default:    stmt.Default,
		HasClause:  len(kept) > 0,
		Items:      ast.CloneItems(kept),
		Source:     stmt.Source,
		Attributes: stmt.Attributes,
	}
}

func shrinkExportFrom(stmt *ast.ExportFromDeclaration, kept []*ast.ClauseItem) *ast.ExportFromDeclaration {
	return &ast.ExportFromDeclaration{
		StmtBase:   ast.StmtBase{Synthesized: true},
		TypeOnly:   stmt.TypeOnly,
		Items:      ast.CloneItems(kept),
		Source:     stmt.Source,
		Attributes: stmt.Attributes,
	}
}

// constDeclarations synthesizes one const per resolved item, in clause order.
func constDeclarations(resolved []*ast.ClauseItem, constants map[string]*ast.Literal) []ast.Statement {
	out := make([]ast.Statement, 0, len(resolved))
	for _, item := range resolved {
		out = append(out, ast.NewConstDeclaration(item.Name, constants[item.Name].Clone()))
	}
	return out
}

// exportResolved lists the resolved names under their public names.
func exportResolved(resolved []*ast.ClauseItem) *ast.ExportClauseDeclaration {
	items := make([]*ast.ClauseItem, 0, len(resolved))
	for _, item := range resolved {
		items = append(items, &ast.ClauseItem{Name: item.Name})
	}
	return &ast.ExportClauseDeclaration{
		StmtBase: ast.StmtBase{Synthesized: true},
		Items:    items,
	}
}

// layout gives the first replacement the trivia of the original statement
// and puts every following one on its own line at the original indentation.
func layout(original ast.Statement, out []ast.Statement) {
	leading := original.Base().Leading
	indent := ""
	if i := strings.LastIndexByte(leading, '\n'); i >= 0 && strings.TrimSpace(leading[i+1:]) == "" {
		indent = leading[i+1:]
	}
	for i, stmt := range out {
		base := stmt.Base()
		if i == 0 {
			base.Leading = leading
		} else {
			base.Leading = "\n" + indent
		}
		base.Span = original.GetSpan()
	}
}
