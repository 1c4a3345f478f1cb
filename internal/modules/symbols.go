package modules

import (
	"strings"

	"github.com/constprop/constprop/internal/ast"
)

// tableBuilder fills the binding tables of a module from its top-level
// statements. The first declaration of a name wins.
type tableBuilder struct {
	ast.BaseVisitor
	module *Module
	seen   map[string]bool
}

func (b *tableBuilder) local(name string, d Declaration) {
	if name == "" {
		return
	}
	if _, exists := b.module.locals[name]; !exists {
		b.module.locals[name] = d
	}
}

func (b *tableBuilder) export(name string, d Declaration) {
	if name == "" {
		return
	}
	if _, exists := b.module.exports[name]; !exists {
		b.module.exports[name] = d
	}
}

func (b *tableBuilder) dependsOn(specifier string) {
	if specifier == "" || b.seen[specifier] {
		return
	}
	b.seen[specifier] = true
	b.module.Specifiers = append(b.module.Specifiers, specifier)
}

func (b *tableBuilder) VisitVariableDeclaration(node *ast.VariableDeclaration) interface{} {
	for _, decl := range node.Declarators {
		for _, name := range decl.Names {
			var d Declaration
			switch {
			case node.Kind != ast.VarConst:
				d = Other{Reason: node.Kind.String() + " binding"}
			case decl.Pattern:
				d = Other{Reason: "destructuring pattern"}
			case node.Declare || decl.Init == nil:
				d = Other{Reason: "ambient declaration"}
			default:
				d = LocalConst{Name: name, Init: decl.Init}
			}
			b.local(name, d)
			if node.Exported {
				b.export(name, d)
			}
		}
	}
	return nil
}

func (b *tableBuilder) VisitNamedDeclaration(node *ast.NamedDeclaration) interface{} {
	d := Other{Reason: node.Kind.String() + " declaration"}
	b.local(node.Name, d)
	switch {
	case node.Default:
		b.export("default", Other{Reason: "default export"})
	case node.Exported:
		b.export(node.Name, d)
	}
	return nil
}

func (b *tableBuilder) VisitImportDeclaration(node *ast.ImportDeclaration) interface{} {
	spec := node.Source.Value
	b.dependsOn(spec)
	if node.TypeOnly {
		b.local(node.Default, Other{Reason: "type-only import"})
		b.local(node.Namespace, Other{Reason: "type-only import"})
		for _, item := range node.Items {
			b.local(item.Name, Other{Reason: "type-only import"})
		}
		return nil
	}
	b.local(node.Default, Other{Reason: "default import"})
	b.local(node.Namespace, Other{Reason: "namespace import"})
	for _, item := range node.Items {
		if item.IsType {
			b.local(item.Name, Other{Reason: "type-only import"})
			continue
		}
		b.local(item.Name, ImportFrom{Specifier: spec, Source: item.Source()})
	}
	return nil
}

func (b *tableBuilder) VisitExportClauseDeclaration(node *ast.ExportClauseDeclaration) interface{} {
	for _, item := range node.Items {
		if node.TypeOnly || item.IsType {
			b.export(item.Name, Other{Reason: "type-only export"})
			continue
		}
		b.export(item.Name, LocalBareReExport{Local: item.Source()})
	}
	return nil
}

func (b *tableBuilder) VisitExportFromDeclaration(node *ast.ExportFromDeclaration) interface{} {
	spec := node.Source.Value
	b.dependsOn(spec)
	for _, item := range node.Items {
		if node.TypeOnly || item.IsType {
			b.export(item.Name, Other{Reason: "type-only export"})
			continue
		}
		b.export(item.Name, ReExportFrom{Specifier: spec, Source: item.Source()})
	}
	return nil
}

func (b *tableBuilder) VisitExportAllDeclaration(node *ast.ExportAllDeclaration) interface{} {
	b.dependsOn(node.Source.Value)
	if node.Alias != "" {
		b.export(node.Alias, Other{Reason: "namespace re-export"})
	}
	return nil
}

func (b *tableBuilder) VisitExportDefaultDeclaration(node *ast.ExportDefaultDeclaration) interface{} {
	b.export("default", Other{Reason: "default export"})
	return nil
}

func (b *tableBuilder) VisitBlockStatement(node *ast.BlockStatement) interface{} {
	if node.Name == "" || node.Name == "global" || strings.ContainsAny(node.Name, "\"'") {
		return nil
	}
	// namespace A.B binds A
	name := node.Name
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	b.local(name, Other{Reason: "namespace"})
	if node.Exported {
		b.export(name, Other{Reason: "namespace"})
	}
	return nil
}
