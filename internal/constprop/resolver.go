// Package constprop implements cross-module constant propagation.
//
// Imports and re-exports whose bindings can be traced, through any chain of
// local declarations, bare re-exports, aliases and re-export-from/import-from
// hops, to a literal const initializer are replaced by local const
// declarations. Everything that cannot be proven constant is left untouched.
package constprop

import (
	"go.uber.org/zap"

	"github.com/constprop/constprop/internal/ast"
	"github.com/constprop/constprop/internal/modules"
)

// Resolver determines which requested bindings denote literal values. It
// only reads the module graph.
type Resolver struct {
	graph modules.Accessor
}

// NewResolver creates a resolver over graph
func NewResolver(graph modules.Accessor) *Resolver {
	return &Resolver{graph: graph}
}

// visitKey identifies one lookup on a resolution chain. Export and local
// lookups of the same name are distinct steps.
type visitKey struct {
	module modules.ModulePath
	name   string
	local  bool
}

// Resolve returns the literal value of every item of clause proven constant
// when requested from exporting, keyed by the item's local (or public) name.
// Items missing from the result are not constant.
func (r *Resolver) Resolve(clause []*ast.ClauseItem, exporting *modules.Module) map[string]*ast.Literal {
	constants := make(map[string]*ast.Literal)
	if exporting == nil {
		return constants
	}
	for _, item := range clause {
		if item.IsType {
			continue
		}
		// each binding gets its own chain
		visited := make(map[visitKey]bool)
		if lit, ok := r.resolveExport(exporting, item.Source(), visited); ok {
			constants[item.Name] = lit.Clone()
		}
	}
	return constants
}

// resolveExport classifies the export name of m.
func (r *Resolver) resolveExport(m *modules.Module, name string, visited map[visitKey]bool) (*ast.Literal, bool) {
	key := visitKey{module: m.Path, name: name}
	if visited[key] {
		Logger().Debug("cyclic re-export chain", zap.String("module", string(m.Path)), zap.String("name", name))
		return nil, false
	}
	visited[key] = true
	defer delete(visited, key)

	decl, ok := m.Export(name)
	if !ok {
		return nil, false
	}
	switch d := decl.(type) {
	case modules.LocalConst:
		return ast.AsLiteral(d.Init)
	case modules.LocalBareReExport:
		return r.resolveLocal(m, d.Local, visited)
	case modules.ReExportFrom:
		return r.follow(m, d.Specifier, d.Source, visited)
	case modules.ImportFrom:
		return r.follow(m, d.Specifier, d.Source, visited)
	case modules.Other:
		return nil, false
	}
	return nil, false
}

// resolveLocal classifies the top-level binding name of m, the target of a
// bare re-export.
func (r *Resolver) resolveLocal(m *modules.Module, name string, visited map[visitKey]bool) (*ast.Literal, bool) {
	key := visitKey{module: m.Path, name: name, local: true}
	if visited[key] {
		return nil, false
	}
	visited[key] = true
	defer delete(visited, key)

	decl, ok := m.Local(name)
	if !ok {
		return nil, false
	}
	switch d := decl.(type) {
	case modules.LocalConst:
		return ast.AsLiteral(d.Init)
	case modules.ImportFrom:
		return r.follow(m, d.Specifier, d.Source, visited)
	case modules.LocalBareReExport, modules.ReExportFrom, modules.Other:
		return nil, false
	}
	return nil, false
}

// follow resolves source against the module specifier refers to from m.
func (r *Resolver) follow(m *modules.Module, specifier, source string, visited map[visitKey]bool) (*ast.Literal, bool) {
	target, ok := r.graph.ResolveModule(m, specifier)
	if !ok {
		Logger().Debug("unreachable module", zap.String("module", string(m.Path)), zap.String("specifier", specifier))
		return nil, false
	}
	return r.resolveExport(target, source, visited)
}
