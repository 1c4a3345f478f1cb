// Package modules provides the module graph consulted by constant propagation.
//
// This package implements:
// - Export and local binding tables for each parsed module
// - The closed Declaration variant describing what a name is bound to
// - Specifier resolution between modules of one project
// - Concurrent loading of a project tree into a Program
// - Dependency tracking with cycle detection
package modules

import (
	"sort"

	"github.com/constprop/constprop/internal/ast"
)

// ModulePath is the slash-separated path of a module relative to the
// project root. It identifies the module within a Program.
type ModulePath string

// Declaration describes what a module-level name is bound to. It is a closed
// set: LocalConst, LocalBareReExport, ReExportFrom, ImportFrom and Other.
type Declaration interface {
	declaration()
}

// LocalConst is a top-level "const name = init". Init is nil for ambient
// declarations without initializer.
type LocalConst struct {
	Name string
	Init ast.Expression
}

// LocalBareReExport is an "export { local as public }" without a source
// module. Local names the top-level binding being exported.
type LocalBareReExport struct {
	Local string
}

// ReExportFrom is an "export { source as public } from specifier" item.
type ReExportFrom struct {
	Specifier string
	Source    string
}

// ImportFrom is a local binding introduced by "import { source as local }".
type ImportFrom struct {
	Specifier string
	Source    string
}

// Other is any binding that can never denote a literal.
type Other struct {
	Reason string
}

func (LocalConst) declaration()        {}
func (LocalBareReExport) declaration() {}
func (ReExportFrom) declaration()      {}
func (ImportFrom) declaration()        {}
func (Other) declaration()             {}

// Module represents a loaded module
type Module struct {
	Path   ModulePath
	File   *ast.File
	Source string

	exports map[string]Declaration
	locals  map[string]Declaration

	// Specifiers lists every module specifier the module imports from or
	// re-exports from, in source order and without duplicates.
	Specifiers []string
}

// NewModule builds the export and local binding tables of a parsed file.
func NewModule(path ModulePath, file *ast.File, source string) *Module {
	m := &Module{
		Path:    path,
		File:    file,
		Source:  source,
		exports: make(map[string]Declaration),
		locals:  make(map[string]Declaration),
	}
	b := &tableBuilder{module: m, seen: make(map[string]bool)}
	ast.VisitStatements(b, file.Statements)
	return m
}

// Export returns the declaration behind an exported name.
func (m *Module) Export(name string) (Declaration, bool) {
	d, ok := m.exports[name]
	return d, ok
}

// Local returns the declaration of a top-level binding.
func (m *Module) Local(name string) (Declaration, bool) {
	d, ok := m.locals[name]
	return d, ok
}

// HasBinding reports whether name is declared at the top level of the module.
func (m *Module) HasBinding(name string) bool {
	_, ok := m.locals[name]
	return ok
}

// ExportNames returns the exported names in sorted order.
func (m *Module) ExportNames() []string {
	names := make([]string, 0, len(m.exports))
	for name := range m.exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Accessor gives the constant resolver read access to the module graph.
type Accessor interface {
	// ResolveModule finds the module a specifier refers to from the
	// importing module. Unreachable specifiers report false.
	ResolveModule(from *Module, specifier string) (*Module, bool)
}
