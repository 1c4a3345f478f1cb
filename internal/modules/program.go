package modules

import (
	"sort"
)

// Program is an immutable snapshot of every module loaded from a project
// root. It is the Accessor used while transforming the project.
type Program struct {
	Root       string
	Extensions []string
	Graph      *DependencyGraph

	// Failures holds per-file read and parse errors. Failed files are not
	// part of the program.
	Failures []error

	modules map[ModulePath]*Module
}

// NewProgram assembles a program from parsed modules and links their
// dependencies. A nil extension list selects DefaultExtensions.
func NewProgram(root string, extensions []string, modules ...*Module) *Program {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	p := &Program{
		Root:       root,
		Extensions: extensions,
		Graph:      NewDependencyGraph(),
		modules:    make(map[ModulePath]*Module, len(modules)),
	}
	for _, m := range modules {
		p.modules[m.Path] = m
		p.Graph.AddModule(m.Path)
	}
	for _, m := range p.Modules() {
		for _, spec := range m.Specifiers {
			if target, ok := p.ResolveModule(m, spec); ok {
				p.Graph.AddDependency(m.Path, target.Path)
			}
		}
	}
	return p
}

// Module returns the module at path
func (p *Program) Module(path ModulePath) (*Module, bool) {
	m, ok := p.modules[path]
	return m, ok
}

// Modules returns all modules sorted by path
func (p *Program) Modules() []*Module {
	out := make([]*Module, 0, len(p.modules))
	for _, m := range p.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Len returns the number of modules in the program
func (p *Program) Len() int {
	return len(p.modules)
}

// ResolveModule implements Accessor.
func (p *Program) ResolveModule(from *Module, specifier string) (*Module, bool) {
	var fromPath ModulePath
	if from != nil {
		fromPath = from.Path
	}
	target, ok := ResolveSpecifier(fromPath, specifier, p.Extensions, func(candidate ModulePath) bool {
		_, exists := p.modules[candidate]
		return exists
	})
	if !ok {
		return nil, false
	}
	return p.modules[target], true
}
