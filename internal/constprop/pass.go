package constprop

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/constprop/constprop/internal/ast"
	"github.com/constprop/constprop/internal/lexer"
	"github.com/constprop/constprop/internal/modules"
)

// PassName identifies the constant propagation pass in logs and metrics
const PassName = "ConstantPropagation"

// Metrics counts what one or more passes did
type Metrics struct {
	PassName           string
	NodesVisited       int
	ImportsRemoved     int
	ImportsShrunk      int
	ReExportsRewritten int
	ConstantsInlined   int
}

// Add accumulates other into m
func (m *Metrics) Add(other Metrics) {
	m.NodesVisited += other.NodesVisited
	m.ImportsRemoved += other.ImportsRemoved
	m.ImportsShrunk += other.ImportsShrunk
	m.ReExportsRewritten += other.ReExportsRewritten
	m.ConstantsInlined += other.ConstantsInlined
}

// Changed reports whether any statement was rewritten
func (m Metrics) Changed() bool {
	return m.ImportsRemoved+m.ImportsShrunk+m.ReExportsRewritten > 0
}

func (m Metrics) String() string {
	return fmt.Sprintf("%s: %d nodes, %d constants inlined, %d imports removed, %d imports shrunk, %d re-exports rewritten",
		m.PassName, m.NodesVisited, m.ConstantsInlined, m.ImportsRemoved, m.ImportsShrunk, m.ReExportsRewritten)
}

// Pass rewrites the statements of one module
type Pass struct {
	graph    modules.Accessor
	module   *modules.Module
	resolver *Resolver
	metrics  Metrics
}

// NewPass creates a pass transforming module against graph
func NewPass(graph modules.Accessor, module *modules.Module) *Pass {
	return &Pass{
		graph:    graph,
		module:   module,
		resolver: NewResolver(graph),
		metrics:  Metrics{PassName: PassName},
	}
}

// GetName returns the name of this pass
func (p *Pass) GetName() string {
	return PassName
}

// GetMetrics returns the counters collected so far
func (p *Pass) GetMetrics() Metrics {
	return p.metrics
}

// Run transforms the whole module and returns the rewritten file. The
// module's own file is left untouched.
func (p *Pass) Run() *ast.File {
	file := p.module.File
	return &ast.File{
		Path:       file.Path,
		Statements: Walk(file.Statements, p.Apply),
		Trailing:   file.Trailing,
	}
}

// Apply transforms one statement
func (p *Pass) Apply(stmt ast.Statement) []ast.Statement {
	p.metrics.NodesVisited++

	switch s := stmt.(type) {
	case *ast.ImportDeclaration:
		if s.TypeOnly || len(s.Items) == 0 {
			return []ast.Statement{stmt}
		}
		constants := p.resolve(s.Source.Value, s.Items, func(*ast.ClauseItem) bool { return true })
		out := Rewrite(s, s.Items, constants)
		if len(constants) > 0 {
			p.metrics.ConstantsInlined += len(constants)
			if len(out) == len(constants) {
				p.metrics.ImportsRemoved++
			} else {
				p.metrics.ImportsShrunk++
			}
			p.logRewrite("import", s.Source.Value, len(constants))
		}
		return out

	case *ast.ExportFromDeclaration:
		if s.TypeOnly || len(s.Items) == 0 {
			return []ast.Statement{stmt}
		}
		constants := p.resolve(s.Source.Value, s.Items, p.inlinable)
		out := Rewrite(s, s.Items, constants)
		if len(constants) > 0 {
			p.metrics.ConstantsInlined += len(constants)
			p.metrics.ReExportsRewritten++
			p.logRewrite("re-export", s.Source.Value, len(constants))
		}
		return out
	}
	return []ast.Statement{stmt}
}

// resolve looks up the clause items accepted by eligible in the module
// specifier refers to.
func (p *Pass) resolve(specifier string, items []*ast.ClauseItem, eligible func(*ast.ClauseItem) bool) map[string]*ast.Literal {
	target, ok := p.graph.ResolveModule(p.module, specifier)
	if !ok {
		Logger().Debug("skipping unresolved specifier",
			zap.String("module", string(p.module.Path)), zap.String("specifier", specifier))
		return nil
	}
	var clause []*ast.ClauseItem
	for _, item := range items {
		if !item.IsType && eligible(item) {
			clause = append(clause, item)
		}
	}
	return p.resolver.Resolve(clause, target)
}

// inlinable reports whether a re-exported public name can become a local
// const: it must be a plain identifier not already bound in the module.
func (p *Pass) inlinable(item *ast.ClauseItem) bool {
	name := item.Name
	if !lexer.IsIdentifierName(name) || lexer.IsReservedWord(name) {
		return false
	}
	return !p.module.HasBinding(name)
}

func (p *Pass) logRewrite(kind, specifier string, count int) {
	Logger().Debug("inlined constants",
		zap.String("module", string(p.module.Path)),
		zap.String("kind", kind),
		zap.String("specifier", specifier),
		zap.Int("count", count))
}
