// Package ast defines the syntax forest of one ECMAScript/TypeScript module
// as seen by the constant propagation pass.
//
// The tree is statement-level: module syntax (imports, exports, variable,
// function, class and type declarations, namespace bodies) is modelled in
// detail, everything else is carried as opaque source text. Every parsed
// statement keeps its leading trivia and exact source text so untouched code
// prints back byte-for-byte. Synthesized statements have no source text and
// are printed from their fields.
package ast

import (
	"fmt"
	"strings"

	"github.com/constprop/constprop/internal/position"
)

// Node is the base interface for all AST nodes
type Node interface {
	// GetSpan returns the source span covered by this node
	GetSpan() position.Span
	// String returns the source form of the node
	String() string
	// Accept implements the visitor pattern for AST traversal
	Accept(visitor Visitor) interface{}
}

// Statement represents all statement nodes in the AST
type Statement interface {
	Node
	// Base exposes layout information shared by every statement
	Base() *StmtBase
	statementNode()
}

// Expression represents all expression nodes in the AST
type Expression interface {
	Node
	expressionNode()
}

// StmtBase carries the layout data common to all statements.
type StmtBase struct {
	Span        position.Span
	Leading     string // whitespace and comments between the previous statement and this one
	Text        string // exact source text; empty for synthesized statements
	Synthesized bool
}

func (b *StmtBase) Base() *StmtBase        { return b }
func (b *StmtBase) GetSpan() position.Span { return b.Span }
func (b *StmtBase) statementNode()         {}

// source returns the parsed text when present, otherwise the generated form.
func (b *StmtBase) source(generate func() string) string {
	if !b.Synthesized && b.Text != "" {
		return b.Text
	}
	return generate()
}

// ===== Program Structure =====

// File is the root of one compilation unit
type File struct {
	Path       string      // module path, slash separated, relative to the project root
	Statements []Statement // top-level statements in source order
	Trailing   string      // trivia after the last statement
}

func (f *File) GetSpan() position.Span {
	if len(f.Statements) == 0 {
		return position.Span{}
	}
	return f.Statements[0].GetSpan().Union(f.Statements[len(f.Statements)-1].GetSpan())
}

func (f *File) String() string {
	var parts []string
	for _, s := range f.Statements {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, "\n")
}

func (f *File) Accept(visitor Visitor) interface{} { return visitor.VisitFile(f) }

// ===== Module syntax =====

// StringLiteral is a quoted string as it appears in module syntax
type StringLiteral struct {
	Raw   string // with quotes, as written
	Value string // decoded
}

// ClauseItem is one binding request inside braces:
//
//	import { a as b } from "m"   Name "b", SourceName "a"
//	export { a as b } from "m"   Name "b" (public), SourceName "a"
//	export { a as b }            Name "b" (public), SourceName "a" (local)
//
// SourceName is empty when the item is not aliased.
type ClauseItem struct {
	Span       position.Span
	Name       string
	SourceName string
	IsType     bool   // TypeScript "type" modifier on the item
	Text       string // raw item text, reused when the clause is reprinted
}

// Source returns the name the item refers to on the other side of the boundary.
func (c *ClauseItem) Source() string {
	if c.SourceName != "" {
		return c.SourceName
	}
	return c.Name
}

// IsAliased reports whether the item renames its binding with "as".
func (c *ClauseItem) IsAliased() bool {
	return c.SourceName != "" && c.SourceName != c.Name
}

func (c *ClauseItem) GetSpan() position.Span { return c.Span }
func (c *ClauseItem) String() string {
	if c.Text != "" {
		return c.Text
	}
	prefix := ""
	if c.IsType {
		prefix = "type "
	}
	if c.IsAliased() {
		return fmt.Sprintf("%s%s as %s", prefix, quoteNameIfNeeded(c.SourceName), c.Name)
	}
	return prefix + c.Name
}
func (c *ClauseItem) Accept(visitor Visitor) interface{} { return visitor.VisitClauseItem(c) }

// quoteNameIfNeeded renders a module export name that is not an identifier
// as a string literal.
func quoteNameIfNeeded(name string) string {
	for i, r := range name {
		ok := r == '$' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f ||
			(i > 0 && r >= '0' && r <= '9')
		if !ok {
			return fmt.Sprintf("%q", name)
		}
	}
	return name
}

func clauseString(items []*ClauseItem) string {
	if len(items) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.String())
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// CloneItems copies a clause so a rewritten statement never shares items
// with the statement it replaces.
func CloneItems(items []*ClauseItem) []*ClauseItem {
	out := make([]*ClauseItem, len(items))
	for i, it := range items {
		c := *it
		out[i] = &c
	}
	return out
}

// ImportDeclaration is any "import ... from" or side-effect import.
type ImportDeclaration struct {
	StmtBase
	TypeOnly   bool          // import type ...
	Default    string        // default binding, "" when absent
	Namespace  string        // "* as ns" binding, "" when absent
	HasClause  bool          // braces present
	Items      []*ClauseItem // named bindings
	Source     StringLiteral
	Attributes string // raw "with { ... }" / "assert { ... }" suffix
}

func (d *ImportDeclaration) String() string {
	return d.source(func() string {
		var b strings.Builder
		b.WriteString("import ")
		if d.TypeOnly {
			b.WriteString("type ")
		}
		var bindings []string
		if d.Default != "" {
			bindings = append(bindings, d.Default)
		}
		if d.Namespace != "" {
			bindings = append(bindings, "* as "+d.Namespace)
		}
		if d.HasClause {
			bindings = append(bindings, clauseString(d.Items))
		}
		if len(bindings) > 0 {
			b.WriteString(strings.Join(bindings, ", "))
			b.WriteString(" from ")
		}
		b.WriteString(d.Source.Raw)
		if d.Attributes != "" {
			b.WriteString(" " + d.Attributes)
		}
		b.WriteString(";")
		return b.String()
	})
}
func (d *ImportDeclaration) Accept(visitor Visitor) interface{} {
	return visitor.VisitImportDeclaration(d)
}

// ExportFromDeclaration is "export { ... } from 'm'".
type ExportFromDeclaration struct {
	StmtBase
	TypeOnly   bool
	Items      []*ClauseItem
	Source     StringLiteral
	Attributes string
}

func (d *ExportFromDeclaration) String() string {
	return d.source(func() string {
		prefix := "export "
		if d.TypeOnly {
			prefix += "type "
		}
		s := prefix + clauseString(d.Items) + " from " + d.Source.Raw
		if d.Attributes != "" {
			s += " " + d.Attributes
		}
		return s + ";"
	})
}
func (d *ExportFromDeclaration) Accept(visitor Visitor) interface{} {
	return visitor.VisitExportFromDeclaration(d)
}

// ExportClauseDeclaration is a local "export { a, b as c }".
type ExportClauseDeclaration struct {
	StmtBase
	TypeOnly bool
	Items    []*ClauseItem
}

func (d *ExportClauseDeclaration) String() string {
	return d.source(func() string {
		prefix := "export "
		if d.TypeOnly {
			prefix += "type "
		}
		return prefix + clauseString(d.Items) + ";"
	})
}
func (d *ExportClauseDeclaration) Accept(visitor Visitor) interface{} {
	return visitor.VisitExportClauseDeclaration(d)
}

// ExportAllDeclaration is "export * from 'm'" or "export * as ns from 'm'".
// Namespace re-exports are passed through untouched.
type ExportAllDeclaration struct {
	StmtBase
	Alias  string
	Source StringLiteral
}

func (d *ExportAllDeclaration) String() string {
	return d.source(func() string {
		if d.Alias != "" {
			return fmt.Sprintf("export * as %s from %s;", d.Alias, d.Source.Raw)
		}
		return fmt.Sprintf("export * from %s;", d.Source.Raw)
	})
}
func (d *ExportAllDeclaration) Accept(visitor Visitor) interface{} {
	return visitor.VisitExportAllDeclaration(d)
}

// ExportDefaultDeclaration is "export default ...". Default exports are
// never resolved.
type ExportDefaultDeclaration struct {
	StmtBase
}

func (d *ExportDefaultDeclaration) String() string { return d.Text }
func (d *ExportDefaultDeclaration) Accept(visitor Visitor) interface{} {
	return visitor.VisitExportDefaultDeclaration(d)
}

// ===== Declarations =====

// VariableKind is the keyword introducing a variable statement
type VariableKind int

const (
	VarConst VariableKind = iota
	VarLet
	VarVar
)

func (k VariableKind) String() string {
	switch k {
	case VarConst:
		return "const"
	case VarLet:
		return "let"
	default:
		return "var"
	}
}

// Declarator is one binding of a variable statement
type Declarator struct {
	Name    string     // "" for destructuring patterns
	Names   []string   // every identifier bound by the declarator
	Init    Expression // nil when absent
	Pattern bool
}

// VariableDeclaration is a const/let/var statement
type VariableDeclaration struct {
	StmtBase
	Kind        VariableKind
	Exported    bool
	Declare     bool // TypeScript ambient declaration
	Declarators []*Declarator
}

// NewConstDeclaration synthesizes "const name = value;".
func NewConstDeclaration(name string, value *Literal) *VariableDeclaration {
	return &VariableDeclaration{
		StmtBase:    StmtBase{Synthesized: true},
		Kind:        VarConst,
		Declarators: []*Declarator{{Name: name, Names: []string{name}, Init: value}},
	}
}

// Lookup returns the declarator binding name, if any.
func (d *VariableDeclaration) Lookup(name string) (*Declarator, bool) {
	for _, decl := range d.Declarators {
		if decl.Name == name {
			return decl, true
		}
	}
	return nil, false
}

func (d *VariableDeclaration) String() string {
	return d.source(func() string {
		var parts []string
		for _, decl := range d.Declarators {
			if decl.Init != nil {
				parts = append(parts, decl.Name+" = "+decl.Init.String())
			} else {
				parts = append(parts, decl.Name)
			}
		}
		prefix := ""
		if d.Exported {
			prefix = "export "
		}
		if d.Declare {
			prefix += "declare "
		}
		return prefix + d.Kind.String() + " " + strings.Join(parts, ", ") + ";"
	})
}
func (d *VariableDeclaration) Accept(visitor Visitor) interface{} {
	return visitor.VisitVariableDeclaration(d)
}

// DeclKind classifies named non-variable declarations
type DeclKind int

const (
	DeclFunction DeclKind = iota
	DeclClass
	DeclInterface
	DeclTypeAlias
	DeclEnum
	DeclImportEquals // TypeScript "import x = require(...)"
)

func (k DeclKind) String() string {
	switch k {
	case DeclFunction:
		return "function"
	case DeclClass:
		return "class"
	case DeclInterface:
		return "interface"
	case DeclTypeAlias:
		return "type"
	case DeclEnum:
		return "enum"
	default:
		return "import="
	}
}

// NamedDeclaration is a function, class, interface, type alias or enum.
// None of these ever denote a literal.
type NamedDeclaration struct {
	StmtBase
	Kind     DeclKind
	Name     string
	Exported bool
	Default  bool // export default function/class
	Declare  bool
}

func (d *NamedDeclaration) String() string { return d.Text }
func (d *NamedDeclaration) Accept(visitor Visitor) interface{} {
	return visitor.VisitNamedDeclaration(d)
}

// ===== Statements =====

// BlockStatement is a braced body whose children are statements: a
// namespace, an ambient module declaration or a plain block.
type BlockStatement struct {
	StmtBase
	Name       string // namespace name, quoted ambient module name, "" for plain blocks
	Exported   bool
	Header     string // source text up to and including "{"
	Statements []Statement
	Footer     string // trivia before "}" plus "}"
}

func (b *BlockStatement) String() string {
	var sb strings.Builder
	sb.WriteString(b.Header)
	for _, s := range b.Statements {
		sb.WriteString(s.Base().Leading)
		sb.WriteString(s.String())
	}
	sb.WriteString(b.Footer)
	return sb.String()
}
func (b *BlockStatement) Accept(visitor Visitor) interface{} {
	return visitor.VisitBlockStatement(b)
}

// RawStatement is any statement the pass does not need to understand.
type RawStatement struct {
	StmtBase
}

func (r *RawStatement) String() string                     { return r.Text }
func (r *RawStatement) Accept(visitor Visitor) interface{} { return visitor.VisitRawStatement(r) }

// ===== Expressions =====

// RawExpression is an initializer that is not a literal token
type RawExpression struct {
	Span position.Span
	Text string
}

func (e *RawExpression) GetSpan() position.Span             { return e.Span }
func (e *RawExpression) String() string                     { return e.Text }
func (e *RawExpression) Accept(visitor Visitor) interface{} { return visitor.VisitRawExpression(e) }
func (e *RawExpression) expressionNode()                    {}
