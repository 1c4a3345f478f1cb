package ast

import (
	"fmt"

	"github.com/constprop/constprop/internal/position"
)

// LiteralKind tags the LiteralValue union
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBoolean
	LiteralNull
	LiteralUndefined
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralString:
		return "string"
	case LiteralNumber:
		return "number"
	case LiteralBoolean:
		return "boolean"
	case LiteralNull:
		return "null"
	case LiteralUndefined:
		return "undefined"
	default:
		return fmt.Sprintf("LiteralKind(%d)", int(k))
	}
}

// Literal is a compile-time constant written as a single literal token.
// Raw is the token exactly as written, so a value copied into another module
// prints identically.
type Literal struct {
	Span position.Span
	Kind LiteralKind
	Raw  string
}

// Equal reports whether two literals denote the same token.
func (l *Literal) Equal(other *Literal) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.Kind == other.Kind && l.Raw == other.Raw
}

// Clone returns a copy detached from the originating source position.
func (l *Literal) Clone() *Literal {
	return &Literal{Kind: l.Kind, Raw: l.Raw}
}

func (l *Literal) GetSpan() position.Span             { return l.Span }
func (l *Literal) String() string                     { return l.Raw }
func (l *Literal) Accept(visitor Visitor) interface{} { return visitor.VisitLiteral(l) }
func (l *Literal) expressionNode()                    {}

// AsLiteral returns expr as a literal when it is one.
func AsLiteral(expr Expression) (*Literal, bool) {
	lit, ok := expr.(*Literal)
	return lit, ok && lit != nil
}
