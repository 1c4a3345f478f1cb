// Package parser implements a statement-level parser for ECMAScript and
// TypeScript modules.
//
// Module syntax is parsed precisely; other statements are delimited with
// automatic semicolon insertion and kept as opaque source text. The parser
// never evaluates expressions.
package parser

import (
	"fmt"

	"github.com/constprop/constprop/internal/ast"
	"github.com/constprop/constprop/internal/lexer"
	"github.com/constprop/constprop/internal/position"
)

// Parser represents the recursive descent statement parser
type Parser struct {
	src       string
	filename  string
	tokens    []lexer.Token
	pos       int
	errors    []error
	stmtStart lexer.Token // first token of the statement being parsed
}

// ParseError represents a parsing error with context
type ParseError struct {
	Position position.Position
	Message  string
	Context  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error at %s: %s", e.Position.String(), e.Message)
}

// NewParser creates a new parser over src. Lexical errors are reported as
// parse errors.
func NewParser(src, filename string) *Parser {
	tokens, lexErrs := lexer.Tokenize(src, filename)
	p := &Parser{
		src:      src,
		filename: filename,
		tokens:   tokens,
	}
	p.errors = append(p.errors, lexErrs...)
	return p
}

// ParseFile parses a whole module. The returned file is usable even when
// errors are reported; unparsable regions become raw statements.
func ParseFile(path, src string) (*ast.File, []error) {
	p := NewParser(src, path)
	file := p.Parse()
	file.Path = path
	return file, p.errors
}

// Parse parses the input and returns the file
func (p *Parser) Parse() *ast.File {
	stmts, end := p.parseStatements(0)
	for !p.at(lexer.TokenEOF) {
		// stray closing brace at top level
		tok := p.advance()
		p.addError(tok.Span.Start, "unexpected "+describe(tok), "statement")
		raw := &ast.RawStatement{}
		p.finish(raw, end, tok)
		stmts = append(stmts, raw)
		end = tok.End()
		more, moreEnd := p.parseStatements(end)
		stmts = append(stmts, more...)
		end = moreEnd
	}
	return &ast.File{
		Statements: stmts,
		Trailing:   p.src[end:],
	}
}

// Errors returns every error collected so far
func (p *Parser) Errors() []error {
	return p.errors
}

// ====== Token helpers ======

func (p *Parser) cur() lexer.Token {
	return p.peekN(0)
}

func (p *Parser) peekN(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) prev() lexer.Token {
	if p.pos == 0 {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) at(tokenType lexer.TokenType) bool {
	return p.cur().Type == tokenType
}

func (p *Parser) atWord(word string) bool {
	return p.cur().Is(word)
}

// lastEnd returns the end offset of the most recently consumed token
func (p *Parser) lastEnd() int {
	return p.prev().End()
}

func (p *Parser) expect(tokenType lexer.TokenType, context string) (lexer.Token, bool) {
	if p.at(tokenType) {
		return p.advance(), true
	}
	tok := p.cur()
	p.addError(tok.Span.Start, fmt.Sprintf("expected %s, got %s", tokenType, describe(tok)), context)
	return tok, false
}

func (p *Parser) expectWord(word, context string) bool {
	if p.atWord(word) {
		p.advance()
		return true
	}
	tok := p.cur()
	p.addError(tok.Span.Start, fmt.Sprintf("expected %q, got %s", word, describe(tok)), context)
	return false
}

func (p *Parser) addError(pos position.Position, message, context string) {
	p.errors = append(p.errors, &ParseError{
		Position: pos,
		Message:  message,
		Context:  context,
	})
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokenEOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", tok.Literal)
}

// consumeSemicolon eats an explicit semicolon; otherwise the statement ends
// by automatic semicolon insertion.
func (p *Parser) consumeSemicolon() {
	if p.at(lexer.TokenSemicolon) {
		p.advance()
	}
}

// isName reports whether tok can be used as an IdentifierName (property or
// export name), which includes reserved words.
func isName(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenIdentifier, lexer.TokenImport, lexer.TokenExport, lexer.TokenConst,
		lexer.TokenLet, lexer.TokenVar, lexer.TokenFunction, lexer.TokenClass,
		lexer.TokenDefault, lexer.TokenTrue, lexer.TokenFalse, lexer.TokenNull:
		return true
	}
	return false
}

// ====== Statement boundaries ======

// canEndExpression reports whether an expression may end with tok.
func canEndExpression(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenIdentifier, lexer.TokenPrivateName, lexer.TokenString, lexer.TokenNumber,
		lexer.TokenTemplate, lexer.TokenRegex, lexer.TokenJSX, lexer.TokenTrue, lexer.TokenFalse, lexer.TokenNull,
		lexer.TokenRParen, lexer.TokenRBracket, lexer.TokenRBrace, lexer.TokenGt:
		return true
	case lexer.TokenOperator:
		return tok.Literal == "++" || tok.Literal == "--"
	}
	return false
}

// continuesStatement reports whether tok, found at the start of a line,
// continues the previous statement instead of starting a new one.
func continuesStatement(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenDot, lexer.TokenOptionalChain, lexer.TokenAssign, lexer.TokenArrow,
		lexer.TokenQuestion, lexer.TokenColon, lexer.TokenComma, lexer.TokenLParen,
		lexer.TokenLBracket, lexer.TokenTemplate, lexer.TokenLt, lexer.TokenGt, lexer.TokenStar:
		return true
	case lexer.TokenOperator:
		switch tok.Literal {
		case "!", "~", "++", "--":
			return false
		}
		return true
	case lexer.TokenIdentifier:
		switch tok.Literal {
		case "as", "satisfies", "in", "instanceof", "else", "catch", "finally", "while":
			return true
		}
	}
	return false
}

// endsByASI reports whether a statement ends between the last consumed token
// and the current one.
func (p *Parser) endsByASI() bool {
	tok := p.cur()
	if tok.Type == lexer.TokenEOF {
		return true
	}
	return tok.NewlineBefore && canEndExpression(p.prev()) && !continuesStatement(tok)
}

// skipStatement consumes tokens up to the end of the current statement:
// a semicolon at depth zero, an unmatched closing brace (left in place), or
// a line break where automatic semicolon insertion applies.
func (p *Parser) skipStatement() {
	depth := 0
	first := true
	for !p.at(lexer.TokenEOF) {
		tok := p.cur()
		if !first && depth == 0 && p.endsByASI() {
			return
		}
		switch tok.Type {
		case lexer.TokenLBrace, lexer.TokenLParen, lexer.TokenLBracket:
			depth++
		case lexer.TokenRBrace, lexer.TokenRParen, lexer.TokenRBracket:
			if depth == 0 {
				return
			}
			depth--
		case lexer.TokenSemicolon:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
		first = false
	}
}

// skipBalanced consumes an opening bracket and everything up to its match.
func (p *Parser) skipBalanced() bool {
	open := p.advance()
	var closeType lexer.TokenType
	switch open.Type {
	case lexer.TokenLBrace:
		closeType = lexer.TokenRBrace
	case lexer.TokenLParen:
		closeType = lexer.TokenRParen
	case lexer.TokenLBracket:
		closeType = lexer.TokenRBracket
	default:
		return false
	}
	depth := 1
	for !p.at(lexer.TokenEOF) {
		tok := p.advance()
		switch tok.Type {
		case lexer.TokenLBrace, lexer.TokenLParen, lexer.TokenLBracket:
			depth++
		case lexer.TokenRBrace, lexer.TokenRParen, lexer.TokenRBracket:
			depth--
			if depth == 0 {
				if tok.Type != closeType {
					p.addError(tok.Span.Start, fmt.Sprintf("mismatched %q", tok.Literal), "brackets")
				}
				return true
			}
		}
	}
	p.addError(open.Span.Start, fmt.Sprintf("unclosed %q", open.Literal), "brackets")
	return false
}

// skipUntilBody consumes tokens until the "{" opening a declaration body at
// depth zero, which is left as the current token. It stops early at a
// semicolon or statement end, returning false (bodiless declaration).
func (p *Parser) skipUntilBody() bool {
	depth := 0
	for !p.at(lexer.TokenEOF) {
		tok := p.cur()
		switch tok.Type {
		case lexer.TokenLBrace:
			if depth == 0 {
				if typeLiteralContext(p.prev()) {
					p.skipBalanced()
					continue
				}
				return true
			}
			depth++
		case lexer.TokenLParen, lexer.TokenLBracket, lexer.TokenLt:
			depth++
		case lexer.TokenRParen, lexer.TokenRBracket, lexer.TokenGt, lexer.TokenRBrace:
			if depth == 0 {
				return false
			}
			depth--
		case lexer.TokenOperator:
			if depth > 0 {
				depth -= closingAngles(tok.Literal)
				if depth < 0 {
					depth = 0
				}
			}
		case lexer.TokenSemicolon:
			if depth == 0 {
				return false
			}
		}
		p.advance()
		if depth == 0 && p.endsByASI() && !p.at(lexer.TokenLBrace) {
			return false
		}
	}
	return false
}

// typeLiteralContext reports whether a "{" after tok starts an object type
// rather than a body, as in "function f(): { a: string } { ... }".
func typeLiteralContext(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenColon, lexer.TokenArrow, lexer.TokenLt, lexer.TokenComma, lexer.TokenAssign:
		return true
	case lexer.TokenOperator:
		return tok.Literal == "|" || tok.Literal == "&"
	}
	return false
}

// closingAngles counts ">" characters in shift operators that close
// nested type argument lists.
func closingAngles(op string) int {
	switch op {
	case ">>":
		return 2
	case ">>>":
		return 3
	case ">=":
		return 1
	case ">>=":
		return 2
	}
	return 0
}

// skipExpression consumes an initializer or type up to a "," or ";" at
// depth zero, an unmatched closing bracket, or a statement end. Angle
// brackets count toward depth when inTypes is set.
func (p *Parser) skipExpression(inTypes bool) {
	depth := 0
	first := true
	for !p.at(lexer.TokenEOF) {
		tok := p.cur()
		if !first && depth == 0 && p.endsByASI() {
			return
		}
		switch tok.Type {
		case lexer.TokenLBrace, lexer.TokenLParen, lexer.TokenLBracket:
			depth++
		case lexer.TokenRBrace, lexer.TokenRParen, lexer.TokenRBracket:
			if depth == 0 {
				return
			}
			depth--
		case lexer.TokenLt:
			if inTypes {
				depth++
			} else if p.skipTypeArguments() {
				first = false
				continue
			}
		case lexer.TokenGt:
			if inTypes && depth > 0 {
				depth--
			}
		case lexer.TokenOperator:
			if inTypes && depth > 0 {
				depth -= closingAngles(tok.Literal)
				if depth < 0 {
					depth = 0
				}
			}
		case lexer.TokenComma, lexer.TokenSemicolon:
			if depth == 0 {
				return
			}
		case lexer.TokenAssign:
			if inTypes && depth == 0 {
				return
			}
		}
		p.advance()
		first = false
	}
}

// skipTypeArguments consumes a "<...>" list at the current token when it
// is immediately followed by "(", as in generic arrow functions
// ("<T,>(v: T) => v") and explicit call type arguments ("f<A, B>(x)").
// Otherwise it consumes nothing and returns false.
func (p *Parser) skipTypeArguments() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		tok := p.tokens[i]
		switch tok.Type {
		case lexer.TokenLt, lexer.TokenLParen, lexer.TokenLBracket, lexer.TokenLBrace:
			depth++
		case lexer.TokenGt, lexer.TokenRParen, lexer.TokenRBracket, lexer.TokenRBrace:
			depth--
		case lexer.TokenOperator:
			switch tok.Literal {
			case "|", "&":
			case ">>", ">>>":
				depth -= closingAngles(tok.Literal)
			default:
				return false
			}
		case lexer.TokenSemicolon, lexer.TokenEOF:
			return false
		}
		if depth < 0 {
			return false
		}
		if depth == 0 {
			if tok.Type != lexer.TokenGt && !(tok.Type == lexer.TokenOperator && closingAngles(tok.Literal) > 0) {
				return false
			}
			if i+1 >= len(p.tokens) || p.tokens[i+1].Type != lexer.TokenLParen {
				return false
			}
			p.pos = i + 1
			return true
		}
	}
	return false
}

// finish fills the layout fields of a parsed statement that started at
// startTok and ends with the last consumed token.
func (p *Parser) finish(stmt ast.Statement, prevEnd int, startTok lexer.Token) {
	base := stmt.Base()
	end := p.lastEnd()
	if end < startTok.Start() {
		end = startTok.Start()
	}
	base.Leading = p.src[prevEnd:startTok.Start()]
	base.Text = p.src[startTok.Start():end]
	base.Span = position.Span{Start: startTok.Span.Start, End: p.prev().Span.End}
}
