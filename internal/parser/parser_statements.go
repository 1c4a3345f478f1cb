package parser

import (
	"github.com/constprop/constprop/internal/ast"
	"github.com/constprop/constprop/internal/lexer"
)

// modifiers collects the prefixes seen before a declaration keyword
type modifiers struct {
	exported  bool
	isDefault bool
	declare   bool
}

// parseStatements parses statements until end of file or an unmatched "}".
// prevEnd is the offset where the trivia of the first statement begins; the
// returned offset is the end of the last statement.
func (p *Parser) parseStatements(prevEnd int) ([]ast.Statement, int) {
	var stmts []ast.Statement
	for !p.at(lexer.TokenEOF) && !p.at(lexer.TokenRBrace) {
		startTok := p.cur()
		startPos := p.pos
		p.stmtStart = startTok

		stmt := p.parseStatement()
		if p.pos == startPos {
			// guarantee progress on input no rule accepts
			tok := p.advance()
			p.addError(tok.Span.Start, "unexpected "+describe(tok), "statement")
			stmt = &ast.RawStatement{}
		}
		p.finish(stmt, prevEnd, startTok)
		stmts = append(stmts, stmt)
		prevEnd = p.lastEnd()
	}
	return stmts, prevEnd
}

func (p *Parser) parseStatement() ast.Statement {
	tok := p.cur()
	next := p.peekN(1)

	switch tok.Type {
	case lexer.TokenImport:
		if next.Type == lexer.TokenLParen || next.Type == lexer.TokenDot {
			return p.parseRaw()
		}
		return p.parseImport()
	case lexer.TokenExport:
		return p.parseExport()
	case lexer.TokenLBrace:
		return p.parseBlock("", false)
	case lexer.TokenSemicolon:
		p.advance()
		return &ast.RawStatement{}
	case lexer.TokenAt:
		p.skipDecorators()
		if p.at(lexer.TokenExport) {
			return p.parseExport()
		}
	}

	if stmt, ok := p.parseDeclaration(modifiers{}); ok {
		return stmt
	}
	return p.parseRaw()
}

func (p *Parser) parseRaw() ast.Statement {
	p.skipStatement()
	return &ast.RawStatement{}
}

// skipDecorators consumes "@expr" prefixes of a class declaration
func (p *Parser) skipDecorators() {
	for p.at(lexer.TokenAt) {
		p.advance()
		if isName(p.cur()) {
			p.advance()
		}
		for p.at(lexer.TokenDot) {
			p.advance()
			if isName(p.cur()) {
				p.advance()
			}
		}
		if p.at(lexer.TokenLParen) {
			p.skipBalanced()
		}
	}
}

// sameLine reports whether the token n positions ahead continues the
// current line, which contextual keywords require.
func (p *Parser) sameLine(n int) bool {
	return !p.peekN(n).NewlineBefore
}

// parseDeclaration parses a declaration at the current token. It returns
// false without consuming input when the token does not start one.
func (p *Parser) parseDeclaration(mods modifiers) (ast.Statement, bool) {
	tok := p.cur()
	next := p.peekN(1)

	switch tok.Type {
	case lexer.TokenConst:
		if next.Is("enum") {
			p.advance()
			return p.parseBodyDeclaration(ast.DeclEnum, mods), true
		}
		return p.parseVariable(mods), true
	case lexer.TokenLet:
		switch next.Type {
		case lexer.TokenIdentifier, lexer.TokenLBrace, lexer.TokenLBracket:
			return p.parseVariable(mods), true
		}
		return nil, false
	case lexer.TokenVar:
		return p.parseVariable(mods), true
	case lexer.TokenFunction:
		return p.parseFunction(mods), true
	case lexer.TokenClass:
		return p.parseClass(mods), true
	case lexer.TokenAt:
		p.skipDecorators()
		return p.parseDeclaration(mods)
	case lexer.TokenIdentifier:
	default:
		return nil, false
	}

	switch tok.Literal {
	case "async":
		if next.Type == lexer.TokenFunction && p.sameLine(1) {
			p.advance()
			return p.parseFunction(mods), true
		}
	case "abstract":
		if next.Type == lexer.TokenClass && p.sameLine(1) {
			p.advance()
			return p.parseClass(mods), true
		}
	case "declare":
		if p.sameLine(1) && next.Type != lexer.TokenAssign && next.Type != lexer.TokenLParen && next.Type != lexer.TokenDot {
			p.advance()
			mods.declare = true
			if stmt, ok := p.parseDeclaration(mods); ok {
				return stmt, true
			}
			p.addError(p.cur().Span.Start, "expected declaration after declare, got "+describe(p.cur()), "declare")
			return p.parseRaw(), true
		}
	case "type":
		if next.Type == lexer.TokenIdentifier && p.sameLine(1) {
			p.advance()
			name := p.advance().Literal
			p.skipStatement()
			return &ast.NamedDeclaration{
				Kind:     ast.DeclTypeAlias,
				Name:     name,
				Exported: mods.exported,
				Declare:  mods.declare,
			}, true
		}
	case "interface":
		if next.Type == lexer.TokenIdentifier && p.sameLine(1) {
			return p.parseBodyDeclaration(ast.DeclInterface, mods), true
		}
	case "enum":
		if next.Type == lexer.TokenIdentifier && p.sameLine(1) {
			return p.parseBodyDeclaration(ast.DeclEnum, mods), true
		}
	case "namespace", "module":
		if (next.Type == lexer.TokenIdentifier || next.Type == lexer.TokenString) && p.sameLine(1) {
			return p.parseNamespace(mods), true
		}
	case "global":
		if next.Type == lexer.TokenLBrace && mods.declare {
			p.advance()
			return p.parseBlock("global", mods.exported), true
		}
	}
	return nil, false
}

// ====== Imports ======

func (p *Parser) parseImport() ast.Statement {
	p.advance() // import
	decl := &ast.ImportDeclaration{}

	if p.atWord("type") && p.importTypeModifier() {
		p.advance()
		decl.TypeOnly = true
	}

	if p.at(lexer.TokenString) {
		decl.Source = p.parseModuleSpecifier()
		decl.Attributes = p.parseAttributes()
		p.consumeSemicolon()
		return decl
	}

	if p.at(lexer.TokenIdentifier) {
		name := p.advance().Literal
		if p.at(lexer.TokenAssign) {
			p.skipStatement()
			return &ast.NamedDeclaration{Kind: ast.DeclImportEquals, Name: name}
		}
		decl.Default = name
		if p.at(lexer.TokenComma) {
			p.advance()
		}
	}

	switch {
	case p.at(lexer.TokenStar):
		p.advance()
		p.expectWord("as", "namespace import")
		if tok, ok := p.expect(lexer.TokenIdentifier, "namespace import"); ok {
			decl.Namespace = tok.Literal
		}
	case p.at(lexer.TokenLBrace):
		decl.HasClause = true
		decl.Items = p.parseClause("import")
	}

	if !p.expectWord("from", "import") {
		p.skipStatement()
		return decl
	}
	decl.Source = p.parseModuleSpecifier()
	decl.Attributes = p.parseAttributes()
	p.consumeSemicolon()
	return decl
}

// importTypeModifier decides whether a leading "type" after import is the
// type-only modifier rather than a default binding named type.
func (p *Parser) importTypeModifier() bool {
	next := p.peekN(1)
	switch next.Type {
	case lexer.TokenLBrace, lexer.TokenStar:
		return true
	case lexer.TokenIdentifier:
		if next.Is("from") {
			// import type from from "m"
			return p.peekN(2).Is("from")
		}
		return true
	}
	return false
}

func (p *Parser) parseModuleSpecifier() ast.StringLiteral {
	tok, ok := p.expect(lexer.TokenString, "module specifier")
	if !ok {
		return ast.StringLiteral{}
	}
	value, err := lexer.Unquote(tok.Literal)
	if err != nil {
		p.addError(tok.Span.Start, err.Error(), "module specifier")
	}
	return ast.StringLiteral{Raw: tok.Literal, Value: value}
}

// parseAttributes returns the raw "with { ... }" or "assert { ... }" suffix
func (p *Parser) parseAttributes() string {
	if !(p.atWord("with") || p.atWord("assert")) || p.cur().NewlineBefore {
		return ""
	}
	start := p.cur().Start()
	p.advance()
	if p.at(lexer.TokenLBrace) {
		p.skipBalanced()
	} else {
		p.addError(p.cur().Span.Start, "expected { after import attributes keyword", "import attributes")
	}
	return p.src[start:p.lastEnd()]
}

// parseClause parses "{ a, b as c, type d }" for imports and exports
func (p *Parser) parseClause(context string) []*ast.ClauseItem {
	p.advance() // {
	var items []*ast.ClauseItem
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		startTok := p.cur()
		item := &ast.ClauseItem{}

		if p.atWord("type") && (isName(p.peekN(1)) || p.peekN(1).Type == lexer.TokenString) && !p.peekN(1).Is("as") {
			p.advance()
			item.IsType = true
		}

		source, ok := p.parseClauseName(context)
		if !ok {
			p.skipClause()
			return items
		}
		item.Name = source
		if p.atWord("as") {
			p.advance()
			alias, ok := p.parseClauseName(context)
			if !ok {
				p.skipClause()
				return items
			}
			item.Name = alias
			item.SourceName = source
		}
		item.Text = p.src[startTok.Start():p.lastEnd()]
		item.Span.Start = startTok.Span.Start
		item.Span.End = p.prev().Span.End
		items = append(items, item)

		if p.at(lexer.TokenComma) {
			p.advance()
			continue
		}
		if !p.at(lexer.TokenRBrace) {
			p.addError(p.cur().Span.Start, "expected , or } in "+context+" clause, got "+describe(p.cur()), context)
			p.skipClause()
			return items
		}
	}
	p.expect(lexer.TokenRBrace, context+" clause")
	return items
}

func (p *Parser) parseClauseName(context string) (string, bool) {
	tok := p.cur()
	switch {
	case isName(tok):
		p.advance()
		return tok.Literal, true
	case tok.Type == lexer.TokenString:
		p.advance()
		value, err := lexer.Unquote(tok.Literal)
		if err != nil {
			p.addError(tok.Span.Start, err.Error(), context)
		}
		return value, true
	}
	p.addError(tok.Span.Start, "expected name in "+context+" clause, got "+describe(tok), context)
	return "", false
}

// skipClause recovers from a malformed clause by skipping past its "}"
func (p *Parser) skipClause() {
	for !p.at(lexer.TokenEOF) {
		if p.advance().Type == lexer.TokenRBrace {
			return
		}
	}
}

// ====== Exports ======

func (p *Parser) parseExport() ast.Statement {
	p.advance() // export
	tok := p.cur()

	switch {
	case tok.Type == lexer.TokenDefault:
		p.advance()
		if stmt, ok := p.parseDefaultDeclaration(); ok {
			return stmt
		}
		p.skipStatement()
		return &ast.ExportDefaultDeclaration{}

	case tok.Type == lexer.TokenStar,
		tok.Is("type") && p.peekN(1).Type == lexer.TokenStar:
		if tok.Is("type") {
			p.advance()
		}
		return p.parseExportAll()

	case tok.Type == lexer.TokenLBrace,
		tok.Is("type") && p.peekN(1).Type == lexer.TokenLBrace:
		typeOnly := false
		if tok.Is("type") {
			p.advance()
			typeOnly = true
		}
		items := p.parseClause("export")
		if p.atWord("from") {
			p.advance()
			decl := &ast.ExportFromDeclaration{TypeOnly: typeOnly, Items: items}
			decl.Source = p.parseModuleSpecifier()
			decl.Attributes = p.parseAttributes()
			p.consumeSemicolon()
			return decl
		}
		p.consumeSemicolon()
		return &ast.ExportClauseDeclaration{TypeOnly: typeOnly, Items: items}

	case tok.Type == lexer.TokenAssign, tok.Is("as"):
		// export = x; export as namespace X;
		return p.parseRaw()

	case tok.Type == lexer.TokenImport:
		p.advance()
		name := ""
		if p.at(lexer.TokenIdentifier) {
			name = p.cur().Literal
		}
		p.skipStatement()
		return &ast.NamedDeclaration{Kind: ast.DeclImportEquals, Name: name, Exported: true}
	}

	if stmt, ok := p.parseDeclaration(modifiers{exported: true}); ok {
		return stmt
	}
	p.addError(tok.Span.Start, "expected declaration after export, got "+describe(tok), "export")
	return p.parseRaw()
}

func (p *Parser) parseExportAll() ast.Statement {
	p.advance() // *
	decl := &ast.ExportAllDeclaration{}
	if p.atWord("as") {
		p.advance()
		if alias, ok := p.parseClauseName("export"); ok {
			decl.Alias = alias
		}
	}
	if !p.expectWord("from", "export *") {
		p.skipStatement()
		return decl
	}
	decl.Source = p.parseModuleSpecifier()
	p.parseAttributes()
	p.consumeSemicolon()
	return decl
}

// parseDefaultDeclaration handles "export default function/class/interface"
func (p *Parser) parseDefaultDeclaration() (ast.Statement, bool) {
	tok := p.cur()
	next := p.peekN(1)
	mods := modifiers{exported: true, isDefault: true}
	switch {
	case tok.Type == lexer.TokenFunction, tok.Type == lexer.TokenClass,
		tok.Type == lexer.TokenAt,
		tok.Is("async") && next.Type == lexer.TokenFunction && p.sameLine(1),
		tok.Is("abstract") && next.Type == lexer.TokenClass,
		tok.Is("interface") && next.Type == lexer.TokenIdentifier:
		return p.parseDeclaration(mods)
	}
	return nil, false
}

// ====== Declarations ======

func (p *Parser) parseVariable(mods modifiers) ast.Statement {
	kindTok := p.advance()
	decl := &ast.VariableDeclaration{
		Exported: mods.exported,
		Declare:  mods.declare,
	}
	switch kindTok.Type {
	case lexer.TokenConst:
		decl.Kind = ast.VarConst
	case lexer.TokenLet:
		decl.Kind = ast.VarLet
	default:
		decl.Kind = ast.VarVar
	}

	for {
		d := &ast.Declarator{}
		switch p.cur().Type {
		case lexer.TokenIdentifier:
			d.Name = p.advance().Literal
			d.Names = []string{d.Name}
		case lexer.TokenLBrace, lexer.TokenLBracket:
			d.Pattern = true
			d.Names = p.parsePatternNames()
		default:
			p.addError(p.cur().Span.Start, "expected binding name, got "+describe(p.cur()), kindTok.Literal)
			p.skipStatement()
			return decl
		}

		if p.cur().Type == lexer.TokenOperator && p.cur().Literal == "!" {
			p.advance()
		}
		if p.at(lexer.TokenColon) {
			p.advance()
			p.skipExpression(true)
		}
		if p.at(lexer.TokenAssign) {
			p.advance()
			d.Init = p.parseInitializer()
		}
		decl.Declarators = append(decl.Declarators, d)

		if !p.at(lexer.TokenComma) {
			break
		}
		p.advance()
	}
	p.consumeSemicolon()
	return decl
}

// parsePatternNames consumes a destructuring pattern and returns the
// identifiers it may bind. Property keys followed by ":" are excluded;
// identifiers in default values are included.
func (p *Parser) parsePatternNames() []string {
	startPos := p.pos
	p.skipBalanced()
	var names []string
	for i := startPos; i < p.pos; i++ {
		tok := p.tokens[i]
		if tok.Type != lexer.TokenIdentifier {
			continue
		}
		if i+1 < len(p.tokens) && p.tokens[i+1].Type == lexer.TokenColon {
			continue
		}
		names = append(names, tok.Literal)
	}
	return names
}

// parseInitializer returns a Literal when the initializer is exactly one
// literal token and a RawExpression otherwise.
func (p *Parser) parseInitializer() ast.Expression {
	startPos := p.pos
	startTok := p.cur()
	p.skipExpression(false)
	if p.pos == startPos {
		p.addError(startTok.Span.Start, "expected initializer, got "+describe(startTok), "initializer")
		return &ast.RawExpression{Span: startTok.Span}
	}
	// a comma not followed by a binding belongs to an expression this
	// parser does not model; keep it in the opaque initializer
	for p.at(lexer.TokenComma) && !startsBinding(p.peekN(1)) {
		p.advance()
		p.skipExpression(false)
	}

	endTok := p.prev()
	if p.pos == startPos+1 {
		if kind, ok := literalKind(startTok); ok {
			return &ast.Literal{Span: startTok.Span, Kind: kind, Raw: startTok.Literal}
		}
	}
	expr := &ast.RawExpression{Text: p.src[startTok.Start():endTok.End()]}
	expr.Span.Start = startTok.Span.Start
	expr.Span.End = endTok.Span.End
	return expr
}

func startsBinding(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenIdentifier, lexer.TokenLBrace, lexer.TokenLBracket:
		return true
	}
	return false
}

func literalKind(tok lexer.Token) (ast.LiteralKind, bool) {
	switch tok.Type {
	case lexer.TokenString:
		return ast.LiteralString, true
	case lexer.TokenNumber:
		return ast.LiteralNumber, true
	case lexer.TokenTrue, lexer.TokenFalse:
		return ast.LiteralBoolean, true
	case lexer.TokenNull:
		return ast.LiteralNull, true
	case lexer.TokenIdentifier:
		if tok.Literal == "undefined" {
			return ast.LiteralUndefined, true
		}
	}
	return 0, false
}

func (p *Parser) parseFunction(mods modifiers) ast.Statement {
	p.advance() // function
	if p.at(lexer.TokenStar) {
		p.advance()
	}
	decl := &ast.NamedDeclaration{
		Kind:     ast.DeclFunction,
		Exported: mods.exported,
		Default:  mods.isDefault,
		Declare:  mods.declare,
	}
	if p.at(lexer.TokenIdentifier) {
		decl.Name = p.advance().Literal
	} else if !mods.isDefault {
		p.addError(p.cur().Span.Start, "expected function name, got "+describe(p.cur()), "function")
	}
	if p.skipUntilBody() {
		p.skipBalanced()
	} else {
		p.consumeSemicolon()
	}
	return decl
}

func (p *Parser) parseClass(mods modifiers) ast.Statement {
	p.advance() // class
	decl := &ast.NamedDeclaration{
		Kind:     ast.DeclClass,
		Exported: mods.exported,
		Default:  mods.isDefault,
		Declare:  mods.declare,
	}
	if p.at(lexer.TokenIdentifier) && !p.atWord("extends") && !p.atWord("implements") {
		decl.Name = p.advance().Literal
	}
	if p.skipUntilBody() {
		p.skipBalanced()
	} else {
		p.addError(p.cur().Span.Start, "expected class body, got "+describe(p.cur()), "class")
	}
	return decl
}

// parseBodyDeclaration handles interfaces and enums: a keyword, a name and
// a braced body.
func (p *Parser) parseBodyDeclaration(kind ast.DeclKind, mods modifiers) ast.Statement {
	keyword := p.advance()
	decl := &ast.NamedDeclaration{
		Kind:     kind,
		Exported: mods.exported,
		Default:  mods.isDefault,
		Declare:  mods.declare,
	}
	if tok, ok := p.expect(lexer.TokenIdentifier, keyword.Literal); ok {
		decl.Name = tok.Literal
	}
	if p.skipUntilBody() {
		p.skipBalanced()
	} else {
		p.addError(p.cur().Span.Start, "expected "+keyword.Literal+" body, got "+describe(p.cur()), keyword.Literal)
	}
	return decl
}

// parseNamespace handles "namespace A.B { }" and "module 'name' { }".
// Bodiless ambient module declarations are kept raw.
func (p *Parser) parseNamespace(mods modifiers) ast.Statement {
	p.advance() // namespace / module
	name := ""
	if p.at(lexer.TokenString) {
		// ambient module names keep their quotes
		name = p.advance().Literal
	} else {
		for p.at(lexer.TokenIdentifier) {
			name += p.advance().Literal
			if !p.at(lexer.TokenDot) {
				break
			}
			p.advance()
			name += "."
		}
	}
	if !p.at(lexer.TokenLBrace) {
		p.consumeSemicolon()
		return &ast.RawStatement{}
	}
	return p.parseBlock(name, mods.exported)
}

// parseBlock parses a braced body at the current "{". The header runs from
// the start of the enclosing statement through the brace.
func (p *Parser) parseBlock(name string, exported bool) ast.Statement {
	start := p.stmtStart
	lbrace := p.advance()
	block := &ast.BlockStatement{
		Name:     name,
		Exported: exported,
		Header:   p.src[start.Start():lbrace.End()],
	}
	stmts, end := p.parseStatements(lbrace.End())
	block.Statements = stmts
	p.stmtStart = start

	if rbrace, ok := p.expect(lexer.TokenRBrace, "block"); ok {
		block.Footer = p.src[end:rbrace.End()]
	} else {
		block.Footer = p.src[end:p.lastEnd()]
	}
	return block
}
