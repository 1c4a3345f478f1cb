// Package lexer implements the ECMAScript/TypeScript lexical analyzer used
// by the module parser. It produces every token the statement parser needs
// to find module syntax and statement boundaries; comments and whitespace
// are trivia recorded only through the NewlineBefore flag.
package lexer

import (
	"fmt"
	"path"
	"unicode"
	"unicode/utf8"

	"github.com/constprop/constprop/internal/position"
)

// TokenType represents the type of a token
type TokenType int

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

const (
	TokenEOF TokenType = iota
	TokenError

	// literals
	TokenIdentifier
	TokenPrivateName
	TokenString
	TokenNumber
	TokenTemplate
	TokenRegex
	TokenJSX // a whole JSX element or fragment

	// keywords
	TokenImport
	TokenExport
	TokenConst
	TokenLet
	TokenVar
	TokenFunction
	TokenClass
	TokenDefault
	TokenTrue
	TokenFalse
	TokenNull

	// punctuation
	TokenLBrace
	TokenRBrace
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenComma
	TokenDot
	TokenEllipsis
	TokenColon
	TokenQuestion
	TokenOptionalChain
	TokenAssign
	TokenArrow
	TokenStar
	TokenAt
	TokenLt
	TokenGt
	TokenOperator
)

// Token represents a lexical token with position information
type Token struct {
	Type    TokenType
	Literal string // raw source text of the token
	Span    position.Span

	// NewlineBefore reports a line terminator between the previous token and
	// this one. The parser uses it for automatic semicolon insertion.
	NewlineBefore bool
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, Line: %d, Column: %d}",
		t.Type, t.Literal, t.Span.Start.Line, t.Span.Start.Column)
}

// Start returns the byte offset of the first character of the token
func (t Token) Start() int { return t.Span.Start.Offset }

// End returns the byte offset just past the token
func (t Token) End() int { return t.Span.End.Offset }

// Is reports whether the token is an identifier spelled word. Contextual
// keywords such as "from", "as" and "type" are identifiers.
func (t Token) Is(word string) bool {
	return t.Type == TokenIdentifier && t.Literal == word
}

var tokenNames = map[TokenType]string{
	TokenEOF:           "EOF",
	TokenError:         "ERROR",
	TokenIdentifier:    "IDENTIFIER",
	TokenPrivateName:   "PRIVATE_NAME",
	TokenString:        "STRING",
	TokenNumber:        "NUMBER",
	TokenTemplate:      "TEMPLATE",
	TokenRegex:         "REGEX",
	TokenJSX:           "JSX",
	TokenImport:        "IMPORT",
	TokenExport:        "EXPORT",
	TokenConst:         "CONST",
	TokenLet:           "LET",
	TokenVar:           "VAR",
	TokenFunction:      "FUNCTION",
	TokenClass:         "CLASS",
	TokenDefault:       "DEFAULT",
	TokenTrue:          "TRUE",
	TokenFalse:         "FALSE",
	TokenNull:          "NULL",
	TokenLBrace:        "LBRACE",
	TokenRBrace:        "RBRACE",
	TokenLParen:        "LPAREN",
	TokenRParen:        "RPAREN",
	TokenLBracket:      "LBRACKET",
	TokenRBracket:      "RBRACKET",
	TokenSemicolon:     "SEMICOLON",
	TokenComma:         "COMMA",
	TokenDot:           "DOT",
	TokenEllipsis:      "ELLIPSIS",
	TokenColon:         "COLON",
	TokenQuestion:      "QUESTION",
	TokenOptionalChain: "OPTIONAL_CHAIN",
	TokenAssign:        "ASSIGN",
	TokenArrow:         "ARROW",
	TokenStar:          "STAR",
	TokenAt:            "AT",
	TokenLt:            "LT",
	TokenGt:            "GT",
	TokenOperator:      "OPERATOR",
}

// keywords maps the reserved words the parser dispatches on to their token types
var keywords = map[string]TokenType{
	"import":   TokenImport,
	"export":   TokenExport,
	"const":    TokenConst,
	"let":      TokenLet,
	"var":      TokenVar,
	"function": TokenFunction,
	"class":    TokenClass,
	"default":  TokenDefault,
	"true":     TokenTrue,
	"false":    TokenFalse,
	"null":     TokenNull,
}

// reservedWords cannot be used as binding identifiers.
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true, "if": true,
	"import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true, "let": true, "static": true,
	"implements": true, "interface": true, "package": true, "private": true,
	"protected": true, "public": true, "await": true, "arguments": true,
	"eval": true, "undefined": true,
}

// regexAfterWord lists identifier-like tokens after which a slash starts a
// regular expression rather than a division.
var regexAfterWord = map[string]bool{
	"return": true, "typeof": true, "case": true, "do": true, "else": true,
	"in": true, "instanceof": true, "new": true, "delete": true, "void": true,
	"throw": true, "yield": true, "await": true, "of": true,
}

// IsReservedWord reports whether name may not be declared as a binding.
func IsReservedWord(name string) bool {
	return reservedWords[name]
}

// IsIdentifierName reports whether s is a syntactically valid identifier.
func IsIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '$' || r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && (unicode.IsDigit(r) || r == '\u200c' || r == '\u200d' || unicode.Is(unicode.Mn, r)) {
			continue
		}
		return false
	}
	return true
}

// Lexer represents the lexical analyzer
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // line of the current char
	column       int  // column of the current char

	filename string
	jsx      bool  // "<" in expression position opens a JSX element
	prev     Token // last significant token, for regex disambiguation
	errors   []error
}

// IsJSXFile reports whether filename is lexed with JSX syntax enabled.
func IsJSXFile(filename string) bool {
	switch path.Ext(filename) {
	case ".tsx", ".jsx":
		return true
	}
	return false
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "")
}

// NewWithFilename creates a new lexer instance with filename for error reporting
func NewWithFilename(input, filename string) *Lexer {
	l := &Lexer{
		input:    input,
		line:     1,
		column:   0,
		filename: filename,
		jsx:      IsJSXFile(filename),
		prev:     Token{Type: TokenEOF},
	}
	l.readChar()
	l.skipHashbang()
	return l
}

// Errors returns the lexical errors accumulated so far
func (l *Lexer) Errors() []error {
	return l.errors
}

// Input returns the source text being scanned
func (l *Lexer) Input() string {
	return l.input
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		if l.position < len(l.input) {
			l.column++
		}
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		return
	}
	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) peekAt(n int) byte {
	if l.position+n >= len(l.input) {
		return 0
	}
	return l.input[l.position+n]
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) currentPosition() position.Position {
	return position.Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   l.column,
		Offset:   l.position,
	}
}

func (l *Lexer) skipHashbang() {
	if l.ch == '#' && l.peekChar() == '!' {
		for !l.atEOF() && l.ch != '\n' {
			l.readChar()
		}
	}
}

// skipTrivia skips whitespace and comments, reporting whether a line
// terminator was crossed.
func (l *Lexer) skipTrivia() bool {
	newline := false
	for !l.atEOF() {
		switch {
		case l.ch == '\n':
			newline = true
			l.readChar()
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\v' || l.ch == '\f':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			start := l.currentPosition()
			l.readChar()
			l.readChar()
			closed := false
			for !l.atEOF() {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					closed = true
					break
				}
				if l.ch == '\n' {
					newline = true
				}
				l.readChar()
			}
			if !closed {
				l.addError(start, "unterminated block comment")
			}
		case l.ch >= 0x80:
			r, size := utf8.DecodeRuneInString(l.input[l.position:])
			if r != '\u2028' && r != '\u2029' && r != '\ufeff' && !unicode.IsSpace(r) {
				return newline
			}
			if r == '\u2028' || r == '\u2029' {
				newline = true
			}
			for i := 0; i < size; i++ {
				l.readChar()
			}
		default:
			return newline
		}
	}
	return newline
}

func (l *Lexer) addError(pos position.Position, msg string) {
	l.errors = append(l.errors, &Error{Position: pos, Message: msg})
}

// Error is a lexical error
type Error struct {
	Position position.Position
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Position, e.Message)
}

// NextToken scans the input and returns the next token with full position information
func (l *Lexer) NextToken() Token {
	newline := l.skipTrivia()
	start := l.currentPosition()

	var typ TokenType

	switch {
	case l.atEOF():
		typ = TokenEOF
	case l.ch == '"' || l.ch == '\'':
		typ = l.readString()
	case l.ch == '`':
		typ = l.readTemplate()
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		typ = l.readNumber()
	case isIdentStart(l.ch) || l.ch == '\\':
		l.readIdentifier()
		typ = TokenIdentifier
		if kw, ok := keywords[l.input[start.Offset:l.position]]; ok {
			typ = kw
		}
	case l.ch >= 0x80:
		r, _ := utf8.DecodeRuneInString(l.input[l.position:])
		if unicode.IsLetter(r) {
			l.readIdentifier()
			typ = TokenIdentifier
		} else {
			l.readRune()
			typ = TokenError
			l.addError(start, fmt.Sprintf("unexpected character %q", r))
		}
	case l.ch == '#' && (isIdentStart(l.peekChar()) || l.peekChar() >= 0x80):
		l.readChar()
		l.readIdentifier()
		typ = TokenPrivateName
	case l.ch == '/' && l.regexAllowed():
		typ = l.readRegex()
	case l.ch == '<' && l.jsx && l.regexAllowed() && !l.typeParamsAhead():
		saved := l.save()
		if l.readJSXElement() {
			typ = TokenJSX
		} else {
			l.restore(saved)
			typ = l.readPunctuator()
		}
	default:
		typ = l.readPunctuator()
	}

	tok := Token{
		Type:          typ,
		Literal:       l.input[start.Offset:l.position],
		Span:          position.Span{Start: start, End: l.currentPosition()},
		NewlineBefore: newline,
	}
	l.prev = tok
	return tok
}

// regexAllowed decides whether a slash begins a regular expression by
// looking at the previous significant token.
func (l *Lexer) regexAllowed() bool {
	switch l.prev.Type {
	case TokenIdentifier:
		return regexAfterWord[l.prev.Literal]
	case TokenPrivateName, TokenString, TokenNumber, TokenTemplate, TokenRegex, TokenJSX,
		TokenTrue, TokenFalse, TokenNull, TokenRParen, TokenRBracket, TokenRBrace:
		return false
	case TokenOperator:
		return l.prev.Literal != "++" && l.prev.Literal != "--"
	default:
		return true
	}
}

func (l *Lexer) readRune() {
	_, size := utf8.DecodeRuneInString(l.input[l.position:])
	for i := 0; i < size; i++ {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() {
	for !l.atEOF() {
		switch {
		case isIdentPart(l.ch):
			l.readChar()
		case l.ch == '\\' && l.peekChar() == 'u':
			l.readChar()
			l.readChar()
			if l.ch == '{' {
				for !l.atEOF() && l.ch != '}' {
					l.readChar()
				}
				l.readChar()
			} else {
				for i := 0; i < 4 && isHexDigit(l.ch); i++ {
					l.readChar()
				}
			}
		case l.ch >= 0x80:
			r, _ := utf8.DecodeRuneInString(l.input[l.position:])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r) &&
				!unicode.Is(unicode.Mc, r) && r != '\u200c' && r != '\u200d' {
				return
			}
			l.readRune()
		default:
			return
		}
	}
}

func (l *Lexer) readNumber() TokenType {
	start := l.currentPosition()
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X' ||
		l.peekChar() == 'o' || l.peekChar() == 'O' || l.peekChar() == 'b' || l.peekChar() == 'B') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	} else {
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		if l.ch == '.' {
			l.readChar()
			for isDigit(l.ch) || l.ch == '_' {
				l.readChar()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			next := l.peekChar()
			if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(2))) {
				l.readChar()
				if l.ch == '+' || l.ch == '-' {
					l.readChar()
				}
				for isDigit(l.ch) || l.ch == '_' {
					l.readChar()
				}
			}
		}
	}
	if l.ch == 'n' {
		l.readChar()
	}
	if isIdentStart(l.ch) {
		for isIdentPart(l.ch) {
			l.readChar()
		}
		l.addError(start, fmt.Sprintf("malformed number %q", l.input[start.Offset:l.position]))
		return TokenError
	}
	return TokenNumber
}

func (l *Lexer) readString() TokenType {
	start := l.currentPosition()
	quote := l.ch
	l.readChar()
	for {
		switch {
		case l.atEOF(), l.ch == '\n':
			l.addError(start, "unterminated string literal")
			return TokenError
		case l.ch == '\\':
			l.readChar()
			if l.ch == '\r' && l.peekChar() == '\n' {
				l.readChar()
			}
			l.readChar()
		case l.ch == quote:
			l.readChar()
			return TokenString
		default:
			l.readChar()
		}
	}
}

// readTemplate consumes a whole template literal, substitutions included.
func (l *Lexer) readTemplate() TokenType {
	start := l.currentPosition()
	l.readChar()
	for {
		switch {
		case l.atEOF():
			l.addError(start, "unterminated template literal")
			return TokenError
		case l.ch == '\\':
			l.readChar()
			l.readChar()
		case l.ch == '`':
			l.readChar()
			return TokenTemplate
		case l.ch == '$' && l.peekChar() == '{':
			l.readChar()
			l.readChar()
			if !l.skipSubstitution() {
				l.addError(start, "unterminated template substitution")
				return TokenError
			}
		default:
			l.readChar()
		}
	}
}

// skipSubstitution consumes tokens up to the brace closing a ${ substitution.
func (l *Lexer) skipSubstitution() bool {
	saved := l.prev
	defer func() { l.prev = saved }()
	l.prev = Token{Type: TokenLBrace}

	depth := 1
	for {
		l.skipTrivia()
		if l.atEOF() {
			return false
		}
		if l.ch == '}' && depth == 1 {
			l.readChar()
			return true
		}
		tok := l.NextToken()
		switch tok.Type {
		case TokenLBrace:
			depth++
		case TokenRBrace:
			depth--
		case TokenEOF:
			return false
		}
	}
}

func (l *Lexer) readRegex() TokenType {
	start := l.currentPosition()
	l.readChar()
	inClass := false
	for {
		switch {
		case l.atEOF(), l.ch == '\n':
			l.addError(start, "unterminated regular expression")
			return TokenError
		case l.ch == '\\':
			l.readChar()
			l.readChar()
		case l.ch == '[':
			inClass = true
			l.readChar()
		case l.ch == ']':
			inClass = false
			l.readChar()
		case l.ch == '/' && !inClass:
			l.readChar()
			for isIdentPart(l.ch) {
				l.readChar()
			}
			return TokenRegex
		default:
			l.readChar()
		}
	}
}

// punctuators lists multi-character operators, longest first.
var punctuators = []string{
	">>>=", "...", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--", "+=", "-=",
	"*=", "/=", "%=", "&=", "|=", "^=", "<<", "**",
}

func (l *Lexer) readPunctuator() TokenType {
	rest := l.input[l.position:]
	for _, p := range punctuators {
		if len(rest) >= len(p) && rest[:len(p)] == p {
			// "?." followed by a digit is a conditional, not optional chaining
			if p == "?." && len(rest) > 2 && isDigit(rest[2]) {
				continue
			}
			for i := 0; i < len(p); i++ {
				l.readChar()
			}
			switch p {
			case "...":
				return TokenEllipsis
			case "=>":
				return TokenArrow
			case "?.":
				return TokenOptionalChain
			default:
				return TokenOperator
			}
		}
	}

	start := l.currentPosition()
	ch := l.ch
	l.readChar()
	switch ch {
	case '{':
		return TokenLBrace
	case '}':
		return TokenRBrace
	case '(':
		return TokenLParen
	case ')':
		return TokenRParen
	case '[':
		return TokenLBracket
	case ']':
		return TokenRBracket
	case ';':
		return TokenSemicolon
	case ',':
		return TokenComma
	case '.':
		return TokenDot
	case ':':
		return TokenColon
	case '?':
		return TokenQuestion
	case '=':
		return TokenAssign
	case '*':
		return TokenStar
	case '@':
		return TokenAt
	case '<':
		return TokenLt
	case '>':
		return TokenGt
	case '+', '-', '/', '%', '&', '|', '^', '!', '~':
		return TokenOperator
	default:
		l.addError(start, fmt.Sprintf("unexpected character %q", ch))
		return TokenError
	}
}

// Tokenize scans the whole input. The final token is always TokenEOF.
func Tokenize(input, filename string) ([]Token, []error) {
	l := NewWithFilename(input, filename)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	return toks, l.Errors()
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_' || ch == '$'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
