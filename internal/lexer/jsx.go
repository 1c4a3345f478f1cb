package lexer

import "strings"

// lexState is a scanning checkpoint for speculative reads.
type lexState struct {
	position     int
	readPosition int
	ch           byte
	line         int
	column       int
	prev         Token
	nerrors      int
}

func (l *Lexer) save() lexState {
	return lexState{
		position:     l.position,
		readPosition: l.readPosition,
		ch:           l.ch,
		line:         l.line,
		column:       l.column,
		prev:         l.prev,
		nerrors:      len(l.errors),
	}
}

func (l *Lexer) restore(s lexState) {
	l.position = s.position
	l.readPosition = s.readPosition
	l.ch = s.ch
	l.line = s.line
	l.column = s.column
	l.prev = s.prev
	l.errors = l.errors[:s.nerrors]
}

// typeParamsAhead reports whether the "<" under the cursor opens the type
// parameters of a generic arrow function ("<T,>" or "<T extends U>")
// rather than a JSX element.
func (l *Lexer) typeParamsAhead() bool {
	in := l.input
	i := skipSpaces(in, l.position+1)
	if i >= len(in) || !isIdentStart(in[i]) {
		return false
	}
	j := i
	for j < len(in) && isIdentPart(in[j]) {
		j++
	}
	k := skipSpaces(in, j)
	if k >= len(in) {
		return false
	}
	switch in[k] {
	case ',', '=':
		return true
	}
	if !strings.HasPrefix(in[k:], "extends") || (k+7 < len(in) && isIdentPart(in[k+7])) {
		return false
	}
	m := skipSpaces(in, k+7)
	if m >= len(in) {
		return false
	}
	switch in[m] {
	case '=', '>', '/':
		return false
	}
	return true
}

func skipSpaces(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

// readJSXElement consumes one element or fragment, nested children and
// expression containers included. It returns false when the input does
// not form a closed element; the caller rewinds.
func (l *Lexer) readJSXElement() bool {
	l.readChar() // <
	l.skipTrivia()
	name := ""
	if l.ch == '>' {
		l.readChar()
	} else {
		var ok bool
		if name, ok = l.readJSXName(); !ok {
			return false
		}
		selfClosing, ok := l.readJSXAttributes()
		if !ok {
			return false
		}
		if selfClosing {
			return true
		}
	}
	return l.readJSXChildren(name)
}

// readJSXName reads a tag or attribute name such as "div", "my-el",
// "svg:rect" or "Foo.Bar".
func (l *Lexer) readJSXName() (string, bool) {
	start := l.position
	if !isIdentStart(l.ch) && l.ch < 0x80 {
		return "", false
	}
	for !l.atEOF() {
		switch {
		case isIdentPart(l.ch), l.ch == '-', l.ch == ':', l.ch == '.':
			l.readChar()
		case l.ch >= 0x80:
			l.readRune()
		default:
			return l.input[start:l.position], true
		}
	}
	return l.input[start:l.position], true
}

// readJSXAttributes consumes attributes through the ">" or "/>" closing
// the opening tag.
func (l *Lexer) readJSXAttributes() (selfClosing, ok bool) {
	for {
		l.skipTrivia()
		switch {
		case l.atEOF():
			return false, false
		case l.ch == '/' && l.peekChar() == '>':
			l.readChar()
			l.readChar()
			return true, true
		case l.ch == '>':
			l.readChar()
			return false, true
		case l.ch == '{':
			// spread attribute
			l.readChar()
			if !l.skipSubstitution() {
				return false, false
			}
		case isIdentStart(l.ch):
			l.readJSXName()
			l.skipTrivia()
			if l.ch != '=' {
				continue
			}
			l.readChar()
			l.skipTrivia()
			if !l.readJSXAttributeValue() {
				return false, false
			}
		default:
			return false, false
		}
	}
}

func (l *Lexer) readJSXAttributeValue() bool {
	switch l.ch {
	case '"', '\'':
		// attribute strings have no escapes and may span lines
		quote := l.ch
		l.readChar()
		for !l.atEOF() && l.ch != quote {
			l.readChar()
		}
		if l.atEOF() {
			return false
		}
		l.readChar()
		return true
	case '{':
		l.readChar()
		return l.skipSubstitution()
	case '<':
		return l.readJSXElement()
	}
	return false
}

// readJSXChildren consumes raw text, expression containers and nested
// elements up to the closing tag matching name.
func (l *Lexer) readJSXChildren(name string) bool {
	for {
		switch {
		case l.atEOF():
			return false
		case l.ch == '{':
			l.readChar()
			if !l.skipSubstitution() {
				return false
			}
		case l.ch == '<' && l.peekChar() == '/':
			l.readChar()
			l.readChar()
			l.skipTrivia()
			closing := ""
			if l.ch != '>' {
				var ok bool
				if closing, ok = l.readJSXName(); !ok {
					return false
				}
				l.skipTrivia()
			}
			if l.ch != '>' || closing != name {
				return false
			}
			l.readChar()
			return true
		case l.ch == '<':
			if !l.readJSXElement() {
				return false
			}
		default:
			l.readChar()
		}
	}
}
