package lexer

import "testing"

func TestBasicTokens(t *testing.T) {
	input := `import { x as y } from "./file1";
export const z: string = 'v';`

	tests := []struct {
		expectedType  TokenType
		expectedValue string
	}{
		{TokenImport, "import"},
		{TokenLBrace, "{"},
		{TokenIdentifier, "x"},
		{TokenIdentifier, "as"},
		{TokenIdentifier, "y"},
		{TokenRBrace, "}"},
		{TokenIdentifier, "from"},
		{TokenString, `"./file1"`},
		{TokenSemicolon, ";"},
		{TokenExport, "export"},
		{TokenConst, "const"},
		{TokenIdentifier, "z"},
		{TokenColon, ":"},
		{TokenIdentifier, "string"},
		{TokenAssign, "="},
		{TokenString, "'v'"},
		{TokenSemicolon, ";"},
		{TokenEOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedValue {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedValue, tok.Literal)
		}
	}
}

func TestNewlineBefore(t *testing.T) {
	toks, errs := Tokenize("let a = 1 // trailing\n/* block\n */ a", "m.ts")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	// let a = 1 a EOF
	if len(toks) != 6 {
		t.Fatalf("expected 6 tokens, got %d: %v", len(toks), toks)
	}
	if toks[3].NewlineBefore {
		t.Error("literal 1 should not follow a newline")
	}
	if !toks[4].NewlineBefore {
		t.Error("second a should follow a newline")
	}
	if toks[4].Span.Start.Line != 3 {
		t.Errorf("expected line 3, got %d", toks[4].Span.Start.Line)
	}
}

func TestTemplateAndRegex(t *testing.T) {
	tests := []struct {
		input    string
		types    []TokenType
		literals []string
	}{
		{
			input:    "`a ${ {b: `c${d}`}.b } e` / 2",
			types:    []TokenType{TokenTemplate, TokenOperator, TokenNumber, TokenEOF},
			literals: []string{"`a ${ {b: `c${d}`}.b } e`", "/", "2", ""},
		},
		{
			input:    "x = /[/}]+/g.test(y)",
			types:    []TokenType{TokenIdentifier, TokenAssign, TokenRegex, TokenDot, TokenIdentifier, TokenLParen, TokenIdentifier, TokenRParen, TokenEOF},
			literals: []string{"x", "=", "/[/}]+/g", ".", "test", "(", "y", ")", ""},
		},
		{
			input:    "a / b / c",
			types:    []TokenType{TokenIdentifier, TokenOperator, TokenIdentifier, TokenOperator, TokenIdentifier, TokenEOF},
			literals: []string{"a", "/", "b", "/", "c", ""},
		},
		{
			input:    "return /re/",
			types:    []TokenType{TokenIdentifier, TokenRegex, TokenEOF},
			literals: []string{"return", "/re/", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, errs := Tokenize(tt.input, "")
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if len(toks) != len(tt.types) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.types), len(toks), toks)
			}
			for i := range toks {
				if toks[i].Type != tt.types[i] || toks[i].Literal != tt.literals[i] {
					t.Errorf("token %d: expected %s %q, got %s %q",
						i, tt.types[i], tt.literals[i], toks[i].Type, toks[i].Literal)
				}
			}
		})
	}
}

func TestNumbers(t *testing.T) {
	for _, input := range []string{"0", "1.5", ".5", "1e10", "1E-3", "0xFF", "0b1010", "0o17", "1_000", "10n"} {
		toks, errs := Tokenize(input, "")
		if len(errs) != 0 {
			t.Fatalf("%s: unexpected errors: %v", input, errs)
		}
		if toks[0].Type != TokenNumber || toks[0].Literal != input {
			t.Errorf("%s: got %s %q", input, toks[0].Type, toks[0].Literal)
		}
	}

	_, errs := Tokenize("12abc", "")
	if len(errs) == 0 {
		t.Error("expected malformed number error")
	}
}

func TestUnterminated(t *testing.T) {
	for _, input := range []string{`"abc`, "`abc", "/* abc", "'a\nb'"} {
		_, errs := Tokenize(input, "x.ts")
		if len(errs) == 0 {
			t.Errorf("%q: expected an error", input)
		}
	}
}

func TestPrivateNameAndHashbang(t *testing.T) {
	toks, errs := Tokenize("#!/usr/bin/env node\nthis.#count", "")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Literal != "this" || !toks[0].NewlineBefore {
		t.Fatalf("hashbang not skipped: %v", toks[0])
	}
	if toks[2].Type != TokenPrivateName || toks[2].Literal != "#count" {
		t.Fatalf("expected private name, got %v", toks[2])
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"./file1"`, "./file1"},
		{`'a\'b'`, "a'b"},
		{`"tab\there"`, "tab\there"},
		{`"\x41B\u{43}"`, "ABC"},
		{`"😀"`, "\U0001F600"},
	}
	for _, tt := range tests {
		got, err := Unquote(tt.raw)
		if err != nil {
			t.Fatalf("%s: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.raw, tt.want, got)
		}
	}

	if _, err := Unquote("abc"); err == nil {
		t.Error("expected error for unquoted input")
	}
}

func TestIdentifierHelpers(t *testing.T) {
	if !IsIdentifierName("$value_1") || IsIdentifierName("1abc") || IsIdentifierName("a-b") {
		t.Error("IsIdentifierName misclassified input")
	}
	if !IsReservedWord("default") || IsReservedWord("from") {
		t.Error("IsReservedWord misclassified input")
	}
}

func TestJSX(t *testing.T) {
	tests := []struct {
		filename string
		input    string
		types    []TokenType
		literals []string
	}{
		{
			filename: "c.tsx",
			input:    "return <h1 className=\"t\">{title}</h1>;",
			types:    []TokenType{TokenIdentifier, TokenJSX, TokenSemicolon, TokenEOF},
			literals: []string{"return", "<h1 className=\"t\">{title}</h1>", ";", ""},
		},
		{
			filename: "c.jsx",
			input:    "x = () => <p>don't {1} a/b</p>",
			types:    []TokenType{TokenIdentifier, TokenAssign, TokenLParen, TokenRParen, TokenArrow, TokenJSX, TokenEOF},
			literals: []string{"x", "=", "(", ")", "=>", "<p>don't {1} a/b</p>", ""},
		},
		{
			filename: "c.tsx",
			input:    "f(<>\n  <Item label='a > b' {...rest} />\n  {xs.map(x => <li key={x}>{x}</li>)}\n</>)",
			types:    []TokenType{TokenIdentifier, TokenLParen, TokenJSX, TokenRParen, TokenEOF},
			literals: []string{"f", "(", "<>\n  <Item label='a > b' {...rest} />\n  {xs.map(x => <li key={x}>{x}</li>)}\n</>", ")", ""},
		},
		{
			filename: "c.tsx",
			input:    "id = <T,>(v) => v",
			types:    []TokenType{TokenIdentifier, TokenAssign, TokenLt, TokenIdentifier, TokenComma, TokenGt, TokenLParen, TokenIdentifier, TokenRParen, TokenArrow, TokenIdentifier, TokenEOF},
			literals: []string{"id", "=", "<", "T", ",", ">", "(", "v", ")", "=>", "v", ""},
		},
		{
			filename: "c.tsx",
			input:    "id = <T extends object>(v) => v",
			types:    []TokenType{TokenIdentifier, TokenAssign, TokenLt, TokenIdentifier, TokenIdentifier, TokenIdentifier, TokenGt, TokenLParen, TokenIdentifier, TokenRParen, TokenArrow, TokenIdentifier, TokenEOF},
			literals: []string{"id", "=", "<", "T", "extends", "object", ">", "(", "v", ")", "=>", "v", ""},
		},
		{
			// an unclosed element falls back to plain tokens
			filename: "c.tsx",
			input:    "type F = <T>(x: T) => T",
			types:    []TokenType{TokenIdentifier, TokenIdentifier, TokenAssign, TokenLt, TokenIdentifier, TokenGt, TokenLParen, TokenIdentifier, TokenColon, TokenIdentifier, TokenRParen, TokenArrow, TokenIdentifier, TokenEOF},
			literals: []string{"type", "F", "=", "<", "T", ">", "(", "x", ":", "T", ")", "=>", "T", ""},
		},
		{
			filename: "c.tsx",
			input:    "a < b",
			types:    []TokenType{TokenIdentifier, TokenLt, TokenIdentifier, TokenEOF},
			literals: []string{"a", "<", "b", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, errs := Tokenize(tt.input, tt.filename)
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if len(toks) != len(tt.types) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.types), len(toks), toks)
			}
			for i := range toks {
				if toks[i].Type != tt.types[i] || toks[i].Literal != tt.literals[i] {
					t.Errorf("token %d: expected %s %q, got %s %q",
						i, tt.types[i], tt.literals[i], toks[i].Type, toks[i].Literal)
				}
			}
		})
	}
}

func TestJSXOnlyInJSXFiles(t *testing.T) {
	for name, want := range map[string]bool{
		"a.tsx": true, "dir/b.jsx": true, "a.ts": false, "a.js": false, "a.mts": false, "": false,
	} {
		if got := IsJSXFile(name); got != want {
			t.Errorf("IsJSXFile(%q) = %v, want %v", name, got, want)
		}
	}

	toks, _ := Tokenize("x = <div></div>", "a.ts")
	for _, tok := range toks {
		if tok.Type == TokenJSX {
			t.Fatalf("unexpected JSX token in a .ts file: %v", toks)
		}
	}
}
