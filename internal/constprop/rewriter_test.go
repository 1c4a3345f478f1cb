package constprop

import (
	"strings"
	"testing"

	"github.com/constprop/constprop/internal/ast"
	"github.com/constprop/constprop/internal/parser"
)

func parseOne(t *testing.T, src string) ast.Statement {
	t.Helper()
	file, errs := parser.ParseFile("t.ts", src)
	if len(errs) > 0 {
		t.Fatalf("parse %q: %v", src, errs)
	}
	if len(file.Statements) != 1 {
		t.Fatalf("expected one statement in %q", src)
	}
	return file.Statements[0]
}

func render(stmts []ast.Statement) string {
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(s.Base().Leading)
		b.WriteString(s.String())
	}
	return b.String()
}

func str(raw string) *ast.Literal {
	return &ast.Literal{Kind: ast.LiteralString, Raw: raw}
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		constants map[string]*ast.Literal
		want      string
	}{
		{
			name:      "no constants",
			src:       `import { a } from "./m";`,
			constants: nil,
			want:      `import { a } from "./m";`,
		},
		{
			name:      "unrelated constants",
			src:       `import { a } from "./m";`,
			constants: map[string]*ast.Literal{"b": str(`"v"`)},
			want:      `import { a } from "./m";`,
		},
		{
			name:      "import fully resolved",
			src:       "// c\nimport { a, b } from \"./m\";",
			constants: map[string]*ast.Literal{"a": str(`"1"`), "b": str(`"2"`)},
			want:      "// c\nconst a = \"1\";\nconst b = \"2\";",
		},
		{
			name:      "import keeps unresolved",
			src:       `import { a, b as c } from "./m";`,
			constants: map[string]*ast.Literal{"a": str(`"1"`)},
			want:      "import { b as c } from \"./m\";\nconst a = \"1\";",
		},
		{
			name:      "re-export fully resolved",
			src:       `export { a as b } from "./m";`,
			constants: map[string]*ast.Literal{"b": str(`'x'`)},
			want:      "const b = 'x';\nexport { b };",
		},
		{
			name:      "re-export partially resolved",
			src:       `export { a, b } from "./m";`,
			constants: map[string]*ast.Literal{"b": str(`'x'`)},
			want:      "export { a } from \"./m\";\nconst b = 'x';\nexport { b };",
		},
		{
			name:      "indentation carried",
			src:       "\n    import { a, b } from \"./m\";",
			constants: map[string]*ast.Literal{"a": str(`"1"`)},
			want:      "\n    import { b } from \"./m\";\n    const a = \"1\";",
		},
		{
			name:      "other statements untouched",
			src:       `const a = 1;`,
			constants: map[string]*ast.Literal{"a": str(`"1"`)},
			want:      `const a = 1;`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := parseOne(t, tt.src)
			var items []*ast.ClauseItem
			switch s := stmt.(type) {
			case *ast.ImportDeclaration:
				items = s.Items
			case *ast.ExportFromDeclaration:
				items = s.Items
			}
			got := render(Rewrite(stmt, items, tt.constants))
			if got != tt.want {
				t.Errorf("\nwant %q\ngot  %q", tt.want, got)
			}
		})
	}
}

func TestRewriteDoesNotShareItems(t *testing.T) {
	stmt := parseOne(t, `import { a, b } from "./m";`).(*ast.ImportDeclaration)
	out := Rewrite(stmt, stmt.Items, map[string]*ast.Literal{"a": str(`"1"`)})
	shrunk := out[0].(*ast.ImportDeclaration)
	shrunk.Items[0].Name = "changed"
	if stmt.Items[1].Name != "b" {
		t.Errorf("original clause modified")
	}
	if len(stmt.Items) != 2 {
		t.Errorf("original clause length changed")
	}
}

func TestWalk(t *testing.T) {
	file, errs := parser.ParseFile("t.ts", "let a = 1;\nnamespace N {\n  let b = 2;\n}\nlet c = 3;\n")
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	var order []string
	drop := func(stmt ast.Statement) []ast.Statement {
		if v, ok := stmt.(*ast.VariableDeclaration); ok {
			order = append(order, v.Declarators[0].Name)
			if v.Declarators[0].Name == "b" {
				return nil
			}
		}
		return []ast.Statement{stmt}
	}
	out := Walk(file.Statements, drop)

	if strings.Join(order, ",") != "a,b,c" {
		t.Errorf("visit order = %v", order)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(out))
	}
	block := out[1].(*ast.BlockStatement)
	if len(block.Statements) != 0 {
		t.Errorf("block child not removed")
	}
	if len(file.Statements[1].(*ast.BlockStatement).Statements) != 1 {
		t.Errorf("input block was modified")
	}

	same := Walk(file.Statements, func(s ast.Statement) []ast.Statement { return []ast.Statement{s} })
	for i := range same {
		if same[i] != file.Statements[i] {
			t.Errorf("identity walk replaced statement %d", i)
		}
	}
}

func TestResolverChains(t *testing.T) {
	program := loadProgram(t, map[string]string{
		"a.ts": "export const x = 1;\nconst hidden = 2;\nexport function f() {}\n",
		"b.ts": "import { x as y, hidden } from \"./a\";\nexport { y, hidden };\nexport { f as g } from \"./a\";\n",
		"c.ts": "export { y as z, g } from \"./b\";\n",
	})
	c, _ := program.Module("c.ts")
	export := func(name string) *ast.ClauseItem { return &ast.ClauseItem{Name: name} }

	got := NewResolver(program).Resolve([]*ast.ClauseItem{
		export("z"), export("g"), export("hidden"), export("missing"),
		{Name: "t", SourceName: "z"},
		{Name: "z", IsType: true},
	}, c)

	if len(got) != 2 {
		t.Fatalf("expected 2 constants, got %v", got)
	}
	if lit := got["z"]; lit == nil || lit.Raw != "1" {
		t.Errorf("z = %v", lit)
	}
	if lit := got["t"]; lit == nil || lit.Raw != "1" {
		t.Errorf("t = %v", lit)
	}

	if n := len(NewResolver(program).Resolve([]*ast.ClauseItem{export("x")}, nil)); n != 0 {
		t.Errorf("nil module resolved %d constants", n)
	}
}
